package middleware

import (
	"net/http"

	"github.com/artcase/storefront/internal/application/guard"
	"github.com/artcase/storefront/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// Guard protects a route subtree. While the profile's session is restoring it
// answers 202 with a loading body; a failed check redirects with 303.
// It must run after Profile.
func Guard(req guard.Requirement) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := GetProfile(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeInternal, "An internal error occurred", c.GetString("request_id"),
			))
			return
		}

		decision := guard.Evaluate(p.Session, req)
		c.Set("guard_outcome", decision.Outcome.String())
		switch decision.Outcome {
		case guard.Allow:
			c.Next()
		case guard.Loading:
			c.AbortWithStatusJSON(http.StatusAccepted, dto.NewSuccessResponse(dto.Loading{Loading: true}))
		default:
			AbortWithRedirect(c, decision.Location, decision.Replace)
		}
	}
}

// AbortWithRedirect answers 303 See Other with both a Location header and a
// JSON body naming the target
func AbortWithRedirect(c *gin.Context, location string, replace bool) {
	c.Header("Location", location)
	c.AbortWithStatusJSON(http.StatusSeeOther, dto.NewSuccessResponse(dto.Redirect{
		Location: location,
		Replace:  replace,
	}))
}
