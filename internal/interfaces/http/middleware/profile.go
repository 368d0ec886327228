package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/artcase/storefront/internal/application/storefront"
	"github.com/artcase/storefront/internal/infrastructure/auth"
	"github.com/artcase/storefront/internal/infrastructure/config"
	"github.com/artcase/storefront/internal/infrastructure/logger"
	"github.com/artcase/storefront/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Profile context keys
const (
	ProfileKey   = "profile"
	ProfileIDKey = "profile_id"
)

// ProfileMiddlewareConfig holds configuration for the profile middleware
type ProfileMiddlewareConfig struct {
	Tokens   *auth.ProfileTokenService
	Registry *storefront.Registry
	Cookie   config.CookieConfig
	// SkipPaths get no profile, e.g. health checks
	SkipPaths []string
	Logger    *zap.Logger
}

// Profile resolves the browser profile from its signed cookie, issuing a fresh
// profile when the cookie is missing or invalid. The profile's stores are
// attached to the gin context and the profile id to the request logger.
func Profile(cfg ProfileMiddlewareConfig) gin.HandlerFunc {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	sameSite := parseSameSite(cfg.Cookie.SameSite)
	maxAge := int(cfg.Tokens.Expiration().Seconds())

	return func(c *gin.Context) {
		for _, skipPath := range cfg.SkipPaths {
			if c.Request.URL.Path == skipPath {
				c.Next()
				return
			}
		}

		profileID, refresh := "", false
		if raw, err := c.Cookie(cfg.Cookie.Name); err == nil && raw != "" {
			claims, err := cfg.Tokens.Validate(raw)
			switch {
			case err == nil:
				profileID = claims.ProfileID
				// Roll the cookie once half its lifetime has passed
				refresh = claims.GetRemainingTTL() < cfg.Tokens.Expiration()/2
			case errors.Is(err, auth.ErrExpiredToken):
				logger.GetGinLogger(c).Debug("Profile cookie expired, issuing a new profile")
			default:
				logger.GetGinLogger(c).Warn("Rejected profile cookie", zap.Error(err))
			}
		}

		var token *auth.ProfileToken
		var err error
		switch {
		case profileID == "":
			token, err = cfg.Tokens.Issue()
		case refresh:
			token, err = cfg.Tokens.IssueFor(profileID)
		}
		if err != nil {
			cfg.Logger.Error("Failed to issue profile token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeInternal, "An internal error occurred", c.GetString("request_id"),
			))
			return
		}
		if token != nil {
			profileID = token.ProfileID
			c.SetSameSite(sameSite)
			c.SetCookie(cfg.Cookie.Name, token.Value, maxAge, cfg.Cookie.Path, cfg.Cookie.Domain, cfg.Cookie.Secure, true)
		}

		ctx, reqLogger := logger.WithProfileID(c.Request.Context(), logger.GetGinLogger(c), profileID)
		c.Request = c.Request.WithContext(ctx)
		c.Set(logger.GinLoggerKey, reqLogger)
		c.Set(ProfileIDKey, profileID)
		c.Set(ProfileKey, cfg.Registry.Get(ctx, profileID))

		c.Next()
	}
}

// GetProfile returns the profile attached by the Profile middleware
func GetProfile(c *gin.Context) (*storefront.Profile, bool) {
	v, ok := c.Get(ProfileKey)
	if !ok {
		return nil, false
	}
	p, ok := v.(*storefront.Profile)
	return p, ok && p != nil
}

func parseSameSite(mode string) http.SameSite {
	switch strings.ToLower(mode) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
