package middleware

import (
	"errors"
	"net/http"

	"github.com/artcase/storefront/internal/application/storefront"
	"github.com/artcase/storefront/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// SetupValidator makes gin's binding validator report JSON/form field names
func SetupValidator() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(storefront.JSONTagName)
	}
}

// IsValidationError reports whether err is a binding or service validation failure
func IsValidationError(err error) bool {
	var ves validator.ValidationErrors
	var verr *storefront.ValidationError
	return errors.As(err, &ves) || errors.As(err, &verr)
}

// ValidationDetails flattens binding and service validation failures into
// per-field details
func ValidationDetails(err error) []dto.ValidationDetail {
	var details []dto.ValidationDetail

	var ves validator.ValidationErrors
	if errors.As(err, &ves) {
		for _, e := range ves {
			details = append(details, dto.ValidationDetail{
				Field:   e.Field(),
				Message: storefront.FieldMessage(e),
			})
		}
		return details
	}

	var verr *storefront.ValidationError
	if errors.As(err, &verr) {
		for _, f := range verr.Fields {
			details = append(details, dto.ValidationDetail{Field: f.Field, Message: f.Message})
		}
	}
	return details
}

// FormatValidationErrors formats validation errors into a standard response
func FormatValidationErrors(err error, requestID string) dto.Response {
	return dto.NewValidationErrorResponse("Request validation failed", requestID, ValidationDetails(err))
}

// HandleValidationError writes a 400 validation response
func HandleValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, FormatValidationErrors(err, c.GetString("request_id")))
}
