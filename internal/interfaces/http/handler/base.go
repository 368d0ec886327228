package handler

import (
	"errors"
	"net/http"

	"github.com/artcase/storefront/internal/application/storefront"
	"github.com/artcase/storefront/internal/domain/shared"
	"github.com/artcase/storefront/internal/infrastructure/logger"
	"github.com/artcase/storefront/internal/interfaces/http/dto"
	"github.com/artcase/storefront/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type apiMessager interface {
	APIMessage() string
}

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID set by the RequestID middleware
func getRequestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	return c.GetHeader(middleware.RequestIDHeader)
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Redirect sends a 303 See Other to location
func (h *BaseHandler) Redirect(c *gin.Context, location string, replace bool) {
	middleware.AbortWithRedirect(c, location, replace)
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// ErrorWithCode sends an error response, deriving status code from error code
func (h *BaseHandler) ErrorWithCode(c *gin.Context, code, message string) {
	code = dto.NormalizeErrorCode(code)
	h.Error(c, dto.GetHTTPStatus(code), code, message)
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// ValidationError sends a 400 validation error response with details
func (h *BaseHandler) ValidationError(c *gin.Context, details []dto.ValidationDetail) {
	c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
		"Request validation failed",
		getRequestID(c),
		details,
	))
}

// HandleError converts service errors to HTTP responses: validation failures
// carry per-field details, domain errors go through the error-code table, and
// anything else is an internal error.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	if middleware.IsValidationError(err) {
		h.ValidationError(c, middleware.ValidationDetails(err))
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		message := domainErr.Message
		// Art API rejections carry a message meant for the user
		var apiErr apiMessager
		if errors.As(err, &apiErr) && apiErr.APIMessage() != "" {
			message = apiErr.APIMessage()
		}
		h.ErrorWithCode(c, domainErr.Code, message)
		return
	}

	logger.GetGinLogger(c).Error("Unhandled error", zap.Error(err))
	h.InternalError(c, "An unexpected error occurred")
}

// bind decodes the request body (JSON or form) into obj. Validation failures
// answer 400 with details, anything else is a malformed body.
func (h *BaseHandler) bind(c *gin.Context, obj any) bool {
	if err := c.ShouldBind(obj); err != nil {
		if middleware.IsValidationError(err) {
			h.ValidationError(c, middleware.ValidationDetails(err))
			return false
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodePayloadTooLarge, "Request body too large")
			return false
		}
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Invalid request body")
		return false
	}
	return true
}

// profile returns the request's browser profile, answering 500 when the
// Profile middleware did not run
func (h *BaseHandler) profile(c *gin.Context) (*storefront.Profile, bool) {
	p, ok := middleware.GetProfile(c)
	if !ok {
		h.InternalError(c, "An internal error occurred")
		return nil, false
	}
	return p, true
}
