package server

import (
	"errors"
	"net/http"

	customerdomain "github.com/Cab6701/WaterService/internal/customer/domain"
	"github.com/gin-gonic/gin"
)

type errorPayload struct {
	Type    string                      `json:"type"`
	Message string                      `json:"message"`
	Fields  []customerdomain.FieldError `json:"fields,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var ErrInvalidRequest = errors.New("invalid_request")

// ErrorHandlingMiddleware maps domain errors onto HTTP responses after the
// handler chain runs.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return customerdomain.NewValidationError("request", "invalid_request", "invalid request")
}

func mapError(err error) (int, errorPayload) {
	var vErr *customerdomain.ValidationError
	switch {
	case errors.As(err, &vErr):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Fields:  vErr.Fields,
		}
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "invalid request",
		}
	case errors.Is(err, customerdomain.ErrHasInvoices):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: customerdomain.ErrHasInvoices.Error(),
		}
	case errors.Is(err, customerdomain.ErrNotFound),
		errors.Is(err, customerdomain.ErrReadingNotFound),
		errors.Is(err, customerdomain.ErrIDMismatch):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

// classifyErrorForLog feeds the access-log middleware.
func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	code := payload.Type
	if len(payload.Fields) > 0 {
		code = payload.Fields[0].Code
	}
	switch {
	case status >= 500:
		return "internal", code
	case status == http.StatusNotFound:
		return "not_found", code
	case status == http.StatusConflict:
		return "conflict", code
	default:
		return "validation", code
	}
}
