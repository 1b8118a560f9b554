package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	authdomain "github.com/legaldraft/legaldraft/internal/auth/domain"
	"github.com/legaldraft/legaldraft/internal/auth/oauth"
	"github.com/legaldraft/legaldraft/internal/auth/token"
	"gorm.io/gorm"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var ErrInvalidRequest = errors.New("invalid_request")

// ErrorHandlingMiddleware maps domain errors collected during the request
// onto HTTP responses. Authentication failures map onto a single opaque 401
// regardless of cause.
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

func mapError(err error) (int, errorPayload) {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest, errorPayload{
			Type:    "invalid_request",
			Message: "invalid request",
		}
	case errors.Is(err, oauth.ErrUnsupportedProvider):
		return http.StatusBadRequest, errorPayload{
			Type:    "unsupported_provider",
			Message: "unsupported oauth provider",
		}
	case errors.Is(err, oauth.ErrMissingField):
		return http.StatusBadRequest, errorPayload{
			Type:    "missing_field",
			Message: "required oauth field is missing",
		}
	case errors.Is(err, authdomain.ErrInvalidCredentials),
		errors.Is(err, token.ErrInvalidToken):
		return http.StatusUnauthorized, errorPayload{
			Type:    "invalid_credentials",
			Message: "could not validate credentials",
		}
	case errors.Is(err, authdomain.ErrAccountDeactivated):
		return http.StatusForbidden, errorPayload{
			Type:    "account_deactivated",
			Message: "account is deactivated",
		}
	case errors.Is(err, authdomain.ErrUserExists):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "an account with this email already exists",
		}
	case errors.Is(err, authdomain.ErrUserNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, oauth.ErrProviderUnavailable):
		return http.StatusBadGateway, errorPayload{
			Type:    "provider_unavailable",
			Message: "identity provider is unavailable, retry later",
		}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "downstream dependency timed out, retry later",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}
