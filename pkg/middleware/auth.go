package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Ruscigno/JobPulse/pkg/errors"
	"go.uber.org/zap"
)

// AuthConfig holds authentication configuration
type AuthConfig struct {
	APIKey string // empty disables the check
	Logger *zap.Logger
}

// APIKeyAuth middleware validates API key authentication
func APIKeyAuth(config AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if config.APIKey == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Skip authentication for health check endpoints
			if strings.HasPrefix(r.URL.Path, "/health") {
				next.ServeHTTP(w, r)
				return
			}

			apiKey := r.Header.Get("X-API-Key")
			if apiKey == "" {
				authHeader := r.Header.Get("Authorization")
				if strings.HasPrefix(authHeader, "Bearer ") {
					apiKey = strings.TrimPrefix(authHeader, "Bearer ")
				}
			}

			if apiKey == "" {
				config.Logger.Warn("Missing API key",
					zap.String("request_id", RequestIDFromContext(r.Context())),
					zap.String("path", r.URL.Path),
					zap.String("method", r.Method))
				WriteError(w, errors.NewAppError(errors.ErrCodeUnauthorized, "API key required"))
				return
			}

			if subtle.ConstantTimeCompare([]byte(apiKey), []byte(config.APIKey)) != 1 {
				config.Logger.Warn("Invalid API key",
					zap.String("request_id", RequestIDFromContext(r.Context())),
					zap.String("path", r.URL.Path),
					zap.String("method", r.Method))
				WriteError(w, errors.NewAppError(errors.ErrCodeUnauthorized, "invalid API key"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// WriteError writes an AppError as a JSON ErrorResponse with its HTTP status.
func WriteError(w http.ResponseWriter, appErr *errors.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.HTTPStatus)
	json.NewEncoder(w).Encode(appErr.ToErrorResponse())
}
