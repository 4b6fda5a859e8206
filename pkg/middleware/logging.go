package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/Ruscigno/JobPulse/pkg/errors"
	"go.uber.org/zap"
)

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Logger           *zap.Logger
	SensitiveHeaders []string // Headers to redact in logs
}

// responseWriter wraps http.ResponseWriter to capture response data
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	size       int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	rw.statusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (rw *responseWriter) Write(data []byte) (int, error) {
	size, err := rw.ResponseWriter.Write(data)
	rw.size += size
	return size, err
}

// RequestLogging middleware logs HTTP requests and responses
func RequestLogging(config LoggingConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := RequestIDFromContext(r.Context())
			wrapped := newResponseWriter(w)

			logRequest(config, r, requestID)
			next.ServeHTTP(wrapped, r)
			logResponse(config, r, wrapped, time.Since(start), requestID)
		})
	}
}

// logRequest logs the incoming HTTP request
func logRequest(config LoggingConfig, r *http.Request, requestID string) {
	headers := make(map[string]string)
	for name, values := range r.Header {
		if len(values) == 0 {
			continue
		}
		if isSensitiveHeader(name, config.SensitiveHeaders) {
			headers[name] = "[REDACTED]"
		} else {
			headers[name] = values[0]
		}
	}

	config.Logger.Info("HTTP request",
		zap.String("request_id", requestID),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("query", r.URL.RawQuery),
		zap.String("remote_addr", getClientIP(r)),
		zap.String("user_agent", r.UserAgent()),
		zap.Any("headers", headers))
}

// logResponse logs the HTTP response
func logResponse(config LoggingConfig, r *http.Request, rw *responseWriter, duration time.Duration, requestID string) {
	fields := []zap.Field{
		zap.String("request_id", requestID),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status_code", rw.statusCode),
		zap.Int("response_size", rw.size),
		zap.Duration("duration", duration),
	}

	switch {
	case rw.statusCode >= 500:
		config.Logger.Error("HTTP response", fields...)
	case rw.statusCode >= 400:
		config.Logger.Warn("HTTP response", fields...)
	default:
		config.Logger.Info("HTTP response", fields...)
	}
}

// ErrorLogging middleware recovers handler panics and answers 500.
func ErrorLogging(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("HTTP handler panic",
						zap.String("request_id", RequestIDFromContext(r.Context())),
						zap.String("method", r.Method),
						zap.String("path", r.URL.Path),
						zap.Any("panic", err),
						zap.Stack("stack"))

					WriteError(w, errors.NewAppError(errors.ErrCodeInternal, "internal server error"))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// isSensitiveHeader checks if a header should be redacted
func isSensitiveHeader(headerName string, sensitiveHeaders []string) bool {
	headerLower := strings.ToLower(headerName)

	defaultSensitive := []string{
		"authorization",
		"x-api-key",
		"cookie",
		"set-cookie",
	}
	for _, sensitive := range defaultSensitive {
		if headerLower == sensitive {
			return true
		}
	}
	for _, sensitive := range sensitiveHeaders {
		if strings.ToLower(sensitive) == headerLower {
			return true
		}
	}
	return false
}
