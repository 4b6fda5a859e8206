package http

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"

	"github.com/Ruscigno/JobPulse/pkg/endpoint"
	"github.com/Ruscigno/JobPulse/pkg/errors"
	"github.com/Ruscigno/JobPulse/pkg/metrics"
	"github.com/Ruscigno/JobPulse/pkg/middleware"
	"github.com/Ruscigno/JobPulse/pkg/service"
	"github.com/go-kit/kit/transport"
	httptransport "github.com/go-kit/kit/transport/http"
	"go.uber.org/zap"
)

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	APIKey            string
	RequestsPerSecond float64
	BurstSize         int
	Metrics           *metrics.CrawlMetrics
	Logger            *zap.Logger
}

// NewHTTPHandler sets up HTTP handlers for the endpoints with middleware.
func NewHTTPHandler(endpoints endpoint.Endpoints, config HTTPConfig) http.Handler {
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	options := []httptransport.ServerOption{
		httptransport.ServerErrorEncoder(encodeError),
		httptransport.ServerErrorHandler(zapErrorHandler{logger: config.Logger}),
	}

	mux := http.NewServeMux()

	mux.Handle("POST /runs", httptransport.NewServer(
		endpoints.StartRun,
		decodeStartRunRequest,
		encodeStartRunResponse,
		options...,
	))

	mux.Handle("GET /runs", httptransport.NewServer(
		endpoints.ListRuns,
		decodeEmptyRequest,
		httptransport.EncodeJSONResponse,
		options...,
	))

	mux.Handle("GET /runs/{id}", httptransport.NewServer(
		endpoints.GetRun,
		decodeGetRunRequest,
		httptransport.EncodeJSONResponse,
		options...,
	))

	mux.Handle("GET /metrics", httptransport.NewServer(
		endpoints.Metrics,
		decodeEmptyRequest,
		httptransport.EncodeJSONResponse,
		options...,
	))

	// Health Check endpoint (no authentication required)
	mux.Handle("GET /health", httptransport.NewServer(
		endpoints.CheckHealth,
		decodeEmptyRequest,
		encodeHealthResponse,
		options...,
	))

	// Apply middleware in reverse order (last applied = first executed)
	var handler http.Handler = mux
	handler = middleware.APIKeyAuth(middleware.AuthConfig{
		APIKey: config.APIKey,
		Logger: config.Logger,
	})(handler)
	handler = middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerSecond: config.RequestsPerSecond,
		BurstSize:         config.BurstSize,
		Logger:            config.Logger,
	})(handler)
	if config.Metrics != nil {
		handler = metrics.MetricsMiddleware(config.Metrics)(handler)
	}
	handler = middleware.ErrorLogging(config.Logger)(handler)
	handler = middleware.RequestLogging(middleware.LoggingConfig{
		Logger: config.Logger,
	})(handler)
	handler = middleware.RequestID()(handler)

	return handler
}

func decodeStartRunRequest(_ context.Context, r *http.Request) (interface{}, error) {
	var req service.StartRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !stderrors.Is(err, io.EOF) {
		return nil, errors.WrapError(err, errors.ErrCodeBadRequest, "invalid JSON body")
	}
	return req, nil
}

func decodeGetRunRequest(_ context.Context, r *http.Request) (interface{}, error) {
	id := r.PathValue("id")
	if id == "" {
		return nil, errors.NewAppError(errors.ErrCodeBadRequest, "run id is required")
	}
	return endpoint.GetRunRequest{ID: id}, nil
}

func decodeEmptyRequest(_ context.Context, _ *http.Request) (interface{}, error) {
	return nil, nil
}

// accepted answers 202 through go-kit's StatusCoder.
type accepted struct {
	service.Run
}

func (accepted) StatusCode() int { return http.StatusAccepted }

func encodeStartRunResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	run, ok := response.(service.Run)
	if !ok {
		return httptransport.EncodeJSONResponse(ctx, w, response)
	}
	w.Header().Set("Location", "/runs/"+run.ID)
	return httptransport.EncodeJSONResponse(ctx, w, accepted{Run: run})
}

// healthStatus answers 503 when the service is unhealthy.
type healthStatus struct {
	service.HealthResponse
}

func (h healthStatus) StatusCode() int {
	if h.Status == service.HealthStatusUnhealthy {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}

func encodeHealthResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	health, ok := response.(service.HealthResponse)
	if !ok {
		return httptransport.EncodeJSONResponse(ctx, w, response)
	}
	return httptransport.EncodeJSONResponse(ctx, w, healthStatus{HealthResponse: health})
}

// encodeError writes AppErrors with their status; anything else is a 500.
func encodeError(_ context.Context, err error, w http.ResponseWriter) {
	var resp errors.ErrorResponse
	status := http.StatusInternalServerError

	var validationErr *errors.ValidationError
	if stderrors.As(err, &validationErr) {
		resp = validationErr.ToErrorResponse()
		status = validationErr.HTTPStatus
	} else if appErr := errors.GetAppError(err); appErr != nil {
		resp = appErr.ToErrorResponse()
		status = appErr.HTTPStatus
	} else {
		resp = errors.NewAppError(errors.ErrCodeInternal, "internal server error").ToErrorResponse()
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

type zapErrorHandler struct {
	logger *zap.Logger
}

func (h zapErrorHandler) Handle(ctx context.Context, err error) {
	h.logger.Warn("Request failed", zap.Error(err))
}

var _ transport.ErrorHandler = zapErrorHandler{}
