package endpoint

import (
	"context"

	"github.com/Ruscigno/JobPulse/pkg/errors"
	"github.com/Ruscigno/JobPulse/pkg/service"
	"github.com/go-kit/kit/endpoint"
)

// Endpoints holds all Go-Kit endpoints.
type Endpoints struct {
	StartRun    endpoint.Endpoint
	GetRun      endpoint.Endpoint
	ListRuns    endpoint.Endpoint
	CheckHealth endpoint.Endpoint
	Metrics     endpoint.Endpoint
}

// GetRunRequest identifies a run.
type GetRunRequest struct {
	ID string
}

// MakeEndpoints creates endpoints for the service.
func MakeEndpoints(s service.Service) Endpoints {
	return Endpoints{
		StartRun:    makeStartRunEndpoint(s),
		GetRun:      makeGetRunEndpoint(s),
		ListRuns:    makeListRunsEndpoint(s),
		CheckHealth: makeCheckHealthEndpoint(s),
		Metrics:     makeMetricsEndpoint(s),
	}
}

func invalidRequest() error {
	return errors.NewAppError(errors.ErrCodeBadRequest, "invalid request")
}

func makeStartRunEndpoint(s service.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req, ok := request.(service.StartRunRequest)
		if !ok {
			return nil, invalidRequest()
		}
		return s.StartRun(ctx, req)
	}
}

func makeGetRunEndpoint(s service.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req, ok := request.(GetRunRequest)
		if !ok {
			return nil, invalidRequest()
		}
		return s.GetRun(ctx, req.ID)
	}
}

func makeListRunsEndpoint(s service.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		return s.ListRuns(ctx)
	}
}

func makeCheckHealthEndpoint(s service.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		return s.CheckHealth(ctx), nil
	}
}

func makeMetricsEndpoint(s service.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		return s.Metrics(ctx), nil
	}
}
