package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// HealthStatus represents the health status of a component
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
	HealthStatusDegraded  HealthStatus = "degraded"
)

// ComponentHealth represents the health of a single component
type ComponentHealth struct {
	Name      string       `json:"name"`
	Status    HealthStatus `json:"status"`
	Message   string       `json:"message,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

// HealthResponse represents the overall health response
type HealthResponse struct {
	Status     HealthStatus      `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Version    string            `json:"version"`
	Components []ComponentHealth `json:"components"`
	Uptime     string            `json:"uptime"`
	ActiveRun  string            `json:"active_run,omitempty"`
}

// CheckHealth reports the service state. A failed last run degrades it.
func (s *RunService) CheckHealth(ctx context.Context) HealthResponse {
	components := []ComponentHealth{s.checkCrawler()}
	overallStatus := determineOverallStatus(components)

	s.mu.Lock()
	active := s.active
	s.mu.Unlock()

	response := HealthResponse{
		Status:     overallStatus,
		Timestamp:  time.Now(),
		Version:    s.version,
		Components: components,
		Uptime:     time.Since(s.startTime).String(),
		ActiveRun:  active,
	}

	s.logger.Debug("Health check completed",
		zap.String("status", string(overallStatus)),
		zap.Int("components", len(components)))

	return response
}

func (s *RunService) checkCrawler() ComponentHealth {
	s.mu.Lock()
	defer s.mu.Unlock()

	component := ComponentHealth{
		Name:      "crawler",
		Status:    HealthStatusHealthy,
		Timestamp: time.Now(),
	}

	switch {
	case s.runCtx.Err() != nil:
		component.Status = HealthStatusUnhealthy
		component.Message = "shutting down"
	case s.active != "":
		component.Message = "run " + s.active + " in progress"
	case len(s.order) == 0:
		component.Message = "idle, no runs yet"
	default:
		last := s.runs[s.order[len(s.order)-1]]
		if last.Status == RunStatusFailed {
			component.Status = HealthStatusDegraded
			component.Message = "last run failed: " + last.Error
		} else {
			component.Message = "idle"
		}
	}
	return component
}

// determineOverallStatus determines the overall health status based on component statuses
func determineOverallStatus(components []ComponentHealth) HealthStatus {
	hasUnhealthy := false
	hasDegraded := false

	for _, component := range components {
		switch component.Status {
		case HealthStatusUnhealthy:
			hasUnhealthy = true
		case HealthStatusDegraded:
			hasDegraded = true
		}
	}

	if hasUnhealthy {
		return HealthStatusUnhealthy
	}
	if hasDegraded {
		return HealthStatusDegraded
	}
	return HealthStatusHealthy
}
