package service

import (
	"context"
	"sync"
	"time"

	"github.com/Ruscigno/JobPulse/pkg/crawl"
	"github.com/Ruscigno/JobPulse/pkg/errors"
	"github.com/Ruscigno/JobPulse/pkg/metrics"
	"github.com/Ruscigno/JobPulse/pkg/upload"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RunStatus is the lifecycle state of a run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
)

// StartRunRequest defines the input for starting a run
type StartRunRequest struct {
	Upload bool `json:"upload"`
}

// Run describes one crawl started through the service.
type Run struct {
	ID         string           `json:"id"`
	Status     RunStatus        `json:"status"`
	Upload     bool             `json:"upload"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt *time.Time       `json:"finished_at,omitempty"`
	Stats      crawl.Stats      `json:"stats"`
	OutputPath string           `json:"output_path,omitempty"`
	Uploaded   *upload.Result   `json:"uploaded,omitempty"`
	Error      string           `json:"error,omitempty"`
	ErrorCode  errors.ErrorCode `json:"error_code,omitempty"`
}

// RunsResponse lists runs, newest first.
type RunsResponse struct {
	Runs  []Run `json:"runs"`
	Total int   `json:"total"`
}

// Service defines the crawl service interface
type Service interface {
	StartRun(ctx context.Context, req StartRunRequest) (Run, error)
	GetRun(ctx context.Context, id string) (Run, error)
	ListRuns(ctx context.Context) (RunsResponse, error)
	CheckHealth(ctx context.Context) HealthResponse
	Metrics(ctx context.Context) metrics.Snapshot
}

// RunService implements Service with one background run at a time.
type RunService struct {
	executor  Executor
	collector *metrics.SimpleMetricsCollector
	logger    *zap.Logger
	startTime time.Time
	version   string

	// runCtx outlives the request that started a run; Shutdown cancels it.
	runCtx    context.Context
	cancelAll context.CancelFunc
	wg        sync.WaitGroup

	mu     sync.Mutex
	runs   map[string]*Run
	order  []string
	active string
}

// NewService creates a new Service. collector may be nil.
func NewService(executor Executor, collector *metrics.SimpleMetricsCollector, logger *zap.Logger, version string) *RunService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if collector == nil {
		collector = metrics.NewSimpleMetricsCollector(logger)
	}
	runCtx, cancel := context.WithCancel(context.Background())
	return &RunService{
		executor:  executor,
		collector: collector,
		logger:    logger,
		startTime: time.Now(),
		version:   version,
		runCtx:    runCtx,
		cancelAll: cancel,
		runs:      make(map[string]*Run),
	}
}

// StartRun launches a run in the background. Only one run may be active.
func (s *RunService) StartRun(ctx context.Context, req StartRunRequest) (Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.runCtx.Err() != nil {
		return Run{}, errors.NewAppError(errors.ErrCodeConflict, "service is shutting down")
	}
	if s.active != "" {
		return Run{}, errors.NewAppError(errors.ErrCodeConflict, "a run is already in progress").
			WithMetadata("run_id", s.active)
	}

	run := &Run{
		ID:        uuid.New().String(),
		Status:    RunStatusRunning,
		Upload:    req.Upload,
		StartedAt: time.Now(),
	}
	s.runs[run.ID] = run
	s.order = append(s.order, run.ID)
	s.active = run.ID

	s.logger.Info("Starting run",
		zap.String("run_id", run.ID),
		zap.Bool("upload", req.Upload))

	s.wg.Add(1)
	go s.execute(run.ID, RunOptions{Upload: req.Upload})

	return *run, nil
}

func (s *RunService) execute(id string, opts RunOptions) {
	defer s.wg.Done()

	start := time.Now()
	report, err := s.executor.Execute(s.runCtx, opts)
	finished := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	run := s.runs[id]
	run.FinishedAt = &finished
	run.Stats = report.Stats
	run.OutputPath = report.OutputPath
	run.Uploaded = report.Upload
	s.active = ""

	if err != nil {
		run.Status = RunStatusFailed
		run.Error = err.Error()
		if appErr := errors.GetAppError(err); appErr != nil {
			run.ErrorCode = appErr.Code
		}
		s.logger.Error("Run failed",
			zap.String("run_id", id),
			zap.Duration("duration", finished.Sub(start)),
			zap.Error(err))
		return
	}

	run.Status = RunStatusSucceeded
	s.logger.Info("Run finished",
		zap.String("run_id", id),
		zap.Duration("duration", finished.Sub(start)),
		zap.Int("postings", report.Stats.UniquePostings),
		zap.String("path", report.OutputPath))
}

// GetRun returns a run by id.
func (s *RunService) GetRun(ctx context.Context, id string) (Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.runs[id]
	if !ok {
		return Run{}, errors.NewAppError(errors.ErrCodeNotFound, "run not found").WithMetadata("run_id", id)
	}
	return *run, nil
}

// ListRuns returns every run, newest first.
func (s *RunService) ListRuns(ctx context.Context) (RunsResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	runs := make([]Run, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		runs = append(runs, *s.runs[s.order[i]])
	}
	return RunsResponse{Runs: runs, Total: len(runs)}, nil
}

// Metrics returns the collector state.
func (s *RunService) Metrics(ctx context.Context) metrics.Snapshot {
	return s.collector.Snapshot()
}

// Shutdown cancels the active run and waits for it to write its export.
func (s *RunService) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.cancelAll()
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return errors.WrapError(ctx.Err(), errors.ErrCodeTimeout, "run did not stop before shutdown deadline")
	}
}
