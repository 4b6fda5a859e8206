package service

import (
	"context"
	"time"

	"github.com/Ruscigno/JobPulse/pkg/config"
	"github.com/Ruscigno/JobPulse/pkg/crawl"
	"github.com/Ruscigno/JobPulse/pkg/errors"
	"github.com/Ruscigno/JobPulse/pkg/export"
	"github.com/Ruscigno/JobPulse/pkg/metrics"
	"github.com/Ruscigno/JobPulse/pkg/upload"
	"go.uber.org/zap"
)

// Pipeline is the crawl step of a run.
type Pipeline interface {
	Run(ctx context.Context) (crawl.Result, error)
}

// RunOptions tweaks a single run.
type RunOptions struct {
	Upload    bool   `json:"upload"`
	OutputDir string `json:"output_dir,omitempty"`
}

// Report is the outcome of a finished run.
type Report struct {
	Stats      crawl.Stats    `json:"stats"`
	OutputPath string         `json:"output_path,omitempty"`
	Upload     *upload.Result `json:"upload,omitempty"`
}

// Executor runs crawl, export and upload once.
type Executor interface {
	Execute(ctx context.Context, opts RunOptions) (Report, error)
}

// Runner chains the pipeline, the CSV export and the optional upload.
type Runner struct {
	cfg         config.Config
	metrics     *metrics.CrawlMetrics
	logger      *zap.Logger
	newPipeline func(cfg config.Config) Pipeline
	newUploader func(ctx context.Context, cfg config.UploadConfig) (upload.Uploader, error)
	now         func() time.Time
}

// NewRunner builds a Runner that crawls over the network.
func NewRunner(cfg config.Config, crawlMetrics *metrics.CrawlMetrics, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if crawlMetrics == nil {
		crawlMetrics = metrics.NewCrawlMetrics(metrics.NewSimpleMetricsCollector(logger))
	}
	r := &Runner{
		cfg:     cfg,
		metrics: crawlMetrics,
		logger:  logger,
		now:     time.Now,
	}
	r.newPipeline = func(cfg config.Config) Pipeline {
		return crawl.NewFromConfig(cfg, crawlMetrics, logger)
	}
	r.newUploader = func(ctx context.Context, cfg config.UploadConfig) (upload.Uploader, error) {
		return upload.New(ctx, cfg, logger)
	}
	return r
}

// Config returns the configuration runs use.
func (r *Runner) Config() config.Config {
	return r.cfg
}

// Execute runs one crawl. A cancelled crawl still exports the records it
// gathered, then returns the cancellation. Upload failures keep the export
// and are returned with the report.
func (r *Runner) Execute(ctx context.Context, opts RunOptions) (Report, error) {
	var report Report

	res, runErr := r.newPipeline(r.cfg).Run(ctx)
	report.Stats = res.Stats
	if runErr != nil && len(res.Records) == 0 {
		return report, errors.WrapError(runErr, errors.ErrCodeTimeout, "crawl cancelled before any posting was collected")
	}

	dir := opts.OutputDir
	if dir == "" {
		dir = r.cfg.Output.Dir
	}
	start := time.Now()
	path, err := export.WriteCSV(dir, r.cfg.Output.Prefix, r.now(), res.Records)
	if err != nil {
		return report, err
	}
	report.OutputPath = path
	r.metrics.RecordExport(len(res.Records), time.Since(start))
	r.logger.Info("Data saved",
		zap.String("path", path),
		zap.Int("records", len(res.Records)))

	if runErr != nil {
		return report, errors.WrapError(runErr, errors.ErrCodeTimeout, "crawl cancelled, partial export written").
			WithDetails(path)
	}
	if !opts.Upload {
		return report, nil
	}

	result, err := r.Upload(ctx, path)
	if err != nil {
		return report, err
	}
	report.Upload = &result
	return report, nil
}

// Upload sends an existing export to the configured destination, Drive
// when none is configured.
func (r *Runner) Upload(ctx context.Context, path string) (upload.Result, error) {
	cfg := r.cfg.Upload
	if cfg.Destination == "" {
		cfg.Destination = upload.DestinationDrive
	}

	start := time.Now()
	uploader, err := r.newUploader(ctx, cfg)
	if err != nil {
		r.metrics.RecordUpload(cfg.Destination, false, time.Since(start))
		return upload.Result{}, err
	}
	result, err := uploader.Upload(ctx, path)
	r.metrics.RecordUpload(cfg.Destination, err == nil, time.Since(start))
	if err != nil {
		r.logger.Error("Upload failed",
			zap.String("destination", cfg.Destination),
			zap.String("path", path),
			zap.Error(err))
		return upload.Result{}, err
	}
	return result, nil
}
