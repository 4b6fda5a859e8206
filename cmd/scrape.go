package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Ruscigno/JobPulse/pkg/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newScrapeCmd(a *app) *cobra.Command {
	var opts service.RunOptions

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Crawl postings and export them to CSV",
		Long: `Expands every category alias and location into searches, crawls the listing
and detail pages, and writes <prefix>_<YYYY-MM-DD>.csv. Only the file path is
printed on stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runScrape(ctx, cmd, a, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Upload, "upload", false, "upload the export to the configured destination")
	cmd.Flags().StringVar(&opts.OutputDir, "output-dir", "", "directory for the export (default from config)")
	return cmd
}

func runScrape(ctx context.Context, cmd *cobra.Command, a *app, opts service.RunOptions) error {
	a.logger.Info("Starting crawl",
		zap.Int("categories", len(a.cfg.Categories)),
		zap.Int("locations", len(a.cfg.Locations)),
		zap.Int("listing_workers", a.cfg.Crawl.ListingWorkers),
		zap.Int("detail_workers", a.cfg.Crawl.DetailWorkers))

	runner := service.NewRunner(a.cfg, a.metrics, a.logger)
	report, err := runner.Execute(ctx, opts)

	if report.OutputPath != "" {
		fmt.Fprintln(cmd.OutOrStdout(), report.OutputPath)
	}
	a.logger.Info("Crawl summary",
		zap.Int("query_units", report.Stats.QueryUnits),
		zap.Int("listing_pages", report.Stats.ListingPages),
		zap.Int("listing_failures", report.Stats.ListingFailures),
		zap.Int("unique_postings", report.Stats.UniquePostings),
		zap.Int("detail_failures", report.Stats.DetailFailures),
		zap.Duration("listing_duration", report.Stats.ListingDuration),
		zap.Duration("detail_duration", report.Stats.DetailDuration),
		zap.Any("metrics", a.collector.Snapshot().Counters))
	if report.Upload != nil {
		a.logger.Info("Export uploaded",
			zap.String("destination", report.Upload.Destination),
			zap.String("link", report.Upload.Link))
	}
	return err
}
