// Package cmd holds the jobpulse command line.
package cmd

import (
	"os"

	"github.com/Ruscigno/JobPulse/pkg/config"
	"github.com/Ruscigno/JobPulse/pkg/logging"
	"github.com/Ruscigno/JobPulse/pkg/metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Version is set at build time with -ldflags.
var Version = "dev"

// app carries what every command needs once flags and config are resolved.
type app struct {
	v         *viper.Viper
	cfgFile   string
	cfg       config.Config
	logger    *zap.Logger
	collector *metrics.SimpleMetricsCollector
	metrics   *metrics.CrawlMetrics
}

// NewRootCmd builds the jobpulse command tree.
func NewRootCmd() *cobra.Command {
	a := &app{v: config.New()}

	root := &cobra.Command{
		Use:           "jobpulse",
		Short:         "Job posting crawler",
		Long:          `Crawls job postings per category alias and location, exports them as a dated CSV file and optionally uploads the file.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (yaml or json)")
	root.PersistentFlags().String("log-level", "", "log level: debug, info, prod or elk")
	root.PersistentFlags().String("log-file", "", "also write JSON logs to this rotated file")
	a.v.BindPFlag("log.level", root.PersistentFlags().Lookup("log-level"))
	a.v.BindPFlag("log.file", root.PersistentFlags().Lookup("log-file"))

	root.AddCommand(
		newScrapeCmd(a),
		newUploadCmd(a),
		newServeCmd(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	// serve keeps the stdout/stderr split; the batch commands reserve stdout
	// for their result.
	if cmd.Name() == "serve" {
		a.logger = logging.SetupLogger(cfg.Log)
	} else {
		a.logger = logging.NewLogger(cfg.Log, os.Stderr, os.Stderr)
		zap.ReplaceGlobals(a.logger)
	}

	a.collector = metrics.NewSimpleMetricsCollector(a.logger)
	a.metrics = metrics.NewCrawlMetrics(a.collector)
	return nil
}

// Execute runs the root command.
func Execute() error {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		zap.L().Error("Command failed", zap.Error(err))
		root.PrintErrln("Error:", err)
		return err
	}
	return nil
}
