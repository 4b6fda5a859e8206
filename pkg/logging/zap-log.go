package logging

import (
	"io"
	"os"
	"strings"

	"github.com/Ruscigno/JobPulse/pkg/config"
	"github.com/natefinch/lumberjack"
	"go.elastic.co/ecszap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelProd  = "prod"
	LevelELK   = "elk"
)

type WriteSyncer struct {
	io.Writer
}

func (ws WriteSyncer) Sync() error {
	return nil
}

func GetWriteSyncer(logName string) zapcore.WriteSyncer {
	var ioWriter = &lumberjack.Logger{
		Filename:   logName,
		MaxSize:    20, // MB
		MaxBackups: 5,
		MaxAge:     28, // days
		LocalTime:  true,
	}
	return WriteSyncer{ioWriter}
}

// SetupLogger builds the process logger and installs it as the zap global.
// Errors go to stderr, everything else to stdout, and both are mirrored as
// JSON into a rotated file when cfg.File is set.
func SetupLogger(cfg config.LogConfig) *zap.Logger {
	logger := NewLogger(cfg, os.Stdout, os.Stderr)
	zap.ReplaceGlobals(logger)
	return logger
}

// NewLogger builds a logger writing console output to the given syncers.
// Commands whose stdout is consumed by scripts pass stderr for both.
func NewLogger(cfg config.LogConfig, stdout, stderr zapcore.WriteSyncer) *zap.Logger {
	if strings.EqualFold(cfg.Level, LevelELK) {
		return SetupLoggerELK(stdout)
	}

	highPriority := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= zapcore.ErrorLevel
	})
	lowPriority := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl < zapcore.ErrorLevel && lvl >= minLevel(cfg.Level)
	})

	var zcfg zap.Config
	if strings.EqualFold(cfg.Level, LevelProd) {
		zcfg = zap.NewProductionConfig()
		zcfg.EncoderConfig = zap.NewProductionEncoderConfig()
		zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		zcfg = zap.NewDevelopmentConfig()
		zcfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	consoleCfg := zcfg
	consoleCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

	consoleEncoder := zapcore.NewConsoleEncoder(consoleCfg.EncoderConfig)
	cores := []zapcore.Core{
		zapcore.NewCore(consoleEncoder, zapcore.Lock(stderr), highPriority),
		zapcore.NewCore(consoleEncoder, zapcore.Lock(stdout), lowPriority),
	}

	if cfg.File != "" {
		fileEncoder := zapcore.NewJSONEncoder(zcfg.EncoderConfig)
		logFile := zapcore.AddSync(GetWriteSyncer(cfg.File))
		cores = append(cores,
			zapcore.NewCore(fileEncoder, logFile, highPriority),
			zapcore.NewCore(fileEncoder, logFile, lowPriority),
		)
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller())
}

func minLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case LevelInfo, LevelProd:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

func SetupLoggerELK(out zapcore.WriteSyncer) *zap.Logger {
	encoderConfig := ecszap.EncoderConfig{
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   ecszap.FullCallerEncoder,
	}
	core := ecszap.NewCore(encoderConfig, out, zap.DebugLevel)
	return zap.New(core, zap.AddCaller())
}
