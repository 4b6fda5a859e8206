// Package upload copies an export file to remote storage.
package upload

import (
	"context"
	"os"

	"github.com/Ruscigno/JobPulse/pkg/config"
	"github.com/Ruscigno/JobPulse/pkg/errors"
	"go.uber.org/zap"
)

const (
	DestinationDrive = "drive"
	DestinationS3    = "s3"
)

// Result identifies the uploaded object.
type Result struct {
	Destination string `json:"destination"`
	ID          string `json:"id"`
	Name        string `json:"name"`
	Link        string `json:"link,omitempty"`
}

// Uploader copies a local file to a remote destination.
type Uploader interface {
	Upload(ctx context.Context, path string) (Result, error)
}

// New builds the uploader selected by cfg.Destination.
func New(ctx context.Context, cfg config.UploadConfig, logger *zap.Logger) (Uploader, error) {
	switch cfg.Destination {
	case DestinationDrive:
		u, err := NewDriveUploaderFromEnv(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return u, nil
	case DestinationS3:
		u, err := NewS3Uploader(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return u, nil
	case "":
		return nil, errors.NewAppError(errors.ErrCodeBadRequest, "upload destination is not configured")
	default:
		return nil, errors.NewAppError(errors.ErrCodeBadRequest, "unknown upload destination").
			WithDetails(cfg.Destination)
	}
}

func openLocal(path string) (*os.File, os.FileInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errors.WrapError(err, errors.ErrCodeNotFound, "file not found").WithDetails(path)
		}
		return nil, nil, errors.WrapError(err, errors.ErrCodeUploadFailed, "failed to open file").WithDetails(path)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, errors.WrapError(err, errors.ErrCodeUploadFailed, "failed to stat file").WithDetails(path)
	}
	if info.IsDir() {
		f.Close()
		return nil, nil, errors.NewAppError(errors.ErrCodeBadRequest, "path is a directory").WithDetails(path)
	}
	return f, info, nil
}
