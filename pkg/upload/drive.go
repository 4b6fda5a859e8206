package upload

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/Ruscigno/JobPulse/pkg/config"
	"github.com/Ruscigno/JobPulse/pkg/errors"
	"go.uber.org/zap"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const spreadsheetMimeType = "application/vnd.google-apps.spreadsheet"

// driveFiles is the slice of the Drive files API the uploader needs.
type driveFiles interface {
	Folder(ctx context.Context, id string) (*drive.File, error)
	Create(ctx context.Context, meta *drive.File, media io.Reader) (*drive.File, error)
}

type driveAPI struct {
	svc *drive.Service
}

func (d driveAPI) Folder(ctx context.Context, id string) (*drive.File, error) {
	return d.svc.Files.Get(id).
		Fields("id, name").
		SupportsAllDrives(true).
		Context(ctx).
		Do()
}

func (d driveAPI) Create(ctx context.Context, meta *drive.File, media io.Reader) (*drive.File, error) {
	return d.svc.Files.Create(meta).
		Media(media, googleapi.ContentType("text/csv")).
		Fields("id, name, webViewLink").
		SupportsAllDrives(true).
		Context(ctx).
		Do()
}

// DriveUploader uploads CSV exports to Google Drive, converted to a
// spreadsheet, optionally inside a shared folder.
type DriveUploader struct {
	files    driveFiles
	folderID string
	logger   *zap.Logger
}

// NewDriveUploader authenticates with a service account key.
func NewDriveUploader(ctx context.Context, credentialsJSON []byte, folderID string, logger *zap.Logger) (*DriveUploader, error) {
	if len(credentialsJSON) == 0 {
		return nil, errors.NewAppError(errors.ErrCodeCredentialsMissing, "drive credentials are empty")
	}
	svc, err := drive.NewService(ctx,
		option.WithCredentialsJSON(credentialsJSON),
		option.WithScopes(drive.DriveFileScope),
	)
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrCodeCredentialsMissing, "failed to create drive client")
	}
	return newDriveUploader(driveAPI{svc: svc}, folderID, logger), nil
}

// NewDriveUploaderFromEnv reads the service account key from the
// environment variable named by cfg.CredentialsEnv.
func NewDriveUploaderFromEnv(ctx context.Context, cfg config.UploadConfig, logger *zap.Logger) (*DriveUploader, error) {
	name := cfg.CredentialsEnv
	if name == "" {
		name = "GDRIVE_CREDENTIALS"
	}
	creds := os.Getenv(name)
	if creds == "" {
		return nil, errors.NewAppError(errors.ErrCodeCredentialsMissing, "drive credentials not found in environment").
			WithDetails(name)
	}
	return NewDriveUploader(ctx, []byte(creds), cfg.DriveFolderID, logger)
}

func newDriveUploader(files driveFiles, folderID string, logger *zap.Logger) *DriveUploader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DriveUploader{files: files, folderID: folderID, logger: logger}
}

// Upload creates a new spreadsheet from the CSV at path.
func (u *DriveUploader) Upload(ctx context.Context, path string) (Result, error) {
	f, _, err := openLocal(path)
	if err != nil {
		return Result{}, err
	}
	defer f.Close()

	meta := &drive.File{
		Name:     filepath.Base(path),
		MimeType: spreadsheetMimeType,
	}

	if u.folderID != "" {
		folder, err := u.files.Folder(ctx, u.folderID)
		if err != nil {
			return Result{}, errors.WrapError(err, errors.ErrCodeUploadDestinationUnavailable,
				"drive folder is not accessible, make sure it exists and is shared with the service account").
				WithMetadata("folder_id", u.folderID)
		}
		u.logger.Info("Uploading to drive folder",
			zap.String("folder", folder.Name),
			zap.String("folder_id", u.folderID))
		meta.Parents = []string{u.folderID}
	}

	created, err := u.files.Create(ctx, meta, f)
	if err != nil {
		return Result{}, errors.WrapError(err, errors.ErrCodeUploadFailed, "failed to upload file").
			WithDetails(meta.Name)
	}

	u.logger.Info("File uploaded",
		zap.String("name", created.Name),
		zap.String("id", created.Id),
		zap.String("link", created.WebViewLink))
	return Result{
		Destination: DestinationDrive,
		ID:          created.Id,
		Name:        created.Name,
		Link:        created.WebViewLink,
	}, nil
}
