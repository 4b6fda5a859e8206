package upload

import (
	"context"
	"fmt"
	"path"
	"path/filepath"

	"github.com/Ruscigno/JobPulse/pkg/config"
	"github.com/Ruscigno/JobPulse/pkg/errors"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Uploader puts exports under bucket/prefix.
type S3Uploader struct {
	client s3API
	bucket string
	prefix string
	logger *zap.Logger
}

// NewS3Uploader loads the default AWS chain, overridden by the region and
// static keys in cfg when they are set.
func NewS3Uploader(ctx context.Context, cfg config.UploadConfig, logger *zap.Logger) (*S3Uploader, error) {
	if cfg.S3Bucket == "" {
		return nil, errors.NewAppError(errors.ErrCodeBadRequest, "s3 bucket is not configured")
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.S3Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.S3Region))
	}
	if cfg.S3AccessKey != "" && cfg.S3SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrCodeCredentialsMissing, "failed to load aws config")
	}
	return newS3Uploader(s3.NewFromConfig(awsCfg), cfg.S3Bucket, cfg.S3Prefix, logger), nil
}

func newS3Uploader(client s3API, bucket, prefix string, logger *zap.Logger) *S3Uploader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &S3Uploader{client: client, bucket: bucket, prefix: prefix, logger: logger}
}

// Key returns the object key for a local file.
func (u *S3Uploader) Key(localPath string) string {
	return path.Join(u.prefix, filepath.Base(localPath))
}

// Upload puts the file at path into the bucket.
func (u *S3Uploader) Upload(ctx context.Context, localPath string) (Result, error) {
	f, info, err := openLocal(localPath)
	if err != nil {
		return Result{}, err
	}
	defer f.Close()

	key := u.Key(localPath)
	out, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String("text/csv"),
	})
	if err != nil {
		return Result{}, errors.WrapError(err, errors.ErrCodeUploadFailed, "failed to put object").
			WithMetadata("bucket", u.bucket).
			WithMetadata("key", key)
	}

	link := fmt.Sprintf("s3://%s/%s", u.bucket, key)
	u.logger.Info("File uploaded", zap.String("link", link))
	return Result{
		Destination: DestinationS3,
		ID:          aws.ToString(out.ETag),
		Name:        key,
		Link:        link,
	}, nil
}
