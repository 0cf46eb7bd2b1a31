package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"alfredoptarigan/resume-matcher/internal/config"
)

const driveViewURL = "https://drive.google.com/file/d/%s/view"

// DriveService downloads a resume the caller shared from Google Drive.
type DriveService interface {
	Download(ctx context.Context, fileID, accessToken string) ([]byte, error)
	Link(fileID string) string
}

type driveService struct {
	baseURL     string
	client      *http.Client
	maxFileSize int64
	logger      *zap.Logger
}

func NewDriveService(cfg config.DriveConfig, maxFileSize int64, client *http.Client, log *zap.Logger) DriveService {
	if client == nil {
		client = &http.Client{}
	}
	return &driveService{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		client:      client,
		maxFileSize: maxFileSize,
		logger:      log,
	}
}

func (d *driveService) Download(ctx context.Context, fileID, accessToken string) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/files/%s?alt=media", d.baseURL, url.PathEscape(fileID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, newError(KindFetchFailed, err, "failed to build drive request")
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	d.logger.Debug("downloading resume from drive", zap.String("file_id", fileID))

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, newError(KindFetchFailed, err, "failed to download file from Google Drive")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, newError(KindFetchFailed,
			fmt.Errorf("drive returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet))),
			"failed to download file from Google Drive")
	}

	return readLimited(resp.Body, d.maxFileSize)
}

func (d *driveService) Link(fileID string) string {
	return fmt.Sprintf(driveViewURL, url.PathEscape(fileID))
}

// ObjectGetter is the part of *s3.Client the object storage source needs.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// ObjectStorageService downloads resumes previously uploaded to an
// S3-compatible bucket.
type ObjectStorageService interface {
	Download(ctx context.Context, key string) ([]byte, error)
	Link(key string) string
}

type objectStorageService struct {
	client      ObjectGetter
	bucket      string
	maxFileSize int64
}

func NewObjectStorageService(client ObjectGetter, bucket string, maxFileSize int64) ObjectStorageService {
	return &objectStorageService{
		client:      client,
		bucket:      bucket,
		maxFileSize: maxFileSize,
	}
}

// NewS3Client builds a path-style client for AWS S3 or any compatible store
// (R2, MinIO) when Endpoint is set.
func NewS3Client(ctx context.Context, cfg config.ObjectStorageConfig) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load s3 config: %w", err)
	}

	if cfg.Endpoint != "" {
		awsCfg.BaseEndpoint = aws.String(cfg.Endpoint)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
	}), nil
}

func (o *objectStorageService) Download(ctx context.Context, key string) ([]byte, error) {
	out, err := o.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(o.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, newError(KindFetchFailed, err, "failed to download %s from object storage", key)
	}
	defer out.Body.Close()

	return readLimited(out.Body, o.maxFileSize)
}

func (o *objectStorageService) Link(key string) string {
	return fmt.Sprintf("s3://%s/%s", o.bucket, key)
}

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, newError(KindFetchFailed, err, "failed to read remote file")
		}
		return data, nil
	}

	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, newError(KindFetchFailed, err, "failed to read remote file")
	}
	if int64(len(data)) > limit {
		return nil, invalidInput("File too large. Max size: %d bytes", limit)
	}
	return data, nil
}
