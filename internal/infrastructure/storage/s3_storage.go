// Package storage provides an S3-compatible archive for rendered documents.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	infraconfig "github.com/tesoreria/backend/internal/infrastructure/config"
	"github.com/tesoreria/backend/internal/infrastructure/rendering"
)

// Ensure S3DocumentArchive implements PDFStorage
var _ rendering.PDFStorage = (*S3DocumentArchive)(nil)

// S3DocumentArchive stores rendered receipts and cash-cut reports in an
// S3-compatible object store (AWS S3, MinIO, etc.). Objects are keyed
// year/month/filename, mirroring the filesystem archive layout.
type S3DocumentArchive struct {
	client            *s3.Client
	presignClient     *s3.PresignClient
	bucket            string
	presignExpiration time.Duration
	logger            *zap.Logger
}

// S3DocumentArchiveOption is a functional option for configuring S3DocumentArchive
type S3DocumentArchiveOption func(*S3DocumentArchive)

// WithLogger sets a custom logger for S3DocumentArchive
func WithLogger(logger *zap.Logger) S3DocumentArchiveOption {
	return func(s *S3DocumentArchive) {
		s.logger = logger
	}
}

// WithPresignExpiration sets a custom presign expiration duration
func WithPresignExpiration(d time.Duration) S3DocumentArchiveOption {
	return func(s *S3DocumentArchive) {
		s.presignExpiration = d
	}
}

// NewS3DocumentArchive creates a new S3DocumentArchive from configuration.
// It supports any S3-compatible storage backend.
func NewS3DocumentArchive(cfg *infraconfig.StorageConfig, opts ...S3DocumentArchiveOption) (*S3DocumentArchive, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if cfg.AccessKey == "" {
		return nil, errors.New("storage access key is required")
	}
	if cfg.SecretKey == "" {
		return nil, errors.New("storage secret key is required")
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "http://localhost:9000"
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		if cfg.UseSSL {
			endpoint = "https://" + endpoint
		} else {
			endpoint = "http://" + endpoint
		}
	}
	if _, err := url.Parse(endpoint); err != nil {
		return nil, fmt.Errorf("invalid storage endpoint: %w", err)
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		o.BaseEndpoint = aws.String(endpoint)
	})

	archive := &S3DocumentArchive{
		client:            client,
		presignClient:     s3.NewPresignClient(client),
		bucket:            cfg.Bucket,
		presignExpiration: cfg.PresignExpiration,
		logger:            zap.NewNop(),
	}

	for _, opt := range opts {
		opt(archive)
	}

	if archive.presignExpiration == 0 {
		archive.presignExpiration = 15 * time.Minute
	}

	return archive, nil
}

// EnsureBucket creates the bucket if it doesn't exist.
// Call this during application startup to ensure the bucket is ready.
func (s *S3DocumentArchive) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	s.logger.Info("Creating document archive bucket", zap.String("bucket", s.bucket))
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		// Another instance may have created it first.
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &alreadyOwned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}

	s.logger.Info("Document archive bucket created", zap.String("bucket", s.bucket))
	return nil
}

// objectKey builds the year/month/filename key for a document
func objectKey(filename string, now time.Time) string {
	return path.Join(
		fmt.Sprintf("%04d", now.Year()),
		fmt.Sprintf("%02d", int(now.Month())),
		filename,
	)
}

// validFilename rejects empty names and anything resembling a path
func validFilename(filename string) bool {
	if filename == "" {
		return false
	}
	if strings.Contains(filename, "/") || strings.Contains(filename, "\\") || strings.Contains(filename, "..") {
		return false
	}
	return true
}

// Store uploads a rendered PDF to the archive
func (s *S3DocumentArchive) Store(ctx context.Context, req *rendering.StoreRequest) (*rendering.StoreResult, error) {
	if req == nil {
		return nil, errors.New("store request is required")
	}
	if !validFilename(req.Filename) {
		return nil, fmt.Errorf("invalid filename: %q", req.Filename)
	}
	if len(req.PDFData) == 0 {
		return nil, errors.New("pdf data is empty")
	}

	key := objectKey(req.Filename, time.Now().UTC())
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(req.PDFData),
		ContentType: aws.String("application/pdf"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload document: %w", err)
	}

	s.logger.Info("document archived",
		zap.String("key", key),
		zap.Int("size", len(req.PDFData)))

	return &rendering.StoreResult{
		Path: key,
		URL:  s.GetURL(key),
		Size: int64(len(req.PDFData)),
	}, nil
}

// Get retrieves a stored document by its archive key
func (s *S3DocumentArchive) Get(ctx context.Context, p string) (io.ReadCloser, error) {
	if p == "" {
		return nil, errors.New("document path is required")
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(p),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, fmt.Errorf("document not found: %s", p)
		}
		return nil, fmt.Errorf("failed to fetch document: %w", err)
	}
	return out.Body, nil
}

// Delete removes a stored document. Deleting a missing key succeeds.
func (s *S3DocumentArchive) Delete(ctx context.Context, p string) error {
	if p == "" {
		return errors.New("document path is required")
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(p),
	})
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

// CleanupOlderThan removes archived documents past the retention age.
// Returns the number of objects removed.
func (s *S3DocumentArchive) CleanupOlderThan(ctx context.Context, age time.Duration) (int, error) {
	cutoff := time.Now().Add(-age)
	removed := 0

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return removed, fmt.Errorf("failed to list documents: %w", err)
		}
		for _, obj := range page.Contents {
			if obj.Key == nil || obj.LastModified == nil {
				continue
			}
			if !strings.HasSuffix(*obj.Key, ".pdf") {
				continue
			}
			if obj.LastModified.After(cutoff) {
				continue
			}
			if err := s.Delete(ctx, *obj.Key); err != nil {
				s.logger.Warn("failed to remove expired document",
					zap.String("key", *obj.Key),
					zap.Error(err))
				continue
			}
			removed++
		}
	}

	if removed > 0 {
		s.logger.Info("expired documents removed", zap.Int("count", removed))
	}
	return removed, nil
}

// GetURL returns a presigned download URL for a stored document. An empty
// string is returned when presigning fails; callers treat that as no URL.
func (s *S3DocumentArchive) GetURL(p string) string {
	if p == "" {
		return ""
	}

	presignReq, err := s.presignClient.PresignGetObject(context.Background(), &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(p),
	}, s3.WithPresignExpires(s.presignExpiration))
	if err != nil {
		s.logger.Warn("failed to presign document URL",
			zap.String("key", p),
			zap.Error(err))
		return ""
	}
	return presignReq.URL
}

// GetBucket returns the bucket name
func (s *S3DocumentArchive) GetBucket() string {
	return s.bucket
}
