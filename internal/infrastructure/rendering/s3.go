package rendering

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/ipms/backend/internal/infrastructure/config"
)

// S3ArtifactStorage stores rendered report artifacts in an S3 bucket.
// It works against AWS proper and S3-compatible stores like MinIO.
type S3ArtifactStorage struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3ArtifactStorage builds an S3 client from the storage configuration
func NewS3ArtifactStorage(ctx context.Context, cfg config.StorageConfig) (*S3ArtifactStorage, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3Region),
	}
	if cfg.S3AccessKey != "" && cfg.S3SecretKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = &cfg.S3Endpoint
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &S3ArtifactStorage{
		client: client,
		bucket: cfg.S3Bucket,
		prefix: strings.Trim(cfg.S3Prefix, "/"),
	}, nil
}

// EnsureBucket creates the bucket if it does not exist yet
func (s *S3ArtifactStorage) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: &s.bucket})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	if !errors.As(err, &notFound) {
		return fmt.Errorf("failed to check bucket %s: %w", s.bucket, err)
	}

	if _, err := s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: &s.bucket}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}
	return nil
}

// Store uploads the artifact and returns its object key
func (s *S3ArtifactStorage) Store(ctx context.Context, filename string, data []byte) (string, error) {
	if filename == "" || containsDotDot(filename) {
		return "", NewRenderError(ErrCodeStorageFailed, "invalid filename: "+filename, nil)
	}

	key := s.objectKey(filename)
	contentType := contentTypeFor(filename)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &key,
		Body:        bytes.NewReader(data),
		ContentType: &contentType,
	})
	if err != nil {
		return "", NewRenderError(ErrCodeStorageFailed, "failed to upload artifact", err)
	}
	return key, nil
}

// Get downloads a stored artifact
func (s *S3ArtifactStorage) Get(ctx context.Context, filename string) ([]byte, error) {
	key := s.objectKey(filename)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	})
	if err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to download artifact", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to read artifact body", err)
	}
	return data, nil
}

// Delete removes a stored artifact
func (s *S3ArtifactStorage) Delete(ctx context.Context, filename string) error {
	key := s.objectKey(filename)
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	})
	if err != nil {
		return NewRenderError(ErrCodeStorageFailed, "failed to delete artifact", err)
	}
	return nil
}

// CleanupOlderThan removes artifacts whose last-modified time is older
// than the given age.
func (s *S3ArtifactStorage) CleanupOlderThan(ctx context.Context, age time.Duration) (int, error) {
	cutoff := time.Now().Add(-age)
	removed := 0

	var prefix *string
	if s.prefix != "" {
		p := s.prefix + "/"
		prefix = &p
	}

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: &s.bucket,
		Prefix: prefix,
	})
	for paginator.HasMorePages() {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			return removed, NewRenderError(ErrCodeStorageFailed, "failed to list artifacts", err)
		}
		for _, obj := range out.Contents {
			if obj.Key == nil || obj.LastModified == nil {
				continue
			}
			if !artifactExtensions[strings.ToLower(path.Ext(*obj.Key))] {
				continue
			}
			if obj.LastModified.Before(cutoff) {
				if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
					Bucket: &s.bucket,
					Key:    obj.Key,
				}); err == nil {
					removed++
				}
			}
		}
	}
	return removed, nil
}

func (s *S3ArtifactStorage) objectKey(filename string) string {
	if s.prefix == "" {
		return filename
	}
	return s.prefix + "/" + filename
}

func contentTypeFor(filename string) string {
	switch strings.ToLower(path.Ext(filename)) {
	case ".pdf":
		return "application/pdf"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".csv":
		return "text/csv"
	default:
		return "application/octet-stream"
	}
}
