package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/oneday-labs/intake-api/pkg/config"
)

// MinioStorage stores images in an S3-compatible bucket.
type MinioStorage struct {
	client        *minio.Client
	bucket        string
	publicBaseURL string
	presignTTL    time.Duration
}

// NewMinioStorage connects to the object store and ensures the bucket exists.
func NewMinioStorage(cfg config.StorageConfig) (*MinioStorage, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connect object store: %w", err)
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}

	return &MinioStorage{
		client:        client,
		bucket:        cfg.MinioBucket,
		publicBaseURL: cfg.PublicBaseURL,
		presignTTL:    cfg.PresignTTL,
	}, nil
}

// Upload writes the object and returns a retrievable URL. A configured
// public base URL takes precedence over presigning.
func (s *MinioStorage) Upload(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, objectName, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		resp := minio.ToErrorResponse(err)
		return "", fmt.Errorf("put object %q: %s (%d)", objectName, resp.Message, resp.StatusCode)
	}

	if s.publicBaseURL != "" {
		return fmt.Sprintf("%s/%s/%s", s.publicBaseURL, s.bucket, url.PathEscape(objectName)), nil
	}

	signed, err := s.client.PresignedGetObject(ctx, s.bucket, objectName, s.presignTTL, nil)
	if err != nil {
		return "", fmt.Errorf("presign object %q: %w", objectName, err)
	}
	return signed.String(), nil
}
