package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"musicfy/config"
	"musicfy/logger"
)

// Storage is a MinIO-backed object store for uploaded audio files and
// cover images. Songs persist the object URLs it returns.
type Storage struct {
	client   *minio.Client
	bucket   string
	endpoint string
	useSSL   bool
}

// New creates the MinIO client and makes sure the bucket exists.
func New(cfg *config.Config) (*Storage, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
		logger.Info("Created storage bucket", logger.String("bucket", cfg.MinioBucket))
	}

	return &Storage{
		client:   client,
		bucket:   cfg.MinioBucket,
		endpoint: cfg.MinioEndpoint,
		useSSL:   cfg.MinioUseSSL,
	}, nil
}

// UploadAudio stores an audio file under audio/ and returns its URL.
func (s *Storage) UploadAudio(ctx context.Context, filename, contentType string, r io.Reader, size int64) (string, error) {
	return s.upload(ctx, "audio", filename, contentType, r, size)
}

// UploadCover stores a cover image under covers/ and returns its URL.
func (s *Storage) UploadCover(ctx context.Context, filename, contentType string, r io.Reader, size int64) (string, error) {
	return s.upload(ctx, "covers", filename, contentType, r, size)
}

func (s *Storage) upload(ctx context.Context, prefix, filename, contentType string, r io.Reader, size int64) (string, error) {
	// uuid prefix keeps concurrent uploads of the same filename apart
	objectName := path.Join(prefix, uuid.NewString()+"-"+path.Base(filename))

	_, err := s.client.PutObject(ctx, s.bucket, objectName, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", objectName, err)
	}

	return s.ObjectURL(objectName), nil
}

// RemoveByURL deletes the object a previously returned URL points at.
// URLs from other stores are ignored.
func (s *Storage) RemoveByURL(ctx context.Context, url string) error {
	base := s.ObjectURL("")
	if !strings.HasPrefix(url, base) {
		return nil
	}
	return s.Remove(ctx, strings.TrimPrefix(url, base))
}

// Remove deletes an object by its name. Missing objects are not an error.
func (s *Storage) Remove(ctx context.Context, objectName string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove %s: %w", objectName, err)
	}
	return nil
}

// ObjectURL builds the public URL for an object in the bucket.
func (s *Storage) ObjectURL(objectName string) string {
	scheme := "http"
	if s.useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.endpoint, s.bucket, objectName)
}
