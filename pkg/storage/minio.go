package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/pkg/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOConfig contains connection options for a self-hosted MinIO bucket.
type MinIOConfig struct {
	Endpoint         string
	AccessKeyID      string
	SecretAccessKey  string
	UseSSL           bool
	Region           string
	Bucket           string
	PublicBaseURL    string // e.g. "https://files.example.com/resumes"
	AutoCreateBucket bool
}

// MinIOStore implements domain.ObjectStore on MinIO.
type MinIOStore struct {
	client *minio.Client
	cfg    MinIOConfig
}

var _ domain.ObjectStore = (*MinIOStore)(nil)

// NewMinIOStore connects to MinIO and makes sure the bucket exists.
func NewMinIOStore(ctx context.Context, cfg MinIOConfig) (*MinIOStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(checkCtx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %q: %w", cfg.Bucket, err)
	}
	if !exists {
		if !cfg.AutoCreateBucket {
			return nil, fmt.Errorf("bucket %q does not exist (auto create disabled)", cfg.Bucket)
		}
		if err := client.MakeBucket(checkCtx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("make bucket %q: %w", cfg.Bucket, err)
		}
	}

	return &MinIOStore{client: client, cfg: cfg}, nil
}

// Upload writes the object. MinIO has no conditional put here, so
// NoOverwrite is a stat-then-put check and can race with a concurrent writer.
func (s *MinIOStore) Upload(ctx context.Context, path string, body io.Reader, size int64, opts domain.UploadOptions) (string, error) {
	if opts.NoOverwrite {
		_, err := s.client.StatObject(ctx, s.cfg.Bucket, path, minio.StatObjectOptions{})
		if err == nil {
			return "", fmt.Errorf("put object %q: %w", path, domain.ErrObjectExists)
		}
		if !IsNoSuchKey(err) {
			return "", fmt.Errorf("stat object %q: %w", path, err)
		}
	}

	putOpts := minio.PutObjectOptions{ContentType: opts.ContentType}
	if opts.CacheControl != "" {
		putOpts.CacheControl = cacheControlHeader(opts.CacheControl)
	}
	if _, err := s.client.PutObject(ctx, s.cfg.Bucket, path, body, size, putOpts); err != nil {
		return "", fmt.Errorf("put object %q: %w", path, err)
	}
	return path, nil
}

func (s *MinIOStore) PublicURL(path string) string {
	if s.cfg.PublicBaseURL != "" {
		return joinURL(s.cfg.PublicBaseURL, path)
	}
	scheme := "http"
	if s.cfg.UseSSL {
		scheme = "https"
	}
	return joinURL(fmt.Sprintf("%s://%s/%s", scheme, s.cfg.Endpoint, s.cfg.Bucket), path)
}

func (s *MinIOStore) List(ctx context.Context, folder string) ([]domain.ObjectInfo, error) {
	prefix := folderPrefix(folder)
	objCh := s.client.ListObjects(ctx, s.cfg.Bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})

	var objects []domain.ObjectInfo
	for object := range objCh {
		if object.Err != nil {
			return nil, fmt.Errorf("list objects under %q: %w", prefix, object.Err)
		}
		objects = append(objects, domain.ObjectInfo{
			Path:         object.Key,
			Size:         object.Size,
			LastModified: object.LastModified,
		})
	}
	return objects, nil
}

// Remove deletes every path; keys that are already gone count as removed.
func (s *MinIOStore) Remove(ctx context.Context, paths []string) error {
	objectsCh := make(chan minio.ObjectInfo, len(paths))
	for _, p := range paths {
		if strings.TrimSpace(p) != "" {
			objectsCh <- minio.ObjectInfo{Key: p}
		}
	}
	close(objectsCh)

	var failed []string
	for rmErr := range s.client.RemoveObjects(ctx, s.cfg.Bucket, objectsCh, minio.RemoveObjectsOptions{}) {
		if rmErr.Err == nil || IsNoSuchKey(rmErr.Err) {
			continue
		}
		failed = append(failed, rmErr.ObjectName)
		logger.Log.Error("remove minio object failed",
			"object", rmErr.ObjectName,
			"error", rmErr.Err,
		)
	}
	if len(failed) > 0 {
		return fmt.Errorf("remove objects: %d failed (%s)", len(failed), strings.Join(failed, ", "))
	}
	return nil
}
