package storage

import (
	"context"
	"fmt"

	"go-jobboard-backend/config"
	"go-jobboard-backend/internal/domain"
)

// NewFromConfig picks the object store implementation named by STORAGE_PROVIDER.
func NewFromConfig(ctx context.Context, cfg *config.Config) (domain.ObjectStore, error) {
	switch cfg.StorageProvider {
	case "minio":
		return NewMinIOStore(ctx, MinIOConfig{
			Endpoint:         cfg.MinIOEndpoint,
			AccessKeyID:      cfg.MinIOAccessKeyID,
			SecretAccessKey:  cfg.MinIOSecretAccessKey,
			UseSSL:           cfg.MinIOUseSSL,
			Region:           cfg.S3Region,
			Bucket:           cfg.ResumeBucket,
			PublicBaseURL:    cfg.StoragePublicBaseURL,
			AutoCreateBucket: cfg.MinIOAutoCreate,
		})
	case "aws", "wasabi", "":
		provider := S3ProviderAWS
		if cfg.StorageProvider == "wasabi" {
			provider = S3ProviderWasabi
		}
		return NewS3Store(ctx, S3Config{
			Provider:        provider,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			Region:          cfg.S3Region,
			Bucket:          cfg.ResumeBucket,
			PublicBaseURL:   cfg.StoragePublicBaseURL,
			WasabiEndpoint:  cfg.WasabiEndpoint,
		})
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.StorageProvider)
	}
}
