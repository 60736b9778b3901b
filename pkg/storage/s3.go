package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go-jobboard-backend/internal/domain"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// S3Provider represents the S3-compatible storage provider
type S3Provider string

const (
	S3ProviderAWS    S3Provider = "aws"
	S3ProviderWasabi S3Provider = "wasabi"
)

// S3Config holds configuration for S3-compatible storage
type S3Config struct {
	Provider        S3Provider
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Bucket          string
	// PublicBaseURL overrides the derived public address, e.g. a CDN in front of the bucket.
	PublicBaseURL string

	// Wasabi-specific settings
	WasabiEndpoint string // e.g., "s3.ap-southeast-1.wasabisys.com"
}

// WasabiEndpoints maps regions to Wasabi endpoints
var WasabiEndpoints = map[string]string{
	"us-east-1":      "s3.us-east-1.wasabisys.com",
	"us-east-2":      "s3.us-east-2.wasabisys.com",
	"us-west-1":      "s3.us-west-1.wasabisys.com",
	"eu-central-1":   "s3.eu-central-1.wasabisys.com",
	"eu-west-1":      "s3.eu-west-1.wasabisys.com",
	"eu-west-2":      "s3.eu-west-2.wasabisys.com",
	"ap-northeast-1": "s3.ap-northeast-1.wasabisys.com",
	"ap-northeast-2": "s3.ap-northeast-2.wasabisys.com",
	"ap-southeast-1": "s3.ap-southeast-1.wasabisys.com",
	"ap-southeast-2": "s3.ap-southeast-2.wasabisys.com",
}

// ResolveWasabiEndpoint fills WasabiEndpoint from the region table when unset.
func (c *S3Config) ResolveWasabiEndpoint() {
	if c.Provider != S3ProviderWasabi || c.WasabiEndpoint != "" {
		return
	}
	if endpoint, ok := WasabiEndpoints[c.Region]; ok {
		c.WasabiEndpoint = endpoint
		return
	}
	c.WasabiEndpoint = "s3.ap-southeast-1.wasabisys.com"
}

// S3Store implements domain.ObjectStore on AWS S3 or Wasabi.
type S3Store struct {
	client *s3.Client
	cfg    S3Config
}

var _ domain.ObjectStore = (*S3Store)(nil)

// NewS3Store creates an S3 client with the given config
// Supports both AWS S3 and Wasabi
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	cfg.ResolveWasabiEndpoint()

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var client *s3.Client
	switch cfg.Provider {
	case S3ProviderWasabi:
		// Wasabi requires custom endpoint and path-style addressing
		client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String("https://" + cfg.WasabiEndpoint)
			o.UsePathStyle = true
		})
	default:
		client = s3.NewFromConfig(awsCfg)
	}

	return &S3Store{client: client, cfg: cfg}, nil
}

// Ping checks the bucket is reachable by listing at most one key.
func (s *S3Store) Ping(ctx context.Context) error {
	_, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(s.cfg.Bucket),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return fmt.Errorf("failed to access bucket %s: %w", s.cfg.Bucket, err)
	}
	return nil
}

func (s *S3Store) Upload(ctx context.Context, path string, body io.Reader, size int64, opts domain.UploadOptions) (string, error) {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(path),
		Body:          body,
		ContentLength: aws.Int64(size),
	}
	if opts.ContentType != "" {
		input.ContentType = aws.String(opts.ContentType)
	}
	if opts.CacheControl != "" {
		input.CacheControl = aws.String(cacheControlHeader(opts.CacheControl))
	}
	if opts.NoOverwrite {
		input.IfNoneMatch = aws.String("*")
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "PreconditionFailed" {
			return "", fmt.Errorf("put object %q: %w", path, domain.ErrObjectExists)
		}
		return "", fmt.Errorf("put object %q: %w", path, err)
	}
	return path, nil
}

func (s *S3Store) PublicURL(path string) string {
	if s.cfg.PublicBaseURL != "" {
		return joinURL(s.cfg.PublicBaseURL, path)
	}
	if s.cfg.Provider == S3ProviderWasabi {
		return joinURL("https://"+s.cfg.WasabiEndpoint+"/"+s.cfg.Bucket, path)
	}
	return joinURL(fmt.Sprintf("https://%s.s3.%s.amazonaws.com", s.cfg.Bucket, s.cfg.Region), path)
}

func (s *S3Store) List(ctx context.Context, folder string) ([]domain.ObjectInfo, error) {
	prefix := folderPrefix(folder)
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.cfg.Bucket),
		Prefix: aws.String(prefix),
	})

	var objects []domain.ObjectInfo
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list objects under %q: %w", prefix, err)
		}
		for _, obj := range page.Contents {
			info := domain.ObjectInfo{Path: aws.ToString(obj.Key), Size: aws.ToInt64(obj.Size)}
			if obj.LastModified != nil {
				info.LastModified = *obj.LastModified
			}
			objects = append(objects, info)
		}
	}
	return objects, nil
}

func (s *S3Store) Remove(ctx context.Context, paths []string) error {
	identifiers := make([]types.ObjectIdentifier, 0, len(paths))
	for _, p := range paths {
		if strings.TrimSpace(p) == "" {
			continue
		}
		identifiers = append(identifiers, types.ObjectIdentifier{Key: aws.String(p)})
	}
	if len(identifiers) == 0 {
		return nil
	}

	out, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(s.cfg.Bucket),
		Delete: &types.Delete{Objects: identifiers, Quiet: aws.Bool(true)},
	})
	if err != nil {
		return fmt.Errorf("delete %d objects: %w", len(identifiers), err)
	}
	if len(out.Errors) > 0 {
		first := out.Errors[0]
		return fmt.Errorf("delete objects: %d failed, first %q: %s", len(out.Errors), aws.ToString(first.Key), aws.ToString(first.Message))
	}
	return nil
}
