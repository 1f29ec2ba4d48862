package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-checkout/core"
)

const EngineS3 = "S3StorageService"

const defaultS3Region = "us-east-1"

type S3Service struct {
	bucket   string
	region   string
	observer core.Observer
}

func NewS3Service(cfg core.StorageConfig, opts ...Option) (*S3Service, error) {
	bucket := strings.TrimSpace(cfg.S3.Bucket)
	if bucket == "" {
		return nil, core.NewServiceConstructionError(core.CapabilityStorage, core.StorageProviderS3, "S3 bucket is required")
	}
	region := strings.TrimSpace(cfg.S3.Region)
	if region == "" {
		region = defaultS3Region
	}
	resolved := buildOptions(opts)
	return &S3Service{
		bucket:   bucket,
		region:   region,
		observer: core.NewObserver(loggerName, resolved.logger, resolved.metrics),
	}, nil
}

func (*S3Service) Provider() string {
	return core.StorageProviderS3
}

func (*S3Service) EngineName() string {
	return EngineS3
}

func (*S3Service) IsDemo() bool {
	return false
}

func (s *S3Service) Upload(ctx context.Context, key string, _ string, _ []byte) (core.StoredAsset, error) {
	return core.StoredAsset{}, notConfigured(ctx, s.observer, core.StorageProviderS3, "upload", key)
}

func (s *S3Service) Delete(ctx context.Context, key string) error {
	return notConfigured(ctx, s.observer, core.StorageProviderS3, "delete", key)
}

// URL ignores transform options; S3 serves objects as stored.
func (s *S3Service) URL(key string, _ core.AssetURLOptions) string {
	normalized, err := NormalizeKey(key)
	if err != nil {
		return ""
	}
	return joinURL(fmt.Sprintf("https://%s.s3.%s.amazonaws.com", s.bucket, s.region), normalized)
}

func notConfigured(ctx context.Context, observer core.Observer, provider string, operation string, key string) error {
	startedAt := time.Now()
	err := fmt.Errorf("storage: %s %s client: %w", provider, operation, core.ErrNotConfigured)
	observer.ObserveOperation(ctx, startedAt, operation, err, map[string]any{
		"provider": provider,
		"key":      key,
	})
	return err
}

var (
	_ core.StorageService = (*S3Service)(nil)
	_ core.Engine         = (*S3Service)(nil)
)
