package storage

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-checkout/core"
)

const EngineCloudinary = "CloudinaryStorageService"

const cloudinaryBaseURL = "https://res.cloudinary.com"

type CloudinaryService struct {
	cloudName string
	observer  core.Observer
}

func NewCloudinaryService(cfg core.StorageConfig, opts ...Option) (*CloudinaryService, error) {
	cloudName := strings.TrimSpace(cfg.Cloudinary.CloudName)
	if cloudName == "" {
		return nil, core.NewServiceConstructionError(core.CapabilityStorage, core.StorageProviderCloudinary, "Cloudinary cloud name is required")
	}
	resolved := buildOptions(opts)
	return &CloudinaryService{
		cloudName: cloudName,
		observer:  core.NewObserver(loggerName, resolved.logger, resolved.metrics),
	}, nil
}

func (*CloudinaryService) Provider() string {
	return core.StorageProviderCloudinary
}

func (*CloudinaryService) EngineName() string {
	return EngineCloudinary
}

func (*CloudinaryService) IsDemo() bool {
	return false
}

func (s *CloudinaryService) Upload(ctx context.Context, key string, _ string, _ []byte) (core.StoredAsset, error) {
	return core.StoredAsset{}, notConfigured(ctx, s.observer, core.StorageProviderCloudinary, "upload", key)
}

func (s *CloudinaryService) Delete(ctx context.Context, key string) error {
	return notConfigured(ctx, s.observer, core.StorageProviderCloudinary, "delete", key)
}

// URL renders a delivery URL, adding a transformation segment only when opts
// asks for one.
func (s *CloudinaryService) URL(key string, opts core.AssetURLOptions) string {
	normalized, err := NormalizeKey(key)
	if err != nil {
		return ""
	}
	base := fmt.Sprintf("%s/%s/image/upload", cloudinaryBaseURL, s.cloudName)
	if transforms := cloudinaryTransforms(opts); transforms != "" {
		base += "/" + transforms
	}
	return joinURL(base, normalized)
}

func cloudinaryTransforms(opts core.AssetURLOptions) string {
	parts := make([]string, 0, 5)
	if opts.Width > 0 {
		parts = append(parts, "w_"+strconv.Itoa(opts.Width))
	}
	if opts.Height > 0 {
		parts = append(parts, "h_"+strconv.Itoa(opts.Height))
	}
	if crop := strings.TrimSpace(opts.Crop); crop != "" {
		parts = append(parts, "c_"+crop)
	}
	if quality := strings.TrimSpace(opts.Quality); quality != "" {
		parts = append(parts, "q_"+quality)
	}
	if format := strings.TrimSpace(opts.Format); format != "" {
		parts = append(parts, "f_"+format)
	}
	return strings.Join(parts, ",")
}

var (
	_ core.StorageService = (*CloudinaryService)(nil)
	_ core.Engine         = (*CloudinaryService)(nil)
)
