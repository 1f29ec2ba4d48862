package storage

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goliatone/go-checkout/core"
)

const EngineLocal = "LocalStorageService"

// LocalService stores assets under a base directory and serves them from a
// public URL prefix.
type LocalService struct {
	root      string
	publicURL string
	logger    core.Logger
	observer  core.Observer
}

func NewLocalService(cfg core.StorageConfig, opts ...Option) (*LocalService, error) {
	root := strings.TrimSpace(cfg.Local.Path)
	if root == "" {
		return nil, core.NewServiceConstructionError(core.CapabilityStorage, core.StorageProviderLocal, "Local storage path is required")
	}
	resolved := buildOptions(opts)
	return &LocalService{
		root:      filepath.Clean(root),
		publicURL: strings.TrimSpace(cfg.Local.PublicURL),
		logger:    resolved.logger,
		observer:  core.NewObserver(loggerName, resolved.logger, resolved.metrics),
	}, nil
}

func (*LocalService) Provider() string {
	return core.StorageProviderLocal
}

func (*LocalService) EngineName() string {
	return EngineLocal
}

// IsDemo is true: local disk is the simulation stand-in for a CDN.
func (*LocalService) IsDemo() bool {
	return true
}

func (s *LocalService) Root() string {
	return s.root
}

func (s *LocalService) Upload(ctx context.Context, key string, contentType string, data []byte) (asset core.StoredAsset, err error) {
	startedAt := time.Now()
	defer func() {
		s.observer.ObserveOperation(ctx, startedAt, "upload", err, map[string]any{
			"provider": core.StorageProviderLocal,
			"key":      key,
			"size":     len(data),
		})
	}()

	normalized, err := NormalizeKey(key)
	if err != nil {
		return core.StoredAsset{}, err
	}
	if err := ctx.Err(); err != nil {
		return core.StoredAsset{}, err
	}
	target := filepath.Join(s.root, filepath.FromSlash(normalized))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return core.StoredAsset{}, err
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return core.StoredAsset{}, err
	}
	return core.StoredAsset{
		Key:         normalized,
		URL:         s.URL(normalized, core.AssetURLOptions{}),
		Size:        int64(len(data)),
		ContentType: strings.TrimSpace(contentType),
		Provider:    core.StorageProviderLocal,
	}, nil
}

// Delete is a no-op for keys that do not exist.
func (s *LocalService) Delete(ctx context.Context, key string) error {
	normalized, err := NormalizeKey(key)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	err = os.Remove(filepath.Join(s.root, filepath.FromSlash(normalized)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// URL ignores transform options; local assets are served as stored.
func (s *LocalService) URL(key string, _ core.AssetURLOptions) string {
	normalized, err := NormalizeKey(key)
	if err != nil {
		return ""
	}
	return joinURL(s.publicURL, normalized)
}

var (
	_ core.StorageService = (*LocalService)(nil)
	_ core.Engine         = (*LocalService)(nil)
)
