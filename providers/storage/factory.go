package storage

import (
	"strings"

	"github.com/goliatone/go-checkout/core"
)

// New dispatches on cfg.Provider; an empty provider selects local storage.
func New(cfg core.StorageConfig, opts ...Option) (core.StorageService, error) {
	switch ProviderName(cfg) {
	case core.StorageProviderLocal:
		service, err := NewLocalService(cfg, opts...)
		if err != nil {
			return nil, err
		}
		return service, nil
	case core.StorageProviderCloudinary:
		service, err := NewCloudinaryService(cfg, opts...)
		if err != nil {
			return nil, err
		}
		return service, nil
	case core.StorageProviderS3:
		service, err := NewS3Service(cfg, opts...)
		if err != nil {
			return nil, err
		}
		return service, nil
	default:
		return nil, core.NewUnsupportedProviderError(core.CapabilityStorage, cfg.Provider)
	}
}

func ProviderName(cfg core.StorageConfig) string {
	name := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if name == "" {
		return core.StorageProviderLocal
	}
	return name
}

func EngineFor(cfg core.StorageConfig) string {
	switch ProviderName(cfg) {
	case core.StorageProviderLocal:
		return EngineLocal
	case core.StorageProviderCloudinary:
		return EngineCloudinary
	case core.StorageProviderS3:
		return EngineS3
	default:
		return ""
	}
}
