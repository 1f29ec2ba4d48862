package checkout

import (
	"context"

	"github.com/goliatone/go-checkout/core"
)

type AppConfig = core.AppConfig

type Mode = core.Mode

type ConfigStore = core.ConfigStore

type ConfigOption = core.ConfigOption

type PaymentService = core.PaymentService
type EmailService = core.EmailService
type StorageService = core.StorageService
type StatusUpdater = core.StatusUpdater

type ServiceStatusReport = core.ServiceStatusReport
type ServiceHealth = core.ServiceHealth
type ServiceValidation = core.ServiceValidation
type ProductionReadiness = core.ProductionReadiness
type ProductionChecklist = core.ProductionChecklist

const (
	ModeDemo       = core.ModeDemo
	ModeProduction = core.ModeProduction
)

var (
	WithEnvLookup       = core.WithEnvLookup
	WithEnvMap          = core.WithEnvMap
	WithDotenvFile      = core.WithDotenvFile
	WithOverrides       = core.WithOverrides
	WithConfigLogger    = core.WithConfigLogger
	MapError            = core.MapError
	IsDemoPaymentMethod = core.IsDemoPaymentMethod
)

func DefaultConfig(mode Mode) AppConfig {
	return core.DefaultConfig(mode)
}

func NewConfigStore(opts ...ConfigOption) *ConfigStore {
	return core.NewConfigStore(core.NewConfigResolver(opts...))
}

// ResolveConfig resolves and validates once without caching.
func ResolveConfig(ctx context.Context, opts ...ConfigOption) (AppConfig, error) {
	return core.NewConfigResolver(opts...).Resolve(ctx)
}

// ValidateProductionConfig reports the required production variables missing
// from the process environment.
func ValidateProductionConfig() ProductionReadiness {
	return core.ValidateProductionConfig(core.OSLookup())
}
