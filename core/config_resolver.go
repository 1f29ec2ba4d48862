package core

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/goliatone/go-config/cfgx"
	glog "github.com/goliatone/go-logger/glog"
	opts "github.com/goliatone/go-options"
)

type RawConfigLoader interface {
	LoadRaw(ctx context.Context) (map[string]any, error)
}

// ConfigResolver builds an AppConfig from four layers: mode defaults, an
// optional dotenv file, the process environment and runtime overrides.
type ConfigResolver struct {
	lookup     LookupFunc
	dotenvPath string
	overrides  map[string]any
	logger     Logger
}

type ConfigOption func(*ConfigResolver)

func WithEnvLookup(lookup LookupFunc) ConfigOption {
	return func(r *ConfigResolver) {
		if lookup != nil {
			r.lookup = lookup
		}
	}
}

func WithEnvMap(values map[string]string) ConfigOption {
	return WithEnvLookup(MapLookup(values))
}

func WithDotenvFile(path string) ConfigOption {
	return func(r *ConfigResolver) {
		r.dotenvPath = strings.TrimSpace(path)
	}
}

// WithOverrides applies a runtime layer on top of the environment, using the
// same nested keys as the koanf tags of AppConfig.
func WithOverrides(overrides map[string]any) ConfigOption {
	return func(r *ConfigResolver) {
		r.overrides = copyAnyMap(overrides)
	}
}

func WithConfigLogger(logger Logger) ConfigOption {
	return func(r *ConfigResolver) {
		r.logger = logger
	}
}

func NewConfigResolver(options ...ConfigOption) *ConfigResolver {
	resolver := &ConfigResolver{lookup: OSLookup()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(resolver)
	}
	if resolver.dotenvPath == "" {
		if path, ok := lookupValue(resolver.lookup, EnvDotenvFile); ok {
			resolver.dotenvPath = strings.TrimSpace(path)
		}
	}
	resolver.logger = glog.Ensure(resolver.logger)
	return resolver
}

// Resolve parses and validates the configuration, failing on the first
// violation.
func (r *ConfigResolver) Resolve(ctx context.Context) (AppConfig, error) {
	if r == nil {
		return AppConfig{}, fmt.Errorf("core: config resolver is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	dotenv, err := ReadDotenv(r.dotenvPath)
	if err != nil {
		return AppConfig{}, fmt.Errorf("core: read dotenv %s: %w", r.dotenvPath, err)
	}
	dotenvLookup := MapLookup(dotenv)

	mode, err := ResolveMode(ChainLookup(r.lookup, dotenvLookup))
	if err != nil {
		return AppConfig{}, err
	}
	defaults := DefaultConfig(mode)

	dotenvLayer, err := NewEnvRawConfigLoader(dotenvLookup).LoadRaw(ctx)
	if err != nil {
		return AppConfig{}, err
	}
	envLayer, err := NewEnvRawConfigLoader(r.lookup).LoadRaw(ctx)
	if err != nil {
		return AppConfig{}, err
	}

	stack, err := opts.NewStack(
		opts.NewLayer(
			opts.NewScope("defaults", 0),
			ConfigToMap(defaults),
			opts.WithSnapshotID[map[string]any]("defaults"),
		),
		opts.NewLayer(
			opts.NewScope("dotenv", 5),
			dotenvLayer,
			opts.WithSnapshotID[map[string]any]("dotenv"),
		),
		opts.NewLayer(
			opts.NewScope("environment", 10),
			envLayer,
			opts.WithSnapshotID[map[string]any]("environment"),
		),
		opts.NewLayer(
			opts.NewScope("runtime", 20),
			copyAnyMap(r.overrides),
			opts.WithSnapshotID[map[string]any]("runtime"),
		),
	)
	if err != nil {
		return AppConfig{}, fmt.Errorf("core: options stack build failed: %w", err)
	}
	merged, err := stack.Merge()
	if err != nil {
		return AppConfig{}, fmt.Errorf("core: options merge failed: %w", err)
	}

	resolved, err := cfgx.Build[AppConfig](merged.Value, cfgx.WithDefaults(defaults))
	if err != nil {
		return AppConfig{}, fmt.Errorf("core: build config: %w", err)
	}
	resolved.Mode = mode
	if err := resolved.Validate(); err != nil {
		r.logger.Error("configuration rejected", "error", err.Error())
		return AppConfig{}, err
	}
	r.logger.Debug("configuration resolved", "mode", string(resolved.Mode))
	return resolved.Clone(), nil
}

// ConfigStore caches the resolved configuration until Reset.
type ConfigStore struct {
	mu       sync.Mutex
	resolver *ConfigResolver
	cached   *AppConfig
}

func NewConfigStore(resolver *ConfigResolver) *ConfigStore {
	if resolver == nil {
		resolver = NewConfigResolver()
	}
	return &ConfigStore{resolver: resolver}
}

func (s *ConfigStore) Get(ctx context.Context) (AppConfig, error) {
	if s == nil {
		return AppConfig{}, fmt.Errorf("core: config store is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cached != nil {
		return s.cached.Clone(), nil
	}
	cfg, err := s.resolver.Resolve(ctx)
	if err != nil {
		return AppConfig{}, err
	}
	s.cached = &cfg
	return cfg.Clone(), nil
}

func (s *ConfigStore) Reset() {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()
}

// Lookup exposes the environment source used by the resolver.
func (s *ConfigStore) Lookup() LookupFunc {
	if s == nil || s.resolver == nil {
		return OSLookup()
	}
	return s.resolver.lookup
}

// ConfigToMap renders a config as the nested map shape consumed by cfgx.
func ConfigToMap(cfg AppConfig) map[string]any {
	return map[string]any{
		"mode": string(cfg.Mode),
		"database": map[string]any{
			"url":   cfg.Database.URL,
			"debug": cfg.Database.Debug,
		},
		"auth": map[string]any{
			"jwt_secret":     cfg.Auth.JWTSecret,
			"session_secret": cfg.Auth.SessionSecret,
			"url":            cfg.Auth.URL,
		},
		"payment": map[string]any{
			"demo": map[string]any{
				"success_rate":        cfg.Payment.Demo.SuccessRate,
				"processing_delay":    cfg.Payment.Demo.ProcessingDelay,
				"enable_failures":     cfg.Payment.Demo.EnableFailures,
				"fail_cards":          append([]string(nil), cfg.Payment.Demo.FailCards...),
				"success_cards":       append([]string(nil), cfg.Payment.Demo.SuccessCards...),
				"auto_advance_orders": cfg.Payment.Demo.AutoAdvanceOrders,
				"order_advance_delay": cfg.Payment.Demo.OrderAdvanceDelay,
			},
			"stripe": map[string]any{
				"publishable_key": cfg.Payment.Stripe.PublishableKey,
				"secret_key":      cfg.Payment.Stripe.SecretKey,
				"webhook_secret":  cfg.Payment.Stripe.WebhookSecret,
			},
		},
		"email": map[string]any{
			"service":   cfg.Email.Service,
			"from_name": cfg.Email.FromName,
			"sendgrid": map[string]any{
				"api_key":    cfg.Email.SendGrid.APIKey,
				"from_email": cfg.Email.SendGrid.FromEmail,
			},
			"ses": map[string]any{
				"region":     cfg.Email.SES.Region,
				"from_email": cfg.Email.SES.FromEmail,
			},
		},
		"cms": map[string]any{
			"enabled":  cfg.CMS.Enabled,
			"provider": cfg.CMS.Provider,
			"endpoint": cfg.CMS.Endpoint,
			"api_key":  cfg.CMS.APIKey,
		},
		"storage": map[string]any{
			"provider": cfg.Storage.Provider,
			"local": map[string]any{
				"path":       cfg.Storage.Local.Path,
				"public_url": cfg.Storage.Local.PublicURL,
			},
			"cloudinary": map[string]any{
				"cloud_name": cfg.Storage.Cloudinary.CloudName,
				"api_key":    cfg.Storage.Cloudinary.APIKey,
				"api_secret": cfg.Storage.Cloudinary.APISecret,
			},
			"s3": map[string]any{
				"bucket": cfg.Storage.S3.Bucket,
				"region": cfg.Storage.S3.Region,
			},
		},
		"monitoring": map[string]any{
			"enabled":    cfg.Monitoring.Enabled,
			"sentry_dsn": cfg.Monitoring.SentryDSN,
			"log_level":  cfg.Monitoring.LogLevel,
		},
	}
}

func copyAnyMap(in map[string]any) map[string]any {
	if len(in) == 0 {
		return map[string]any{}
	}
	out := make(map[string]any, len(in))
	for key, value := range in {
		if nested, ok := value.(map[string]any); ok {
			out[key] = copyAnyMap(nested)
			continue
		}
		out[key] = value
	}
	return out
}
