package checkout

import (
	"context"
	"fmt"

	"github.com/goliatone/go-checkout/core"
	"github.com/goliatone/go-checkout/progression"
)

// Runtime wires the config store, service factory and order progression
// engine that make up a checkout backend.
type Runtime struct {
	Config      *core.ConfigStore
	Services    *ServiceFactory
	Progression *progression.Engine

	facade *Facade
}

type RuntimeOption func(*runtimeOptions)

type runtimeOptions struct {
	configOpts      []core.ConfigOption
	factoryOpts     []FactoryOption
	progressionOpts []progression.Option
	logger          core.Logger
	loggerProvider  core.LoggerProvider
	metrics         core.MetricsRecorder
	clock           core.Clock
}

func WithConfigOptions(opts ...core.ConfigOption) RuntimeOption {
	return func(o *runtimeOptions) {
		o.configOpts = append(o.configOpts, opts...)
	}
}

func WithFactoryOptions(opts ...FactoryOption) RuntimeOption {
	return func(o *runtimeOptions) {
		o.factoryOpts = append(o.factoryOpts, opts...)
	}
}

func WithProgressionOptions(opts ...progression.Option) RuntimeOption {
	return func(o *runtimeOptions) {
		o.progressionOpts = append(o.progressionOpts, opts...)
	}
}

// WithRuntimeLogger, WithRuntimeLoggerProvider, WithRuntimeMetrics and
// WithRuntimeClock reach every component the runtime builds.
func WithRuntimeLogger(logger core.Logger) RuntimeOption {
	return func(o *runtimeOptions) {
		o.logger = logger
	}
}

func WithRuntimeLoggerProvider(provider core.LoggerProvider) RuntimeOption {
	return func(o *runtimeOptions) {
		o.loggerProvider = provider
	}
}

func WithRuntimeMetrics(metrics core.MetricsRecorder) RuntimeOption {
	return func(o *runtimeOptions) {
		o.metrics = metrics
	}
}

func WithRuntimeClock(clock core.Clock) RuntimeOption {
	return func(o *runtimeOptions) {
		o.clock = clock
	}
}

// NewRuntime resolves configuration up front, so an invalid environment fails
// here rather than on first use.
func NewRuntime(ctx context.Context, updater core.StatusUpdater, opts ...RuntimeOption) (*Runtime, error) {
	resolved := runtimeOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(&resolved)
		}
	}

	configOpts := resolved.configOpts
	if resolved.logger != nil {
		configOpts = append([]core.ConfigOption{core.WithConfigLogger(resolved.logger)}, configOpts...)
	}
	store := core.NewConfigStore(core.NewConfigResolver(configOpts...))
	cfg, err := store.Get(ctx)
	if err != nil {
		return nil, err
	}

	var factoryOpts []FactoryOption
	var progressionOpts []progression.Option
	if resolved.logger != nil {
		factoryOpts = append(factoryOpts, WithLogger(resolved.logger))
		progressionOpts = append(progressionOpts, progression.WithLogger(resolved.logger))
	}
	if resolved.loggerProvider != nil {
		factoryOpts = append(factoryOpts, WithLoggerProvider(resolved.loggerProvider))
		progressionOpts = append(progressionOpts, progression.WithLoggerProvider(resolved.loggerProvider))
	}
	if resolved.metrics != nil {
		factoryOpts = append(factoryOpts, WithMetrics(resolved.metrics))
		progressionOpts = append(progressionOpts, progression.WithMetrics(resolved.metrics))
	}
	if resolved.clock != nil {
		factoryOpts = append(factoryOpts, WithClock(resolved.clock))
		progressionOpts = append(progressionOpts, progression.WithClock(resolved.clock))
	}
	factoryOpts = append(factoryOpts, resolved.factoryOpts...)
	progressionOpts = append(progressionOpts, resolved.progressionOpts...)

	engine, err := progression.NewEngine(cfg.Payment.Demo, updater, progressionOpts...)
	if err != nil {
		return nil, err
	}
	services := NewServiceFactory(store, factoryOpts...)
	facade, err := NewFacade(services, engine, WithConfigResetter(store))
	if err != nil {
		return nil, err
	}
	return &Runtime{
		Config:      store,
		Services:    services,
		Progression: engine,
		facade:      facade,
	}, nil
}

// Facade exposes the runtime's commands and queries.
func (r *Runtime) Facade() *Facade {
	if r == nil {
		return nil
	}
	return r.facade
}

// ProductionReadiness checks the environment the config store resolves from.
func (r *Runtime) ProductionReadiness() core.ProductionReadiness {
	if r == nil || r.Config == nil {
		return core.ValidateProductionConfig(core.OSLookup())
	}
	return core.ValidateProductionConfig(r.Config.Lookup())
}

// Close stops the progression loop and cancels every outstanding schedule.
func (r *Runtime) Close(ctx context.Context) error {
	if r == nil || r.Progression == nil {
		return nil
	}
	if err := r.Progression.Shutdown(ctx); err != nil {
		return fmt.Errorf("checkout: shutdown progression: %w", err)
	}
	return nil
}
