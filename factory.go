package checkout

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-checkout/core"
	"github.com/goliatone/go-checkout/providers/email"
	"github.com/goliatone/go-checkout/providers/payment"
	"github.com/goliatone/go-checkout/providers/storage"
	glog "github.com/goliatone/go-logger/glog"
)

const loggerName = "checkout"

// ConfigSource supplies the resolved configuration; *core.ConfigStore
// satisfies it.
type ConfigSource = payment.ConfigSource

// ServiceFactory lazily builds one payment, email and storage provider from
// the current configuration and keeps them until ResetServices.
type ServiceFactory struct {
	configs  ConfigSource
	payments *payment.Factory
	clock    core.Clock
	logger   core.Logger
	observer core.Observer

	emailOpts   []email.Option
	storageOpts []storage.Option

	mu             sync.Mutex
	paymentService core.PaymentService
	emailService   core.EmailService
	storageService core.StorageService
}

type FactoryOption func(*factoryOptions)

type factoryOptions struct {
	logger         core.Logger
	loggerProvider core.LoggerProvider
	metrics        core.MetricsRecorder
	clock          core.Clock
	paymentOpts    []payment.Option
	emailOpts      []email.Option
	storageOpts    []storage.Option
}

func WithLogger(logger core.Logger) FactoryOption {
	return func(o *factoryOptions) {
		o.logger = logger
	}
}

func WithLoggerProvider(provider core.LoggerProvider) FactoryOption {
	return func(o *factoryOptions) {
		o.loggerProvider = provider
	}
}

func WithMetrics(metrics core.MetricsRecorder) FactoryOption {
	return func(o *factoryOptions) {
		o.metrics = metrics
	}
}

func WithClock(clock core.Clock) FactoryOption {
	return func(o *factoryOptions) {
		o.clock = clock
	}
}

// WithPaymentOptions are applied after the factory's own logger, metrics and
// clock, so they win.
func WithPaymentOptions(opts ...payment.Option) FactoryOption {
	return func(o *factoryOptions) {
		o.paymentOpts = append(o.paymentOpts, opts...)
	}
}

func WithEmailOptions(opts ...email.Option) FactoryOption {
	return func(o *factoryOptions) {
		o.emailOpts = append(o.emailOpts, opts...)
	}
}

func WithStorageOptions(opts ...storage.Option) FactoryOption {
	return func(o *factoryOptions) {
		o.storageOpts = append(o.storageOpts, opts...)
	}
}

func NewServiceFactory(configs ConfigSource, opts ...FactoryOption) *ServiceFactory {
	resolved := factoryOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(&resolved)
		}
	}
	provider, logger := glog.Resolve(loggerName, resolved.loggerProvider, resolved.logger)
	logger = glog.Ensure(logger)
	if resolved.metrics == nil {
		resolved.metrics = core.NopMetricsRecorder{}
	}
	if resolved.clock == nil {
		resolved.clock = core.SystemClock{}
	}

	paymentOpts := append([]payment.Option{
		payment.WithLoggerProvider(provider),
		payment.WithMetrics(resolved.metrics),
		payment.WithClock(resolved.clock),
	}, resolved.paymentOpts...)
	emailOpts := append([]email.Option{
		email.WithLoggerProvider(provider),
		email.WithMetrics(resolved.metrics),
		email.WithClock(resolved.clock),
	}, resolved.emailOpts...)
	storageOpts := append([]storage.Option{
		storage.WithLoggerProvider(provider),
		storage.WithMetrics(resolved.metrics),
	}, resolved.storageOpts...)

	return &ServiceFactory{
		configs:     configs,
		payments:    payment.NewFactory(configs, paymentOpts...),
		clock:       resolved.clock,
		logger:      logger,
		observer:    core.NewObserver(loggerName, logger, resolved.metrics),
		emailOpts:   emailOpts,
		storageOpts: storageOpts,
	}
}

// PaymentFactory exposes the payment engine factory, whose singleton is
// cleared together with the factory's own by ResetServices.
func (f *ServiceFactory) PaymentFactory() *payment.Factory {
	return f.payments
}

func (f *ServiceFactory) config(ctx context.Context) (core.AppConfig, error) {
	if f == nil || f.configs == nil {
		return core.AppConfig{}, fmt.Errorf("checkout: service factory has no config source")
	}
	return f.configs.Get(ctx)
}

func (f *ServiceFactory) GetPaymentService(ctx context.Context) (core.PaymentService, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.paymentService != nil {
		return f.paymentService, nil
	}
	startedAt := time.Now()
	service, err := f.payments.Instance(ctx)
	f.observeConstruction(ctx, startedAt, core.CapabilityPayment, service, err)
	if err != nil {
		return nil, err
	}
	f.paymentService = service
	return service, nil
}

func (f *ServiceFactory) GetEmailService(ctx context.Context) (core.EmailService, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.emailService != nil {
		return f.emailService, nil
	}
	startedAt := time.Now()
	cfg, err := f.config(ctx)
	var service core.EmailService
	if err == nil {
		service, err = email.New(cfg.Email, f.emailOpts...)
	}
	f.observeConstruction(ctx, startedAt, core.CapabilityEmail, service, err)
	if err != nil {
		return nil, err
	}
	f.emailService = service
	return service, nil
}

func (f *ServiceFactory) GetStorageService(ctx context.Context) (core.StorageService, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.storageService != nil {
		return f.storageService, nil
	}
	startedAt := time.Now()
	cfg, err := f.config(ctx)
	var service core.StorageService
	if err == nil {
		service, err = storage.New(cfg.Storage, f.storageOpts...)
	}
	f.observeConstruction(ctx, startedAt, core.CapabilityStorage, service, err)
	if err != nil {
		return nil, err
	}
	f.storageService = service
	return service, nil
}

// ResetServices drops every memoized provider, including the payment
// factory's singleton. The next getter call rebuilds from current config.
func (f *ServiceFactory) ResetServices() {
	f.mu.Lock()
	f.paymentService = nil
	f.emailService = nil
	f.storageService = nil
	f.payments.ResetInstance()
	f.mu.Unlock()
	f.logger.Debug("services reset")
}

// GetServiceStatus reports the configured provider per capability without
// constructing anything.
func (f *ServiceFactory) GetServiceStatus(ctx context.Context) (core.ServiceStatusReport, error) {
	cfg, err := f.config(ctx)
	if err != nil {
		return core.ServiceStatusReport{}, err
	}
	mode := cfg.Mode
	if mode == "" {
		mode = core.ModeDemo
	}
	emailProvider := email.ProviderName(cfg.Email)
	storageProvider := storage.ProviderName(cfg.Storage)
	report := core.ServiceStatusReport{
		Mode: mode,
		Payment: core.ServiceStatus{
			Provider: string(mode),
			Engine:   payment.EngineFor(mode),
			IsDemo:   mode != core.ModeProduction,
		},
		Email: core.ServiceStatus{
			Provider: emailProvider,
			Engine:   email.EngineFor(cfg.Email),
			IsDemo:   emailProvider == core.EmailServiceDemo,
		},
		Storage: core.ServiceStatus{
			Provider: storageProvider,
			Engine:   storage.EngineFor(cfg.Storage),
			IsDemo:   storageProvider == core.StorageProviderLocal,
		},
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	applyInstance(&report.Payment, f.paymentService)
	applyInstance(&report.Email, f.emailService)
	applyInstance(&report.Storage, f.storageService)
	return report, nil
}

type demoReporter interface {
	IsDemo() bool
}

// applyInstance prefers what a built instance says about itself over what
// the current config predicts.
func applyInstance(status *core.ServiceStatus, instance demoReporter) {
	if instance == nil {
		return
	}
	status.Initialized = true
	status.IsDemo = instance.IsDemo()
	if engine, ok := instance.(core.Engine); ok {
		status.Engine = engine.EngineName()
	}
}

func (f *ServiceFactory) GetConfigSummary(ctx context.Context) (core.ConfigSummary, error) {
	cfg, err := f.config(ctx)
	if err != nil {
		return core.ConfigSummary{}, err
	}
	return cfg.Summary(), nil
}

func (f *ServiceFactory) GetProductionChecklist(ctx context.Context) (core.ProductionChecklist, error) {
	cfg, err := f.config(ctx)
	if err != nil {
		return core.ProductionChecklist{}, err
	}
	return core.BuildProductionChecklist(cfg, f.clock.Now()), nil
}

func (f *ServiceFactory) observeConstruction(ctx context.Context, startedAt time.Time, capability core.Capability, instance any, err error) {
	fields := map[string]any{"capability": string(capability)}
	if engine, ok := instance.(core.Engine); ok {
		fields["engine"] = engine.EngineName()
	}
	f.observer.ObserveOperation(ctx, startedAt, "construct_"+strings.ToLower(string(capability)), err, fields)
}
