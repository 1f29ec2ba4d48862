package payment

import (
	"context"
	"fmt"
	"sync"

	"github.com/goliatone/go-checkout/core"
)

// ConfigSource supplies the resolved configuration; *core.ConfigStore
// satisfies it.
type ConfigSource interface {
	Get(ctx context.Context) (core.AppConfig, error)
}

// Factory builds payment engines and keeps its own singleton, separate from
// the service factory's memoization.
type Factory struct {
	mu       sync.Mutex
	source   ConfigSource
	opts     []Option
	instance core.PaymentService
}

func NewFactory(source ConfigSource, opts ...Option) *Factory {
	return &Factory{source: source, opts: append([]Option(nil), opts...)}
}

// Create builds a new engine from explicit, or from the resolved config when
// explicit is nil.
func (f *Factory) Create(ctx context.Context, explicit *core.AppConfig) (core.PaymentService, error) {
	if f == nil {
		return nil, fmt.Errorf("payment: factory is nil")
	}
	var cfg core.AppConfig
	if explicit != nil {
		cfg = explicit.Clone()
	} else {
		if f.source == nil {
			return nil, fmt.Errorf("payment: factory has no config source")
		}
		resolved, err := f.source.Get(ctx)
		if err != nil {
			return nil, err
		}
		cfg = resolved
	}
	return New(cfg, f.opts...)
}

func (f *Factory) Instance(ctx context.Context) (core.PaymentService, error) {
	if f == nil {
		return nil, fmt.Errorf("payment: factory is nil")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.instance != nil {
		return f.instance, nil
	}
	service, err := f.Create(ctx, nil)
	if err != nil {
		return nil, err
	}
	f.instance = service
	return service, nil
}

func (f *Factory) ResetInstance() {
	if f == nil {
		return
	}
	f.mu.Lock()
	f.instance = nil
	f.mu.Unlock()
}

// New dispatches on cfg.Mode.
func New(cfg core.AppConfig, opts ...Option) (core.PaymentService, error) {
	switch cfg.Mode {
	case core.ModeProduction:
		service, err := NewProductionService(cfg.Payment.Stripe, opts...)
		if err != nil {
			return nil, err
		}
		return service, nil
	case core.ModeDemo, "":
		return NewDemoService(cfg.Payment.Demo, opts...), nil
	default:
		return nil, core.NewUnsupportedProviderError(core.CapabilityPayment, string(cfg.Mode))
	}
}

// EngineFor names the engine New would build for mode without building it.
func EngineFor(mode core.Mode) string {
	if mode == core.ModeProduction {
		return EngineProduction
	}
	return EngineDemo
}
