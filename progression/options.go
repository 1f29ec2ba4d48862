package progression

import (
	"context"
	"time"

	"github.com/goliatone/go-checkout/core"
	glog "github.com/goliatone/go-logger/glog"
)

const loggerName = "checkout.progression"

const (
	defaultPollInterval = time.Second
	defaultBatchSize    = 100
)

// Observer is notified after every applied transition.
type Observer interface {
	OnStatusChange(ctx context.Context, change core.StatusChange) error
}

type ObserverFunc func(ctx context.Context, change core.StatusChange) error

func (f ObserverFunc) OnStatusChange(ctx context.Context, change core.StatusChange) error {
	if f == nil {
		return nil
	}
	return f(ctx, change)
}

// UpdaterFunc adapts a function to core.StatusUpdater.
type UpdaterFunc func(ctx context.Context, orderID string, update core.StatusUpdate) (core.Order, error)

func (f UpdaterFunc) UpdateOrderStatus(ctx context.Context, orderID string, update core.StatusUpdate) (core.Order, error) {
	return f(ctx, orderID, update)
}

type options struct {
	logger         core.Logger
	loggerProvider core.LoggerProvider
	metrics        core.MetricsRecorder
	clock          core.Clock
	store          core.ProgressStore
	observers      []Observer
	pollInterval   time.Duration
	batchSize      int
}

type Option func(*options)

func WithLogger(logger core.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func WithLoggerProvider(provider core.LoggerProvider) Option {
	return func(o *options) {
		o.loggerProvider = provider
	}
}

func WithMetrics(metrics core.MetricsRecorder) Option {
	return func(o *options) {
		o.metrics = metrics
	}
}

func WithClock(clock core.Clock) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithStore replaces the default in-memory schedule store.
func WithStore(store core.ProgressStore) Option {
	return func(o *options) {
		o.store = store
	}
}

func WithObserver(observer Observer) Option {
	return func(o *options) {
		if observer != nil {
			o.observers = append(o.observers, observer)
		}
	}
}

func WithPollInterval(interval time.Duration) Option {
	return func(o *options) {
		o.pollInterval = interval
	}
}

// WithBatchSize caps how many due schedules a single Tick fires.
func WithBatchSize(size int) Option {
	return func(o *options) {
		o.batchSize = size
	}
}

func buildOptions(opts []Option) options {
	resolved := options{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&resolved)
	}
	_, logger := glog.Resolve(loggerName, resolved.loggerProvider, resolved.logger)
	resolved.logger = glog.Ensure(logger)
	if resolved.metrics == nil {
		resolved.metrics = core.NopMetricsRecorder{}
	}
	if resolved.clock == nil {
		resolved.clock = core.SystemClock{}
	}
	if resolved.store == nil {
		resolved.store = NewMemoryStore()
	}
	if resolved.pollInterval <= 0 {
		resolved.pollInterval = defaultPollInterval
	}
	if resolved.batchSize <= 0 {
		resolved.batchSize = defaultBatchSize
	}
	return resolved
}
