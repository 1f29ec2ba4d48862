package payment

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/goliatone/go-checkout/core"
	"github.com/goliatone/go-checkout/webhooks"
	glog "github.com/goliatone/go-logger/glog"
)

const loggerName = "checkout.payment"

// RandomSource is the subset of *rand.Rand the demo engine draws from.
type RandomSource interface {
	Float64() float64
	IntN(n int) int
}

// WebhookHandler reacts to a verified gateway event. Failures are logged and
// never change the webhook result.
type WebhookHandler func(ctx context.Context, event core.WebhookEvent) error

type options struct {
	logger         core.Logger
	loggerProvider core.LoggerProvider
	metrics        core.MetricsRecorder
	clock          core.Clock
	random         RandomSource
	gateway        Gateway
	handlers       map[string][]WebhookHandler
	tolerance      time.Duration
	replay         webhooks.ReplayLedger
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

func WithRandom(random RandomSource) Option {
	return func(o *options) {
		o.random = random
	}
}

func WithGateway(gateway Gateway) Option {
	return func(o *options) {
		o.gateway = gateway
	}
}

func WithWebhookHandler(eventType string, handler WebhookHandler) Option {
	return func(o *options) {
		if handler == nil {
			return
		}
		if o.handlers == nil {
			o.handlers = map[string][]WebhookHandler{}
		}
		o.handlers[eventType] = append(o.handlers[eventType], handler)
	}
}

// WithWebhookTolerance bounds how old a signed webhook may be.
func WithWebhookTolerance(tolerance time.Duration) Option {
	return func(o *options) {
		o.tolerance = tolerance
	}
}

// WithReplayLedger makes redelivered events succeed without running their
// handlers again.
func WithReplayLedger(ledger webhooks.ReplayLedger) Option {
	return func(o *options) {
		o.replay = ledger
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
	if resolved.random == nil {
		seed := uint64(time.Now().UnixNano())
		resolved.random = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	if resolved.gateway == nil {
		resolved.gateway = UnconfiguredGateway{}
	}
	return resolved
}

// lockedRandom serialises access to a RandomSource that is not safe for
// concurrent use.
type lockedRandom struct {
	mu  sync.Mutex
	src RandomSource
}

func (r *lockedRandom) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.src.Float64()
}

func (r *lockedRandom) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.src.IntN(n)
}
