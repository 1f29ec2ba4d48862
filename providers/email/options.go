package email

import (
	"github.com/goliatone/go-checkout/core"
	"github.com/goliatone/go-checkout/transport"
	glog "github.com/goliatone/go-logger/glog"
)

const loggerName = "checkout.email"

// DefaultSendGridEndpoint is the SendGrid v3 mail send endpoint.
const DefaultSendGridEndpoint = "https://api.sendgrid.com/v3/mail/send"

type options struct {
	logger         core.Logger
	loggerProvider core.LoggerProvider
	metrics        core.MetricsRecorder
	clock          core.Clock
	rest           *transport.RESTAdapter
	endpoint       string
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

// WithTransport replaces the REST adapter used by HTTP-backed providers.
func WithTransport(rest *transport.RESTAdapter) Option {
	return func(o *options) {
		o.rest = rest
	}
}

// WithEndpoint overrides the provider API endpoint.
func WithEndpoint(endpoint string) Option {
	return func(o *options) {
		o.endpoint = endpoint
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
	if resolved.rest == nil {
		resolved.rest = transport.NewRESTAdapter(nil)
	}
	return resolved
}
