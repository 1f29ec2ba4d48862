package storage

import (
	"github.com/goliatone/go-checkout/core"
	glog "github.com/goliatone/go-logger/glog"
)

const loggerName = "checkout.storage"

type options struct {
	logger         core.Logger
	loggerProvider core.LoggerProvider
	metrics        core.MetricsRecorder
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
	return resolved
}
