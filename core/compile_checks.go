package core

import glog "github.com/goliatone/go-logger/glog"

var (
	_ MetricsRecorder = NopMetricsRecorder{}
	_ MetricsRecorder = (*CountingMetricsRecorder)(nil)
	_ Clock           = SystemClock{}
	_ RawConfigLoader = (*EnvRawConfigLoader)(nil)

	_ Logger         = glog.Nop()
	_ LoggerProvider = glog.ProviderFromLogger(glog.Nop())
)
