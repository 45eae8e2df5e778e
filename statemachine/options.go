package statemachine

// Option configures a Machine.
type Option func(*options)

type options struct {
	name    string
	logger  Logger
	metrics bool
	tracing bool
}

func defaultOptions() options {
	return options{
		metrics: true,
	}
}

// WithName sets the name used for the machine in logs, metric labels and span
// attributes. Unnamed machines are reported as "unknown".
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithLogger sets the logger notified of executed transitions. A machine without a
// logger does not log.
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics enables or disables prometheus metrics. Enabled by default.
func WithMetrics(enabled bool) Option {
	return func(o *options) {
		o.metrics = enabled
	}
}

// WithTracing enables or disables a span per ProcessEventContext call. Disabled by
// default.
func WithTracing(enabled bool) Option {
	return func(o *options) {
		o.tracing = enabled
	}
}
