package statemachine

import (
	"context"
	"log/slog"

	"github.com/amp-labs/amp-fsm/logger"
)

// Logger provides logging hooks for machine execution. Rejected events are reported
// to the caller through the returned error only and never reach the Logger.
type Logger interface {
	TransitionExecuted(ctx context.Context, machine, from, to, event string)
	CallbacksDispatched(ctx context.Context, machine string, phase TransitionType, state string, count int)
}

// DefaultLogger implements Logger using slog at debug level.
type DefaultLogger struct {
	logger *slog.Logger
}

// NewDefaultLogger creates a logger writing to l. If l is nil, every record goes to
// logger.Get(ctx), which picks up the subsystem and values stored in the context.
func NewDefaultLogger(l *slog.Logger) *DefaultLogger {
	return &DefaultLogger{
		logger: l,
	}
}

func (l *DefaultLogger) get(ctx context.Context) *slog.Logger {
	if l.logger != nil {
		return l.logger
	}

	return logger.Get(ctx)
}

func (l *DefaultLogger) TransitionExecuted(ctx context.Context, machine, from, to, event string) {
	l.get(ctx).DebugContext(ctx, "Transition executed",
		"machine", machine,
		"from", from,
		"to", to,
		"event", event,
	)
}

func (l *DefaultLogger) CallbacksDispatched(
	ctx context.Context,
	machine string,
	phase TransitionType,
	state string,
	count int,
) {
	l.get(ctx).DebugContext(ctx, "Callbacks dispatched",
		"machine", machine,
		"phase", phase.String(),
		"state", state,
		"count", count,
	)
}
