// Package shutdown turns SIGINT and SIGTERM into context cancellation, running
// registered hooks first so long-lived machines (for example a statemachine.Driver)
// can be stopped cleanly.
package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/amp-labs/amp-fsm/logger"
)

// Handler owns one signal subscription and the hooks to run when it fires.
type Handler struct {
	mut     sync.Mutex
	hooks   []func()
	signals chan os.Signal
	stopped bool
	cancel  context.CancelFunc
}

// New subscribes to SIGINT and SIGTERM and returns a context that is canceled once a
// signal arrives or Shutdown is called. Hooks run before the cancellation.
func New(parent context.Context) (*Handler, context.Context) {
	ctx, cancel := context.WithCancel(parent)

	h := &Handler{
		signals: make(chan os.Signal, 1),
		cancel:  cancel,
	}

	signal.Notify(h.signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-h.signals:
			logger.Get(ctx).Warn("Received " + sig.String() + ", shutting down...")
			h.Shutdown()
		case <-ctx.Done():
			h.Shutdown()
		}
	}()

	return h, ctx
}

// BeforeShutdown registers fn to run before the context is canceled. Hooks run once,
// in registration order. Registering after shutdown runs fn immediately.
func (h *Handler) BeforeShutdown(fn func()) {
	h.mut.Lock()

	if h.stopped {
		h.mut.Unlock()
		fn()

		return
	}

	h.hooks = append(h.hooks, fn)
	h.mut.Unlock()
}

// Shutdown runs the hooks, cancels the context and releases the signal subscription.
// Only the first call has any effect.
func (h *Handler) Shutdown() {
	h.mut.Lock()

	if h.stopped {
		h.mut.Unlock()

		return
	}

	h.stopped = true
	hooks := h.hooks
	h.hooks = nil
	h.mut.Unlock()

	signal.Stop(h.signals)

	for _, fn := range hooks {
		fn()
	}

	h.cancel()
}
