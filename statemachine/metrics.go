package statemachine

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metric outcome label values.
const (
	outcomeSuccess = "success"
	outcomeError   = "error"
)

// Metric definitions with appropriate labels.
var (
	// eventsTotal counts delivered events by machine and outcome
	// (success, no_next_state, forbidden).
	eventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "statemachine_events_total",
		Help: "Total number of events processed by machine and outcome",
	}, []string{"machine", "outcome"})

	// transitionsTotal counts executed transitions.
	transitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "statemachine_transitions_total",
		Help: "Total number of state transitions by machine, from_state and to_state",
	}, []string{"machine", "from_state", "to_state"})

	// callbacksTotal counts invoked exit/enter callbacks.
	callbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "statemachine_callbacks_total",
		Help: "Total number of transition callbacks invoked by machine and phase",
	}, []string{"machine", "phase"})

	// processEventDuration tracks the time spent in ProcessEvent, callbacks included.
	processEventDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "statemachine_process_event_duration_seconds",
		Help:    "Duration of event processing by machine and outcome",
		Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1, 10},
	}, []string{"machine", "outcome"})
)

func recordEvent(machine, from, to string, err error, elapsed time.Duration) {
	outcome := outcomeSuccess
	if err != nil {
		outcome = outcomeError
	}

	processEventDuration.WithLabelValues(machine, outcome).Observe(elapsed.Seconds())

	if reason, ok := ReasonOf(err); ok {
		eventsTotal.WithLabelValues(machine, reason.String()).Inc()

		return
	}

	eventsTotal.WithLabelValues(machine, outcome).Inc()

	if err == nil {
		transitionsTotal.WithLabelValues(machine, from, to).Inc()
	}
}

func recordCallbacks(machine string, phase TransitionType, count int) {
	callbacksTotal.WithLabelValues(machine, phase.String()).Add(float64(count))
}

func sanitizeMachine(name string) string {
	if name == "" {
		return "unknown"
	}

	return name
}
