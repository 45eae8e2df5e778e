package statemachine

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "statemachine"

// startProcessEventSpan creates the span covering one ProcessEventContext call.
// The caller is responsible for ending it with endProcessEventSpan.
//
//nolint:spancheck // Span lifecycle managed by caller
func startProcessEventSpan(
	ctx context.Context,
	machine string,
	id uuid.UUID,
	state string,
	event string,
) (context.Context, trace.Span) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "statemachine.process_event")
	span.SetAttributes(
		attribute.String("machine", machine),
		attribute.String("machine_id", id.String()),
		attribute.String("state", state),
		attribute.String("event", event),
	)

	return ctx, span
}

func endProcessEventSpan(span trace.Span, next string, err error) {
	if err != nil {
		if reason, ok := ReasonOf(err); ok {
			span.SetAttributes(attribute.String("outcome", reason.String()))
		}

		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(
			attribute.String("outcome", outcomeSuccess),
			attribute.String("next_state", next),
		)
		span.SetStatus(codes.Ok, "completed")
	}

	span.End()
}
