package proofer

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"idport/internal/idv/models"
)

// TracingProofer wraps a Proofer with an OpenTelemetry span per vendor call.
// The applicant's PII never appears in span attributes.
type TracingProofer struct {
	next   Proofer
	tracer trace.Tracer
}

// WithTracing decorates a proofer with tracing. By default the global tracer
// provider is used with "idport/proofer" as the instrumentation name.
func WithTracing(next Proofer) *TracingProofer {
	return &TracingProofer{
		next:   next,
		tracer: otel.Tracer("idport/proofer"),
	}
}

func (t *TracingProofer) Resolve(ctx context.Context, applicant models.Applicant) (*models.Resolution, error) {
	ctx, span := t.tracer.Start(ctx, "proofer.Resolve",
		trace.WithAttributes(
			attribute.Bool("idv.has_prev_address", applicant.HasPrevAddress()),
		),
	)
	defer span.End()

	resolution, err := t.next.Resolve(ctx, applicant)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String("idv.vendor_error", string(GetCategory(err))))
		return nil, err
	}

	span.SetAttributes(attribute.Bool("idv.resolution_success", resolution.Success))
	return resolution, nil
}
