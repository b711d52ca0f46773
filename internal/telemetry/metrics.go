package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "fitlog-api"

// Instruments are created against the global meter provider; they start
// exporting once Initialize installs the real one.
var (
	meter = otel.Meter(instrumentationName)

	workoutMutations, _ = meter.Int64Counter("fitlog.workout.mutations",
		metric.WithDescription("Workout and template mutations by operation and outcome"),
	)
	catalogRequests, _ = meter.Int64Counter("fitlog.catalog.requests",
		metric.WithDescription("Exercise catalog calls by operation and outcome"),
	)
	exportsRendered, _ = meter.Int64Counter("fitlog.exports",
		metric.WithDescription("Workout exports by format"),
	)
)

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// RecordWorkoutMutation counts a repository mutation
func RecordWorkoutMutation(ctx context.Context, op string, err error) {
	workoutMutations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("outcome", outcome(err)),
	))
}

// RecordCatalogRequest counts a call to the exercise catalog.
// result is "ok", "error" or "stale".
func RecordCatalogRequest(ctx context.Context, op, result string) {
	catalogRequests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("outcome", result),
	))
}

// RecordExport counts a rendered export
func RecordExport(ctx context.Context, format string) {
	exportsRendered.Add(ctx, 1, metric.WithAttributes(attribute.String("format", format)))
}
