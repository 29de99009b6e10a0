// Package metrics exposes the Core's required insert-retry counter as an
// optional OpenTelemetry instrument: the atomic.Int64 in retry.Counter is
// the source of truth and works with no OTel SDK configured at all; this
// package only mirrors it into an otel metric when a Meter is supplied.
package metrics

import (
	"context"

	"go.opentelemetry.io/otel/metric"

	"github.com/relcore/relcore/internal/retry"
)

// RegisterInsertRetries registers an observable gauge on meter that reports
// counter's current value. It is a no-op if meter is nil.
func RegisterInsertRetries(meter metric.Meter, counter *retry.Counter) error {
	if meter == nil {
		return nil
	}
	_, err := meter.Int64ObservableGauge(
		"relcore.insert_retries",
		metric.WithDescription("Cumulative count of retried TRANSACTIONAL insert attempts"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(counter.Load())
			return nil
		}),
	)
	return err
}
