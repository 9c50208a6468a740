package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// QuotaMetrics counts AI calls admitted and denied by the quota gate,
// partitioned by plan. A nil *QuotaMetrics is valid and records nothing.
type QuotaMetrics struct {
	admitted metric.Int64Counter
	denied   metric.Int64Counter
}

func NewQuotaMetrics() (*QuotaMetrics, error) {
	meter := otel.Meter("studydesk/quota")

	admitted, err := meter.Int64Counter("ai_calls_admitted_total",
		metric.WithDescription("AI calls admitted through the quota gate"))
	if err != nil {
		return nil, fmt.Errorf("failed to create admitted counter: %w", err)
	}

	denied, err := meter.Int64Counter("ai_calls_denied_total",
		metric.WithDescription("AI calls denied by the quota gate"))
	if err != nil {
		return nil, fmt.Errorf("failed to create denied counter: %w", err)
	}

	return &QuotaMetrics{admitted: admitted, denied: denied}, nil
}

func (m *QuotaMetrics) RecordAdmitted(ctx context.Context, plan string) {
	if m == nil {
		return
	}
	m.admitted.Add(ctx, 1, metric.WithAttributes(attribute.String("plan", plan)))
}

func (m *QuotaMetrics) RecordDenied(ctx context.Context, plan string) {
	if m == nil {
		return
	}
	m.denied.Add(ctx, 1, metric.WithAttributes(attribute.String("plan", plan)))
}
