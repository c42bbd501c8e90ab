package entitlement

import (
	"context"
	"log"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type entitlementMetrics struct {
	DecisionsTotal          metric.Int64Counter
	EvaluateDurationSeconds metric.Float64Histogram
}

var (
	instruments *entitlementMetrics
	metricsOnce sync.Once
)

func initMetrics() {
	metricsOnce.Do(func() {
		meter := otel.GetMeterProvider().Meter("AssinaDoc")
		var err error
		m := &entitlementMetrics{}

		m.DecisionsTotal, err = meter.Int64Counter(
			"entitlement_decisions_total",
			metric.WithDescription("Total number of entitlement decisions by outcome"),
			metric.WithUnit("{decision}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create entitlement_decisions_total: %v", err)
		}

		m.EvaluateDurationSeconds, err = meter.Float64Histogram(
			"entitlement_evaluate_duration_seconds",
			metric.WithDescription("Duration of entitlement evaluations in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create entitlement_evaluate_duration_seconds: %v", err)
		}

		instruments = m
	})
}

func recordDecision(ctx context.Context, decision Decision, elapsed time.Duration) {
	initMetrics()
	attrs := metric.WithAttributes(attribute.String("decision", string(decision)))
	instruments.DecisionsTotal.Add(ctx, 1, attrs)
	instruments.EvaluateDurationSeconds.Record(ctx, elapsed.Seconds(), attrs)
}
