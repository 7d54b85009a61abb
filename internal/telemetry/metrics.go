package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName = "github.com/sendai-ikuei-track/site-server"
)

// Metrics holds all the OpenTelemetry metric instruments
type Metrics struct {
	// Access gate
	ExclusiveLoginTotal metric.Int64Counter

	// Contact intake
	ContactSubmissionsTotal      metric.Int64Counter
	ContactDeliveryFailuresTotal metric.Int64Counter
	ContactDeliveryDuration      metric.Float64Histogram

	// Rate limiting
	RateLimitRejectionsTotal  metric.Int64Counter
	RateLimitStoreErrorsTotal metric.Int64Counter
}

var (
	once    sync.Once
	metrics *Metrics
)

// GetMetrics returns the singleton Metrics instance, initializing it if necessary.
// Instruments created before InitTelemetry installs a provider are delegated
// to it once it does.
func GetMetrics() *Metrics {
	once.Do(func() {
		metrics = initMetrics()
	})
	return metrics
}

func initMetrics() *Metrics {
	meter := otel.GetMeterProvider().Meter(meterName)

	m := &Metrics{}

	m.ExclusiveLoginTotal, _ = meter.Int64Counter(
		"site.exclusive.login.total",
		metric.WithDescription("Exclusive content password attempts by result"),
		metric.WithUnit("{attempt}"),
	)

	m.ContactSubmissionsTotal, _ = meter.Int64Counter(
		"site.contact.submissions.total",
		metric.WithDescription("Contact form submissions by outcome"),
		metric.WithUnit("{submission}"),
	)

	m.ContactDeliveryFailuresTotal, _ = meter.Int64Counter(
		"site.contact.delivery.failures.total",
		metric.WithDescription("Accepted inquiries whose notification email could not be sent"),
		metric.WithUnit("{error}"),
	)

	m.ContactDeliveryDuration, _ = meter.Float64Histogram(
		"site.contact.delivery.duration",
		metric.WithDescription("Duration of notification email delivery"),
		metric.WithUnit("ms"),
	)

	m.RateLimitRejectionsTotal, _ = meter.Int64Counter(
		"site.ratelimit.rejections.total",
		metric.WithDescription("Requests rejected by a rate limiter, by scope"),
		metric.WithUnit("{request}"),
	)

	m.RateLimitStoreErrorsTotal, _ = meter.Int64Counter(
		"site.ratelimit.store.errors.total",
		metric.WithDescription("Rate limit checks that failed open because the store errored"),
		metric.WithUnit("{error}"),
	)

	return m
}

// Count adds one to counter with a single string attribute.
func Count(ctx context.Context, counter metric.Int64Counter, key, value string) {
	if counter == nil {
		return
	}
	counter.Add(ctx, 1, metric.WithAttributes(attribute.String(key, value)))
}
