package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestFilterAttributesDropsForbiddenLabels(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("principal", "application"),
		attribute.String("username", "alice"),
		attribute.String("outcome", "success"),
	)
	if len(attrs) != 2 {
		t.Fatalf("expected 2 attributes, got %d", len(attrs))
	}
	for _, attr := range attrs {
		if attr.Key == "username" {
			t.Fatalf("expected username to be dropped")
		}
	}
}

func TestHTTPMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewHTTPMetrics(reg)
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	m.Observe("GET", "/tags/", 200, 10*time.Millisecond)
	m.Observe("GET", "/tags/", 200, 10*time.Millisecond)
	m.Observe("POST", "", 403, time.Millisecond)

	if got := testutil.ToFloat64(m.requests.WithLabelValues("GET", "/tags/", "200")); got != 2 {
		t.Fatalf("expected 2 requests, got %v", got)
	}
	if got := testutil.ToFloat64(m.requests.WithLabelValues("POST", "unknown", "403")); got != 1 {
		t.Fatalf("expected 1 request, got %v", got)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordAuthentication(context.Background(), "user", "success")
	m.RecordResourceWrite(context.Background(), "tag", "create")

	built, err := New(Config{}, noop.NewMeterProvider())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	built.RecordRateLimitDenied(context.Background(), "/one_time_keys/redeem/", "rate")
}
