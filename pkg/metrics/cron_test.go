package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestCronJobMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewCronJobMetrics(reg)
	job := "cart-expiry"
	metrics.ObserveDuration(job, 250*time.Millisecond)
	metrics.IncSuccess(job)
	metrics.IncFailure(job)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "mosaic_cron_job_success_total", "job", job); err != nil {
		t.Fatalf("fetch success: %v", err)
	} else if got != 1 {
		t.Fatalf("expected success=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "mosaic_cron_job_failure_total", "job", job); err != nil {
		t.Fatalf("fetch failure: %v", err)
	} else if got != 1 {
		t.Fatalf("expected failure=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "mosaic_cron_job_duration_seconds", "job", job); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestNilMetricsAreNoops(t *testing.T) {
	var cron *CronJobMetrics
	cron.IncSuccess("x")
	cron.ObserveDuration("x", time.Second)
	NewCronJobMetrics(nil).IncFailure("x")

	var dispatch *DispatchMetrics
	dispatch.IncTask("email", TaskSubmitted)
	dispatch.IncGateBypass("email")
	NewDispatchMetrics(nil).SetQueueDepth(3)
}

func TestDispatchMetricsCountsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewDispatchMetrics(reg)
	m.IncTask("order-confirmation-email", TaskSubmitted)
	m.IncTask("order-confirmation-email", TaskCompleted)
	m.IncGateBypass("email")
	m.IncGateBypass("email")
	m.ObserveGateWait("email", 20*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "mosaic_dispatch_gate_bypass_total", "category", "email"); err != nil || got != 2 {
		t.Fatalf("expected 2 bypasses, got %f (%v)", got, err)
	}
	if got, err := fetchCounterValue(mfs, "mosaic_dispatch_tasks_total", "outcome", TaskCompleted); err != nil || got != 1 {
		t.Fatalf("expected 1 completed task, got %f (%v)", got, err)
	}
	if got, err := fetchHistogramSum(mfs, "mosaic_dispatch_gate_wait_seconds", "category", "email"); err != nil || got <= 0 {
		t.Fatalf("expected gate wait sum > 0, got %f (%v)", got, err)
	}
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}

func TestHTTPMetricsCountsByRoute(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)
	m.Observe("/api/v1/cart", "GET", 200, 5*time.Millisecond)
	m.Observe("/api/v1/cart", "GET", 200, 5*time.Millisecond)
	m.Observe("", "GET", 404, time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "mosaic_http_requests_total", "route", "/api/v1/cart"); err != nil || got != 2 {
		t.Fatalf("expected 2 cart requests, got %f (%v)", got, err)
	}
	if got, err := fetchCounterValue(mfs, "mosaic_http_requests_total", "route", "unknown"); err != nil || got != 1 {
		t.Fatalf("expected 1 unmatched request, got %f (%v)", got, err)
	}

	var nilMetrics *HTTPMetrics
	nilMetrics.Observe("/x", "GET", 200, time.Millisecond)
}
