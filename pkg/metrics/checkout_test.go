package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestCheckoutMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewCheckoutMetrics(reg)
	metrics.IncOrder("created")
	metrics.IncCallback("approved")
	metrics.IncQuote("zone_precise")
	metrics.ObserveCheckout("created", 120*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "checkout_orders_total", "outcome", "created"); err != nil {
		t.Fatalf("fetch orders: %v", err)
	} else if got != 1 {
		t.Fatalf("expected orders=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "payment_callbacks_total", "result", "approved"); err != nil {
		t.Fatalf("fetch callbacks: %v", err)
	} else if got != 1 {
		t.Fatalf("expected callbacks=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "shipping_quotes_total", "method", "zone_precise"); err != nil {
		t.Fatalf("fetch quotes: %v", err)
	} else if got != 1 {
		t.Fatalf("expected quotes=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "checkout_duration_seconds", "outcome", "created"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestCheckoutMetricsNilRegistererIsNoop(t *testing.T) {
	metrics := NewCheckoutMetrics(nil)
	metrics.IncOrder("created")
	metrics.IncCallback("")
	metrics.IncQuote("regional_fallback")
	metrics.ObserveCheckout("created", time.Second)
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
