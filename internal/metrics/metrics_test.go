package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func getTestMetrics() *Metrics {
	return NewWithRegistry(prometheus.NewRegistry(), nil)
}

// TestMetricsInitialization tests that all metrics are properly initialized
func TestMetricsInitialization(t *testing.T) {
	m := getTestMetrics()

	// Test that all metrics are non-nil
	if m.HTTPRequestsTotal == nil {
		t.Error("HTTPRequestsTotal should not be nil")
	}
	if m.HTTPRequestDuration == nil {
		t.Error("HTTPRequestDuration should not be nil")
	}
	if m.DBConnectionsOpen == nil {
		t.Error("DBConnectionsOpen should not be nil")
	}
	if m.DBConnectionsInUse == nil {
		t.Error("DBConnectionsInUse should not be nil")
	}
	if m.DBConnectionsIdle == nil {
		t.Error("DBConnectionsIdle should not be nil")
	}
	if m.DBConnectionsMax == nil {
		t.Error("DBConnectionsMax should not be nil")
	}
	if m.DBConnectionWaitTotal == nil {
		t.Error("DBConnectionWaitTotal should not be nil")
	}
	if m.DBConnectionWaitDuration == nil {
		t.Error("DBConnectionWaitDuration should not be nil")
	}
	if m.DBQueryDuration == nil {
		t.Error("DBQueryDuration should not be nil")
	}
	if m.DBQueryErrors == nil {
		t.Error("DBQueryErrors should not be nil")
	}
	if m.CacheHitsTotal == nil {
		t.Error("CacheHitsTotal should not be nil")
	}
	if m.CacheMissesTotal == nil {
		t.Error("CacheMissesTotal should not be nil")
	}
	if m.FormsTotal == nil {
		t.Error("FormsTotal should not be nil")
	}
	if m.ResponsesTotal == nil {
		t.Error("ResponsesTotal should not be nil")
	}
	if m.FormCreatedTotal == nil {
		t.Error("FormCreatedTotal should not be nil")
	}
	if m.ResponseSubmittedTotal == nil {
		t.Error("ResponseSubmittedTotal should not be nil")
	}
}

// TestMetricHelpDescriptions checks every registered metric carries a help text
func TestMetricHelpDescriptions(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewWithRegistry(registry, nil)

	// Touch the vectors so Gather sees at least one series per family
	m.RecordHTTPRequest("GET", "/api/forms", 200, 0)
	m.RecordDBQuery("select", "forms", 0, nil)
	m.RecordCacheHit("public_form")
	m.RecordCacheMiss("public_form")

	metricFamilies, err := registry.Gather()
	if err != nil {
		t.Fatalf("Failed to gather metrics: %v", err)
	}

	for _, mf := range metricFamilies {
		name := mf.GetName()
		help := mf.GetHelp()

		if len(strings.TrimSpace(help)) == 0 {
			t.Errorf("Metric '%s' has an empty help description", name)
		}
		if !strings.HasPrefix(name, namespace+"_") {
			t.Errorf("Metric '%s' is missing the '%s' namespace", name, namespace)
		}
		if strings.ToLower(name) != name {
			t.Errorf("Metric '%s' is not snake_case", name)
		}
	}
}
