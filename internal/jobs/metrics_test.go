package jobmetrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	_ "github.com/odyssey-erp/gl-engine/testing"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			match := true
			for _, lp := range metric.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					match = false
				}
			}
			if match {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestTrackerRecordsOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	if err := m.Track("gl_integrity_scan").End(nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	boom := errors.New("boom")
	if err := m.Track("gl_integrity_scan").End(boom); !errors.Is(err, boom) {
		t.Fatalf("expected error passthrough, got %v", err)
	}
	if got := counterValue(t, reg, "odyssey_jobs_total", map[string]string{"job": "gl_integrity_scan", "status": "failure"}); got != 1 {
		t.Fatalf("expected one failure run, got %v", got)
	}
	if got := counterValue(t, reg, "odyssey_jobs_failures_total", map[string]string{"job": "gl_integrity_scan"}); got != 1 {
		t.Fatalf("expected one failure, got %v", got)
	}
	m.AddFindings("high", 2)
	m.AddFindings("low", 0)
	if got := counterValue(t, reg, "odyssey_gl_integrity_findings_total", map[string]string{"severity": "high"}); got != 2 {
		t.Fatalf("expected 2 high findings, got %v", got)
	}
}

func TestNilMetricsTrackerIsNoop(t *testing.T) {
	var m *Metrics
	if err := m.Track("x").End(nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m.AddFindings("high", 1)
}
