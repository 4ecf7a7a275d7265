package autoload

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/vango-dev/autovhost/pkg/vhost"
)

func TestMetrics_Scan(t *testing.T) {
	base, static := scanFixture(t)
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(WithRegistry(registry))

	a := New(Options{Loader: static, Logger: discardLogger(), Metrics: metrics})
	if _, err := a.Scan(context.Background(), vhost.NewRecorder(), &ScanSettings{BaseFolder: base}); err != nil {
		t.Fatal(err)
	}

	if got := testutil.ToFloat64(metrics.bindsTotal.WithLabelValues("bound", "scan")); got != 1 {
		t.Errorf("bound binds = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.bindsTotal.WithLabelValues("load_failed", "scan")); got != 1 {
		t.Errorf("load_failed binds = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.scanEntries.WithLabelValues("skipped")); got != 2 {
		t.Errorf("skipped entries = %v, want 2", got)
	}
	if got := testutil.ToFloat64(metrics.scansTotal.WithLabelValues("ok")); got != 1 {
		t.Errorf("scans = %v, want 1", got)
	}

	if _, err := a.Scan(context.Background(), vhost.NewRecorder(), &ScanSettings{BaseFolder: base + "/missing"}); err == nil {
		t.Fatal("scan of a missing folder succeeded")
	}
	if got := testutil.ToFloat64(metrics.scansTotal.WithLabelValues("error")); got != 1 {
		t.Errorf("failed scans = %v, want 1", got)
	}
}

func TestMetrics_Namespace(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(registry), WithNamespace("edge"))
	m.observeBind("bound", "manual", 0)

	families, err := registry.Gather()
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "edge_autoload_binds_total" {
			found = true
		}
	}
	if !found {
		t.Error("edge_autoload_binds_total not registered")
	}
}

func TestMetrics_Nil(t *testing.T) {
	var m *Metrics
	m.observeBind("bound", "manual", 0)
	m.observeScan(nil, nil)
}
