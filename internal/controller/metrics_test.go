package controller

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestReconciliationsTotalIncrement(t *testing.T) {
	before := testutil.ToFloat64(reconciliationsTotal.WithLabelValues("test-cr", "test-ns"))
	reconciliationsTotal.WithLabelValues("test-cr", "test-ns").Inc()
	after := testutil.ToFloat64(reconciliationsTotal.WithLabelValues("test-cr", "test-ns"))
	if after != before+1 {
		t.Errorf("expected reconciliations_total to increment by 1, got %f -> %f", before, after)
	}
}

func TestObserveReconcileResultSetsGaugesAndCounters(t *testing.T) {
	name, ns := "obs-test-cr", "obs-test-ns"
	observeReconcileResult(name, ns, 7, 1.5)

	if v := testutil.ToFloat64(secretsManaged.WithLabelValues(name, ns)); v != 7 {
		t.Errorf("secrets_managed = %f, want 7", v)
	}
	if v := testutil.ToFloat64(reconciliationsTotal.WithLabelValues(name, ns)); v != 1 {
		t.Errorf("reconciliations_total = %f, want 1", v)
	}
}

func TestCleanupCRMetricsRemovesSeries(t *testing.T) {
	name, ns := "cleanup-test-cr", "cleanup-test-ns"

	secretsManaged.WithLabelValues(name, ns).Set(5)
	reconciliationsTotal.WithLabelValues(name, ns).Inc()
	secretsPublishedTotal.WithLabelValues(name, ns, "aws").Inc()

	cleanupCRMetrics(name, ns)

	if v := testutil.ToFloat64(secretsManaged.WithLabelValues(name, ns)); v != 0 {
		t.Errorf("expected secrets_managed series to be reset after cleanup, got %f", v)
	}
}
