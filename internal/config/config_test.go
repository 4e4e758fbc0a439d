package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.MetricsAddr != ":8443" {
		t.Errorf("MetricsAddr default = %q, want :8443", cfg.MetricsAddr)
	}
	if cfg.MinReconcileInterval != 10*time.Second {
		t.Errorf("MinReconcileInterval default = %v, want 10s", cfg.MinReconcileInterval)
	}
	if cfg.BackoffFloor != 60*time.Second || cfg.BackoffCeiling != 600*time.Second {
		t.Errorf("backoff defaults = %v/%v, want 60s/600s", cfg.BackoffFloor, cfg.BackoffCeiling)
	}
	if cfg.ArtifactCacheTTL != 10*time.Minute {
		t.Errorf("ArtifactCacheTTL default = %v, want 10m", cfg.ArtifactCacheTTL)
	}
}

func TestLoadHonorsEnvOverrides(t *testing.T) {
	t.Setenv("METRICS_ADDR", ":9999")
	t.Setenv("MAX_CONCURRENT_RECONCILIATIONS", "25")
	t.Setenv("BACKOFF_FLOOR", "5s")

	cfg := Load()

	if cfg.MetricsAddr != ":9999" {
		t.Errorf("MetricsAddr = %q, want :9999", cfg.MetricsAddr)
	}
	if cfg.MaxConcurrentReconciles != 25 {
		t.Errorf("MaxConcurrentReconciles = %d, want 25", cfg.MaxConcurrentReconciles)
	}
	if cfg.BackoffFloor != 5*time.Second {
		t.Errorf("BackoffFloor = %v, want 5s", cfg.BackoffFloor)
	}
}

func TestLoadIgnoresUnparseableOverrides(t *testing.T) {
	t.Setenv("MAX_CONCURRENT_RECONCILIATIONS", "not-a-number")
	t.Setenv("SOPS_TIMEOUT", "not-a-duration")

	cfg := Load()

	if cfg.MaxConcurrentReconciles != 10 {
		t.Errorf("MaxConcurrentReconciles = %d, want fallback default 10", cfg.MaxConcurrentReconciles)
	}
	if cfg.SopsTimeout != 30*time.Second {
		t.Errorf("SopsTimeout = %v, want fallback default 30s", cfg.SopsTimeout)
	}
}
