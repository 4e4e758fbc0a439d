// Package config loads controller-level knobs from the environment. There
// is no CLI surface in the core (the operator CLI is an explicit external
// collaborator), so this follows an internal/agent/config.go-style shape:
// typed fields, os.Getenv with defaults, no flag/viper dependency.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the environment-sourced knobs named in spec §6.6.
type Config struct {
	// MetricsAddr is the bind address of the manager's controller-runtime
	// metrics server, which serves /metrics.
	MetricsAddr string
	// ProbeAddr is the bind address controller-runtime uses for its own
	// built-in healthz/readyz checks.
	ProbeAddr string

	LogLevel  string
	LogFormat string

	// MinGitPullInterval is loaded as the floor for
	// spec.gitRepositoryPullInterval, but no controller code reads it or
	// that spec field, so the floor is not enforced.
	MinGitPullInterval time.Duration
	// MinReconcileInterval is the floor enforced on spec.reconcileInterval.
	MinReconcileInterval time.Duration

	MaxConcurrentReconciles int
	// ProviderFanout bounds the per-reconciliation parallel provider calls.
	ProviderFanout int

	MaxSecretSizeBytes int64

	// BackoffFloor/BackoffCeiling bound the Fibonacci retry table (§4.8).
	BackoffFloor   time.Duration
	BackoffCeiling time.Duration

	// ReconcileTimeout is loaded but not passed to the reconciler; one
	// reconciliation has no overall deadline of its own.
	ReconcileTimeout time.Duration
	// ProviderCallTimeout bounds a single cloud API call.
	ProviderCallTimeout time.Duration
	// KustomizeTimeout bounds a single kustomize build.
	KustomizeTimeout time.Duration
	// SopsTimeout bounds a single SOPS decryption invocation.
	SopsTimeout time.Duration

	// ControllerNamespace is the controller's own namespace, used for SOPS
	// key discovery; the controller's own namespace is never a fallback
	// for per-resource key lookups (invariant 3/P3).
	ControllerNamespace string

	// ArtifactCacheTTL bounds how long an unreferenced resolved artifact
	// stays in internal/artifact.Cache before EvictStale removes it.
	ArtifactCacheTTL time.Duration
}

// Load reads Config from the environment, applying the defaults named in
// spec §4.8/§5/§6.6.
func Load() Config {
	return Config{
		MetricsAddr:             getEnv("METRICS_ADDR", ":8443"),
		ProbeAddr:               getEnv("PROBE_ADDR", ":8081"),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		LogFormat:               getEnv("LOG_FORMAT", "json"),
		MinGitPullInterval:      getDuration("MIN_GIT_PULL_INTERVAL", time.Minute),
		MinReconcileInterval:    getDuration("MIN_RECONCILE_INTERVAL", 10*time.Second),
		MaxConcurrentReconciles: getInt("MAX_CONCURRENT_RECONCILIATIONS", 10),
		ProviderFanout:          getInt("PROVIDER_FANOUT", 4),
		MaxSecretSizeBytes:      getInt64("MAX_SECRET_SIZE_BYTES", 64*1024),
		BackoffFloor:            getDuration("BACKOFF_FLOOR", 60*time.Second),
		BackoffCeiling:          getDuration("BACKOFF_CEILING", 600*time.Second),
		ReconcileTimeout:        getDuration("RECONCILE_TIMEOUT", 5*time.Minute),
		ProviderCallTimeout:     getDuration("PROVIDER_CALL_TIMEOUT", 10*time.Second),
		KustomizeTimeout:        getDuration("KUSTOMIZE_TIMEOUT", 60*time.Second),
		SopsTimeout:             getDuration("SOPS_TIMEOUT", 30*time.Second),
		ControllerNamespace:     getEnv("CONTROLLER_NAMESPACE", "secret-manager-controller-system"),
		ArtifactCacheTTL:        getDuration("ARTIFACT_CACHE_TTL", 10*time.Minute),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getInt64(key string, def int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}

func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
