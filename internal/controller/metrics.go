package controller

import (
	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"
)

var (
	reconciliationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "secretmanager",
			Subsystem: "controller",
			Name:      "reconciliations_total",
			Help:      "Total number of ManagedConfig reconciliations.",
		},
		[]string{"name", "namespace"},
	)

	reconciliationErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "secretmanager",
			Subsystem: "controller",
			Name:      "reconciliation_errors_total",
			Help:      "Total number of ManagedConfig reconciliation errors.",
		},
		[]string{"name", "namespace"},
	)

	requeuesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "secretmanager",
			Subsystem: "controller",
			Name:      "requeues_total",
			Help:      "Total number of requeues, by reason.",
		},
		[]string{"name", "namespace", "reason"},
	)

	sopsDecryptSuccessTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "secretmanager",
			Subsystem: "controller",
			Name:      "sops_decrypt_success_total",
			Help:      "Total number of successful SOPS decryptions.",
		},
		[]string{"name", "namespace"},
	)

	sopsDecryptionErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "secretmanager",
			Subsystem: "controller",
			Name:      "sops_decryption_errors_total",
			Help:      "Total number of SOPS decryption errors, by failure reason.",
		},
		[]string{"name", "namespace", "reason"},
	)

	secretsPublishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "secretmanager",
			Subsystem: "controller",
			Name:      "secrets_published_total",
			Help:      "Total number of secrets created or updated in the provider.",
		},
		[]string{"name", "namespace", "provider"},
	)

	secretsSkippedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "secretmanager",
			Subsystem: "controller",
			Name:      "secrets_skipped_total",
			Help:      "Total number of secrets left unchanged, by reason.",
		},
		[]string{"name", "namespace", "provider", "reason"},
	)

	secretsDiffDetectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "secretmanager",
			Subsystem: "controller",
			Name:      "secrets_diff_detected_total",
			Help:      "Total number of secrets where the provider's current value diverged from Git.",
		},
		[]string{"name", "namespace", "provider"},
	)

	providerOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "secretmanager",
			Subsystem: "controller",
			Name:      "provider_operations_total",
			Help:      "Total number of provider API operations.",
		},
		[]string{"name", "namespace", "provider"},
	)

	providerOperationErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "secretmanager",
			Subsystem: "controller",
			Name:      "provider_operation_errors_total",
			Help:      "Total number of provider API operation errors.",
		},
		[]string{"name", "namespace", "provider"},
	)

	artifactDownloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "secretmanager",
			Subsystem: "controller",
			Name:      "artifact_downloads_total",
			Help:      "Total number of artifact cache downloads (cache misses).",
		},
		[]string{"name", "namespace"},
	)

	secretsManaged = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "secretmanager",
			Subsystem: "controller",
			Name:      "secrets_managed",
			Help:      "Current number of secrets managed by a ManagedConfig.",
		},
		[]string{"name", "namespace"},
	)

	reconciliationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "secretmanager",
			Subsystem: "controller",
			Name:      "reconciliation_duration_seconds",
			Help:      "Duration of a full ManagedConfig reconciliation attempt.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"name", "namespace"},
	)

	sopsDecryptDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "secretmanager",
			Subsystem: "controller",
			Name:      "sops_decrypt_duration_seconds",
			Help:      "Duration of a single sops decrypt invocation.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"name", "namespace"},
	)

	providerOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "secretmanager",
			Subsystem: "controller",
			Name:      "provider_operation_duration_seconds",
			Help:      "Duration of a single provider API operation.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"name", "namespace", "provider"},
	)

	kustomizeBuildDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "secretmanager",
			Subsystem: "controller",
			Name:      "kustomize_build_duration_seconds",
			Help:      "Duration of a kustomize build invocation.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"name", "namespace"},
	)

	artifactDownloadDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "secretmanager",
			Subsystem: "controller",
			Name:      "artifact_download_duration_seconds",
			Help:      "Duration of an artifact cache download.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"name", "namespace"},
	)
)

func init() {
	metrics.Registry.MustRegister(
		reconciliationsTotal,
		reconciliationErrorsTotal,
		requeuesTotal,
		sopsDecryptSuccessTotal,
		sopsDecryptionErrorsTotal,
		secretsPublishedTotal,
		secretsSkippedTotal,
		secretsDiffDetectedTotal,
		providerOperationsTotal,
		providerOperationErrorsTotal,
		artifactDownloadsTotal,
		secretsManaged,
		reconciliationDuration,
		sopsDecryptDuration,
		providerOperationDuration,
		kustomizeBuildDuration,
		artifactDownloadDuration,
	)
}

// cleanupCRMetrics removes all metric series associated with a ManagedConfig
// being deleted.
func cleanupCRMetrics(name, namespace string) {
	labels := prometheus.Labels{"name": name, "namespace": namespace}
	reconciliationsTotal.DeletePartialMatch(labels)
	reconciliationErrorsTotal.DeletePartialMatch(labels)
	requeuesTotal.DeletePartialMatch(labels)
	sopsDecryptSuccessTotal.DeletePartialMatch(labels)
	sopsDecryptionErrorsTotal.DeletePartialMatch(labels)
	secretsPublishedTotal.DeletePartialMatch(labels)
	secretsSkippedTotal.DeletePartialMatch(labels)
	secretsDiffDetectedTotal.DeletePartialMatch(labels)
	providerOperationsTotal.DeletePartialMatch(labels)
	providerOperationErrorsTotal.DeletePartialMatch(labels)
	artifactDownloadsTotal.DeletePartialMatch(labels)
	secretsManaged.DeletePartialMatch(labels)
	reconciliationDuration.DeletePartialMatch(labels)
	sopsDecryptDuration.DeletePartialMatch(labels)
	providerOperationDuration.DeletePartialMatch(labels)
	kustomizeBuildDuration.DeletePartialMatch(labels)
	artifactDownloadDuration.DeletePartialMatch(labels)
}

// observeReconcileResult updates the gauge/counter metrics after a
// reconciliation attempt.
func observeReconcileResult(name, namespace string, managed int, durationSeconds float64) {
	reconciliationsTotal.WithLabelValues(name, namespace).Inc()
	secretsManaged.WithLabelValues(name, namespace).Set(float64(managed))
	reconciliationDuration.WithLabelValues(name, namespace).Observe(durationSeconds)
}
