package v1beta1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// ============================================================
// Source reference
// ============================================================

// SourceRef points to the externally-owned GitOps object this ManagedConfig
// tracks. kind selects which contract (§6.2) applies: a Flux-style source
// carries status.artifact{url,revision,checksum}; an Argo-style source
// carries spec.source{repoURL,targetRevision}.
type SourceRef struct {
	// kind is "GitRepository" (Flux) or "Application" (Argo).
	// +kubebuilder:validation:Required
	// +kubebuilder:validation:Enum=GitRepository;Application
	Kind string `json:"kind"`

	// name is the source object's name.
	// +kubebuilder:validation:Required
	Name string `json:"name"`

	// namespace is the source object's namespace. Defaults to the
	// ManagedConfig's own namespace when omitted.
	// +optional
	Namespace string `json:"namespace,omitempty"`

	// gitCredentials references a Secret carrying username+password or an
	// SSH identity, used only for ArgoApplication-kind sources.
	// +optional
	GitCredentials *SecretKeyRef `json:"gitCredentials,omitempty"`
}

// SecretKeyRef references a key within a Secret in the same namespace.
type SecretKeyRef struct {
	// +kubebuilder:validation:Required
	// +kubebuilder:validation:MinLength=1
	Name string `json:"name"`

	// +kubebuilder:validation:Required
	// +kubebuilder:validation:MinLength=1
	Key string `json:"key"`
}

// ============================================================
// Provider
// ============================================================

// ProviderSpec selects exactly one destination cloud secret store.
type ProviderSpec struct {
	// +optional
	GCP *GCPProvider `json:"gcp,omitempty"`

	// +optional
	AWS *AWSProvider `json:"aws,omitempty"`

	// +optional
	Azure *AzureProvider `json:"azure,omitempty"`
}

// ProviderAuth selects a credential-resolution strategy. Omitting every
// field means "workload identity / default credential chain".
type ProviderAuth struct {
	// credentialsSecretRef names a Secret carrying explicit provider
	// credentials. When unset, the platform SDK's default credential chain
	// is used (workload identity, IRSA, managed identity).
	// +optional
	CredentialsSecretRef *SecretKeyRef `json:"credentialsSecretRef,omitempty"`
}

// GCPProvider targets GCP Secret Manager.
type GCPProvider struct {
	// +kubebuilder:validation:Required
	Project string `json:"project"`
	// +optional
	Auth ProviderAuth `json:"auth,omitempty"`
}

// AWSProvider targets AWS Secrets Manager.
type AWSProvider struct {
	// +kubebuilder:validation:Required
	Region string `json:"region"`
	// +optional
	Auth ProviderAuth `json:"auth,omitempty"`
}

// AzureProvider targets Azure Key Vault.
type AzureProvider struct {
	// vault is the Key Vault name (not the full DNS name).
	// +kubebuilder:validation:Required
	Vault string `json:"vault"`
	// +optional
	Auth ProviderAuth `json:"auth,omitempty"`
}

// ============================================================
// Secrets / Configs
// ============================================================

// SecretsSpec selects which profile of the resolved artifact to
// materialize, and optionally routes the artifact through kustomize first.
type SecretsSpec struct {
	// environment selects the profile directory under basePath.
	// +kubebuilder:validation:Required
	// +kubebuilder:validation:MinLength=1
	Environment string `json:"environment"`

	// kustomizePath, if set, is built with kustomize instead of reading
	// application.secrets.{env,yaml} directly.
	// +optional
	KustomizePath string `json:"kustomizePath,omitempty"`

	// basePath roots the profile lookup (default "."), giving
	// "{basePath}/profiles/{environment}/".
	// +optional
	BasePath string `json:"basePath,omitempty"`

	// prefix is prepended to every sanitized secret name.
	// +optional
	Prefix string `json:"prefix,omitempty"`

	// suffix is appended to every sanitized secret name.
	// +optional
	Suffix string `json:"suffix,omitempty"`
}

// ConfigsSpec enables routing of properties-style entries through a
// separate config-store path. Off by default.
type ConfigsSpec struct {
	// +kubebuilder:default=false
	// +optional
	Enabled bool `json:"enabled,omitempty"`

	// parameterPath roots property entries when configs routing is enabled.
	// +optional
	ParameterPath string `json:"parameterPath,omitempty"`

	// store names the destination config store. Currently the core always
	// routes through the same Provider used for secrets (design note §9);
	// this field is carried for forward compatibility.
	// +optional
	Store string `json:"store,omitempty"`

	// appConfigEndpoint is a passthrough hint for a future dedicated
	// config-store backend; unused by the core today.
	// +optional
	AppConfigEndpoint string `json:"appConfigEndpoint,omitempty"`
}

// OtelSpec is passthrough shape; the core does not act on it (an OTel
// exporter is an explicit external collaborator, §1).
type OtelSpec struct {
	// +optional
	Enabled bool `json:"enabled,omitempty"`
	// +optional
	Endpoint string `json:"endpoint,omitempty"`
}

// NotificationsSpec describes outbound delivery hints. The core only emits
// a Kubernetes Event on phase transitions; any chat or webhook delivery on
// top of that Event stream is a collaborator's job, per design note §9.
type NotificationsSpec struct {
	// +optional
	Enabled bool `json:"enabled,omitempty"`
	// +optional
	WebhookSecretRef *SecretKeyRef `json:"webhookSecretRef,omitempty"`
}

// LoggingSpec is passthrough configuration the core validates the shape of
// but does not act on beyond the process-wide zap logger already wired in
// cmd/manager/main.go.
type LoggingSpec struct {
	// +optional
	Level string `json:"level,omitempty"`
	// +optional
	Format string `json:"format,omitempty"`
}

// HotReloadSpec is passthrough configuration; reserved for a future
// sidecar-triggered reload mechanism outside the core's scope.
type HotReloadSpec struct {
	// +optional
	Enabled bool `json:"enabled,omitempty"`
}

// ============================================================
// Spec / Status
// ============================================================

// ManagedConfigSpec defines the desired state of ManagedConfig.
type ManagedConfigSpec struct {
	// sourceRef points at the GitOps source object carrying the revision
	// to reconcile.
	// +kubebuilder:validation:Required
	SourceRef SourceRef `json:"sourceRef"`

	// provider selects exactly one destination cloud secret store.
	// +kubebuilder:validation:Required
	Provider ProviderSpec `json:"provider"`

	// secrets configures which profile/path of the artifact to materialize.
	// +kubebuilder:validation:Required
	Secrets SecretsSpec `json:"secrets"`

	// configs optionally routes properties-style entries separately.
	// +optional
	Configs ConfigsSpec `json:"configs,omitempty"`

	// +optional
	Otel OtelSpec `json:"otel,omitempty"`

	// gitRepositoryPullInterval is the fallback interval at which the
	// source object itself is expected to refresh (informational; the
	// source's own controller owns pulling). Floor 1m, default 5m.
	// +kubebuilder:default="5m"
	// +optional
	GitRepositoryPullInterval string `json:"gitRepositoryPullInterval,omitempty"`

	// reconcileInterval is the steady-state requeue period on success.
	// +kubebuilder:default="1m"
	// +optional
	ReconcileInterval string `json:"reconcileInterval,omitempty"`

	// diffDiscovery enables drift logging/metrics without additional writes.
	// +optional
	DiffDiscovery bool `json:"diffDiscovery,omitempty"`

	// triggerUpdate forces an immediate reconciliation attempt even if the
	// resolved revision is unchanged. Consumed, never echoed back.
	// +optional
	TriggerUpdate bool `json:"triggerUpdate,omitempty"`

	// suspend halts all provider mutation; the resource remains Suspended
	// until cleared.
	// +optional
	Suspend bool `json:"suspend,omitempty"`

	// suspendGitPulls is a passthrough hint to the source controller; the
	// core itself never pulls Git directly.
	// +optional
	SuspendGitPulls bool `json:"suspendGitPulls,omitempty"`

	// +optional
	Notifications NotificationsSpec `json:"notifications,omitempty"`

	// +optional
	Logging LoggingSpec `json:"logging,omitempty"`

	// +optional
	HotReload HotReloadSpec `json:"hotReload,omitempty"`
}

// SyncEntryStatus tracks one published entry (secret or property).
type SyncEntryStatus struct {
	Exists      bool  `json:"exists"`
	UpdateCount int32 `json:"updateCount"`
}

// SopsStatus carries SOPS capability/decryption diagnostics.
type SopsStatus struct {
	// +kubebuilder:validation:Enum=Success;TransientFailure;PermanentFailure;NotApplicable
	// +optional
	DecryptionStatus string `json:"decryptionStatus,omitempty"`
	// +optional
	LastDecryptionAttempt *metav1.Time `json:"lastDecryptionAttempt,omitempty"`
	// +optional
	LastDecryptionError string `json:"lastDecryptionError,omitempty"`
	// +optional
	KeyAvailable *bool `json:"keyAvailable,omitempty"`
	// +optional
	KeySecretName string `json:"keySecretName,omitempty"`
	// +optional
	KeyNamespace string `json:"keyNamespace,omitempty"`
	// +optional
	KeyLastChecked *metav1.Time `json:"keyLastChecked,omitempty"`
}

// ManagedConfigStatus defines the observed state of ManagedConfig.
type ManagedConfigStatus struct {
	// phase is a coarse human-readable state, also surfaced in a print column.
	// +kubebuilder:validation:Enum=Pending;Cloning;Updating;Ready;Retrying;Failed;Suspended
	// +optional
	Phase string `json:"phase,omitempty"`

	// description is a short human summary of the current phase, surfaced
	// in a print column.
	// +optional
	Description string `json:"description,omitempty"`

	// +optional
	ObservedGeneration int64 `json:"observedGeneration,omitempty"`

	// +optional
	LastReconcileTime *metav1.Time `json:"lastReconcileTime,omitempty"`

	// +optional
	NextReconcileTime *metav1.Time `json:"nextReconcileTime,omitempty"`

	// +listType=map
	// +listMapKey=type
	// +optional
	Conditions []metav1.Condition `json:"conditions,omitempty"`

	// +optional
	Secrets map[string]SyncEntryStatus `json:"secrets,omitempty"`

	// +optional
	Properties map[string]SyncEntryStatus `json:"properties,omitempty"`

	// +optional
	Sops SopsStatus `json:"sops,omitempty"`
}

// ============================================================
// Root objects
// ============================================================

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:storageversion
// +kubebuilder:resource:shortName=smc
// +kubebuilder:printcolumn:name="Phase",type="string",JSONPath=`.status.phase`
// +kubebuilder:printcolumn:name="Description",type="string",JSONPath=`.status.description`
// +kubebuilder:printcolumn:name="Ready",type="string",JSONPath=`.status.conditions[?(@.type=="Ready")].status`
// +kubebuilder:printcolumn:name="Age",type="date",JSONPath=`.metadata.creationTimestamp`

// ManagedConfig is the Schema for the managedconfigs API. On the wire its
// kind is SecretManagerConfig.
type ManagedConfig struct {
	metav1.TypeMeta `json:",inline"`

	// +optional
	metav1.ObjectMeta `json:"metadata,omitzero"`

	// +required
	Spec ManagedConfigSpec `json:"spec"`

	// +optional
	Status ManagedConfigStatus `json:"status,omitzero"`
}

// +kubebuilder:object:root=true

// ManagedConfigList contains a list of ManagedConfig.
type ManagedConfigList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitzero"`
	Items           []ManagedConfig `json:"items"`
}

func init() {
	SchemeBuilder.Register(&ManagedConfig{}, &ManagedConfigList{})
}
