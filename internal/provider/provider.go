// Package provider defines the cloud secret-store abstraction (C6) and
// hosts one implementation per backend (aws, gcp, azure). The reconciler
// never branches on provider identity — it holds a Provider value built
// from a ManagedConfig's ManagedConfigSpec.Provider on first use and cached
// by provider and credentials.
package provider

import "context"

// ExistingSecret describes a secret already present in the target store,
// as returned by ListManaged.
type ExistingSecret struct {
	Name         string
	LastUpdated  string
	VersionIDs   []string
	TagsOrLabels map[string]string
}

// Outcome is the result of EnsureSecret or DisableSecret.
type Outcome string

const (
	OutcomeCreated   Outcome = "Created"
	OutcomeUpdated   Outcome = "Updated"
	OutcomeUnchanged Outcome = "Unchanged"
	OutcomeDisabled  Outcome = "Disabled"
)

// Provider is the capability the reconciler needs from a cloud secret
// store, identical across AWS Secrets Manager, GCP Secret Manager, and
// Azure Key Vault (spec §4.6).
type Provider interface {
	// ListManaged enumerates secrets under prefix within environment,
	// for drift detection against the Git-sourced entry set.
	ListManaged(ctx context.Context, prefix, environment string) ([]ExistingSecret, error)

	// GetCurrentValue returns the latest non-disabled version's value, or
	// ("", false) if the secret does not exist or has no live version.
	GetCurrentValue(ctx context.Context, name string) (string, bool, error)

	// EnsureSecret creates the secret if absent, adds a new version if the
	// value differs from the current one, or reports Unchanged.
	EnsureSecret(ctx context.Context, name, value string, tagsOrLabels map[string]string) (Outcome, error)

	// DisableSecret marks name as disabled. A disabled entry is never
	// deleted from the provider, only version-disabled (spec §4.2, §4.6).
	DisableSecret(ctx context.Context, name string) (Outcome, error)
}
