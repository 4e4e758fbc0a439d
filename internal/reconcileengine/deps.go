package reconcileengine

import (
	"context"
	"time"

	"github.com/octopilot/secret-manager-controller/internal/secretdata"
)

// ResolvedSource is what step 2 of the algorithm needs from C4.
type ResolvedSource struct {
	Dir      string
	Revision string
}

// SourceResolver is the narrow seam onto C4 (artifact.Resolver) the
// engine needs: resolve a ManagedConfig's source reference to a working
// tree. Implementations return an errs.Error with KindArtifactPending
// when the source isn't ready yet.
type SourceResolver interface {
	Resolve(ctx context.Context, cfg ManagedConfigInput) (ResolvedSource, error)
}

// SopsCheck is what step 3 needs from C3/sopscap about a namespace's key
// availability.
type SopsCheck struct {
	AnyFileEncrypted bool
	KeyAvailable     bool
	KeySecretName    string
}

// SopsChecker is the narrow seam onto sopscap + sopsdecrypt.IsEncrypted.
type SopsChecker interface {
	Check(ctx context.Context, namespace, dir string) (SopsCheck, error)
}

// EntryMaterializer is the narrow seam onto C5 (kustomize) and C2/C3
// (parse + decrypt): given a resolved directory, produce the merged
// logical-key entry set.
type EntryMaterializer interface {
	Materialize(ctx context.Context, dir string, cfg ManagedConfigInput) ([]secretdata.Entry, error)
}

// ProviderSyncer is the narrow seam onto C1 (sanitize) + C6 (provider):
// synchronize one entry and report its outcome.
type ProviderSyncer interface {
	Sync(ctx context.Context, entry secretdata.Entry, cfg ManagedConfigInput) (SecretOutcome, error)
}

// ManagedConfigInput is the slice of ManagedConfigSpec the engine actually
// reads, kept narrow so this package doesn't need to import api/v1beta1
// and can be exercised with plain test fixtures.
type ManagedConfigInput struct {
	Namespace         string
	Name              string
	Generation        int64
	Suspend           bool
	KustomizePath     string
	BasePath          string
	Environment       string
	DiffDiscovery     bool
	ReconcileInterval time.Duration
}

// Dependencies bundles the seams Reconcile calls through.
type Dependencies struct {
	Source    SourceResolver
	Sops      SopsChecker
	Materialize EntryMaterializer
	Sync      ProviderSyncer
	Backoff   func(namespace, name string) time.Duration
	ClearBackoff func(namespace, name string)

	// ProviderFanout bounds how many entries steps 6-7 sync concurrently
	// through Sync. Defaults to 1 (sequential) when zero or negative.
	ProviderFanout int
}
