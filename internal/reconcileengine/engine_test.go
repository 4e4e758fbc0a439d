package reconcileengine

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/octopilot/secret-manager-controller/internal/errs"
	"github.com/octopilot/secret-manager-controller/internal/secretdata"
)

type fakeSource struct {
	resolved ResolvedSource
	err      error
}

func (f fakeSource) Resolve(ctx context.Context, cfg ManagedConfigInput) (ResolvedSource, error) {
	return f.resolved, f.err
}

type fakeSops struct {
	check SopsCheck
	err   error
}

func (f fakeSops) Check(ctx context.Context, namespace, dir string) (SopsCheck, error) {
	return f.check, f.err
}

type fakeMaterializer struct {
	entries []secretdata.Entry
	err     error
}

func (f fakeMaterializer) Materialize(ctx context.Context, dir string, cfg ManagedConfigInput) ([]secretdata.Entry, error) {
	return f.entries, f.err
}

type fakeSyncer struct {
	outcome SecretOutcome
	err     error
}

func (f fakeSyncer) Sync(ctx context.Context, entry secretdata.Entry, cfg ManagedConfigInput) (SecretOutcome, error) {
	return f.outcome, f.err
}

func fixedNow() time.Time { return time.Unix(1700000000, 0) }

func baseDeps() Dependencies {
	return Dependencies{
		Source:      fakeSource{resolved: ResolvedSource{Dir: "/tmp/repo", Revision: "abc"}},
		Sops:        fakeSops{check: SopsCheck{}},
		Materialize: fakeMaterializer{entries: nil},
		Sync:        fakeSyncer{outcome: SecretOutcome{Outcome: "Created"}},
	}
}

func TestReconcileSuspendReturnsAwaitChange(t *testing.T) {
	cfg := ManagedConfigInput{Namespace: "ns", Name: "app", Suspend: true}
	patch, action := Reconcile(context.Background(), cfg, fixedNow, baseDeps())

	if patch.Phase != PhaseSuspended {
		t.Fatalf("expected Suspended phase, got %s", patch.Phase)
	}
	if action.Kind != ActionAwaitChange {
		t.Fatalf("expected AwaitChange, got %+v", action)
	}
}

func TestReconcileSourceNotReadyIsPending(t *testing.T) {
	deps := baseDeps()
	deps.Source = fakeSource{err: errs.New(errs.KindArtifactPending, "resolve", fmt.Errorf("artifact not ready"))}

	cfg := ManagedConfigInput{Namespace: "ns", Name: "app"}
	patch, action := Reconcile(context.Background(), cfg, fixedNow, deps)

	if patch.Phase != PhasePending {
		t.Fatalf("expected Pending phase, got %s", patch.Phase)
	}
	if action.Kind != ActionAwaitChange {
		t.Fatalf("expected AwaitChange, got %+v", action)
	}
}

func TestReconcileMissingSopsKeyIsPendingWithRemediation(t *testing.T) {
	deps := baseDeps()
	deps.Sops = fakeSops{check: SopsCheck{AnyFileEncrypted: true, KeyAvailable: false}}

	cfg := ManagedConfigInput{Namespace: "ns", Name: "app"}
	patch, action := Reconcile(context.Background(), cfg, fixedNow, deps)

	if patch.Phase != PhasePending || action.Kind != ActionAwaitChange {
		t.Fatalf("expected Pending/AwaitChange, got phase=%s action=%+v", patch.Phase, action)
	}
	if patch.Sops.LastError == "" {
		t.Fatalf("expected a remediation message")
	}
}

func TestReconcileTransientMaterializeErrorGoesToRetrying(t *testing.T) {
	deps := baseDeps()
	deps.Materialize = fakeMaterializer{err: errs.New(errs.KindTemplating, "materialize", fmt.Errorf("kustomize timed out")).WithRetryable(true)}
	var backoffCalled bool
	deps.Backoff = func(namespace, name string) time.Duration {
		backoffCalled = true
		return 90 * time.Second
	}

	cfg := ManagedConfigInput{Namespace: "ns", Name: "app"}
	patch, action := Reconcile(context.Background(), cfg, fixedNow, deps)

	if patch.Phase != PhaseRetrying {
		t.Fatalf("expected Retrying phase, got %s", patch.Phase)
	}
	if action.Kind != ActionRequeueAfter || action.After != 90*time.Second {
		t.Fatalf("expected RequeueAfter(90s), got %+v", action)
	}
	if !backoffCalled {
		t.Fatalf("expected the backoff table to be consulted")
	}
}

func TestReconcileNonRetryableTemplatingErrorGoesToFailed(t *testing.T) {
	deps := baseDeps()
	deps.Materialize = fakeMaterializer{err: errs.New(errs.KindTemplating, "materialize", fmt.Errorf("kustomize build failed: no such resource"))}

	cfg := ManagedConfigInput{Namespace: "ns", Name: "app"}
	patch, action := Reconcile(context.Background(), cfg, fixedNow, deps)

	if patch.Phase != PhaseFailed {
		t.Fatalf("expected Failed phase for a non-zero-exit kustomize build, got %s", patch.Phase)
	}
	if action.Kind != ActionAwaitChange {
		t.Fatalf("expected AwaitChange, got %+v", action)
	}
}

func TestReconcileNonRetryableProviderErrorGoesToFailed(t *testing.T) {
	deps := baseDeps()
	deps.Sync = fakeSyncer{err: errs.New(errs.KindProvider, "sync", fmt.Errorf("access denied"))}

	cfg := ManagedConfigInput{Namespace: "ns", Name: "app"}
	patch, action := Reconcile(context.Background(), cfg, fixedNow, deps)

	if patch.Phase != PhaseFailed {
		t.Fatalf("expected Failed phase for a non-retryable provider error, got %s", patch.Phase)
	}
	if action.Kind != ActionAwaitChange {
		t.Fatalf("expected AwaitChange, got %+v", action)
	}
}

func TestReconcileRetryableProviderErrorGoesToRetrying(t *testing.T) {
	deps := baseDeps()
	deps.Sync = fakeSyncer{err: errs.New(errs.KindProvider, "sync", fmt.Errorf("throttled")).WithRetryable(true)}
	deps.Backoff = func(namespace, name string) time.Duration { return 30 * time.Second }

	cfg := ManagedConfigInput{Namespace: "ns", Name: "app"}
	patch, action := Reconcile(context.Background(), cfg, fixedNow, deps)

	if patch.Phase != PhaseRetrying {
		t.Fatalf("expected Retrying phase for a retryable provider error, got %s", patch.Phase)
	}
	if action.Kind != ActionRequeueAfter || action.After != 30*time.Second {
		t.Fatalf("expected RequeueAfter(30s), got %+v", action)
	}
}

func TestReconcileArtifactIntegrityErrorGoesToFailedNotPending(t *testing.T) {
	deps := baseDeps()
	deps.Source = fakeSource{err: errs.New(errs.KindArtifactIntegrity, "resolve", fmt.Errorf("checksum mismatch"))}

	cfg := ManagedConfigInput{Namespace: "ns", Name: "app"}
	patch, action := Reconcile(context.Background(), cfg, fixedNow, deps)

	if patch.Phase != PhaseFailed {
		t.Fatalf("expected Failed phase for a checksum mismatch, got %s", patch.Phase)
	}
	if action.Kind != ActionAwaitChange {
		t.Fatalf("expected AwaitChange, got %+v", action)
	}
}

func TestReconcilePermanentValidationErrorGoesToFailed(t *testing.T) {
	deps := baseDeps()
	deps.Materialize = fakeMaterializer{err: errs.New(errs.KindValidation, "materialize", fmt.Errorf("unknown provider"))}

	cfg := ManagedConfigInput{Namespace: "ns", Name: "app"}
	patch, action := Reconcile(context.Background(), cfg, fixedNow, deps)

	if patch.Phase != PhaseFailed {
		t.Fatalf("expected Failed phase, got %s", patch.Phase)
	}
	if action.Kind != ActionAwaitChange {
		t.Fatalf("expected AwaitChange, got %+v", action)
	}
}

func TestReconcileSuccessReturnsReadyAndClearsBackoff(t *testing.T) {
	deps := baseDeps()
	deps.Materialize = fakeMaterializer{entries: []secretdata.Entry{{LogicalKey: "PASSWORD", RawValue: "p1", Enabled: true}}}
	var cleared bool
	deps.ClearBackoff = func(namespace, name string) { cleared = true }

	cfg := ManagedConfigInput{Namespace: "ns", Name: "app", ReconcileInterval: 5 * time.Minute}
	patch, action := Reconcile(context.Background(), cfg, fixedNow, deps)

	if patch.Phase != PhaseReady {
		t.Fatalf("expected Ready phase, got %s", patch.Phase)
	}
	if action.Kind != ActionRequeueAfter || action.After != 5*time.Minute {
		t.Fatalf("expected RequeueAfter(reconcile_interval), got %+v", action)
	}
	if !cleared {
		t.Fatalf("expected backoff to be cleared on success")
	}
	if patch.SecretsManaged != 1 {
		t.Fatalf("expected 1 managed secret, got %d", patch.SecretsManaged)
	}
}

func TestReconcileSuccessWithEncryptedSourceSetsSopsSuccess(t *testing.T) {
	deps := baseDeps()
	deps.Sops = fakeSops{check: SopsCheck{AnyFileEncrypted: true, KeyAvailable: true}}
	deps.Materialize = fakeMaterializer{entries: []secretdata.Entry{{LogicalKey: "PASSWORD", RawValue: "p1", Enabled: true}}}

	cfg := ManagedConfigInput{Namespace: "ns", Name: "app", ReconcileInterval: time.Minute}
	patch, _ := Reconcile(context.Background(), cfg, fixedNow, deps)

	if patch.Phase != PhaseReady {
		t.Fatalf("expected Ready phase, got %s", patch.Phase)
	}
	if patch.Sops.DecryptionStatus != "Success" {
		t.Fatalf("expected Sops.DecryptionStatus=Success, got %q", patch.Sops.DecryptionStatus)
	}
}

// TestReconcileReturnsExactlyOneAction is a smoke check for P1: across every
// branch exercised above, Action is a single value, not a slice or channel,
// so any caller can only ever observe one scheduling decision per call.
func TestReconcileReturnsExactlyOneAction(t *testing.T) {
	cfg := ManagedConfigInput{Namespace: "ns", Name: "app"}
	patch, action := Reconcile(context.Background(), cfg, fixedNow, baseDeps())
	_ = patch
	switch action.Kind {
	case ActionAwaitChange, ActionRequeueAfter:
	default:
		t.Fatalf("unexpected action kind: %s", action.Kind)
	}
}
