package reconcileengine

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/octopilot/secret-manager-controller/internal/errs"
	"github.com/octopilot/secret-manager-controller/internal/sopsdecrypt"
)

// Reconcile runs one reconciliation attempt for cfg using deps, following
// the nine-step algorithm in spec §4.7. It returns exactly one StatusPatch
// and one Action; it never performs a partial status update (the patch is
// fully computed before being returned) and never emits a nested or
// duplicate scheduling decision.
func Reconcile(ctx context.Context, cfg ManagedConfigInput, now nowFunc, deps Dependencies) (StatusPatch, Action) {
	base := StatusPatch{
		ObservedGeneration: cfg.Generation,
		LastReconcileTime:  now(),
	}

	// Step 1: suspend short-circuits everything else.
	if cfg.Suspend {
		base.Phase = PhaseSuspended
		base.Description = "reconciliation suspended by spec.suspend"
		base.ConditionReady = false
		base.ConditionReason = "Suspended"
		base.ConditionMessage = base.Description
		return base, AwaitChange()
	}

	// Step 2: resolve source.
	source, err := deps.Source.Resolve(ctx, cfg)
	if err != nil {
		return dependencyFailure(base, err, deps, cfg)
	}
	base.Phase = PhaseCloning

	// Step 3: SOPS capability check, namespace-scoped, no controller-namespace fallback.
	sopsCheck, err := deps.Sops.Check(ctx, cfg.Namespace, source.Dir)
	if err != nil {
		return pendingFromError(base, err), AwaitChange()
	}
	base.Sops = SopsPatch{
		KeyAvailable:  sopsCheck.KeyAvailable,
		KeySecretName: sopsCheck.KeySecretName,
		LastChecked:   now(),
	}
	if sopsCheck.AnyFileEncrypted && !sopsCheck.KeyAvailable {
		base.Sops.DecryptionStatus = string(sopsdecrypt.OutcomePermanentFailure)
		base.Sops.LastError = sopsdecrypt.Remediation(sopsdecrypt.ReasonKeyNotFound)
		base.Phase = PhasePending
		base.Description = "no decryption key available in this namespace"
		base.ConditionReady = false
		base.ConditionReason = "KeyNotFound"
		base.ConditionMessage = base.Sops.LastError
		return base, AwaitChange()
	}
	if !sopsCheck.AnyFileEncrypted {
		base.Sops.DecryptionStatus = "NotApplicable"
	}

	base.Phase = PhaseUpdating

	// Steps 4-5: materialize entries (kustomize or raw file discovery,
	// decrypt any SOPS-encrypted source, parse, merge).
	entries, err := deps.Materialize.Materialize(ctx, source.Dir, cfg)
	if err != nil {
		return failureFromError(base, err, deps, cfg)
	}

	// Steps 6-7: sync each entry through the provider, bounded-concurrent
	// (spec §5: a bounded errgroup.Group sized by ProviderFanout). Each
	// goroutine owns a distinct outcomes[i] slot, so no lock is needed for
	// the writes themselves; the per-phase counters below are tallied
	// single-threaded afterwards instead of shared across goroutines.
	outcomes := make([]SecretOutcome, len(entries))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(providerFanout(deps.ProviderFanout))
	for i, entry := range entries {
		i, entry := i, entry
		group.Go(func() error {
			outcome, err := deps.Sync.Sync(groupCtx, entry, cfg)
			if err != nil {
				return err
			}
			outcomes[i] = outcome
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return failureFromError(base, err, deps, cfg)
	}

	var managed, disabled, drifted int
	for _, outcome := range outcomes {
		if outcome.Outcome == "Disabled" {
			disabled++
		} else {
			managed++
		}
		if cfg.DiffDiscovery && outcome.DriftDetected {
			drifted++
		}
	}

	base.Secrets = outcomes
	base.SecretsManaged = managed
	base.SecretsDisabled = disabled
	base.SecretsDrifted = drifted
	if sopsCheck.AnyFileEncrypted {
		base.Sops.DecryptionStatus = string(sopsdecrypt.OutcomeSuccess)
	}

	// Step 8-9: success path.
	base.Phase = PhaseReady
	base.Description = "reconciled successfully"
	base.ConditionReady = true
	base.ConditionReason = "Reconciled"
	base.ConditionMessage = base.Description

	if deps.ClearBackoff != nil {
		deps.ClearBackoff(cfg.Namespace, cfg.Name)
	}

	return base, RequeueAfter(cfg.ReconcileInterval)
}

// providerFanout returns the configured bound on concurrent provider syncs,
// defaulting to sequential (1) when unset so callers that never set
// Dependencies.ProviderFanout (notably existing tests) keep today's
// deterministic one-at-a-time behavior.
func providerFanout(n int) int {
	if n <= 0 {
		return 1
	}
	return n
}

// pendingFromError maps an errs.KindArtifactPending error (a source whose
// status/artifact simply isn't populated yet) to the Pending, AwaitChange
// branch of the state machine.
func pendingFromError(patch StatusPatch, err error) StatusPatch {
	patch.Phase = PhasePending
	patch.Description = err.Error()
	patch.ConditionReady = false
	patch.ConditionReason = "AwaitingDependency"
	patch.ConditionMessage = err.Error()
	return patch
}

// dependencyFailure classifies a source-resolution error (step 2). A source
// that simply isn't ready yet (errs.KindArtifactPending: no status/artifact
// populated) waits for a change event. Anything else — in particular
// errs.KindArtifactIntegrity, a checksum mismatch or an unsafe
// (path-traversal) archive entry — is never going to resolve itself by
// waiting, so it runs through the same transient/permanent split
// failureFromError applies to materialize/sync errors, which for
// KindArtifactIntegrity always lands on Failed (spec §4.4/§4.7: a tampered
// or malformed artifact needs operator action, not an open-ended wait).
func dependencyFailure(patch StatusPatch, err error, deps Dependencies, cfg ManagedConfigInput) (StatusPatch, Action) {
	var e *errs.Error
	if errs.As(err, &e) && e.Kind == errs.KindArtifactPending {
		return pendingFromError(patch, err), AwaitChange()
	}
	return failureFromError(patch, err, deps, cfg)
}

// failureFromError classifies a materialize/sync error as transient or
// permanent and completes the corresponding state transition and action.
func failureFromError(patch StatusPatch, err error, deps Dependencies, cfg ManagedConfigInput) (StatusPatch, Action) {
	if errs.Transient(err) {
		patch.Phase = PhaseRetrying
		patch.Description = err.Error()
		patch.ConditionReady = false
		patch.ConditionReason = "TransientError"
		patch.ConditionMessage = err.Error()
		delay := defaultBackoffFloor
		if deps.Backoff != nil {
			delay = deps.Backoff(cfg.Namespace, cfg.Name)
		}
		return patch, RequeueAfter(delay)
	}

	patch.Phase = PhaseFailed
	patch.Description = err.Error()
	patch.ConditionReady = false
	patch.ConditionReason = "PermanentError"
	patch.ConditionMessage = err.Error()
	return patch, AwaitChange()
}
