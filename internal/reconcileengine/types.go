// Package reconcileengine implements C7: the pure reconciliation function
// (ManagedConfig, ReconcilerCtx) -> (StatusPatch, Action). All I/O is
// reached through the Dependencies interface so the decision logic itself
// stays a single, testable function with no hidden state, keeping
// client-call plumbing (internal/controller) separate from the decisions
// made about it.
package reconcileengine

import "time"

// Phase mirrors the state machine in spec §4.7.
type Phase string

const (
	PhasePending   Phase = "Pending"
	PhaseCloning   Phase = "Cloning"
	PhaseUpdating  Phase = "Updating"
	PhaseReady     Phase = "Ready"
	PhaseRetrying  Phase = "Retrying"
	PhaseFailed    Phase = "Failed"
	PhaseSuspended Phase = "Suspended"
)

// ActionKind distinguishes the two possible scheduling decisions.
type ActionKind string

const (
	ActionAwaitChange   ActionKind = "AwaitChange"
	ActionRequeueAfter  ActionKind = "RequeueAfter"
)

// Action is the single scheduling decision a reconciliation attempt may
// return. Exactly one Action comes out of Reconcile — never nested,
// never duplicated (spec §4.7).
type Action struct {
	Kind  ActionKind
	After time.Duration
}

// AwaitChange waits on a dependency: source not ready, SOPS key missing,
// suspend active.
func AwaitChange() Action { return Action{Kind: ActionAwaitChange} }

// RequeueAfter schedules the next attempt after d.
func RequeueAfter(d time.Duration) Action { return Action{Kind: ActionRequeueAfter, After: d} }

// SecretOutcome records what happened to one logical key during a
// reconciliation, surfaced into StatusPatch.Secrets.
type SecretOutcome struct {
	LogicalKey     string
	ProviderName   string
	Outcome        string // Created | Updated | Unchanged | Disabled
	DriftDetected  bool
	IsProperty     bool
}

// SopsPatch is the decryption-capability slice of a StatusPatch.
type SopsPatch struct {
	DecryptionStatus  string
	LastError         string
	KeyAvailable      bool
	KeySecretName     string
	KeyNamespace      string
	LastChecked       time.Time
}

// StatusPatch is the full set of status changes one reconciliation
// attempt produces. It is computed in full before any patch is applied —
// status updates are atomic (spec §5).
type StatusPatch struct {
	Phase              Phase
	Description        string
	ObservedGeneration int64
	LastReconcileTime  time.Time
	NextReconcileTime  time.Time
	Secrets            []SecretOutcome
	Sops               SopsPatch
	ConditionReady     bool
	ConditionReason    string
	ConditionMessage   string
	SecretsManaged     int
	SecretsDisabled    int
	SecretsDrifted     int
}
