/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package conditions holds the ManagedConfig status.conditions[] type and
// reason catalog. The reason values match reconcileengine.StatusPatch's
// ConditionReason output one-for-one, so the controller never need
// translate between the two.
package conditions

// Condition types for ManagedConfig status.conditions[].type.
const (
	// TypeReady is the sole top-level condition (spec §4.9): status
	// True/False/Unknown, reason one of the Reason* constants below.
	TypeReady = "Ready"
)

// Condition reasons for ManagedConfig status.conditions[].reason, mirroring
// reconcileengine's state machine (spec §4.7).
const (
	ReasonSuspended         = "Suspended"
	ReasonAwaitingDependency = "AwaitingDependency"
	ReasonKeyNotFound       = "KeyNotFound"
	ReasonTransientError    = "TransientError"
	ReasonPermanentError    = "PermanentError"
	ReasonReconciled        = "Reconciled"
)
