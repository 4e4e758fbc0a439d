package sopsdecrypt

import "strings"

// OutcomeKind is the coarse result of a decryption attempt.
type OutcomeKind string

const (
	OutcomeSuccess           OutcomeKind = "Success"
	OutcomeTransientFailure  OutcomeKind = "TransientFailure"
	OutcomePermanentFailure  OutcomeKind = "PermanentFailure"
)

// FailureReason is a specific, remediable cause for a non-success outcome.
type FailureReason string

const (
	ReasonNone              FailureReason = ""
	ReasonKeyNotFound       FailureReason = "KeyNotFound"
	ReasonWrongKey          FailureReason = "WrongKey"
	ReasonInvalidKeyFormat  FailureReason = "InvalidKeyFormat"
	ReasonUnsupportedFormat FailureReason = "UnsupportedFormat"
	ReasonCorruptedFile     FailureReason = "CorruptedFile"
	ReasonTimeout           FailureReason = "Timeout"
	ReasonUnknown           FailureReason = "Unknown"
)

// DecryptionOutcome is the result of one sops invocation.
type DecryptionOutcome struct {
	Kind      OutcomeKind
	Reason    FailureReason
	Message   string
	Plaintext []byte
}

// Remediation returns an operator-facing hint for a failure reason, a pure
// function of the reason alone (spec §7).
func Remediation(reason FailureReason) string {
	switch reason {
	case ReasonKeyNotFound:
		return "no AGE/PGP key available for this namespace; create the key Secret referenced by the ManagedConfig"
	case ReasonWrongKey:
		return "the available key cannot decrypt this file; verify the key matches the recipients in .sops.yaml"
	case ReasonInvalidKeyFormat:
		return "the key material in the key Secret is not a valid AGE/PGP key; check its encoding"
	case ReasonUnsupportedFormat:
		return "the source file is not a format sops recognizes; check its extension and structure"
	case ReasonCorruptedFile:
		return "the encrypted file's SOPS metadata is malformed or truncated; re-encrypt it at the source"
	case ReasonTimeout:
		return "sops did not complete within the configured timeout; retry, or investigate sops/process health"
	default:
		return "retry; if the condition persists, inspect the sops stderr captured in status"
	}
}

// permanentSignatures maps bounded stderr substrings to a specific
// permanent failure reason. Matching is substring-based and intentionally
// narrow: an unmatched stderr falls through to a transient, retryable
// classification rather than guessing.
var permanentSignatures = []struct {
	substr string
	reason FailureReason
}{
	{"no identity matched any of the recipients", ReasonWrongKey},
	{"no matching keys found", ReasonKeyNotFound},
	{"could not parse age key", ReasonInvalidKeyFormat},
	{"malformed age key", ReasonInvalidKeyFormat},
	{"error unmarshalling", ReasonCorruptedFile},
	{"could not parse tree", ReasonCorruptedFile},
	{"error unmarshalling input yaml", ReasonCorruptedFile},
	{"input type is not supported", ReasonUnsupportedFormat},
	{"could not detect input format", ReasonUnsupportedFormat},
}

// Classify turns an exit code and captured stderr into a pure outcome
// classification. The exit-code table is checked first; 128 is sops's own
// "hard failure, do not retry" signal, mirrored from scalaric's
// distinction between its DeadlineExceeded/Canceled cases (translated
// upstream in Decrypt) and a generic command failure carrying stderr.
func Classify(exitCode int, stderr string, stdout []byte) DecryptionOutcome {
	if exitCode == 0 {
		return DecryptionOutcome{Kind: OutcomeSuccess, Plaintext: stdout}
	}

	if exitCode == 128 {
		return DecryptionOutcome{Kind: OutcomePermanentFailure, Reason: ReasonUnknown, Message: stderr}
	}

	lower := strings.ToLower(stderr)
	for _, sig := range permanentSignatures {
		if strings.Contains(lower, sig.substr) {
			return DecryptionOutcome{Kind: OutcomePermanentFailure, Reason: sig.reason, Message: stderr}
		}
	}

	return DecryptionOutcome{Kind: OutcomeTransientFailure, Reason: ReasonUnknown, Message: stderr}
}
