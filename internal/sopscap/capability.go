// Package sopscap tracks whether decryption key material is available for
// a given namespace, and resolves the candidate Secret holding it.
// Grounded on a prior resolveSSHAuth: read a well-known
// Secret by name, try a short list of candidate data keys in order, first
// hit wins.
package sopscap

import (
	"context"
	"fmt"
	"strings"
	"time"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/octopilot/secret-manager-controller/internal/errs"
)

// candidateSecretNames is the ordered list of Secret names probed in a
// namespace when no explicit key reference is given (spec §6.4).
var candidateSecretNames = []string{"sops-private-key", "sops-gpg-key", "gpg-key"}

// candidateDataKeys is the ordered list of data keys probed within a
// candidate Secret.
var candidateDataKeys = []string{"private-key", "key", "gpg-key"}

// Capability records the outcome of a key-discovery attempt for one
// namespace, surfaced verbatim into ManagedConfigStatus.Sops.
type Capability struct {
	KeyAvailable bool
	SecretName   string
	Namespace    string
	LastChecked  time.Time
	Keys         []string
}

// Resolver discovers decryption key material per-namespace. Namespace
// isolation is strict: the controller's own namespace is never consulted
// as a fallback for a workload namespace (P3), so each Resolve call is
// scoped to exactly the namespace it's given.
type Resolver struct {
	client client.Client
}

// NewResolver builds a Resolver over a live client.Client.
func NewResolver(c client.Client) *Resolver {
	return &Resolver{client: c}
}

// Resolve attempts key discovery in namespace, optionally starting from an
// explicit secretRef (name) before falling back to the candidate list.
func (r *Resolver) Resolve(ctx context.Context, namespace string, explicitSecretRef string, now time.Time) (Capability, error) {
	names := candidateSecretNames
	if explicitSecretRef != "" {
		names = append([]string{explicitSecretRef}, candidateSecretNames...)
	}

	for _, name := range names {
		var secret corev1.Secret
		err := r.client.Get(ctx, types.NamespacedName{Namespace: namespace, Name: name}, &secret)
		if err != nil {
			continue
		}
		keys := extractKeys(secret)
		if len(keys) == 0 {
			continue
		}
		return Capability{
			KeyAvailable: true,
			SecretName:   name,
			Namespace:    namespace,
			LastChecked:  now,
			Keys:         keys,
		}, nil
	}

	return Capability{
			KeyAvailable: false,
			Namespace:    namespace,
			LastChecked:  now,
		}, errs.New(errs.KindDecryption, "sopscap.Resolve", fmt.Errorf("no decryption key found in namespace %q", namespace)).
			WithKey(namespace)
}

// extractKeys pulls AGE key lines out of a Secret's data, trying each
// candidate data key in order and returning the first non-empty match's
// lines. A Secret may carry multiple newline-separated AGE keys.
func extractKeys(secret corev1.Secret) []string {
	for _, dataKey := range candidateDataKeys {
		raw, ok := secret.Data[dataKey]
		if !ok || len(raw) == 0 {
			continue
		}
		var lines []string
		for _, line := range strings.Split(string(raw), "\n") {
			if trimmed := strings.TrimSpace(line); trimmed != "" {
				lines = append(lines, trimmed)
			}
		}
		return lines
	}
	return nil
}
