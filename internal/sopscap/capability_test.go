package sopscap

import (
	"context"
	"testing"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"
)

func TestResolveFindsFirstCandidateSecret(t *testing.T) {
	secret := &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{Name: "sops-gpg-key", Namespace: "team-a"},
		Data:       map[string][]byte{"key": []byte("AGE-SECRET-KEY-1...\n")},
	}
	c := fake.NewClientBuilder().WithObjects(secret).Build()
	r := NewResolver(c)

	cap, err := r.Resolve(context.Background(), "team-a", "", time.Unix(0, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cap.KeyAvailable || cap.SecretName != "sops-gpg-key" {
		t.Fatalf("unexpected capability: %+v", cap)
	}
}

func TestResolveNamespaceIsolation(t *testing.T) {
	secret := &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{Name: "sops-private-key", Namespace: "secret-manager-controller-system"},
		Data:       map[string][]byte{"private-key": []byte("AGE-SECRET-KEY-1...\n")},
	}
	c := fake.NewClientBuilder().WithObjects(secret).Build()
	r := NewResolver(c)

	cap, err := r.Resolve(context.Background(), "team-a", "", time.Unix(0, 0))
	if err == nil || cap.KeyAvailable {
		t.Fatalf("expected key-not-found in team-a; the controller namespace must never be a fallback")
	}
}

func TestResolveNoKeyFound(t *testing.T) {
	c := fake.NewClientBuilder().Build()
	r := NewResolver(c)

	cap, err := r.Resolve(context.Background(), "team-a", "", time.Unix(0, 0))
	if err == nil {
		t.Fatalf("expected error when no candidate secret exists")
	}
	if cap.KeyAvailable {
		t.Fatalf("expected KeyAvailable=false")
	}
}
