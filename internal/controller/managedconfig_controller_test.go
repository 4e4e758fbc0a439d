package controller

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	secretmanagerv1beta1 "github.com/octopilot/secret-manager-controller/api/v1beta1"
	"github.com/octopilot/secret-manager-controller/internal/provider/sanitize"
	"github.com/octopilot/secret-manager-controller/internal/reconcileengine"
)

func TestTargetDirUsesKustomizePathWhenSet(t *testing.T) {
	got := targetDir("/root", "overlays/prod", "ignored", "ignored")
	want := filepath.Join("/root", "overlays/prod")
	if got != want {
		t.Fatalf("targetDir = %q, want %q", got, want)
	}
}

func TestTargetDirDefaultsBasePathToDot(t *testing.T) {
	got := targetDir("/root", "", "", "staging")
	want := filepath.Join("/root", ".", "profiles", "staging")
	if got != want {
		t.Fatalf("targetDir = %q, want %q", got, want)
	}
}

func TestDirHasEncryptedFileMissingDirIsFalseNotError(t *testing.T) {
	ok, err := dirHasEncryptedFile(filepath.Join(t.TempDir(), "does-not-exist"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected false for a missing directory")
	}
}

func TestDirHasEncryptedFileDetectsSopsMarker(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "application.secrets.yaml"), []byte("sops:\n    lastmodified: '2024-01-01'\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	ok, err := dirHasEncryptedFile(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatalf("expected true: the sops marker is present")
	}
}

func TestDirHasEncryptedFileIgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("sops: not actually encrypted"), 0o600); err != nil {
		t.Fatal(err)
	}
	ok, err := dirHasEncryptedFile(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected false: only the three known source filenames are scanned")
	}
}

func TestReadOptionalFileMissingReturnsFalse(t *testing.T) {
	_, ok := readOptionalFile(t.TempDir(), "application.secrets.env")
	if ok {
		t.Fatalf("expected false for a missing file")
	}
}

func TestReadOptionalFilePresent(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "application.properties"), []byte("a=b\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	data, ok := readOptionalFile(dir, "application.properties")
	if !ok {
		t.Fatalf("expected true")
	}
	if string(data) != "a=b\n" {
		t.Fatalf("data = %q", data)
	}
}

func TestValidateProviderRejectsZeroAndMultiple(t *testing.T) {
	if err := validateProvider(secretmanagerv1beta1.ProviderSpec{}); err == nil {
		t.Fatalf("expected error for no provider set")
	}
	both := secretmanagerv1beta1.ProviderSpec{
		AWS: &secretmanagerv1beta1.AWSProvider{Region: "us-east-1"},
		GCP: &secretmanagerv1beta1.GCPProvider{Project: "proj"},
	}
	if err := validateProvider(both); err == nil {
		t.Fatalf("expected error for two providers set")
	}
	one := secretmanagerv1beta1.ProviderSpec{AWS: &secretmanagerv1beta1.AWSProvider{Region: "us-east-1"}}
	if err := validateProvider(one); err != nil {
		t.Fatalf("unexpected error for exactly one provider: %v", err)
	}
}

func TestProviderNameAndSanitizeKind(t *testing.T) {
	cases := []struct {
		spec     secretmanagerv1beta1.ProviderSpec
		wantName string
		wantKind sanitize.Provider
	}{
		{secretmanagerv1beta1.ProviderSpec{AWS: &secretmanagerv1beta1.AWSProvider{}}, "aws", sanitize.AWS},
		{secretmanagerv1beta1.ProviderSpec{GCP: &secretmanagerv1beta1.GCPProvider{}}, "gcp", sanitize.GCP},
		{secretmanagerv1beta1.ProviderSpec{Azure: &secretmanagerv1beta1.AzureProvider{}}, "azure", sanitize.Azure},
	}
	for _, c := range cases {
		if got := providerName(c.spec); got != c.wantName {
			t.Errorf("providerName = %q, want %q", got, c.wantName)
		}
		if got := providerSanitizeKind(c.spec); got != c.wantKind {
			t.Errorf("providerSanitizeKind = %v, want %v", got, c.wantKind)
		}
	}
}

func TestProviderCacheKeyDistinguishesCredentials(t *testing.T) {
	noCreds := secretmanagerv1beta1.ProviderSpec{AWS: &secretmanagerv1beta1.AWSProvider{Region: "us-east-1"}}
	withCreds := secretmanagerv1beta1.ProviderSpec{AWS: &secretmanagerv1beta1.AWSProvider{
		Region: "us-east-1",
		Auth:   secretmanagerv1beta1.ProviderAuth{CredentialsSecretRef: &secretmanagerv1beta1.SecretKeyRef{Name: "creds", Key: "k"}},
	}}

	k1, err := providerCacheKey(noCreds)
	if err != nil {
		t.Fatal(err)
	}
	k2, err := providerCacheKey(withCreds)
	if err != nil {
		t.Fatal(err)
	}
	if k1 == k2 {
		t.Fatalf("expected distinct cache keys, both were %q", k1)
	}

	k1again, err := providerCacheKey(noCreds)
	if err != nil {
		t.Fatal(err)
	}
	if k1 != k1again {
		t.Fatalf("expected a stable cache key for identical specs")
	}
}

func TestProviderCacheKeyRejectsUnconfigured(t *testing.T) {
	if _, err := providerCacheKey(secretmanagerv1beta1.ProviderSpec{}); err == nil {
		t.Fatalf("expected error for an empty provider spec")
	}
}

func TestParseAzureServicePrincipal(t *testing.T) {
	tenant, client, secret, err := parseAzureServicePrincipal([]byte("tenant-1:client-2:super-secret:with:colons"))
	if err != nil {
		t.Fatal(err)
	}
	if tenant != "tenant-1" || client != "client-2" || secret != "super-secret:with:colons" {
		t.Fatalf("got %q/%q/%q", tenant, client, secret)
	}
}

func TestParseAzureServicePrincipalRejectsMalformed(t *testing.T) {
	if _, _, _, err := parseAzureServicePrincipal([]byte("only-one-part")); err == nil {
		t.Fatalf("expected error for a malformed credential string")
	}
}

func TestToEngineInputEnforcesReconcileIntervalFloor(t *testing.T) {
	mc := &secretmanagerv1beta1.ManagedConfig{
		Spec: secretmanagerv1beta1.ManagedConfigSpec{
			Provider:          secretmanagerv1beta1.ProviderSpec{AWS: &secretmanagerv1beta1.AWSProvider{Region: "us-east-1"}},
			ReconcileInterval: "1s",
		},
	}
	cfg, err := toEngineInput(mc, 30*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ReconcileInterval != 30*time.Second {
		t.Fatalf("ReconcileInterval = %v, want the 30s floor", cfg.ReconcileInterval)
	}
}

func TestToEngineInputRejectsInvalidProvider(t *testing.T) {
	mc := &secretmanagerv1beta1.ManagedConfig{}
	if _, err := toEngineInput(mc, 0); err == nil {
		t.Fatalf("expected error: no provider configured")
	}
}

func TestIncrementedUpdateCountOnlyBumpsOnWrite(t *testing.T) {
	mc := &secretmanagerv1beta1.ManagedConfig{
		Status: secretmanagerv1beta1.ManagedConfigStatus{
			Secrets: map[string]secretmanagerv1beta1.SyncEntryStatus{
				"PASSWORD": {UpdateCount: 3},
			},
		},
	}

	unchanged := incrementedUpdateCount(mc, reconcileengine.SecretOutcome{LogicalKey: "PASSWORD", Outcome: "Unchanged"})
	if unchanged != 3 {
		t.Fatalf("Unchanged outcome: got %d, want 3", unchanged)
	}

	updated := incrementedUpdateCount(mc, reconcileengine.SecretOutcome{LogicalKey: "PASSWORD", Outcome: "Updated"})
	if updated != 4 {
		t.Fatalf("Updated outcome: got %d, want 4", updated)
	}
}

func TestIncrementedUpdateCountTracksPropertiesSeparately(t *testing.T) {
	mc := &secretmanagerv1beta1.ManagedConfig{
		Status: secretmanagerv1beta1.ManagedConfigStatus{
			Secrets: map[string]secretmanagerv1beta1.SyncEntryStatus{
				"SHARED_KEY": {UpdateCount: 5},
			},
			Properties: map[string]secretmanagerv1beta1.SyncEntryStatus{
				"SHARED_KEY": {UpdateCount: 1},
			},
		},
	}

	got := incrementedUpdateCount(mc, reconcileengine.SecretOutcome{LogicalKey: "SHARED_KEY", Outcome: "Created", IsProperty: true})
	if got != 2 {
		t.Fatalf("property update count = %d, want 2 (independent of the secrets-map baseline of 5)", got)
	}
}

func TestSetReadyConditionUpsertsSingleCondition(t *testing.T) {
	mc := &secretmanagerv1beta1.ManagedConfig{}
	setReadyCondition(mc, reconcileengine.StatusPatch{ConditionReady: false, ConditionReason: "AwaitingDependency", ConditionMessage: "waiting"})
	if len(mc.Status.Conditions) != 1 {
		t.Fatalf("expected exactly one condition, got %d", len(mc.Status.Conditions))
	}
	if mc.Status.Conditions[0].Status != metav1.ConditionFalse {
		t.Fatalf("expected ConditionFalse")
	}

	setReadyCondition(mc, reconcileengine.StatusPatch{ConditionReady: true, ConditionReason: "Reconciled", ConditionMessage: "ok"})
	if len(mc.Status.Conditions) != 1 {
		t.Fatalf("expected the Ready condition to be upserted in place, got %d conditions", len(mc.Status.Conditions))
	}
	if mc.Status.Conditions[0].Status != metav1.ConditionTrue {
		t.Fatalf("expected ConditionTrue after a successful reconcile")
	}
}
