package kustomizebuild

import (
	"encoding/base64"
	"testing"
)

func TestExtractSecretsDecodesDataAndStringData(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("s3cr3t"))
	docs := []byte(`
apiVersion: v1
kind: ConfigMap
data:
  irrelevant: "true"
---
apiVersion: v1
kind: Secret
metadata:
  name: app-secrets
stringData:
  GREETING: hello
data:
  PASSWORD: ` + encoded + `
`)

	entries, err := ExtractSecrets(docs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var sawGreeting, sawPassword bool
	for _, e := range entries {
		if e.LogicalKey == "GREETING" && e.RawValue == "hello" {
			sawGreeting = true
		}
		if e.LogicalKey == "PASSWORD" && e.RawValue == "s3cr3t" {
			sawPassword = true
		}
	}
	if !sawGreeting || !sawPassword {
		t.Fatalf("expected both entries decoded, got %+v", entries)
	}
}
