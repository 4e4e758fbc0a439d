package sanitize

import (
	"regexp"
	"strings"
	"testing"
)

func TestNameAppliesPrefixSuffix(t *testing.T) {
	r := Name("PASSWORD", "svcA", "d", AWS)
	if r.SanitizedName != "svcA-PASSWORD-d" {
		t.Fatalf("got %q", r.SanitizedName)
	}
	if r.LogicalKey != "PASSWORD" {
		t.Fatalf("logical key not preserved: %q", r.LogicalKey)
	}
}

func TestNameOmitsAbsentComponents(t *testing.T) {
	r := Name("API_KEY", "", "", AWS)
	if r.SanitizedName != "API_KEY" {
		t.Fatalf("got %q", r.SanitizedName)
	}
}

func TestNameReplacesIllegalChars(t *testing.T) {
	r := Name("db.password!", "", "", GCP)
	if strings.ContainsAny(r.SanitizedName, "!") {
		t.Fatalf("illegal char survived: %q", r.SanitizedName)
	}
}

func TestNameAzureLowercasesAndRestrictsAlphabet(t *testing.T) {
	r := Name("My.Key_Name", "", "", Azure)
	if r.SanitizedName != strings.ToLower(r.SanitizedName) {
		t.Fatalf("expected lowercase azure name, got %q", r.SanitizedName)
	}
	if regexp.MustCompile(`[^a-z0-9-]`).MatchString(r.SanitizedName) {
		t.Fatalf("azure name has illegal chars: %q", r.SanitizedName)
	}
}

func TestNameTruncatesOverMaxWithStableHashSuffix(t *testing.T) {
	long := strings.Repeat("k", 200)
	r1 := Name(long, "", "", Azure)
	r2 := Name(long, "", "", Azure)

	if len(r1.SanitizedName) > 127 {
		t.Fatalf("sanitized name exceeds azure max length: %d", len(r1.SanitizedName))
	}
	if r1.SanitizedName != r2.SanitizedName {
		t.Fatalf("truncation not stable across runs: %q != %q", r1.SanitizedName, r2.SanitizedName)
	}
	if !strings.Contains(r1.SanitizedName, "-") {
		t.Fatalf("expected hash suffix separator in truncated name: %q", r1.SanitizedName)
	}
}

func TestNameStableAcrossRuns(t *testing.T) {
	inputs := []struct{ key, prefix, suffix string }{
		{"TOKEN", "svc", "env"},
		{"a.b.c", "", "x"},
		{strings.Repeat("z", 600), "p", "s"},
	}
	for _, in := range inputs {
		for _, p := range []Provider{AWS, GCP, Azure} {
			a := Name(in.key, in.prefix, in.suffix, p)
			b := Name(in.key, in.prefix, in.suffix, p)
			if a.SanitizedName != b.SanitizedName {
				t.Fatalf("non-deterministic sanitization for %+v/%s: %q != %q", in, p, a.SanitizedName, b.SanitizedName)
			}
		}
	}
}
