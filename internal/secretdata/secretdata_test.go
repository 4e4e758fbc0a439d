package secretdata

import "testing"

func entryByKey(entries []Entry, key string) (Entry, bool) {
	for _, e := range entries {
		if e.LogicalKey == key {
			return e, true
		}
	}
	return Entry{}, false
}

func TestParseEnvEnabledAndDisabled(t *testing.T) {
	data := []byte("PASSWORD=p1\nAPI_KEY=k1\n# OLD_TOKEN=x\nTOKEN=y\n\n# a bare comment\n")
	entries, err := ParseEnv("application.secrets.env", data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pw, ok := entryByKey(entries, "PASSWORD")
	if !ok || !pw.Enabled || pw.RawValue != "p1" {
		t.Fatalf("PASSWORD entry wrong: %+v ok=%v", pw, ok)
	}

	old, ok := entryByKey(entries, "OLD_TOKEN")
	if !ok || old.Enabled || old.RawValue != "x" {
		t.Fatalf("OLD_TOKEN entry wrong: %+v ok=%v", old, ok)
	}

	if len(entries) != 4 {
		t.Fatalf("expected 4 entries (bare comment ignored), got %d: %+v", len(entries), entries)
	}
}

func TestParseEnvValuesVerbatim(t *testing.T) {
	entries, err := ParseEnv("f.env", []byte(`GREETING=hello $world "quoted"`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e, ok := entryByKey(entries, "GREETING")
	if !ok || e.RawValue != `hello $world "quoted"` {
		t.Fatalf("expected verbatim value, got %+v", e)
	}
}

func TestParseYAMLFlattensNestedMappings(t *testing.T) {
	data := []byte("db:\n  host: localhost\n  port: 5432\ntoken: abc\n")
	entries, err := ParseYAML("application.secrets.yaml", data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	host, ok := entryByKey(entries, "db.host")
	if !ok || host.RawValue != "localhost" {
		t.Fatalf("expected db.host=localhost, got %+v ok=%v", host, ok)
	}
	port, ok := entryByKey(entries, "db.port")
	if !ok || port.RawValue != "5432" {
		t.Fatalf("expected db.port=5432 (stringified int), got %+v ok=%v", port, ok)
	}
}

func TestParseYAMLRejectsListNodes(t *testing.T) {
	_, err := ParseYAML("bad.yaml", []byte("items:\n  - a\n  - b\n"))
	if err == nil {
		t.Fatalf("expected error for list node")
	}
}

func TestParseYAMLRecordsDisabledCommentedKeys(t *testing.T) {
	data := []byte("# legacy_token: x\ncurrent_token: y\n")
	entries, err := ParseYAML("f.yaml", data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	legacy, ok := entryByKey(entries, "legacy_token")
	if !ok || legacy.Enabled || legacy.RawValue != "" {
		t.Fatalf("expected disabled legacy_token with empty value, got %+v ok=%v", legacy, ok)
	}
}

func TestParsePropertiesMatchesEnvSemantics(t *testing.T) {
	entries, err := ParseProperties("app.properties", []byte("a=1\n#b=2\n# a bare comment\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a, ok := entryByKey(entries, "a")
	if !ok || !a.Enabled || a.RawValue != "1" {
		t.Fatalf("unexpected entry a: %+v ok=%v", a, ok)
	}
	b, ok := entryByKey(entries, "b")
	if !ok || b.Enabled || b.RawValue != "2" {
		t.Fatalf("unexpected entry b: %+v ok=%v", b, ok)
	}
}

func TestMergeYAMLOverridesEnvAndCarriesDisabled(t *testing.T) {
	env := []Entry{
		{LogicalKey: "PASSWORD", RawValue: "p1", Enabled: true},
		{LogicalKey: "UNIQUE_ENV", RawValue: "e", Enabled: true},
	}
	yaml := []Entry{
		{LogicalKey: "PASSWORD", RawValue: "", Enabled: false},
	}

	merged := Merge(env, yaml)

	pw, ok := entryByKey(merged, "PASSWORD")
	if !ok || pw.Enabled {
		t.Fatalf("expected PASSWORD disabled by YAML override, got %+v ok=%v", pw, ok)
	}
	if _, ok := entryByKey(merged, "UNIQUE_ENV"); !ok {
		t.Fatalf("expected env-only key to survive merge")
	}
}
