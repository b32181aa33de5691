package intent

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromDirectory_MissingDir_UsesDefaults(t *testing.T) {
	intents, err := LoadFromDirectory("/nonexistent/intents", testLogger())
	if err != nil {
		t.Fatalf("missing dir should not error: %v", err)
	}
	if len(intents) == 0 {
		t.Fatal("expected default intents")
	}
	if intents[0].Name != Welcome {
		t.Fatalf("expected %s first, got %q", Welcome, intents[0].Name)
	}
}

func TestLoadFromDirectory_EmptyDirPath_UsesDefaults(t *testing.T) {
	intents, err := LoadFromDirectory("", testLogger())
	if err != nil {
		t.Fatalf("empty dir should not error: %v", err)
	}
	if len(intents) != len(DefaultIntents()) {
		t.Fatalf("expected %d defaults, got %d", len(DefaultIntents()), len(intents))
	}
}

func TestLoadFromDirectory_ParsesYAML(t *testing.T) {
	dir := t.TempDir()
	content := `name: intent_shipping
keywords:
  - shipping status
  - track my order
response_template: "Your order is on its way."
`
	if err := os.WriteFile(filepath.Join(dir, "shipping.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	intents, err := LoadFromDirectory(dir, testLogger())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(intents) != 1 {
		t.Fatalf("expected 1 intent, got %d", len(intents))
	}
	if intents[0].Name != "intent_shipping" {
		t.Fatalf("unexpected name %q", intents[0].Name)
	}
	if len(intents[0].Keywords) != 2 {
		t.Fatalf("expected 2 keywords, got %d", len(intents[0].Keywords))
	}
}

func TestLoadFromDirectory_NameDefaultsToFilename(t *testing.T) {
	dir := t.TempDir()
	content := "keywords:\n  - billing question\n"
	if err := os.WriteFile(filepath.Join(dir, "intent_billing.yml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	intents, err := LoadFromDirectory(dir, testLogger())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(intents) != 1 || intents[0].Name != "intent_billing" {
		t.Fatalf("expected name from filename, got %+v", intents)
	}
}

func TestLoadFromDirectory_SkipsMalformedFiles(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("[unclosed"), 0o644)
	os.WriteFile(filepath.Join(dir, "good.yaml"), []byte("name: intent_ok\nkeywords: [ok]\n"), 0o644)
	os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("not yaml"), 0o644)

	intents, err := LoadFromDirectory(dir, testLogger())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(intents) != 1 || intents[0].Name != "intent_ok" {
		t.Fatalf("expected only the well-formed intent, got %+v", intents)
	}
}
