package config

import (
	"os"
	"path/filepath"
	"testing"
)

// --- Validate ---

func TestValidate_ValidConfig(t *testing.T) {
	cfg := Defaults()
	if err := Validate(cfg); err != nil {
		t.Fatalf("expected valid config, got: %v", err)
	}
}

func TestValidate_TopKBounds(t *testing.T) {
	cfg := Defaults()
	cfg.Retrieval.TopK = 0
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for topK=0")
	}

	cfg = Defaults()
	cfg.Retrieval.TopK = 51
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for topK=51")
	}
}

func TestValidate_ThresholdBounds(t *testing.T) {
	for _, bad := range []float64{-0.1, 1.1} {
		cfg := Defaults()
		cfg.Retrieval.ConfidenceThreshold = bad
		if err := Validate(cfg); err == nil {
			t.Fatalf("expected error for threshold=%v", bad)
		}
	}
}

func TestValidate_EmptyTriggerWords(t *testing.T) {
	cfg := Defaults()
	cfg.Escalation.TriggerWords = nil
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for empty trigger words")
	}
}

func TestValidate_UnknownDefaultProvider(t *testing.T) {
	cfg := Defaults()
	cfg.General.DefaultProvider = "nonexistent"
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for unknown default provider")
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := Defaults()
	cfg.General.LogLevel = "verbose"
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for invalid log level")
	}
}

// --- Load / Save ---

func TestLoadSave_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	original := Defaults()
	original.Retrieval.TopK = 7

	if err := Save(path, original); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if loaded.Retrieval.TopK != 7 {
		t.Fatalf("expected topK=7, got %d", loaded.Retrieval.TopK)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.json")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	os.WriteFile(path, []byte("{not json}"), 0o644)

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestLoad_WithEnvVarSubstitution(t *testing.T) {
	t.Setenv("TEST_SUPPORTSENSE_KEY", "sk-test-12345")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	content := `{
		"providers": {
			"openai": {
				"enabled": true,
				"apiKey": "${TEST_SUPPORTSENSE_KEY}"
			}
		}
	}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Providers["openai"].APIKey != "sk-test-12345" {
		t.Fatalf("expected substituted key, got %q", cfg.Providers["openai"].APIKey)
	}
}

// --- ExpandEnvVars ---

func TestExpandEnvVars_DefaultValue(t *testing.T) {
	os.Unsetenv("NONEXISTENT_VAR_12345")
	result := ExpandEnvVars(`{"base": "${NONEXISTENT_VAR_12345:-http://localhost:11434}"}`)
	expected := `{"base": "http://localhost:11434"}`
	if result != expected {
		t.Fatalf("expected %q, got %q", expected, result)
	}
}

func TestExpandEnvVars_SetVarOverridesDefault(t *testing.T) {
	t.Setenv("MY_BASE", "http://remote:11434")
	result := ExpandEnvVars(`"${MY_BASE:-http://localhost:11434}"`)
	expected := `"http://remote:11434"`
	if result != expected {
		t.Fatalf("expected %q, got %q", expected, result)
	}
}

func TestExpandEnvVars_UnsetVarNoDefault_KeepsOriginal(t *testing.T) {
	os.Unsetenv("TOTALLY_UNSET_VAR_XYZ")
	input := `"${TOTALLY_UNSET_VAR_XYZ}"`
	if result := ExpandEnvVars(input); result != input {
		t.Fatalf("expected no change, got %q", result)
	}
}

// --- Sanitize ---

func TestSanitize_MasksAPIKeys(t *testing.T) {
	cfg := Defaults()
	cfg.Providers["openai"] = ProviderConfig{
		Enabled: true,
		APIKey:  "sk-1234567890abcdefghijklmnop",
	}

	sanitized := Sanitize(cfg)

	if sanitized.Providers["openai"].APIKey == cfg.Providers["openai"].APIKey {
		t.Fatal("API key should be masked")
	}
	if cfg.Providers["openai"].APIKey != "sk-1234567890abcdefghijklmnop" {
		t.Fatal("original config should not be modified")
	}
}

func TestSanitize_ShortSecret(t *testing.T) {
	cfg := Defaults()
	cfg.Providers["openai"] = ProviderConfig{APIKey: "short"}
	sanitized := Sanitize(cfg)
	if sanitized.Providers["openai"].APIKey != "***" {
		t.Fatalf("short secret should be '***', got %q", sanitized.Providers["openai"].APIKey)
	}
}

// --- Defaults ---

func TestDefaults_ReturnsValidConfig(t *testing.T) {
	cfg := Defaults()
	if cfg == nil {
		t.Fatal("defaults returned nil")
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("defaults should be valid: %v", err)
	}
	if cfg.Retrieval.ConfidenceThreshold != 0.5 {
		t.Fatalf("default threshold should be 0.5, got %v", cfg.Retrieval.ConfidenceThreshold)
	}
	if cfg.General.DefaultProvider != "ollama" {
		t.Fatalf("default provider should be 'ollama', got %q", cfg.General.DefaultProvider)
	}
}
