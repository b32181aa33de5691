package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Config is the root configuration for SupportSense.
type Config struct {
	General    GeneralConfig             `json:"general"`
	Providers  map[string]ProviderConfig `json:"providers"`
	Retrieval  RetrievalConfig           `json:"retrieval"`
	Escalation EscalationConfig          `json:"escalation"`
	Categories []CategoryConfig          `json:"categories"`
	Knowledge  KnowledgeConfig           `json:"knowledge"`
	Intents    IntentsConfig             `json:"intents"`
	Responses  ResponseTemplates         `json:"responses"`
}

type GeneralConfig struct {
	LogLevel        string `json:"logLevel"`
	LogFile         string `json:"logFile,omitempty"`
	DataDir         string `json:"dataDir"`
	DefaultProvider string `json:"defaultProvider"`
}

type ProviderConfig struct {
	Enabled        bool   `json:"enabled"`
	APIBase        string `json:"apiBase,omitempty"`
	APIKey         string `json:"apiKey,omitempty"`
	APIVersion     string `json:"apiVersion,omitempty"` // azure only
	DefaultModel   string `json:"defaultModel,omitempty"`
	TimeoutSeconds int    `json:"timeoutSeconds,omitempty"`
}

// RetrievalConfig tunes document retrieval and the confidence policy.
// The 0.5 threshold is calibrated against the retrieval scoring scale
// (per-token keyword weight 5, multi-keyword bonus 3, confidence =
// avg/10); change them together or not at all.
type RetrievalConfig struct {
	TopK                int     `json:"topK"`
	ConfidenceThreshold float64 `json:"confidenceThreshold"`
}

type EscalationConfig struct {
	DBPath              string   `json:"dbPath"`
	TriggerWords        []string `json:"triggerWords"`
	HighPriorityWords   []string `json:"highPriorityWords"`
	MediumPriorityWords []string `json:"mediumPriorityWords"`
}

// CategoryConfig defines one topic category. Order matters: the category
// classifier returns the first category whose keyword matches.
type CategoryConfig struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Keywords    []string `json:"keywords"`
}

type KnowledgeConfig struct {
	Path string `json:"path"`
}

type IntentsConfig struct {
	Dir string `json:"dir,omitempty"` // directory of YAML intent files; empty uses built-ins
}

// ResponseTemplates are the canned strings returned by non-generation
// branches of the pipeline.
type ResponseTemplates struct {
	Guidance    string `json:"guidance"`
	Uncertain   string `json:"uncertain"`
	OutOfScope  string `json:"outOfScope"`
	Escalation  string `json:"escalation"`
	Welcome     string `json:"welcome"`
	SystemError string `json:"systemError"`
}

// DefaultConfigDir returns the default config directory (~/.supportsense).
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".supportsense"
	}
	return filepath.Join(home, ".supportsense")
}

func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

func Load(path string) (*Config, error) {
	path = ExpandPath(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	// Substitute environment variables: ${VAR} and ${VAR:-default}
	data = []byte(ExpandEnvVars(string(data)))

	cfg := Defaults()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("cannot parse config file %s: %w", path, err)
	}

	cfg.General.DataDir = ExpandPath(cfg.General.DataDir)
	cfg.General.LogFile = ExpandPath(cfg.General.LogFile)
	cfg.Escalation.DBPath = ExpandPath(cfg.Escalation.DBPath)
	cfg.Knowledge.Path = ExpandPath(cfg.Knowledge.Path)
	cfg.Intents.Dir = ExpandPath(cfg.Intents.Dir)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns in config strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-(.*?))?\}`)

// ExpandEnvVars replaces ${VAR} with the environment variable value.
// Supports default values: ${VAR:-default} uses "default" when VAR is unset or empty.
func ExpandEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		varName := groups[1]
		defaultVal := ""
		hasDefault := len(groups) >= 3 && groups[2] != ""
		if hasDefault {
			defaultVal = groups[2]
		}

		val, exists := os.LookupEnv(varName)
		if !exists || val == "" {
			if hasDefault {
				return defaultVal
			}
			return match
		}
		return val
	})
}

func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}

// Validate checks that the config has valid values.
func Validate(cfg *Config) error {
	var errs []string

	if cfg.Retrieval.TopK < 1 || cfg.Retrieval.TopK > 50 {
		errs = append(errs, "retrieval.topK must be between 1 and 50")
	}
	if cfg.Retrieval.ConfidenceThreshold < 0 || cfg.Retrieval.ConfidenceThreshold > 1 {
		errs = append(errs, "retrieval.confidenceThreshold must be in [0, 1]")
	}
	if len(cfg.Escalation.TriggerWords) == 0 {
		errs = append(errs, "escalation.triggerWords must not be empty")
	}
	if len(cfg.Categories) == 0 {
		errs = append(errs, "at least one category must be configured")
	}
	for i, c := range cfg.Categories {
		if c.Name == "" {
			errs = append(errs, fmt.Sprintf("categories[%d]: name is required", i))
		}
	}

	switch cfg.General.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, "general.logLevel must be one of: debug, info, warn, error")
	}

	for name, pc := range cfg.Providers {
		if pc.Enabled && pc.TimeoutSeconds < 0 {
			errs = append(errs, fmt.Sprintf("providers.%s: timeoutSeconds must be >= 0", name))
		}
	}
	if cfg.General.DefaultProvider != "" {
		if _, ok := cfg.Providers[cfg.General.DefaultProvider]; !ok {
			errs = append(errs, fmt.Sprintf("general.defaultProvider references unknown provider: %s", cfg.General.DefaultProvider))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// Sanitize returns a copy of cfg with secrets masked, for display.
func Sanitize(cfg *Config) *Config {
	out := *cfg
	out.Providers = make(map[string]ProviderConfig, len(cfg.Providers))
	for name, pc := range cfg.Providers {
		pc.APIKey = mask(pc.APIKey)
		out.Providers[name] = pc
	}
	return &out
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 8 {
		return "***"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}

// ExpandPath resolves ~/ to the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
