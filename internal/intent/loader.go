package intent

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/sshroot23cs/SupportSenseAI/internal/domain"

	"gopkg.in/yaml.v3"
)

// LoadFromDirectory loads intent definitions from YAML files in a directory,
// in filename order. Files must have a .yaml or .yml extension and conform
// to the IntentDefinition schema. A missing directory yields the built-in
// defaults.
func LoadFromDirectory(dir string, logger *slog.Logger) ([]domain.IntentDefinition, error) {
	if dir == "" {
		return DefaultIntents(), nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		logger.Debug("intents directory does not exist, using defaults", "dir", dir)
		return DefaultIntents(), nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read intents dir: %w", err)
	}

	var intents []domain.IntentDefinition
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}

		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("cannot read intent file", "path", path, "err", err)
			continue
		}

		var in domain.IntentDefinition
		if err := yaml.Unmarshal(data, &in); err != nil {
			logger.Warn("cannot parse intent file", "path", path, "err", err)
			continue
		}

		if in.Name == "" {
			in.Name = strings.TrimSuffix(name, filepath.Ext(name))
		}

		logger.Info("loaded intent", "name", in.Name, "keywords", len(in.Keywords))
		intents = append(intents, in)
	}

	if len(intents) == 0 {
		return DefaultIntents(), nil
	}
	return intents, nil
}

// DefaultIntents returns the built-in intent table used when no intent files
// are configured.
func DefaultIntents() []domain.IntentDefinition {
	return []domain.IntentDefinition{
		{
			Name:             Welcome,
			Keywords:         []string{"hi", "hello", "hey", "good morning", "good afternoon", "what can you do"},
			ResponseTemplate: "Welcome to SquareTrade! I can help with protection plans, filing claims, and coverage questions. How can I help you?",
		},
		{
			Name:     "intent_plans",
			Keywords: []string{"protection plan", "plan options", "pricing", "cost"},
			DocumentIDs: []string{
				"plan_001", "plan_002",
			},
		},
		{
			Name:     "intent_claims",
			Keywords: []string{"file a claim", "claim status", "claim processing"},
			DocumentIDs: []string{
				"claim_001", "claim_002",
			},
		},
	}
}
