// Package intent classifies queries into named intents and topic categories
// using keyword rules.
package intent

import (
	"log/slog"
	"strings"

	"github.com/sshroot23cs/SupportSenseAI/internal/domain"
)

// Welcome is the designated greeting intent. When detected, the pipeline
// short-circuits with the intent's canned response and skips retrieval.
const Welcome = "intent_welcome"

// Escalation is the synthetic intent reported when a trigger word routes
// the query straight to a human.
const Escalation = "intent_escalation"

// Classifier scores queries against an ordered table of intent definitions.
// Definitions are read-only after construction.
type Classifier struct {
	intents []domain.IntentDefinition
	byName  map[string]domain.IntentDefinition
	logger  *slog.Logger
}

func NewClassifier(intents []domain.IntentDefinition, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	byName := make(map[string]domain.IntentDefinition, len(intents))
	for _, in := range intents {
		byName[in.Name] = in
	}
	return &Classifier{intents: intents, byName: byName, logger: logger}
}

// Detect returns the best-matching intent name and its confidence in [0, 1].
// Each keyword contributes 2 for an exact phrase match or 1 when any of its
// words appears in the query; the score normalizes by twice the keyword
// count. The first intent to reach the highest score wins; an intent never
// displaces an earlier one on an equal score. Returns ("", 0) when nothing
// matches.
func (c *Classifier) Detect(query string) (string, float64) {
	queryLower := strings.ToLower(query)

	bestIntent := ""
	bestScore := 0.0

	for _, in := range c.intents {
		matched := 0
		for _, kw := range in.Keywords {
			kwLower := strings.ToLower(kw)
			if strings.Contains(queryLower, kwLower) {
				matched += 2
				continue
			}
			for _, word := range strings.Fields(kwLower) {
				if strings.Contains(queryLower, word) {
					matched++
					break
				}
			}
		}

		if matched == 0 || len(in.Keywords) == 0 {
			continue
		}
		score := float64(matched) / float64(len(in.Keywords)*2)
		if score > 1 {
			score = 1
		}
		if score > bestScore {
			bestScore = score
			bestIntent = in.Name
		}
	}

	if bestIntent != "" {
		c.logger.Debug("detected intent", "intent", bestIntent, "confidence", bestScore)
	}
	return bestIntent, bestScore
}

// Get returns the definition for an intent name.
func (c *Classifier) Get(name string) (domain.IntentDefinition, bool) {
	in, ok := c.byName[name]
	return in, ok
}
