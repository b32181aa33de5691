package config

import "path/filepath"

func Defaults() *Config {
	dataDir := filepath.Join(DefaultConfigDir(), "data")
	return &Config{
		General: GeneralConfig{
			LogLevel:        "info",
			DataDir:         dataDir,
			DefaultProvider: "ollama",
		},
		Providers: map[string]ProviderConfig{
			"ollama": {
				Enabled:        true,
				APIBase:        "http://localhost:11434",
				DefaultModel:   "auto",
				TimeoutSeconds: 300,
			},
			"openai": {
				Enabled:        false,
				DefaultModel:   "gpt-4o-mini",
				TimeoutSeconds: 120,
			},
		},
		Retrieval: RetrievalConfig{
			TopK:                3,
			ConfidenceThreshold: 0.5,
		},
		Escalation: EscalationConfig{
			DBPath:              filepath.Join(dataDir, "escalations.db"),
			TriggerWords:        []string{"agent", "human", "support", "manager", "representative"},
			HighPriorityWords:   []string{"urgent", "broken", "defective", "not working", "immediate", "critical"},
			MediumPriorityWords: []string{"claim", "refund", "warranty"},
		},
		Categories: defaultCategories(),
		Knowledge: KnowledgeConfig{
			Path: filepath.Join(dataDir, "knowledge_base.json"),
		},
		Intents:   IntentsConfig{},
		Responses: defaultResponses(),
	}
}

// defaultCategories returns the closed category set in classification order.
func defaultCategories() []CategoryConfig {
	return []CategoryConfig{
		{
			Name:        "protection_plans",
			Description: "Information about protection plans",
			Keywords:    []string{"plan", "coverage", "protection", "warranty"},
		},
		{
			Name:        "claims",
			Description: "Filing and tracking claims",
			Keywords:    []string{"claim", "file", "coverage", "damage", "incident"},
		},
		{
			Name:        "support",
			Description: "General support topics",
			Keywords:    []string{"help", "support", "faq", "guide", "how"},
		},
	}
}

func defaultResponses() ResponseTemplates {
	return ResponseTemplates{
		Guidance:    "Please enter a question to get started.",
		Uncertain:   "I'm not entirely certain about that. Let me escalate this to our support team.",
		OutOfScope:  "I can only help with questions about plans, claims, and coverage. Your question seems outside my scope.",
		Escalation:  "I'm connecting you with a human agent who can better assist you.",
		Welcome:     "Welcome to SquareTrade! How can I help you?",
		SystemError: "I encountered an error processing your request. Our support team has been notified.",
	}
}
