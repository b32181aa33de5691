package domain

// IntentDefinition is a named user goal detected via keyword rules. Loaded
// once at startup, read-only for the life of the process.
type IntentDefinition struct {
	Name             string   `json:"name" yaml:"name"`
	Keywords         []string `json:"keywords" yaml:"keywords"`
	ResponseTemplate string   `json:"response_template,omitempty" yaml:"response_template,omitempty"`
	DocumentIDs      []string `json:"document_ids,omitempty" yaml:"document_ids,omitempty"`
}
