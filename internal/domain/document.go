package domain

// Document is a single knowledge base entry. Documents are immutable after
// load; Add on the store assigns a fresh ID when one is missing.
type Document struct {
	ID       string   `json:"id"`
	Category string   `json:"category"`
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Keywords []string `json:"keywords,omitempty"`
}

// RetrievalResult is a document augmented with the relevance score computed
// for one query. It is built per-query and never persisted.
type RetrievalResult struct {
	Document
	RelevanceScore int `json:"relevance_score"`
}

// FAQEntry is a question/answer pair derived from a knowledge base document.
type FAQEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Category string `json:"category"`
}

// QueryMetadata captures everything the pipeline learned about one request.
// It lives for the duration of the request and is returned inside the
// response envelope.
type QueryMetadata struct {
	Query            string            `json:"user_query"`
	Intent           string            `json:"intent,omitempty"`
	IntentConfidence float64           `json:"intent_confidence"`
	Category         string            `json:"category,omitempty"`
	RetrievedDocs    []RetrievalResult `json:"retrieved_docs"`
	Confidence       float64           `json:"confidence"`
	Escalated        bool              `json:"escalated"`
	EscalationReason string            `json:"escalation_reason,omitempty"`
}

// Envelope is the response returned to the caller. Every branch of the
// pipeline terminates in a well-formed envelope; no internal error ever
// propagates past the agent.
type Envelope struct {
	Response     string         `json:"response"`
	Success      bool           `json:"success"`
	Escalated    bool           `json:"escalated"`
	EscalationID string         `json:"escalation_id,omitempty"`
	Priority     string         `json:"priority,omitempty"`
	Confidence   float64        `json:"confidence,omitempty"`
	Category     string         `json:"category,omitempty"`
	Sources      int            `json:"sources,omitempty"`
	Outcome      Outcome        `json:"outcome"`
	Metadata     *QueryMetadata `json:"metadata,omitempty"`
}
