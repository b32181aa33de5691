package rag

import (
	"fmt"
	"strings"

	"github.com/sshroot23cs/SupportSenseAI/internal/domain"
)

// Sampling parameters for factual answers. Low temperature keeps the model
// close to the source material.
const (
	generateTemperature = 0.3
	generateTopP        = 0.9
	generateMaxContext  = 2048
)

// BuildContext renders retrieved documents into numbered source blocks.
func BuildContext(docs []domain.RetrievalResult) string {
	var parts []string
	for i, doc := range docs {
		parts = append(parts, fmt.Sprintf("Source %d: %s", i+1, doc.Title))
		parts = append(parts, doc.Content)
		parts = append(parts, "---")
	}
	return strings.Join(parts, "\n")
}

// BuildPrompt wraps the query and source context in the grounding
// instructions sent to the model.
func BuildPrompt(query, context string) string {
	return fmt.Sprintf(`You are a helpful SquareTrade customer support assistant. Your task is to answer the user's question using ONLY the information from the provided sources below.

IMPORTANT RULES:
1. Use ONLY information from the sources provided. Do NOT make up information.
2. If the user's question is answered in the sources, provide a clear and helpful answer.
3. If the answer is NOT in the sources, say "I don't have that information in our knowledge base."
4. Read all sources carefully before answering - the answer may be in any of the sources.

SOURCES:
%s

USER QUESTION: %s

ANSWER (use the information from sources above):`, context, query)
}
