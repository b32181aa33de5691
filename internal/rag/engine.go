// Package rag orchestrates the answer pipeline: intent and category
// detection, document retrieval, confidence scoring, and grounded answer
// generation.
package rag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/sshroot23cs/SupportSenseAI/internal/config"
	"github.com/sshroot23cs/SupportSenseAI/internal/domain"
	"github.com/sshroot23cs/SupportSenseAI/internal/intent"
	"github.com/sshroot23cs/SupportSenseAI/internal/knowledge"
	"github.com/sshroot23cs/SupportSenseAI/internal/metrics"
)

// Result is the outcome of one pipeline run. The engine never fails a
// request: generation errors fall back to a user-safe string.
type Result struct {
	Response string
	Outcome  domain.Outcome
	Metadata domain.QueryMetadata
}

// Engine runs queries through retrieval and generation.
type Engine struct {
	kb         *knowledge.Store
	intents    *intent.Classifier
	categories *intent.CategoryDetector
	provider   domain.Provider
	topK       int
	threshold  float64
	responses  config.ResponseTemplates
	logger     *slog.Logger
}

type EngineConfig struct {
	Knowledge  *knowledge.Store
	Intents    *intent.Classifier
	Categories *intent.CategoryDetector
	Provider   domain.Provider
	TopK       int
	Threshold  float64
	Responses  config.ResponseTemplates
	Logger     *slog.Logger
}

func NewEngine(cfg EngineConfig) *Engine {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Engine{
		kb:         cfg.Knowledge,
		intents:    cfg.Intents,
		categories: cfg.Categories,
		provider:   cfg.Provider,
		topK:       cfg.TopK,
		threshold:  cfg.Threshold,
		responses:  cfg.Responses,
		logger:     cfg.Logger,
	}
}

// ProcessQuery runs the full pipeline for one query. Exactly one terminal
// branch is taken: welcome short-circuit, no-documents escalation,
// low-confidence escalation, or a generated answer.
func (e *Engine) ProcessQuery(ctx context.Context, query string) Result {
	meta := domain.QueryMetadata{Query: query}

	intentName, intentConfidence := e.intents.Detect(query)
	meta.Intent = intentName
	meta.IntentConfidence = intentConfidence
	meta.Category = e.categories.Detect(query)

	if intentName == intent.Welcome {
		response := e.responses.Welcome
		if def, ok := e.intents.Get(intentName); ok && def.ResponseTemplate != "" {
			response = def.ResponseTemplate
		}
		meta.Confidence = 1.0
		e.logger.Info("welcome intent detected")
		return Result{Response: response, Outcome: domain.OutcomeWelcome, Metadata: meta}
	}

	docs := e.kb.Search(query, e.topK)
	meta.RetrievedDocs = docs
	e.logger.Info("retrieved documents", "count", len(docs), "query", truncate(query, 50))

	if len(docs) == 0 {
		meta.Confidence = 0.0
		meta.Escalated = true
		meta.EscalationReason = "no relevant documents found"
		e.logger.Warn("no relevant documents found")
		return Result{Response: e.responses.OutOfScope, Outcome: domain.OutcomeNoDocs, Metadata: meta}
	}

	total := 0
	for _, d := range docs {
		total += d.RelevanceScore
	}
	confidence := float64(total) / float64(len(docs)) / 10
	if confidence > 1 {
		confidence = 1
	}
	meta.Confidence = confidence

	if confidence < e.threshold {
		meta.Escalated = true
		meta.EscalationReason = fmt.Sprintf("low confidence score: %.2f", confidence)
		e.logger.Warn("low confidence, escalating", "confidence", confidence)
		return Result{Response: e.responses.Uncertain, Outcome: domain.OutcomeLowConfidence, Metadata: meta}
	}

	response := e.generateAnswer(ctx, query, docs)
	e.logger.Info("generated answer", "confidence", confidence)
	return Result{Response: response, Outcome: domain.OutcomeAnswered, Metadata: meta}
}

// generateAnswer calls the model with the retrieved context. A single
// attempt is made; failures fall back to a user-safe string rather than
// surfacing an error.
func (e *Engine) generateAnswer(ctx context.Context, query string, docs []domain.RetrievalResult) string {
	prompt := BuildPrompt(query, BuildContext(docs))

	metrics.LLMRequestsTotal.Inc()
	start := time.Now()
	answer, err := e.provider.Generate(ctx, domain.GenerateRequest{
		Prompt:      prompt,
		Temperature: generateTemperature,
		TopP:        generateTopP,
		MaxContext:  generateMaxContext,
	})
	metrics.LLMLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.LLMFailuresTotal.Inc()
		e.logger.Error("generation failed", "provider", e.provider.Name(), "err", err)
		return fallbackFor(err)
	}
	return answer
}

// fallbackFor maps a generation error to the user-facing fallback string.
func fallbackFor(err error) string {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return "I'm experiencing delays. Please try again."
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return "Service temporarily unavailable. Please try again."
	}
	return "An error occurred while processing your request."
}

// FAQ returns question/answer pairs from the knowledge base, optionally
// filtered by category.
func (e *Engine) FAQ(category string) []domain.FAQEntry {
	var docs []domain.Document
	if category != "" {
		docs = e.kb.ByCategory(category)
	} else {
		docs = e.kb.Documents()
	}

	entries := make([]domain.FAQEntry, 0, len(docs))
	for _, doc := range docs {
		entries = append(entries, domain.FAQEntry{
			Question: doc.Title,
			Answer:   doc.Content,
			Category: doc.Category,
		})
	}
	return entries
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.TrimSpace(s[:n]) + "..."
}
