// Package agent is the top-level orchestrator. It applies the escalation
// policy around the answer pipeline and guarantees every request terminates
// in a well-formed response envelope.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sshroot23cs/SupportSenseAI/internal/domain"
	"github.com/sshroot23cs/SupportSenseAI/internal/escalation"
	"github.com/sshroot23cs/SupportSenseAI/internal/intent"
	"github.com/sshroot23cs/SupportSenseAI/internal/knowledge"
	"github.com/sshroot23cs/SupportSenseAI/internal/metrics"
	"github.com/sshroot23cs/SupportSenseAI/internal/rag"
)

// Agent processes user messages end to end. No error ever propagates past
// ProcessMessage: failures become system-error envelopes with a ticket.
type Agent struct {
	kb         *knowledge.Store
	engine     *rag.Engine
	escalation *escalation.Handler
	provider   domain.Provider
	guidance   string
	apology    string
	logger     *slog.Logger
}

type Config struct {
	Knowledge  *knowledge.Store
	Engine     *rag.Engine
	Escalation *escalation.Handler
	Provider   domain.Provider

	// Guidance is returned for empty input; Apology for system errors.
	Guidance string
	Apology  string

	Logger *slog.Logger
}

func New(cfg Config) *Agent {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Agent{
		kb:         cfg.Knowledge,
		engine:     cfg.Engine,
		escalation: cfg.Escalation,
		provider:   cfg.Provider,
		guidance:   cfg.Guidance,
		apology:    cfg.Apology,
		logger:     cfg.Logger,
	}
}

// ProcessMessage handles one user message and always returns an envelope.
func (a *Agent) ProcessMessage(ctx context.Context, message, userID, sessionID string) domain.Envelope {
	metrics.MessagesTotal.Inc()
	env := a.process(ctx, message, userID, sessionID)
	metrics.OutcomeCounter(string(env.Outcome)).Inc()
	if env.EscalationID != "" {
		metrics.EscalationsTotal.Inc()
	}
	return env
}

func (a *Agent) process(ctx context.Context, message, userID, sessionID string) domain.Envelope {
	if strings.TrimSpace(message) == "" {
		return domain.Envelope{
			Response: a.guidance,
			Success:  false,
			Outcome:  domain.OutcomeInputRejected,
		}
	}

	a.logger.Info("processing message", "user", userID, "session", sessionID)

	// Explicit requests for a human bypass the pipeline entirely.
	if a.escalation.ShouldEscalate(message) {
		return a.escalateUpfront(ctx, message, userID, sessionID)
	}

	result := a.engine.ProcessQuery(ctx, message)

	if result.Metadata.Escalated {
		return a.escalateFromPipeline(ctx, message, userID, sessionID, result)
	}

	response := result.Response
	if suffix := sourcesSuffix(result.Metadata.RetrievedDocs); suffix != "" {
		response += suffix
	}

	return domain.Envelope{
		Response:   response,
		Success:    true,
		Confidence: result.Metadata.Confidence,
		Category:   result.Metadata.Category,
		Sources:    len(result.Metadata.RetrievedDocs),
		Outcome:    result.Outcome,
		Metadata:   &result.Metadata,
	}
}

func (a *Agent) escalateUpfront(ctx context.Context, message, userID, sessionID string) domain.Envelope {
	reason := "user requested human support"
	ticket, err := a.escalation.Create(ctx, message, reason, userID, map[string]any{
		"session_id": sessionID,
	})
	if err != nil {
		return a.systemError(ctx, message, userID, sessionID, err)
	}

	meta := domain.QueryMetadata{
		Query:            message,
		Intent:           intent.Escalation,
		IntentConfidence: 1.0,
		Escalated:        true,
		EscalationReason: reason,
	}
	return domain.Envelope{
		Response:     a.escalation.HandoffResponse(ticket.ID),
		Success:      true,
		Escalated:    true,
		EscalationID: ticket.ID,
		Priority:     string(ticket.Priority),
		Outcome:      domain.OutcomeEscalationTriggered,
		Metadata:     &meta,
	}
}

func (a *Agent) escalateFromPipeline(ctx context.Context, message, userID, sessionID string, result rag.Result) domain.Envelope {
	ticket, err := a.escalation.Create(ctx, message, result.Metadata.EscalationReason, userID, map[string]any{
		"session_id": sessionID,
		"confidence": result.Metadata.Confidence,
		"category":   result.Metadata.Category,
	})
	if err != nil {
		return a.systemError(ctx, message, userID, sessionID, err)
	}

	return domain.Envelope{
		Response:     result.Response,
		Success:      true,
		Escalated:    true,
		EscalationID: ticket.ID,
		Priority:     string(ticket.Priority),
		Confidence:   result.Metadata.Confidence,
		Category:     result.Metadata.Category,
		Outcome:      result.Outcome,
		Metadata:     &result.Metadata,
	}
}

// systemError converts an unexpected failure into an escalation ticket and a
// generic apology. Ticket creation here is best-effort: if the store itself
// is down, the envelope still goes out without an id.
func (a *Agent) systemError(ctx context.Context, message, userID, sessionID string, cause error) domain.Envelope {
	a.logger.Error("system error processing message", "err", cause)

	env := domain.Envelope{
		Response:  a.apology,
		Success:   false,
		Escalated: true,
		Outcome:   domain.OutcomeSystemError,
	}

	ticket, err := a.escalation.Create(ctx, message,
		fmt.Sprintf("system error: %s", cause), userID,
		map[string]any{"session_id": sessionID})
	if err != nil {
		a.logger.Error("cannot create error ticket", "err", err)
		return env
	}
	env.EscalationID = ticket.ID
	env.Priority = string(ticket.Priority)
	return env
}

// sourcesSuffix renders the source list appended to confident answers.
func sourcesSuffix(docs []domain.RetrievalResult) string {
	if len(docs) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n\nSources:\n")
	for i, doc := range docs {
		fmt.Fprintf(&b, "%d. %s\n", i+1, doc.Title)
	}
	return strings.TrimRight(b.String(), "\n")
}

// FAQ returns FAQ entries, optionally filtered by category.
func (a *Agent) FAQ(category string) []domain.FAQEntry {
	return a.engine.FAQ(category)
}
