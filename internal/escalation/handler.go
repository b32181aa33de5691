// Package escalation decides when a query must be routed to a human agent,
// assigns ticket priority, and persists escalation tickets.
package escalation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sshroot23cs/SupportSenseAI/internal/domain"
)

// Handler manages escalations to human support agents.
type Handler struct {
	store       domain.TicketStore
	triggers    []string
	highWords   []string
	mediumWords []string
	logger      *slog.Logger
}

type HandlerConfig struct {
	Store               domain.TicketStore
	TriggerWords        []string
	HighPriorityWords   []string
	MediumPriorityWords []string
	Logger              *slog.Logger
}

func NewHandler(cfg HandlerConfig) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Handler{
		store:       cfg.Store,
		triggers:    lowerAll(cfg.TriggerWords),
		highWords:   lowerAll(cfg.HighPriorityWords),
		mediumWords: lowerAll(cfg.MediumPriorityWords),
		logger:      cfg.Logger,
	}
}

func lowerAll(words []string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = strings.ToLower(w)
	}
	return out
}

// ShouldEscalate reports whether the query contains an explicit escalation
// trigger word. This is checked before intent detection or retrieval: a user
// asking for a human gets one immediately.
func (h *Handler) ShouldEscalate(query string) bool {
	lower := strings.ToLower(query)
	for _, trigger := range h.triggers {
		if strings.Contains(lower, trigger) {
			h.logger.Info("escalation trigger word detected", "trigger", trigger)
			return true
		}
	}
	return false
}

// Priority assigns a ticket priority from the query text. Tiers are checked
// high, then medium; the first tier with a matching word wins.
func (h *Handler) Priority(query string) domain.Priority {
	lower := strings.ToLower(query)
	for _, w := range h.highWords {
		if strings.Contains(lower, w) {
			return domain.PriorityHigh
		}
	}
	for _, w := range h.mediumWords {
		if strings.Contains(lower, w) {
			return domain.PriorityMedium
		}
	}
	return domain.PriorityLow
}

// Create persists a new escalation ticket for the query.
func (h *Handler) Create(ctx context.Context, query, reason, userID string, metadata map[string]any) (*domain.Ticket, error) {
	if userID == "" {
		userID = "anonymous"
	}
	ticket, err := h.store.Create(ctx, domain.Ticket{
		UserID:   userID,
		Query:    query,
		Reason:   reason,
		Priority: h.Priority(query),
		Metadata: metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("create escalation ticket: %w", err)
	}
	return ticket, nil
}

// HandoffResponse returns the user-facing message for an escalated query.
func (h *Handler) HandoffResponse(ticketID string) string {
	if ticketID != "" {
		return fmt.Sprintf("Thank you for contacting us. Your support ticket is %s. A human agent will assist you shortly.", ticketID)
	}
	return "Connecting you with a human agent now. Your request is important to us."
}

// Pending returns all unresolved tickets.
func (h *Handler) Pending(ctx context.Context) ([]domain.Ticket, error) {
	return h.store.ListPending(ctx)
}

// Resolve marks a ticket as handled.
func (h *Handler) Resolve(ctx context.Context, id, resolution string) error {
	return h.store.Resolve(ctx, id, resolution)
}
