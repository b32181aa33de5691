package domain

import (
	"context"
	"time"
)

type TicketStatus string

const (
	TicketPending  TicketStatus = "pending"
	TicketResolved TicketStatus = "resolved"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Ticket is an escalation handed to a human agent. Tickets are created by
// policy decisions and mutated only by explicit resolution.
type Ticket struct {
	ID         string         `json:"id"`
	CreatedAt  time.Time      `json:"timestamp"`
	UserID     string         `json:"user_id"`
	Query      string         `json:"user_query"`
	Reason     string         `json:"reason"`
	Status     TicketStatus   `json:"status"`
	Priority   Priority       `json:"priority"`
	AssignedTo string         `json:"assigned_to,omitempty"`
	Resolution string         `json:"resolution,omitempty"`
	ResolvedAt *time.Time     `json:"resolved_at,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// TicketStore persists escalation tickets. Writes are serialized by the
// implementation; reads may run concurrently.
type TicketStore interface {
	Create(ctx context.Context, t Ticket) (*Ticket, error)
	ListPending(ctx context.Context) ([]Ticket, error)
	Resolve(ctx context.Context, id, resolution string) error
	CountPending(ctx context.Context) (int, error)
	Close() error
}
