package escalation

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sshroot23cs/SupportSenseAI/internal/domain"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements domain.TicketStore using SQLite. Writes are
// serialized through a mutex so ticket ids stay sequential under
// concurrent requests.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.Mutex
	logger *slog.Logger
}

func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create database directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}

	// Single connection for SQLite
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &SQLiteStore{db: db, logger: logger}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database migration failed: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS tickets (
		id          TEXT PRIMARY KEY,
		created_at  DATETIME DEFAULT CURRENT_TIMESTAMP,
		user_id     TEXT NOT NULL,
		query       TEXT NOT NULL,
		reason      TEXT NOT NULL,
		status      TEXT NOT NULL DEFAULT 'pending',
		priority    TEXT NOT NULL DEFAULT 'low',
		assigned_to TEXT,
		resolution  TEXT,
		resolved_at DATETIME,
		metadata    TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_tickets_status ON tickets(status, created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Create persists a ticket, assigning a sequential id (ESC_00001, ...) and
// filling in defaults for status, priority, and creation time.
func (s *SQLiteStore) Create(ctx context.Context, t domain.Ticket) (*domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.ID == "" {
		var count int
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tickets`).Scan(&count); err != nil {
			return nil, fmt.Errorf("count tickets: %w", err)
		}
		t.ID = fmt.Sprintf("ESC_%05d", count+1)
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	if t.Status == "" {
		t.Status = domain.TicketPending
	}
	if t.Priority == "" {
		t.Priority = domain.PriorityLow
	}

	var meta []byte
	if t.Metadata != nil {
		var err error
		meta, err = json.Marshal(t.Metadata)
		if err != nil {
			return nil, fmt.Errorf("marshal ticket metadata: %w", err)
		}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tickets (id, created_at, user_id, query, reason, status, priority, assigned_to, metadata)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.CreatedAt, t.UserID, t.Query, t.Reason, string(t.Status), string(t.Priority), t.AssignedTo, string(meta),
	)
	if err != nil {
		return nil, fmt.Errorf("insert ticket: %w", err)
	}

	s.logger.Info("created escalation ticket", "id", t.ID, "priority", t.Priority, "reason", t.Reason)
	return &t, nil
}

// ListPending returns all pending tickets, oldest first.
func (s *SQLiteStore) ListPending(ctx context.Context) ([]domain.Ticket, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, user_id, query, reason, status, priority,
		        COALESCE(assigned_to, ''), COALESCE(resolution, ''), resolved_at, COALESCE(metadata, '')
		 FROM tickets WHERE status = ? ORDER BY created_at`,
		string(domain.TicketPending),
	)
	if err != nil {
		return nil, fmt.Errorf("query pending tickets: %w", err)
	}
	defer rows.Close()

	var tickets []domain.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

func scanTicket(rows *sql.Rows) (domain.Ticket, error) {
	var t domain.Ticket
	var status, priority, meta string
	var resolvedAt sql.NullTime
	if err := rows.Scan(&t.ID, &t.CreatedAt, &t.UserID, &t.Query, &t.Reason,
		&status, &priority, &t.AssignedTo, &t.Resolution, &resolvedAt, &meta); err != nil {
		return t, fmt.Errorf("scan ticket: %w", err)
	}
	t.Status = domain.TicketStatus(status)
	t.Priority = domain.Priority(priority)
	if resolvedAt.Valid {
		t.ResolvedAt = &resolvedAt.Time
	}
	if meta != "" {
		if err := json.Unmarshal([]byte(meta), &t.Metadata); err != nil {
			// Corrupt metadata is not fatal; the ticket itself is intact.
			t.Metadata = nil
		}
	}
	return t, nil
}

// Resolve marks a ticket resolved, recording the resolution text and time.
func (s *SQLiteStore) Resolve(ctx context.Context, id, resolution string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE tickets SET status = ?, resolution = ?, resolved_at = ? WHERE id = ? AND status = ?`,
		string(domain.TicketResolved), resolution, time.Now().UTC(), id, string(domain.TicketPending),
	)
	if err != nil {
		return fmt.Errorf("resolve ticket: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("resolve ticket: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("ticket not found or already resolved: %s", id)
	}

	s.logger.Info("resolved escalation ticket", "id", id)
	return nil
}

// CountPending returns the number of pending tickets.
func (s *SQLiteStore) CountPending(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tickets WHERE status = ?`, string(domain.TicketPending),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count pending tickets: %w", err)
	}
	return count, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
