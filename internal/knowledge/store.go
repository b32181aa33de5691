// Package knowledge manages the support knowledge base: loading documents
// from JSON, keyword search with relevance scoring, and persistence.
package knowledge

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/sshroot23cs/SupportSenseAI/internal/domain"
)

// Store holds the knowledge base documents. Documents are loaded once at
// startup and immutable afterwards except for Add; writes are serialized,
// reads run concurrently.
type Store struct {
	path   string
	mu     sync.RWMutex
	docs   []domain.Document
	logger *slog.Logger
}

// NewStore loads the knowledge base from path. A missing or corrupt file
// falls back to the built-in sample documents rather than failing.
func NewStore(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{path: path, logger: logger}
	s.load()
	return s
}

// kbFile matches the on-disk layout: either a bare array of documents or an
// object with a "documents" field.
type kbFile struct {
	Documents []domain.Document `json:"documents"`
}

func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		s.logger.Warn("knowledge base not found, using sample documents", "path", s.path)
		s.docs = sampleDocuments()
		return
	}

	var wrapped kbFile
	if err := json.Unmarshal(data, &wrapped); err == nil && len(wrapped.Documents) > 0 {
		s.docs = wrapped.Documents
		s.logger.Info("loaded knowledge base", "path", s.path, "documents", len(s.docs))
		return
	}

	var bare []domain.Document
	if err := json.Unmarshal(data, &bare); err == nil {
		s.docs = bare
		s.logger.Info("loaded knowledge base", "path", s.path, "documents", len(s.docs))
		return
	}

	s.logger.Error("cannot parse knowledge base, using sample documents", "path", s.path)
	s.docs = sampleDocuments()
}

// Documents returns a copy of all documents in load order.
func (s *Store) Documents() []domain.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Document, len(s.docs))
	copy(out, s.docs)
	return out
}

// Count returns the number of documents.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// ByCategory returns all documents in the given category, in load order.
func (s *Store) ByCategory(category string) []domain.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Document
	for _, doc := range s.docs {
		if doc.Category == category {
			out = append(out, doc)
		}
	}
	return out
}

// Add appends a document, assigning a fresh id when one is missing.
func (s *Store) Add(doc domain.Document) domain.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc.ID == "" {
		doc.ID = fmt.Sprintf("doc_%d", len(s.docs)+1)
	}
	s.docs = append(s.docs, doc)
	s.logger.Info("added document", "id", doc.ID, "category", doc.Category)
	return doc
}

// Save writes the knowledge base back to disk. The write goes through a
// temp file and rename so a concurrent reader never sees a partial file.
func (s *Store) Save() error {
	s.mu.RLock()
	data, err := json.MarshalIndent(s.docs, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("marshal knowledge base: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create knowledge base directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write knowledge base: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace knowledge base: %w", err)
	}

	s.logger.Info("knowledge base saved", "path", s.path)
	return nil
}
