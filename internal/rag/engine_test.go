package rag

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sshroot23cs/SupportSenseAI/internal/config"
	"github.com/sshroot23cs/SupportSenseAI/internal/domain"
	"github.com/sshroot23cs/SupportSenseAI/internal/intent"
	"github.com/sshroot23cs/SupportSenseAI/internal/knowledge"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// stubProvider records generation calls and returns a fixed answer or error.
type stubProvider struct {
	answer string
	err    error
	calls  int
	last   domain.GenerateRequest
}

func (s *stubProvider) Generate(ctx context.Context, req domain.GenerateRequest) (string, error) {
	s.calls++
	s.last = req
	if s.err != nil {
		return "", s.err
	}
	return s.answer, nil
}

func (s *stubProvider) Embeddings(ctx context.Context, text string) ([]float64, error) {
	return nil, errors.New("not supported")
}

func (s *stubProvider) Name() string                      { return "stub" }
func (s *stubProvider) Model() string                     { return "stub-model" }
func (s *stubProvider) Healthy(ctx context.Context) error { return nil }

func testDocs() []domain.Document {
	return []domain.Document{
		{
			ID:       "doc_1",
			Category: "protection_plans",
			Title:    "Plan guide",
			Content:  "zulu details about the plan",
			Keywords: []string{"plan"},
		},
		{
			ID:       "doc_2",
			Category: "claims",
			Title:    "Weak match",
			Content:  "alpha bravo delta",
		},
	}
}

func testStore(t *testing.T, docs []domain.Document) *knowledge.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kb.json")
	data, err := json.Marshal(docs)
	if err != nil {
		t.Fatalf("marshal docs: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write kb: %v", err)
	}
	return knowledge.NewStore(path, testLogger())
}

func testEngine(t *testing.T, p domain.Provider) *Engine {
	t.Helper()
	cfg := config.Defaults()
	return NewEngine(EngineConfig{
		Knowledge:  testStore(t, testDocs()),
		Intents:    intent.NewClassifier(intent.DefaultIntents(), testLogger()),
		Categories: intent.NewCategoryDetector([]intent.CategoryRule{{Name: "protection_plans", Keywords: []string{"plan"}}}),
		Provider:   p,
		TopK:       cfg.Retrieval.TopK,
		Threshold:  cfg.Retrieval.ConfidenceThreshold,
		Responses:  cfg.Responses,
		Logger:     testLogger(),
	})
}

func TestProcessQuery_WelcomeShortCircuits(t *testing.T) {
	p := &stubProvider{answer: "never"}
	e := testEngine(t, p)

	res := e.ProcessQuery(context.Background(), "Hello")
	if res.Outcome != domain.OutcomeWelcome {
		t.Fatalf("outcome = %q, want welcome", res.Outcome)
	}
	if res.Metadata.Confidence != 1.0 {
		t.Fatalf("welcome confidence = %v, want 1.0", res.Metadata.Confidence)
	}
	if res.Metadata.Escalated {
		t.Fatal("welcome must not escalate")
	}
	if !strings.Contains(res.Response, "Welcome") {
		t.Fatalf("unexpected welcome response: %q", res.Response)
	}
	if p.calls != 0 {
		t.Fatalf("welcome must skip generation, got %d calls", p.calls)
	}
	if len(res.Metadata.RetrievedDocs) != 0 {
		t.Fatal("welcome must skip retrieval")
	}
}

func TestProcessQuery_NoDocumentsEscalates(t *testing.T) {
	p := &stubProvider{answer: "never"}
	e := testEngine(t, p)

	res := e.ProcessQuery(context.Background(), "xyzzy qwerty")
	if res.Outcome != domain.OutcomeNoDocs {
		t.Fatalf("outcome = %q, want no_docs_escalate", res.Outcome)
	}
	if !res.Metadata.Escalated {
		t.Fatal("expected escalation")
	}
	if res.Metadata.Confidence != 0 {
		t.Fatalf("confidence = %v, want 0", res.Metadata.Confidence)
	}
	if res.Metadata.EscalationReason != "no relevant documents found" {
		t.Fatalf("reason = %q", res.Metadata.EscalationReason)
	}
	if p.calls != 0 {
		t.Fatal("no-docs branch must skip generation")
	}
}

func TestProcessQuery_LowConfidenceEscalates(t *testing.T) {
	p := &stubProvider{answer: "never"}
	e := testEngine(t, p)

	// "alpha bravo delta" scores 3 on doc_2 (three content matches, no
	// keywords), so confidence is 0.30 and the threshold of 0.5 escalates.
	res := e.ProcessQuery(context.Background(), "alpha bravo delta")
	if res.Outcome != domain.OutcomeLowConfidence {
		t.Fatalf("outcome = %q, want low_confidence_escalate", res.Outcome)
	}
	if !res.Metadata.Escalated {
		t.Fatal("expected escalation")
	}
	if res.Metadata.EscalationReason != "low confidence score: 0.30" {
		t.Fatalf("reason = %q", res.Metadata.EscalationReason)
	}
	if p.calls != 0 {
		t.Fatal("low-confidence branch must skip generation")
	}
}

func TestProcessQuery_ConfidentGeneratesAnswer(t *testing.T) {
	p := &stubProvider{answer: "Here is your plan info."}
	e := testEngine(t, p)

	// "zulu plan" scores 7 on doc_1 (+2 content, +5 keyword) and 0 on
	// doc_2, so confidence is 0.7.
	res := e.ProcessQuery(context.Background(), "zulu plan")
	if res.Outcome != domain.OutcomeAnswered {
		t.Fatalf("outcome = %q, want answered", res.Outcome)
	}
	if res.Response != "Here is your plan info." {
		t.Fatalf("response = %q", res.Response)
	}
	if res.Metadata.Escalated {
		t.Fatal("answered branch must not escalate")
	}
	if res.Metadata.Confidence != 0.7 {
		t.Fatalf("confidence = %v, want 0.7", res.Metadata.Confidence)
	}
	if res.Metadata.Category != "protection_plans" {
		t.Fatalf("category = %q", res.Metadata.Category)
	}
	if p.calls != 1 {
		t.Fatalf("expected exactly one generation call, got %d", p.calls)
	}
	if p.last.Temperature != 0.3 || p.last.TopP != 0.9 {
		t.Fatalf("sampling params = %v/%v, want 0.3/0.9", p.last.Temperature, p.last.TopP)
	}
	if !strings.Contains(p.last.Prompt, "Source 1: Plan guide") {
		t.Fatalf("prompt missing source block:\n%s", p.last.Prompt)
	}
	if !strings.Contains(p.last.Prompt, "USER QUESTION: zulu plan") {
		t.Fatalf("prompt missing question:\n%s", p.last.Prompt)
	}
}

func TestProcessQuery_GenerationFailureFallsOpen(t *testing.T) {
	p := &stubProvider{err: errors.New("model exploded")}
	e := testEngine(t, p)

	res := e.ProcessQuery(context.Background(), "zulu plan")
	if res.Outcome != domain.OutcomeAnswered {
		t.Fatalf("outcome = %q, want answered", res.Outcome)
	}
	if res.Response != "An error occurred while processing your request." {
		t.Fatalf("response = %q", res.Response)
	}
}

func TestFallbackFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"timeout", context.DeadlineExceeded, "I'm experiencing delays. Please try again."},
		{"connection", &net.OpError{Op: "dial", Err: errors.New("connection refused")}, "Service temporarily unavailable. Please try again."},
		{"other", errors.New("boom"), "An error occurred while processing your request."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fallbackFor(tt.err); got != tt.want {
				t.Fatalf("fallbackFor(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}

func TestBuildContext(t *testing.T) {
	docs := []domain.RetrievalResult{
		{Document: domain.Document{Title: "A", Content: "content a"}},
		{Document: domain.Document{Title: "B", Content: "content b"}},
	}
	got := BuildContext(docs)
	want := "Source 1: A\ncontent a\n---\nSource 2: B\ncontent b\n---"
	if got != want {
		t.Fatalf("context = %q, want %q", got, want)
	}
}

func TestFAQ(t *testing.T) {
	e := testEngine(t, &stubProvider{})

	all := e.FAQ("")
	if len(all) != 2 {
		t.Fatalf("expected 2 FAQ entries, got %d", len(all))
	}
	if all[0].Question != "Plan guide" || all[0].Answer != "zulu details about the plan" {
		t.Fatalf("unexpected first entry: %+v", all[0])
	}

	claims := e.FAQ("claims")
	if len(claims) != 1 || claims[0].Category != "claims" {
		t.Fatalf("unexpected claims entries: %+v", claims)
	}
}
