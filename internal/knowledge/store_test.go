package knowledge

import (
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/sshroot23cs/SupportSenseAI/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testStore(docs []domain.Document) *Store {
	return &Store{path: "unused", docs: docs, logger: testLogger()}
}

// --- Search scoring ---

func TestSearch_KeywordMatchScoresDocument(t *testing.T) {
	s := testStore(sampleDocuments())

	results := s.Search("What plans do you offer?", 3)
	if len(results) == 0 {
		t.Fatal("expected results for plan query")
	}

	found := false
	for _, r := range results {
		if r.ID == "plan_001" {
			found = true
			// "what" and "offer?" match the title, "plans" matches both
			// the text and the "plans" keyword.
			if r.RelevanceScore < 5 {
				t.Fatalf("expected keyword-weighted score, got %d", r.RelevanceScore)
			}
		}
	}
	if !found {
		t.Fatal("expected plan_001 in results")
	}
}

func TestSearch_EmptyQuery_NoResults(t *testing.T) {
	s := testStore(sampleDocuments())
	for _, q := range []string{"", "   ", "a an to"} {
		if results := s.Search(q, 3); len(results) != 0 {
			t.Fatalf("query %q: expected no results, got %d", q, len(results))
		}
	}
}

func TestSearch_AllScoresPositive(t *testing.T) {
	s := testStore(sampleDocuments())
	for _, r := range s.Search("claim coverage plans", 10) {
		if r.RelevanceScore <= 0 {
			t.Fatalf("document %s has non-positive score %d", r.ID, r.RelevanceScore)
		}
	}
}

func TestSearch_SortedDescending(t *testing.T) {
	s := testStore(sampleDocuments())
	results := s.Search("claim coverage plans protection", 10)
	for i := 1; i < len(results); i++ {
		if results[i].RelevanceScore > results[i-1].RelevanceScore {
			t.Fatalf("results not sorted descending at %d: %d > %d",
				i, results[i].RelevanceScore, results[i-1].RelevanceScore)
		}
	}
}

func TestSearch_TiesKeepOriginalOrder(t *testing.T) {
	docs := []domain.Document{
		{ID: "first", Title: "shipping information", Content: "shipping details"},
		{ID: "second", Title: "shipping information", Content: "shipping details"},
	}
	s := testStore(docs)

	results := s.Search("shipping", 10)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].RelevanceScore != results[1].RelevanceScore {
		t.Fatalf("expected tied scores, got %d and %d",
			results[0].RelevanceScore, results[1].RelevanceScore)
	}
	if results[0].ID != "first" || results[1].ID != "second" {
		t.Fatalf("tie should preserve load order, got %s then %s", results[0].ID, results[1].ID)
	}
}

func TestSearch_RespectsTopK(t *testing.T) {
	s := testStore(sampleDocuments())
	results := s.Search("claim coverage plans protection", 2)
	if len(results) > 2 {
		t.Fatalf("expected at most 2 results, got %d", len(results))
	}
}

func TestSearch_Idempotent(t *testing.T) {
	s := testStore(sampleDocuments())
	first := s.Search("how do I file a claim", 3)
	second := s.Search("how do I file a claim", 3)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("identical queries against identical state should yield identical results")
	}
}

func TestSearch_NoKeywords_ContentMatchOnly(t *testing.T) {
	docs := []domain.Document{
		{ID: "bare", Title: "return policy", Content: "items can be returned within thirty days"},
	}
	s := testStore(docs)

	results := s.Search("returned", 3)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].RelevanceScore != contentMatchWeight {
		t.Fatalf("document without keywords should only get the content weight, got %d",
			results[0].RelevanceScore)
	}
}

func TestSearch_MultiKeywordBonus(t *testing.T) {
	docs := []domain.Document{
		{
			ID:       "bonus",
			Title:    "device protection",
			Content:  "covers accidental damage",
			Keywords: []string{"protection", "damage"},
		},
	}
	s := testStore(docs)

	// "protection" and "damage" each match text (+1) and a distinct
	// keyword (+5); two distinct keywords add the flat bonus.
	results := s.Search("protection damage", 3)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	want := 2*(contentMatchWeight+keywordMatchWeight) + multiKeywordBonus
	if results[0].RelevanceScore != want {
		t.Fatalf("expected score %d, got %d", want, results[0].RelevanceScore)
	}
}

func TestSearch_FirstKeywordMatchWinsPerTerm(t *testing.T) {
	docs := []domain.Document{
		{
			ID:       "dup",
			Title:    "plans",
			Content:  "plan info",
			Keywords: []string{"plan", "plans", "planning"},
		},
	}
	s := testStore(docs)

	// The term "plans" matches all three keywords but scanning stops at the
	// first, so only one +5 is added and no multi-keyword bonus applies.
	results := s.Search("plans", 3)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	want := contentMatchWeight + keywordMatchWeight
	if results[0].RelevanceScore != want {
		t.Fatalf("expected score %d, got %d", want, results[0].RelevanceScore)
	}
}

// --- Store operations ---

func TestAdd_AssignsID(t *testing.T) {
	s := testStore(nil)
	doc := s.Add(domain.Document{Category: "support", Title: "t", Content: "c"})
	if doc.ID != "doc_1" {
		t.Fatalf("expected assigned id doc_1, got %q", doc.ID)
	}

	doc2 := s.Add(domain.Document{ID: "custom", Category: "support"})
	if doc2.ID != "custom" {
		t.Fatalf("existing id should be kept, got %q", doc2.ID)
	}
}

func TestByCategory(t *testing.T) {
	s := testStore(sampleDocuments())
	claims := s.ByCategory("claims")
	if len(claims) != 2 {
		t.Fatalf("expected 2 claims documents, got %d", len(claims))
	}
	for _, d := range claims {
		if d.Category != "claims" {
			t.Fatalf("unexpected category %q", d.Category)
		}
	}
}

func TestNewStore_MissingFile_UsesSamples(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "nope.json"), testLogger())
	if s.Count() == 0 {
		t.Fatal("missing file should fall back to sample documents")
	}
}

func TestNewStore_CorruptFile_UsesSamples(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kb.json")
	os.WriteFile(path, []byte("{{{"), 0o644)
	s := NewStore(path, testLogger())
	if s.Count() == 0 {
		t.Fatal("corrupt file should fall back to sample documents")
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kb.json")
	s := testStore(sampleDocuments())
	s.path = path

	s.Add(domain.Document{Category: "support", Title: "extra", Content: "extra doc", Keywords: []string{"extra"}})
	if err := s.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	reloaded := NewStore(path, testLogger())
	if reloaded.Count() != s.Count() {
		t.Fatalf("expected %d documents after reload, got %d", s.Count(), reloaded.Count())
	}
}

func TestNewStore_WrappedDocumentsObject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kb.json")
	content := `{"documents": [{"id": "x1", "category": "support", "title": "t", "content": "c"}]}`
	os.WriteFile(path, []byte(content), 0o644)

	s := NewStore(path, testLogger())
	if s.Count() != 1 {
		t.Fatalf("expected 1 document, got %d", s.Count())
	}
}
