package knowledge

import (
	"sort"
	"strings"

	"github.com/sshroot23cs/SupportSenseAI/internal/domain"
)

// Scoring weights. The confidence policy normalizes average relevance by 10,
// which assumes these exact values; keep them in sync.
const (
	contentMatchWeight  = 1
	keywordMatchWeight  = 5
	multiKeywordBonus   = 3
	minQueryTokenLength = 3
)

// Search returns up to topK documents relevant to the query, sorted by
// descending relevance score. Ties keep the original document order.
// Documents that score zero are dropped.
func (s *Store) Search(query string, topK int) []domain.RetrievalResult {
	terms := queryTerms(query)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []domain.RetrievalResult
	for _, doc := range s.docs {
		if score := scoreDocument(doc, terms); score > 0 {
			results = append(results, domain.RetrievalResult{Document: doc, RelevanceScore: score})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].RelevanceScore > results[j].RelevanceScore
	})

	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results
}

// queryTerms lowercases and whitespace-splits the query, dropping tokens of
// two characters or fewer.
func queryTerms(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	terms := fields[:0]
	for _, f := range fields {
		if len(f) >= minQueryTokenLength {
			terms = append(terms, f)
		}
	}
	return terms
}

// scoreDocument computes the relevance score of one document for the query
// terms: +1 per term found in the content+title text, +5 for the first
// keyword a term matches (substring in either direction), and a flat +3 when
// two or more distinct keywords matched.
func scoreDocument(doc domain.Document, terms []string) int {
	text := strings.ToLower(doc.Content + " " + doc.Title)

	score := 0
	matched := make(map[string]struct{})

	for _, term := range terms {
		if strings.Contains(text, term) {
			score += contentMatchWeight
		}

		for _, keyword := range doc.Keywords {
			kw := strings.ToLower(keyword)
			if strings.Contains(kw, term) || strings.Contains(term, kw) {
				score += keywordMatchWeight
				matched[keyword] = struct{}{}
				break // first matching keyword wins for this term
			}
		}
	}

	if len(matched) >= 2 {
		score += multiKeywordBonus
	}
	return score
}
