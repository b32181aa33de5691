package intent

import "strings"

// DefaultCategory is returned when no category keyword matches.
const DefaultCategory = "support"

// CategoryRule pairs a category name with its keyword set.
type CategoryRule struct {
	Name     string
	Keywords []string
}

// CategoryDetector maps a query to one of a fixed set of topic categories.
// Rules are checked in order; the first keyword hit wins.
type CategoryDetector struct {
	rules []CategoryRule
}

func NewCategoryDetector(rules []CategoryRule) *CategoryDetector {
	// Pre-compute lowercase keywords to avoid repeated ToLower per query.
	lowered := make([]CategoryRule, len(rules))
	for i, r := range rules {
		kws := make([]string, len(r.Keywords))
		for j, kw := range r.Keywords {
			kws[j] = strings.ToLower(kw)
		}
		lowered[i] = CategoryRule{Name: r.Name, Keywords: kws}
	}
	return &CategoryDetector{rules: lowered}
}

// Detect returns the category of the query, or DefaultCategory when no
// configured keyword appears in it.
func (d *CategoryDetector) Detect(query string) string {
	lower := strings.ToLower(query)
	for _, rule := range d.rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				return rule.Name
			}
		}
	}
	return DefaultCategory
}
