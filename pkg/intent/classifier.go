package intent

import (
	"github.com/datachat-labs/datachat-engine/pkg/schema"
)

// Intent is one classified query purpose plus the structural requirements it
// carries into SQL repair and prompt construction. Never persisted.
type Intent struct {
	Name            string
	RequiresGroupBy bool
	Hints           []string
}

// Classifier matches query text against the catalog, admitting an intent only
// when the schema provides its required column groups.
type Classifier struct {
	catalog *Catalog
}

// NewClassifier creates a classifier over an immutable catalog.
func NewClassifier(catalog *Catalog) *Classifier {
	return &Classifier{catalog: catalog}
}

// Classify returns the non-empty set of intents matching the query. A pattern
// match is necessary but not sufficient: the intent is dropped when the schema
// lacks a required column group. With no match at all the result is {general}.
func (c *Classifier) Classify(query string, s *schema.Schema) []Intent {
	var matched []Intent

	for _, def := range c.catalog.Definitions() {
		if !patternMatches(def, query) {
			continue
		}
		if !requirementsSatisfied(def, s) {
			continue
		}
		matched = append(matched, Intent{
			Name:            def.Name,
			RequiresGroupBy: def.RequiresGroupBy,
			Hints:           def.Hints,
		})
	}

	if len(matched) == 0 {
		return []Intent{{Name: General}}
	}
	return matched
}

func patternMatches(def Definition, query string) bool {
	for _, re := range def.compiled {
		if re.MatchString(query) {
			return true
		}
	}
	return false
}

func requirementsSatisfied(def Definition, s *schema.Schema) bool {
	for _, req := range def.Requires {
		switch req {
		case RequireDate:
			if !s.HasDateColumn() {
				return false
			}
		case RequireNumeric:
			if !s.HasNumericColumn() {
				return false
			}
		}
	}
	return true
}

// Names flattens an intent set to its names, preserving order.
func Names(intents []Intent) []string {
	names := make([]string, 0, len(intents))
	for _, in := range intents {
		names = append(names, in.Name)
	}
	return names
}

// AnyRequiresGroupBy reports whether at least one matched intent demands a
// GROUP BY clause.
func AnyRequiresGroupBy(intents []Intent) bool {
	for _, in := range intents {
		if in.RequiresGroupBy {
			return true
		}
	}
	return false
}
