package sqlrepair

import (
	"regexp"
	"strings"

	"github.com/datachat-labs/datachat-engine/pkg/intent"
)

var (
	selectListRe = regexp.MustCompile(`(?is)^\s*SELECT\s+(DISTINCT\s+)?(.*?)\s+FROM\b`)
	aggregateRe  = regexp.MustCompile(`(?i)^\s*(COUNT|SUM|AVG|MAX|MIN)\s*\(`)
)

// groupByCompletionApplies: some matched intent demands GROUP BY and the
// statement has none.
func groupByCompletionApplies(ctx *Context, c *Candidate) bool {
	return intent.AnyRequiresGroupBy(ctx.Intents) && !groupByRe.MatchString(c.Text)
}

// groupByCompletion is stage 5: append a GROUP BY over the non-aggregated
// identifiers in the SELECT list. When the SELECT list holds only aggregates
// there is nothing to group by and the stage is a no-op - a bare
// SELECT SUM(x) aggregate needs no grouping even for aggregation intents.
func groupByCompletion(_ *Context, c *Candidate) {
	idents := nonAggregatedSelectIdentifiers(c.Text)
	if len(idents) == 0 {
		return
	}

	quoted := make([]string, 0, len(idents))
	for _, ident := range idents {
		quoted = append(quoted, `"`+ident+`"`)
	}
	c.Text = insertClause(c.Text, "GROUP BY "+strings.Join(quoted, ", "))
}

// nonAggregatedSelectIdentifiers returns the quoted identifiers appearing in
// SELECT-list items that are not wrapped in an aggregate function, in order
// of first appearance.
func nonAggregatedSelectIdentifiers(text string) []string {
	m := selectListRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}

	var idents []string
	seen := make(map[string]bool)
	for _, item := range splitTopLevel(m[2]) {
		if aggregateRe.MatchString(item) {
			continue
		}
		for _, qm := range quotedIdentRe.FindAllStringSubmatch(item, -1) {
			name := qm[1]
			key := strings.ToLower(name)
			if !seen[key] {
				seen[key] = true
				idents = append(idents, name)
			}
		}
	}
	return idents
}

// splitTopLevel splits a SELECT list on commas outside parentheses.
func splitTopLevel(list string) []string {
	var items []string
	depth := 0
	start := 0
	for i, ch := range list {
		switch ch {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				items = append(items, strings.TrimSpace(list[start:i]))
				start = i + 1
			}
		}
	}
	items = append(items, strings.TrimSpace(list[start:]))
	return items
}
