package sqlrepair

import (
	"fmt"
	"regexp"
	"strings"
)

// Domain-pattern repairs (stage 4). Each is independently triggerable and
// best-effort: they degrade gracefully rather than failing, and may leave an
// imperfect but syntactically valid query. They run after identifier repair
// and reuse the quoted identifiers it produced.

var (
	currencyTokenRe = regexp.MustCompile(`\$\s*(\d[\d,]*(?:\.\d+)?)`)
	// A comparison operator directly after WHERE/AND/OR is missing its left
	// operand (a common model slip once currency tokens are rewritten).
	bareComparatorRe = regexp.MustCompile(`(?i)\b(WHERE|AND|OR)\s*(=|>=|<=|<>|>|<)`)

	monthWordRe = regexp.MustCompile(`(?i)\b(month|monthly|january|february|march|april|may|june|july|august|september|october|november|december)\b`)
	// Any date-extraction already present means the model handled it.
	dateExtractRe = regexp.MustCompile(`(?i)\b(EXTRACT|DATE_TRUNC|DATE_PART|TO_CHAR)\s*\(`)

	superlativeRe = regexp.MustCompile(`(?i)\b(highest|most|top|maximum)\b`)

	quotedIdentRe = regexp.MustCompile(`"([^"]+)"`)
)

// --- 4a: currency literal repair ---

func currencyApplies(_ *Context, c *Candidate) bool {
	return currencyTokenRe.MatchString(c.Text)
}

// currencyRepair converts currency-like literals ($1,200.00) into plain
// numeric literals and attaches the nearest numeric column identifier to any
// comparison operator left without one.
func currencyRepair(ctx *Context, c *Candidate) {
	text := currencyTokenRe.ReplaceAllStringFunc(c.Text, func(tok string) string {
		m := currencyTokenRe.FindStringSubmatch(tok)
		return strings.ReplaceAll(m[1], ",", "")
	})

	if bareComparatorRe.MatchString(text) {
		if col, ok := preferredNumericColumn(ctx, text); ok {
			text = bareComparatorRe.ReplaceAllString(text, fmt.Sprintf(`$1 "%s" $2`, col))
		}
	}

	c.Text = text
}

// --- 4b: month extraction repair ---

func monthGroupingApplies(ctx *Context, c *Candidate) bool {
	return monthWordRe.MatchString(ctx.UserQuery) &&
		ctx.Schema.HasDateColumn() &&
		!dateExtractRe.MatchString(c.Text)
}

// monthGroupingRepair injects a GROUP BY-compatible month extraction over the
// first date column when the question is about months but the model produced
// no date extraction, mirroring the expression into the SELECT list if absent.
func monthGroupingRepair(ctx *Context, c *Candidate) {
	dateCol := ctx.Schema.DateColumns()[0].Name
	expr := fmt.Sprintf(`EXTRACT(MONTH FROM "%s")`, dateCol)

	text := c.Text
	if !strings.Contains(text, expr) {
		text = mirrorIntoSelect(text, expr+" AS month")
	}

	if groupByRe.MatchString(text) {
		// Prepend the extraction to the existing grouping list.
		text = groupByRe.ReplaceAllString(text, "GROUP BY "+expr+", ")
	} else {
		text = insertClause(text, "GROUP BY "+expr)
	}

	c.Text = text
}

// mirrorIntoSelect prepends an expression to the SELECT list.
func mirrorIntoSelect(text, expr string) string {
	selectRe := regexp.MustCompile(`(?i)^(\s*SELECT\s+)`)
	if !selectRe.MatchString(text) {
		return text
	}
	return selectRe.ReplaceAllString(text, "${1}"+expr+", ")
}

// --- 4c: superlative LIMIT repair ---

func superlativeApplies(ctx *Context, c *Candidate) bool {
	return superlativeRe.MatchString(ctx.UserQuery) && !limitRe.MatchString(c.Text)
}

// superlativeLimitRepair appends ORDER BY <numeric> DESC LIMIT 1 for
// superlative questions that arrived without a LIMIT. With an ORDER BY
// already present only the LIMIT is appended. Column choice preserves the
// historical heuristic: first numeric column referenced in the statement,
// else the schema's first numeric column - wrong-column picks are a known
// accepted risk when several numeric columns exist and none is referenced.
func superlativeLimitRepair(ctx *Context, c *Candidate) {
	text := c.Text

	if orderByRe.MatchString(text) {
		c.Text = strings.TrimRight(text, " \t\n") + " LIMIT 1"
		return
	}

	col, ok := preferredNumericColumn(ctx, text)
	if !ok {
		return
	}
	c.Text = strings.TrimRight(text, " \t\n") + fmt.Sprintf(` ORDER BY "%s" DESC LIMIT 1`, col)
}

// preferredNumericColumn returns the first numeric column referenced in the
// SQL text, falling back to the schema's first numeric column.
func preferredNumericColumn(ctx *Context, text string) (string, bool) {
	numeric := ctx.Schema.NumericColumns()
	if len(numeric) == 0 {
		return "", false
	}

	referenced := make(map[string]bool)
	for _, m := range quotedIdentRe.FindAllStringSubmatch(text, -1) {
		referenced[strings.ToLower(m[1])] = true
	}
	for _, col := range numeric {
		if referenced[strings.ToLower(col.Name)] {
			return col.Name, true
		}
	}
	return numeric[0].Name, true
}
