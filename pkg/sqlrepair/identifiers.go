package sqlrepair

import (
	"regexp"
	"strings"
)

// identifierRepair is stage 3: every unquoted case-insensitive occurrence of
// a known column name becomes the exact-cased, double-quoted identifier; the
// table name in FROM clauses is quoted; duplicated FROM clauses the model
// sometimes emits are collapsed. Idempotent: already-quoted occurrences are
// left alone, so re-running the stage never double-quotes.
func identifierRepair(ctx *Context, c *Candidate) {
	text := c.Text

	for _, col := range ctx.Schema.Columns {
		text = quoteOccurrences(text, col.Name)
	}

	text = quoteTableInFrom(text, ctx.TableName)
	text = collapseDuplicateFrom(text, ctx.TableName)

	c.Text = text
}

// quoteOccurrences rewrites word-boundary matches of name that are not
// already adjacent to a double quote.
func quoteOccurrences(text, name string) string {
	re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(name) + `\b`)

	var b strings.Builder
	last := 0
	for _, loc := range re.FindAllStringIndex(text, -1) {
		start, end := loc[0], loc[1]
		if start > 0 && text[start-1] == '"' {
			continue
		}
		if end < len(text) && text[end] == '"' {
			continue
		}
		// Leave occurrences inside single-quoted literals untouched.
		if insideSingleQuotes(text, start) {
			continue
		}
		b.WriteString(text[last:start])
		b.WriteString(`"` + name + `"`)
		last = end
	}
	b.WriteString(text[last:])
	return b.String()
}

// quoteTableInFrom quotes unquoted FROM <table> occurrences.
func quoteTableInFrom(text, table string) string {
	re := regexp.MustCompile(`(?i)\b(FROM\s+)` + regexp.QuoteMeta(table) + `\b`)

	var b strings.Builder
	last := 0
	for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
		start, end := loc[0], loc[1]
		keywordEnd := loc[3] // end of the "FROM " capture
		if keywordEnd < len(text) && text[keywordEnd] == '"' {
			continue
		}
		b.WriteString(text[last:start])
		b.WriteString(text[start:keywordEnd])
		b.WriteString(`"` + table + `"`)
		last = end
	}
	b.WriteString(text[last:])
	return b.String()
}

// collapseDuplicateFrom removes the repeated FROM "<table>" clauses a model
// occasionally emits back to back.
func collapseDuplicateFrom(text, table string) string {
	quoted := regexp.QuoteMeta(`"` + table + `"`)
	re := regexp.MustCompile(`(?i)(FROM\s+` + quoted + `)(\s+FROM\s+` + quoted + `)+`)
	return re.ReplaceAllString(text, "$1")
}

// insideSingleQuotes reports whether position pos falls inside a
// single-quoted string literal.
func insideSingleQuotes(text string, pos int) bool {
	inside := false
	for i, ch := range text {
		if i >= pos {
			break
		}
		if ch == '\'' {
			inside = !inside
		}
	}
	return inside
}
