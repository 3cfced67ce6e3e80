package sqlrepair

import (
	"fmt"
	"regexp"
	"strings"

	libinjection "github.com/corazawaf/libinjection-go"
)

// disallowedKeywords reject the candidate outright. UNION is included because
// a second SELECT arm can smuggle data past identifier repair.
var disallowedKeywords = []string{
	"insert", "update", "delete", "drop", "alter", "create",
	"truncate", "exec", "execute", "union",
}

var (
	codeFenceRe = regexp.MustCompile("(?s)```(?:sql)?\\s*(.*?)```")
	// Reasoning tags some models wrap around their output.
	reasoningTagRe = regexp.MustCompile(`(?is)<(think|thinking|reasoning|scratchpad)>.*?</(think|thinking|reasoning|scratchpad)>`)

	disallowedRes = compileDisallowed()
)

func compileDisallowed() map[string]*regexp.Regexp {
	res := make(map[string]*regexp.Regexp, len(disallowedKeywords))
	for _, kw := range disallowedKeywords {
		res[kw] = regexp.MustCompile(`(?i)\b` + kw + `\b`)
	}
	return res
}

// stripNoise removes code-fence markers and reasoning tags, then keeps only
// the first statement: anything after a semicolon outside string literals is
// dropped, so a trailing "; DROP TABLE x" never reaches validation as part of
// the statement under repair.
func stripNoise(_ *Context, c *Candidate) {
	text := c.Text

	if m := codeFenceRe.FindStringSubmatch(text); m != nil {
		text = m[1]
	} else {
		text = strings.ReplaceAll(text, "```sql", "")
		text = strings.ReplaceAll(text, "```", "")
	}

	text = reasoningTagRe.ReplaceAllString(text, "")
	text = firstStatement(text)

	c.Text = strings.TrimSpace(text)
}

// firstStatement cuts the text at the first semicolon outside string
// literals. Quote-aware so a literal like 'a;b' survives intact.
func firstStatement(text string) string {
	const (
		stateNormal = iota
		stateSingleQuote
		stateDoubleQuote
	)

	state := stateNormal
	prev := rune(0)
	for i, ch := range text {
		switch state {
		case stateNormal:
			switch ch {
			case ';':
				return text[:i]
			case '\'':
				state = stateSingleQuote
			case '"':
				state = stateDoubleQuote
			}
		case stateSingleQuote:
			if ch == '\'' && prev != '\\' {
				state = stateNormal
			}
		case stateDoubleQuote:
			if ch == '"' && prev != '\\' {
				state = stateNormal
			}
		}
		prev = ch
	}
	return text
}

// safetyValidation is stage 2: collect every safety violation. A non-empty
// result rejects the candidate before any repair runs.
func safetyValidation(_ *Context, c *Candidate) {
	c.ValidationErrors = append(c.ValidationErrors, checkSafety(c.Text)...)
}

// finalValidation re-runs the safety checks over the fully repaired text.
// Repairs must never have manufactured an unsafe or unbalanced statement.
func finalValidation(_ *Context, c *Candidate) {
	c.ValidationErrors = append(c.ValidationErrors, checkSafety(c.Text)...)
}

// checkSafety returns every violated safety rule for the given SQL.
func checkSafety(text string) []string {
	var reasons []string

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return []string{"query is empty"}
	}

	if !strings.HasPrefix(strings.ToUpper(trimmed), "SELECT") {
		reasons = append(reasons, "query must begin with SELECT")
	}

	for _, kw := range disallowedKeywords {
		if disallowedRes[kw].MatchString(trimmed) {
			reasons = append(reasons, fmt.Sprintf("disallowed keyword: %s", kw))
		}
	}
	if strings.Contains(trimmed, "--") {
		reasons = append(reasons, "disallowed comment token: --")
	}

	if !regexp.MustCompile(`(?i)\bFROM\b`).MatchString(trimmed) {
		reasons = append(reasons, "query has no FROM clause")
	}

	reasons = append(reasons, checkBalance(trimmed)...)
	reasons = append(reasons, checkLiteralInjection(trimmed)...)

	return reasons
}

// checkBalance verifies quote and parenthesis balance.
func checkBalance(text string) []string {
	var reasons []string

	singles := strings.Count(text, "'") - 2*strings.Count(text, "''")
	if singles%2 != 0 {
		reasons = append(reasons, "unbalanced single quotes")
	}
	if strings.Count(text, `"`)%2 != 0 {
		reasons = append(reasons, "unbalanced double quotes")
	}

	depth := 0
	for _, ch := range text {
		switch ch {
		case '(':
			depth++
		case ')':
			depth--
		}
		if depth < 0 {
			break
		}
	}
	if depth != 0 {
		reasons = append(reasons, "unbalanced parentheses")
	}

	return reasons
}

var singleQuotedLiteralRe = regexp.MustCompile(`'([^']*)'`)

// checkLiteralInjection runs libinjection over the contents of every
// single-quoted literal. The keyword list catches bare statements; this
// catches injection payloads hiding inside literal values.
func checkLiteralInjection(text string) []string {
	var reasons []string
	for _, m := range singleQuotedLiteralRe.FindAllStringSubmatch(text, -1) {
		literal := m[1]
		if literal == "" {
			continue
		}
		if isSQLi, fingerprint := libinjection.IsSQLi(literal); isSQLi {
			reasons = append(reasons, fmt.Sprintf("injection pattern in string literal (fingerprint %s)", fingerprint))
		}
	}
	return reasons
}
