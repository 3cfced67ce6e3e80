// Package sqlrepair turns raw language-model output into a safe, well-formed,
// schema-consistent SELECT statement, or rejects it with the full list of
// reasons. The engine is an ordered pipeline of repair stages; ordering
// matters: identifier repair must precede the domain-pattern repairs (which
// reuse the quoted identifiers it produces), and structural completion runs
// last because earlier stages add and remove SELECT-list columns.
package sqlrepair

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/datachat-labs/datachat-engine/pkg/apperrors"
	"github.com/datachat-labs/datachat-engine/pkg/intent"
	"github.com/datachat-labs/datachat-engine/pkg/logging"
	"github.com/datachat-labs/datachat-engine/pkg/schema"
)

// Context carries everything the repair stages need besides the SQL itself.
type Context struct {
	Schema    *schema.Schema
	TableName string
	Intents   []intent.Intent
	// UserQuery is the original natural-language question. The domain-pattern
	// repairs read lexical cues (month names, superlatives) from it.
	UserQuery string
}

// Candidate is the mutable SQL under repair. Created from language-model
// output, mutated in place through the stages, discarded after execution.
type Candidate struct {
	RawText          string
	Text             string
	ValidationErrors []string
}

// stage is one deterministic transformation of the candidate. Stages with a
// false predicate are skipped; each runs at most once per candidate.
type stage struct {
	name    string
	applies func(*Context, *Candidate) bool
	apply   func(*Context, *Candidate)
}

// Engine applies the repair pipeline.
type Engine struct {
	stages []stage
	logger *zap.Logger
}

// NewEngine creates the repair engine with the standard stage order.
func NewEngine(logger *zap.Logger) *Engine {
	return &Engine{
		logger: logger,
		stages: []stage{
			{name: "strip_noise", applies: always, apply: stripNoise},
			{name: "safety_validation", applies: always, apply: safetyValidation},
			{name: "identifier_repair", applies: notRejected, apply: identifierRepair},
			{name: "currency_repair", applies: currencyApplies, apply: currencyRepair},
			{name: "month_grouping_repair", applies: monthGroupingApplies, apply: monthGroupingRepair},
			{name: "superlative_limit_repair", applies: superlativeApplies, apply: superlativeLimitRepair},
			{name: "group_by_completion", applies: groupByCompletionApplies, apply: groupByCompletion},
			{name: "final_validation", applies: notRejected, apply: finalValidation},
		},
	}
}

// Repair runs the raw model output through every stage and returns the
// repaired SQL, or a SQLRejectedError carrying every accumulated reason.
// Heuristic repairs are best-effort: the output may be imperfect but is
// always safe and syntactically validated, and rejection is a hard stop -
// no fallback query is ever substituted.
func (e *Engine) Repair(ctx *Context, rawText string) (string, error) {
	cand := &Candidate{RawText: rawText, Text: rawText}

	for _, st := range e.stages {
		if !st.applies(ctx, cand) {
			continue
		}
		before := cand.Text
		st.apply(ctx, cand)
		if cand.Text != before {
			e.logger.Debug("Repair stage rewrote SQL",
				zap.String("stage", st.name),
				zap.String("sql", logging.TruncateQuery(cand.Text)))
		}
		// Safety rejection stops the pipeline; nothing downstream may run a
		// repair over unsafe text.
		if st.name == "safety_validation" && len(cand.ValidationErrors) > 0 {
			return "", &apperrors.SQLRejectedError{Reasons: cand.ValidationErrors}
		}
	}

	if len(cand.ValidationErrors) > 0 {
		return "", &apperrors.SQLRejectedError{Reasons: cand.ValidationErrors}
	}
	return cand.Text, nil
}

func always(*Context, *Candidate) bool { return true }

func notRejected(_ *Context, c *Candidate) bool { return len(c.ValidationErrors) == 0 }

var (
	orderByRe = regexp.MustCompile(`(?i)\bORDER\s+BY\b`)
	limitRe   = regexp.MustCompile(`(?i)\bLIMIT\b`)
	groupByRe = regexp.MustCompile(`(?i)\bGROUP\s+BY\b`)
)

// insertClause places a clause in its legal position: before ORDER BY if
// present, else before LIMIT, else at the end.
func insertClause(text, clause string) string {
	insertAt := len(text)
	if loc := orderByRe.FindStringIndex(text); loc != nil {
		insertAt = loc[0]
	} else if loc := limitRe.FindStringIndex(text); loc != nil {
		insertAt = loc[0]
	}

	head := strings.TrimRight(text[:insertAt], " \t\n")
	tail := text[insertAt:]
	if tail == "" {
		return head + " " + clause
	}
	return head + " " + clause + " " + strings.TrimLeft(tail, " \t\n")
}
