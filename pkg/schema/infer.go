// Package schema infers semantic column types from raw uploaded values and
// normalizes the two schema sources (upload-time inference, catalog reads)
// into one canonical form.
package schema

import (
	"strconv"
	"strings"
	"time"

	"github.com/datachat-labs/datachat-engine/pkg/models"
)

// moneyNameHints are column-name substrings that signal a money or quantity
// column. A name hint lowers the parse threshold for NUMERIC to 70%.
var moneyNameHints = []string{"price", "cost", "total", "amount", "sum", "qty", "quantity"}

// dateNameHints are column-name substrings that signal a date dimension.
var dateNameHints = []string{"date", "time", "day", "month", "year"}

// dateLayouts are the calendar formats accepted by the plausible-date test.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"02-01-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// inferenceRule is one ordered step of the type inference engine. Rules run
// in sequence; the first rule that decides wins. Each rule is independently
// testable.
type inferenceRule struct {
	name  string
	apply func(name string, values []string) (models.SemanticType, bool)
}

// inferenceRules is evaluated in order. The money-name-hint rule runs before
// the generic parse rules: a cheap, specific name check breaks ties on
// columns that would otherwise be ambiguous between numeric, date, and text
// (a four-digit "year" must not land on INTEGER). The parse-based rules
// require unanimity so mixed-format columns degrade to TEXT.
var inferenceRules = []inferenceRule{
	{name: "money_name_hint", apply: moneyHintRule},
	{name: "date", apply: dateRule},
	{name: "all_numbers", apply: allNumbersRule},
}

// InferColumnType returns exactly one semantic type for a column given its
// name and raw value sequence. It never fails: unparseable or empty input
// degrades to TEXT.
func InferColumnType(name string, rawValues []string) models.ColumnSchema {
	values := dropBlanks(rawValues)
	if len(values) == 0 {
		return models.ColumnSchema{Name: name, SemanticType: models.TypeText, SourceHint: "empty"}
	}

	for _, rule := range inferenceRules {
		if t, ok := rule.apply(name, values); ok {
			return models.ColumnSchema{Name: name, SemanticType: t, SourceHint: rule.name}
		}
	}

	return models.ColumnSchema{Name: name, SemanticType: models.TypeText, SourceHint: "fallback"}
}

// InferColumns runs inference over an ordered set of named value sequences.
func InferColumns(names []string, columns [][]string) []models.ColumnSchema {
	schema := make([]models.ColumnSchema, 0, len(names))
	for i, name := range names {
		var values []string
		if i < len(columns) {
			values = columns[i]
		}
		schema = append(schema, InferColumnType(name, values))
	}
	return schema
}

// moneyHintRule: a money/quantity name hint plus >=70% numeric-or-currency
// values decides NUMERIC.
func moneyHintRule(name string, values []string) (models.SemanticType, bool) {
	if !containsAnyHint(name, moneyNameHints) {
		return "", false
	}

	numeric := 0
	for _, v := range values {
		if _, ok := ParseNumber(v); ok {
			numeric++
		}
	}
	if float64(numeric) >= 0.7*float64(len(values)) {
		return models.TypeNumeric, true
	}
	return "", false
}

// dateRule: every value must pass the plausible-date test, and either the
// column name carries a date hint or more than 90% of values pass.
func dateRule(name string, values []string) (models.SemanticType, bool) {
	passing := 0
	for _, v := range values {
		if isPlausibleDate(v) {
			passing++
		}
	}
	if passing != len(values) {
		return "", false
	}

	nameHint := containsAnyHint(name, dateNameHints)
	highRatio := float64(passing) > 0.9*float64(len(values))
	if nameHint || highRatio {
		return models.TypeDate, true
	}
	return "", false
}

// allNumbersRule: every value must parse as a plain number (currency forms
// only count under the money-hint rule); INTEGER when all are integral,
// NUMERIC otherwise.
func allNumbersRule(_ string, values []string) (models.SemanticType, bool) {
	allIntegral := true
	for _, v := range values {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return "", false
		}
		if strings.Contains(v, ".") || n != float64(int64(n)) {
			allIntegral = false
		}
	}
	if allIntegral {
		return models.TypeInteger, true
	}
	return models.TypeNumeric, true
}

func dropBlanks(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" || strings.EqualFold(trimmed, "null") || strings.EqualFold(trimmed, "n/a") {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}

func containsAnyHint(name string, hints []string) bool {
	lower := strings.ToLower(name)
	for _, h := range hints {
		if strings.Contains(lower, h) {
			return true
		}
	}
	return false
}

// ParseNumber parses plain numbers and currency-like strings: optional $,
// thousands separators, and accounting-style parenthesized negatives.
func ParseNumber(v string) (float64, bool) {
	s := strings.TrimSpace(v)
	if s == "" {
		return 0, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")

	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if negative {
		n = -n
	}
	return n, true
}

// looksLikeCurrency reports whether the token reads as a money amount rather
// than a date ("$1,200.00" must never pass the date test).
func looksLikeCurrency(v string) bool {
	s := strings.TrimSpace(v)
	if strings.HasPrefix(s, "$") {
		return true
	}
	if strings.Contains(s, ",") {
		if _, ok := ParseNumber(s); ok {
			return true
		}
	}
	return false
}

func isPurelyNumeric(v string) bool {
	if v == "" {
		return false
	}
	for _, r := range v {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// isPlausibleDate applies the calendar-value test: minimum length, not a
// short bare number, not currency-looking, and parseable in one of the
// accepted layouts.
func isPlausibleDate(v string) bool {
	s := strings.TrimSpace(v)
	if len(s) < 6 {
		return false
	}
	if isPurelyNumeric(s) && len(s) < 4 {
		return false
	}
	if looksLikeCurrency(s) {
		return false
	}

	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}
