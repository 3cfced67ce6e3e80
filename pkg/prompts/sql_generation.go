// Package prompts builds the text sent to the language model.
package prompts

import (
	"fmt"
	"strings"

	"github.com/datachat-labs/datachat-engine/pkg/intent"
	"github.com/datachat-labs/datachat-engine/pkg/models"
	"github.com/datachat-labs/datachat-engine/pkg/schema"
)

// SQLSystemMessage frames every SQL-generation request.
const SQLSystemMessage = "You are a SQL generator for PostgreSQL. " +
	"Respond with exactly one SELECT statement and nothing else - no prose, no markdown fences. " +
	"Only query the table you are given. Never modify data."

// BuildSQLGenerationPrompt creates the prompt for SQL generation: table name,
// schema, a bounded set of sample rows, detected intent hints, and the user's
// question.
func BuildSQLGenerationPrompt(tableName string, s *schema.Schema, sampleRows []map[string]any, intents []intent.Intent, userQuery string) string {
	var prompt strings.Builder

	prompt.WriteString("# Task\n\n")
	prompt.WriteString("Write one PostgreSQL SELECT statement answering the question below.\n\n")

	prompt.WriteString("## Table\n\n")
	prompt.WriteString(fmt.Sprintf("Table name: %s\n\nColumns:\n", tableName))
	for _, col := range s.Columns {
		prompt.WriteString(fmt.Sprintf("- %s (%s)\n", col.Name, schema.PhysicalType(col.SemanticType)))
	}
	prompt.WriteString("\n")

	if len(sampleRows) > 0 {
		prompt.WriteString("## Sample rows\n\n")
		writeSampleRows(&prompt, s, sampleRows)
		prompt.WriteString("\n")
	}

	if hints := collectHints(intents); len(hints) > 0 {
		prompt.WriteString("## Query guidance\n\n")
		for _, hint := range hints {
			prompt.WriteString(fmt.Sprintf("- %s\n", hint))
		}
		prompt.WriteString("\n")
	}

	prompt.WriteString("## Rules\n\n")
	prompt.WriteString("- Use only the table and columns listed above.\n")
	prompt.WriteString("- Double-quote every column and table identifier.\n")
	prompt.WriteString("- Return one SELECT statement with no trailing semicolon.\n\n")

	prompt.WriteString("## Question\n\n")
	prompt.WriteString(userQuery)
	prompt.WriteString("\n")

	return prompt.String()
}

// writeSampleRows renders sample rows in column order, pipe-separated.
func writeSampleRows(prompt *strings.Builder, s *schema.Schema, rows []map[string]any) {
	names := s.Names()
	prompt.WriteString(strings.Join(names, " | "))
	prompt.WriteString("\n")

	limit := len(rows)
	if limit > models.MaxSampleRows {
		limit = models.MaxSampleRows
	}
	for _, row := range rows[:limit] {
		cells := make([]string, 0, len(names))
		for _, name := range names {
			cells = append(cells, fmt.Sprintf("%v", row[name]))
		}
		prompt.WriteString(strings.Join(cells, " | "))
		prompt.WriteString("\n")
	}
}

func collectHints(intents []intent.Intent) []string {
	var hints []string
	seen := make(map[string]bool)
	for _, in := range intents {
		for _, hint := range in.Hints {
			if !seen[hint] {
				seen[hint] = true
				hints = append(hints, hint)
			}
		}
	}
	return hints
}
