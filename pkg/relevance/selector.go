// Package relevance selects which table a question refers to when the caller
// names none, by scoring every known table against the query text.
package relevance

import (
	"context"
	"strings"

	"github.com/jinzhu/inflection"
	"go.uber.org/zap"

	"github.com/datachat-labs/datachat-engine/pkg/apperrors"
	"github.com/datachat-labs/datachat-engine/pkg/models"
)

// domainColumnKeywords earn +3 when a column name contains one.
var domainColumnKeywords = []string{"product", "sale", "order", "customer", "price", "quantity", "inventory", "item"}

// fallbackTableKeywords break a zero-score deadlock: prefer a table whose
// name contains one of these before falling back to catalog order.
var fallbackTableKeywords = []string{"sales", "order", "product", "customer", "inventory", "business"}

// Scoring weights.
const (
	scorePerNameWord      = 10
	scorePerSampleCell    = 15
	scorePerColumnName    = 5
	scorePerDomainKeyword = 3
)

// Score is the ephemeral relevance of one table for one query.
type Score struct {
	TableName string
	Score     int
}

// Profiler supplies the columns and bounded sample rows for a candidate table.
type Profiler interface {
	TableProfile(ctx context.Context, tableName string) (*models.TableProfile, error)
}

// scoringRule is one independent heuristic contribution to a table's score.
type scoringRule struct {
	name  string
	score func(query string, tableName string, profile *models.TableProfile) int
}

// scoringRules are all applied to every candidate; their contributions sum.
var scoringRules = []scoringRule{
	{name: "table_name_words", score: scoreTableNameWords},
	{name: "sample_cell_match", score: scoreSampleCells},
	{name: "column_name_match", score: scoreColumnNames},
	{name: "domain_column_keywords", score: scoreDomainKeywords},
}

// Selector picks one table for a query.
type Selector struct {
	profiler Profiler
	logger   *zap.Logger
}

// NewSelector creates a selector.
func NewSelector(profiler Profiler, logger *zap.Logger) *Selector {
	return &Selector{profiler: profiler, logger: logger}
}

// Select returns the single table the query most plausibly refers to.
// Candidates come in catalog order, already excluding engine bookkeeping
// tables. Policy, in order: sole candidate wins; highest positive score wins;
// a table named after a business-domain keyword wins; the first table in
// catalog order is the documented last resort.
//
// A failed sample read is logged and contributes zero from that source; it
// never aborts selection. Deterministic for identical inputs.
func (s *Selector) Select(ctx context.Context, query string, tables []string) (string, error) {
	if len(tables) == 0 {
		return "", apperrors.ErrNoSuitableTable
	}
	if len(tables) == 1 {
		return tables[0], nil
	}

	scores := s.scoreAll(ctx, query, tables)

	best := scores[0]
	for _, sc := range scores[1:] {
		if sc.Score > best.Score {
			best = sc
		}
	}
	if best.Score > 0 {
		s.logger.Debug("Selected table by relevance score",
			zap.String("table", best.TableName),
			zap.Int("score", best.Score))
		return best.TableName, nil
	}

	for _, table := range tables {
		if containsAny(strings.ToLower(table), fallbackTableKeywords) {
			s.logger.Debug("Selected table by business-domain keyword", zap.String("table", table))
			return table, nil
		}
	}

	// Documented last resort, not a guess at intent.
	s.logger.Debug("Selected first table in catalog order", zap.String("table", tables[0]))
	return tables[0], nil
}

// ScoreAll exposes the per-table scores, mainly for tests and diagnostics.
func (s *Selector) ScoreAll(ctx context.Context, query string, tables []string) []Score {
	return s.scoreAll(ctx, query, tables)
}

func (s *Selector) scoreAll(ctx context.Context, query string, tables []string) []Score {
	loweredQuery := strings.ToLower(query)

	scores := make([]Score, 0, len(tables))
	for _, table := range tables {
		profile, err := s.profiler.TableProfile(ctx, table)
		if err != nil {
			// Name-word scoring still applies; sample and column sources score zero.
			s.logger.Warn("Sample read failed during relevance scoring",
				zap.String("table", table),
				zap.Error(err))
			profile = nil
		}

		total := 0
		for _, rule := range scoringRules {
			total += rule.score(loweredQuery, table, profile)
		}
		scores = append(scores, Score{TableName: table, Score: total})
	}
	return scores
}

// scoreTableNameWords: +10 per significant (length>3) word of the table name,
// underscores as separators, found in the query text.
func scoreTableNameWords(query, tableName string, _ *models.TableProfile) int {
	score := 0
	for _, word := range strings.Split(strings.ToLower(tableName), "_") {
		if len(word) <= 3 {
			continue
		}
		if queryContainsWord(query, word) {
			score += scorePerNameWord
		}
	}
	return score
}

// scoreSampleCells: +15 per distinct string-valued sample cell found verbatim
// in the query text.
func scoreSampleCells(query, _ string, profile *models.TableProfile) int {
	if profile == nil {
		return 0
	}

	seen := make(map[string]bool)
	score := 0
	for _, row := range profile.SampleRows {
		for _, value := range row {
			cell, ok := value.(string)
			if !ok {
				continue
			}
			lowered := strings.ToLower(strings.TrimSpace(cell))
			if lowered == "" || seen[lowered] {
				continue
			}
			seen[lowered] = true
			if strings.Contains(query, lowered) {
				score += scorePerSampleCell
			}
		}
	}
	return score
}

// scoreColumnNames: +5 per column name found in the query text.
func scoreColumnNames(query, _ string, profile *models.TableProfile) int {
	if profile == nil {
		return 0
	}

	score := 0
	for _, col := range profile.Columns {
		if queryContainsWord(query, strings.ToLower(col.Name)) {
			score += scorePerColumnName
		}
	}
	return score
}

// scoreDomainKeywords: +3 per column name containing a business-domain keyword.
func scoreDomainKeywords(_, _ string, profile *models.TableProfile) int {
	if profile == nil {
		return 0
	}

	score := 0
	for _, col := range profile.Columns {
		if containsAny(strings.ToLower(col.Name), domainColumnKeywords) {
			score += scorePerDomainKeyword
		}
	}
	return score
}

// queryContainsWord matches a word or its singular form, so a "sales" table
// still matches "each sale" and vice versa.
func queryContainsWord(query, word string) bool {
	if strings.Contains(query, word) {
		return true
	}
	singular := inflection.Singular(word)
	return singular != word && strings.Contains(query, singular)
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
