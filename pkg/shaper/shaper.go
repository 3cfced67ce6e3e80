// Package shaper turns executed result rows into a human-readable answer
// sentence and, when the rows look chartable, a chart specification.
package shaper

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jinzhu/inflection"

	"github.com/datachat-labs/datachat-engine/pkg/models"
)

// MaxChartRows bounds chart inference; larger result sets render as tables
// only.
const MaxChartRows = 50

const noDataAnswer = "No data found for your query."

// Shaper synthesizes answers and chart specs. Stateless and safe for
// concurrent use.
type Shaper struct{}

func NewShaper() *Shaper {
	return &Shaper{}
}

// Shape produces the answer sentence and optional chart for one executed
// query. columns preserves the physical column order of the result set, which
// map-keyed rows cannot.
func (s *Shaper) Shape(query string, columns []string, rows []map[string]any) (string, *models.ChartData) {
	return s.answer(query, columns, rows), s.chart(query, columns, rows)
}

// answer synthesizes the response sentence. A single-cell result gets a
// sentence whose verb follows lexical cues in the question; anything else
// gets a row count.
func (s *Shaper) answer(query string, columns []string, rows []map[string]any) string {
	if len(rows) == 0 {
		return noDataAnswer
	}

	if len(rows) == 1 && len(columns) == 1 {
		col := columns[0]
		val := formatValue(rows[0][col])
		lower := strings.ToLower(query)

		switch {
		case strings.Contains(lower, "how many") || strings.Contains(lower, "count"):
			return fmt.Sprintf("Found %s %s.", val, countNoun(val, "record"))
		case strings.Contains(lower, "total") || strings.Contains(lower, "sum"):
			return fmt.Sprintf("The total %s is %s.", col, val)
		case strings.Contains(lower, "average") || strings.Contains(lower, "avg"):
			return fmt.Sprintf("The average %s is %s.", col, val)
		default:
			// Superlatives (highest, lowest, best, worst) and everything else
			// share the generic form.
			return fmt.Sprintf("The %s is %s.", col, val)
		}
	}

	return fmt.Sprintf("Found %d %s.", len(rows), countNoun(strconv.Itoa(len(rows)), "result"))
}

// chart infers a chart spec: the first all-numeric column becomes the value
// series, the first remaining column the label series. Returns nil when the
// rows are not chartable.
func (s *Shaper) chart(query string, columns []string, rows []map[string]any) *models.ChartData {
	if len(rows) == 0 || len(rows) > MaxChartRows || len(columns) < 2 {
		return nil
	}

	valueCol := ""
	for _, col := range columns {
		if allNumeric(col, rows) {
			valueCol = col
			break
		}
	}
	if valueCol == "" {
		return nil
	}

	labelCol := ""
	for _, col := range columns {
		if col != valueCol {
			labelCol = col
			break
		}
	}

	chart := &models.ChartData{
		Type:   chartType(query, labelCol, len(rows)),
		Labels: make([]string, 0, len(rows)),
		Values: make([]float64, 0, len(rows)),
	}
	for _, row := range rows {
		v, _ := toFloat(row[valueCol])
		chart.Values = append(chart.Values, v)
		chart.Labels = append(chart.Labels, formatValue(row[labelCol]))
	}
	return chart
}

var timeLabelHints = []string{"month", "date", "day", "time"}

func chartType(query, labelCol string, rowCount int) string {
	lowerLabel := strings.ToLower(labelCol)
	for _, hint := range timeLabelHints {
		if strings.Contains(lowerLabel, hint) {
			return "line"
		}
	}
	if rowCount > 10 {
		return "bar"
	}
	lowerQuery := strings.ToLower(query)
	if rowCount <= 8 && (strings.Contains(lowerQuery, "breakdown") || strings.Contains(lowerQuery, "distribution")) {
		return "pie"
	}
	return "bar"
}

func allNumeric(col string, rows []map[string]any) bool {
	for _, row := range rows {
		if _, ok := toFloat(row[col]); !ok {
			return false
		}
	}
	return true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case int:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// formatValue renders a cell for display. Integral floats print without the
// trailing ".000000" that %v would give them.
func formatValue(v any) string {
	switch n := v.(type) {
	case float64:
		if n == float64(int64(n)) {
			return strconv.FormatInt(int64(n), 10)
		}
		return strconv.FormatFloat(n, 'f', -1, 64)
	case float32:
		return formatValue(float64(n))
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

// countNoun pluralizes the unit noun unless the count is exactly one.
func countNoun(count, noun string) string {
	if count == "1" {
		return inflection.Singular(noun)
	}
	return inflection.Plural(noun)
}
