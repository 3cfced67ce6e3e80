package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/datachat-labs/datachat-engine/pkg/models"
)

func TestInferColumnType(t *testing.T) {
	tests := []struct {
		name     string
		column   string
		values   []string
		expected models.SemanticType
	}{
		{
			name:     "all integers",
			column:   "units",
			values:   []string{"1", "42", "700"},
			expected: models.TypeInteger,
		},
		{
			name:     "one decimal makes numeric",
			column:   "units",
			values:   []string{"1", "42.5", "700"},
			expected: models.TypeNumeric,
		},
		{
			name:     "currency values with money name hint",
			column:   "TotalAmount",
			values:   []string{"9.99", "$1200.00", "450"},
			expected: models.TypeNumeric,
		},
		{
			name:     "price column with 70 percent currency-like values",
			column:   "unit_price",
			values:   []string{"$5.00", "$6.50", "$7.25", "2023-03-01", "$1.99", "$2.49", "$3.99", "call us", "$9.99", "$4.20"},
			expected: models.TypeNumeric,
		},
		{
			name:     "iso dates with date name",
			column:   "Date",
			values:   []string{"2023-03-01", "2023-03-15"},
			expected: models.TypeDate,
		},
		{
			name:     "slash dates without name hint",
			column:   "shipped",
			values:   []string{"03/01/2023", "03/15/2023", "04/02/2023"},
			expected: models.TypeDate,
		},
		{
			name:     "month name dates",
			column:   "order_date",
			values:   []string{"Jan 2, 2023", "Mar 15, 2023"},
			expected: models.TypeDate,
		},
		{
			name:     "mixed dates and text degrade to text",
			column:   "created",
			values:   []string{"2023-03-01", "sometime"},
			expected: models.TypeText,
		},
		{
			name:     "currency tokens never pass the date test",
			column:   "note",
			values:   []string{"$1,200.00", "$3,400.00"},
			expected: models.TypeText,
		},
		{
			name:     "plain text",
			column:   "category",
			values:   []string{"Electronics", "Clothing"},
			expected: models.TypeText,
		},
		{
			name:     "empty values degrade to text",
			column:   "anything",
			values:   []string{"", "  ", "null"},
			expected: models.TypeText,
		},
		{
			name:     "nil values degrade to text",
			column:   "anything",
			values:   nil,
			expected: models.TypeText,
		},
		{
			name:     "blanks dropped before unanimity check",
			column:   "count",
			values:   []string{"1", "", "2", "N/A", "3"},
			expected: models.TypeInteger,
		},
		{
			name:     "negative accounting numbers with hint",
			column:   "net_total",
			values:   []string{"(1,200.00)", "$450.00", "30"},
			expected: models.TypeNumeric,
		},
		{
			name:     "money hint but mostly text stays text",
			column:   "price_notes",
			values:   []string{"ask sales", "negotiable", "$5.00"},
			expected: models.TypeText,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InferColumnType(tt.column, tt.values)
			assert.Equal(t, tt.expected, got.SemanticType)
			assert.Equal(t, tt.column, got.Name)
		})
	}
}

func TestInferColumnType_NeverEmptyHint(t *testing.T) {
	got := InferColumnType("x", []string{"whatever"})
	assert.NotEmpty(t, got.SourceHint)
}

func TestInferColumns_PreservesOrder(t *testing.T) {
	names := []string{"region", "revenue", "sold_on"}
	columns := [][]string{
		{"north", "south"},
		{"10.5", "20.25"},
		{"2023-01-01", "2023-02-01"},
	}

	schema := InferColumns(names, columns)

	assert.Len(t, schema, 3)
	assert.Equal(t, "region", schema[0].Name)
	assert.Equal(t, models.TypeText, schema[0].SemanticType)
	assert.Equal(t, models.TypeNumeric, schema[1].SemanticType)
	assert.Equal(t, models.TypeDate, schema[2].SemanticType)
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
		ok       bool
	}{
		{"450", 450, true},
		{"9.99", 9.99, true},
		{"$1200.00", 1200, true},
		{"$1,200.00", 1200, true},
		{"(350.00)", -350, true},
		{"", 0, false},
		{"abc", 0, false},
		{"2023-03-01", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			n, ok := ParseNumber(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.expected, n, 0.0001)
			}
		})
	}
}
