package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datachat-labs/datachat-engine/pkg/models"
	"github.com/datachat-labs/datachat-engine/pkg/schema"
)

func fullSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.NormalizeInferred([]models.ColumnSchema{
		{Name: "category", SemanticType: models.TypeText},
		{Name: "revenue", SemanticType: models.TypeNumeric},
		{Name: "sold_on", SemanticType: models.TypeDate},
	})
	require.NoError(t, err)
	return s
}

func textOnlySchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.NormalizeInferred([]models.ColumnSchema{
		{Name: "category", SemanticType: models.TypeText},
		{Name: "notes", SemanticType: models.TypeText},
	})
	require.NoError(t, err)
	return s
}

func newClassifier(t *testing.T) *Classifier {
	t.Helper()
	catalog, err := DefaultCatalog()
	require.NoError(t, err)
	return NewClassifier(catalog)
}

func TestClassify(t *testing.T) {
	c := newClassifier(t)
	full := fullSchema(t)

	tests := []struct {
		name     string
		query    string
		expected []string
	}{
		{
			name:     "aggregation",
			query:    "What is the total revenue?",
			expected: []string{Aggregation},
		},
		{
			name:     "ranking",
			query:    "Which product had the highest sales?",
			expected: []string{Ranking},
		},
		{
			name:     "trending needs date and numeric",
			query:    "Show revenue trends by month",
			expected: []string{Trending, Temporal},
		},
		{
			name:     "distribution",
			query:    "Give me a breakdown by category",
			expected: []string{Distribution},
		},
		{
			name:     "comparison",
			query:    "Compare north versus south",
			expected: []string{Comparison},
		},
		{
			name:     "no match falls back to general",
			query:    "tell me something interesting",
			expected: []string{General},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.query, full)
			assert.Equal(t, tt.expected, Names(got))
		})
	}
}

func TestClassify_SchemaGatesIntents(t *testing.T) {
	c := newClassifier(t)
	textOnly := textOnlySchema(t)

	// Pattern says trending, but no date or numeric column exists.
	got := c.Classify("show me the monthly trend", textOnly)
	assert.Equal(t, []string{General}, Names(got))

	// Ranking needs a numeric column.
	got = c.Classify("top categories", textOnly)
	assert.Equal(t, []string{General}, Names(got))

	// Aggregation declares no requirement, so it survives on a text-only table.
	got = c.Classify("how many records are there", textOnly)
	assert.Equal(t, []string{Aggregation}, Names(got))
}

func TestClassify_NeverEmpty(t *testing.T) {
	c := newClassifier(t)
	got := c.Classify("", textOnlySchema(t))
	require.NotEmpty(t, got)
	assert.Equal(t, General, got[0].Name)
}

func TestClassify_GroupByFlagAndHints(t *testing.T) {
	c := newClassifier(t)
	full := fullSchema(t)

	got := c.Classify("total revenue by category", full)
	require.Equal(t, []string{Aggregation}, Names(got))
	assert.True(t, got[0].RequiresGroupBy)
	assert.Contains(t, got[0].Hints, "GROUP BY")
	assert.True(t, AnyRequiresGroupBy(got))

	got = c.Classify("which sale was the most recent", full)
	assert.False(t, got[0].RequiresGroupBy)
}

func TestDefaultCatalog_ClosedSet(t *testing.T) {
	catalog, err := DefaultCatalog()
	require.NoError(t, err)

	known := map[string]bool{
		Aggregation: true, Comparison: true, Trending: true,
		Ranking: true, Distribution: true, Temporal: true,
	}
	defs := catalog.Definitions()
	assert.Len(t, defs, 6)
	for _, def := range defs {
		assert.True(t, known[def.Name], "unexpected intent %q", def.Name)
		assert.NotEmpty(t, def.Patterns)
	}
}
