package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/datachat-labs/datachat-engine/pkg/apperrors"
	"github.com/datachat-labs/datachat-engine/pkg/models"
	"github.com/datachat-labs/datachat-engine/pkg/schema"
	"github.com/datachat-labs/datachat-engine/pkg/testhelpers"
)

func testTableName(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
}

func salesTestSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.NormalizeInferred([]models.ColumnSchema{
		{Name: "category", SemanticType: models.TypeText},
		{Name: "revenue", SemanticType: models.TypeNumeric},
		{Name: "units", SemanticType: models.TypeInteger},
		{Name: "sold_on", SemanticType: models.TypeDate},
	})
	require.NoError(t, err)
	return s
}

func TestTableStore_UploadAndProfile(t *testing.T) {
	engineDB := testhelpers.GetEngineDB(t)
	ctx := context.Background()
	store := NewTableStore(engineDB.DB, zaptest.NewLogger(t))

	table := testTableName("sales")
	s := salesTestSchema(t)

	require.NoError(t, store.CreateTable(ctx, table, s))

	rows := [][]string{
		{"Electronics", "$1,200.00", "3", "2023-03-01"},
		{"Books", "45.50", "2", "2023-03-02"},
		{"Toys", "", "", "2023-03-03"}, // empty cells become NULL
	}
	inserted, err := store.InsertRows(ctx, table, s, rows)
	require.NoError(t, err)
	assert.Equal(t, int64(3), inserted)

	profile, err := store.TableProfile(ctx, table)
	require.NoError(t, err)
	assert.Equal(t, table, profile.TableName)
	require.Len(t, profile.Columns, 4)
	assert.Equal(t, "category", profile.Columns[0].Name)
	assert.Equal(t, models.TypeNumeric, profile.Columns[1].SemanticType)
	assert.Equal(t, models.TypeInteger, profile.Columns[2].SemanticType)
	assert.Equal(t, models.TypeDate, profile.Columns[3].SemanticType)
	assert.LessOrEqual(t, len(profile.SampleRows), models.MaxSampleRows)
	assert.NotEmpty(t, profile.SampleRows)
}

func TestTableStore_ProfileMissingTable(t *testing.T) {
	engineDB := testhelpers.GetEngineDB(t)
	store := NewTableStore(engineDB.DB, zaptest.NewLogger(t))

	_, err := store.TableProfile(context.Background(), "no_such_table")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestTableStore_ExecuteQuery(t *testing.T) {
	engineDB := testhelpers.GetEngineDB(t)
	ctx := context.Background()
	store := NewTableStore(engineDB.DB, zaptest.NewLogger(t))

	table := testTableName("exec")
	s := salesTestSchema(t)
	require.NoError(t, store.CreateTable(ctx, table, s))
	_, err := store.InsertRows(ctx, table, s, [][]string{
		{"Electronics", "100", "1", "2023-01-01"},
		{"Books", "50", "2", "2023-01-02"},
	})
	require.NoError(t, err)

	columns, rows, err := store.ExecuteQuery(ctx,
		fmt.Sprintf(`SELECT "category", SUM("revenue") AS total FROM "%s" GROUP BY "category" ORDER BY total DESC`, table))
	require.NoError(t, err)
	assert.Equal(t, []string{"category", "total"}, columns)
	require.Len(t, rows, 2)
	assert.Equal(t, "Electronics", rows[0]["category"])
}

func TestTableStore_ExecuteQueryFailureIsExecutionError(t *testing.T) {
	engineDB := testhelpers.GetEngineDB(t)
	store := NewTableStore(engineDB.DB, zaptest.NewLogger(t))

	_, _, err := store.ExecuteQuery(context.Background(), `SELECT "nope" FROM "missing_table"`)
	var execErr *apperrors.ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.NotEmpty(t, execErr.Detail)
}

func TestTableStore_ExecuteQueryBoundsResultSize(t *testing.T) {
	engineDB := testhelpers.GetEngineDB(t)
	ctx := context.Background()
	store := NewTableStore(engineDB.DB, zaptest.NewLogger(t))

	table := testTableName("big")
	s, err := schema.NormalizeInferred([]models.ColumnSchema{
		{Name: "n", SemanticType: models.TypeInteger},
	})
	require.NoError(t, err)
	require.NoError(t, store.CreateTable(ctx, table, s))

	var rows [][]string
	for i := 0; i < MaxResultRows+10; i++ {
		rows = append(rows, []string{fmt.Sprintf("%d", i)})
	}
	_, err = store.InsertRows(ctx, table, s, rows)
	require.NoError(t, err)

	_, got, err := store.ExecuteQuery(ctx, fmt.Sprintf(`SELECT "n" FROM "%s"`, table))
	require.NoError(t, err)
	assert.Len(t, got, MaxResultRows)
}

func TestDatasetRepository_RoundTrip(t *testing.T) {
	engineDB := testhelpers.GetEngineDB(t)
	ctx := context.Background()
	repo := NewDatasetRepository(engineDB.DB)

	table := testTableName("ds")
	dataset := &models.Dataset{
		TableName:        table,
		OriginalFilename: "sales.csv",
		RowCount:         3,
		ColumnCount:      4,
	}
	require.NoError(t, repo.Create(ctx, dataset))
	assert.NotZero(t, dataset.ID)

	got, err := repo.GetByTableName(ctx, table)
	require.NoError(t, err)
	assert.Equal(t, dataset.ID, got.ID)
	assert.Equal(t, "sales.csv", got.OriginalFilename)

	names, err := repo.TableNames(ctx)
	require.NoError(t, err)
	assert.Contains(t, names, table)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, list)
}

func TestDatasetRepository_GetMissing(t *testing.T) {
	engineDB := testhelpers.GetEngineDB(t)
	repo := NewDatasetRepository(engineDB.DB)

	_, err := repo.GetByTableName(context.Background(), "never_registered")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSavedQueryRepository_RoundTrip(t *testing.T) {
	engineDB := testhelpers.GetEngineDB(t)
	ctx := context.Background()
	repo := NewSavedQueryRepository(engineDB.DB)

	table := testTableName("hist")
	first := &models.SavedQuery{
		TableName:     table,
		OriginalQuery: "total revenue",
		SQLQuery:      `SELECT SUM("revenue") FROM "sales"`,
		RowCount:      1,
	}
	require.NoError(t, repo.Create(ctx, first))

	second := &models.SavedQuery{
		TableName:     table,
		OriginalQuery: "revenue by category",
		SQLQuery:      `SELECT "category", SUM("revenue") FROM "sales" GROUP BY "category"`,
		RowCount:      4,
	}
	require.NoError(t, repo.Create(ctx, second))

	queries, err := repo.ListByTable(ctx, table, 10)
	require.NoError(t, err)
	require.Len(t, queries, 2)
	assert.Equal(t, "revenue by category", queries[0].OriginalQuery, "newest first")
}
