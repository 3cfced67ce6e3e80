package repositories

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/datachat-labs/datachat-engine/pkg/apperrors"
	"github.com/datachat-labs/datachat-engine/pkg/database"
	"github.com/datachat-labs/datachat-engine/pkg/logging"
	"github.com/datachat-labs/datachat-engine/pkg/models"
	"github.com/datachat-labs/datachat-engine/pkg/schema"
)

// MaxResultRows bounds every user-facing query execution. Result sets are
// truncated, never rejected, at this size.
const MaxResultRows = 500

// TableStore is the data-plane access to uploaded tables: DDL at upload time,
// catalog reads and bounded execution at question time.
type TableStore interface {
	CreateTable(ctx context.Context, tableName string, s *schema.Schema) error
	InsertRows(ctx context.Context, tableName string, s *schema.Schema, rows [][]string) (int64, error)
	TableProfile(ctx context.Context, tableName string) (*models.TableProfile, error)
	ExecuteQuery(ctx context.Context, sql string) ([]string, []map[string]any, error)
}

type tableStore struct {
	db     *database.DB
	logger *zap.Logger
}

// NewTableStore creates a table store.
func NewTableStore(db *database.DB, logger *zap.Logger) TableStore {
	return &tableStore{db: db, logger: logger}
}

// CreateTable creates the physical table for an upload. Identifiers are
// double-quoted; types follow the inferred semantic types.
func (t *tableStore) CreateTable(ctx context.Context, tableName string, s *schema.Schema) error {
	defs := make([]string, 0, len(s.Columns))
	for _, col := range s.Columns {
		defs = append(defs, fmt.Sprintf(`"%s" %s`, col.Name, schema.PhysicalType(col.SemanticType)))
	}

	ddl := fmt.Sprintf(`CREATE TABLE "%s" (%s)`, tableName, strings.Join(defs, ", "))
	if _, err := t.db.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create table %q: %w", tableName, err)
	}

	return nil
}

// InsertRows batch-inserts raw CSV rows. Empty cells become NULL so typed
// columns accept them. Returns the number of rows inserted.
func (t *tableStore) InsertRows(ctx context.Context, tableName string, s *schema.Schema, rows [][]string) (int64, error) {
	names := make([]string, 0, len(s.Columns))
	placeholders := make([]string, 0, len(s.Columns))
	for i, col := range s.Columns {
		names = append(names, `"`+col.Name+`"`)
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+1))
	}
	insert := fmt.Sprintf(`INSERT INTO "%s" (%s) VALUES (%s)`,
		tableName, strings.Join(names, ", "), strings.Join(placeholders, ", "))

	batch := &pgx.Batch{}
	for _, row := range rows {
		args := make([]any, len(s.Columns))
		for i := range s.Columns {
			if i < len(row) {
				args[i] = normalizeCell(row[i], s.Columns[i].SemanticType)
			}
		}
		batch.Queue(insert, args...)
	}

	results := t.db.SendBatch(ctx, batch)
	defer results.Close()

	var inserted int64
	for range rows {
		tag, err := results.Exec()
		if err != nil {
			return inserted, fmt.Errorf("failed to insert rows into %q: %w", tableName, err)
		}
		inserted += tag.RowsAffected()
	}

	return inserted, nil
}

// normalizeCell converts a raw CSV cell into an insertable value. Currency
// decoration is stripped from numeric columns so NUMERIC casts succeed.
func normalizeCell(raw string, semanticType models.SemanticType) any {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}

	switch semanticType {
	case models.TypeInteger, models.TypeNumeric:
		if n, ok := schema.ParseNumber(trimmed); ok {
			return n
		}
		return nil
	default:
		return trimmed
	}
}

// TableProfile reads the catalog columns and a bounded sample for one table.
func (t *tableStore) TableProfile(ctx context.Context, tableName string) (*models.TableProfile, error) {
	catalogCols, err := t.catalogColumns(ctx, tableName)
	if err != nil {
		return nil, err
	}
	if len(catalogCols) == 0 {
		return nil, apperrors.ErrNotFound
	}

	s, err := schema.NormalizeCatalog(catalogCols)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize catalog schema for %q: %w", tableName, err)
	}

	samples, err := t.sampleRows(ctx, tableName, s)
	if err != nil {
		return nil, err
	}

	return &models.TableProfile{
		TableName:  tableName,
		Columns:    s.Columns,
		SampleRows: samples,
	}, nil
}

func (t *tableStore) catalogColumns(ctx context.Context, tableName string) ([]models.CatalogColumn, error) {
	query := `
		SELECT column_name, data_type, is_nullable = 'YES'
		FROM information_schema.columns
		WHERE table_schema = 'public' AND table_name = $1
		ORDER BY ordinal_position`

	rows, err := t.db.Query(ctx, query, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog for %q: %w", tableName, err)
	}
	defer rows.Close()

	var cols []models.CatalogColumn
	for rows.Next() {
		var c models.CatalogColumn
		if err := rows.Scan(&c.ColumnName, &c.DataType, &c.IsNullable); err != nil {
			return nil, fmt.Errorf("failed to scan catalog column: %w", err)
		}
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read catalog columns: %w", err)
	}

	return cols, nil
}

func (t *tableStore) sampleRows(ctx context.Context, tableName string, s *schema.Schema) ([]map[string]any, error) {
	names := make([]string, 0, len(s.Columns))
	for _, col := range s.Columns {
		names = append(names, `"`+col.Name+`"`)
	}
	query := fmt.Sprintf(`SELECT %s FROM "%s" LIMIT %d`,
		strings.Join(names, ", "), tableName, models.MaxSampleRows)

	_, samples, err := t.readRows(ctx, query, models.MaxSampleRows)
	if err != nil {
		return nil, fmt.Errorf("failed to sample %q: %w", tableName, err)
	}
	return samples, nil
}

// ExecuteQuery runs one validated SELECT and returns ordered column names plus
// at most MaxResultRows row maps. Store failures come back as ExecutionError
// carrying the store diagnostic.
func (t *tableStore) ExecuteQuery(ctx context.Context, sql string) ([]string, []map[string]any, error) {
	t.logger.Debug("Executing query", zap.String("sql", logging.TruncateQuery(sql)))

	columns, rows, err := t.readRows(ctx, sql, MaxResultRows)
	if err != nil {
		return nil, nil, &apperrors.ExecutionError{Detail: err.Error(), Err: err}
	}
	return columns, rows, nil
}

// readRows executes a query and materializes up to limit rows.
func (t *tableStore) readRows(ctx context.Context, sql string, limit int) ([]string, []map[string]any, error) {
	rows, err := t.db.Query(ctx, sql)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]string, 0, len(fields))
	for _, f := range fields {
		columns = append(columns, f.Name)
	}

	var out []map[string]any
	for rows.Next() && len(out) < limit {
		values, err := rows.Values()
		if err != nil {
			return nil, nil, err
		}
		row := make(map[string]any, len(columns))
		for i, col := range columns {
			row[col] = normalizeValue(values[i])
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	return columns, out, nil
}

// normalizeValue maps driver-specific types to plain Go values so downstream
// shaping and JSON encoding see floats, not pgtype wrappers.
func normalizeValue(v any) any {
	switch n := v.(type) {
	case pgtype.Numeric:
		f, err := n.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	default:
		return v
	}
}
