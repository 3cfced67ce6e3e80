package models

// SemanticType is the inferred logical data category of a column, independent
// of physical storage type.
type SemanticType string

const (
	TypeText    SemanticType = "TEXT"
	TypeInteger SemanticType = "INTEGER"
	TypeNumeric SemanticType = "NUMERIC"
	TypeDate    SemanticType = "DATE"
	// TypeBoolean never comes out of upload-time inference; it exists for
	// boolean columns read back from the catalog.
	TypeBoolean SemanticType = "BOOLEAN"
)

// ColumnSchema describes one physical column. Created at upload time by type
// inference and immutable once the table exists.
type ColumnSchema struct {
	Name         string       `json:"name"`
	SemanticType SemanticType `json:"semantic_type"`
	// SourceHint records which inference rule decided the type, e.g.
	// "money_name_hint" or "catalog". Informational only.
	SourceHint string `json:"source_hint,omitempty"`
}

// CatalogColumn is the shape the database catalog reports for a column.
// The schema normalizer converts these into ColumnSchema.
type CatalogColumn struct {
	ColumnName string `json:"column_name"`
	DataType   string `json:"data_type"`
	IsNullable bool   `json:"is_nullable"`
}

// TableProfile carries everything the pipeline needs to know about one table:
// ordered columns plus a small bounded sample. Built fresh from the catalog
// per request, never persisted.
type TableProfile struct {
	TableName  string           `json:"table_name"`
	Columns    []ColumnSchema   `json:"columns"`
	SampleRows []map[string]any `json:"sample_rows"`
}

// MaxSampleRows caps the bounded sample read used for relevance scoring and
// prompt context.
const MaxSampleRows = 5
