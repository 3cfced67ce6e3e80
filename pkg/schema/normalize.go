package schema

import (
	"strings"

	"github.com/datachat-labs/datachat-engine/pkg/apperrors"
	"github.com/datachat-labs/datachat-engine/pkg/models"
)

// Schema is the canonical schema shape every downstream component consumes.
// The two schema sources (upload-time inference, catalog reads) name the same
// concepts differently; normalization removes that divergence here so the
// selector, classifier, repair engine, and prompt builder see one form.
type Schema struct {
	Columns []models.ColumnSchema

	byName map[string]models.ColumnSchema
	groups map[models.SemanticType][]models.ColumnSchema
}

// NormalizeInferred builds the canonical schema from upload-time inferred columns.
func NormalizeInferred(columns []models.ColumnSchema) (*Schema, error) {
	return build(columns)
}

// NormalizeCatalog builds the canonical schema from catalog-read columns,
// mapping database types onto semantic types.
func NormalizeCatalog(columns []models.CatalogColumn) (*Schema, error) {
	converted := make([]models.ColumnSchema, 0, len(columns))
	for _, col := range columns {
		converted = append(converted, models.ColumnSchema{
			Name:         col.ColumnName,
			SemanticType: semanticTypeFromCatalog(col.DataType),
			SourceHint:   "catalog",
		})
	}
	return build(converted)
}

func build(columns []models.ColumnSchema) (*Schema, error) {
	if len(columns) == 0 {
		return nil, &apperrors.SchemaError{Reason: "schema has no columns"}
	}

	s := &Schema{
		Columns: columns,
		byName:  make(map[string]models.ColumnSchema, len(columns)),
		groups:  make(map[models.SemanticType][]models.ColumnSchema),
	}

	for _, col := range columns {
		if strings.TrimSpace(col.Name) == "" {
			return nil, &apperrors.SchemaError{Reason: "column without a name"}
		}
		if col.SemanticType == "" {
			return nil, &apperrors.SchemaError{Reason: "column " + col.Name + " has no type"}
		}
		s.byName[strings.ToLower(col.Name)] = col
		s.groups[col.SemanticType] = append(s.groups[col.SemanticType], col)
	}

	return s, nil
}

// Lookup finds a column by case-insensitive name.
func (s *Schema) Lookup(name string) (models.ColumnSchema, bool) {
	col, ok := s.byName[strings.ToLower(name)]
	return col, ok
}

// Names returns the ordered column names.
func (s *Schema) Names() []string {
	names := make([]string, 0, len(s.Columns))
	for _, col := range s.Columns {
		names = append(names, col.Name)
	}
	return names
}

// DateColumns returns columns in the date semantic group, in physical order.
func (s *Schema) DateColumns() []models.ColumnSchema {
	return s.groups[models.TypeDate]
}

// NumericColumns returns INTEGER and NUMERIC columns, in physical order.
func (s *Schema) NumericColumns() []models.ColumnSchema {
	out := make([]models.ColumnSchema, 0)
	for _, col := range s.Columns {
		if col.SemanticType == models.TypeInteger || col.SemanticType == models.TypeNumeric {
			out = append(out, col)
		}
	}
	return out
}

// TextColumns returns columns in the text semantic group, in physical order.
func (s *Schema) TextColumns() []models.ColumnSchema {
	return s.groups[models.TypeText]
}

// BooleanColumns returns columns in the boolean semantic group, in physical order.
func (s *Schema) BooleanColumns() []models.ColumnSchema {
	return s.groups[models.TypeBoolean]
}

// HasDateColumn reports whether any date-typed column exists.
func (s *Schema) HasDateColumn() bool { return len(s.DateColumns()) > 0 }

// HasNumericColumn reports whether any numeric-typed column exists.
func (s *Schema) HasNumericColumn() bool { return len(s.NumericColumns()) > 0 }

// semanticTypeFromCatalog maps a Postgres catalog data_type onto a semantic type.
func semanticTypeFromCatalog(dataType string) models.SemanticType {
	dt := strings.ToLower(strings.TrimSpace(dataType))
	switch {
	case strings.Contains(dt, "int") || strings.Contains(dt, "serial"):
		return models.TypeInteger
	case strings.Contains(dt, "numeric") || strings.Contains(dt, "decimal") ||
		strings.Contains(dt, "real") || strings.Contains(dt, "double") ||
		strings.Contains(dt, "float") || strings.Contains(dt, "money"):
		return models.TypeNumeric
	case strings.Contains(dt, "date") || strings.Contains(dt, "timestamp"):
		return models.TypeDate
	case strings.Contains(dt, "bool"):
		return models.TypeBoolean
	default:
		return models.TypeText
	}
}

// PhysicalType maps a semantic type onto the column type used when creating
// uploaded tables.
func PhysicalType(t models.SemanticType) string {
	switch t {
	case models.TypeInteger:
		return "BIGINT"
	case models.TypeNumeric:
		return "NUMERIC"
	case models.TypeDate:
		return "DATE"
	case models.TypeBoolean:
		return "BOOLEAN"
	default:
		return "TEXT"
	}
}
