// Package services implements the upload and ask workflows over the
// repositories and pipeline components.
package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/datachat-labs/datachat-engine/pkg/apperrors"
	"github.com/datachat-labs/datachat-engine/pkg/models"
	"github.com/datachat-labs/datachat-engine/pkg/repositories"
	"github.com/datachat-labs/datachat-engine/pkg/schema"
)

// UploadService turns a CSV stream into a queryable table plus a catalog
// entry.
type UploadService interface {
	UploadCSV(ctx context.Context, filename string, r io.Reader) (*models.Dataset, error)
}

type uploadService struct {
	datasets repositories.DatasetRepository
	store    repositories.TableStore
	logger   *zap.Logger
}

// NewUploadService creates the upload service.
func NewUploadService(datasets repositories.DatasetRepository, store repositories.TableStore, logger *zap.Logger) UploadService {
	return &uploadService{datasets: datasets, store: store, logger: logger}
}

// UploadCSV parses the CSV, infers a semantic type per column, creates the
// physical table, loads the rows, and registers the dataset.
func (s *uploadService) UploadCSV(ctx context.Context, filename string, r io.Reader) (*models.Dataset, error) {
	header, rows, err := readCSV(r)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(header))
	for i, h := range header {
		names = append(names, sanitizeIdentifier(h, fmt.Sprintf("column_%d", i+1)))
	}

	inferred := schema.InferColumns(names, transpose(len(names), rows))
	canonical, err := schema.NormalizeInferred(inferred)
	if err != nil {
		return nil, err
	}

	tableName, err := s.uniqueTableName(ctx, filename)
	if err != nil {
		return nil, err
	}

	if err := s.store.CreateTable(ctx, tableName, canonical); err != nil {
		return nil, err
	}

	inserted, err := s.store.InsertRows(ctx, tableName, canonical, rows)
	if err != nil {
		return nil, err
	}

	dataset := &models.Dataset{
		TableName:        tableName,
		OriginalFilename: filepath.Base(filename),
		RowCount:         inserted,
		ColumnCount:      len(canonical.Columns),
	}
	if err := s.datasets.Create(ctx, dataset); err != nil {
		return nil, err
	}

	s.logger.Info("Dataset uploaded",
		zap.String("table", tableName),
		zap.Int64("rows", inserted),
		zap.Int("columns", len(canonical.Columns)))

	return dataset, nil
}

// readCSV reads the header and all data rows. Ragged rows are tolerated;
// missing trailing cells load as NULL.
func readCSV(r io.Reader) ([]string, [][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, apperrors.ErrEmptyUpload
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read CSV row: %w", err)
		}
		rows = append(rows, record)
	}

	if len(rows) == 0 {
		return nil, nil, apperrors.ErrEmptyUpload
	}

	return header, rows, nil
}

// transpose converts row-major CSV records into one raw value slice per
// column, padding ragged rows with empty strings.
func transpose(columnCount int, rows [][]string) [][]string {
	columns := make([][]string, columnCount)
	for i := range columns {
		columns[i] = make([]string, 0, len(rows))
	}
	for _, row := range rows {
		for i := 0; i < columnCount; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			columns[i] = append(columns[i], cell)
		}
	}
	return columns
}

var identifierCleanRe = regexp.MustCompile(`[^a-z0-9_]+`)

// sanitizeIdentifier lowercases and strips a name down to [a-z0-9_] so it is
// safe inside quoted DDL. Falls back when nothing survives.
func sanitizeIdentifier(name, fallback string) string {
	cleaned := strings.ToLower(strings.TrimSpace(name))
	cleaned = strings.ReplaceAll(cleaned, " ", "_")
	cleaned = identifierCleanRe.ReplaceAllString(cleaned, "")
	cleaned = strings.Trim(cleaned, "_")
	if cleaned == "" {
		return fallback
	}
	if cleaned[0] >= '0' && cleaned[0] <= '9' {
		cleaned = "t_" + cleaned
	}
	return cleaned
}

// uniqueTableName derives a table name from the filename and suffixes it on
// collision with an existing dataset.
func (s *uploadService) uniqueTableName(ctx context.Context, filename string) (string, error) {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	base = sanitizeIdentifier(base, "dataset")

	candidate := base
	for i := 2; ; i++ {
		_, err := s.datasets.GetByTableName(ctx, candidate)
		if errors.Is(err, apperrors.ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to check table name %q: %w", candidate, err)
		}
		candidate = fmt.Sprintf("%s_%d", base, i)
	}
}
