// Package repositories implements PostgreSQL data access for the engine
// catalog and the uploaded data tables themselves.
package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/datachat-labs/datachat-engine/pkg/apperrors"
	"github.com/datachat-labs/datachat-engine/pkg/database"
	"github.com/datachat-labs/datachat-engine/pkg/models"
)

// DatasetRepository defines catalog access for uploaded datasets.
type DatasetRepository interface {
	Create(ctx context.Context, dataset *models.Dataset) error
	List(ctx context.Context) ([]models.Dataset, error)
	GetByTableName(ctx context.Context, tableName string) (*models.Dataset, error)
	TableNames(ctx context.Context) ([]string, error)
}

type datasetRepository struct {
	db *database.DB
}

// NewDatasetRepository creates a new dataset repository.
func NewDatasetRepository(db *database.DB) DatasetRepository {
	return &datasetRepository{db: db}
}

// Create registers an uploaded dataset in the engine catalog.
func (r *datasetRepository) Create(ctx context.Context, dataset *models.Dataset) error {
	if dataset.ID == uuid.Nil {
		dataset.ID = uuid.New()
	}
	dataset.CreatedAt = time.Now()

	query := `
		INSERT INTO engine_datasets (id, table_name, original_filename, row_count, column_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(ctx, query,
		dataset.ID,
		dataset.TableName,
		dataset.OriginalFilename,
		dataset.RowCount,
		dataset.ColumnCount,
		dataset.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create dataset: %w", err)
	}

	return nil
}

// List returns all registered datasets, newest first.
func (r *datasetRepository) List(ctx context.Context) ([]models.Dataset, error) {
	query := `
		SELECT id, table_name, original_filename, row_count, column_count, created_at
		FROM engine_datasets
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}
	defer rows.Close()

	var datasets []models.Dataset
	for rows.Next() {
		var d models.Dataset
		if err := rows.Scan(&d.ID, &d.TableName, &d.OriginalFilename, &d.RowCount, &d.ColumnCount, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan dataset: %w", err)
		}
		datasets = append(datasets, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read datasets: %w", err)
	}

	return datasets, nil
}

// GetByTableName retrieves one dataset by its table name.
func (r *datasetRepository) GetByTableName(ctx context.Context, tableName string) (*models.Dataset, error) {
	query := `
		SELECT id, table_name, original_filename, row_count, column_count, created_at
		FROM engine_datasets
		WHERE table_name = $1`

	var d models.Dataset
	err := r.db.QueryRow(ctx, query, tableName).Scan(
		&d.ID, &d.TableName, &d.OriginalFilename, &d.RowCount, &d.ColumnCount, &d.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get dataset: %w", err)
	}

	return &d, nil
}

// TableNames returns the table names of every registered dataset in catalog
// order (oldest first). The relevance selector's last-resort rule depends on
// this ordering being stable.
func (r *datasetRepository) TableNames(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT table_name FROM engine_datasets ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list table names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read table names: %w", err)
	}

	return names, nil
}
