package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/datachat-labs/datachat-engine/pkg/database"
	"github.com/datachat-labs/datachat-engine/pkg/models"
)

// SavedQueryRepository persists the history of answered questions.
type SavedQueryRepository interface {
	Create(ctx context.Context, sq *models.SavedQuery) error
	ListByTable(ctx context.Context, tableName string, limit int) ([]models.SavedQuery, error)
}

type savedQueryRepository struct {
	db *database.DB
}

// NewSavedQueryRepository creates a new saved-query repository.
func NewSavedQueryRepository(db *database.DB) SavedQueryRepository {
	return &savedQueryRepository{db: db}
}

// Create records one answered question.
func (r *savedQueryRepository) Create(ctx context.Context, sq *models.SavedQuery) error {
	if sq.ID == uuid.Nil {
		sq.ID = uuid.New()
	}
	sq.CreatedAt = time.Now()

	query := `
		INSERT INTO engine_saved_queries (id, table_name, original_query, sql_query, row_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(ctx, query,
		sq.ID, sq.TableName, sq.OriginalQuery, sq.SQLQuery, sq.RowCount, sq.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save query: %w", err)
	}

	return nil
}

// ListByTable returns the most recent saved queries for one table.
func (r *savedQueryRepository) ListByTable(ctx context.Context, tableName string, limit int) ([]models.SavedQuery, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, table_name, original_query, sql_query, row_count, created_at
		FROM engine_saved_queries
		WHERE table_name = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, tableName, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list saved queries: %w", err)
	}
	defer rows.Close()

	var queries []models.SavedQuery
	for rows.Next() {
		var sq models.SavedQuery
		if err := rows.Scan(&sq.ID, &sq.TableName, &sq.OriginalQuery, &sq.SQLQuery, &sq.RowCount, &sq.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan saved query: %w", err)
		}
		queries = append(queries, sq)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read saved queries: %w", err)
	}

	return queries, nil
}
