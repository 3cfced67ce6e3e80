package models

import (
	"time"

	"github.com/google/uuid"
)

// Dataset is one uploaded table registered in the engine catalog.
type Dataset struct {
	ID               uuid.UUID `json:"id"`
	TableName        string    `json:"table_name"`
	OriginalFilename string    `json:"original_filename"`
	RowCount         int64     `json:"row_count"`
	ColumnCount      int       `json:"column_count"`
	CreatedAt        time.Time `json:"created_at"`
}

// SavedQuery is the persisted record of one answered question: the user's
// text, the repaired SQL that ran, and how many rows it returned.
type SavedQuery struct {
	ID            uuid.UUID `json:"id"`
	TableName     string    `json:"table_name"`
	OriginalQuery string    `json:"original_query"`
	SQLQuery      string    `json:"sql_query"`
	RowCount      int       `json:"row_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// ChartData is the optional chart specification inferred from result rows.
type ChartData struct {
	Type   string    `json:"type"` // "bar", "line", or "pie"
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// AskResponse is the caller-facing result of one ask request.
type AskResponse struct {
	Answer        string           `json:"answer"`
	FilteredData  []map[string]any `json:"filtered_data"`
	ChartData     *ChartData       `json:"chart_data,omitempty"`
	SQLQuery      string           `json:"sql_query"`
	OriginalQuery string           `json:"original_query"`
}
