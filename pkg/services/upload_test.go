package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/datachat-labs/datachat-engine/pkg/apperrors"
	"github.com/datachat-labs/datachat-engine/pkg/models"
)

func TestUploadCSV(t *testing.T) {
	datasets := &fakeDatasets{datasets: map[string]*models.Dataset{}}
	store := &fakeStore{}
	svc := NewUploadService(datasets, store, zaptest.NewLogger(t))

	csvData := "Category,Total Amount,Date\nElectronics,$1200.00,2023-03-01\nBooks,45.50,2023-03-15\n"

	dataset, err := svc.UploadCSV(context.Background(), "Q1 Sales.csv", strings.NewReader(csvData))
	require.NoError(t, err)

	assert.Equal(t, "q1_sales", dataset.TableName)
	assert.Equal(t, "Q1 Sales.csv", dataset.OriginalFilename)
	assert.Equal(t, int64(2), dataset.RowCount)
	assert.Equal(t, 3, dataset.ColumnCount)

	require.Len(t, store.createdDDL, 1)
	require.Len(t, store.inserted, 1)
	assert.Len(t, store.inserted[0], 2)
	require.Len(t, datasets.created, 1)
}

func TestUploadCSV_EmptyFile(t *testing.T) {
	svc := NewUploadService(&fakeDatasets{}, &fakeStore{}, zaptest.NewLogger(t))

	_, err := svc.UploadCSV(context.Background(), "empty.csv", strings.NewReader(""))
	assert.ErrorIs(t, err, apperrors.ErrEmptyUpload)
}

func TestUploadCSV_HeaderOnly(t *testing.T) {
	svc := NewUploadService(&fakeDatasets{}, &fakeStore{}, zaptest.NewLogger(t))

	_, err := svc.UploadCSV(context.Background(), "header.csv", strings.NewReader("a,b,c\n"))
	assert.ErrorIs(t, err, apperrors.ErrEmptyUpload)
}

func TestUploadCSV_CollisionGetsSuffix(t *testing.T) {
	datasets := &fakeDatasets{datasets: map[string]*models.Dataset{
		"sales":   {TableName: "sales"},
		"sales_2": {TableName: "sales_2"},
	}}
	svc := NewUploadService(datasets, &fakeStore{}, zaptest.NewLogger(t))

	dataset, err := svc.UploadCSV(context.Background(), "sales.csv", strings.NewReader("a\n1\n"))
	require.NoError(t, err)
	assert.Equal(t, "sales_3", dataset.TableName)
}

func TestSanitizeIdentifier(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Total Amount", "total_amount"},
		{"revenue", "revenue"},
		{"Unit Price ($)", "unit_price"},
		{"2023 results", "t_2023_results"},
		{"!!!", "fallback"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeIdentifier(tt.in, "fallback"))
		})
	}
}

func TestTranspose(t *testing.T) {
	rows := [][]string{
		{"a", "1"},
		{"b"}, // ragged row pads with empty
	}
	cols := transpose(2, rows)
	assert.Equal(t, []string{"a", "b"}, cols[0])
	assert.Equal(t, []string{"1", ""}, cols[1])
}
