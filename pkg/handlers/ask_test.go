package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/datachat-labs/datachat-engine/pkg/apperrors"
	"github.com/datachat-labs/datachat-engine/pkg/models"
	"github.com/datachat-labs/datachat-engine/pkg/services"
)

type stubAskService struct {
	resp *models.AskResponse
	err  error
}

func (s *stubAskService) Ask(context.Context, *services.AskRequest) (*models.AskResponse, error) {
	return s.resp, s.err
}

func newAskServer(t *testing.T, svc services.AskService) *http.ServeMux {
	t.Helper()
	mux := http.NewServeMux()
	NewAskHandler(svc, zaptest.NewLogger(t)).RegisterRoutes(mux)
	return mux
}

func postAsk(mux *http.ServeMux, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/ask", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestAskHandler_Success(t *testing.T) {
	svc := &stubAskService{resp: &models.AskResponse{
		Answer:        "Found 2 results.",
		SQLQuery:      `SELECT "category" FROM "sales"`,
		OriginalQuery: "categories",
	}}
	mux := newAskServer(t, svc)

	rec := postAsk(mux, `{"query": "categories"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Found 2 results.")
	assert.Contains(t, rec.Body.String(), "sql_query")
}

func TestAskHandler_InvalidBody(t *testing.T) {
	mux := newAskServer(t, &stubAskService{})

	rec := postAsk(mux, "not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAskHandler_EmptyQuery(t *testing.T) {
	mux := newAskServer(t, &stubAskService{})

	rec := postAsk(mux, `{"query": ""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAskHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantInBody string
	}{
		{
			name:       "schema error",
			err:        &apperrors.SchemaError{Reason: "schema has no columns"},
			wantStatus: http.StatusBadRequest,
			wantInBody: "invalid_schema",
		},
		{
			name:       "no suitable table",
			err:        apperrors.ErrNoSuitableTable,
			wantStatus: http.StatusNotFound,
			wantInBody: "not_found",
		},
		{
			name:       "unknown table",
			err:        apperrors.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantInBody: "not_found",
		},
		{
			name:       "rejected sql",
			err:        &apperrors.SQLRejectedError{Reasons: []string{"disallowed keyword: drop"}},
			wantStatus: http.StatusUnprocessableEntity,
			wantInBody: "failed safety validation",
		},
		{
			name:       "execution error",
			err:        &apperrors.ExecutionError{Detail: "relation does not exist"},
			wantStatus: http.StatusBadGateway,
			wantInBody: "relation does not exist",
		},
		{
			name:       "unexpected error",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantInBody: "internal_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := newAskServer(t, &stubAskService{err: tt.err})

			rec := postAsk(mux, `{"query": "total revenue"}`)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantInBody)
		})
	}
}

func TestAskHandler_RejectionCarriesReasons(t *testing.T) {
	svc := &stubAskService{err: &apperrors.SQLRejectedError{
		Reasons: []string{"disallowed keyword: drop", "unbalanced single quotes"},
	}}
	mux := newAskServer(t, svc)

	rec := postAsk(mux, `{"query": "total revenue"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "disallowed keyword: drop")
	assert.Contains(t, rec.Body.String(), "unbalanced single quotes")
	assert.NotContains(t, rec.Body.String(), "generated SQL rejected",
		"raw error text is replaced by the canned category message")
}
