package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/datachat-labs/datachat-engine/pkg/models"
	"github.com/datachat-labs/datachat-engine/pkg/repositories"
)

// DatasetsHandler lists uploaded datasets and their query history.
type DatasetsHandler struct {
	datasets repositories.DatasetRepository
	history  repositories.SavedQueryRepository
	logger   *zap.Logger
}

// NewDatasetsHandler creates a datasets handler.
func NewDatasetsHandler(datasets repositories.DatasetRepository, history repositories.SavedQueryRepository, logger *zap.Logger) *DatasetsHandler {
	return &DatasetsHandler{datasets: datasets, history: history, logger: logger}
}

// RegisterRoutes registers the dataset routes on the given mux.
func (h *DatasetsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/datasets", h.List)
	mux.HandleFunc("GET /api/datasets/{table}/queries", h.History)
}

// List handles GET /api/datasets.
func (h *DatasetsHandler) List(w http.ResponseWriter, r *http.Request) {
	datasets, err := h.datasets.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list datasets", zap.Error(err))
		WriteError(w, err)
		return
	}
	if datasets == nil {
		datasets = []models.Dataset{}
	}

	_ = WriteJSON(w, http.StatusOK, datasets)
}

// History handles GET /api/datasets/{table}/queries.
func (h *DatasetsHandler) History(w http.ResponseWriter, r *http.Request) {
	table := r.PathValue("table")

	if _, err := h.datasets.GetByTableName(r.Context(), table); err != nil {
		WriteError(w, err)
		return
	}

	queries, err := h.history.ListByTable(r.Context(), table, 50)
	if err != nil {
		h.logger.Error("Failed to list query history",
			zap.String("table", table),
			zap.Error(err))
		WriteError(w, err)
		return
	}
	if queries == nil {
		queries = []models.SavedQuery{}
	}

	_ = WriteJSON(w, http.StatusOK, queries)
}
