package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/datachat-labs/datachat-engine/pkg/services"
)

// AskHandler answers natural-language questions.
type AskHandler struct {
	asks   services.AskService
	logger *zap.Logger
}

// NewAskHandler creates an ask handler.
func NewAskHandler(asks services.AskService, logger *zap.Logger) *AskHandler {
	return &AskHandler{asks: asks, logger: logger}
}

// RegisterRoutes registers the ask route on the given mux.
func (h *AskHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/ask", h.Ask)
}

// Ask handles POST /api/ask with a JSON body {query, table_name?}.
func (h *AskHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req services.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ErrorResponse(w, http.StatusBadRequest, "invalid_request", "request body must be JSON with a \"query\" field")
		return
	}
	if req.Query == "" {
		ErrorResponse(w, http.StatusBadRequest, "invalid_request", "query must not be empty")
		return
	}

	resp, err := h.asks.Ask(r.Context(), &req)
	if err != nil {
		h.logger.Warn("Ask failed",
			zap.String("query", req.Query),
			zap.Error(err))
		WriteError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, resp)
}
