package api

import (
	"context"
	"net/http"

	"github.com/okian/dutyrota/internal/domain/model"
)

// HistoryDependencies defines the history and reset operations.
type HistoryDependencies interface {
	History(ctx context.Context) (model.History, error)
	ResetHistory(ctx context.Context) error
	ResetAll(ctx context.Context) error
}

// HistoryHandler handles history and reset requests.
type HistoryHandler struct {
	deps HistoryDependencies
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(deps HistoryDependencies) *HistoryHandler {
	return &HistoryHandler{deps: deps}
}

// HandleHistory handles GET /history and DELETE /history. Deleting clears
// every slot history but keeps the roster.
func (h *HistoryHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		hist, err := h.deps.History(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, hist)
	case http.MethodDelete:
		if err := h.deps.ResetHistory(r.Context()); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, "GET, DELETE")
	}
}

// HandleState handles DELETE /state, which clears the roster and history.
func (h *HistoryHandler) HandleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w, "DELETE")
		return
	}
	if err := h.deps.ResetAll(r.Context()); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
