package api

import (
	"net/http"

	"github.com/okian/dutyrota/internal/domain/model"
	"github.com/okian/dutyrota/internal/domain/types"
)

// StatsProvider defines the interface for getting service statistics.
type StatsProvider interface {
	GetStats() types.Stats
}

// StatsHandler handles stats requests.
type StatsHandler struct {
	statsProvider StatsProvider
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(statsProvider StatsProvider) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider}
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	writeJSON(w, http.StatusOK, h.statsProvider.GetStats())
}

// SlotsHandler serves the configured slot set.
type SlotsHandler struct {
	slots model.Slots
}

// NewSlotsHandler creates a new slots handler.
func NewSlotsHandler(slots model.Slots) *SlotsHandler {
	return &SlotsHandler{slots: slots}
}

type slotsResponse struct {
	Slots []model.SlotID `json:"slots"`
}

// HandleSlots handles GET /slots requests.
func (h *SlotsHandler) HandleSlots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	writeJSON(w, http.StatusOK, slotsResponse{Slots: h.slots})
}
