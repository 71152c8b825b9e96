package api

import (
	"context"
	"net/http"

	"github.com/okian/handicap/internal/domain/model"
)

// ChartDependencies lists what the chart route reads.
type ChartDependencies interface {
	Chart(ctx context.Context, start, end *model.Date) ([]model.ChartRow, error)
	Players(ctx context.Context) ([]string, error)
}

// ChartHandler handles chart requests.
type ChartHandler struct {
	deps ChartDependencies
}

// NewChartHandler creates a new chart handler.
func NewChartHandler(deps ChartDependencies) *ChartHandler {
	return &ChartHandler{deps: deps}
}

type chartResponse struct {
	Players []string         `json:"players"`
	Start   *model.Date      `json:"start,omitempty"`
	End     *model.Date      `json:"end,omitempty"`
	Rows    []model.ChartRow `json:"rows"`
}

// HandleGetChart handles GET /api/chart?start=YYYY-MM-DD&end=YYYY-MM-DD requests.
// Both bounds are optional and inclusive.
func (h *ChartHandler) HandleGetChart(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_chart"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	start, err := queryDate(r, "start")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	end, err := queryDate(r, "end")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	rows, err := h.deps.Chart(r.Context(), start, end)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	players, err := h.deps.Players(r.Context())
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, chartResponse{Players: players, Start: start, End: end, Rows: rows})
}
