package api

import (
	"context"
	"net/http"

	"github.com/okian/handicap/internal/domain/model"
)

// YearlyDependencies lists what the yearly route reads.
type YearlyDependencies interface {
	Yearly(ctx context.Context) (model.YearlyMatrix, error)
}

// YearlyHandler handles yearly matrix requests.
type YearlyHandler struct {
	deps YearlyDependencies
}

// NewYearlyHandler creates a new yearly handler.
func NewYearlyHandler(deps YearlyDependencies) *YearlyHandler {
	return &YearlyHandler{deps: deps}
}

// HandleGetYearly handles GET /api/yearly requests.
func (h *YearlyHandler) HandleGetYearly(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_yearly"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	m, err := h.deps.Yearly(r.Context())
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}
