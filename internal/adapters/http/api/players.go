package api

import (
	"context"
	"net/http"

	"github.com/okian/handicap/internal/domain/model"
)

// OverviewDependencies lists what the overview route reads.
type OverviewDependencies interface {
	Overview(ctx context.Context) ([]model.PlayerSummary, error)
}

// PlayersHandler handles overview requests.
type PlayersHandler struct {
	deps OverviewDependencies
}

// NewPlayersHandler creates a new overview handler.
func NewPlayersHandler(deps OverviewDependencies) *PlayersHandler {
	return &PlayersHandler{deps: deps}
}

// HandleGetPlayers handles GET /api/players requests.
func (h *PlayersHandler) HandleGetPlayers(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_players"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	overview, err := h.deps.Overview(r.Context())
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}
