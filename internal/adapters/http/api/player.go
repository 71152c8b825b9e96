package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/okian/handicap/internal/domain/model"
)

const playersPrefix = "/api/players/"

// PlayerDependencies lists what the player detail route reads.
type PlayerDependencies interface {
	Player(ctx context.Context, ref string) (model.PlayerDetail, error)
}

// PlayerHandler handles player detail requests.
type PlayerHandler struct {
	deps PlayerDependencies
}

// NewPlayerHandler creates a new player detail handler.
func NewPlayerHandler(deps PlayerDependencies) *PlayerHandler {
	return &PlayerHandler{deps: deps}
}

type entryResponse struct {
	Date     string  `json:"date"`
	Value    float64 `json:"value"`
	Handicap string  `json:"handicap"`
	LowHI    string  `json:"lowHI"`
}

type playerResponse struct {
	model.PlayerSummary
	Entries    []entryResponse   `json:"entries"`
	YearCounts []model.YearCount `json:"yearCounts"`
}

// HandleGetPlayer handles GET /api/players/{slug} requests.
func (h *PlayerHandler) HandleGetPlayer(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_player"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	ref := strings.Trim(strings.TrimPrefix(r.URL.Path, playersPrefix), "/")
	if ref == "" || strings.Contains(ref, "/") {
		writeError(w, http.StatusNotFound, "not_found", fmt.Errorf("%s: %w", op, ErrNotFound))
		return
	}
	detail, err := h.deps.Player(r.Context(), ref)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, toPlayerResponse(detail))
}

func toPlayerResponse(d model.PlayerDetail) playerResponse {
	entries := make([]entryResponse, len(d.Entries))
	for i, e := range d.Entries {
		entries[i] = entryResponse{
			Date:     e.Date.String(),
			Value:    e.Value,
			Handicap: model.FormatHandicap(e.Value),
			LowHI:    model.FormatLowHI(e.LowHI),
		}
	}
	counts := d.YearCounts
	if counts == nil {
		counts = []model.YearCount{}
	}
	return playerResponse{PlayerSummary: d.PlayerSummary, Entries: entries, YearCounts: counts}
}
