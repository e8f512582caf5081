// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/comptrack/internal/domain/model"
)

// fallbackPlacement is recorded when the submitted placement is not a
// number, keeping the game in the log instead of rejecting it.
const fallbackPlacement = 9

// maxAugments bounds the per-game augment list.
const maxAugments = 3

// GameDependencies defines the interface for game submissions.
type GameDependencies interface {
	SubmitGame(ctx context.Context, entry model.GameEntry, mine bool) (int, error)
}

// GameHandler handles game log submissions.
type GameHandler struct {
	deps GameDependencies
}

// NewGameHandler creates a new game handler.
func NewGameHandler(deps GameDependencies) *GameHandler {
	return &GameHandler{deps: deps}
}

// gameRequest mirrors the OpenAPI schema for POST /games.
type gameRequest struct {
	Composition string   `json:"composition"`
	Placement   string   `json:"placement"`
	Augments    []string `json:"augments"`
	Patch       string   `json:"patch"`
	Mine        bool     `json:"mine"`
}

func (g gameRequest) validate() error {
	switch {
	case strings.TrimSpace(g.Composition) == "":
		return errors.New("missing composition")
	case strings.TrimSpace(g.Patch) == "":
		return errors.New("missing patch")
	case len(g.Augments) > maxAugments:
		return errors.New("too many augments; at most 3")
	}
	return nil
}

type gameResponse struct {
	Seq  int  `json:"seq"`
	Mine bool `json:"mine"`
	Win  bool `json:"win"`
	Top4 bool `json:"top4"`
}

// HandlePostGame handles POST /games requests.
func (h *GameHandler) HandlePostGame(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_game"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req gameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	// Unparseable placements are kept with a sentinel value.
	placement, err := strconv.Atoi(strings.TrimSpace(req.Placement))
	if err != nil {
		placement = fallbackPlacement
	}

	entry := model.GameEntry{
		Composition: req.Composition,
		Placement:   placement,
		Patch:       req.Patch,
	}
	copy(entry.Augments[:], req.Augments)

	seq, err := h.deps.SubmitGame(r.Context(), entry, req.Mine)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, gameResponse{
		Seq:  seq,
		Mine: req.Mine,
		Win:  entry.Win(),
		Top4: entry.Top4(),
	})
}
