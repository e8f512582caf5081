// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/comptrack/internal/domain/model"
	"github.com/okian/comptrack/internal/domain/numeric"
)

// CompositionDependencies defines the interface for composition submissions.
type CompositionDependencies interface {
	SubmitComposition(ctx context.Context, stat model.CompositionStat) (bool, error)
}

// CompositionHandler handles composition stat submissions.
type CompositionHandler struct {
	deps CompositionDependencies
}

// NewCompositionHandler creates a new composition handler.
func NewCompositionHandler(deps CompositionDependencies) *CompositionHandler {
	return &CompositionHandler{deps: deps}
}

// compositionRequest mirrors the OpenAPI schema for POST /compositions.
// Numeric figures arrive as raw strings; only the average placement must
// parse, the rates are stored verbatim.
type compositionRequest struct {
	Name  string `json:"name"`
	Avg   string `json:"avg_placement"`
	Win   string `json:"win_rate"`
	Top4  string `json:"top4_rate"`
	Patch string `json:"patch"`
}

func (c compositionRequest) validate() error {
	switch {
	case strings.TrimSpace(c.Name) == "":
		return errors.New("missing name")
	case strings.TrimSpace(c.Patch) == "":
		return errors.New("missing patch")
	}
	if _, ok := numeric.ParseDecimal(c.Avg); !ok {
		return errors.New("invalid avg_placement; must be a decimal")
	}
	return nil
}

// HandlePostComposition handles POST /compositions requests.
func (h *CompositionHandler) HandlePostComposition(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_composition"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req compositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	avg, _ := numeric.ParseDecimal(req.Avg)

	edited, err := h.deps.SubmitComposition(r.Context(), model.CompositionStat{
		Name:         req.Name,
		AvgPlacement: avg,
		WinRate:      req.Win,
		Top4Rate:     req.Top4,
		Patch:        req.Patch,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	status := "created"
	if edited {
		status = "edited"
	}
	writeJSON(w, http.StatusOK, ackResponse{Status: status, Edited: edited})
}
