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

// ArtefactDependencies defines the interface for artefact submissions.
type ArtefactDependencies interface {
	SubmitArtefact(ctx context.Context, stat model.ArtefactStat) (bool, error)
}

// ArtefactHandler handles artefact stat submissions.
type ArtefactHandler struct {
	deps ArtefactDependencies
}

// NewArtefactHandler creates a new artefact handler.
func NewArtefactHandler(deps ArtefactDependencies) *ArtefactHandler {
	return &ArtefactHandler{deps: deps}
}

// artefactRequest mirrors the OpenAPI schema for POST /artefacts.
type artefactRequest struct {
	Artefact  string `json:"artefact"`
	Character string `json:"character"`
	Avg       string `json:"avg"`
	Delta     string `json:"delta"`
	Patch     string `json:"patch"`
}

func (a artefactRequest) validate() error {
	switch {
	case strings.TrimSpace(a.Artefact) == "":
		return errors.New("missing artefact")
	case strings.TrimSpace(a.Character) == "":
		return errors.New("missing character")
	case strings.TrimSpace(a.Patch) == "":
		return errors.New("missing patch")
	}
	if _, ok := numeric.ParseDecimal(a.Avg); !ok {
		return errors.New("invalid avg; must be a decimal")
	}
	return nil
}

// HandlePostArtefact handles POST /artefacts requests. A resubmission for
// the same (artefact, character) pair replaces the earlier record.
func (h *ArtefactHandler) HandlePostArtefact(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_artefact"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req artefactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	avg, _ := numeric.ParseDecimal(req.Avg)

	replaced, err := h.deps.SubmitArtefact(r.Context(), model.ArtefactStat{
		Artefact:  req.Artefact,
		Character: req.Character,
		Avg:       avg,
		Delta:     req.Delta,
		Patch:     req.Patch,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	status := "created"
	if replaced {
		status = "replaced"
	}
	writeJSON(w, http.StatusOK, ackResponse{Status: status, Edited: replaced})
}
