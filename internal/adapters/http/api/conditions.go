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

// ConditionDependencies defines the interface for condition submissions.
type ConditionDependencies interface {
	SubmitCondition(ctx context.Context, compo, name string, placement float64) (model.ConditionEntry, error)
}

// ConditionHandler handles condition observations.
type ConditionHandler struct {
	deps ConditionDependencies
}

// NewConditionHandler creates a new condition handler.
func NewConditionHandler(deps ConditionDependencies) *ConditionHandler {
	return &ConditionHandler{deps: deps}
}

// conditionRequest mirrors the OpenAPI schema for POST /conditions.
type conditionRequest struct {
	Composition string `json:"composition"`
	Name        string `json:"name"`
	Placement   string `json:"placement"`
}

func (c conditionRequest) validate() error {
	switch {
	case strings.TrimSpace(c.Composition) == "":
		return errors.New("missing composition")
	case strings.TrimSpace(c.Name) == "":
		return errors.New("missing name")
	}
	if _, ok := numeric.ParseDecimal(c.Placement); !ok {
		return errors.New("invalid placement; must be a decimal")
	}
	return nil
}

// HandlePostCondition handles POST /conditions requests. The response
// carries the delta and tier computed against the composition's baseline.
func (h *ConditionHandler) HandlePostCondition(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_condition"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req conditionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	placement, _ := numeric.ParseDecimal(req.Placement)

	entry, err := h.deps.SubmitCondition(r.Context(), req.Composition, req.Name, placement)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
