// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/okian/comptrack/internal/domain/model"
)

// ChecklistDependencies defines the interface for manual checklist runs.
type ChecklistDependencies interface {
	DispatchChecklist(ctx context.Context) ([]model.ReminderEvent, error)
	RolloverUnfinished(ctx context.Context) (int, error)
}

// ChecklistHandler triggers checklist dispatch and rollover on demand.
// The scheduler runs the same operations once a day.
type ChecklistHandler struct {
	deps ChecklistDependencies
}

// NewChecklistHandler creates a new checklist handler.
func NewChecklistHandler(deps ChecklistDependencies) *ChecklistHandler {
	return &ChecklistHandler{deps: deps}
}

type dispatchResponse struct {
	Dispatched []model.ReminderEvent `json:"dispatched"`
}

type rolloverResponse struct {
	Moved int `json:"moved"`
}

// HandleDispatch handles POST /checklist/dispatch requests.
func (h *ChecklistHandler) HandleDispatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	due, err := h.deps.DispatchChecklist(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dispatchResponse{Dispatched: due})
}

// HandleRollover handles POST /checklist/rollover requests.
func (h *ChecklistHandler) HandleRollover(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	moved, err := h.deps.RolloverUnfinished(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rolloverResponse{Moved: moved})
}
