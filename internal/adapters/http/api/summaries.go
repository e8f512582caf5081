// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/comptrack/internal/domain/aggregate"
	"github.com/okian/comptrack/internal/domain/types"
)

// SummaryDependencies defines the interface for summary rebuilds.
type SummaryDependencies interface {
	CompositionSummary(ctx context.Context, patch string) (types.CompositionReport, error)
	ArtefactSummary(ctx context.Context, patch string) (types.ArtefactReport, error)
	ArtefactByCharacter(ctx context.Context, patch string) (types.ArtefactByCharacterReport, error)
	ConditionSummary(ctx context.Context, compo string) (types.ConditionReport, error)
	AugmentSummary(ctx context.Context, patch string, slot int, compo string) (types.AugmentReport, error)
	GlobalSummary(ctx context.Context) (types.GlobalReport, error)
}

// SummaryHandler handles summary report requests.
type SummaryHandler struct {
	deps SummaryDependencies
}

// NewSummaryHandler creates a new summary handler.
func NewSummaryHandler(deps SummaryDependencies) *SummaryHandler {
	return &SummaryHandler{deps: deps}
}

// patchFilter reads the patch query parameter; absent means no filter.
func patchFilter(r *http.Request) string {
	patch := strings.TrimSpace(r.URL.Query().Get("patch"))
	if patch == "" {
		return aggregate.NoFilter
	}
	return patch
}

// HandleCompositionSummary handles GET /summary/compositions requests.
func (h *SummaryHandler) HandleCompositionSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	report, err := h.deps.CompositionSummary(r.Context(), patchFilter(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// HandleArtefactSummary handles GET /summary/artefacts requests.
func (h *SummaryHandler) HandleArtefactSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	report, err := h.deps.ArtefactSummary(r.Context(), patchFilter(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// HandleArtefactByCharacter handles GET /summary/artefact-characters requests.
func (h *SummaryHandler) HandleArtefactByCharacter(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	report, err := h.deps.ArtefactByCharacter(r.Context(), patchFilter(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// HandleConditionSummary handles GET /summary/conditions/{composition} requests.
func (h *SummaryHandler) HandleConditionSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	// Extract path parameter after /summary/conditions/
	compo := strings.TrimPrefix(r.URL.Path, "/summary/conditions/")
	if compo == "" || strings.Contains(compo, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	report, err := h.deps.ConditionSummary(r.Context(), compo)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// HandleAugmentSummary handles GET /summary/augments requests. The slot
// filter defaults to 0, meaning augments from every slot.
func (h *SummaryHandler) HandleAugmentSummary(w http.ResponseWriter, r *http.Request) {
	const op = "api.augment_summary"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	slot := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("slot")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		slot = n
	}
	compo := strings.TrimSpace(r.URL.Query().Get("compo"))
	if compo == "" {
		compo = aggregate.NoFilter
	}
	report, err := h.deps.AugmentSummary(r.Context(), patchFilter(r), slot, compo)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// HandleGlobalSummary handles GET /summary/global requests.
func (h *SummaryHandler) HandleGlobalSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	report, err := h.deps.GlobalSummary(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
