// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strings"

	"github.com/okian/comptrack/internal/adapters/sheet"
)

// SheetDependencies defines the interface for reference sheet lookups.
type SheetDependencies interface {
	SheetCompositions() []string
	SheetInfo(compo string) (sheet.CompoInfo, error)
	SheetBuilds(compo, carry string) ([]sheet.BuildRow, error)
	SheetArtefacts(compo, carry string) ([]sheet.ArtefactRow, error)
	SheetRadiants(compo, carry string) ([]sheet.RadiantRow, error)
	SheetConditions(compo string) ([]sheet.ConditionRow, error)
}

// SheetHandler serves read-only reference data exported from the sheets.
type SheetHandler struct {
	deps SheetDependencies
}

// NewSheetHandler creates a new sheet handler.
func NewSheetHandler(deps SheetDependencies) *SheetHandler {
	return &SheetHandler{deps: deps}
}

// HandleCompositions handles GET /sheet/compositions requests.
func (h *SheetHandler) HandleCompositions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.SheetCompositions())
}

// HandleLookup handles GET /sheet/{composition}/{section} requests, where
// section is one of info, builds, artefacts, radiants or conditions. The
// builds, artefacts and radiants sections accept a carry query filter.
func (h *SheetHandler) HandleLookup(w http.ResponseWriter, r *http.Request) {
	const op = "api.sheet_lookup"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	// Extract path parameters after /sheet/
	path := strings.TrimPrefix(r.URL.Path, "/sheet/")
	parts := strings.Split(path, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	compo, section := parts[0], parts[1]
	carry := strings.TrimSpace(r.URL.Query().Get("carry"))

	var (
		v   any
		err error
	)
	switch section {
	case "info":
		v, err = h.deps.SheetInfo(compo)
	case "builds":
		v, err = h.deps.SheetBuilds(compo, carry)
	case "artefacts":
		v, err = h.deps.SheetArtefacts(compo, carry)
	case "radiants":
		v, err = h.deps.SheetRadiants(compo, carry)
	case "conditions":
		v, err = h.deps.SheetConditions(compo)
	default:
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}
