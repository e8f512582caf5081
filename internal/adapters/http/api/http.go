// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/okian/comptrack/internal/adapters/ledger"
	"github.com/okian/comptrack/internal/adapters/sheet"
	"github.com/okian/comptrack/internal/adapters/substrate"
	"github.com/okian/comptrack/internal/domain/aggregate"
	"github.com/okian/comptrack/internal/domain/model"
	"github.com/okian/comptrack/internal/domain/types"
	"github.com/okian/comptrack/internal/domain/upsert"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Write operations record stats into the store.
	SubmitComposition(ctx context.Context, stat model.CompositionStat) (bool, error)
	SubmitArtefact(ctx context.Context, stat model.ArtefactStat) (bool, error)
	SubmitCondition(ctx context.Context, compo, name string, placement float64) (model.ConditionEntry, error)
	SubmitGame(ctx context.Context, entry model.GameEntry, mine bool) (int, error)

	// Read operations rebuild and persist summary reports.
	CompositionSummary(ctx context.Context, patch string) (types.CompositionReport, error)
	ArtefactSummary(ctx context.Context, patch string) (types.ArtefactReport, error)
	ArtefactByCharacter(ctx context.Context, patch string) (types.ArtefactByCharacterReport, error)
	ConditionSummary(ctx context.Context, compo string) (types.ConditionReport, error)
	AugmentSummary(ctx context.Context, patch string, slot int, compo string) (types.AugmentReport, error)
	GlobalSummary(ctx context.Context) (types.GlobalReport, error)

	// Reminder ledger operations.
	AddReminder(ctx context.Context, event model.ReminderEvent) error
	ListReminders(ctx context.Context) ([]model.ReminderEvent, error)
	EditReminder(ctx context.Context, name string, upd ledger.Update) error
	DeleteReminder(ctx context.Context, name string) error
	DispatchChecklist(ctx context.Context) ([]model.ReminderEvent, error)
	RolloverUnfinished(ctx context.Context) (int, error)

	// Sheet lookups serve the reference build data.
	SheetCompositions() []string
	SheetInfo(compo string) (sheet.CompoInfo, error)
	SheetBuilds(compo, carry string) ([]sheet.BuildRow, error)
	SheetArtefacts(compo, carry string) ([]sheet.ArtefactRow, error)
	SheetRadiants(compo, carry string) ([]sheet.RadiantRow, error)
	SheetConditions(compo string) ([]sheet.ConditionRow, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	compositionHandler *CompositionHandler
	artefactHandler    *ArtefactHandler
	conditionHandler   *ConditionHandler
	gameHandler        *GameHandler
	summaryHandler     *SummaryHandler
	reminderHandler    *ReminderHandler
	checklistHandler   *ChecklistHandler
	sheetHandler       *SheetHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		compositionHandler: NewCompositionHandler(deps),
		artefactHandler:    NewArtefactHandler(deps),
		conditionHandler:   NewConditionHandler(deps),
		gameHandler:        NewGameHandler(deps),
		summaryHandler:     NewSummaryHandler(deps),
		reminderHandler:    NewReminderHandler(deps),
		checklistHandler:   NewChecklistHandler(deps),
		sheetHandler:       NewSheetHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/compositions", MetricsMiddleware(s.compositionHandler.HandlePostComposition, "compositions"))
	mux.HandleFunc("/artefacts", MetricsMiddleware(s.artefactHandler.HandlePostArtefact, "artefacts"))
	mux.HandleFunc("/conditions", MetricsMiddleware(s.conditionHandler.HandlePostCondition, "conditions"))
	mux.HandleFunc("/games", MetricsMiddleware(s.gameHandler.HandlePostGame, "games"))
	mux.HandleFunc("/summary/compositions", MetricsMiddleware(s.summaryHandler.HandleCompositionSummary, "summary_compositions"))
	mux.HandleFunc("/summary/artefacts", MetricsMiddleware(s.summaryHandler.HandleArtefactSummary, "summary_artefacts"))
	mux.HandleFunc("/summary/artefact-characters", MetricsMiddleware(s.summaryHandler.HandleArtefactByCharacter, "summary_artefact_characters"))
	mux.HandleFunc("/summary/conditions/", MetricsMiddleware(s.summaryHandler.HandleConditionSummary, "summary_conditions"))
	mux.HandleFunc("/summary/augments", MetricsMiddleware(s.summaryHandler.HandleAugmentSummary, "summary_augments"))
	mux.HandleFunc("/summary/global", MetricsMiddleware(s.summaryHandler.HandleGlobalSummary, "summary_global"))
	mux.HandleFunc("/reminders", MetricsMiddleware(s.reminderHandler.HandleReminders, "reminders"))
	mux.HandleFunc("/reminders/", MetricsMiddleware(s.reminderHandler.HandleReminderByName, "reminders"))
	mux.HandleFunc("/checklist/dispatch", MetricsMiddleware(s.checklistHandler.HandleDispatch, "checklist_dispatch"))
	mux.HandleFunc("/checklist/rollover", MetricsMiddleware(s.checklistHandler.HandleRollover, "checklist_rollover"))
	mux.HandleFunc("/sheet/compositions", MetricsMiddleware(s.sheetHandler.HandleCompositions, "sheet_compositions"))
	mux.HandleFunc("/sheet/", MetricsMiddleware(s.sheetHandler.HandleLookup, "sheet"))
}

type ackResponse struct {
	Status string `json:"status"`
	Edited bool   `json:"edited"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	if rec, ok := w.(*statusRecorder); ok {
		rec.cause = err
	}
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// notFoundKinds lists the upstream sentinels that translate to 404.
var notFoundKinds = []error{
	substrate.ErrNotFound,
	upsert.ErrCompositionUnknown,
	aggregate.ErrNoData,
	ledger.ErrEventNotFound,
	sheet.ErrUnknownComposition,
	sheet.ErrNoRows,
}

// isNotFound allows the API to translate upstream not-found errors to 404.
func isNotFound(err error) bool {
	for _, kind := range notFoundKinds {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

// writeDomainError maps an upstream failure to the right status code.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case isNotFound(err):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, aggregate.ErrBadFilter):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

// parseEventDate accepts RFC3339 or a naive local timestamp.
func parseEventDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02T15:04:05", s)
	if err != nil {
		return time.Time{}, errors.New("invalid date; must be RFC3339 or 2006-01-02T15:04:05")
	}
	return t, nil
}
