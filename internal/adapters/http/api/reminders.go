// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/comptrack/internal/adapters/ledger"
	"github.com/okian/comptrack/internal/domain/model"
)

// ReminderDependencies defines the interface for reminder ledger operations.
type ReminderDependencies interface {
	AddReminder(ctx context.Context, event model.ReminderEvent) error
	ListReminders(ctx context.Context) ([]model.ReminderEvent, error)
	EditReminder(ctx context.Context, name string, upd ledger.Update) error
	DeleteReminder(ctx context.Context, name string) error
}

// ReminderHandler handles reminder ledger requests.
type ReminderHandler struct {
	deps ReminderDependencies
}

// NewReminderHandler creates a new reminder handler.
func NewReminderHandler(deps ReminderDependencies) *ReminderHandler {
	return &ReminderHandler{deps: deps}
}

// reminderRequest mirrors the OpenAPI schema for POST and PUT reminders.
// On edits, empty fields keep the stored value.
type reminderRequest struct {
	Name   string `json:"name"`
	Date   string `json:"date"`
	Repeat string `json:"repeat"`
}

// HandleReminders handles GET and POST /reminders requests.
func (h *ReminderHandler) HandleReminders(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleList(w, r)
	case http.MethodPost:
		h.handleAdd(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *ReminderHandler) handleList(w http.ResponseWriter, r *http.Request) {
	events, err := h.deps.ListReminders(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *ReminderHandler) handleAdd(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_reminder"
	var req reminderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("missing name")))
		return
	}
	date, err := parseEventDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	event := model.ReminderEvent{
		Name:   req.Name,
		Date:   date,
		Repeat: model.ParseRepeat(req.Repeat),
	}
	if err := h.deps.AddReminder(r.Context(), event); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// HandleReminderByName handles PUT and DELETE /reminders/{name} requests.
func (h *ReminderHandler) HandleReminderByName(w http.ResponseWriter, r *http.Request) {
	const op = "api.reminder_by_name"
	// Extract path parameter after /reminders/
	name := strings.TrimPrefix(r.URL.Path, "/reminders/")
	if name == "" || strings.Contains(name, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	switch r.Method {
	case http.MethodPut:
		h.handleEdit(w, r, name)
	case http.MethodDelete:
		h.handleDelete(w, r, name)
	default:
		http.NotFound(w, r)
	}
}

func (h *ReminderHandler) handleEdit(w http.ResponseWriter, r *http.Request, name string) {
	const op = "api.put_reminder"
	var req reminderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	var upd ledger.Update
	upd.Name = strings.TrimSpace(req.Name)
	if strings.TrimSpace(req.Date) != "" {
		date, err := parseEventDate(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		upd.Date = date
	}
	if strings.TrimSpace(req.Repeat) != "" {
		upd.Repeat = model.ParseRepeat(req.Repeat)
	}
	if err := h.deps.EditReminder(r.Context(), name, upd); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ackResponse{Status: "edited", Edited: true})
}

func (h *ReminderHandler) handleDelete(w http.ResponseWriter, r *http.Request, name string) {
	if err := h.deps.DeleteReminder(r.Context(), name); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ackResponse{Status: "deleted"})
}
