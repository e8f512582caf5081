// Package ledger persists reminder events in a JSON file and runs the
// two-phase daily cycle: dispatch today's checklist, then roll unfinished
// events forward. Every mutation is a full-file load-modify-overwrite.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/okian/comptrack/internal/adapters/substrate"
	"github.com/okian/comptrack/internal/domain/codec"
	"github.com/okian/comptrack/internal/domain/model"
	"github.com/okian/comptrack/pkg/logger"
	"github.com/okian/comptrack/pkg/metrics"
)

// DefaultTimezone is the zone reminder dates are interpreted in.
const DefaultTimezone = "Europe/Brussels"

const ledgerFileMode = 0o644

// Option applies a configuration option to the Ledger.
type Option func(*Ledger)

// WithLocation sets the timezone used for "today" comparisons.
func WithLocation(loc *time.Location) Option {
	return func(l *Ledger) {
		if loc != nil {
			l.loc = loc
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		if now != nil {
			l.now = now
		}
	}
}

// WithLogger sets the ledger logger.
func WithLogger(log logger.Logger) Option {
	return func(l *Ledger) {
		if log != nil {
			l.log = log
		}
	}
}

// Update carries the fields of an edit. Zero values keep the old value.
type Update struct {
	Name   string
	Date   time.Time
	Repeat model.RepeatMode
}

// Ledger owns the reminder file. The mutex serializes in-process callers;
// concurrent processes can still lose each other's writes, matching the
// substrate's read-modify-write behavior.
type Ledger struct {
	mu    sync.Mutex
	path  string
	store substrate.Store
	loc   *time.Location
	now   func() time.Time
	log   logger.Logger
}

// New creates a ledger over the given file. The store receives checklist
// envelopes on dispatch.
func New(path string, store substrate.Store, opts ...Option) (*Ledger, error) {
	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}
	l := &Ledger{
		path:  path,
		store: store,
		loc:   loc,
		now:   time.Now,
		log:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// load reads the full event list. A missing file is an empty ledger.
func (l *Ledger) load() ([]model.ReminderEvent, error) {
	raw, err := os.ReadFile(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	var events []model.ReminderEvent
	if err := json.Unmarshal(raw, &events); err != nil {
		return nil, fmt.Errorf("parse ledger: %w", err)
	}
	return events, nil
}

// save overwrites the ledger file with the full event list.
func (l *Ledger) save(events []model.ReminderEvent) error {
	raw, err := json.MarshalIndent(events, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}
	if err := os.WriteFile(l.path, raw, ledgerFileMode); err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	metrics.UpdateLedgerEvents(len(events))
	return nil
}

// Add appends an event to the ledger.
func (l *Ledger) Add(ctx context.Context, event model.ReminderEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	events, err := l.load()
	if err != nil {
		return err
	}
	if event.Repeat == "" {
		event.Repeat = model.RepeatNone
	}
	events = append(events, event)
	if err := l.save(events); err != nil {
		return err
	}
	l.log.Info(ctx, "reminder added",
		logger.String("name", event.Name),
		logger.Time("date", event.Date),
		logger.String("repeat", string(event.Repeat)))
	return nil
}

// List returns the events in stored order.
func (l *Ledger) List(ctx context.Context) ([]model.ReminderEvent, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load()
}

// Delete removes every event with the given name.
func (l *Ledger) Delete(ctx context.Context, name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	events, err := l.load()
	if err != nil {
		return err
	}
	kept := events[:0]
	for _, e := range events {
		if e.Name != name {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(events) {
		return fmt.Errorf("%w: reminder %q", ErrEventNotFound, name)
	}
	if err := l.save(kept); err != nil {
		return err
	}
	l.log.Info(ctx, "reminder deleted", logger.String("name", name))
	return nil
}

// Edit updates the first event with the given name. Zero-valued update
// fields keep the old values.
func (l *Ledger) Edit(ctx context.Context, name string, upd Update) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	events, err := l.load()
	if err != nil {
		return err
	}
	for i := range events {
		if events[i].Name != name {
			continue
		}
		if upd.Name != "" {
			events[i].Name = upd.Name
		}
		if !upd.Date.IsZero() {
			events[i].Date = upd.Date
		}
		if upd.Repeat != "" {
			events[i].Repeat = upd.Repeat
		}
		if err := l.save(events); err != nil {
			return err
		}
		l.log.Info(ctx, "reminder edited", logger.String("name", name))
		return nil
	}
	return fmt.Errorf("%w: reminder %q", ErrEventNotFound, name)
}

// DispatchChecklist surfaces today's events as a checklist envelope,
// removes them from the ledger, and re-schedules weekly ones seven days
// forward preserving time-of-day. Returns the dispatched events.
func (l *Ledger) DispatchChecklist(ctx context.Context) ([]model.ReminderEvent, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	events, err := l.load()
	if err != nil {
		return nil, err
	}
	today := l.today()

	var due, kept, rescheduled []model.ReminderEvent
	for _, e := range events {
		if l.sameDay(e.Date, today) {
			due = append(due, e)
			if e.Repeat == model.RepeatWeekly {
				next := e
				next.Date = e.Date.AddDate(0, 0, 7)
				rescheduled = append(rescheduled, next)
			}
		} else {
			kept = append(kept, e)
		}
	}

	if err := l.writeChecklist(ctx, today, due); err != nil {
		return nil, err
	}
	if err := l.save(append(kept, rescheduled...)); err != nil {
		return nil, err
	}
	metrics.RecordReminderDispatch()
	l.log.Info(ctx, "checklist dispatched",
		logger.Int("due", len(due)),
		logger.Int("rescheduled", len(rescheduled)))
	return due, nil
}

// RolloverUnfinished moves events dated strictly before today to tomorrow
// at their original time-of-day. Runs after dispatch in the daily cycle;
// out-of-order or repeated runs duplicate the reschedule.
func (l *Ledger) RolloverUnfinished(ctx context.Context) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	events, err := l.load()
	if err != nil {
		return 0, err
	}
	today := l.today()
	tomorrow := today.AddDate(0, 0, 1)

	moved := 0
	for i, e := range events {
		d := e.Date.In(l.loc)
		if !l.beforeDay(d, today) {
			continue
		}
		events[i].Date = time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(),
			d.Hour(), d.Minute(), d.Second(), 0, l.loc)
		moved++
	}
	if moved > 0 {
		if err := l.save(events); err != nil {
			return 0, err
		}
		metrics.RecordReminderRollover()
	}
	l.log.Info(ctx, "rollover complete", logger.Int("moved", moved))
	return moved, nil
}

// writeChecklist appends the day's checklist to the discipline channel.
func (l *Ledger) writeChecklist(ctx context.Context, today time.Time, due []model.ReminderEvent) error {
	ref := codec.ChecklistChannel()
	if err := l.store.EnsureChannel(ctx, ref); err != nil {
		return fmt.Errorf("ensure channel %q: %w", ref.Channel, err)
	}

	env := model.Envelope{
		Title:     "Daily Checklist " + today.Format("2006-01-02"),
		CreatedAt: l.now().UTC(),
	}
	for _, e := range due {
		env.Fields = append(env.Fields, model.Field{
			Name:  e.Name,
			Value: e.Date.In(l.loc).Format("15:04"),
		})
	}
	if _, err := l.store.Append(ctx, ref, env); err != nil {
		return fmt.Errorf("append checklist: %w", err)
	}
	return nil
}

func (l *Ledger) today() time.Time {
	now := l.now().In(l.loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, l.loc)
}

func (l *Ledger) sameDay(t, day time.Time) bool {
	t = t.In(l.loc)
	return t.Year() == day.Year() && t.Month() == day.Month() && t.Day() == day.Day()
}

func (l *Ledger) beforeDay(t, day time.Time) bool {
	t = t.In(l.loc)
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, l.loc)
	return start.Before(day)
}
