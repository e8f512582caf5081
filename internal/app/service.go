// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okian/comptrack/internal/adapters/ledger"
	"github.com/okian/comptrack/internal/adapters/sheet"
	"github.com/okian/comptrack/internal/adapters/substrate"
	"github.com/okian/comptrack/internal/config"
	"github.com/okian/comptrack/internal/domain/aggregate"
	"github.com/okian/comptrack/internal/domain/model"
	"github.com/okian/comptrack/internal/domain/types"
	"github.com/okian/comptrack/internal/domain/upsert"
	"github.com/okian/comptrack/pkg/logger"
	"github.com/okian/comptrack/pkg/metrics"
)

// Error constants.
var (
	ErrSheetDisabled = errors.New("sheet lookup not configured")
	ErrOpenStore     = errors.New("store open failed")
)

// Service implements the API dependencies for the stats tracker.
type Service struct {
	mu sync.RWMutex

	// Core components
	store      substrate.Store
	upserter   *upsert.Engine
	aggregator *aggregate.Engine
	ledger     *ledger.Ledger
	scheduler  *ledger.Scheduler
	lookup     *sheet.Lookup

	// Configuration
	backend       string
	storePath     string
	ledgerPath    string
	sheetManifest string
	timezone      string
	checklistHour int
	windows       [4]int // composition, artefact, condition, game

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStoreBackend selects the channel store backend, memory or sqlite.
func WithStoreBackend(backend string) Option {
	return func(s *Service) {
		if backend != "" {
			s.backend = backend
		}
	}
}

// WithStorePath sets the sqlite database path.
func WithStorePath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.storePath = path
		}
	}
}

// WithLedgerPath sets the reminder ledger file path.
func WithLedgerPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.ledgerPath = path
		}
	}
}

// WithSheetManifest sets the sheet manifest path. Empty disables the
// sheet lookup endpoints.
func WithSheetManifest(path string) Option {
	return func(s *Service) {
		s.sheetManifest = path
	}
}

// WithTimezone sets the IANA timezone the daily cycle runs in.
func WithTimezone(tz string) Option {
	return func(s *Service) {
		if tz != "" {
			s.timezone = tz
		}
	}
}

// WithChecklistHour sets the local hour of the daily checklist.
func WithChecklistHour(hour int) Option {
	return func(s *Service) {
		if hour >= 0 && hour < 24 {
			s.checklistHour = hour
		}
	}
}

// WithWindows sets the per-category scan windows.
func WithWindows(composition, artefact, condition, game int) Option {
	return func(s *Service) {
		if composition > 0 {
			s.windows[0] = composition
		}
		if artefact > 0 {
			s.windows[1] = artefact
		}
		if condition > 0 {
			s.windows[2] = condition
		}
		if game > 0 {
			s.windows[3] = game
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		backend:       config.BackendMemory,
		storePath:     "comptrack.db",
		ledgerPath:    "events.json",
		timezone:      ledger.DefaultTimezone,
		checklistHour: ledger.DefaultChecklistHour,
		windows:       [4]int{10, 50, 100, 2000},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Nop()
	}

	s.logger.Info(ctx, "starting stats tracker service...")

	var err error
	switch s.backend {
	case config.BackendSQLite:
		s.store, err = substrate.NewSQLiteStore(ctx, s.storePath)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrOpenStore, err)
		}
		s.logger.Info(ctx, "using sqlite store", logger.String("path", s.storePath))
	default:
		s.store = substrate.NewMemoryStore()
		s.logger.Info(ctx, "using memory store")
	}

	s.upserter = upsert.NewEngine(s.store,
		upsert.WithCompositionWindow(s.windows[0]),
		upsert.WithArtefactWindow(s.windows[1]),
		upsert.WithConditionWindow(s.windows[2]),
		upsert.WithGameWindow(s.windows[3]),
		upsert.WithLogger(s.logger.Named("upsert")),
	)
	s.aggregator = aggregate.NewEngine(s.store,
		aggregate.WithCompositionWindow(s.windows[0]),
		aggregate.WithArtefactWindow(s.windows[1]),
		aggregate.WithConditionWindow(s.windows[2]),
		aggregate.WithGameWindow(s.windows[3]),
		aggregate.WithLogger(s.logger.Named("aggregate")),
	)

	loc, err := time.LoadLocation(s.timezone)
	if err != nil {
		s.closeStore()
		return fmt.Errorf("load timezone %q: %w", s.timezone, err)
	}
	s.ledger, err = ledger.New(s.ledgerPath, s.store,
		ledger.WithLocation(loc),
		ledger.WithLogger(s.logger.Named("ledger")),
	)
	if err != nil {
		s.closeStore()
		return fmt.Errorf("open ledger: %w", err)
	}
	s.scheduler = ledger.NewScheduler(s.ledger,
		ledger.WithChecklistHour(s.checklistHour),
		ledger.WithSchedulerLogger(s.logger.Named("scheduler")),
	)
	s.scheduler.Start(ctx)

	if s.sheetManifest != "" {
		s.lookup, err = sheet.NewLookup(s.sheetManifest, sheet.WithLogger(s.logger.Named("sheet")))
		if err != nil {
			s.scheduler.Stop()
			s.closeStore()
			return fmt.Errorf("open sheet manifest: %w", err)
		}
	}

	s.started = true
	s.logger.Info(ctx, "stats tracker service started",
		logger.String("backend", s.backend),
		logger.String("timezone", s.timezone),
		logger.Int("checklistHour", s.checklistHour),
		logger.Bool("sheetEnabled", s.lookup != nil),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping stats tracker service...")

	if s.scheduler != nil {
		s.scheduler.Stop()
	}
	s.closeStore()

	s.started = false
	s.logger.Info(context.Background(), "stats tracker service stopped")
}

func (s *Service) closeStore() {
	if s.store != nil {
		_ = s.store.Close()
	}
}

// SubmitComposition records composition stats, editing the earlier record
// in place on a name match. Returns true when an edit happened.
func (s *Service) SubmitComposition(ctx context.Context, stat model.CompositionStat) (bool, error) {
	return s.upserter.PutComposition(ctx, stat)
}

// SubmitArtefact records artefact stats, replacing the earlier record for
// the same (artefact, character) pair. Returns true on a replacement.
func (s *Service) SubmitArtefact(ctx context.Context, stat model.ArtefactStat) (bool, error) {
	return s.upserter.PutArtefact(ctx, stat)
}

// SubmitCondition appends a condition observation with its baseline delta.
func (s *Service) SubmitCondition(ctx context.Context, compo, name string, placement float64) (model.ConditionEntry, error) {
	return s.upserter.PutCondition(ctx, compo, name, placement)
}

// SubmitGame appends a game record and returns its sequence number.
func (s *Service) SubmitGame(ctx context.Context, entry model.GameEntry, mine bool) (int, error) {
	return s.upserter.PutGame(ctx, entry, mine)
}

// CompositionSummary rebuilds and persists the tierized composition report.
func (s *Service) CompositionSummary(ctx context.Context, patch string) (types.CompositionReport, error) {
	return s.aggregator.CompositionSummary(ctx, patch)
}

// ArtefactSummary rebuilds and persists the artefact report.
func (s *Service) ArtefactSummary(ctx context.Context, patch string) (types.ArtefactReport, error) {
	return s.aggregator.ArtefactSummary(ctx, patch)
}

// ArtefactByCharacter rebuilds and persists the per-character report.
func (s *Service) ArtefactByCharacter(ctx context.Context, patch string) (types.ArtefactByCharacterReport, error) {
	return s.aggregator.ArtefactByCharacter(ctx, patch)
}

// ConditionSummary rebuilds a composition's condition report.
func (s *Service) ConditionSummary(ctx context.Context, compo string) (types.ConditionReport, error) {
	return s.aggregator.ConditionSummary(ctx, compo)
}

// AugmentSummary rebuilds and persists the filtered augment report.
func (s *Service) AugmentSummary(ctx context.Context, patch string, slot int, compo string) (types.AugmentReport, error) {
	return s.aggregator.AugmentSummary(ctx, patch, slot, compo)
}

// GlobalSummary rebuilds and persists the cross-category report.
func (s *Service) GlobalSummary(ctx context.Context) (types.GlobalReport, error) {
	return s.aggregator.GlobalSummary(ctx)
}

// AddReminder stores a new ledger event.
func (s *Service) AddReminder(ctx context.Context, event model.ReminderEvent) error {
	return s.ledger.Add(ctx, event)
}

// ListReminders returns the ledger events in stored order.
func (s *Service) ListReminders(ctx context.Context) ([]model.ReminderEvent, error) {
	return s.ledger.List(ctx)
}

// EditReminder updates the first event matching name.
func (s *Service) EditReminder(ctx context.Context, name string, upd ledger.Update) error {
	return s.ledger.Edit(ctx, name, upd)
}

// DeleteReminder removes every event matching name.
func (s *Service) DeleteReminder(ctx context.Context, name string) error {
	return s.ledger.Delete(ctx, name)
}

// DispatchChecklist posts today's checklist and reschedules weekly events.
func (s *Service) DispatchChecklist(ctx context.Context) ([]model.ReminderEvent, error) {
	return s.ledger.DispatchChecklist(ctx)
}

// RolloverUnfinished moves past events to tomorrow, keeping their time.
func (s *Service) RolloverUnfinished(ctx context.Context) (int, error) {
	return s.ledger.RolloverUnfinished(ctx)
}

// SheetCompositions lists the compositions known to the reference sheets.
func (s *Service) SheetCompositions() []string {
	if s.lookup == nil {
		return nil
	}
	return s.lookup.Compositions()
}

// SheetInfo returns a composition's headline stats.
func (s *Service) SheetInfo(compo string) (sheet.CompoInfo, error) {
	if s.lookup == nil {
		return sheet.CompoInfo{}, ErrSheetDisabled
	}
	return s.lookup.Info(compo)
}

// SheetBuilds returns a carry's item builds.
func (s *Service) SheetBuilds(compo, carry string) ([]sheet.BuildRow, error) {
	if s.lookup == nil {
		return nil, ErrSheetDisabled
	}
	return s.lookup.Builds(compo, carry)
}

// SheetArtefacts returns a carry's artefact options.
func (s *Service) SheetArtefacts(compo, carry string) ([]sheet.ArtefactRow, error) {
	if s.lookup == nil {
		return nil, ErrSheetDisabled
	}
	return s.lookup.Artefacts(compo, carry)
}

// SheetRadiants returns a carry's radiant item options.
func (s *Service) SheetRadiants(compo, carry string) ([]sheet.RadiantRow, error) {
	if s.lookup == nil {
		return nil, ErrSheetDisabled
	}
	return s.lookup.Radiants(compo, carry)
}

// SheetConditions returns a composition's condition table.
func (s *Service) SheetConditions(compo string) ([]sheet.ConditionRow, error) {
	if s.lookup == nil {
		return nil, ErrSheetDisabled
	}
	return s.lookup.Conditions(compo)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started": s.started,
		"backend": s.backend,
	}

	if s.started {
		if channels, envelopes, err := s.store.Sizes(ctx); err == nil {
			stats["channels"] = channels
			stats["envelopes"] = envelopes

			metrics.UpdateChannelCount(channels)
			metrics.UpdateEnvelopeCount(envelopes)
		}
		if events, err := s.ledger.List(ctx); err == nil {
			stats["reminders"] = len(events)
		}
		stats["sheetEnabled"] = s.lookup != nil
	}

	return stats
}
