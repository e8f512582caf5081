// Package upsert writes typed records into the envelope store, keeping at
// most one live envelope per compound key within a single-writer scenario.
package upsert

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/comptrack/internal/adapters/substrate"
	"github.com/okian/comptrack/internal/domain/codec"
	"github.com/okian/comptrack/internal/domain/model"
	"github.com/okian/comptrack/internal/domain/tier"
	"github.com/okian/comptrack/pkg/logger"
	"github.com/okian/comptrack/pkg/metrics"
)

// Default scan windows per record kind.
const (
	defaultCompositionWindow = 10
	defaultArtefactWindow    = 50
	defaultConditionWindow   = 100
	defaultGameWindow        = 2000
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithCompositionWindow bounds the composition lookup scan.
func WithCompositionWindow(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.compositionWindow = n
		}
	}
}

// WithArtefactWindow bounds the artefact upsert scan.
func WithArtefactWindow(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.artefactWindow = n
		}
	}
}

// WithConditionWindow bounds the condition channel scan.
func WithConditionWindow(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.conditionWindow = n
		}
	}
}

// WithGameWindow bounds the game log scan.
func WithGameWindow(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.gameWindow = n
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(log logger.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// Engine performs scan-then-write upserts against the store. Writes for the
// same compound key from concurrent callers can still race at the store
// level; callers serialize per process.
type Engine struct {
	store substrate.Store
	log   logger.Logger

	compositionWindow int
	artefactWindow    int
	conditionWindow   int
	gameWindow        int
}

// NewEngine creates an upsert engine over the given store.
func NewEngine(store substrate.Store, opts ...Option) *Engine {
	e := &Engine{
		store:             store,
		log:               logger.Nop(),
		compositionWindow: defaultCompositionWindow,
		artefactWindow:    defaultArtefactWindow,
		conditionWindow:   defaultConditionWindow,
		gameWindow:        defaultGameWindow,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// PutComposition stores a composition stat record. A record for the same
// composition already present in the scan window is edited in place so its
// message identity survives. Returns true when an existing record was edited.
func (e *Engine) PutComposition(ctx context.Context, stat model.CompositionStat) (bool, error) {
	ref := codec.CompositionChannel(stat.Name)
	if err := e.store.EnsureChannel(ctx, ref); err != nil {
		return false, fmt.Errorf("ensure channel %q: %w", ref.Channel, err)
	}

	env := codec.EncodeComposition(stat)
	msgs, err := e.store.Scan(ctx, ref, e.compositionWindow)
	if err != nil {
		return false, fmt.Errorf("scan %q: %w", ref.Channel, err)
	}
	for _, msg := range msgs {
		prev, derr := codec.DecodeComposition(msg.Envelope)
		if derr != nil {
			continue
		}
		if strings.EqualFold(prev.Name, stat.Name) {
			if err := e.store.Edit(ctx, ref, msg.ID, env); err != nil {
				return false, fmt.Errorf("edit %q: %w", msg.ID, err)
			}
			metrics.RecordEdit()
			e.log.Info(ctx, "composition updated",
				logger.String("compo", stat.Name),
				logger.String("patch", stat.Patch))
			return true, nil
		}
	}

	if _, err := e.store.Append(ctx, ref, env); err != nil {
		return false, fmt.Errorf("append: %w", err)
	}
	metrics.RecordUpsert("composition")
	e.log.Info(ctx, "composition recorded",
		logger.String("compo", stat.Name),
		logger.String("patch", stat.Patch))
	return false, nil
}

// PutArtefact stores an artefact stat record. The compound key is artefact
// plus character; a matching record is deleted and re-appended, so message
// identity is not preserved. Returns true when an old record was replaced.
func (e *Engine) PutArtefact(ctx context.Context, stat model.ArtefactStat) (bool, error) {
	ref := codec.ArtefactChannel(stat.Artefact)
	if err := e.store.EnsureChannel(ctx, ref); err != nil {
		return false, fmt.Errorf("ensure channel %q: %w", ref.Channel, err)
	}

	msgs, err := e.store.Scan(ctx, ref, e.artefactWindow)
	if err != nil {
		return false, fmt.Errorf("scan %q: %w", ref.Channel, err)
	}
	replaced := false
	for _, msg := range msgs {
		prev, derr := codec.DecodeArtefact(msg.Envelope)
		if derr != nil {
			continue
		}
		if strings.EqualFold(prev.Character, stat.Character) {
			if err := e.store.Delete(ctx, ref, msg.ID); err != nil {
				return false, fmt.Errorf("delete %q: %w", msg.ID, err)
			}
			replaced = true
			break
		}
	}

	if _, err := e.store.Append(ctx, ref, codec.EncodeArtefact(stat)); err != nil {
		return false, fmt.Errorf("append: %w", err)
	}
	if replaced {
		metrics.RecordReplace()
	} else {
		metrics.RecordUpsert("artefact")
	}
	e.log.Info(ctx, "artefact recorded",
		logger.String("artefact", stat.Artefact),
		logger.String("character", stat.Character),
		logger.Bool("replaced", replaced))
	return replaced, nil
}

// PutCondition appends a condition observation for a composition. The
// composition's base stats are looked up first; the condition channel gets a
// baseline sentinel envelope on first use. Delta and tier are computed at
// creation time and stored with the record.
func (e *Engine) PutCondition(ctx context.Context, compo, name string, placement float64) (model.ConditionEntry, error) {
	base, err := e.compositionBase(ctx, compo)
	if err != nil {
		return model.ConditionEntry{}, err
	}

	ref := codec.ConditionChannel(compo)
	if err := e.store.EnsureChannel(ctx, ref); err != nil {
		return model.ConditionEntry{}, fmt.Errorf("ensure channel %q: %w", ref.Channel, err)
	}
	if err := e.ensureBaseline(ctx, ref, base); err != nil {
		return model.ConditionEntry{}, err
	}

	entry := model.ConditionEntry{
		Composition: compo,
		Name:        name,
		Placement:   placement,
		Base:        base.AvgPlacement,
		Delta:       placement - base.AvgPlacement,
	}
	entry.Tier = tier.ForDelta(entry.Delta).Label()

	if _, err := e.store.Append(ctx, ref, codec.EncodeCondition(entry)); err != nil {
		return model.ConditionEntry{}, fmt.Errorf("append: %w", err)
	}
	metrics.RecordUpsert("condition")
	e.log.Info(ctx, "condition recorded",
		logger.String("compo", compo),
		logger.String("condition", name),
		logger.Float64("delta", entry.Delta),
		logger.String("tier", entry.Tier))
	return entry, nil
}

// compositionBase resolves a composition's current stat record, deriving the
// baseline conditions are measured against.
func (e *Engine) compositionBase(ctx context.Context, compo string) (model.Baseline, error) {
	ref := codec.CompositionChannel(compo)
	msgs, err := e.store.Scan(ctx, ref, e.compositionWindow)
	if err != nil {
		return model.Baseline{}, fmt.Errorf("%w: composition %q", ErrCompositionUnknown, compo)
	}
	for _, msg := range msgs {
		stat, derr := codec.DecodeComposition(msg.Envelope)
		if derr != nil {
			continue
		}
		return model.Baseline{
			Composition:  stat.Name,
			AvgPlacement: stat.AvgPlacement,
			WinRate:      stat.WinRate,
			Top4Rate:     stat.Top4Rate,
			Patch:        stat.Patch,
		}, nil
	}
	return model.Baseline{}, fmt.Errorf("%w: composition %q", ErrCompositionUnknown, compo)
}

// ensureBaseline writes the baseline sentinel envelope unless the channel
// already carries one.
func (e *Engine) ensureBaseline(ctx context.Context, ref substrate.ChannelRef, base model.Baseline) error {
	msgs, err := e.store.Scan(ctx, ref, e.conditionWindow)
	if err != nil {
		return fmt.Errorf("scan %q: %w", ref.Channel, err)
	}
	for _, msg := range msgs {
		if codec.IsBaseline(msg.Envelope) {
			return nil
		}
	}
	if _, err := e.store.Append(ctx, ref, codec.EncodeBaseline(base)); err != nil {
		return fmt.Errorf("append baseline: %w", err)
	}
	return nil
}

// PutGame appends a game entry to the shared log, and to the personal log
// when mine is set. The sequence number is derived from the shared log size.
// Returns the assigned sequence number.
func (e *Engine) PutGame(ctx context.Context, entry model.GameEntry, mine bool) (int, error) {
	allRef := codec.GameChannel(codec.ChannelAllGames)
	if err := e.store.EnsureChannel(ctx, allRef); err != nil {
		return 0, fmt.Errorf("ensure channel %q: %w", allRef.Channel, err)
	}

	count, err := e.store.Count(ctx, allRef, e.gameWindow)
	if err != nil {
		return 0, fmt.Errorf("count %q: %w", allRef.Channel, err)
	}
	entry.Seq = count + 1

	env := codec.EncodeGame(entry)
	if _, err := e.store.Append(ctx, allRef, env); err != nil {
		return 0, fmt.Errorf("append: %w", err)
	}
	if mine {
		myRef := codec.GameChannel(codec.ChannelMyGames)
		if err := e.store.EnsureChannel(ctx, myRef); err != nil {
			return 0, fmt.Errorf("ensure channel %q: %w", myRef.Channel, err)
		}
		if _, err := e.store.Append(ctx, myRef, env); err != nil {
			return 0, fmt.Errorf("append: %w", err)
		}
	}
	metrics.RecordGame()
	e.log.Info(ctx, "game recorded",
		logger.Int("seq", entry.Seq),
		logger.String("compo", entry.Composition),
		logger.Int("placement", entry.Placement),
		logger.Bool("mine", mine))
	return entry.Seq, nil
}
