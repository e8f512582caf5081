// Package aggregate builds sorted reports over the envelope store and
// persists them into the summary channels.
package aggregate

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/okian/comptrack/internal/adapters/substrate"
	"github.com/okian/comptrack/internal/domain/codec"
	"github.com/okian/comptrack/internal/domain/model"
	"github.com/okian/comptrack/internal/domain/tier"
	"github.com/okian/comptrack/internal/domain/types"
	"github.com/okian/comptrack/pkg/logger"
	"github.com/okian/comptrack/pkg/metrics"
)

// NoFilter is the sentinel filter value meaning "match everything".
const NoFilter = "0"

// Default scan windows per category.
const (
	defaultCompositionWindow = 10
	defaultArtefactWindow    = 50
	defaultConditionWindow   = 100
	defaultGameWindow        = 2000

	// Augment reports keep only the best groups.
	augmentReportLimit = 25
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithCompositionWindow bounds the per-channel composition scan.
func WithCompositionWindow(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.compositionWindow = n
		}
	}
}

// WithArtefactWindow bounds the per-channel artefact scan.
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

// Engine derives reports from bounded channel scans. Rows that fail to
// decode are skipped, degrading the report instead of failing it.
type Engine struct {
	store substrate.Store
	log   logger.Logger

	compositionWindow int
	artefactWindow    int
	conditionWindow   int
	gameWindow        int
}

// NewEngine creates an aggregation engine over the given store.
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

// CompositionSummary reports every composition's latest matching-patch
// record, sorted ascending by placement and bucketed into the five
// placement tiers. The report is persisted to the summary category.
func (e *Engine) CompositionSummary(ctx context.Context, patch string) (types.CompositionReport, error) {
	report := types.CompositionReport{Patch: patch}

	rows, err := e.latestCompositions(ctx, patch)
	if err != nil {
		return report, err
	}
	if len(rows) == 0 {
		return report, fmt.Errorf("%w: no composition stats for patch %q", ErrNoData, patch)
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].AvgPlacement < rows[j].AvgPlacement })

	for _, t := range tier.PlacementTiers() {
		group := types.CompositionTier{Tier: string(t)}
		for _, row := range rows {
			if tier.ForPlacement(row.AvgPlacement) == t {
				group.Rows = append(group.Rows, row)
			}
		}
		if len(group.Rows) > 0 {
			report.Tiers = append(report.Tiers, group)
		}
	}

	if err := e.persistReport(ctx, codec.ChannelCompositionSummary,
		fmt.Sprintf("Composition Summary (Patch %s)", patch), renderCompositionReport(report)); err != nil {
		return report, err
	}
	metrics.RecordSummary("composition")
	e.log.Info(ctx, "composition summary built",
		logger.String("patch", patch),
		logger.Int("rows", len(rows)))
	return report, nil
}

// latestCompositions takes the single most recent record per composition
// channel whose patch matches, skipping channels with no match or an
// unparseable placement.
func (e *Engine) latestCompositions(ctx context.Context, patch string) ([]types.CompositionRow, error) {
	channels, err := e.store.Channels(ctx, codec.CategoryCompositions)
	if err != nil {
		return nil, fmt.Errorf("list composition channels: %w", err)
	}

	var rows []types.CompositionRow
	for _, channel := range channels {
		ref := substrate.ChannelRef{Category: codec.CategoryCompositions, Channel: channel}
		msgs, err := e.store.Scan(ctx, ref, e.compositionWindow)
		if err != nil {
			return nil, fmt.Errorf("scan %q: %w", channel, err)
		}
		for _, msg := range msgs {
			stat, derr := codec.DecodeComposition(msg.Envelope)
			if derr != nil {
				metrics.RecordParseSkip()
				continue
			}
			if patch != NoFilter && !strings.EqualFold(stat.Patch, patch) {
				continue
			}
			rows = append(rows, types.CompositionRow{Name: stat.Name, AvgPlacement: stat.AvgPlacement})
			break
		}
	}
	return rows, nil
}

// ArtefactSummary reports every artefact record matching the patch across
// all artefact channels, sorted ascending by average placement.
func (e *Engine) ArtefactSummary(ctx context.Context, patch string) (types.ArtefactReport, error) {
	report := types.ArtefactReport{Patch: patch}

	rows, err := e.artefactRows(ctx, patch)
	if err != nil {
		return report, err
	}
	if len(rows) == 0 {
		return report, fmt.Errorf("%w: no artefact stats for patch %q", ErrNoData, patch)
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Avg < rows[j].Avg })
	report.Rows = rows

	if err := e.persistReport(ctx, codec.ChannelArtefactSummary,
		fmt.Sprintf("Artefact Summary (Patch %s)", patch), renderArtefactReport(report)); err != nil {
		return report, err
	}
	metrics.RecordSummary("artefact")
	e.log.Info(ctx, "artefact summary built",
		logger.String("patch", patch),
		logger.Int("rows", len(rows)))
	return report, nil
}

// ArtefactByCharacter reports the same artefact records grouped by
// character. Group order follows first appearance in the scan; each
// group's artefacts are sorted ascending by average.
func (e *Engine) ArtefactByCharacter(ctx context.Context, patch string) (types.ArtefactByCharacterReport, error) {
	report := types.ArtefactByCharacterReport{Patch: patch}

	rows, err := e.artefactRows(ctx, patch)
	if err != nil {
		return report, err
	}
	if len(rows) == 0 {
		return report, fmt.Errorf("%w: no artefact stats for patch %q", ErrNoData, patch)
	}

	index := make(map[string]int)
	for _, row := range rows {
		i, ok := index[row.Character]
		if !ok {
			i = len(report.Groups)
			index[row.Character] = i
			report.Groups = append(report.Groups, types.CharacterGroup{Character: row.Character})
		}
		report.Groups[i].Artefacts = append(report.Groups[i].Artefacts,
			types.CharacterArtefact{Artefact: row.Artefact, Avg: row.Avg})
	}
	for i := range report.Groups {
		group := report.Groups[i].Artefacts
		sort.SliceStable(group, func(a, b int) bool { return group[a].Avg < group[b].Avg })
	}

	if err := e.persistReport(ctx, codec.ChannelArtefactByCharacter,
		fmt.Sprintf("Artefacts by Character (Patch %s)", patch), renderCharacterReport(report)); err != nil {
		return report, err
	}
	metrics.RecordSummary("artefact_by_character")
	e.log.Info(ctx, "artefact-by-character summary built",
		logger.String("patch", patch),
		logger.Int("groups", len(report.Groups)))
	return report, nil
}

// artefactRows collects every decodable artefact record in the scan window
// of every artefact channel, filtered by patch.
func (e *Engine) artefactRows(ctx context.Context, patch string) ([]types.ArtefactRow, error) {
	channels, err := e.store.Channels(ctx, codec.CategoryArtefacts)
	if err != nil {
		return nil, fmt.Errorf("list artefact channels: %w", err)
	}

	var rows []types.ArtefactRow
	for _, channel := range channels {
		ref := substrate.ChannelRef{Category: codec.CategoryArtefacts, Channel: channel}
		msgs, err := e.store.Scan(ctx, ref, e.artefactWindow)
		if err != nil {
			return nil, fmt.Errorf("scan %q: %w", channel, err)
		}
		for _, msg := range msgs {
			stat, derr := codec.DecodeArtefact(msg.Envelope)
			if derr != nil {
				metrics.RecordParseSkip()
				continue
			}
			if patch != NoFilter && !strings.EqualFold(stat.Patch, patch) {
				continue
			}
			// A row is only reportable when avg, delta and character
			// were all present; the decoder fills absent fields with
			// the unknown sentinel.
			if stat.Character == model.Unknown || stat.Delta == model.Unknown {
				continue
			}
			rows = append(rows, types.ArtefactRow{
				Artefact:  stat.Artefact,
				Character: stat.Character,
				Avg:       stat.Avg,
				Delta:     stat.Delta,
			})
		}
	}
	return rows, nil
}

// ConditionSummary reports one composition's conditions against its
// baseline, sorted ascending by placement.
func (e *Engine) ConditionSummary(ctx context.Context, compo string) (types.ConditionReport, error) {
	report := types.ConditionReport{Composition: compo}

	ref := codec.ConditionChannel(compo)
	msgs, err := e.store.Scan(ctx, ref, e.conditionWindow)
	if err != nil {
		return report, fmt.Errorf("scan %q: %w", ref.Channel, err)
	}

	haveBase := false
	for _, msg := range msgs {
		if codec.IsBaseline(msg.Envelope) {
			base, derr := codec.DecodeBaseline(msg.Envelope)
			if derr != nil {
				metrics.RecordParseSkip()
				continue
			}
			report.Base = base.AvgPlacement
			haveBase = true
			continue
		}
		entry, derr := codec.DecodeCondition(compo, msg.Envelope)
		if derr != nil {
			metrics.RecordParseSkip()
			continue
		}
		report.Rows = append(report.Rows, types.ConditionRow{Name: entry.Name, Placement: entry.Placement})
	}
	if !haveBase || len(report.Rows) == 0 {
		return types.ConditionReport{Composition: compo},
			fmt.Errorf("%w: conditions for composition %q", ErrNoData, compo)
	}

	sort.SliceStable(report.Rows, func(i, j int) bool { return report.Rows[i].Placement < report.Rows[j].Placement })
	for i := range report.Rows {
		report.Rows[i].Delta = report.Rows[i].Placement - report.Base
	}

	// The condition channel doubles as the summary destination, keeping
	// the report next to the records it covers.
	if err := e.persistReportTo(ctx, ref,
		fmt.Sprintf("Condition Summary - %s", strings.ToUpper(compo)), renderConditionReport(report)); err != nil {
		return report, err
	}
	metrics.RecordSummary("condition")
	e.log.Info(ctx, "condition summary built",
		logger.String("compo", compo),
		logger.Int("rows", len(report.Rows)))
	return report, nil
}

// AugmentSummary groups game-log augment observations and reports the
// mean placement per augment, best first, capped at 25 groups. Patch and
// compo filters accept the "0" sentinel for "no filter"; slot 0 expands
// each game into all three augments, 1..3 selects a single slot.
func (e *Engine) AugmentSummary(ctx context.Context, patch string, slot int, compo string) (types.AugmentReport, error) {
	report := types.AugmentReport{Patch: patch, Slot: slot, Compo: compo}
	if slot < 0 || slot > 3 {
		return report, fmt.Errorf("%w: slot %d", ErrBadFilter, slot)
	}

	ref := codec.GameChannel(codec.ChannelAllGames)
	msgs, err := e.store.Scan(ctx, ref, e.gameWindow)
	if err != nil {
		return report, fmt.Errorf("scan %q: %w", ref.Channel, err)
	}

	type bucket struct {
		total float64
		count int
	}
	sums := make(map[string]*bucket)
	var order []string

	for _, msg := range msgs {
		game, derr := codec.DecodeGame(msg.Envelope)
		if derr != nil {
			metrics.RecordParseSkip()
			continue
		}
		if patch != NoFilter && !strings.EqualFold(game.Patch, patch) {
			continue
		}
		if compo != NoFilter && !strings.EqualFold(game.Composition, compo) {
			continue
		}
		slots := []int{0, 1, 2}
		if slot > 0 {
			slots = []int{slot - 1}
		}
		for _, i := range slots {
			aug := game.Augments[i]
			// Games logged with fewer than three augments leave the
			// trailing slots blank; a blank name is not a group.
			if aug == "" {
				continue
			}
			b, ok := sums[aug]
			if !ok {
				b = &bucket{}
				sums[aug] = b
				order = append(order, aug)
			}
			b.total += float64(game.Placement)
			b.count++
		}
	}
	if len(sums) == 0 {
		return report, fmt.Errorf("%w: no games match patch %q compo %q", ErrNoData, patch, compo)
	}

	for _, aug := range order {
		b := sums[aug]
		report.Rows = append(report.Rows, types.AugmentRow{
			Augment: aug,
			Mean:    b.total / float64(b.count),
			Count:   b.count,
		})
	}
	sort.SliceStable(report.Rows, func(i, j int) bool { return report.Rows[i].Mean < report.Rows[j].Mean })
	if len(report.Rows) > augmentReportLimit {
		report.Rows = report.Rows[:augmentReportLimit]
	}

	if err := e.persistReport(ctx, codec.ChannelAugmentStats,
		fmt.Sprintf("Augment Stats (Patch %s, Slot %d, Compo %s)", patch, slot, compo),
		renderAugmentReport(report)); err != nil {
		return report, err
	}
	metrics.RecordSummary("augment")
	e.log.Info(ctx, "augment summary built",
		logger.String("patch", patch),
		logger.Int("slot", slot),
		logger.String("compo", compo),
		logger.Int("rows", len(report.Rows)))
	return report, nil
}

// GlobalSummary unions the latest-per-channel records of the composition,
// artefact and condition categories into three independently sorted
// tables, rendered fixed-width.
func (e *Engine) GlobalSummary(ctx context.Context) (types.GlobalReport, error) {
	var report types.GlobalReport

	compos, err := e.latestCompositions(ctx, NoFilter)
	if err != nil && !isNotFound(err) {
		return report, err
	}
	sort.SliceStable(compos, func(i, j int) bool { return compos[i].AvgPlacement < compos[j].AvgPlacement })
	report.Compositions = compos

	artefacts, err := e.latestArtefacts(ctx)
	if err != nil && !isNotFound(err) {
		return report, err
	}
	sort.SliceStable(artefacts, func(i, j int) bool { return artefacts[i].Avg < artefacts[j].Avg })
	report.Artefacts = artefacts

	conditions, err := e.latestConditions(ctx)
	if err != nil && !isNotFound(err) {
		return report, err
	}
	sort.SliceStable(conditions, func(i, j int) bool { return conditions[i].Placement < conditions[j].Placement })
	report.Conditions = conditions

	if len(report.Compositions) == 0 && len(report.Artefacts) == 0 && len(report.Conditions) == 0 {
		return report, fmt.Errorf("%w: store holds no stat records", ErrNoData)
	}
	report.Rendered = renderGlobalReport(report)

	if err := e.persistReport(ctx, codec.ChannelGlobalSummary, "Global Summary", report.Rendered); err != nil {
		return report, err
	}
	metrics.RecordSummary("global")
	e.log.Info(ctx, "global summary built",
		logger.Int("compositions", len(report.Compositions)),
		logger.Int("artefacts", len(report.Artefacts)),
		logger.Int("conditions", len(report.Conditions)))
	return report, nil
}

// latestArtefacts takes the most recent decodable record per artefact
// channel, regardless of patch.
func (e *Engine) latestArtefacts(ctx context.Context) ([]types.ArtefactRow, error) {
	channels, err := e.store.Channels(ctx, codec.CategoryArtefacts)
	if err != nil {
		return nil, fmt.Errorf("list artefact channels: %w", err)
	}

	var rows []types.ArtefactRow
	for _, channel := range channels {
		ref := substrate.ChannelRef{Category: codec.CategoryArtefacts, Channel: channel}
		msgs, err := e.store.Scan(ctx, ref, e.artefactWindow)
		if err != nil {
			return nil, fmt.Errorf("scan %q: %w", channel, err)
		}
		for _, msg := range msgs {
			stat, derr := codec.DecodeArtefact(msg.Envelope)
			if derr != nil {
				metrics.RecordParseSkip()
				continue
			}
			rows = append(rows, types.ArtefactRow{
				Artefact:  stat.Artefact,
				Character: stat.Character,
				Avg:       stat.Avg,
				Delta:     stat.Delta,
			})
			break
		}
	}
	return rows, nil
}

// latestConditions takes the most recent non-baseline record per condition
// channel.
func (e *Engine) latestConditions(ctx context.Context) ([]types.ConditionRow, error) {
	channels, err := e.store.Channels(ctx, codec.CategoryConditions)
	if err != nil {
		return nil, fmt.Errorf("list condition channels: %w", err)
	}

	var rows []types.ConditionRow
	for _, channel := range channels {
		ref := substrate.ChannelRef{Category: codec.CategoryConditions, Channel: channel}
		msgs, err := e.store.Scan(ctx, ref, e.conditionWindow)
		if err != nil {
			return nil, fmt.Errorf("scan %q: %w", channel, err)
		}

		var base float64
		haveBase := false
		for _, msg := range msgs {
			if codec.IsBaseline(msg.Envelope) {
				if b, derr := codec.DecodeBaseline(msg.Envelope); derr == nil {
					base = b.AvgPlacement
					haveBase = true
				}
			}
		}
		for _, msg := range msgs {
			if codec.IsBaseline(msg.Envelope) {
				continue
			}
			entry, derr := codec.DecodeCondition(channel, msg.Envelope)
			if derr != nil {
				metrics.RecordParseSkip()
				continue
			}
			row := types.ConditionRow{Name: entry.Name, Placement: entry.Placement}
			if haveBase {
				row.Delta = entry.Placement - base
			}
			rows = append(rows, row)
			break
		}
	}
	return rows, nil
}

// persistReport writes a rendered report into a summary channel.
func (e *Engine) persistReport(ctx context.Context, channel, title, body string) error {
	return e.persistReportTo(ctx, codec.SummaryChannel(channel), title, body)
}

func (e *Engine) persistReportTo(ctx context.Context, ref substrate.ChannelRef, title, body string) error {
	if err := e.store.EnsureChannel(ctx, ref); err != nil {
		return fmt.Errorf("ensure channel %q: %w", ref.Channel, err)
	}
	if _, err := e.store.Append(ctx, ref, codec.EncodeReport(title, body)); err != nil {
		return fmt.Errorf("append report: %w", err)
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, substrate.ErrNotFound)
}
