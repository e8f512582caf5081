// Package codec converts domain records to and from the envelope
// representation used for storage. Encoding is deterministic: field order and
// title layout are fixed per record kind. Decoding matches field names
// case-insensitively against the recognized set for the kind, ignores
// unrecognized fields, fills missing optional fields with a placeholder and
// fails only when a required numeric field cannot be parsed.
package codec

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/okian/comptrack/internal/domain/model"
	"github.com/okian/comptrack/internal/domain/numeric"
)

// Title prefixes act as category markers on stored envelopes.
const (
	CompoTitlePrefix    = "Compo "
	ArtefactTitlePrefix = "Artefact "
	BaselineTitlePrefix = "Baseline - "
	GameTitlePrefix     = "Game #"
)

// Recognized field names. Matching on decode is case-insensitive.
const (
	FieldAvgPlacement = "Average Placement"
	FieldWinRate      = "Win Rate"
	FieldTop4Rate     = "Top4 Rate"
	FieldPatch        = "Patch"
	FieldCharacter    = "Character"
	FieldAvg          = "Avg"
	FieldDelta        = "Delta"
	FieldPlacement    = "Placement"
	FieldBase         = "Base"
	FieldTier         = "Tier"
	FieldCompo        = "Compo"
	FieldAugment1     = "Augment 1"
	FieldAugment2     = "Augment 2"
	FieldAugment3     = "Augment 3"
)

// GamePlacementFallback is stored when a game placement does not parse.
const GamePlacementFallback = 9

func formatDecimal(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// EncodeComposition builds the envelope for a composition stat record.
func EncodeComposition(s model.CompositionStat) model.Envelope {
	return model.Envelope{
		Title:     CompoTitlePrefix + strings.ToUpper(s.Name),
		CreatedAt: time.Now().UTC(),
		Fields: []model.Field{
			{Name: FieldAvgPlacement, Value: formatDecimal(s.AvgPlacement)},
			{Name: FieldWinRate, Value: s.WinRate},
			{Name: FieldTop4Rate, Value: s.Top4Rate},
			{Name: FieldPatch, Value: s.Patch},
		},
	}
}

// DecodeComposition is the inverse of EncodeComposition.
func DecodeComposition(env model.Envelope) (model.CompositionStat, error) {
	if !strings.HasPrefix(env.Title, CompoTitlePrefix) {
		return model.CompositionStat{}, fmt.Errorf("%w: title %q", ErrWrongKind, env.Title)
	}

	raw := env.FieldOr(FieldAvgPlacement, "")
	avg, ok := numeric.ParseDecimal(raw)
	if !ok {
		return model.CompositionStat{}, fmt.Errorf("%w: %s %q", ErrBadNumber, FieldAvgPlacement, raw)
	}

	return model.CompositionStat{
		Name:         strings.ToUpper(strings.TrimPrefix(env.Title, CompoTitlePrefix)),
		AvgPlacement: avg,
		WinRate:      env.FieldOr(FieldWinRate, model.Unknown),
		Top4Rate:     env.FieldOr(FieldTop4Rate, model.Unknown),
		Patch:        env.FieldOr(FieldPatch, model.Unknown),
	}, nil
}

// EncodeArtefact builds the envelope for an artefact stat record.
func EncodeArtefact(s model.ArtefactStat) model.Envelope {
	return model.Envelope{
		Title:     ArtefactTitlePrefix + strings.ToUpper(s.Artefact),
		CreatedAt: time.Now().UTC(),
		Fields: []model.Field{
			{Name: FieldCharacter, Value: s.Character},
			{Name: FieldAvg, Value: formatDecimal(s.Avg)},
			{Name: FieldDelta, Value: s.Delta},
			{Name: FieldPatch, Value: s.Patch},
		},
	}
}

// DecodeArtefact is the inverse of EncodeArtefact.
func DecodeArtefact(env model.Envelope) (model.ArtefactStat, error) {
	if !strings.HasPrefix(env.Title, ArtefactTitlePrefix) {
		return model.ArtefactStat{}, fmt.Errorf("%w: title %q", ErrWrongKind, env.Title)
	}

	raw := env.FieldOr(FieldAvg, "")
	avg, ok := numeric.ParseDecimal(raw)
	if !ok {
		return model.ArtefactStat{}, fmt.Errorf("%w: %s %q", ErrBadNumber, FieldAvg, raw)
	}

	return model.ArtefactStat{
		Artefact:  strings.ToUpper(strings.TrimPrefix(env.Title, ArtefactTitlePrefix)),
		Character: env.FieldOr(FieldCharacter, model.Unknown),
		Avg:       avg,
		Delta:     env.FieldOr(FieldDelta, model.Unknown),
		Patch:     env.FieldOr(FieldPatch, model.Unknown),
	}, nil
}

// EncodeBaseline builds the sentinel-titled reference envelope that opens a
// composition's condition channel.
func EncodeBaseline(b model.Baseline) model.Envelope {
	return model.Envelope{
		Title:     BaselineTitlePrefix + strings.ToUpper(b.Composition),
		CreatedAt: time.Now().UTC(),
		Fields: []model.Field{
			{Name: FieldAvgPlacement, Value: formatDecimal(b.AvgPlacement)},
			{Name: FieldWinRate, Value: b.WinRate},
			{Name: FieldTop4Rate, Value: b.Top4Rate},
			{Name: FieldPatch, Value: b.Patch},
		},
	}
}

// IsBaseline reports whether an envelope is a condition-channel baseline.
func IsBaseline(env model.Envelope) bool {
	return strings.HasPrefix(env.Title, BaselineTitlePrefix)
}

// DecodeBaseline is the inverse of EncodeBaseline.
func DecodeBaseline(env model.Envelope) (model.Baseline, error) {
	if !IsBaseline(env) {
		return model.Baseline{}, fmt.Errorf("%w: title %q", ErrWrongKind, env.Title)
	}

	raw := env.FieldOr(FieldAvgPlacement, "")
	avg, ok := numeric.ParseDecimal(raw)
	if !ok {
		return model.Baseline{}, fmt.Errorf("%w: %s %q", ErrBadNumber, FieldAvgPlacement, raw)
	}

	return model.Baseline{
		Composition:  strings.ToUpper(strings.TrimPrefix(env.Title, BaselineTitlePrefix)),
		AvgPlacement: avg,
		WinRate:      env.FieldOr(FieldWinRate, model.Unknown),
		Top4Rate:     env.FieldOr(FieldTop4Rate, model.Unknown),
		Patch:        env.FieldOr(FieldPatch, model.Unknown),
	}, nil
}

// EncodeCondition builds the envelope for a condition record. The title is
// the condition name itself; the baseline sentinel prefix distinguishes the
// two kinds sharing a channel.
func EncodeCondition(c model.ConditionEntry) model.Envelope {
	return model.Envelope{
		Title:     c.Name,
		CreatedAt: time.Now().UTC(),
		Fields: []model.Field{
			{Name: FieldPlacement, Value: formatDecimal(c.Placement)},
			{Name: FieldBase, Value: formatDecimal(c.Base)},
			{Name: FieldDelta, Value: formatDecimal(c.Delta)},
			{Name: FieldTier, Value: c.Tier},
		},
	}
}

// DecodeCondition is the inverse of EncodeCondition. The composition is not
// stored in the envelope (the channel carries it); callers supply it.
func DecodeCondition(composition string, env model.Envelope) (model.ConditionEntry, error) {
	if IsBaseline(env) {
		return model.ConditionEntry{}, fmt.Errorf("%w: baseline envelope", ErrWrongKind)
	}

	raw := env.FieldOr(FieldPlacement, "")
	placement, ok := numeric.ParseDecimal(raw)
	if !ok {
		return model.ConditionEntry{}, fmt.Errorf("%w: %s %q", ErrBadNumber, FieldPlacement, raw)
	}

	base, _ := numeric.ParseDecimal(env.FieldOr(FieldBase, ""))
	delta, _ := numeric.ParseDecimal(env.FieldOr(FieldDelta, ""))

	return model.ConditionEntry{
		Composition: strings.ToUpper(composition),
		Name:        env.Title,
		Placement:   placement,
		Base:        base,
		Delta:       delta,
		Tier:        env.FieldOr(FieldTier, model.Unknown),
	}, nil
}

// EncodeGame builds the envelope for an immutable game entry.
func EncodeGame(g model.GameEntry) model.Envelope {
	return model.Envelope{
		Title:     GameTitlePrefix + strconv.Itoa(g.Seq),
		CreatedAt: time.Now().UTC(),
		Fields: []model.Field{
			{Name: FieldCompo, Value: strings.ToUpper(g.Composition)},
			{Name: FieldPlacement, Value: strconv.Itoa(g.Placement)},
			{Name: FieldPatch, Value: g.Patch},
			{Name: FieldAugment1, Value: g.Augments[0]},
			{Name: FieldAugment2, Value: g.Augments[1]},
			{Name: FieldAugment3, Value: g.Augments[2]},
		},
	}
}

// DecodeGame is the inverse of EncodeGame. An unparseable placement falls
// back to GamePlacementFallback rather than failing: game entries are
// append-only and a malformed one still counts toward the log.
func DecodeGame(env model.Envelope) (model.GameEntry, error) {
	if !strings.HasPrefix(env.Title, GameTitlePrefix) {
		return model.GameEntry{}, fmt.Errorf("%w: title %q", ErrWrongKind, env.Title)
	}

	seq, err := strconv.Atoi(strings.TrimPrefix(env.Title, GameTitlePrefix))
	if err != nil {
		return model.GameEntry{}, fmt.Errorf("%w: sequence %q", ErrBadNumber, env.Title)
	}

	placement, err := strconv.Atoi(strings.TrimSpace(env.FieldOr(FieldPlacement, "")))
	if err != nil {
		placement = GamePlacementFallback
	}

	return model.GameEntry{
		Seq:         seq,
		Composition: strings.ToUpper(env.FieldOr(FieldCompo, model.Unknown)),
		Placement:   placement,
		Patch:       env.FieldOr(FieldPatch, model.Unknown),
		Augments: [3]string{
			env.FieldOr(FieldAugment1, model.Unknown),
			env.FieldOr(FieldAugment2, model.Unknown),
			env.FieldOr(FieldAugment3, model.Unknown),
		},
	}, nil
}
