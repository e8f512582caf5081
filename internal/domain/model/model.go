// Package model contains domain models passed between layers.
package model

import (
	"strings"
	"time"
)

// Unknown is the placeholder for optional fields that were absent or
// unreadable when a stored record was decoded.
const Unknown = "unknown"

// Field is a single labeled value inside an envelope. Order matters:
// envelopes preserve the field order chosen by the codec.
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Envelope is the unit of storage: one stored message wrapping a title,
// a creation timestamp and an ordered labeled field-set.
type Envelope struct {
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	Fields    []Field   `json:"fields"`
}

// Field returns the value for a field name, matched case-insensitively.
func (e Envelope) Field(name string) (string, bool) {
	for _, f := range e.Fields {
		if strings.EqualFold(f.Name, name) {
			return f.Value, true
		}
	}
	return "", false
}

// FieldOr returns the value for a field name or a fallback when absent.
func (e Envelope) FieldOr(name, fallback string) string {
	if v, ok := e.Field(name); ok {
		return v
	}
	return fallback
}

// CompositionStat holds the submitted performance figures for one team
// composition. Key: composition name, case-insensitive.
type CompositionStat struct {
	Name         string  `json:"name"`
	AvgPlacement float64 `json:"avg_placement"`
	WinRate      string  `json:"win_rate"`  // stored verbatim, never parsed
	Top4Rate     string  `json:"top4_rate"` // stored verbatim, never parsed
	Patch        string  `json:"patch"`
}

// ArtefactStat holds one artefact's performance on one character.
// Compound key: (artefact, character), scoped to the artefact's channel.
type ArtefactStat struct {
	Artefact  string  `json:"artefact"`
	Character string  `json:"character"`
	Avg       float64 `json:"avg"`
	Delta     string  `json:"delta"` // displayed verbatim
	Patch     string  `json:"patch"`
}

// Baseline is the distinguished first record of a composition's condition
// channel: the reference figures all condition deltas are computed against.
type Baseline struct {
	Composition  string  `json:"composition"`
	AvgPlacement float64 `json:"avg_placement"`
	WinRate      string  `json:"win_rate"`
	Top4Rate     string  `json:"top4_rate"`
	Patch        string  `json:"patch"`
}

// ConditionEntry records a composition's placement under a named condition,
// with the signed delta versus the baseline captured at creation time.
type ConditionEntry struct {
	Composition string  `json:"composition"`
	Name        string  `json:"name"`
	Placement   float64 `json:"placement"`
	Base        float64 `json:"base"`
	Delta       float64 `json:"delta"`
	Tier        string  `json:"tier"`
}

// GameEntry is an immutable append-only game record.
type GameEntry struct {
	Seq         int       `json:"seq"` // count of prior entries in the shared log + 1
	Composition string    `json:"composition"`
	Placement   int       `json:"placement"` // 1-8, 9 when the submission was unparseable
	Augments    [3]string `json:"augments"`
	Patch       string    `json:"patch"`
}

// Win reports whether the game was a first place.
func (g GameEntry) Win() bool { return g.Placement == 1 }

// Top4 reports whether the game placed in the top half.
func (g GameEntry) Top4() bool { return g.Placement <= 4 }

// RepeatMode controls how a reminder event reschedules itself.
type RepeatMode string

// Supported repeat modes.
const (
	RepeatNone   RepeatMode = "none"
	RepeatWeekly RepeatMode = "weekly"
)

// ParseRepeat normalizes a repeat mode string. Unknown values map to none.
func ParseRepeat(s string) RepeatMode {
	if strings.EqualFold(strings.TrimSpace(s), string(RepeatWeekly)) {
		return RepeatWeekly
	}
	return RepeatNone
}

// ReminderEvent is one named, dated, optionally repeating ledger entry.
type ReminderEvent struct {
	Name   string     `json:"name"`
	Date   time.Time  `json:"date"`
	Repeat RepeatMode `json:"repeat"`
}
