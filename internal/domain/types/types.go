// Package types contains the report shapes returned by the aggregation
// engine and served over the API.
package types

// CompositionRow is one composition's placement figure in a report.
type CompositionRow struct {
	Name         string  `json:"name"`
	AvgPlacement float64 `json:"avg_placement"`
}

// CompositionTier groups compositions bucketed into one placement tier.
type CompositionTier struct {
	Tier string           `json:"tier"`
	Rows []CompositionRow `json:"rows"`
}

// CompositionReport is the tierized per-patch composition summary.
type CompositionReport struct {
	Patch string            `json:"patch"`
	Tiers []CompositionTier `json:"tiers"`
}

// ArtefactRow is one artefact-on-character record in a report.
type ArtefactRow struct {
	Artefact  string  `json:"artefact"`
	Character string  `json:"character"`
	Avg       float64 `json:"avg"`
	Delta     string  `json:"delta"`
}

// ArtefactReport is the per-patch artefact summary sorted by average.
type ArtefactReport struct {
	Patch string        `json:"patch"`
	Rows  []ArtefactRow `json:"rows"`
}

// CharacterArtefact is one artefact entry inside a character group.
type CharacterArtefact struct {
	Artefact string  `json:"artefact"`
	Avg      float64 `json:"avg"`
}

// CharacterGroup lists one character's artefacts sorted by average.
type CharacterGroup struct {
	Character string              `json:"character"`
	Artefacts []CharacterArtefact `json:"artefacts"`
}

// ArtefactByCharacterReport groups artefact records by character, outer
// order following first appearance in the scan.
type ArtefactByCharacterReport struct {
	Patch  string           `json:"patch"`
	Groups []CharacterGroup `json:"groups"`
}

// ConditionRow is one condition observation with its signed delta.
type ConditionRow struct {
	Name      string  `json:"name"`
	Placement float64 `json:"placement"`
	Delta     float64 `json:"delta"`
}

// ConditionReport lists a composition's conditions against its baseline.
type ConditionReport struct {
	Composition string         `json:"composition"`
	Base        float64        `json:"base"`
	Rows        []ConditionRow `json:"rows"`
}

// AugmentRow is one augment group's mean placement and sample count.
type AugmentRow struct {
	Augment string  `json:"augment"`
	Mean    float64 `json:"mean"`
	Count   int     `json:"count"`
}

// AugmentReport is the filtered augment summary, best mean first.
type AugmentReport struct {
	Patch string       `json:"patch"`
	Slot  int          `json:"slot"`
	Compo string       `json:"compo"`
	Rows  []AugmentRow `json:"rows"`
}

// GlobalReport unions the latest-per-channel records of the three stat
// categories. Rendered carries the fixed-width text tables.
type GlobalReport struct {
	Compositions []CompositionRow `json:"compositions"`
	Artefacts    []ArtefactRow    `json:"artefacts"`
	Conditions   []ConditionRow   `json:"conditions"`
	Rendered     string           `json:"rendered"`
}
