// Package tier maps numeric performance values onto discrete qualitative
// buckets. Thresholds are fixed policy constants, not derived from the data.
package tier

// Placement tier thresholds. Boundaries are half-open: a value exactly on a
// threshold falls into the next (worse) tier.
const (
	placementTierG = 4.10
	placementTierA = 4.25
	placementTierB = 4.40
	placementTierC = 4.60
)

// Delta tier thresholds for condition performance versus baseline.
const (
	deltaTierS = -0.15
	deltaTierA = 0.0
	deltaTierB = 0.10
)

// PlacementTier buckets an average placement for composition tier lists.
type PlacementTier string

// Placement tiers, best to worst.
const (
	PlacementG PlacementTier = "G"
	PlacementA PlacementTier = "A"
	PlacementB PlacementTier = "B"
	PlacementC PlacementTier = "C"
	PlacementF PlacementTier = "F"
)

// PlacementTiers lists all placement tiers in display order.
func PlacementTiers() []PlacementTier {
	return []PlacementTier{PlacementG, PlacementA, PlacementB, PlacementC, PlacementF}
}

// ForPlacement returns the tier for an average placement. Total over all
// reals: every input maps to exactly one tier.
func ForPlacement(placement float64) PlacementTier {
	switch {
	case placement < placementTierG:
		return PlacementG
	case placement < placementTierA:
		return PlacementA
	case placement < placementTierB:
		return PlacementB
	case placement < placementTierC:
		return PlacementC
	default:
		return PlacementF
	}
}

// DeltaTier buckets a signed placement delta versus baseline.
type DeltaTier string

// Delta tiers, best to worst.
const (
	DeltaS DeltaTier = "S"
	DeltaA DeltaTier = "A"
	DeltaB DeltaTier = "B"
	DeltaC DeltaTier = "C"
)

// ForDelta returns the tier for a signed delta versus baseline. Negative
// deltas are improvements (lower placement is better).
func ForDelta(delta float64) DeltaTier {
	switch {
	case delta < deltaTierS:
		return DeltaS
	case delta < deltaTierA:
		return DeltaA
	case delta < deltaTierB:
		return DeltaB
	default:
		return DeltaC
	}
}

// Label returns the display label for a delta tier, e.g. "S-Tier".
func (t DeltaTier) Label() string {
	return string(t) + "-Tier"
}
