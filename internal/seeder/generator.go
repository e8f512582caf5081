package seeder

import (
	"crypto/rand"
	"math/big"
	"strconv"
)

// Placement generation bounds.
const (
	placementMin   = 1
	placementRange = 8
	mineDivisor    = 3
)

// sampleCompositions are the compositions all generated records draw from.
var sampleCompositions = []string{
	"Star Guardian", "Akali Sins", "Frost Vanguard", "Nashor Radiant",
}

// sampleAugments are the augment names games are rolled from.
var sampleAugments = []string{
	"Cybernetic Uplink", "Built Different", "Second Wind",
	"Thrill of the Hunt", "Jeweled Lotus", "Preparation",
}

type compositionRecord struct {
	Name  string `json:"name"`
	Avg   string `json:"avg_placement"`
	Win   string `json:"win_rate"`
	Top4  string `json:"top4_rate"`
	Patch string `json:"patch"`
}

type artefactRecord struct {
	Artefact  string `json:"artefact"`
	Character string `json:"character"`
	Avg       string `json:"avg"`
	Delta     string `json:"delta"`
	Patch     string `json:"patch"`
}

type conditionRecord struct {
	Composition string `json:"composition"`
	Name        string `json:"name"`
	Placement   string `json:"placement"`
}

type gameRecord struct {
	Composition string   `json:"composition"`
	Placement   string   `json:"placement"`
	Augments    []string `json:"augments"`
	Patch       string   `json:"patch"`
	Mine        bool     `json:"mine"`
}

// randomInt returns a random int in [0, n) using crypto/rand.
func randomInt(n int) int {
	v, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(v.Int64())
}

// fixedRecords returns the deterministic seed records for one endpoint.
func fixedRecords(path, patch string) []any {
	switch path {
	case "/compositions":
		return []any{
			compositionRecord{Name: "Star Guardian", Avg: "4.05", Win: "18%", Top4: "61%", Patch: patch},
			compositionRecord{Name: "Akali Sins", Avg: "4.30", Win: "12%", Top4: "55%", Patch: patch},
			compositionRecord{Name: "Frost Vanguard", Avg: "4.55", Win: "9%", Top4: "48%", Patch: patch},
			compositionRecord{Name: "Nashor Radiant", Avg: "4.70", Win: "7%", Top4: "44%", Patch: patch},
		}
	case "/artefacts":
		return []any{
			artefactRecord{Artefact: "Deathblade", Character: "Akali", Avg: "3.90", Delta: "-0.25", Patch: patch},
			artefactRecord{Artefact: "Deathblade", Character: "Yone", Avg: "4.15", Delta: "-0.10", Patch: patch},
			artefactRecord{Artefact: "Spear of Shojin", Character: "Ahri", Avg: "4.02", Delta: "-0.18", Patch: patch},
		}
	case "/conditions":
		return []any{
			conditionRecord{Composition: "Akali Sins", Name: "No augment synergy", Placement: "4.52"},
			conditionRecord{Composition: "Akali Sins", Name: "Contested lobby", Placement: "4.11"},
			conditionRecord{Composition: "Star Guardian", Name: "Early pivot", Placement: "3.95"},
		}
	default:
		return nil
	}
}

// generateGames rolls n random game records over the sample data.
func generateGames(n int, patch string) []gameRecord {
	games := make([]gameRecord, n)
	for i := range games {
		augments := make([]string, 0, 3)
		for len(augments) < 3 {
			augments = append(augments, sampleAugments[randomInt(len(sampleAugments))])
		}
		games[i] = gameRecord{
			Composition: sampleCompositions[randomInt(len(sampleCompositions))],
			Placement:   strconv.Itoa(placementMin + randomInt(placementRange)),
			Augments:    augments,
			Patch:       patch,
			Mine:        randomInt(mineDivisor) == 0,
		}
	}
	return games
}
