package codec

import "github.com/okian/comptrack/internal/adapters/substrate"

// Category names of the store layout.
const (
	CategoryCompositions = "compositions"
	CategoryArtefacts    = "artefacts"
	CategoryConditions   = "conditions"
	CategoryGames        = "games"
	CategorySummary      = "summary"
	CategoryInformation  = "information"
)

// Well-known channel names.
const (
	ChannelMyGames    = "my-games"
	ChannelAllGames   = "all-games"
	ChannelDiscipline = "discipline"

	ChannelCompositionSummary  = "composition-summary"
	ChannelArtefactSummary     = "artefact-summary"
	ChannelArtefactByCharacter = "artefact-by-character"
	ChannelAugmentStats        = "augment-stats"
	ChannelGlobalSummary       = "global-summary"
)

// CompositionChannel returns the channel holding a composition's stat record.
func CompositionChannel(name string) substrate.ChannelRef {
	return substrate.ChannelRef{Category: CategoryCompositions, Channel: substrate.ChannelName(name)}
}

// ArtefactChannel returns the channel holding an artefact's per-character records.
func ArtefactChannel(artefact string) substrate.ChannelRef {
	return substrate.ChannelRef{Category: CategoryArtefacts, Channel: substrate.ChannelName(artefact)}
}

// ConditionChannel returns the channel holding a composition's condition records.
func ConditionChannel(compo string) substrate.ChannelRef {
	return substrate.ChannelRef{Category: CategoryConditions, Channel: "conditions-" + substrate.ChannelName(compo)}
}

// GameChannel returns one of the two game logs.
func GameChannel(name string) substrate.ChannelRef {
	return substrate.ChannelRef{Category: CategoryGames, Channel: name}
}

// SummaryChannel returns the channel a report kind is persisted to.
func SummaryChannel(name string) substrate.ChannelRef {
	return substrate.ChannelRef{Category: CategorySummary, Channel: name}
}

// ChecklistChannel returns the channel daily reminder checklists are written to.
func ChecklistChannel() substrate.ChannelRef {
	return substrate.ChannelRef{Category: CategoryInformation, Channel: ChannelDiscipline}
}
