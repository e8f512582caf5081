package aggregate

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/okian/comptrack/internal/domain/types"
)

// renderCompositionReport lays the tier buckets out as text, one line per
// composition.
func renderCompositionReport(r types.CompositionReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Composition Summary (Patch %s)\n\n", r.Patch)
	for _, t := range r.Tiers {
		fmt.Fprintf(&b, "Tier %s\n", t.Tier)
		for _, row := range t.Rows {
			fmt.Fprintf(&b, "  %s  avg %.2f\n", row.Name, row.AvgPlacement)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderArtefactReport(r types.ArtefactReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Artefact Summary (Patch %s)\n\n", r.Patch)
	for _, row := range r.Rows {
		fmt.Fprintf(&b, "%s  %s  avg %.2f  delta %s\n", row.Artefact, row.Character, row.Avg, row.Delta)
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderCharacterReport(r types.ArtefactByCharacterReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Artefacts by Character (Patch %s)\n\n", r.Patch)
	for _, group := range r.Groups {
		fmt.Fprintf(&b, "%s\n", group.Character)
		for _, a := range group.Artefacts {
			fmt.Fprintf(&b, "  %s  avg %.2f\n", a.Artefact, a.Avg)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderConditionReport(r types.ConditionReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Condition Summary - %s\n\nBase: %.2f\n\n", strings.ToUpper(r.Composition), r.Base)
	for _, row := range r.Rows {
		fmt.Fprintf(&b, "%s  %.2f (%+.2f)\n", row.Name, row.Placement, row.Delta)
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderAugmentReport(r types.AugmentReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Augment Stats\nPatch %s | Slot %d | Compo %s\n\n", r.Patch, r.Slot, r.Compo)
	for _, row := range r.Rows {
		fmt.Fprintf(&b, "%s  mean %.2f (%d games)\n", row.Augment, row.Mean, row.Count)
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderGlobalReport lines the three tables up with fixed-width columns.
func renderGlobalReport(r types.GlobalReport) string {
	var b strings.Builder

	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "COMPOSITIONS")
	fmt.Fprintln(w, "NAME\tAVG")
	for _, row := range r.Compositions {
		fmt.Fprintf(w, "%s\t%.2f\n", row.Name, row.AvgPlacement)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "ARTEFACTS")
	fmt.Fprintln(w, "ARTEFACT\tCHARACTER\tAVG\tDELTA")
	for _, row := range r.Artefacts {
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%s\n", row.Artefact, row.Character, row.Avg, row.Delta)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "CONDITIONS")
	fmt.Fprintln(w, "CONDITION\tPLACEMENT\tDELTA")
	for _, row := range r.Conditions {
		fmt.Fprintf(w, "%s\t%.2f\t%+.2f\n", row.Name, row.Placement, row.Delta)
	}
	_ = w.Flush()

	return strings.TrimRight(b.String(), "\n")
}
