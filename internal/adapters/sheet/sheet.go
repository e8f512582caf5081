// Package sheet reads reference tables for compositions from CSV exports.
// Cell positions are a fixed schema contract with the sheet producer; the
// adapter reads them as offsets, never by inferring structure.
package sheet

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/okian/comptrack/pkg/logger"
)

// Schema holds the cell offsets of one sheet layout. All positions are
// zero-based row/column indexes into the raw CSV grid.
type Schema struct {
	InfoRow      int // row carrying the compo's headline stats
	InfoAvgCol   int
	InfoWinCol   int
	InfoTop4Col  int
	BuildFirst   int // first build row
	BuildRows    int // number of build rows scanned
	BuildCarry   int
	BuildItem1   int
	BuildAvgCol  int
	GearFirst    int // first artefact/radiant row
	GearRows     int
	ArtCarryCol  int
	ArtNameCol   int
	ArtAvgCol    int
	RadCarryCol  int
	RadNameCol   int
	RadAvgCol    int
	CondFirst    int // first condition row
	CondRows     int
	CondNameCol  int
	CondAvgCol   int
	CondWinCol   int
	CondTop4Col  int
	CondNotesCol int
}

// DefaultSchema matches the sheet layout the tracker is fed with.
func DefaultSchema() Schema {
	return Schema{
		InfoRow:     2,
		InfoAvgCol:  12,
		InfoWinCol:  13,
		InfoTop4Col: 14,

		BuildFirst:  22,
		BuildRows:   12,
		BuildCarry:  1,
		BuildItem1:  2,
		BuildAvgCol: 5,

		GearFirst:   51,
		GearRows:    12,
		ArtCarryCol: 5,
		ArtNameCol:  6,
		ArtAvgCol:   7,
		RadCarryCol: 9,
		RadNameCol:  10,
		RadAvgCol:   11,

		CondFirst:    3,
		CondRows:     17,
		CondNameCol:  11,
		CondAvgCol:   12,
		CondWinCol:   13,
		CondTop4Col:  14,
		CondNotesCol: 15,
	}
}

// CompoInfo carries a composition's headline stats. Rate fields stay
// verbatim strings.
type CompoInfo struct {
	Name     string `json:"name"`
	Avg      string `json:"avg"`
	WinRate  string `json:"win_rate"`
	Top4Rate string `json:"top4_rate"`
}

// BuildRow is one item build for a carry.
type BuildRow struct {
	Items [3]string `json:"items"`
	Avg   string    `json:"avg"`
}

// ArtefactRow is one artefact option for a carry.
type ArtefactRow struct {
	Artefact string `json:"artefact"`
	Avg      string `json:"avg"`
}

// RadiantRow is one radiant item option for a carry.
type RadiantRow struct {
	Radiant string `json:"radiant"`
	Avg     string `json:"avg"`
}

// ConditionRow is one condition line of the composition's condition table.
type ConditionRow struct {
	Condition string `json:"condition"`
	Avg       string `json:"avg"`
	WinRate   string `json:"win_rate"`
	Top4Rate  string `json:"top4_rate"`
	Remarks   string `json:"remarks"`
}

// Option applies a configuration option to the Lookup.
type Option func(*Lookup)

// WithSchema overrides the cell offsets.
func WithSchema(s Schema) Option {
	return func(l *Lookup) { l.schema = s }
}

// WithLogger sets the adapter logger.
func WithLogger(log logger.Logger) Option {
	return func(l *Lookup) {
		if log != nil {
			l.log = log
		}
	}
}

// Lookup resolves composition names to CSV files via a manifest and reads
// fixed-offset cells out of them. Files are re-read on every call; the
// sheet producer may replace them at any time.
type Lookup struct {
	schema Schema
	log    logger.Logger
	paths  map[string]string // lowercased compo name -> csv path
	names  []string          // original manifest names, sorted
}

// manifest mirrors the JSON manifest file layout.
type manifest struct {
	Compos map[string]string `json:"compos"`
}

// NewLookup loads the manifest mapping composition names to CSV paths.
func NewLookup(manifestPath string, opts ...Option) (*Lookup, error) {
	raw, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	l := &Lookup{
		schema: DefaultSchema(),
		log:    logger.Nop(),
		paths:  make(map[string]string, len(m.Compos)),
	}
	for name, path := range m.Compos {
		l.paths[strings.ToLower(name)] = path
		l.names = append(l.names, name)
	}
	sort.Strings(l.names)
	for _, opt := range opts {
		opt(l)
	}
	l.log.Info(context.Background(), "sheet manifest loaded", logger.Int("compos", len(l.names)))
	return l, nil
}

// Compositions lists the composition names known to the manifest.
func (l *Lookup) Compositions() []string {
	out := make([]string, len(l.names))
	copy(out, l.names)
	return out
}

// Info reads the composition's headline stats.
func (l *Lookup) Info(compo string) (CompoInfo, error) {
	grid, err := l.load(compo)
	if err != nil {
		return CompoInfo{}, err
	}
	s := l.schema
	return CompoInfo{
		Name:     compo,
		Avg:      cell(grid, s.InfoRow, s.InfoAvgCol),
		WinRate:  cell(grid, s.InfoRow, s.InfoWinCol),
		Top4Rate: cell(grid, s.InfoRow, s.InfoTop4Col),
	}, nil
}

// Builds reads the item builds listed for a carry.
func (l *Lookup) Builds(compo, carry string) ([]BuildRow, error) {
	grid, err := l.load(compo)
	if err != nil {
		return nil, err
	}
	s := l.schema
	var rows []BuildRow
	for i := 0; i < s.BuildRows; i++ {
		row := s.BuildFirst + i
		if !strings.EqualFold(cell(grid, row, s.BuildCarry), carry) {
			continue
		}
		rows = append(rows, BuildRow{
			Items: [3]string{
				cell(grid, row, s.BuildItem1),
				cell(grid, row, s.BuildItem1+1),
				cell(grid, row, s.BuildItem1+2),
			},
			Avg: cell(grid, row, s.BuildAvgCol),
		})
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: builds for carry %q in %q", ErrNoRows, carry, compo)
	}
	return rows, nil
}

// Artefacts reads the artefact options listed for a carry.
func (l *Lookup) Artefacts(compo, carry string) ([]ArtefactRow, error) {
	grid, err := l.load(compo)
	if err != nil {
		return nil, err
	}
	s := l.schema
	var rows []ArtefactRow
	for i := 0; i < s.GearRows; i++ {
		row := s.GearFirst + i
		if !strings.EqualFold(cell(grid, row, s.ArtCarryCol), carry) {
			continue
		}
		rows = append(rows, ArtefactRow{
			Artefact: cell(grid, row, s.ArtNameCol),
			Avg:      cell(grid, row, s.ArtAvgCol),
		})
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: artefacts for carry %q in %q", ErrNoRows, carry, compo)
	}
	return rows, nil
}

// Radiants reads the radiant item options listed for a carry.
func (l *Lookup) Radiants(compo, carry string) ([]RadiantRow, error) {
	grid, err := l.load(compo)
	if err != nil {
		return nil, err
	}
	s := l.schema
	var rows []RadiantRow
	for i := 0; i < s.GearRows; i++ {
		row := s.GearFirst + i
		if !strings.EqualFold(cell(grid, row, s.RadCarryCol), carry) {
			continue
		}
		rows = append(rows, RadiantRow{
			Radiant: cell(grid, row, s.RadNameCol),
			Avg:     cell(grid, row, s.RadAvgCol),
		})
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: radiants for carry %q in %q", ErrNoRows, carry, compo)
	}
	return rows, nil
}

// Conditions reads the composition's condition table. Rows with an empty
// condition cell are skipped.
func (l *Lookup) Conditions(compo string) ([]ConditionRow, error) {
	grid, err := l.load(compo)
	if err != nil {
		return nil, err
	}
	s := l.schema
	var rows []ConditionRow
	for i := 0; i < s.CondRows; i++ {
		row := s.CondFirst + i
		name := cell(grid, row, s.CondNameCol)
		if name == "" {
			continue
		}
		rows = append(rows, ConditionRow{
			Condition: name,
			Avg:       cell(grid, row, s.CondAvgCol),
			WinRate:   cell(grid, row, s.CondWinCol),
			Top4Rate:  cell(grid, row, s.CondTop4Col),
			Remarks:   cell(grid, row, s.CondNotesCol),
		})
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: conditions in %q", ErrNoRows, compo)
	}
	return rows, nil
}

// load opens and parses a composition's CSV file.
func (l *Lookup) load(compo string) ([][]string, error) {
	path, ok := l.paths[strings.ToLower(compo)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownComposition, compo)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sheet %q: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	grid, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse sheet %q: %w", path, err)
	}
	return grid, nil
}

// cell returns the trimmed value at a grid position, empty when the grid
// is smaller than the schema expects.
func cell(grid [][]string, row, col int) string {
	if row >= len(grid) || col >= len(grid[row]) {
		return ""
	}
	return strings.TrimSpace(grid[row][col])
}
