// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

// Store backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// StoreBackend selects the envelope store: memory or sqlite.
	StoreBackend string `koanf:"store_backend"`

	// StorePath locates the sqlite database file.
	StorePath string `koanf:"store_path"`

	// LedgerPath locates the reminder ledger JSON file.
	LedgerPath string `koanf:"ledger_path"`

	// SheetManifest locates the composition sheet manifest. Empty
	// disables the sheet endpoints.
	SheetManifest string `koanf:"sheet_manifest"`

	// Timezone names the zone reminder dates are interpreted in.
	Timezone string `koanf:"timezone"`

	// ChecklistHour is the local hour the daily reminder cycle runs at.
	ChecklistHour int `koanf:"checklist_hour"`

	// Scan windows bound channel history reads per record kind.
	CompositionWindow int `koanf:"composition_window"`
	ArtefactWindow    int `koanf:"artefact_window"`
	ConditionWindow   int `koanf:"condition_window"`
	GameWindow        int `koanf:"game_window"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		Addr:              ":9080",
		StoreBackend:      BackendMemory,
		StorePath:         "comptrack.db",
		LedgerPath:        "events.json",
		SheetManifest:     "",
		Timezone:          "Europe/Brussels",
		ChecklistHour:     8,
		CompositionWindow: 10,
		ArtefactWindow:    50,
		ConditionWindow:   100,
		GameWindow:        2000,
	}
}
