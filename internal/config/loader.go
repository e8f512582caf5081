package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if COMPTRACK_CONFIG is set
//  3. env (prefix COMPTRACK_)
func Load() (*Config, error) {
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("COMPTRACK_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: COMPTRACK_ADDR, COMPTRACK_STORE_BACKEND, ...
	// Map env keys like COMPTRACK_STORE_BACKEND -> store_backend (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("COMPTRACK_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "comptrack_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.StoreBackend != BackendMemory && c.StoreBackend != BackendSQLite {
		return fmt.Errorf("%w: unknown store backend %q", ErrInvalidConfig, c.StoreBackend)
	}
	if c.StoreBackend == BackendSQLite && c.StorePath == "" {
		return fmt.Errorf("%w: store_path must not be empty for sqlite", ErrInvalidConfig)
	}
	if c.LedgerPath == "" {
		return fmt.Errorf("%w: ledger_path must not be empty", ErrInvalidConfig)
	}
	if c.ChecklistHour < 0 || c.ChecklistHour > 23 {
		return fmt.Errorf("%w: checklist_hour %d out of range", ErrInvalidConfig, c.ChecklistHour)
	}
	for name, window := range map[string]int{
		"composition_window": c.CompositionWindow,
		"artefact_window":    c.ArtefactWindow,
		"condition_window":   c.ConditionWindow,
		"game_window":        c.GameWindow,
	} {
		if window <= 0 {
			return fmt.Errorf("%w: %s must be positive", ErrInvalidConfig, name)
		}
	}
	return nil
}
