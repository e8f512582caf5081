package logger

import (
	"context"
	"testing"
)

func TestLoggerInit(t *testing.T) {
	err := Init()
	if err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	logger := Get()
	if logger == nil {
		t.Fatal("logger is nil after initialization")
	}
}

func TestLoggerLevels(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	ctx := context.Background()
	logger := Get()

	// These should not panic.
	logger.Debug(ctx, "debug message", String("key", "value"))
	logger.Info(ctx, "info message", Int("count", 42))
	logger.Warn(ctx, "warn message", Float64("avg", 4.12))
	logger.Error(ctx, "error message", Bool("flag", true))
}

func TestSetLevelString(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	for _, level := range []string{"debug", "info", "warn", "warning", "error", ""} {
		if err := SetLevelString(level); err != nil {
			t.Errorf("unexpected error for level %q: %v", level, err)
		}
	}

	if err := SetLevelString("bogus"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestNamedLogger(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	named := Named("substrate")
	if named == nil {
		t.Fatal("named logger is nil")
	}
	named.Info(context.Background(), "named logger message")
}

func TestNopLogger(t *testing.T) {
	// Nop must be usable before Init; it is the default logger for
	// engines constructed without an explicit one.
	global = nil

	log := Nop()
	ctx := context.Background()
	log.Debug(ctx, "discarded", String("key", "value"))
	log.Info(ctx, "discarded", Int("count", 1))
	log.Warn(ctx, "discarded")
	log.Error(ctx, "discarded", Error(nil))

	named := log.Named("upsert")
	if named == nil {
		t.Fatal("named nop logger is nil")
	}
	named.Info(ctx, "discarded")
}
