package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/okian/comptrack/internal/seeder"
)

// Default configuration constants.
const (
	defaultGames      = 200
	defaultWorkers    = 2 // multiplier for runtime.NumCPU()
	defaultTimeout    = 30 * time.Second
	defaultRunTimeout = 5 * time.Minute
	defaultPatch      = "13.1"
)

func main() {
	var (
		baseURL = flag.String("url", "http://localhost:9080", "Base URL of the tracker")
		games   = flag.Int("games", defaultGames, "Number of random games to submit")
		workers = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		patch   = flag.String("patch", defaultPatch, "Patch label stamped on every record")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	config := &seeder.Config{
		BaseURL: *baseURL,
		Games:   *games,
		Workers: *workers,
		Timeout: *timeout,
		Patch:   *patch,
	}

	stats, err := seeder.Run(ctx, config)
	if err != nil {
		os.Stderr.WriteString("seed run failed: " + err.Error() + "\n")
		os.Exit(1)
	}

	fmt.Printf("seeded %d records in %s (%d failed)\n",
		stats.Submitted, stats.Duration.Round(time.Millisecond), stats.Failed)
}
