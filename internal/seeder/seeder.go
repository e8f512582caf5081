// Package seeder generates sample stat records and submits them to a
// running tracker instance, then pulls the summaries back to confirm the
// round trip.
package seeder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Config holds the seeder run parameters.
type Config struct {
	BaseURL string
	Games   int
	Workers int
	Timeout time.Duration
	Patch   string
}

// Stats accumulates run counters.
type Stats struct {
	Submitted int64
	Failed    int64
	Duration  time.Duration
}

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client *http.Client
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Get performs a GET request
func (c *HTTPClient) Get(url string) (*http.Response, error) {
	return c.client.Get(url)
}

// Post performs a POST request with JSON body
func (c *HTTPClient) Post(url string, body interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// readResponseBody reads and closes the response body
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// Run submits the fixed stat records and the requested number of random
// games, then fetches every summary endpoint once.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	start := time.Now()
	stats := &Stats{}
	client := newHTTPClient(config.Timeout)

	// Fixed records first: compositions before conditions so the
	// baselines exist.
	for _, path := range []string{"/compositions", "/artefacts", "/conditions"} {
		for _, body := range fixedRecords(path, config.Patch) {
			if err := submit(ctx, client, config.BaseURL+path, body, stats); err != nil {
				return stats, err
			}
		}
	}

	if err := submitGames(ctx, client, config, stats); err != nil {
		return stats, err
	}

	if err := fetchSummaries(ctx, client, config, stats); err != nil {
		return stats, err
	}

	stats.Duration = time.Since(start)
	return stats, nil
}

func submit(ctx context.Context, client *HTTPClient, url string, body any, stats *Stats) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	resp, err := client.Post(url, body)
	if err != nil {
		atomic.AddInt64(&stats.Failed, 1)
		return fmt.Errorf("post %s: %w", url, err)
	}
	payload, err := readResponseBody(resp)
	if err != nil {
		atomic.AddInt64(&stats.Failed, 1)
		return fmt.Errorf("read %s response: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		atomic.AddInt64(&stats.Failed, 1)
		return fmt.Errorf("post %s: status %d: %s", url, resp.StatusCode, payload)
	}
	atomic.AddInt64(&stats.Submitted, 1)
	return nil
}

// submitGames posts random game records concurrently using a worker pool.
func submitGames(ctx context.Context, client *HTTPClient, config *Config, stats *Stats) error {
	games := generateGames(config.Games, config.Patch)
	url := config.BaseURL + "/games"

	gameChan := make(chan gameRecord, config.Workers*2)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for game := range gameChan {
				if err := submit(ctx, client, url, game, stats); err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
				}
			}
		}()
	}

	for _, game := range games {
		select {
		case <-ctx.Done():
			close(gameChan)
			wg.Wait()
			return ctx.Err()
		case gameChan <- game:
		}
	}
	close(gameChan)
	wg.Wait()

	return firstErr
}

// fetchSummaries pulls each summary endpoint once to confirm reports build.
func fetchSummaries(ctx context.Context, client *HTTPClient, config *Config, stats *Stats) error {
	paths := []string{
		"/summary/compositions?patch=" + config.Patch,
		"/summary/artefacts?patch=" + config.Patch,
		"/summary/artefact-characters?patch=" + config.Patch,
		"/summary/augments?patch=" + config.Patch,
		"/summary/global",
	}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		resp, err := client.Get(config.BaseURL + path)
		if err != nil {
			return fmt.Errorf("get %s: %w", path, err)
		}
		payload, err := readResponseBody(resp)
		if err != nil {
			return fmt.Errorf("read %s response: %w", path, err)
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("get %s: status %d: %s", path, resp.StatusCode, payload)
		}
	}
	return nil
}
