package substrate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/comptrack/internal/domain/model"
	"github.com/okian/comptrack/pkg/metrics"
)

// MemoryStore is the in-memory Store implementation. Channels keep their
// messages in append order; scans walk them newest first. A single RWMutex
// guards the whole hierarchy.
type MemoryStore struct {
	mu sync.RWMutex

	// category -> channel -> messages in append order
	categories map[string]map[string][]Message
	// category names in creation order, channel names per category likewise
	categoryOrder []string
	channelOrder  map[string][]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		categories:   make(map[string]map[string][]Message),
		channelOrder: make(map[string][]string),
	}
}

// EnsureCategory creates the category if absent.
func (s *MemoryStore) EnsureCategory(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureCategoryLocked(name)
	return nil
}

func (s *MemoryStore) ensureCategoryLocked(name string) {
	if _, ok := s.categories[name]; ok {
		return
	}
	s.categories[name] = make(map[string][]Message)
	s.categoryOrder = append(s.categoryOrder, name)
}

// EnsureChannel creates the channel (and its category) if absent.
func (s *MemoryStore) EnsureChannel(_ context.Context, ref ChannelRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureCategoryLocked(ref.Category)
	if _, ok := s.categories[ref.Category][ref.Channel]; ok {
		return nil
	}
	s.categories[ref.Category][ref.Channel] = nil
	s.channelOrder[ref.Category] = append(s.channelOrder[ref.Category], ref.Channel)
	return nil
}

// Channels lists channel names in creation order.
func (s *MemoryStore) Channels(_ context.Context, category string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.categories[category]; !ok {
		return nil, fmt.Errorf("category %q: %w", category, ErrNotFound)
	}
	out := make([]string, len(s.channelOrder[category]))
	copy(out, s.channelOrder[category])
	return out, nil
}

func (s *MemoryStore) channelLocked(ref ChannelRef) ([]Message, error) {
	chans, ok := s.categories[ref.Category]
	if !ok {
		return nil, fmt.Errorf("category %q: %w", ref.Category, ErrNotFound)
	}
	msgs, ok := chans[ref.Channel]
	if !ok {
		return nil, fmt.Errorf("channel %q/%q: %w", ref.Category, ref.Channel, ErrNotFound)
	}
	return msgs, nil
}

// Append stores a new envelope and returns its message ID.
func (s *MemoryStore) Append(_ context.Context, ref ChannelRef, env model.Envelope) (string, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreAppendLatency(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.channelLocked(ref); err != nil {
		return "", err
	}
	if env.CreatedAt.IsZero() {
		env.CreatedAt = time.Now().UTC()
	}
	id := uuid.NewString()
	s.categories[ref.Category][ref.Channel] = append(s.categories[ref.Category][ref.Channel], Message{ID: id, Envelope: env})
	return id, nil
}

// Edit replaces an existing message's envelope in place.
func (s *MemoryStore) Edit(_ context.Context, ref ChannelRef, id string, env model.Envelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs, err := s.channelLocked(ref)
	if err != nil {
		return err
	}
	for i := range msgs {
		if msgs[i].ID == id {
			if env.CreatedAt.IsZero() {
				env.CreatedAt = msgs[i].Envelope.CreatedAt
			}
			msgs[i].Envelope = env
			return nil
		}
	}
	return fmt.Errorf("message %q: %w", id, ErrNotFound)
}

// Delete removes a message from the channel's history.
func (s *MemoryStore) Delete(_ context.Context, ref ChannelRef, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs, err := s.channelLocked(ref)
	if err != nil {
		return err
	}
	for i := range msgs {
		if msgs[i].ID == id {
			s.categories[ref.Category][ref.Channel] = append(msgs[:i:i], msgs[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("message %q: %w", id, ErrNotFound)
}

// Scan returns up to limit messages, newest first.
func (s *MemoryStore) Scan(_ context.Context, ref ChannelRef, limit int) ([]Message, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreScanLatency(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	if limit <= 0 {
		return nil, fmt.Errorf("limit %d: %w", limit, ErrInvalidLimit)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs, err := s.channelLocked(ref)
	if err != nil {
		return nil, err
	}

	n := len(msgs)
	if limit < n {
		n = limit
	}
	out := make([]Message, 0, n)
	for i := len(msgs) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, msgs[i])
	}
	metrics.RecordEnvelopesScanned(len(out))
	return out, nil
}

// Count returns the bounded message count of a channel.
func (s *MemoryStore) Count(_ context.Context, ref ChannelRef, limit int) (int, error) {
	if limit <= 0 {
		return 0, fmt.Errorf("limit %d: %w", limit, ErrInvalidLimit)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs, err := s.channelLocked(ref)
	if err != nil {
		return 0, err
	}
	if len(msgs) > limit {
		return limit, nil
	}
	return len(msgs), nil
}

// Sizes reports channel and envelope totals.
func (s *MemoryStore) Sizes(_ context.Context) (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	channels, envelopes := 0, 0
	for _, chans := range s.categories {
		channels += len(chans)
		for _, msgs := range chans {
			envelopes += len(msgs)
		}
	}
	return channels, envelopes, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error { return nil }
