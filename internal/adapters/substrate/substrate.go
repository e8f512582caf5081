// Package substrate abstracts the message store the tracker uses as its
// database: a hierarchy of categories holding channels holding an append-
// mostly log of envelopes. The contract mirrors what a chat platform
// offers (ensure-category, ensure-channel, append, edit, delete and a
// bounded newest-first scan) so the engines above it never touch storage
// details and an embedded store can stand in for the chat history.
package substrate

import (
	"context"
	"strings"

	"github.com/okian/comptrack/internal/domain/model"
)

// Message is one stored envelope plus the identity needed to edit or
// delete it in place.
type Message struct {
	ID       string
	Envelope model.Envelope
}

// ChannelRef addresses one channel inside one category.
type ChannelRef struct {
	Category string
	Channel  string
}

// Store provides read/write access to the channel hierarchy.
//
// Scans are bounded and newest-first; there is no query language. Append,
// Edit and Delete address existing channels only; resolution of categories
// and channels is the caller's job via the Ensure methods.
type Store interface {
	// EnsureCategory creates the category if absent. Idempotent.
	EnsureCategory(ctx context.Context, name string) error

	// EnsureChannel creates the channel inside the category if absent,
	// creating the category too when needed. Idempotent.
	EnsureChannel(ctx context.Context, ref ChannelRef) error

	// Channels lists the channel names of a category in creation order.
	// Returns ErrNotFound when the category does not exist.
	Channels(ctx context.Context, category string) ([]string, error)

	// Append stores a new envelope at the head of the channel's history and
	// returns its message ID. Returns ErrNotFound for an unknown channel.
	Append(ctx context.Context, ref ChannelRef, env model.Envelope) (string, error)

	// Edit replaces the envelope of an existing message, preserving its
	// identity and position in the history.
	Edit(ctx context.Context, ref ChannelRef, id string, env model.Envelope) error

	// Delete removes a message from the channel's history.
	Delete(ctx context.Context, ref ChannelRef, id string) error

	// Scan returns up to limit messages, newest first. The result is a
	// snapshot; re-issue the scan to observe later writes.
	Scan(ctx context.Context, ref ChannelRef, limit int) ([]Message, error)

	// Count returns the number of stored messages in the channel, bounded
	// by limit the same way a scan would be.
	Count(ctx context.Context, ref ChannelRef, limit int) (int, error)

	// Sizes reports the current channel and envelope totals for monitoring.
	Sizes(ctx context.Context) (channels, envelopes int, err error)

	// Close releases any resources held by the store.
	Close() error
}

// ChannelName derives a channel name from a record's display name:
// lowercased, spaces collapsed to hyphens.
func ChannelName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}
