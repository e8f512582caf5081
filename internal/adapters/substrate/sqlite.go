package substrate

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"

	"github.com/okian/comptrack/internal/domain/model"
	"github.com/okian/comptrack/pkg/metrics"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// SQLite connection pool limits. The store serves a single process with low
// write concurrency; a small pool avoids writer contention under WAL.
const (
	sqliteMaxOpenConns    = 4
	sqliteMaxIdleConns    = 2
	sqliteConnMaxLifetime = 1 * time.Hour
)

// SQLiteStore is the durable Store implementation backed by an embedded
// SQLite database. It is a drop-in alternative to the chat-backed history:
// rowid order stands in for message order and edits preserve rowid so a
// record keeps its position after an in-place update.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at path and runs
// the embedded migrations.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(sqliteMaxOpenConns)
	db.SetMaxIdleConns(sqliteMaxIdleConns)
	db.SetConnMaxLifetime(sqliteConnMaxLifetime)

	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []struct {
		name  string
		value string
	}{
		{"journal_mode", "WAL"},
		{"synchronous", "NORMAL"},
		{"busy_timeout", "5000"},
		{"foreign_keys", "ON"},
		{"temp_store", "MEMORY"},
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA %s = %s", p.name, p.value)); err != nil {
			return fmt.Errorf("failed to set PRAGMA %s: %w", p.name, err)
		}
	}
	return nil
}

func runMigrations(db *sql.DB) error {
	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// EnsureCategory creates the category if absent.
func (s *SQLiteStore) EnsureCategory(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO categories (name) VALUES (?)`, name)
	if err != nil {
		return fmt.Errorf("ensure category %q: %w", name, err)
	}
	return nil
}

// EnsureChannel creates the channel (and its category) if absent.
func (s *SQLiteStore) EnsureChannel(ctx context.Context, ref ChannelRef) error {
	if err := s.EnsureCategory(ctx, ref.Category); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO channels (category, name) VALUES (?, ?)`,
		ref.Category, ref.Channel)
	if err != nil {
		return fmt.Errorf("ensure channel %q/%q: %w", ref.Category, ref.Channel, err)
	}
	return nil
}

// Channels lists channel names in creation order.
func (s *SQLiteStore) Channels(ctx context.Context, category string) ([]string, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM categories WHERE name = ?`, category).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("category %q: %w", category, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup category %q: %w", category, err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM channels WHERE category = ? ORDER BY rowid`, category)
	if err != nil {
		return nil, fmt.Errorf("list channels of %q: %w", category, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan channel row: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *SQLiteStore) channelExists(ctx context.Context, ref ChannelRef) error {
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM channels WHERE category = ? AND name = ?`,
		ref.Category, ref.Channel).Scan(&exists)
	if err == sql.ErrNoRows {
		return fmt.Errorf("channel %q/%q: %w", ref.Category, ref.Channel, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("lookup channel %q/%q: %w", ref.Category, ref.Channel, err)
	}
	return nil
}

// Append stores a new envelope and returns its message ID.
func (s *SQLiteStore) Append(ctx context.Context, ref ChannelRef, env model.Envelope) (string, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreAppendLatency(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	if err := s.channelExists(ctx, ref); err != nil {
		return "", err
	}
	if env.CreatedAt.IsZero() {
		env.CreatedAt = time.Now().UTC()
	}
	fields, err := json.Marshal(env.Fields)
	if err != nil {
		return "", fmt.Errorf("marshal fields: %w", err)
	}

	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO messages (id, category, channel, title, created_at, fields) VALUES (?, ?, ?, ?, ?, ?)`,
		id, ref.Category, ref.Channel, env.Title, env.CreatedAt, string(fields))
	if err != nil {
		return "", fmt.Errorf("append to %q/%q: %w", ref.Category, ref.Channel, err)
	}
	return id, nil
}

// Edit replaces an existing message's envelope, keeping its rowid and thus
// its position in scan order.
func (s *SQLiteStore) Edit(ctx context.Context, ref ChannelRef, id string, env model.Envelope) error {
	fields, err := json.Marshal(env.Fields)
	if err != nil {
		return fmt.Errorf("marshal fields: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE messages SET title = ?, fields = ? WHERE id = ? AND category = ? AND channel = ?`,
		env.Title, string(fields), id, ref.Category, ref.Channel)
	if err != nil {
		return fmt.Errorf("edit message %q: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("edit message %q: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("message %q: %w", id, ErrNotFound)
	}
	return nil
}

// Delete removes a message.
func (s *SQLiteStore) Delete(ctx context.Context, ref ChannelRef, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM messages WHERE id = ? AND category = ? AND channel = ?`,
		id, ref.Category, ref.Channel)
	if err != nil {
		return fmt.Errorf("delete message %q: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete message %q: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("message %q: %w", id, ErrNotFound)
	}
	return nil
}

// Scan returns up to limit messages, newest first.
func (s *SQLiteStore) Scan(ctx context.Context, ref ChannelRef, limit int) ([]Message, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreScanLatency(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	if limit <= 0 {
		return nil, fmt.Errorf("limit %d: %w", limit, ErrInvalidLimit)
	}
	if err := s.channelExists(ctx, ref); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, created_at, fields FROM messages
		 WHERE category = ? AND channel = ?
		 ORDER BY rowid DESC LIMIT ?`,
		ref.Category, ref.Channel, limit)
	if err != nil {
		return nil, fmt.Errorf("scan %q/%q: %w", ref.Category, ref.Channel, err)
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var (
			msg       Message
			createdAt time.Time
			rawFields string
		)
		if err := rows.Scan(&msg.ID, &msg.Envelope.Title, &createdAt, &rawFields); err != nil {
			return nil, fmt.Errorf("scan message row: %w", err)
		}
		msg.Envelope.CreatedAt = createdAt
		if err := json.Unmarshal([]byte(rawFields), &msg.Envelope.Fields); err != nil {
			return nil, fmt.Errorf("unmarshal fields of %q: %w", msg.ID, err)
		}
		out = append(out, msg)
	}
	metrics.RecordEnvelopesScanned(len(out))
	return out, rows.Err()
}

// Count returns the bounded message count of a channel.
func (s *SQLiteStore) Count(ctx context.Context, ref ChannelRef, limit int) (int, error) {
	if limit <= 0 {
		return 0, fmt.Errorf("limit %d: %w", limit, ErrInvalidLimit)
	}
	if err := s.channelExists(ctx, ref); err != nil {
		return 0, err
	}

	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM (SELECT 1 FROM messages WHERE category = ? AND channel = ? LIMIT ?)`,
		ref.Category, ref.Channel, limit).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count %q/%q: %w", ref.Category, ref.Channel, err)
	}
	return count, nil
}

// Sizes reports channel and envelope totals.
func (s *SQLiteStore) Sizes(ctx context.Context) (int, int, error) {
	var channels, envelopes int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM channels`).Scan(&channels); err != nil {
		return 0, 0, fmt.Errorf("count channels: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&envelopes); err != nil {
		return 0, 0, fmt.Errorf("count messages: %w", err)
	}
	return channels, envelopes, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
