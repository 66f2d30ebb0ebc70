package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/xdott/contact-dashboard-api/internal/entity"
)

// ErrCacheMiss is returned when no snapshot exists for the user.
var ErrCacheMiss = errors.New("dashboard cache miss")

// SnapshotCache stores per-user contact snapshots so a dashboard reload
// within the freshness window does not refetch the full set upstream.
type SnapshotCache interface {
	Get(ctx context.Context, userEmail string) ([]entity.Contact, time.Time, error)
	Put(ctx context.Context, userEmail string, contacts []entity.Contact) error
	Invalidate(ctx context.Context, userEmail string) error
}

// SQLiteSnapshotCache implements SnapshotCache on the embedded database.
type SQLiteSnapshotCache struct {
	db *sql.DB
}

// NewSQLiteSnapshotCache wires a snapshot cache.
func NewSQLiteSnapshotCache(db *sql.DB) *SQLiteSnapshotCache {
	return &SQLiteSnapshotCache{db: db}
}

var _ SnapshotCache = (*SQLiteSnapshotCache)(nil)

// Get loads the cached snapshot and its fetch time.
func (c *SQLiteSnapshotCache) Get(ctx context.Context, userEmail string) ([]entity.Contact, time.Time, error) {
	var (
		payload   []byte
		fetchedAt time.Time
	)
	row := c.db.QueryRowContext(ctx, `SELECT payload, fetched_at FROM dashboard_cache WHERE user_email = ?`, userEmail)
	if err := row.Scan(&payload, &fetchedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, time.Time{}, ErrCacheMiss
		}
		return nil, time.Time{}, fmt.Errorf("read snapshot cache: %w", err)
	}

	var contacts []entity.Contact
	if err := json.Unmarshal(payload, &contacts); err != nil {
		// A corrupt cache row behaves like a miss; the caller refetches.
		return nil, time.Time{}, ErrCacheMiss
	}
	return contacts, fetchedAt, nil
}

// Put replaces the user's cached snapshot.
func (c *SQLiteSnapshotCache) Put(ctx context.Context, userEmail string, contacts []entity.Contact) error {
	payload, err := json.Marshal(contacts)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	_, err = c.db.ExecContext(ctx,
		`INSERT INTO dashboard_cache (user_email, payload, fetched_at) VALUES (?, ?, ?)
		 ON CONFLICT (user_email) DO UPDATE SET payload = excluded.payload, fetched_at = excluded.fetched_at`,
		userEmail, payload, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("write snapshot cache: %w", err)
	}
	return nil
}

// Invalidate drops the user's cached snapshot.
func (c *SQLiteSnapshotCache) Invalidate(ctx context.Context, userEmail string) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM dashboard_cache WHERE user_email = ?`, userEmail); err != nil {
		return fmt.Errorf("invalidate snapshot cache: %w", err)
	}
	return nil
}
