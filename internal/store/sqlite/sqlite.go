// Package sqlite provides a SQLite-backed PityStore, the default durable
// backend for single-node deployments.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/xtding233/football-gacha/internal/gacha"
)

const schema = `
CREATE TABLE IF NOT EXISTS pity_state (
	player_id  TEXT NOT NULL,
	banner_id  TEXT NOT NULL,
	count      INTEGER NOT NULL,
	updated_at INTEGER NOT NULL,
	PRIMARY KEY (player_id, banner_id)
);`

// Store persists pity counters in SQLite.
type Store struct {
	sqlDB *sql.DB
}

// Open opens the store and creates the schema if missing.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) Load(ctx context.Context, playerID, bannerID string) (gacha.PityState, bool, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT count, updated_at FROM pity_state WHERE player_id = ? AND banner_id = ?`,
		playerID, bannerID)
	var count int
	var updatedMillis int64
	if err := row.Scan(&count, &updatedMillis); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return gacha.PityState{}, false, nil
		}
		return gacha.PityState{}, false, fmt.Errorf("load pity: %w", err)
	}
	return gacha.PityState{
		Count:     count,
		UpdatedAt: time.UnixMilli(updatedMillis).UTC(),
	}, true, nil
}

func (s *Store) Save(ctx context.Context, playerID, bannerID string, state gacha.PityState) error {
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO pity_state (player_id, banner_id, count, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (player_id, banner_id)
		 DO UPDATE SET count = excluded.count, updated_at = excluded.updated_at`,
		playerID, bannerID, state.Count, state.UpdatedAt.UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("save pity: %w", err)
	}
	return nil
}
