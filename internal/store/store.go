// Package store persists the game catalog, runtime settings and diagnostic
// breadcrumbs in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// ErrNotFound is returned when a keyed row does not exist.
var ErrNotFound = errors.New("store: not found")

type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and runs migrations. Use
// ":memory:" for a throwaway database.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite is not concurrent for writes
	s := &Store{db: db}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate %q: %w", path, err)
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS games (
			key TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			licensed INTEGER NOT NULL DEFAULT 1
		);`,
		`CREATE TABLE IF NOT EXISTS lobby_games (
			lobby TEXT NOT NULL,
			game_key TEXT NOT NULL,
			PRIMARY KEY(lobby, game_key),
			FOREIGN KEY(game_key) REFERENCES games(key) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS game_symbols (
			game_key TEXT NOT NULL,
			symbol TEXT NOT NULL,
			name TEXT NOT NULL,
			PRIMARY KEY(game_key, symbol)
		);`,
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS breadcrumbs (
			id TEXT PRIMARY KEY,
			campaign_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			message TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_breadcrumbs_campaign_created ON breadcrumbs(campaign_id, created_at DESC);`,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, q := range stmts {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}
