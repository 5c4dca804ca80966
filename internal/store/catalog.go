package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Game is one row of the game catalog.
type Game struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	Licensed bool   `json:"licensed"`
}

// Symbol maps a slot symbol id to its display name. An empty GameKey is a
// name shared by every game.
type Symbol struct {
	GameKey string `json:"game"`
	Symbol  string `json:"symbol"`
	Name    string `json:"name"`
}

// UpsertGame inserts or replaces a catalog entry.
func (s *Store) UpsertGame(ctx context.Context, g Game) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO games (key, name, licensed) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET name = excluded.name, licensed = excluded.licensed`,
		g.Key, g.Name, g.Licensed)
	if err != nil {
		return fmt.Errorf("upsert game %s: %w", g.Key, err)
	}
	return nil
}

// GetGame returns one game or ErrNotFound.
func (s *Store) GetGame(ctx context.Context, key string) (Game, error) {
	var g Game
	err := s.db.QueryRowContext(ctx, `SELECT key, name, licensed FROM games WHERE key = ?`, key).
		Scan(&g.Key, &g.Name, &g.Licensed)
	if errors.Is(err, sql.ErrNoRows) {
		return Game{}, fmt.Errorf("game %s: %w", key, ErrNotFound)
	}
	return g, err
}

// ListGames returns every game ordered by key.
func (s *Store) ListGames(ctx context.Context) ([]Game, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, name, licensed FROM games ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Game
	for rows.Next() {
		var g Game
		if err := rows.Scan(&g.Key, &g.Name, &g.Licensed); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// AddLobbyGames places games in a lobby. Unknown games are rejected by the
// foreign key.
func (s *Store) AddLobbyGames(ctx context.Context, lobby string, keys ...string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, k := range keys {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO lobby_games (lobby, game_key) VALUES (?, ?)`, lobby, k); err != nil {
			tx.Rollback()
			return fmt.Errorf("add %s to lobby %s: %w", k, lobby, err)
		}
	}
	return tx.Commit()
}

// Lobbies returns lobby -> game keys.
func (s *Store) Lobbies(ctx context.Context) (map[string][]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT lobby, game_key FROM lobby_games ORDER BY lobby, game_key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string][]string)
	for rows.Next() {
		var lobby, key string
		if err := rows.Scan(&lobby, &key); err != nil {
			return nil, err
		}
		out[lobby] = append(out[lobby], key)
	}
	return out, rows.Err()
}

// UpsertSymbol stores a symbol display name.
func (s *Store) UpsertSymbol(ctx context.Context, sym Symbol) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO game_symbols (game_key, symbol, name) VALUES (?, ?, ?)
		ON CONFLICT(game_key, symbol) DO UPDATE SET name = excluded.name`,
		sym.GameKey, sym.Symbol, sym.Name)
	return err
}

// ListSymbols returns every stored symbol name.
func (s *Store) ListSymbols(ctx context.Context) ([]Symbol, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT game_key, symbol, name FROM game_symbols ORDER BY game_key, symbol`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Symbol
	for rows.Next() {
		var sym Symbol
		if err := rows.Scan(&sym.GameKey, &sym.Symbol, &sym.Name); err != nil {
			return nil, err
		}
		out = append(out, sym)
	}
	return out, rows.Err()
}

// SetSetting stores a string setting.
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}

// Setting returns a stored setting and whether it exists.
func (s *Store) Setting(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}
