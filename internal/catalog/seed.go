package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"SpinChallenges/internal/campaign"
	"SpinChallenges/internal/store"
)

const settingCollections = "collections_enabled"

type seedGame struct {
	Key      string            `json:"key"`
	Name     string            `json:"name"`
	Licensed *bool             `json:"licensed"`
	Symbols  map[string]string `json:"symbols"`
}

// Seed is the JSON catalog file format.
type Seed struct {
	Games              []seedGame          `json:"games"`
	Lobbies            map[string][]string `json:"lobbies"`
	Symbols            map[string]string   `json:"symbols"`
	Bundles            []string            `json:"bundles"`
	CollectionsEnabled *bool               `json:"collectionsEnabled"`
}

// LoadSeedFile reads a seed file. A missing file is an empty seed.
func LoadSeedFile(path string) (Seed, error) {
	if path == "" {
		return Seed{}, nil
	}
	cleanPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		if os.IsNotExist(err) {
			return Seed{}, nil
		}
		return Seed{}, fmt.Errorf("read catalog seed %q: %w", cleanPath, err)
	}
	var seed Seed
	if err := json.Unmarshal(data, &seed); err != nil {
		return Seed{}, fmt.Errorf("parse catalog seed %q: %w", cleanPath, err)
	}
	return seed, nil
}

// Apply merges a seed into the catalog. Games are licensed unless the seed
// says otherwise.
func (c *Catalog) Apply(seed Seed) {
	for _, g := range seed.Games {
		if g.Key == "" {
			continue
		}
		licensed := true
		if g.Licensed != nil {
			licensed = *g.Licensed
		}
		c.Put(campaign.GameInfo{Key: g.Key, Name: g.Name, Licensed: licensed})
		for sym, name := range g.Symbols {
			c.SetSymbol(g.Key, sym, name)
		}
	}
	for lobby, keys := range seed.Lobbies {
		c.AddToLobby(lobby, keys...)
	}
	for sym, name := range seed.Symbols {
		c.SetSymbol("", sym, name)
	}
	for _, b := range seed.Bundles {
		c.MarkBundleLoaded(b)
	}
	if seed.CollectionsEnabled != nil {
		c.SetCollectionsEnabled(*seed.CollectionsEnabled)
	}
}

// Persist writes a seed into the store.
func Persist(ctx context.Context, st *store.Store, seed Seed) error {
	for _, g := range seed.Games {
		if g.Key == "" {
			continue
		}
		licensed := g.Licensed == nil || *g.Licensed
		if err := st.UpsertGame(ctx, store.Game{Key: g.Key, Name: g.Name, Licensed: licensed}); err != nil {
			return err
		}
		for sym, name := range g.Symbols {
			if err := st.UpsertSymbol(ctx, store.Symbol{GameKey: g.Key, Symbol: sym, Name: name}); err != nil {
				return err
			}
		}
	}
	for lobby, keys := range seed.Lobbies {
		if err := st.AddLobbyGames(ctx, lobby, keys...); err != nil {
			return err
		}
	}
	for sym, name := range seed.Symbols {
		if err := st.UpsertSymbol(ctx, store.Symbol{Symbol: sym, Name: name}); err != nil {
			return err
		}
	}
	if seed.CollectionsEnabled != nil {
		if err := st.SetSetting(ctx, settingCollections, strconv.FormatBool(*seed.CollectionsEnabled)); err != nil {
			return err
		}
	}
	return nil
}

// Load builds a catalog from the store.
func Load(ctx context.Context, st *store.Store) (*Catalog, error) {
	c := New()
	games, err := st.ListGames(ctx)
	if err != nil {
		return nil, fmt.Errorf("load games: %w", err)
	}
	for _, g := range games {
		c.Put(campaign.GameInfo{Key: g.Key, Name: g.Name, Licensed: g.Licensed})
	}
	lobbies, err := st.Lobbies(ctx)
	if err != nil {
		return nil, fmt.Errorf("load lobbies: %w", err)
	}
	for lobby, keys := range lobbies {
		c.AddToLobby(lobby, keys...)
	}
	syms, err := st.ListSymbols(ctx)
	if err != nil {
		return nil, fmt.Errorf("load symbols: %w", err)
	}
	for _, s := range syms {
		c.SetSymbol(s.GameKey, s.Symbol, s.Name)
	}
	if v, ok, err := st.Setting(ctx, settingCollections); err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	} else if ok {
		on, perr := strconv.ParseBool(v)
		if perr != nil {
			return nil, fmt.Errorf("setting %s=%q: %w", settingCollections, v, perr)
		}
		c.SetCollectionsEnabled(on)
	}
	return c, nil
}
