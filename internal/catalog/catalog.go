// Package catalog is the in-memory game catalog campaigns validate against.
package catalog

import (
	"sort"
	"sync"

	"SpinChallenges/internal/campaign"
)

// Catalog holds games, lobby membership, symbol names and loaded asset
// bundles. It is safe for concurrent use.
type Catalog struct {
	mu          sync.RWMutex
	games       map[string]campaign.GameInfo
	lobbies     map[string]map[string]bool
	symbols     map[string]string // game + "/" + symbol
	bundles     map[string]bool
	collections bool
}

func New() *Catalog {
	return &Catalog{
		games:       make(map[string]campaign.GameInfo),
		lobbies:     make(map[string]map[string]bool),
		symbols:     make(map[string]string),
		bundles:     make(map[string]bool),
		collections: true,
	}
}

// Put adds or replaces a game.
func (c *Catalog) Put(g campaign.GameInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.games[g.Key] = g
}

// AddToLobby places games in lobby.
func (c *Catalog) AddToLobby(lobby string, keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	set := c.lobbies[lobby]
	if set == nil {
		set = make(map[string]bool)
		c.lobbies[lobby] = set
	}
	for _, k := range keys {
		set[k] = true
	}
}

func (c *Catalog) SetCollectionsEnabled(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.collections = on
}

// SetSymbol names a symbol of game. An empty game names it for every game.
func (c *Catalog) SetSymbol(game, symbol, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.symbols[game+"/"+symbol] = name
}

// MarkBundleLoaded records an asset bundle as available.
func (c *Catalog) MarkBundleLoaded(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bundles[name] = true
}

func (c *Catalog) Game(key string) (campaign.GameInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	g, ok := c.games[key]
	return g, ok
}

func (c *Catalog) LobbyHasGame(lobby, game string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lobbies[lobby][game]
}

func (c *Catalog) AnyLobbyHasGame(game string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, set := range c.lobbies {
		if set[game] {
			return true
		}
	}
	return false
}

func (c *Catalog) CollectionsEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.collections
}

// SymbolName prefers a game-specific name over a shared one.
func (c *Catalog) SymbolName(game, symbol string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if name, ok := c.symbols[game+"/"+symbol]; ok {
		return name, true
	}
	name, ok := c.symbols["/"+symbol]
	return name, ok
}

func (c *Catalog) BundleLoaded(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bundles[name]
}

// Games returns every game sorted by key.
func (c *Catalog) Games() []campaign.GameInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]campaign.GameInfo, 0, len(c.games))
	for _, g := range c.games {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Lobbies returns lobby -> sorted game keys.
func (c *Catalog) Lobbies() map[string][]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string][]string, len(c.lobbies))
	for lobby, set := range c.lobbies {
		keys := make([]string, 0, len(set))
		for k := range set {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out[lobby] = keys
	}
	return out
}
