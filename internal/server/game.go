package server

// GameStatus is the host game as reported over the feed. Loop-owned.
type GameStatus struct {
	busy     bool
	lifetime int64
	ui       *uiHub
}

func (g *GameStatus) IsBusy() bool         { return g.busy }
func (g *GameStatus) LifetimeSpins() int64 { return g.lifetime }

// StopAutoSpin asks connected clients to halt auto spin.
func (g *GameStatus) StopAutoSpin() {
	if g.ui != nil {
		g.ui.broadcast("stop_autospin", "", nil)
	}
}

func (g *GameStatus) setBusy(busy bool) { g.busy = busy }

func (g *GameStatus) setLifetimeSpins(n int64) {
	if n > g.lifetime {
		g.lifetime = n
	}
}
