package campaign

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/tidwall/gjson"

	"SpinChallenges/internal/tick"
)

type call struct {
	name  string
	id    string
	index int
	n     int
	games []string
	value int64
}

type recordingPresenter struct {
	calls []call
}

func (p *recordingPresenter) add(c call) { p.calls = append(p.calls, c) }

func (p *recordingPresenter) RefreshUI(id string) { p.add(call{name: "refresh", id: id}) }
func (p *recordingPresenter) ShowCampaignComplete(id string, b []Completion) {
	p.add(call{name: "campaign_complete", id: id, n: len(b)})
}
func (p *recordingPresenter) ShowMissionComplete(id string, idx int, b []Completion) {
	p.add(call{name: "mission_complete", id: id, index: idx, n: len(b)})
}
func (p *recordingPresenter) ShowTypeComplete(id string, idx int, b []Completion) {
	p.add(call{name: "type_complete", id: id, index: idx, n: len(b)})
}
func (p *recordingPresenter) ShowIncomplete(id string) { p.add(call{name: "incomplete", id: id}) }
func (p *recordingPresenter) ShowTypeReset(id string, idx int) {
	p.add(call{name: "type_reset", id: id, index: idx})
}
func (p *recordingPresenter) UnlockGames(id string, games []string) {
	p.add(call{name: "unlock_games", id: id, games: games})
}
func (p *recordingPresenter) PendingCredits(id string, amount int64) {
	p.add(call{name: "pending_credits", id: id, value: amount})
}
func (p *recordingPresenter) GrantCredits(id string, amount int64) {
	p.add(call{name: "grant_credits", id: id, value: amount})
}
func (p *recordingPresenter) BadgeAnimation(id string, idx int) {
	p.add(call{name: "badge", id: id, index: idx})
}
func (p *recordingPresenter) CampaignEnded(id string) { p.add(call{name: "ended", id: id}) }

func (p *recordingPresenter) named(name string) []call {
	var out []call
	for _, c := range p.calls {
		if c.name == name {
			out = append(out, c)
		}
	}
	return out
}

func (p *recordingPresenter) names() []string {
	out := make([]string, len(p.calls))
	for i, c := range p.calls {
		out[i] = c.name
	}
	return out
}

type fakeCatalog struct {
	games       map[string]bool // key -> licensed
	lobbies     map[string][]string
	collections bool
}

func newFakeCatalog(games ...string) *fakeCatalog {
	c := &fakeCatalog{games: map[string]bool{}, lobbies: map[string][]string{}, collections: true}
	for _, g := range games {
		c.games[g] = true
		c.lobbies["main"] = append(c.lobbies["main"], g)
	}
	return c
}

func (c *fakeCatalog) Game(key string) (GameInfo, bool) {
	licensed, ok := c.games[key]
	return GameInfo{Key: key, Licensed: licensed}, ok
}

func (c *fakeCatalog) LobbyHasGame(lobby, game string) bool {
	for _, g := range c.lobbies[lobby] {
		if g == game {
			return true
		}
	}
	return false
}

func (c *fakeCatalog) AnyLobbyHasGame(game string) bool {
	for lobby := range c.lobbies {
		if c.LobbyHasGame(lobby, game) {
			return true
		}
	}
	return false
}

func (c *fakeCatalog) CollectionsEnabled() bool { return c.collections }

type fakeGame struct {
	busy     bool
	stops    int
	lifetime int64
}

func (g *fakeGame) IsBusy() bool         { return g.busy }
func (g *fakeGame) StopAutoSpin()        { g.stops++ }
func (g *fakeGame) LifetimeSpins() int64 { return g.lifetime }

type recordingTransport struct {
	progress []string
	resets   []string
}

func (t *recordingTransport) RequestProgress(id string) { t.progress = append(t.progress, id) }
func (t *recordingTransport) RequestReset(id string, idx int) {
	t.resets = append(t.resets, fmt.Sprintf("%s:%d", id, idx))
}

type recordingBreadcrumbs struct {
	kinds []string
}

func (b *recordingBreadcrumbs) Record(_, kind, _ string) { b.kinds = append(b.kinds, kind) }

type recordingOnboarding struct {
	got []Completion
}

func (o *recordingOnboarding) OnChallengeComplete(_ string, c Completion) { o.got = append(o.got, c) }

type testRig struct {
	loop       *tick.Loop
	now        time.Time
	presenter  *recordingPresenter
	catalog    *fakeCatalog
	game       *fakeGame
	transport  *recordingTransport
	crumbs     *recordingBreadcrumbs
	onboarding *recordingOnboarding
	symbols    symbolTable
	director   *Director
}

func newRig(t *testing.T) *testRig {
	t.Helper()
	r := &testRig{
		loop:       tick.New(tick.DefaultHz),
		now:        time.Unix(1_700_000_000, 0).UTC(),
		presenter:  &recordingPresenter{},
		catalog:    newFakeCatalog("gold_rush", "lucky_sevens", "dragon_fire"),
		game:       &fakeGame{},
		transport:  &recordingTransport{},
		crumbs:     &recordingBreadcrumbs{},
		onboarding: &recordingOnboarding{},
		symbols:    symbolTable{},
	}
	r.loop.SetClock(func() time.Time { return r.now })
	r.director = NewDirector(Env{
		Scheduler:   r.loop,
		Catalog:     r.catalog,
		Game:        r.game,
		Presenter:   r.presenter,
		Transport:   r.transport,
		Breadcrumbs: r.crumbs,
		Onboarding:  r.onboarding,
		Symbols:     r.symbols,
	})
	return r
}

// advance moves the fake clock and runs one tick so due timers fire.
func (r *testRig) advance(d time.Duration) {
	r.now = r.now.Add(d)
	r.loop.Tick()
}

// campaignJSON builds a bootstrap payload with one mission per entry of
// targets, each objective on the matching game of games.
func campaignJSON(experiment string, start, end int64, games []string, targets ...[]int64) string {
	var events []string
	for _, ts := range targets {
		var objs []string
		for i, target := range ts {
			g := games[i%len(games)]
			objs = append(objs, fmt.Sprintf(
				`{"id":%d,"definition":"spin","games":[%q],"count":%d,"rewards":[{"definition":"credits","count":100}]}`,
				i+1, g, target))
		}
		events = append(events, fmt.Sprintf(
			`{"types":[%s],"rewards":[{"definition":"credits","count":1000}],"dialogs":{"intro":{"title":"Hi","text":"Go"}}}`,
			strings.Join(objs, ",")))
	}
	return fmt.Sprintf(
		`{"experiment":%q,"enabled":true,"start_time":%d,"end_time":%d,"id":"v1","repeatable":true,"max_replay_limit":2,"replay_goal_ratio":150,"replay_reward_ratio":50,"events":[%s]}`,
		experiment, start, end, strings.Join(events, ","))
}

func (r *testRig) standardJSON(experiment string) string {
	return campaignJSON(experiment, r.now.Add(-time.Hour).Unix(), r.now.Add(24*time.Hour).Unix(),
		[]string{"gold_rush", "lucky_sevens"}, []int64{10, 5}, []int64{10, 5}, []int64{10, 5})
}

func parse(s string) gjson.Result { return gjson.Parse(s) }
