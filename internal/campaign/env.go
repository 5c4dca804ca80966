package campaign

import (
	"io"
	"log"
	"time"
)

// Scheduler is the single-threaded loop campaigns defer work onto.
type Scheduler interface {
	AtEndOfTick(fn func())
	After(d time.Duration, fn func()) (cancel func())
	Now() time.Time
}

// GameInfo describes one entry of the game catalog.
type GameInfo struct {
	Key      string `json:"key"`
	Name     string `json:"name,omitempty"`
	Licensed bool   `json:"licensed"`
}

// Catalog answers the content-validity questions lobby validation asks.
type Catalog interface {
	Game(key string) (GameInfo, bool)
	LobbyHasGame(lobby, game string) bool
	AnyLobbyHasGame(game string) bool
	CollectionsEnabled() bool
}

// GameState is the host game as seen by the completion drain.
type GameState interface {
	// IsBusy reports a spin, bonus or animation in flight.
	IsBusy() bool
	StopAutoSpin()
	LifetimeSpins() int64
}

// Presenter receives every UI-facing side effect.
type Presenter interface {
	RefreshUI(campaignID string)
	ShowCampaignComplete(campaignID string, batch []Completion)
	ShowMissionComplete(campaignID string, eventIndex int, batch []Completion)
	ShowTypeComplete(campaignID string, eventIndex int, batch []Completion)
	ShowIncomplete(campaignID string)
	ShowTypeReset(campaignID string, eventIndex int)
	UnlockGames(campaignID string, games []string)
	PendingCredits(campaignID string, amount int64)
	GrantCredits(campaignID string, amount int64)
	BadgeAnimation(campaignID string, eventIndex int)
	CampaignEnded(campaignID string)
}

// Transport issues the outbound requests the director brokers.
type Transport interface {
	RequestProgress(campaignID string)
	RequestReset(campaignID string, eventIndex int)
}

// Breadcrumbs records non-fatal diagnostics about inconsistent server state.
type Breadcrumbs interface {
	Record(campaignID, kind, message string)
}

// Onboarding is the first-session manager the EUE campaign reports to.
type Onboarding interface {
	OnChallengeComplete(campaignID string, c Completion)
}

// Assets reports which content bundles are available locally.
type Assets interface {
	BundleLoaded(name string) bool
}

// SymbolNames resolves slot symbol ids to display names once game metadata
// is available.
type SymbolNames interface {
	SymbolName(game, symbol string) (string, bool)
}

// Env bundles the collaborators shared by the director and its campaigns.
// Nil fields are replaced with no-op implementations by NewDirector.
type Env struct {
	Scheduler   Scheduler
	Catalog     Catalog
	Game        GameState
	Presenter   Presenter
	Transport   Transport
	Breadcrumbs Breadcrumbs
	Onboarding  Onboarding
	Assets      Assets
	Symbols     SymbolNames
	Logger      *log.Logger
	Settings    Settings
}

func (e *Env) fillDefaults() {
	if e.Scheduler == nil {
		e.Scheduler = immediateScheduler{}
	}
	if e.Catalog == nil {
		e.Catalog = openCatalog{}
	}
	if e.Game == nil {
		e.Game = idleGame{}
	}
	if e.Presenter == nil {
		e.Presenter = NopPresenter{}
	}
	if e.Transport == nil {
		e.Transport = nopTransport{}
	}
	if e.Breadcrumbs == nil {
		e.Breadcrumbs = nopBreadcrumbs{}
	}
	if e.Onboarding == nil {
		e.Onboarding = nopOnboarding{}
	}
	if e.Assets == nil {
		e.Assets = allAssets{}
	}
	if e.Symbols == nil {
		e.Symbols = noSymbols{}
	}
	if e.Logger == nil {
		e.Logger = log.New(io.Discard, "", 0)
	}
	e.Settings = SanitizeSettings(e.Settings)
}

func (e *Env) warnf(format string, args ...any) {
	e.Logger.Printf("warn: "+format, args...)
}

func (e *Env) errorf(format string, args ...any) {
	e.Logger.Printf("error: "+format, args...)
}

func (e *Env) infof(format string, args ...any) {
	e.Logger.Printf(format, args...)
}

// NopPresenter is a Presenter that does nothing.
type NopPresenter struct{}

func (NopPresenter) RefreshUI(string)                             {}
func (NopPresenter) ShowCampaignComplete(string, []Completion)     {}
func (NopPresenter) ShowMissionComplete(string, int, []Completion) {}
func (NopPresenter) ShowTypeComplete(string, int, []Completion)    {}
func (NopPresenter) ShowIncomplete(string)                         {}
func (NopPresenter) ShowTypeReset(string, int)                     {}
func (NopPresenter) UnlockGames(string, []string)                  {}
func (NopPresenter) PendingCredits(string, int64)                  {}
func (NopPresenter) GrantCredits(string, int64)                    {}
func (NopPresenter) BadgeAnimation(string, int)                    {}
func (NopPresenter) CampaignEnded(string)                          {}

// immediateScheduler runs deferred work inline and never fires timers. Only
// used when no loop is wired.
type immediateScheduler struct{}

func (immediateScheduler) AtEndOfTick(fn func())              { fn() }
func (immediateScheduler) After(time.Duration, func()) func() { return func() {} }
func (immediateScheduler) Now() time.Time                     { return time.Now() }

type openCatalog struct{}

func (openCatalog) Game(key string) (GameInfo, bool) {
	return GameInfo{Key: key, Licensed: true}, true
}
func (openCatalog) LobbyHasGame(string, string) bool { return true }
func (openCatalog) AnyLobbyHasGame(string) bool      { return true }
func (openCatalog) CollectionsEnabled() bool         { return true }

type idleGame struct{}

func (idleGame) IsBusy() bool         { return false }
func (idleGame) StopAutoSpin()        {}
func (idleGame) LifetimeSpins() int64 { return 0 }

type nopTransport struct{}

func (nopTransport) RequestProgress(string)   {}
func (nopTransport) RequestReset(string, int) {}

type nopBreadcrumbs struct{}

func (nopBreadcrumbs) Record(string, string, string) {}

type nopOnboarding struct{}

func (nopOnboarding) OnChallengeComplete(string, Completion) {}

type allAssets struct{}

func (allAssets) BundleLoaded(string) bool { return true }

type noSymbols struct{}

func (noSymbols) SymbolName(string, string) (string, bool) { return "", false }
