package campaign

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// State is the campaign progression state.
type State string

const (
	StateInProgress State = "in_progress"
	StateComplete   State = "complete"
	StateIncomplete State = "incomplete"
	StateEventOver  State = "event_over"
	StateReplay     State = "replay"
)

// ValidState is a memoized validation verdict.
type ValidState int

const (
	NotValidated ValidState = iota
	Invalid
	Valid
)

func (v ValidState) String() string {
	switch v {
	case Invalid:
		return "invalid"
	case Valid:
		return "valid"
	default:
		return "not_validated"
	}
}

// Kind is the closed set of campaign variants.
type Kind string

const (
	KindLobby    Kind = "lobby"
	KindRobust   Kind = "robust"
	KindPartner  Kind = "partner"
	KindEue      Kind = "eue"
	KindRichPass Kind = "rich_pass"
	KindSeasonal Kind = "seasonal"
)

// Campaign is the capability set shared by every campaign variant.
type Campaign interface {
	ID() string
	Kind() Kind
	Init(data gjson.Result)
	OnProgressUpdate(data gjson.Result)
	OnProgressReset(data gjson.Result)
	AddTypeCompleteDataToQueue(data gjson.Result)
	OnGameIdle()
	CanRestart() bool
	Restart() error
	IsLobbyValid() bool
	IsCampaignValid() bool
	ResetValidation()
	IsActive() bool
	IsEnabled() bool
	ForceDisabled() bool
	CurrentMission() *Mission
	FindWithGame(game string) *Mission
	CachedResponse() (gjson.Result, bool)
	InvalidateCache()
	OnEnded()
	Summary() Summary

	base() *ChallengeCampaign
}

// hub is the part of the director a campaign talks back to.
type hub interface {
	GetProgress(campaignID string, cb func(gjson.Result))
	Subscribe(event, owner string, fn func(gjson.Result))
}

// ChallengeCampaign is the base campaign. Variants embed it and override
// the unexported hooks through self.
type ChallengeCampaign struct {
	env  *Env
	hub  hub
	kind Kind
	id   string
	self impl

	Variant            string
	Enabled            bool
	Window             TimeRange
	Lobby              string
	Bundle             string
	Missions           []*Mission
	CurrentEventIndex  int
	StartingEventIndex int
	State              State
	ShouldRepeat       bool
	MaxReplayLimit     int
	ReplayCount        int
	ReplayGoalRatio    int
	ReplayRewardRatio  int
	ErrorString        string

	lobbyValid    ValidState
	campaignValid ValidState
	forceDisabled bool
	startingSet   bool

	cached      gjson.Result
	cacheValid  bool
	cancelTimer func()
	gameKeys    []string
	unlocked    map[string]bool

	drainState
}

func newChallengeCampaign(kind Kind, id string, env *Env, h hub) *ChallengeCampaign {
	c := &ChallengeCampaign{
		env:      env,
		hub:      h,
		kind:     kind,
		id:       id,
		State:    StateInProgress,
		unlocked: make(map[string]bool),
	}
	c.self = c
	return c
}

func (c *ChallengeCampaign) ID() string               { return c.id }
func (c *ChallengeCampaign) Kind() Kind               { return c.kind }
func (c *ChallengeCampaign) base() *ChallengeCampaign { return c }
func (c *ChallengeCampaign) ForceDisabled() bool      { return c.forceDisabled }

// LobbyValidState returns the memoized lobby verdict.
func (c *ChallengeCampaign) LobbyValidState() ValidState { return c.lobbyValid }

// Init parses the bootstrap payload. Malformed sections fall back to
// defaults with a warning.
func (c *ChallengeCampaign) Init(data gjson.Result) {
	if !data.IsObject() {
		c.env.warnf("campaign %s: init payload is not an object", c.id)
	}
	c.Variant = firstString(data, "id", "variant")
	c.Enabled = true
	if v := data.Get("enabled"); v.Exists() {
		c.Enabled = v.Bool()
	}
	c.Window = TimeRange{Start: epochTime(data.Get("start_time")), End: epochTime(data.Get("end_time"))}
	c.Lobby = firstString(data, "lobby", "lobby_key")
	if c.Lobby == "" && c.kind == KindLobby {
		c.Lobby = c.env.Settings.DefaultLobby
	}
	c.Bundle = firstString(data, "bundle", "asset_bundle")
	c.ShouldRepeat = data.Get("repeatable").Bool()
	c.MaxReplayLimit = int(data.Get("max_replay_limit").Int())
	c.ReplayCount = int(data.Get("replay_count").Int())
	c.ReplayGoalRatio = int(data.Get("replay_goal_ratio").Int())
	c.ReplayRewardRatio = int(data.Get("replay_reward_ratio").Int())
	c.State = StateInProgress
	if data.Get("has_won").Bool() {
		c.State = StateComplete
	}
	c.CurrentEventIndex = 0
	c.StartingEventIndex = 0
	c.startingSet = false

	c.Missions = c.self.parseMissions(data)
	c.resolveSymbols()
	if c.Bundle != "" && !c.env.Assets.BundleLoaded(c.Bundle) {
		c.env.warnf("campaign %s: bundle %q not loaded, disabling", c.id, c.Bundle)
		c.forceDisabled = true
	}

	c.InvalidateCache()
	c.armTimer()
	c.self.registerEvents()
	c.refreshGameKeys()
	c.IsLobbyValid()
}

// variant holds the override points a campaign kind may replace.
type variant interface {
	parseMissions(data gjson.Result) []*Mission
	registerEvents()
	showCampaignComplete(batch []Completion)
	showMissionComplete(batch []Completion)
	showTypeComplete(batch []Completion)
	checkCampaignValid() bool
	completionMission(comp Completion) *Mission
}

type impl interface {
	Campaign
	variant
}

func (c *ChallengeCampaign) parseMissions(data gjson.Result) []*Mission {
	return c.parseEvents(data, SourceMission)
}

func (c *ChallengeCampaign) parseEvents(data gjson.Result, source RewardSource) []*Mission {
	events := data.Get("events")
	if !events.IsArray() {
		c.env.warnf("campaign %s: no events array", c.id)
		return nil
	}
	var missions []*Mission
	for _, ev := range events.Array() {
		missions = append(missions, parseMission(ev, len(missions), source))
	}
	return missions
}

func (c *ChallengeCampaign) registerEvents() {}

func (c *ChallengeCampaign) checkCampaignValid() bool { return true }

func (c *ChallengeCampaign) armTimer() {
	if c.cancelTimer != nil {
		c.cancelTimer()
		c.cancelTimer = nil
	}
	left := c.Window.Remaining(c.env.Scheduler.Now())
	if left <= 0 {
		return
	}
	c.cancelTimer = c.env.Scheduler.After(left, c.onTimerExpired)
}

func (c *ChallengeCampaign) onTimerExpired() {
	c.cancelTimer = nil
	if c.State != StateInProgress || c.allComplete() {
		return
	}
	c.State = StateIncomplete
	c.env.infof("campaign %s: timer expired before completion", c.id)
	c.env.Presenter.ShowIncomplete(c.id)
}

func (c *ChallengeCampaign) allComplete() bool {
	if len(c.Missions) == 0 {
		return false
	}
	for _, m := range c.Missions {
		if !m.IsComplete() {
			return false
		}
	}
	return true
}

// IsEnabled reports the server enablement flag.
func (c *ChallengeCampaign) IsEnabled() bool { return c.Enabled }

// IsActive holds when the campaign is enabled, inside its window, in
// progress and lobby-valid.
func (c *ChallengeCampaign) IsActive() bool {
	return c.self.IsEnabled() &&
		c.Window.Contains(c.env.Scheduler.Now()) &&
		c.State == StateInProgress &&
		c.self.IsLobbyValid()
}

// CurrentMission returns the mission at CurrentEventIndex, or nil.
func (c *ChallengeCampaign) CurrentMission() *Mission {
	if c.CurrentEventIndex < 0 || c.CurrentEventIndex >= len(c.Missions) {
		return nil
	}
	return c.Missions[c.CurrentEventIndex]
}

// FindWithGame returns the most relevant mission using game: the current
// one, then the others from the most recent back.
func (c *ChallengeCampaign) FindWithGame(game string) *Mission {
	if game == "" {
		return nil
	}
	if m := c.self.CurrentMission(); m != nil && m.HasGame(game) {
		return m
	}
	for i := len(c.Missions) - 1; i >= 0; i-- {
		if c.Missions[i].HasGame(game) {
			return c.Missions[i]
		}
	}
	return nil
}

// GameKeys returns the games of the active mission.
func (c *ChallengeCampaign) GameKeys() []string {
	return c.gameKeys
}

// resolveSymbols retries collect objectives still showing the placeholder
// and reports whether any name was filled in.
func (c *ChallengeCampaign) resolveSymbols() bool {
	changed := false
	for _, m := range c.Missions {
		for _, o := range m.Objectives {
			if o.Collect != nil && o.Collect.NeedsFormat && o.ResolveSymbol(c.env.Symbols) {
				changed = true
			}
		}
	}
	return changed
}

func (c *ChallengeCampaign) refreshGameKeys() {
	if m := c.self.CurrentMission(); m != nil {
		c.gameKeys = m.Games()
		return
	}
	c.gameKeys = nil
}

// CachedResponse returns the last progress snapshot unless invalidated.
func (c *ChallengeCampaign) CachedResponse() (gjson.Result, bool) {
	return c.cached, c.cacheValid
}

// InvalidateCache forces the next progress request to the network.
func (c *ChallengeCampaign) InvalidateCache() {
	c.cached = gjson.Result{}
	c.cacheValid = false
}

func (c *ChallengeCampaign) storeResponse(data gjson.Result) {
	c.cached = data
	c.cacheValid = true
}

func (c *ChallengeCampaign) breadcrumb(kind, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	c.env.warnf("campaign %s: %s", c.id, msg)
	c.env.Breadcrumbs.Record(c.id, kind, msg)
}

// OnProgressUpdate reconciles the campaign with a server progress snapshot.
func (c *ChallengeCampaign) OnProgressUpdate(data gjson.Result) {
	defer c.resolveWaiters(data)
	c.storeResponse(data)
	if c.State == StateReplay {
		c.State = StateInProgress
	}
	if len(c.Missions) == 0 {
		c.env.warnf("campaign %s: progress update with no missions", c.id)
		return
	}
	idxField := data.Get("event_index")
	if !idxField.Exists() || idxField.Int() < 0 {
		c.breadcrumb("bad_event_index", "progress update event_index=%q", idxField.Raw)
		return
	}
	idx := int(idxField.Int())
	if !c.startingSet {
		c.StartingEventIndex = idx
		c.startingSet = true
	}

	pastEnd := idx >= len(c.Missions)
	if pastEnd {
		idx = len(c.Missions) - 1
	}
	c.CurrentEventIndex = idx
	for i := 0; i < idx; i++ {
		if !c.Missions[i].IsComplete() {
			c.Missions[i].Complete()
		}
	}
	c.refreshGameKeys()
	c.resolveSymbols()

	mission := c.Missions[idx]
	if pastEnd {
		mission.Complete()
		c.State = StateComplete
		return
	}
	types := intList(data.Get("types"))
	if !mission.ApplyProgress(types, intList(data.Get("constraints"))) {
		c.breadcrumb("progress_length_mismatch", "event %d: got %d progress values for %d objectives",
			idx, len(types), len(mission.Objectives))
	}
}

// OnProgressReset resets the mission named by event_index for a replay.
func (c *ChallengeCampaign) OnProgressReset(data gjson.Result) {
	idxField := data.Get("event_index")
	idx := int(idxField.Int())
	if !idxField.Exists() || idx < 0 || idx >= len(c.Missions) {
		c.breadcrumb("reset_out_of_range", "reset event_index=%s with %d missions", idxField.Raw, len(c.Missions))
		return
	}
	c.resetMission(c.Missions[idx])
}

func (c *ChallengeCampaign) resetMission(m *Mission) {
	m.ResetProgress(c.ReplayRewardRatio, c.ReplayGoalRatio)
	c.InvalidateCache()
	c.env.infof("campaign %s: mission %d reset", c.id, m.Index)
	c.env.Presenter.ShowTypeReset(c.id, m.Index)
	id := c.id
	c.env.Scheduler.AtEndOfTick(func() { c.env.Presenter.RefreshUI(id) })
}

// CanRestart reports whether a replay may start. An unfinished repeatable
// campaign may always restart; a completed one is capped by MaxReplayLimit.
func (c *ChallengeCampaign) CanRestart() bool {
	return c.ShouldRepeat && (c.ReplayCount < c.MaxReplayLimit || c.State != StateComplete)
}

// Restart begins a replay. Missions are reset with the replay ratios and the
// campaign waits in StateReplay for the next progress update.
func (c *ChallengeCampaign) Restart() error {
	if !c.self.CanRestart() {
		c.env.errorf("campaign %s: restart not allowed (repeat=%t replays=%d/%d state=%s)",
			c.id, c.ShouldRepeat, c.ReplayCount, c.MaxReplayLimit, c.State)
		return ErrRestartNotAllowed
	}
	c.State = StateReplay
	c.CurrentEventIndex = 0
	c.StartingEventIndex = 0
	c.startingSet = false
	c.InvalidateCache()
	for _, m := range c.Missions {
		m.ResetProgress(c.ReplayRewardRatio, c.ReplayGoalRatio)
	}
	c.ReplayCount++
	c.unlocked = make(map[string]bool)
	c.refreshGameKeys()
	c.armTimer()
	c.env.Presenter.RefreshUI(c.id)
	c.requestProgress()
	return nil
}

// OnEnded handles the server withdrawing the campaign.
func (c *ChallengeCampaign) OnEnded() {
	if c.cancelTimer != nil {
		c.cancelTimer()
		c.cancelTimer = nil
	}
	c.State = StateEventOver
	c.env.infof("campaign %s: ended by server", c.id)
	c.env.Presenter.CampaignEnded(c.id)
}

func (c *ChallengeCampaign) requestProgress() {
	if c.hub != nil {
		c.hub.GetProgress(c.id, nil)
		return
	}
	c.env.Transport.RequestProgress(c.id)
}

// shutdown drops timers and in-flight work on director teardown.
func (c *ChallengeCampaign) shutdown() {
	if c.cancelTimer != nil {
		c.cancelTimer()
		c.cancelTimer = nil
	}
	c.drainState = drainState{}
}
