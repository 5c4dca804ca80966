package campaign

import (
	"sort"
	"strings"

	"github.com/tidwall/gjson"
)

// Inbound event names routed by Dispatch.
const (
	EventProgressUpdate = "challenge:progress"
	EventProgressReset  = "challenge:reset"
	EventTypeComplete   = "challenge:complete"
	EventCampaignLost   = "challenge:lost"
	EventRewardPack     = "challenge:reward_pack"
	EventFeatureUnlock  = "feature:unlock"
	EventFeatureTask    = "feature:task"
)

const directorOwner = "director"

// Director is the registry of live campaigns. It builds campaigns from
// server payloads, routes server events to them and brokers progress
// requests. All methods must be called from the owning loop.
type Director struct {
	env       *Env
	factories map[string]factory

	campaigns map[string]Campaign
	order     []string

	Robust   *RobustCampaign
	Partner  Campaign
	Eue      *EueCampaign
	RichPass *RichPassCampaign
	Seasonal *SeasonalCampaign
	lobby    []Campaign

	progressCallbacks map[string]func(gjson.Result)
	resetCallbacks    map[string]func(gjson.Result)
	tasks             map[string]*FeatureTask
	subs              map[string]map[string]func(gjson.Result)

	partnerData gjson.Result
}

// NewDirector returns an empty director. Nil collaborators in env are
// replaced with no-ops.
func NewDirector(env Env) *Director {
	env.fillDefaults()
	return &Director{
		env:               &env,
		factories:         defaultFactories(),
		progressCallbacks: make(map[string]func(gjson.Result)),
		resetCallbacks:    make(map[string]func(gjson.Result)),
		tasks:             make(map[string]*FeatureTask),
		subs:              make(map[string]map[string]func(gjson.Result)),
	}
}

// Settings returns the sanitized engine settings.
func (d *Director) Settings() Settings { return d.env.Settings }

// Teardown drops every campaign, callback, task and subscription.
func (d *Director) Teardown() {
	for _, c := range d.campaigns {
		c.base().shutdown()
	}
	d.campaigns = nil
	d.order = nil
	d.Robust, d.Partner, d.Eue, d.RichPass, d.Seasonal = nil, nil, nil, nil, nil
	d.lobby = nil
	d.progressCallbacks = make(map[string]func(gjson.Result))
	d.resetCallbacks = make(map[string]func(gjson.Result))
	d.tasks = make(map[string]*FeatureTask)
	d.subs = make(map[string]map[string]func(gjson.Result))
	d.partnerData = gjson.Result{}
	d.env.infof("director torn down")
}

// Populated reports whether PopulateAll has run since the last teardown.
func (d *Director) Populated() bool { return d.campaigns != nil }

// PopulateAll creates one campaign per entry of the login array. Entries
// without an experiment key are partner powerup payloads. Unlock events are
// listened for even when the array is empty.
func (d *Director) PopulateAll(data gjson.Result) {
	if d.campaigns == nil {
		d.campaigns = make(map[string]Campaign)
	}
	d.Subscribe(EventFeatureUnlock, directorOwner, d.HandleFeatureUnlock)

	var items []gjson.Result
	if data.IsArray() {
		items = data.Array()
	}
	if d.partnerData.Exists() {
		items = withPartnerData(items, d.partnerData)
	}
	if len(items) == 0 {
		d.env.infof("no campaigns in login data, waiting for unlocks")
		return
	}
	for _, item := range items {
		key := item.Get("experiment").String()
		if key == "" {
			key = KeyPartner
		}
		d.InitCampaign(item, key)
	}
}

// withPartnerData substitutes the out-of-band partner payload for the first
// in-array partner entry, or appends it when there is none.
func withPartnerData(items []gjson.Result, partner gjson.Result) []gjson.Result {
	out := make([]gjson.Result, 0, len(items)+1)
	replaced := false
	for _, item := range items {
		exp := item.Get("experiment").String()
		if exp == KeyPartner || exp == "" {
			if replaced {
				continue
			}
			item, replaced = partner, true
		}
		out = append(out, item)
	}
	if !replaced {
		out = append(out, partner)
	}
	return out
}

// SetPartnerPowerupData stores the out-of-band partner powerup payload. When
// the registry is already populated the campaign is created right away.
func (d *Director) SetPartnerPowerupData(data gjson.Result) {
	if !data.IsObject() {
		d.env.warnf("partner powerup payload is not an object")
		return
	}
	d.partnerData = data
	if d.campaigns != nil && d.campaigns[KeyPartner] == nil {
		d.InitCampaign(data, KeyPartner)
	}
}

// InitCampaign builds and registers the campaign for key. A key that is
// already registered is ignored. A campaign that disables itself during
// init is discarded.
func (d *Director) InitCampaign(data gjson.Result, key string) Campaign {
	if key == "" {
		d.env.warnf("init campaign without key")
		return nil
	}
	if !data.IsObject() {
		d.env.warnf("campaign %s: init payload missing", key)
		return nil
	}
	if d.campaigns == nil {
		d.campaigns = make(map[string]Campaign)
	}
	if _, dup := d.campaigns[key]; dup {
		d.env.warnf("campaign %s already registered, ignoring", key)
		return nil
	}
	build, ok := d.factories[key]
	if !ok {
		build = newLobbyCampaign
	}
	c := build(key, d.env, d)
	c.Init(data)
	if c.ForceDisabled() {
		d.env.warnf("campaign %s force disabled, not registering", key)
		c.base().shutdown()
		d.unsubscribeOwner(key)
		return nil
	}
	if !c.IsCampaignValid() {
		d.env.warnf("campaign %s: %s", key, c.base().ErrorString)
	}
	d.campaigns[key] = c
	d.order = append(d.order, key)
	switch v := c.(type) {
	case *RobustCampaign:
		d.Robust = v
	case *EueCampaign:
		d.Eue = v
	case *RichPassCampaign:
		d.RichPass = v
	case *SeasonalCampaign:
		d.Seasonal = v
	default:
		if c.Kind() == KindPartner {
			d.Partner = c
		} else {
			d.lobby = append(d.lobby, c)
		}
	}
	d.env.infof("campaign %s registered (%s, %d missions)", key, c.Kind(), len(c.base().Missions))
	return c
}

// Find returns the campaign registered under key, or nil.
func (d *Director) Find(key string) Campaign {
	c, ok := d.campaigns[key]
	if !ok {
		d.env.warnf("campaign %s not found", key)
		return nil
	}
	return c
}

// Campaigns returns every registered campaign in registration order.
func (d *Director) Campaigns() []Campaign {
	out := make([]Campaign, 0, len(d.order))
	for _, key := range d.order {
		out = append(out, d.campaigns[key])
	}
	return out
}

// LobbyCampaigns returns the campaigns without a named slot.
func (d *Director) LobbyCampaigns() []Campaign {
	return append([]Campaign(nil), d.lobby...)
}

// FindWithGame returns the first campaign with a mission using game.
func (d *Director) FindWithGame(game string) Campaign {
	for _, c := range d.Campaigns() {
		if c.FindWithGame(game) != nil {
			return c
		}
	}
	return nil
}

// FindWithGameMatching restricts FindWithGame to keys containing pattern.
func (d *Director) FindWithGameMatching(pattern, game string) Campaign {
	for _, c := range d.Campaigns() {
		if strings.Contains(c.ID(), pattern) && c.FindWithGame(game) != nil {
			return c
		}
	}
	return nil
}

// FindAllCampaignsWithGame returns every campaign with a mission using game.
func (d *Director) FindAllCampaignsWithGame(game string) []Campaign {
	var out []Campaign
	for _, c := range d.Campaigns() {
		if c.FindWithGame(game) != nil {
			out = append(out, c)
		}
	}
	return out
}

// GetProgress delivers progress for campaignID. A cached snapshot is replayed
// synchronously through the campaign and cb. Otherwise cb is kept, if no
// other callback is pending for the id, and a request goes out. An empty id
// replays every cache and always asks for all campaigns.
func (d *Director) GetProgress(campaignID string, cb func(gjson.Result)) {
	if campaignID != "" {
		c := d.campaigns[campaignID]
		if c == nil {
			d.env.warnf("progress requested for unknown campaign %s", campaignID)
		} else if resp, ok := c.CachedResponse(); ok {
			c.OnProgressUpdate(resp)
			if cb != nil {
				cb(resp)
			}
			return
		}
	} else {
		for _, c := range d.Campaigns() {
			if resp, ok := c.CachedResponse(); ok {
				c.OnProgressUpdate(resp)
			}
		}
	}
	if cb != nil {
		if _, pending := d.progressCallbacks[campaignID]; !pending {
			d.progressCallbacks[campaignID] = cb
		}
	}
	d.env.Transport.RequestProgress(campaignID)
}

// RefreshSymbols retries deferred symbol names after game metadata changed.
// Campaigns that resolved a name get a UI refresh.
func (d *Director) RefreshSymbols() {
	for _, c := range d.Campaigns() {
		if c.base().resolveSymbols() {
			d.env.Presenter.RefreshUI(c.ID())
		}
	}
}

// InvalidateCachedProgress clears every campaign's cached snapshot.
func (d *Director) InvalidateCachedProgress() {
	for _, c := range d.campaigns {
		c.InvalidateCache()
	}
}

// RequestReset asks the server to reset one mission. cb fires once with the
// reset push.
func (d *Director) RequestReset(campaignID string, eventIndex int, cb func(gjson.Result)) {
	if d.campaigns[campaignID] == nil {
		d.env.errorf("reset requested for unknown campaign %s", campaignID)
		return
	}
	if cb != nil {
		if _, pending := d.resetCallbacks[campaignID]; !pending {
			d.resetCallbacks[campaignID] = cb
		}
	}
	d.env.Transport.RequestReset(campaignID, eventIndex)
}

// Dispatch routes a server event by name. Subscribers for the event run
// after the built-in handling.
func (d *Director) Dispatch(event string, payload gjson.Result) {
	switch event {
	case EventProgressUpdate:
		d.HandleProgressUpdate(payload)
	case EventProgressReset:
		d.HandleProgressReset(payload)
	case EventTypeComplete:
		d.HandleTypeComplete(payload)
	case EventCampaignLost:
		d.HandleCampaignLost(payload)
	case EventFeatureTask:
		d.HandleFeatureTask(payload)
	}
	d.notify(event, payload)
}

func (d *Director) lookup(payload gjson.Result, event string) Campaign {
	key := payload.Get("experiment").String()
	if key == "" {
		d.env.warnf("%s without experiment", event)
		return nil
	}
	c := d.campaigns[key]
	if c == nil {
		d.env.warnf("%s for unregistered campaign %s", event, key)
	}
	return c
}

// HandleProgressUpdate applies a progress push and fires the one-shot
// callback waiting on it, plus any waiting on a broadcast request.
func (d *Director) HandleProgressUpdate(payload gjson.Result) {
	c := d.lookup(payload, EventProgressUpdate)
	if c == nil {
		return
	}
	c.OnProgressUpdate(payload)
	d.fireOnce(d.progressCallbacks, c.ID(), payload)
	d.fireOnce(d.progressCallbacks, "", payload)
}

// HandleProgressReset applies a reset push and fires its one-shot callback.
func (d *Director) HandleProgressReset(payload gjson.Result) {
	c := d.lookup(payload, EventProgressReset)
	if c == nil {
		return
	}
	c.OnProgressReset(payload)
	d.fireOnce(d.resetCallbacks, c.ID(), payload)
}

// HandleTypeComplete queues a completion on its campaign.
func (d *Director) HandleTypeComplete(payload gjson.Result) {
	if c := d.lookup(payload, EventTypeComplete); c != nil {
		c.AddTypeCompleteDataToQueue(payload)
	}
}

// HandleCampaignLost ends one of the well-known campaigns.
func (d *Director) HandleCampaignLost(payload gjson.Result) {
	key := payload.Get("experiment").String()
	switch key {
	case KeyRobust, KeyPartner, KeyEue, KeyRichPass, KeySeasonal:
		if c := d.campaigns[key]; c != nil {
			c.OnEnded()
			return
		}
		d.env.warnf("campaign lost for unregistered %s", key)
	default:
		d.env.warnf("campaign lost for unhandled key %q", key)
	}
}

// HandleFeatureUnlock creates a campaign unlocked mid-session. A payload
// without an experiment is the partner powerup.
func (d *Director) HandleFeatureUnlock(payload gjson.Result) {
	key := payload.Get("experiment").String()
	if key == "" {
		d.SetPartnerPowerupData(payload)
		return
	}
	if c := d.InitCampaign(payload, key); c != nil {
		d.GetProgress(key, nil)
	}
}

// HandleFeatureTask updates a feature task from a push.
func (d *Director) HandleFeatureTask(payload gjson.Result) {
	key := firstString(payload, "key", "task", "task_key")
	d.SetTaskData(key, payload, nil)
}

// OnGameIdle lets campaigns start drains that were held while busy.
func (d *Director) OnGameIdle() {
	for _, c := range d.Campaigns() {
		c.OnGameIdle()
	}
}

// Subscribe registers fn for event under owner, replacing any earlier
// handler of the same owner.
func (d *Director) Subscribe(event, owner string, fn func(gjson.Result)) {
	if fn == nil {
		d.Unsubscribe(event, owner)
		return
	}
	byOwner := d.subs[event]
	if byOwner == nil {
		byOwner = make(map[string]func(gjson.Result))
		d.subs[event] = byOwner
	}
	byOwner[owner] = fn
}

// Unsubscribe removes owner's handler for event.
func (d *Director) Unsubscribe(event, owner string) {
	delete(d.subs[event], owner)
}

func (d *Director) unsubscribeOwner(owner string) {
	for _, byOwner := range d.subs {
		delete(byOwner, owner)
	}
}

// Subscribers returns the number of handlers for event.
func (d *Director) Subscribers(event string) int {
	return len(d.subs[event])
}

func (d *Director) notify(event string, payload gjson.Result) {
	byOwner := d.subs[event]
	if len(byOwner) == 0 {
		return
	}
	owners := make([]string, 0, len(byOwner))
	for o := range byOwner {
		owners = append(owners, o)
	}
	sort.Strings(owners)
	for _, o := range owners {
		if fn := byOwner[o]; fn != nil {
			fn(payload)
		}
	}
}

func (d *Director) fireOnce(callbacks map[string]func(gjson.Result), key string, payload gjson.Result) {
	cb, ok := callbacks[key]
	if !ok {
		return
	}
	delete(callbacks, key)
	cb(payload)
}
