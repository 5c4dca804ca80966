package campaign

import "github.com/tidwall/gjson"

// RobustCampaign is the main challenge campaign. It adds reward packs pushed
// on a side channel, an audio pack, first-time-user detection and per-mission
// aggregation of completion UI.
type RobustCampaign struct {
	*ChallengeCampaign

	AudioPack   string
	IsFTUE      bool
	RewardPacks map[int][]*Reward

	ftueChecked bool
}

func newRobustCampaign(id string, env *Env, h hub) Campaign {
	r := &RobustCampaign{
		ChallengeCampaign: newChallengeCampaign(KindRobust, id, env, h),
		RewardPacks:       make(map[int][]*Reward),
	}
	r.self = r
	return r
}

func (r *RobustCampaign) Init(data gjson.Result) {
	r.AudioPack = data.Get("audio_pack").String()
	if r.AudioPack != "" && !r.env.Assets.BundleLoaded(r.AudioPack) {
		r.env.warnf("campaign %s: audio pack %q not loaded, using default sounds", r.id, r.AudioPack)
		r.AudioPack = ""
	}
	if !r.ftueChecked {
		r.IsFTUE = r.env.Game.LifetimeSpins() < r.env.Settings.FTUESpinThreshold
		r.ftueChecked = true
	}
	r.ChallengeCampaign.Init(data)
}

func (r *RobustCampaign) registerEvents() {
	if r.hub == nil {
		return
	}
	r.hub.Subscribe(EventRewardPack, r.id, r.onRewardPack)
}

func (r *RobustCampaign) onRewardPack(data gjson.Result) {
	if exp := data.Get("experiment").String(); exp != "" && exp != r.id {
		return
	}
	idx := int(data.Get("event_index").Int())
	packs := parseRewards(data.Get("rewards"), SourceMission)
	if len(packs) == 0 {
		r.env.warnf("campaign %s: reward pack for event %d has no rewards", r.id, idx)
		return
	}
	r.RewardPacks[idx] = append(r.RewardPacks[idx], packs...)
}

// Summary adds the first-time flag, audio pack and held reward packs.
func (r *RobustCampaign) Summary() Summary {
	s := r.ChallengeCampaign.Summary()
	s.FTUE = r.IsFTUE
	s.AudioPack = r.AudioPack
	for _, packs := range r.RewardPacks {
		s.RewardPacks += len(packs)
	}
	return s
}

func (r *RobustCampaign) checkCampaignValid() bool {
	return r.Variant != "" && len(r.Missions) > 0
}

func (r *RobustCampaign) showCampaignComplete(batch []Completion) {
	r.State = StateComplete
	paid := r.collectAll()
	r.env.Presenter.ShowCampaignComplete(r.id, batch)
	r.reportCredits(paid)
}

func (r *RobustCampaign) showMissionComplete(batch []Completion) {
	for _, g := range byEventIndex(batch) {
		var paid []*Reward
		for _, comp := range g.items {
			paid = append(paid, r.collectMission(comp)...)
		}
		paid = append(paid, r.collectPack(g.index)...)
		r.env.Presenter.ShowMissionComplete(r.id, g.index, g.items)
		r.reportCredits(paid)
		r.env.Presenter.BadgeAnimation(r.id, g.index)
	}
}

func (r *RobustCampaign) showTypeComplete(batch []Completion) {
	for _, g := range byEventIndex(batch) {
		var paid []*Reward
		for _, comp := range g.items {
			paid = append(paid, r.collectTypes(comp)...)
		}
		r.env.Presenter.ShowTypeComplete(r.id, g.index, g.items)
		r.reportCredits(paid)
		r.env.Presenter.BadgeAnimation(r.id, g.index)
	}
}

func (r *RobustCampaign) collectPack(idx int) []*Reward {
	var paid []*Reward
	for _, p := range r.RewardPacks[idx] {
		p.Unlock()
		if _, ok := p.Collect(); ok {
			paid = append(paid, p)
		}
	}
	delete(r.RewardPacks, idx)
	return paid
}

func (r *RobustCampaign) reportCredits(paid []*Reward) {
	if total := sumCredits(paid); total.IsPositive() {
		r.env.Presenter.PendingCredits(r.id, total.IntPart())
	}
}

type eventGroup struct {
	index int
	items []Completion
}

// byEventIndex groups completions by mission index in first-arrival order.
func byEventIndex(batch []Completion) []eventGroup {
	var groups []eventGroup
	pos := make(map[int]int)
	for _, comp := range batch {
		i, ok := pos[comp.EventIndex]
		if !ok {
			i = len(groups)
			pos[comp.EventIndex] = i
			groups = append(groups, eventGroup{index: comp.EventIndex})
		}
		groups[i].items = append(groups[i].items, comp)
	}
	return groups
}
