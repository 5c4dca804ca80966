package campaign

import (
	"time"

	"github.com/tidwall/gjson"
)

// Dialog is the presentation copy for one mission state, e.g. "intro" or
// "complete".
type Dialog struct {
	Title       string `json:"title,omitempty"`        // Header line
	Text        string `json:"text,omitempty"`         // Body copy
	ButtonLabel string `json:"button_label,omitempty"` // Empty means the default label
	Image       string `json:"image,omitempty"`        // Optional art key
}

// Mission is one ordered step of a campaign.
type Mission struct {
	Index      int
	Objectives []*Objective
	Rewards    []*Reward
	Dialogs    map[string]Dialog

	// GameObjectives indexes Objectives by game key. Derived, rebuilt on parse.
	GameObjectives map[string][]*Objective

	// Season missions carry their own identity and window.
	ID        int64
	GroupID   int64
	StartTime time.Time
	EndTime   time.Time

	hasMadeProgress bool
}

func parseMission(data gjson.Result, index int, source RewardSource) *Mission {
	m := &Mission{
		Index:   index,
		Rewards: parseRewards(data.Get("rewards"), source),
		Dialogs: parseDialogs(data.Get("dialogs")),
	}
	defs := firstExisting(data, "types", "challenges")
	if defs.IsArray() {
		for i, def := range defs.Array() {
			if !def.IsObject() {
				continue
			}
			m.Objectives = append(m.Objectives, parseObjective(def, i))
		}
	}
	m.rebuildGameIndex()
	for _, o := range m.Objectives {
		if o.CurrentAmount > 0 {
			m.hasMadeProgress = true
		}
	}
	return m
}

// parseSeasonMission reads a mission keyed by numeric id with its own window.
func parseSeasonMission(data gjson.Result, index int) *Mission {
	m := parseMission(data, index, SourceMission)
	m.ID = data.Get("id").Int()
	m.GroupID = data.Get("group_id").Int()
	m.StartTime = epochTime(data.Get("start_time"))
	m.EndTime = epochTime(data.Get("end_time"))
	return m
}

func parseDialogs(data gjson.Result) map[string]Dialog {
	dialogs := make(map[string]Dialog)
	if !data.IsObject() {
		return dialogs
	}
	data.ForEach(func(state, v gjson.Result) bool {
		if v.Type == gjson.String {
			dialogs[state.String()] = Dialog{Text: v.String()}
			return true
		}
		dialogs[state.String()] = Dialog{
			Title:       firstString(v, "title", "header"),
			Text:        firstString(v, "text", "body"),
			ButtonLabel: firstString(v, "button", "button_label"),
			Image:       v.Get("image").String(),
		}
		return true
	})
	return dialogs
}

func (m *Mission) rebuildGameIndex() {
	m.GameObjectives = make(map[string][]*Objective)
	for _, o := range m.Objectives {
		for _, g := range o.Games {
			m.GameObjectives[g] = append(m.GameObjectives[g], o)
		}
	}
}

// IsComplete reports whether every objective is complete. A mission without
// objectives is vacuously complete.
func (m *Mission) IsComplete() bool {
	for _, o := range m.Objectives {
		if !o.IsComplete() {
			return false
		}
	}
	return true
}

// HasMadeProgress is sticky until the next ResetProgress.
func (m *Mission) HasMadeProgress() bool {
	return m.hasMadeProgress
}

// Complete force-completes every objective and unlocks the mission rewards.
func (m *Mission) Complete() {
	for _, o := range m.Objectives {
		o.ForceComplete()
	}
	for _, r := range m.Rewards {
		r.Unlock()
	}
	m.hasMadeProgress = true
}

// ResetProgress clears progress for a replay, scaling goals and rewards.
func (m *Mission) ResetProgress(rewardRatio, goalRatio int) {
	for _, o := range m.Objectives {
		o.ResetProgress(rewardRatio, goalRatio)
	}
	for _, r := range m.Rewards {
		r.Scale(rewardRatio)
	}
	m.hasMadeProgress = false
}

// ApplyProgress applies a server progress snapshot. types holds one value per
// objective; constraints is the flattened list of constraint counters across
// objectives in order. It returns false, leaving progress untouched, when
// types does not match the objective count.
func (m *Mission) ApplyProgress(types, constraints []int64) bool {
	if len(types) != len(m.Objectives) {
		return false
	}
	total := 0
	for _, o := range m.Objectives {
		total += len(o.Constraints)
	}
	useConstraints := total > 0 && len(constraints) == total
	offset := 0
	for i, o := range m.Objectives {
		var cs []int64
		if useConstraints {
			cs = constraints[offset : offset+len(o.Constraints)]
			offset += len(o.Constraints)
		}
		o.UpdateProgress(types[i], cs)
		if o.CurrentAmount > 0 {
			m.hasMadeProgress = true
		}
		if o.IsComplete() {
			for _, r := range o.Rewards {
				r.Unlock()
			}
		}
	}
	if m.IsComplete() {
		for _, r := range m.Rewards {
			r.Unlock()
		}
	}
	return true
}

// Games returns the distinct game keys of the mission in objective order.
func (m *Mission) Games() []string {
	var games []string
	seen := make(map[string]bool)
	for _, o := range m.Objectives {
		for _, g := range o.Games {
			if !seen[g] {
				seen[g] = true
				games = append(games, g)
			}
		}
	}
	return games
}

// ObjectivesForGame returns the objectives bound to game.
func (m *Mission) ObjectivesForGame(game string) []*Objective {
	return m.GameObjectives[game]
}

// HasGame reports whether any objective is bound to game.
func (m *Mission) HasGame(game string) bool {
	return len(m.GameObjectives[game]) > 0
}

// IsLive reports whether a season mission's own window contains now. Zero
// bounds are open.
func (m *Mission) IsLive(now time.Time) bool {
	return TimeRange{Start: m.StartTime, End: m.EndTime}.Contains(now)
}

// objective returns the objective at slot i, or nil.
func (m *Mission) objective(i int) *Objective {
	if i < 0 || i >= len(m.Objectives) {
		return nil
	}
	return m.Objectives[i]
}

// collectUnlocked pays out every unlocked, uncollected reward of the listed
// objective slots (all slots when slots is nil) and, when includeMission is
// set, the mission rewards.
func (m *Mission) collectUnlocked(slots []int, includeMission bool) []*Reward {
	var paid []*Reward
	collect := func(rs []*Reward) {
		for _, r := range rs {
			if _, ok := r.Collect(); ok {
				paid = append(paid, r)
			}
		}
	}
	if slots == nil {
		for _, o := range m.Objectives {
			if o.IsComplete() {
				collect(o.Rewards)
				o.RewardCollected = true
			}
		}
	} else {
		for _, i := range slots {
			if o := m.objective(i); o != nil {
				for _, r := range o.Rewards {
					r.Unlock()
				}
				collect(o.Rewards)
				o.RewardCollected = true
			}
		}
	}
	if includeMission {
		for _, r := range m.Rewards {
			r.Unlock()
		}
		collect(m.Rewards)
	}
	return paid
}
