package campaign

import "time"

// Summary is a read-only snapshot of a campaign for inspection.
type Summary struct {
	ID                 string           `json:"id"`
	Kind               Kind             `json:"kind"`
	Variant            string           `json:"variant"`
	State              State            `json:"state"`
	Enabled            bool             `json:"enabled"`
	Active             bool             `json:"active"`
	StartTime          *time.Time       `json:"start_time,omitempty"`
	EndTime            *time.Time       `json:"end_time,omitempty"`
	CurrentEventIndex  int              `json:"current_event_index"`
	StartingEventIndex int              `json:"starting_event_index"`
	ReplayCount        int              `json:"replay_count"`
	MaxReplayLimit     int              `json:"max_replay_limit"`
	CanRestart         bool             `json:"can_restart"`
	LobbyValid         string           `json:"lobby_valid"`
	CampaignValid      bool             `json:"campaign_valid"`
	Error              string           `json:"error,omitempty"`
	QueuedCompletions  int              `json:"queued_completions"`
	DrainPending       bool             `json:"drain_pending"`
	Games              []string         `json:"games,omitempty"`
	FTUE               bool             `json:"ftue,omitempty"`
	AudioPack          string           `json:"audio_pack,omitempty"`
	RewardPacks        int              `json:"reward_packs,omitempty"`
	Missions           []MissionSummary `json:"missions"`
}

// MissionSummary is one mission inside a Summary.
type MissionSummary struct {
	Index           int                `json:"index"`
	ID              int64              `json:"id,omitempty"`
	GroupID         int64              `json:"group_id,omitempty"`
	Complete        bool               `json:"complete"`
	HasMadeProgress bool               `json:"has_made_progress"`
	Dialogs         map[string]Dialog  `json:"dialogs,omitempty"`
	Objectives      []ObjectiveSummary `json:"objectives"`
}

// ObjectiveSummary is one objective inside a MissionSummary.
type ObjectiveSummary struct {
	ID          int64    `json:"id"`
	Type        string   `json:"type"`
	Kind        string   `json:"kind"`
	Description string   `json:"description"`
	Current     int64    `json:"current"`
	Target      int64    `json:"target"`
	Progress    string   `json:"progress"`
	Complete    bool     `json:"complete"`
	Games       []string `json:"games,omitempty"`
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// Summary snapshots the campaign.
func (c *ChallengeCampaign) Summary() Summary {
	s := Summary{
		ID:                 c.id,
		Kind:               c.kind,
		Variant:            c.Variant,
		State:              c.State,
		Enabled:            c.self.IsEnabled(),
		Active:             c.self.IsActive(),
		StartTime:          optionalTime(c.Window.Start),
		EndTime:            optionalTime(c.Window.End),
		CurrentEventIndex:  c.CurrentEventIndex,
		StartingEventIndex: c.StartingEventIndex,
		ReplayCount:        c.ReplayCount,
		MaxReplayLimit:     c.MaxReplayLimit,
		CanRestart:         c.self.CanRestart(),
		LobbyValid:         c.lobbyValid.String(),
		CampaignValid:      c.self.IsCampaignValid(),
		Error:              c.ErrorString,
		QueuedCompletions:  len(c.queue),
		DrainPending:       c.drainPending,
		Games:              c.gameKeys,
	}
	for _, m := range c.Missions {
		ms := MissionSummary{
			Index:           m.Index,
			ID:              m.ID,
			GroupID:         m.GroupID,
			Complete:        m.IsComplete(),
			HasMadeProgress: m.HasMadeProgress(),
			Dialogs:         m.Dialogs,
		}
		for _, o := range m.Objectives {
			ms.Objectives = append(ms.Objectives, ObjectiveSummary{
				ID:          o.ID,
				Type:        o.Type,
				Kind:        o.Kind.String(),
				Description: o.Description(),
				Current:     o.CurrentAmount,
				Target:      o.Target(),
				Progress:    o.ProgressText(),
				Complete:    o.IsComplete(),
				Games:       o.Games,
			})
		}
		s.Missions = append(s.Missions, ms)
	}
	return s
}
