package campaign

import (
	"sort"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Challenge types of seasonal progress and reset pushes.
const (
	ChallengePeriodic = "periodic"
	ChallengeSeasonal = "seasonal"
)

// SeasonalCampaign holds two mission sets: periodic missions bucketed by
// their start time and season-long missions. Missions are addressed by
// (bucket, group id, id) rather than by position.
type SeasonalCampaign struct {
	*ChallengeCampaign

	Periodic       map[int64][]*Mission
	SeasonMissions []*Mission
	UnlockDates    []time.Time
}

func newSeasonalCampaign(id string, env *Env, h hub) Campaign {
	s := &SeasonalCampaign{
		ChallengeCampaign: newChallengeCampaign(KindSeasonal, id, env, h),
		Periodic:          make(map[int64][]*Mission),
	}
	s.self = s
	return s
}

func bucketKey(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

func (s *SeasonalCampaign) parseMissions(data gjson.Result) []*Mission {
	s.Periodic = make(map[int64][]*Mission)
	s.SeasonMissions = nil
	s.UnlockDates = nil

	var all []*Mission
	for _, def := range data.Get("periodic").Array() {
		m := parseSeasonMission(def, len(all))
		key := bucketKey(m.StartTime)
		s.Periodic[key] = append(s.Periodic[key], m)
		all = append(all, m)
	}
	for _, def := range data.Get("seasonal").Array() {
		m := parseSeasonMission(def, len(all))
		s.SeasonMissions = append(s.SeasonMissions, m)
		all = append(all, m)
	}
	for _, v := range data.Get("unlock_dates").Array() {
		if t := epochTime(v); !t.IsZero() {
			s.UnlockDates = append(s.UnlockDates, t)
		}
	}
	sort.Slice(s.UnlockDates, func(i, j int) bool { return s.UnlockDates[i].Before(s.UnlockDates[j]) })
	if len(all) == 0 {
		s.env.warnf("campaign %s: no periodic or seasonal missions", s.id)
	}
	return all
}

// IsEnabled follows the time window only.
func (s *SeasonalCampaign) IsEnabled() bool {
	return s.Window.Contains(s.env.Scheduler.Now())
}

func (s *SeasonalCampaign) checkCampaignValid() bool {
	return len(s.Missions) > 0
}

// CurrentMission is the first unfinished live periodic mission, else the
// first unfinished season mission.
func (s *SeasonalCampaign) CurrentMission() *Mission {
	now := s.env.Scheduler.Now()
	for _, key := range s.bucketKeys() {
		for _, m := range s.Periodic[key] {
			if m.IsLive(now) && !m.IsComplete() {
				return m
			}
		}
	}
	for _, m := range s.SeasonMissions {
		if !m.IsComplete() {
			return m
		}
	}
	return nil
}

func (s *SeasonalCampaign) bucketKeys() []int64 {
	keys := make([]int64, 0, len(s.Periodic))
	for k := range s.Periodic {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// NextUnlock returns the first unlock date after now, or the zero time.
func (s *SeasonalCampaign) NextUnlock(now time.Time) time.Time {
	for _, t := range s.UnlockDates {
		if t.After(now) {
			return t
		}
	}
	return time.Time{}
}

// locate finds the mission a seasonal push addresses.
func (s *SeasonalCampaign) locate(data gjson.Result) *Mission {
	typ := strings.ToLower(data.Get("challenge_type").String())
	var pool []*Mission
	switch typ {
	case ChallengePeriodic:
		pool = s.Periodic[bucketKey(epochTime(data.Get("challenge_start_time")))]
	case ChallengeSeasonal:
		pool = s.SeasonMissions
	default:
		s.env.warnf("campaign %s: unknown challenge_type %q, using %s", s.id, typ, ChallengeSeasonal)
		pool = s.SeasonMissions
	}
	group := data.Get("group_id").Int()
	id := data.Get("id").Int()
	for _, m := range pool {
		if m.GroupID != group {
			continue
		}
		if m.ID == id {
			return m
		}
		for _, o := range m.Objectives {
			if o.ID == id {
				return m
			}
		}
	}
	s.breadcrumb("mission_not_found", "%s challenge start=%d group=%d id=%d",
		typ, data.Get("challenge_start_time").Int(), group, id)
	return nil
}

// completionMission addresses a completion the way progress pushes are
// addressed when it carries a challenge type or group id.
func (s *SeasonalCampaign) completionMission(comp Completion) *Mission {
	if comp.Raw.Get("challenge_type").Exists() || comp.Raw.Get("group_id").Exists() {
		return s.locate(comp.Raw)
	}
	return s.mission(comp.EventIndex)
}

func (s *SeasonalCampaign) OnProgressUpdate(data gjson.Result) {
	defer s.resolveWaiters(data)
	s.storeResponse(data)
	if s.State == StateReplay {
		s.State = StateInProgress
	}
	m := s.locate(data)
	if m == nil {
		return
	}
	types := intList(data.Get("types"))
	if !m.ApplyProgress(types, intList(data.Get("constraints"))) {
		s.breadcrumb("progress_length_mismatch", "mission %d: got %d progress values for %d objectives",
			m.ID, len(types), len(m.Objectives))
	}
	s.refreshGameKeys()
	s.resolveSymbols()
}

func (s *SeasonalCampaign) OnProgressReset(data gjson.Result) {
	if m := s.locate(data); m != nil {
		s.resetMission(m)
	}
}
