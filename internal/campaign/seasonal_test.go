package campaign

import (
	"fmt"
	"strings"
	"testing"
	"time"
)

func (r *testRig) seasonalJSON(enabled bool) string {
	now := r.now.Unix()
	day := int64(24 * time.Hour / time.Second)
	return fmt.Sprintf(`{
		"experiment":"season_challenges","enabled":%t,"start_time":%d,"end_time":%d,
		"periodic":[
			{"id":11,"group_id":1,"start_time":%d,"end_time":%d,
			 "types":[{"id":101,"definition":"spin","games":["gold_rush"],"count":5}]},
			{"id":12,"group_id":1,"start_time":%d,"end_time":%d,
			 "types":[{"id":102,"definition":"spin","games":["gold_rush"],"count":5}]}
		],
		"seasonal":[
			{"id":21,"group_id":2,"types":[{"id":201,"definition":"win","games":["lucky_sevens"],"count":3}]}
		],
		"unlock_dates":[%d,%d]
	}`, enabled, now-day, now+30*day,
		now-3600, now+day, now+day, now+2*day,
		now+2*day, now+day)
}

func initSeasonal(t *testing.T, r *testRig, enabled bool) *SeasonalCampaign {
	t.Helper()
	c := r.director.InitCampaign(parse(r.seasonalJSON(enabled)), KeySeasonal)
	s, ok := c.(*SeasonalCampaign)
	if !ok {
		t.Fatalf("expected seasonal campaign, got %T", c)
	}
	return s
}

func TestSeasonalParse(t *testing.T) {
	r := newRig(t)
	s := initSeasonal(t, r, true)
	if len(s.Periodic) != 2 || len(s.SeasonMissions) != 1 || len(s.Missions) != 3 {
		t.Fatalf("unexpected layout: %d buckets, %d season, %d total",
			len(s.Periodic), len(s.SeasonMissions), len(s.Missions))
	}
	if r.director.Seasonal != s {
		t.Fatalf("expected seasonal slot filled")
	}
	if want := r.now.Add(24 * time.Hour); !s.NextUnlock(r.now).Equal(want) {
		t.Fatalf("expected next unlock %s, got %s", want, s.NextUnlock(r.now))
	}
	if cur := s.CurrentMission(); cur == nil || cur.ID != 11 {
		t.Fatalf("expected live periodic mission 11 current, got %+v", cur)
	}
}

func TestSeasonalEnabledFollowsWindow(t *testing.T) {
	r := newRig(t)
	s := initSeasonal(t, r, false)
	if !s.IsEnabled() {
		t.Fatalf("expected seasonal campaign enabled inside its window")
	}
	r.now = r.now.Add(60 * 24 * time.Hour)
	if s.IsEnabled() {
		t.Fatalf("expected seasonal campaign disabled after its window")
	}
}

func TestSeasonalProgressByPeriodicKey(t *testing.T) {
	r := newRig(t)
	s := initSeasonal(t, r, true)
	push := fmt.Sprintf(`{"experiment":"season_challenges","challenge_type":"periodic","challenge_start_time":%d,"group_id":1,"id":11,"types":[5]}`,
		r.now.Unix()-3600)
	r.director.Dispatch(EventProgressUpdate, parse(push))

	m := s.Periodic[r.now.Unix()-3600][0]
	if !m.IsComplete() {
		t.Fatalf("expected periodic mission 11 complete")
	}
	if cur := s.CurrentMission(); cur == nil || cur.ID != 21 {
		t.Fatalf("expected season mission current once periodic is done, got %+v", cur)
	}
}

func TestSeasonalLocateByObjectiveID(t *testing.T) {
	r := newRig(t)
	s := initSeasonal(t, r, true)
	r.director.Dispatch(EventProgressUpdate, parse(`{"experiment":"season_challenges","challenge_type":"seasonal","group_id":2,"id":201,"types":[2]}`))
	if got := s.SeasonMissions[0].Objectives[0].CurrentAmount; got != 2 {
		t.Fatalf("expected season objective at 2, got %d", got)
	}
}

func TestSeasonalUnknownTypeDefaultsToSeasonal(t *testing.T) {
	r := newRig(t)
	s := initSeasonal(t, r, true)
	r.director.Dispatch(EventProgressUpdate, parse(`{"experiment":"season_challenges","challenge_type":"weekly","group_id":2,"id":21,"types":[1]}`))
	if got := s.SeasonMissions[0].Objectives[0].CurrentAmount; got != 1 {
		t.Fatalf("expected push routed to season missions, got %d", got)
	}
}

func TestSeasonalMissionNotFound(t *testing.T) {
	r := newRig(t)
	initSeasonal(t, r, true)
	r.director.Dispatch(EventProgressUpdate, parse(`{"experiment":"season_challenges","challenge_type":"seasonal","group_id":9,"id":21,"types":[1]}`))
	if n := len(r.crumbs.kinds); n == 0 || r.crumbs.kinds[n-1] != "mission_not_found" {
		t.Fatalf("expected mission_not_found breadcrumb, got %v", r.crumbs.kinds)
	}
}

func TestSeasonalReset(t *testing.T) {
	r := newRig(t)
	s := initSeasonal(t, r, true)
	r.director.Dispatch(EventProgressUpdate, parse(`{"experiment":"season_challenges","challenge_type":"seasonal","group_id":2,"id":21,"types":[3]}`))
	if !s.SeasonMissions[0].IsComplete() {
		t.Fatalf("expected season mission complete")
	}
	r.director.Dispatch(EventProgressReset, parse(`{"experiment":"season_challenges","challenge_type":"seasonal","group_id":2,"id":21}`))
	if s.SeasonMissions[0].IsComplete() {
		t.Fatalf("expected reset season mission incomplete")
	}
	resets := r.presenter.named("type_reset")
	if len(resets) != 1 || resets[0].index != 2 {
		t.Fatalf("expected type reset for mission index 2, got %+v", resets)
	}
	r.loop.Tick()
	if len(r.presenter.named("refresh")) == 0 {
		t.Fatalf("expected deferred refresh after reset")
	}
}

func TestSeasonalCompletionLocatedByGroup(t *testing.T) {
	r := newRig(t)
	doc := strings.Replace(r.seasonalJSON(true), `"count":3}`, `"count":3,"rewards":[{"definition":"credits","count":40}]}`, 1)
	c := r.director.InitCampaign(parse(doc), KeySeasonal)
	s := c.(*SeasonalCampaign)

	r.director.Dispatch(EventTypeComplete, parse(
		`{"experiment":"season_challenges","completion_type":"type_complete","challenge_type":"seasonal","group_id":2,"id":201,"event_index":0,"types":[0]}`))
	r.loop.Tick()
	r.director.Dispatch(EventProgressUpdate, parse(
		`{"experiment":"season_challenges","challenge_type":"seasonal","group_id":2,"id":21,"types":[3]}`))

	if !s.SeasonMissions[0].Objectives[0].Rewards[0].Collected() {
		t.Fatalf("expected season mission 21 reward collected")
	}
	credits := r.presenter.named("pending_credits")
	if len(credits) != 0 {
		t.Fatalf("expected no pending credits from a base seasonal campaign, got %+v", credits)
	}
	for _, kind := range r.crumbs.kinds {
		if kind == "completion_out_of_range" || kind == "mission_not_found" {
			t.Fatalf("expected completion located, got breadcrumb %s", kind)
		}
	}
	if len(r.presenter.named("type_complete")) != 1 {
		t.Fatalf("expected one type complete, got %v", r.presenter.names())
	}
}
