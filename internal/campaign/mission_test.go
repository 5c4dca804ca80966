package campaign

import "testing"

const twoObjectiveMission = `{
	"types":[
		{"id":1,"definition":"spin","games":["gold_rush"],"count":10,"rewards":[{"definition":"credits","count":100}]},
		{"id":2,"definition":"win","games":["lucky_sevens","gold_rush"],"count":5,"constraint_count":20}
	],
	"rewards":[{"definition":"card_pack","count":1,"pack_key":"p1","rarity":3}],
	"dialogs":{"intro":"Welcome","complete":{"title":"Done","button":"Collect"}}
}`

func TestMissionParse(t *testing.T) {
	m := parseMission(parse(twoObjectiveMission), 4, SourceMission)
	if m.Index != 4 || len(m.Objectives) != 2 {
		t.Fatalf("expected mission 4 with 2 objectives, got %d/%d", m.Index, len(m.Objectives))
	}
	if len(m.ObjectivesForGame("gold_rush")) != 2 {
		t.Fatalf("expected both objectives indexed under gold_rush")
	}
	games := m.Games()
	if len(games) != 2 || games[0] != "gold_rush" || games[1] != "lucky_sevens" {
		t.Fatalf("unexpected games %v", games)
	}
	if m.Dialogs["intro"].Text != "Welcome" || m.Dialogs["complete"].ButtonLabel != "Collect" {
		t.Fatalf("unexpected dialogs %+v", m.Dialogs)
	}
	if m.Rewards[0].Type != RewardCardPack || m.Rewards[0].Rarity != 3 {
		t.Fatalf("unexpected mission reward %+v", *m.Rewards[0])
	}
}

func TestMissionMissingSectionsDefault(t *testing.T) {
	m := parseMission(parse(`{"challenges":[{"definition":"spin","count":1}]}`), 0, SourceMission)
	if len(m.Objectives) != 1 || m.Rewards != nil || len(m.Dialogs) != 0 {
		t.Fatalf("expected defaults for missing sections")
	}
}

func TestMissionCompleteIffAllObjectives(t *testing.T) {
	m := parseMission(parse(twoObjectiveMission), 0, SourceMission)
	if !m.ApplyProgress([]int64{10, 4}, nil) {
		t.Fatalf("expected matching progress to apply")
	}
	if m.IsComplete() {
		t.Fatalf("expected mission incomplete with one objective short")
	}
	if !m.HasMadeProgress() {
		t.Fatalf("expected progress flag to be set")
	}
	m.ApplyProgress([]int64{10, 5}, []int64{12})
	if !m.IsComplete() {
		t.Fatalf("expected mission complete")
	}
	if c := m.Objectives[1].CurrentConstraint(); c.Amount != 12 {
		t.Fatalf("expected constraint counter 12, got %d", c.Amount)
	}
	if !m.Rewards[0].Unlocked() {
		t.Fatalf("expected mission reward unlocked on completion")
	}
}

func TestMissionLengthMismatchLeavesProgress(t *testing.T) {
	m := parseMission(parse(twoObjectiveMission), 0, SourceMission)
	if m.ApplyProgress([]int64{3}, nil) {
		t.Fatalf("expected mismatch to be rejected")
	}
	if m.Objectives[0].CurrentAmount != 0 || m.HasMadeProgress() {
		t.Fatalf("expected progress untouched")
	}
}

func TestMissionProgressFlagIsSticky(t *testing.T) {
	m := parseMission(parse(twoObjectiveMission), 0, SourceMission)
	m.ApplyProgress([]int64{1, 0}, nil)
	m.ApplyProgress([]int64{0, 0}, nil)
	if !m.HasMadeProgress() {
		t.Fatalf("expected progress flag to stay set")
	}
	m.ResetProgress(100, 100)
	if m.HasMadeProgress() {
		t.Fatalf("expected reset to clear progress flag")
	}
}

func TestMissionForceComplete(t *testing.T) {
	m := parseMission(parse(`{"types":[{"definition":"spin","count":0},{"definition":"win","count":7}]}`), 0, SourceMission)
	m.Complete()
	if !m.IsComplete() {
		t.Fatalf("expected forced mission to be complete, including zero-target objectives")
	}
}

func TestEmptyMissionIsVacuouslyComplete(t *testing.T) {
	m := parseMission(parse(`{}`), 0, SourceMission)
	if !m.IsComplete() {
		t.Fatalf("expected mission without objectives to report complete")
	}
}

func TestMissionCollectUnlockedOnce(t *testing.T) {
	m := parseMission(parse(twoObjectiveMission), 0, SourceMission)
	m.ApplyProgress([]int64{10, 0}, nil)
	paid := m.collectUnlocked([]int{0}, false)
	if len(paid) != 1 || paid[0].Amount != 100 {
		t.Fatalf("expected objective reward paid once, got %d", len(paid))
	}
	if again := m.collectUnlocked([]int{0}, false); len(again) != 0 {
		t.Fatalf("expected no second payout, got %d", len(again))
	}
}
