package campaign

import "testing"

func TestRewardCollectOncePerUnlock(t *testing.T) {
	r := parseReward(parse(`{"definition":"coins","count":250}`), SourceChallenge)
	if r.Type != RewardCredits {
		t.Fatalf("expected coins to normalize to credits, got %s", r.Type)
	}
	if _, ok := r.Collect(); ok {
		t.Fatalf("expected locked reward not to collect")
	}
	r.Unlock()
	amount, ok := r.Collect()
	if !ok || amount != 250 {
		t.Fatalf("expected 250 on first collect, got %d (%t)", amount, ok)
	}
	r.Unlock()
	if _, ok := r.Collect(); ok {
		t.Fatalf("expected second collect to be refused")
	}
}

func TestRewardScaleRelocksAndRounds(t *testing.T) {
	r := parseReward(parse(`{"type":"credits","amount":3}`), SourceMission)
	r.Unlock()
	r.Collect()

	r.Scale(50)
	if r.Amount != 2 {
		t.Fatalf("expected 1.5 to round to 2, got %d", r.Amount)
	}
	if r.Unlocked() || r.Collected() {
		t.Fatalf("expected scale to relock the reward")
	}
	r.Scale(0)
	if r.Amount != 3 {
		t.Fatalf("expected non-positive ratio to keep base amount, got %d", r.Amount)
	}
}

func TestScalePercent(t *testing.T) {
	cases := []struct {
		base  int64
		ratio int
		want  int64
	}{
		{10, 150, 15},
		{5, 150, 8},
		{7, 100, 7},
		{1, 10, 0},
		{9, -1, 9},
	}
	for _, tc := range cases {
		if got := scalePercent(tc.base, tc.ratio); got != tc.want {
			t.Fatalf("scalePercent(%d, %d): expected %d, got %d", tc.base, tc.ratio, tc.want, got)
		}
	}
}

func TestParseRewardsSkipsNonObjects(t *testing.T) {
	rs := parseRewards(parse(`[{"definition":"xp","count":5},"junk",{"definition":"mystery"}]`), SourceChallenge)
	if len(rs) != 2 {
		t.Fatalf("expected 2 rewards, got %d", len(rs))
	}
	if rs[1].Type != RewardUnknown {
		t.Fatalf("expected unknown type, got %s", rs[1].Type)
	}
	if total := sumCredits(rs); !total.IsZero() {
		t.Fatalf("expected no credits, got %s", total)
	}
}
