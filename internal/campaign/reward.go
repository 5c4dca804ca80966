package campaign

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

// RewardType identifies what a reward pays out.
type RewardType string

const (
	RewardCredits   RewardType = "credits"
	RewardXP        RewardType = "xp"
	RewardVIPPoints RewardType = "vip_points"
	RewardCardPack  RewardType = "card_pack"
	RewardFreeSpins RewardType = "free_spins"
	RewardPassPoint RewardType = "pass_points"
	RewardPowerup   RewardType = "powerup"
	RewardUnknown   RewardType = "unknown"
)

// RewardSource tells which level of the hierarchy granted a reward.
type RewardSource int

const (
	// SourceChallenge rewards hang off a single objective.
	SourceChallenge RewardSource = iota
	// SourceMission rewards are paid once the whole mission is complete.
	SourceMission
	// SourcePass rewards belong to a pass track (free or gold tier).
	SourcePass
)

// Reward is a typed payout collectible once per unlock.
type Reward struct {
	Type       RewardType
	Source     RewardSource
	Amount     int64
	BaseAmount int64
	Games      []string

	// Card pack metadata.
	PackKey  string
	PackName string
	Rarity   int

	// Pass rewards only.
	Gold bool

	unlocked  bool
	collected bool
}

// parseReward reads one reward definition. Unknown types are kept with
// RewardUnknown so counts still render.
func parseReward(data gjson.Result, source RewardSource) *Reward {
	kind := firstString(data, "definition", "type")
	amount := firstInt(data, "count", "amount", "value")
	r := &Reward{
		Type:       normalizeRewardType(kind),
		Source:     source,
		Amount:     amount,
		BaseAmount: amount,
		Games:      stringList(data.Get("games")),
		PackKey:    firstString(data, "pack_key", "pack"),
		PackName:   data.Get("pack_name").String(),
		Rarity:     int(data.Get("rarity").Int()),
		Gold:       data.Get("is_gold").Bool() || strings.EqualFold(data.Get("tier").String(), "gold"),
	}
	return r
}

func parseRewards(data gjson.Result, source RewardSource) []*Reward {
	if !data.IsArray() {
		return nil
	}
	items := data.Array()
	out := make([]*Reward, 0, len(items))
	for _, item := range items {
		if !item.IsObject() {
			continue
		}
		out = append(out, parseReward(item, source))
	}
	return out
}

func normalizeRewardType(raw string) RewardType {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "credits", "coins", "coin":
		return RewardCredits
	case "xp", "experience":
		return RewardXP
	case "vip_points", "vip":
		return RewardVIPPoints
	case "card_pack", "pack", "cards":
		return RewardCardPack
	case "free_spins", "freespins":
		return RewardFreeSpins
	case "pass_points", "rich_pass_points", "elite_pass_points":
		return RewardPassPoint
	case "powerup", "power_up":
		return RewardPowerup
	default:
		return RewardUnknown
	}
}

// Unlock makes the reward collectible. Unlocking an already collected reward
// does not make it collectible again; only a replay reset does.
func (r *Reward) Unlock() {
	r.unlocked = true
}

// Unlocked reports whether the reward has been earned.
func (r *Reward) Unlocked() bool { return r.unlocked }

// Collected reports whether the reward has been paid out.
func (r *Reward) Collected() bool { return r.collected }

// Collect pays the reward out. It returns the amount and true exactly once per
// unlock; every other call returns 0, false.
func (r *Reward) Collect() (int64, bool) {
	if !r.unlocked || r.collected {
		return 0, false
	}
	r.collected = true
	return r.Amount, true
}

// Scale sets Amount to ratio percent of BaseAmount and relocks the reward.
// A ratio <= 0 keeps the base amount.
func (r *Reward) Scale(ratioPercent int) {
	r.Amount = scalePercent(r.BaseAmount, ratioPercent)
	r.unlocked = false
	r.collected = false
}

// IsCredits reports whether the reward pays credits.
func (r *Reward) IsCredits() bool { return r.Type == RewardCredits }

// scalePercent returns base * ratio / 100 rounded half away from zero.
func scalePercent(base int64, ratioPercent int) int64 {
	if ratioPercent <= 0 {
		return base
	}
	return decimal.NewFromInt(base).
		Mul(decimal.NewFromInt(int64(ratioPercent))).
		Div(decimal.NewFromInt(100)).
		Round(0).
		IntPart()
}

// sumCredits totals the credit amounts of rewards.
func sumCredits(rewards []*Reward) decimal.Decimal {
	total := decimal.Zero
	for _, r := range rewards {
		if r != nil && r.IsCredits() {
			total = total.Add(decimal.NewFromInt(r.Amount))
		}
	}
	return total
}
