package campaign

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// ObjectiveKind selects the per-variant behaviour of an Objective.
type ObjectiveKind int

const (
	KindBasic ObjectiveKind = iota
	KindCollect
	KindXinY
	KindXDoneYTimes
)

func (k ObjectiveKind) String() string {
	switch k {
	case KindCollect:
		return "collect"
	case KindXinY:
		return "x_in_y"
	case KindXDoneYTimes:
		return "x_done_y_times"
	default:
		return "basic"
	}
}

// Objective type strings as the server sends them.
const (
	TypeSpin          = "spin"
	TypeWin           = "win"
	TypeWager         = "wager"
	TypeBigWin        = "big_win"
	TypeCollectSymbol = "collect_symbol"
	TypeOfAKind       = "of_a_kind"
	TypeXinY          = "x_in_y"
	TypeXDoneYTimes   = "x_done_y_times"
	TypeCollectCards  = "collect_cards"
	TypeCardPacks     = "collect_card_packs"
)

// collectionTypes need the card collections feature to be live.
var collectionTypes = map[string]bool{
	TypeCollectCards: true,
	TypeCardPacks:    true,
	"card_collection": true,
}

// Constraint is a sub-limit on an objective, e.g. "within 20 spins".
type Constraint struct {
	Type   string
	Amount int64
	Limit  int64
}

// Objective is a single countable goal inside a Mission.
type Objective struct {
	Index            int
	ID               int64
	Type             string
	Kind             ObjectiveKind
	AmountNeeded     int64
	BaseAmountNeeded int64
	CurrentAmount    int64
	MinWager         int64
	Games            []string
	Rewards          []*Reward
	Constraints      []Constraint
	Rank             int
	RewardCollected  bool

	Collect *CollectDetails
	XinY    *XinYDetails
	XDone   *XDoneDetails
}

func parseObjective(data gjson.Result, index int) *Objective {
	typ := strings.ToLower(firstString(data, "definition", "type"))
	needed := firstInt(data, "count", "target_count", "amount")
	o := &Objective{
		Index:            index,
		ID:               data.Get("id").Int(),
		Type:             typ,
		AmountNeeded:     needed,
		BaseAmountNeeded: needed,
		CurrentAmount:    firstInt(data, "current_count", "progress"),
		MinWager:         data.Get("min_wager").Int(),
		Games:            stringList(firstExisting(data, "games", "game")),
		Rewards:          parseRewards(data.Get("rewards"), SourceChallenge),
		Rank:             int(data.Get("rank").Int()),
		RewardCollected:  data.Get("reward_collect").Bool(),
	}
	if o.CurrentAmount < 0 {
		o.CurrentAmount = 0
	}
	o.Kind = objectiveKind(typ, data)
	switch o.Kind {
	case KindCollect:
		o.Collect = parseCollect(typ, data)
	case KindXinY:
		o.XinY = &XinYDetails{DisplayType: data.Get("display_constraint").String()}
		o.Constraints = parseConstraints(data)
	case KindXDoneYTimes:
		wins := data.Get("win_count").Int()
		o.XDone = &XDoneDetails{WinCount: wins, BaseWinCount: wins}
	}
	return o
}

func objectiveKind(typ string, data gjson.Result) ObjectiveKind {
	switch {
	case typ == TypeCollectSymbol || typ == TypeOfAKind || data.Get("symbol").Exists():
		return KindCollect
	case typ == TypeXDoneYTimes || data.Get("win_count").Exists():
		return KindXDoneYTimes
	case typ == TypeXinY || data.Get("constraint_count").Exists() || data.Get("constraint_data").Exists():
		return KindXinY
	default:
		return KindBasic
	}
}

// Game returns the first game key the objective is bound to, or "".
func (o *Objective) Game() string {
	if len(o.Games) == 0 {
		return ""
	}
	return o.Games[0]
}

// HasGame reports whether the objective is bound to game.
func (o *Objective) HasGame(game string) bool {
	for _, g := range o.Games {
		if g == game {
			return true
		}
	}
	return false
}

// NeedsCollections reports whether the objective depends on card collections.
func (o *Objective) NeedsCollections() bool {
	return collectionTypes[o.Type]
}

// Target is the threshold completion is measured against. X-done-Y-times
// objectives count completions against their win count instead.
func (o *Objective) Target() int64 {
	if o.Kind == KindXDoneYTimes && o.XDone != nil && o.XDone.WinCount > 0 {
		return o.XDone.WinCount
	}
	return o.AmountNeeded
}

// IsComplete holds when progress reached the target. Zero progress never
// counts, even against a zero target.
func (o *Objective) IsComplete() bool {
	return o.CurrentAmount > 0 && o.CurrentAmount >= o.Target()
}

// Progress returns completion as a fraction in [0, 1].
func (o *Objective) Progress() float64 {
	target := o.Target()
	if target <= 0 {
		if o.IsComplete() {
			return 1
		}
		return 0
	}
	p := float64(o.CurrentAmount) / float64(target)
	if p > 1 {
		return 1
	}
	return p
}

// UpdateProgress applies a server progress value. Progress only moves forward
// within a cycle; ResetProgress starts a new one. constraintAmounts, when its
// length matches, replaces the constraint counters.
func (o *Objective) UpdateProgress(current int64, constraintAmounts []int64) {
	if current > o.CurrentAmount {
		o.CurrentAmount = current
	}
	if len(constraintAmounts) > 0 && len(constraintAmounts) == len(o.Constraints) {
		for i := range o.Constraints {
			o.Constraints[i].Amount = constraintAmounts[i]
		}
	}
}

// ForceComplete fills progress and every constraint to its limit.
func (o *Objective) ForceComplete() {
	target := o.Target()
	if target < 1 {
		target = 1
	}
	if o.CurrentAmount < target {
		o.CurrentAmount = target
	}
	for i := range o.Constraints {
		o.Constraints[i].Amount = o.Constraints[i].Limit
	}
	for _, r := range o.Rewards {
		r.Unlock()
	}
}

// ResetProgress starts a new cycle with the goal and rewards scaled by the
// given percentages of their original values.
func (o *Objective) ResetProgress(rewardRatio, goalRatio int) {
	o.CurrentAmount = 0
	o.RewardCollected = false
	o.AmountNeeded = scalePercent(o.BaseAmountNeeded, goalRatio)
	if o.XDone != nil {
		o.XDone.WinCount = scalePercent(o.XDone.BaseWinCount, goalRatio)
	}
	for i := range o.Constraints {
		o.Constraints[i].Amount = 0
	}
	for _, r := range o.Rewards {
		r.Scale(rewardRatio)
	}
}

// ProgressText renders "current/target" plus the displayed constraint.
func (o *Objective) ProgressText() string {
	current := o.CurrentAmount
	target := o.Target()
	if target > 0 && current > target {
		current = target
	}
	text := fmt.Sprintf("%d/%d", current, target)
	if c := o.CurrentConstraint(); c != nil {
		text += fmt.Sprintf(" (%d/%d %s)", c.Amount, c.Limit, c.Type)
	}
	return text
}

// Description is a short human-readable summary used by logs and the API.
func (o *Objective) Description() string {
	switch o.Kind {
	case KindCollect:
		return o.Collect.describe(o.AmountNeeded)
	case KindXinY:
		if c := o.CurrentConstraint(); c != nil {
			return fmt.Sprintf("%s %d within %d %s", o.Type, o.AmountNeeded, c.Limit, c.Type)
		}
	case KindXDoneYTimes:
		return fmt.Sprintf("%s %dx, %d times", o.Type, o.AmountNeeded, o.Target())
	}
	return fmt.Sprintf("%s %d", o.Type, o.AmountNeeded)
}
