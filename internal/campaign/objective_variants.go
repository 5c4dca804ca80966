package campaign

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// symbolPlaceholder is shown until a symbol name can be formatted.
const symbolPlaceholder = "?"

// CollectMode distinguishes the two collect objective flavours.
type CollectMode int

const (
	// CollectMatchSymbol counts N landed copies of one symbol.
	CollectMatchSymbol CollectMode = iota
	// CollectOfAKind counts wins of N-of-a-kind on the symbol.
	CollectOfAKind
)

// CollectDetails carry the symbol a collect objective is about.
type CollectDetails struct {
	Mode      CollectMode
	Symbol    string
	Reels     int
	FullStack bool

	// DisplaySymbol is the formatted name, or the placeholder while
	// NeedsFormat is set.
	DisplaySymbol string
	NeedsFormat   bool
}

func parseCollect(typ string, data gjson.Result) *CollectDetails {
	mode := CollectMatchSymbol
	if typ == TypeOfAKind || data.Get("of_a_kind").Bool() {
		mode = CollectOfAKind
	}
	return &CollectDetails{
		Mode:          mode,
		Symbol:        data.Get("symbol").String(),
		Reels:         int(data.Get("reels").Int()),
		FullStack:     data.Get("full_stack").Bool(),
		DisplaySymbol: symbolPlaceholder,
		NeedsFormat:   true,
	}
}

func (c *CollectDetails) describe(amount int64) string {
	if c == nil {
		return fmt.Sprintf("collect %d", amount)
	}
	if c.Mode == CollectOfAKind {
		return fmt.Sprintf("%d of a kind %s", c.Reels, c.DisplaySymbol)
	}
	suffix := ""
	if c.FullStack {
		suffix = " full stacks"
	}
	return fmt.Sprintf("collect %d %s%s", amount, c.DisplaySymbol, suffix)
}

// ResolveSymbol formats the collect symbol name once game metadata knows it.
// It returns true when the name is resolved. Until then the placeholder stays
// and NeedsFormat remains set so a later call can retry.
func (o *Objective) ResolveSymbol(names SymbolNames) bool {
	if o.Collect == nil {
		return true
	}
	c := o.Collect
	if !c.NeedsFormat {
		return true
	}
	if c.Symbol == "" || names == nil {
		return false
	}
	games := append(append([]string(nil), o.Games...), "")
	for _, game := range games {
		if name, ok := names.SymbolName(game, c.Symbol); ok && name != "" {
			c.DisplaySymbol = name
			c.NeedsFormat = false
			return true
		}
	}
	c.DisplaySymbol = symbolPlaceholder
	return false
}

// XinYDetails carry which constraint the UI shows.
type XinYDetails struct {
	DisplayType string
}

// parseConstraints accepts either a single constraint_count (with an optional
// constraint_type) or a constraint_data array.
func parseConstraints(data gjson.Result) []Constraint {
	if arr := data.Get("constraint_data"); arr.IsArray() {
		items := arr.Array()
		out := make([]Constraint, 0, len(items))
		for _, item := range items {
			out = append(out, Constraint{
				Type:   strings.ToLower(firstString(item, "type", "definition")),
				Amount: firstInt(item, "amount", "current_count"),
				Limit:  firstInt(item, "limit", "count"),
			})
		}
		return out
	}
	if count := data.Get("constraint_count"); count.Exists() {
		typ := strings.ToLower(data.Get("constraint_type").String())
		if typ == "" {
			typ = "spins"
		}
		return []Constraint{{Type: typ, Limit: count.Int()}}
	}
	return nil
}

// CurrentConstraint returns the displayed constraint: the one matching the
// selected type, else the first one. Nil when there are none.
func (o *Objective) CurrentConstraint() *Constraint {
	if len(o.Constraints) == 0 {
		return nil
	}
	if o.XinY != nil && o.XinY.DisplayType != "" {
		for i := range o.Constraints {
			if o.Constraints[i].Type == o.XinY.DisplayType {
				return &o.Constraints[i]
			}
		}
	}
	return &o.Constraints[0]
}

// SelectConstraint picks the displayed constraint by type. It reports false
// and leaves the selection alone when no constraint has that type.
func (o *Objective) SelectConstraint(typ string) bool {
	typ = strings.ToLower(typ)
	for _, c := range o.Constraints {
		if c.Type == typ {
			if o.XinY == nil {
				o.XinY = &XinYDetails{}
			}
			o.XinY.DisplayType = typ
			return true
		}
	}
	return false
}

// XDoneDetails hold the second threshold of an x-done-y-times objective:
// AmountNeeded is the size of one qualifying event and WinCount how many of
// them are needed.
type XDoneDetails struct {
	WinCount     int64
	BaseWinCount int64
}
