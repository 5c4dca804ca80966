package campaign

import (
	"strings"

	"github.com/tidwall/gjson"
)

// CompletionType is the completion_type of a queued completion event.
type CompletionType string

const (
	CompletionCampaign  CompletionType = "campaign_complete"
	CompletionMission   CompletionType = "event_complete"
	CompletionObjective CompletionType = "type_complete"
)

// drainOrder is the fixed order completion groups are presented in.
var drainOrder = []CompletionType{CompletionCampaign, CompletionMission, CompletionObjective}

// Completion is one objective/type-complete push waiting in a campaign queue.
type Completion struct {
	Experiment string
	Type       CompletionType
	EventIndex int
	Types      []int
	Raw        gjson.Result
}

// parseCompletion reads a completion push. Unknown completion types are
// treated as objective completions and reported with ok == false.
func parseCompletion(data gjson.Result) (c Completion, ok bool) {
	c = Completion{
		Experiment: data.Get("experiment").String(),
		Type:       CompletionType(strings.ToLower(data.Get("completion_type").String())),
		EventIndex: int(data.Get("event_index").Int()),
		Raw:        data,
	}
	for _, v := range intList(data.Get("types")) {
		c.Types = append(c.Types, int(v))
	}
	switch c.Type {
	case CompletionCampaign, CompletionMission, CompletionObjective:
		return c, true
	default:
		c.Type = CompletionObjective
		return c, false
	}
}

// stopsAutoSpin reports whether the completion ends a mission or the campaign.
func (c Completion) stopsAutoSpin() bool {
	return c.Type == CompletionCampaign || c.Type == CompletionMission
}

// groupCompletions buckets completions by type, preserving arrival order.
func groupCompletions(batch []Completion) map[CompletionType][]Completion {
	groups := make(map[CompletionType][]Completion, len(drainOrder))
	for _, c := range batch {
		groups[c.Type] = append(groups[c.Type], c)
	}
	return groups
}
