package campaign

import (
	"time"

	"github.com/tidwall/gjson"
)

// FeatureTask is a standalone tracked task, independent of any campaign.
type FeatureTask struct {
	Key      string
	Type     string
	Progress int64
	Target   int64
	Expiry   time.Time

	complete   bool
	fired      bool
	onComplete func(*FeatureTask)
}

func parseTask(key string, data gjson.Result) *FeatureTask {
	return &FeatureTask{
		Key:      key,
		Type:     data.Get("type").String(),
		Progress: data.Get("progress").Int(),
		Target:   data.Get("target").Int(),
		Expiry:   epochTime(data.Get("expiry")),
		complete: data.Get("complete").Bool(),
	}
}

// IsComplete reports the completion flag.
func (t *FeatureTask) IsComplete() bool { return t.complete }

// Fired reports whether the completion handler has run.
func (t *FeatureTask) Fired() bool { return t.fired }

// SetComplete marks the task complete. The handler runs on the first
// transition only; the reference is dropped once it has fired.
func (t *FeatureTask) SetComplete() {
	if t.complete {
		return
	}
	t.complete = true
	t.fire()
}

func (t *FeatureTask) fire() {
	if t.fired {
		return
	}
	t.fired = true
	h := t.onComplete
	t.onComplete = nil
	if h != nil {
		h(t)
	}
}

// GetTask returns the task most recently set for key, or nil.
func (d *Director) GetTask(key string) *FeatureTask {
	return d.tasks[key]
}

// SetTaskData replaces the task for key. The completion handler carries over
// from the previous task unless cb replaces it, and fires once when the task
// goes from incomplete (or absent) to complete.
func (d *Director) SetTaskData(key string, data gjson.Result, cb func(*FeatureTask)) *FeatureTask {
	if key == "" {
		d.env.warnf("feature task without key")
		return nil
	}
	prev := d.tasks[key]
	t := parseTask(key, data)
	wasComplete := false
	if prev != nil {
		wasComplete = prev.complete
		t.fired = prev.fired
		t.onComplete = prev.onComplete
	}
	if cb != nil && !t.fired {
		t.onComplete = cb
	}
	d.tasks[key] = t
	if t.complete && !wasComplete {
		t.fire()
	}
	return t
}
