package campaign

import "testing"

func TestFeatureTaskFiresOnce(t *testing.T) {
	r := newRig(t)
	fired := 0
	r.director.SetTaskData("t1", parse(`{"type":"spins","progress":3,"target":10,"complete":false}`), func(*FeatureTask) { fired++ })
	if fired != 0 {
		t.Fatalf("expected no fire for incomplete task")
	}

	task := r.director.SetTaskData("t1", parse(`{"type":"spins","progress":10,"target":10,"complete":true}`), nil)
	if fired != 1 || !task.Fired() {
		t.Fatalf("expected carried-over handler to fire once, got %d", fired)
	}

	r.director.SetTaskData("t1", parse(`{"complete":true}`), func(*FeatureTask) { fired++ })
	if fired != 1 {
		t.Fatalf("expected no second fire, got %d", fired)
	}
	if got := r.director.GetTask("t1"); got == nil || !got.IsComplete() {
		t.Fatalf("expected latest task stored")
	}
}

func TestFeatureTaskCompleteOnFirstSight(t *testing.T) {
	r := newRig(t)
	var got *FeatureTask
	r.director.SetTaskData("t2", parse(`{"complete":true,"target":1}`), func(task *FeatureTask) { got = task })
	if got == nil || got.Key != "t2" {
		t.Fatalf("expected handler fired for a task complete on arrival")
	}
}

func TestFeatureTaskSetComplete(t *testing.T) {
	r := newRig(t)
	fired := 0
	task := r.director.SetTaskData("t3", parse(`{"complete":false}`), func(*FeatureTask) { fired++ })
	task.SetComplete()
	task.SetComplete()
	if fired != 1 {
		t.Fatalf("expected one fire, got %d", fired)
	}
}

func TestFeatureTaskPush(t *testing.T) {
	r := newRig(t)
	r.director.Dispatch(EventFeatureTask, parse(`{"task_key":"daily_spin","progress":4,"target":20}`))
	task := r.director.GetTask("daily_spin")
	if task == nil || task.Progress != 4 || task.Target != 20 {
		t.Fatalf("expected task stored from push, got %+v", task)
	}
	if r.director.SetTaskData("", parse(`{}`), nil) != nil {
		t.Fatalf("expected keyless task to be rejected")
	}
}
