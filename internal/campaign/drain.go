package campaign

import (
	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"SpinChallenges/internal/tick"
)

// drainState is the completion queue and its single in-flight drain.
type drainState struct {
	queue          []Completion
	drainPending   bool
	waitingForIdle bool
	waiters        []*tick.Future[gjson.Result]
}

// QueueLen returns the number of completions waiting to be presented.
func (c *ChallengeCampaign) QueueLen() int { return len(c.queue) }

// DrainPending reports whether a drain is scheduled or waiting on progress.
func (c *ChallengeCampaign) DrainPending() bool { return c.drainPending }

// AddTypeCompleteDataToQueue enqueues a completion push. It is never applied
// synchronously: a drain runs at the end of the tick, after every completion
// delivered in the same tick has joined the queue.
func (c *ChallengeCampaign) AddTypeCompleteDataToQueue(data gjson.Result) {
	comp, ok := parseCompletion(data)
	if !ok {
		c.env.warnf("campaign %s: unknown completion_type %q, treating as %s",
			c.id, data.Get("completion_type").String(), CompletionObjective)
	}
	c.queue = append(c.queue, comp)
	c.InvalidateCache()
	c.scheduleDrain()
}

// OnGameIdle retries a drain that was refused while the game was busy or
// abandoned after a progress timeout.
func (c *ChallengeCampaign) OnGameIdle() {
	c.scheduleDrain()
}

func (c *ChallengeCampaign) scheduleDrain() {
	if c.drainPending || len(c.queue) == 0 {
		return
	}
	if c.env.Game.IsBusy() {
		c.waitingForIdle = true
		return
	}
	c.waitingForIdle = false
	c.drainPending = true
	c.env.Scheduler.AtEndOfTick(c.drain)
}

// drain presents the first n queued completions once fresh progress has
// arrived. Completions queued meanwhile stay for the next drain.
func (c *ChallengeCampaign) drain() {
	n := len(c.queue)
	if n == 0 {
		c.drainPending = false
		return
	}
	batchID := uuid.NewString()
	batch := append([]Completion(nil), c.queue[:n]...)
	groups := groupCompletions(batch)
	for _, comp := range batch {
		if comp.stopsAutoSpin() {
			c.env.Game.StopAutoSpin()
			break
		}
	}

	settled := false
	fresh := tick.NewFuture[gjson.Result]()
	c.waiters = append(c.waiters, fresh)
	cancelTimeout := c.env.Scheduler.After(c.env.Settings.ProgressWaitTimeout, func() {
		if settled {
			return
		}
		settled = true
		c.drainPending = false
		c.breadcrumb("progress_timeout", "drain %s: no progress after %s, keeping %d completions",
			batchID, c.env.Settings.ProgressWaitTimeout, len(c.queue))
	})
	fresh.Then(func(gjson.Result) {
		if settled {
			// Late progress after a timeout: the queue is still there.
			c.scheduleDrain()
			return
		}
		settled = true
		cancelTimeout()
		c.present(groups)
		if n > len(c.queue) {
			n = len(c.queue)
		}
		c.queue = c.queue[n:]
		c.drainPending = false
		c.env.infof("campaign %s: drain %s presented %d completions", c.id, batchID, len(batch))
		c.scheduleDrain()
	})
	c.requestProgress()
}

func (c *ChallengeCampaign) resolveWaiters(data gjson.Result) {
	waiters := c.waiters
	c.waiters = nil
	for _, f := range waiters {
		f.Resolve(data)
	}
}

func (c *ChallengeCampaign) present(groups map[CompletionType][]Completion) {
	for _, t := range drainOrder {
		batch := groups[t]
		if len(batch) == 0 {
			continue
		}
		switch t {
		case CompletionCampaign:
			c.self.showCampaignComplete(batch)
		case CompletionMission:
			c.self.showMissionComplete(batch)
		case CompletionObjective:
			c.self.showTypeComplete(batch)
		}
	}
	c.unlockGames()
}

func (c *ChallengeCampaign) showCampaignComplete(batch []Completion) {
	c.State = StateComplete
	c.collectAll()
	c.env.Presenter.ShowCampaignComplete(c.id, batch)
}

func (c *ChallengeCampaign) showMissionComplete(batch []Completion) {
	for _, comp := range batch {
		c.collectMission(comp)
		c.env.Presenter.ShowMissionComplete(c.id, comp.EventIndex, []Completion{comp})
	}
}

func (c *ChallengeCampaign) showTypeComplete(batch []Completion) {
	for _, comp := range batch {
		c.collectTypes(comp)
		c.env.Presenter.ShowTypeComplete(c.id, comp.EventIndex, []Completion{comp})
	}
}

func (c *ChallengeCampaign) mission(idx int) *Mission {
	if idx < 0 || idx >= len(c.Missions) {
		return nil
	}
	return c.Missions[idx]
}

// completionMission is the mission a completion names, by position.
func (c *ChallengeCampaign) completionMission(comp Completion) *Mission {
	return c.mission(comp.EventIndex)
}

// collectTypes pays the rewards of the objective slots a completion names.
func (c *ChallengeCampaign) collectTypes(comp Completion) []*Reward {
	m := c.self.completionMission(comp)
	if m == nil {
		c.breadcrumb("completion_out_of_range", "type completion for event %d", comp.EventIndex)
		return nil
	}
	return m.collectUnlocked(comp.Types, false)
}

// collectMission pays the named mission's rewards, including any objective
// rewards not yet collected.
func (c *ChallengeCampaign) collectMission(comp Completion) []*Reward {
	m := c.self.completionMission(comp)
	if m == nil {
		c.breadcrumb("completion_out_of_range", "mission completion for event %d", comp.EventIndex)
		return nil
	}
	if !m.IsComplete() {
		m.Complete()
	}
	return m.collectUnlocked(nil, true)
}

func (c *ChallengeCampaign) collectAll() []*Reward {
	var paid []*Reward
	for _, m := range c.Missions {
		if m.IsComplete() {
			paid = append(paid, m.collectUnlocked(nil, true)...)
		}
	}
	return paid
}

// unlockGames reports the games that progress has made enterable and that
// were not reported before.
func (c *ChallengeCampaign) unlockGames() {
	var fresh []string
	last := c.CurrentEventIndex
	if last >= len(c.Missions) {
		last = len(c.Missions) - 1
	}
	for i := 0; i <= last; i++ {
		for _, g := range c.Missions[i].Games() {
			if !c.unlocked[g] {
				c.unlocked[g] = true
				fresh = append(fresh, g)
			}
		}
	}
	if len(fresh) > 0 {
		c.env.Presenter.UnlockGames(c.id, fresh)
	}
}
