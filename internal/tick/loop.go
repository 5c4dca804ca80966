// Package tick implements the single-threaded cooperative scheduler the
// campaign engine runs on.
//
// All engine state is mutated from inside loop tasks. Other goroutines hand
// work to the loop with Post or Do. A tick runs every task posted before it
// started, then every task deferred to the end of that tick, then any timers
// that came due.
package tick

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// DefaultHz is the tick rate used when none is configured.
const DefaultHz = 20.0

// ErrStopped is returned by Do when the loop stopped before running the task.
var ErrStopped = errors.New("tick: loop stopped")

type timer struct {
	id       uint64
	due      time.Time
	fn       func()
	canceled bool
}

// Loop is a frame-based task queue. The zero value is not usable; call New.
type Loop struct {
	mu        sync.Mutex
	inbox     []func()
	endOfTick []func()
	timers    []*timer
	nextTimer uint64
	frame     uint64
	inTick    bool
	stopped   bool

	hz    float64
	clock func() time.Time
}

// New creates a loop ticking hz times per second when driven by Run.
func New(hz float64) *Loop {
	if hz <= 0 {
		hz = DefaultHz
	}
	return &Loop{hz: hz, clock: time.Now}
}

// SetClock replaces the wall clock used for timers. Intended for tests.
func (l *Loop) SetClock(clock func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if clock == nil {
		clock = time.Now
	}
	l.clock = clock
}

// Now returns the loop clock's current time.
func (l *Loop) Now() time.Time {
	l.mu.Lock()
	clock := l.clock
	l.mu.Unlock()
	return clock()
}

// Frame returns the number of completed ticks.
func (l *Loop) Frame() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.frame
}

// Post queues fn to run on the next tick. Safe from any goroutine.
func (l *Loop) Post(fn func()) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	l.inbox = append(l.inbox, fn)
	l.mu.Unlock()
}

// AtEndOfTick defers fn until every task of the current tick has run. Called
// outside a tick, fn runs at the end of the next one.
func (l *Loop) AtEndOfTick(fn func()) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	l.endOfTick = append(l.endOfTick, fn)
	l.mu.Unlock()
}

// After runs fn on the first tick at or past now+d. The returned func cancels
// the timer if it has not fired yet.
func (l *Loop) After(d time.Duration, fn func()) (cancel func()) {
	if fn == nil {
		return func() {}
	}
	l.mu.Lock()
	l.nextTimer++
	t := &timer{id: l.nextTimer, due: l.clock().Add(d), fn: fn}
	l.timers = append(l.timers, t)
	l.mu.Unlock()
	return func() {
		l.mu.Lock()
		t.canceled = true
		l.mu.Unlock()
	}
}

// Tick runs one frame. Tasks posted while the frame runs wait for the next
// one; end-of-tick tasks deferred by end-of-tick tasks also wait.
func (l *Loop) Tick() {
	l.mu.Lock()
	if l.inTick {
		l.mu.Unlock()
		panic("tick: re-entrant Tick")
	}
	l.inTick = true
	inbox := l.inbox
	l.inbox = nil
	l.mu.Unlock()

	for _, fn := range inbox {
		fn()
	}

	l.mu.Lock()
	deferred := l.endOfTick
	l.endOfTick = nil
	l.mu.Unlock()

	for _, fn := range deferred {
		fn()
	}

	for _, fn := range l.dueTimers() {
		fn()
	}

	l.mu.Lock()
	l.frame++
	l.inTick = false
	l.mu.Unlock()
}

func (l *Loop) dueTimers() []func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.clock()
	var due []*timer
	kept := l.timers[:0]
	for _, t := range l.timers {
		switch {
		case t.canceled:
		case !t.due.After(now):
			due = append(due, t)
		default:
			kept = append(kept, t)
		}
	}
	l.timers = kept
	sort.Slice(due, func(i, j int) bool {
		if due[i].due.Equal(due[j].due) {
			return due[i].id < due[j].id
		}
		return due[i].due.Before(due[j].due)
	})
	fns := make([]func(), 0, len(due))
	for _, t := range due {
		fns = append(fns, t.fn)
	}
	return fns
}

// Drain ticks until no posted or deferred work remains, up to maxFrames.
// Pending timers are not waited for. Returns the number of frames run.
func (l *Loop) Drain(maxFrames int) int {
	n := 0
	for n < maxFrames {
		l.mu.Lock()
		idle := len(l.inbox) == 0 && len(l.endOfTick) == 0
		l.mu.Unlock()
		if idle {
			return n
		}
		l.Tick()
		n++
	}
	return n
}

// Do posts fn and blocks until it has run on the loop or ctx is done.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return ErrStopped
	}
	l.inbox = append(l.inbox, func() {
		defer close(done)
		fn()
	})
	l.mu.Unlock()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run ticks at the configured rate until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Duration(float64(time.Second) / l.hz))
	defer ticker.Stop()
	defer func() {
		l.mu.Lock()
		l.stopped = true
		l.mu.Unlock()
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			l.Tick()
		}
	}
}
