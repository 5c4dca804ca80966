package tick

import "sync"

// Future is a single-result promise. The first Resolve wins; continuations
// registered with Then run exactly once, in registration order, on whichever
// goroutine resolves it (or immediately if already resolved).
type Future[T any] struct {
	mu       sync.Mutex
	resolved bool
	value    T
	waiters  []func(T)
}

// NewFuture returns an unresolved future.
func NewFuture[T any]() *Future[T] {
	return &Future[T]{}
}

// Resolve stores v and runs the continuations. Later calls are ignored and
// report false.
func (f *Future[T]) Resolve(v T) bool {
	f.mu.Lock()
	if f.resolved {
		f.mu.Unlock()
		return false
	}
	f.resolved = true
	f.value = v
	waiters := f.waiters
	f.waiters = nil
	f.mu.Unlock()

	for _, w := range waiters {
		w(v)
	}
	return true
}

// Then registers fn to run with the resolved value.
func (f *Future[T]) Then(fn func(T)) {
	if fn == nil {
		return
	}
	f.mu.Lock()
	if f.resolved {
		v := f.value
		f.mu.Unlock()
		fn(v)
		return
	}
	f.waiters = append(f.waiters, fn)
	f.mu.Unlock()
}

// Resolved reports whether Resolve has been called.
func (f *Future[T]) Resolved() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resolved
}

// Value returns the resolved value and whether it is set.
func (f *Future[T]) Value() (T, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value, f.resolved
}
