package finance

import (
	"context"
	"strings"
	"sync"
	"time"
)

// FetchState is the lifecycle of one aggregate key.
type FetchState int

const (
	Idle FetchState = iota
	Loading
	Loaded
	Failed
)

func (s FetchState) String() string {
	switch s {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

type fetchEntry[T any] struct {
	state    FetchState
	value    T
	err      error
	loadedAt time.Time
	done     chan struct{}
}

// FetchTracker runs at most one fetch per key. A fetch starts only from
// Idle or Failed; callers arriving while a key is Loading wait for that
// fetch. Cancelling any caller's context, the starter's included, ends only
// that caller's wait. Reset moves a key back to Idle and outdates any fetch in flight,
// whose result is then returned to its callers but not recorded.
type FetchTracker[T any] struct {
	mu      sync.Mutex
	entries map[string]*fetchEntry[T]
	ttl     time.Duration
	now     func() time.Time
}

// NewFetchTracker returns a tracker whose Loaded results expire after ttl.
// A zero ttl keeps results until Reset.
func NewFetchTracker[T any](ttl time.Duration) *FetchTracker[T] {
	return &FetchTracker[T]{
		entries: make(map[string]*fetchEntry[T]),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Do returns the result for key, running fetch if the key is Idle or Failed.
// The boolean reports whether this call started the fetch.
func (t *FetchTracker[T]) Do(ctx context.Context, key string, fetch func(context.Context) (T, error)) (T, bool, error) {
	t.mu.Lock()
	e := t.entries[key]
	if e != nil && e.state == Loaded && t.ttl > 0 && t.now().Sub(e.loadedAt) > t.ttl {
		e.state = Idle
	}

	switch {
	case e != nil && e.state == Loaded:
		v := e.value
		t.mu.Unlock()
		return v, false, nil
	case e != nil && e.state == Loading:
		t.mu.Unlock()
		return t.wait(ctx, e)
	}

	e = &fetchEntry[T]{state: Loading, done: make(chan struct{})}
	t.entries[key] = e
	t.mu.Unlock()

	// The fetch outlives the caller that started it: waiters with live
	// contexts still get its result. Values and the trace span carry over.
	go t.run(context.WithoutCancel(ctx), key, e, fetch)

	v, _, err := t.wait(ctx, e)
	return v, true, err
}

func (t *FetchTracker[T]) run(ctx context.Context, key string, e *fetchEntry[T], fetch func(context.Context) (T, error)) {
	v, err := fetch(ctx)

	t.mu.Lock()
	defer t.mu.Unlock()
	e.value, e.err = v, err
	// an entry replaced by Reset keeps its result for waiters only
	if t.entries[key] == e {
		if err != nil {
			e.state = Failed
		} else {
			e.state = Loaded
			e.loadedAt = t.now()
		}
	}
	close(e.done)
}

func (t *FetchTracker[T]) wait(ctx context.Context, e *fetchEntry[T]) (T, bool, error) {
	select {
	case <-e.done:
		// value and err are written before done is closed
		return e.value, false, e.err
	case <-ctx.Done():
		var zero T
		return zero, false, ctx.Err()
	}
}

// Reset returns key to Idle.
func (t *FetchTracker[T]) Reset(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, key)
}

// ResetPrefix returns every key starting with prefix to Idle.
func (t *FetchTracker[T]) ResetPrefix(prefix string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for key := range t.entries {
		if strings.HasPrefix(key, prefix) {
			delete(t.entries, key)
		}
	}
}

// State reports the current state of key.
func (t *FetchTracker[T]) State(key string) FetchState {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e := t.entries[key]; e != nil {
		return e.state
	}
	return Idle
}
