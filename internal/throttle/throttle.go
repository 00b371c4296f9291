// Package throttle gates outbound exchange requests to a requests-per-second
// budget per named bucket.
package throttle

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jmhodges/clock"
)

// Window is the length of a throttle window.
const Window = time.Second

// Bucket names a class of outbound calls.
type Bucket string

const (
	BucketDefault Bucket = "default"
	BucketLookup  Bucket = "lookup"
)

// Config maps bucket names to requests per second.
type Config struct {
	Buckets     map[Bucket]int
	DefaultRate int
}

// DefaultConfig mirrors the limits the exchange tolerates for anonymous
// clients.
func DefaultConfig() Config {
	return Config{
		Buckets: map[Bucket]int{
			BucketLookup:  15,
			BucketDefault: 8,
		},
		DefaultRate: 15,
	}
}

// WaitFunc is notified whenever Check has to sleep.
type WaitFunc func(bucket Bucket, wait time.Duration)

// Option customises a Throttle.
type Option func(*Throttle)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(c clock.Clock) Option {
	return func(t *Throttle) {
		if c != nil {
			t.clock = c
		}
	}
}

// WithWaitHook registers a callback invoked before each sleep.
func WithWaitHook(fn WaitFunc) Option {
	return func(t *Throttle) {
		t.onWait = fn
	}
}

// Throttle enforces per-bucket request rates over fixed one second windows.
type Throttle struct {
	rates       map[Bucket]int
	defaultRate int
	clock       clock.Clock
	onWait      WaitFunc

	mu      sync.Mutex
	buckets map[Bucket]*bucketState
}

// bucketState guards its window with two locks: queue orders Check callers
// and is held across the sleep, mu covers the counters and is only held
// briefly so Snapshot never waits on a sleeping caller.
type bucketState struct {
	queue sync.Mutex

	mu          sync.Mutex
	windowStart time.Time
	count       int
}

// BucketState is a point-in-time view of a bucket.
type BucketState struct {
	Name        Bucket    `json:"name"`
	Rate        int       `json:"rate"`
	Configured  bool      `json:"configured"`
	Count       int       `json:"count"`
	WindowStart time.Time `json:"window_start,omitempty"`
}

// New builds a Throttle from cfg. The configuration is copied.
func New(cfg Config, opts ...Option) *Throttle {
	rates := make(map[Bucket]int, len(cfg.Buckets))
	for name, rate := range cfg.Buckets {
		name = Bucket(strings.TrimSpace(string(name)))
		if name == "" {
			continue
		}
		rates[name] = rate
	}

	t := &Throttle{
		rates:       rates,
		defaultRate: cfg.DefaultRate,
		clock:       clock.New(),
		buckets:     make(map[Bucket]*bucketState),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Rate returns the effective requests per second for bucket.
func (t *Throttle) Rate(bucket Bucket) int {
	if t == nil {
		return 0
	}
	if rate, ok := t.rates[bucket]; ok {
		return rate
	}
	return t.defaultRate
}

// Check blocks until a call against bucket fits in the current window, then
// records it. It never fails and cannot be cancelled.
func (t *Throttle) Check(bucket Bucket) {
	if t == nil {
		return
	}
	if bucket == "" {
		bucket = BucketDefault
	}

	rate := t.Rate(bucket)
	if rate <= 0 {
		return
	}

	state := t.state(bucket)
	state.queue.Lock()
	defer state.queue.Unlock()

	state.mu.Lock()
	now := t.clock.Now()
	if state.windowStart.IsZero() || now.Sub(state.windowStart) >= Window {
		state.windowStart = now
		state.count = 0
	}
	if state.count < rate {
		state.count++
		state.mu.Unlock()
		return
	}
	wait := state.windowStart.Add(Window).Sub(now)
	state.mu.Unlock()

	if wait > 0 {
		if t.onWait != nil {
			t.onWait(bucket, wait)
		}
		t.clock.Sleep(wait)
	}

	state.mu.Lock()
	state.windowStart = t.clock.Now()
	state.count = 1
	state.mu.Unlock()
}

// Snapshot lists configured buckets plus any fallback buckets seen so far.
func (t *Throttle) Snapshot() []BucketState {
	if t == nil {
		return nil
	}

	t.mu.Lock()
	names := make(map[Bucket]struct{}, len(t.rates)+len(t.buckets))
	for name := range t.rates {
		names[name] = struct{}{}
	}
	states := make(map[Bucket]*bucketState, len(t.buckets))
	for name, state := range t.buckets {
		names[name] = struct{}{}
		states[name] = state
	}
	t.mu.Unlock()

	out := make([]BucketState, 0, len(names))
	for name := range names {
		_, configured := t.rates[name]
		entry := BucketState{
			Name:       name,
			Rate:       t.Rate(name),
			Configured: configured,
		}
		if state, ok := states[name]; ok {
			state.mu.Lock()
			entry.Count = state.count
			entry.WindowStart = state.windowStart
			state.mu.Unlock()
		}
		out = append(out, entry)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (t *Throttle) state(bucket Bucket) *bucketState {
	t.mu.Lock()
	defer t.mu.Unlock()

	state, ok := t.buckets[bucket]
	if !ok {
		state = &bucketState{}
		t.buckets[bucket] = state
	}
	return state
}
