package timer

import "time"

// Timer tracks the time left on the active question from wall-clock elapsed time,
// so irregular or missed ticks never distort the remaining value.
//
// Timer is not safe for concurrent use; the quiz controller goroutine owns it.
type Timer struct {
	now       func() time.Time
	limit     time.Duration
	startedAt time.Time
	remaining time.Duration
	running   bool
	epoch     uint64
}

// New creates a stopped timer. A nil clock falls back to time.Now.
func New(now func() time.Time) *Timer {
	if now == nil {
		now = time.Now
	}
	return &Timer{now: now}
}

// Start arms the timer for limit and returns the new epoch.
// Any previous run is superseded; its epoch becomes stale.
func (t *Timer) Start(limit time.Duration) uint64 {
	if limit < 0 {
		limit = 0
	}
	t.epoch++
	t.limit = limit
	t.startedAt = t.now()
	t.remaining = limit
	t.running = true
	return t.epoch
}

// Tick recomputes the remaining time. expired is true exactly once per Start,
// on the tick that observes zero; the timer halts afterwards.
func (t *Timer) Tick() (remaining time.Duration, expired bool) {
	if !t.running {
		return t.remaining, false
	}
	t.remaining = t.compute()
	if t.remaining == 0 {
		t.running = false
		return 0, true
	}
	return t.remaining, false
}

// Stop halts recomputation. Safe to call repeatedly.
func (t *Timer) Stop() {
	if !t.running {
		return
	}
	t.remaining = t.compute()
	t.running = false
}

// Remaining reports the time left without firing expiry.
func (t *Timer) Remaining() time.Duration {
	if !t.running {
		return t.remaining
	}
	return t.compute()
}

// Epoch identifies the current run.
func (t *Timer) Epoch() uint64 {
	return t.epoch
}

// Running reports whether the timer is counting down.
func (t *Timer) Running() bool {
	return t.running
}

// Limit returns the limit of the current run.
func (t *Timer) Limit() time.Duration {
	return t.limit
}

func (t *Timer) compute() time.Duration {
	rem := t.limit - t.now().Sub(t.startedAt)
	if rem < 0 {
		return 0
	}
	return rem
}
