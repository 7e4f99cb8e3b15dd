package schedule

import (
	"sync"
	"time"
)

// Fake is a virtual-time Scheduler. Nothing fires until Advance is called;
// callbacks then run on the caller's goroutine in due-time order, ties
// broken by scheduling order.
type Fake struct {
	mu    sync.Mutex
	now   time.Duration
	seq   uint64
	tasks []*fakeTask
}

type fakeTask struct {
	clock  *Fake
	at     time.Duration
	period time.Duration
	seq    uint64
	fn     func()
}

func NewFake() *Fake {
	return &Fake{}
}

// Now returns the virtual time elapsed since the Fake was created.
func (f *Fake) Now() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fake) AfterFunc(d time.Duration, fn func()) Task {
	if d < 0 {
		d = 0
	}
	return f.add(d, 0, fn)
}

func (f *Fake) Every(d time.Duration, fn func()) Task {
	if d <= 0 {
		panic("schedule: non-positive interval for Every")
	}
	return f.add(d, d, fn)
}

func (f *Fake) add(d, period time.Duration, fn func()) *fakeTask {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	t := &fakeTask{clock: f, at: f.now + d, period: period, seq: f.seq, fn: fn}
	f.tasks = append(f.tasks, t)
	return t
}

// Pending returns the number of tasks that have not fired or been stopped.
// A repeating task counts once.
func (f *Fake) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tasks)
}

// Next returns the due time of the earliest pending task.
func (f *Fake) Next() (time.Duration, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := f.earliestLocked()
	if t == nil {
		return 0, false
	}
	return t.at, true
}

// Advance moves virtual time forward by d, firing every task that comes due
// on the way, including tasks scheduled by the callbacks themselves. It
// returns the number of callbacks run.
func (f *Fake) Advance(d time.Duration) int {
	f.mu.Lock()
	target := f.now + d
	f.mu.Unlock()

	fired := 0
	for {
		f.mu.Lock()
		t := f.earliestLocked()
		if t == nil || t.at > target {
			f.now = target
			f.mu.Unlock()
			return fired
		}
		if t.at > f.now {
			f.now = t.at
		}
		if t.period > 0 {
			t.at += t.period
		} else {
			f.removeLocked(t)
		}
		fn := t.fn
		f.mu.Unlock()

		fn()
		fired++
	}
}

func (f *Fake) earliestLocked() *fakeTask {
	var best *fakeTask
	for _, t := range f.tasks {
		if best == nil || t.at < best.at || (t.at == best.at && t.seq < best.seq) {
			best = t
		}
	}
	return best
}

func (f *Fake) removeLocked(t *fakeTask) bool {
	for i, other := range f.tasks {
		if other == t {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return true
		}
	}
	return false
}

func (t *fakeTask) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	return t.clock.removeLocked(t)
}
