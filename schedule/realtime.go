package schedule

import (
	"sync"
	"time"
)

// Realtime schedules callbacks on the runtime timer heap. Callbacks run on
// their own goroutines; callers that share state with them must lock.
type Realtime struct{}

func (Realtime) AfterFunc(d time.Duration, f func()) Task {
	if d < 0 {
		d = 0
	}
	return time.AfterFunc(d, f)
}

// Every panics if d is not positive, like time.NewTicker.
func (Realtime) Every(d time.Duration, f func()) Task {
	t := &ticker{
		ticker: time.NewTicker(d),
		done:   make(chan struct{}),
	}
	go t.run(f)
	return t
}

type ticker struct {
	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
}

func (t *ticker) run(f func()) {
	for {
		select {
		case <-t.done:
			return
		case <-t.ticker.C:
			// Stop may have raced the tick.
			select {
			case <-t.done:
				return
			default:
			}
			f()
		}
	}
}

func (t *ticker) Stop() bool {
	stopped := false
	t.once.Do(func() {
		t.ticker.Stop()
		close(t.done)
		stopped = true
	})
	return stopped
}
