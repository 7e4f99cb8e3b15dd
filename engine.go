package ambient

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/cbegin/ambient-go/schedule"
	"github.com/cbegin/ambient-go/webaudio"
)

// Engine plays a melody on one rendering context. It owns the context and
// every timer it schedules; Stop releases all of them. An Engine is single
// use: once stopped it cannot be restarted.
type Engine struct {
	mu      sync.Mutex
	ctx     webaudio.Context
	sched   schedule.Scheduler
	melody  Melody
	log     *slog.Logger
	live    bool
	started bool
	nextID  uint64
	notes   map[uint64]schedule.Task
	repeat  schedule.Task
	phrases int
}

// NewEngine takes ownership of ctx. A nil logger discards output.
func NewEngine(ctx webaudio.Context, sched schedule.Scheduler, melody Melody, log *slog.Logger) *Engine {
	if log == nil {
		log = discardLogger()
	}
	return &Engine{
		ctx:    ctx,
		sched:  sched,
		melody: melody,
		log:    log,
		live:   true,
		notes:  make(map[uint64]schedule.Task),
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Start plays the first phrase right away and then one every repeat
// interval. Calls after the first, or after Stop, do nothing.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.live || e.started {
		return
	}
	e.started = true
	e.playPhraseLocked()
	e.repeat = e.sched.Every(e.melody.RepeatInterval, e.onRepeat)
	e.log.Debug("ambient: engine started", "repeat", e.melody.RepeatInterval)
}

// PlayPhrase schedules one pass over the pattern and returns the ids of the
// note timers it created. It returns nil once the engine is stopped.
func (e *Engine) PlayPhrase() []uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.live {
		return nil
	}
	return e.playPhraseLocked()
}

func (e *Engine) playPhraseLocked() []uint64 {
	e.phrases++
	phrase := e.melody.Phrase()
	ids := make([]uint64, 0, len(phrase))
	for _, note := range phrase {
		e.nextID++
		id := e.nextID
		e.notes[id] = e.sched.AfterFunc(note.Offset, func() { e.fire(id, note) })
		ids = append(ids, id)
	}
	return ids
}

func (e *Engine) onRepeat() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.live {
		e.log.Debug("ambient: stale phrase timer")
		return
	}
	e.playPhraseLocked()
}

func (e *Engine) fire(id uint64, note ScheduledNote) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.live {
		e.log.Debug("ambient: stale note timer", "position", note.Position)
		return
	}
	delete(e.notes, id)
	if err := e.melody.Envelope.Play(e.ctx, note.Frequency, note.Duration); err != nil {
		e.log.Debug("ambient: note dropped", "position", note.Position, "err", err)
	}
}

// Stop cancels the repeat timer, then every pending note, then closes the
// context. Notes already sounding decay on their own until the close. Stop
// is idempotent; only the first call can return an error.
func (e *Engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.live {
		return nil
	}
	e.live = false
	if e.repeat != nil {
		e.repeat.Stop()
		e.repeat = nil
	}
	for id, task := range e.notes {
		task.Stop()
		delete(e.notes, id)
	}
	if err := e.ctx.Close(); err != nil {
		return fmt.Errorf("ambient: close context: %w", err)
	}
	e.log.Debug("ambient: engine stopped", "phrases", e.phrases)
	return nil
}

// Live reports whether the engine still owns an open context.
func (e *Engine) Live() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.live
}

// PendingNotes returns the number of scheduled notes that have neither
// fired nor been cancelled.
func (e *Engine) PendingNotes() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.notes)
}

// Repeating reports whether the phrase-repeat timer is armed.
func (e *Engine) Repeating() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.repeat != nil
}

// Phrases returns how many phrases have been dispatched.
func (e *Engine) Phrases() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phrases
}
