// Package ambient plays a calm, repeating piano-like melody synthesized from
// oscillators, switched on and off by a single boolean.
//
// Controller maps the switch to the lifetime of an Engine, which owns one
// rendering context and the timers that drive the melody.
package ambient

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/cbegin/ambient-go/schedule"
	"github.com/cbegin/ambient-go/webaudio"
)

type State int

const (
	Idle State = iota
	Running
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

type ControllerOption func(*controllerConfig)

type controllerConfig struct {
	sched  schedule.Scheduler
	melody Melody
	log    *slog.Logger
}

func defaultControllerConfig() controllerConfig {
	return controllerConfig{
		sched:  schedule.Realtime{},
		melody: DefaultMelody(),
		log:    discardLogger(),
	}
}

func WithScheduler(s schedule.Scheduler) ControllerOption {
	return func(cfg *controllerConfig) {
		cfg.sched = s
	}
}

func WithMelody(m Melody) ControllerOption {
	return func(cfg *controllerConfig) {
		cfg.melody = m
	}
}

func WithLogger(l *slog.Logger) ControllerOption {
	return func(cfg *controllerConfig) {
		if l != nil {
			cfg.log = l
		}
	}
}

// Controller owns at most one Engine at a time. Enabling creates one,
// disabling or tearing down stops it. When the provider cannot supply a
// context the controller stays enabled and silent.
type Controller struct {
	mu       sync.Mutex
	provider webaudio.Provider
	sched    schedule.Scheduler
	melody   Melody
	log      *slog.Logger
	enabled  bool
	closed   bool
	engine   *Engine
}

func NewController(provider webaudio.Provider, opts ...ControllerOption) (*Controller, error) {
	if provider == nil {
		return nil, errors.New("ambient: nil provider")
	}
	cfg := defaultControllerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.sched == nil {
		return nil, errors.New("ambient: nil scheduler")
	}
	if err := cfg.melody.Validate(); err != nil {
		return nil, err
	}
	return &Controller{
		provider: provider,
		sched:    cfg.sched,
		melody:   cfg.melody,
		log:      cfg.log,
	}, nil
}

// SetEnabled delivers the current switch position. Repeating the current
// position is a no-op; only a change starts or stops the engine. After
// Teardown the switch is ignored.
func (c *Controller) SetEnabled(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || on == c.enabled {
		return
	}
	c.enabled = on
	if on {
		c.startLocked()
		return
	}
	c.stopLocked("disabled")
}

// Teardown stops any running engine and detaches the controller for good.
// It takes the same cleanup path as disabling and is safe to call twice.
func (c *Controller) Teardown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.enabled = false
	c.stopLocked("teardown")
}

func (c *Controller) startLocked() {
	ctx, err := c.newContext()
	if err != nil {
		c.log.Debug("ambient: audio unavailable, staying silent", "err", err)
		return
	}
	c.engine = NewEngine(ctx, c.sched, c.melody, c.log)
	c.engine.Start()
}

// newContext shields the controller from providers that panic.
func (c *Controller) newContext() (ctx webaudio.Context, err error) {
	defer func() {
		if r := recover(); r != nil {
			ctx, err = nil, fmt.Errorf("%w: %v", webaudio.ErrUnavailable, r)
		}
	}()
	ctx, err = c.provider.NewContext()
	if err == nil && ctx == nil {
		err = webaudio.ErrUnavailable
	}
	return ctx, err
}

func (c *Controller) stopLocked(reason string) {
	if c.engine == nil {
		return
	}
	if err := c.engine.Stop(); err != nil {
		c.log.Debug("ambient: engine stop", "reason", reason, "err", err)
	}
	c.engine = nil
}

// Enabled returns the last switch position delivered.
func (c *Controller) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

// State reports Running while an engine is live. An enabled controller
// whose context could not be created reports Idle.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.engine != nil {
		return Running
	}
	return Idle
}
