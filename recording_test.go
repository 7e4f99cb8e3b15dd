package ambient

import (
	"errors"
	"sync"
	"time"

	"github.com/cbegin/ambient-go/schedule"
	"github.com/cbegin/ambient-go/webaudio"
)

type onset struct {
	at   time.Duration
	freq float64
}

// recordingContext is a native graph that also logs, on the fake clock,
// every frequency programmed into one of its oscillators.
type recordingContext struct {
	*webaudio.Graph
	clock *schedule.Fake

	mu          sync.Mutex
	onsets      []onset
	oscillators int
}

func (c *recordingContext) CreateOscillator() (webaudio.OscillatorNode, error) {
	osc, err := c.Graph.CreateOscillator()
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.oscillators++
	c.mu.Unlock()
	return recordingOscillator{OscillatorNode: osc, ctx: c}, nil
}

func (c *recordingContext) record(freq float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onsets = append(c.onsets, onset{at: c.clock.Now(), freq: freq})
}

func (c *recordingContext) Onsets() []onset {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]onset(nil), c.onsets...)
}

func (c *recordingContext) Oscillators() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.oscillators
}

type recordingOscillator struct {
	webaudio.OscillatorNode
	ctx *recordingContext
}

func (o recordingOscillator) Frequency() webaudio.AudioParam {
	return recordingParam{AudioParam: o.OscillatorNode.Frequency(), ctx: o.ctx}
}

type recordingParam struct {
	webaudio.AudioParam
	ctx *recordingContext
}

func (p recordingParam) SetValueAtTime(value, at float64) error {
	p.ctx.record(value)
	return p.AudioParam.SetValueAtTime(value, at)
}

// recordingProvider hands out recordingContexts sharing one fake clock.
type recordingProvider struct {
	clock *schedule.Fake

	mu       sync.Mutex
	contexts []*recordingContext
	fail     error
}

func newRecordingProvider(clock *schedule.Fake) *recordingProvider {
	return &recordingProvider{clock: clock}
}

func (p *recordingProvider) NewContext() (webaudio.Context, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail != nil {
		return nil, p.fail
	}
	g, err := webaudio.NewGraph(8000)
	if err != nil {
		return nil, err
	}
	c := &recordingContext{Graph: g, clock: p.clock}
	p.contexts = append(p.contexts, c)
	return c, nil
}

func (p *recordingProvider) Created() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.contexts)
}

func (p *recordingProvider) Live() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, c := range p.contexts {
		if !c.Closed() {
			n++
		}
	}
	return n
}

func (p *recordingProvider) Last() *recordingContext {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.contexts) == 0 {
		return nil
	}
	return p.contexts[len(p.contexts)-1]
}

// Onsets merges the onsets of every context in creation order.
func (p *recordingProvider) Onsets() []onset {
	p.mu.Lock()
	contexts := append([]*recordingContext(nil), p.contexts...)
	p.mu.Unlock()
	var all []onset
	for _, c := range contexts {
		all = append(all, c.Onsets()...)
	}
	return all
}

// leakyScheduler hands out tasks whose Stop never cancels, so callbacks
// still arrive after their owner has shut down.
type leakyScheduler struct {
	*schedule.Fake
}

type leakyTask struct{}

func (leakyTask) Stop() bool { return false }

func (s leakyScheduler) AfterFunc(d time.Duration, fn func()) schedule.Task {
	s.Fake.AfterFunc(d, fn)
	return leakyTask{}
}

func (s leakyScheduler) Every(d time.Duration, fn func()) schedule.Task {
	s.Fake.Every(d, fn)
	return leakyTask{}
}

var errNoDevice = errors.New("no audio device")
