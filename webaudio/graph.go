package webaudio

import (
	"errors"
	"fmt"
	"math"
	"sync"

	intfx "github.com/cbegin/ambient-go/internal/effects"
)

const twoPi = math.Pi * 2

// Graph is a native rendering context. Its clock advances only as samples
// are pulled through Process, so it serves both offline rendering and,
// wrapped by DeviceProvider, realtime playback.
type Graph struct {
	mu         sync.Mutex
	sampleRate float64
	frame      int64
	closed     bool
	sources    []*Oscillator
	dest       *destination
	volume     float64
	effects    *intfx.Chain
	tap        func([]float32)
}

type GraphOption func(*graphConfig)

type graphConfig struct {
	volume float64
	reverb *reverbConfig
	tap    func([]float32)
}

type reverbConfig struct {
	roomSize, feedback, wet float32
}

// WithSampleTap receives every rendered block after mixing. It runs on the
// rendering goroutine with the graph locked and must not call back into it.
func WithSampleTap(tap func([]float32)) GraphOption {
	return func(cfg *graphConfig) {
		cfg.tap = tap
	}
}

func defaultGraphConfig() graphConfig {
	return graphConfig{volume: 1}
}

// WithMasterVolume scales everything reaching the destination. Negative
// values clamp to 0.
func WithMasterVolume(volume float64) GraphOption {
	return func(cfg *graphConfig) {
		if volume < 0 {
			volume = 0
		}
		cfg.volume = volume
	}
}

// WithReverb adds a room reverb after the destination mix.
func WithReverb(roomSize, feedback, wet float32) GraphOption {
	return func(cfg *graphConfig) {
		cfg.reverb = &reverbConfig{roomSize: roomSize, feedback: feedback, wet: wet}
	}
}

func NewGraph(sampleRate int, opts ...GraphOption) (*Graph, error) {
	if sampleRate <= 0 {
		return nil, errors.New("webaudio: sampleRate must be positive")
	}
	cfg := defaultGraphConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	g := &Graph{
		sampleRate: float64(sampleRate),
		volume:     cfg.volume,
		tap:        cfg.tap,
	}
	g.dest = &destination{g: g}
	if cfg.reverb != nil {
		g.effects = intfx.NewChain(intfx.NewReverb(sampleRate, cfg.reverb.roomSize, cfg.reverb.feedback, cfg.reverb.wet))
	}
	return g, nil
}

func (g *Graph) SampleRate() int { return int(g.sampleRate) }

func (g *Graph) CurrentTime() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return float64(g.frame) / g.sampleRate
}

func (g *Graph) CreateOscillator() (OscillatorNode, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return nil, ErrClosed
	}
	return &Oscillator{
		g:    g,
		typ:  Sine,
		freq: newParam(g, 440),
	}, nil
}

func (g *Graph) CreateGain() (GainNode, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return nil, ErrClosed
	}
	return &Gain{g: g, gain: newParam(g, 1)}, nil
}

func (g *Graph) Destination() Node { return g.dest }

func (g *Graph) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return ErrClosed
	}
	g.closed = true
	g.sources = nil
	return nil
}

// Closed reports whether Close has been called.
func (g *Graph) Closed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.closed
}

// Finished lets the audio stream end once the graph is closed.
func (g *Graph) Finished() bool { return g.Closed() }

// ActiveSources returns the number of started oscillators not yet released.
func (g *Graph) ActiveSources() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.sources)
}

// Process renders interleaved stereo frames into dst and advances the clock.
// A closed graph renders silence and keeps its clock where it stopped.
func (g *Graph) Process(dst []float32) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		clear(dst)
		return
	}
	for i := 0; i+1 < len(dst); i += 2 {
		t := float64(g.frame) / g.sampleRate
		var mix float64
		for _, osc := range g.sources {
			mix += osc.sample(t)
		}
		l := float32(mix * g.volume)
		r := l
		if g.effects != nil {
			l, r = g.effects.Process(l, r)
		}
		dst[i], dst[i+1] = l, r
		g.frame++
	}
	g.reclaim()
	if g.tap != nil {
		g.tap(dst)
	}
}

// Render is an offline convenience: it pulls seconds worth of stereo
// frames from the graph.
func (g *Graph) Render(seconds float64) []float32 {
	frames := int(g.sampleRate * seconds)
	out := make([]float32, frames*2)
	g.Process(out)
	return out
}

func (g *Graph) reclaim() {
	kept := g.sources[:0]
	for _, osc := range g.sources {
		if !osc.ended {
			kept = append(kept, osc)
		}
	}
	clear(g.sources[len(kept):])
	g.sources = kept
}

// graphNode is implemented by every node that belongs to a Graph.
type graphNode interface {
	Node
	owner() *Graph
}

// sink is a node that accepts input.
type sink interface {
	graphNode
	// level is the gain from this node's input to the destination at t.
	level(t float64) float64
	reaches(target sink) bool
}

func (g *Graph) connect(from sink, outs *[]sink, dst Node) error {
	to, ok := dst.(sink)
	if !ok {
		return fmt.Errorf("%w: %T cannot accept input", ErrInvalidConnection, dst)
	}
	if to.owner() != g {
		return fmt.Errorf("%w: node belongs to another context", ErrInvalidConnection)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return ErrClosed
	}
	if from != nil && (to == from || to.reaches(from)) {
		return fmt.Errorf("%w: cycle", ErrInvalidConnection)
	}
	for _, o := range *outs {
		if o == to {
			return nil
		}
	}
	*outs = append(*outs, to)
	return nil
}

func levelOf(outs []sink, t float64) float64 {
	var sum float64
	for _, o := range outs {
		sum += o.level(t)
	}
	return sum
}

type destination struct {
	g *Graph
}

func (d *destination) owner() *Graph { return d.g }

func (d *destination) Connect(Node) error {
	return fmt.Errorf("%w: destination has no output", ErrInvalidConnection)
}

func (d *destination) level(float64) float64 { return 1 }

func (d *destination) reaches(sink) bool { return false }

// Gain scales its input by a single automatable parameter.
type Gain struct {
	g    *Graph
	gain *param
	outs []sink
}

func (n *Gain) owner() *Graph { return n.g }

func (n *Gain) Gain() AudioParam { return n.gain }

func (n *Gain) Connect(dst Node) error { return n.g.connect(n, &n.outs, dst) }

func (n *Gain) level(t float64) float64 {
	return n.gain.valueAt(t) * levelOf(n.outs, t)
}

func (n *Gain) reaches(target sink) bool {
	for _, o := range n.outs {
		if o == target || o.reaches(target) {
			return true
		}
	}
	return false
}

// Oscillator is a periodic source. It is silent until its start time and is
// released by the graph at its stop time.
type Oscillator struct {
	g       *Graph
	typ     OscillatorType
	freq    *param
	outs    []sink
	phase   float64
	start   float64
	stop    float64
	started bool
	stopSet bool
	ended   bool
}

func (o *Oscillator) owner() *Graph { return o.g }

func (o *Oscillator) Frequency() AudioParam { return o.freq }

func (o *Oscillator) Connect(dst Node) error { return o.g.connect(nil, &o.outs, dst) }

func (o *Oscillator) SetType(t OscillatorType) error {
	if !t.Valid() {
		return fmt.Errorf("%w: oscillator type %q", ErrInvalidValue, t)
	}
	o.g.mu.Lock()
	defer o.g.mu.Unlock()
	o.typ = t
	return nil
}

func (o *Oscillator) Start(at float64) error {
	if at < 0 || math.IsNaN(at) {
		return fmt.Errorf("%w: start time %v", ErrInvalidValue, at)
	}
	o.g.mu.Lock()
	defer o.g.mu.Unlock()
	if o.g.closed {
		return ErrClosed
	}
	if o.started {
		return fmt.Errorf("%w: oscillator already started", ErrInvalidState)
	}
	o.started = true
	o.start = at
	o.g.sources = append(o.g.sources, o)
	return nil
}

func (o *Oscillator) Stop(at float64) error {
	if at < 0 || math.IsNaN(at) {
		return fmt.Errorf("%w: stop time %v", ErrInvalidValue, at)
	}
	o.g.mu.Lock()
	defer o.g.mu.Unlock()
	if o.g.closed {
		return ErrClosed
	}
	if !o.started {
		return fmt.Errorf("%w: oscillator not started", ErrInvalidState)
	}
	o.stopSet = true
	o.stop = at
	return nil
}

// sample returns the oscillator's contribution at t and advances its phase.
// The caller holds the graph lock.
func (o *Oscillator) sample(t float64) float64 {
	if o.ended || t < o.start {
		return 0
	}
	if o.stopSet && t >= o.stop {
		o.ended = true
		return 0
	}
	v := wave(o.typ, o.phase) * levelOf(o.outs, t)
	o.phase += o.freq.valueAt(t) / o.g.sampleRate
	o.phase -= math.Floor(o.phase)
	return v
}

// wave evaluates one cycle of the waveform at phase [0, 1). The triangle
// starts at zero rising, as in Web Audio.
func wave(typ OscillatorType, phase float64) float64 {
	switch typ {
	case Square:
		if phase < 0.5 {
			return 1
		}
		return -1
	case Sawtooth:
		return 2*phase - 1
	case Triangle:
		switch {
		case phase < 0.25:
			return 4 * phase
		case phase < 0.75:
			return 2 - 4*phase
		default:
			return 4*phase - 4
		}
	default:
		return math.Sin(twoPi * phase)
	}
}
