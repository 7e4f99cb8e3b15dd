package webaudio

import (
	"fmt"
	"math"
	"sort"
)

type automationKind int

const (
	setValue automationKind = iota
	linearRamp
	exponentialRamp
)

type automationEvent struct {
	kind  automationKind
	value float64
	time  float64
}

// param is the native AudioParam. Its timeline is read by the render loop,
// so every access goes through the owning graph's lock.
type param struct {
	g      *Graph
	def    float64
	events []automationEvent
}

func newParam(g *Graph, def float64) *param {
	return &param{g: g, def: def}
}

func (p *param) SetValueAtTime(value, at float64) error {
	return p.schedule(automationEvent{kind: setValue, value: value, time: at})
}

func (p *param) LinearRampToValueAtTime(value, at float64) error {
	return p.schedule(automationEvent{kind: linearRamp, value: value, time: at})
}

func (p *param) ExponentialRampToValueAtTime(value, at float64) error {
	if value == 0 {
		return fmt.Errorf("%w: exponential ramp to zero", ErrInvalidValue)
	}
	return p.schedule(automationEvent{kind: exponentialRamp, value: value, time: at})
}

func (p *param) schedule(ev automationEvent) error {
	if math.IsNaN(ev.value) || math.IsInf(ev.value, 0) {
		return fmt.Errorf("%w: value %v", ErrInvalidValue, ev.value)
	}
	if ev.time < 0 || math.IsNaN(ev.time) || math.IsInf(ev.time, 0) {
		return fmt.Errorf("%w: time %v", ErrInvalidValue, ev.time)
	}
	p.g.mu.Lock()
	defer p.g.mu.Unlock()
	if p.g.closed {
		return ErrClosed
	}
	// Events at equal times keep insertion order.
	i := sort.Search(len(p.events), func(i int) bool { return p.events[i].time > ev.time })
	p.events = append(p.events, automationEvent{})
	copy(p.events[i+1:], p.events[i:])
	p.events[i] = ev
	return nil
}

// valueAt evaluates the timeline at time t. The caller holds the graph lock.
//
// A ramp runs from the previous event's time and value to its own; before
// the first event the default value holds, after the last its value holds.
func (p *param) valueAt(t float64) float64 {
	prevT, prevV := 0.0, p.def
	for _, ev := range p.events {
		if ev.time <= t {
			prevT, prevV = ev.time, ev.value
			continue
		}
		span := ev.time - prevT
		if span <= 0 {
			return prevV
		}
		frac := (t - prevT) / span
		switch ev.kind {
		case linearRamp:
			return prevV + (ev.value-prevV)*frac
		case exponentialRamp:
			if prevV == 0 || prevV*ev.value < 0 {
				return prevV
			}
			return prevV * math.Pow(ev.value/prevV, frac)
		default:
			return prevV
		}
	}
	return prevV
}
