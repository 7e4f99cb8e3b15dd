// Package webaudio describes the slice of a Web Audio style rendering
// context that the melody engine needs (oscillators, gain stages, scheduled
// parameter automation and a monotonic clock) and provides implementations
// of it: a native Go graph that renders float32 samples, a provider that
// plays that graph through the system audio device, and, in js builds, the
// browser's own AudioContext.
//
// Times are in seconds on the context clock, as in Web Audio.
package webaudio

import "errors"

var (
	// ErrUnavailable is returned by a Provider when the environment cannot
	// produce a rendering context (no audio device, API blocked, ...).
	ErrUnavailable = errors.New("webaudio: rendering context unavailable")
	// ErrClosed is returned by any operation on a closed context.
	ErrClosed = errors.New("webaudio: context closed")
	// ErrInvalidValue reports an automation value or time the context rejects.
	ErrInvalidValue = errors.New("webaudio: invalid value")
	// ErrInvalidState reports a start/stop call out of order.
	ErrInvalidState = errors.New("webaudio: invalid state")
	// ErrInvalidConnection reports a connection across contexts, into a
	// source node or one that would form a cycle.
	ErrInvalidConnection = errors.New("webaudio: invalid connection")
)

type OscillatorType string

const (
	Sine     OscillatorType = "sine"
	Square   OscillatorType = "square"
	Sawtooth OscillatorType = "sawtooth"
	Triangle OscillatorType = "triangle"
)

// Valid reports whether t names a supported waveform.
func (t OscillatorType) Valid() bool {
	switch t {
	case Sine, Square, Sawtooth, Triangle:
		return true
	}
	return false
}

// Node is anything that can feed another node.
type Node interface {
	Connect(dst Node) error
}

// AudioParam is a value with a timeline of scheduled changes.
type AudioParam interface {
	SetValueAtTime(value, at float64) error
	LinearRampToValueAtTime(value, at float64) error
	// ExponentialRampToValueAtTime rejects a zero target value.
	ExponentialRampToValueAtTime(value, at float64) error
}

type OscillatorNode interface {
	Node
	SetType(t OscillatorType) error
	Frequency() AudioParam
	Start(at float64) error
	Stop(at float64) error
}

type GainNode interface {
	Node
	Gain() AudioParam
}

// Context is one live rendering context. Oscillators are released by the
// context once they have stopped.
type Context interface {
	CurrentTime() float64
	CreateOscillator() (OscillatorNode, error)
	CreateGain() (GainNode, error)
	Destination() Node
	// Close releases the context. Every later call fails with ErrClosed.
	Close() error
}

// Provider constructs rendering contexts.
type Provider interface {
	NewContext() (Context, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func() (Context, error)

func (f ProviderFunc) NewContext() (Context, error) { return f() }
