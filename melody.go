package ambient

import (
	"errors"
	"fmt"
	"time"

	"github.com/cbegin/ambient-go/webaudio"
)

// Scale holds the eight note frequencies, in Hz, that a pattern indexes.
// Copies share nothing.
type Scale [8]float64

// CMajor returns C4 through C5.
func CMajor() Scale {
	return Scale{
		261.63, // C4
		293.66, // D4
		329.63, // E4
		349.23, // F4
		392.00, // G4
		440.00, // A4
		493.88, // B4
		523.25, // C5
	}
}

// Validate checks that every frequency is positive and strictly increasing.
func (s Scale) Validate() error {
	for i, f := range s {
		if f <= 0 {
			return fmt.Errorf("ambient: scale[%d] = %v, want positive", i, f)
		}
		if i > 0 && f <= s[i-1] {
			return fmt.Errorf("ambient: scale[%d] = %v not above scale[%d] = %v", i, f, i-1, s[i-1])
		}
	}
	return nil
}

// Pattern is a phrase as indices into a Scale.
type Pattern []int

// DefaultPattern returns a fresh copy of the built-in phrase.
func DefaultPattern() Pattern {
	return Pattern{0, 2, 4, 2, 0, 4, 2, 0}
}

func (p Pattern) Validate() error {
	if len(p) == 0 {
		return errors.New("ambient: empty pattern")
	}
	for i, idx := range p {
		if idx < 0 || idx >= len(Scale{}) {
			return fmt.Errorf("ambient: pattern[%d] = %d out of range [0, %d]", i, idx, len(Scale{})-1)
		}
	}
	return nil
}

const (
	DefaultNoteDuration   = 2000 * time.Millisecond
	DefaultNoteInterval   = 800 * time.Millisecond
	DefaultPhraseNoteLen  = 1500 * time.Millisecond
	DefaultRepeatInterval = 8000 * time.Millisecond
)

// Envelope shapes one note: the gain starts at zero, rises linearly to Peak
// over Attack, then falls exponentially to Floor at the end of the note.
type Envelope struct {
	Wave   webaudio.OscillatorType
	Peak   float64
	Floor  float64
	Attack time.Duration
}

// PianoEnvelope is the percussive triangle-wave timbre of the melody.
func PianoEnvelope() Envelope {
	return Envelope{
		Wave:   webaudio.Triangle,
		Peak:   0.1,
		Floor:  0.01,
		Attack: 100 * time.Millisecond,
	}
}

func (e Envelope) Validate() error {
	if !e.Wave.Valid() {
		return fmt.Errorf("ambient: unknown waveform %q", e.Wave)
	}
	if e.Peak <= 0 || e.Floor <= 0 {
		return fmt.Errorf("ambient: envelope levels must be positive (peak %v, floor %v)", e.Peak, e.Floor)
	}
	if e.Attack <= 0 {
		return fmt.Errorf("ambient: attack %v must be positive", e.Attack)
	}
	return nil
}

// Play synthesizes one note on ctx starting now. The oscillator stops
// exactly duration from now and is then released by the context.
func (e Envelope) Play(ctx webaudio.Context, frequency float64, duration time.Duration) error {
	if duration <= 0 {
		return fmt.Errorf("ambient: note duration %v must be positive", duration)
	}
	osc, err := ctx.CreateOscillator()
	if err != nil {
		return fmt.Errorf("ambient: create oscillator: %w", err)
	}
	amp, err := ctx.CreateGain()
	if err != nil {
		return fmt.Errorf("ambient: create gain: %w", err)
	}
	if err := errors.Join(osc.Connect(amp), amp.Connect(ctx.Destination())); err != nil {
		return fmt.Errorf("ambient: connect note: %w", err)
	}

	now := ctx.CurrentTime()
	end := now + duration.Seconds()
	gain := amp.Gain()
	err = errors.Join(
		osc.SetType(e.Wave),
		osc.Frequency().SetValueAtTime(frequency, now),
		gain.SetValueAtTime(0, now),
		gain.LinearRampToValueAtTime(e.Peak, now+e.Attack.Seconds()),
		gain.ExponentialRampToValueAtTime(e.Floor, end),
	)
	if err != nil {
		return fmt.Errorf("ambient: program envelope: %w", err)
	}
	if err := osc.Start(now); err != nil {
		return fmt.Errorf("ambient: start note: %w", err)
	}
	if err := osc.Stop(end); err != nil {
		return fmt.Errorf("ambient: stop note: %w", err)
	}
	return nil
}

// PlayNote plays frequency on ctx with the piano envelope. Use
// DefaultNoteDuration for a free-standing note.
func PlayNote(ctx webaudio.Context, frequency float64, duration time.Duration) error {
	return PianoEnvelope().Play(ctx, frequency, duration)
}

// ScheduledNote is one onset of a phrase.
type ScheduledNote struct {
	Position  int
	Frequency float64
	Offset    time.Duration
	Duration  time.Duration
}

// Melody is everything that determines the sound of the engine.
type Melody struct {
	Scale          Scale
	Pattern        Pattern
	NoteInterval   time.Duration
	NoteDuration   time.Duration
	RepeatInterval time.Duration
	Envelope       Envelope
}

func DefaultMelody() Melody {
	return Melody{
		Scale:          CMajor(),
		Pattern:        DefaultPattern(),
		NoteInterval:   DefaultNoteInterval,
		NoteDuration:   DefaultPhraseNoteLen,
		RepeatInterval: DefaultRepeatInterval,
		Envelope:       PianoEnvelope(),
	}
}

func (m Melody) Validate() error {
	if err := m.Scale.Validate(); err != nil {
		return err
	}
	if err := m.Pattern.Validate(); err != nil {
		return err
	}
	if err := m.Envelope.Validate(); err != nil {
		return err
	}
	if m.NoteInterval <= 0 {
		return fmt.Errorf("ambient: note interval %v must be positive", m.NoteInterval)
	}
	if m.NoteDuration <= m.Envelope.Attack {
		return fmt.Errorf("ambient: note duration %v must exceed attack %v", m.NoteDuration, m.Envelope.Attack)
	}
	if m.RepeatInterval <= 0 {
		return fmt.Errorf("ambient: repeat interval %v must be positive", m.RepeatInterval)
	}
	return nil
}

// Phrase lays the pattern out in time without scheduling anything. Offsets
// are strictly increasing in pattern order.
func (m Melody) Phrase() []ScheduledNote {
	notes := make([]ScheduledNote, len(m.Pattern))
	for i, idx := range m.Pattern {
		notes[i] = ScheduledNote{
			Position:  i,
			Frequency: m.Scale[idx],
			Offset:    time.Duration(i) * m.NoteInterval,
			Duration:  m.NoteDuration,
		}
	}
	return notes
}

// Span is the time from the first onset of a phrase to the end of its last
// note.
func (m Melody) Span() time.Duration {
	if len(m.Pattern) == 0 {
		return 0
	}
	return time.Duration(len(m.Pattern)-1)*m.NoteInterval + m.NoteDuration
}
