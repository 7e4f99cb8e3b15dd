package ambient

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cbegin/ambient-go/webaudio"
)

func TestCMajorScale(t *testing.T) {
	s := CMajor()
	require.NoError(t, s.Validate())
	assert.InDelta(t, 261.63, s[0], 1e-9)
	assert.InDelta(t, 440.0, s[5], 1e-9)
	assert.InDelta(t, 523.25, s[7], 1e-9)
	assert.InDelta(t, 2*s[0], s[7], 0.02, "top note is an octave above the root")
}

func TestScaleValidate(t *testing.T) {
	s := CMajor()
	s[3] = s[2]
	assert.Error(t, s.Validate())

	s = CMajor()
	s[0] = 0
	assert.Error(t, s.Validate())
}

func TestScaleCopiesAreIndependent(t *testing.T) {
	m := DefaultMelody()
	s := m.Scale
	s[0] = 1
	assert.InDelta(t, 261.63, m.Scale[0], 1e-9)
}

func TestDefaultPatternIsFresh(t *testing.T) {
	p := DefaultPattern()
	p[0] = 7
	assert.Equal(t, Pattern{0, 2, 4, 2, 0, 4, 2, 0}, DefaultPattern())
}

func TestPatternValidate(t *testing.T) {
	assert.NoError(t, DefaultPattern().Validate())
	assert.Error(t, Pattern{}.Validate())
	assert.Error(t, Pattern{0, 8}.Validate())
	assert.Error(t, Pattern{-1}.Validate())
}

func TestDefaultPhraseLayout(t *testing.T) {
	m := DefaultMelody()
	phrase := m.Phrase()
	require.Len(t, phrase, 8)

	s := CMajor()
	wantFreq := []float64{s[0], s[2], s[4], s[2], s[0], s[4], s[2], s[0]}
	for i, n := range phrase {
		assert.Equal(t, i, n.Position)
		assert.Equal(t, time.Duration(i)*800*time.Millisecond, n.Offset, "note %d", i)
		assert.Equal(t, 1500*time.Millisecond, n.Duration)
		assert.InDelta(t, wantFreq[i], n.Frequency, 1e-9, "note %d", i)
	}
	assert.Equal(t, 5600*time.Millisecond, phrase[7].Offset)
	assert.Equal(t, 7100*time.Millisecond, m.Span())
	assert.Less(t, m.Span(), m.RepeatInterval, "phrases never overlap")
}

func TestMelodyValidate(t *testing.T) {
	require.NoError(t, DefaultMelody().Validate())

	cases := map[string]func(*Melody){
		"zero interval":       func(m *Melody) { m.NoteInterval = 0 },
		"zero repeat":         func(m *Melody) { m.RepeatInterval = 0 },
		"note shorter attack": func(m *Melody) { m.NoteDuration = 50 * time.Millisecond },
		"bad waveform":        func(m *Melody) { m.Envelope.Wave = "pulse" },
		"zero floor":          func(m *Melody) { m.Envelope.Floor = 0 },
		"empty pattern":       func(m *Melody) { m.Pattern = nil },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			m := DefaultMelody()
			mutate(&m)
			assert.Error(t, m.Validate())
		})
	}
}

func TestPlayNoteEnvelope(t *testing.T) {
	const sr = 48000
	g, err := webaudio.NewGraph(sr)
	require.NoError(t, err)
	require.NoError(t, PlayNote(g, 440, DefaultNoteDuration))
	assert.Equal(t, 1, g.ActiveSources())

	out := g.Render(2.5)
	peakIn := func(from, to float64) float64 {
		var m float64
		for _, s := range out[2*int(math.Round(from*sr)) : 2*int(math.Round(to*sr))] {
			m = math.Max(m, math.Abs(float64(s)))
		}
		return m
	}

	assert.Less(t, peakIn(0, 0.01), 0.011, "attack starts from silence")
	p := peakIn(0.09, 0.11)
	assert.Greater(t, p, 0.08)
	assert.LessOrEqual(t, p, 0.1+1e-6)
	assert.Less(t, peakIn(1.95, 2.0), 0.012, "decays to the floor")
	assert.Zero(t, peakIn(2.0, 2.5), "oscillator stops at the note end")
	assert.Zero(t, g.ActiveSources(), "stopped oscillator is released")
}

func TestPlayNoteErrors(t *testing.T) {
	g, err := webaudio.NewGraph(8000)
	require.NoError(t, err)
	assert.Error(t, PlayNote(g, 440, 0))

	require.NoError(t, g.Close())
	assert.ErrorIs(t, PlayNote(g, 440, time.Second), webaudio.ErrClosed)
}

func TestEnvelopeWaveform(t *testing.T) {
	const sr = 48000
	env := PianoEnvelope()
	env.Wave = webaudio.Square
	env.Attack = time.Millisecond
	g, err := webaudio.NewGraph(sr)
	require.NoError(t, err)
	require.NoError(t, env.Play(g, 100, 500*time.Millisecond))

	out := g.Render(0.1)
	// A square wave sits at the envelope level, not below it.
	var m float64
	for _, s := range out[2*sr/100 : 2*sr/50] {
		m = math.Max(m, math.Abs(float64(s)))
	}
	assert.Greater(t, m, 0.09)
}
