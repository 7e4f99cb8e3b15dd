package ambient

import (
	"fmt"
	"io"
	"math"
	"sort"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// At 60 BPM and 1000 ticks per quarter note one tick is one millisecond.
const (
	midiTicksPerQuarter = 1000
	midiTempoBPM        = 60
	midiVelocity        = 80
)

// MIDIKey returns the nearest MIDI key for a frequency, A4 = 440 Hz = 69.
func MIDIKey(frequency float64) uint8 {
	k := math.Round(69 + 12*math.Log2(frequency/440))
	return uint8(max(0, min(127, k)))
}

type midiEvent struct {
	at  time.Duration
	on  bool
	key uint8
}

// WritePhraseMIDI writes one phrase of m as a single-track Standard MIDI
// File. Overlapping notes of the same key are cut at the next onset.
func WritePhraseMIDI(w io.Writer, m Melody) error {
	if err := m.Validate(); err != nil {
		return err
	}
	var events []midiEvent
	for _, n := range m.Phrase() {
		key := MIDIKey(n.Frequency)
		events = append(events,
			midiEvent{at: n.Offset, on: true, key: key},
			midiEvent{at: n.Offset + n.Duration, on: false, key: key},
		)
	}
	// Note-offs sort before note-ons at the same instant.
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].at != events[j].at {
			return events[i].at < events[j].at
		}
		return !events[i].on && events[j].on
	})

	var tr smf.Track
	tr.Add(0, smf.MetaTrackSequenceName("ambient piano"))
	tr.Add(0, smf.MetaTempo(midiTempoBPM))
	sounding := map[uint8]bool{}
	var last time.Duration
	for _, ev := range events {
		if ev.on == sounding[ev.key] {
			if ev.on {
				// Retrigger: close the ringing note first.
				tr.Add(uint32((ev.at - last).Milliseconds()), midi.NoteOff(0, ev.key))
				last = ev.at
			} else {
				continue
			}
		}
		delta := uint32((ev.at - last).Milliseconds())
		if ev.on {
			tr.Add(delta, midi.NoteOn(0, ev.key, midiVelocity))
		} else {
			tr.Add(delta, midi.NoteOff(0, ev.key))
		}
		sounding[ev.key] = ev.on
		last = ev.at
	}
	tr.Close(0)

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(midiTicksPerQuarter)
	if err := s.Add(tr); err != nil {
		return fmt.Errorf("ambient: midi track: %w", err)
	}
	if _, err := s.WriteTo(w); err != nil {
		return fmt.Errorf("ambient: write midi: %w", err)
	}
	return nil
}
