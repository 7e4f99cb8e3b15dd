package ambient

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cbegin/ambient-go/webaudio"
)

// Config is the file form of the engine settings.
type Config struct {
	SampleRate int          `yaml:"sample_rate"`
	Volume     float64      `yaml:"volume"`
	Melody     MelodyConfig `yaml:"melody"`
	Reverb     ReverbConfig `yaml:"reverb"`
}

// MelodyConfig mirrors Melody with durations as strings ("800ms", "8s").
type MelodyConfig struct {
	Scale          []float64 `yaml:"scale"`
	Pattern        []int     `yaml:"pattern"`
	NoteInterval   string    `yaml:"note_interval"`
	NoteDuration   string    `yaml:"note_duration"`
	RepeatInterval string    `yaml:"repeat_interval"`
	Waveform       string    `yaml:"waveform"`
	PeakGain       float64   `yaml:"peak_gain"`
	FloorGain      float64   `yaml:"floor_gain"`
	Attack         string    `yaml:"attack"`
}

// ReverbConfig controls the room reverb of the native graph.
type ReverbConfig struct {
	Enabled  bool    `yaml:"enabled"`
	RoomSize float32 `yaml:"room_size"`
	Feedback float32 `yaml:"feedback"`
	Wet      float32 `yaml:"wet"`
}

// DefaultConfig describes DefaultMelody at 48 kHz, full volume, dry.
func DefaultConfig() Config {
	m := DefaultMelody()
	return Config{
		SampleRate: 48000,
		Volume:     1,
		Melody: MelodyConfig{
			Scale:          m.Scale[:],
			Pattern:        []int(m.Pattern),
			NoteInterval:   m.NoteInterval.String(),
			NoteDuration:   m.NoteDuration.String(),
			RepeatInterval: m.RepeatInterval.String(),
			Waveform:       string(m.Envelope.Wave),
			PeakGain:       m.Envelope.Peak,
			FloorGain:      m.Envelope.Floor,
			Attack:         m.Envelope.Attack.String(),
		},
		Reverb: ReverbConfig{
			RoomSize: 0.6,
			Feedback: 0.7,
			Wet:      0.25,
		},
	}
}

// LoadConfig reads a YAML file over DefaultConfig. Environment variables
// referenced as ${VAR} or $VAR are expanded before parsing.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-provided configuration
	if err != nil {
		return Config{}, fmt.Errorf("ambient: load config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := DefaultConfig()
	// Lists replace the defaults instead of merging element-wise.
	cfg.Melody.Scale, cfg.Melody.Pattern = nil, nil
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return Config{}, fmt.Errorf("ambient: parse config: %w", err)
	}
	def := DefaultConfig()
	if cfg.Melody.Scale == nil {
		cfg.Melody.Scale = def.Melody.Scale
	}
	if cfg.Melody.Pattern == nil {
		cfg.Melody.Pattern = def.Melody.Pattern
	}

	return cfg, nil
}

// Validate checks that the configuration describes a playable melody.
func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("ambient: config: sample_rate %d must be positive", c.SampleRate)
	}
	if c.Volume < 0 {
		return fmt.Errorf("ambient: config: volume %v must not be negative", c.Volume)
	}
	if _, err := c.BuildMelody(); err != nil {
		return err
	}
	return nil
}

// BuildMelody converts the melody section into a validated Melody.
func (c Config) BuildMelody() (Melody, error) {
	mc := c.Melody
	if len(mc.Scale) != len(Scale{}) {
		return Melody{}, fmt.Errorf("ambient: config: scale has %d notes, want %d", len(mc.Scale), len(Scale{}))
	}
	var m Melody
	copy(m.Scale[:], mc.Scale)
	m.Pattern = append(Pattern(nil), mc.Pattern...)

	durations := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"note_interval", mc.NoteInterval, &m.NoteInterval},
		{"note_duration", mc.NoteDuration, &m.NoteDuration},
		{"repeat_interval", mc.RepeatInterval, &m.RepeatInterval},
		{"attack", mc.Attack, &m.Envelope.Attack},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return Melody{}, fmt.Errorf("ambient: config: %s: %w", d.name, err)
		}
		*d.dst = v
	}
	m.Envelope.Wave = webaudio.OscillatorType(mc.Waveform)
	m.Envelope.Peak = mc.PeakGain
	m.Envelope.Floor = mc.FloorGain

	if err := m.Validate(); err != nil {
		return Melody{}, fmt.Errorf("ambient: config: %w", err)
	}
	return m, nil
}

// GraphOptions returns the native graph settings for this configuration.
func (c Config) GraphOptions() []webaudio.GraphOption {
	opts := []webaudio.GraphOption{webaudio.WithMasterVolume(c.Volume)}
	if c.Reverb.Enabled {
		opts = append(opts, webaudio.WithReverb(c.Reverb.RoomSize, c.Reverb.Feedback, c.Reverb.Wet))
	}
	return opts
}
