package ambient

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cbegin/ambient-go/webaudio"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ambient.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultConfigBuildsDefaultMelody(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	m, err := cfg.BuildMelody()
	require.NoError(t, err)
	assert.Equal(t, DefaultMelody(), m)
	assert.Len(t, cfg.GraphOptions(), 1, "reverb is off by default")
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
sample_rate: 44100
volume: 0.5
melody:
  pattern: [0, 1, 2, 3]
  repeat_interval: 4s
  waveform: sine
reverb:
  enabled: true
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 44100, cfg.SampleRate)
	assert.InDelta(t, 0.5, cfg.Volume, 1e-9)
	assert.Len(t, cfg.GraphOptions(), 2)

	m, err := cfg.BuildMelody()
	require.NoError(t, err)
	assert.Equal(t, Pattern{0, 1, 2, 3}, m.Pattern)
	assert.Equal(t, 4*time.Second, m.RepeatInterval)
	assert.Equal(t, webaudio.Sine, m.Envelope.Wave)
	assert.Equal(t, CMajor(), m.Scale, "unset scale keeps the default")
	assert.Equal(t, DefaultNoteInterval, m.NoteInterval)
}

func TestLoadConfigExpandsEnvironment(t *testing.T) {
	t.Setenv("AMBIENT_TEST_VOLUME", "0.25")
	path := writeConfig(t, "volume: ${AMBIENT_TEST_VOLUME}\n")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, cfg.Volume, 1e-9)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "sample_rate: [1, 2\n"))
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"sample rate":  func(c *Config) { c.SampleRate = 0 },
		"volume":       func(c *Config) { c.Volume = -1 },
		"short scale":  func(c *Config) { c.Melody.Scale = []float64{440} },
		"bad duration": func(c *Config) { c.Melody.NoteInterval = "soon" },
		"bad waveform": func(c *Config) { c.Melody.Waveform = "noise" },
		"bad pattern":  func(c *Config) { c.Melody.Pattern = []int{12} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
