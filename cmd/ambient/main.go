package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/cbegin/ambient-go"
	"github.com/cbegin/ambient-go/webaudio"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to a YAML config file")
		envPath    = flag.String("env", ".env", "dotenv file loaded before the config; missing files are ignored")
		sampleRate = flag.Int("sample-rate", 0, "output sample rate (overrides config)")
		volume     = flag.Float64("volume", -1, "master volume scalar (overrides config)")
		reverb     = flag.Bool("reverb", false, "enable the room reverb")
		logLevel   = flag.String("log-level", "info", "log level: debug|info|warn|error")
		wavPath    = flag.String("wav", "", "render to a WAV file instead of playing")
		midiPath   = flag.String("midi", "", "write one phrase as a MIDI file instead of playing")
		seconds    = flag.Float64("seconds", 16, "length of the -wav render")
		enabled    = flag.Bool("enabled", true, "start with the music switched on")
	)
	flag.Parse()

	if err := loadDotEnv(*envPath); err != nil {
		log.Fatal(err)
	}
	logger, err := newLogger(*logLevel)
	if err != nil {
		log.Fatal(err)
	}
	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if *sampleRate > 0 {
		cfg.SampleRate = *sampleRate
	}
	if *volume >= 0 {
		cfg.Volume = *volume
	}
	if *reverb {
		cfg.Reverb.Enabled = true
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	melody, err := cfg.BuildMelody()
	if err != nil {
		log.Fatal(err)
	}

	if *wavPath != "" || *midiPath != "" {
		if err := export(cfg, melody, *wavPath, *midiPath, *seconds); err != nil {
			log.Fatal(err)
		}
		return
	}

	provider := webaudio.NewDeviceProvider(cfg.SampleRate, cfg.GraphOptions()...)
	ctrl, err := ambient.NewController(provider, ambient.WithMelody(melody), ambient.WithLogger(logger))
	if err != nil {
		log.Fatal(err)
	}
	defer ctrl.Teardown()
	ctrl.SetEnabled(*enabled)

	if _, err := tea.NewProgram(newModel(ctrl)).Run(); err != nil {
		log.Fatal(err)
	}
}

// loadDotEnv loads environment variables from path. Missing files are ignored.
func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func newLogger(level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return nil, fmt.Errorf("invalid -log-level %q", level)
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	return slog.New(h), nil
}

func loadConfig(path string) (ambient.Config, error) {
	if path == "" {
		return ambient.DefaultConfig(), nil
	}
	return ambient.LoadConfig(path)
}

func export(cfg ambient.Config, m ambient.Melody, wavPath, midiPath string, seconds float64) error {
	if wavPath != "" {
		samples, err := ambient.RenderSamples(m, cfg.SampleRate, seconds, cfg.GraphOptions()...)
		if err != nil {
			return err
		}
		if err := os.WriteFile(wavPath, ambient.EncodeWAVFloat32LE(samples, cfg.SampleRate, 2), 0o644); err != nil {
			return err
		}
		fmt.Printf("wrote %s (%.1fs)\n", wavPath, seconds)
	}
	if midiPath != "" {
		f, err := os.Create(midiPath)
		if err != nil {
			return err
		}
		if err := ambient.WritePhraseMIDI(f, m); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", midiPath)
	}
	return nil
}
