// Package config loads voicebridge settings from a TOML file.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/james-see/voicebridge/pkg/glbridge"
	"github.com/james-see/voicebridge/pkg/glbridge/headless"
	"github.com/james-see/voicebridge/pkg/voicing"
	"github.com/rs/zerolog"
)

// Config holds every setting the CLI, server and TUI share.
type Config struct {
	CPS             float64
	RangeLow        string
	RangeHigh       string
	Dictionary      string
	Picker          string
	RuntimeURL      string
	CanvasID        string
	FPS             int
	Port            int
	LogLevel        string
	TicksPerQuarter uint16

	// Dictionaries are the custom voicing dictionaries from the file. Load
	// registers them, so Dictionary may name one.
	Dictionaries map[string]voicing.Dictionary
}

type fileConfig struct {
	CPS             float64 `toml:"cps"`
	RangeLow        string  `toml:"range_low"`
	RangeHigh       string  `toml:"range_high"`
	Dictionary      string  `toml:"dictionary"`
	Picker          string  `toml:"picker"`
	RuntimeURL      string  `toml:"runtime_url"`
	CanvasID        string  `toml:"canvas_id"`
	FPS             int     `toml:"fps"`
	Port            int     `toml:"port"`
	LogLevel        string  `toml:"log_level"`
	TicksPerQuarter int     `toml:"ticks_per_quarter"`

	Dictionaries map[string]voicing.Dictionary `toml:"dictionaries"`
}

// Default returns the built-in settings: half a cycle per second, the
// lefthand dictionary in F3..A4, and the headless shader runtime.
func Default() Config {
	return Config{
		CPS:             0.5,
		RangeLow:        "F3",
		RangeHigh:       "A4",
		Dictionary:      "lefthand",
		Picker:          "minTopNoteDiff",
		RuntimeURL:      headless.URL,
		CanvasID:        glbridge.DefaultCanvasID,
		FPS:             30,
		Port:            8080,
		LogLevel:        "info",
		TicksPerQuarter: 480,
	}
}

// Load reads path over the defaults. Keys missing from the file keep their
// default value.
func Load(path string) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("load config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("cps") {
		cfg.CPS = raw.CPS
	}
	if meta.IsDefined("range_low") {
		cfg.RangeLow = strings.TrimSpace(raw.RangeLow)
	}
	if meta.IsDefined("range_high") {
		cfg.RangeHigh = strings.TrimSpace(raw.RangeHigh)
	}
	if meta.IsDefined("dictionary") {
		cfg.Dictionary = strings.TrimSpace(raw.Dictionary)
	}
	if meta.IsDefined("picker") {
		cfg.Picker = strings.TrimSpace(raw.Picker)
	}
	if meta.IsDefined("runtime_url") {
		cfg.RuntimeURL = strings.TrimSpace(raw.RuntimeURL)
	}
	if meta.IsDefined("canvas_id") {
		cfg.CanvasID = strings.TrimSpace(raw.CanvasID)
	}
	if meta.IsDefined("fps") {
		cfg.FPS = raw.FPS
	}
	if meta.IsDefined("port") {
		cfg.Port = raw.Port
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("ticks_per_quarter") {
		if raw.TicksPerQuarter <= 0 || raw.TicksPerQuarter > 0x7FFF {
			return Config{}, fmt.Errorf("ticks_per_quarter %d out of range", raw.TicksPerQuarter)
		}
		cfg.TicksPerQuarter = uint16(raw.TicksPerQuarter)
	}
	for name, d := range raw.Dictionaries {
		if strings.TrimSpace(name) == "" {
			return Config{}, errors.New("dictionary with an empty name")
		}
		if err := d.Validate(); err != nil {
			return Config{}, fmt.Errorf("dictionary %s: %w", name, err)
		}
	}
	for name, d := range raw.Dictionaries {
		voicing.RegisterDictionary(name, d)
	}
	cfg.Dictionaries = raw.Dictionaries

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that every setting is usable.
func (c Config) Validate() error {
	var errs []error
	if c.CPS <= 0 {
		errs = append(errs, fmt.Errorf("cps must be positive, got %v", c.CPS))
	}
	if _, err := c.Range(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Voicer(); err != nil {
		errs = append(errs, err)
	}
	if c.RuntimeURL == "" {
		errs = append(errs, errors.New("runtime_url is empty"))
	}
	if c.CanvasID == "" {
		errs = append(errs, errors.New("canvas_id is empty"))
	}
	if c.FPS <= 0 {
		errs = append(errs, fmt.Errorf("fps must be positive, got %d", c.FPS))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.TicksPerQuarter == 0 {
		errs = append(errs, errors.New("ticks_per_quarter is zero"))
	}
	return errors.Join(errs...)
}

// Range parses the voicing range.
func (c Config) Range() (voicing.Range, error) {
	return voicing.ParseRange(c.RangeLow, c.RangeHigh)
}

// Voicer builds the configured dictionary voicer.
func (c Config) Voicer() (voicing.DictionaryVoicer, error) {
	return voicing.NewVoicer(c.Dictionary, c.Picker)
}

// VoicingOptions turns the range, dictionary and picker settings into
// options for voicing.Voicings.
func (c Config) VoicingOptions(log zerolog.Logger) ([]voicing.Option, error) {
	r, err := c.Range()
	if err != nil {
		return nil, err
	}
	v, err := c.Voicer()
	if err != nil {
		return nil, err
	}
	return []voicing.Option{voicing.WithRange(r), voicing.WithVoicer(v), voicing.WithLogger(log)}, nil
}
