// Package config loads textfill.toml, the optional per-project defaults for
// the fit command. Command-line flags override file values, and a document's
// own options section overrides both.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/ByLCY/textfill/fit"
	"github.com/ByLCY/textfill/renderer"
)

// FileName is the config file looked up next to the input when --config is
// not given.
const FileName = "textfill.toml"

// Measure backends.
const (
	MeasureCanvas = "canvas"
	MeasureXImage = "ximage"
)

// Config mirrors textfill.toml.
type Config struct {
	Fit    Fit    `toml:"fit"`
	Output Output `toml:"output"`
}

// Fit holds the fit.Options defaults. Sizes are CSS pixels.
type Fit struct {
	MinFont          int     `toml:"min_font"`
	MaxFont          int     `toml:"max_font"`
	WidthOnly        bool    `toml:"width_only"`
	AllowOverflow    bool    `toml:"allow_overflow"`
	ChangeLineHeight bool    `toml:"change_line_height"`
	ExplicitWidth    float64 `toml:"explicit_width"`
	ExplicitHeight   float64 `toml:"explicit_height"`
}

// Output controls rendering and reports.
type Output struct {
	Format  string `toml:"format"`
	Measure string `toml:"measure"`
	Outline bool   `toml:"outline"`
	Report  string `toml:"report"`
}

// Default returns the built-in configuration.
func Default() Config {
	d := fit.DefaultOptions()
	return Config{
		Fit: Fit{
			MinFont: d.MinFontPixels,
			MaxFont: d.MaxFontPixels,
		},
		Output: Output{
			Format:  string(renderer.FormatPDF),
			Measure: MeasureCanvas,
		},
	}
}

// Load reads path on top of Default. Keys absent from the file keep their
// default values.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("load config %s: unknown key %q", path, undecoded[0].String())
	}
	return cfg, cfg.Validate()
}

// LoadOptional behaves like Load but returns Default when path does not exist.
func LoadOptional(path string) (Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return Load(path)
}

// Validate checks enumerated values.
func (c Config) Validate() error {
	if _, err := renderer.ParseFormat(c.Output.Format); err != nil {
		return err
	}
	switch c.Output.Measure {
	case "", MeasureCanvas, MeasureXImage:
	default:
		return fmt.Errorf("unknown measure backend %q (want %s or %s)", c.Output.Measure, MeasureCanvas, MeasureXImage)
	}
	if c.Fit.ExplicitWidth < 0 || c.Fit.ExplicitHeight < 0 {
		return errors.New("explicit_width and explicit_height must not be negative")
	}
	return nil
}

// FitOptions converts the [fit] table into fit.Options.
func (c Config) FitOptions() fit.Options {
	return fit.Options{
		MinFontPixels:    c.Fit.MinFont,
		MaxFontPixels:    c.Fit.MaxFont,
		WidthOnly:        c.Fit.WidthOnly,
		AllowOverflow:    c.Fit.AllowOverflow,
		ChangeLineHeight: c.Fit.ChangeLineHeight,
		ExplicitWidth:    c.Fit.ExplicitWidth,
		ExplicitHeight:   c.Fit.ExplicitHeight,
	}
}
