// Package config loads fsmview settings from a TOML file, a .env file and
// FSMVIEW_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/ha1tch/fsmview/pkg/diagram"
	"github.com/ha1tch/fsmview/pkg/logging"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "FSMVIEW_"

// maxSupersample bounds the raster's oversized working image.
const maxSupersample = 8

// DefaultFeedURL is where the ground station serves status frames.
const DefaultFeedURL = "ws://localhost:8080/"

// Config is the complete set of settings.
type Config struct {
	Diagram DiagramConfig `toml:"diagram"`
	Style   StyleConfig   `toml:"style"`
	Feed    FeedConfig    `toml:"feed"`
	Log     LogConfig     `toml:"log"`
}

// DiagramConfig sizes the rendered frame.
type DiagramConfig struct {
	NodeRadius  float64 `toml:"node_radius"`
	Width       int     `toml:"width"`
	Height      int     `toml:"height"`
	FontSize    float64 `toml:"font_size"`
	Supersample int     `toml:"supersample"`
}

// StyleConfig holds colours as hex strings (#rgb or #rrggbb).
type StyleConfig struct {
	Background     string  `toml:"background"`
	Stroke         string  `toml:"stroke"`
	Text           string  `toml:"text"`
	Highlight      string  `toml:"highlight"`
	HighlightAlpha float64 `toml:"highlight_alpha"`
	Badge          string  `toml:"badge"`
	BadgeOutline   string  `toml:"badge_outline"`
	BadgeText      string  `toml:"badge_text"`
	LineWidth      float64 `toml:"line_width"`
}

// FeedConfig points at the status feed.
type FeedConfig struct {
	URL string `toml:"url"`
}

// LogConfig selects the log verbosity (low, medium, high).
type LogConfig struct {
	Verbosity string `toml:"verbosity"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Diagram: DiagramConfig{
			NodeRadius:  diagram.DefaultNodeRadius,
			Width:       800,
			Height:      600,
			FontSize:    diagram.DefaultFontSize,
			Supersample: 2,
		},
		Style: StyleConfig{
			Background:     "#ffffff",
			Stroke:         "#000000",
			Text:           "#000000",
			Highlight:      "#ffff00",
			HighlightAlpha: 0.3,
			Badge:          "#ff0000",
			BadgeOutline:   "#000000",
			BadgeText:      "#000000",
			LineWidth:      1,
		},
		Feed: FeedConfig{URL: DefaultFeedURL},
		Log:  LogConfig{Verbosity: "medium"},
	}
}

// Load reads settings. A missing path or .env file is not an error; an
// empty path skips the TOML file.
func Load(path, envFile string) (Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("config %s: %w", path, err)
		}
	}

	if envFile != "" {
		// godotenv.Load does not override variables already set
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("env file %s: %w", envFile, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Decode parses TOML text over the defaults.
func Decode(text string) (Config, error) {
	cfg := Default()
	if _, err := toml.Decode(text, &cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}
	float := func(name string, dst *float64) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			return nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		*dst = f
		return nil
	}
	integer := func(name string, dst *int) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		*dst = n
		return nil
	}

	str("URL", &c.Feed.URL)
	str("VERBOSITY", &c.Log.Verbosity)
	str("HIGHLIGHT", &c.Style.Highlight)
	return errors.Join(
		float("NODE_RADIUS", &c.Diagram.NodeRadius),
		float("FONT_SIZE", &c.Diagram.FontSize),
		integer("WIDTH", &c.Diagram.Width),
		integer("HEIGHT", &c.Diagram.Height),
	)
}

// Validate checks ranges and colour syntax.
func (c Config) Validate() error {
	var errs []error
	if c.Diagram.NodeRadius <= 0 {
		errs = append(errs, fmt.Errorf("node_radius must be positive, got %g", c.Diagram.NodeRadius))
	}
	if c.Diagram.Width <= 0 || c.Diagram.Height <= 0 {
		errs = append(errs, fmt.Errorf("frame size must be positive, got %dx%d", c.Diagram.Width, c.Diagram.Height))
	}
	if c.Diagram.FontSize <= 0 {
		errs = append(errs, fmt.Errorf("font_size must be positive, got %g", c.Diagram.FontSize))
	}
	if c.Diagram.Supersample < 1 || c.Diagram.Supersample > maxSupersample {
		errs = append(errs, fmt.Errorf("supersample must be in [1, %d], got %d", maxSupersample, c.Diagram.Supersample))
	}
	if c.Style.LineWidth <= 0 {
		errs = append(errs, fmt.Errorf("line_width must be positive, got %g", c.Style.LineWidth))
	}
	if c.Style.HighlightAlpha < 0 || c.Style.HighlightAlpha > 1 {
		errs = append(errs, fmt.Errorf("highlight_alpha must be in [0, 1], got %g", c.Style.HighlightAlpha))
	}
	if _, err := c.Style.DiagramStyle(); err != nil {
		errs = append(errs, err)
	}
	if _, err := logging.ParseVerbosity(c.Log.Verbosity); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Verbosity returns the configured log verbosity.
func (c Config) Verbosity() logging.Verbosity {
	v, _ := logging.ParseVerbosity(c.Log.Verbosity)
	return v
}

// RasterOptions returns options for the PNG surface.
func (c Config) RasterOptions() diagram.RasterOptions {
	return diagram.RasterOptions{
		Width:       c.Diagram.Width,
		Height:      c.Diagram.Height,
		FontSize:    c.Diagram.FontSize,
		Supersample: c.Diagram.Supersample,
	}
}

// SVGOptions returns options for the SVG surface.
func (c Config) SVGOptions(title string) diagram.SVGOptions {
	return diagram.SVGOptions{
		Width:    c.Diagram.Width,
		Height:   c.Diagram.Height,
		FontSize: c.Diagram.FontSize,
		Title:    title,
	}
}

// DiagramStyle converts the colour strings into a renderer style.
func (s StyleConfig) DiagramStyle() (diagram.Style, error) {
	style := diagram.DefaultStyle()
	style.LineWidth = s.LineWidth

	fields := []struct {
		name  string
		hex   string
		alpha float64
		dst   *color.Color
	}{
		{"background", s.Background, 1, &style.Background},
		{"stroke", s.Stroke, 1, &style.Stroke},
		{"text", s.Text, 1, &style.Text},
		{"highlight", s.Highlight, s.HighlightAlpha, &style.Highlight},
		{"badge", s.Badge, 1, &style.Badge},
		{"badge_outline", s.BadgeOutline, 1, &style.BadgeOutline},
		{"badge_text", s.BadgeText, 1, &style.BadgeText},
	}
	for _, f := range fields {
		c, err := ParseColor(f.hex, f.alpha)
		if err != nil {
			return style, fmt.Errorf("style.%s: %w", f.name, err)
		}
		*f.dst = c
	}
	return style, nil
}

// ParseColor parses a #rgb or #rrggbb colour with the given opacity.
func ParseColor(hex string, alpha float64) (color.NRGBA, error) {
	c, err := colorful.Hex(strings.TrimSpace(hex))
	if err != nil {
		return color.NRGBA{}, err
	}
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(alpha*255 + 0.5)}, nil
}
