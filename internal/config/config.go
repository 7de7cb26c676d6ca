// Package config loads hud configuration from the environment and an
// optional TOML style file.
//
// Environment keys carry the HUD prefix and the section name, for example
// HUD_DISPLAY_BACKEND, HUD_STYLE_SHADOW_COLOUR, HUD_LOGGING_LEVEL or
// HUD_SERVER_ADDR.
// Style values are read from the style file first and then overridden by
// any HUD_STYLE_* variable that is set.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"

	"github.com/rook-computer/hud/internal/render/layout"
)

// Prefix is the environment prefix for every key.
const Prefix = "HUD"

// DefaultServerAddr is where the control API listens unless configured.
const DefaultServerAddr = "127.0.0.1:8088"

// StyleFileEnv names the variable that points at the TOML style file.
const StyleFileEnv = "HUD_STYLE_FILE"

// Config holds all application configuration.
type Config struct {
	Display DisplayConfig
	Style   Style
	Logging LogConfig
	Server  ServerConfig
}

// DisplayConfig selects the back-end and the overlay size.
type DisplayConfig struct {
	Backend     string `split_words:"true" default:"x11"` // x11, fbdev or headless
	X11Display  string `split_words:"true"`
	Framebuffer string `split_words:"true" default:"/dev/fb0"`
	Monitor     int    `split_words:"true" default:"0"` // 1-based, 0 is the whole display
	Lines       int    `split_words:"true" default:"2"`
}

// Style is the initial look of an overlay. Zero-valued colour and font
// fields keep the render defaults.
type Style struct {
	Font          string `toml:"font" split_words:"true"`
	Colour        string `toml:"colour" split_words:"true"`
	ShadowColour  string `toml:"shadow_colour" split_words:"true"`
	OutlineColour string `toml:"outline_colour" split_words:"true"`

	Timeout          int `toml:"timeout" split_words:"true"`
	ShadowOffset     int `toml:"shadow_offset" split_words:"true"`
	ShadowDirection  int `toml:"shadow_direction" split_words:"true"`
	OutlineOffset    int `toml:"outline_offset" split_words:"true"`
	HorizontalOffset int `toml:"horizontal_offset" split_words:"true"`
	VerticalOffset   int `toml:"vertical_offset" split_words:"true"`
	BarLength        int `toml:"bar_length" split_words:"true"`

	Position string `toml:"position" split_words:"true"`
	Align    string `toml:"align" split_words:"true"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string   `split_words:"true" default:"info"`
	Development bool     `split_words:"true" default:"false"`
	OutputPaths []string `split_words:"true" default:"stderr"`
}

// ServerConfig holds the HTTP control API configuration.
type ServerConfig struct {
	Addr    string `split_words:"true" default:"127.0.0.1:8088"`
	DevCORS bool   `split_words:"true" default:"false"`
}

// Load builds the configuration: defaults, then the style file if present,
// then the environment.
func Load() (*Config, error) {
	cfg := Default()
	path := StyleFile()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, &cfg.Style); err != nil {
				return nil, fmt.Errorf("failed to read style file %s: %w", path, err)
			}
		} else if os.Getenv(StyleFileEnv) != "" {
			return nil, fmt.Errorf("style file: %w", err)
		}
	}
	if err := envconfig.Process(Prefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Style.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads configuration or returns the defaults.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Display: DisplayConfig{
			Backend:     "x11",
			Framebuffer: "/dev/fb0",
			Lines:       2,
		},
		Style: DefaultStyle(),
		Logging: LogConfig{
			Level:       "info",
			OutputPaths: []string{"stderr"},
		},
		Server: ServerConfig{
			Addr: DefaultServerAddr,
		},
	}
}

// DefaultStyle matches a freshly created overlay.
func DefaultStyle() Style {
	return Style{
		Timeout:   -1,
		BarLength: -1,
		Position:  "top",
		Align:     "left",
	}
}

// StyleFile returns the style file location: $HUD_STYLE_FILE, or
// hud/style.toml under the XDG config directory.
func StyleFile() string {
	if p := os.Getenv(StyleFileEnv); p != "" {
		return p
	}
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "hud", "style.toml")
}

// Validate checks the ranges an overlay would reject.
func (s Style) Validate() error {
	var errs []error
	if s.ShadowOffset < 0 {
		errs = append(errs, fmt.Errorf("shadow_offset %d is negative", s.ShadowOffset))
	}
	if s.OutlineOffset < 0 {
		errs = append(errs, fmt.Errorf("outline_offset %d is negative", s.OutlineOffset))
	}
	if s.ShadowDirection < 0 || s.ShadowDirection > 7 {
		errs = append(errs, fmt.Errorf("shadow_direction %d outside 0..7", s.ShadowDirection))
	}
	if s.BarLength == 0 || s.BarLength < -1 {
		errs = append(errs, fmt.Errorf("bar_length %d must be positive or -1", s.BarLength))
	}
	if _, err := layout.ParsePosition(s.Position); err != nil {
		errs = append(errs, err)
	}
	if _, err := layout.ParseAlignment(s.Align); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid style: %w", errors.Join(errs...))
	}
	return nil
}
