package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Map     MapConfig      `mapstructure:"map" toml:"map"`
	UI      UIConfig       `mapstructure:"ui" toml:"ui"`
	Log     LogConfig      `mapstructure:"log" toml:"log"`
	Palette []PaletteColor `mapstructure:"palette" toml:"palette"`
}

// MapConfig describes the background image and its coordinate box.
type MapConfig struct {
	Image   string  `mapstructure:"image" toml:"image"`
	Width   float64 `mapstructure:"width" toml:"width"`
	Height  float64 `mapstructure:"height" toml:"height"`
	MinZoom int     `mapstructure:"min_zoom" toml:"min_zoom"`
	MaxZoom int     `mapstructure:"max_zoom" toml:"max_zoom"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	DefaultColor string `mapstructure:"default_color" toml:"default_color"`
	SidebarWidth int    `mapstructure:"sidebar_width" toml:"sidebar_width"`
}

// LogConfig holds the log file location and level. An empty path disables
// logging.
type LogConfig struct {
	Path  string `mapstructure:"path" toml:"path"`
	Level string `mapstructure:"level" toml:"level"`
}

// PaletteColor is one selectable marker color. Key is an optional single
// digit that selects it.
type PaletteColor struct {
	Name string `mapstructure:"name" toml:"name"`
	Hex  string `mapstructure:"hex" toml:"hex"`
	Key  string `mapstructure:"key" toml:"key"`
}

// DefaultPalette is used when the config file names no colors.
func DefaultPalette() []PaletteColor {
	return []PaletteColor{
		{Name: "red", Hex: "#f38ba8", Key: "1"},
		{Name: "green", Hex: "#a6e3a1", Key: "2"},
		{Name: "blue", Hex: "#89b4fa", Key: "3"},
	}
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Map: MapConfig{
			Image:   filepath.Join(dataDir(), "map.png"),
			Width:   6509,
			Height:  6809,
			MinZoom: -7,
			MaxZoom: 4,
		},
		UI:      UIConfig{DefaultColor: "red", SidebarWidth: 36},
		Log:     LogConfig{Path: filepath.Join(stateDir(), "mapmark.log"), Level: "info"},
		Palette: DefaultPalette(),
	}
}

// Path returns the config file location: $MAPMARK_CONFIG, or config.toml
// under the user config dir.
func Path() string {
	if p := os.Getenv("MAPMARK_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(configDir(), "config.toml")
}

// Load reads configuration from file and env. Env var overrides use prefix MAPMARK_.
func Load() (Config, error) {
	v := viper.New()

	def := Default()
	v.SetDefault("map.image", def.Map.Image)
	v.SetDefault("map.width", def.Map.Width)
	v.SetDefault("map.height", def.Map.Height)
	v.SetDefault("map.min_zoom", def.Map.MinZoom)
	v.SetDefault("map.max_zoom", def.Map.MaxZoom)
	v.SetDefault("ui.default_color", def.UI.DefaultColor)
	v.SetDefault("ui.sidebar_width", def.UI.SidebarWidth)
	v.SetDefault("log.path", def.Log.Path)
	v.SetDefault("log.level", def.Log.Level)

	v.SetConfigType("toml")
	v.SetConfigFile(Path())

	v.SetEnvPrefix("MAPMARK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// a missing file means defaults
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if len(c.Palette) == 0 {
		c.Palette = DefaultPalette()
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	if c.Map.Width <= 0 || c.Map.Height <= 0 {
		return fmt.Errorf("map size must be positive, got %vx%v", c.Map.Width, c.Map.Height)
	}
	if c.Map.MinZoom > c.Map.MaxZoom {
		return fmt.Errorf("map.min_zoom %d is above map.max_zoom %d", c.Map.MinZoom, c.Map.MaxZoom)
	}
	if c.UI.SidebarWidth < 20 {
		return fmt.Errorf("ui.sidebar_width must be at least 20, got %d", c.UI.SidebarWidth)
	}
	if len(c.Palette) == 0 {
		return fmt.Errorf("palette is empty")
	}

	names := make(map[string]bool, len(c.Palette))
	keys := make(map[string]string, len(c.Palette))
	for i, p := range c.Palette {
		if p.Name == "" {
			return fmt.Errorf("palette[%d]: name is required", i)
		}
		if names[p.Name] {
			return fmt.Errorf("palette[%d]: duplicate color %q", i, p.Name)
		}
		names[p.Name] = true
		if !validHex(p.Hex) {
			return fmt.Errorf("palette[%d] %q: hex must look like #rrggbb, got %q", i, p.Name, p.Hex)
		}
		if p.Key == "" {
			continue
		}
		if len(p.Key) != 1 || p.Key[0] < '0' || p.Key[0] > '9' {
			return fmt.Errorf("palette[%d] %q: key must be a single digit, got %q", i, p.Name, p.Key)
		}
		if other, ok := keys[p.Key]; ok {
			return fmt.Errorf("palette[%d] %q: key %s already selects %q", i, p.Name, p.Key, other)
		}
		keys[p.Key] = p.Name
	}
	if !names[c.UI.DefaultColor] {
		return fmt.Errorf("ui.default_color %q is not in the palette", c.UI.DefaultColor)
	}
	return nil
}

// WriteDefault writes the built-in configuration to path unless a file is
// already there. It reports whether a file was written.
func WriteDefault(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("stat config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("create config dir: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("# mapmark configuration\n# Add [[palette]] blocks to extend the marker colors.\n\n")
	if err := toml.NewEncoder(&buf).Encode(Default()); err != nil {
		return false, fmt.Errorf("encode config.toml: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return false, fmt.Errorf("write config.toml: %w", err)
	}
	return true, nil
}

func validHex(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, r := range s[1:] {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

func configDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(os.Getenv("HOME"), ".config", "mapmark")
	}
	return filepath.Join(dir, "mapmark")
}

func stateDir() string {
	if d := os.Getenv("XDG_STATE_HOME"); d != "" {
		return filepath.Join(d, "mapmark")
	}
	return filepath.Join(os.Getenv("HOME"), ".local", "state", "mapmark")
}

func dataDir() string {
	if d := os.Getenv("XDG_DATA_HOME"); d != "" {
		return filepath.Join(d, "mapmark")
	}
	return filepath.Join(os.Getenv("HOME"), ".local", "share", "mapmark")
}
