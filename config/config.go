package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Colors maps display roles to terminal codes. Numbers are 256-color
// palette indices (negative disables the color), strings are raw SGR
// parameter lists.
type Colors struct {
	Header      string    `toml:"header"`
	Zebra       [2]int    `toml:"zebra"`
	DB          int       `toml:"db"`
	Foreign     int       `toml:"foreign"`
	Groups      int       `toml:"groups"`
	Name        int       `toml:"name"`
	Version     int       `toml:"version"`
	Installed   int       `toml:"installed"`
	NewVersion  int       `toml:"new_version"`
	Description int       `toml:"description"`
	InfoKey     int       `toml:"info_key"`
	Highlight   int       `toml:"highlight"`
	Cursor      string    `toml:"cursor"`
	Scrollbar   string    `toml:"scrollbar"`
	Selected    [2]string `toml:"selected"`
	Selected256 [2]string `toml:"selected_256"`
}

type Log struct {
	Level      string `toml:"level"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
}

type Config struct {
	Colors        Colors   `toml:"colors"`
	Log           Log      `toml:"log"`
	ScrollPadding int      `toml:"scroll_padding"`
	MinDescWidth  int      `toml:"min_desc_width"`
	WheelStep     int      `toml:"wheel_step"`
	PollMillis    int      `toml:"poll_ms"`
	Escalation    string   `toml:"escalation"`
	RemoveArgs    []string `toml:"remove_args"`
	InstallArgs   []string `toml:"install_args"`
	AUR           bool     `toml:"aur"`
	AURCacheTTL   int      `toml:"aur_cache_ttl_minutes"`
	ColorProfile  string   `toml:"color_profile"`
	NoColor       bool     `toml:"no_color"`
}

func Default() Config {
	return Config{
		Colors: Colors{
			Header:      "40;97;4;1",
			Zebra:       [2]int{233, 234},
			DB:          5,
			Foreign:     1,
			Groups:      3,
			Name:        15,
			Version:     6,
			Installed:   10,
			NewVersion:  9,
			Description: 7,
			InfoKey:     14,
			Highlight:   4,
			Cursor:      "44",
			Scrollbar:   "38;5;118;48;5;57",
			Selected:    [2]string{"1;42", "1;41"},
			Selected256: [2]string{"1;48;5;22", "1;48;5;52"},
		},
		Log: Log{
			Level:      "info",
			MaxSizeMB:  5,
			MaxBackups: 2,
		},
		ScrollPadding: 5,
		MinDescWidth:  30,
		WheelStep:     3,
		PollMillis:    100,
		Escalation:    "sudo",
		RemoveArgs:    []string{"-Rsc"},
		InstallArgs:   []string{"-S"},
		AURCacheTTL:   10,
	}
}

func (c Config) PollInterval() time.Duration {
	return time.Duration(c.PollMillis) * time.Millisecond
}

func (c Config) AURTTL() time.Duration {
	return time.Duration(c.AURCacheTTL) * time.Minute
}

// DefaultPath is $XDG_CONFIG_HOME/pms/config.toml, or "" when the user
// config dir cannot be determined.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "pms", "config.toml")
}

// Load decodes the TOML file at path on top of Default and applies the
// environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		_, err := toml.DecodeFile(path, &cfg)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	return cfg, cfg.validate()
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PMS_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("PMS_COLOR_PROFILE"); v != "" {
		c.ColorProfile = v
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		c.NoColor = true
	}
}

func (c *Config) validate() error {
	switch {
	case c.MinDescWidth < 1:
		return fmt.Errorf("min_desc_width must be positive, got %d", c.MinDescWidth)
	case c.ScrollPadding < 0:
		return fmt.Errorf("scroll_padding must not be negative, got %d", c.ScrollPadding)
	case c.WheelStep < 1:
		return fmt.Errorf("wheel_step must be positive, got %d", c.WheelStep)
	case c.PollMillis < 1:
		return fmt.Errorf("poll_ms must be positive, got %d", c.PollMillis)
	}
	switch strings.ToLower(c.ColorProfile) {
	case "", "truecolor", "24bit", "256", "ansi256", "ansi", "16", "ascii", "none":
	default:
		return fmt.Errorf("unknown color_profile %q", c.ColorProfile)
	}
	return nil
}
