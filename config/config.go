// Package config loads the player's TOML settings file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
	"github.com/samber/lo"

	"github.com/pes18fan/amai/library"
	"github.com/pes18fan/amai/player"
)

const AppName = "amai"

type Config struct {
	// MusicDir overrides the user's audio directory when set.
	MusicDir         string
	Extensions       []string
	Volume           float64
	PositionInterval time.Duration
	Watch            bool
	CoverArt         bool
	LogFile          string
}

type fileConfig struct {
	MusicDir         string   `toml:"music_dir"`
	Extensions       []string `toml:"extensions"`
	Volume           float64  `toml:"volume"`
	PositionInterval string   `toml:"position_interval"`
	Watch            bool     `toml:"watch"`
	CoverArt         bool     `toml:"cover_art"`
	LogFile          string   `toml:"log_file"`
}

func Default() Config {
	return Config{
		Extensions:       append([]string(nil), library.DefaultExtensions...),
		Volume:           player.DefaultVolume,
		PositionInterval: 2 * time.Second,
		Watch:            true,
	}
}

// DefaultPath is where Load looks when no path is given.
func DefaultPath() (string, error) {
	path, err := xdg.ConfigFile(AppName + "/config.toml")
	if err != nil {
		return "", fmt.Errorf("resolve config path: %w", err)
	}
	return path, nil
}

// Load reads path over the defaults. Only keys present in the file
// override anything. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	if meta.IsDefined("music_dir") {
		cfg.MusicDir = strings.TrimSpace(raw.MusicDir)
	}

	if meta.IsDefined("extensions") {
		exts := library.NormalizeExtensions(raw.Extensions)
		if len(exts) == 0 {
			return Config{}, fmt.Errorf("parse extensions: no extensions listed")
		}
		if unsupported := lo.Without(exts, player.SupportedExtensions...); len(unsupported) > 0 {
			return Config{}, fmt.Errorf("parse extensions: %q cannot be played", unsupported)
		}
		cfg.Extensions = exts
	}

	if meta.IsDefined("volume") {
		if raw.Volume < 0 || raw.Volume > 1 {
			return Config{}, fmt.Errorf("parse volume: %v is outside [0, 1]", raw.Volume)
		}
		cfg.Volume = raw.Volume
	}

	if meta.IsDefined("position_interval") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.PositionInterval))
		if err != nil {
			return Config{}, fmt.Errorf("parse position_interval: %w", err)
		}
		if d <= 0 {
			return Config{}, fmt.Errorf("parse position_interval: must be positive")
		}
		cfg.PositionInterval = d
	}

	if meta.IsDefined("watch") {
		cfg.Watch = raw.Watch
	}

	if meta.IsDefined("cover_art") {
		cfg.CoverArt = raw.CoverArt
	}

	if meta.IsDefined("log_file") {
		cfg.LogFile = strings.TrimSpace(raw.LogFile)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("load config: unknown key %q", undecoded[0].String())
	}

	return cfg, nil
}

// ResolveMusicDir returns the configured folder or the user's audio
// directory.
func (c Config) ResolveMusicDir() (string, error) {
	if c.MusicDir != "" {
		return c.MusicDir, nil
	}
	return library.MusicDir()
}

