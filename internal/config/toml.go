// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Timing TimingConfig `toml:"timing"`
	Audio  AudioConfig  `toml:"audio"`
	Window WindowConfig `toml:"window"`
	Output OutputConfig `toml:"output"`
}

// TimingConfig maps round timing and input settings.
type TimingConfig struct {
	DelayMin    *float64 `toml:"delay-min"`
	DelayMax    *float64 `toml:"delay-max"`
	ParryWindow *int     `toml:"parry-window"`
	ParryKey    *string  `toml:"parry-key"`
	Trigger     *string  `toml:"trigger"`
	HoldTimeout *int     `toml:"hold-timeout"`
	Seed        *int64   `toml:"seed"`
	FPS         *int     `toml:"fps"`
}

// AudioConfig maps sound settings.
type AudioConfig struct {
	Mute     *bool    `toml:"mute"`
	Volume   *float64 `toml:"volume"`
	SoundDir *string  `toml:"sound-dir"`
}

// WindowConfig maps show/hide hook commands.
type WindowConfig struct {
	ShowCmd *string `toml:"show-cmd"`
	HideCmd *string `toml:"hide-cmd"`
}

// OutputConfig maps logging and report settings.
type OutputConfig struct {
	Report   *string `toml:"report"`
	LogLevel *string `toml:"log-level"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
