// Package config handles engine configuration loading and management.
package config

import (
	"github.com/icefall/frostline/internal/terrain"
)

// Config holds all engine settings.
type Config struct {
	Data    DataConfig     `yaml:"data"`
	Terrain terrain.Tuning `yaml:"terrain"`
	Logging LoggingConfig  `yaml:"logging"`
}

// DataConfig holds mountain data file paths.
type DataConfig struct {
	MountainDir string `yaml:"mountain_dir"` // Root directory containing per-mountain data
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			MountainDir: "data/mountains",
		},
		Terrain: terrain.DefaultTuning(),
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
