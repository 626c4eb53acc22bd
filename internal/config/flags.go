package config

import "flag"

var (
	flagConfig   = flag.String("config", "", "Path to config file")
	flagDebug    = flag.Bool("debug", false, "Enable debug logging")
	flagDataDir  = flag.String("data", "", "Root directory containing mountain data")
	flagLogFile  = flag.String("logfile", "", "Write logs to this file")
	flagSnowLine = flag.Float64("snowline", 0, "Override snow line elevation")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagDataDir != "" {
		cfg.Data.MountainDir = *flagDataDir
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
	if *flagSnowLine > 0 {
		cfg.Terrain.Surface.SnowLine = float32(*flagSnowLine)
	}
}
