package config

import (
	"flag"
	"fmt"
	"strconv"
	"strings"
)

var (
	flagConfig  = flag.String("config", "", "Path to config file")
	flagDebug   = flag.Bool("debug", false, "Enable debug logging")
	flagDataDir = flag.String("data-dir", "", "Data root directory")
	flagWorkers = flag.Int("workers", 0, "Concurrent examples per view")
	flagLogFile = flag.String("log-file", "", "Also log to this file")
	flagShape   = flag.String("shape", "", "Output grid shape as nx-ny-nz")
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
func applyFlags(cfg *Config) error {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagDataDir != "" {
		cfg.Data.Dir = *flagDataDir
	}
	if *flagWorkers > 0 {
		cfg.Batch.Workers = *flagWorkers
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
	if *flagShape != "" {
		s, err := ParseShape(*flagShape)
		if err != nil {
			return err
		}
		cfg.Frustum.Shape = s
	}
	return nil
}

// ParseShape parses "nx-ny-nz".
func ParseShape(s string) ([3]int, error) {
	var shape [3]int
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return shape, fmt.Errorf("invalid shape %q, want nx-ny-nz", s)
	}
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n <= 0 {
			return shape, fmt.Errorf("invalid shape %q, want nx-ny-nz", s)
		}
		shape[i] = n
	}
	return shape, nil
}
