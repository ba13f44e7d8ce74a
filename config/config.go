// Package config reads stagekit settings from an optional .env file and the
// process environment. Environment variables win over the file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

const (
	KeyProject    = "STAGEKIT_PROJECT"
	KeyTickRate   = "STAGEKIT_TICK_RATE"
	KeyLogLevel   = "STAGEKIT_LOG_LEVEL"
	KeyStageScale = "STAGEKIT_STAGE_SCALE"

	DefaultTickRate   = 30
	DefaultStageScale = 1.5
)

type Config struct {
	// Project is the project file to open; empty means the built-in demo.
	Project    string
	TickRate   int
	LogLevel   log.Level
	StageScale float64
}

func Default() Config {
	return Config{
		TickRate:   DefaultTickRate,
		LogLevel:   log.InfoLevel,
		StageScale: DefaultStageScale,
	}
}

// Load reads envFile (a missing file is not an error) and overlays the
// process environment.
func Load(envFile string) (Config, error) {
	values := map[string]string{}
	if envFile != "" {
		fileValues, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			values = fileValues
		case errors.Is(err, fs.ErrNotExist):
		default:
			return Config{}, fmt.Errorf("config: read %s: %w", envFile, err)
		}
	}
	for _, key := range []string{KeyProject, KeyTickRate, KeyLogLevel, KeyStageScale} {
		if v, ok := os.LookupEnv(key); ok {
			values[key] = v
		}
	}
	return parse(values)
}

func parse(values map[string]string) (Config, error) {
	cfg := Default()
	if v := strings.TrimSpace(values[KeyProject]); v != "" {
		cfg.Project = v
	}
	if v := strings.TrimSpace(values[KeyTickRate]); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("config: %s must be a positive integer, got %q", KeyTickRate, v)
		}
		cfg.TickRate = n
	}
	if v := strings.TrimSpace(values[KeyLogLevel]); v != "" {
		level, err := log.ParseLevel(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", KeyLogLevel, err)
		}
		cfg.LogLevel = level
	}
	if v := strings.TrimSpace(values[KeyStageScale]); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			return Config{}, fmt.Errorf("config: %s must be a positive number, got %q", KeyStageScale, v)
		}
		cfg.StageScale = f
	}
	return cfg, nil
}

// NewLogger builds the process logger at the configured level.
func (c Config) NewLogger(prefix string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
	})
	logger.SetLevel(c.LogLevel)
	return logger
}
