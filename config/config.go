// Package config resolves run settings from defaults, an optional dotenv
// file, the environment and command line flags, in increasing precedence.
package config

import (
	"io/fs"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gobuffalo/envy"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/vkframe/vkframe/frame"
)

const (
	KeyOutput       = "VKFRAME_OUTPUT"
	KeyValidation   = "VKFRAME_VALIDATION"
	KeyDiagnostics  = "VKFRAME_DIAGNOSTICS"
	KeyLogLevel     = "VKFRAME_LOG_LEVEL"
	KeyFenceTimeout = "VKFRAME_FENCE_TIMEOUT"
	KeyWindowWidth  = "VKFRAME_WINDOW_WIDTH"
	KeyWindowHeight = "VKFRAME_WINDOW_HEIGHT"

	DefaultEnvFile = ".env"
)

type Config struct {
	OutputPath string

	// WindowWidth and WindowHeight size the window, and the swapchain when
	// the surface leaves its extent to the application.
	WindowWidth  int
	WindowHeight int

	Validation   bool
	Diagnostics  bool
	JSON         bool
	LogLevel     log.Level
	FenceTimeout time.Duration
}

func Default() Config {
	return Config{
		OutputPath:   "image.png",
		WindowWidth:  1280,
		WindowHeight: 1024,
		LogLevel:     log.InfoLevel,
		FenceTimeout: frame.FenceTimeout,
	}
}

// Load returns the defaults overridden by envFile, if it exists, and then by
// the environment.
func Load(envFile string) (Config, error) {
	fileValues := map[string]string{}
	if envFile != "" {
		values, err := godotenv.Read(envFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, errors.Wrapf(err, "read %s", envFile)
		}
		if values != nil {
			fileValues = values
		}
	}

	lookup := func(key string) string {
		return envy.Get(key, fileValues[key])
	}

	cfg := Default()
	if v := lookup(KeyOutput); v != "" {
		cfg.OutputPath = v
	}

	var err error
	if cfg.Validation, err = parseBool(KeyValidation, lookup(KeyValidation), cfg.Validation); err != nil {
		return Config{}, err
	}
	if cfg.Diagnostics, err = parseBool(KeyDiagnostics, lookup(KeyDiagnostics), cfg.Diagnostics); err != nil {
		return Config{}, err
	}
	if cfg.WindowWidth, err = parseSize(KeyWindowWidth, lookup(KeyWindowWidth), cfg.WindowWidth); err != nil {
		return Config{}, err
	}
	if cfg.WindowHeight, err = parseSize(KeyWindowHeight, lookup(KeyWindowHeight), cfg.WindowHeight); err != nil {
		return Config{}, err
	}

	if v := lookup(KeyLogLevel); v != "" {
		cfg.LogLevel, err = log.ParseLevel(v)
		if err != nil {
			return Config{}, errors.Wrapf(err, "%s", KeyLogLevel)
		}
	}

	if v := lookup(KeyFenceTimeout); v != "" {
		cfg.FenceTimeout, err = time.ParseDuration(v)
		if err != nil {
			return Config{}, errors.Wrapf(err, "%s", KeyFenceTimeout)
		}
		if cfg.FenceTimeout <= 0 {
			return Config{}, errors.Errorf("%s: must be positive, got %s", KeyFenceTimeout, v)
		}
	}

	return cfg, nil
}

func parseBool(key, value string, fallback bool) (bool, error) {
	if value == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, errors.Wrapf(err, "%s", key)
	}
	return b, nil
}

func parseSize(key, value string, fallback int) (int, error) {
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.Wrapf(err, "%s", key)
	}
	if n <= 0 {
		return 0, errors.Errorf("%s: must be positive, got %d", key, n)
	}
	return n, nil
}

// ConfigureLogging applies the log level and the text formatter used by
// every program.
func (c Config) ConfigureLogging() {
	log.SetLevel(c.LogLevel)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
}
