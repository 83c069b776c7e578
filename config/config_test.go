package config

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/gobuffalo/envy"
	log "github.com/sirupsen/logrus"

	"github.com/vkframe/vkframe/frame"
)

const offscreenFlags = OutputFlag | DiagnosticsFlag | JSONFlag

func writeEnvFile(c *qt.C, content string) string {
	path := filepath.Join(c.TempDir(), "vkframe.env")
	c.Assert(os.WriteFile(path, []byte(content), 0o644), qt.IsNil)
	return path
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	c := qt.New(t)

	cfg, err := Load(filepath.Join(c.TempDir(), "missing.env"))
	c.Assert(err, qt.IsNil)
	c.Assert(cfg, qt.DeepEquals, Default())
	c.Assert(cfg.OutputPath, qt.Equals, "image.png")
	c.Assert(cfg.FenceTimeout, qt.Equals, frame.FenceTimeout)
}

func TestLoadFromFile(t *testing.T) {
	c := qt.New(t)

	path := writeEnvFile(c, `VKFRAME_OUTPUT=frame.tiff
VKFRAME_VALIDATION=true
VKFRAME_LOG_LEVEL=debug
VKFRAME_FENCE_TIMEOUT=250ms
VKFRAME_WINDOW_WIDTH=800
`)

	cfg, err := Load(path)
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.OutputPath, qt.Equals, "frame.tiff")
	c.Assert(cfg.Validation, qt.IsTrue)
	c.Assert(cfg.LogLevel, qt.Equals, log.DebugLevel)
	c.Assert(cfg.FenceTimeout, qt.Equals, 250*time.Millisecond)
	c.Assert(cfg.WindowWidth, qt.Equals, 800)
	c.Assert(cfg.WindowHeight, qt.Equals, 1024)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	c := qt.New(t)

	path := writeEnvFile(c, "VKFRAME_OUTPUT=file.png\nVKFRAME_DIAGNOSTICS=false\n")

	envy.Temp(func() {
		envy.Set(KeyOutput, "env.bmp")
		envy.Set(KeyDiagnostics, "1")

		cfg, err := Load(path)
		c.Assert(err, qt.IsNil)
		c.Assert(cfg.OutputPath, qt.Equals, "env.bmp")
		c.Assert(cfg.Diagnostics, qt.IsTrue)
	})
}

func TestLoadInvalidValues(t *testing.T) {
	c := qt.New(t)

	tests := []struct {
		key   string
		value string
		err   string
	}{
		{KeyValidation, "perhaps", `VKFRAME_VALIDATION: .*invalid syntax`},
		{KeyWindowHeight, "-3", `VKFRAME_WINDOW_HEIGHT: must be positive, got -3`},
		{KeyLogLevel, "loud", `VKFRAME_LOG_LEVEL: not a valid logrus Level: "loud"`},
		{KeyFenceTimeout, "0s", `VKFRAME_FENCE_TIMEOUT: must be positive, got 0s`},
	}

	for _, test := range tests {
		c.Run(test.key, func(c *qt.C) {
			path := writeEnvFile(c, test.key+"="+test.value+"\n")
			_, err := Load(path)
			c.Assert(err, qt.ErrorMatches, test.err)
		})
	}
}

func TestFromArgsFlagsWin(t *testing.T) {
	c := qt.New(t)

	path := writeEnvFile(c, "VKFRAME_OUTPUT=file.png\nVKFRAME_VALIDATION=true\n")

	envy.Temp(func() {
		envy.Set(KeyLogLevel, "warn")

		cfg, err := FromArgs("offscreen", []string{
			"-env", path,
			"-output", "flag.bmp",
			"-validation=false",
			"-json",
		}, io.Discard, offscreenFlags)
		c.Assert(err, qt.IsNil)
		c.Assert(cfg.OutputPath, qt.Equals, "flag.bmp")
		c.Assert(cfg.Validation, qt.IsFalse)
		c.Assert(cfg.JSON, qt.IsTrue)
		c.Assert(cfg.LogLevel, qt.Equals, log.WarnLevel)
	})
}

func TestFromArgsWithoutFlagsKeepsDefaults(t *testing.T) {
	c := qt.New(t)

	cfg, err := FromArgs("offscreen", []string{"-env", filepath.Join(c.TempDir(), "none.env")}, io.Discard, offscreenFlags)
	c.Assert(err, qt.IsNil)
	c.Assert(cfg, qt.DeepEquals, Default())
}

func TestFromArgsHelp(t *testing.T) {
	c := qt.New(t)

	_, err := FromArgs("offscreen", []string{"-h"}, io.Discard, offscreenFlags)
	c.Assert(err, qt.ErrorIs, ErrHelp)
}

func TestFromArgsRejectsUnknown(t *testing.T) {
	c := qt.New(t)

	_, err := FromArgs("offscreen", []string{"--save-images"}, io.Discard, offscreenFlags)
	c.Assert(err, qt.ErrorMatches, "flag provided but not defined: -save-images")

	_, err = FromArgs("offscreen", []string{"extra"}, io.Discard, offscreenFlags)
	c.Assert(err, qt.ErrorMatches, `unrecognized argument "extra"`)
}

func TestFromArgsBadLogLevel(t *testing.T) {
	c := qt.New(t)

	_, err := FromArgs("offscreen", []string{"-env", "", "-log-level", "chatty"}, io.Discard, offscreenFlags)
	c.Assert(err, qt.ErrorMatches, `-log-level: not a valid logrus Level: "chatty"`)
}

func TestFromArgsOnlyAcceptsProgramFlags(t *testing.T) {
	c := qt.New(t)

	_, err := FromArgs("vulkaninfo", []string{"-output", "x.png"}, io.Discard, JSONFlag)
	c.Assert(err, qt.ErrorMatches, "flag provided but not defined: -output")

	_, err = FromArgs("vulkaninfo", []string{"-diagnostics"}, io.Discard, JSONFlag)
	c.Assert(err, qt.ErrorMatches, "flag provided but not defined: -diagnostics")

	_, err = FromArgs("windowed", []string{"-output", "x.png"}, io.Discard, DiagnosticsFlag|JSONFlag)
	c.Assert(err, qt.ErrorMatches, "flag provided but not defined: -output")

	cfg, err := FromArgs("windowed", []string{"-env", "", "-diagnostics", "-json"}, io.Discard, DiagnosticsFlag|JSONFlag)
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Diagnostics, qt.IsTrue)
	c.Assert(cfg.JSON, qt.IsTrue)
}
