package config

import (
	"flag"
	"io"

	"github.com/cockroachdb/errors"
	log "github.com/sirupsen/logrus"
)

// ErrHelp is returned when -h or -help is given; usage has been printed.
var ErrHelp = flag.ErrHelp

// Flags selects the optional flags a program accepts. -env, -validation and
// -log-level are always accepted.
type Flags uint

const (
	OutputFlag Flags = 1 << iota
	DiagnosticsFlag
	JSONFlag
)

type commandLine struct {
	envFile     string
	output      string
	validation  bool
	diagnostics bool
	json        bool
	logLevel    string
}

func newFlagSet(name string, output io.Writer, flags Flags, cl *commandLine) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&cl.envFile, "env", DefaultEnvFile, "dotenv file to read settings from")
	fs.BoolVar(&cl.validation, "validation", false, "enable the Khronos validation layer")
	fs.StringVar(&cl.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	if flags&OutputFlag != 0 {
		fs.StringVar(&cl.output, "output", "", "path of the rendered image (.png, .bmp or .tiff)")
	}
	if flags&DiagnosticsFlag != 0 {
		fs.BoolVar(&cl.diagnostics, "diagnostics", false, "print device diagnostics before rendering")
	}
	if flags&JSONFlag != 0 {
		fs.BoolVar(&cl.json, "json", false, "print diagnostics as JSON")
	}
	return fs
}

// FromArgs parses args against the flags the program accepts, loads the
// dotenv file they name and applies every flag that was given explicitly on
// top of it.
func FromArgs(name string, args []string, output io.Writer, flags Flags) (Config, error) {
	var cl commandLine
	fs := newFlagSet(name, output, flags, &cl)
	err := fs.Parse(args)
	if err != nil {
		return Config{}, err
	}
	if fs.NArg() > 0 {
		fs.Usage()
		return Config{}, errors.Errorf("unrecognized argument %q", fs.Arg(0))
	}

	cfg, err := Load(cl.envFile)
	if err != nil {
		return Config{}, err
	}

	fs.Visit(func(f *flag.Flag) {
		if err != nil {
			return
		}
		switch f.Name {
		case "output":
			cfg.OutputPath = cl.output
		case "validation":
			cfg.Validation = cl.validation
		case "diagnostics":
			cfg.Diagnostics = cl.diagnostics
		case "json":
			cfg.JSON = cl.json
		case "log-level":
			cfg.LogLevel, err = log.ParseLevel(cl.logLevel)
			err = errors.Wrap(err, "-log-level")
		}
	})
	if err != nil {
		return Config{}, err
	}

	return cfg, nil
}
