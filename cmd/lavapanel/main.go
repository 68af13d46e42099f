// Package main is the entry point for the lavapanel input engine.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/dshills/lavapanel/internal/config"
	"github.com/dshills/lavapanel/internal/config/loader"
	"github.com/dshills/lavapanel/internal/logging"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// verbosity counts repeated -v flags.
type verbosity int

func (v *verbosity) String() string { return strconv.Itoa(int(*v)) }

func (v *verbosity) Set(s string) error {
	if s == "true" {
		*v++
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid verbosity %q", s)
	}
	*v = verbosity(n)
	return nil
}

func (v *verbosity) IsBoolFlag() bool { return true }

// options holds the parsed command line.
type options struct {
	configPath string
	logLevel   string
	verbose    verbosity
	noWatch    bool
	exec       bool

	command string
	args    []string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) || errors.Is(err, errVersion) {
		return 0
	}
	if err != nil {
		return 1
	}

	env := loader.NewEnvLoader().Load()
	logger := newLogger(opts, env, stderr)

	path, err := config.ResolvePath(loader.DefaultFS(), opts.configPath, env, userConfigDir())
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	switch opts.command {
	case "check":
		err = runCheck(path, stdout)
	case "replay":
		if len(opts.args) != 1 {
			fmt.Fprintf(stderr, "Error: replay needs exactly one trace file\n")
			return 1
		}
		err = runReplay(path, opts.args[0], opts, logger, stdout)
	case "sim":
		err = runSim(path)
	case "", "run":
		err = runStdin(path, opts, logger, stdin)
	default:
		fmt.Fprintf(stderr, "Error: unknown command %q\n", opts.command)
		return 1
	}

	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

var errVersion = errors.New("version requested")

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}
	var showVersion bool

	fs := flag.NewFlagSet("lavapanel", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "Path to configuration file")
	fs.StringVar(&opts.configPath, "c", "", "Path to configuration file (shorthand)")
	fs.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.Var(&opts.verbose, "v", "Increase verbosity (repeatable)")
	fs.BoolVar(&opts.noWatch, "no-watch", false, "Do not reload when the configuration file changes")
	fs.BoolVar(&opts.exec, "exec", false, "Run commands during replay instead of only reporting them")
	fs.BoolVar(&showVersion, "version", false, "Show version information")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "lavapanel - panel input engine\n\n")
		fmt.Fprintf(stderr, "Usage: lavapanel [options] [command]\n\n")
		fmt.Fprintf(stderr, "Commands:\n")
		fmt.Fprintf(stderr, "  run             Read compositor events as JSON lines on stdin (default)\n")
		fmt.Fprintf(stderr, "  check           Validate the configuration and list its items\n")
		fmt.Fprintf(stderr, "  replay <trace>  Replay a recorded event trace and report interactions\n")
		fmt.Fprintf(stderr, "  sim             Drive the panel from the terminal\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if showVersion {
		fmt.Fprintf(stderr, "lavapanel %s\n", version)
		fmt.Fprintf(stderr, "Commit: %s\n", commit)
		fmt.Fprintf(stderr, "Built: %s\n", date)
		return nil, errVersion
	}

	switch opts.logLevel {
	case "", "debug", "info", "warn", "error":
	default:
		fmt.Fprintf(stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.logLevel)
		return nil, fmt.Errorf("invalid log level %q", opts.logLevel)
	}

	if rest := fs.Args(); len(rest) > 0 {
		opts.command = rest[0]
		opts.args = rest[1:]
	}
	return opts, nil
}

// newLogger picks the level from -log-level, then LAVAPANEL_LOG_LEVEL,
// then the -v count.
func newLogger(opts *options, env loader.Env, out io.Writer) *logging.Logger {
	level := logging.LevelFromVerbosity(int(opts.verbose))
	switch {
	case opts.logLevel != "":
		level = logging.ParseLevel(opts.logLevel)
	case env.LogLevel != "":
		level = logging.ParseLevel(env.LogLevel)
	}
	return logging.New(logging.Config{Level: level, Output: out, Prefix: "lavapanel"})
}

func userConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return dir
}
