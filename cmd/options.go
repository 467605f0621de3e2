package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mandy-yan/remake/pkg/build"
	"github.com/spf13/pflag"
	"golang.org/x/term"
)

// buildOptions are the flags shared by the commands which run a build.
type buildOptions struct {
	file         string
	ignoreErrors bool
	keepGoing    bool
	silent       bool
	trace        bool
	basename     bool
	debugMask    int

	logLevel  string
	logFormat string
}

func (o *buildOptions) register(f *pflag.FlagSet) {
	f.StringVarP(&o.file, "file", "f", "build.hcl", "Read FILE as the build file")
	f.BoolVarP(&o.ignoreErrors, "ignore-errors", "i", false, "Ignore errors from recipes")
	f.BoolVarP(&o.keepGoing, "keep-going", "k", false, "Keep going when some targets can't be made")
	f.BoolVarP(&o.silent, "silent", "s", false, "Don't echo recipes")
	f.BoolVar(&o.trace, "trace", false, "Trace the shell running recipe lines")
	f.BoolVar(&o.basename, "basename", false, "Show only the base name of build files in locations")
	f.IntVarP(&o.debugMask, "debug", "d", 0, "Debug mask of the build engine, 1 prints the targets considered")
	f.StringVar(&o.logLevel, "log-level", "warn", "Log level: debug, info, warn or error")
	f.StringVar(&o.logFormat, "log-format", "text", "Log format: text or json")
}

func (o *buildOptions) logger() *slog.Logger {
	return newLogger(o.logLevel, o.logFormat, os.Stderr)
}

// engine loads the build file, recipe output goes to out and errors to errOut.
func (o *buildOptions) engine(logger *slog.Logger, out, errOut io.Writer) (*build.Engine, error) {
	e, err := build.New(build.Config{
		File:         o.file,
		IgnoreErrors: o.ignoreErrors,
		KeepGoing:    o.keepGoing,
		Silent:       o.silent,
		ShellTrace:   o.trace,
		Basename:     o.basename,
		DebugMask:    o.debugMask,
		Out:          out,
		Err:          errOut,
		Logger:       logger,
	})
	if err != nil {
		return nil, fmt.Errorf("load build: %w", err)
	}
	return e, nil
}

// newLogger creates a logger writing to w, it does not touch the default logger.
func newLogger(levelStr, formatStr string, w io.Writer) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelWarn
	}

	handlerOpts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if formatStr == "json" {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}
	return slog.New(handler)
}

// useColor resolves the --color flag, auto colors when stdout is a terminal.
func useColor(mode string) (bool, error) {
	switch mode {
	case "always":
		return true, nil
	case "never":
		return false, nil
	case "auto", "":
		return term.IsTerminal(int(os.Stdout.Fd())), nil
	}
	return false, fmt.Errorf("invalid --color value '%s', expecting auto, always or never", mode)
}
