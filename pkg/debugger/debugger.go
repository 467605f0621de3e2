// Package debugger is the interactive command debugger of the build engine. The engine calls
// Session.Enter at its halt points; the session decides whether to stop and, if so, reads and
// executes debugger commands until one of them resumes or quits the build.
package debugger

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/exp/slices"
)

// Config configures a Session.
type Config struct {
	// In and Out are the terminal of the debugger, they default to stdin and stdout.
	In  io.Reader
	Out io.Writer

	// Reader overrides the line reader which is otherwise picked on first engagement.
	Reader LineReader

	// Color enables ANSI colored output.
	Color bool

	// StopOnError makes errors reported by the build engine stop even if no step, next or
	// breakpoint asks for it.
	StopOnError bool

	// InitFile is a file of debugger commands executed once, on first engagement.
	InitFile string

	Logger *slog.Logger
}

// State is the part of a session which nested sub-builds share. The engine saves it before a
// nested build and restores it afterwards, nothing is stacked implicitly.
type State struct {
	Host Host

	// Stepping and Nexting are the remaining step and next counts, 0 is inactive.
	Stepping int
	Nexting  int
	// NextDepth is the stack depth `next` was issued at.
	NextDepth int

	LastReason Reason

	// Frames is the reported stack, innermost first, FramePos the selected frame.
	Frames   []Target
	FramePos int

	// Quitting is set once a nested build has terminated, from then on the session never stops.
	Quitting bool
}

type Session struct {
	cfg Config
	log *slog.Logger
	out io.Writer
	clr palette

	registry *Registry
	reader   LineReader
	initDone bool

	state      State
	inDebugger bool
	history    []string
	exitCode   int

	breakpoints []*breakpoint
	nextBreakID int
}

func New(host Host, cfg Config) *Session {
	if cfg.In == nil {
		cfg.In = os.Stdin
	}
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}

	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	return &Session{
		cfg:   cfg,
		log:   log.With("component", "debugger"),
		out:   cfg.Out,
		clr:   newPalette(cfg.Color),
		state: State{Host: host},
	}
}

// Attach points the session at another build engine, used when entering a nested sub-build.
func (s *Session) Attach(h Host) {
	s.state.Host = h
}

// Save returns a copy of the shared state.
func (s *Session) Save() State {
	st := s.state
	st.Frames = slices.Clone(s.state.Frames)
	return st
}

// Restore replaces the shared state with one returned by Save.
func (s *Session) Restore(st State) {
	st.Frames = slices.Clone(st.Frames)
	s.state = st
}

// Step makes the session stop at the next n halt points, used by hosts to start a build in
// the debugger.
func (s *Session) Step(n int) {
	s.state.Stepping = n
	s.state.Nexting = 0
}

func (s *Session) Stepping() int { return s.state.Stepping }
func (s *Session) Nexting() int  { return s.state.Nexting }

func (s *Session) LastReason() Reason { return s.state.LastReason }

// InDebugger reports whether the read loop is active.
func (s *Session) InDebugger() bool { return s.inDebugger }

// ExitCode is the status given to the last `quit`.
func (s *Session) ExitCode() int { return s.exitCode }

// History returns the lines entered so far.
func (s *Session) History() []string { return slices.Clone(s.history) }

// Execute runs a single command line as if it was typed at the prompt.
func (s *Session) Execute(line string) Signal {
	s.initialize()
	return s.safeExecute(line)
}

// initialize runs once, on first engagement.
func (s *Session) initialize() {
	if s.initDone {
		return
	}
	s.initDone = true

	s.registry = defaultRegistry()

	s.reader = s.cfg.Reader
	if s.reader == nil {
		s.reader = newLineReader(s)
	}

	if s.cfg.InitFile != "" {
		if sig := sourceExec(s, s.cfg.InitFile); !sig.looping() {
			s.log.Warn("init file requested to leave the debugger, ignored", "file", s.cfg.InitFile, "signal", sig)
		}
	}
}

func (s *Session) host() (Host, error) {
	if s.state.Host == nil {
		return nil, ErrNoHost
	}
	return s.state.Host, nil
}

// frame returns the selected frame of the reported stack, or nil.
func (s *Session) frame() Target {
	if s.state.FramePos < 0 || s.state.FramePos >= len(s.state.Frames) {
		return nil
	}
	return s.state.Frames[s.state.FramePos]
}

// depth is the depth of the host stack.
func (s *Session) depth() int {
	if s.state.Host == nil {
		return len(s.state.Frames)
	}
	return len(s.state.Host.Stack())
}

func (s *Session) addHistory(line string) {
	s.history = append(s.history, line)
}
