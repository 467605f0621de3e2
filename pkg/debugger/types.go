package debugger

import "fmt"

// Signal is returned by every command and tells the read loop, and eventually the build engine,
// what to do next.
type Signal int

const (
	// SignalReadLoop keeps the debugger reading commands.
	SignalReadLoop Signal = iota
	// SignalCmdError keeps the debugger reading commands, the last command failed.
	SignalCmdError
	// SignalQuit leaves the debugger and stops the build.
	SignalQuit
	// SignalContinue leaves the debugger and resumes the build.
	SignalContinue
)

func (s Signal) String() string {
	switch s {
	case SignalReadLoop:
		return "read-loop"
	case SignalCmdError:
		return "command-error"
	case SignalQuit:
		return "quit"
	case SignalContinue:
		return "continue"
	default:
		return fmt.Sprintf("signal(%d)", int(s))
	}
}

func (s Signal) looping() bool {
	return s == SignalReadLoop || s == SignalCmdError
}

// Reason is why the build engine offered to stop.
type Reason int

const (
	ReasonAfterCmd Reason = iota
	ReasonBeforePrereq
	ReasonAfterPrereq
	ReasonError
	ReasonFatal
	ReasonManual
)

func (r Reason) String() string {
	switch r {
	case ReasonAfterCmd:
		return "after-command"
	case ReasonBeforePrereq:
		return "before-prerequisite"
	case ReasonAfterPrereq:
		return "after-prerequisite"
	case ReasonError:
		return "on-error"
	case ReasonFatal:
		return "on-fatal-error"
	case ReasonManual:
		return "manual-request"
	default:
		return fmt.Sprintf("reason(%d)", int(r))
	}
}

// glyph is the two character marker printed in front of a stop location
func (r Reason) glyph() string {
	switch r {
	case ReasonAfterCmd:
		return "<-"
	case ReasonBeforePrereq:
		return "->"
	case ReasonAfterPrereq:
		return ".."
	case ReasonError:
		return "!!"
	case ReasonFatal:
		return "--"
	case ReasonManual:
		return ":o"
	default:
		return "  "
	}
}

// ErrCode is the error state the build engine reports when entering the debugger. Positive values
// are fatal errors carrying the exit code the build will exit with.
type ErrCode int

const (
	ErrCodeNone       ErrCode = 0
	ErrCodeSoft       ErrCode = -1
	ErrCodeTerminated ErrCode = -2
)

func (c ErrCode) Fatal() bool {
	return c > 0
}

// TraceFlags are the per target breakpoint bits.
type TraceFlags uint8

const TraceNone TraceFlags = 0

const (
	TraceBeforePrereq TraceFlags = 1 << iota
	TraceAfterPrereq
	TraceAfterCmd
	// TraceTemp marks a breakpoint which is cleared the first time it is honored.
	TraceTemp
)

const TraceAll = TraceBeforePrereq | TraceAfterPrereq | TraceAfterCmd

// Stops reports if a target carrying these flags should stop for the given reason.
func (f TraceFlags) Stops(r Reason) bool {
	switch r {
	case ReasonBeforePrereq:
		return f&TraceBeforePrereq != 0
	case ReasonAfterPrereq:
		return f&TraceAfterPrereq != 0
	case ReasonAfterCmd:
		return f&TraceAfterCmd != 0
	default:
		return f&TraceAll != 0
	}
}

func (f TraceFlags) String() string {
	var mode string
	switch f &^ TraceTemp {
	case TraceNone:
		return "none"
	case TraceAll:
		mode = "all"
	case TraceBeforePrereq:
		mode = "prereq"
	case TraceAfterPrereq:
		mode = "run"
	case TraceAfterCmd:
		mode = "end"
	default:
		mode = fmt.Sprintf("0x%x", uint8(f&^TraceTemp))
	}

	if f&TraceTemp != 0 {
		return mode + " (temporary)"
	}
	return mode
}

// Location is a position in a build file.
type Location struct {
	File string
	Line int
}

func (l Location) String() string {
	if l.File == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// Target is the build engine's record of a target under evaluation.
type Target interface {
	Name() string
	Location() Location
	Trace() TraceFlags
	SetTrace(TraceFlags)
	Prerequisites() []string
	Recipe() []string
}

// Origin records how a variable was introduced.
type Origin string

// OriginDebugger is the origin of every variable written from the debugger.
const OriginDebugger Origin = "debugger"

type Variable struct {
	Name   string
	Value  string
	Origin Origin
	Loc    Location
}

// Variables is the build engine's global variable table.
type Variables interface {
	Lookup(name string) (Variable, bool)
	Define(v Variable)
	Expand(text string) string
	Names() []string
}

// Flags are the build engine owned settings the `set` command can change. A nil field is not
// supported by the host.
type Flags struct {
	Basename     *bool
	DebugMask    *int
	IgnoreErrors *bool
	KeepGoing    *bool
	Silent       *bool
	ShellTrace   *bool
}

// Host is the build engine as seen from the debugger.
type Host interface {
	// Level is the sub-build recursion level, 0 for the top level build.
	Level() int
	// Stack returns the targets under evaluation, innermost first.
	Stack() []Target
	Target(name string) (Target, bool)
	Targets() []Target
	Vars() Variables
	Flags() Flags
	// Skip skips the remaining recipe of the innermost target.
	Skip()
	// Restart requests the build to start over once the debugger returns.
	Restart() error
	// Load reads an additional build file.
	Load(path string) error
}

// Stop describes a halt point offered by the build engine.
type Stop struct {
	// Target may be nil.
	Target Target
	Code   ErrCode
	Reason Reason
}
