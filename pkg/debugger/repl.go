package debugger

import (
	"errors"
	"fmt"
	"io"
	"runtime/debug"
	"strings"
	"unicode"
)

// maxNestDepth bounds the nesting glyphs of the prompt, 5 glyphs followed by "..." at most.
const maxNestDepth = 10

// Enter is called by the build engine at a halt point. It returns SignalContinue right away if
// the session decides not to stop, otherwise it runs the read loop until a command resumes or
// quits the build and returns that signal.
func (s *Session) Enter(stop Stop) Signal {
	if !s.engage(stop) {
		return SignalContinue
	}

	s.log.Debug("entering debugger",
		"reason", stop.Reason,
		"code", int(stop.Code),
		"stepping", s.state.Stepping,
		"nexting", s.state.Nexting,
	)

	s.state.LastReason = stop.Reason
	s.clearTemporary(stop)
	s.initialize()
	s.resetFrames(stop.Target)

	s.inDebugger = true
	s.banner(stop.Code)
	s.printLocation(stop.Reason)

	sig := SignalReadLoop
	for sig.looping() {
		sig = s.iterate()
	}

	if !s.state.Quitting {
		s.inDebugger = false
	}

	s.log.Debug("leaving debugger", "signal", sig)
	return sig
}

// resetFrames points the reported stack at the current stack of the host.
func (s *Session) resetFrames(t Target) {
	s.state.Frames = nil
	s.state.FramePos = 0

	if s.state.Host != nil {
		s.state.Frames = s.state.Host.Stack()
	}
	if len(s.state.Frames) == 0 && t != nil {
		s.state.Frames = []Target{t}
	}
}

func (s *Session) banner(code ErrCode) {
	switch {
	case code == ErrCodeNone:
	case code == ErrCodeSoft:
		fmt.Fprintln(s.out, "\n***Entering debugger because we encountered an error.")
	case code == ErrCodeTerminated:
		level := 0
		if s.state.Host != nil {
			level = s.state.Host.Level()
		}

		if level == 0 {
			fmt.Fprintln(s.out, "\nBuild terminated.")
			s.msg("Use q to quit or R to restart")
			return
		}

		fmt.Fprintf(s.out, "\nBuild finished at level %d. Use R to restart\n", level)
		s.msg("the build at this level or 's', 'n', or 'F' to continue in parent")
		s.state.Quitting = true
	default:
		fmt.Fprintln(s.out, "\n***Entering debugger because we encountered a fatal error.")
		s.errmsg("Exiting the debugger will exit remake with exit code %d.", int(code))
	}
}

// recoverFault must be deferred directly. It reports a panic of the command being run and turns it
// into SignalCmdError, so the loop goes on with the next line.
func (s *Session) recoverFault(sig *Signal) {
	if r := recover(); r != nil {
		s.log.Error("recovered in debugger loop",
			"error", fmt.Errorf("%w: %v", ErrInternal, r),
			"stack", string(debug.Stack()),
		)
		s.errmsg("Internal error jumped back to debugger loop")
		*sig = SignalCmdError
	}
}

// safeExecute is execute behind the same recovery boundary as the read loop.
func (s *Session) safeExecute(line string) (sig Signal) {
	defer s.recoverFault(&sig)
	return s.execute(line)
}

// iterate reads and executes one line.
func (s *Session) iterate() (sig Signal) {
	defer s.recoverFault(&sig)

	line, err := s.reader.ReadLine(s.prompt())
	if err != nil {
		if !errors.Is(err, io.EOF) {
			s.log.Warn("reading debugger input", "error", err)
		}
		return quitExec(s, "")
	}

	line = strings.TrimSpace(line)
	if line == "" {
		s.addHistory("step")
		return stepExec(s, "")
	}

	s.addHistory(line)
	return s.execute(line)
}

// execute resolves the first word of a line and runs the command with the rest of it.
func (s *Session) execute(line string) Signal {
	word, args := splitWord(line)
	if word == "" {
		return SignalReadLoop
	}
	if strings.HasPrefix(word, "#") {
		word, args = "#", strings.TrimPrefix(line, "#")
	}

	cmd, err := s.registry.Resolve(word)
	if err != nil {
		s.errmsg("No such debugger command: %s.", word)
		if hint := s.registry.suggest(word); hint != "" {
			s.msg("Did you mean '%s'?", hint)
		}
		return SignalReadLoop
	}

	return cmd.Exec(s, args)
}

func (s *Session) prompt() string {
	level := 0
	if s.state.Host != nil {
		level = s.state.Host.Level()
	}

	open, closing := depthGlyphs(level)
	return fmt.Sprintf("remake%s%d%s ", open, len(s.history), closing)
}

// depthGlyphs renders the nesting level, level 0 is a single pair of brackets.
func depthGlyphs(level int) (string, string) {
	limit := maxNestDepth - 5

	n := level + 1
	if n > limit {
		n = limit
	}

	open, closing := strings.Repeat("<", n), strings.Repeat(">", n)
	if n == limit {
		open += "..."
		closing += "..."
	}
	return open, closing
}

// splitWord returns the first whitespace delimited word and the rest of the line with leading
// whitespace removed.
func splitWord(line string) (string, string) {
	line = strings.TrimLeftFunc(line, unicode.IsSpace)
	i := strings.IndexFunc(line, unicode.IsSpace)
	if i < 0 {
		return line, ""
	}
	return line[:i], strings.TrimLeftFunc(line[i:], unicode.IsSpace)
}
