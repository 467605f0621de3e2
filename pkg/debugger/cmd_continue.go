package debugger

import "strings"

var cmdContinue = Command{
	Code:    CodeContinue,
	Name:    "continue",
	Usage:   "continue [TARGET]",
	Summary: "Continue executing the build until the next breakpoint or error",
	Description: "With a TARGET argument a temporary breakpoint is set on it first, it is removed " +
		"the first time it stops.",
	Exec:     continueExec,
	Complete: targetCompletion,
}

var cmdFinish = Command{
	Code:    CodeFinish,
	Name:    "finish",
	Usage:   "finish [N]",
	Summary: "Run until the recipe of the selected target, or the target N frames up, has run",
	Description: "Sets a temporary breakpoint after the recipe of the target N frames above the " +
		"selected frame and continues. N defaults to 0.",
	Exec: finishExec,
}

func continueExec(s *Session, args string) Signal {
	if name := strings.TrimSpace(args); name != "" {
		targets, err := s.locate(name)
		if err != nil {
			s.errmsg("%s", err)
			return SignalCmdError
		}

		for _, t := range targets {
			setTemporary(t, TraceAll)
			s.msg("Temporary breakpoint on target %s.", t.Name())
		}
	}

	s.state.Stepping = 0
	s.state.Nexting = 0
	return SignalContinue
}

func finishExec(s *Session, args string) Signal {
	n, err := optionalInt(args, 0)
	if err != nil {
		s.errmsg("%s", err)
		return SignalCmdError
	}

	pos := s.state.FramePos + n
	if pos < 0 || pos >= len(s.state.Frames) {
		s.errmsg("Frame %d is out of range of the stack, it has %d frames.", pos, len(s.state.Frames))
		return SignalCmdError
	}

	setTemporary(s.state.Frames[pos], TraceAfterCmd)

	s.state.Stepping = 0
	s.state.Nexting = 0
	return SignalContinue
}
