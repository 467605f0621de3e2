package debugger

import (
	"fmt"
	"strconv"
)

var cmdWhere = Command{
	Code:    CodeWhere,
	Name:    "where",
	Usage:   "where [N]",
	Summary: "Print the target stack",
	Description: "Prints the targets being remade, innermost first. With N only the innermost N targets " +
		"are printed, a negative N prints the outermost ones.",
	Exec: whereExec,
}

var cmdFrame = Command{
	Code:        CodeFrame,
	Name:        "frame",
	Usage:       "frame [N]",
	Summary:     "Select and print a target stack frame",
	Description: "Selects frame N, 0 is the innermost target. A negative N counts from the outermost frame.",
	Exec:        frameExec,
}

var cmdUp = Command{
	Code:        CodeUp,
	Name:        "up",
	Usage:       "up [N]",
	Summary:     "Select the target that depends on the selected one",
	Description: "Moves the selected frame N levels toward the outermost target, 1 by default.",
	Exec:        upExec,
}

var cmdDown = Command{
	Code:        CodeDown,
	Name:        "down",
	Usage:       "down [N]",
	Summary:     "Select a prerequisite of the selected target",
	Description: "Moves the selected frame N levels toward the innermost target, 1 by default.",
	Exec:        downExec,
}

func whereExec(s *Session, args string) Signal {
	n, err := optionalInt(args, len(s.state.Frames))
	if err != nil {
		s.errmsg("%s", err)
		return SignalCmdError
	}

	if len(s.state.Frames) == 0 {
		s.msg("No stack.")
		return SignalReadLoop
	}

	from, to := 0, len(s.state.Frames)
	switch {
	case n >= 0 && n < to:
		to = n
	case n < 0 && -n < to:
		from = to + n
	}

	for i := from; i < to; i++ {
		s.printFrame(i)
	}
	return SignalReadLoop
}

func (s *Session) printFrame(pos int) {
	t := s.state.Frames[pos]

	marker := "   "
	if pos == s.state.FramePos {
		marker = s.clr.yellow("=> ")
	}

	line := fmt.Sprintf("%s%s %s", marker, s.clr.blue("#"+strconv.Itoa(pos)), t.Name())
	if loc := s.formatLocation(t.Location()); loc != "" {
		line += " at " + s.clr.green(loc)
	}
	if t.Trace() != TraceNone {
		line += fmt.Sprintf(" [break %s]", t.Trace())
	}
	fmt.Fprintln(s.out, line)
}

func frameExec(s *Session, args string) Signal {
	n, err := optionalInt(args, s.state.FramePos)
	if err != nil {
		s.errmsg("%s", err)
		return SignalCmdError
	}

	if n < 0 {
		n += len(s.state.Frames)
	}
	return s.selectFrame(n)
}

func upExec(s *Session, args string) Signal {
	n, err := optionalInt(args, 1)
	if err != nil {
		s.errmsg("%s", err)
		return SignalCmdError
	}
	return s.selectFrame(s.state.FramePos + n)
}

func downExec(s *Session, args string) Signal {
	n, err := optionalInt(args, 1)
	if err != nil {
		s.errmsg("%s", err)
		return SignalCmdError
	}
	return s.selectFrame(s.state.FramePos - n)
}

func (s *Session) selectFrame(pos int) Signal {
	switch {
	case len(s.state.Frames) == 0:
		s.errmsg("No stack.")
		return SignalCmdError
	case pos < 0:
		s.errmsg("Moving to the innermost frame is as far as we can go.")
		pos = 0
	case pos >= len(s.state.Frames):
		s.errmsg("Moving to the outermost frame is as far as we can go.")
		pos = len(s.state.Frames) - 1
	}

	s.state.FramePos = pos
	s.printFrame(pos)
	return SignalReadLoop
}
