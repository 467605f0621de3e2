package debugger

import (
	"fmt"
	"strconv"
	"strings"
)

var cmdStep = Command{
	Code:    CodeStep,
	Name:    "step",
	Usage:   "step [AMOUNT]",
	Summary: "Step execution until another stopping point is reached",
	Description: "Stops at every halt point: before and after the prerequisites of a target and after " +
		"its recipe. AMOUNT is the number of halt points to step over, 1 by default. An empty line " +
		"at the prompt repeats step.",
	Exec: stepExec,
}

var cmdNext = Command{
	Code:    CodeNext,
	Name:    "next",
	Usage:   "next [AMOUNT]",
	Summary: "Continue until the next target or recipe at the same or a higher level",
	Description: "Like step but halt points of targets which are deeper in the stack than the current " +
		"target are passed without stopping. AMOUNT defaults to 1.",
	Exec: nextExec,
}

func stepExec(s *Session, args string) Signal {
	n, err := countArg(args)
	if err != nil {
		s.errmsg("%s", err)
		return SignalCmdError
	}

	s.state.Stepping = n
	s.state.Nexting = 0
	return SignalContinue
}

func nextExec(s *Session, args string) Signal {
	n, err := countArg(args)
	if err != nil {
		s.errmsg("%s", err)
		return SignalCmdError
	}

	s.state.Nexting = n
	s.state.Stepping = 0
	s.state.NextDepth = s.depth()
	return SignalContinue
}

// countArg parses an optional positive count, 1 when absent.
func countArg(args string) (int, error) {
	args = strings.TrimSpace(args)
	if args == "" {
		return 1, nil
	}

	n, err := strconv.Atoi(args)
	if err != nil {
		return 0, fmt.Errorf("%w: expecting a number, got '%s'", ErrInvalidArgument, args)
	}
	if n < 1 {
		return 0, fmt.Errorf("%w: count must be at least 1, got %d", ErrInvalidArgument, n)
	}
	return n, nil
}

// optionalInt parses an optional integer argument which may be negative.
func optionalInt(args string, def int) (int, error) {
	args = strings.TrimSpace(args)
	if args == "" {
		return def, nil
	}

	n, err := strconv.Atoi(args)
	if err != nil {
		return 0, fmt.Errorf("%w: expecting an integer, got '%s'", ErrInvalidArgument, args)
	}
	return n, nil
}
