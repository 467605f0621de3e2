package debugger

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

var cmdList = Command{
	Code:    CodeList,
	Name:    "list",
	Usage:   "list [TARGET|LINE]",
	Summary: "Lists the lines of the build file around a target",
	Description: "Without an argument the lines around the selected target are listed. A LINE lists " +
		"around that line of the same file.",
	Exec:     listExec,
	Complete: targetCompletion,
}

func listExec(s *Session, args string) Signal {
	loc, err := s.listLocation(strings.TrimSpace(args))
	if err != nil {
		s.errmsg("%s", err)
		return SignalCmdError
	}

	if err := s.listLines(loc); err != nil {
		s.errmsg("%s", err)
		return SignalCmdError
	}
	return SignalReadLoop
}

func (s *Session) listLocation(arg string) (Location, error) {
	cur := s.frame()

	if arg == "" {
		if cur == nil {
			return Location{}, fmt.Errorf("%w: no target selected", ErrMissingArgument)
		}
		return cur.Location(), nil
	}

	if line, err := strconv.Atoi(arg); err == nil {
		if cur == nil {
			return Location{}, fmt.Errorf("%w: no target selected to take the file from", ErrMissingArgument)
		}
		return Location{File: cur.Location().File, Line: line}, nil
	}

	targets, err := s.locate(arg)
	if err != nil {
		return Location{}, err
	}
	return targets[0].Location(), nil
}

func (s *Session) listLines(loc Location) error {
	if loc.File == "" {
		return fmt.Errorf("%w: no file known for this location", ErrInvalidArgument)
	}

	f, err := os.Open(loc.File)
	if err != nil {
		return fmt.Errorf("open build file: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)

	const windowsize = 9
	start := loc.Line - windowsize/2
	if start < 1 {
		start = 1
	}
	end := start + windowsize

	// Scan up to the start of the window
	i := 1
	for i < start && sc.Scan() {
		i++
	}

	indexPadSize := len(strconv.Itoa(end))
	for ; i < end; i++ {
		if !sc.Scan() {
			break
		}

		marker := "    "
		if i == loc.Line {
			marker = s.clr.yellow(" => ")
		}
		fmt.Fprintf(s.out, "%s%s %s\n", marker, s.clr.blue(fmt.Sprintf("%*d", indexPadSize, i)), sc.Text())
	}

	return sc.Err()
}
