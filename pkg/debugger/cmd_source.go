package debugger

import (
	"bufio"
	"os"
	"strings"
)

var cmdSource = Command{
	Code:    CodeSource,
	Name:    "source",
	Usage:   "source FILE",
	Summary: "Execute debugger commands from a file",
	Description: "Reads FILE and executes each line as a debugger command. Empty lines and lines " +
		"starting with # are skipped. A command which leaves the debugger stops the file.",
	Exec:     sourceExec,
	Complete: fileCompletion,
}

var cmdComment = Command{
	Code:        CodeComment,
	Name:        "comment",
	Usage:       "# TEXT",
	Summary:     "Ignore the rest of the line",
	Description: "Does nothing, useful in files read with 'source'.",
	Exec: func(s *Session, args string) Signal {
		return SignalReadLoop
	},
}

func sourceExec(s *Session, args string) Signal {
	path := strings.TrimSpace(args)
	if path == "" {
		s.errmsg("You need to supply a file name.")
		return SignalCmdError
	}

	f, err := os.Open(path)
	if err != nil {
		s.errmsg("%s", err)
		return SignalCmdError
	}
	defer f.Close()

	s.log.Debug("sourcing debugger commands", "file", path)

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		s.msg("(remake) %s", line)
		if sig := s.safeExecute(line); !sig.looping() {
			return sig
		}
	}

	if err := sc.Err(); err != nil {
		s.errmsg("reading %s: %s", path, err)
		return SignalCmdError
	}
	return SignalReadLoop
}
