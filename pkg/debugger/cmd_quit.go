package debugger

import "strings"

var cmdQuit = Command{
	Code:    CodeQuit,
	Name:    "quit",
	Usage:   "quit [EXIT-CODE]",
	Summary: "Exit the debugger and stop the build",
	Description: "Stops the build. remake exits with EXIT-CODE, 0 by default. End of input at the " +
		"prompt quits as well.",
	Exec: quitExec,
}

var cmdRun = Command{
	Code:        CodeRun,
	Name:        "run",
	Usage:       "run",
	Summary:     "Restart the build from the start",
	Description: "Stops the current build and starts it over, variables and breakpoints set from the debugger are kept.",
	Exec:        runExec,
}

var cmdLoad = Command{
	Code:        CodeLoad,
	Name:        "load",
	Usage:       "load FILE",
	Summary:     "Read an additional build file",
	Description: "Reads the variables and targets of FILE into the running build.",
	Exec:        loadExec,
	Complete:    fileCompletion,
}

var cmdSkip = Command{
	Code:        CodeSkip,
	Name:        "skip",
	Usage:       "skip",
	Summary:     "Skip the rest of the recipe of the innermost target",
	Description: "The remaining recipe lines of the target being remade are not run, the build continues.",
	Exec:        skipExec,
}

func quitExec(s *Session, args string) Signal {
	code, err := optionalInt(args, 0)
	if err != nil {
		s.errmsg("%s", err)
		return SignalCmdError
	}

	s.exitCode = code
	s.log.Debug("quit requested", "code", code)
	return SignalQuit
}

func runExec(s *Session, _ string) Signal {
	h, err := s.host()
	if err != nil {
		s.errmsg("%s", err)
		return SignalCmdError
	}

	if err := h.Restart(); err != nil {
		s.errmsg("Cannot restart: %s", err)
		return SignalCmdError
	}

	s.msg("Restarting...")
	s.state.Quitting = false
	return SignalQuit
}

func loadExec(s *Session, args string) Signal {
	h, err := s.host()
	if err != nil {
		s.errmsg("%s", err)
		return SignalCmdError
	}

	path := strings.TrimSpace(args)
	if path == "" {
		s.errmsg("You need to supply a file name.")
		return SignalCmdError
	}

	if err := h.Load(path); err != nil {
		s.errmsg("%s", err)
		return SignalCmdError
	}
	s.msg("Read build file \"%s\".", path)
	return SignalReadLoop
}

func skipExec(s *Session, _ string) Signal {
	h, err := s.host()
	if err != nil {
		s.errmsg("%s", err)
		return SignalCmdError
	}

	h.Skip()
	s.state.Stepping = 1
	s.state.Nexting = 0
	return SignalContinue
}
