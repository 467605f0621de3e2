package debugger

import (
	"os"
	"os/exec"
	"strconv"
	"strings"
)

var cmdShell = Command{
	Code:        CodeShell,
	Name:        "shell",
	Usage:       "shell COMMAND",
	Summary:     "Execute the rest of the line as a shell command",
	Description: "Runs COMMAND with sh -c, attached to the terminal of the debugger.",
	Exec:        shellExec,
	Complete:    fileCompletion,
}

var cmdCd = Command{
	Code:        CodeCd,
	Name:        "cd",
	Usage:       "cd [DIR]",
	Summary:     "Change the working directory",
	Description: "Changes the working directory of remake to DIR, or to the home directory.",
	Exec:        cdExec,
	Complete:    fileCompletion,
}

var cmdPwd = Command{
	Code:        CodePwd,
	Name:        "pwd",
	Usage:       "pwd",
	Summary:     "Print the working directory",
	Description: "Prints the working directory of remake.",
	Exec:        pwdExec,
}

var cmdEdit = Command{
	Code:    CodeEdit,
	Name:    "edit",
	Usage:   "edit",
	Summary: "Edit the build file at the selected target",
	Description: "Opens the build file which defines the selected target in $EDITOR, vi if it is not " +
		"set, at the line of the target.",
	Exec: editExec,
}

func shellExec(s *Session, args string) Signal {
	args = strings.TrimSpace(args)
	if args == "" {
		s.errmsg("You need to supply a command.")
		return SignalCmdError
	}

	if err := s.runAttached("sh", "-c", args); err != nil {
		s.errmsg("%s", err)
		return SignalCmdError
	}
	return SignalReadLoop
}

func (s *Session) runAttached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdin = s.cfg.In
	cmd.Stdout = s.out
	cmd.Stderr = s.out
	return cmd.Run()
}

func cdExec(s *Session, args string) Signal {
	dir := strings.TrimSpace(args)
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			s.errmsg("%s", err)
			return SignalCmdError
		}
		dir = home
	}

	if err := os.Chdir(dir); err != nil {
		s.errmsg("%s", err)
		return SignalCmdError
	}
	return pwdExec(s, "")
}

func pwdExec(s *Session, _ string) Signal {
	wd, err := os.Getwd()
	if err != nil {
		s.errmsg("%s", err)
		return SignalCmdError
	}
	s.msg("Working directory %s.", wd)
	return SignalReadLoop
}

func editExec(s *Session, _ string) Signal {
	t := s.frame()
	if t == nil || t.Location().File == "" {
		s.errmsg("No build file location for the selected target.")
		return SignalCmdError
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}

	loc := t.Location()
	if err := s.runAttached(editor, "+"+strconv.Itoa(loc.Line), loc.File); err != nil {
		s.errmsg("%s", err)
		return SignalCmdError
	}
	return SignalReadLoop
}
