package build

import (
	"context"
	"errors"
	"io"
	"os/exec"
)

// Command is a single recipe line ready to run.
type Command struct {
	Line   string
	Dir    string
	Env    []string
	Trace  bool
	Stdout io.Writer
	Stderr io.Writer
}

// Runner runs recipe lines.
type Runner interface {
	Run(ctx context.Context, cmd Command) error
}

// ShellRunner runs recipe lines with a POSIX shell.
type ShellRunner struct {
	// Shell defaults to /bin/sh.
	Shell string
}

func (r ShellRunner) Run(ctx context.Context, cmd Command) error {
	shell := r.Shell
	if shell == "" {
		shell = "/bin/sh"
	}

	flag := "-c"
	if cmd.Trace {
		flag = "-xc"
	}

	c := exec.CommandContext(ctx, shell, flag, cmd.Line)
	c.Dir = cmd.Dir
	c.Env = cmd.Env
	c.Stdout = cmd.Stdout
	c.Stderr = cmd.Stderr
	return c.Run()
}

// exitCode returns the exit status of a failed recipe line, 1 if it has none.
func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
		return exitErr.ExitCode()
	}
	return 1
}
