package cmd

import (
	"errors"
	"fmt"

	"github.com/mandy-yan/remake/pkg/build"
	"github.com/mandy-yan/remake/pkg/debugger"
	"github.com/spf13/cobra"
)

func debugCommand() *cobra.Command {
	var (
		opts        buildOptions
		initFile    string
		color       string
		stopOnError bool
	)

	debugCmd := &cobra.Command{
		Use:   "debug [GOAL...]",
		Short: "debug runs the build in an interactive debug session",
		Long: "The build stops before the first target is considered. From there it can be stepped " +
			"through target by target, or continued to a breakpoint. Type 'help' at the prompt for a " +
			"list of commands.",
		RunE: func(cmd *cobra.Command, args []string) error {
			clr, err := useColor(color)
			if err != nil {
				return err
			}

			logger := opts.logger()
			e, err := opts.engine(logger, cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			sess := debugger.New(e, debugger.Config{
				In:          cmd.InOrStdin(),
				Out:         cmd.OutOrStdout(),
				Color:       clr,
				StopOnError: stopOnError,
				InitFile:    initFile,
				Logger:      logger,
			})
			e.AttachDebugger(sess)
			sess.Step(1)

			fmt.Fprintln(cmd.OutOrStdout(), "Type 'help' for list of commands.")

			err = e.Build(cmd.Context(), args...)
			if errors.Is(err, build.ErrQuit) {
				if code := sess.ExitCode(); code != 0 {
					return &exitError{code: code}
				}
				return nil
			}
			return err
		},
	}

	f := debugCmd.Flags()
	opts.register(f)
	f.StringVar(&initFile, "source", "", "Path to a file of debugger commands which is executed to setup the session")
	f.StringVar(&color, "color", "auto", "Color output: auto, always or never")
	f.BoolVar(&stopOnError, "stop-on-error", true, "Enter the debugger when the build reports an error")

	return debugCmd
}
