package cmd

import "github.com/spf13/cobra"

func runCommand() *cobra.Command {
	var opts buildOptions

	runCmd := &cobra.Command{
		Use:   "run [GOAL...]",
		Short: "run builds the goals, or the first target of the build file, without the debugger",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.engine(opts.logger(), cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return e.Build(cmd.Context(), args...)
		},
	}

	opts.register(runCmd.Flags())
	return runCmd
}
