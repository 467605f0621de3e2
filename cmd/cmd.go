package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/mandy-yan/remake/pkg/build"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "remake",
	Short: "remake is a make-like build tool with an interactive debugger",
	Long: "remake builds targets described in an HCL build file. The debug command runs the build " +
		"under an interactive debugger which can stop before and after every target, set breakpoints, " +
		"inspect and change variables and restart the build.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// exitError carries the exit status requested with the debugger's quit command.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func Execute() {
	rootCmd.AddCommand(
		debugCommand(),
		runCommand(),
		graphCommand(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err == nil {
		return
	}

	var exitErr *exitError
	if errors.As(err, &exitErr) {
		os.Exit(exitErr.code)
	}

	fmt.Fprintln(os.Stderr, "remake:", err)
	if errors.Is(err, build.ErrRecipe) || errors.Is(err, build.ErrNoRule) || errors.Is(err, build.ErrCycle) {
		os.Exit(2)
	}
	os.Exit(1)
}
