package cmd

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"
)

func graphCommand() *cobra.Command {
	var opts buildOptions

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Generate the dependency graph of a build file",
		Long: "This command reads the build file and creates a graph of its targets and their " +
			"prerequisites. Prerequisites without a rule are drawn as files, targets which run a " +
			"sub-build are blue.\n\n" +
			"If no flags are specified the command will attempt to render the graph as SVG and open it in the browser.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(cmd, &opts)
		},
		Args: cobra.NoArgs,
	}

	f := cmd.Flags()
	opts.register(f)
	f.StringVarP(&graphOutput, "output", "o", "", "output to given file path or - for stdout, instead of opening "+
		"in browser")
	f.StringVar(&graphOutputFormat, "format", "svg", "The output format: dot, svg, pdf or png")

	return cmd
}

var (
	graphOutput       string
	graphOutputFormat string
)

func runGraph(cmd *cobra.Command, opts *buildOptions) error {
	e, err := opts.engine(opts.logger(), cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	graph := e.Graph().String()

	switch graphOutputFormat {
	case "dot":
		if graphOutput == "-" {
			fmt.Fprintln(cmd.OutOrStdout(), graph)
			return nil
		}

		var f *os.File
		if graphOutput == "" {
			f, err = os.CreateTemp(os.TempDir(), "remake-graph-*.dot.txt")
			if err != nil {
				return fmt.Errorf("create tmp: %w", err)
			}
		} else {
			f, err = os.Create(graphOutput)
			if err != nil {
				return fmt.Errorf("create file: %w", err)
			}
		}
		defer f.Close()

		_, err = io.Copy(f, strings.NewReader(graph))
		if err != nil {
			return fmt.Errorf("copy: %w", err)
		}

		if graphOutput == "" {
			return browser.OpenFile(f.Name())
		}

	case "png", "svg", "pdf":
		dotF, err := os.CreateTemp(os.TempDir(), "remake-graph-*.dot")
		if err != nil {
			return fmt.Errorf("create tmp: %w", err)
		}
		defer dotF.Close()

		_, err = io.Copy(dotF, strings.NewReader(graph))
		if err != nil {
			return fmt.Errorf("copy: %w", err)
		}

		out := graphOutput
		if out == "" {
			imgF, err := os.CreateTemp(os.TempDir(), fmt.Sprintf("remake-graph-*.%s", graphOutputFormat))
			if err != nil {
				return fmt.Errorf("create tmp: %w", err)
			}
			imgF.Close()
			out = imgF.Name()
		}

		dot := exec.Command("dot", fmt.Sprintf("-T%s", graphOutputFormat), dotF.Name())
		if out == "-" {
			dot.Stdout = cmd.OutOrStdout()
		} else {
			dot.Args = append(dot.Args, fmt.Sprintf("-o%s", out))
		}
		dot.Stderr = cmd.ErrOrStderr()

		if err := dot.Run(); err != nil {
			return fmt.Errorf("dot: %w", err)
		}

		if graphOutput == "" {
			return browser.OpenFile(out)
		}

	default:
		return fmt.Errorf("unknown output format '%s', pick from: dot, svg, pdf, png", graphOutputFormat)
	}

	return nil
}
