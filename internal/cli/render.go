package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ontoflow/pkg/pipeline"
)

// renderOpts holds the render-specific flags.
type renderOpts struct {
	output     string // output file, "-" for stdout
	format     string // svg, dot or json
	detailed   bool   // show node descriptions
	positioned bool   // keep layout positions instead of letting Graphviz place nodes
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags layoutFlags
		opts  = renderOpts{format: pipeline.FormatSVG}
	)

	cmd := &cobra.Command{
		Use:   "render [flow.yaml]",
		Short: "Render a flow graph as a node-link diagram",
		Long: `Render a flow graph as a node-link diagram.

The visible graph for the given toggles is laid out and drawn with
Graphviz. By default Graphviz places the nodes; --positioned keeps the
positions computed by the selected layout algorithm.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pipeline.ValidateFormat(opts.format); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], flags, opts)
		},
	}

	addLayoutFlags(cmd, &flags)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file, - for stdout (default: <input>.<format>)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: svg, dot, json")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show node descriptions")
	cmd.Flags().BoolVar(&opts.positioned, "positioned", false, "keep layout positions")

	_ = cmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return pipeline.Formats(), cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, flags layoutFlags, opts renderOpts) error {
	logger := loggerFromContext(ctx)
	logger.Infof("Rendering %s", input)

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	sess, _, err := c.openSession(ctx, input, flags, runner)
	if err != nil {
		return err
	}
	frame := sess.Frame()

	spinner := newSpinner(ctx, fmt.Sprintf("Rendering %s...", opts.format))
	spinner.Start()
	data, cached, err := runner.RenderWithCacheInfo(ctx, frame.Graph, pipeline.RenderOptions{
		Format:     opts.format,
		Detailed:   opts.detailed,
		Positioned: opts.positioned,
	})
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	if opts.output == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	output := opts.output
	if output == "" {
		output = derivePath(input, opts.format)
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	printSuccess("Rendered %s", opts.format)
	printFile(output)
	printStats(len(frame.Graph.Nodes), len(frame.Graph.Edges), cached)
	return nil
}
