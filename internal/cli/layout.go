package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ontoflow/pkg/layout"
	"github.com/matzehuels/ontoflow/pkg/pipeline"
)

// addLayoutFlags registers the flags shared by layout, toggle and render.
func addLayoutFlags(cmd *cobra.Command, f *layoutFlags) {
	cmd.Flags().StringVar(&f.ontology, "ontology", "", "ontology YAML file (default: built-in)")
	cmd.Flags().StringVarP(&f.algorithm, "algorithm", "a", "", "layout algorithm: "+algorithmList()+" (default from config)")
	cmd.Flags().StringArrayVarP(&f.params, "param", "p", nil, "algorithm parameter as key=value (repeatable)")
	cmd.Flags().StringArrayVar(&f.toggles, "toggle", nil, "toggle pair as anchor:dependent (repeatable)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")

	_ = cmd.RegisterFlagCompletionFunc("algorithm", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return algorithmNames(), cobra.ShellCompDirectiveNoFileComp
	})
}

func algorithmNames() []string {
	algs := layout.Default().Algorithms()
	names := make([]string, len(algs))
	for i, a := range algs {
		names[i] = string(a)
	}
	return names
}

func algorithmList() string {
	return strings.Join(algorithmNames(), ", ")
}

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags  layoutFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "layout [flow.yaml]",
		Short: "Lay out a flow graph and write the render-sink JSON",
		Long: `Lay out a flow graph and write the render-sink JSON.

The flow is validated, the given toggles are switched on, and the visible
graph is laid out with the selected algorithm. Nodes with a declared
position keep it. The output is the frame a renderer draws: nodes with
positions and styled edges.

Results are cached, so repeated runs over the same input are instant.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], flags, output)
		},
	}

	addLayoutFlags(cmd, &flags)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, - for stdout (default: <input>.layout.json)")

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, input string, flags layoutFlags, output string) error {
	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	spinner := newSpinner(ctx, "Computing layout...")
	spinner.Start()

	sess, _, err := c.openSession(ctx, input, flags, runner)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	frame := sess.Frame()
	data, cached, err := runner.RenderWithCacheInfo(ctx, frame.Graph, pipeline.RenderOptions{Format: pipeline.FormatJSON})
	spinner.Stop()
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	prog.done(fmt.Sprintf("Laid out %d nodes with %s", len(frame.Visible), sess.Store().Algorithm()))

	if output == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if output == "" {
		output = derivePath(input, "layout.json")
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	printSuccess("Layout complete")
	printFile(output)
	printStats(len(frame.Graph.Nodes), len(frame.Graph.Edges), cached)
	printNewline()
	printNextStep("Render", appName+" render "+input)
	return nil
}

// derivePath replaces the extension of input with ext.
func derivePath(input, ext string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + "." + ext
}
