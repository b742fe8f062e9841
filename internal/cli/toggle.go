package cli

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/ontoflow/pkg/pipeline"
	"github.com/matzehuels/ontoflow/pkg/topology"
)

// toggleCommand creates the toggle command.
func (c *CLI) toggleCommand() *cobra.Command {
	var (
		flags       layoutFlags
		output      string
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "toggle [flow.yaml]",
		Short: "Apply toggles step by step and show what changes",
		Long: `Apply toggles step by step and show what changes.

Each --toggle flips one anchor:dependent pair, in order. After every step
the visible nodes, the nodes that were laid out again and the size of the
frame patch are printed. Toggling a pair twice turns it off again.

With -i the declared pairs are listed for interactive toggling after the
flagged steps have been applied.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runToggle(cmd.Context(), args[0], flags, output, interactive)
		},
	}

	addLayoutFlags(cmd, &flags)
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "pick toggles from an interactive list")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the final frame as JSON to this file")

	return cmd
}

func (c *CLI) runToggle(ctx context.Context, input string, flags layoutFlags, output string, interactive bool) error {
	pairs, err := parsePairs(flags.toggles)
	if err != nil {
		return err
	}
	if len(pairs) == 0 && !interactive {
		return fmt.Errorf("nothing to do: pass --toggle anchor:dependent or -i")
	}
	flags.toggles = nil

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	sess, _, err := c.openSession(ctx, input, flags, runner)
	if err != nil {
		return err
	}
	printInfo("Initial view (%s)", StyleHighlight.Render(string(sess.Store().Algorithm())))
	printFrame(sess.Frame())

	prog := newProgress(c.Logger)
	for i, p := range pairs {
		frame, err := sess.Toggle(ctx, p.Anchor, p.Dependent)
		if err != nil {
			printError("%s", describePair(sess, p))
			return err
		}
		printNewline()
		printInfo("%d. %s", i+1, describePair(sess, p))
		printFrame(frame)
	}
	if len(pairs) > 0 {
		prog.done(fmt.Sprintf("Applied %d toggles", len(pairs)))
	}

	if interactive {
		if err := runToggleList(ctx, sess); err != nil {
			return err
		}
	}

	if output != "" {
		data, err := runner.Render(ctx, sess.Frame().Graph, pipeline.RenderOptions{Format: pipeline.FormatJSON})
		if err != nil {
			return err
		}
		if err := os.WriteFile(output, data, 0o644); err != nil {
			return fmt.Errorf("write output %s: %w", output, err)
		}
		printNewline()
		printSuccess("Final frame written")
		printFile(output)
	}
	return nil
}

// describePair renders a pair with its current state and reference count.
func describePair(sess *pipeline.Session, p topology.Pair) string {
	icon, state := iconOff, "off"
	if sess.IsOn(p.Anchor, p.Dependent) {
		icon, state = iconOn, "on"
	}
	return fmt.Sprintf("%s %s %s %s %s", icon, p.Anchor, iconArrow, p.Dependent, StyleDim.Render(state))
}

// runToggleList runs the interactive toggle list until the user quits.
func runToggleList(ctx context.Context, sess *pipeline.Session) error {
	pairs := sess.Available()
	if len(pairs) == 0 {
		printWarning("No toggles declared in this flow")
		return nil
	}
	final, err := tea.NewProgram(NewToggleListModel(ctx, sess, pairs), tea.WithContext(ctx)).Run()
	if err != nil {
		return fmt.Errorf("toggle list: %w", err)
	}
	if m, ok := final.(ToggleListModel); ok {
		printInfo("%d toggles applied interactively", m.Applied)
	}
	printNewline()
	printInfo("Final view")
	printFrame(sess.Frame())
	return nil
}
