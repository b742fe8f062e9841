package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ontoflow/pkg/errors"
	"github.com/matzehuels/ontoflow/pkg/graph"
	"github.com/matzehuels/ontoflow/pkg/ontology"
)

// validateCommand creates the validate command.
func (c *CLI) validateCommand() *cobra.Command {
	var ontologyPath string

	cmd := &cobra.Command{
		Use:   "validate [flow.yaml]",
		Short: "Check a flow document against an ontology",
		Long: `Check a flow document against an ontology.

Every node type, required property and edge type is checked, and every
violation is printed. The command exits non-zero when any is found.
Without --ontology the built-in product-design ontology is used.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runValidate(args[0], ontologyPath)
		},
	}

	cmd.Flags().StringVar(&ontologyPath, "ontology", "", "ontology YAML file (default: built-in)")

	return cmd
}

func (c *CLI) runValidate(path, ontologyPath string) error {
	ont, err := loadOntology(ontologyPath)
	if err != nil {
		return fmt.Errorf("load ontology: %w", err)
	}
	res, err := graph.LoadFlow(path)
	if err != nil {
		return err
	}
	if !res.OK() {
		return reportViolations(path, res.Err())
	}

	g := *res.Graph
	vr := ontology.Validate(g, ont)
	if !vr.Valid {
		return reportViolations(path, errors.NewList(errors.ErrCodeSchemaViolation, vr.Errors))
	}

	c.Logger.Debug("validated", "path", path, "nodes", len(g.Nodes), "edges", len(g.Edges))
	printSuccess("%s is valid", path)
	printDetail("%d nodes, %d edges, %d node types", len(g.Nodes), len(g.Edges), len(ont.NodeTypes))
	return nil
}

// reportViolations prints every violation in err and returns a summary
// error for the exit status.
func reportViolations(path string, err error) error {
	violations := errors.Violations(err)
	printError("%s has %d violation(s)", path, len(violations))
	for _, v := range violations {
		printDetail("%s", v)
	}
	return errors.New(errors.GetCode(err), "%s is invalid", path)
}
