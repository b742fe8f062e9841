package pipeline

import (
	"fmt"

	"github.com/matzehuels/ontoflow/pkg/graph"
	"github.com/matzehuels/ontoflow/pkg/layout"
	"github.com/matzehuels/ontoflow/pkg/ontology"
)

// LayoutOverrides collects the layout settings declared by a flow document:
// the ontology's node-type defaults for the types present in g, in ontology
// order, then per-node overrides in node order. ont may be nil.
func LayoutOverrides(g graph.Graph, ont *ontology.Ontology) []graph.NodeLayout {
	var out []graph.NodeLayout
	if ont != nil {
		present := graph.NodeTypes(g.Nodes)
		used := make(map[string]bool, len(present))
		for _, t := range present {
			used[t] = true
		}
		for _, nt := range ont.NodeTypes {
			if nt.Layout != nil && used[nt.ID] {
				out = append(out, *nt.Layout)
			}
		}
	}
	for _, n := range g.Nodes {
		if n.Layout != nil {
			out = append(out, *n.Layout)
		}
	}
	return out
}

// ApplyLayoutOverrides merges each override's parameters into store under
// the algorithm it names; later entries win. The store's selected
// algorithm is left unchanged.
func ApplyLayoutOverrides(store *layout.Store, overrides []graph.NodeLayout) error {
	for _, o := range overrides {
		alg := layout.ParseAlgorithm(o.Algorithm)
		if err := store.SetParams(alg, layout.Params(o.Parameters)); err != nil {
			return fmt.Errorf("layout override for %s: %w", alg, err)
		}
	}
	return nil
}
