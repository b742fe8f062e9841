package pipeline

import (
	"context"
	"reflect"
	"testing"

	"github.com/matzehuels/ontoflow/pkg/errors"
	"github.com/matzehuels/ontoflow/pkg/graph"
	"github.com/matzehuels/ontoflow/pkg/layout"
	"github.com/matzehuels/ontoflow/pkg/ontology"
)

const overridesOntology = `
nodeTypes:
  - id: phase
    layout: {algorithm: force, parameters: {repulsion: -900, seed: 1}}
  - id: mental-model
  - id: visualization
    layout: {algorithm: radial, parameters: {radius: 400}}
edgeTypes:
  - id: linked-to
    sourceTypes: [phase]
    targetTypes: [mental-model]
`

func overridesGraph() graph.Graph {
	return graph.Graph{
		Nodes: []graph.Node{
			{ID: "A", Type: graph.TypePhase},
			{ID: "D", Type: graph.TypeMentalModel, Layout: &graph.NodeLayout{
				Algorithm:  "force",
				Parameters: map[string]any{"seed": 3},
			}},
		},
		Edges: []graph.Edge{
			{ID: "ad", Source: "A", Target: "D", Type: graph.EdgeLinkedTo},
		},
	}
}

func TestLayoutOverrides(t *testing.T) {
	ont, err := ontology.Parse([]byte(overridesOntology))
	if err != nil {
		t.Fatal(err)
	}
	got := LayoutOverrides(overridesGraph(), ont)
	// The visualization type has no node in the graph, so its defaults
	// are skipped; the node override comes after the type defaults.
	if len(got) != 2 || got[0].Parameters["repulsion"] != -900 || got[1].Parameters["seed"] != 3 {
		t.Fatalf("LayoutOverrides = %+v", got)
	}
	if n := len(LayoutOverrides(overridesGraph(), nil)); n != 1 {
		t.Errorf("without ontology: %d overrides, want 1", n)
	}

	store, err := layout.NewStore(nil, layout.Hierarchical)
	if err != nil {
		t.Fatal(err)
	}
	if err := ApplyLayoutOverrides(store, got); err != nil {
		t.Fatal(err)
	}
	want := layout.Params{"repulsion": -900, "seed": 3}
	if o := store.Overrides(layout.Force); !reflect.DeepEqual(o, want) {
		t.Errorf("force overrides = %v, want %v", o, want)
	}
	if store.Algorithm() != layout.Hierarchical {
		t.Errorf("selected algorithm changed to %s", store.Algorithm())
	}
}

func TestApplyLayoutOverridesErrors(t *testing.T) {
	tests := []struct {
		name     string
		override graph.NodeLayout
		code     errors.Code
	}{
		{"unknown algorithm", graph.NodeLayout{Algorithm: "spiral"}, errors.ErrCodeUnknownAlgorithm},
		{"bad value", graph.NodeLayout{Algorithm: "force", Parameters: map[string]any{"iterations": "many"}}, errors.ErrCodeInvalidParams},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := layout.NewStore(nil, "")
			if err != nil {
				t.Fatal(err)
			}
			err = ApplyLayoutOverrides(store, []graph.NodeLayout{tt.override})
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestNewSessionAppliesDocumentLayouts(t *testing.T) {
	ont, err := ontology.Parse([]byte(overridesOntology))
	if err != nil {
		t.Fatal(err)
	}
	s, err := NewSession(context.Background(), overridesGraph(), SessionOptions{Ontology: ont})
	if err != nil {
		t.Fatal(err)
	}
	p, err := s.Store().Params(layout.Force)
	if err != nil {
		t.Fatal(err)
	}
	if p["repulsion"] != -900 || p["seed"] != 3 {
		t.Errorf("force params = %v", p)
	}

	g := overridesGraph()
	g.Nodes[1].Layout.Parameters = map[string]any{"iterations": "many"}
	if _, err := NewSession(context.Background(), g, SessionOptions{}); !errors.Is(err, errors.ErrCodeInvalidParams) {
		t.Errorf("err = %v, want INVALID_PARAMS", err)
	}
}
