package graph

import (
	"bytes"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/ontoflow/pkg/errors"
)

const sampleFlow = `
nodes:
  - id: discover
    type: phase
    name: Discover
    properties: {order: 1}
    position: {x: 10, y: 20}
  - id: jtbd
    type: mental-model
    name: Jobs To Be Done
    layout: {algorithm: force, parameters: {repulsion: -500}}
edges:
  - {id: e1, source: discover, target: jtbd, type: linked-to}
`

func TestParseFlow(t *testing.T) {
	res := ParseFlow([]byte(sampleFlow))
	if !res.OK() {
		t.Fatalf("ParseFlow failed: %v", res.Errors)
	}
	g := res.Graph
	if len(g.Nodes) != 2 || len(g.Edges) != 1 {
		t.Fatalf("got %d nodes, %d edges", len(g.Nodes), len(g.Edges))
	}
	if g.Nodes[0].Position == nil || *g.Nodes[0].Position != (Position{X: 10, Y: 20}) {
		t.Errorf("position = %v", g.Nodes[0].Position)
	}
	if g.Nodes[1].Layout == nil || g.Nodes[1].Layout.Algorithm != "force" {
		t.Errorf("layout = %v", g.Nodes[1].Layout)
	}
	if g.Nodes[1].DisplayName() != "Jobs To Be Done" {
		t.Errorf("DisplayName = %q", g.Nodes[1].DisplayName())
	}
	if res.Err() != nil {
		t.Errorf("Err() = %v, want nil", res.Err())
	}
}

func TestParseFlowAggregatesErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "syntax",
			input: "nodes: [",
			want:  []string{"yaml:"},
		},
		{
			name: "node problems",
			input: `
nodes:
  - {id: "", type: phase}
  - {id: a}
  - {id: b, type: phase}
  - {id: b, type: phase}
`,
			want: []string{"nodes[0]", "nodes[1]: node \"a\" has no type", "nodes[3]: duplicate node id \"b\""},
		},
		{
			name: "edge problems",
			input: `
nodes:
  - {id: a, type: phase}
edges:
  - {source: a, target: a, type: precedes}
  - {id: e2, target: a, type: precedes}
  - {id: e3, source: a, type: precedes}
`,
			want: []string{"edges[0]", "edges[1]: edge \"e2\" has no source", "edges[2]: edge \"e3\" has no target"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ParseFlow([]byte(tt.input))
			if res.Graph != nil {
				t.Fatal("expected nil graph on error")
			}
			if len(res.Errors) != len(tt.want) {
				t.Fatalf("got %d errors %v, want %d", len(res.Errors), res.Errors, len(tt.want))
			}
			for i, w := range tt.want {
				if !strings.Contains(res.Errors[i], w) {
					t.Errorf("error[%d] = %q, want to contain %q", i, res.Errors[i], w)
				}
			}
			if !errors.Is(res.Err(), errors.ErrCodeSchemaViolation) {
				t.Errorf("Err() code = %v", errors.GetCode(res.Err()))
			}
		})
	}
}

func TestParseFlowDanglingEdgeIsNotParseError(t *testing.T) {
	res := ParseFlow([]byte(`
nodes:
  - {id: a, type: phase}
edges:
  - {id: e1, source: a, target: ghost, type: precedes}
`))
	if !res.OK() {
		t.Fatalf("dangling endpoint rejected at parse time: %v", res.Errors)
	}
}

func TestGraphJSONRoundTrip(t *testing.T) {
	res := ParseFlow([]byte(sampleFlow))
	if !res.OK() {
		t.Fatal(res.Errors)
	}
	var buf bytes.Buffer
	if err := WriteGraph(*res.Graph, &buf); err != nil {
		t.Fatalf("WriteGraph: %v", err)
	}
	got, err := ReadGraph(&buf)
	if err != nil {
		t.Fatalf("ReadGraph: %v", err)
	}
	if !slices.Equal(NodeIDs(got.Nodes), []string{"discover", "jtbd"}) {
		t.Errorf("node order = %v", NodeIDs(got.Nodes))
	}
	if got.Edges[0].Type != EdgeLinkedTo {
		t.Errorf("edge type = %q", got.Edges[0].Type)
	}
}

func TestReadGraphRejectsInvalid(t *testing.T) {
	_, err := ReadGraph(strings.NewReader(`{"nodes":[{"id":"a"}],"edges":[]}`))
	if !errors.Is(err, errors.ErrCodeSchemaViolation) {
		t.Fatalf("err = %v, want SCHEMA_VIOLATION", err)
	}
	if _, err := ReadGraph(strings.NewReader(`{`)); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	g := Graph{
		Nodes: []Node{{ID: "a", Type: TypePhase, Properties: map[string]any{"k": 1}, Position: &Position{X: 1}}},
		Edges: []Edge{{ID: "e", Source: "a", Target: "a", Type: EdgeUses}},
	}
	c := g.Clone()
	c.Nodes[0].Properties["k"] = 2
	c.Nodes[0].Position.X = 99
	if g.Nodes[0].Properties["k"] != 1 || g.Nodes[0].Position.X != 1 {
		t.Error("clone shares state with original")
	}
}

func TestIndex(t *testing.T) {
	nodes := []Node{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "a"}}
	edges := []Edge{
		{Source: "a", Target: "b"},
		{Source: "a", Target: "b"},
		{Source: "c", Target: "b"},
		{Source: "b", Target: "ghost"},
		{Source: "c", Target: "c"},
	}
	idx := NewIndex(nodes, edges)

	if idx.Len() != 3 {
		t.Errorf("Len = %d, want 3", idx.Len())
	}
	if got := idx.Children("a"); !slices.Equal(got, []string{"b"}) {
		t.Errorf("Children(a) = %v", got)
	}
	if got := idx.Parents("b"); !slices.Equal(got, []string{"a", "c"}) {
		t.Errorf("Parents(b) = %v", got)
	}
	if got := idx.Sources(); !slices.Equal(got, []string{"a", "c"}) {
		t.Errorf("Sources = %v", got)
	}
	if got := idx.Neighbors("b"); !slices.Equal(got, []string{"a", "c"}) {
		t.Errorf("Neighbors(b) = %v", got)
	}
}

func TestIsAnchorLinkType(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{EdgeLinkedTo, true},
		{"mental-phase-discover", true},
		{EdgeVisualizes, false},
		{EdgePrecedes, false},
		{"mental", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := IsAnchorLinkType(tt.in); got != tt.want {
				t.Errorf("IsAnchorLinkType(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
