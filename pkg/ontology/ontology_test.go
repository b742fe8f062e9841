package ontology

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/ontoflow/pkg/errors"
	"github.com/matzehuels/ontoflow/pkg/graph"
)

const testOntology = `
nodeTypes:
  - id: phase
    name: Phase
    properties:
      - {name: order, type: number, required: true}
      - {name: owner, type: string, required: true}
      - {name: notes, type: string}
  - id: mental-model
    name: Mental Model
edgeTypes:
  - id: linked-to
    name: Linked To
    sourceTypes: [phase]
    targetTypes: [mental-model]
    style: {stroke: "#8b5cf6", dash: "5,5"}
  - id: precedes
    name: Precedes
    sourceTypes: [phase]
    targetTypes: [phase]
`

func mustParse(t *testing.T, s string) *Ontology {
	t.Helper()
	o, err := Parse([]byte(s))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return o
}

func TestParse(t *testing.T) {
	o := mustParse(t, testOntology)
	if got := o.NodeTypeIDs(); len(got) != 2 || got[0] != "phase" {
		t.Errorf("NodeTypeIDs = %v", got)
	}
	if _, ok := o.EdgeType("precedes"); !ok {
		t.Error("EdgeType(precedes) not found")
	}
	styles := o.EdgeStyles()
	if len(styles) != 1 || styles["linked-to"].Dash != "5,5" {
		t.Errorf("EdgeStyles = %v", styles)
	}
	if labels := o.EdgeLabels(); labels["precedes"] != "Precedes" || len(labels) != 2 {
		t.Errorf("EdgeLabels = %v", labels)
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"syntax", "nodeTypes: [", nil},
		{
			name: "duplicates and undeclared",
			input: `
nodeTypes:
  - {id: a}
  - {id: a}
edgeTypes:
  - {id: x, sourceTypes: [a], targetTypes: [ghost]}
  - {id: x, sourceTypes: [nope]}
`,
			want: []string{
				`nodeTypes[1]: duplicate node type "a"`,
				`edge type "x": undeclared target type "ghost"`,
				`edgeTypes[1]: duplicate edge type "x"`,
				`edge type "x": undeclared source type "nope"`,
			},
		},
		{
			name: "unknown layout algorithm",
			input: `
nodeTypes:
  - {id: a, layout: {algorithm: spiral}}
  - {id: b, layout: {algorithm: Radial, parameters: {radius: 300}}}
`,
			want: []string{
				`node type "a": unknown layout algorithm "spiral" (expected one of [force, hierarchical, radial, edge-routing, elk])`,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			if !errors.Is(err, errors.ErrCodeInvalidOntology) {
				t.Fatalf("err = %v, want INVALID_ONTOLOGY", err)
			}
			got := errors.Violations(err)
			if len(got) != len(tt.want) {
				t.Fatalf("violations = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("violation[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestValidateNodeType(t *testing.T) {
	o := mustParse(t, testOntology)
	tests := []struct {
		name    string
		node    graph.Node
		valid   bool
		wantErr []string
	}{
		{
			name:    "unknown type",
			node:    graph.Node{ID: "n", Type: "wormhole"},
			wantErr: []string{"wormhole"},
		},
		{
			name:    "all required missing",
			node:    graph.Node{ID: "n", Type: "phase"},
			wantErr: []string{`"order"`, `"owner"`},
		},
		{
			name:  "extra properties accepted",
			node:  graph.Node{ID: "n", Type: "phase", Properties: map[string]any{"order": 1, "owner": "x", "color": "red"}},
			valid: true,
		},
		{
			name:  "no schema",
			node:  graph.Node{ID: "m", Type: "mental-model"},
			valid: true,
		},
		{
			name:    "unknown layout algorithm",
			node:    graph.Node{ID: "m", Type: "mental-model", Layout: &graph.NodeLayout{Algorithm: "bogus"}},
			wantErr: []string{`unknown layout algorithm "bogus"`},
		},
		{
			name:    "layout checked on unknown type",
			node:    graph.Node{ID: "n", Type: "wormhole", Layout: &graph.NodeLayout{Algorithm: "bogus"}},
			wantErr: []string{"bogus", "wormhole"},
		},
		{
			name:  "known layout algorithm",
			node:  graph.Node{ID: "m", Type: "mental-model", Layout: &graph.NodeLayout{Algorithm: "hierarchical"}},
			valid: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidateNodeType(tt.node, o)
			if res.Valid != tt.valid {
				t.Fatalf("Valid = %v, errors %v", res.Valid, res.Errors)
			}
			if len(res.Errors) != len(tt.wantErr) {
				t.Fatalf("errors = %v, want %d", res.Errors, len(tt.wantErr))
			}
			for i, w := range tt.wantErr {
				if !strings.Contains(res.Errors[i], w) {
					t.Errorf("error[%d] = %q, want to contain %q", i, res.Errors[i], w)
				}
			}
		})
	}
}

func TestValidateEdgeType(t *testing.T) {
	o := mustParse(t, testOntology)
	phase := graph.Node{ID: "p", Type: "phase"}
	mm := graph.Node{ID: "m", Type: "mental-model"}

	t.Run("allowed", func(t *testing.T) {
		res := ValidateEdgeType(graph.Edge{ID: "e", Type: "linked-to"}, phase, mm, o)
		if !res.Valid {
			t.Errorf("errors = %v", res.Errors)
		}
	})
	t.Run("unknown type", func(t *testing.T) {
		res := ValidateEdgeType(graph.Edge{ID: "e", Type: "teleports"}, phase, mm, o)
		if res.Valid || !strings.Contains(res.Errors[0], "teleports") {
			t.Errorf("errors = %v", res.Errors)
		}
	})
	t.Run("both endpoints reported", func(t *testing.T) {
		res := ValidateEdgeType(graph.Edge{ID: "e", Type: "linked-to"}, mm, phase, o)
		if len(res.Errors) != 2 {
			t.Fatalf("errors = %v, want 2", res.Errors)
		}
		if !strings.Contains(res.Errors[0], `source type "mental-model"`) || !strings.Contains(res.Errors[0], "[phase]") {
			t.Errorf("source error = %q", res.Errors[0])
		}
		if !strings.Contains(res.Errors[1], `target type "phase"`) || !strings.Contains(res.Errors[1], "[mental-model]") {
			t.Errorf("target error = %q", res.Errors[1])
		}
	})
}

func TestValidateFlowEdgesDangling(t *testing.T) {
	o := mustParse(t, testOntology)
	nodes := []graph.Node{{ID: "p", Type: "phase"}, {ID: "m", Type: "mental-model"}}
	edges := []graph.Edge{
		{ID: "e1", Source: "p", Target: "ghost", Type: "linked-to"},
		{ID: "e2", Source: "nobody", Target: "m", Type: "linked-to"},
		{ID: "e3", Source: "m", Target: "p", Type: "linked-to"},
		{ID: "e4", Source: "p", Target: "m", Type: "linked-to"},
	}
	res := ValidateFlowEdges(edges, nodes, o)
	if res.Valid {
		t.Fatal("expected invalid")
	}
	want := []string{`"ghost"`, `"nobody"`, `edge "e3": source`, `edge "e3": target`}
	if len(res.Errors) != len(want) {
		t.Fatalf("errors = %v", res.Errors)
	}
	for i, w := range want {
		if !strings.Contains(res.Errors[i], w) {
			t.Errorf("error[%d] = %q, want to contain %q", i, res.Errors[i], w)
		}
	}
}

func TestValidateGraph(t *testing.T) {
	o := mustParse(t, testOntology)
	g := graph.Graph{
		Nodes: []graph.Node{{ID: "p", Type: "phase"}, {ID: "x", Type: "unknown"}},
		Edges: []graph.Edge{{ID: "e", Source: "p", Target: "p", Type: "nope"}},
	}
	res := Validate(g, o)
	if res.Valid || len(res.Errors) != 4 {
		t.Fatalf("errors = %v", res.Errors)
	}
	if !strings.Contains(res.Errors[3], "nope") {
		t.Errorf("edge errors must follow node errors: %v", res.Errors)
	}
}

func TestRegistry(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ont.yaml")
	if err := os.WriteFile(path, []byte(testOntology), 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewRegistry()
	if _, ok := r.Get(); ok {
		t.Fatal("new registry should be empty")
	}
	if _, err := r.Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	o, ok := r.Get()
	if !ok || len(o.NodeTypes) != 2 {
		t.Fatalf("Get = %v, %v", o, ok)
	}
	if _, err := r.Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
	if _, ok := r.Get(); !ok {
		t.Error("failed load must keep previous ontology")
	}
	r.Clear()
	if _, ok := r.Get(); ok {
		t.Error("Clear should drop the ontology")
	}
}

func TestDefault(t *testing.T) {
	o := Default()
	for _, id := range []string{graph.TypePhase, graph.TypeSubPhase, graph.TypeComponent, graph.TypeMentalModel, graph.TypeVisualization} {
		if _, ok := o.NodeType(id); !ok {
			t.Errorf("default ontology missing node type %q", id)
		}
	}
	for _, id := range []string{graph.EdgeContains, graph.EdgePrecedes, graph.EdgeLinkedTo, graph.EdgeVisualizes, graph.EdgeUses, graph.EdgeComposition} {
		if _, ok := o.EdgeType(id); !ok {
			t.Errorf("default ontology missing edge type %q", id)
		}
	}
}
