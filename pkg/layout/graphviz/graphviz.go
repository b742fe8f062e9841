// Package graphviz lays graphs out with the Graphviz dot engine.
//
// Nodes and edges are translated to DOT with fixed-size boxes, rendered to
// Graphviz's "plain" text format, and parsed back. Plain output is in
// inches with the origin at the bottom left; positions returned here are
// in points with y growing downwards, matching the other engines.
package graphviz

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	gv "github.com/goccy/go-graphviz"

	"github.com/matzehuels/ontoflow/pkg/errors"
	"github.com/matzehuels/ontoflow/pkg/graph"
	"github.com/matzehuels/ontoflow/pkg/layout/hierarchical"
)

// pointsPerInch converts Graphviz inches to layout points.
const pointsPerInch = 72.0

// plainFormat is Graphviz's line-oriented layout dump.
const plainFormat gv.Format = "plain"

// Params configures the layout.
type Params struct {
	Direction      hierarchical.Direction `mapstructure:"direction"`
	NodeSeparation float64                `mapstructure:"nodeSeparation"`
	RankSeparation float64                `mapstructure:"rankSeparation"`
	NodeWidth      float64                `mapstructure:"nodeWidth"`
	NodeHeight     float64                `mapstructure:"nodeHeight"`
}

// DefaultParams returns the default parameters.
func DefaultParams() Params {
	return Params{
		Direction:      hierarchical.TopBottom,
		NodeSeparation: 80,
		RankSeparation: 100,
		NodeWidth:      150,
		NodeHeight:     50,
	}
}

// Validate checks the direction and sizes.
func (p Params) Validate() error {
	switch hierarchical.Direction(strings.ToUpper(string(p.Direction))) {
	case hierarchical.TopBottom, hierarchical.BottomTop, hierarchical.LeftRight, hierarchical.RightLeft:
	default:
		return errors.New(errors.ErrCodeInvalidParams, "direction must be one of TB, BT, LR, RL, got %q", p.Direction)
	}
	if p.NodeSeparation <= 0 || p.RankSeparation <= 0 || p.NodeWidth <= 0 || p.NodeHeight <= 0 {
		return errors.New(errors.ErrCodeInvalidParams, "nodeSeparation, rankSeparation, nodeWidth and nodeHeight must be > 0")
	}
	return nil
}

// Renderer turns DOT source into plain-format output.
type Renderer func(ctx context.Context, dot []byte) ([]byte, error)

// RenderPlain renders dot with the embedded Graphviz library.
func RenderPlain(ctx context.Context, dot []byte) ([]byte, error) {
	g, err := gv.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer g.Close()

	parsed, err := gv.ParseBytes(dot)
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer parsed.Close()

	var buf bytes.Buffer
	if err := g.Render(ctx, parsed, plainFormat, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

// Layouter runs the dot engine through Render.
type Layouter struct {
	Render Renderer
}

// New returns a Layouter backed by RenderPlain.
func New() *Layouter {
	return &Layouter{Render: RenderPlain}
}

// Layout positions nodes and returns edge spline points keyed by edge id.
// Pinned nodes keep their incoming position. Edges with a missing endpoint
// are left out of the layout and get no route.
func (l *Layouter) Layout(ctx context.Context, nodes []graph.Node, edges []graph.Edge, p Params, pinned map[string]bool) ([]graph.Node, map[string][]graph.Position, error) {
	if err := p.Validate(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	render := l.Render
	if render == nil {
		render = RenderPlain
	}

	out, err := render(ctx, []byte(ToDOT(nodes, edges, p)))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, nil, ctxErr
		}
		return nil, nil, errors.Wrap(errors.ErrCodeInternal, err, "graphviz layout")
	}
	plain, err := ParsePlain(out)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInternal, err, "graphviz output")
	}

	result := graph.CloneNodes(nodes)
	for i, n := range result {
		if pinned[n.ID] && n.Position != nil {
			continue
		}
		if pos, ok := plain.Nodes[n.ID]; ok {
			result[i] = n.WithPosition(pos)
		}
	}
	return result, matchRoutes(edges, plain.Edges), nil
}

// matchRoutes assigns plain edges to edge ids. Parallel edges between the
// same pair are matched in input order.
func matchRoutes(edges []graph.Edge, plainEdges []PlainEdge) map[string][]graph.Position {
	type pair struct{ tail, head string }
	queue := make(map[pair][]string)
	for _, e := range edges {
		k := pair{e.Source, e.Target}
		queue[k] = append(queue[k], e.ID)
	}
	routes := make(map[string][]graph.Position, len(plainEdges))
	for _, pe := range plainEdges {
		k := pair{pe.Tail, pe.Head}
		ids := queue[k]
		if len(ids) == 0 {
			continue
		}
		routes[ids[0]] = pe.Points
		queue[k] = ids[1:]
	}
	return routes
}

// ToDOT renders the graph as DOT with fixed-size, unlabelled boxes. Node
// order and edge order follow the input.
func ToDOT(nodes []graph.Node, edges []graph.Edge, p Params) string {
	var b strings.Builder
	b.WriteString("digraph G {\n")
	fmt.Fprintf(&b, "  rankdir=%s;\n", strings.ToUpper(string(p.Direction)))
	fmt.Fprintf(&b, "  nodesep=%s;\n  ranksep=%s;\n", inches(p.NodeSeparation), inches(p.RankSeparation))
	fmt.Fprintf(&b, "  node [shape=box fixedsize=true label=\"\" width=%s height=%s];\n",
		inches(p.NodeWidth), inches(p.NodeHeight))

	seen := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		if seen[n.ID] {
			continue
		}
		seen[n.ID] = true
		fmt.Fprintf(&b, "  %s;\n", quote(n.ID))
	}
	for _, e := range edges {
		if !seen[e.Source] || !seen[e.Target] {
			continue
		}
		fmt.Fprintf(&b, "  %s -> %s;\n", quote(e.Source), quote(e.Target))
	}
	b.WriteString("}\n")
	return b.String()
}

func inches(points float64) string {
	return fmt.Sprintf("%.4f", points/pointsPerInch)
}

func quote(id string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(id) + `"`
}
