// Package radial implements a radial-tree layout: the centre node sits at
// the origin and every other node lies on the ring matching its graph
// distance from the centre.
package radial

import (
	"cmp"
	"context"
	"math"
	"slices"

	"github.com/matzehuels/ontoflow/pkg/errors"
	"github.com/matzehuels/ontoflow/pkg/graph"
)

// Params configures the layout.
type Params struct {
	// Radius is the distance between consecutive rings.
	Radius float64 `mapstructure:"radius"`
	// AngleOffset rotates every ring, in degrees.
	AngleOffset float64 `mapstructure:"angleOffset"`
	// Center is the id of the centre node. Empty selects the first node
	// without incoming edges, or the first node.
	Center string `mapstructure:"center"`
}

// DefaultParams returns the default parameters.
func DefaultParams() Params {
	return Params{Radius: 150}
}

// Validate checks the ring spacing.
func (p Params) Validate() error {
	if p.Radius <= 0 {
		return errors.New(errors.ErrCodeInvalidParams, "radius must be > 0, got %v", p.Radius)
	}
	return nil
}

// Layout places nodes on concentric rings. Distances follow edge direction
// first; nodes only reachable against edge direction are placed by
// undirected distance, and unreachable nodes share the outermost ring
// plus one. Pinned nodes are restored after placement.
func Layout(ctx context.Context, nodes []graph.Node, edges []graph.Edge, p Params, pinned map[string]bool) ([]graph.Node, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	idx := graph.NewIndex(nodes, edges)
	if idx.Len() == 0 {
		return []graph.Node{}, nil
	}

	center := p.Center
	if !idx.Has(center) {
		if p.Center != "" {
			return nil, errors.New(errors.ErrCodeUnknownNode, "center node %q not found", p.Center)
		}
		center = idx.IDs()[0]
		if src := idx.Sources(); len(src) > 0 {
			center = src[0]
		}
	}

	ring, parent := Rings(idx, center)

	outer := 0
	for _, r := range ring {
		outer = max(outer, r)
	}
	byRing := map[int][]string{}
	for _, id := range idx.IDs() {
		r, ok := ring[id]
		if !ok {
			r = outer + 1
			ring[id] = r
		}
		byRing[r] = append(byRing[r], id)
	}

	offset := p.AngleOffset * math.Pi / 180
	angle := map[string]float64{center: offset}
	pos := map[string]graph.Position{center: graph.Origin}
	for r := 1; r <= outer+1; r++ {
		members := byRing[r]
		slices.SortFunc(members, func(a, b string) int {
			if c := cmp.Compare(parentAngle(a, parent, angle), parentAngle(b, parent, angle)); c != 0 {
				return c
			}
			return cmp.Compare(a, b)
		})
		radius := float64(r) * p.Radius
		for i, id := range members {
			a := offset + 2*math.Pi*float64(i)/float64(len(members))
			angle[id] = a
			pos[id] = graph.Position{X: radius * math.Cos(a), Y: radius * math.Sin(a)}
		}
	}

	out := make([]graph.Node, len(nodes))
	for i, n := range nodes {
		c := n.Clone()
		if !(pinned[n.ID] && n.Position != nil) {
			c = c.WithPosition(pos[n.ID])
		}
		out[i] = c
	}
	return out, nil
}

func parentAngle(id string, parent map[string]string, angle map[string]float64) float64 {
	if p, ok := parent[id]; ok {
		if a, ok := angle[p]; ok {
			return a
		}
	}
	return math.Inf(1)
}

// Rings computes the ring of every node reachable from center, with the
// BFS parent that reached it. Directed edges are followed first; remaining
// nodes are then reached through edges in either direction. Unreachable
// nodes are absent from both maps.
func Rings(idx *graph.Index, center string) (ring map[string]int, parent map[string]string) {
	ring = map[string]int{center: 0}
	parent = map[string]string{}

	bfs := func(queue []string, next func(string) []string) {
		for len(queue) > 0 {
			curr := queue[0]
			queue = queue[1:]
			for _, nb := range next(curr) {
				if _, seen := ring[nb]; seen {
					continue
				}
				ring[nb] = ring[curr] + 1
				parent[nb] = curr
				queue = append(queue, nb)
			}
		}
	}

	bfs([]string{center}, idx.Children)

	reached := make([]string, 0, len(ring))
	for _, id := range idx.IDs() {
		if _, ok := ring[id]; ok {
			reached = append(reached, id)
		}
	}
	slices.SortStableFunc(reached, func(a, b string) int { return cmp.Compare(ring[a], ring[b]) })
	bfs(reached, idx.Neighbors)

	return ring, parent
}
