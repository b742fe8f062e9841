// Package hierarchical implements a ranked (layered) layout.
//
// # Algorithm
//
//  1. Break cycles by dropping DFS back edges
//  2. Assign ranks by longest path from the sources (Kahn's algorithm)
//  3. Order each rank with barycentric sweeps, keeping the ordering with
//     the fewest crossings
//  4. Place ranks rankSeparation apart along the rank axis and spread each
//     rank nodeSeparation apart, centred on 0, along the other axis
//
// Direction selects the rank axis and its sign: TB grows down, BT up,
// LR right and RL left.
package hierarchical

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/matzehuels/ontoflow/pkg/errors"
	"github.com/matzehuels/ontoflow/pkg/graph"
)

// Direction is the flow direction of ranks.
type Direction string

const (
	TopBottom Direction = "TB"
	BottomTop Direction = "BT"
	LeftRight Direction = "LR"
	RightLeft Direction = "RL"
)

// sweeps is the number of down/up barycentric passes.
const sweeps = 8

// Params configures the layout.
type Params struct {
	Direction      Direction `mapstructure:"direction"`
	RankSeparation float64   `mapstructure:"rankSeparation"`
	NodeSeparation float64   `mapstructure:"nodeSeparation"`
}

// DefaultParams returns the default parameters.
func DefaultParams() Params {
	return Params{Direction: TopBottom, RankSeparation: 120, NodeSeparation: 80}
}

// Validate checks the direction and separations.
func (p Params) Validate() error {
	switch Direction(strings.ToUpper(string(p.Direction))) {
	case TopBottom, BottomTop, LeftRight, RightLeft:
	default:
		return errors.New(errors.ErrCodeInvalidParams, "direction must be one of TB, BT, LR, RL, got %q", p.Direction)
	}
	if p.RankSeparation <= 0 || p.NodeSeparation <= 0 {
		return errors.New(errors.ErrCodeInvalidParams, "rankSeparation and nodeSeparation must be > 0")
	}
	return nil
}

// Layout ranks and places nodes. Pinned nodes are restored to their
// incoming position after placement.
func Layout(ctx context.Context, nodes []graph.Node, edges []graph.Edge, p Params, pinned map[string]bool) ([]graph.Node, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	idx := graph.NewIndex(nodes, edges)
	children := BreakCycles(idx)
	ranks := AssignRanks(idx, children)
	orders := OrderRanks(idx, children, ranks)

	pos := make(map[string]graph.Position, idx.Len())
	dir := Direction(strings.ToUpper(string(p.Direction)))
	for r, row := range orders {
		mid := float64(len(row)-1) / 2
		for i, id := range row {
			rank := float64(r) * p.RankSeparation
			spread := (float64(i) - mid) * p.NodeSeparation
			pos[id] = place(dir, rank, spread)
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

func place(dir Direction, rank, spread float64) graph.Position {
	switch dir {
	case BottomTop:
		return graph.Position{X: spread, Y: -rank}
	case LeftRight:
		return graph.Position{X: rank, Y: spread}
	case RightLeft:
		return graph.Position{X: -rank, Y: spread}
	default:
		return graph.Position{X: spread, Y: rank}
	}
}

// BreakCycles returns the child adjacency of idx with DFS back edges
// removed. Traversal starts from sources, then from any node not yet
// visited, both in input order.
func BreakCycles(idx *graph.Index) map[string][]string {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, idx.Len())
	back := make(map[[2]string]bool)

	var dfs func(node string)
	dfs = func(node string) {
		color[node] = gray
		for _, child := range idx.Children(node) {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				back[[2]string{node, child}] = true
			}
		}
		color[node] = black
	}

	for _, id := range idx.Sources() {
		if color[id] == white {
			dfs(id)
		}
	}
	for _, id := range idx.IDs() {
		if color[id] == white {
			dfs(id)
		}
	}

	out := make(map[string][]string, idx.Len())
	for _, id := range idx.IDs() {
		for _, c := range idx.Children(id) {
			if !back[[2]string{id, c}] {
				out[id] = append(out[id], c)
			}
		}
	}
	return out
}

// AssignRanks computes longest-path ranks over an acyclic child adjacency.
// Nodes with no incoming edges are at rank 0; every other node sits one
// below its deepest parent.
func AssignRanks(idx *graph.Index, children map[string][]string) map[string]int {
	inDegree := make(map[string]int, idx.Len())
	for _, id := range idx.IDs() {
		for _, c := range children[id] {
			inDegree[c]++
		}
	}

	ranks := make(map[string]int, idx.Len())
	queue := make([]string, 0, idx.Len())
	for _, id := range idx.IDs() {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		for _, child := range children[curr] {
			if r := ranks[curr] + 1; r > ranks[child] {
				ranks[child] = r
			}
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}
	return ranks
}

// OrderRanks groups nodes by rank and orders each rank to reduce edge
// crossings between adjacent ranks. The initial order is input order.
func OrderRanks(idx *graph.Index, children map[string][]string, ranks map[string]int) [][]string {
	depth := 0
	for _, r := range ranks {
		depth = max(depth, r)
	}
	orders := make([][]string, depth+1)
	for _, id := range idx.IDs() {
		orders[ranks[id]] = append(orders[ranks[id]], id)
	}
	if idx.Len() == 0 {
		return nil
	}

	parents := make(map[string][]string, idx.Len())
	for _, id := range idx.IDs() {
		for _, c := range children[id] {
			parents[c] = append(parents[c], id)
		}
	}

	best := cloneOrders(orders)
	bestCrossings := countCrossings(orders, children)
	for s := 0; s < sweeps && bestCrossings > 0; s++ {
		if s%2 == 0 {
			for r := 1; r < len(orders); r++ {
				sortByBarycenter(orders[r], orders[r-1], parents)
			}
		} else {
			for r := len(orders) - 2; r >= 0; r-- {
				sortByBarycenter(orders[r], orders[r+1], children)
			}
		}
		if c := countCrossings(orders, children); c < bestCrossings {
			best, bestCrossings = cloneOrders(orders), c
		}
	}
	return best
}

// sortByBarycenter reorders row by the mean position of each node's
// neighbours in fixed. Nodes without neighbours keep their current slot
// value, which keeps the sort stable for them.
func sortByBarycenter(row, fixed []string, neighbors map[string][]string) {
	pos := make(map[string]int, len(fixed))
	for i, id := range fixed {
		pos[id] = i
	}
	bary := make(map[string]float64, len(row))
	for i, id := range row {
		sum, n := 0.0, 0
		for _, nb := range neighbors[id] {
			if p, ok := pos[nb]; ok {
				sum += float64(p)
				n++
			}
		}
		if n == 0 {
			bary[id] = float64(i)
		} else {
			bary[id] = sum / float64(n)
		}
	}
	slices.SortStableFunc(row, func(a, b string) int {
		return cmp.Compare(bary[a], bary[b])
	})
}

// countCrossings counts crossings between consecutive ranks. Edges that
// skip ranks are ignored.
func countCrossings(orders [][]string, children map[string][]string) int {
	total := 0
	for r := 0; r+1 < len(orders); r++ {
		total += layerCrossings(orders[r], orders[r+1], children)
	}
	return total
}

func layerCrossings(upper, lower []string, children map[string][]string) int {
	lowerPos := make(map[string]int, len(lower))
	for i, id := range lower {
		lowerPos[id] = i
	}
	type edge struct{ u, l int }
	var edges []edge
	for i, id := range upper {
		for _, c := range children[id] {
			if p, ok := lowerPos[c]; ok {
				edges = append(edges, edge{i, p})
			}
		}
	}
	crossings := 0
	for i := range edges {
		for j := i + 1; j < len(edges); j++ {
			a, b := edges[i], edges[j]
			if (a.u < b.u && a.l > b.l) || (a.u > b.u && a.l < b.l) {
				crossings++
			}
		}
	}
	return crossings
}

func cloneOrders(orders [][]string) [][]string {
	out := make([][]string, len(orders))
	for i, row := range orders {
		out[i] = slices.Clone(row)
	}
	return out
}
