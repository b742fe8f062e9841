// Package route computes edge paths that avoid node boxes.
//
// Node positions are fixed inputs. Each node occupies a box of
// NodeWidth x NodeHeight centred on its position, grown by
// ObstaclePadding on every side. An edge whose straight segment clears
// every box other than its own endpoints is routed directly; otherwise
// waypoints around the nearest blocking box are inserted and the path is
// checked again, for a bounded number of rounds.
//
// Edges are routed concurrently; the result does not depend on scheduling.
package route

import (
	"cmp"
	"context"
	"math"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/ontoflow/pkg/errors"
	"github.com/matzehuels/ontoflow/pkg/graph"
)

const (
	// maxRounds bounds detour insertion per edge.
	maxRounds = 8
	// clearance is added beyond the padded box when placing a detour.
	clearance = 1.0
	// maxSmoothingRounds is the number of Chaikin rounds at smoothing 1.
	maxSmoothingRounds = 3
)

// Params configures routing.
type Params struct {
	ObstaclePadding float64 `mapstructure:"obstaclePadding"`
	// PathSmoothing in [0,1]: 0 keeps the polyline, higher values round
	// corners with more Chaikin passes.
	PathSmoothing float64 `mapstructure:"pathSmoothing"`
	NodeWidth     float64 `mapstructure:"nodeWidth"`
	NodeHeight    float64 `mapstructure:"nodeHeight"`
}

// DefaultParams returns the default parameters.
func DefaultParams() Params {
	return Params{ObstaclePadding: 10, NodeWidth: 150, NodeHeight: 50}
}

// Validate checks that sizes are non-negative.
func (p Params) Validate() error {
	if p.ObstaclePadding < 0 || p.NodeWidth < 0 || p.NodeHeight < 0 || p.PathSmoothing < 0 {
		return errors.New(errors.ErrCodeInvalidParams, "obstaclePadding, pathSmoothing, nodeWidth and nodeHeight must be >= 0")
	}
	return nil
}

// Box is an axis-aligned rectangle.
type Box struct {
	MinX, MinY, MaxX, MaxY float64
}

// Center returns the midpoint of b.
func (b Box) Center() graph.Position {
	return graph.Position{X: (b.MinX + b.MaxX) / 2, Y: (b.MinY + b.MaxY) / 2}
}

type obstacle struct {
	id  string
	box Box
}

// Routes computes a path for every edge whose endpoints exist. Paths start
// at the source position and end at the target position. Nodes without a
// position are treated as sitting at the origin.
func Routes(ctx context.Context, nodes []graph.Node, edges []graph.Edge, p Params) (map[string][]graph.Position, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	pos := make(map[string]graph.Position, len(nodes))
	obstacles := make([]obstacle, 0, len(nodes))
	for _, n := range nodes {
		if _, dup := pos[n.ID]; dup {
			continue
		}
		c := n.PositionOr(graph.Origin)
		pos[n.ID] = c
		hw, hh := p.NodeWidth/2+p.ObstaclePadding, p.NodeHeight/2+p.ObstaclePadding
		obstacles = append(obstacles, obstacle{
			id:  n.ID,
			box: Box{MinX: c.X - hw, MinY: c.Y - hh, MaxX: c.X + hw, MaxY: c.Y + hh},
		})
	}

	paths := make([][]graph.Position, len(edges))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, e := range edges {
		src, ok1 := pos[e.Source]
		tgt, ok2 := pos[e.Target]
		if !ok1 || !ok2 {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			path := route(src, tgt, e.Source, e.Target, obstacles)
			paths[i] = Smooth(path, p.PathSmoothing)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string][]graph.Position, len(edges))
	for i, e := range edges {
		if paths[i] != nil {
			out[e.ID] = paths[i]
		}
	}
	return out, nil
}

func route(src, tgt graph.Position, srcID, tgtID string, obstacles []obstacle) []graph.Position {
	path := []graph.Position{src, tgt}
	for round := 0; round < maxRounds; round++ {
		changed := false
		for i := 0; i+1 < len(path); i++ {
			a, b := path[i], path[i+1]
			blocker, ok := nearestBlocker(a, b, srcID, tgtID, obstacles)
			if !ok {
				continue
			}
			wps := detour(a, b, blocker)
			if len(wps) == 0 {
				continue
			}
			path = slices.Insert(path, i+1, wps...)
			changed = true
			break
		}
		if !changed {
			break
		}
	}
	return path
}

// nearestBlocker returns the box hit by segment a-b closest to a, ignoring
// the edge's own endpoints.
func nearestBlocker(a, b graph.Position, srcID, tgtID string, obstacles []obstacle) (Box, bool) {
	var (
		best  Box
		bestT = math.Inf(1)
		found bool
	)
	for _, o := range obstacles {
		if o.id == srcID || o.id == tgtID {
			continue
		}
		if t, hit := SegmentHits(a, b, o.box); hit && t < bestT {
			best, bestT, found = o.box, t, true
		}
	}
	return best, found
}

// detour returns waypoints that lead around box on the side of segment
// a-b away from the box centre. A box centred exactly on the segment falls
// back to the segment's left normal. Waypoints are the box corners on that
// side, pushed out by clearance and ordered along the segment.
func detour(a, b graph.Position, box Box) []graph.Position {
	d := b.Sub(a)
	length2 := d.X*d.X + d.Y*d.Y
	if length2 == 0 {
		return nil
	}
	n := graph.Position{X: -d.Y, Y: d.X}

	c := box.Center()
	t := ((c.X-a.X)*d.X + (c.Y-a.Y)*d.Y) / length2
	closest := a.Add(d.Scale(t))
	if (closest.X-c.X)*n.X+(closest.Y-c.Y)*n.Y < 0 {
		n = n.Scale(-1)
	}

	corners := []graph.Position{
		{X: box.MinX - clearance, Y: box.MinY - clearance},
		{X: box.MaxX + clearance, Y: box.MinY - clearance},
		{X: box.MaxX + clearance, Y: box.MaxY + clearance},
		{X: box.MinX - clearance, Y: box.MaxY + clearance},
	}
	var side []graph.Position
	for _, k := range corners {
		if (k.X-c.X)*n.X+(k.Y-c.Y)*n.Y >= 0 {
			side = append(side, k)
		}
	}
	slices.SortFunc(side, func(p, q graph.Position) int {
		return cmp.Compare(p.X*d.X+p.Y*d.Y, q.X*d.X+q.Y*d.Y)
	})
	return side
}

// SegmentHits reports whether segment a-b intersects box, and the segment
// parameter in [0,1] at which it enters.
func SegmentHits(a, b graph.Position, box Box) (float64, bool) {
	t0, t1 := 0.0, 1.0
	dx, dy := b.X-a.X, b.Y-a.Y
	clip := func(p, q float64) bool {
		if p == 0 {
			return q >= 0
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return false
			}
			t0 = max(t0, r)
		} else {
			if r < t0 {
				return false
			}
			t1 = min(t1, r)
		}
		return true
	}
	if clip(-dx, a.X-box.MinX) && clip(dx, box.MaxX-a.X) &&
		clip(-dy, a.Y-box.MinY) && clip(dy, box.MaxY-a.Y) {
		return t0, true
	}
	return 0, false
}

// Smooth applies Chaikin corner cutting to path. Endpoints are kept; a
// factor of 0, or a path without corners, is returned unchanged.
func Smooth(path []graph.Position, factor float64) []graph.Position {
	rounds := int(math.Ceil(min(factor, 1) * maxSmoothingRounds))
	if rounds <= 0 || len(path) < 3 {
		return path
	}
	for r := 0; r < rounds; r++ {
		next := make([]graph.Position, 0, 2*len(path))
		next = append(next, path[0])
		for i := 0; i+1 < len(path); i++ {
			p, q := path[i], path[i+1]
			if i > 0 {
				next = append(next, p.Scale(0.75).Add(q.Scale(0.25)))
			}
			if i+2 < len(path) {
				next = append(next, p.Scale(0.25).Add(q.Scale(0.75)))
			}
		}
		next = append(next, path[len(path)-1])
		path = next
	}
	return path
}
