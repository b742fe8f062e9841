// Package force implements a force-directed layout: pairwise charge
// (repulsion), springs along edges and a weak pull toward the origin,
// integrated with velocity damping and a cooling schedule.
//
// The simulation is deterministic. Initial placement is a phyllotaxis
// spiral in input order (nodes that already have a position start there),
// and coincident nodes are separated by jitter drawn from a seeded source.
// It always stops after at most Params.Iterations ticks, and earlier when
// the total displacement of a tick drops below Params.Threshold.
package force

import (
	"context"
	"math"
	"math/rand/v2"

	"github.com/matzehuels/ontoflow/pkg/errors"
	"github.com/matzehuels/ontoflow/pkg/graph"
)

// MaxIterations caps Params.Iterations regardless of input.
const MaxIterations = 5000

const (
	alphaMin      = 0.001
	velocityDecay = 0.6
	minDistance2  = 1.0
	jitterScale   = 1e-6
	initialRadius = 10.0
	cancelEvery   = 16

	// Convergence is not checked during the first warmupTicks ticks;
	// jitter-separated nodes barely move at first.
	warmupTicks = 10
)

var goldenAngle = math.Pi * (3 - math.Sqrt(5))

// Params configures the simulation.
type Params struct {
	// Repulsion is the charge strength; negative values repel.
	Repulsion float64 `mapstructure:"repulsion"`
	// Attraction is the spring constant along edges.
	Attraction float64 `mapstructure:"attraction"`
	// LinkDistance is the spring rest length.
	LinkDistance float64 `mapstructure:"linkDistance"`
	// CenterGravity pulls every node toward the origin.
	CenterGravity float64 `mapstructure:"centerGravity"`
	// Iterations is the maximum number of ticks.
	Iterations int `mapstructure:"iterations"`
	// Threshold stops the run once a tick moves nodes less than this in total.
	Threshold float64 `mapstructure:"threshold"`
	// Seed drives the jitter used to separate coincident nodes.
	Seed int64 `mapstructure:"seed"`
}

// DefaultParams returns the default simulation parameters.
func DefaultParams() Params {
	return Params{
		Repulsion:     -300,
		Attraction:    0.1,
		LinkDistance:  80,
		CenterGravity: 0.05,
		Iterations:    300,
		Threshold:     0.01,
		Seed:          42,
	}
}

// Validate checks parameter ranges.
func (p Params) Validate() error {
	if p.Iterations < 0 {
		return errors.New(errors.ErrCodeInvalidParams, "iterations must be >= 0, got %d", p.Iterations)
	}
	if p.Attraction < 0 || p.CenterGravity < 0 || p.LinkDistance < 0 || p.Threshold < 0 {
		return errors.New(errors.ErrCodeInvalidParams, "attraction, linkDistance, centerGravity and threshold must be >= 0")
	}
	return nil
}

// Stats describes a finished run.
type Stats struct {
	Iterations   int
	Converged    bool
	Displacement float64
}

type link struct{ s, t int }

type sim struct {
	p      Params
	x, y   []float64
	vx, vy []float64
	fixed  []bool
	links  []link
	rng    *rand.Rand
	alpha  float64
	decay  float64
	n      int
}

// Layout runs the simulation and returns positioned copies of nodes.
// Pinned nodes keep their incoming position (or their initial placement
// when they have none) but still exert forces on the others.
func Layout(ctx context.Context, nodes []graph.Node, edges []graph.Edge, p Params, pinned map[string]bool) ([]graph.Node, Stats, error) {
	if err := p.Validate(); err != nil {
		return nil, Stats{}, err
	}
	iterations := min(p.Iterations, MaxIterations)

	s := newSim(nodes, edges, p, pinned, iterations)
	var st Stats
	for st.Iterations < iterations {
		if st.Iterations%cancelEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, st, err
			}
		}
		st.Displacement = s.tick()
		st.Iterations++
		if st.Iterations >= warmupTicks && st.Displacement < p.Threshold {
			st.Converged = true
			break
		}
	}

	out := make([]graph.Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone().WithPosition(graph.Position{X: s.x[i], Y: s.y[i]})
	}
	return out, st, nil
}

func newSim(nodes []graph.Node, edges []graph.Edge, p Params, pinned map[string]bool, iterations int) *sim {
	n := len(nodes)
	s := &sim{
		p:     p,
		x:     make([]float64, n),
		y:     make([]float64, n),
		vx:    make([]float64, n),
		vy:    make([]float64, n),
		fixed: make([]bool, n),
		rng:   rand.New(rand.NewPCG(uint64(p.Seed), uint64(p.Seed)^0x9e3779b97f4a7c15)),
		alpha: 1,
		n:     n,
	}
	if iterations > 0 {
		s.decay = 1 - math.Pow(alphaMin, 1/float64(iterations))
	}

	index := make(map[string]int, n)
	for i, node := range nodes {
		if _, dup := index[node.ID]; !dup {
			index[node.ID] = i
		}
		if node.Position != nil {
			s.x[i], s.y[i] = node.Position.X, node.Position.Y
		} else {
			r := initialRadius * math.Sqrt(0.5+float64(i))
			a := float64(i) * goldenAngle
			s.x[i], s.y[i] = r*math.Cos(a), r*math.Sin(a)
		}
		s.fixed[i] = pinned[node.ID]
	}

	seen := make(map[link]bool, len(edges))
	for _, e := range edges {
		si, ok1 := index[e.Source]
		ti, ok2 := index[e.Target]
		if !ok1 || !ok2 || si == ti {
			continue
		}
		l := link{min(si, ti), max(si, ti)}
		if seen[l] {
			continue
		}
		seen[l] = true
		s.links = append(s.links, l)
	}
	return s
}

func (s *sim) jitter() float64 {
	return (s.rng.Float64() - 0.5) * jitterScale
}

// tick advances the simulation one step and returns the total displacement.
func (s *sim) tick() float64 {
	s.alpha += (0 - s.alpha) * s.decay
	a := s.alpha

	for _, l := range s.links {
		dx := s.x[l.t] - s.x[l.s]
		dy := s.y[l.t] - s.y[l.s]
		if dx == 0 {
			dx = s.jitter()
		}
		if dy == 0 {
			dy = s.jitter()
		}
		d := math.Sqrt(dx*dx + dy*dy)
		f := (d - s.p.LinkDistance) / d * a * s.p.Attraction
		dx, dy = dx*f*0.5, dy*f*0.5
		s.vx[l.t] -= dx
		s.vy[l.t] -= dy
		s.vx[l.s] += dx
		s.vy[l.s] += dy
	}

	for i := 0; i < s.n; i++ {
		for j := i + 1; j < s.n; j++ {
			dx := s.x[j] - s.x[i]
			dy := s.y[j] - s.y[i]
			if dx == 0 {
				dx = s.jitter()
			}
			if dy == 0 {
				dy = s.jitter()
			}
			d2 := max(dx*dx+dy*dy, minDistance2)
			w := s.p.Repulsion * a / d2
			s.vx[i] += dx * w
			s.vy[i] += dy * w
			s.vx[j] -= dx * w
			s.vy[j] -= dy * w
		}
	}

	total := 0.0
	for i := 0; i < s.n; i++ {
		if s.fixed[i] {
			s.vx[i], s.vy[i] = 0, 0
			continue
		}
		s.vx[i] -= s.x[i] * s.p.CenterGravity * a
		s.vy[i] -= s.y[i] * s.p.CenterGravity * a
		s.vx[i] *= velocityDecay
		s.vy[i] *= velocityDecay
		s.x[i] += s.vx[i]
		s.y[i] += s.vy[i]
		total += math.Hypot(s.vx[i], s.vy[i])
	}
	return total
}
