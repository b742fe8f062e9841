package layout

import (
	"context"
	stderrors "errors"
	"sort"
	"sync"
	"time"

	"github.com/matzehuels/ontoflow/pkg/errors"
	"github.com/matzehuels/ontoflow/pkg/graph"
	"github.com/matzehuels/ontoflow/pkg/observability"
)

// Dispatcher maps algorithms to engines.
type Dispatcher struct {
	mu      sync.RWMutex
	engines map[Algorithm]Engine
}

// NewDispatcher returns a dispatcher with the built-in engines registered.
func NewDispatcher() *Dispatcher {
	d := &Dispatcher{engines: make(map[Algorithm]Engine)}
	d.Register(Force, ForceEngine())
	d.Register(Hierarchical, HierarchicalEngine())
	d.Register(Radial, RadialEngine())
	d.Register(EdgeRouting, RoutingEngine())
	d.Register(ELK, GraphvizEngine(nil))
	return d
}

// Register adds or replaces the engine for alg.
func (d *Dispatcher) Register(alg Algorithm, e Engine) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.engines[alg] = e
}

// Engine returns the engine for alg, or an UNKNOWN_ALGORITHM error.
func (d *Dispatcher) Engine(alg Algorithm) (Engine, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	e, ok := d.engines[alg]
	if !ok {
		return nil, errors.New(errors.ErrCodeUnknownAlgorithm, "unknown layout algorithm %q", alg)
	}
	return e, nil
}

// Algorithms returns the registered algorithms, sorted.
func (d *Dispatcher) Algorithms() []Algorithm {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Algorithm, 0, len(d.engines))
	for a := range d.engines {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Defaults returns the default parameters of alg.
func (d *Dispatcher) Defaults(alg Algorithm) (Params, error) {
	e, err := d.Engine(alg)
	if err != nil {
		return nil, err
	}
	return e.Defaults(), nil
}

// Apply lays out nodes and edges with cfg. An empty algorithm selects
// DefaultAlgorithm.
func (d *Dispatcher) Apply(ctx context.Context, nodes []graph.Node, edges []graph.Edge, cfg Config) (Result, error) {
	return d.ApplyPinned(ctx, nodes, edges, cfg, nil)
}

// ApplyPinned is Apply with a set of nodes that keep their position.
func (d *Dispatcher) ApplyPinned(ctx context.Context, nodes []graph.Node, edges []graph.Edge, cfg Config, pinned map[string]bool) (Result, error) {
	alg := cfg.Algorithm
	if alg == "" {
		alg = DefaultAlgorithm
	}
	e, err := d.Engine(alg)
	if err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, errors.Wrap(errors.ErrCodeCancelled, err, "layout %s", alg)
	}

	ctx, span := observability.StartLayoutSpan(ctx, string(alg), len(nodes), len(edges))
	defer span.End()
	hooks := observability.Layout()
	hooks.OnLayoutStart(ctx, string(alg), len(nodes))
	start := time.Now()

	res, err := e.Apply(ctx, Request{
		Nodes:  nodes,
		Edges:  edges,
		Params: Merge(e.Defaults(), cfg.Params),
		Pinned: pinned,
	})
	if err != nil && (stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded)) {
		err = errors.Wrap(errors.ErrCodeCancelled, err, "layout %s", alg)
	}

	dur := time.Since(start)
	hooks.OnLayoutComplete(ctx, string(alg), dur, err)
	if err != nil {
		observability.RecordError(span, err)
		return Result{}, err
	}
	observability.RecordLayoutResult(span, len(res.Routes), dur)
	return res, nil
}

var defaultDispatcher = sync.OnceValue(NewDispatcher)

// Default returns the shared dispatcher used by the package-level Apply.
func Default() *Dispatcher {
	return defaultDispatcher()
}

// Apply runs cfg on the default dispatcher.
func Apply(ctx context.Context, nodes []graph.Node, edges []graph.Edge, cfg Config) (Result, error) {
	return Default().Apply(ctx, nodes, edges, cfg)
}
