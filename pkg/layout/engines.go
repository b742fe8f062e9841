package layout

import (
	"context"

	"github.com/matzehuels/ontoflow/pkg/graph"
	"github.com/matzehuels/ontoflow/pkg/layout/force"
	"github.com/matzehuels/ontoflow/pkg/layout/graphviz"
	"github.com/matzehuels/ontoflow/pkg/layout/hierarchical"
	"github.com/matzehuels/ontoflow/pkg/layout/radial"
	"github.com/matzehuels/ontoflow/pkg/layout/route"
)

// typedEngine adapts an engine function over a typed params struct P.
type typedEngine[P any] struct {
	defaults func() P
	run      func(ctx context.Context, req Request, p P) (Result, error)
}

func (e typedEngine[P]) Defaults() Params {
	return EncodeParams(e.defaults())
}

// Check decodes p over the defaults and runs the params' own Validate.
func (e typedEngine[P]) Check(p Params) error {
	typed := e.defaults()
	if err := DecodeParams(p, &typed); err != nil {
		return err
	}
	if v, ok := any(typed).(interface{ Validate() error }); ok {
		return v.Validate()
	}
	return nil
}

func (e typedEngine[P]) Apply(ctx context.Context, req Request) (Result, error) {
	p := e.defaults()
	if err := DecodeParams(req.Params, &p); err != nil {
		return Result{}, err
	}
	return e.run(ctx, req, p)
}

// NewEngine builds an Engine from a defaults constructor and a function
// over the decoded params. It is the usual way to register a custom
// algorithm.
func NewEngine[P any](defaults func() P, run func(ctx context.Context, req Request, p P) (Result, error)) Engine {
	return typedEngine[P]{defaults: defaults, run: run}
}

// ForceEngine returns the force-directed engine.
func ForceEngine() Engine {
	return NewEngine(force.DefaultParams, func(ctx context.Context, req Request, p force.Params) (Result, error) {
		nodes, _, err := force.Layout(ctx, req.Nodes, req.Edges, p, req.Pinned)
		if err != nil {
			return Result{}, err
		}
		return Result{Nodes: nodes, Edges: graph.CloneEdges(req.Edges)}, nil
	})
}

// HierarchicalEngine returns the ranked engine.
func HierarchicalEngine() Engine {
	return NewEngine(hierarchical.DefaultParams, func(ctx context.Context, req Request, p hierarchical.Params) (Result, error) {
		nodes, err := hierarchical.Layout(ctx, req.Nodes, req.Edges, p, req.Pinned)
		if err != nil {
			return Result{}, err
		}
		return Result{Nodes: nodes, Edges: graph.CloneEdges(req.Edges)}, nil
	})
}

// RadialEngine returns the radial-tree engine.
func RadialEngine() Engine {
	return NewEngine(radial.DefaultParams, func(ctx context.Context, req Request, p radial.Params) (Result, error) {
		nodes, err := radial.Layout(ctx, req.Nodes, req.Edges, p, req.Pinned)
		if err != nil {
			return Result{}, err
		}
		return Result{Nodes: nodes, Edges: graph.CloneEdges(req.Edges)}, nil
	})
}

// RoutingEngine returns the edge router. Node positions pass through.
func RoutingEngine() Engine {
	return NewEngine(route.DefaultParams, func(ctx context.Context, req Request, p route.Params) (Result, error) {
		routes, err := route.Routes(ctx, req.Nodes, req.Edges, p)
		if err != nil {
			return Result{}, err
		}
		return Result{
			Nodes:  graph.CloneNodes(req.Nodes),
			Edges:  graph.CloneEdges(req.Edges),
			Routes: routes,
		}, nil
	})
}

// GraphvizEngine returns the external layered engine. A nil render uses
// the embedded Graphviz library.
func GraphvizEngine(render graphviz.Renderer) Engine {
	l := graphviz.New()
	if render != nil {
		l.Render = render
	}
	return NewEngine(graphviz.DefaultParams, func(ctx context.Context, req Request, p graphviz.Params) (Result, error) {
		nodes, routes, err := l.Layout(ctx, req.Nodes, req.Edges, p, req.Pinned)
		if err != nil {
			return Result{}, err
		}
		return Result{Nodes: nodes, Edges: graph.CloneEdges(req.Edges), Routes: routes}, nil
	})
}
