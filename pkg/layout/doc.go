// Package layout is the single entry point for positioning a graph.
//
// A [Config] names an [Algorithm] and carries a partial [Params] map. The
// [Dispatcher] looks the algorithm up, merges the caller's params over the
// engine defaults (caller wins), decodes the result into the engine's
// typed parameters and runs it:
//
//	res, err := layout.Apply(ctx, nodes, edges, layout.Config{
//	    Algorithm: layout.Force,
//	    Params:    layout.Params{"repulsion": -500},
//	})
//	if errors.Is(err, errors.ErrCodeUnknownAlgorithm) {
//	    // ...
//	}
//
// # Engines
//
//   - force: force-directed simulation ([force.Layout])
//   - hierarchical: ranked layers ([hierarchical.Layout])
//   - radial: concentric rings around a centre node ([radial.Layout])
//   - edge-routing: keeps positions and routes edges around node boxes ([route.Routes])
//   - elk: external layered engine backed by Graphviz ([graphviz.Layouter])
//
// Every engine is called the same way and returns new collections; inputs
// are never modified.
//
// # Parameters
//
// Params are decoded weakly typed, so "-100" and -100 both set a numeric
// parameter. Keys an engine does not know are ignored. A value that cannot
// be converted is an INVALID_PARAMS error.
//
// # Store
//
// [Store] holds the algorithm selection and per-algorithm parameter
// overrides for an interactive session. It is safe for concurrent use.
package layout
