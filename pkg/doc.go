// Package pkg provides the core libraries for ontoflow.
//
// # Overview
//
// Ontoflow shows a product-design flow as an interactive graph. Phases are
// always on screen; mental models appear when a phase toggles them on, and
// visualizations follow the mental models they belong to. Every toggle
// recomputes the visible graph, decides which nodes need new positions and
// lays only those out again, so the rest of the canvas stays put.
//
// # Architecture
//
// The data flow for one user action:
//
//	Flow YAML + Ontology YAML
//	         ↓
//	    [graph] + [ontology] (parse, validate)
//	         ↓
//	    [topology] (toggles → visible nodes and edges → affected nodes)
//	         ↓
//	    [layout] (dispatch to force, hierarchical, radial, edge routing or Graphviz)
//	         ↓
//	    [render/flow] (render-sink records and frame patches)
//	         ↓
//	    JSON frame, or DOT/SVG via [render/nodelink]
//
// [pipeline] strings these stages together in a Session and caches layouts
// through [cache].
//
// # Quick Start
//
//	res, _ := graph.LoadFlow("flow.yaml")
//	if err := res.Err(); err != nil {
//	    return err
//	}
//	sess, err := pipeline.NewSession(ctx, *res.Graph, pipeline.SessionOptions{
//	    Ontology: ontology.Default(),
//	})
//	if err != nil {
//	    return err
//	}
//	frame, err := sess.Toggle(ctx, "discover", "jobs-to-be-done")
//
// # Main Packages
//
// ## Domain
//
// [graph] - Typed nodes and edges, positions and the flow document format.
//
// [ontology] - Node and edge type vocabulary, the built-in product-design
// ontology, and validation of flows against it.
//
// [topology] - Toggle state with reference counts, visibility resolution,
// cascades and the rules that decide which nodes move.
//
// ## Layout
//
// [layout] - Algorithm registry, parameter defaults and overrides, and the
// dispatcher. Engines live in subpackages: force, hierarchical, radial,
// route and graphviz.
//
// ## Output
//
// [render/flow] - Render-sink records with edge styles, and frame diffs.
//
// [render/nodelink] - Graphviz DOT export and SVG rendering.
//
// ## Infrastructure
//
// [pipeline] - Session and cached Runner used by the CLI.
//
// [cache] - Layout and artifact cache with file, Redis and no-op backends.
//
// [config] - TOML configuration file.
//
// [observability] - Hook registry and OpenTelemetry tracing.
//
// [errors] - Coded errors shared by every package.
//
// # Testing
//
//	go test ./pkg/...            # All tests
//	go test ./pkg/topology/...   # Specific package
//	go test -run Example ./...   # Examples only
//
// [graph]: https://pkg.go.dev/github.com/matzehuels/ontoflow/pkg/graph
// [ontology]: https://pkg.go.dev/github.com/matzehuels/ontoflow/pkg/ontology
// [topology]: https://pkg.go.dev/github.com/matzehuels/ontoflow/pkg/topology
// [layout]: https://pkg.go.dev/github.com/matzehuels/ontoflow/pkg/layout
// [render/flow]: https://pkg.go.dev/github.com/matzehuels/ontoflow/pkg/render/flow
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/ontoflow/pkg/render/nodelink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/ontoflow/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/ontoflow/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/ontoflow/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/ontoflow/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/ontoflow/pkg/errors
package pkg
