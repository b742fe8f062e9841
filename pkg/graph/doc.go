// Package graph defines the domain model shared by every ontoflow package:
// ontology-typed nodes and edges, positions, and the flow document that
// carries them.
//
// # Core Types
//
//   - [Node]: a typed vertex (phase, sub-phase, component, mental-model,
//     visualization, or any type the ontology declares)
//   - [Edge]: a directed, typed relationship between two node ids
//   - [Position]: a 2D coordinate in layout space
//   - [Graph]: an ordered collection of nodes and edges
//   - [Index]: read-only adjacency lookups over a node/edge snapshot
//
// Identity is always the id. The containing collection enforces
// uniqueness; ids are never regenerated.
//
// # Flow Documents
//
// Flow documents are YAML:
//
//	nodes:
//	  - id: discover
//	    type: phase
//	    name: Discover
//	  - id: jobs-to-be-done
//	    type: mental-model
//	    name: Jobs To Be Done
//	edges:
//	  - {id: e1, source: discover, target: jobs-to-be-done, type: linked-to}
//
// [ParseFlow] returns either a complete [Graph] or every violation found.
// Callers never receive partially valid data:
//
//	res := graph.ParseFlow(data)
//	if !res.OK() {
//	    for _, msg := range res.Errors {
//	        fmt.Println(msg)
//	    }
//	}
//
// # Serialization
//
// Graphs round-trip through JSON with [WriteGraph]/[ReadGraph] and their
// file variants. Output preserves input order.
//
// # Concurrency
//
// Values are plain data. Functions in this package never mutate their
// arguments; [Graph.Clone] produces an independent deep copy.
package graph
