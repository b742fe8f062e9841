// Package topology is the rule engine that decides which nodes of a flow
// graph are visible, what a deletion cascades to, and which nodes need a
// fresh layout after the edge set changes.
//
// Every function is pure: results depend only on the arguments, nothing
// is cached, and inputs are never modified. Callers own all state, in
// particular the [Toggles] relation and the set of user-dragged nodes.
//
// # Anchors and Dependents
//
// Anchor nodes (phases) switch dependent nodes (mental models) on and off.
// A toggle pair (anchor, dependent) means "this anchor wants this
// dependent visible". Several anchors may hold the same dependent; it
// stays visible while any pair referencing it remains ("any" mode).
// Anchor-link edges (linked-to, mental-phase-*) exist in the rendered
// graph exactly when their pair is on.
//
// Visualizations hang off mental models through cascade edges
// (visualizes) and are visible only while their mental model is.
//
// # Rules
//
// The vocabulary lives in [Rules]. Package-level functions use
// [DefaultRules]; [RulesFromOntology] derives anchor and cascade types
// from an ontology. Unknown node types are never visible, never cascade
// and never recalculate.
//
// # Resolving a View
//
//	toggles := topology.NewToggles()
//	toggles.Toggle("discover", "jtbd")
//	view := topology.DefaultRules().Resolve(nodes, edges, toggles)
//	// view.Visible, view.Edges
package topology
