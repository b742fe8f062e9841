// Package flow converts domain nodes and edges into the record shape an
// interactive graph canvas consumes:
//
//	{"id", "type", "position": {"x", "y"}, "data": {...}}
//	{"id", "source", "target", "label", "style", "animated"}
//
// Edge styling is deterministic: each relationship type maps to a fixed
// stroke style, and [Builder.WithStyles] lets an ontology override it.
// Labels default to the type id; [Builder.WithLabels] supplies names.
// Records are keyed by id so that [Diff] can express a new frame as a
// partial replacement of the previous one.
package flow
