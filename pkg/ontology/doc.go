// Package ontology loads the type registry that flow graphs are checked
// against, and validates nodes and edges for conformance.
//
// An ontology declares node types (with required properties and optional
// layout defaults) and edge types (with allowed source and target node
// types and a visual style):
//
//	nodeTypes:
//	  - id: phase
//	    name: Phase
//	    properties:
//	      - {name: order, type: number, required: true}
//	edgeTypes:
//	  - id: linked-to
//	    name: Linked To
//	    sourceTypes: [phase]
//	    targetTypes: [mental-model]
//	    style: {stroke: "#8b5cf6", strokeWidth: 2, dash: "5,5"}
//
// # Validation
//
// Validators never fail fast. [ValidateNodeType], [ValidateEdgeType] and
// the flow-level aggregates return a [Result] carrying every violation as
// a human-readable string, so a shell can display all problems at once.
// A malformed node or edge never prevents checking the rest.
//
// # Lifecycle
//
// A [Registry] holds the session's ontology. It is constructed and passed
// explicitly; there is no package-level cached ontology.
package ontology
