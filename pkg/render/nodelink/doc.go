// Package nodelink renders a built flow frame as a static node-link
// diagram using Graphviz.
//
// # Usage
//
// Convert a frame to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(frame, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Options
//
// The [Options] struct controls diagram generation:
//
//   - Detailed: node labels include the node type and properties
//   - Positioned: nodes are pinned at their layout coordinates and
//     Graphviz only routes edges (neato with pinned positions); otherwise
//     Graphviz dot computes its own layered layout
//
// Edge colour, width and dash pattern follow the frame's edge styles, so
// the static output matches what an interactive canvas would draw.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering; no Graphviz installation is required.
package nodelink
