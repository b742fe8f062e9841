// Package render groups the output stages of ontoflow.
//
//   - [flow]: builds the node and edge records consumed by an interactive
//     canvas renderer, and diffs successive frames into partial updates
//   - [nodelink]: exports a built frame as Graphviz DOT and renders it to
//     SVG for static documentation
//
// Both stages are pure with respect to their inputs. Positions come from
// the layout packages; this package never computes them.
package render
