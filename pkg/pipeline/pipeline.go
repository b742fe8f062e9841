// Package pipeline connects toggles, topology, layout and the render sink.
//
// A [Session] is the interactive shell around one flow graph: it owns the
// toggle state and the manual drag overrides, and turns every user action
// into a new [Frame] in one serialised step:
//
//  1. Update toggle or drag state
//  2. Resolve the visible view ([topology.Rules.Resolve])
//  3. Work out which nodes need new positions
//  4. Lay those nodes out with the selected algorithm, pinning the rest
//  5. Build the render-sink frame and diff it against the previous one
//
// A [Runner] wraps the layout dispatcher with a result cache and renders
// frames to DOT or SVG. Runners are safe for concurrent use; sessions are
// not.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	sess, err := pipeline.NewSession(ctx, g, pipeline.SessionOptions{Runner: runner})
//	if err != nil {
//	    return err
//	}
//	frame, err := sess.Toggle(ctx, "discover", "jobs-to-be-done")
//	// frame.Patch holds the partial replacement for the renderer.
package pipeline

import (
	"slices"
	"strings"

	"github.com/matzehuels/ontoflow/pkg/errors"
)

// Output formats accepted by Runner.Render.
const (
	FormatSVG  = "svg"
	FormatDOT  = "dot"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatDOT:  true,
	FormatJSON: true,
}

// ValidateFormat checks that a format is supported.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid format: %q (must be one of: %s)", format, strings.Join(Formats(), ", "))
	}
	return nil
}

// Formats returns the supported formats, sorted.
func Formats() []string {
	out := make([]string, 0, len(ValidFormats))
	for f := range ValidFormats {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}
