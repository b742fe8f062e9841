package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/ontoflow/pkg/graph"
	"github.com/matzehuels/ontoflow/pkg/render/flow"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed includes the node type and properties in labels.
	Detailed bool
	// Positioned pins nodes at their frame positions.
	Positioned bool
}

// pointsPerInch converts layout points to Graphviz inches.
const pointsPerInch = 72.0

var typeFill = map[string]string{
	graph.TypePhase:         "#dbeafe",
	graph.TypeSubPhase:      "#e0e7ff",
	graph.TypeComponent:     "#fef3c7",
	graph.TypeMentalModel:   "#ede9fe",
	graph.TypeVisualization: "#d1fae5",
}

// ToDOT converts a frame to Graphviz DOT source.
func ToDOT(g flow.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	if opts.Positioned {
		buf.WriteString("  layout=neato;\n")
		buf.WriteString("  splines=true;\n")
	} else {
		buf.WriteString("  rankdir=TB;\n")
		buf.WriteString("  ranksep=0.5;\n")
		buf.WriteString("  nodesep=0.3;\n")
	}
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontsize=10];\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes {
		attrs := nodeAttrs(n, opts)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.Source, e.Target, strings.Join(edgeAttrs(e), ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n flow.Node, detailed bool) string {
	if !detailed {
		return n.Data.Label
	}
	parts := []string{"type: " + n.Type}
	for _, k := range slices.Sorted(maps.Keys(n.Data.Properties)) {
		parts = append(parts, fmt.Sprintf("%s: %v", k, n.Data.Properties[k]))
	}
	return n.Data.Label + "\n" + strings.Join(parts, "\n")
}

func nodeAttrs(n flow.Node, opts Options) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, opts.Detailed))}
	if fill, ok := typeFill[n.Type]; ok {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", fill))
	}
	if opts.Positioned {
		// Graphviz y grows upward.
		attrs = append(attrs, fmt.Sprintf("pos=\"%s,%s!\"",
			fmtFloat(n.Position.X/pointsPerInch), fmtFloat(-n.Position.Y/pointsPerInch)))
	}
	return attrs
}

func edgeAttrs(e flow.Edge) []string {
	attrs := []string{fmt.Sprintf("label=%q", e.Label)}
	if e.Style.Stroke != "" {
		attrs = append(attrs, fmt.Sprintf("color=%q", e.Style.Stroke))
	}
	if e.Style.StrokeWidth > 0 {
		attrs = append(attrs, "penwidth="+fmtFloat(e.Style.StrokeWidth))
	}
	if e.Style.StrokeDasharray != "" {
		attrs = append(attrs, "style=dashed")
	}
	if e.Animated {
		attrs = append(attrs, "arrowhead=vee")
	}
	return attrs
}

func fmtFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
