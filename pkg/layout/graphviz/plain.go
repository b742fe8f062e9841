package graphviz

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/ontoflow/pkg/graph"
)

// Plain is a parsed "plain" layout, already converted to points with y
// growing downwards.
type Plain struct {
	Width, Height float64
	Nodes         map[string]graph.Position
	Edges         []PlainEdge
}

// PlainEdge is one edge line: its endpoints and spline control points.
type PlainEdge struct {
	Tail, Head string
	Points     []graph.Position
}

// ParsePlain parses Graphviz plain output.
//
//	graph scale width height
//	node name x y width height label style shape color fillcolor
//	edge tail head n x1 y1 ... xn yn [label xl yl] style color
//	stop
func ParsePlain(data []byte) (*Plain, error) {
	p := &Plain{Nodes: make(map[string]graph.Position)}
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	scale := 1.0
	lineNo := 0
	for sc.Scan() {
		lineNo++
		f, err := fields(sc.Text())
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if len(f) == 0 {
			continue
		}
		switch f[0] {
		case "graph":
			v, err := floats(f[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			scale, p.Width, p.Height = v[0], v[1]*v[0]*pointsPerInch, v[2]*v[0]*pointsPerInch
		case "node":
			if len(f) < 4 {
				return nil, fmt.Errorf("line %d: short node line", lineNo)
			}
			v, err := floats(f[2:], 2)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			p.Nodes[f[1]] = p.point(v[0], v[1], scale)
		case "edge":
			if len(f) < 4 {
				return nil, fmt.Errorf("line %d: short edge line", lineNo)
			}
			n, err := strconv.Atoi(f[3])
			if err != nil || n < 0 || len(f) < 4+2*n {
				return nil, fmt.Errorf("line %d: bad point count %q", lineNo, f[3])
			}
			v, err := floats(f[4:], 2*n)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			pts := make([]graph.Position, n)
			for i := range n {
				pts[i] = p.point(v[2*i], v[2*i+1], scale)
			}
			p.Edges = append(p.Edges, PlainEdge{Tail: f[1], Head: f[2], Points: pts})
		case "stop":
			return p, nil
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Plain) point(x, y, scale float64) graph.Position {
	return graph.Position{X: x * scale * pointsPerInch, Y: p.Height - y*scale*pointsPerInch}
}

func floats(f []string, n int) ([]float64, error) {
	if len(f) < n {
		return nil, fmt.Errorf("want %d numbers, got %d", n, len(f))
	}
	out := make([]float64, n)
	for i := range n {
		v, err := strconv.ParseFloat(f[i], 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// fields splits a plain line on spaces, keeping double-quoted tokens
// together and unescaping \" and \\ inside them.
func fields(line string) ([]string, error) {
	var (
		out []string
		cur strings.Builder
		inQ bool
		has bool
	)
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case inQ && c == '\\' && i+1 < len(line):
			i++
			cur.WriteByte(line[i])
		case c == '"':
			inQ = !inQ
			has = true
		case !inQ && (c == ' ' || c == '\t'):
			if has {
				out = append(out, cur.String())
				cur.Reset()
				has = false
			}
		default:
			cur.WriteByte(c)
			has = true
		}
	}
	if inQ {
		return nil, fmt.Errorf("unterminated quote")
	}
	if has {
		out = append(out, cur.String())
	}
	return out, nil
}
