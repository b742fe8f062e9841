package graph

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// WriteGraph encodes g as indented JSON to w. Node and edge order is
// preserved so the output can be re-read with [ReadGraph] unchanged.
func WriteGraph(g Graph, w io.Writer) error {
	if g.Nodes == nil {
		g.Nodes = []Node{}
	}
	if g.Edges == nil {
		g.Edges = []Edge{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(g); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportGraph writes g to a JSON file at path.
func ExportGraph(g Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteGraph(g, f)
}

// ReadGraph decodes a JSON graph from r.
//
// The input must be an object with "nodes" and "edges" arrays in the shape
// written by [WriteGraph]. Structural checks are the same as [ParseFlow];
// the first violation is returned as a SCHEMA_VIOLATION error carrying the
// full list.
//
// ReadGraph does not close r.
func ReadGraph(r io.Reader) (Graph, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Graph{}, fmt.Errorf("read: %w", err)
	}
	var probe Graph
	if err := json.Unmarshal(data, &probe); err != nil {
		return Graph{}, fmt.Errorf("decode: %w", err)
	}
	// JSON is a subset of YAML, so the flow checks apply unchanged.
	res := ParseFlow(data)
	if err := res.Err(); err != nil {
		return Graph{}, err
	}
	return *res.Graph, nil
}

// ImportGraph reads a JSON graph from the file at path.
func ImportGraph(path string) (Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return Graph{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadGraph(f)
}
