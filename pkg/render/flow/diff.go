package flow

import (
	"reflect"
	"slices"
)

// Patch is a partial replacement of a frame. Removed entries carry ids
// only; added and changed entries carry full records in the new frame's
// order.
type Patch struct {
	AddedNodes   []Node   `json:"addedNodes,omitempty"`
	ChangedNodes []Node   `json:"changedNodes,omitempty"`
	RemovedNodes []string `json:"removedNodes,omitempty"`
	AddedEdges   []Edge   `json:"addedEdges,omitempty"`
	ChangedEdges []Edge   `json:"changedEdges,omitempty"`
	RemovedEdges []string `json:"removedEdges,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return len(p.AddedNodes)+len(p.ChangedNodes)+len(p.RemovedNodes)+
		len(p.AddedEdges)+len(p.ChangedEdges)+len(p.RemovedEdges) == 0
}

// Diff computes the patch turning prev into next, keyed by record id.
func Diff(prev, next Graph) Patch {
	var p Patch

	oldNodes := make(map[string]Node, len(prev.Nodes))
	for _, n := range prev.Nodes {
		oldNodes[n.ID] = n
	}
	seen := make(map[string]bool, len(next.Nodes))
	for _, n := range next.Nodes {
		seen[n.ID] = true
		old, ok := oldNodes[n.ID]
		switch {
		case !ok:
			p.AddedNodes = append(p.AddedNodes, n)
		case !reflect.DeepEqual(old, n):
			p.ChangedNodes = append(p.ChangedNodes, n)
		}
	}
	for _, n := range prev.Nodes {
		if !seen[n.ID] {
			p.RemovedNodes = append(p.RemovedNodes, n.ID)
		}
	}

	oldEdges := make(map[string]Edge, len(prev.Edges))
	for _, e := range prev.Edges {
		oldEdges[e.ID] = e
	}
	clear(seen)
	for _, e := range next.Edges {
		seen[e.ID] = true
		old, ok := oldEdges[e.ID]
		switch {
		case !ok:
			p.AddedEdges = append(p.AddedEdges, e)
		case !reflect.DeepEqual(old, e):
			p.ChangedEdges = append(p.ChangedEdges, e)
		}
	}
	for _, e := range prev.Edges {
		if !seen[e.ID] {
			p.RemovedEdges = append(p.RemovedEdges, e.ID)
		}
	}
	return p
}

// Apply returns prev with p applied. Changed records replace their
// predecessors in place; added records are appended.
func Apply(prev Graph, p Patch) Graph {
	changedN := make(map[string]Node, len(p.ChangedNodes))
	for _, n := range p.ChangedNodes {
		changedN[n.ID] = n
	}
	out := Graph{}
	for _, n := range prev.Nodes {
		if slices.Contains(p.RemovedNodes, n.ID) {
			continue
		}
		if c, ok := changedN[n.ID]; ok {
			n = c
		}
		out.Nodes = append(out.Nodes, n)
	}
	out.Nodes = append(out.Nodes, p.AddedNodes...)

	changedE := make(map[string]Edge, len(p.ChangedEdges))
	for _, e := range p.ChangedEdges {
		changedE[e.ID] = e
	}
	for _, e := range prev.Edges {
		if slices.Contains(p.RemovedEdges, e.ID) {
			continue
		}
		if c, ok := changedE[e.ID]; ok {
			e = c
		}
		out.Edges = append(out.Edges, e)
	}
	out.Edges = append(out.Edges, p.AddedEdges...)
	return out
}
