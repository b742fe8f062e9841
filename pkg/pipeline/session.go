package pipeline

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/ontoflow/pkg/errors"
	"github.com/matzehuels/ontoflow/pkg/graph"
	"github.com/matzehuels/ontoflow/pkg/layout"
	"github.com/matzehuels/ontoflow/pkg/observability"
	"github.com/matzehuels/ontoflow/pkg/ontology"
	"github.com/matzehuels/ontoflow/pkg/render/flow"
	"github.com/matzehuels/ontoflow/pkg/topology"
)

// Frame is the outcome of one user action.
type Frame struct {
	// Revision identifies the frame; every action yields a new one.
	Revision string `json:"revision"`
	// Graph is the full render-sink frame.
	Graph flow.Graph `json:"graph"`
	// Patch turns the previous frame into Graph.
	Patch flow.Patch `json:"patch"`
	// Visible lists the visible node ids, sorted.
	Visible []string `json:"visible"`
	// Affected lists the nodes that were laid out again, sorted.
	Affected []string `json:"affected"`
}

// SessionOptions configures NewSession.
type SessionOptions struct {
	// Ontology supplies topology vocabulary and edge styles. Nil uses the
	// built-in rules and styles.
	Ontology *ontology.Ontology
	// Store supplies the layout algorithm and parameters. Nil uses a store
	// with the default algorithm and the document's layout overrides
	// applied (see [LayoutOverrides]).
	Store *layout.Store
	// Runner runs layouts. Nil uses an uncached runner.
	Runner *Runner
	Logger *log.Logger
	// Toggles is the initial toggle state; it is cloned. Every pair must
	// be legal.
	Toggles *topology.Toggles
}

// Session holds the interactive state for one flow graph: toggles, drag
// overrides and the last frame. It is not safe for concurrent use.
type Session struct {
	id      string
	nodes   []graph.Node
	edges   []graph.Edge
	types   map[string]string
	rules   topology.Rules
	toggles *topology.Toggles
	dragged topology.Set
	pos     map[string]graph.Position
	routes  map[string][]graph.Position
	store   *layout.Store
	runner  *Runner
	builder *flow.Builder
	logger  *log.Logger
	view    topology.View
	frame   *Frame
}

// NewSession resolves the initial view of g and lays it out. Nodes with a
// declared position keep it.
func NewSession(ctx context.Context, g graph.Graph, opts SessionOptions) (*Session, error) {
	s := &Session{
		id:      uuid.NewString(),
		nodes:   graph.CloneNodes(g.Nodes),
		edges:   graph.CloneEdges(g.Edges),
		types:   graph.NodeTypes(g.Nodes),
		rules:   topology.RulesFromOntology(opts.Ontology),
		toggles: topology.NewToggles(),
		dragged: topology.NewSet(),
		pos:     graph.Positions(g.Nodes),
		store:   opts.Store,
		runner:  opts.Runner,
		builder: flow.NewBuilder(),
		logger:  opts.Logger,
	}
	if opts.Toggles != nil {
		for _, p := range opts.Toggles.Pairs() {
			if err := s.checkPair(p.Anchor, p.Dependent); err != nil {
				return nil, err
			}
		}
		s.toggles = opts.Toggles.Clone()
	}
	if opts.Ontology != nil {
		s.builder = s.builder.
			WithStyles(opts.Ontology.EdgeStyles()).
			WithLabels(opts.Ontology.EdgeLabels())
	}
	if s.logger == nil {
		s.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if s.runner == nil {
		s.runner = NewRunner(nil, nil, s.logger)
	}
	if s.store == nil {
		store, err := layout.NewStore(s.runner.dispatcher(), "")
		if err != nil {
			return nil, err
		}
		if err := ApplyLayoutOverrides(store, LayoutOverrides(g, opts.Ontology)); err != nil {
			return nil, err
		}
		s.store = store
	}

	s.view = s.rules.Resolve(s.nodes, s.edges, s.toggles)
	visible := s.view.VisibleNodes(s.nodes)
	affected := topology.NewSet()
	pinned := make(map[string]bool)
	for _, n := range visible {
		if _, ok := s.pos[n.ID]; ok {
			pinned[n.ID] = true
		} else {
			affected.Add(n.ID)
		}
	}
	if err := s.layout(ctx, affected, pinned); err != nil {
		return nil, err
	}
	s.frame = s.emit(affected)
	s.logger.Debug("session started",
		"session", s.id,
		"nodes", len(s.nodes),
		"visible", s.view.Visible.Len(),
		"algorithm", s.store.Algorithm())
	return s, nil
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Frame returns the current frame.
func (s *Session) Frame() *Frame { return s.frame }

// View returns the current visible view.
func (s *Session) View() topology.View { return s.view }

// Store returns the layout store used by the session.
func (s *Session) Store() *layout.Store { return s.store }

// IsOn reports whether the pair is toggled on.
func (s *Session) IsOn(anchor, dependent string) bool {
	return s.toggles.IsOn(anchor, dependent)
}

// Toggles returns the pairs that are on, sorted.
func (s *Session) Toggles() []topology.Pair {
	return s.toggles.Pairs()
}

// Available returns the pairs declared by the graph's anchor-link edges.
func (s *Session) Available() []topology.Pair {
	return s.rules.AvailableToggles(s.nodes, s.edges)
}

// Dragged returns the ids of manually placed nodes, sorted.
func (s *Session) Dragged() []string {
	return s.dragged.Sorted()
}

// Toggle flips the (anchor, dependent) pair and recomputes the frame.
// Nodes whose visibility changed are laid out again, together with their
// cascade dependents; dragged nodes never move.
func (s *Session) Toggle(ctx context.Context, anchor, dependent string) (*Frame, error) {
	if err := s.checkPair(anchor, dependent); err != nil {
		return nil, err
	}

	ctx, span := observability.StartToggleSpan(ctx, anchor, dependent)
	defer span.End()

	on := s.toggles.Toggle(anchor, dependent)
	observability.Topology().OnToggle(ctx, anchor, dependent, on)

	before := s.view
	s.view = s.rules.Resolve(s.nodes, s.edges, s.toggles)
	changed := topology.ChangedEdges(before.Edges, s.view.Edges)

	visible := s.view.VisibleNodes(s.nodes)
	affected := s.rules.NodesRequiringRecalculation(changed, visible, s.view.Edges, s.dragged)
	for _, n := range visible {
		_, placed := s.pos[n.ID]
		if !placed && !s.dragged.Has(n.ID) {
			affected.Add(n.ID)
		}
	}
	for id := range affected {
		if !s.view.Visible.Has(id) {
			affected.Remove(id)
		}
	}

	if err := s.layout(ctx, affected, s.pinnedExcept(affected)); err != nil {
		// Keep state consistent with the last frame.
		s.toggles.Toggle(anchor, dependent)
		s.view = before
		observability.RecordError(span, err)
		return nil, err
	}

	s.frame = s.emit(affected)
	observability.RecordTopologyResult(span, s.view.Visible.Len(), len(s.view.Edges), affected.Len())
	observability.Topology().OnResolve(ctx, s.view.Visible.Len(), len(s.view.Edges), affected.Len())
	s.logger.Info("toggled",
		"anchor", anchor,
		"dependent", dependent,
		"on", on,
		"refs", s.toggles.RefCount(dependent),
		"visible", s.view.Visible.Len(),
		"affected", affected.Len())
	return s.frame, nil
}

// Drag places a node manually. The node is pinned from now on, and its
// visible cascade dependents that react to a moved parent are laid out
// again. A failed layout leaves the node where and as it was.
func (s *Session) Drag(ctx context.Context, id string, p graph.Position) (*Frame, error) {
	if _, ok := s.types[id]; !ok {
		return nil, errors.New(errors.ErrCodeUnknownNode, "unknown node %q", id)
	}
	wasDragged := s.dragged.Has(id)
	prev, hadPos := s.pos[id]
	s.dragged.Add(id)
	s.pos[id] = p

	visible := s.view.VisibleNodes(s.nodes)
	deps := s.rules.BuildDependencyMap(visible, s.view.Edges)
	affected := topology.NewSet()
	for dep := range topology.CascadeClosure(deps, []string{id}, s.dragged) {
		if s.rules.ShouldRecalculatePosition(dep, s.types[dep], topology.EventParentMoved, s.dragged) {
			affected.Add(dep)
		}
	}

	if err := s.layout(ctx, affected, s.pinnedExcept(affected)); err != nil {
		if !wasDragged {
			s.dragged.Remove(id)
		}
		if hadPos {
			s.pos[id] = prev
		} else {
			delete(s.pos, id)
		}
		return nil, err
	}
	s.frame = s.emit(affected)
	return s.frame, nil
}

// ClearDrag releases manual placement for ids, or for every node when ids
// is empty. Positions are kept until the next layout touches the nodes.
func (s *Session) ClearDrag(ids ...string) {
	if len(ids) == 0 {
		s.dragged = topology.NewSet()
		return
	}
	for _, id := range ids {
		s.dragged.Remove(id)
	}
}

// Relayout lays out every visible node that is not dragged.
func (s *Session) Relayout(ctx context.Context) (*Frame, error) {
	affected := topology.NewSet()
	for _, n := range s.view.VisibleNodes(s.nodes) {
		if !s.dragged.Has(n.ID) {
			affected.Add(n.ID)
		}
	}
	if err := s.layout(ctx, affected, s.pinnedExcept(affected)); err != nil {
		return nil, err
	}
	s.frame = s.emit(affected)
	return s.frame, nil
}

func (s *Session) checkPair(anchor, dependent string) error {
	at, ok := s.types[anchor]
	if !ok {
		return errors.New(errors.ErrCodeUnknownNode, "unknown anchor node %q", anchor)
	}
	dt, ok := s.types[dependent]
	if !ok {
		return errors.New(errors.ErrCodeUnknownNode, "unknown dependent node %q", dependent)
	}
	if !s.rules.IsAnchor(at) || !s.rules.IsDependent(dt) || !s.rules.IsEdgeAllowed(at, dt, s.linkType(anchor, dependent)) {
		return errors.New(errors.ErrCodeInvalidInput, "%s %q cannot anchor %s %q", at, anchor, dt, dependent)
	}
	return nil
}

// linkType returns the declared anchor-link type for the pair, or
// linked-to.
func (s *Session) linkType(anchor, dependent string) string {
	for _, e := range s.edges {
		if e.Source == anchor && e.Target == dependent && s.rules.AnchorLink.Match(e.Type) {
			return e.Type
		}
	}
	return graph.EdgeLinkedTo
}

// pinnedExcept pins every visible, placed node outside affected.
func (s *Session) pinnedExcept(affected topology.Set) map[string]bool {
	pinned := make(map[string]bool)
	for id := range s.view.Visible {
		if _, ok := s.pos[id]; ok && !affected.Has(id) {
			pinned[id] = true
		}
	}
	return pinned
}

// layout runs the selected engine over the visible view and records new
// positions for affected nodes only.
func (s *Session) layout(ctx context.Context, affected topology.Set, pinned map[string]bool) error {
	cfg := s.store.Config()
	if affected.Len() == 0 && cfg.Algorithm != layout.EdgeRouting {
		return nil
	}

	visible := s.view.VisibleNodes(s.nodes)
	input := make([]graph.Node, len(visible))
	for i, n := range visible {
		n = n.Clone()
		if p, ok := s.pos[n.ID]; ok {
			n = n.WithPosition(p)
		} else {
			n.Position = nil
		}
		input[i] = n
	}

	start := time.Now()
	res, hit, err := s.runner.LayoutWithCacheInfo(ctx, input, s.view.Edges, cfg, pinned)
	if err != nil {
		return err
	}
	for _, n := range res.Nodes {
		if affected.Has(n.ID) && n.Position != nil {
			s.pos[n.ID] = *n.Position
		}
	}
	// Routes from a partial layout would not match the pinned positions,
	// except for the router, which never moves nodes.
	if cfg.Algorithm == layout.EdgeRouting || len(pinned) == 0 {
		s.routes = res.Routes
	} else {
		s.routes = nil
	}
	s.logger.Debug("laid out",
		"algorithm", cfg.Algorithm,
		"affected", affected.Len(),
		"cached", hit,
		"duration", time.Since(start))
	return nil
}

// emit builds the frame for the current view and diffs it against the
// previous one.
func (s *Session) emit(affected topology.Set) *Frame {
	visible := s.view.VisibleNodes(s.nodes)
	positions := make(map[string]graph.Position, len(visible))
	for _, n := range visible {
		positions[n.ID] = s.pos[n.ID]
	}
	g := s.builder.WithRoutes(s.routes).Graph(visible, s.view.Edges, positions)

	var prev flow.Graph
	if s.frame != nil {
		prev = s.frame.Graph
	}
	return &Frame{
		Revision: uuid.NewString(),
		Graph:    g,
		Patch:    flow.Diff(prev, g),
		Visible:  s.view.Visible.Sorted(),
		Affected: affected.Sorted(),
	}
}
