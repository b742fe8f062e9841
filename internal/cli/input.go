package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/ontoflow/pkg/errors"
	"github.com/matzehuels/ontoflow/pkg/graph"
	"github.com/matzehuels/ontoflow/pkg/layout"
	"github.com/matzehuels/ontoflow/pkg/ontology"
	"github.com/matzehuels/ontoflow/pkg/pipeline"
	"github.com/matzehuels/ontoflow/pkg/topology"
)

// =============================================================================
// Flow Input
// =============================================================================

// flowInput is a parsed flow document with the ontology it was checked
// against.
type flowInput struct {
	Path     string
	Graph    graph.Graph
	Ontology *ontology.Ontology
}

// loadOntology reads path, or returns the built-in ontology when path is
// empty.
func loadOntology(path string) (*ontology.Ontology, error) {
	if path == "" {
		return ontology.Default(), nil
	}
	return ontology.LoadFile(path)
}

// loadFlow parses the flow document at path and validates it against the
// ontology. Every violation is reported in the returned error.
func loadFlow(path, ontologyPath string) (*flowInput, error) {
	ont, err := loadOntology(ontologyPath)
	if err != nil {
		return nil, fmt.Errorf("load ontology: %w", err)
	}
	res, err := graph.LoadFlow(path)
	if err != nil {
		return nil, err
	}
	if !res.OK() {
		return nil, res.Err()
	}
	if vr := ontology.Validate(*res.Graph, ont); !vr.Valid {
		return nil, errors.NewList(errors.ErrCodeSchemaViolation, vr.Errors)
	}
	return &flowInput{Path: path, Graph: *res.Graph, Ontology: ont}, nil
}

// =============================================================================
// Flag Parsing
// =============================================================================

// parsePairs parses "anchor:dependent" toggle flags in order.
func parsePairs(values []string) ([]topology.Pair, error) {
	pairs := make([]topology.Pair, 0, len(values))
	for _, v := range values {
		anchor, dependent, ok := strings.Cut(v, ":")
		anchor, dependent = strings.TrimSpace(anchor), strings.TrimSpace(dependent)
		if !ok || anchor == "" || dependent == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "invalid toggle %q (want anchor:dependent)", v)
		}
		pairs = append(pairs, topology.Pair{Anchor: anchor, Dependent: dependent})
	}
	return pairs, nil
}

// parseParams parses "key=value" parameter flags. Values that look like
// integers, floats or booleans are typed accordingly.
func parseParams(values []string) (layout.Params, error) {
	if len(values) == 0 {
		return nil, nil
	}
	out := make(layout.Params, len(values))
	for _, v := range values {
		key, raw, ok := strings.Cut(v, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, errors.New(errors.ErrCodeInvalidParams, "invalid parameter %q (want key=value)", v)
		}
		out[key] = parseValue(strings.TrimSpace(raw))
	}
	return out, nil
}

func parseValue(s string) any {
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}

// =============================================================================
// Session Setup
// =============================================================================

// layoutFlags are the flags shared by commands that lay a flow out.
type layoutFlags struct {
	ontology  string
	algorithm string
	params    []string
	toggles   []string
	noCache   bool
}

// store builds the layout store. Flags win over the document's layout
// overrides, which win over the configuration.
func (c *CLI) store(f layoutFlags, in *flowInput) (*layout.Store, error) {
	s, err := c.Config.LayoutStore(layout.Default())
	if err != nil {
		return nil, err
	}
	overrides := pipeline.LayoutOverrides(in.Graph, in.Ontology)
	if err := pipeline.ApplyLayoutOverrides(s, overrides); err != nil {
		return nil, err
	}
	c.Logger.Debug("document layout overrides", "count", len(overrides))
	if f.algorithm != "" {
		if err := s.SetAlgorithm(layout.ParseAlgorithm(f.algorithm)); err != nil {
			return nil, err
		}
	}
	params, err := parseParams(f.params)
	if err != nil {
		return nil, err
	}
	if params != nil {
		if err := s.SetParams(s.Algorithm(), params); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// openSession loads the flow and starts a session with the flagged toggles
// already applied.
func (c *CLI) openSession(ctx context.Context, path string, f layoutFlags, runner *pipeline.Runner) (*pipeline.Session, *flowInput, error) {
	in, err := loadFlow(path, f.ontology)
	if len(errors.Violations(err)) > 0 {
		return nil, nil, reportViolations(path, err)
	}
	if err != nil {
		return nil, nil, err
	}
	pairs, err := parsePairs(f.toggles)
	if err != nil {
		return nil, nil, err
	}
	store, err := c.store(f, in)
	if err != nil {
		return nil, nil, err
	}

	toggles := topology.NewToggles()
	for _, p := range pairs {
		toggles.Set(p.Anchor, p.Dependent, true)
	}
	sess, err := pipeline.NewSession(ctx, in.Graph, pipeline.SessionOptions{
		Ontology: in.Ontology,
		Store:    store,
		Runner:   runner,
		Logger:   c.Logger,
		Toggles:  toggles,
	})
	if err != nil {
		return nil, nil, err
	}
	return sess, in, nil
}
