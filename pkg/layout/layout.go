package layout

import (
	"context"
	"maps"
	"slices"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	"github.com/matzehuels/ontoflow/pkg/errors"
	"github.com/matzehuels/ontoflow/pkg/graph"
)

// Algorithm names a layout engine.
type Algorithm string

const (
	Force        Algorithm = "force"
	Hierarchical Algorithm = "hierarchical"
	Radial       Algorithm = "radial"
	EdgeRouting  Algorithm = "edge-routing"
	ELK          Algorithm = "elk"
)

// DefaultAlgorithm is used when a Config names none.
const DefaultAlgorithm = Force

// Algorithms returns the built-in algorithms in declaration order.
func Algorithms() []Algorithm {
	return []Algorithm{Force, Hierarchical, Radial, EdgeRouting, ELK}
}

// ParseAlgorithm normalises s. It does not check that an engine exists.
func ParseAlgorithm(s string) Algorithm {
	return Algorithm(strings.ToLower(strings.TrimSpace(s)))
}

// IsBuiltin reports whether s names one of [Algorithms] after
// normalisation.
func IsBuiltin(s string) bool {
	return slices.Contains(Algorithms(), ParseAlgorithm(s))
}

// AlgorithmNames returns [Algorithms] as strings.
func AlgorithmNames() []string {
	algs := Algorithms()
	out := make([]string, len(algs))
	for i, a := range algs {
		out[i] = string(a)
	}
	return out
}

// Params is a loosely typed parameter object keyed by parameter name.
type Params map[string]any

// Config selects an algorithm and its (partial) parameters.
type Config struct {
	Algorithm Algorithm `json:"algorithm" toml:"algorithm"`
	Params    Params    `json:"params,omitempty" toml:"params"`
}

// Request is the input to an Engine.
type Request struct {
	Nodes  []graph.Node
	Edges  []graph.Edge
	Params Params
	// Pinned nodes keep their incoming position.
	Pinned map[string]bool
}

// Result is the output of an Engine. Routes maps edge ids to paths and is
// only set by engines that route edges.
type Result struct {
	Nodes  []graph.Node                `json:"nodes"`
	Edges  []graph.Edge                `json:"edges"`
	Routes map[string][]graph.Position `json:"routes,omitempty"`
}

// Engine computes a layout.
type Engine interface {
	// Defaults returns a fresh copy of the engine's default parameters.
	Defaults() Params
	Apply(ctx context.Context, req Request) (Result, error)
}

// Merge returns defaults overlaid with partial. The merge is shallow and
// partial wins; neither input is modified.
func Merge(defaults, partial Params) Params {
	out := make(Params, len(defaults)+len(partial))
	maps.Copy(out, defaults)
	maps.Copy(out, partial)
	return out
}

// Keys returns the parameter names in sorted order.
func (p Params) Keys() []string {
	return slices.Sorted(maps.Keys(p))
}

// DecodeParams decodes p onto out, which must be a pointer to a struct
// with mapstructure tags. Fields missing from p keep their current value.
func DecodeParams(p Params, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "params decoder")
	}
	if err := dec.Decode(map[string]any(p)); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidParams, err, "invalid layout parameters")
	}
	return nil
}

// EncodeParams converts a tagged params struct to a Params map.
func EncodeParams(in any) Params {
	out := Params{}
	if err := mapstructure.Decode(in, &out); err != nil {
		return Params{}
	}
	return out
}
