package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/ontoflow/pkg/cache"
	"github.com/matzehuels/ontoflow/pkg/graph"
	"github.com/matzehuels/ontoflow/pkg/layout"
	"github.com/matzehuels/ontoflow/pkg/observability"
	"github.com/matzehuels/ontoflow/pkg/render/flow"
	"github.com/matzehuels/ontoflow/pkg/render/nodelink"
)

// Runner runs layouts and renders through a cache.
//
// The Runner is stateless except for its collaborators, so one Runner can
// serve many sessions and goroutines.
type Runner struct {
	Cache      cache.Cache
	Keyer      cache.Keyer
	Logger     *log.Logger
	Dispatcher *layout.Dispatcher
	// TTL applies to every cache write; zero uses the cache package defaults.
	TTL time.Duration
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// uses cache.DefaultKeyer and a nil logger discards output.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Runner{
		Cache:      c,
		Keyer:      keyer,
		Logger:     logger,
		Dispatcher: layout.Default(),
	}
}

// LayoutWithCacheInfo lays out nodes and edges, returning whether the
// result came from the cache. Cache failures are logged and fall through
// to computing the layout.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, nodes []graph.Node, edges []graph.Edge, cfg layout.Config, pinned map[string]bool) (layout.Result, bool, error) {
	if cfg.Algorithm == "" {
		cfg.Algorithm = layout.DefaultAlgorithm
	}
	key, keyErr := r.layoutKey(nodes, edges, cfg, pinned)
	if keyErr != nil {
		r.Logger.Debug("layout not cacheable", "error", keyErr)
	}

	if keyErr == nil {
		if data, hit, err := r.Cache.Get(ctx, key); err != nil {
			r.Logger.Warn("cache read failed", "error", err)
		} else if hit {
			var cached layout.Result
			if err := json.Unmarshal(data, &cached); err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				r.Logger.Debug("layout cache hit", "algorithm", cfg.Algorithm)
				return cached, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	start := time.Now()
	res, err := r.dispatcher().ApplyPinned(ctx, nodes, edges, cfg, pinned)
	if err != nil {
		return layout.Result{}, false, err
	}
	r.Logger.Info("computed layout",
		"algorithm", cfg.Algorithm,
		"nodes", len(nodes),
		"edges", len(edges),
		"pinned", len(pinned),
		"duration", time.Since(start))

	if keyErr == nil {
		if data, err := json.Marshal(res); err == nil {
			if err := r.Cache.Set(ctx, key, data, r.ttl(cache.TTLLayout)); err != nil {
				r.Logger.Warn("cache write failed", "error", err)
			} else {
				observability.Cache().OnCacheSet(ctx, "layout", len(data))
			}
		}
	}
	return res, false, nil
}

// Layout is LayoutWithCacheInfo without the cache hit flag.
func (r *Runner) Layout(ctx context.Context, nodes []graph.Node, edges []graph.Edge, cfg layout.Config, pinned map[string]bool) (layout.Result, error) {
	res, _, err := r.LayoutWithCacheInfo(ctx, nodes, edges, cfg, pinned)
	return res, err
}

// RenderOptions configures Render.
type RenderOptions struct {
	Format   string
	Detailed bool
	// Positioned keeps the frame's positions instead of letting Graphviz
	// lay the diagram out again.
	Positioned bool
}

// RenderWithCacheInfo renders frame in opts.Format, returning whether the
// artifact came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, frame flow.Graph, opts RenderOptions) ([]byte, bool, error) {
	if opts.Format == "" {
		opts.Format = FormatSVG
	}
	if err := ValidateFormat(opts.Format); err != nil {
		return nil, false, err
	}

	frameData, err := json.Marshal(frame)
	if err != nil {
		return nil, false, fmt.Errorf("serialize frame for cache key: %w", err)
	}
	key := r.Keyer.ArtifactKey(cache.Hash(frameData), cache.ArtifactKeyOpts{
		Format:   opts.Format + positionedSuffix(opts.Positioned),
		Detailed: opts.Detailed,
	})
	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, "artifact")
		return data, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")

	var out []byte
	switch opts.Format {
	case FormatJSON:
		out, err = json.MarshalIndent(frame, "", "  ")
	case FormatDOT:
		out = []byte(nodelink.ToDOT(frame, nodelink.Options{Detailed: opts.Detailed, Positioned: opts.Positioned}))
	case FormatSVG:
		dot := nodelink.ToDOT(frame, nodelink.Options{Detailed: opts.Detailed, Positioned: opts.Positioned})
		out, err = nodelink.RenderSVG(ctx, dot)
	}
	if err != nil {
		return nil, false, fmt.Errorf("render %s: %w", opts.Format, err)
	}

	if err := r.Cache.Set(ctx, key, out, r.ttl(cache.TTLArtifact)); err == nil {
		observability.Cache().OnCacheSet(ctx, "artifact", len(out))
	}
	return out, false, nil
}

// Render is RenderWithCacheInfo without the cache hit flag.
func (r *Runner) Render(ctx context.Context, frame flow.Graph, opts RenderOptions) ([]byte, error) {
	out, _, err := r.RenderWithCacheInfo(ctx, frame, opts)
	return out, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) dispatcher() *layout.Dispatcher {
	if r.Dispatcher == nil {
		return layout.Default()
	}
	return r.Dispatcher
}

func (r *Runner) ttl(def time.Duration) time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return def
}

func (r *Runner) layoutKey(nodes []graph.Node, edges []graph.Edge, cfg layout.Config, pinned map[string]bool) (string, error) {
	graphHash, err := cache.HashJSON(graph.Graph{Nodes: nodes, Edges: edges})
	if err != nil {
		return "", err
	}
	var ids []string
	for id, ok := range pinned {
		if ok {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	// Params go through JSON so keys are stable regardless of value types.
	if _, err := json.Marshal(cfg.Params); err != nil {
		return "", err
	}
	return r.Keyer.LayoutKey(graphHash, cache.LayoutKeyOpts{
		Algorithm: string(cfg.Algorithm),
		Params:    cfg.Params,
		Pinned:    ids,
	}), nil
}

func positionedSuffix(positioned bool) string {
	if positioned {
		return "+pos"
	}
	return ""
}
