// Package cli implements the ontoflow command-line interface.
//
// The CLI is a thin local shell around the pipeline: it loads a flow
// document and its ontology, applies toggles, lays the visible graph out
// and writes render-sink JSON or Graphviz output.
//
// # Commands
//
//   - validate: Check a flow document against an ontology
//   - layout: Write the laid-out render-sink frame as JSON
//   - toggle: Apply toggles step by step, or pick them interactively (-i)
//   - render: Generate SVG or DOT node-link diagrams
//   - cache: Manage the layout and artifact cache
//
// # Configuration
//
// Settings are read from a TOML file (--config, default
// ~/.config/ontoflow/config.toml when present). Flags override the file.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger
// is also attached to the command context.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/ontoflow/pkg/buildinfo"
	"github.com/matzehuels/ontoflow/pkg/cache"
	"github.com/matzehuels/ontoflow/pkg/config"
	"github.com/matzehuels/ontoflow/pkg/observability"
	"github.com/matzehuels/ontoflow/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "ontoflow"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config *config.Config

	configPath   string
	verbose      bool
	otlpEndpoint string
	tracer       *observability.TracerProvider
}

// New creates a new CLI instance with a default logger and configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:               appName,
		Short:             "Ontoflow lays out ontology-typed flow graphs",
		Long:              `Ontoflow validates flow graphs against an ontology, toggles mental models on and off per phase, and lays the visible graph out incrementally.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.shutdown(cmd.Context())
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	flags.StringVar(&c.otlpEndpoint, "otlp-endpoint", "", "export traces to this OTLP gRPC endpoint")

	root.AddCommand(c.validateCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.toggleCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup loads the configuration and applies global flags on top of it.
func (c *CLI) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.otlpEndpoint != "" {
		cfg.Tracing.OTLPEndpoint = c.otlpEndpoint
	}
	c.Config = cfg

	level := cfg.LogLevel()
	if c.verbose {
		level = log.DebugLevel
	}
	c.SetLogLevel(level)

	tp, err := observability.InitTracing(cmd.Context(), cfg.TracingOptions())
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	c.tracer = tp

	cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	c.Logger.Debug("configuration loaded",
		"algorithm", cfg.Layout.Algorithm,
		"cache", cfg.Cache.Backend,
		"tracing", tp.Enabled())
	return nil
}

func (c *CLI) shutdown(ctx context.Context) error {
	if c.tracer == nil {
		return nil
	}
	return c.tracer.Shutdown(ctx)
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	ttl, err := c.Config.CacheTTL()
	if err != nil {
		return nil, fmt.Errorf("cache ttl: %w", err)
	}
	runner := pipeline.NewRunner(c.openCache(ctx, noCache), nil, c.Logger)
	runner.TTL = ttl
	return runner, nil
}

// openCache opens the configured backend. An unreachable backend degrades
// to no caching.
func (c *CLI) openCache(ctx context.Context, noCache bool) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}
	cc, err := cache.Open(ctx, c.Config.CacheOptions())
	if err != nil {
		c.Logger.Warn("cache unavailable, continuing without it",
			"backend", c.Config.Cache.Backend,
			"error", err)
		return cache.NewNullCache()
	}
	return cc
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the file cache directory: the configured one, or the
// per-user default (~/.cache/ontoflow).
func (c *CLI) cacheDir() (string, error) {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return cache.DefaultDir()
}
