// Package config loads ontoflow's TOML configuration.
//
// The file lives at $XDG_CONFIG_HOME/ontoflow/config.toml (or
// ~/.config/ontoflow/config.toml) unless --config names another path.
// Missing sections and keys keep their defaults:
//
//	[layout]
//	algorithm = "hierarchical"
//
//	[layout.params.force]
//	repulsion = -500
//
//	[cache]
//	backend = "file"       # file, redis or none
//	dir = ""               # default: user cache dir
//	redis_addr = "localhost:6379"
//	redis_db = 0
//	ttl = "168h"
//
//	[log]
//	level = "info"
//
//	[tracing]
//	otlp_endpoint = ""     # empty disables export
//	sample_rate = 1.0
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/ontoflow/pkg/buildinfo"
	"github.com/matzehuels/ontoflow/pkg/cache"
	oferrors "github.com/matzehuels/ontoflow/pkg/errors"
	"github.com/matzehuels/ontoflow/pkg/layout"
	"github.com/matzehuels/ontoflow/pkg/observability"
)

// Config is the root of the configuration file.
type Config struct {
	Layout  LayoutConfig  `toml:"layout"`
	Cache   CacheConfig   `toml:"cache"`
	Log     LogConfig     `toml:"log"`
	Tracing TracingConfig `toml:"tracing"`
}

// LayoutConfig selects the default algorithm and per-algorithm parameter
// overrides.
type LayoutConfig struct {
	Algorithm string                    `toml:"algorithm"`
	Params    map[string]map[string]any `toml:"params"`
}

// CacheConfig selects the layout cache backend.
type CacheConfig struct {
	Backend   string `toml:"backend"`
	Dir       string `toml:"dir"`
	RedisAddr string `toml:"redis_addr"`
	RedisDB   int    `toml:"redis_db"`
	TTL       string `toml:"ttl"`
}

// LogConfig controls CLI logging.
type LogConfig struct {
	Level string `toml:"level"`
}

// TracingConfig controls OpenTelemetry export.
type TracingConfig struct {
	OTLPEndpoint string  `toml:"otlp_endpoint"`
	SampleRate   float64 `toml:"sample_rate"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Layout: LayoutConfig{Algorithm: string(layout.DefaultAlgorithm)},
		Cache: CacheConfig{
			Backend:   string(cache.BackendFile),
			RedisAddr: "localhost:6379",
			TTL:       cache.TTLLayout.String(),
		},
		Log:     LogConfig{Level: "info"},
		Tracing: TracingConfig{SampleRate: 1.0},
	}
}

// Dir returns the ontoflow config directory.
func Dir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "ontoflow")
}

// DefaultPath returns the default config file path.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads path over the defaults. An empty path reads DefaultPath and
// tolerates its absence; an explicit path must exist. Unknown keys and
// invalid values are INVALID_CONFIG errors.
func Load(path string) (*Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return cfg, nil
	}
	if err != nil {
		return nil, oferrors.Wrap(oferrors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	if err := cfg.decode(string(data)); err != nil {
		return nil, oferrors.Wrap(oferrors.ErrCodeInvalidConfig, err, "config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, oferrors.Wrap(oferrors.ErrCodeInvalidConfig, err, "config %s", path)
	}
	return cfg, nil
}

// Parse decodes TOML text over the defaults and validates the result.
func Parse(data string) (*Config, error) {
	cfg := Default()
	if err := cfg.decode(data); err != nil {
		return nil, oferrors.Wrap(oferrors.ErrCodeInvalidConfig, err, "config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, oferrors.Wrap(oferrors.ErrCodeInvalidConfig, err, "config")
	}
	return cfg, nil
}

func (c *Config) decode(data string) error {
	md, err := toml.Decode(data, c)
	if err != nil {
		return err
	}
	var unknown []string
	for _, k := range md.Undecoded() {
		// Parameter tables are free-form.
		if len(k) > 2 && k[0] == "layout" && k[1] == "params" {
			continue
		}
		unknown = append(unknown, k.String())
	}
	if len(unknown) > 0 {
		return fmt.Errorf("unknown keys: %s", strings.Join(unknown, ", "))
	}
	return nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	var problems []string
	if _, err := layout.Default().Engine(layout.ParseAlgorithm(c.Layout.Algorithm)); err != nil {
		problems = append(problems, fmt.Sprintf("layout.algorithm: unknown algorithm %q", c.Layout.Algorithm))
	}
	for alg := range c.Layout.Params {
		if _, err := layout.Default().Engine(layout.ParseAlgorithm(alg)); err != nil {
			problems = append(problems, fmt.Sprintf("layout.params.%s: unknown algorithm", alg))
		}
	}
	switch cache.Backend(c.Cache.Backend) {
	case cache.BackendFile, cache.BackendRedis, cache.BackendNone:
	default:
		problems = append(problems, fmt.Sprintf("cache.backend: want file, redis or none, got %q", c.Cache.Backend))
	}
	if _, err := c.CacheTTL(); err != nil {
		problems = append(problems, fmt.Sprintf("cache.ttl: %v", err))
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		problems = append(problems, fmt.Sprintf("log.level: %v", err))
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		problems = append(problems, fmt.Sprintf("tracing.sample_rate: want 0..1, got %v", c.Tracing.SampleRate))
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// CacheTTL parses Cache.TTL. An empty value means the default TTL.
func (c *Config) CacheTTL() (time.Duration, error) {
	if c.Cache.TTL == "" {
		return cache.TTLLayout, nil
	}
	d, err := time.ParseDuration(c.Cache.TTL)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative ttl %s", d)
	}
	return d, nil
}

// CacheOptions converts the cache section for cache.Open.
func (c *Config) CacheOptions() cache.Options {
	return cache.Options{
		Backend:   cache.Backend(c.Cache.Backend),
		Dir:       c.Cache.Dir,
		RedisAddr: c.Cache.RedisAddr,
		RedisDB:   c.Cache.RedisDB,
	}
}

// LogLevel returns the parsed log level, defaulting to info.
func (c *Config) LogLevel() log.Level {
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// TracingOptions converts the tracing section for observability.InitTracing.
func (c *Config) TracingOptions() *observability.TracingConfig {
	tc := observability.DefaultTracingConfig()
	tc.ServiceVersion = buildinfo.ServiceVersion()
	tc.OTLPEndpoint = c.Tracing.OTLPEndpoint
	tc.SampleRate = c.Tracing.SampleRate
	return tc
}

// LayoutStore returns a store selecting the configured algorithm with the
// configured parameter overrides applied.
func (c *Config) LayoutStore(d *layout.Dispatcher) (*layout.Store, error) {
	s, err := layout.NewStore(d, layout.ParseAlgorithm(c.Layout.Algorithm))
	if err != nil {
		return nil, err
	}
	for alg, params := range c.Layout.Params {
		if err := s.SetParams(layout.ParseAlgorithm(alg), layout.Params(params)); err != nil {
			return nil, fmt.Errorf("layout.params.%s: %w", alg, err)
		}
	}
	return s, nil
}

// Save writes cfg to path as TOML, creating parent directories.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}
