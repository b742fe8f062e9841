package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/ontoflow/pkg/cache"
	"github.com/matzehuels/ontoflow/pkg/errors"
	"github.com/matzehuels/ontoflow/pkg/layout"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	if ttl, _ := cfg.CacheTTL(); ttl != cache.TTLLayout {
		t.Errorf("ttl = %v", ttl)
	}
	if cfg.LogLevel() != log.InfoLevel {
		t.Errorf("level = %v", cfg.LogLevel())
	}
}

func TestParse(t *testing.T) {
	cfg, err := Parse(`
[layout]
algorithm = "Radial"

[layout.params.force]
repulsion = -500
seed = 7

[cache]
backend = "redis"
redis_addr = "cache:6379"
redis_db = 2
ttl = "1h"

[log]
level = "debug"

[tracing]
otlp_endpoint = "localhost:4317"
sample_rate = 0.25
`)
	if err != nil {
		t.Fatal(err)
	}
	if ttl, _ := cfg.CacheTTL(); ttl != time.Hour {
		t.Errorf("ttl = %v", ttl)
	}
	opts := cfg.CacheOptions()
	if opts.Backend != cache.BackendRedis || opts.RedisAddr != "cache:6379" || opts.RedisDB != 2 {
		t.Errorf("cache options = %+v", opts)
	}
	if cfg.LogLevel() != log.DebugLevel {
		t.Errorf("level = %v", cfg.LogLevel())
	}
	tc := cfg.TracingOptions()
	if tc.OTLPEndpoint != "localhost:4317" || tc.SampleRate != 0.25 || tc.ServiceName != "ontoflow" {
		t.Errorf("tracing = %+v", tc)
	}

	store, err := cfg.LayoutStore(layout.NewDispatcher())
	if err != nil {
		t.Fatal(err)
	}
	if store.Algorithm() != layout.Radial {
		t.Errorf("algorithm = %s", store.Algorithm())
	}
	p, _ := store.Params(layout.Force)
	if p["repulsion"] != int64(-500) || p["seed"] != int64(7) || p["linkDistance"] != 80.0 {
		t.Errorf("force params = %v", p)
	}
}

func TestParseKeepsDefaults(t *testing.T) {
	cfg, err := Parse("[log]\nlevel = \"warn\"\n")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Cache.Backend != "file" || cfg.Layout.Algorithm != string(layout.DefaultAlgorithm) {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestParseErrors(t *testing.T) {
	tests := map[string]string{
		"syntax":        "[layout\n",
		"unknown key":   "[cache]\nbackend = \"file\"\ncolour = \"red\"\n",
		"backend":       "[cache]\nbackend = \"memcached\"\n",
		"ttl":           "[cache]\nttl = \"soon\"\n",
		"level":         "[log]\nlevel = \"loud\"\n",
		"sample rate":   "[tracing]\nsample_rate = 2.0\n",
		"algorithm":     "[layout]\nalgorithm = \"spiral\"\n",
		"params target": "[layout.params.spiral]\nturns = 3\n",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(data)
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("err = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestLayoutStoreRejectsBadParams(t *testing.T) {
	cfg, err := Parse("[layout.params.force]\nrepulsion = \"lots\"\n")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := cfg.LayoutStore(nil); !errors.Is(err, errors.ErrCodeInvalidParams) {
		t.Errorf("err = %v, want INVALID_PARAMS", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	// Missing default file: defaults.
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("level = %s", cfg.Log.Level)
	}
	if !strings.HasPrefix(DefaultPath(), filepath.Join(dir, "ontoflow")) {
		t.Errorf("DefaultPath = %s", DefaultPath())
	}

	// Missing explicit file: error.
	if _, err := Load(filepath.Join(dir, "nope.toml")); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("err = %v", err)
	}

	// Round trip through Save.
	cfg.Log.Level = "error"
	if err := Save(DefaultPath(), cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if loaded.LogLevel() != log.ErrorLevel {
		t.Errorf("level = %v", loaded.LogLevel())
	}
	if _, err := os.Stat(DefaultPath()); err != nil {
		t.Error(err)
	}
}
