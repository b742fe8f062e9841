package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Backend names a cache implementation.
type Backend string

const (
	BackendFile  Backend = "file"
	BackendRedis Backend = "redis"
	BackendNone  Backend = "none"
)

// Options selects and configures a backend.
type Options struct {
	Backend   Backend
	Dir       string
	RedisAddr string
	RedisDB   int
	Prefix    string
}

// Clearer is implemented by caches that can drop all their entries.
type Clearer interface {
	Clear(ctx context.Context) (int, error)
}

// Open returns the backend named by opts. An empty backend selects the
// file cache in DefaultDir.
func Open(ctx context.Context, opts Options) (Cache, error) {
	switch opts.Backend {
	case BackendFile, "":
		dir := opts.Dir
		if dir == "" {
			d, err := DefaultDir()
			if err != nil {
				return nil, err
			}
			dir = d
		}
		return NewFileCache(dir)
	case BackendRedis:
		return NewRedisCache(ctx, RedisOptions{Addr: opts.RedisAddr, DB: opts.RedisDB, Prefix: opts.Prefix})
	case BackendNone:
		return NewNullCache(), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q (want file, redis or none)", opts.Backend)
	}
}

// DefaultDir returns the per-user cache directory, e.g.
// ~/.cache/ontoflow on Linux.
func DefaultDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("locate cache dir: %w", err)
	}
	return filepath.Join(base, "ontoflow"), nil
}
