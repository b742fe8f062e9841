package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ontoflow/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the layout and artifact cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached layouts and renders",
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := cache.Open(cmd.Context(), c.Config.CacheOptions())
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			defer cc.Close()

			clearer, ok := cc.(cache.Clearer)
			if !ok {
				printInfo("Cache backend %q holds nothing to clear", c.Config.Cache.Backend)
				return nil
			}
			count, err := clearer.Clear(cmd.Context())
			if err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			if count == 0 {
				printInfo("Cache is empty")
				return nil
			}
			printSuccess("Cleared %d cached entries", count)
			printDetail("Backend: %s", c.Config.Cache.Backend)
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where the cache lives",
		RunE: func(cmd *cobra.Command, args []string) error {
			switch cache.Backend(c.Config.Cache.Backend) {
			case cache.BackendRedis:
				fmt.Printf("redis://%s/%d (prefix %s)\n", c.Config.Cache.RedisAddr, c.Config.Cache.RedisDB, cache.DefaultRedisPrefix)
			case cache.BackendNone:
				printInfo("Caching is disabled")
			default:
				dir, err := c.cacheDir()
				if err != nil {
					return fmt.Errorf("get cache dir: %w", err)
				}
				fmt.Println(dir)
			}
			return nil
		},
	}
}
