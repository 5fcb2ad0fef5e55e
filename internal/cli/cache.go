package cli

import (
	"github.com/spf13/cobra"

	"github.com/git-ranked/gitranked/internal/config"
	"github.com/git-ranked/gitranked/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the shared result cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePingCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Flush cached search pages and profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cfg.Cache.Backend != config.BackendRedis {
				printInfo("Memory cache holds nothing between runs, nothing to clear")
				return nil
			}

			store, err := cache.NewRedisCache(cfg.Cache.RedisURL, cfg.Cache.Prefix)
			if err != nil {
				return err
			}
			defer store.Close()

			removed, err := store.Clear(cmd.Context())
			if err != nil {
				return err
			}
			printSuccess("Cleared %d cached entries", removed)
			printDetail("Namespace: %s", cfg.Cache.Prefix)
			return nil
		},
	}
}

// cachePingCommand creates the "cache ping" subcommand.
func (c *CLI) cachePingCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check connectivity to the redis cache backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cfg.Cache.Backend != config.BackendRedis {
				printInfo("Cache backend is %q, nothing to ping", cfg.Cache.Backend)
				return nil
			}

			store, err := cache.NewRedisCache(cfg.Cache.RedisURL, cfg.Cache.Prefix)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Ping(cmd.Context()); err != nil {
				printError("Redis unreachable: %v", err)
				return err
			}
			printSuccess("Redis reachable")
			return nil
		},
	}
}
