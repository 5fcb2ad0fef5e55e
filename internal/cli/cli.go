// Package cli implements the gitranked command-line interface.
//
// This package provides commands for running leaderboard searches from the
// terminal, looking up single profiles, serving the HTTP API, and managing
// the shared result cache. The CLI is built using cobra and supports
// verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - serve: Run the HTTP API server
//   - search: Rank developers for a location from the terminal
//   - user: Show one developer profile
//   - cache: Manage the shared result cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/git-ranked/gitranked/internal/config"
	"github.com/git-ranked/gitranked/pkg/buildinfo"
	"github.com/git-ranked/gitranked/pkg/cache"
	"github.com/git-ranked/gitranked/pkg/github"
	"github.com/git-ranked/gitranked/pkg/leaderboard"
	"github.com/git-ranked/gitranked/pkg/location"
	"github.com/git-ranked/gitranked/pkg/ratelimit"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// configPath is the --config flag value, consumed by loadConfig.
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "gitranked",
		Short:        "GitRanked ranks GitHub developers by location",
		Long:         `GitRanked builds developer leaderboards for any location on earth, aggregating GitHub search results across the GraphQL and REST APIs with caching and fair anonymous quotas.`,
		Version: buildinfo.Version,

		// main prints the final error itself, so cobra must not.
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to a TOML config file")

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.searchCommand())
	root.AddCommand(c.userCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig() (config.Config, error) {
	return config.Load(c.configPath)
}

// services is everything a command needs to run queries.
type services struct {
	board     *leaderboard.Service
	locations *location.Client
	store     cache.Cache
	cfg       config.Config
}

func (s *services) Close() {
	if err := s.store.Close(); err != nil {
		log.Default().Debug("closing cache", "err", err)
	}
}

// newServices wires the full stack from configuration: cache backend,
// limiter, transports, aggregator, and geocoder.
func (c *CLI) newServices() (*services, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}

	store, err := newStore(cfg.Cache)
	if err != nil {
		return nil, err
	}
	keyer := cache.NewDefaultKeyer()

	board := leaderboard.NewService(leaderboard.Config{
		REST:        github.NewRESTClient(c.Logger),
		GraphQL:     github.NewGraphQLClient(c.Logger),
		Cache:       store,
		Keyer:       keyer,
		Limiter:     ratelimit.New(cfg.RateLimit.Ceiling, cfg.RateLimit.Window.Duration, cfg.RateLimit.Capacity),
		ServerToken: cfg.GitHubToken,
		Logger:      c.Logger,
		Options: leaderboard.Options{
			PageSize:           cfg.Search.PageSize,
			FetchSize:          cfg.Search.FetchSize,
			MaxAccumulate:      cfg.Search.MaxAccumulate,
			CacheTTL:           cfg.Cache.TTL.Duration,
			KeepPartial:        cfg.Search.KeepPartial,
			HydrateConcurrency: cfg.Search.HydrateConcurrency,
		},
	})

	locations := location.NewClient(store, keyer, cfg.Location.TTL.Duration)

	return &services{board: board, locations: locations, store: store, cfg: cfg}, nil
}

func newStore(cfg config.CacheConfig) (cache.Cache, error) {
	if cfg.Backend == config.BackendRedis {
		return cache.NewRedisCache(cfg.RedisURL, cfg.Prefix)
	}
	return cache.NewMemoryCache(cfg.Capacity), nil
}
