package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/muninboard/pkg/buildinfo"
	"github.com/matzehuels/muninboard/pkg/cache"
	"github.com/matzehuels/muninboard/pkg/config"
	"github.com/matzehuels/muninboard/pkg/dashboard"
	"github.com/matzehuels/muninboard/pkg/directory"
	"github.com/matzehuels/muninboard/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "muninboard"

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

	configPath string
	verbose    bool
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "muninboard builds Grafana dashboards for munin nodes",
		Long: `muninboard reads the plugin metadata of munin nodes from a document index
(Elasticsearch, MongoDB or a JSON file) and turns it into Grafana dashboards
with one graph per plugin, backed by Graphite metrics.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.loadConfig,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (default "+config.DefaultPath+")")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.nodesCommand())
	root.AddCommand(c.indexCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the configuration and applies its log settings. The
// --verbose flag wins over the configured level.
func (c *CLI) loadConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(c.configPath, c.configPath != "")
	if err != nil {
		return err
	}
	c.cfg = cfg

	configureLogger(c.Logger, cfg.Log, c.verbose)
	if c.verbose {
		registerDebugHooks(c.Logger)
	}
	return nil
}

// config returns the loaded configuration, or the defaults when no command
// hook ran (e.g. in tests).
func (c *CLI) config() *config.Config {
	if c.cfg == nil {
		cfg := config.Defaults()
		c.cfg = &cfg
	}
	return c.cfg
}

// =============================================================================
// Factories
// =============================================================================

// newBackend opens the configured directory backend.
func (c *CLI) newBackend(ctx context.Context) (directory.Backend, error) {
	cfg := c.config().Directory
	switch cfg.Backend {
	case config.BackendElasticsearch:
		return directory.NewElasticsearch(directory.ElasticsearchOptions{
			URL:      cfg.Elasticsearch.URL,
			Index:    cfg.Elasticsearch.Index,
			Username: cfg.Elasticsearch.Username,
			Password: cfg.Elasticsearch.Password,
			APIKey:   cfg.Elasticsearch.APIKey,
			MaxNodes: cfg.MaxNodes,
			Timeout:  cfg.Timeout.Duration,
		})
	case config.BackendMongo:
		connectCtx, cancel := context.WithTimeout(ctx, cfg.Timeout.Duration)
		defer cancel()
		return directory.NewMongo(connectCtx, directory.MongoOptions{
			URI:        cfg.Mongo.URI,
			Database:   cfg.Mongo.Database,
			Collection: cfg.Mongo.Collection,
			MaxNodes:   cfg.MaxNodes,
			Timeout:    cfg.Timeout.Duration,
		})
	case config.BackendFile:
		return directory.OpenFile(cfg.File.Path)
	default:
		return nil, fmt.Errorf("unknown directory backend %q", cfg.Backend)
	}
}

// newCache opens the configured lookup cache. noCache disables caching.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	cfg := c.config().Cache
	if noCache || cfg.Backend == config.CacheNone {
		return cache.NewNullCache(), nil
	}

	switch cfg.Backend {
	case config.CacheRedis:
		return cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Username: cfg.Redis.Username,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
	default:
		dir, err := c.cacheDir()
		if err != nil {
			c.Logger.Warn("cache disabled", "error", err)
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	}
}

// session bundles what a dashboard command needs and releases it on close.
type session struct {
	backend directory.Backend
	cache   cache.Cache
	runner  *pipeline.Runner
}

func (s *session) close(ctx context.Context) {
	s.cache.Close()
	s.backend.Close(ctx)
}

// newSession opens the backend and cache and builds a runner over them.
func (c *CLI) newSession(ctx context.Context, noCache bool) (*session, error) {
	backend, err := c.newBackend(ctx)
	if err != nil {
		return nil, err
	}
	ch, err := c.newCache(ctx, noCache)
	if err != nil {
		backend.Close(ctx)
		return nil, err
	}

	cfg := c.config()
	keyer := cache.NewScopedKeyer(nil, cacheScope(cfg.Directory))
	runner := pipeline.NewRunner(backend, ch, keyer, dashboard.Settings{
		Prefix:   cfg.Dashboard.Prefix,
		LinkBase: cfg.Dashboard.LinkBase,
		Refresh:  cfg.Dashboard.Refresh,
	}, c.Logger)
	if ttl := cfg.CacheTTL(); ttl > 0 {
		runner.Directory.NodeTTL = ttl
	}
	if timeout := cfg.Directory.Timeout.Duration; timeout > 0 {
		runner.Directory.SharedTimeout = timeout
	}
	return &session{backend: backend, cache: ch, runner: runner}, nil
}

// cacheScope prefixes cache keys with the directory they were read from, so
// entries of one index are never served for another.
func cacheScope(cfg config.DirectoryConfig) string {
	switch cfg.Backend {
	case config.BackendElasticsearch:
		return "es:" + cfg.Elasticsearch.Index + ":"
	case config.BackendMongo:
		return "mongo:" + cfg.Mongo.Database + "." + cfg.Mongo.Collection + ":"
	default:
		return "file:" + cache.Hash([]byte(cfg.File.Path))[:12] + ":"
	}
}

// defaultOptions returns the request defaults from the configuration.
func (c *CLI) defaultOptions() pipeline.Options {
	cfg := c.config().Dashboard
	return pipeline.Options{Timespan: cfg.DefaultTimespan, LineWidth: cfg.DefaultLineWidth}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory, or the XDG default
// (~/.cache/muninboard/).
func (c *CLI) cacheDir() (string, error) {
	if dir := c.config().Cache.Dir; dir != "" {
		return dir, nil
	}
	return cacheDir()
}

// cacheDir returns the cache directory using XDG standard (~/.cache/muninboard/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
