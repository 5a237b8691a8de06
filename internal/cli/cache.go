package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/muninboard/pkg/cache"
	"github.com/matzehuels/muninboard/pkg/config"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the directory lookup cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached directory lookups",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.config().Cache
			switch cfg.Backend {
			case config.CacheNone:
				printInfo("Caching is disabled")
				return nil

			case config.CacheRedis:
				rc, err := cache.NewRedisCache(cmd.Context(), cache.RedisOptions{
					Addr:     cfg.Redis.Addr,
					Username: cfg.Redis.Username,
					Password: cfg.Redis.Password,
					DB:       cfg.Redis.DB,
					Prefix:   cfg.Redis.Prefix,
				})
				if err != nil {
					return err
				}
				defer rc.Close()

				count, err := rc.Clear(cmd.Context())
				if err != nil {
					return fmt.Errorf("clear redis cache: %w", err)
				}
				printSuccess("Cleared %d cached entries", count)
				printDetail("Redis: %s (prefix %q)", cfg.Redis.Addr, cfg.Redis.Prefix)
				return nil

			default:
				dir, err := c.cacheDir()
				if err != nil {
					return fmt.Errorf("get cache dir: %w", err)
				}
				if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
					printInfo("Cache is empty")
					return nil
				}

				fc, err := cache.NewFileCache(dir)
				if err != nil {
					return err
				}
				count, err := fc.Clear()
				if err != nil {
					return fmt.Errorf("clear file cache: %w", err)
				}
				printSuccess("Cleared %d cached entries", count)
				printDetail("Directory: %s", dir)
				return nil
			}
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}
