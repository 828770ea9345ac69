package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/moviegraph/pkg/cache"
	"github.com/matzehuels/moviegraph/pkg/config"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the rendered artifact cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand. It clears the
// configured backend; with backend none it clears the file cache.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.cfg.Cache.Backend == config.CacheRedis {
				rc, err := cache.NewRedisCache(cmd.Context(), cache.RedisOptions{
					Addr:     c.cfg.Redis.Addr,
					Password: c.cfg.Redis.Password,
					DB:       c.cfg.Redis.DB,
				})
				if err != nil {
					return err
				}
				defer rc.Close()
				count, err := rc.Clear(cmd.Context(), c.cfg.Cache.Prefix)
				if err != nil {
					return err
				}
				printSuccess("Cleared %d cached entries", count)
				printDetail("Redis: %s (prefix %q)", c.cfg.Redis.Addr, c.cfg.Cache.Prefix)
				return nil
			}

			dir, err := c.cacheDir()
			if err != nil {
				return err
			}
			fc, err := cache.NewFileCache(dir)
			if err != nil {
				return fmt.Errorf("open cache dir: %w", err)
			}
			count, err := fc.Clear()
			if err != nil {
				return err
			}
			if count == 0 {
				printInfo("Cache is empty")
				return nil
			}
			printSuccess("Cleared %d cached entries", count)
			printDetail("Directory: %s", fc.Dir())
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache location",
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.cfg.Cache.Backend == config.CacheRedis {
				fmt.Fprintf(c.out, "redis://%s/%d %s*\n", c.cfg.Redis.Addr, c.cfg.Redis.DB, c.cfg.Cache.Prefix)
				return nil
			}
			dir, err := c.cacheDir()
			if err != nil {
				return err
			}
			fmt.Fprintln(c.out, dir)
			return nil
		},
	}
}
