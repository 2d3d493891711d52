package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/nodedocs/pkg/cache"
	"github.com/matzehuels/nodedocs/pkg/config"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the rendered image cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached node image",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}

			switch cfg.Cache.Backend {
			case config.BackendNone:
				c.printInfo("Image cache is disabled")
				return nil
			case config.BackendRedis:
				rc, err := cache.NewRedisCache(cmd.Context(), cfg.Cache.URL, cfg.Cache.Prefix)
				if err != nil {
					return fmt.Errorf("connect image cache: %w", err)
				}
				defer rc.Close()
				count, err := rc.Clear(cmd.Context())
				if err != nil {
					return err
				}
				c.printSuccess("Cleared %d cached images", count)
				c.printDetail("Redis prefix: %s", cfg.Cache.Prefix)
				return nil
			}

			dir, err := imageCacheDir(cfg)
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fc, err := cache.NewFileCache(dir)
			if err != nil {
				return err
			}
			count, err := fc.Clear()
			if err != nil {
				return err
			}
			if count == 0 {
				c.printInfo("Cache is empty")
				return nil
			}
			c.printSuccess("Cleared %d cached images", count)
			c.printDetail("Directory: %s", dir)
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the image cache directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			dir, err := imageCacheDir(cfg)
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(c.out, dir)
			return nil
		},
	}
}
