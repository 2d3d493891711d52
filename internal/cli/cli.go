// Package cli implements the nodedocs command-line interface.
//
// # Commands
//
//   - generate: document native modules and content paths into an XML tree
//   - serve: run the task processor behind the HTTP API
//   - catalog: summarise a catalog manifest
//   - history: list finished runs
//   - cache: manage the rendered image cache
//
// Settings come from nodedocs.toml (see package config); flags override it.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/nodedocs/pkg/buildinfo"
	"github.com/matzehuels/nodedocs/pkg/config"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "nodedocs"

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
	out        io.Writer
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level), out: os.Stdout}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// Verbose reports whether debug logging is on.
func (c *CLI) Verbose() bool { return c.Logger.GetLevel() <= log.DebugLevel }

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "nodedocs documents graph editor nodes as browsable XML",
		Long:         `nodedocs spawns every documentable node of a catalog's native modules and content paths, renders an image of each and writes an XML document tree with an XSLT stylesheet for browsing.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (default ./"+config.DefaultFileName+" if present)")

	root.AddCommand(c.generateCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.catalogCommand())
	root.AddCommand(c.historyCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file named by --config.
func (c *CLI) loadConfig() (*config.File, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if cfg.Path != "" {
		c.Logger.Debug("loaded config", "path", cfg.Path)
	}
	return cfg, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/nodedocs/).
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

// imageCacheDir resolves the file cache directory from the config.
func imageCacheDir(cfg *config.File) (string, error) {
	if cfg.Cache.Dir != "" {
		return cfg.Cache.Dir, nil
	}
	dir, err := cacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "images"), nil
}
