package cli

import (
	"context"
	"os"
	"path/filepath"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/pageforge/pageforge/pkg/buildinfo"
	"github.com/pageforge/pageforge/pkg/cache"
	"github.com/pageforge/pageforge/pkg/pipeline"
)

// appName is the application name used for directories and display.
const appName = "pageforge"

// Execute runs the pageforge CLI and returns an error if any command fails.
// This is the main entry point for the CLI application.
//
// The function sets up the root command with all subcommands, configures
// logging based on the --verbose flag, and executes the command tree.
//
// Logging:
//   - Default: info level (logs to stderr)
//   - With --verbose (-v): debug level
//
// The logger is attached to the context and accessible to all commands
// via loggerFromContext.
func Execute(ctx context.Context) error {
	var verbose bool

	root := &cobra.Command{
		Use:          appName,
		Short:        "PageForge compiles and deduplicates interactive storybooks",
		Long:         `PageForge is a CLI tool for compiling interactive story manifests into page books, merging pages that render identically, and rendering the result to SVG, PNG, or PDF.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newBuildCmd())
	root.AddCommand(newReduceCmd())
	root.AddCommand(newRenderCmd())
	root.AddCommand(newGraphCmd())
	root.AddCommand(newInspectCmd())
	root.AddCommand(newCacheCmd())
	root.AddCommand(newCompletionCmd())

	return root.ExecuteContext(ctx)
}

// =============================================================================
// Runner Factory
// =============================================================================

// redisEnv names the environment variable selecting a shared Redis
// cache backend, e.g. PAGEFORGE_REDIS=localhost:6379.
const redisEnv = "PAGEFORGE_REDIS"

// newRunner creates a pipeline runner for CLI use.
func newRunner(ctx context.Context, noCache bool) *pipeline.Runner {
	return pipeline.NewRunner(newCache(ctx, noCache), nil, loggerFromContext(ctx))
}

// newCache picks the cache backend: disabled, shared Redis when
// PAGEFORGE_REDIS is set, otherwise the per-user file cache. An
// unreachable Redis falls back to the file cache so a dead server
// never blocks local work.
func newCache(ctx context.Context, noCache bool) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}
	if addr := os.Getenv(redisEnv); addr != "" {
		c, err := cache.NewRedisCache(ctx, addr)
		if err == nil {
			return c
		}
		loggerFromContext(ctx).Warn("redis cache unavailable, using file cache", "addr", addr, "err", err)
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache()
	}
	c, err := cache.NewFileCache(dir)
	if err != nil {
		return cache.NewNullCache()
	}
	return c
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/pageforge/).
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
