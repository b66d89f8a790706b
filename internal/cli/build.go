package cli

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pageforge/pageforge/pkg/book"
	"github.com/pageforge/pageforge/pkg/pipeline"
)

// buildOpts holds the command-line flags for the build command.
type buildOpts struct {
	output  string // output file path for the compiled book
	noCache bool   // disable the pipeline cache
	refresh bool   // bypass the cache and recompile
}

// newBuildCmd creates the build command for compiling story manifests.
func newBuildCmd() *cobra.Command {
	var opts buildOpts

	cmd := &cobra.Command{
		Use:   "build [manifest]",
		Short: "Compile a story manifest into a book document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: manifest name with .json)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the pipeline cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompile even if cached")

	return cmd
}

func runBuild(ctx context.Context, manifest string, opts *buildOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	runner := newRunner(ctx, opts.noCache)
	b, hit, err := runner.CompileWithCacheInfo(ctx, pipeline.Options{
		Manifest: manifest,
		Refresh:  opts.refresh,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	output := opts.output
	if output == "" {
		output = strings.TrimSuffix(manifest, filepath.Ext(manifest)) + ".json"
	}
	if err := book.WriteBookFile(b, output); err != nil {
		return err
	}

	prog.done("Compiled " + manifest)
	printSuccess("Compiled %q (%d pages)", b.Title, b.PageCount())
	printFile(output)
	printStats(b.PageCount(), 0, hit)
	printNextStep("Reduce it", appName+" reduce "+output)
	return nil
}
