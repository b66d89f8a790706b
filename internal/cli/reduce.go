package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pageforge/pageforge/pkg/book"
	"github.com/pageforge/pageforge/pkg/pipeline"
)

// reduceOpts holds the command-line flags for the reduce command.
type reduceOpts struct {
	output     string // output file path for the reduced book
	images     string // directory with page images
	singlePass bool   // stop after the first pass
	minRemoved int    // per-pass removal floor for continuing
	maxPasses  int    // hard cap on pass count
	noCache    bool   // disable the pipeline cache
	refresh    bool   // bypass the cache and recompute
}

// newReduceCmd creates the reduce command for merging identical pages.
func newReduceCmd() *cobra.Command {
	var opts reduceOpts

	cmd := &cobra.Command{
		Use:   "reduce [manifest|book]",
		Short: "Merge pages that render identically",
		Long: `Reduce merges pages of a book that a reader could never tell apart:
identical drawn content and identical outgoing links. The input is
either a TOML story manifest or a compiled book document.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReduce(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: input name with .reduced.json)")
	cmd.Flags().StringVar(&opts.images, "images", "", "directory containing page images")
	cmd.Flags().BoolVar(&opts.singlePass, "single-pass", false, "stop after the first pass")
	cmd.Flags().IntVar(&opts.minRemoved, "min-removed", 0, "per-pass removal floor for continuing (0 = default)")
	cmd.Flags().IntVar(&opts.maxPasses, "max-passes", 0, "hard cap on pass count (0 = unlimited)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the pipeline cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even if cached")

	return cmd
}

func runReduce(ctx context.Context, input string, opts *reduceOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	popts := pipeline.Options{
		SinglePass: opts.singlePass,
		MinRemoved: opts.minRemoved,
		MaxPasses:  opts.maxPasses,
		ImagesDir:  opts.images,
		Refresh:    opts.refresh,
		Logger:     logger,
	}
	if strings.HasSuffix(input, ".toml") {
		popts.Manifest = input
	} else {
		popts.BookFile = input
	}

	runner := newRunner(ctx, opts.noCache)
	b, err := runner.Compile(ctx, popts)
	if err != nil {
		return err
	}

	spin := newSpinnerWithContext(ctx, fmt.Sprintf("Reducing %d pages", b.PageCount()))
	spin.Start()
	reduced, removed, passes, hit, err := runner.ReduceWithCacheInfo(ctx, b, popts)
	if err != nil {
		spin.StopWithError("Reduction failed")
		return err
	}
	spin.Stop()

	output := opts.output
	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + ".reduced.json"
	}
	if err := book.WriteBookFile(reduced, output); err != nil {
		return err
	}

	prog.done(fmt.Sprintf("Reduced %d pages to %d", b.PageCount(), reduced.PageCount()))
	printSuccess("Removed %d of %d pages in %d pass(es)", removed, b.PageCount(), passes)
	printFile(output)
	printStats(reduced.PageCount(), removed, hit)
	printNextStep("Render it", appName+" render "+output)
	return nil
}
