package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pageforge/pageforge/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
// These options control output formats and reduction behavior.
type renderOpts struct {
	output     string   // output directory for artifacts
	formats    []string // output formats: "svg", "png", "pdf", "dot", "json"
	images     string   // directory with page images
	scale      float64  // raster scale for PNG output
	detailed   bool     // page content in DOT node labels
	skipReduce bool     // render the unreduced book
	singlePass bool     // stop reduction after the first pass
	noCache    bool     // disable the pipeline cache
	refresh    bool     // bypass the cache and recompute
}

// newRenderCmd creates the render command for generating page artifacts.
// It runs the full compile → reduce → render pipeline.
func newRenderCmd() *cobra.Command {
	var formatsStr string
	opts := renderOpts{
		scale: pipeline.DefaultPNGScale,
	}

	cmd := &cobra.Command{
		Use:   "render [manifest|book]",
		Short: "Render a book's pages to SVG, PNG, or PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			return runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output directory (default: input name without extension)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, dot, json (comma-separated)")
	cmd.Flags().StringVar(&opts.images, "images", "", "directory containing page images")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "raster scale for PNG output")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show page content in DOT node labels")
	cmd.Flags().BoolVar(&opts.skipReduce, "skip-reduce", false, "render without merging identical pages")
	cmd.Flags().BoolVar(&opts.singlePass, "single-pass", false, "stop reduction after the first pass")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the pipeline cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even if cached")

	return cmd
}

// parseFormats parses the --format flag into a slice of output formats.
// If empty, defaults to ["svg"].
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return strings.Split(s, ",")
}

func runRender(ctx context.Context, input string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	popts := pipeline.Options{
		SkipReduce: opts.skipReduce,
		SinglePass: opts.singlePass,
		Formats:    opts.formats,
		Detailed:   opts.detailed,
		Scale:      opts.scale,
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

	spin := newSpinnerWithContext(ctx, "Rendering "+input)
	spin.Start()
	result, err := runner.Execute(ctx, popts)
	if err != nil {
		spin.StopWithError("Render failed")
		return err
	}
	spin.Stop()

	outDir := opts.output
	if outDir == "" {
		outDir = strings.TrimSuffix(input, filepath.Ext(input))
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}

	names := make([]string, 0, len(result.Artifacts))
	for name := range result.Artifacts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		path := filepath.Join(outDir, name)
		if err := os.WriteFile(path, result.Artifacts[name], 0644); err != nil {
			return err
		}
		printFile(path)
	}

	prog.done(fmt.Sprintf("Rendered %d artifact(s)", len(result.Artifacts)))
	printSuccess("Rendered %d page(s) (%d merged away)",
		result.Reduced.PageCount(), result.Removed)
	printStats(result.Reduced.PageCount(), result.Removed, result.CacheInfo.RenderHit)
	return nil
}
