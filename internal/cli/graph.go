package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pageforge/pageforge/pkg/pipeline"
	"github.com/pageforge/pageforge/pkg/render"
)

// graphOpts holds the command-line flags for the graph command.
type graphOpts struct {
	output     string // output file path
	format     string // "dot" or "svg"
	images     string // directory with page images
	detailed   bool   // page content in node labels
	skipReduce bool   // graph the unreduced book
	noCache    bool   // disable the pipeline cache
}

// newGraphCmd creates the graph command for visualizing the page
// reference graph.
func newGraphCmd() *cobra.Command {
	opts := graphOpts{format: "dot"}

	cmd := &cobra.Command{
		Use:   "graph [manifest|book]",
		Short: "Visualize the page reference graph as DOT or SVG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.format != "dot" && opts.format != "svg" {
				return fmt.Errorf("invalid format: %s (must be 'dot' or 'svg')", opts.format)
			}
			return runGraph(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: input name with format extension)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: dot (default), svg")
	cmd.Flags().StringVar(&opts.images, "images", "", "directory containing page images")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show page content in node labels")
	cmd.Flags().BoolVar(&opts.skipReduce, "skip-reduce", false, "graph without merging identical pages")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the pipeline cache")

	return cmd
}

func runGraph(ctx context.Context, input string, opts *graphOpts) error {
	logger := loggerFromContext(ctx)

	popts := pipeline.Options{
		SkipReduce: opts.skipReduce,
		ImagesDir:  opts.images,
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
	if !opts.skipReduce {
		b, err = runner.Reduce(ctx, b, popts)
		if err != nil {
			return err
		}
	}

	dot := render.ToDOT(b, render.DOTOptions{Detailed: opts.detailed})

	var data []byte
	switch opts.format {
	case "svg":
		data, err = render.DOTToSVG(ctx, dot)
		if err != nil {
			return err
		}
	default:
		data = []byte(dot)
	}

	output := opts.output
	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + "." + opts.format
	}
	if err := os.WriteFile(output, data, 0644); err != nil {
		return err
	}

	printSuccess("Graphed %d page(s)", b.PageCount())
	printFile(output)
	return nil
}
