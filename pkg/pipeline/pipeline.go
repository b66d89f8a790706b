// Package pipeline provides the compile → reduce → render pipeline for
// PageForge.
//
// This package implements the complete pipeline that can be used by the
// CLI and by embedding applications. By centralizing this logic, we
// ensure consistent behavior across all entry points and avoid code
// duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Compile: Turn a TOML story manifest into a book
//  2. Reduce: Merge pages that render identically
//  3. Render: Generate output in various formats (SVG, PNG, PDF, DOT, JSON)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Manifest: "story.toml",
//	    Formats:  []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["page-001.svg"]
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/pageforge/pageforge/pkg/book"
	"github.com/pageforge/pageforge/pkg/cache"
	"github.com/pageforge/pageforge/pkg/reduce"
	"github.com/pageforge/pageforge/pkg/render"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Embedders
// =============================================================================

const (
	// DefaultPNGScale is the default raster scale factor for PNG output.
	DefaultPNGScale = 2.0
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatDOT  = "dot"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatDOT:  true,
	FormatJSON: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for embedding applications.
type Options struct {
	// Compile options
	Manifest     string `json:"manifest,omitempty"`      // path to a TOML story manifest
	ManifestData []byte `json:"manifest_data,omitempty"` // raw manifest bytes (takes precedence)
	BookFile     string `json:"book_file,omitempty"`     // path to a precompiled book document
	Refresh      bool   `json:"refresh,omitempty"`

	// Reduce options
	SkipReduce bool `json:"skip_reduce,omitempty"`
	SinglePass bool `json:"single_pass,omitempty"`
	MinRemoved int  `json:"min_removed,omitempty"`
	MaxPasses  int  `json:"max_passes,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"` // page content in DOT node labels
	Scale    float64  `json:"scale,omitempty"`    // PNG raster scale

	// Runtime options (not serialized)
	ImagesDir string               `json:"-"`
	Images    *render.ImageCatalog `json:"-"`
	Logger    *log.Logger          `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Book is the compiled (unreduced) book.
	Book *book.Book

	// BookHash is the content hash of the compiled book.
	BookHash string

	// Reduced is the reduced book. Equal to Book when reduction was
	// skipped.
	Reduced *book.Book

	// Removed is the number of pages merged away by reduction.
	Removed int

	// Passes is the number of reduction passes executed.
	Passes int

	// Artifacts contains rendered outputs keyed by filename,
	// e.g. "page-001.svg" or "book.dot".
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	PageCount        int
	ReducedPageCount int
	CompileTime      time.Duration
	ReduceTime       time.Duration
	RenderTime       time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	CompileHit bool // Whether the compiled book came from cache
	ReduceHit  bool // Whether the reduction result came from cache
	RenderHit  bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: svg, png, pdf, dot, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForCompile(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForCompile checks required fields for compilation.
func (o *Options) ValidateForCompile() error {
	if o.Manifest == "" && len(o.ManifestData) == 0 && o.BookFile == "" {
		return fmt.Errorf("manifest or book file is required")
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale == 0 {
		o.Scale = DefaultPNGScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

// ReduceOptions returns the reducer configuration for these options.
func (o *Options) ReduceOptions() reduce.Options {
	return reduce.Options{
		SinglePass: o.SinglePass,
		MinRemoved: o.MinRemoved,
		MaxPasses:  o.MaxPasses,
		Images:     o.Images,
		Logger:     o.Logger,
	}
}

// ReductionKeyOpts returns cache key options for the reduction stage.
func (o *Options) ReductionKeyOpts() cache.ReductionKeyOpts {
	return cache.ReductionKeyOpts{
		SinglePass: o.SinglePass,
		MinRemoved: o.MinRemoved,
		MaxPasses:  o.MaxPasses,
	}
}

// ArtifactKeyOpts returns cache key options for one rendered artifact.
func (o *Options) ArtifactKeyOpts(format, name string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:   format,
		Name:     name,
		Detailed: o.Detailed,
		Scale:    o.Scale,
	}
}
