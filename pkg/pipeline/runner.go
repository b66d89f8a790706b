package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/pageforge/pageforge/pkg/book"
	"github.com/pageforge/pageforge/pkg/cache"
	"github.com/pageforge/pageforge/pkg/observability"
	"github.com/pageforge/pageforge/pkg/reduce"
	"github.com/pageforge/pageforge/pkg/render"
	"github.com/pageforge/pageforge/pkg/story"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete compile → reduce → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)
	r.applyImages(&opts)

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Compile
	compileStart := time.Now()
	b, compileHit, err := r.CompileWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	result.Book = b
	result.Stats.CompileTime = time.Since(compileStart)
	result.Stats.PageCount = b.PageCount()
	result.CacheInfo.CompileHit = compileHit

	// Compute book hash for cache keys downstream
	if bookData, err := book.MarshalBook(b); err == nil {
		result.BookHash = cache.Hash(bookData)
	}

	r.Logger.Info("compiled story",
		"pages", b.PageCount(),
		"duration", result.Stats.CompileTime)

	// Stage 2: Reduce
	reduceStart := time.Now()
	if opts.SkipReduce {
		result.Reduced = b
	} else {
		reduced, removed, passes, reduceHit, err := r.ReduceWithCacheInfo(ctx, b, opts)
		if err != nil {
			return nil, fmt.Errorf("reduce: %w", err)
		}
		result.Reduced = reduced
		result.Removed = removed
		result.Passes = passes
		result.CacheInfo.ReduceHit = reduceHit
	}
	result.Stats.ReduceTime = time.Since(reduceStart)
	result.Stats.ReducedPageCount = result.Reduced.PageCount()

	r.Logger.Info("reduced book",
		"pages", result.Reduced.PageCount(),
		"removed", result.Removed,
		"passes", result.Passes,
		"duration", result.Stats.ReduceTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, result.Reduced, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"artifacts", len(artifacts),
		"duration", result.Stats.RenderTime)

	return result, nil
}

// CompileWithCacheInfo compiles the story manifest with caching and
// returns cache hit info. When opts.BookFile is set, the precompiled
// book is loaded directly and the cache is bypassed.
func (r *Runner) CompileWithCacheInfo(ctx context.Context, opts Options) (*book.Book, bool, error) {
	if err := opts.ValidateForCompile(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	if opts.BookFile != "" {
		b, err := book.ReadBookFile(opts.BookFile)
		return b, false, err
	}

	data := opts.ManifestData
	if len(data) == 0 {
		var err error
		data, err = os.ReadFile(opts.Manifest)
		if err != nil {
			return nil, false, err
		}
	}

	cacheKey := r.Keyer.BookKey(cache.BookKeyOpts{ManifestHash: cache.Hash(data)})

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if cached, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "book")
			if b, err := book.ReadBook(bytes.NewReader(cached)); err == nil {
				return b, true, nil // Cache hit
			}
		} else {
			observability.Cache().OnCacheMiss(ctx, "book")
		}
	}

	b, err := story.Compile(data)
	if err != nil {
		return nil, false, err
	}

	if bookData, err := book.MarshalBook(b); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, bookData, cache.TTLBook)
		observability.Cache().OnCacheSet(ctx, "book", len(bookData))
	}

	return b, false, nil // Cache miss
}

// Compile is a convenience wrapper that calls CompileWithCacheInfo and discards the cache hit info.
func (r *Runner) Compile(ctx context.Context, opts Options) (*book.Book, error) {
	b, _, err := r.CompileWithCacheInfo(ctx, opts)
	return b, err
}

// reductionDoc is the cached representation of a reduction result:
// the materialized reduced book plus its summary counters. The
// redirect table itself is not cached - callers that need it run the
// reducer directly.
type reductionDoc struct {
	Removed int           `json:"removed"`
	Passes  int           `json:"passes"`
	Book    book.Document `json:"book"`
}

// ReduceWithCacheInfo reduces the book with caching and returns the
// materialized reduced book, the removed page count, the pass count,
// and cache hit info.
func (r *Runner) ReduceWithCacheInfo(ctx context.Context, b *book.Book, opts Options) (*book.Book, int, int, bool, error) {
	r.applyLogger(&opts)
	r.applyImages(&opts)

	bookData, err := book.MarshalBook(b)
	if err != nil {
		return nil, 0, 0, false, err
	}
	bookHash := cache.Hash(bookData)
	cacheKey := r.Keyer.ReductionKey(bookHash, opts.ReductionKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "reduction")
			var doc reductionDoc
			if err := json.Unmarshal(data, &doc); err == nil {
				if reduced, err := book.ToBook(doc.Book); err == nil {
					return reduced, doc.Removed, doc.Passes, true, nil // Cache hit
				}
			}
			// If deserialization fails, fall through to recompute
		} else {
			observability.Cache().OnCacheMiss(ctx, "reduction")
		}
	}

	res, err := reduce.Reduce(ctx, b, opts.ReduceOptions())
	if err != nil {
		return nil, 0, 0, false, err
	}
	reduced := res.Book(b.Title, b.Start)

	doc := reductionDoc{
		Removed: res.Removed,
		Passes:  res.Passes,
		Book:    book.FromBook(reduced),
	}
	if data, err := json.Marshal(doc); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLReduction)
		observability.Cache().OnCacheSet(ctx, "reduction", len(data))
	}

	return reduced, res.Removed, res.Passes, false, nil // Cache miss
}

// Reduce is a convenience wrapper that calls ReduceWithCacheInfo and discards the cache hit info.
func (r *Runner) Reduce(ctx context.Context, b *book.Book, opts Options) (*book.Book, error) {
	reduced, _, _, _, err := r.ReduceWithCacheInfo(ctx, b, opts)
	return reduced, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
// Artifacts are keyed by filename, e.g. "page-001.svg" or "book.dot".
func (r *Runner) RenderWithCacheInfo(ctx context.Context, b *book.Book, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)
	r.applyImages(&opts)

	bookData, err := book.MarshalBook(b)
	if err != nil {
		return nil, false, fmt.Errorf("serialize book for cache key: %w", err)
	}
	bookHash := cache.Hash(bookData)

	// Artifact filenames are derivable from the book and formats, so
	// a fully cached render never runs the renderer at all.
	names := artifactNames(b, opts.Formats)

	allCached := true
	artifacts := make(map[string][]byte, len(names))
	if !opts.Refresh {
		for name, format := range names {
			cacheKey := r.Keyer.ArtifactKey(bookHash, opts.ArtifactKeyOpts(format, name))
			if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
				artifacts[name] = data
			} else {
				allCached = false
				break
			}
		}
		if allCached && len(artifacts) == len(names) {
			return artifacts, true, nil // All artifacts from cache
		}
	}

	renderStart := time.Now()
	observability.Render().OnRenderStart(ctx, opts.Formats)
	rendered, err := renderArtifacts(ctx, b, opts)
	observability.Render().OnRenderComplete(ctx, opts.Formats, time.Since(renderStart), err)
	if err != nil {
		return nil, false, err
	}

	for name, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(bookHash, opts.ArtifactKeyOpts(names[name], name))
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact)
	}

	return rendered, false, nil // Cache miss
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, b *book.Book, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, b, opts)
	return artifacts, err
}

// artifactNames maps each artifact filename to its format for the
// given book and format list.
func artifactNames(b *book.Book, formats []string) map[string]string {
	names := make(map[string]string)
	for _, format := range formats {
		switch format {
		case FormatDOT:
			names["book.dot"] = format
		case FormatJSON:
			names["book.json"] = format
		default:
			for i := range b.Pages {
				names[fmt.Sprintf("page-%03d.%s", i+1, format)] = format
			}
		}
	}
	return names
}

// renderArtifacts renders all requested formats from scratch.
func renderArtifacts(ctx context.Context, b *book.Book, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte)

	needPages := false
	for _, format := range opts.Formats {
		switch format {
		case FormatSVG, FormatPNG, FormatPDF:
			needPages = true
		case FormatDOT:
			artifacts["book.dot"] = []byte(render.ToDOT(b, render.DOTOptions{Detailed: opts.Detailed}))
		case FormatJSON:
			data, err := book.MarshalBook(b)
			if err != nil {
				return nil, err
			}
			artifacts["book.json"] = data
		}
	}
	if !needPages {
		return artifacts, nil
	}

	svgPages, err := renderPages(b, opts.Images)
	if err != nil {
		return nil, err
	}

	for _, format := range opts.Formats {
		for i, svg := range svgPages {
			name := fmt.Sprintf("page-%03d.%s", i+1, format)
			switch format {
			case FormatSVG:
				artifacts[name] = svg
			case FormatPNG:
				png, err := render.ToPNG(svg, opts.Scale)
				if err != nil {
					return nil, fmt.Errorf("render %s: %w", name, err)
				}
				artifacts[name] = png
			case FormatPDF:
				pdf, err := render.ToPDF(svg)
				if err != nil {
					return nil, fmt.Errorf("render %s: %w", name, err)
				}
				artifacts[name] = pdf
			}
		}
	}
	return artifacts, nil
}

// renderPages draws every page of the book onto an SVG surface and
// returns one SVG document per page, in book order. Pages must have
// assigned identifiers; link anchors resolve to the target page's
// identifier directly since a materialized reduced book carries no
// redirects.
func renderPages(b *book.Book, images *render.ImageCatalog) ([][]byte, error) {
	if err := book.AssignIdentifiers(b); err != nil {
		return nil, err
	}
	s := render.NewSVGSurface(func(p *book.Page) int { return p.ID })
	for _, p := range b.Pages {
		if err := render.DrawPage(s, p, images, render.DrawVictoryBanner); err != nil {
			return nil, err
		}
		s.SetPageID(p.ID)
	}
	return s.Pages(), nil
}

// applyLogger ensures the options carry the runner's logger when none
// was set explicitly.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// applyImages builds the image catalog from ImagesDir when no catalog
// was provided.
func (r *Runner) applyImages(opts *Options) {
	if opts.Images == nil && opts.ImagesDir != "" {
		opts.Images = render.NewImageCatalog(os.DirFS(opts.ImagesDir))
	}
}
