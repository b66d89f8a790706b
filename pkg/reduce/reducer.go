package reduce

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/pageforge/pageforge/pkg/book"
	"github.com/pageforge/pageforge/pkg/observability"
	"github.com/pageforge/pageforge/pkg/render"
	"github.com/pageforge/pageforge/pkg/trace"
)

// DefaultMinRemoved is the minimum number of pages a pass must remove
// for another pass to be worth running. A tuned constant, not a
// derived one: without a floor, pathological inputs force dozens of
// near-empty passes for diminishing returns. Accepting residual
// non-minimality in exchange for bounded work is deliberate.
const DefaultMinRemoved = 25

// Options configures a reduction run.
type Options struct {
	// SinglePass stops after the first scan-and-merge pass. The
	// incoming-edge cascade is synchronous within a pass, so a single
	// pass already catches every merge that does not depend on a
	// previous pass's redirects.
	SinglePass bool

	// MinRemoved is the per-pass removal floor below which iteration
	// stops early. 0 means DefaultMinRemoved; 1 disables the floor
	// (any progress at all continues iteration).
	MinRemoved int

	// MaxPasses is a defensive hard cap on pass count. 0 means no cap;
	// the floor and the zero-removal check are the normal stopping
	// conditions.
	MaxPasses int

	// Images is the shared image catalog consulted while rendering.
	// May be nil for books that reference no images.
	Images *render.ImageCatalog

	// Logger receives per-pass progress. Defaults to a discard logger.
	Logger *log.Logger
}

// Result is the outcome of a reduction run.
type Result struct {
	// RunID uniquely identifies this run in logs and diagnostics.
	RunID string

	// Pages are the surviving pages, in original book order.
	Pages []*book.Page

	// Redirects resolves any pre-reduction identifier to its
	// surviving representative.
	Redirects *Redirects

	// Removed is the total number of pages merged away.
	Removed int

	// Passes is the number of scan-and-merge passes executed.
	Passes int

	// RemovedPercent is Removed as a percentage of the input page
	// count. When iteration stopped at the MinRemoved floor this is
	// how callers detect (soft) non-convergence and decide whether to
	// re-run with a lower floor.
	RemovedPercent float64
}

// Resolve returns the surviving identifier for a page.
func (r *Result) Resolve(p *book.Page) int {
	return r.Redirects.Resolve(p.ID)
}

// Book materializes the reduced page set as a standalone book.
//
// Surviving pages are copied with their action slots rewired to the
// surviving representatives, so the result renders correctly without
// the redirect table. Identifiers and page order are preserved;
// survivors are not renumbered.
func (r *Result) Book(title string, start *book.Page) *book.Book {
	byID := make(map[int]*book.Page, len(r.Pages))
	copies := make([]*book.Page, len(r.Pages))
	for i, p := range r.Pages {
		c := *p
		c.Actions = nil
		copies[i] = &c
		byID[p.ID] = &c
	}
	for i, p := range r.Pages {
		if len(p.Actions) == 0 {
			continue
		}
		actions := make(map[string]*book.Page, len(p.Actions))
		for slot, target := range p.Actions {
			if target == nil {
				continue
			}
			actions[slot] = byID[r.Redirects.Resolve(target.ID)]
		}
		copies[i].Actions = actions
	}
	b := &book.Book{Title: title, Pages: copies}
	if start != nil {
		b.Start = byID[r.Redirects.Resolve(start.ID)]
	}
	return b
}

// fingerprintedPage wraps one page with its current fingerprint and
// the pages holding an incoming action-slot reference to it. The
// fingerprint field is recomputed in place whenever one of the page's
// link targets is redirected.
type fingerprintedPage struct {
	page        *book.Page
	fingerprint trace.Fingerprint
	incoming    []*fingerprintedPage
}

// Reduce merges observably identical pages in the book and returns
// the surviving set.
//
// Identifiers are (re)assigned first; the pages themselves are never
// mutated beyond that. The scan is strictly sequential: each merge
// redirects the duplicate's identifier and synchronously
// re-fingerprints every page linking into it before the scan moves
// on, because later pages in the same pass may only match once those
// fingerprints are fresh. Representative selection is first-seen in
// book order.
//
// The context is passed to observability hooks only; reduction itself
// does not suspend and honors no cancellation beyond the pass cap.
func Reduce(ctx context.Context, b *book.Book, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	minRemoved := opts.MinRemoved
	if minRemoved == 0 {
		minRemoved = DefaultMinRemoved
	}

	if err := book.AssignIdentifiers(b); err != nil {
		return nil, err
	}

	redirects := NewRedirects()
	resolve := func(p *book.Page) (int, error) {
		id, err := trace.ResolveAssigned(p)
		if err != nil {
			return 0, err
		}
		return redirects.Resolve(id), nil
	}

	working, err := buildFingerprinted(b, opts.Images, resolve)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger.Debug("starting page reducer", "run", runID, "pages", len(working))

	totalRemoved, passes := 0, 0
	for {
		passes++
		passStart := time.Now()
		observability.Reducer().OnPassStart(ctx, passes, len(working))

		representatives := make(map[trace.Fingerprint]*book.Page, len(working))
		filtered := make([]*fingerprintedPage, 0, len(working))

		for _, fp := range working {
			rep, seen := representatives[fp.fingerprint]
			if !seen {
				representatives[fp.fingerprint] = fp.page
				filtered = append(filtered, fp)
				continue
			}

			// Duplicate: absorb into the representative.
			if err := redirects.Alias(fp.page.ID, rep.ID); err != nil {
				return nil, err
			}
			observability.Reducer().OnMerge(ctx, fp.page.ID, rep.ID)

			// The redirect changed how every page linking into the
			// duplicate renders its links; refresh those fingerprints
			// now so later entries in this pass see them.
			for _, in := range fp.incoming {
				f, err := trace.PageFingerprint(in.page, opts.Images, resolve)
				if err != nil {
					return nil, err
				}
				in.fingerprint = f
			}
		}

		removed := len(working) - len(filtered)
		totalRemoved += removed
		working = filtered
		observability.Reducer().OnPassComplete(ctx, passes, removed, time.Since(passStart))
		logger.Debug("reduction pass complete",
			"run", runID, "pass", passes, "removed", removed, "surviving", len(working))

		if removed == 0 || opts.SinglePass || removed < minRemoved {
			break
		}
		if opts.MaxPasses > 0 && passes >= opts.MaxPasses {
			break
		}
	}

	pages := make([]*book.Page, len(working))
	for i, fp := range working {
		pages[i] = fp.page
	}

	pct := 0.0
	if len(b.Pages) > 0 {
		pct = 100 * float64(totalRemoved) / float64(len(b.Pages))
	}
	logger.Info("page set reduced",
		"run", runID, "removed", totalRemoved, "passes", passes,
		"surviving", len(pages), "removed_pct", pct)

	return &Result{
		RunID:          runID,
		Pages:          pages,
		Redirects:      redirects,
		Removed:        totalRemoved,
		Passes:         passes,
		RemovedPercent: pct,
	}, nil
}

// buildFingerprinted computes the initial fingerprint for every page
// and populates the incoming-edge sets from the books' action slots.
// The result has one entry per input page, in book order.
func buildFingerprinted(b *book.Book, images *render.ImageCatalog, resolve trace.ResolveFunc) ([]*fingerprintedPage, error) {
	pages := make([]*fingerprintedPage, 0, len(b.Pages))
	byID := make(map[int]*fingerprintedPage, len(b.Pages))
	for _, p := range b.Pages {
		f, err := trace.PageFingerprint(p, images, resolve)
		if err != nil {
			return nil, err
		}
		fp := &fingerprintedPage{page: p, fingerprint: f}
		pages = append(pages, fp)
		byID[p.ID] = fp
	}
	for _, fp := range pages {
		for _, target := range fp.page.Actions {
			if target == nil {
				continue
			}
			byID[target.ID].incoming = append(byID[target.ID].incoming, fp)
		}
	}
	return pages, nil
}
