package trace

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/pageforge/pageforge/pkg/book"
	"github.com/pageforge/pageforge/pkg/render"
)

// Fingerprint is the SHA-256 of an encoded render trace, hex encoded.
//
// Fingerprint equality is used as a surrogate for exact trace
// equality. A collision would merge two genuinely different pages
// without any error; 256 bits makes that a design assumption rather
// than a realistic failure mode, and no exact-trace fallback is
// performed.
type Fingerprint string

// Fingerprint reduces the recorded trace to a fingerprint.
// Returns the first link-resolution error encountered while
// recording, since a trace with unresolved links is meaningless.
func (r *Recorder) Fingerprint() (Fingerprint, error) {
	if r.err != nil {
		return "", r.err
	}
	sum := sha256.Sum256(r.buf.Bytes())
	return Fingerprint(hex.EncodeToString(sum[:])), nil
}

// PageFingerprint renders one page against a fresh recorder and
// returns the trace fingerprint.
//
// The terminal "already won" transition is forced to a no-op: victory
// pages render identically regardless of the page reached, and
// traversing them would recurse through mutually-referencing terminal
// pages without bound. Every page reachable through the page's action
// slots must already have an identifier (see [ResolveAssigned]).
//
// Calling PageFingerprint twice on an unmutated page yields the same
// value; calling it after a linked target's identifier was redirected
// yields a value that reflects the new destination only.
func PageFingerprint(p *book.Page, images *render.ImageCatalog, resolve ResolveFunc) (Fingerprint, error) {
	rec := NewRecorder(resolve)
	if err := render.DrawPage(rec, p, images, render.TerminalNoop); err != nil {
		return "", err
	}
	return rec.Fingerprint()
}
