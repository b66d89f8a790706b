package trace

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/pageforge/pageforge/pkg/book"
	"github.com/pageforge/pageforge/pkg/errors"
	"github.com/pageforge/pageforge/pkg/render"
)

// eventKind tags one recorded trace event. The set is closed: it
// mirrors the render.Surface operation contract exactly.
type eventKind byte

const (
	eventAddPage eventKind = iota + 1
	eventSetFont
	eventSetTextColor
	eventText
	eventImage
	eventClipRect
	eventRotate
	eventLinkArea
)

// ResolveFunc maps a link target to its current identifier.
// The reducer supplies a redirect-aware implementation so that link
// equality reflects "points at the same logical destination".
type ResolveFunc func(*book.Page) (int, error)

// ResolveAssigned resolves a page to its assigned identifier.
// Returns an UNASSIGNED_PAGE_ID error when identifier assignment has
// not run: fingerprinting identifier-less pages is undefined and the
// error must surface rather than silently skipping the link.
func ResolveAssigned(p *book.Page) (int, error) {
	if p.ID == 0 {
		return 0, errors.New(errors.ErrCodeUnassignedPageID, "page %q has no assigned identifier", p.Name)
	}
	return p.ID, nil
}

// Recorder is a render.Surface that records instead of drawing.
//
// Calls append binary-encoded events to an internal buffer; nothing is
// forwarded to a real backend and no shared state is mutated, so
// recording the same page twice yields the same trace. Link bindings
// are resolved through the configured ResolveFunc at LinkArea time,
// which is what makes a recorded trace sensitive to identifier
// redirects and nothing else.
type Recorder struct {
	resolve ResolveFunc

	buf    bytes.Buffer
	events int

	links    map[render.LinkID]*book.Page
	nextLink render.LinkID

	err error // first resolution failure, returned by Fingerprint
}

// NewRecorder creates a recorder that resolves link targets through
// resolve. A nil resolve uses [ResolveAssigned].
func NewRecorder(resolve ResolveFunc) *Recorder {
	if resolve == nil {
		resolve = ResolveAssigned
	}
	return &Recorder{
		resolve: resolve,
		links:   make(map[render.LinkID]*book.Page),
	}
}

// Events returns the number of recorded events.
func (r *Recorder) Events() int { return r.events }

// Err returns the first link-resolution failure, if any.
func (r *Recorder) Err() error { return r.err }

// AddPage records a page break.
func (r *Recorder) AddPage() {
	r.begin(eventAddPage)
}

// SetFont records a font selection.
func (r *Recorder) SetFont(family, style string, size float64) {
	r.begin(eventSetFont)
	r.writeString(family)
	r.writeString(style)
	r.writeFloat(size)
}

// SetTextColor records a text color selection.
func (r *Recorder) SetTextColor(red, g, b uint8) {
	r.begin(eventSetTextColor)
	r.buf.WriteByte(red)
	r.buf.WriteByte(g)
	r.buf.WriteByte(b)
}

// Text records a text draw.
func (r *Recorder) Text(x, y float64, s string) {
	r.begin(eventText)
	r.writeFloat(x)
	r.writeFloat(y)
	r.writeString(s)
}

// Image records an image draw. The link handle's resolved target, not
// the handle number, is recorded so traces compare by destination.
func (r *Recorder) Image(name string, x, y, w, h float64, link render.LinkID) {
	r.begin(eventImage)
	r.writeString(name)
	r.writeFloat(x)
	r.writeFloat(y)
	r.writeFloat(w)
	r.writeFloat(h)
	r.writeTarget(link)
}

// ClipRect records the clip region, then runs fn. Scope exit is not a
// separate event: the region plus the events inside fn determine the
// drawing unambiguously.
func (r *Recorder) ClipRect(x, y, w, h float64, fn func()) {
	r.begin(eventClipRect)
	r.writeFloat(x)
	r.writeFloat(y)
	r.writeFloat(w)
	r.writeFloat(h)
	fn()
}

// Rotate records the rotation, then runs fn.
func (r *Recorder) Rotate(angle, x, y float64, fn func()) {
	r.begin(eventRotate)
	r.writeFloat(angle)
	r.writeFloat(x)
	r.writeFloat(y)
	fn()
}

// AddLink allocates a link handle. Allocation itself is not an event.
func (r *Recorder) AddLink() render.LinkID {
	r.nextLink++
	return r.nextLink
}

// SetLink binds a handle to a target page. The binding is held until a
// LinkArea call materializes it; it is not an event by itself.
func (r *Recorder) SetLink(id render.LinkID, target *book.Page) {
	r.links[id] = target
}

// LinkArea records a link hot-zone with its resolved destination
// identifier. Resolution failures are sticky and surface from
// [Recorder.Fingerprint].
func (r *Recorder) LinkArea(x, y, w, h float64, id render.LinkID) {
	r.begin(eventLinkArea)
	r.writeFloat(x)
	r.writeFloat(y)
	r.writeFloat(w)
	r.writeFloat(h)
	r.writeTarget(id)
}

// begin starts a new event record.
func (r *Recorder) begin(k eventKind) {
	r.buf.WriteByte(byte(k))
	r.events++
}

func (r *Recorder) writeString(s string) {
	var lenBuf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(lenBuf[:], uint64(len(s)))
	r.buf.Write(lenBuf[:n])
	r.buf.WriteString(s)
}

func (r *Recorder) writeFloat(f float64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], math.Float64bits(f))
	r.buf.Write(b[:])
}

// writeTarget encodes the resolved identifier of a link handle's
// target, or 0 for NoLink / unbound handles.
func (r *Recorder) writeTarget(id render.LinkID) {
	resolved := 0
	if target, ok := r.links[id]; ok && target != nil {
		var err error
		resolved, err = r.resolve(target)
		if err != nil && r.err == nil {
			r.err = err
		}
	}
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(int64(resolved)))
	r.buf.Write(b[:])
}

// Ensure Recorder implements render.Surface.
var _ render.Surface = (*Recorder)(nil)
