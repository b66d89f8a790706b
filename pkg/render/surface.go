package render

import "github.com/pageforge/pageforge/pkg/book"

// LinkID is a handle for an in-document link, allocated by
// [Surface.AddLink] and bound to a target page by [Surface.SetLink].
type LinkID int

// NoLink marks a drawing operation that carries no link.
const NoLink LinkID = 0

// Surface is the drawing contract shared by all output backends.
//
// The operation set is closed: DrawPage only ever issues these calls,
// so a backend that implements them observes the complete render of a
// page. Implementations must not require any call ordering beyond the
// natural one (AddPage first, SetLink before the LinkArea that uses
// the handle).
//
// Implementations must not mutate shared resources as a side effect of
// drawing; the recorder backend in package trace relies on repeated
// renders of the same page producing identical call sequences.
type Surface interface {
	// AddPage starts a new output page.
	AddPage()

	// SetFont selects the font for subsequent Text calls.
	// Style is "" for regular, "B" for bold, "I" for italic.
	SetFont(family, style string, size float64)

	// SetTextColor selects the fill color for subsequent Text calls.
	SetTextColor(r, g, b uint8)

	// Text draws a string with the current font and color.
	Text(x, y float64, s string)

	// Image draws the named image into the given box. A non-zero link
	// handle makes the whole box a link hot-zone.
	Image(name string, x, y, w, h float64, link LinkID)

	// ClipRect restricts drawing done inside fn to the given rectangle.
	ClipRect(x, y, w, h float64, fn func())

	// Rotate draws everything inside fn rotated by angle degrees
	// around (x, y).
	Rotate(angle, x, y float64, fn func())

	// AddLink allocates a new link handle.
	AddLink() LinkID

	// SetLink binds a link handle to a target page. The binding must
	// resolve to the target's current identifier, not its object
	// identity, when the surface materializes the link.
	SetLink(id LinkID, target *book.Page)

	// LinkArea emits a rectangular hot-zone for a previously bound
	// link handle.
	LinkArea(x, y, w, h float64, id LinkID)
}
