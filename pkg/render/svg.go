package render

import (
	"bytes"
	"fmt"
	"html"

	"github.com/pageforge/pageforge/pkg/book"
)

// SVGSurface is the real output backend. It renders each page into a
// standalone SVG document; in-document links become anchors of the
// form #page-N where N is the resolved target identifier.
type SVGSurface struct {
	resolve func(*book.Page) int

	pages   []*bytes.Buffer
	cur     *bytes.Buffer
	pageIDs []int

	fontFamily string
	fontStyle  string
	fontSize   float64
	color      book.RGB

	links    map[LinkID]*book.Page
	nextLink LinkID
	clipSeq  int
	depth    int // open <g> groups on the current page
}

// NewSVGSurface creates an SVG surface. The resolve function maps a
// link target to its current identifier; pass a redirect-aware
// resolver after reduction so links land on surviving pages. A nil
// resolve uses the page's own identifier.
func NewSVGSurface(resolve func(*book.Page) int) *SVGSurface {
	if resolve == nil {
		resolve = func(p *book.Page) int { return p.ID }
	}
	return &SVGSurface{
		resolve: resolve,
		links:   make(map[LinkID]*book.Page),
	}
}

// SetPageID sets the anchor identifier for the current page.
// Call it after AddPage; pages default to their 1-based sequence
// number otherwise.
func (s *SVGSurface) SetPageID(id int) {
	if len(s.pageIDs) > 0 {
		s.pageIDs[len(s.pageIDs)-1] = id
	}
}

// AddPage starts a new SVG document.
func (s *SVGSurface) AddPage() {
	s.closeGroups()
	s.cur = &bytes.Buffer{}
	s.pages = append(s.pages, s.cur)
	s.pageIDs = append(s.pageIDs, len(s.pages))
}

// SetFont selects the font for subsequent Text calls.
func (s *SVGSurface) SetFont(family, style string, size float64) {
	s.fontFamily, s.fontStyle, s.fontSize = family, style, size
}

// SetTextColor selects the fill color for subsequent Text calls.
func (s *SVGSurface) SetTextColor(r, g, b uint8) {
	s.color = book.RGB{R: r, G: g, B: b}
}

// Text draws a string with the current font and color.
func (s *SVGSurface) Text(x, y float64, str string) {
	weight, style := "normal", "normal"
	if s.fontStyle == "B" {
		weight = "bold"
	}
	if s.fontStyle == "I" {
		style = "italic"
	}
	fmt.Fprintf(s.cur,
		`  <text x="%.2f" y="%.2f" font-family="%s" font-size="%.2f" font-weight="%s" font-style="%s" fill="rgb(%d,%d,%d)">%s</text>`+"\n",
		x, y, s.fontFamily, s.fontSize, weight, style,
		s.color.R, s.color.G, s.color.B, html.EscapeString(str))
}

// Image draws the named image into the given box.
func (s *SVGSurface) Image(name string, x, y, w, h float64, link LinkID) {
	img := fmt.Sprintf(`  <image href="%s" x="%.2f" y="%.2f" width="%.2f" height="%.2f"/>`+"\n",
		html.EscapeString(name), x, y, w, h)
	if target, ok := s.links[link]; ok && link != NoLink {
		fmt.Fprintf(s.cur, "  <a href=\"#page-%d\">\n  %s  </a>\n", s.resolve(target), img)
		return
	}
	s.cur.WriteString(img)
}

// ClipRect restricts drawing done inside fn to the given rectangle.
func (s *SVGSurface) ClipRect(x, y, w, h float64, fn func()) {
	s.clipSeq++
	id := fmt.Sprintf("clip-%d-%d", len(s.pages), s.clipSeq)
	fmt.Fprintf(s.cur,
		"  <clipPath id=%q><rect x=\"%.2f\" y=\"%.2f\" width=\"%.2f\" height=\"%.2f\"/></clipPath>\n",
		id, x, y, w, h)
	fmt.Fprintf(s.cur, "  <g clip-path=\"url(#%s)\">\n", id)
	s.depth++
	fn()
	s.depth--
	s.cur.WriteString("  </g>\n")
}

// Rotate draws everything inside fn rotated by angle degrees around (x, y).
func (s *SVGSurface) Rotate(angle, x, y float64, fn func()) {
	fmt.Fprintf(s.cur, "  <g transform=\"rotate(%.2f %.2f %.2f)\">\n", angle, x, y)
	s.depth++
	fn()
	s.depth--
	s.cur.WriteString("  </g>\n")
}

// AddLink allocates a new link handle.
func (s *SVGSurface) AddLink() LinkID {
	s.nextLink++
	return s.nextLink
}

// SetLink binds a link handle to a target page.
func (s *SVGSurface) SetLink(id LinkID, target *book.Page) {
	s.links[id] = target
}

// LinkArea emits a rectangular hot-zone for a bound link handle.
// The zone is drawn as a faint outlined rectangle wrapped in an anchor
// to the resolved target page.
func (s *SVGSurface) LinkArea(x, y, w, h float64, id LinkID) {
	target, ok := s.links[id]
	if !ok {
		return
	}
	fmt.Fprintf(s.cur,
		"  <a href=\"#page-%d\">\n    <rect x=\"%.2f\" y=\"%.2f\" width=\"%.2f\" height=\"%.2f\" fill=\"rgba(40,40,40,0.85)\" stroke=\"white\" rx=\"3\"/>\n  </a>\n",
		s.resolve(target), x, y, w, h)
}

// Pages returns one finished SVG document per rendered page.
func (s *SVGSurface) Pages() [][]byte {
	s.closeGroups()
	out := make([][]byte, len(s.pages))
	for i, body := range s.pages {
		var doc bytes.Buffer
		fmt.Fprintf(&doc,
			`<svg xmlns="http://www.w3.org/2000/svg" id="page-%d" viewBox="0 0 %.0f %.0f" width="%.0f" height="%.0f">`+"\n",
			s.pageIDs[i], PageWidth, PageHeight, PageWidth, PageHeight)
		doc.Write(body.Bytes())
		doc.WriteString("</svg>\n")
		out[i] = doc.Bytes()
	}
	return out
}

// closeGroups closes any groups left open on the current page.
// DrawPage balances its own groups; this is a backstop for direct
// Surface use.
func (s *SVGSurface) closeGroups() {
	for ; s.depth > 0; s.depth-- {
		s.cur.WriteString("  </g>\n")
	}
}

// Ensure SVGSurface implements Surface.
var _ Surface = (*SVGSurface)(nil)
