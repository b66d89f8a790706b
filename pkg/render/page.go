package render

import (
	"github.com/pageforge/pageforge/pkg/book"
	"github.com/pageforge/pageforge/pkg/errors"
)

// Page geometry in abstract units. All backends share the same
// coordinate space so traces are backend-independent.
const (
	PageWidth  = 360.0
	PageHeight = 240.0

	// DefaultFontFamily is used for all text runs.
	DefaultFontFamily = "Courier"

	// DefaultTextSize is used for text runs with Size == 0.
	DefaultTextSize = 10.0

	// Action zone strip along the bottom edge of the page.
	actionZoneHeight = 24.0
	actionZoneWidth  = 80.0
	actionZoneGap    = 8.0
	actionMarginX    = 12.0
	actionFontSize   = 8.0
)

// TerminalFunc renders a transition into a terminal page category.
//
// DrawPage calls it for every action slot whose target is a victory
// page instead of emitting a regular link, because victory pages are
// drawn identically regardless of the page reached and traversing them
// would recurse through mutually-referencing terminal pages without
// bound. [DrawVictoryBanner] is the default; [TerminalNoop] is the
// override used while fingerprinting.
type TerminalFunc func(s Surface, target *book.Page) error

// TerminalNoop skips terminal transitions entirely.
// Fingerprinting uses it so that a page's fingerprint does not depend
// on which (interchangeable) victory page it reaches.
func TerminalNoop(Surface, *book.Page) error { return nil }

// DrawVictoryBanner draws the fixed "already won" banner.
// It deliberately ignores the target page: every victory transition
// renders the same, which is what makes TerminalNoop a safe override.
func DrawVictoryBanner(s Surface, _ *book.Page) error {
	s.SetFont(DefaultFontFamily, "B", 18)
	s.SetTextColor(212, 175, 55)
	s.Text(PageWidth/2-60, PageHeight/2, "YOU HAVE WON")
	return nil
}

// DrawPage renders one page onto a surface.
//
// The call sequence is fully determined by the page content and by the
// identifiers the surface resolves link targets to: background, then
// placed images (clipped and rotated as declared), then text runs,
// then action slots in sorted slot-name order. Non-terminal slots emit
// a link handle bound to the target page plus a labeled hot-zone;
// victory-kind targets go through terminal instead.
//
// A nil terminal defaults to [DrawVictoryBanner]. Pages that reference
// images require a catalog; lookup failures are returned unchanged.
func DrawPage(s Surface, p *book.Page, images *ImageCatalog, terminal TerminalFunc) error {
	if terminal == nil {
		terminal = DrawVictoryBanner
	}

	s.AddPage()

	if p.Background != "" {
		info, err := images.Info(p.Background)
		if err != nil {
			return err
		}
		s.Image(p.Background, 0, 0, float64(info.Width), float64(info.Height), NoLink)
	}

	drawImages := func() error {
		for _, img := range p.Images {
			w, h := img.W, img.H
			if w == 0 || h == 0 {
				info, err := images.Info(img.Name)
				if err != nil {
					return err
				}
				if w == 0 {
					w = float64(info.Width)
				}
				if h == 0 {
					h = float64(info.Height)
				}
			}
			if img.Rotation != 0 {
				s.Rotate(img.Rotation, img.X+w/2, img.Y+h/2, func() {
					s.Image(img.Name, img.X, img.Y, w, h, NoLink)
				})
			} else {
				s.Image(img.Name, img.X, img.Y, w, h, NoLink)
			}
		}
		return nil
	}

	var err error
	if p.Clip != nil {
		s.ClipRect(p.Clip.X, p.Clip.Y, p.Clip.W, p.Clip.H, func() {
			err = drawImages()
		})
	} else {
		err = drawImages()
	}
	if err != nil {
		return err
	}

	for _, t := range p.Texts {
		size := t.Size
		if size == 0 {
			size = DefaultTextSize
		}
		s.SetFont(DefaultFontFamily, t.Style, size)
		s.SetTextColor(t.Color.R, t.Color.G, t.Color.B)
		s.Text(t.X, t.Y, t.Value)
	}

	for i, slot := range p.SlotNames() {
		target := p.Actions[slot]
		if target == nil {
			continue
		}
		zone := actionZone(i)
		if target.Kind == book.KindVictory {
			if err := terminal(s, target); err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "terminal transition %q on page %q", slot, p.Name)
			}
			continue
		}
		id := s.AddLink()
		s.SetLink(id, target)
		s.LinkArea(zone.X, zone.Y, zone.W, zone.H, id)
		s.SetFont(DefaultFontFamily, "B", actionFontSize)
		s.SetTextColor(255, 255, 255)
		s.Text(zone.X+4, zone.Y+actionZoneHeight/2, slot)
	}

	return nil
}

// actionZone returns the hot-zone rectangle for the i-th action slot.
// Zones are laid out left to right along the bottom edge.
func actionZone(i int) book.Rect {
	return book.Rect{
		X: actionMarginX + float64(i)*(actionZoneWidth+actionZoneGap),
		Y: PageHeight - actionZoneHeight - 4,
		W: actionZoneWidth,
		H: actionZoneHeight,
	}
}
