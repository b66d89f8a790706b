package render

import (
	"strings"
	"testing"

	"github.com/pageforge/pageforge/pkg/book"
	"github.com/pageforge/pageforge/pkg/errors"
)

func linkedPages() *book.Book {
	intro := &book.Page{
		ID:    1,
		Name:  "intro",
		Texts: []book.Text{{X: 20, Y: 30, Value: "choose"}},
	}
	end := &book.Page{ID: 2, Name: "end", Kind: book.KindGameOver}
	intro.Actions = map[string]*book.Page{"next": end}
	return &book.Book{Title: "t", Start: intro, Pages: []*book.Page{intro, end}}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(linkedPages(), DOTOptions{})

	if !strings.HasPrefix(dot, "digraph pages {") {
		t.Error("DOT output should start with a digraph")
	}
	if !strings.Contains(dot, `"intro" -> "end" [label="next"`) {
		t.Errorf("missing slot-labeled edge:\n%s", dot)
	}
	if !strings.Contains(dot, "fillcolor=mistyrose") {
		t.Error("gameover pages should be filled")
	}
}

func TestToDOTDetailed(t *testing.T) {
	dot := ToDOT(linkedPages(), DOTOptions{Detailed: true})
	if !strings.Contains(dot, "kind: gameover") {
		t.Error("detailed labels should include the page kind")
	}
	if !strings.Contains(dot, "out: 1") {
		t.Error("detailed labels should include the out-degree")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="134pt" height="116pt" viewBox="0.00 0.00 134.00 116.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))

	if !strings.Contains(out, `viewBox="0 0 134.00 116.00"`) {
		t.Errorf("viewBox not normalized: %s", out)
	}
	if strings.Contains(out, "pt") {
		t.Errorf("pt units should be stripped from the root element: %s", out)
	}
}

func TestNormalizeViewBoxPassthrough(t *testing.T) {
	in := []byte(`<svg><g/></svg>`)
	if got := string(normalizeViewBox(in)); got != string(in) {
		t.Errorf("SVG without viewBox should pass through unchanged: %s", got)
	}
}

func TestSVGSurfaceDrawPage(t *testing.T) {
	b := linkedPages()

	s := NewSVGSurface(nil)
	for _, p := range b.Pages {
		if err := DrawPage(s, p, nil, nil); err != nil {
			t.Fatalf("DrawPage error: %v", err)
		}
		s.SetPageID(p.ID)
	}

	pages := s.Pages()
	if got, want := len(pages), 2; got != want {
		t.Fatalf("page count = %d, want %d", got, want)
	}

	first := string(pages[0])
	if !strings.Contains(first, `id="page-1"`) {
		t.Error("first page should carry its anchor id")
	}
	if !strings.Contains(first, `href="#page-2"`) {
		t.Errorf("link should anchor to the target page:\n%s", first)
	}
	if !strings.Contains(first, ">choose</text>") {
		t.Error("text run missing from SVG")
	}
	// Slot caption is drawn inside the hot-zone.
	if !strings.Contains(first, ">next</text>") {
		t.Error("slot caption missing from SVG")
	}
}

func TestSVGSurfaceEscapesText(t *testing.T) {
	p := &book.Page{
		ID:    1,
		Name:  "p",
		Texts: []book.Text{{X: 10, Y: 20, Value: "<b> & co"}},
	}
	s := NewSVGSurface(nil)
	if err := DrawPage(s, p, nil, nil); err != nil {
		t.Fatalf("DrawPage error: %v", err)
	}
	out := string(s.Pages()[0])
	if strings.Contains(out, "<b>") {
		t.Error("text content must be escaped")
	}
	if !strings.Contains(out, "&lt;b&gt; &amp; co") {
		t.Errorf("escaped text missing:\n%s", out)
	}
}

func TestDrawPageVictoryBanner(t *testing.T) {
	win := &book.Page{ID: 2, Name: "win", Kind: book.KindVictory}
	p := &book.Page{ID: 1, Name: "door"}
	p.Actions = map[string]*book.Page{"enter": win}

	s := NewSVGSurface(nil)
	if err := DrawPage(s, p, nil, nil); err != nil {
		t.Fatalf("DrawPage error: %v", err)
	}
	out := string(s.Pages()[0])
	if !strings.Contains(out, "YOU HAVE WON") {
		t.Error("victory transition should draw the banner")
	}
	if strings.Contains(out, `href="#page-2"`) {
		t.Error("victory transition should not emit a link")
	}
}

func TestDrawPageMissingImage(t *testing.T) {
	p := &book.Page{ID: 1, Name: "p", Background: "missing.png"}

	s := NewSVGSurface(nil)
	err := DrawPage(s, p, nil, nil)
	if err == nil {
		t.Fatal("missing background image should fail")
	}
	if got, want := errors.GetCode(err), errors.ErrCodeImageNotFound; got != want {
		t.Errorf("error code = %s, want %s", got, want)
	}
}

func TestDrawPageIntrinsicImageSize(t *testing.T) {
	catalog := NewStaticCatalog(map[string]ImageInfo{
		"torch.png": {Width: 32, Height: 48},
	})
	p := &book.Page{
		ID:     1,
		Name:   "p",
		Images: []book.Image{{Name: "torch.png", X: 100, Y: 50}},
	}

	s := NewSVGSurface(nil)
	if err := DrawPage(s, p, catalog, nil); err != nil {
		t.Fatalf("DrawPage error: %v", err)
	}
	out := string(s.Pages()[0])
	if !strings.Contains(out, `width="32.00" height="48.00"`) {
		t.Errorf("intrinsic image dimensions missing:\n%s", out)
	}
}

func TestStaticCatalog(t *testing.T) {
	catalog := NewStaticCatalog(map[string]ImageInfo{"a.png": {Width: 10, Height: 20}})

	info, err := catalog.Info("a.png")
	if err != nil {
		t.Fatalf("Info error: %v", err)
	}
	if info.Width != 10 || info.Height != 20 {
		t.Errorf("Info = %+v, want 10x20", info)
	}

	if _, err := catalog.Info("missing.png"); err == nil {
		t.Error("unknown image should fail")
	}
}

func TestActionZoneLayout(t *testing.T) {
	z0 := actionZone(0)
	z1 := actionZone(1)
	if z1.X <= z0.X {
		t.Error("zones should advance left to right")
	}
	if z0.Y != z1.Y {
		t.Error("zones should share the bottom strip")
	}
	if z0.Y+z0.H > PageHeight {
		t.Error("zones must fit inside the page")
	}
}
