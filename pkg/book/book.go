package book

import (
	"maps"
	"slices"
)

// Kind classifies a page. The kind decides how the renderer treats
// transitions into the page: victory pages are terminal and are drawn
// inline as a fixed banner instead of being traversed.
type Kind int

const (
	// KindStory is a regular narrative page.
	KindStory Kind = iota
	// KindGameOver is a terminal losing page. It renders like a story
	// page and typically has no outgoing action slots.
	KindGameOver
	// KindVictory is a terminal winning page. Transitions into a victory
	// page are exempt from traversal during rendering: the renderer
	// draws a fixed banner that does not depend on the target page.
	KindVictory
)

// String returns the manifest spelling of the kind.
func (k Kind) String() string {
	switch k {
	case KindGameOver:
		return "gameover"
	case KindVictory:
		return "victory"
	default:
		return "story"
	}
}

// RGB is a 24-bit text color.
type RGB struct {
	R uint8 `json:"r" bson:"r"`
	G uint8 `json:"g" bson:"g"`
	B uint8 `json:"b" bson:"b"`
}

// Text is a positioned text run on a page.
type Text struct {
	X     float64 `json:"x" bson:"x"`
	Y     float64 `json:"y" bson:"y"`
	Size  float64 `json:"size,omitempty" bson:"size,omitempty"`   // 0 = renderer default
	Style string  `json:"style,omitempty" bson:"style,omitempty"` // "", "B" or "I"
	Color RGB     `json:"color,omitempty" bson:"color,omitempty"`
	Value string  `json:"value" bson:"value"`
}

// Image is a placed image on a page. Width and height of 0 mean
// "use the intrinsic dimensions from the image catalog".
type Image struct {
	Name     string  `json:"name" bson:"name"`
	X        float64 `json:"x" bson:"x"`
	Y        float64 `json:"y" bson:"y"`
	W        float64 `json:"w,omitempty" bson:"w,omitempty"`
	H        float64 `json:"h,omitempty" bson:"h,omitempty"`
	Rotation float64 `json:"rotation,omitempty" bson:"rotation,omitempty"` // degrees, counterclockwise
}

// Rect is an axis-aligned rectangle in page coordinates.
type Rect struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
	W float64 `json:"w" bson:"w"`
	H float64 `json:"h" bson:"h"`
}

// Page is one renderable node in the content graph.
//
// ID is 0 until AssignIdentifiers runs. Everything except ID is
// immutable input from the reducer's point of view.
type Page struct {
	ID         int             // unique identifier, assigned before reduction (0 = unassigned)
	Name       string          // stable human-readable name from the story manifest
	Kind       Kind            // story, gameover or victory
	Background string          // background image name ("" = none)
	Clip       *Rect           // optional clip region applied to placed images
	Texts      []Text          // text runs, drawn in order
	Images     []Image         // placed images, drawn in order
	Actions    map[string]*Page // action slot -> target page (nil = no transition)
}

// SlotNames returns the page's action slot names in sorted order.
// Rendering iterates slots in this order so that the emitted trace is
// deterministic regardless of map iteration order.
func (p *Page) SlotNames() []string {
	return slices.Sorted(maps.Keys(p.Actions))
}

// OutDegree returns the number of bound (non-nil) action slots.
func (p *Page) OutDegree() int {
	n := 0
	for _, t := range p.Actions {
		if t != nil {
			n++
		}
	}
	return n
}

// Book is an ordered page set with a designated start page.
type Book struct {
	Title string
	Start *Page
	Pages []*Page
}

// PageCount returns the number of pages in the book.
func (b *Book) PageCount() int { return len(b.Pages) }

// PageByName returns the page with the given name and true,
// or nil and false if no page has that name.
func (b *Book) PageByName(name string) (*Page, bool) {
	for _, p := range b.Pages {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}
