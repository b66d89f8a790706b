package story

import (
	"os"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/pageforge/pageforge/pkg/book"
	"github.com/pageforge/pageforge/pkg/errors"
)

// Manifest is the decoded TOML authoring format.
type Manifest struct {
	Title string                  `toml:"title"`
	Start string                  `toml:"start"`
	Pages map[string]ManifestPage `toml:"page"`
}

// ManifestPage is one authored page.
type ManifestPage struct {
	Kind       string            `toml:"kind"`
	Background string            `toml:"background"`
	Clip       []float64         `toml:"clip"`
	Texts      []ManifestText    `toml:"text"`
	Images     []ManifestImage   `toml:"image"`
	Choices    map[string]string `toml:"choices"`
}

// ManifestText is one positioned text run.
type ManifestText struct {
	X     float64 `toml:"x"`
	Y     float64 `toml:"y"`
	Value string  `toml:"value"`
	Size  float64 `toml:"size"`
	Style string  `toml:"style"`
	Color []uint8 `toml:"color"`
}

// ManifestImage is one placed image.
type ManifestImage struct {
	Name     string  `toml:"name"`
	X        float64 `toml:"x"`
	Y        float64 `toml:"y"`
	Width    float64 `toml:"width"`
	Height   float64 `toml:"height"`
	Rotation float64 `toml:"rotation"`
}

// LoadFile reads and compiles a manifest from disk.
func LoadFile(path string) (*book.Book, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeFileNotFound, "story manifest not found: %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidStory, err, "reading story manifest")
	}
	return Compile(data)
}

// Compile parses TOML manifest bytes and compiles them into a book.
func Compile(data []byte) (*book.Book, error) {
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidStory, err, "parsing story manifest")
	}
	return m.Book()
}

// Book compiles the manifest into a book.
func (m *Manifest) Book() (*book.Book, error) {
	if len(m.Pages) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidStory, "story has no pages")
	}
	if m.Start == "" {
		return nil, errors.New(errors.ErrCodeInvalidStory, "story has no start page")
	}
	if _, ok := m.Pages[m.Start]; !ok {
		return nil, errors.New(errors.ErrCodeInvalidStory, "start page %q does not exist", m.Start)
	}

	pages := make(map[string]*book.Page, len(m.Pages))
	for name, mp := range m.Pages {
		p, err := compilePage(name, mp)
		if err != nil {
			return nil, err
		}
		pages[name] = p
	}

	// Resolve choice targets after all pages exist, so ordering in the
	// manifest never matters.
	for name, mp := range m.Pages {
		if len(mp.Choices) == 0 {
			continue
		}
		actions := make(map[string]*book.Page, len(mp.Choices))
		for slot, target := range mp.Choices {
			tp, ok := pages[target]
			if !ok {
				return nil, errors.New(errors.ErrCodeInvalidStory,
					"page %q choice %q points at unknown page %q", name, slot, target)
			}
			actions[slot] = tp
		}
		pages[name].Actions = actions
	}

	names := make([]string, 0, len(m.Pages))
	for name := range m.Pages {
		if name != m.Start {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	ordered := make([]*book.Page, 0, len(pages))
	ordered = append(ordered, pages[m.Start])
	for _, name := range names {
		ordered = append(ordered, pages[name])
	}

	return &book.Book{
		Title: m.Title,
		Start: pages[m.Start],
		Pages: ordered,
	}, nil
}

func compilePage(name string, mp ManifestPage) (*book.Page, error) {
	kind := book.KindStory
	if mp.Kind != "" {
		k, err := book.ParseKind(mp.Kind)
		if err != nil {
			return nil, errors.New(errors.ErrCodeInvalidStory,
				"page %q has unknown kind %q", name, mp.Kind)
		}
		kind = k
	}

	p := &book.Page{
		Name:       name,
		Kind:       kind,
		Background: mp.Background,
	}

	switch len(mp.Clip) {
	case 0:
	case 4:
		p.Clip = &book.Rect{X: mp.Clip[0], Y: mp.Clip[1], W: mp.Clip[2], H: mp.Clip[3]}
	default:
		return nil, errors.New(errors.ErrCodeInvalidStory,
			"page %q clip must have exactly 4 components", name)
	}

	for i, mt := range mp.Texts {
		t := book.Text{X: mt.X, Y: mt.Y, Value: mt.Value, Size: mt.Size, Style: mt.Style}
		switch len(mt.Color) {
		case 0:
		case 3:
			t.Color = book.RGB{R: mt.Color[0], G: mt.Color[1], B: mt.Color[2]}
		default:
			return nil, errors.New(errors.ErrCodeInvalidStory,
				"page %q text %d color must have exactly 3 components", name, i)
		}
		p.Texts = append(p.Texts, t)
	}

	for i, mi := range mp.Images {
		if mi.Name == "" {
			return nil, errors.New(errors.ErrCodeInvalidStory,
				"page %q image %d has no name", name, i)
		}
		p.Images = append(p.Images, book.Image{
			Name:     mi.Name,
			X:        mi.X,
			Y:        mi.Y,
			W:        mi.Width,
			H:        mi.Height,
			Rotation: mi.Rotation,
		})
	}

	return p, nil
}
