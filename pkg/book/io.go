package book

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pageforge/pageforge/pkg/errors"
)

// =============================================================================
// Document - Book Serialization
// =============================================================================

// Document is the canonical serialization format for books.
// Used for CLI output files, caching and cross-tool compatibility.
//
// Action targets are referenced by page name, not identifier, so a
// document round-trips independently of any identifier assignment.
// Page order is preserved: it determines merge-survivor selection.
type Document struct {
	Title string    `json:"title,omitempty" bson:"title,omitempty"`
	Start string    `json:"start,omitempty" bson:"start,omitempty"`
	Pages []PageDoc `json:"pages" bson:"pages"`
}

// PageDoc is the serialized form of one page.
type PageDoc struct {
	Name       string            `json:"name" bson:"name"`
	Kind       string            `json:"kind,omitempty" bson:"kind,omitempty"`
	Background string            `json:"background,omitempty" bson:"background,omitempty"`
	Clip       *Rect             `json:"clip,omitempty" bson:"clip,omitempty"`
	Texts      []Text            `json:"texts,omitempty" bson:"texts,omitempty"`
	Images     []Image           `json:"images,omitempty" bson:"images,omitempty"`
	Actions    map[string]string `json:"actions,omitempty" bson:"actions,omitempty"`
}

// =============================================================================
// Book ↔ Document Conversion
// =============================================================================

// FromBook converts a book to its serialization format.
func FromBook(b *Book) Document {
	doc := Document{
		Title: b.Title,
		Pages: make([]PageDoc, len(b.Pages)),
	}
	if b.Start != nil {
		doc.Start = b.Start.Name
	}
	for i, p := range b.Pages {
		pd := PageDoc{
			Name:       p.Name,
			Background: p.Background,
			Clip:       p.Clip,
			Texts:      p.Texts,
			Images:     p.Images,
		}
		if p.Kind != KindStory {
			pd.Kind = p.Kind.String()
		}
		if len(p.Actions) > 0 {
			pd.Actions = make(map[string]string, len(p.Actions))
			for slot, target := range p.Actions {
				if target != nil {
					pd.Actions[slot] = target.Name
				}
			}
		}
		doc.Pages[i] = pd
	}
	return doc
}

// ToBook converts a document to a book, wiring action slots to their
// target pages. Returns INVALID_PAGE errors for duplicate page names,
// unknown kinds, unknown action targets or an unknown start page.
func ToBook(doc Document) (*Book, error) {
	b := &Book{
		Title: doc.Title,
		Pages: make([]*Page, len(doc.Pages)),
	}
	byName := make(map[string]*Page, len(doc.Pages))
	for i, pd := range doc.Pages {
		if pd.Name == "" {
			return nil, errors.New(errors.ErrCodeInvalidPage, "page %d has no name", i)
		}
		if _, dup := byName[pd.Name]; dup {
			return nil, errors.New(errors.ErrCodeInvalidPage, "duplicate page name %q", pd.Name)
		}
		kind, err := ParseKind(pd.Kind)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPage, err, "page %q", pd.Name)
		}
		p := &Page{
			Name:       pd.Name,
			Kind:       kind,
			Background: pd.Background,
			Clip:       pd.Clip,
			Texts:      pd.Texts,
			Images:     pd.Images,
		}
		b.Pages[i] = p
		byName[pd.Name] = p
	}
	for i, pd := range doc.Pages {
		if len(pd.Actions) == 0 {
			continue
		}
		p := b.Pages[i]
		p.Actions = make(map[string]*Page, len(pd.Actions))
		for slot, name := range pd.Actions {
			target, ok := byName[name]
			if !ok {
				return nil, errors.New(errors.ErrCodeInvalidPage,
					"page %q action %q targets unknown page %q", pd.Name, slot, name)
			}
			p.Actions[slot] = target
		}
	}
	if doc.Start != "" {
		start, ok := byName[doc.Start]
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidPage, "unknown start page %q", doc.Start)
		}
		b.Start = start
	}
	return b, nil
}

// ParseKind parses a manifest kind string. The empty string maps to
// KindStory.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "", "story":
		return KindStory, nil
	case "gameover":
		return KindGameOver, nil
	case "victory":
		return KindVictory, nil
	default:
		return KindStory, fmt.Errorf("unknown page kind %q", s)
	}
}

// =============================================================================
// Serialization API
// =============================================================================

// MarshalBook converts a book to indented JSON bytes.
func MarshalBook(b *Book) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteBook(b, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteBook writes a book as JSON to an io.Writer.
func WriteBook(b *Book, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(FromBook(b)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteBookFile writes a book to a JSON file.
// The file is created with 0644 permissions.
func WriteBookFile(b *Book, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteBook(b, f)
}

// ReadBook decodes a JSON book from an io.Reader.
func ReadBook(r io.Reader) (*Book, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return ToBook(doc)
}

// ReadBookFile reads a JSON file and returns the decoded book.
func ReadBookFile(path string) (*Book, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadBook(f)
}
