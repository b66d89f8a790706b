package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/pageforge/pageforge/pkg/book"
)

// DOTOptions configures page-graph export.
type DOTOptions struct {
	// Detailed includes the page kind and degree counts in node labels.
	// When false, only the page name and identifier are shown.
	Detailed bool
}

// ToDOT converts a book's page graph to Graphviz DOT format.
// One node per page, one edge per bound action slot, labeled with the
// slot name. The resulting DOT string can be rendered with [DOTToSVG].
//
// Terminal pages (gameover, victory) are filled to stand out, since
// they are the usual source of duplicate clusters.
func ToDOT(b *book.Book, opts DOTOptions) string {
	var buf bytes.Buffer
	buf.WriteString("digraph pages {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12, margin=\"0.15,0.08\"];\n")
	buf.WriteString("\n")

	for _, p := range b.Pages {
		label := dotLabel(p, opts.Detailed)
		attrs := []string{fmt.Sprintf("label=%q", label)}
		switch p.Kind {
		case book.KindGameOver:
			attrs = append(attrs, "fillcolor=mistyrose")
		case book.KindVictory:
			attrs = append(attrs, "fillcolor=lightgoldenrod")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", p.Name, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, p := range b.Pages {
		for _, slot := range p.SlotNames() {
			target := p.Actions[slot]
			if target == nil {
				continue
			}
			fmt.Fprintf(&buf, "  %q -> %q [label=%q, fontsize=9];\n", p.Name, target.Name, slot)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func dotLabel(p *book.Page, detailed bool) string {
	label := p.Name
	if p.ID != 0 {
		label = fmt.Sprintf("%s (#%d)", p.Name, p.ID)
	}
	if !detailed {
		return label
	}
	return fmt.Sprintf("%s\nkind: %s\nout: %d", label, p.Kind, p.OutDegree())
}

// DOTToSVG renders a DOT graph to SVG using Graphviz.
// Returns SVG bytes ready for display or further conversion with
// [ToPDF] or [ToPNG].
func DOTToSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the Graphviz SVG root element to a
// zero-origin viewBox so downstream converters scale it predictably.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
