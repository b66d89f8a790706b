package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/pageforge/pageforge/pkg/book"
	"github.com/pageforge/pageforge/pkg/pipeline"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// newInspectCmd creates the inspect command for browsing a book's
// pages interactively.
func newInspectCmd() *cobra.Command {
	var (
		images     string
		skipReduce bool
		noCache    bool
	)

	cmd := &cobra.Command{
		Use:   "inspect [manifest|book]",
		Short: "Browse the pages of a book interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd.Context(), args[0], images, skipReduce, noCache)
		},
	}

	cmd.Flags().StringVar(&images, "images", "", "directory containing page images")
	cmd.Flags().BoolVar(&skipReduce, "skip-reduce", false, "inspect without merging identical pages")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the pipeline cache")

	return cmd
}

func runInspect(ctx context.Context, input string, images string, skipReduce, noCache bool) error {
	logger := loggerFromContext(ctx)

	popts := pipeline.Options{
		SkipReduce: skipReduce,
		ImagesDir:  images,
		Logger:     logger,
	}
	if strings.HasSuffix(input, ".toml") {
		popts.Manifest = input
	} else {
		popts.BookFile = input
	}

	runner := newRunner(ctx, noCache)
	b, err := runner.Compile(ctx, popts)
	if err != nil {
		return err
	}
	if !skipReduce {
		b, err = runner.Reduce(ctx, b, popts)
		if err != nil {
			return err
		}
	}

	model := newPageListModel(b)
	_, err = tea.NewProgram(model, tea.WithContext(ctx)).Run()
	return err
}

// =============================================================================
// PageListModel - Interactive page browser
// =============================================================================

// pageListModel is the bubbletea model for browsing book pages.
type pageListModel struct {
	book   *book.Book
	cursor int
	height int
	offset int
}

func newPageListModel(b *book.Book) pageListModel {
	return pageListModel{
		book:   b,
		height: 15,
	}
}

func (m pageListModel) Init() tea.Cmd {
	return nil
}

func (m pageListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.book.Pages)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height - 10
		if m.height < 5 {
			m.height = 5
		}
	}
	return m, nil
}

func (m pageListModel) View() string {
	var b strings.Builder

	title := m.book.Title
	if title == "" {
		title = "Book"
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  %d pages", len(m.book.Pages))))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  q quit"))
	b.WriteString("\n\n")

	end := m.offset + m.height
	if end > len(m.book.Pages) {
		end = len(m.book.Pages)
	}

	for i := m.offset; i < end; i++ {
		p := m.book.Pages[i]

		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}

		line := fmt.Sprintf("%s%-20s %-9s %s", cursor, p.Name, p.Kind,
			listDimStyle.Render(fmt.Sprintf("%d link(s)", p.OutDegree())))

		if i == m.cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.detailView())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.book.Pages))))

	return b.String()
}

// detailView renders the selected page's content summary.
func (m pageListModel) detailView() string {
	p := m.book.Pages[m.cursor]

	var b strings.Builder
	b.WriteString(listDimStyle.Render(strings.Repeat("─", 44)))
	b.WriteString("\n")

	if p.Background != "" {
		b.WriteString(fmt.Sprintf("  background  %s\n", StyleValue.Render(p.Background)))
	}
	if len(p.Texts) > 0 {
		first := p.Texts[0].Value
		if len(first) > 32 {
			first = first[:32] + "…"
		}
		b.WriteString(fmt.Sprintf("  texts       %s %s\n",
			StyleValue.Render(fmt.Sprintf("%d", len(p.Texts))),
			listDimStyle.Render(fmt.Sprintf("%q", first))))
	}
	if len(p.Images) > 0 {
		b.WriteString(fmt.Sprintf("  images      %s\n", StyleValue.Render(fmt.Sprintf("%d", len(p.Images)))))
	}
	for _, slot := range p.SlotNames() {
		target := p.Actions[slot]
		if target == nil {
			continue
		}
		b.WriteString(fmt.Sprintf("  %s %s %s\n",
			listDimStyle.Render(iconArrow), slot, StyleValue.Render(target.Name)))
	}

	return b.String()
}
