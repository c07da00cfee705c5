// Package chunk provides a scrollable reader for a single chunk.
package chunk

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/alexandria/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/alexandria/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/alexandria/internal/core/domain"
)

// headerHeight is the number of lines above the viewport.
const headerHeight = 4

// View shows the full content and metadata of one chunk.
type View struct {
	styles   *styles.Styles
	viewport viewport.Model

	chunk      *domain.Chunk
	sourceName string
	from       messages.ViewType
	width      int
	height     int
}

// NewView creates a new chunk view.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:   s,
		viewport: viewport.New(80, 20),
		from:     messages.ViewSearch,
		width:    80,
		height:   24,
	}
}

// Open loads a chunk into the view.
func (v *View) Open(msg messages.ChunkOpened) {
	c := msg.Chunk
	v.chunk = &c
	v.sourceName = msg.SourceName
	v.from = msg.From
	v.viewport.SetContent(v.render())
	v.viewport.GotoTop()
}

// Update handles scrolling and leaving the view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc", "q":
			from := v.from
			return v, func() tea.Msg { return messages.ViewChanged{View: from} }
		}
	}

	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	return v, cmd
}

// View renders the chunk reader.
func (v *View) View() string {
	if v.chunk == nil {
		return v.styles.Muted.Render("Nothing selected.")
	}

	source := v.sourceName
	if source == "" {
		source = v.chunk.SourceID
	}

	header := lipgloss.JoinVertical(lipgloss.Left,
		v.styles.Title.Render(v.chunk.Title),
		v.styles.Kind(v.chunk.Kind)+" "+v.styles.Subtitle.Render(source),
		v.styles.Muted.Render(v.chunk.ID),
		"",
	)
	footer := v.styles.Help.Render(fmt.Sprintf("%3.0f%%  [j/k] scroll  [esc] back", v.viewport.ScrollPercent()*100))

	return lipgloss.JoinVertical(lipgloss.Left, header, v.viewport.View(), footer)
}

// render builds the scrollable body: content followed by metadata.
func (v *View) render() string {
	width := v.width - 2
	if width < 20 {
		width = 20
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Width(width).Render(v.chunk.Content))

	if len(v.chunk.Metadata) > 0 {
		keys := make([]string, 0, len(v.chunk.Metadata))
		for k := range v.chunk.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		b.WriteString("\n\n")
		b.WriteString(v.styles.Subtitle.Render("Metadata"))
		for _, k := range keys {
			b.WriteString("\n")
			b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  %s: %v", k, v.chunk.Metadata[k])))
		}
	}
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.viewport.Width = width
	v.viewport.Height = height - headerHeight - 1
	if v.viewport.Height < 1 {
		v.viewport.Height = 1
	}
	if v.chunk != nil {
		v.viewport.SetContent(v.render())
	}
}

// Chunk returns the open chunk, or nil.
func (v *View) Chunk() *domain.Chunk {
	return v.chunk
}

// ReturnView returns the view that opened this chunk.
func (v *View) ReturnView() messages.ViewType {
	return v.from
}
