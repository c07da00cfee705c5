// Package endpoints lists the endpoints of one indexed API.
package endpoints

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/alexandria/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/alexandria/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/alexandria/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/alexandria/internal/core/domain"
	"github.com/custodia-labs/alexandria/internal/core/ports/driving"
)

var errNoSourceService = errors.New("source service not available")

// View lists endpoint chunks with their summaries.
type View struct {
	styles        *styles.Styles
	sourceService driving.SourceService
	ctx           context.Context

	source    domain.Source
	endpoints []domain.Chunk
	selected  int
	width     int
	height    int
	err       error
	loading   bool
}

// NewView creates a new endpoints view.
func NewView(s *styles.Styles, sourceService driving.SourceService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:        s,
		sourceService: sourceService,
		ctx:           context.Background(),
		width:         80,
		height:        24,
	}
}

// WithContext sets the context for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// SetSource switches to a source and loads its endpoints.
func (v *View) SetSource(src domain.Source) tea.Cmd {
	v.source = src
	v.endpoints = nil
	v.selected = 0
	v.err = nil
	v.loading = true

	ctx := v.ctx
	svc := v.sourceService
	name := src.Name
	return func() tea.Msg {
		if svc == nil {
			return messages.EndpointsLoaded{SourceName: name, Err: errNoSourceService}
		}
		chunks, err := svc.Endpoints(ctx, name)
		return messages.EndpointsLoaded{SourceName: name, Endpoints: chunks, Err: err}
	}
}

// Update handles messages for the endpoints view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.EndpointsLoaded:
		if msg.SourceName != v.source.Name {
			return v, nil
		}
		v.loading = false
		v.err = msg.Err
		v.endpoints = msg.Endpoints
		return v, nil
	}
	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
		}
	case "down", "j":
		if v.selected < len(v.endpoints)-1 {
			v.selected++
		}
	case "enter":
		if v.selected < len(v.endpoints) {
			opened := messages.ChunkOpened{
				Chunk:      v.endpoints[v.selected],
				SourceName: v.source.Name,
				From:       messages.ViewEndpoints,
			}
			return v, func() tea.Msg { return opened }
		}
	case "esc":
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewSources} }
	case "q":
		return v, func() tea.Msg { return messages.Quit{} }
	}
	return v, nil
}

// View renders the endpoint list.
func (v *View) View() string {
	var b strings.Builder

	title := v.source.Name
	if v.source.Version != "" {
		title += " v" + v.source.Version
	}
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading endpoints..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case len(v.endpoints) == 0:
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("No endpoints found for %q.", v.source.Name)))
	default:
		b.WriteString(v.styles.Subtitle.Render(fmt.Sprintf("Endpoints (%d)", len(v.endpoints))))
		b.WriteString("\n")
		start, end := list.Window(v.selected, v.height-6, len(v.endpoints))
		for i := start; i < end; i++ {
			b.WriteString(v.renderEndpoint(i, &v.endpoints[i]))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[enter] read  [esc] sources  [q] quit"))
	return b.String()
}

func (v *View) renderEndpoint(index int, c *domain.Chunk) string {
	indicator := "  "
	if index == v.selected {
		indicator = "> "
	}

	title := c.Title
	if method, path := strings.ToUpper(c.MetadataString("method")), c.MetadataString("path"); method != "" && path != "" {
		title = fmt.Sprintf("%-7s %s", method, path)
	}

	summary := c.MetadataString("summary")
	if summary != "" {
		maxSummary := v.width - len([]rune(title)) - 8
		if maxSummary < 10 {
			maxSummary = 10
		}
		summary = list.Truncate(summary, maxSummary)
	}

	if index == v.selected {
		return v.styles.Selected.Render(indicator+title) + "  " + v.styles.Muted.Render(summary)
	}
	return v.styles.Normal.Render(indicator+title) + "  " + v.styles.Muted.Render(summary)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// Source returns the current source.
func (v *View) Source() domain.Source {
	return v.source
}

// Endpoints returns the loaded endpoints.
func (v *View) Endpoints() []domain.Chunk {
	return v.endpoints
}

// SelectedIndex returns the selected endpoint index.
func (v *View) SelectedIndex() int {
	return v.selected
}
