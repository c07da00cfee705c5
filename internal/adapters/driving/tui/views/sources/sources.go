// Package sources provides the sources view component for the TUI.
package sources

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/alexandria/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/alexandria/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/alexandria/internal/core/domain"
	"github.com/custodia-labs/alexandria/internal/core/ports/driving"
)

// errNoSourceService is reported when the view has no service to call.
var errNoSourceService = errors.New("source service not available")

// View lists indexed sources.
type View struct {
	styles        *styles.Styles
	sourceService driving.SourceService
	ctx           context.Context

	sources  []domain.Source
	selected int
	width    int
	height   int
	err      error
	notice   string
	loading  bool
}

// NewView creates a new sources view.
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

// Init loads the sources.
func (v *View) Init() tea.Cmd {
	v.loading = true
	return v.loadSources()
}

func (v *View) loadSources() tea.Cmd {
	ctx := v.ctx
	svc := v.sourceService
	return func() tea.Msg {
		if svc == nil {
			return messages.SourcesLoaded{Err: errNoSourceService}
		}
		sources, err := svc.List(ctx)
		return messages.SourcesLoaded{Sources: sources, Err: err}
	}
}

func (v *View) removeSource(name string) tea.Cmd {
	ctx := v.ctx
	svc := v.sourceService
	return func() tea.Msg {
		if svc == nil {
			return messages.SourceRemoved{Name: name, Err: errNoSourceService}
		}
		return messages.SourceRemoved{Name: name, Err: svc.Remove(ctx, name)}
	}
}

// Update handles messages for the sources view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.SourcesLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.sources = msg.Sources
			if v.selected >= len(v.sources) {
				v.selected = max(len(v.sources)-1, 0)
			}
		}
		return v, nil

	case messages.SourceRemoved:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.notice = fmt.Sprintf("Removed %s", msg.Name)
		v.loading = true
		return v, v.loadSources()
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	v.notice = ""
	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
		}
	case "down", "j":
		if v.selected < len(v.sources)-1 {
			v.selected++
		}
	case "enter":
		if src, ok := v.current(); ok {
			return v, func() tea.Msg { return messages.SourceSelected{Source: src} }
		}
	case "d", "delete":
		if src, ok := v.current(); ok {
			return v, v.removeSource(src.Name)
		}
	case "r":
		v.loading = true
		return v, v.loadSources()
	case "esc", "tab", "/":
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewSearch} }
	case "q":
		return v, func() tea.Msg { return messages.Quit{} }
	}
	return v, nil
}

func (v *View) current() (domain.Source, bool) {
	if v.selected < 0 || v.selected >= len(v.sources) {
		return domain.Source{}, false
	}
	return v.sources[v.selected], true
}

// View renders the sources view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Indexed sources"))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading sources..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case len(v.sources) == 0:
		b.WriteString(v.styles.Muted.Render("No APIs indexed yet. Run 'alexandria ingest' first."))
	default:
		for i := range v.sources {
			b.WriteString(v.renderSource(i, &v.sources[i]))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	if v.notice != "" {
		b.WriteString(v.styles.Success.Render(v.notice))
		b.WriteString("\n")
	}
	b.WriteString(v.styles.Help.Render("[enter] endpoints  [d] remove  [r] reload  [esc] search  [q] quit"))

	return b.String()
}

func (v *View) renderSource(index int, src *domain.Source) string {
	indicator := "  "
	if index == v.selected {
		indicator = "> "
	}

	label := "[api]"
	if !src.HasSpec() {
		label = "[docs]"
	}

	detail := src.Version
	if detail != "" {
		detail = "v" + detail
	}
	if !src.UpdatedAt.IsZero() {
		detail = strings.TrimSpace(detail + "  updated " + src.UpdatedAt.Format("2006-01-02 15:04"))
	}

	if index == v.selected {
		return v.styles.Selected.Render(fmt.Sprintf("%s%-7s%s", indicator, label, src.Name)) +
			"  " + v.styles.Muted.Render(detail)
	}
	return v.styles.Normal.Render(indicator) +
		v.styles.Subtitle.Render(fmt.Sprintf("%-7s", label)) +
		v.styles.Normal.Render(src.Name) +
		"  " + v.styles.Muted.Render(detail)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// Sources returns the loaded sources.
func (v *View) Sources() []domain.Source {
	return v.sources
}

// SelectedIndex returns the selected source index.
func (v *View) SelectedIndex() int {
	return v.selected
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
