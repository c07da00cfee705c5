package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/alexandria/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/alexandria/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/alexandria/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/alexandria/internal/adapters/driving/tui/views/chunk"
	"github.com/custodia-labs/alexandria/internal/adapters/driving/tui/views/endpoints"
	"github.com/custodia-labs/alexandria/internal/adapters/driving/tui/views/search"
	"github.com/custodia-labs/alexandria/internal/adapters/driving/tui/views/sources"
)

// App is the root TUI model. It owns every view and routes messages to
// the active one.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap
	help   help.Model

	searchView    *search.View
	sourcesView   *sources.View
	endpointsView *endpoints.View
	chunkView     *chunk.View

	currentView messages.ViewType
	width       int
	height      int
	ready       bool
}

var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	h := help.New()
	h.ShowAll = true

	return &App{
		ports:         ports,
		ctx:           context.Background(),
		styles:        s,
		keymap:        km,
		help:          h,
		searchView:    search.NewView(s, km, ports.Search, ports.Source),
		sourcesView:   sources.NewView(s, ports.Source),
		endpointsView: endpoints.NewView(s, ports.Source),
		chunkView:     chunk.NewView(s),
		currentView:   messages.ViewSearch,
	}, nil
}

// WithContext sets the context used for every service call.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.searchView.WithContext(ctx)
	a.sourcesView.WithContext(ctx)
	a.endpointsView.WithContext(ctx)
	return a
}

// WithSearchLimit sets the number of results requested per query.
func (a *App) WithSearchLimit(limit int) *App {
	a.searchView.WithLimit(limit)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("alexandria"),
		a.searchView.Init(),
	)
}

// Update implements tea.Model.
//
//nolint:gocyclo // central message router
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.currentView == messages.ViewHelp {
			switch msg.String() {
			case "esc", "?", "q":
				a.currentView = messages.ViewSearch
			}
			return a, nil
		}
		return a, a.forward(msg)

	case messages.ViewChanged:
		a.currentView = msg.View
		if msg.View == messages.ViewSources {
			return a, a.sourcesView.Init()
		}
		return a, nil

	case messages.SearchCompleted:
		a.searchView, cmd = a.searchView.Update(msg)
		return a, cmd

	case messages.SourcesLoaded, messages.SourceRemoved:
		a.sourcesView, cmd = a.sourcesView.Update(msg)
		return a, cmd

	case messages.SourceSelected:
		a.currentView = messages.ViewEndpoints
		return a, a.endpointsView.SetSource(msg.Source)

	case messages.EndpointsLoaded:
		a.endpointsView, cmd = a.endpointsView.Update(msg)
		return a, cmd

	case messages.ChunkOpened:
		a.chunkView.Open(msg)
		a.currentView = messages.ViewChunk
		return a, nil

	case messages.ErrorOccurred:
		a.searchView, cmd = a.searchView.Update(msg)
		return a, cmd

	case messages.Quit:
		return a, tea.Quit
	}

	return a, a.forward(msg)
}

// forward hands a message to the active view.
func (a *App) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewSearch:
		a.searchView, cmd = a.searchView.Update(msg)
	case messages.ViewSources:
		a.sourcesView, cmd = a.sourcesView.Update(msg)
	case messages.ViewEndpoints:
		a.endpointsView, cmd = a.endpointsView.Update(msg)
	case messages.ViewChunk:
		a.chunkView, cmd = a.chunkView.Update(msg)
	case messages.ViewHelp:
	}
	return cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewSources:
		return a.sourcesView.View()
	case messages.ViewEndpoints:
		return a.endpointsView.View()
	case messages.ViewChunk:
		return a.chunkView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	case messages.ViewSearch:
	}
	return a.searchView.View()
}

func (a *App) viewHelp() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		a.styles.Title.Render("Keys"),
		"",
		a.help.View(a.keymap),
		"",
		a.styles.Subtitle.Render("Query filters"),
		a.styles.Normal.Render("  api:<name>          restrict to one API"),
		a.styles.Normal.Render("  type:<kind>[,kind]  overview, endpoint, schema, glossary, use-case, guide"),
		"",
		a.styles.Help.Render("[esc] back"),
	)
}

// Run starts the TUI and blocks until it exits or ctx is cancelled.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	if err != nil && a.ctx.Err() != nil {
		return nil
	}
	return err
}

// SetDimensions sets the terminal size on every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.help.Width = width
	a.searchView.SetDimensions(width, height)
	a.sourcesView.SetDimensions(width, height)
	a.endpointsView.SetDimensions(width, height)
	a.chunkView.SetDimensions(width, height)
}

// CurrentView returns the active view.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Ready returns whether the app has received a window size.
func (a *App) Ready() bool {
	return a.ready
}
