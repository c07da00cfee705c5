// Package search provides the main search view for the TUI.
package search

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/alexandria/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/alexandria/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/alexandria/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/alexandria/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/alexandria/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/alexandria/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/alexandria/internal/core/domain"
	"github.com/custodia-labs/alexandria/internal/core/ports/driving"
)

// View is the search view with input, results list, and status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.SearchInput
	list      *list.ResultList
	statusbar *status.Bar

	searchService driving.SearchService
	sourceService driving.SourceService
	ctx           context.Context
	limit         int

	width      int
	height     int
	ready      bool
	err        error
	focusInput bool // true while typing, false while browsing results
}

// NewView creates a new search view. The source service resolves api:
// filters and may be nil, in which case those filters fail.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	searchService driving.SearchService,
	sourceService driving.SourceService,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:        s,
		keymap:        km,
		input:         input.NewSearchInput(s),
		list:          list.NewResultList(s),
		statusbar:     status.NewBar(s, km),
		searchService: searchService,
		sourceService: sourceService,
		ctx:           context.Background(),
		width:         80,
		height:        24,
		focusInput:    true,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// WithLimit sets the result count requested per search. Zero uses the
// service default.
func (v *View) WithLimit(limit int) *View {
	v.limit = limit
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the search view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.SearchCompleted:
		v.handleSearchCompleted(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		v.statusbar.Fail(msg.Err)
		return v, nil
	}

	if v.focusInput {
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}
	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if keymap.Matches(msg.String(), v.keymap.Sources) {
		return v, changeView(messages.ViewSources)
	}

	if v.focusInput {
		return v.handleInputKey(msg)
	}
	return v.handleResultsKey(msg)
}

func (v *View) handleInputKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	//nolint:exhaustive // only submit and cancel are special while typing
	switch msg.Type {
	case tea.KeyEnter:
		raw := v.input.Value()
		if raw == "" {
			return v, nil
		}
		v.statusbar.Searching(raw)
		return v, v.performSearch(raw)

	case tea.KeyEsc:
		if v.input.Value() != "" {
			v.input.Reset()
			return v, nil
		}
		if v.list.Count() > 0 {
			v.browse()
		}
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleResultsKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	key := msg.String()
	switch {
	case keymap.Matches(key, v.keymap.Up):
		v.list.MoveUp()
	case keymap.Matches(key, v.keymap.Down):
		v.list.MoveDown()
	case keymap.Matches(key, v.keymap.Open):
		if r := v.list.SelectedResult(); r != nil {
			opened := messages.ChunkOpened{Chunk: r.Chunk, SourceName: r.SourceName, From: messages.ViewSearch}
			return v, func() tea.Msg { return opened }
		}
	case keymap.Matches(key, v.keymap.NewSearch), keymap.Matches(key, v.keymap.Back):
		v.focusInput = true
		return v, v.input.Focus()
	case keymap.Matches(key, v.keymap.Help):
		return v, changeView(messages.ViewHelp)
	case keymap.Matches(key, v.keymap.Quit):
		return v, func() tea.Msg { return messages.Quit{} }
	}
	return v, nil
}

// performSearch returns a command that runs the query off the UI loop.
func (v *View) performSearch(raw string) tea.Cmd {
	ctx := v.ctx
	limit := v.limit
	searchService := v.searchService
	sourceService := v.sourceService

	return func() tea.Msg {
		if searchService == nil {
			return messages.ErrorOccurred{Err: ErrNoSearchService}
		}

		q, err := input.ParseQuery(raw)
		if err != nil {
			return messages.SearchCompleted{Query: raw, Err: err}
		}

		opts := domain.SearchOptions{Limit: limit, Kinds: q.Kinds}
		if q.API != "" {
			if sourceService == nil {
				return messages.SearchCompleted{Query: raw, Err: domain.ErrSourceNotFound}
			}
			src, err := sourceService.GetByName(ctx, q.API)
			if err != nil {
				return messages.SearchCompleted{Query: raw, Err: err}
			}
			opts.SourceID = src.ID
		}

		results, err := searchService.Search(ctx, q.Text, opts)
		return messages.SearchCompleted{Query: raw, Results: results, Err: err}
	}
}

func (v *View) handleSearchCompleted(msg messages.SearchCompleted) {
	if msg.Err != nil {
		v.err = msg.Err
		v.statusbar.Fail(msg.Err)
		return
	}

	v.err = nil
	v.list.SetResults(msg.Results)
	v.statusbar.Results(msg.Query, len(msg.Results))
	if len(msg.Results) > 0 {
		v.browse()
	}
}

// browse moves focus from the input to the results.
func (v *View) browse() {
	v.focusInput = false
	v.input.Blur()
}

// View renders the search view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 8)
	sections = append(sections, v.styles.Title.Render("Alexandria"), "", v.input.View(), "")

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	sections = append(sections, v.list.View(), "", v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.list.SetDimensions(width, height-9)
	v.statusbar.SetWidth(width)
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Query returns the current raw input.
func (v *View) Query() string {
	return v.input.Value()
}

// SetQuery sets the raw input.
func (v *View) SetQuery(query string) {
	v.input.SetValue(query)
}

// Results returns the current search results.
func (v *View) Results() []domain.SearchResult {
	return v.list.Results()
}

// SelectedIndex returns the index of the selected result.
func (v *View) SelectedIndex() int {
	return v.list.Selected()
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}

// Reset returns the view to an empty input.
func (v *View) Reset() tea.Cmd {
	v.input.Reset()
	v.list.SetResults(nil)
	v.err = nil
	v.statusbar.Clear()
	v.focusInput = true
	return v.input.Focus()
}

func changeView(view messages.ViewType) tea.Cmd {
	return func() tea.Msg { return messages.ViewChanged{View: view} }
}
