// Package input provides text input components for the TUI.
package input

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/alexandria/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/alexandria/internal/core/domain"
)

// Filter prefixes recognised inside a query.
const (
	apiPrefix  = "api:"
	typePrefix = "type:"
)

// SearchInput wraps a bubbles textinput with search-specific styling.
type SearchInput struct {
	textinput textinput.Model
	styles    *styles.Styles
	width     int
}

// NewSearchInput creates a new search input component.
func NewSearchInput(s *styles.Styles) *SearchInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = "refund a payment   api:payments type:endpoint,schema"
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = 50

	return &SearchInput{
		textinput: ti,
		styles:    s,
		width:     50,
	}
}

// Init initialises the search input.
func (s *SearchInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input messages.
func (s *SearchInput) Update(msg tea.Msg) (*SearchInput, tea.Cmd) {
	var cmd tea.Cmd
	s.textinput, cmd = s.textinput.Update(msg)
	return s, cmd
}

// View renders the search input.
func (s *SearchInput) View() string {
	label := s.styles.Title.Render("Search: ")
	input := s.styles.InputField.Render(s.textinput.View())
	//nolint:misspell // lipgloss.Center is the correct constant from the library
	return lipgloss.JoinHorizontal(lipgloss.Center, label, input)
}

// Value returns the current input value.
func (s *SearchInput) Value() string {
	return s.textinput.Value()
}

// SetValue sets the input value.
func (s *SearchInput) SetValue(value string) {
	s.textinput.SetValue(value)
}

// Focus sets focus on the input.
func (s *SearchInput) Focus() tea.Cmd {
	return s.textinput.Focus()
}

// Blur removes focus from the input.
func (s *SearchInput) Blur() {
	s.textinput.Blur()
}

// Focused returns whether the input is focused.
func (s *SearchInput) Focused() bool {
	return s.textinput.Focused()
}

// SetWidth sets the width of the input.
func (s *SearchInput) SetWidth(width int) {
	s.width = width
	inputWidth := width - 14
	if inputWidth < 20 {
		inputWidth = 20
	}
	s.textinput.Width = inputWidth
}

// Width returns the current width.
func (s *SearchInput) Width() int {
	return s.width
}

// Reset clears the input.
func (s *SearchInput) Reset() {
	s.textinput.Reset()
}

// Query is a raw input line split into search text and filters.
type Query struct {
	// Text is what gets searched.
	Text string

	// API restricts results to one source name.
	API string

	// Kinds restricts results to chunk kinds.
	Kinds []domain.ChunkKind
}

// ParseQuery extracts api: and type: filters from a raw input line.
// The last api: wins; type: values accumulate and may be comma separated.
func ParseQuery(raw string) (Query, error) {
	var (
		q     Query
		words []string
		types []string
	)

	for _, field := range strings.Fields(raw) {
		lower := strings.ToLower(field)
		switch {
		case strings.HasPrefix(lower, apiPrefix) && len(field) > len(apiPrefix):
			q.API = field[len(apiPrefix):]
		case strings.HasPrefix(lower, typePrefix) && len(field) > len(typePrefix):
			for _, t := range strings.Split(field[len(typePrefix):], ",") {
				if t != "" {
					types = append(types, strings.ToLower(t))
				}
			}
		default:
			words = append(words, field)
		}
	}

	if len(types) > 0 {
		kinds, err := domain.ParseChunkKinds(types)
		if err != nil {
			return Query{}, err
		}
		q.Kinds = kinds
	}
	q.Text = strings.Join(words, " ")
	return q, nil
}
