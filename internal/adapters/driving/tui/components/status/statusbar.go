// Package status renders the one-line bar under the search results.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/alexandria/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/alexandria/internal/adapters/driving/tui/styles"
)

// State is what the left side of the bar reports.
type State string

const (
	StateReady     State = "ready"
	StateSearching State = "searching"
	StateResults   State = "results"
	StateInfo      State = "info"
	StateError     State = "error"
)

// Bar shows search progress on the left and key hints on the right.
type Bar struct {
	styles *styles.Styles
	keymap *keymap.KeyMap
	width  int

	state State
	text  string // query, info message or error text depending on state
	count int
}

func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &Bar{styles: s, keymap: km, width: 80, state: StateReady}
}

func (b *Bar) State() State     { return b.state }
func (b *Bar) Text() string     { return b.text }
func (b *Bar) SetWidth(w int) { b.width = w }

// Searching marks a query as in flight.
func (b *Bar) Searching(query string) {
	b.state, b.text, b.count = StateSearching, query, 0
}

// Results reports how many chunks the last query returned.
func (b *Bar) Results(query string, n int) {
	b.state, b.text, b.count = StateResults, query, n
}

func (b *Bar) Info(message string) {
	b.state, b.text = StateInfo, message
}

func (b *Bar) Fail(err error) {
	b.state, b.text = StateError, err.Error()
}

func (b *Bar) Clear() {
	b.state, b.text, b.count = StateReady, "", 0
}

func (b *Bar) View() string {
	left := b.left()
	right := b.hints()
	gap := max(b.width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	return b.styles.StatusBar.Width(b.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (b *Bar) left() string {
	switch b.state {
	case StateSearching:
		return b.styles.Muted.Render(fmt.Sprintf("Searching %q...", b.text))
	case StateResults:
		noun := "results"
		if b.count == 1 {
			noun = "result"
		}
		return b.styles.Normal.Render(fmt.Sprintf("%d %s for %q", b.count, noun, b.text))
	case StateInfo:
		return b.styles.Success.Render(b.text)
	case StateError:
		return b.styles.Error.Render("Error: " + b.text)
	case StateReady:
	}
	return b.styles.Muted.Render("Ready")
}

func (b *Bar) hints() string {
	bindings := b.keymap.ShortHelp()
	if b.state == StateResults && b.count > 0 {
		bindings = b.keymap.ResultsHelp()
	}
	parts := make([]string, len(bindings))
	for i, binding := range bindings {
		parts[i] = hint(binding)
	}
	return b.styles.Muted.Render(strings.Join(parts, "  "))
}

func hint(b key.Binding) string {
	h := b.Help()
	return h.Key + " " + h.Desc
}
