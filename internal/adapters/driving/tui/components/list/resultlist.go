// Package list renders scrollable result lists for the TUI views.
package list

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/alexandria/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/alexandria/internal/core/domain"
)

// linesPerResult is the rendered height of one result.
const linesPerResult = 3

// ResultList draws ranked search results and tracks the selection. Key
// handling stays in the owning view.
type ResultList struct {
	styles   *styles.Styles
	results  []domain.SearchResult
	selected int
	width    int
	height   int
}

func NewResultList(s *styles.Styles) *ResultList {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &ResultList{styles: s, width: 80, height: 10}
}

// SetResults replaces the list and selects the first entry.
func (r *ResultList) SetResults(results []domain.SearchResult) {
	r.results = results
	r.selected = 0
}

func (r *ResultList) Results() []domain.SearchResult { return r.results }
func (r *ResultList) Count() int                     { return len(r.results) }
func (r *ResultList) Selected() int                  { return r.selected }

// SetSelected ignores indexes outside the list.
func (r *ResultList) SetSelected(i int) {
	if i >= 0 && i < len(r.results) {
		r.selected = i
	}
}

// SelectedResult is nil when the list is empty.
func (r *ResultList) SelectedResult() *domain.SearchResult {
	if r.selected >= len(r.results) {
		return nil
	}
	return &r.results[r.selected]
}

func (r *ResultList) MoveUp()   { r.SetSelected(r.selected - 1) }
func (r *ResultList) MoveDown() { r.SetSelected(r.selected + 1) }

func (r *ResultList) SetDimensions(width, height int) {
	r.width, r.height = width, height
}

func (r *ResultList) View() string {
	if len(r.results) == 0 {
		return r.styles.Muted.Render("No results")
	}

	rows := []string{r.styles.Subtitle.Render(fmt.Sprintf("Results (%d)", len(r.results))), ""}
	start, end := Window(r.selected, (r.height-2)/linesPerResult, len(r.results))
	for i := start; i < end; i++ {
		res := &r.results[i]
		rows = append(rows, lipgloss.JoinVertical(lipgloss.Left,
			r.titleLine(res, i == r.selected),
			r.metaLine(res),
			r.previewLine(res),
		))
	}
	return strings.Join(rows, "\n")
}

// titleLine is the chunk title padded to a fixed column, then the fused score.
func (r *ResultList) titleLine(res *domain.SearchResult, selected bool) string {
	title := res.Chunk.Title
	if title == "" {
		title = "(untitled)"
	}
	col := max(r.width-14, 10)
	score := fmt.Sprintf("%.4f", res.Score)

	if selected {
		return r.styles.Selected.Render(fmt.Sprintf("> %-*s  %s", col, Truncate(title, col), score))
	}
	return r.styles.Normal.Render(fmt.Sprintf("  %-*s  ", col, Truncate(title, col))) + r.styles.Muted.Render(score)
}

func (r *ResultList) metaLine(res *domain.SearchResult) string {
	source := res.SourceName
	if source == "" {
		source = res.Chunk.SourceID
	}
	return "    " + r.styles.Kind(res.Chunk.Kind) + " " + r.styles.Subtitle.Render(source)
}

// previewLine collapses whitespace so multi-line content fits one row.
func (r *ResultList) previewLine(res *domain.SearchResult) string {
	preview := strings.Join(strings.Fields(res.Chunk.Content), " ")
	return r.styles.Muted.Render("    " + Truncate(preview, max(r.width-6, 20)))
}
