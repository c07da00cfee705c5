package list

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/alexandria/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/alexandria/internal/core/domain"
)

func sampleResults() []domain.SearchResult {
	return []domain.SearchResult{
		{
			Chunk: domain.Chunk{
				ID: "c1", SourceID: "s1", Kind: domain.ChunkKindEndpoint,
				Title: "POST /refunds", Content: "Create a refund\nfor a charge.",
			},
			Score:      0.0328,
			SourceName: "payments",
		},
		{
			Chunk:      domain.Chunk{ID: "c2", SourceID: "s1", Kind: domain.ChunkKindSchema, Title: "Refund"},
			Score:      0.0161,
			SourceName: "payments",
		},
		{
			Chunk: domain.Chunk{ID: "c3", SourceID: "s2", Kind: domain.ChunkKindGuide, Title: "Disputes"},
			Score: 0.0159,
		},
	}
}

func TestNewResultList(t *testing.T) {
	list := NewResultList(styles.DefaultStyles())

	require.NotNil(t, list)
	assert.Equal(t, 0, list.Selected())
	assert.Equal(t, 0, list.Count())
	assert.Nil(t, list.SelectedResult())
}

func TestNewResultList_NilStyles(t *testing.T) {
	list := NewResultList(nil)

	require.NotNil(t, list)
	assert.NotNil(t, list.styles)
}

func TestResultList_SetResultsResetsSelection(t *testing.T) {
	list := NewResultList(nil)
	list.SetResults(sampleResults())
	list.SetSelected(2)

	list.SetResults(sampleResults())

	assert.Equal(t, 3, list.Count())
	assert.Equal(t, 0, list.Selected())
}

func TestResultList_SetSelected_OutOfRange(t *testing.T) {
	list := NewResultList(nil)
	list.SetResults(sampleResults())

	list.SetSelected(5)
	assert.Equal(t, 0, list.Selected())

	list.SetSelected(-1)
	assert.Equal(t, 0, list.Selected())
}

func TestResultList_Navigation(t *testing.T) {
	list := NewResultList(nil)
	list.SetResults(sampleResults())

	list.MoveUp()
	assert.Equal(t, 0, list.Selected())

	list.MoveDown()
	assert.Equal(t, 1, list.Selected())

	list.MoveDown()
	assert.Equal(t, 2, list.Selected())

	list.MoveDown()
	assert.Equal(t, 2, list.Selected())

	list.MoveUp()
	assert.Equal(t, 1, list.Selected())
	assert.Equal(t, "c2", list.SelectedResult().Chunk.ID)
}

func TestResultList_View_Empty(t *testing.T) {
	assert.Contains(t, NewResultList(nil).View(), "No results")
}

func TestResultList_View(t *testing.T) {
	list := NewResultList(nil)
	list.SetDimensions(100, 40)
	list.SetResults(sampleResults())

	view := list.View()

	assert.Contains(t, view, "Results (3)")
	assert.Contains(t, view, "POST /refunds")
	assert.Contains(t, view, "[endpoint]")
	assert.Contains(t, view, "payments")
	assert.Contains(t, view, "Create a refund for a charge.")
	assert.Contains(t, view, "s2")
}

func TestResultList_View_ScrollsToSelection(t *testing.T) {
	list := NewResultList(nil)
	list.SetDimensions(100, 5)
	list.SetResults(sampleResults())
	list.SetSelected(2)

	view := list.View()

	assert.Contains(t, view, "Disputes")
	assert.NotContains(t, view, "POST /refunds")
}

