package chunk

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/alexandria/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/alexandria/internal/core/domain"
)

func openedEndpoint() messages.ChunkOpened {
	return messages.ChunkOpened{
		Chunk: domain.Chunk{
			ID:       "src1:endpoint:GET /users",
			SourceID: "src1",
			Kind:     domain.ChunkKindEndpoint,
			Title:    "GET /users",
			Content:  "List users.\nReturns a paginated list.",
			Metadata: map[string]any{"method": "GET", "path": "/users"},
		},
		SourceName: "accounts",
		From:       messages.ViewEndpoints,
	}
}

func TestView_Empty(t *testing.T) {
	v := NewView(nil)

	assert.Nil(t, v.Chunk())
	assert.Contains(t, v.View(), "Nothing selected.")
}

func TestView_Open(t *testing.T) {
	v := NewView(nil)
	v.SetDimensions(100, 30)

	v.Open(openedEndpoint())

	require.NotNil(t, v.Chunk())
	view := v.View()
	assert.Contains(t, view, "GET /users")
	assert.Contains(t, view, "[endpoint]")
	assert.Contains(t, view, "accounts")
	assert.Contains(t, view, "List users.")
	assert.Contains(t, view, "method: GET")
	assert.Contains(t, view, "path: /users")
	assert.Equal(t, messages.ViewEndpoints, v.ReturnView())
}

func TestView_MetadataSorted(t *testing.T) {
	v := NewView(nil)
	v.SetDimensions(100, 30)
	v.Open(openedEndpoint())

	view := v.View()
	assert.Less(t, strings.Index(view, "method:"), strings.Index(view, "path:"))
}

func TestView_EscReturnsToOpener(t *testing.T) {
	v := NewView(nil)
	v.Open(openedEndpoint())

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})

	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewEndpoints}, cmd())
}

func TestView_Scrolls(t *testing.T) {
	v := NewView(nil)
	v.SetDimensions(80, 8)

	opened := openedEndpoint()
	opened.Chunk.Content = strings.Repeat("line\n", 50)
	v.Open(opened)

	v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})

	assert.Equal(t, 1, v.viewport.YOffset)
}
