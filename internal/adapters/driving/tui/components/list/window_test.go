package list

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWindow(t *testing.T) {
	tests := []struct {
		name                     string
		selected, visible, total int
		wantStart, wantEnd       int
	}{
		{"first page", 0, 5, 20, 0, 5},
		{"last row of first page", 4, 5, 20, 0, 5},
		{"scrolls past first page", 7, 5, 20, 3, 8},
		{"fewer items than rows", 1, 10, 3, 0, 3},
		{"zero visible shows one", 2, 0, 3, 2, 3},
		{"empty", 0, 5, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := Window(tt.selected, tt.visible, tt.total)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcdefg...", Truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "ab", Truncate("abcdef", 2))
	assert.Equal(t, "héll...", Truncate("héllo wörld", 7))
}
