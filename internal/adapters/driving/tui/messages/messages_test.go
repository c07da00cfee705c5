package messages

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestViewType_String(t *testing.T) {
	tests := []struct {
		view ViewType
		want string
	}{
		{ViewSearch, "search"},
		{ViewSources, "sources"},
		{ViewEndpoints, "endpoints"},
		{ViewChunk, "chunk"},
		{ViewHelp, "help"},
		{ViewType(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.view.String())
		})
	}
}
