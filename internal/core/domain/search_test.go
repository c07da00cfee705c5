package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearchOptions_Filter_UnionsSourceIDs(t *testing.T) {
	opts := SearchOptions{SourceID: "a", SourceIDs: []string{"b", "a", "c"}}

	f := opts.Filter()

	assert.Equal(t, []string{"a", "b", "c"}, f.SourceIDs)
	assert.True(t, f.Active())
}

func TestSearchOptions_Filter_Empty(t *testing.T) {
	f := SearchOptions{}.Filter()

	assert.Empty(t, f.SourceIDs)
	assert.False(t, f.Active())
}

func TestSearchFilter_Allows(t *testing.T) {
	chunk := Chunk{SourceID: "s1", Kind: ChunkKindEndpoint}

	tests := []struct {
		name   string
		filter SearchFilter
		want   bool
	}{
		{name: "no filter", filter: SearchFilter{}, want: true},
		{name: "matching source", filter: SearchFilter{SourceIDs: []string{"s1"}}, want: true},
		{name: "other source", filter: SearchFilter{SourceIDs: []string{"s2"}}, want: false},
		{name: "matching kind", filter: SearchFilter{Kinds: []ChunkKind{ChunkKindSchema, ChunkKindEndpoint}}, want: true},
		{name: "other kind", filter: SearchFilter{Kinds: []ChunkKind{ChunkKindGuide}}, want: false},
		{name: "source ok kind not", filter: SearchFilter{SourceIDs: []string{"s1"}, Kinds: []ChunkKind{ChunkKindGuide}}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Allows(chunk))
		})
	}
}

func TestDefaultFusionConfig(t *testing.T) {
	cfg := DefaultFusionConfig()
	assert.Equal(t, 60, cfg.K)
	assert.Equal(t, 20, cfg.DefaultLimit)
	assert.Equal(t, 3, cfg.OverFetch)
	assert.Equal(t, 5, cfg.VectorFilterOverFetch)
}
