package identity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceID(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, SourceID("payments"), SourceID("payments"))
	})

	t.Run("distinct names differ", func(t *testing.T) {
		assert.NotEqual(t, SourceID("payments"), SourceID("billing"))
	})

	t.Run("uuid v5 format", func(t *testing.T) {
		id := SourceID("payments")
		require.Len(t, id, 36)
		assert.Equal(t, byte('5'), id[14], "version nibble")
	})

	t.Run("known vector", func(t *testing.T) {
		// uuidv5("www.example.com", DNS namespace)
		assert.Equal(t, "2ed6657d-e927-568b-95e1-2665a8aea6a2", SourceID("www.example.com"))
	})
}

func TestChunkIDs(t *testing.T) {
	sid := "sid"

	tests := []struct {
		name string
		got  string
		want string
	}{
		{name: "overview", got: OverviewID(sid), want: "sid:overview"},
		{name: "endpoint", got: EndpointID(sid, "get", "/users/{id}"), want: "sid:endpoint:GET:/users/{id}"},
		{name: "schema", got: SchemaID(sid, "User"), want: "sid:schema:User"},
		{
			name: "doc unsplit",
			got:  DocID(sid, "getting-started.md", []string{"Getting Started", "Install It!"}, -1),
			want: "sid:doc:getting-started:getting-started/install-it",
		},
		{
			name: "doc split",
			got:  DocID(sid, "guide.md", []string{"Guide"}, 2),
			want: "sid:doc:guide:guide:2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Hello World":           "hello-world",
		"  Leading & trailing ": "leading-trailing",
		"OAuth 2.0 / PKCE":      "oauth-2-0-pkce",
		"---":                   "",
		"Already-slugged":       "already-slugged",
		"Ünïcode":               "n-code",
	}

	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, Slugify(in))
		})
	}
}

func TestContentHash(t *testing.T) {
	assert.Equal(t,
		"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		ContentHash(""))
	assert.Equal(t, ContentHash("abc"), ContentHash("abc"))
	assert.NotEqual(t, ContentHash("abc"), ContentHash("abd"))
	assert.Len(t, ContentHash("anything"), 64)
}

func TestSplitContent(t *testing.T) {
	t.Run("short text is one piece", func(t *testing.T) {
		assert.Equal(t, []string{"hello"}, SplitContent("hello", 100))
	})

	t.Run("packs paragraphs up to the limit", func(t *testing.T) {
		para := strings.Repeat("a", 40)
		text := strings.Join([]string{para, para, para}, "\n\n")

		pieces := SplitContent(text, 90)

		require.Len(t, pieces, 2)
		assert.Equal(t, para+"\n\n"+para, pieces[0])
		assert.Equal(t, para, pieces[1])
	})

	t.Run("hard splits an oversized paragraph", func(t *testing.T) {
		text := strings.Repeat("b", 250)

		pieces := SplitContent(text, 100)

		require.Len(t, pieces, 3)
		assert.Len(t, pieces[0], 100)
		assert.Len(t, pieces[1], 100)
		assert.Len(t, pieces[2], 50)
	})

	t.Run("every piece is bounded", func(t *testing.T) {
		text := strings.Repeat("word ", 500) + "\n\n" + strings.Repeat("x", 4000) + "\n\nend"

		for _, p := range SplitContent(text, MaxChunkSize) {
			assert.LessOrEqual(t, len(p), MaxChunkSize)
			assert.NotEmpty(t, p)
		}
	})

	t.Run("does not cut inside a rune", func(t *testing.T) {
		text := strings.Repeat("é", 100) // 200 bytes

		for _, p := range SplitContent(text, 51) {
			assert.True(t, strings.ToValidUTF8(p, "?") == p)
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		text := strings.Repeat("para one.\n\n", 400)
		assert.Equal(t, SplitContent(text, 500), SplitContent(text, 500))
	})

	t.Run("zero limit uses default", func(t *testing.T) {
		assert.Len(t, SplitContent(strings.Repeat("c", 10), 0), 1)
	})
}
