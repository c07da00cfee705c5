// Package markdown splits markdown files into chunks at h1, h2 and h3
// headings. Deeper headings stay inside their section.
package markdown

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/custodia-labs/alexandria/internal/core/domain"
	"github.com/custodia-labs/alexandria/internal/core/identity"
	"github.com/custodia-labs/alexandria/internal/core/ports/driven"
)

// Ensure Parser implements the interface.
var _ driven.MarkdownParser = (*Parser)(nil)

// Parser parses markdown guides.
type Parser struct {
	md      goldmark.Markdown
	maxSize int
}

// New creates a markdown parser.
func New() *Parser {
	return &Parser{
		md:      goldmark.New(),
		maxSize: identity.MaxChunkSize,
	}
}

// section is a run of source bytes under one heading path.
type section struct {
	headings []string
	start    int
	end      int
}

// ParseFile parses one markdown file.
func (p *Parser) ParseFile(ctx context.Context, path, sourceID string) ([]domain.Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: Failed to read markdown file for %q at %s: %v",
			domain.ErrInvalidInput, sourceID, path, err)
	}

	return p.parse(source, path, sourceID), nil
}

// ParseDir parses every .md file directly inside dir, in filename order.
// A directory that does not exist yields no chunks.
func (p *Parser) ParseDir(ctx context.Context, dir, sourceID string) ([]domain.Chunk, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading docs directory %s: %v", domain.ErrInvalidInput, dir, err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".md") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var chunks []domain.Chunk
	for _, name := range names {
		fileChunks, err := p.ParseFile(ctx, filepath.Join(dir, name), sourceID)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, fileChunks...)
	}
	return chunks, nil
}

func (p *Parser) parse(source []byte, path, sourceID string) []domain.Chunk {
	filename := filepath.Base(path)
	kind := KindForFile(filename)

	var chunks []domain.Chunk
	seen := make(map[string]int)

	for _, sec := range p.sections(source) {
		content := strings.TrimSpace(string(source[sec.start:sec.end]))
		if content == "" {
			continue
		}

		title := sec.headings[len(sec.headings)-1]
		base := identity.DocID(sourceID, filename, sec.headings, -1)

		// A repeated heading path would collide; later occurrences get ~n.
		seen[base]++
		if n := seen[base]; n > 1 {
			base += "~" + strconv.Itoa(n)
		}

		parts := identity.SplitContent(content, p.maxSize)
		for i, part := range parts {
			metadata := map[string]any{
				"filePath": path,
				"headings": append([]string(nil), sec.headings...),
			}
			id := base
			if len(parts) > 1 {
				id = base + ":" + strconv.Itoa(i)
				metadata["chunkIndex"] = i
			}

			chunks = append(chunks, domain.Chunk{
				ID:          id,
				SourceID:    sourceID,
				Kind:        kind,
				Title:       title,
				Content:     part,
				ContentHash: identity.ContentHash(part),
				Metadata:    metadata,
			})
		}
	}

	return chunks
}

// sections walks the top-level blocks and cuts the source at h1-h3
// headings. Text before the first heading belongs to no section.
func (p *Parser) sections(source []byte) []section {
	doc := p.md.Parser().Parse(text.NewReader(source))

	var (
		h1, h2   string
		current  *section
		sections []section
	)

	finish := func(end int) {
		if current != nil && end > current.start {
			current.end = end
			sections = append(sections, *current)
		}
		current = nil
	}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		heading, ok := n.(*ast.Heading)
		if !ok || heading.Level > 3 || heading.Lines().Len() == 0 {
			continue
		}

		start, end := headingBounds(heading, source)
		finish(start)

		title := headingText(heading, source)
		var path []string
		switch heading.Level {
		case 1:
			h1, h2 = title, ""
			path = []string{title}
		case 2:
			h2 = title
			path = nonEmpty(h1, title)
		case 3:
			path = nonEmpty(h1, h2, title)
		}
		current = &section{headings: path, start: end}
	}
	finish(len(source))

	return sections
}

// headingBounds returns the offsets of the first byte of the heading line
// and the byte just after the heading (including a setext underline).
func headingBounds(h *ast.Heading, source []byte) (int, int) {
	lines := h.Lines()
	first, last := lines.At(0), lines.At(lines.Len()-1)

	start := first.Start
	for start > 0 && source[start-1] != '\n' {
		start--
	}

	end := lineEnd(source, last.Stop)
	if !isATX(source[start:]) {
		end = lineEnd(source, end+1)
	}
	return start, end
}

func lineEnd(source []byte, from int) int {
	if from >= len(source) {
		return len(source)
	}
	if i := bytes.IndexByte(source[from:], '\n'); i >= 0 {
		return from + i
	}
	return len(source)
}

func isATX(line []byte) bool {
	return bytes.HasPrefix(bytes.TrimLeft(line, " "), []byte("#"))
}

// headingText flattens the inline content of a heading.
func headingText(n ast.Node, source []byte) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := node.(type) {
		case *ast.Text:
			sb.Write(t.Segment.Value(source))
			if t.SoftLineBreak() {
				sb.WriteByte(' ')
			}
		case *ast.String:
			sb.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// KindForFile classifies a markdown file by name.
func KindForFile(filename string) domain.ChunkKind {
	name := strings.ToLower(filepath.Base(filename))
	switch {
	case strings.Contains(name, "glossary"):
		return domain.ChunkKindGlossary
	case strings.Contains(name, "use-case"), strings.Contains(name, "use_case"):
		return domain.ChunkKindUseCase
	default:
		return domain.ChunkKindGuide
	}
}
