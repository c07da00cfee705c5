package identity

import "strings"

// MaxChunkSize is the largest section body stored as one chunk.
const MaxChunkSize = 3000

// SplitContent segments text into pieces of at most maxSize bytes.
//
// Paragraphs (separated by a blank line) are packed greedily; a paragraph
// that alone exceeds maxSize is cut at fixed byte offsets, backing off to a
// UTF-8 boundary. Text already within the limit is returned as one piece.
func SplitContent(text string, maxSize int) []string {
	if maxSize <= 0 {
		maxSize = MaxChunkSize
	}
	if len(text) <= maxSize {
		return []string{text}
	}

	var pieces []string
	var current strings.Builder

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			pieces = append(pieces, s)
		}
		current.Reset()
	}

	for _, para := range strings.Split(text, "\n\n") {
		extra := len(para)
		if current.Len() > 0 {
			extra += 2
		}
		if current.Len()+extra > maxSize && current.Len() > 0 {
			flush()
		}
		if len(para) > maxSize {
			flush()
			pieces = append(pieces, hardSplit(para, maxSize)...)
			continue
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
	}
	flush()

	return pieces
}

func hardSplit(s string, maxSize int) []string {
	var out []string
	for len(s) > maxSize {
		cut := maxSize
		for cut > 0 && !isRuneStart(s[cut]) {
			cut--
		}
		if cut == 0 {
			cut = maxSize
		}
		if piece := strings.TrimSpace(s[:cut]); piece != "" {
			out = append(out, piece)
		}
		s = s[cut:]
	}
	if piece := strings.TrimSpace(s); piece != "" {
		out = append(out, piece)
	}
	return out
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
