package cli

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Default terminal width when stdout is not a terminal.
const defaultWidth = 80

// snippetLength caps the content preview shown per search hit.
const snippetLength = 240

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	metaStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	kindStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	headerStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
)

// terminalWidth returns the stdout width, or defaultWidth.
func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return defaultWidth
	}
	w, _, err := term.GetSize(fd)
	if err != nil || w <= 0 {
		return defaultWidth
	}
	return w
}

// snippet collapses whitespace and truncates content for display.
func snippet(content string) string {
	s := strings.Join(strings.Fields(content), " ")
	if r := []rune(s); len(r) > snippetLength {
		s = string(r[:snippetLength]) + "..."
	}
	return s
}

// wrap word-wraps text to width and indents every line.
func wrap(text string, width int, indent string) string {
	avail := width - len(indent)
	if avail < 20 {
		avail = 20
	}

	rendered := lipgloss.NewStyle().Width(avail).Render(text)
	lines := strings.Split(rendered, "\n")
	for i, line := range lines {
		lines[i] = indent + strings.TrimRight(line, " ")
	}
	return strings.Join(lines, "\n")
}
