package list

// Window returns the [start, end) range of total items to draw when at
// most visible fit, scrolled so selected is the last row once it passes
// the first page.
func Window(selected, visible, total int) (start, end int) {
	visible = max(visible, 1)
	if selected >= visible {
		start = selected - visible + 1
	}
	return start, min(start+visible, total)
}

// Truncate shortens s to at most n runes, marking the cut with "...".
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}
