package message

import "strings"

// elisionMarker replaces the removed middle of an oversized diff.
const elisionMarker = "... (diff truncated) ..."

// TruncateDiff bounds a diff to at most maxLines lines, keeping the head and
// tail halves around an elision marker. Small or disabled budgets return the
// diff unchanged, which keeps the prompt deterministic for a given input.
func TruncateDiff(diff string, maxLines int) string {
	if maxLines <= 2 {
		return diff
	}
	lines := strings.Split(diff, "\n")
	if len(lines) <= maxLines {
		return diff
	}

	head := maxLines / 2
	tail := maxLines - head - 1
	truncated := make([]string, 0, maxLines)
	truncated = append(truncated, lines[:head]...)
	truncated = append(truncated, elisionMarker)
	truncated = append(truncated, lines[len(lines)-tail:]...)
	return strings.Join(truncated, "\n")
}
