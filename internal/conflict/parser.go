package conflict

import (
	"fmt"
	"strings"
)

const (
	startMarker = "<<<<<<<"
	baseMarker  = "|||||||"
	sepMarker   = "======="
	endMarker   = ">>>>>>>"
)

// Parse extracts all conflict hunks from file content. It accepts both LF
// and CRLF line endings and understands the diff3 base section. Content
// without markers parses to an empty hunk list.
func Parse(content string) ([]Hunk, error) {
	lines, _, _ := normalize(content)
	return parseLines(lines)
}

// HasMarkers reports whether any line of content begins a conflict region.
// It is a cheap check for "did the manual edit actually finish".
func HasMarkers(content string) bool {
	lines, _, _ := normalize(content)
	for _, line := range lines {
		if strings.HasPrefix(line, startMarker) {
			return true
		}
	}
	return false
}

// Apply resolves every hunk in content with the given choice and splices the
// chosen lines back in position order. Only KeepOurs, KeepTheirs, and
// KeepBoth are valid here; the remaining choices are workflow signals, not
// text transformations. The original line-ending style is preserved.
func Apply(content string, choice Choice) (string, error) {
	switch choice {
	case KeepOurs, KeepTheirs, KeepBoth:
	default:
		return "", fmt.Errorf("choice %q does not produce file content", choice)
	}

	lines, crlf, trailingNewline := normalize(content)
	hunks, err := parseLines(lines)
	if err != nil {
		return "", err
	}
	if len(hunks) == 0 {
		return content, nil
	}

	resolved := make([]string, 0, len(lines))
	next := 0
	for _, hunk := range hunks {
		resolved = append(resolved, lines[next:hunk.StartLine]...)
		switch choice {
		case KeepOurs:
			resolved = append(resolved, hunk.Ours...)
		case KeepTheirs:
			resolved = append(resolved, hunk.Theirs...)
		case KeepBoth:
			resolved = append(resolved, hunk.Ours...)
			resolved = append(resolved, hunk.Theirs...)
		}
		next = hunk.EndLine + 1
	}
	resolved = append(resolved, lines[next:]...)

	eol := "\n"
	if crlf {
		eol = "\r\n"
	}
	out := strings.Join(resolved, eol)
	if trailingNewline && out != "" {
		out += eol
	}
	return out, nil
}

// normalize splits content into lines regardless of EOL style and remembers
// the style and trailing-newline state for reconstruction.
func normalize(content string) (lines []string, crlf bool, trailingNewline bool) {
	crlf = strings.Contains(content, "\r\n")
	if crlf {
		content = strings.ReplaceAll(content, "\r\n", "\n")
	}
	trailingNewline = strings.HasSuffix(content, "\n")
	content = strings.TrimSuffix(content, "\n")
	if content == "" {
		return nil, crlf, trailingNewline
	}
	return strings.Split(content, "\n"), crlf, trailingNewline
}

// parseLines is the marker state machine: outside → ours → (base) → theirs →
// outside. A separator line outside a hunk is ordinary content; stray base or
// end markers, a nested start marker, and an unterminated hunk are malformed.
func parseLines(lines []string) ([]Hunk, error) {
	const (
		outside = iota
		inOurs
		inBase
		inTheirs
	)

	var hunks []Hunk
	var current Hunk
	state := outside

	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, startMarker):
			if state != outside {
				return nil, fmt.Errorf("%w: nested %q at line %d", ErrMalformedMarkers, startMarker, i+1)
			}
			current = Hunk{StartLine: i}
			state = inOurs

		case strings.HasPrefix(line, baseMarker):
			if state != inOurs {
				return nil, fmt.Errorf("%w: unexpected %q at line %d", ErrMalformedMarkers, baseMarker, i+1)
			}
			current.HasBase = true
			state = inBase

		case line == sepMarker:
			switch state {
			case inOurs, inBase:
				state = inTheirs
			case inTheirs:
				return nil, fmt.Errorf("%w: repeated separator at line %d", ErrMalformedMarkers, i+1)
			default:
				// A bare "=======" outside any hunk is ordinary content.
			}

		case strings.HasPrefix(line, endMarker):
			if state != inTheirs {
				return nil, fmt.Errorf("%w: unexpected %q at line %d", ErrMalformedMarkers, endMarker, i+1)
			}
			current.EndLine = i
			hunks = append(hunks, current)
			state = outside

		default:
			switch state {
			case inOurs:
				current.Ours = append(current.Ours, line)
			case inBase:
				current.Base = append(current.Base, line)
			case inTheirs:
				current.Theirs = append(current.Theirs, line)
			}
		}
	}

	if state != outside {
		return nil, fmt.Errorf("%w: unterminated hunk starting at line %d", ErrMalformedMarkers, current.StartLine+1)
	}
	return hunks, nil
}
