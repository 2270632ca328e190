// Package conflict parses git conflict markers into hunks and applies
// resolution choices to produce conflict-free file content.
package conflict

import "errors"

var (
	// ErrMalformedMarkers reports unbalanced or nested conflict markers.
	ErrMalformedMarkers = errors.New("malformed conflict markers")
	// ErrUnresolvedMarkers reports that conflict markers remain after a
	// manual edit was supposed to remove them.
	ErrUnresolvedMarkers = errors.New("conflict markers still present")
)

// Choice is a resolution strategy for a conflicted file. The same choice
// applies to every hunk in the file; per-hunk choices are deliberately not
// offered so that one prompt resolves one file.
type Choice int

const (
	KeepOurs Choice = iota
	KeepTheirs
	KeepBoth
	ManualEdit
	Skip
	AbortAll
)

func (c Choice) String() string {
	switch c {
	case KeepOurs:
		return "keep ours"
	case KeepTheirs:
		return "keep theirs"
	case KeepBoth:
		return "keep both"
	case ManualEdit:
		return "edit manually"
	case Skip:
		return "skip file"
	case AbortAll:
		return "abort"
	}
	return "unknown"
}

// Hunk is one contiguous conflicting region. Ours holds the lines between
// the start marker and the separator, Theirs the lines between the separator
// and the end marker. Base is only populated for diff3-style conflicts.
// StartLine and EndLine are zero-based indexes of the marker lines in the
// working file.
type Hunk struct {
	Path      string
	Ours      []string
	Theirs    []string
	Base      []string
	HasBase   bool
	StartLine int
	EndLine   int
}
