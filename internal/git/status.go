package git

import (
	"strings"

	"github.com/sungit/sungit/internal/stringsutil"
)

// Status is a point-in-time snapshot of the working tree and branch state.
// It is produced fresh on every probe and never mutated afterwards.
type Status struct {
	Branch     string
	Staged     []string
	Unstaged   []string
	Untracked  []string
	Conflicted []string
	Ahead      int
	Behind     int
}

// Clean reports whether the working tree has no changes of any kind.
func (s Status) Clean() bool {
	return !s.HasChanges() && !s.HasConflicts()
}

// HasChanges reports whether anything is staged, modified, or untracked.
func (s Status) HasChanges() bool {
	return len(s.Staged) > 0 || len(s.Unstaged) > 0 || len(s.Untracked) > 0
}

// HasConflicts reports whether any path is in an unmerged state.
func (s Status) HasConflicts() bool {
	return len(s.Conflicted) > 0
}

// Unmerged index state codes from git-status porcelain v1.
var conflictCodes = map[string]bool{
	"DD": true, "AU": true, "UD": true,
	"UA": true, "DU": true, "AA": true, "UU": true,
}

// parsePorcelain fills the file sets of status from `git status --porcelain`
// output. The two leading status characters are significant, including spaces.
func parsePorcelain(output string, status *Status) {
	for _, line := range strings.Split(output, "\n") {
		if len(line) < 4 {
			continue
		}
		code := line[:2]
		path := parsePorcelainPath(line[3:])
		if path == "" {
			continue
		}

		switch {
		case code == "??":
			status.Untracked = append(status.Untracked, path)
		case conflictCodes[code]:
			status.Conflicted = append(status.Conflicted, path)
		default:
			if code[0] != ' ' {
				status.Staged = append(status.Staged, path)
			}
			if code[1] != ' ' {
				status.Unstaged = append(status.Unstaged, path)
			}
		}
	}

	status.Staged = stringsutil.UniqueStrings(status.Staged)
	status.Unstaged = stringsutil.UniqueStrings(status.Unstaged)
	status.Untracked = stringsutil.UniqueStrings(status.Untracked)
	status.Conflicted = stringsutil.UniqueStrings(status.Conflicted)
}

// parsePorcelainPath unquotes a porcelain path and keeps the rename target.
func parsePorcelainPath(field string) string {
	if idx := strings.Index(field, " -> "); idx >= 0 {
		field = field[idx+4:]
	}
	field = strings.TrimSpace(field)
	if len(field) >= 2 && strings.HasPrefix(field, `"`) && strings.HasSuffix(field, `"`) {
		field = field[1 : len(field)-1]
	}
	return field
}

// parseAheadBehind reads `rev-list --left-right --count HEAD...@{u}` output,
// which is "<ahead>\t<behind>".
func parseAheadBehind(output string) (int, int) {
	fields := strings.Fields(output)
	if len(fields) != 2 {
		return 0, 0
	}
	ahead := parseCount(fields[0])
	behind := parseCount(fields[1])
	return ahead, behind
}

func parseCount(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}

// conflictSignal reports whether pull/rebase output indicates a conflicted
// stop rather than a hard failure.
func conflictSignal(output string) bool {
	for _, marker := range []string{
		"CONFLICT",
		"Automatic merge failed",
		"could not apply",
		"Resolve all conflicts manually",
		"needs merge",
	} {
		if strings.Contains(output, marker) {
			return true
		}
	}
	return false
}

// pushRejected reports whether push output indicates a non-fast-forward
// rejection, which is retryable after pulling.
func pushRejected(output string) bool {
	for _, marker := range []string{
		"[rejected]",
		"non-fast-forward",
		"fetch first",
		"Updates were rejected",
	} {
		if strings.Contains(output, marker) {
			return true
		}
	}
	return false
}
