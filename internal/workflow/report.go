package workflow

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoChanges reports a clean tree with nothing to commit or push.
	ErrNoChanges = errors.New("no changes to sync")
	// ErrUserAborted reports that the user cancelled at a prompt.
	ErrUserAborted = errors.New("sync aborted by user")
	// ErrDivergedAgain reports a push rejected a second time after the one
	// automatic pull-and-retry.
	ErrDivergedAgain = errors.New("remote diverged again after retry")
)

// Report records exactly what a run did. A failed push after a successful
// commit is a partial success, never "nothing happened": the commit exists
// locally and the report says so.
type Report struct {
	RunID  string
	Branch string
	Phases []Phase

	Pulled        bool
	ResolvedFiles []string
	SkippedFiles  []string
	CommitSet     []string
	Message       string
	Committed     bool
	Pushed        bool
	DryRun        bool

	Warnings []string
	Err      error
}

// PartialSuccess reports a run that created a local commit but failed before
// the push completed.
func (r Report) PartialSuccess() bool {
	return r.Committed && !r.Pushed && r.Err != nil
}

// Summary is the user-facing one-liner of what succeeded and what did not.
func (r Report) Summary() string {
	var parts []string
	if r.Pulled {
		parts = append(parts, "pulled")
	}
	if total := len(r.ResolvedFiles) + len(r.SkippedFiles); total > 0 {
		parts = append(parts, fmt.Sprintf("resolved %d of %d conflicts", len(r.ResolvedFiles), total))
	}
	switch {
	case r.DryRun && r.Message != "":
		parts = append(parts, "dry run, no commit made")
	case r.Committed:
		parts = append(parts, fmt.Sprintf("%d file(s) committed", len(r.CommitSet)))
	}
	if r.Pushed {
		parts = append(parts, "pushed")
	} else if r.Committed {
		parts = append(parts, "not pushed")
	}
	if len(r.SkippedFiles) > 0 {
		parts = append(parts, "still conflicted: "+strings.Join(r.SkippedFiles, ", "))
	}
	if len(parts) == 0 {
		if r.Err != nil {
			return "nothing done"
		}
		return "nothing to do"
	}
	return strings.Join(parts, ", ")
}
