// Package workflow orchestrates the smart git sync: pull, conflict
// resolution, message generation, commit, and push.
package workflow

import (
	"context"

	"github.com/sungit/sungit/internal/conflict"
	"github.com/sungit/sungit/internal/git"
	"github.com/sungit/sungit/internal/message"
)

// GitClient abstracts git operations for testability.
type GitClient interface {
	CheckRepository(ctx context.Context) error
	Root(ctx context.Context) (string, error)
	Status(ctx context.Context) (git.Status, error)
	Pull(ctx context.Context) (git.PullResult, error)
	ContinueRebase(ctx context.Context) error
	AbortIntegration(ctx context.Context) error
	StageAll(ctx context.Context) error
	StageFiles(ctx context.Context, files []string) error
	StagedDiff(ctx context.Context) (string, error)
	StagedFiles(ctx context.Context) ([]string, error)
	RecentCommits(ctx context.Context, n int) ([]string, error)
	Commit(ctx context.Context, msg string) error
	Push(ctx context.Context) error
}

// MessageGenerator abstracts commit message generation.
type MessageGenerator interface {
	Generate(ctx context.Context, req message.Request) (message.CommitMessage, error)
}

// Action is the user's answer to the commit confirmation prompt.
type Action int

const (
	ActionCommit Action = iota
	ActionCancel
	ActionRegenerate
)

// Prompter is the interactive surface. A REPL, a scripted test harness, and
// a non-interactive policy all drive the flow through the same methods.
// Every call is a suspension point: the flow blocks until an answer arrives
// or the prompter reports an error, which aborts the run.
type Prompter interface {
	// AskConflictChoice picks one resolution strategy for a whole file.
	AskConflictChoice(file string, hunks []conflict.Hunk) (conflict.Choice, error)
	// AskCommitConfirmation returns the action and, for an in-prompt edit,
	// a replacement message.
	AskCommitConfirmation(msg message.CommitMessage) (Action, message.CommitMessage, error)
	// AskManualMessage collects a hand-written commit message when
	// generation is unavailable. An empty answer selects fallback.
	AskManualMessage(fallback string) (string, error)
	// EditFile hands path to the user's editor and returns when they are
	// done.
	EditFile(path string) error
}
