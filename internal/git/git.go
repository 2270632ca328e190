// Package git drives the installed git binary for the sync workflow:
// status probing, pulling with rebase, staging, committing, and pushing.
package git

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/sungit/sungit/internal/gitcmd"
	"github.com/sungit/sungit/internal/gitutil"
	"github.com/sungit/sungit/internal/stringsutil"
)

var (
	// ErrNotRepository reports that the working directory is not inside a git repository.
	ErrNotRepository = errors.New("not a git repository")
	// ErrToolUnavailable reports that git cannot be invoked at all.
	ErrToolUnavailable = errors.New("git is not available")
	// ErrPushRejected reports a non-fast-forward push rejection.
	ErrPushRejected = errors.New("push rejected: remote contains work you do not have locally")
)

// Options configures a Client.
type Options struct {
	Dir     string
	Verbose bool
	Timeout time.Duration
	Logger  io.Writer
}

// Client runs git subprocesses against one working directory.
type Client struct {
	runner gitcmd.Runner
}

func NewClient(opts Options) *Client {
	return &Client{
		runner: gitcmd.Runner{
			Verbose: opts.Verbose,
			Dir:     opts.Dir,
			Timeout: opts.Timeout,
			Logger:  opts.Logger,
		},
	}
}

// PullResult reports the outcome of a pull. Conflicted means the pull stopped
// on merge conflicts, which is an expected state rather than a failure.
type PullResult struct {
	Output     string
	Conflicted bool
}

// CheckRepository verifies that git is invocable and the directory is a work tree.
func (c *Client) CheckRepository(ctx context.Context) error {
	if err := gitcmd.LookPath(); err != nil {
		return fmt.Errorf("%w: %v", ErrToolUnavailable, err)
	}

	result, err := c.runner.Run(ctx, "rev-parse", "--is-inside-work-tree")
	if err != nil {
		if errors.Is(err, gitcmd.ErrTimedOut) {
			return fmt.Errorf("%w: %v", ErrToolUnavailable, err)
		}
		return fmt.Errorf("%w (%s)", ErrNotRepository, result.StderrString(true))
	}
	if result.StdoutString(true) != "true" {
		return ErrNotRepository
	}
	return nil
}

// Root returns the absolute path of the repository's top-level directory.
func (c *Client) Root(ctx context.Context) (string, error) {
	result, err := c.runner.Run(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", c.wrap("failed to locate repository root", result, err)
	}
	return result.StdoutString(true), nil
}

// Status probes branch name, ahead/behind counts, and the working-tree file sets.
func (c *Client) Status(ctx context.Context) (Status, error) {
	status := Status{}

	branch, err := c.runner.Run(ctx, "branch", "--show-current")
	if err != nil {
		return status, c.wrap("failed to read current branch", branch, err)
	}
	status.Branch = branch.StdoutString(true)

	porcelain, err := c.runner.RunLogged(ctx, "status", "--porcelain")
	if err != nil {
		return status, c.wrap("failed to read repository status", porcelain, err)
	}
	parsePorcelain(porcelain.StdoutString(false), &status)

	// No upstream configured is not an error; the counts stay at zero.
	counts, err := c.runner.Run(ctx, "rev-list", "--left-right", "--count", "HEAD...@{u}")
	if err == nil {
		status.Ahead, status.Behind = parseAheadBehind(counts.StdoutString(true))
	} else if errors.Is(err, gitcmd.ErrTimedOut) {
		return status, fmt.Errorf("%w: %v", ErrToolUnavailable, err)
	}

	return status, nil
}

// Pull runs pull with integrated rebase. A conflicted stop is reported through
// PullResult, not the error.
func (c *Client) Pull(ctx context.Context) (PullResult, error) {
	result, err := c.runner.RunLogged(ctx, "pull", "--rebase")
	output := result.CombinedString(true)
	if err == nil {
		return PullResult{Output: output}, nil
	}
	if errors.Is(err, gitcmd.ErrTimedOut) {
		return PullResult{Output: output}, fmt.Errorf("%w: %v", ErrToolUnavailable, err)
	}
	if conflictSignal(output) {
		return PullResult{Output: output, Conflicted: true}, nil
	}
	return PullResult{Output: output}, c.wrap("pull failed", result, err)
}

// ContinueRebase resumes a conflicted rebase after its paths were resolved.
// It is a no-op when no rebase is in progress.
func (c *Client) ContinueRebase(ctx context.Context) error {
	runner := c.runner
	runner.Env = append(runner.Env, "GIT_EDITOR=true")
	result, err := runner.RunLogged(ctx, "rebase", "--continue")
	if err == nil {
		return nil
	}
	if strings.Contains(result.CombinedString(false), "No rebase in progress") {
		return nil
	}
	return c.wrap("failed to continue rebase", result, err)
}

// AbortIntegration unwinds an in-progress rebase, falling back to aborting an
// in-progress merge. It succeeds when neither is in progress.
func (c *Client) AbortIntegration(ctx context.Context) error {
	result, err := c.runner.RunLogged(ctx, "rebase", "--abort")
	if err == nil {
		return nil
	}
	if errors.Is(err, gitcmd.ErrTimedOut) {
		return fmt.Errorf("%w: %v", ErrToolUnavailable, err)
	}

	merge, mergeErr := c.runner.RunLogged(ctx, "merge", "--abort")
	if mergeErr == nil {
		return nil
	}
	if strings.Contains(merge.CombinedString(false), "MERGE_HEAD missing") ||
		strings.Contains(result.CombinedString(false), "No rebase in progress") {
		return nil
	}
	return c.wrap("failed to abort rebase", result, err)
}

// StageAll stages every change in the working tree.
func (c *Client) StageAll(ctx context.Context) error {
	result, err := c.runner.RunLogged(ctx, "add", "-A")
	if err != nil {
		return c.wrap("failed to stage changes", result, err)
	}
	return nil
}

// StageFiles stages the given paths.
func (c *Client) StageFiles(ctx context.Context, files []string) error {
	if len(files) == 0 {
		return nil
	}
	args := append([]string{"add", "--"}, files...)
	result, err := c.runner.RunLogged(ctx, args...)
	if err != nil {
		return c.wrap("failed to stage files", result, err)
	}
	return nil
}

// StagedDiff returns the diff of the index against HEAD.
func (c *Client) StagedDiff(ctx context.Context) (string, error) {
	result, err := c.runner.Run(ctx, "diff", "--cached", "--no-color")
	if err != nil {
		return "", c.wrap("failed to read staged diff", result, err)
	}
	return result.StdoutString(false), nil
}

// StagedFiles returns the paths with staged changes.
func (c *Client) StagedFiles(ctx context.Context) ([]string, error) {
	result, err := c.runner.Run(ctx, "diff", "--cached", "--name-only")
	if err != nil {
		return nil, c.wrap("failed to list staged files", result, err)
	}
	files := stringsutil.SplitNonEmpty(result.StdoutString(true), "\n")
	return stringsutil.UniqueStrings(files), nil
}

// RecentCommits returns up to n recent one-line commit subjects, newest first.
// Repositories without history return an empty list.
func (c *Client) RecentCommits(ctx context.Context, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}
	result, err := c.runner.Run(ctx, "log", "--oneline", "-n", strconv.Itoa(n))
	if err != nil {
		if errors.Is(err, gitcmd.ErrTimedOut) {
			return nil, fmt.Errorf("%w: %v", ErrToolUnavailable, err)
		}
		return nil, nil
	}
	return stringsutil.SplitNonEmpty(result.StdoutString(true), "\n"), nil
}

// Commit records the staged changes with the given message.
func (c *Client) Commit(ctx context.Context, message string) error {
	result, err := c.runner.RunLogged(ctx, "commit", "-m", message)
	if err != nil {
		return c.wrap("commit failed", result, err)
	}
	return nil
}

// Push publishes the current branch. A non-fast-forward rejection is returned
// as ErrPushRejected so the caller can retry after pulling.
func (c *Client) Push(ctx context.Context) error {
	result, err := c.runner.RunLogged(ctx, "push")
	if err == nil {
		return nil
	}
	if errors.Is(err, gitcmd.ErrTimedOut) {
		return fmt.Errorf("%w: %v", ErrToolUnavailable, err)
	}
	if pushRejected(result.CombinedString(false)) {
		return fmt.Errorf("%w: %s", ErrPushRejected, result.StderrString(true))
	}
	return c.wrap("push failed", result, err)
}

func (c *Client) wrap(action string, result gitcmd.Result, err error) error {
	if errors.Is(err, gitcmd.ErrTimedOut) {
		return fmt.Errorf("%w: %v", ErrToolUnavailable, err)
	}
	return gitutil.WrapGitError(action, result, err)
}
