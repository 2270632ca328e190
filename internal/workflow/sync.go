package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/sungit/sungit/internal/conflict"
	"github.com/sungit/sungit/internal/git"
	"github.com/sungit/sungit/internal/lock"
	"github.com/sungit/sungit/internal/message"
	"github.com/sungit/sungit/internal/stringsutil"
	"github.com/sungit/sungit/internal/ui"
)

// Options configures one sync run.
type Options struct {
	DryRun  bool
	AutoYes bool
	Verbose bool
	// Intent is the user's free-text utterance, forwarded to the message
	// prompt for context.
	Intent    string
	OutWriter io.Writer
	ErrWriter io.Writer
}

// SyncFlow drives one pull-resolve-commit-push run. All run-scoped state
// lives on the flow and is discarded when Run returns; a flow is not reused.
type SyncFlow struct {
	git      GitClient
	gen      MessageGenerator
	prompter Prompter
	resolver *conflict.Resolver
	opts     Options

	repoRoot string
	phase    Phase
	report   Report
}

func NewSyncFlow(gitClient GitClient, gen MessageGenerator, fsys afero.Fs, opts Options) *SyncFlow {
	if opts.OutWriter == nil {
		opts.OutWriter = os.Stdout
	}
	if opts.ErrWriter == nil {
		opts.ErrWriter = os.Stderr
	}
	return &SyncFlow{
		git:      gitClient,
		gen:      gen,
		prompter: &InteractivePrompter{ErrWriter: opts.ErrWriter, AutoYes: opts.AutoYes},
		resolver: conflict.NewResolver(fsys),
		opts:     opts,
	}
}

// SetPrompter replaces the interactive prompter, for scripted harnesses and
// non-interactive policies.
func (f *SyncFlow) SetPrompter(p Prompter) {
	f.prompter = p
}

// Run executes the full workflow. The returned Report is meaningful even on
// error: it records what succeeded before the failure.
func (f *SyncFlow) Run(ctx context.Context) (Report, error) {
	f.enter(PhaseIdle)

	if err := f.git.CheckRepository(ctx); err != nil {
		return f.fail(err)
	}
	root, err := f.git.Root(ctx)
	if err != nil {
		return f.fail(err)
	}
	f.repoRoot = root

	// One invocation per working directory; a second one is refused, not
	// interleaved.
	lk, err := lock.Acquire(ctx, root)
	if err != nil {
		return f.fail(err)
	}
	defer func() { _ = lk.Release() }()
	f.report.RunID = lk.RunID()

	status, err := f.git.Status(ctx)
	if err != nil {
		return f.fail(err)
	}
	f.report.Branch = status.Branch

	// integrating is true while a rebase/merge is mid-flight, which is
	// exactly when an abort must unwind it.
	integrating := false

	if status.HasConflicts() {
		// An earlier pull already stopped on conflicts; resolve them
		// without issuing another pull.
		f.progress("Unresolved conflicts from an earlier pull detected.")
		integrating = true
		f.enter(PhaseConflictResolution)
		if err := f.resolveConflicts(ctx, status.Conflicted); err != nil {
			return f.abort(ctx, err, integrating)
		}
	} else {
		f.enter(PhasePulling)
		f.progress("Pulling remote changes...")
		pull, err := f.git.Pull(ctx)
		if err != nil {
			return f.fail(err)
		}
		f.report.Pulled = true
		if pull.Conflicted {
			integrating = true
			status, err = f.git.Status(ctx)
			if err != nil {
				return f.abort(ctx, err, integrating)
			}
			f.progress(fmt.Sprintf("Pull stopped on %d conflicted file(s).", len(status.Conflicted)))
			f.enter(PhaseConflictResolution)
			if err := f.resolveConflicts(ctx, status.Conflicted); err != nil {
				return f.abort(ctx, err, integrating)
			}
		}
	}

	// A conflicted rebase can only continue once every file is resolved;
	// skipped files keep it parked and stay out of the commit set.
	if integrating {
		if len(f.report.SkippedFiles) == 0 {
			if err := f.git.ContinueRebase(ctx); err != nil {
				return f.abort(ctx, err, true)
			}
		} else {
			f.warn(fmt.Sprintf("%d file(s) remain conflicted; the rebase stays parked until they are resolved", len(f.report.SkippedFiles)))
		}
	}

	f.enter(PhaseStaging)
	status, err = f.git.Status(ctx)
	if err != nil {
		return f.fail(err)
	}

	// Unmerged paths make `git commit` refuse outright, so with skipped
	// files the run stages what it can and stops here.
	if len(f.report.SkippedFiles) > 0 {
		if err := f.stage(ctx, status.Unstaged, status.Untracked); err != nil {
			return f.fail(err)
		}
		f.warn("resolved files are staged; the commit waits until the remaining conflicts are resolved")
		return f.finish()
	}

	// A clean tree after a continued rebase carries the resolutions inside
	// the replayed commits; they only need publishing.
	if !status.HasChanges() {
		if status.Ahead > 0 {
			f.progress(fmt.Sprintf("Nothing to commit; %d local commit(s) to push.", status.Ahead))
			if err := f.push(ctx); err != nil {
				return f.fail(err)
			}
			return f.finish()
		}
		return f.fail(ErrNoChanges)
	}
	if err := f.stage(ctx, status.Unstaged, status.Untracked); err != nil {
		return f.fail(err)
	}

	f.enter(PhaseMessageGeneration)
	diff, err := f.git.StagedDiff(ctx)
	if err != nil {
		return f.fail(err)
	}
	if strings.TrimSpace(diff) == "" {
		return f.fail(ErrNoChanges)
	}
	files, err := f.git.StagedFiles(ctx)
	if err != nil {
		return f.fail(err)
	}
	f.report.CommitSet = files
	recent, err := f.git.RecentCommits(ctx, 3)
	if err != nil {
		return f.fail(err)
	}

	msg, err := f.generate(ctx, diff, files, recent)
	if err != nil {
		return f.abort(ctx, err, false)
	}

	for {
		f.enter(PhaseAwaitingConfirmation)
		action, edited, err := f.prompter.AskCommitConfirmation(msg)
		if err != nil {
			return f.abort(ctx, err, false)
		}
		if action == ActionCancel {
			return f.abort(ctx, ErrUserAborted, false)
		}
		if action == ActionRegenerate {
			f.progress("Regenerating commit message...")
			f.enter(PhaseMessageGeneration)
			msg, err = f.generate(ctx, diff, files, recent)
			if err != nil {
				return f.abort(ctx, err, false)
			}
			continue
		}
		if !edited.IsZero() {
			msg = edited
		}
		break
	}
	f.report.Message = msg.String()

	f.enter(PhaseCommitting)
	if f.opts.DryRun {
		f.report.DryRun = true
		f.progress("Dry run mode, no actual commit.")
		return f.finish()
	}
	if err := f.git.Commit(ctx, msg.String()); err != nil {
		return f.fail(err)
	}
	f.report.Committed = true
	f.progress("Committed: " + msg.Summary)

	if err := f.push(ctx); err != nil {
		// The commit exists locally; report the partial success, do not
		// pretend nothing happened.
		f.warn("commit created locally but the push did not complete")
		return f.fail(err)
	}
	return f.finish()
}

// resolveConflicts walks the conflicted files in probe order, one choice
// prompt per file.
func (f *SyncFlow) resolveConflicts(ctx context.Context, files []string) error {
	for _, file := range files {
		if err := f.resolveFile(ctx, file); err != nil {
			return err
		}
	}
	return nil
}

func (f *SyncFlow) resolveFile(ctx context.Context, file string) error {
	path := filepath.Join(f.repoRoot, file)
	hunks, err := f.resolver.ReadHunks(path)
	if err != nil {
		return err
	}
	if len(hunks) == 0 {
		// Unmerged without textual markers, e.g. a delete/modify conflict.
		f.warn(file + ": no conflict markers found, leaving it for manual resolution")
		f.report.SkippedFiles = append(f.report.SkippedFiles, file)
		return nil
	}

	choice, err := f.prompter.AskConflictChoice(file, hunks)
	if err != nil {
		return err
	}
	switch choice {
	case conflict.KeepOurs, conflict.KeepTheirs, conflict.KeepBoth:
		if err := f.resolver.ResolveFile(path, choice); err != nil {
			return err
		}
	case conflict.ManualEdit:
		if err := f.prompter.EditFile(path); err != nil {
			return err
		}
		if err := f.resolver.CheckResolved(path); err != nil {
			return err
		}
	case conflict.Skip:
		f.progress("Skipped " + file + "; it stays conflicted and will not be committed.")
		f.report.SkippedFiles = append(f.report.SkippedFiles, file)
		return nil
	case conflict.AbortAll:
		return ErrUserAborted
	default:
		return fmt.Errorf("unknown resolution choice %d", choice)
	}

	if err := f.git.StageFiles(ctx, []string{file}); err != nil {
		return err
	}
	f.report.ResolvedFiles = append(f.report.ResolvedFiles, file)
	f.progress("Resolved " + file + " (" + choice.String() + ").")
	return nil
}

// stage stages the working set. When files were skipped during conflict
// resolution the staging is selective so their markers never reach the
// index.
func (f *SyncFlow) stage(ctx context.Context, unstaged, untracked []string) error {
	if len(f.report.SkippedFiles) == 0 {
		return f.git.StageAll(ctx)
	}

	skipped := make(map[string]bool, len(f.report.SkippedFiles))
	for _, file := range f.report.SkippedFiles {
		skipped[file] = true
	}
	var files []string
	for _, set := range [][]string{unstaged, untracked} {
		for _, file := range set {
			if !skipped[file] {
				files = append(files, file)
			}
		}
	}
	return f.git.StageFiles(ctx, stringsutil.UniqueStrings(files))
}

// generate asks the collaborator for a message, falling back to a manual
// prompt when generation is unavailable.
func (f *SyncFlow) generate(ctx context.Context, diff string, files, recent []string) (message.CommitMessage, error) {
	sp := ui.NewSpinner("Generating commit message...")
	sp.Start()
	msg, err := f.gen.Generate(ctx, message.Request{
		Diff:          diff,
		ChangedFiles:  files,
		RecentCommits: recent,
		Intent:        f.opts.Intent,
	})
	sp.Stop()

	if err == nil {
		fmt.Fprintln(f.opts.ErrWriter, "\nGenerated commit message:")
		fmt.Fprintln(f.opts.OutWriter, msg.String())
		return msg, nil
	}
	if !errors.Is(err, message.ErrGenerationUnavailable) {
		return message.CommitMessage{}, err
	}

	f.warn("commit message generation unavailable: " + err.Error())
	manual, perr := f.prompter.AskManualMessage(message.Fallback)
	if perr != nil {
		return message.CommitMessage{}, perr
	}
	if strings.TrimSpace(manual) == "" {
		manual = message.Fallback
	}
	return message.ParseResponse(manual), nil
}

// push publishes the branch, silently pulling and retrying exactly once on a
// non-fast-forward rejection before surfacing ErrDivergedAgain.
func (f *SyncFlow) push(ctx context.Context) error {
	f.enter(PhasePushing)
	f.progress("Pushing to remote...")
	err := f.git.Push(ctx)
	if err == nil {
		f.report.Pushed = true
		return nil
	}
	if !isPushRejected(err) {
		return err
	}

	f.progress("Remote advanced while we worked; pulling and retrying push...")
	f.enter(PhasePulling)
	pull, perr := f.git.Pull(ctx)
	if perr != nil {
		return perr
	}
	if pull.Conflicted {
		return fmt.Errorf("%w: the retry pull hit conflicts, resolve them and run again", ErrDivergedAgain)
	}

	f.enter(PhasePushing)
	if err := f.git.Push(ctx); err != nil {
		if isPushRejected(err) {
			return fmt.Errorf("%w: %v", ErrDivergedAgain, err)
		}
		return err
	}
	f.report.Pushed = true
	return nil
}

func isPushRejected(err error) bool {
	return errors.Is(err, git.ErrPushRejected)
}

func (f *SyncFlow) enter(phase Phase) {
	f.phase = phase
	f.report.Phases = append(f.report.Phases, phase)
	if f.opts.Verbose {
		fmt.Fprintf(f.opts.ErrWriter, "[phase] %s\n", phase)
	}
}

func (f *SyncFlow) progress(line string) {
	fmt.Fprintln(f.opts.ErrWriter, line)
}

func (f *SyncFlow) warn(w string) {
	f.report.Warnings = append(f.report.Warnings, w)
	fmt.Fprintln(f.opts.ErrWriter, "Warning: "+w)
}

// finish marks the run Done. Skipped files produce a warning outcome, not a
// failure.
func (f *SyncFlow) finish() (Report, error) {
	f.enter(PhaseDone)
	return f.report, nil
}

// fail terminates the run without touching the repository.
func (f *SyncFlow) fail(err error) (Report, error) {
	f.enter(PhaseAborted)
	f.report.Err = err
	return f.report, err
}

// abort terminates the run and, when a rebase/merge is mid-flight, unwinds
// it so the repository is back in its pre-pull state.
func (f *SyncFlow) abort(ctx context.Context, err error, unwind bool) (Report, error) {
	if unwind {
		f.progress("Unwinding in-progress rebase...")
		// The unwind must run even when the abort came from ctx cancellation.
		if aerr := f.git.AbortIntegration(context.WithoutCancel(ctx)); aerr != nil {
			f.warn("failed to unwind rebase: " + aerr.Error())
		} else {
			f.report.ResolvedFiles = nil
			f.report.SkippedFiles = nil
		}
	}
	return f.fail(err)
}
