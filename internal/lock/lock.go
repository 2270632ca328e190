// Package lock serializes workflow invocations per repository working
// directory with an advisory file lock. Concurrent git subprocess calls
// against one working tree corrupt index state, so only one workflow may
// hold the lock at a time; unrelated repositories lock independently.
package lock

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

// ErrBusy reports that another workflow invocation already holds the lock
// for this working directory.
var ErrBusy = errors.New("another sync is already running for this repository")

const (
	acquireTimeout = 5 * time.Second
	retryInterval  = 100 * time.Millisecond
)

// Lock is one held per-workdir advisory lock.
type Lock struct {
	fl    *flock.Flock
	runID string
}

// Acquire takes the advisory lock for repoPath, polling until the context
// or the acquire timeout expires. The lock file carries the PID and a fresh
// run ID for diagnostics.
func Acquire(ctx context.Context, repoPath string) (*Lock, error) {
	abs, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve repository path: %w", err)
	}

	fl := flock.New(Path(abs))
	acquireCtx, cancel := context.WithTimeout(ctx, acquireTimeout)
	defer cancel()

	locked, err := fl.TryLockContext(acquireCtx, retryInterval)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrBusy
		}
		return nil, fmt.Errorf("failed to acquire repository lock: %w", err)
	}
	if !locked {
		return nil, ErrBusy
	}

	runID := uuid.NewString()
	// Best effort: the content is diagnostic only, the flock is the guard.
	_ = os.WriteFile(fl.Path(), []byte(fmt.Sprintf("pid=%d run=%s\n", os.Getpid(), runID)), 0o644)

	return &Lock{fl: fl, runID: runID}, nil
}

// RunID identifies this invocation in reports and the lock file.
func (l *Lock) RunID() string {
	return l.runID
}

// Release drops the lock. Safe to call once per acquired lock.
func (l *Lock) Release() error {
	if err := l.fl.Unlock(); err != nil {
		return fmt.Errorf("failed to release repository lock: %w", err)
	}
	return nil
}

// Path returns the lock file location for a working directory: a hash-named
// file in the system temp directory, so the repository tree itself stays
// untouched.
func Path(absRepoPath string) string {
	sum := sha256.Sum256([]byte(absRepoPath))
	return filepath.Join(os.TempDir(), "sungit-"+hex.EncodeToString(sum[:])[:16]+".lock")
}
