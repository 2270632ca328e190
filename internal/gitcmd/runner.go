// Package gitcmd runs git as a subprocess with captured output.
package gitcmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"
)

// ErrTimedOut marks a git invocation that exceeded the runner's timeout.
var ErrTimedOut = errors.New("git command timed out")

// Runner executes git commands with shared logging, timeout, and output handling.
type Runner struct {
	Verbose bool
	Dir     string
	Env     []string
	Timeout time.Duration
	Logger  io.Writer
}

// Result contains captured stdout/stderr for a git command.
type Result struct {
	Stdout []byte
	Stderr []byte
}

func (r Result) StdoutString(trim bool) string {
	output := string(r.Stdout)
	if trim {
		return strings.TrimSpace(output)
	}
	return output
}

func (r Result) StderrString(trim bool) string {
	output := string(r.Stderr)
	if trim {
		return strings.TrimSpace(output)
	}
	return output
}

// CombinedString joins stdout and stderr, for callers that scan both streams.
func (r Result) CombinedString(trim bool) string {
	output := string(r.Stdout) + string(r.Stderr)
	if trim {
		return strings.TrimSpace(output)
	}
	return output
}

// LookPath reports whether a git executable is available.
func LookPath() error {
	_, err := exec.LookPath("git")
	return err
}

func (r Runner) withDefaults() Runner {
	if r.Logger == nil {
		r.Logger = os.Stderr
	}
	return r
}

func (r Runner) command(ctx context.Context, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, "git", args...)
	if r.Dir != "" {
		cmd.Dir = r.Dir
	}
	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}
	return cmd
}

func (r Runner) log(args []string) {
	if !r.Verbose {
		return
	}
	r = r.withDefaults()
	fmt.Fprintf(r.Logger, "Running: git %s\n", strings.Join(args, " "))
}

// Run executes a git command and captures stdout/stderr.
func (r Runner) Run(ctx context.Context, args ...string) (Result, error) {
	return r.run(ctx, args, false)
}

// RunLogged executes a git command, logs when verbose, and captures stdout/stderr.
func (r Runner) RunLogged(ctx context.Context, args ...string) (Result, error) {
	return r.run(ctx, args, true)
}

func (r Runner) run(ctx context.Context, args []string, log bool) (Result, error) {
	if log {
		r.log(args)
	}

	runCtx := ctx
	cancel := func() {}
	if r.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, r.Timeout)
	}
	defer cancel()

	cmd := r.command(runCtx, args...)
	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	err := cmd.Run()
	result := Result{Stdout: outBuf.Bytes(), Stderr: errBuf.Bytes()}
	if err != nil && errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return result, fmt.Errorf("git %s after %s: %w", args[0], r.Timeout, ErrTimedOut)
	}
	return result, err
}
