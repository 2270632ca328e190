package gitutil

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/sungit/sungit/internal/gitcmd"
	"github.com/sungit/sungit/internal/stringsutil"
)

// stderrLimit bounds how much subprocess stderr reaches the user-facing
// error; hook output can run to pages.
const stderrLimit = 500

// WrapGitError builds an error message that prefers git stderr output when
// present, falling back to the subprocess exit status.
func WrapGitError(action string, result gitcmd.Result, err error) error {
	errMsg := strings.TrimSpace(string(result.Stderr))
	if errMsg != "" {
		return fmt.Errorf("%s: %s: %w", action, stringsutil.Truncate(errMsg, stderrLimit), err)
	}
	if code := ExitCode(err); code >= 0 {
		return fmt.Errorf("%s: git exited with status %d: %w", action, code, err)
	}
	return fmt.Errorf("%s: %w", action, err)
}

// ExitCode extracts the subprocess exit code from err, or -1 when err does not
// carry one.
func ExitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
