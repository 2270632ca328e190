package workflow

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
	"github.com/sungit/sungit/internal/conflict"
	"github.com/sungit/sungit/internal/message"
)

// previewLines bounds how much of each conflict side is printed.
const previewLines = 20

// InteractivePrompter drives the console: a select form per conflicted file
// and the y/n/r/e line prompt for the commit confirmation.
type InteractivePrompter struct {
	ErrWriter io.Writer
	Stdin     io.Reader
	AutoYes   bool
}

func (p *InteractivePrompter) AskConflictChoice(file string, hunks []conflict.Hunk) (conflict.Choice, error) {
	if err := p.requireTerminal("conflict resolution"); err != nil {
		return conflict.AbortAll, err
	}

	fmt.Fprintf(p.ErrWriter, "\nConflict in %s (%d hunk(s)):\n", file, len(hunks))
	p.printHunkPreview(hunks[0])
	if len(hunks) > 1 {
		// One choice covers every hunk in the file.
		fmt.Fprintf(p.ErrWriter, "The chosen strategy applies to all %d hunks in this file.\n", len(hunks))
	}

	choice := conflict.KeepOurs
	err := huh.NewSelect[conflict.Choice]().
		Title("Resolve " + file).
		Options(
			huh.NewOption("Keep ours (current branch)", conflict.KeepOurs),
			huh.NewOption("Keep theirs (incoming)", conflict.KeepTheirs),
			huh.NewOption("Keep both (ours then theirs)", conflict.KeepBoth),
			huh.NewOption("Edit the file manually", conflict.ManualEdit),
			huh.NewOption("Skip this file", conflict.Skip),
			huh.NewOption("Abort the whole sync", conflict.AbortAll),
		).
		Value(&choice).
		Run()
	if err != nil {
		return conflict.AbortAll, err
	}
	return choice, nil
}

func (p *InteractivePrompter) printHunkPreview(hunk conflict.Hunk) {
	fmt.Fprintln(p.ErrWriter, "--- ours (current branch) ---")
	p.printSide(hunk.Ours)
	fmt.Fprintln(p.ErrWriter, "--- theirs (incoming) ---")
	p.printSide(hunk.Theirs)
}

func (p *InteractivePrompter) printSide(lines []string) {
	for i, line := range lines {
		if i == previewLines {
			fmt.Fprintf(p.ErrWriter, "... (%d more lines)\n", len(lines)-previewLines)
			return
		}
		fmt.Fprintln(p.ErrWriter, "  "+line)
	}
}

func (p *InteractivePrompter) AskCommitConfirmation(msg message.CommitMessage) (Action, message.CommitMessage, error) {
	if p.AutoYes {
		fmt.Fprintln(p.ErrWriter, "Auto-confirming commit message (-y flag is set)")
		return ActionCommit, message.CommitMessage{}, nil
	}
	if err := p.requireTerminal("commit confirmation"); err != nil {
		return ActionCancel, message.CommitMessage{}, err
	}

	fmt.Fprint(p.ErrWriter,
		"\nProceed with this commit message? [y/n/r/e] (y=yes, n=no, r=regenerate, e=edit): ")
	response, err := p.readLine()
	if err != nil {
		return ActionCancel, message.CommitMessage{}, fmt.Errorf("failed to read user input: %w", err)
	}

	switch strings.ToLower(response) {
	case "n":
		return ActionCancel, message.CommitMessage{}, nil
	case "r":
		return ActionRegenerate, message.CommitMessage{}, nil
	case "e":
		edited, err := p.editMessage(msg)
		return ActionCommit, edited, err
	case "y", "":
		if response == "" {
			fmt.Fprintln(p.ErrWriter, "Using default option (yes)")
		}
		return ActionCommit, message.CommitMessage{}, nil
	default:
		fmt.Fprintln(p.ErrWriter, "Invalid input. Commit cancelled")
		return ActionCancel, message.CommitMessage{}, nil
	}
}

func (p *InteractivePrompter) AskManualMessage(fallback string) (string, error) {
	if p.AutoYes {
		return fallback, nil
	}
	if err := p.requireTerminal("manual commit message entry"); err != nil {
		return "", err
	}

	fmt.Fprintf(p.ErrWriter, "Enter a commit message (blank for %q): ", fallback)
	return p.readLine()
}

// EditFile opens path in the user's editor, in place.
func (p *InteractivePrompter) EditFile(path string) error {
	fmt.Fprintf(p.ErrWriter, "Opening editor for %s...\n", path)

	cmd := exec.Command(getEditor(), path)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

// editMessage round-trips the message through a temp file in the editor.
func (p *InteractivePrompter) editMessage(msg message.CommitMessage) (message.CommitMessage, error) {
	tmpFile, err := os.CreateTemp("", "sungit-commit-")
	if err != nil {
		return message.CommitMessage{}, fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpFileName := tmpFile.Name()
	defer os.Remove(tmpFileName)

	if _, err := tmpFile.WriteString(msg.String()); err != nil {
		tmpFile.Close()
		return message.CommitMessage{}, fmt.Errorf("failed to write to temporary file: %w", err)
	}
	tmpFile.Close()

	if err := p.EditFile(tmpFileName); err != nil {
		return message.CommitMessage{}, err
	}

	editedBytes, err := os.ReadFile(tmpFileName)
	if err != nil {
		return message.CommitMessage{}, fmt.Errorf("failed to read edited message: %w", err)
	}

	edited := strings.TrimSpace(string(editedBytes))
	if edited == "" {
		fmt.Fprintln(p.ErrWriter, "Empty message provided, using original message")
		return message.CommitMessage{}, nil
	}
	parsed := message.ParseResponse(edited)
	fmt.Fprintln(p.ErrWriter, "Using edited message:")
	fmt.Fprintln(p.ErrWriter, parsed.String())
	return parsed, nil
}

func (p *InteractivePrompter) requireTerminal(what string) error {
	stdin := p.stdin()
	if f, ok := stdin.(*os.File); ok {
		if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
			return errors.New("stdin is not a terminal, " + what + " needs an interactive session")
		}
	}
	return nil
}

func (p *InteractivePrompter) stdin() io.Reader {
	if p.Stdin != nil {
		return p.Stdin
	}
	return os.Stdin
}

func (p *InteractivePrompter) readLine() (string, error) {
	reader := bufio.NewReader(p.stdin())
	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func getEditor() string {
	if editor := os.Getenv("EDITOR"); editor != "" {
		return editor
	}
	if editor := os.Getenv("VISUAL"); editor != "" {
		return editor
	}
	return "vi"
}
