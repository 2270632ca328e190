// Package message builds commit-message prompts and parses model responses
// into conventional-commit form.
package message

import (
	"errors"
	"strings"
)

// ErrGenerationUnavailable reports that the commit message could not be
// generated. The workflow falls back to a manual prompt; message generation
// is not essential to the commit itself.
var ErrGenerationUnavailable = errors.New("commit message generation unavailable")

// Fallback is offered as the default when generation fails and the user
// declines to type a message.
const Fallback = "update: code changes"

// summaryLimit caps the conventional-commit header line.
const summaryLimit = 72

// CommitMessage is a conventional-commit message: one typed summary line and
// optional body bullets. It is generated once per workflow run and never
// mutated after the user accepts it.
type CommitMessage struct {
	Summary string
	Body    []string
}

// String renders the message in the form `git commit -m` expects: the
// summary, then a blank line and bulleted body lines when present.
func (m CommitMessage) String() string {
	if len(m.Body) == 0 {
		return m.Summary
	}
	var sb strings.Builder
	sb.WriteString(m.Summary)
	sb.WriteString("\n")
	for _, line := range m.Body {
		sb.WriteString("\n- ")
		sb.WriteString(line)
	}
	return sb.String()
}

// IsZero reports whether the message is empty.
func (m CommitMessage) IsZero() bool {
	return m.Summary == ""
}

// ParseResponse turns free model output into a CommitMessage: code fences
// are stripped, the first non-empty line becomes the summary (capped at 72
// runes), and remaining non-empty lines become body bullets with their list
// markers removed.
func ParseResponse(raw string) CommitMessage {
	raw = stripCodeFences(strings.TrimSpace(raw))

	var msg CommitMessage
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if msg.Summary == "" {
			msg.Summary = capSummary(line)
			continue
		}
		msg.Body = append(msg.Body, trimBullet(line))
	}
	return msg
}

func stripCodeFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	lines := strings.Split(s, "\n")
	if strings.HasPrefix(lines[0], "```") {
		lines = lines[1:]
	}
	if len(lines) > 0 && strings.HasPrefix(strings.TrimSpace(lines[len(lines)-1]), "```") {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func capSummary(line string) string {
	runes := []rune(line)
	if len(runes) <= summaryLimit {
		return line
	}
	return string(runes[:summaryLimit-3]) + "..."
}

func trimBullet(line string) string {
	for _, prefix := range []string{"- ", "* ", "• "} {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(line[len(prefix):])
		}
	}
	return line
}
