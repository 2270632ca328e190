package message

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseResponse(t *testing.T) {
	cases := []struct {
		name        string
		raw         string
		wantSummary string
		wantBody    []string
	}{
		{
			name:        "bare summary",
			raw:         "feat(auth): add token validation",
			wantSummary: "feat(auth): add token validation",
		},
		{
			name:        "summary with bullet body",
			raw:         "fix(parser): handle CRLF input\n\n- normalize line endings\n- preserve EOL style on output",
			wantSummary: "fix(parser): handle CRLF input",
			wantBody:    []string{"normalize line endings", "preserve EOL style on output"},
		},
		{
			name:        "code fences stripped",
			raw:         "```\nchore: bump dependencies\n```",
			wantSummary: "chore: bump dependencies",
		},
		{
			name:        "fences with language tag",
			raw:         "```text\ndocs: update readme\n- fix typos\n```",
			wantSummary: "docs: update readme",
			wantBody:    []string{"fix typos"},
		},
		{
			name:        "asterisk bullets",
			raw:         "refactor: split status probe\n\n* extract porcelain parser\n* add ahead/behind counts",
			wantSummary: "refactor: split status probe",
			wantBody:    []string{"extract porcelain parser", "add ahead/behind counts"},
		},
		{
			name:        "surrounding whitespace",
			raw:         "  \n feat: trimmed \n",
			wantSummary: "feat: trimmed",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			msg := ParseResponse(tc.raw)
			assert.Equal(t, tc.wantSummary, msg.Summary)
			assert.Equal(t, tc.wantBody, msg.Body)
		})
	}
}

func TestParseResponse_CapsLongSummary(t *testing.T) {
	long := "feat: " + strings.Repeat("x", 100)
	msg := ParseResponse(long)
	assert.LessOrEqual(t, len([]rune(msg.Summary)), summaryLimit)
	assert.True(t, strings.HasSuffix(msg.Summary, "..."))
}

func TestCommitMessage_String(t *testing.T) {
	t.Run("summary only", func(t *testing.T) {
		msg := CommitMessage{Summary: "fix: thing"}
		assert.Equal(t, "fix: thing", msg.String())
	})

	t.Run("summary with body", func(t *testing.T) {
		msg := CommitMessage{
			Summary: "feat: add sync",
			Body:    []string{"pull before commit", "retry push once"},
		}
		assert.Equal(t, "feat: add sync\n\n- pull before commit\n- retry push once", msg.String())
	})
}

func TestCommitMessage_IsZero(t *testing.T) {
	assert.True(t, CommitMessage{}.IsZero())
	assert.False(t, CommitMessage{Summary: "x"}.IsZero())
}
