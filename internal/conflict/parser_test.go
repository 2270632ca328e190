package conflict

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const simpleConflict = `package auth

func login() error {
<<<<<<< HEAD
	return validate_token()
=======
	return check_password(user)
>>>>>>> origin/main
}
`

func TestParse_SingleHunk(t *testing.T) {
	hunks, err := Parse(simpleConflict)
	require.NoError(t, err)
	require.Len(t, hunks, 1)

	hunk := hunks[0]
	assert.Equal(t, []string{"\treturn validate_token()"}, hunk.Ours)
	assert.Equal(t, []string{"\treturn check_password(user)"}, hunk.Theirs)
	assert.False(t, hunk.HasBase)
	assert.Equal(t, 3, hunk.StartLine)
	assert.Equal(t, 7, hunk.EndLine)
}

func TestParse_NoMarkers(t *testing.T) {
	hunks, err := Parse("plain content\nwith two lines\n")
	require.NoError(t, err)
	assert.Empty(t, hunks)
}

func TestParse_MultipleHunks(t *testing.T) {
	content := strings.Join([]string{
		"a",
		"<<<<<<< HEAD",
		"ours one",
		"=======",
		"theirs one",
		">>>>>>> branch",
		"middle",
		"<<<<<<< HEAD",
		"ours two",
		"=======",
		"theirs two",
		">>>>>>> branch",
		"z",
	}, "\n") + "\n"

	hunks, err := Parse(content)
	require.NoError(t, err)
	require.Len(t, hunks, 2)
	assert.Equal(t, []string{"ours one"}, hunks[0].Ours)
	assert.Equal(t, []string{"theirs two"}, hunks[1].Theirs)
	assert.Less(t, hunks[0].EndLine, hunks[1].StartLine)
}

func TestParse_Diff3BaseSection(t *testing.T) {
	content := strings.Join([]string{
		"<<<<<<< HEAD",
		"ours",
		"||||||| merged common ancestors",
		"base",
		"=======",
		"theirs",
		">>>>>>> branch",
	}, "\n") + "\n"

	hunks, err := Parse(content)
	require.NoError(t, err)
	require.Len(t, hunks, 1)
	assert.True(t, hunks[0].HasBase)
	assert.Equal(t, []string{"base"}, hunks[0].Base)
	assert.Equal(t, []string{"ours"}, hunks[0].Ours)
	assert.Equal(t, []string{"theirs"}, hunks[0].Theirs)
}

func TestParse_SeparatorOutsideHunkIsContent(t *testing.T) {
	content := "Title\n=======\nbody text\n"
	hunks, err := Parse(content)
	require.NoError(t, err)
	assert.Empty(t, hunks)
}

func TestParse_Malformed(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{
			name:    "nested start marker",
			content: "<<<<<<< HEAD\n<<<<<<< HEAD\n=======\nx\n>>>>>>> b\n",
		},
		{
			name:    "stray end marker",
			content: "line\n>>>>>>> branch\n",
		},
		{
			name:    "missing separator",
			content: "<<<<<<< HEAD\nours\n>>>>>>> branch\n",
		},
		{
			name:    "unterminated hunk",
			content: "<<<<<<< HEAD\nours\n=======\ntheirs\n",
		},
		{
			name:    "base marker outside hunk",
			content: "||||||| ancestor\n",
		},
		{
			name:    "repeated separator inside hunk",
			content: "<<<<<<< HEAD\nours\n=======\ntheirs\n=======\nmore\n>>>>>>> b\n",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.content)
			assert.ErrorIs(t, err, ErrMalformedMarkers)
		})
	}
}

func TestApply_KeepOursRoundTrip(t *testing.T) {
	// Resolving with KeepOurs must reproduce the pre-conflict "ours" file.
	want := "package auth\n\nfunc login() error {\n\treturn validate_token()\n}\n"

	got, err := Apply(simpleConflict, KeepOurs)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestApply_KeepTheirs(t *testing.T) {
	got, err := Apply(simpleConflict, KeepTheirs)
	require.NoError(t, err)
	assert.Equal(t, "package auth\n\nfunc login() error {\n\treturn check_password(user)\n}\n", got)
	assert.False(t, HasMarkers(got))
}

func TestApply_KeepBothOrderAndNoMarkers(t *testing.T) {
	got, err := Apply(simpleConflict, KeepBoth)
	require.NoError(t, err)

	oursAt := strings.Index(got, "validate_token")
	theirsAt := strings.Index(got, "check_password")
	assert.Greater(t, oursAt, -1)
	assert.Greater(t, theirsAt, oursAt, "ours lines must come before theirs lines")
	assert.False(t, HasMarkers(got))
	assert.NotContains(t, got, sepMarker+"\n")
}

func TestApply_CRLFPreserved(t *testing.T) {
	content := strings.ReplaceAll(simpleConflict, "\n", "\r\n")

	got, err := Apply(content, KeepTheirs)
	require.NoError(t, err)
	assert.Contains(t, got, "check_password(user)\r\n")
	assert.NotContains(t, strings.ReplaceAll(got, "\r\n", ""), "\n")
}

func TestApply_MultipleHunksSplicedInOrder(t *testing.T) {
	content := strings.Join([]string{
		"head",
		"<<<<<<< HEAD",
		"A-ours",
		"=======",
		"A-theirs",
		">>>>>>> b",
		"mid",
		"<<<<<<< HEAD",
		"B-ours",
		"=======",
		"B-theirs",
		">>>>>>> b",
		"tail",
	}, "\n") + "\n"

	got, err := Apply(content, KeepOurs)
	require.NoError(t, err)
	assert.Equal(t, "head\nA-ours\nmid\nB-ours\ntail\n", got)
}

func TestApply_RejectsNonTextualChoices(t *testing.T) {
	for _, choice := range []Choice{ManualEdit, Skip, AbortAll} {
		_, err := Apply(simpleConflict, choice)
		assert.Error(t, err, choice.String())
	}
}

func TestHasMarkers(t *testing.T) {
	assert.True(t, HasMarkers(simpleConflict))
	assert.False(t, HasMarkers("clean file\n"))
}
