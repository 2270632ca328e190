package git

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sungit/sungit/internal/gitcmd"
)

// newTempRepo initializes a disposable repository under t.TempDir. Every
// Client in these tests is pinned to that directory, so nothing can touch
// the repository the tests themselves live in.
func newTempRepo(t *testing.T) (string, *Client) {
	t.Helper()

	if err := gitcmd.LookPath(); err != nil {
		t.Skip("git binary not available")
	}

	dir := t.TempDir()
	runner := gitcmd.Runner{Dir: dir}
	ctx := context.Background()

	for _, args := range [][]string{
		{"init"},
		{"config", "user.name", "Test User"},
		{"config", "user.email", "test@example.com"},
		{"config", "commit.gpgsign", "false"},
	} {
		if _, err := runner.Run(ctx, args...); err != nil {
			t.Fatalf("setup %v: %v", args, err)
		}
	}

	return dir, NewClient(Options{Dir: dir})
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestCheckRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("inside a repository", func(t *testing.T) {
		_, client := newTempRepo(t)
		assert.NoError(t, client.CheckRepository(ctx))
	})

	t.Run("outside a repository", func(t *testing.T) {
		if err := gitcmd.LookPath(); err != nil {
			t.Skip("git binary not available")
		}
		client := NewClient(Options{Dir: t.TempDir()})
		assert.ErrorIs(t, client.CheckRepository(ctx), ErrNotRepository)
	})
}

func TestRoot(t *testing.T) {
	ctx := context.Background()
	dir, client := newTempRepo(t)

	root, err := client.Root(ctx)
	require.NoError(t, err)

	wantDir, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	gotDir, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	assert.Equal(t, wantDir, gotDir)
}

func TestStatusStageCommit(t *testing.T) {
	ctx := context.Background()
	dir, client := newTempRepo(t)

	status, err := client.Status(ctx)
	require.NoError(t, err)
	assert.True(t, status.Clean())
	assert.NotEmpty(t, status.Branch)

	writeFile(t, dir, "a.txt", "hello\n")

	status, err = client.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt"}, status.Untracked)
	assert.True(t, status.HasChanges())

	require.NoError(t, client.StageAll(ctx))

	staged, err := client.StagedFiles(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt"}, staged)

	diff, err := client.StagedDiff(ctx)
	require.NoError(t, err)
	assert.Contains(t, diff, "+hello")

	require.NoError(t, client.Commit(ctx, "feat: add a.txt"))

	status, err = client.Status(ctx)
	require.NoError(t, err)
	assert.True(t, status.Clean())

	recent, err := client.RecentCommits(ctx, 3)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Contains(t, recent[0], "feat: add a.txt")
}

func TestStageFilesIsSelective(t *testing.T) {
	ctx := context.Background()
	dir, client := newTempRepo(t)

	writeFile(t, dir, "keep.txt", "keep\n")
	writeFile(t, dir, "skip.txt", "skip\n")

	require.NoError(t, client.StageFiles(ctx, []string{"keep.txt"}))

	staged, err := client.StagedFiles(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"keep.txt"}, staged)

	status, err := client.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"skip.txt"}, status.Untracked)
}

func TestRecentCommitsEmptyRepository(t *testing.T) {
	ctx := context.Background()
	_, client := newTempRepo(t)

	recent, err := client.RecentCommits(ctx, 3)
	assert.NoError(t, err)
	assert.Empty(t, recent)
}

func TestStageFilesNoPathsIsNoop(t *testing.T) {
	_, client := newTempRepo(t)
	assert.NoError(t, client.StageFiles(context.Background(), nil))
}
