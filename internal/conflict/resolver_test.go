package conflict

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemResolver(t *testing.T, path, content string) *Resolver {
	t.Helper()
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, path, []byte(content), 0o644))
	return NewResolver(fsys)
}

func TestResolver_ReadHunks(t *testing.T) {
	r := newMemResolver(t, "auth.go", simpleConflict)

	hunks, err := r.ReadHunks("auth.go")
	require.NoError(t, err)
	require.Len(t, hunks, 1)
	assert.Equal(t, "auth.go", hunks[0].Path)
}

func TestResolver_ResolveFile(t *testing.T) {
	r := newMemResolver(t, "auth.go", simpleConflict)

	require.NoError(t, r.ResolveFile("auth.go", KeepTheirs))

	content, err := afero.ReadFile(r.Fs, "auth.go")
	require.NoError(t, err)
	assert.Contains(t, string(content), "check_password(user)")
	assert.False(t, HasMarkers(string(content)))
	assert.NoError(t, r.CheckResolved("auth.go"))
}

func TestResolver_ResolveFileMissing(t *testing.T) {
	r := NewResolver(afero.NewMemMapFs())
	assert.Error(t, r.ResolveFile("absent.go", KeepOurs))
}

func TestResolver_CheckResolvedReportsLeftoverMarkers(t *testing.T) {
	r := newMemResolver(t, "auth.go", simpleConflict)

	err := r.CheckResolved("auth.go")
	assert.ErrorIs(t, err, ErrUnresolvedMarkers)
}

func TestNewResolver_DefaultsToOsFs(t *testing.T) {
	r := NewResolver(nil)
	assert.NotNil(t, r.Fs)
}
