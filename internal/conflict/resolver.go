package conflict

import (
	"fmt"
	"io/fs"

	"github.com/spf13/afero"
)

// Resolver reads and rewrites conflicted files through an afero filesystem
// so tests can run against an in-memory tree.
type Resolver struct {
	Fs afero.Fs
}

func NewResolver(fsys afero.Fs) *Resolver {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &Resolver{Fs: fsys}
}

// ReadHunks parses the conflict hunks of the file at path.
func (r *Resolver) ReadHunks(path string) ([]Hunk, error) {
	content, err := afero.ReadFile(r.Fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read conflicted file %s: %w", path, err)
	}
	hunks, err := Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for i := range hunks {
		hunks[i].Path = path
	}
	return hunks, nil
}

// ResolveFile rewrites the file at path with every hunk resolved by choice,
// keeping the file's permission bits.
func (r *Resolver) ResolveFile(path string, choice Choice) error {
	content, err := afero.ReadFile(r.Fs, path)
	if err != nil {
		return fmt.Errorf("failed to read conflicted file %s: %w", path, err)
	}
	resolved, err := Apply(string(content), choice)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := afero.WriteFile(r.Fs, path, []byte(resolved), filePerm(r.Fs, path)); err != nil {
		return fmt.Errorf("failed to write resolved file %s: %w", path, err)
	}
	return nil
}

// CheckResolved verifies that no conflict markers remain in the file at
// path, returning ErrUnresolvedMarkers when some do. Used after a manual
// edit before the file may be staged.
func (r *Resolver) CheckResolved(path string) error {
	content, err := afero.ReadFile(r.Fs, path)
	if err != nil {
		return fmt.Errorf("failed to read edited file %s: %w", path, err)
	}
	if HasMarkers(string(content)) {
		return fmt.Errorf("%s: %w", path, ErrUnresolvedMarkers)
	}
	return nil
}

func filePerm(fsys afero.Fs, path string) fs.FileMode {
	if info, err := fsys.Stat(path); err == nil {
		return info.Mode().Perm()
	}
	return 0o644
}
