package stagefs

import (
	"errors"
	"io/fs"
	"os"

	"github.com/spf13/afero"
)

// realFS is the real filesystem adapter: stateless access to actual disk
// entries through an afero backend, given already-resolved absolute paths.
// It owns the translation from backend errors to the stagefs taxonomy.
type realFS struct {
	base afero.Fs
}

// Stat returns file info for a real path.
func (r *realFS) Stat(p string) (fs.FileInfo, error) {
	info, err := r.base.Stat(p)
	if err != nil {
		return nil, translateBaseError("stat", p, err)
	}
	return info, nil
}

// Exists probes a real path. A not-found result is not an error.
func (r *realFS) Exists(p string) (bool, error) {
	_, err := r.base.Stat(p)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, translateBaseError("stat", p, err)
}

// ReadFile reads the contents of a real file.
func (r *realFS) ReadFile(p string) ([]byte, error) {
	info, err := r.base.Stat(p)
	if err != nil {
		return nil, translateBaseError("read", p, err)
	}
	if info.IsDir() {
		return nil, pathErr("read", p, ErrIllegalOperationOnDirectory)
	}
	data, err := afero.ReadFile(r.base, p)
	if err != nil {
		return nil, translateBaseError("read", p, err)
	}
	return data, nil
}

// ReadDir lists a real directory. Callers probing the merged view tolerate
// ErrNotFound as "no real entries"; that decision is theirs, not ours.
func (r *realFS) ReadDir(p string) ([]fs.FileInfo, error) {
	infos, err := afero.ReadDir(r.base, p)
	if err != nil {
		return nil, translateBaseError("readdir", p, err)
	}
	return infos, nil
}

// WriteFile writes bytes to a real path, creating parents first.
func (r *realFS) WriteFile(p string, data []byte) error {
	if err := r.MkdirAll(parentOf(p)); err != nil {
		return err
	}
	if err := afero.WriteFile(r.base, p, data, 0o644); err != nil {
		return translateBaseError("write", p, err)
	}
	return nil
}

// MkdirAll creates a real directory and any missing parents.
func (r *realFS) MkdirAll(p string) error {
	if err := r.base.MkdirAll(p, 0o755); err != nil {
		return translateBaseError("mkdir", p, err)
	}
	return nil
}

// RemoveAll deletes a real path and everything below it. Removing a path
// that does not exist is not an error, matching os.RemoveAll.
func (r *realFS) RemoveAll(p string) error {
	err := r.base.RemoveAll(p)
	if err != nil && !os.IsNotExist(err) {
		return translateBaseError("removeall", p, err)
	}
	return nil
}

// Rename moves a real path, creating the destination's parents first.
func (r *realFS) Rename(oldpath, newpath string) error {
	if err := r.MkdirAll(parentOf(newpath)); err != nil {
		return err
	}
	if err := r.base.Rename(oldpath, newpath); err != nil {
		return translateBaseError("rename", oldpath, err)
	}
	return nil
}

// isNotFound reports whether an error is the taxonomy's not-found kind.
func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
