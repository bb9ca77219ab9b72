package stagefs

import (
	"os"
	"path"
	"time"
)

type entryKind int

const (
	entryFile entryKind = iota
	entryDir
)

// entry is one staged overlay record: either pending file content or a
// directory marker. The kind tag keeps every access site explicit about
// which variant it is handling.
type entry struct {
	kind    entryKind
	data    []byte
	modTime time.Time
}

func newFileEntry(data []byte) *entry {
	return &entry{kind: entryFile, data: data, modTime: time.Now()}
}

func newDirEntry() *entry {
	return &entry{kind: entryDir, modTime: time.Now()}
}

func (e *entry) isDir() bool {
	return e.kind == entryDir
}

// Mkdir stages a directory at the given path. Idempotent; creating an
// existing directory is not an error.
func (f *FS) Mkdir(name string) error {
	return f.MkdirAll(name)
}

// MkdirAll stages a directory and any missing ancestors. It walks from the
// resolved path upward toward the working root, staging a marker at every
// level not already present in the merged view, and stops at the first
// level that exists.
func (f *FS) MkdirAll(name string) error {
	p, err := f.resolve(name)
	if err != nil {
		return err
	}
	return f.mkdirAbs(p)
}

func (f *FS) mkdirAbs(p string) error {
	for cur := p; ; cur = parentOf(cur) {
		ok, err := f.existsAbs(cur)
		if err != nil {
			return err
		}
		if ok {
			break
		}
		f.staged[cur] = newDirEntry()
		if cur == f.root || parentOf(cur) == cur {
			break
		}
	}
	return nil
}

// WriteFile stages file content at the given path, clearing any pending
// deletion of the path's original real location and staging missing parent
// directories. The overlay overwrites silently; ErrAlreadyExists only ever
// comes from the base filesystem.
func (f *FS) WriteFile(name string, data []byte) error {
	p, err := f.resolve(name)
	if err != nil {
		return err
	}
	if e, ok := f.staged[p]; ok && e.isDir() {
		return pathErr("write", p, ErrIllegalOperationOnDirectory)
	}
	// Clear a tombstone at the exact virtual path only. Clearing through a
	// rename binding would resurrect the origin of a cancelled move.
	delete(f.deleted, p)
	delete(f.movedFrom, p)
	if parent := parentOf(p); parent != p {
		if err := f.mkdirAbs(parent); err != nil {
			return err
		}
	}
	f.staged[p] = newFileEntry(append([]byte(nil), data...))
	return nil
}

// Remove stages the deletion of a file or directory. Directories must be
// empty in the merged view; use RemoveAll for recursive deletion.
func (f *FS) Remove(name string) error {
	p, err := f.resolve(name)
	if err != nil {
		return err
	}
	ok, err := f.existsAbs(p)
	if err != nil {
		return err
	}
	if !ok {
		return pathErr("remove", p, ErrNotFound)
	}
	if dir, err := f.isDirAbs(p); err != nil {
		return err
	} else if dir {
		children, err := f.readDirAbs(p)
		if err != nil {
			return err
		}
		if len(children) > 0 {
			return pathErr("remove", p, ErrDirectoryNotEmpty)
		}
	}
	f.removeAbs(p)
	return nil
}

// RemoveAll stages the recursive deletion of a path. Removing a path that
// does not exist in the merged view is not an error.
func (f *FS) RemoveAll(name string) error {
	p, err := f.resolve(name)
	if err != nil {
		return err
	}
	ok, err := f.existsAbs(p)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	f.removeAbs(p)
	return nil
}

// removeAbs drops all staged state at or below p and tombstones p's
// original real path. Pending moves into the removed subtree are
// cancelled: their origin is now covered by the tombstone and replaying
// them would resurrect deleted content.
func (f *FS) removeAbs(p string) {
	orig := f.originalPath(p)
	for k := range f.staged {
		if f.isPathPrefix(p, k) {
			delete(f.staged, k)
		}
	}
	for k := range f.renames {
		if f.isPathPrefix(p, k) {
			delete(f.renames, k)
		}
	}
	kept := f.moves[:0]
	for _, mv := range f.moves {
		if !f.isPathPrefix(p, mv.Destination) {
			kept = append(kept, mv)
		}
	}
	f.moves = kept
	f.deleted[orig] = struct{}{}
}

// Rename moves a file or directory within the merged view. The source must
// exist and the destination's parent directory must exist. When the
// source's origin is a real on-disk path, one replayable move operation is
// recorded and every real descendant gets a rename binding at its new
// location; staged entries below the source follow through a single
// separator-bounded prefix rewrite.
func (f *FS) Rename(oldname, newname string) error {
	src, err := f.resolve(oldname)
	if err != nil {
		return err
	}
	dest, err := f.resolve(newname)
	if err != nil {
		return err
	}
	if f.pathsEqual(src, dest) {
		return nil
	}
	// Moving a directory into its own subtree has no coherent result; the
	// prefix rewrite would also have to rewrite the keys it inserts.
	if f.isPathPrefix(src, dest) {
		return pathErr("rename", dest, os.ErrInvalid)
	}
	ok, err := f.existsAbs(src)
	if err != nil {
		return err
	}
	if !ok {
		return pathErr("rename", src, ErrNotFound)
	}
	if parent := parentOf(dest); parent != dest {
		ok, err := f.existsAbs(parent)
		if err != nil {
			return err
		}
		if !ok {
			return pathErr("rename", parent, ErrNotFound)
		}
	}

	orig := f.originalPath(src)
	originReal := false
	var descendants []string
	if _, gone := f.deleted[orig]; !gone {
		info, err := f.real.Stat(orig)
		switch {
		case err == nil:
			originReal = true
			if info.IsDir() {
				if descendants, err = f.realDescendants(orig); err != nil {
					return err
				}
			}
		case isNotFound(err):
			// purely staged source, nothing to record
		default:
			return err
		}
	}

	f.rewriteStagedPrefix(src, dest)
	f.rewriteRenamePrefix(src, dest)
	f.rewriteMovedFromPrefix(src, dest)

	if originReal {
		f.moves = append(f.moves, MoveOp{Source: src, Destination: dest})
		f.movedFrom[src] = struct{}{}
		if _, bound := f.renames[dest]; !bound {
			f.renames[dest] = orig
		}
		for _, rel := range descendants {
			key := path.Join(dest, rel)
			if _, bound := f.renames[key]; bound {
				continue
			}
			if _, vacated := f.movedFrom[key]; vacated {
				continue
			}
			f.renames[key] = path.Join(orig, rel)
		}
	}
	delete(f.movedFrom, dest)
	return nil
}

// Copy duplicates file content from src to dest through the merged view.
// Copying a directory is unsupported and fails with
// ErrIllegalOperationOnDirectory.
func (f *FS) Copy(oldname, newname string) error {
	data, err := f.ReadFile(oldname)
	if err != nil {
		return err
	}
	return f.WriteFile(newname, data)
}

// rewriteStagedPrefix re-keys staged entries from the src subtree into the
// dest subtree. Matching is separator-bounded so sibling names sharing a
// string prefix are untouched.
func (f *FS) rewriteStagedPrefix(src, dest string) {
	for k, e := range f.staged {
		if f.isPathPrefix(src, k) {
			delete(f.staged, k)
			f.staged[rewritePrefix(k, src, dest)] = e
		}
	}
}

// rewriteRenamePrefix re-keys rename bindings whose virtual path moves with
// the subtree. Values stay put: a binding always points at the original
// real path, never an intermediate virtual one.
func (f *FS) rewriteRenamePrefix(src, dest string) {
	for k, orig := range f.renames {
		if f.isPathPrefix(src, k) {
			delete(f.renames, k)
			f.renames[rewritePrefix(k, src, dest)] = orig
		}
	}
}

func (f *FS) rewriteMovedFromPrefix(src, dest string) {
	for k := range f.movedFrom {
		if f.isPathPrefix(src, k) {
			delete(f.movedFrom, k)
			f.movedFrom[rewritePrefix(k, src, dest)] = struct{}{}
		}
	}
}

// realDescendants lists all real entries below a real directory as
// slash-relative subpaths, depth first, skipping ignored patterns.
func (f *FS) realDescendants(dir string) ([]string, error) {
	var out []string
	var walk func(cur string) error
	walk = func(cur string) error {
		infos, err := f.real.ReadDir(cur)
		if err != nil {
			if isNotFound(err) {
				return nil
			}
			return err
		}
		for _, info := range infos {
			abs := path.Join(cur, info.Name())
			if f.isIgnored(abs) {
				continue
			}
			out = append(out, relTo(dir, abs))
			if info.IsDir() {
				if err := walk(abs); err != nil {
					return err
				}
			}
		}
		return nil
	}
	if err := walk(dir); err != nil {
		return nil, err
	}
	return out, nil
}

// isDirAbs reports whether a resolved path is a directory in the merged
// view. The path must exist.
func (f *FS) isDirAbs(p string) (bool, error) {
	if e, ok := f.staged[p]; ok {
		return e.isDir(), nil
	}
	info, err := f.real.Stat(f.originalPath(p))
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}
