package stagefs

import (
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"time"
)

// Exists reports whether a path is present in the merged view. A pending
// deletion of the path or any ancestor hides it; a staged entry shows it;
// otherwise the base filesystem decides, probed at the path's original real
// location. Not-found from the base is an answer, not an error.
func (f *FS) Exists(name string) (bool, error) {
	p, err := f.resolve(name)
	if err != nil {
		return false, err
	}
	return f.existsAbs(p)
}

func (f *FS) existsAbs(p string) (bool, error) {
	if f.isDeleted(p) {
		return false, nil
	}
	if _, ok := f.staged[p]; ok {
		return true, nil
	}
	return f.real.Exists(f.originalPath(p))
}

// isDeleted is the merge engine's deletion check. A path is gone when its
// original real path, or that of any ancestor, carries a tombstone, or
// when the location was vacated by a move. A staged entry at the exact
// path always survives: it was written after the deletion was recorded.
// Ancestor tombstones are not shadowed by staged ancestor markers: a
// recreated directory starts empty, it does not resurrect old children.
func (f *FS) isDeleted(p string) bool {
	if _, ok := f.staged[p]; ok {
		return false
	}
	for cur := p; ; cur = parentOf(cur) {
		if _, ok := f.deleted[f.originalPath(cur)]; ok {
			return true
		}
		if _, ok := f.movedFrom[cur]; ok {
			return true
		}
		if cur == f.root || parentOf(cur) == cur {
			return false
		}
	}
}

// ReadDir lists a directory in the merged view: staged children shadow
// real children of the same name, deleted and moved-away real children
// disappear, and real children are surfaced at their current virtual
// location. Entries are sorted by name with no duplicates.
func (f *FS) ReadDir(name string) ([]fs.DirEntry, error) {
	p, err := f.resolve(name)
	if err != nil {
		return nil, err
	}
	ok, err := f.existsAbs(p)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, pathErr("readdir", p, ErrNotFound)
	}
	if e, ok := f.staged[p]; ok && !e.isDir() {
		return nil, pathErr("readdir", p, os.ErrInvalid)
	}
	return f.readDirAbs(p)
}

func (f *FS) readDirAbs(p string) ([]fs.DirEntry, error) {
	seen := make(map[string]bool)
	var entries []fs.DirEntry

	for k, e := range f.staged {
		if parentOf(k) != p || k == p {
			continue
		}
		name := path.Base(k)
		seen[name] = true
		entries = append(entries, &overlayDirEntry{name: name, entry: e})
	}

	// Real entries renamed into this directory surface at their virtual
	// location under their virtual name.
	for v, orig := range f.renames {
		if parentOf(v) != p || v == p {
			continue
		}
		name := path.Base(v)
		if seen[name] || f.isDeleted(v) {
			continue
		}
		info, err := f.real.Stat(orig)
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return nil, err
		}
		seen[name] = true
		entries = append(entries, fs.FileInfoToDirEntry(&renamedInfo{FileInfo: info, name: name}))
	}

	origDir := f.originalPath(p)
	infos, err := f.real.ReadDir(origDir)
	if err != nil && !isNotFound(err) {
		return nil, err
	}
	for _, info := range infos {
		if seen[info.Name()] {
			continue
		}
		virt := path.Join(p, info.Name())
		if f.isDeleted(virt) {
			continue
		}
		// The child's real origin may carry a tombstone the virtual path
		// no longer resolves to, after a removal dropped its binding.
		if _, gone := f.deleted[path.Join(origDir, info.Name())]; gone {
			continue
		}
		seen[info.Name()] = true
		entries = append(entries, fs.FileInfoToDirEntry(info))
	}

	sort.Slice(entries, func(i, j int) bool {
		return strings.ToLower(entries[i].Name()) < strings.ToLower(entries[j].Name())
	})
	return entries, nil
}

// ReadFile returns file content from the merged view: staged bytes when
// present, otherwise the base file at the path's original real location.
func (f *FS) ReadFile(name string) ([]byte, error) {
	p, err := f.resolve(name)
	if err != nil {
		return nil, err
	}
	if e, ok := f.staged[p]; ok {
		if e.isDir() {
			return nil, pathErr("read", p, ErrIllegalOperationOnDirectory)
		}
		return append([]byte(nil), e.data...), nil
	}
	if f.isDeleted(p) {
		return nil, pathErr("read", p, ErrNotFound)
	}
	return f.real.ReadFile(f.originalPath(p))
}

// Stat returns merged file info for a path.
func (f *FS) Stat(name string) (fs.FileInfo, error) {
	p, err := f.resolve(name)
	if err != nil {
		return nil, err
	}
	if e, ok := f.staged[p]; ok {
		return &overlayInfo{name: path.Base(p), entry: e}, nil
	}
	if f.isDeleted(p) {
		return nil, pathErr("stat", p, ErrNotFound)
	}
	return f.real.Stat(f.originalPath(p))
}

// overlayInfo presents a staged entry as fs.FileInfo.
type overlayInfo struct {
	name  string
	entry *entry
}

func (i *overlayInfo) Name() string { return i.name }
func (i *overlayInfo) Size() int64  { return int64(len(i.entry.data)) }
func (i *overlayInfo) Mode() fs.FileMode {
	if i.entry.isDir() {
		return fs.ModeDir | 0o755
	}
	return 0o644
}
func (i *overlayInfo) ModTime() time.Time { return i.entry.modTime }
func (i *overlayInfo) IsDir() bool        { return i.entry.isDir() }
func (i *overlayInfo) Sys() any           { return nil }

// renamedInfo presents real file info under the entry's current virtual
// name, which a rename may have changed.
type renamedInfo struct {
	fs.FileInfo
	name string
}

func (i *renamedInfo) Name() string { return i.name }

// overlayDirEntry presents a staged entry as fs.DirEntry.
type overlayDirEntry struct {
	name  string
	entry *entry
}

func (d *overlayDirEntry) Name() string { return d.name }
func (d *overlayDirEntry) IsDir() bool  { return d.entry.isDir() }
func (d *overlayDirEntry) Type() fs.FileMode {
	if d.entry.isDir() {
		return fs.ModeDir
	}
	return 0
}
func (d *overlayDirEntry) Info() (fs.FileInfo, error) {
	return &overlayInfo{name: d.name, entry: d.entry}, nil
}
