package stagefs

import (
	"bytes"
	"io"
	"io/fs"
	"path"
)

// IOFS returns a read-only io/fs view of the merged namespace, rooted at
// the working root. It enables stdlib interop such as fs.WalkDir and
// testing/fstest over pending state without committing anything.
func (f *FS) IOFS() fs.FS {
	return &ioFS{fs: f}
}

type ioFS struct {
	fs *FS
}

var (
	_ fs.FS         = (*ioFS)(nil)
	_ fs.ReadDirFS  = (*ioFS)(nil)
	_ fs.ReadFileFS = (*ioFS)(nil)
	_ fs.StatFS     = (*ioFS)(nil)
)

// abs converts an io/fs name ("." or slash-relative) to an absolute
// virtual path under the root.
func (i *ioFS) abs(name string) (string, error) {
	if !fs.ValidPath(name) {
		return "", &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	if name == "." {
		return i.fs.root, nil
	}
	return path.Join(i.fs.root, name), nil
}

func (i *ioFS) Open(name string) (fs.File, error) {
	p, err := i.abs(name)
	if err != nil {
		return nil, err
	}
	info, err := i.fs.Stat(p)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		entries, err := i.fs.ReadDir(p)
		if err != nil {
			return nil, err
		}
		return &ioDir{info: info, entries: entries}, nil
	}
	data, err := i.fs.ReadFile(p)
	if err != nil {
		return nil, err
	}
	return &ioFile{info: info, r: bytes.NewReader(data)}, nil
}

func (i *ioFS) ReadDir(name string) ([]fs.DirEntry, error) {
	p, err := i.abs(name)
	if err != nil {
		return nil, err
	}
	return i.fs.ReadDir(p)
}

func (i *ioFS) ReadFile(name string) ([]byte, error) {
	p, err := i.abs(name)
	if err != nil {
		return nil, err
	}
	return i.fs.ReadFile(p)
}

func (i *ioFS) Stat(name string) (fs.FileInfo, error) {
	p, err := i.abs(name)
	if err != nil {
		return nil, err
	}
	return i.fs.Stat(p)
}

// ioFile is a read-only handle over merged file content.
type ioFile struct {
	info fs.FileInfo
	r    *bytes.Reader
}

func (h *ioFile) Stat() (fs.FileInfo, error) { return h.info, nil }
func (h *ioFile) Read(p []byte) (int, error) { return h.r.Read(p) }
func (h *ioFile) Close() error               { return nil }

// ioDir is a read-only handle over a merged directory listing.
type ioDir struct {
	info    fs.FileInfo
	entries []fs.DirEntry
	offset  int
}

func (d *ioDir) Stat() (fs.FileInfo, error) { return d.info, nil }
func (d *ioDir) Read([]byte) (int, error) {
	return 0, &fs.PathError{Op: "read", Path: d.info.Name(), Err: fs.ErrInvalid}
}
func (d *ioDir) Close() error { return nil }

func (d *ioDir) ReadDir(n int) ([]fs.DirEntry, error) {
	rest := d.entries[d.offset:]
	if n <= 0 {
		d.offset = len(d.entries)
		return rest, nil
	}
	if len(rest) == 0 {
		return nil, io.EOF
	}
	if n > len(rest) {
		n = len(rest)
	}
	d.offset += n
	return rest[:n], nil
}
