package stagefs

import (
	"path"
	"strings"
)

// cleanPath normalizes a virtual path: forward slashes, cleaned, absolute.
func cleanPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}

// resolve turns a relative-or-absolute input path into a cleaned absolute
// virtual path under the working root. Paths resolving outside the root
// fail with ErrOutOfRoot, whether or not they exist on real disk.
func (f *FS) resolve(p string) (string, error) {
	if p == "" {
		return "", pathErr("resolve", p, ErrNotFound)
	}
	abs := strings.ReplaceAll(p, "\\", "/")
	if !strings.HasPrefix(abs, "/") {
		abs = path.Join(f.root, abs)
	}
	abs = cleanPath(abs)
	if !f.underRoot(abs) {
		return "", pathErr("resolve", p, ErrOutOfRoot)
	}
	return abs, nil
}

// underRoot reports whether an already-cleaned absolute path lies at or
// below the working root.
func (f *FS) underRoot(p string) bool {
	return f.isPathPrefix(f.root, p)
}

// isPathPrefix reports whether p equals prefix or lives below it. The
// comparison is separator-bounded: "/a/dir1" is not a prefix of
// "/a/dir10". The root "/" is a prefix of every absolute path.
func (f *FS) isPathPrefix(prefix, p string) bool {
	if f.pathsEqual(prefix, p) {
		return true
	}
	if prefix == "/" {
		return strings.HasPrefix(p, "/")
	}
	if len(p) <= len(prefix) {
		return false
	}
	return f.pathsEqual(prefix, p[:len(prefix)]) && p[len(prefix)] == '/'
}

// pathsEqual compares two cleaned paths honoring case sensitivity.
func (f *FS) pathsEqual(a, b string) bool {
	if f.caseSensitive {
		return a == b
	}
	return strings.EqualFold(a, b)
}

// rewritePrefix replaces the leading oldPrefix of p with newPrefix.
// Callers must have established isPathPrefix(oldPrefix, p).
func rewritePrefix(p, oldPrefix, newPrefix string) string {
	if len(p) == len(oldPrefix) {
		return newPrefix
	}
	return newPrefix + p[len(oldPrefix):]
}

// parentOf returns the parent directory of a cleaned absolute path.
func parentOf(p string) string {
	return path.Dir(p)
}

// pathDepth counts the separators in a cleaned absolute path. Used by the
// applier to order entries parent-before-child.
func pathDepth(p string) int {
	if p == "/" {
		return 0
	}
	return strings.Count(p, "/")
}

// relTo returns p relative to root with forward slashes and no leading
// separator, or "." for the root itself.
func relTo(root, p string) string {
	if p == root {
		return "."
	}
	if root == "/" {
		return strings.TrimPrefix(p, "/")
	}
	return strings.TrimPrefix(p[len(root):], "/")
}
