package stagefs

import (
	"path"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// Glob walks the merged namespace from the working root and returns the
// absolute virtual paths of all non-directory entries whose root-relative
// path matches any of the given doublestar patterns. Paths matching a
// configured ignored glob never appear, even when they also match a query
// pattern.
func (f *FS) Glob(patterns ...string) ([]string, error) {
	for _, pat := range patterns {
		if !doublestar.ValidatePattern(pat) {
			return nil, pathErr("glob", pat, doublestar.ErrBadPattern)
		}
	}
	var matches []string
	var walk func(dir string) error
	walk = func(dir string) error {
		entries, err := f.readDirAbs(dir)
		if err != nil {
			return err
		}
		for _, e := range entries {
			abs := path.Join(dir, e.Name())
			rel := relTo(f.root, abs)
			if f.isIgnored(abs) {
				continue
			}
			if e.IsDir() {
				if err := walk(abs); err != nil {
					return err
				}
				continue
			}
			if matchAny(patterns, rel) {
				matches = append(matches, abs)
			}
		}
		return nil
	}
	if err := walk(f.root); err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

// isIgnored reports whether an absolute virtual path matches a configured
// ignored glob. Patterns are matched against the root-relative path.
func (f *FS) isIgnored(abs string) bool {
	if len(f.ignored) == 0 {
		return false
	}
	return matchAny(f.ignored, relTo(f.root, abs))
}

// matchAny reports whether the relative path matches any pattern. Patterns
// are validated up front by Glob; configured ignore patterns that fail to
// parse simply never match.
func matchAny(patterns []string, rel string) bool {
	for _, pat := range patterns {
		if ok, err := doublestar.Match(pat, rel); err == nil && ok {
			return true
		}
	}
	return false
}
