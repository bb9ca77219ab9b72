package stagefs

import (
	"github.com/spf13/afero"
)

// MoveOp is one replayable move of a real filesystem entry, recorded when a
// path originating on real disk is renamed through the overlay.
type MoveOp struct {
	Source      string `yaml:"source"`
	Destination string `yaml:"destination"`
}

// FS is a staged filesystem: an in-memory overlay merged over a real base
// filesystem. All mutations accumulate in the overlay; the base is only
// ever read until a diff is committed through an Applier.
//
// An FS serves a single transformation run and provides no internal
// locking.
type FS struct {
	real *realFS
	root string

	// staged maps absolute virtual paths to pending entries. Presence here
	// always wins over the base filesystem for that exact path.
	staged map[string]*entry

	// renames maps a virtual path to the original real path it was renamed
	// from. At most one binding per virtual path; a re-move rewrites the
	// binding key and keeps the original real path as the value.
	renames map[string]string

	// deleted holds original real paths slated for deletion on commit.
	deleted map[string]struct{}

	// movedFrom holds virtual locations vacated by a move of a real entry.
	// Not part of the diff: the replay of moves empties them on disk.
	movedFrom map[string]struct{}

	// moves is the ordered log the applier replays against real disk.
	moves []MoveOp

	ignored       []string
	caseSensitive bool
}

// Option configures an FS at construction time.
type Option func(*FS)

// WithRoot sets the working root. Every path accepted by the FS must
// resolve under it. Defaults to "/".
func WithRoot(root string) Option {
	return func(f *FS) {
		f.root = cleanPath(root)
	}
}

// WithIgnoredGlobs excludes root-relative patterns (doublestar syntax) from
// glob queries and from directory enumeration during move propagation.
// Typical values cover version-control and dependency directories.
func WithIgnoredGlobs(patterns ...string) Option {
	return func(f *FS) {
		f.ignored = append(f.ignored, patterns...)
	}
}

// WithCaseSensitivity sets how paths are compared during prefix checks
// and move rewrites. It does not canonicalize: staged state is keyed by
// the exact path it was given, and exact-path lookups never fold case.
// Defaults to case-sensitive.
func WithCaseSensitivity(sensitive bool) Option {
	return func(f *FS) {
		f.caseSensitive = sensitive
	}
}

// New creates a staged filesystem over the given base.
func New(base afero.Fs, opts ...Option) (*FS, error) {
	f := &FS{
		real:          &realFS{base: base},
		root:          "/",
		staged:        make(map[string]*entry),
		renames:       make(map[string]string),
		deleted:       make(map[string]struct{}),
		movedFrom:     make(map[string]struct{}),
		caseSensitive: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Name returns the name of the filesystem, following the afero.Fs
// convention of self-identifying backends.
func (f *FS) Name() string {
	return "StageFS"
}

// Cwd returns the working root all relative paths resolve against.
func (f *FS) Cwd() string {
	return f.root
}

// IsCaseSensitive reports whether path comparisons distinguish case.
func (f *FS) IsCaseSensitive() bool {
	return f.caseSensitive
}

// originalPath follows the rename binding for a virtual path, if any, to
// the real path the entry originated from. Unbound paths are their own
// origin.
func (f *FS) originalPath(p string) string {
	if orig, ok := f.renames[p]; ok {
		return orig
	}
	return p
}
