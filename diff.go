package stagefs

import (
	"fmt"
	"io"
	"sort"

	"github.com/goccy/go-yaml"
)

// DiffEntry is one staged filesystem entry in a diff: either a directory
// to create or file bytes to write.
type DiffEntry struct {
	Dir  bool
	Data []byte
}

// Diff is an immutable snapshot of all pending mutations, in the order an
// Applier must honor them: deletions, then moves, then entries.
type Diff struct {
	// Deletes lists original real paths to remove, sorted.
	Deletes []string
	// Moves replays in recorded order; each source is the entry's location
	// on disk at that point of the replay.
	Moves []MoveOp
	// Entries maps absolute virtual paths to the entry to materialize.
	Entries map[string]DiffEntry
}

// Empty reports whether the diff carries no pending mutations.
func (d *Diff) Empty() bool {
	return len(d.Deletes) == 0 && len(d.Moves) == 0 && len(d.Entries) == 0
}

// EntryPaths returns the entry map's keys sorted by path depth, directories
// before files at equal depth, then by name. Materializing entries in this
// order guarantees every parent directory precedes its children;
// lexicographic order alone does not.
func (d *Diff) EntryPaths() []string {
	paths := make([]string, 0, len(d.Entries))
	for p := range d.Entries {
		paths = append(paths, p)
	}
	sort.Slice(paths, func(i, j int) bool {
		di, dj := pathDepth(paths[i]), pathDepth(paths[j])
		if di != dj {
			return di < dj
		}
		ei, ej := d.Entries[paths[i]], d.Entries[paths[j]]
		if ei.Dir != ej.Dir {
			return ei.Dir
		}
		return paths[i] < paths[j]
	})
	return paths
}

// Diff snapshots the overlay into an immutable diff. Taking a snapshot is
// a pure read; the overlay keeps its state and can be snapshotted again.
func (f *FS) Diff() *Diff {
	d := &Diff{
		Deletes: make([]string, 0, len(f.deleted)),
		Moves:   make([]MoveOp, len(f.moves)),
		Entries: make(map[string]DiffEntry, len(f.staged)),
	}
	for p := range f.deleted {
		d.Deletes = append(d.Deletes, p)
	}
	sort.Strings(d.Deletes)
	copy(d.Moves, f.moves)
	for p, e := range f.staged {
		if e.isDir() {
			d.Entries[p] = DiffEntry{Dir: true}
			continue
		}
		d.Entries[p] = DiffEntry{Data: append([]byte(nil), e.data...)}
	}
	return d
}

// diffDoc is the serialized diff shape. Entries become an ordered list so
// the document round-trips deterministically.
type diffDoc struct {
	Deletes []string       `yaml:"deletes,omitempty"`
	Moves   []MoveOp       `yaml:"moves,omitempty"`
	Entries []diffDocEntry `yaml:"entries,omitempty"`
}

type diffDocEntry struct {
	Path string `yaml:"path"`
	Kind string `yaml:"kind"`
	Data []byte `yaml:"data,omitempty"`
}

const (
	diffKindDirectory = "directory"
	diffKindFile      = "file"
)

// EncodeDiff writes a diff as a YAML document. Entries are emitted in the
// applier's materialization order; file bytes are base64-encoded.
func EncodeDiff(w io.Writer, d *Diff) error {
	doc := diffDoc{
		Deletes: d.Deletes,
		Moves:   d.Moves,
	}
	for _, p := range d.EntryPaths() {
		e := d.Entries[p]
		de := diffDocEntry{Path: p, Kind: diffKindFile, Data: e.Data}
		if e.Dir {
			de.Kind = diffKindDirectory
			de.Data = nil
		}
		doc.Entries = append(doc.Entries, de)
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(doc)
}

// DecodeDiff reads a diff from a YAML document produced by EncodeDiff.
func DecodeDiff(r io.Reader) (*Diff, error) {
	var doc diffDoc
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return &Diff{Entries: map[string]DiffEntry{}}, nil
		}
		return nil, fmt.Errorf("decode diff: %w", err)
	}
	d := &Diff{
		Deletes: doc.Deletes,
		Moves:   doc.Moves,
		Entries: make(map[string]DiffEntry, len(doc.Entries)),
	}
	for _, de := range doc.Entries {
		switch de.Kind {
		case diffKindDirectory:
			d.Entries[de.Path] = DiffEntry{Dir: true}
		case diffKindFile:
			d.Entries[de.Path] = DiffEntry{Data: de.Data}
		default:
			return nil, fmt.Errorf("decode diff: unknown entry kind %q for %s", de.Kind, de.Path)
		}
	}
	return d, nil
}
