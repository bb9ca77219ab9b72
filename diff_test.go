package stagefs

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiffSnapshotIsPure(t *testing.T) {
	sfs, _ := newTestFS(t, "/work", map[string]string{
		"/work/a.txt": "alpha",
	})
	require.NoError(t, sfs.WriteFile("/work/new.txt", []byte("one")))
	require.NoError(t, sfs.Remove("/work/a.txt"))

	first := sfs.Diff()

	// Further staging must not leak into an earlier snapshot.
	require.NoError(t, sfs.WriteFile("/work/new.txt", []byte("two")))
	require.NoError(t, sfs.WriteFile("/work/other.txt", []byte("x")))

	assert.Equal(t, []byte("one"), first.Entries["/work/new.txt"].Data)
	assert.NotContains(t, first.Entries, "/work/other.txt")

	second := sfs.Diff()
	assert.Equal(t, []byte("two"), second.Entries["/work/new.txt"].Data)
	assert.Equal(t, []string{"/work/a.txt"}, second.Deletes)
}

func TestDiffSnapshotClonesBytes(t *testing.T) {
	sfs, _ := newTestFS(t, "/work", nil)
	require.NoError(t, sfs.WriteFile("/work/f.txt", []byte("original")))

	d := sfs.Diff()
	d.Entries["/work/f.txt"].Data[0] = 'X'

	data, err := sfs.ReadFile("/work/f.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), data)
}

func TestDiffEmpty(t *testing.T) {
	sfs, _ := newTestFS(t, "/work", map[string]string{
		"/work/a.txt": "alpha",
	})
	assert.True(t, sfs.Diff().Empty())

	require.NoError(t, sfs.WriteFile("/work/b.txt", []byte("b")))
	assert.False(t, sfs.Diff().Empty())
}

func TestEntryPathsOrder(t *testing.T) {
	d := &Diff{Entries: map[string]DiffEntry{
		"/work/z.txt":           {Data: []byte("z")},
		"/work/a/deep/file.txt": {Data: []byte("f")},
		"/work/a/deep":          {Dir: true},
		"/work/a":               {Dir: true},
		"/work/b.txt":           {Data: []byte("b")},
	}}

	want := []string{
		// Depth first, directories before files at equal depth, then name.
		"/work/a",
		"/work/b.txt",
		"/work/z.txt",
		"/work/a/deep",
		"/work/a/deep/file.txt",
	}
	assert.Equal(t, want, d.EntryPaths())
}

func TestEntryPathsNotLexicographic(t *testing.T) {
	// Lexicographically "/work/aa" sorts before "/work/z", but "/work/z" is
	// shallower and must be materialized first.
	d := &Diff{Entries: map[string]DiffEntry{
		"/work/aa/f.txt": {Data: []byte("f")},
		"/work/aa":       {Dir: true},
		"/work/z":        {Dir: true},
	}}

	want := []string{"/work/aa", "/work/z", "/work/aa/f.txt"}
	assert.Equal(t, want, d.EntryPaths())
}

func TestDiffRoundTrip(t *testing.T) {
	sfs, _ := newTestFS(t, "/work", map[string]string{
		"/work/a.txt":     "alpha",
		"/work/old/f.txt": "f",
	})
	require.NoError(t, sfs.WriteFile("/work/sub/b.txt", []byte("beta")))
	require.NoError(t, sfs.Mkdir("/work/empty"))
	require.NoError(t, sfs.Remove("/work/a.txt"))
	require.NoError(t, sfs.Rename("/work/old/f.txt", "/work/moved.txt"))

	d := sfs.Diff()

	var buf bytes.Buffer
	require.NoError(t, EncodeDiff(&buf, d))

	decoded, err := DecodeDiff(&buf)
	require.NoError(t, err)

	if diff := cmp.Diff(d, decoded); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeDiffEmptyDocument(t *testing.T) {
	d, err := DecodeDiff(bytes.NewReader(nil))
	require.NoError(t, err)
	assert.True(t, d.Empty())
}

func TestDecodeDiffUnknownKind(t *testing.T) {
	doc := "entries:\n- path: /work/f.txt\n  kind: symlink\n"
	_, err := DecodeDiff(bytes.NewReader([]byte(doc)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown entry kind")
}
