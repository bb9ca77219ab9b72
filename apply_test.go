package stagefs

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommitEndToEnd(t *testing.T) {
	sfs, base := newTestFS(t, "/work", map[string]string{
		"/work/a.txt":     "alpha",
		"/work/keep.txt":  "keep",
		"/work/old/f.txt": "moved",
	})
	require.NoError(t, sfs.Remove("/work/a.txt"))
	require.NoError(t, sfs.Rename("/work/old/f.txt", "/work/f.txt"))
	require.NoError(t, sfs.WriteFile("/work/sub/deep/new.txt", []byte("new")))
	require.NoError(t, sfs.Mkdir("/work/empty"))

	require.NoError(t, sfs.Commit(context.Background(), NewApplier(base)))

	exists, err := afero.Exists(base, "/work/a.txt")
	require.NoError(t, err)
	assert.False(t, exists, "deleted file must be gone from base")

	data, err := afero.ReadFile(base, "/work/f.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("moved"), data)

	exists, err = afero.Exists(base, "/work/old/f.txt")
	require.NoError(t, err)
	assert.False(t, exists, "move source must be gone from base")

	data, err = afero.ReadFile(base, "/work/sub/deep/new.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), data)

	isDir, err := afero.IsDir(base, "/work/empty")
	require.NoError(t, err)
	assert.True(t, isDir)

	data, err = afero.ReadFile(base, "/work/keep.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("keep"), data)
}

func TestCommitReplaysChainedMoves(t *testing.T) {
	sfs, base := newTestFS(t, "/work", map[string]string{
		"/work/x.txt": "payload",
	})
	require.NoError(t, sfs.Rename("/work/x.txt", "/work/y.txt"))
	require.NoError(t, sfs.Rename("/work/y.txt", "/work/z.txt"))

	require.NoError(t, sfs.Commit(context.Background(), NewApplier(base)))

	data, err := afero.ReadFile(base, "/work/z.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), data)

	for _, gone := range []string{"/work/x.txt", "/work/y.txt"} {
		exists, err := afero.Exists(base, gone)
		require.NoError(t, err)
		assert.False(t, exists, "%s must be gone after chained move", gone)
	}
}

func TestCommitDepthOrder(t *testing.T) {
	// "/work/z" sorts after "/work/aa/inner.txt" lexicographically but is
	// shallower; depth ordering must still create it before descending.
	sfs, base := newTestFS(t, "/work", nil)
	require.NoError(t, sfs.WriteFile("/work/aa/inner.txt", []byte("i")))
	require.NoError(t, sfs.Mkdir("/work/z"))
	require.NoError(t, sfs.WriteFile("/work/z/leaf.txt", []byte("l")))

	require.NoError(t, sfs.Commit(context.Background(), NewApplier(base)))

	for p, want := range map[string]string{
		"/work/aa/inner.txt": "i",
		"/work/z/leaf.txt":   "l",
	} {
		data, err := afero.ReadFile(base, p)
		require.NoError(t, err)
		assert.Equal(t, []byte(want), data)
	}
}

func TestCommitDeleteBeforeWrite(t *testing.T) {
	// Deleting a real directory and restaging content under the same name
	// must survive commit: deletions run before entries materialize.
	sfs, base := newTestFS(t, "/work", map[string]string{
		"/work/dir/old.txt": "old",
	})
	require.NoError(t, sfs.RemoveAll("/work/dir"))
	require.NoError(t, sfs.WriteFile("/work/dir/new.txt", []byte("new")))

	require.NoError(t, sfs.Commit(context.Background(), NewApplier(base)))

	exists, err := afero.Exists(base, "/work/dir/old.txt")
	require.NoError(t, err)
	assert.False(t, exists)

	data, err := afero.ReadFile(base, "/work/dir/new.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), data)
}

func TestCommitEmptyDiffIsNoop(t *testing.T) {
	sfs, base := newTestFS(t, "/work", map[string]string{
		"/work/a.txt": "alpha",
	})
	require.NoError(t, sfs.Commit(context.Background(), NewApplier(base)))

	data, err := afero.ReadFile(base, "/work/a.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("alpha"), data)
}

func TestApplyHonorsCancellation(t *testing.T) {
	sfs, base := newTestFS(t, "/work", nil)
	require.NoError(t, sfs.WriteFile("/work/f.txt", []byte("f")))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := sfs.Commit(ctx, NewApplier(base))
	assert.ErrorIs(t, err, context.Canceled)

	exists, err := afero.Exists(base, "/work/f.txt")
	require.NoError(t, err)
	assert.False(t, exists, "cancelled commit must not write")
}
