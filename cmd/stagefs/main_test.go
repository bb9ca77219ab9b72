package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/absfs/stagefs"
)

// encodeDiffFile stages mutations against the given base and writes the
// resulting diff document to a temp file.
func encodeDiffFile(t *testing.T, base afero.Fs) string {
	t.Helper()
	sfs, err := stagefs.New(base, stagefs.WithRoot("/work"))
	require.NoError(t, err)
	require.NoError(t, sfs.Remove("/work/gone.txt"))
	require.NoError(t, sfs.WriteFile("/work/sub/new.txt", []byte("new")))
	require.NoError(t, sfs.Rename("/work/old.txt", "/work/moved.txt"))

	var buf bytes.Buffer
	require.NoError(t, stagefs.EncodeDiff(&buf, sfs.Diff()))

	path := filepath.Join(t.TempDir(), "changes.yaml")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
	return path
}

func seedBase(t *testing.T) afero.Fs {
	t.Helper()
	base := afero.NewMemMapFs()
	for p, content := range map[string]string{
		"/work/gone.txt": "x",
		"/work/old.txt":  "payload",
		"/work/keep.txt": "keep",
	} {
		require.NoError(t, afero.WriteFile(base, p, []byte(content), 0644))
	}
	return base
}

func TestApplyCommand(t *testing.T) {
	base := seedBase(t)
	diffPath := encodeDiffFile(t, base)

	prev := applyBackend
	applyBackend = base
	defer func() { applyBackend = prev }()

	cmd := newRoot()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"apply", diffPath})
	require.NoError(t, cmd.Execute())

	exists, err := afero.Exists(base, "/work/gone.txt")
	require.NoError(t, err)
	assert.False(t, exists, "deletion was not applied")

	data, err := afero.ReadFile(base, "/work/moved.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), data)

	data, err = afero.ReadFile(base, "/work/sub/new.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), data)

	data, err = afero.ReadFile(base, "/work/keep.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("keep"), data)
}

func TestApplyCommandDryRun(t *testing.T) {
	base := seedBase(t)
	diffPath := encodeDiffFile(t, base)

	prev := applyBackend
	applyBackend = base
	defer func() { applyBackend = prev }()

	var out bytes.Buffer
	cmd := newRoot()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"apply", "--dry-run", diffPath})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "- delete /work/gone.txt")

	exists, err := afero.Exists(base, "/work/gone.txt")
	require.NoError(t, err)
	assert.True(t, exists, "dry run must not touch the backend")
}

func TestPreviewCommand(t *testing.T) {
	base := seedBase(t)
	diffPath := encodeDiffFile(t, base)

	var out bytes.Buffer
	cmd := newRoot()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"preview", "--no-color", diffPath})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "- delete /work/gone.txt")
	assert.Contains(t, out.String(), "~ move /work/old.txt -> /work/moved.txt")
	assert.Contains(t, out.String(), "+ write /work/sub/new.txt (3 bytes)")
}
