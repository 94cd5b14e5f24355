package index_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meta-toolkit/metago/ids"
	"github.com/meta-toolkit/metago/index"
)

func TestTombstonesAddRemoveContains(t *testing.T) {
	ts := index.NewTombstones()
	require.False(t, ts.Contains(3))

	ts.Add(3)
	require.True(t, ts.Contains(3))
	require.Equal(t, 1, ts.Len())

	ts.Remove(3)
	require.False(t, ts.Contains(3))
	require.Equal(t, 0, ts.Len())
}

func TestTombstonesWriteFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tombstones.roaring")

	ts := index.NewTombstones()
	ts.Add(1)
	ts.Add(5)
	require.NoError(t, ts.WriteFile(path))

	loaded, err := index.LoadTombstones(path)
	require.NoError(t, err)
	require.True(t, loaded.Contains(1))
	require.True(t, loaded.Contains(5))
	require.False(t, loaded.Contains(2))
	require.Equal(t, 2, loaded.Len())
}

func TestLoadTombstonesMissingFileIsEmpty(t *testing.T) {
	dir := t.TempDir()
	ts, err := index.LoadTombstones(filepath.Join(dir, "does-not-exist.roaring"))
	require.NoError(t, err)
	require.Equal(t, 0, ts.Len())
	require.False(t, ts.Contains(ids.DocID(0)))
}
