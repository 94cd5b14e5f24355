package diskvec_test

import (
	"path/filepath"
	"testing"

	"github.com/meta-toolkit/metago/diskvec"
	"github.com/stretchr/testify/require"
)

func TestUint64VectorRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vec.bin")

	w, err := diskvec.CreateUint64VectorWriter(path)
	require.NoError(t, err)
	want := []uint64{0, 1, 1 << 40, ^uint64(0)}
	for _, v := range want {
		require.NoError(t, w.Append(v))
	}
	require.NoError(t, w.Close())

	v, err := diskvec.OpenUint64Vector(path)
	require.NoError(t, err)
	defer v.Close()

	require.Equal(t, len(want), v.Len())
	for i, exp := range want {
		require.Equal(t, exp, v.Get(i))
	}
}

func TestUint32VectorRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vec32.bin")

	w, err := diskvec.CreateUint32VectorWriter(path)
	require.NoError(t, err)
	want := []uint32{0, 1, 42, ^uint32(0)}
	for _, v := range want {
		require.NoError(t, w.Append(v))
	}
	require.NoError(t, w.Close())

	v, err := diskvec.OpenUint32Vector(path)
	require.NoError(t, err)
	defer v.Close()

	require.Equal(t, len(want), v.Len())
	for i, exp := range want {
		require.Equal(t, exp, v.Get(i))
	}
}

func TestEmptyVector(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.bin")
	w, err := diskvec.CreateUint64VectorWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	v, err := diskvec.OpenUint64Vector(path)
	require.NoError(t, err)
	defer v.Close()
	require.Equal(t, 0, v.Len())
}
