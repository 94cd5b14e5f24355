package metastore_test

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/meta-toolkit/metago/ids"
	"github.com/meta-toolkit/metago/metaerr"
	"github.com/meta-toolkit/metago/metastore"
	"github.com/stretchr/testify/require"
)

func buildStore(t *testing.T) *metastore.Reader {
	t.Helper()
	dir := t.TempDir()
	schema := []metastore.FieldSchema{
		{Name: "class-label", Type: metastore.FieldString},
		{Name: "path", Type: metastore.FieldString},
		{Name: "popularity", Type: metastore.FieldDouble},
	}
	dbPath := filepath.Join(dir, "metadata.db")
	idxPath := filepath.Join(dir, "metadata.index")

	w, err := metastore.NewWriter(dbPath, idxPath, schema)
	require.NoError(t, err)

	require.NoError(t, w.Write(0, 2, 2, map[string]interface{}{
		"class-label": "pet", "path": "d0.txt", "popularity": 1.5,
	}))
	require.NoError(t, w.Write(1, 3, 2, map[string]interface{}{
		"class-label": "pet", "path": "d1.txt", "popularity": 3.0,
	}))
	require.NoError(t, w.Write(2, 3, 3, map[string]interface{}{
		"class-label": "wild", "path": "d2.txt", "popularity": 0.0,
	}))
	require.NoError(t, w.Close())

	r, err := metastore.Open(dbPath, idxPath)
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestMetadataRoundTrip(t *testing.T) {
	r := buildStore(t)

	length, err := r.Length(1)
	require.NoError(t, err)
	require.EqualValues(t, 3, length)

	uniq, err := r.UniqueTerms(2)
	require.NoError(t, err)
	require.EqualValues(t, 3, uniq)

	label, err := r.GetString(0, "class-label")
	require.NoError(t, err)
	require.Equal(t, "pet", label)

	pop, err := r.GetDouble(2, "popularity")
	require.NoError(t, err)
	require.Equal(t, 0.0, pop)
}

func TestMetadataSchemaRoundTrip(t *testing.T) {
	r := buildStore(t)

	want := []metastore.FieldSchema{
		{Name: "class-label", Type: metastore.FieldString},
		{Name: "path", Type: metastore.FieldString},
		{Name: "popularity", Type: metastore.FieldDouble},
	}
	if diff := cmp.Diff(want, r.Schema()); diff != "" {
		t.Errorf("schema mismatch (-want +got):\n%s", diff)
	}
}

func TestMetadataRepeatedGetIsCached(t *testing.T) {
	r := buildStore(t)
	a, err := r.GetString(1, "path")
	require.NoError(t, err)
	b, err := r.GetString(1, "path")
	require.NoError(t, err)
	require.Equal(t, a, b)
	require.Equal(t, "d1.txt", a)
}

func TestMetadataTypeMismatch(t *testing.T) {
	r := buildStore(t)
	_, err := r.GetSignedInt(0, "popularity")
	require.Error(t, err)
	require.True(t, metaerr.Is(err, metaerr.ErrTypeMismatch))
}

func TestMetadataUnknownField(t *testing.T) {
	r := buildStore(t)
	_, err := r.GetString(0, "nope")
	require.Error(t, err)
	require.True(t, metaerr.Is(err, metaerr.ErrUnknownField))
}

func TestMetadataWriterRejectsOutOfOrderDocID(t *testing.T) {
	dir := t.TempDir()
	w, err := metastore.NewWriter(filepath.Join(dir, "metadata.db"), filepath.Join(dir, "metadata.index"), nil)
	require.NoError(t, err)
	require.NoError(t, w.Write(0, 1, 1, nil))
	err = w.Write(2, 1, 1, nil)
	require.Error(t, err)
	_ = ids.DocID(0)
}
