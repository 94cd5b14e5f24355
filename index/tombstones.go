// Tombstones supplements the ranker's filter predicate with an O(1)
// membership fast-path for excluded documents, directly grounded on
// zoekt's tombstones.go (which marks whole repositories excluded from
// search without rewriting the shard). MeTA has no repository concept, so
// the bitmap here is keyed by doc_id instead of repo_id, but the shape —
// a roaring bitmap checked before falling through to the general
// predicate — is identical.
package index

import (
	"os"

	"github.com/RoaringBitmap/roaring"
	"github.com/meta-toolkit/metago/ids"
	"github.com/meta-toolkit/metago/metaerr"
)

// Tombstones is a mutable set of excluded doc_ids, separate from the
// read-only built index so documents can be retired without a rebuild.
type Tombstones struct {
	bitmap *roaring.Bitmap
}

// NewTombstones returns an empty tombstone set.
func NewTombstones() *Tombstones {
	return &Tombstones{bitmap: roaring.New()}
}

// Add marks doc as excluded.
func (t *Tombstones) Add(doc ids.DocID) { t.bitmap.Add(uint32(doc)) }

// Remove un-marks doc.
func (t *Tombstones) Remove(doc ids.DocID) { t.bitmap.Remove(uint32(doc)) }

// Contains reports whether doc is excluded.
func (t *Tombstones) Contains(doc ids.DocID) bool { return t.bitmap.Contains(uint32(doc)) }

// Len returns the number of excluded documents.
func (t *Tombstones) Len() int { return int(t.bitmap.GetCardinality()) }

// WriteFile serializes the bitmap to path, overwriting any existing file.
func (t *Tombstones) WriteFile(path string) error {
	raw, err := t.bitmap.ToBytes()
	if err != nil {
		return metaerr.Wrap(metaerr.ErrIO, err, "serialize tombstones")
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return metaerr.Wrap(metaerr.ErrIO, err, "write %s", path)
	}
	return nil
}

// LoadTombstones reads a tombstone set previously written by WriteFile. A
// missing file is not an error: it means nothing has ever been excluded,
// so an empty set is returned.
func LoadTombstones(path string) (*Tombstones, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return NewTombstones(), nil
	}
	if err != nil {
		return nil, metaerr.Wrap(metaerr.ErrIO, err, "read %s", path)
	}
	bm := roaring.New()
	if _, err := bm.FromBuffer(raw); err != nil {
		return nil, metaerr.Wrap(metaerr.ErrIndexFormat, err, "decode tombstones %s", path)
	}
	return &Tombstones{bitmap: bm}, nil
}
