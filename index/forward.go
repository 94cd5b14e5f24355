package index

import (
	"path/filepath"

	"github.com/meta-toolkit/metago/ids"
	"github.com/meta-toolkit/metago/postings"
)

// ForwardIndex is the disk_index facade keyed by doc_id: each row is the
// whole document's (term_id, count) postings, used by feedback rankers
// (Rocchio) and anything needing a document's full term vector without
// re-tokenizing.
type ForwardIndex struct {
	*baseIndex
	postings *postings.File[uint64]
}

// OpenForward loads the forward_index view of a previously built index
// directory.
func OpenForward(dir string) (*ForwardIndex, error) {
	base, err := openBase(dir)
	if err != nil {
		return nil, err
	}
	pf, err := postings.OpenFile(filepath.Join(dir, forwardBlob), filepath.Join(dir, forwardLocations), postings.Uint64Codec)
	if err != nil {
		base.close()
		return nil, err
	}
	return &ForwardIndex{baseIndex: base, postings: pf}, nil
}

// Close releases all underlying mappings.
func (idx *ForwardIndex) Close() error {
	err1 := idx.postings.Close()
	err2 := idx.baseIndex.close()
	if err1 != nil {
		return err1
	}
	return err2
}

// SearchPrimary returns doc's whole row: every (term_id, count) pair it
// contains, ascending by term_id.
func (idx *ForwardIndex) SearchPrimary(doc ids.DocID) (*postings.Data[uint64], error) {
	s, err := idx.postings.Find(uint64(doc))
	if err != nil {
		return nil, err
	}
	return s.Collect()
}
