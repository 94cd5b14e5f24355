package index

import (
	"os"

	"github.com/meta-toolkit/metago/ids"
	"github.com/meta-toolkit/metago/metaerr"
	"github.com/meta-toolkit/metago/packed"
)

// WriteLabelMap persists labels (indexed by ids.LabelID, in ascending id
// order) as labelids.mapping: a packed count followed by one CString per
// label. Unlike termids.mapping this is a flat list, not a tree — the
// number of distinct class labels is small enough that a linear Find/lookup
// at load time is cheaper than building another B+-tree-like structure.
// Called by the construction driver (package build).
func WriteLabelMap(path string, labels []string) error {
	w := packed.NewWriter()
	w.Uvarint(uint64(len(labels)))
	for _, l := range labels {
		w.CString(l)
	}
	if err := os.WriteFile(path, w.Bytes(), 0o644); err != nil {
		return metaerr.Wrap(metaerr.ErrIO, err, "write %s", path)
	}
	return nil
}

// readLabelMap loads labelids.mapping into a slice indexed by ids.LabelID
// and a reverse string->LabelID map.
func readLabelMap(path string) ([]string, map[string]ids.LabelID, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, metaerr.Wrap(metaerr.ErrIO, err, "read %s", path)
	}
	r := packed.NewReader(raw)
	n := r.Uvarint()
	if r.Err() != nil {
		return nil, nil, r.Err()
	}
	labels := make([]string, n)
	byName := make(map[string]ids.LabelID, n)
	for i := range labels {
		s := r.CString()
		if r.Err() != nil {
			return nil, nil, r.Err()
		}
		labels[i] = s
		byName[s] = ids.LabelID(i)
	}
	return labels, byName, nil
}
