// Package index implements the inverted_index/forward_index facades of
// spec §4.7: the on-disk layout of a built index directory, the shared base
// operations both facades expose, and loading (a pure file-open operation
// once the directory is valid — see layout.go's IsValid).
//
// Grounded on zoekt's index/ package (an mmapped shard reader assembled
// from several independently-openable sections) and shard_builder.go's
// directory-of-files-is-the-unit-of-loading idiom, generalized from "one
// repository's trigram shard" to "one corpus's term/doc postings plus
// metadata".
package index

import (
	"path/filepath"

	"github.com/meta-toolkit/metago/diskvec"
	"github.com/meta-toolkit/metago/ids"
	"github.com/meta-toolkit/metago/metaerr"
	"github.com/meta-toolkit/metago/metastore"
	"github.com/meta-toolkit/metago/vocab"
)

// The on-disk layout has no dedicated doc-names/doc-paths file (see §6's
// layout list); doc_name and doc_path are carried as two metadata schema
// fields the construction driver always declares (alongside any
// user-configured [[metadata]] fields), named docNameField/docPathField
// below. This mirrors how zoekt carries a repository's display name and
// source URL as ordinary metadata fields on the repository record rather
// than a parallel file.
const (
	docNameField = "name"
	docPathField = "path"
)

// baseIndex holds everything both facades need: the vocabulary map, the
// per-document size/label/unique-term vectors, the label id<->text map,
// and the metadata store. Each of InvertedIndex and ForwardIndex embeds
// its own baseIndex instance (opened independently; mmaps are cheap and
// this keeps the two facades free of a shared-ownership lifetime).
type baseIndex struct {
	dir string

	vocab       *vocab.Reader
	docSizes    *diskvec.Uint64Vector
	docLabels   *diskvec.Uint32Vector
	uniqueTerms *diskvec.Uint64Vector
	meta        *metastore.Reader

	labels  []string
	byLabel map[string]ids.LabelID

	tombstones *Tombstones
}

func openBase(dir string) (*baseIndex, error) {
	if !IsValid(dir) {
		return nil, metaerr.Wrap(metaerr.ErrIndexFormat, nil, "%s: not a valid built index directory", dir)
	}

	v, err := vocab.Open(filepath.Join(dir, vocabTree), filepath.Join(dir, vocabInverse))
	if err != nil {
		return nil, err
	}
	sizes, err := diskvec.OpenUint64Vector(filepath.Join(dir, docSizesFile))
	if err != nil {
		v.Close()
		return nil, err
	}
	labelsVec, err := diskvec.OpenUint32Vector(filepath.Join(dir, docLabelsFile))
	if err != nil {
		v.Close()
		sizes.Close()
		return nil, err
	}
	uniq, err := diskvec.OpenUint64Vector(filepath.Join(dir, uniqueTermsFile))
	if err != nil {
		v.Close()
		sizes.Close()
		labelsVec.Close()
		return nil, err
	}
	meta, err := metastore.Open(filepath.Join(dir, metadataDB), filepath.Join(dir, metadataIndex))
	if err != nil {
		v.Close()
		sizes.Close()
		labelsVec.Close()
		uniq.Close()
		return nil, err
	}
	labelNames, byLabel, err := readLabelMap(filepath.Join(dir, labelMapFile))
	if err != nil {
		v.Close()
		sizes.Close()
		labelsVec.Close()
		uniq.Close()
		meta.Close()
		return nil, err
	}

	// tombstonesFile is deliberately absent from requiredFiles: it is an
	// optional, separately-maintained exclusion set, not a build output.
	// LoadTombstones returns an empty set when the file doesn't exist yet.
	tombstones, err := LoadTombstones(filepath.Join(dir, tombstonesFile))
	if err != nil {
		v.Close()
		sizes.Close()
		labelsVec.Close()
		uniq.Close()
		meta.Close()
		return nil, err
	}

	return &baseIndex{
		dir:         dir,
		vocab:       v,
		docSizes:    sizes,
		docLabels:   labelsVec,
		uniqueTerms: uniq,
		meta:        meta,
		labels:      labelNames,
		byLabel:     byLabel,
		tombstones:  tombstones,
	}, nil
}

func (b *baseIndex) close() error {
	var first error
	for _, err := range []error{b.vocab.Close(), b.docSizes.Close(), b.docLabels.Close(), b.uniqueTerms.Close(), b.meta.Close()} {
		if err != nil && first == nil {
			first = err
		}
	}
	return first
}

// NumDocs returns the number of documents in the corpus.
func (b *baseIndex) NumDocs() int { return b.docSizes.Len() }

// Docs returns every doc_id in ascending order.
func (b *baseIndex) Docs() []ids.DocID {
	out := make([]ids.DocID, b.NumDocs())
	for i := range out {
		out[i] = ids.DocID(i)
	}
	return out
}

func (b *baseIndex) checkDoc(doc ids.DocID) error {
	if int(doc) >= b.NumDocs() {
		return metaerr.Wrap(metaerr.ErrIndexFormat, nil, "doc_id %d out of range (num_docs=%d)", doc, b.NumDocs())
	}
	return nil
}

// DocSize returns the total term count of doc (the length field).
func (b *baseIndex) DocSize(doc ids.DocID) (uint64, error) {
	if err := b.checkDoc(doc); err != nil {
		return 0, err
	}
	return b.docSizes.Get(int(doc)), nil
}

// UniqueTerms returns the number of distinct terms in doc.
func (b *baseIndex) UniqueTerms(doc ids.DocID) (uint64, error) {
	if err := b.checkDoc(doc); err != nil {
		return 0, err
	}
	return b.uniqueTerms.Get(int(doc)), nil
}

// DocName returns doc's display name, carried as the "name" metadata field.
func (b *baseIndex) DocName(doc ids.DocID) (string, error) {
	if err := b.checkDoc(doc); err != nil {
		return "", err
	}
	return b.meta.GetString(doc, docNameField)
}

// DocPath returns doc's source path, carried as the "path" metadata field.
func (b *baseIndex) DocPath(doc ids.DocID) (string, error) {
	if err := b.checkDoc(doc); err != nil {
		return "", err
	}
	return b.meta.GetString(doc, docPathField)
}

// LabelID returns doc's class label id.
func (b *baseIndex) LabelID(doc ids.DocID) (ids.LabelID, error) {
	if err := b.checkDoc(doc); err != nil {
		return 0, err
	}
	return ids.LabelID(b.docLabels.Get(int(doc))), nil
}

// Label returns doc's class label text ("" if the corpus declared none).
func (b *baseIndex) Label(doc ids.DocID) (string, error) {
	lid, err := b.LabelID(doc)
	if err != nil {
		return "", err
	}
	return b.ClassLabelFromID(lid)
}

// ClassLabelFromID resolves a label_id to its text.
func (b *baseIndex) ClassLabelFromID(lid ids.LabelID) (string, error) {
	if int(lid) >= len(b.labels) {
		return "", metaerr.Wrap(metaerr.ErrIndexFormat, nil, "label_id %d out of range (num_labels=%d)", lid, len(b.labels))
	}
	return b.labels[lid], nil
}

// NumLabels returns the number of distinct class labels.
func (b *baseIndex) NumLabels() int { return len(b.labels) }

// ClassLabels returns every class label, in label_id order.
func (b *baseIndex) ClassLabels() []string { return append([]string(nil), b.labels...) }

// GetTermID resolves term text to its term_id.
func (b *baseIndex) GetTermID(text string) (ids.TermID, bool) {
	id, ok := b.vocab.Find(text)
	return ids.TermID(id), ok
}

// TermText resolves a term_id back to its text.
func (b *baseIndex) TermText(term ids.TermID) (string, bool) {
	return b.vocab.FindTerm(uint64(term))
}

// NumUniqueTerms returns the corpus-wide number of distinct terms.
func (b *baseIndex) NumUniqueTerms() uint64 { return b.vocab.Size() }

// Metadata returns the metadata reader, for callers that need fields
// beyond doc_name/doc_path/length/unique_terms.
func (b *baseIndex) Metadata() *metastore.Reader { return b.meta }

// Tombstones returns this index's excluded-doc_id set, loaded from the
// optional tombstones.roaring file. Never nil: a freshly built directory
// that has never had anything excluded yields an empty set.
func (b *baseIndex) Tombstones() *Tombstones { return b.tombstones }
