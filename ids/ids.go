// Package ids declares the dense, 0-based identifier types shared across
// the indexing and retrieval core, corresponding to the specification's
// term_id, doc_id and label_id.
package ids

// TermID indexes into the vocabulary (dense, 0-based, unsigned 64-bit).
type TermID uint64

// DocID indexes into the document collection (dense, 0-based, unsigned 64-bit).
type DocID uint64

// LabelID identifies a class label (unsigned 32-bit), used by classifiers
// and carried in document metadata.
type LabelID uint32

// NoTermID is returned by lookups that fail to resolve a term (vocabulary
// misses are represented as (TermID, bool), not this sentinel, but it is
// convenient for call sites that want a zero value to mean "unset").
const NoTermID TermID = ^TermID(0)
