// Package vocab implements the vocabulary_map: a bijective term <-> term_id
// map persisted as an on-disk B+-tree-like tree file (leaves first, then
// progressively higher internal levels, then the root last) plus an inverse
// disk_vector<uint64> mapping term_id -> byte offset of that term's leaf
// record.
//
// Directly generalizes zoekt's btree.go, which builds the same shape of tree
// in memory for fixed-width ngrams with leaf buckets materialized on disk;
// this package persists the whole tree (inner nodes included) since terms
// are variable-length strings and a vocabulary can run into the tens of
// millions, too large to keep resident as Go objects the way zoekt keeps its
// (much smaller, fixed-alphabet) trigram tree in memory.
package vocab

import (
	"encoding/binary"
	"os"

	"github.com/meta-toolkit/metago/diskvec"
	"github.com/meta-toolkit/metago/metaerr"
	"github.com/meta-toolkit/metago/packed"
)

// DefaultBlockSize is the default tree-file block size: one 4096-byte VM page.
const DefaultBlockSize = 4096

const (
	leafBlock     byte = 0
	internalBlock byte = 1
)

// footerSize is the length of the trailer appended after the root block:
// magic(8) + blockSize(u32) + rootOffset(u64) + termCount(u64).
const footerSize = 8 + 4 + 8 + 8

var footerMagic = [8]byte{'m', 'e', 't', 'a', 'v', 'o', 'c', '1'}

func isPowerOfTwo(n int) bool { return n > 0 && n&(n-1) == 0 }

func encodeRecord(key string, value uint64) []byte {
	w := packed.NewWriter()
	w.Uvarint(uint64(len(key)))
	w.RawBytes([]byte(key))
	w.Uvarint(value)
	return w.Bytes()
}

type blockRef struct {
	firstKey string
	offset   uint64
}
