package vocab

import (
	"bytes"
	"encoding/binary"

	"github.com/meta-toolkit/metago/diskvec"
	"github.com/meta-toolkit/metago/metaerr"
	"github.com/meta-toolkit/metago/packed"
)

// Reader provides O(tree-depth) term<->term_id lookups over a vocabulary_map
// built by Writer. Tree depth is bounded by block size and vocabulary size;
// for a few tens of millions of terms at 4 KiB blocks it is at most 3, so
// Find touches at most 3 memory pages.
type Reader struct {
	tree       *diskvec.MappedFile
	inverse    *diskvec.Uint64Vector
	blockSize  uint32
	rootOffset uint64
	termCount  uint64
}

// Open mmaps the tree and inverse files written by Writer.
func Open(treePath, inversePath string) (*Reader, error) {
	tree, err := diskvec.Open(treePath)
	if err != nil {
		return nil, err
	}
	inv, err := diskvec.OpenUint64Vector(inversePath)
	if err != nil {
		tree.Close()
		return nil, err
	}

	b := tree.Bytes()
	if len(b) < footerSize {
		tree.Close()
		inv.Close()
		return nil, metaerr.Wrap(metaerr.ErrIndexFormat, nil, "%s: too small to contain a vocabulary footer", treePath)
	}
	footer := b[len(b)-footerSize:]
	if !bytes.Equal(footer[0:8], footerMagic[:]) {
		tree.Close()
		inv.Close()
		return nil, metaerr.Wrap(metaerr.ErrIndexFormat, nil, "%s: bad vocabulary footer magic", treePath)
	}

	r := &Reader{
		tree:       tree,
		inverse:    inv,
		blockSize:  binary.LittleEndian.Uint32(footer[8:12]),
		rootOffset: binary.LittleEndian.Uint64(footer[12:20]),
		termCount:  binary.LittleEndian.Uint64(footer[20:28]),
	}
	if r.termCount != uint64(inv.Len()) {
		tree.Close()
		inv.Close()
		return nil, metaerr.Wrap(metaerr.ErrIndexFormat, nil, "%s: term count %d does not match inverse file length %d", treePath, r.termCount, inv.Len())
	}
	return r, nil
}

// Close releases both mmapped files.
func (r *Reader) Close() error {
	err1 := r.tree.Close()
	err2 := r.inverse.Close()
	if err1 != nil {
		return err1
	}
	return err2
}

// Size returns the number of distinct terms in the vocabulary.
func (r *Reader) Size() uint64 { return r.termCount }

// Find returns the term_id for term, or (0, false) if term is absent.
func (r *Reader) Find(term string) (uint64, bool) {
	offset := r.rootOffset
	for {
		block, err := r.block(offset)
		if err != nil {
			return 0, false
		}
		typ, content := block[0], block[1:]
		if typ == leafBlock {
			return scanLeaf(content, term)
		}
		next, ok := scanInternal(content, term)
		if !ok {
			return 0, false
		}
		offset = next
	}
}

// FindTerm returns the term text for a term_id, or ("", false) if id is out
// of range.
func (r *Reader) FindTerm(id uint64) (string, bool) {
	if id >= r.termCount {
		return "", false
	}
	off := r.inverse.Get(int(id))
	data := r.tree.Bytes()
	if off >= uint64(len(data)) {
		return "", false
	}
	pr := packed.NewReader(data[off:])
	l := pr.Uvarint()
	if pr.Err() != nil {
		return "", false
	}
	b := pr.Bytes(int(l))
	if pr.Err() != nil {
		return "", false
	}
	return string(b), true
}

func (r *Reader) block(offset uint64) ([]byte, error) {
	data := r.tree.Bytes()
	end := offset + uint64(r.blockSize)
	if offset >= end || end > uint64(len(data)) {
		return nil, metaerr.Wrap(metaerr.ErrIndexFormat, nil, "vocabulary block at %d out of bounds", offset)
	}
	return data[offset:end], nil
}

// scanLeaf performs the leaf-level sequential scan described in the
// specification: compare keys in ascending order until found, or until the
// current record's key exceeds the target (absent), or the block's records
// are exhausted (a zero length prefix marks the start of zero padding).
func scanLeaf(content []byte, target string) (uint64, bool) {
	pr := packed.NewReader(content)
	for {
		l := pr.Uvarint()
		if pr.Err() != nil || l == 0 {
			return 0, false
		}
		keyBytes := pr.Bytes(int(l))
		if pr.Err() != nil {
			return 0, false
		}
		val := pr.Uvarint()
		if pr.Err() != nil {
			return 0, false
		}
		key := string(keyBytes)
		switch {
		case key == target:
			return val, true
		case key > target:
			return 0, false
		}
	}
}

// scanInternal finds the largest key <= target and returns its child
// offset. If the block's first key already exceeds target, the term is
// absent from the whole subtree.
func scanInternal(content []byte, target string) (uint64, bool) {
	pr := packed.NewReader(content)
	var bestOffset uint64
	found := false
	first := true
	for {
		l := pr.Uvarint()
		if pr.Err() != nil || l == 0 {
			break
		}
		keyBytes := pr.Bytes(int(l))
		if pr.Err() != nil {
			break
		}
		val := pr.Uvarint()
		if pr.Err() != nil {
			break
		}
		key := string(keyBytes)
		if first {
			first = false
			if key > target {
				return 0, false
			}
		}
		if key <= target {
			bestOffset, found = val, true
		} else {
			break
		}
	}
	return bestOffset, found
}
