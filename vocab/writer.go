package vocab

import (
	"bufio"
	"encoding/binary"
	"os"

	"github.com/meta-toolkit/metago/diskvec"
	"github.com/meta-toolkit/metago/metaerr"
)

// treeFileWriter appends fixed-size blocks sequentially to the tree file,
// tracking the write cursor so block offsets can be computed deterministically
// (block i of a level starts at levelBase + i*blockSize) without re-reading
// the file.
type treeFileWriter struct {
	f      *os.File
	w      *bufio.Writer
	cursor int64
}

func (tw *treeFileWriter) writeBlock(raw []byte) (uint64, error) {
	off := tw.cursor
	if _, err := tw.w.Write(raw); err != nil {
		return 0, metaerr.Wrap(metaerr.ErrIO, err, "write vocabulary block")
	}
	tw.cursor += int64(len(raw))
	return uint64(off), nil
}

// levelBuilder accumulates (key, value) records into fixed-size blocks of a
// single tree level, streaming them out through a treeFileWriter as each
// block fills. It is used both for the leaf level (streamed one Insert at a
// time) and for each promotion pass (fed the previous level's blockRefs).
type levelBuilder struct {
	tw         *treeFileWriter
	blockSize  int
	typ        byte
	baseOffset uint64
	blockIndex int
	buf        []byte
	firstKey   string
	have       bool
	blocks     []blockRef
}

func newLevelBuilder(tw *treeFileWriter, blockSize int, typ byte) *levelBuilder {
	return &levelBuilder{tw: tw, blockSize: blockSize, typ: typ, baseOffset: uint64(tw.cursor)}
}

// add appends one record, flushing the current block first if it would
// overflow. It returns the absolute byte offset within the tree file where
// this record's encoding begins.
func (lb *levelBuilder) add(key string, value uint64) (uint64, error) {
	rec := encodeRecord(key, value)
	if 1+len(rec) > lb.blockSize {
		return 0, metaerr.Wrap(metaerr.ErrIndexFormat, nil,
			"vocabulary record for %q (%d bytes) does not fit in a %d-byte block", key, len(rec), lb.blockSize)
	}
	if lb.have && 1+len(lb.buf)+len(rec) > lb.blockSize {
		if err := lb.flush(); err != nil {
			return 0, err
		}
	}
	if !lb.have {
		lb.firstKey = key
		lb.have = true
	}
	offset := lb.baseOffset + uint64(lb.blockIndex)*uint64(lb.blockSize) + 1 + uint64(len(lb.buf))
	lb.buf = append(lb.buf, rec...)
	return offset, nil
}

func (lb *levelBuilder) flush() error {
	if !lb.have {
		return nil
	}
	raw := make([]byte, lb.blockSize)
	raw[0] = lb.typ
	copy(raw[1:], lb.buf)
	off, err := lb.tw.writeBlock(raw)
	if err != nil {
		return err
	}
	lb.blocks = append(lb.blocks, blockRef{firstKey: lb.firstKey, offset: off})
	lb.blockIndex++
	lb.buf = lb.buf[:0]
	lb.have = false
	return nil
}

// finish flushes any pending partial block and, if nothing was ever added,
// emits one empty block so the level (and therefore the tree) is never empty.
func (lb *levelBuilder) finish() ([]blockRef, error) {
	if lb.blockIndex == 0 && !lb.have {
		// Degenerate empty vocabulary: emit a single empty block as root.
		lb.have = true
		lb.firstKey = ""
		if err := lb.flush(); err != nil {
			return nil, err
		}
		return lb.blocks, nil
	}
	if err := lb.flush(); err != nil {
		return nil, err
	}
	return lb.blocks, nil
}

// Writer builds a vocabulary_map on disk. Terms must be inserted in sorted
// lexicographic order; the assigned term_id is always the 0-based insertion
// count, matching the specification.
type Writer struct {
	blockSize int
	tw        *treeFileWriter
	leaf      *levelBuilder
	inverse   *diskvec.Uint64VectorWriter
	count     uint64
	lastTerm  string
	hasLast   bool
	closed    bool
}

// NewWriter creates a vocabulary_map writer at treePath/inversePath.
// blockSize must be a power of two (the default, DefaultBlockSize, fits one
// VM page).
func NewWriter(treePath, inversePath string, blockSize int) (*Writer, error) {
	if !isPowerOfTwo(blockSize) {
		return nil, metaerr.Wrap(metaerr.ErrConfig, nil, "vocabulary_map block size %d is not a power of two", blockSize)
	}
	f, err := os.Create(treePath)
	if err != nil {
		return nil, metaerr.Wrap(metaerr.ErrIO, err, "create %s", treePath)
	}
	inv, err := diskvec.CreateUint64VectorWriter(inversePath)
	if err != nil {
		f.Close()
		return nil, err
	}
	tw := &treeFileWriter{f: f, w: bufio.NewWriter(f)}
	return &Writer{
		blockSize: blockSize,
		tw:        tw,
		leaf:      newLevelBuilder(tw, blockSize, leafBlock),
		inverse:   inv,
	}, nil
}

// Insert adds the next term in sorted order, assigning it the term_id
// equal to the current term count.
func (w *Writer) Insert(term string) (uint64, error) {
	if term == "" {
		return 0, metaerr.Wrap(metaerr.ErrIndexFormat, nil, "vocabulary_map terms must be non-empty")
	}
	if w.hasLast && term <= w.lastTerm {
		return 0, metaerr.Wrap(metaerr.ErrIndexFormat, nil, "vocabulary_map terms must be inserted in strictly increasing order (%q after %q)", term, w.lastTerm)
	}
	id := w.count
	offset, err := w.leaf.add(term, id)
	if err != nil {
		return 0, err
	}
	if err := w.inverse.Append(offset); err != nil {
		return 0, err
	}
	w.count++
	w.lastTerm = term
	w.hasLast = true
	return id, nil
}

// Finalize flushes the leaf level, promotes levels until a single root
// block remains, writes the footer, and closes both files.
func (w *Writer) Finalize() error {
	if w.closed {
		return nil
	}
	w.closed = true

	level, err := w.leaf.finish()
	if err != nil {
		return err
	}

	for len(level) > 1 {
		lb := newLevelBuilder(w.tw, w.blockSize, internalBlock)
		for _, b := range level {
			if _, err := lb.add(b.firstKey, b.offset); err != nil {
				return err
			}
		}
		level, err = lb.finish()
		if err != nil {
			return err
		}
	}

	root := level[0]

	footer := make([]byte, footerSize)
	copy(footer[0:8], footerMagic[:])
	binary.LittleEndian.PutUint32(footer[8:12], uint32(w.blockSize))
	binary.LittleEndian.PutUint64(footer[12:20], root.offset)
	binary.LittleEndian.PutUint64(footer[20:28], w.count)
	if _, err := w.tw.writeBlock(footer); err != nil {
		return err
	}

	if err := w.tw.w.Flush(); err != nil {
		w.tw.f.Close()
		return metaerr.Wrap(metaerr.ErrIO, err, "flush vocabulary tree file")
	}
	if err := w.tw.f.Close(); err != nil {
		return metaerr.Wrap(metaerr.ErrIO, err, "close vocabulary tree file")
	}
	return w.inverse.Close()
}
