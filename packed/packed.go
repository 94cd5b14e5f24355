// Package packed implements the variable-length integer/float/string codec
// used by every on-disk structure in the index: little-endian base-128
// varints for unsigned integers (encoding/binary's Uvarint), zig-zag varints
// for signed integers (encoding/binary's Varint already zig-zags), and fixed
// 8-byte little-endian IEEE-754 for doubles. Strings are null-terminated,
// never length-prefixed, matching the metadata record format.
//
// Grounded on zoekt's marshal.go binaryReader, generalized from a single
// ad-hoc decoder into a reusable Writer/Reader pair used by vocab, postings
// and metastore alike.
package packed

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/meta-toolkit/metago/metaerr"
)

// Writer accumulates a packed byte stream.
type Writer struct {
	buf [binary.MaxVarintLen64]byte
	out []byte
}

// NewWriter returns a Writer that appends to an internal buffer.
func NewWriter() *Writer { return &Writer{} }

// Bytes returns the accumulated stream.
func (w *Writer) Bytes() []byte { return w.out }

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return len(w.out) }

// Uvarint appends v as an unsigned LEB128 varint.
func (w *Writer) Uvarint(v uint64) {
	n := binary.PutUvarint(w.buf[:], v)
	w.out = append(w.out, w.buf[:n]...)
}

// Varint appends v as a zig-zag encoded signed varint.
func (w *Writer) Varint(v int64) {
	n := binary.PutVarint(w.buf[:], v)
	w.out = append(w.out, w.buf[:n]...)
}

// Float64 appends v as 8 bytes little-endian IEEE-754.
func (w *Writer) Float64(v float64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
	w.out = append(w.out, b[:]...)
}

// Byte appends a single raw byte.
func (w *Writer) Byte(b byte) { w.out = append(w.out, b) }

// RawBytes appends raw bytes verbatim.
func (w *Writer) RawBytes(b []byte) { w.out = append(w.out, b...) }

// CString appends s followed by a NUL terminator. s must not itself contain
// a NUL byte; the metadata schema assumes printable text fields.
func (w *Writer) CString(s string) {
	w.out = append(w.out, s...)
	w.out = append(w.out, 0)
}

// WriteTo implements io.WriterTo so a Writer's contents can be streamed
// directly to a chunk or index file without an intermediate copy.
func (w *Writer) WriteTo(dst io.Writer) (int64, error) {
	n, err := dst.Write(w.out)
	return int64(n), err
}

// Reset discards the accumulated bytes so the Writer can be reused.
func (w *Writer) Reset() { w.out = w.out[:0] }

// Reader decodes a packed byte stream. It never copies: returned strings
// and byte slices alias the backing buffer.
type Reader struct {
	b   []byte
	err error
}

// NewReader wraps b for decoding.
func NewReader(b []byte) *Reader { return &Reader{b: b} }

// Err returns the first decoding error encountered, if any.
func (r *Reader) Err() error { return r.err }

// Remaining returns the number of undecoded bytes left in the stream.
func (r *Reader) Remaining() int { return len(r.b) }

func (r *Reader) fail(what string) {
	if r.err == nil {
		r.err = metaerr.Wrap(metaerr.ErrIndexFormat, nil, "malformed packed stream: %s", what)
	}
	r.b = nil
}

// Uvarint decodes an unsigned LEB128 varint.
func (r *Reader) Uvarint() uint64 {
	if r.err != nil {
		return 0
	}
	x, n := binary.Uvarint(r.b)
	if n <= 0 {
		r.fail("uvarint")
		return 0
	}
	r.b = r.b[n:]
	return x
}

// Varint decodes a zig-zag encoded signed varint.
func (r *Reader) Varint() int64 {
	if r.err != nil {
		return 0
	}
	x, n := binary.Varint(r.b)
	if n <= 0 {
		r.fail("varint")
		return 0
	}
	r.b = r.b[n:]
	return x
}

// Float64 decodes 8 bytes little-endian IEEE-754.
func (r *Reader) Float64() float64 {
	if r.err != nil {
		return 0
	}
	if len(r.b) < 8 {
		r.fail("float64")
		return 0
	}
	v := math.Float64frombits(binary.LittleEndian.Uint64(r.b[:8]))
	r.b = r.b[8:]
	return v
}

// Byte decodes a single raw byte.
func (r *Reader) Byte() byte {
	if r.err != nil {
		return 0
	}
	if len(r.b) < 1 {
		r.fail("byte")
		return 0
	}
	b := r.b[0]
	r.b = r.b[1:]
	return b
}

// Bytes decodes n raw bytes, aliasing the backing buffer.
func (r *Reader) Bytes(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || n > len(r.b) {
		r.fail("bytes")
		return nil
	}
	out := r.b[:n]
	r.b = r.b[n:]
	return out
}

// CString decodes a NUL-terminated string.
func (r *Reader) CString() string {
	if r.err != nil {
		return ""
	}
	i := indexByte(r.b, 0)
	if i < 0 {
		r.fail("cstring: missing terminator")
		return ""
	}
	s := string(r.b[:i])
	r.b = r.b[i+1:]
	return s
}

func indexByte(b []byte, c byte) int {
	for i, x := range b {
		if x == c {
			return i
		}
	}
	return -1
}
