package diskvec

import (
	"bufio"
	"encoding/binary"
	"os"

	"github.com/meta-toolkit/metago/metaerr"
)

// Uint64Vector is a read-only mmap-backed disk_vector<uint64>: raw
// little-endian uint64 values laid out sequentially, no header, size
// inferred from file length / 8.
type Uint64Vector struct {
	file *MappedFile
}

// OpenUint64Vector mmaps path and interprets it as a disk_vector<uint64>.
func OpenUint64Vector(path string) (*Uint64Vector, error) {
	f, err := Open(path)
	if err != nil {
		return nil, err
	}
	if len(f.Bytes())%8 != 0 {
		f.Close()
		return nil, metaerr.Wrap(metaerr.ErrIndexFormat, nil, "%s: length %d not a multiple of 8", path, len(f.Bytes()))
	}
	return &Uint64Vector{file: f}, nil
}

// Len returns the number of elements.
func (v *Uint64Vector) Len() int { return len(v.file.Bytes()) / 8 }

// Get returns the i'th element. It panics if i is out of range, matching
// disk_vector's "bounds-checked indexing" contract: callers are expected to
// check Len() (or rely on the higher-level facades which treat
// out-of-range access as "absent", e.g. postings_file's
// k >= len(byte_locations) rule).
func (v *Uint64Vector) Get(i int) uint64 {
	b := v.file.Bytes()
	return binary.LittleEndian.Uint64(b[i*8 : i*8+8])
}

// Close releases the underlying mapping.
func (v *Uint64Vector) Close() error { return v.file.Close() }

// Uint32Vector is the label_id-sized counterpart of Uint64Vector.
type Uint32Vector struct {
	file *MappedFile
}

// OpenUint32Vector mmaps path and interprets it as a disk_vector<uint32>.
func OpenUint32Vector(path string) (*Uint32Vector, error) {
	f, err := Open(path)
	if err != nil {
		return nil, err
	}
	if len(f.Bytes())%4 != 0 {
		f.Close()
		return nil, metaerr.Wrap(metaerr.ErrIndexFormat, nil, "%s: length %d not a multiple of 4", path, len(f.Bytes()))
	}
	return &Uint32Vector{file: f}, nil
}

func (v *Uint32Vector) Len() int { return len(v.file.Bytes()) / 4 }

func (v *Uint32Vector) Get(i int) uint32 {
	b := v.file.Bytes()
	return binary.LittleEndian.Uint32(b[i*4 : i*4+4])
}

func (v *Uint32Vector) Close() error { return v.file.Close() }

// Uint64VectorWriter appends raw little-endian uint64 values to a temp file
// during construction. Writes are buffered through a bufio.Writer and
// flushed by Close; the construction driver writes these files inside a
// temporary index directory and renames that directory into place on success.
type Uint64VectorWriter struct {
	w   *bufio.Writer
	f   *os.File
	n   int
	buf [8]byte
}

// CreateUint64VectorWriter opens path for writing (truncating any existing
// contents).
func CreateUint64VectorWriter(path string) (*Uint64VectorWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, metaerr.Wrap(metaerr.ErrIO, err, "create %s", path)
	}
	return &Uint64VectorWriter{w: bufio.NewWriter(f), f: f}, nil
}

// Append writes v as the next element.
func (w *Uint64VectorWriter) Append(v uint64) error {
	binary.LittleEndian.PutUint64(w.buf[:], v)
	if _, err := w.w.Write(w.buf[:]); err != nil {
		return metaerr.Wrap(metaerr.ErrIO, err, "write disk_vector element")
	}
	w.n++
	return nil
}

// Len returns the number of elements written so far.
func (w *Uint64VectorWriter) Len() int { return w.n }

// Close flushes and closes the underlying file.
func (w *Uint64VectorWriter) Close() error {
	if err := w.w.Flush(); err != nil {
		w.f.Close()
		return metaerr.Wrap(metaerr.ErrIO, err, "flush disk_vector")
	}
	if err := w.f.Close(); err != nil {
		return metaerr.Wrap(metaerr.ErrIO, err, "close disk_vector")
	}
	return nil
}

// Uint32VectorWriter is the label_id-sized counterpart of Uint64VectorWriter.
type Uint32VectorWriter struct {
	w   *bufio.Writer
	f   *os.File
	n   int
	buf [4]byte
}

func CreateUint32VectorWriter(path string) (*Uint32VectorWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, metaerr.Wrap(metaerr.ErrIO, err, "create %s", path)
	}
	return &Uint32VectorWriter{w: bufio.NewWriter(f), f: f}, nil
}

func (w *Uint32VectorWriter) Append(v uint32) error {
	binary.LittleEndian.PutUint32(w.buf[:], v)
	if _, err := w.w.Write(w.buf[:]); err != nil {
		return metaerr.Wrap(metaerr.ErrIO, err, "write disk_vector element")
	}
	w.n++
	return nil
}

func (w *Uint32VectorWriter) Len() int { return w.n }

func (w *Uint32VectorWriter) Close() error {
	if err := w.w.Flush(); err != nil {
		w.f.Close()
		return metaerr.Wrap(metaerr.ErrIO, err, "flush disk_vector")
	}
	if err := w.f.Close(); err != nil {
		return metaerr.Wrap(metaerr.ErrIO, err, "close disk_vector")
	}
	return nil
}
