// Package diskvec implements the mmap-backed, read-only primitives shared by
// every on-disk structure in the index: a RAII mmap wrapper (MappedFile) and
// fixed-record arrays over it (Uint32Vector, Uint64Vector) corresponding to
// disk_vector<T> in the specification.
//
// Grounded on zoekt's indexfile.go mmapedIndexFile, generalized from a single
// "index file" abstraction into the narrower disk_vector<T> contract: a flat,
// headerless array of fixed-width little-endian integers, size inferred from
// file length.
package diskvec

import (
	"os"
	"runtime"

	mmap "github.com/edsrzf/mmap-go"
	"github.com/meta-toolkit/metago/metaerr"
)

// MappedFile is a read-only memory map of a file. The zero value is not
// usable; construct with Open. Close releases the mapping; it is safe to
// call Close more than once.
type MappedFile struct {
	name    string
	data    mmap.MMap
	mapped  bool
	closed  bool
}

// Open mmaps path read-only. The returned MappedFile owns the mapping, not
// the file descriptor: the os.File is closed immediately after mapping, as
// mmap keeps the pages resident independently of the descriptor.
func Open(path string) (*MappedFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, metaerr.Wrap(metaerr.ErrIO, err, "open %s", path)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, metaerr.Wrap(metaerr.ErrIO, err, "stat %s", path)
	}

	if fi.Size() == 0 {
		// mmap of a zero-length file fails on most platforms; an empty
		// disk_vector is a legitimate (if degenerate) state.
		return &MappedFile{name: path}, nil
	}

	m, err := mmap.MapRegion(f, bufferSize(fi.Size()), mmap.RDONLY, 0, 0)
	if err != nil {
		return nil, metaerr.Wrap(metaerr.ErrIO, err, "mmap %s", path)
	}

	return &MappedFile{name: path, data: m[:fi.Size()], mapped: true}, nil
}

func bufferSize(sz int64) int {
	bsize := int(sz)
	if runtime.GOOS != "windows" {
		pagesize := os.Getpagesize() - 1
		bsize = (bsize + pagesize) &^ pagesize
	}
	return bsize
}

// Bytes returns the full mapped region, sized to the file's actual length
// (not the page-rounded mapping).
func (m *MappedFile) Bytes() []byte {
	if m.data == nil {
		return nil
	}
	return m.data
}

// Name returns the path this file was opened from.
func (m *MappedFile) Name() string { return m.name }

// Close releases the mapping.
func (m *MappedFile) Close() error {
	if m.closed || !m.mapped {
		m.closed = true
		return nil
	}
	m.closed = true
	return m.data.Unmap()
}
