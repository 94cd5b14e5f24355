package postings

import "github.com/meta-toolkit/metago/diskvec"

// File is the read view of a postings_file<K, S, V>: an mmapped blob plus a
// disk_vector<u64> of byte offsets into it, one per key.
type File[V Value] struct {
	blob      *diskvec.MappedFile
	locations *diskvec.Uint64Vector
	codec     ValueCodec[V]
}

// OpenFile mmaps both halves of a postings_file.
func OpenFile[V Value](blobPath, locationsPath string, codec ValueCodec[V]) (*File[V], error) {
	blob, err := diskvec.Open(blobPath)
	if err != nil {
		return nil, err
	}
	locs, err := diskvec.OpenUint64Vector(locationsPath)
	if err != nil {
		blob.Close()
		return nil, err
	}
	return &File[V]{blob: blob, locations: locs, codec: codec}, nil
}

// Close releases both mappings.
func (f *File[V]) Close() error {
	err1 := f.blob.Close()
	err2 := f.locations.Close()
	if err1 != nil {
		return err1
	}
	return err2
}

// NumKeys returns the size of the key space (len(byte_locations)).
func (f *File[V]) NumKeys() int { return f.locations.Len() }

// Find returns the postings_stream for k, or a valid empty stream if k is
// outside the key space (the "default-constructed postings_data" rule).
func (f *File[V]) Find(k uint64) (*Stream[V], error) {
	if k >= uint64(f.locations.Len()) {
		return emptyStream[V](f.codec), nil
	}
	off := f.locations.Get(int(k))
	return NewStream(f.blob.Bytes()[off:], f.codec)
}

func emptyStream[V Value](codec ValueCodec[V]) *Stream[V] {
	return &Stream[V]{codec: codec}
}
