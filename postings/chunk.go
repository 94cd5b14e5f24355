package postings

import (
	"os"
	"path/filepath"

	"github.com/meta-toolkit/metago/metaerr"
	"github.com/meta-toolkit/metago/packed"
	"github.com/rs/xid"
)

// ChunkInfo describes one chunk file on disk: its path, byte size (used to
// order the merge priority queue) and the number of distinct keys it holds.
type ChunkInfo struct {
	Path string
	Size int64
	Keys int
}

// ChunkWriter flushes a Buffer to a new chunk file in ascending-key order.
// Unlike the final postings_file, a chunk record is prefixed by its own key
// since chunks are a flat sequential list, not randomly addressed.
type ChunkWriter[V Value] struct {
	dir   string
	codec ValueCodec[V]
}

// NewChunkWriter creates chunk files under dir.
func NewChunkWriter[V Value](dir string, codec ValueCodec[V]) *ChunkWriter[V] {
	return &ChunkWriter[V]{dir: dir, codec: codec}
}

// Flush writes buf's contents to a new chunk file and resets buf. The chunk
// filename is unique (rs/xid) so concurrent workers never collide.
func (cw *ChunkWriter[V]) Flush(buf *Buffer[V]) (ChunkInfo, error) {
	records := buf.Sorted()
	path := filepath.Join(cw.dir, "chunk-"+xid.New().String()+".tmp")
	f, err := os.Create(path)
	if err != nil {
		return ChunkInfo{}, metaerr.Wrap(metaerr.ErrIO, err, "create chunk file %s", path)
	}
	w := packed.NewWriter()
	for _, d := range records {
		w.Uvarint(d.Key)
		WriteTo(w, d, cw.codec)
	}
	if _, err := w.WriteTo(f); err != nil {
		f.Close()
		os.Remove(path)
		return ChunkInfo{}, metaerr.Wrap(metaerr.ErrIO, err, "write chunk file %s", path)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return ChunkInfo{}, metaerr.Wrap(metaerr.ErrIO, err, "close chunk file %s", path)
	}
	buf.Reset()
	return ChunkInfo{Path: path, Size: int64(w.Len()), Keys: len(records)}, nil
}

// chunkReader sequentially decodes key-prefixed records from a fully
// in-memory chunk. Flushed chunks are bounded in size by the flush policy,
// but merged chunks grow with each merge, and mergeTwo holds both of its
// input chunks in memory whole.
type chunkReader[V Value] struct {
	r     *packed.Reader
	codec ValueCodec[V]
}

func openChunkReader[V Value](path string, codec ValueCodec[V]) (*chunkReader[V], error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, metaerr.Wrap(metaerr.ErrIO, err, "read chunk file %s", path)
	}
	return &chunkReader[V]{r: packed.NewReader(b), codec: codec}, nil
}

// next decodes the next key-prefixed record, or returns ok=false at a clean
// end of chunk.
func (cr *chunkReader[V]) next() (d *Data[V], ok bool, err error) {
	if cr.r.Remaining() == 0 {
		return nil, false, nil
	}
	key := cr.r.Uvarint()
	size := cr.r.Uvarint()
	total := cr.codec.Decode(cr.r)
	if cr.r.Err() != nil {
		return nil, false, cr.r.Err()
	}
	pairs := make([]Pair[V], size)
	var last uint64
	for i := range pairs {
		gap := cr.r.Uvarint()
		val := cr.codec.Decode(cr.r)
		if cr.r.Err() != nil {
			return nil, false, cr.r.Err()
		}
		last += gap
		pairs[i] = Pair[V]{S: last, V: val}
	}
	_ = total // total_counts is redundant with sum(pairs); recomputed by TotalCounts on demand
	return &Data[V]{Key: key, Pairs: pairs}, true, nil
}
