package postings

import (
	"container/heap"
	"os"
	"path/filepath"

	"github.com/meta-toolkit/metago/metaerr"
	"github.com/meta-toolkit/metago/packed"
	"github.com/rs/xid"
)

// chunkQueue is a min-heap of chunks ordered by size ascending, per spec
// §4.5 step 3: "inserted into a priority queue keyed by size ascending".
// Tie-breaks are irrelevant to correctness.
type chunkQueue []ChunkInfo

func (q chunkQueue) Len() int            { return len(q) }
func (q chunkQueue) Less(i, j int) bool  { return q[i].Size < q[j].Size }
func (q chunkQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *chunkQueue) Push(x interface{}) { *q = append(*q, x.(ChunkInfo)) }
func (q *chunkQueue) Pop() interface{} {
	old := *q
	n := len(old)
	x := old[n-1]
	*q = old[:n-1]
	return x
}

// MergeAll repeatedly pops the two smallest chunks, merges them into a new
// chunk, and pushes the result back, until one chunk remains (spec §4.5
// step 4). Input chunk files are removed as they are consumed. Returns the
// single merged chunk; the caller is responsible for removing it once it
// has been repacked into the final postings_file.
func MergeAll[V Value](chunks []ChunkInfo, codec ValueCodec[V], workDir string) (ChunkInfo, error) {
	if len(chunks) == 0 {
		return emptyChunk[V](codec, workDir)
	}
	q := chunkQueue(append([]ChunkInfo(nil), chunks...))
	heap.Init(&q)
	for q.Len() > 1 {
		a := heap.Pop(&q).(ChunkInfo)
		b := heap.Pop(&q).(ChunkInfo)
		merged, err := mergeTwo(a, b, codec, workDir)
		if err != nil {
			os.Remove(a.Path)
			os.Remove(b.Path)
			for _, c := range q {
				os.Remove(c.Path)
			}
			return ChunkInfo{}, err
		}
		os.Remove(a.Path)
		os.Remove(b.Path)
		heap.Push(&q, merged)
	}
	return heap.Pop(&q).(ChunkInfo), nil
}

func emptyChunk[V Value](codec ValueCodec[V], workDir string) (ChunkInfo, error) {
	path := filepath.Join(workDir, "chunk-"+xid.New().String()+".tmp")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		return ChunkInfo{}, metaerr.Wrap(metaerr.ErrIO, err, "create empty chunk %s", path)
	}
	return ChunkInfo{Path: path}, nil
}

// mergeTwo streams both chunks in ascending-key order, merging records with
// equal keys by merging their sorted pair lists (summing values when the
// same secondary key appears in both, which can occur at chunk boundaries;
// otherwise concatenating), and writes the result to a new chunk file.
func mergeTwo[V Value](a, b ChunkInfo, codec ValueCodec[V], workDir string) (ChunkInfo, error) {
	ra, err := openChunkReader(a.Path, codec)
	if err != nil {
		return ChunkInfo{}, err
	}
	rb, err := openChunkReader(b.Path, codec)
	if err != nil {
		return ChunkInfo{}, err
	}

	path := filepath.Join(workDir, "chunk-"+xid.New().String()+".tmp")
	f, err := os.Create(path)
	if err != nil {
		return ChunkInfo{}, metaerr.Wrap(metaerr.ErrIO, err, "create merged chunk %s", path)
	}
	w := packed.NewWriter()

	da, okA, err := ra.next()
	if err != nil {
		f.Close()
		os.Remove(path)
		return ChunkInfo{}, err
	}
	db, okB, err := rb.next()
	if err != nil {
		f.Close()
		os.Remove(path)
		return ChunkInfo{}, err
	}

	keys := 0
	writeRecord := func(d *Data[V]) {
		w.Uvarint(d.Key)
		WriteTo(w, d, codec)
		keys++
	}
	for okA && okB {
		switch {
		case da.Key < db.Key:
			writeRecord(da)
			da, okA, err = ra.next()
		case db.Key < da.Key:
			writeRecord(db)
			db, okB, err = rb.next()
		default:
			writeRecord(&Data[V]{Key: da.Key, Pairs: mergePairs(da.Pairs, db.Pairs)})
			da, okA, err = ra.next()
			if err == nil {
				db, okB, err = rb.next()
			}
		}
		if err != nil {
			f.Close()
			os.Remove(path)
			return ChunkInfo{}, err
		}
	}
	for okA {
		writeRecord(da)
		da, okA, err = ra.next()
		if err != nil {
			f.Close()
			os.Remove(path)
			return ChunkInfo{}, err
		}
	}
	for okB {
		writeRecord(db)
		db, okB, err = rb.next()
		if err != nil {
			f.Close()
			os.Remove(path)
			return ChunkInfo{}, err
		}
	}

	if _, err := w.WriteTo(f); err != nil {
		f.Close()
		os.Remove(path)
		return ChunkInfo{}, metaerr.Wrap(metaerr.ErrIO, err, "write merged chunk %s", path)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return ChunkInfo{}, metaerr.Wrap(metaerr.ErrIO, err, "close merged chunk %s", path)
	}
	return ChunkInfo{Path: path, Size: int64(w.Len()), Keys: keys}, nil
}

// mergePairs merges two already-sorted-by-S pair lists, summing V when the
// same S appears in both.
func mergePairs[V Value](a, b []Pair[V]) []Pair[V] {
	out := make([]Pair[V], 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].S < b[j].S:
			out = append(out, a[i])
			i++
		case b[j].S < a[i].S:
			out = append(out, b[j])
			j++
		default:
			out = append(out, Pair[V]{S: a[i].S, V: a[i].V + b[j].V})
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}
