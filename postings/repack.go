package postings

import (
	"bufio"
	"os"

	"github.com/meta-toolkit/metago/diskvec"
	"github.com/meta-toolkit/metago/metaerr"
	"github.com/meta-toolkit/metago/packed"
)

// Repack reads the single fully-merged chunk (ascending key order, one
// record per key that was ever written) and re-packs it into the final
// postings_file format: byte_locations[key] = current write offset into the
// blob, followed by the packed (size, total_counts, (gap,value)*) stream
// with no key prefix (spec §4.5 step 5). numKeys is the size of the final
// key space (vocabulary size for the inverted index, document count for the
// forward index); keys present in the key space but never written (e.g. an
// empty document contributing no forward postings) get byte_locations
// pointing at one shared empty record rather than a record written once per
// missing key.
func Repack[V Value](merged ChunkInfo, codec ValueCodec[V], numKeys uint64, blobPath, locationsPath string) error {
	cr, err := openChunkReader(merged.Path, codec)
	if err != nil {
		return err
	}

	blob, err := os.Create(blobPath)
	if err != nil {
		return metaerr.Wrap(metaerr.ErrIO, err, "create %s", blobPath)
	}
	bw := bufio.NewWriter(blob)

	locs, err := diskvec.CreateUint64VectorWriter(locationsPath)
	if err != nil {
		blob.Close()
		return err
	}

	var offset uint64
	emptyRecord := packed.NewWriter()
	emptyRecord.Uvarint(0)
	var zero V
	codec.Encode(emptyRecord, zero)
	emptyOffset := uint64(0)
	haveEmptyOffset := false

	d, ok, err := cr.next()
	if err != nil {
		blob.Close()
		locs.Close()
		return err
	}

	for k := uint64(0); k < numKeys; k++ {
		if ok && d.Key == k {
			w := packed.NewWriter()
			WriteTo(w, d, codec)
			n, werr := w.WriteTo(bw)
			if werr != nil {
				blob.Close()
				locs.Close()
				return metaerr.Wrap(metaerr.ErrIO, werr, "write postings blob %s", blobPath)
			}
			if err := locs.Append(offset); err != nil {
				blob.Close()
				return err
			}
			offset += uint64(n)
			d, ok, err = cr.next()
			if err != nil {
				blob.Close()
				locs.Close()
				return err
			}
			continue
		}
		if !haveEmptyOffset {
			n, werr := emptyRecord.WriteTo(bw)
			if werr != nil {
				blob.Close()
				locs.Close()
				return metaerr.Wrap(metaerr.ErrIO, werr, "write empty postings record %s", blobPath)
			}
			emptyOffset = offset
			offset += uint64(n)
			haveEmptyOffset = true
		}
		if err := locs.Append(emptyOffset); err != nil {
			blob.Close()
			return err
		}
	}

	if err := bw.Flush(); err != nil {
		blob.Close()
		locs.Close()
		return metaerr.Wrap(metaerr.ErrIO, err, "flush postings blob %s", blobPath)
	}
	if err := blob.Close(); err != nil {
		locs.Close()
		return metaerr.Wrap(metaerr.ErrIO, err, "close postings blob %s", blobPath)
	}
	return locs.Close()
}

// Build merges chunks and repacks the result into the final postings_file
// (blobPath, locationsPath), removing every intermediate chunk file
// (including the one it merges down to) whether it succeeds or fails, so a
// failed build never leaves stray temp chunks behind.
func Build[V Value](chunks []ChunkInfo, codec ValueCodec[V], numKeys uint64, blobPath, locationsPath, workDir string) error {
	merged, err := MergeAll(chunks, codec, workDir)
	if err != nil {
		return err
	}
	defer os.Remove(merged.Path)
	return Repack(merged, codec, numKeys, blobPath, locationsPath)
}
