package metastore

import (
	"bufio"
	"os"

	"github.com/meta-toolkit/metago/diskvec"
	"github.com/meta-toolkit/metago/ids"
	"github.com/meta-toolkit/metago/metaerr"
	"github.com/meta-toolkit/metago/packed"
)

// Writer appends one record per document in strictly ascending doc_id order.
// It is not safe for concurrent use; the construction driver calls it only
// from its single collector goroutine.
type Writer struct {
	f      *os.File
	w      *bufio.Writer
	schema []FieldSchema
	seek   *diskvec.Uint64VectorWriter
	cursor uint64
	next   ids.DocID
	closed bool
}

// NewWriter creates dbPath/indexPath and writes the schema header.
func NewWriter(dbPath, indexPath string, schema []FieldSchema) (*Writer, error) {
	f, err := os.Create(dbPath)
	if err != nil {
		return nil, metaerr.Wrap(metaerr.ErrIO, err, "create %s", dbPath)
	}
	seek, err := diskvec.CreateUint64VectorWriter(indexPath)
	if err != nil {
		f.Close()
		return nil, err
	}

	bw := bufio.NewWriter(f)
	hw := packed.NewWriter()
	writeHeader(hw, schema)
	if _, err := hw.WriteTo(bw); err != nil {
		f.Close()
		seek.Close()
		return nil, metaerr.Wrap(metaerr.ErrIO, err, "write metadata header %s", dbPath)
	}

	return &Writer{
		f:      f,
		w:      bw,
		schema: append([]FieldSchema(nil), schema...),
		seek:   seek,
		cursor: uint64(hw.Len()),
	}, nil
}

// Write appends the record for the next doc_id in sequence (doc_id must
// equal the count of records written so far). fields must supply one entry
// per schema field by name; a missing optional field is encoded as its
// type's zero value.
func (w *Writer) Write(doc ids.DocID, length, uniqueTerms uint64, fields map[string]interface{}) error {
	if doc != w.next {
		return metaerr.Wrap(metaerr.ErrIndexFormat, nil, "metadata writer: expected doc_id %d, got %d", w.next, doc)
	}
	rec := packed.NewWriter()
	rec.Uvarint(length)
	rec.Uvarint(uniqueTerms)
	for _, fs := range w.schema {
		v := fields[fs.Name]
		switch fs.Type {
		case FieldSignedInt:
			i, _ := v.(int64)
			rec.Varint(i)
		case FieldUnsignedInt:
			u, _ := v.(uint64)
			rec.Uvarint(u)
		case FieldDouble:
			d, _ := v.(float64)
			rec.Float64(d)
		case FieldString:
			s, _ := v.(string)
			rec.CString(s)
		}
	}

	if err := w.seek.Append(w.cursor); err != nil {
		return err
	}
	if _, err := rec.WriteTo(w.w); err != nil {
		return metaerr.Wrap(metaerr.ErrIO, err, "write metadata record for doc %d", doc)
	}
	w.cursor += uint64(rec.Len())
	w.next++
	return nil
}

// Close flushes and closes both files.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.w.Flush(); err != nil {
		w.f.Close()
		w.seek.Close()
		return metaerr.Wrap(metaerr.ErrIO, err, "flush metadata db")
	}
	if err := w.f.Close(); err != nil {
		w.seek.Close()
		return metaerr.Wrap(metaerr.ErrIO, err, "close metadata db")
	}
	return w.seek.Close()
}
