package metastore

import (
	"sync"

	"github.com/meta-toolkit/metago/diskvec"
	"github.com/meta-toolkit/metago/ids"
	"github.com/meta-toolkit/metago/metaerr"
	"github.com/meta-toolkit/metago/packed"
)

// record holds one document's fully-decoded fields. Decoding is cheap
// (one pass over a short packed record) so the cache granularity is
// per-record rather than per-field: the first Get* call for a doc_id
// decodes everything once, every subsequent call against that doc_id is a
// map lookup.
type record struct {
	length      uint64
	uniqueTerms uint64
	fields      []interface{}
}

// Reader is the metadata read view: mmapped records addressed by a
// disk_vector<u64> of seek positions.
type Reader struct {
	db     *diskvec.MappedFile
	seek   *diskvec.Uint64Vector
	schema []FieldSchema
	index  map[string]int

	mu    sync.Mutex
	cache map[ids.DocID]*record
}

// Open mmaps dbPath/indexPath and parses the schema header.
func Open(dbPath, indexPath string) (*Reader, error) {
	db, err := diskvec.Open(dbPath)
	if err != nil {
		return nil, err
	}
	seek, err := diskvec.OpenUint64Vector(indexPath)
	if err != nil {
		db.Close()
		return nil, err
	}
	pr := packed.NewReader(db.Bytes())
	schema, err := readHeader(pr)
	if err != nil {
		db.Close()
		seek.Close()
		return nil, err
	}
	return &Reader{
		db:     db,
		seek:   seek,
		schema: schema,
		index:  fieldIndex(schema),
		cache:  make(map[ids.DocID]*record),
	}, nil
}

// Close releases both mappings.
func (r *Reader) Close() error {
	err1 := r.db.Close()
	err2 := r.seek.Close()
	if err1 != nil {
		return err1
	}
	return err2
}

// Schema returns the declared optional-field schema, in record order.
func (r *Reader) Schema() []FieldSchema { return append([]FieldSchema(nil), r.schema...) }

func (r *Reader) decode(doc ids.DocID) (*record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.cache[doc]; ok {
		return rec, nil
	}
	if int(doc) >= r.seek.Len() {
		return nil, metaerr.Wrap(metaerr.ErrIndexFormat, nil, "metadata: doc_id %d out of range", doc)
	}
	off := r.seek.Get(int(doc))
	pr := packed.NewReader(r.db.Bytes()[off:])
	rec := &record{length: pr.Uvarint(), uniqueTerms: pr.Uvarint(), fields: make([]interface{}, len(r.schema))}
	for i, fs := range r.schema {
		switch fs.Type {
		case FieldSignedInt:
			rec.fields[i] = pr.Varint()
		case FieldUnsignedInt:
			rec.fields[i] = pr.Uvarint()
		case FieldDouble:
			rec.fields[i] = pr.Float64()
		case FieldString:
			rec.fields[i] = pr.CString()
		}
	}
	if pr.Err() != nil {
		return nil, pr.Err()
	}
	r.cache[doc] = rec
	return rec, nil
}

// Length returns the mandatory `length` field (total term count).
func (r *Reader) Length(doc ids.DocID) (uint64, error) {
	rec, err := r.decode(doc)
	if err != nil {
		return 0, err
	}
	return rec.length, nil
}

// UniqueTerms returns the mandatory `unique_terms` field.
func (r *Reader) UniqueTerms(doc ids.DocID) (uint64, error) {
	rec, err := r.decode(doc)
	if err != nil {
		return 0, err
	}
	return rec.uniqueTerms, nil
}

func (r *Reader) field(doc ids.DocID, name string, want FieldType) (interface{}, error) {
	i, ok := r.index[name]
	if !ok {
		return nil, errUnknownField(name)
	}
	if r.schema[i].Type != want {
		return nil, errTypeMismatch(name, r.schema[i].Type, want)
	}
	rec, err := r.decode(doc)
	if err != nil {
		return nil, err
	}
	return rec.fields[i], nil
}

// GetSignedInt reads a field declared as signed_int.
func (r *Reader) GetSignedInt(doc ids.DocID, name string) (int64, error) {
	v, err := r.field(doc, name, FieldSignedInt)
	if err != nil {
		return 0, err
	}
	return v.(int64), nil
}

// GetUnsignedInt reads a field declared as unsigned_int.
func (r *Reader) GetUnsignedInt(doc ids.DocID, name string) (uint64, error) {
	v, err := r.field(doc, name, FieldUnsignedInt)
	if err != nil {
		return 0, err
	}
	return v.(uint64), nil
}

// GetDouble reads a field declared as double.
func (r *Reader) GetDouble(doc ids.DocID, name string) (float64, error) {
	v, err := r.field(doc, name, FieldDouble)
	if err != nil {
		return 0, err
	}
	return v.(float64), nil
}

// GetString reads a field declared as string.
func (r *Reader) GetString(doc ids.DocID, name string) (string, error) {
	v, err := r.field(doc, name, FieldString)
	if err != nil {
		return "", err
	}
	return v.(string), nil
}
