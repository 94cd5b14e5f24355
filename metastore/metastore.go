// Package metastore implements the metadata_writer/metadata reader pair
// (spec §4.6): a variable-width, schema-declared per-document record store.
// Every record carries the two mandatory fields (length, unique_terms)
// followed by the optional fields declared by the `[metadata]` configuration
// array, in schema order, each using its declared packed encoding.
//
// Grounded on zoekt's toc.go section idiom (a header declaring a fixed
// layout, followed by a seek-addressed body) generalized from zoekt's fixed
// section kinds to an arbitrary user-declared field schema.
package metastore

import (
	"github.com/meta-toolkit/metago/metaerr"
	"github.com/meta-toolkit/metago/packed"
)

// FieldType is one of the four packed encodings a schema field may declare.
type FieldType byte

const (
	FieldSignedInt FieldType = iota
	FieldUnsignedInt
	FieldDouble
	FieldString
)

// FieldSchema declares one optional metadata field beyond the mandatory
// length/unique_terms pair.
type FieldSchema struct {
	Name string
	Type FieldType
}

func writeHeader(w *packed.Writer, schema []FieldSchema) {
	w.Uvarint(uint64(len(schema)))
	for _, fs := range schema {
		w.CString(fs.Name)
		w.Byte(byte(fs.Type))
	}
}

func readHeader(r *packed.Reader) ([]FieldSchema, error) {
	n := r.Uvarint()
	if r.Err() != nil {
		return nil, r.Err()
	}
	schema := make([]FieldSchema, n)
	for i := range schema {
		name := r.CString()
		typ := r.Byte()
		if r.Err() != nil {
			return nil, r.Err()
		}
		schema[i] = FieldSchema{Name: name, Type: FieldType(typ)}
	}
	return schema, nil
}

func fieldIndex(schema []FieldSchema) map[string]int {
	idx := make(map[string]int, len(schema))
	for i, fs := range schema {
		idx[fs.Name] = i
	}
	return idx
}

func errUnknownField(name string) error {
	return metaerr.Wrap(metaerr.ErrUnknownField, nil, "metadata: no field named %q in schema", name)
}

func errTypeMismatch(name string, declared, want FieldType) error {
	return metaerr.Wrap(metaerr.ErrTypeMismatch, nil,
		"metadata: field %q is declared as %s, not %s", name, declared, want)
}

func (t FieldType) String() string {
	switch t {
	case FieldSignedInt:
		return "signed_int"
	case FieldUnsignedInt:
		return "unsigned_int"
	case FieldDouble:
		return "double"
	case FieldString:
		return "string"
	default:
		return "unknown"
	}
}
