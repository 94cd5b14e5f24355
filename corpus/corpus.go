// Package corpus models the transient, build-time-only document collection:
// the specification's "document" and "feature_map" types, plus a loader for
// the line-oriented corpus file named by the `corpus` configuration key.
package corpus

import (
	"bufio"
	"os"
	"strings"

	"github.com/meta-toolkit/metago/ids"
	"github.com/meta-toolkit/metago/metaerr"
)

// FeatureMap maps a term (string before vocabulary assignment, ids.TermID
// after) to its count within a single document. Key order is irrelevant;
// keys are unique by definition of the underlying Go map.
type FeatureMap[K comparable] map[K]uint64

// Add increments the count for key by n.
func (m FeatureMap[K]) Add(key K, n uint64) { m[key] += n }

// Total returns the sum of all counts (the document's length in tokens).
func (m FeatureMap[K]) Total() uint64 {
	var total uint64
	for _, v := range m {
		total += v
	}
	return total
}

// Document is the transient, build-time representation of one corpus item.
// It owns either inline Content or a filesystem Path; the analyzer handles
// both uniformly via Text.
type Document struct {
	ID ids.DocID

	// Name is the document's display name (doc_name in the facade).
	Name string

	// Path is a filesystem path to the document's content. Empty if Content
	// is set directly (e.g. for in-memory tests).
	Path string

	// Content is inline text. When empty and Path is set, Text reads Path.
	Content []byte

	// Encoding names the text encoding of Content/Path (config default
	// "utf-8"); MeTA performs no transcoding itself. It is a label carried on
	// the Document only; the index builder does not store it in metadata.
	Encoding string

	// ClassLabel is the document's class, if the corpus declares one.
	ClassLabel string

	// Fields holds values for metadata schema fields beyond length/unique
	// terms/class label, keyed by field name. Values are int64, uint64,
	// float64 or string, matching the metadata schema's declared types.
	Fields map[string]any
}

// Text returns the document's content, reading Path if Content was not set
// inline.
func (d *Document) Text() ([]byte, error) {
	if d.Content != nil {
		return d.Content, nil
	}
	if d.Path == "" {
		return nil, nil
	}
	b, err := os.ReadFile(d.Path)
	if err != nil {
		return nil, metaerr.Wrap(metaerr.ErrCorpus, err, "read document %s", d.Path)
	}
	return b, nil
}

// Corpus is an ordered collection of documents sharing a common schema.
type Corpus struct {
	Docs []*Document
}

// LoadFile parses a corpus file: one document per line, `<path>` or
// `<path>\t<class_label>`. Blank lines and lines starting with '#' are
// skipped. doc_ids are assigned sequentially in file order.
func LoadFile(path, encoding string) (*Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, metaerr.Wrap(metaerr.ErrCorpus, err, "open corpus file %s", path)
	}
	defer f.Close()

	var c Corpus
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r\n")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		fields := strings.SplitN(line, "\t", 2)
		docPath := strings.TrimSpace(fields[0])
		if docPath == "" {
			return nil, metaerr.Wrap(metaerr.ErrCorpus, nil, "%s:%d: malformed corpus line %q", path, lineNo, line)
		}
		label := ""
		if len(fields) == 2 {
			label = strings.TrimSpace(fields[1])
		}

		c.Docs = append(c.Docs, &Document{
			ID:         ids.DocID(len(c.Docs)),
			Name:       docPath,
			Path:       docPath,
			Encoding:   encoding,
			ClassLabel: label,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, metaerr.Wrap(metaerr.ErrCorpus, err, "scan corpus file %s", path)
	}
	return &c, nil
}
