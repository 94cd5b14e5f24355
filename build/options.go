// Package build implements the construction driver (spec §4.12): the
// component that turns a corpus.Corpus into a complete on-disk index
// directory, tokenizing documents through an analysis.Analyzer pool,
// assigning term_ids and doc_ids, and driving the vocab/postings/diskvec/
// metastore writers that make up the final index.
//
// Grounded on zoekt's build.Builder (Options/Builder/flush/finish shape,
// temp-file-then-rename finalization) in
// _examples/sourcegraph-zoekt/build/builder.go, generalized from "one
// output shard per flush" to "one whole index directory, built under a
// temp directory and renamed into place on success" since this index has
// no sharding concept.
package build

import (
	"runtime"

	"github.com/meta-toolkit/metago/metastore"
)

// Default tuning constants, named rather than inlined so Options.SetDefaults
// and documentation stay in sync.
const (
	DefaultParallelism         = 0 // 0 means runtime.GOMAXPROCS(0)
	DefaultFlushWatermarkBytes = 64 << 20
	DefaultFlushEveryNDocs     = 0 // 0 disables the doc-count flush trigger
	DefaultVocabBlockSize      = 4096
)

// Options configures one index build.
type Options struct {
	// IndexDir is the final destination directory. It must not exist, or
	// must be empty, before Finish succeeds; Builder never writes into it
	// directly, only renames a finished temp directory onto it.
	IndexDir string

	// Parallelism is the number of tokenizer worker goroutines. Zero means
	// runtime.GOMAXPROCS(0) (see SetDefaults).
	Parallelism int

	// FlushWatermarkBytes triggers a postings chunk flush once an
	// in-memory Buffer's accumulated pair count times an average encoded
	// pair size would exceed this many bytes. Either flush knob alone is
	// sufficient; both may be set to bound both memory and chunk count.
	FlushWatermarkBytes int

	// FlushEveryNDocs triggers a flush after this many documents have been
	// folded into the current buffer, regardless of byte estimate. Zero
	// disables this trigger.
	FlushEveryNDocs int

	// VocabBlockSize is the vocabulary_map block size in bytes (must be a
	// power of two).
	VocabBlockSize int

	// MetadataFields declares metadata schema fields beyond the mandatory
	// "name" and "path" string fields that every document carries
	// regardless of configuration.
	MetadataFields []metastore.FieldSchema

	// ConfigToml, if set, is copied into the finished index directory as
	// config.toml (spec §6's disk layout: "configuration copy"). Nil
	// skips writing the copy.
	ConfigToml []byte
}

// SetDefaults fills zero-valued fields with their documented defaults.
func (o *Options) SetDefaults() {
	if o.Parallelism <= 0 {
		o.Parallelism = runtime.GOMAXPROCS(0)
	}
	if o.FlushWatermarkBytes <= 0 {
		o.FlushWatermarkBytes = DefaultFlushWatermarkBytes
	}
	if o.VocabBlockSize <= 0 {
		o.VocabBlockSize = DefaultVocabBlockSize
	}
}
