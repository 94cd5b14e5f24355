package build

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/xid"
	sglog "github.com/sourcegraph/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/meta-toolkit/metago/analysis"
	"github.com/meta-toolkit/metago/corpus"
	"github.com/meta-toolkit/metago/diskvec"
	"github.com/meta-toolkit/metago/ids"
	"github.com/meta-toolkit/metago/index"
	"github.com/meta-toolkit/metago/metaerr"
	"github.com/meta-toolkit/metago/metastore"
	"github.com/meta-toolkit/metago/postings"
	"github.com/meta-toolkit/metago/vocab"
)

var (
	metricDocsTokenized = promauto.NewCounter(prometheus.CounterOpts{
		Name: "meta_build_docs_tokenized_total",
		Help: "Documents tokenized by the construction driver.",
	})
	metricChunksFlushed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "meta_build_chunks_flushed_total",
		Help: "Postings chunk files flushed to the build work directory.",
	})
	metricBuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "meta_build_duration_seconds",
		Help:    "Wall time for one Builder.Finish call.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	})
)

// avgEncodedPairBytes estimates the on-disk cost of one postings pair for
// the flush-watermark trigger; it need not be exact, only proportionate
// (see Buffer.PairCount's own doc comment: "a cheap proxy for memory
// usage").
const avgEncodedPairBytes = 12

// tokenizeResult is what one worker goroutine hands back to the collector
// for a single document.
type tokenizeResult struct {
	doc *corpus.Document
	fm  analysis.FeatureMap
	err error
}

// Builder drives one index construction end to end (spec §4.12): Add
// dispatches documents to a tokenizer worker pool as they arrive, a single
// collector goroutine reassembles results in doc_id order to feed the
// strictly-sequential metadata and vocabulary-set accumulation, and Finish
// assigns term_ids, builds postings chunks (one worker per partition of
// the corpus, each writing its own chunk files per the §5 "per-worker
// chunk files reconciled at merge" resolution), merges them, and renames
// the finished build into place.
//
// Grounded on zoekt's build.Builder (_examples/sourcegraph-zoekt/build/builder.go):
// Options/NewBuilder/Add/Finish shape, temp-file-then-rename finalization,
// and the tsv build-log idiom, generalized from "shard of repository
// files" to "corpus of documents, then vocabulary + chunks + merge".
type Builder struct {
	opts     Options
	tempDir  string
	logger   sglog.Logger
	buildLog io.WriteCloser

	analyzerPool chan analysis.Analyzer

	pool      *Pool
	resultsCh chan tokenizeResult
	nextDocID ids.DocID

	collectorDone chan struct{}
	collectErr    error

	// Fields below are touched only by the collector goroutine while
	// tokenization is in flight, and are read-only (or owned by Finish's
	// caller goroutine alone) once NewBuilder's collector has exited —
	// no further synchronization is needed past that point.
	vocabSet    map[string]struct{}
	labelSet    map[string]struct{}
	labelPerDoc []string
	featureMaps []analysis.FeatureMap

	metaWriter *metastore.Writer
	sizes      *diskvec.Uint64VectorWriter
	uniqueTerm *diskvec.Uint64VectorWriter

	termIDs map[string]ids.TermID

	finished bool
}

// NewBuilder creates a Builder that writes under a temp directory next to
// opts.IndexDir, renamed into place only by a successful Finish. analyzer
// is cloned once per tokenizer worker (its Clone contract, spec §5).
func NewBuilder(opts Options, analyzer analysis.Analyzer) (*Builder, error) {
	opts.SetDefaults()
	if opts.IndexDir == "" {
		return nil, metaerr.Wrap(metaerr.ErrConfig, nil, "build: IndexDir must be set")
	}

	tempDir := opts.IndexDir + ".build-" + xid.New().String()
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return nil, metaerr.Wrap(metaerr.ErrIO, err, "create build work directory %s", tempDir)
	}

	schema := append([]metastore.FieldSchema{
		{Name: "name", Type: metastore.FieldString},
		{Name: "path", Type: metastore.FieldString},
	}, opts.MetadataFields...)
	metaWriter, err := metastore.NewWriter(
		filepath.Join(tempDir, "metadata.db"), filepath.Join(tempDir, "metadata.index"), schema)
	if err != nil {
		os.RemoveAll(tempDir)
		return nil, err
	}
	sizes, err := diskvec.CreateUint64VectorWriter(filepath.Join(tempDir, "docs.sizes"))
	if err != nil {
		metaWriter.Close()
		os.RemoveAll(tempDir)
		return nil, err
	}
	uniqueTerm, err := diskvec.CreateUint64VectorWriter(filepath.Join(tempDir, "corpus.uniqueterms"))
	if err != nil {
		metaWriter.Close()
		sizes.Close()
		os.RemoveAll(tempDir)
		return nil, err
	}

	buildLog := &lumberjack.Logger{
		Filename:   filepath.Join(tempDir, "build.log"),
		MaxSize:    50,
		MaxBackups: 3,
	}

	analyzerPool := make(chan analysis.Analyzer, opts.Parallelism)
	for i := 0; i < opts.Parallelism; i++ {
		analyzerPool <- analyzer.Clone()
	}

	b := &Builder{
		opts:          opts,
		tempDir:       tempDir,
		logger:        sglog.Scoped("build", ""),
		buildLog:      buildLog,
		analyzerPool:  analyzerPool,
		pool:          NewPool(context.Background(), opts.Parallelism),
		resultsCh:     make(chan tokenizeResult, opts.Parallelism*4),
		collectorDone: make(chan struct{}),
		vocabSet:      make(map[string]struct{}),
		labelSet:      map[string]struct{}{"": {}},
		metaWriter:    metaWriter,
		sizes:         sizes,
		uniqueTerm:    uniqueTerm,
	}
	b.logger.Info("starting index build",
		sglog.String("index_dir", opts.IndexDir),
		sglog.Int("parallelism", opts.Parallelism))
	go b.runCollector()
	return b, nil
}

// Add assigns the next doc_id to doc and dispatches it to the tokenizer
// worker pool. Callers must serialize calls to Add (the doc_id counter is
// unsynchronized by design, matching metastore.Writer's single-caller
// contract one level up).
func (b *Builder) Add(doc *corpus.Document) error {
	if b.finished {
		return metaerr.Wrap(metaerr.ErrIndexFormat, nil, "build: Add called after Finish")
	}
	doc.ID = b.nextDocID
	b.nextDocID++
	b.pool.Go(func(ctx context.Context) error {
		return b.tokenizeOne(doc)
	})
	return nil
}

func (b *Builder) tokenizeOne(doc *corpus.Document) error {
	az := <-b.analyzerPool
	defer func() { b.analyzerPool <- az }()

	text, err := doc.Text()
	if err != nil {
		b.resultsCh <- tokenizeResult{doc: doc, err: err}
		return err
	}
	fm, err := az.Analyze(string(text))
	if err != nil {
		err = metaerr.Wrap(metaerr.ErrCorpus, err, "analyze document %s", doc.Name)
	}
	b.resultsCh <- tokenizeResult{doc: doc, fm: fm, err: err}
	return err
}

// runCollector reassembles tokenizeResults in strict doc_id order (workers
// finish out of order) and commits each in turn to the pieces of the index
// that can be written without knowing final term_ids: metadata, doc
// sizes/unique-term counts, the distinct-label set, and the global
// distinct-term vocabulary set. It exits once resultsCh is closed by
// Finish, after the tokenizer pool itself has drained.
func (b *Builder) runCollector() {
	pending := make(map[ids.DocID]tokenizeResult)
	var next ids.DocID

	commit := func(r tokenizeResult) {
		if r.err != nil {
			if b.collectErr == nil {
				b.collectErr = r.err
			}
			return
		}
		if b.collectErr != nil {
			return
		}
		var length uint64
		for _, n := range r.fm {
			length += n
		}
		unique := uint64(len(r.fm))
		fields := map[string]interface{}{"name": r.doc.Name, "path": r.doc.Path}
		for k, v := range r.doc.Fields {
			fields[k] = v
		}
		if err := b.metaWriter.Write(r.doc.ID, length, unique, fields); err != nil {
			b.collectErr = err
			return
		}
		if err := b.sizes.Append(length); err != nil {
			b.collectErr = err
			return
		}
		if err := b.uniqueTerm.Append(unique); err != nil {
			b.collectErr = err
			return
		}
		b.labelPerDoc = append(b.labelPerDoc, r.doc.ClassLabel)
		b.labelSet[r.doc.ClassLabel] = struct{}{}
		b.featureMaps = append(b.featureMaps, r.fm)
		for term := range r.fm {
			b.vocabSet[term] = struct{}{}
		}
		metricDocsTokenized.Inc()
		fmt.Fprintf(b.buildLog, "%d\ttokenize\t%s\t%d\n", time.Now().UTC().Unix(), r.doc.Name, length)
	}

	for res := range b.resultsCh {
		pending[res.doc.ID] = res
		for {
			r, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			commit(r)
			next++
		}
	}

	if err := b.metaWriter.Close(); err != nil && b.collectErr == nil {
		b.collectErr = err
	}
	if err := b.sizes.Close(); err != nil && b.collectErr == nil {
		b.collectErr = err
	}
	if err := b.uniqueTerm.Close(); err != nil && b.collectErr == nil {
		b.collectErr = err
	}
	close(b.collectorDone)
}

// docRange is a half-open [lo, hi) partition of the doc_id space assigned
// to one postings-chunking worker.
type docRange struct{ lo, hi int }

func partitionDocs(numDocs, parts int) []docRange {
	if parts < 1 {
		parts = 1
	}
	if parts > numDocs {
		parts = numDocs
	}
	if parts == 0 {
		return nil
	}
	base := numDocs / parts
	rem := numDocs % parts
	ranges := make([]docRange, 0, parts)
	lo := 0
	for i := 0; i < parts; i++ {
		sz := base
		if i < rem {
			sz++
		}
		if sz == 0 {
			continue
		}
		ranges = append(ranges, docRange{lo: lo, hi: lo + sz})
		lo += sz
	}
	return ranges
}

// Finish waits for all outstanding tokenization, assigns term_ids to the
// accumulated vocabulary, chunks and merges postings (one worker per
// doc_id partition, each writing its own chunk files, reconciled in the
// single merge pass already required by the chunk/merge machinery), writes
// the label map, and atomically renames the finished build into
// opts.IndexDir. On any error the temp directory is removed before the
// error is returned.
func (b *Builder) Finish() (err error) {
	start := time.Now()
	defer func() { metricBuildDuration.Observe(time.Since(start).Seconds()) }()
	defer b.buildLog.Close()

	b.finished = true
	defer func() {
		if err != nil {
			os.RemoveAll(b.tempDir)
		}
	}()

	if perr := b.pool.Wait(); perr != nil && b.collectErr == nil {
		b.collectErr = perr
	}
	close(b.resultsCh)
	<-b.collectorDone
	if b.collectErr != nil {
		return b.collectErr
	}

	if err := b.writeVocabulary(); err != nil {
		return err
	}
	if err := b.writeLabels(); err != nil {
		return err
	}

	invChunks, fwdChunks, err := b.buildPostingsChunks()
	if err != nil {
		return err
	}

	numTerms := uint64(len(b.termIDs))
	if err := postings.Build(invChunks, postings.Uint64Codec, numTerms,
		filepath.Join(b.tempDir, "postings.index"), filepath.Join(b.tempDir, "postings.index_index"),
		b.tempDir); err != nil {
		return err
	}
	if err := postings.Build(fwdChunks, postings.Uint64Codec, uint64(b.nextDocID),
		filepath.Join(b.tempDir, "forward.index"), filepath.Join(b.tempDir, "forward.index_index"),
		b.tempDir); err != nil {
		return err
	}

	if b.opts.ConfigToml != nil {
		if err := os.WriteFile(filepath.Join(b.tempDir, "config.toml"), b.opts.ConfigToml, 0o644); err != nil {
			return metaerr.Wrap(metaerr.ErrIO, err, "write config.toml copy")
		}
	}

	if err := os.Rename(b.tempDir, b.opts.IndexDir); err != nil {
		return metaerr.Wrap(metaerr.ErrIO, err, "rename build directory into %s", b.opts.IndexDir)
	}
	b.logger.Info("finished index build",
		sglog.String("index_dir", b.opts.IndexDir),
		sglog.String("docs", humanize.Comma(int64(b.nextDocID))),
		sglog.String("terms", humanize.Comma(int64(len(b.termIDs)))),
		sglog.Duration("elapsed", time.Since(start)))
	return nil
}

// writeVocabulary sorts the accumulated distinct-term set and assigns
// term_ids via vocab.Writer.Insert in that order, which is the only order
// Insert accepts (spec §4.3: terms must be inserted sorted).
func (b *Builder) writeVocabulary() error {
	terms := make([]string, 0, len(b.vocabSet))
	for t := range b.vocabSet {
		terms = append(terms, t)
	}
	sort.Strings(terms)

	vw, err := vocab.NewWriter(
		filepath.Join(b.tempDir, "termids.mapping"), filepath.Join(b.tempDir, "termids.mapping.inverse"),
		b.opts.VocabBlockSize)
	if err != nil {
		return err
	}
	termIDs := make(map[string]ids.TermID, len(terms))
	for _, term := range terms {
		id, err := vw.Insert(term)
		if err != nil {
			return err
		}
		termIDs[term] = ids.TermID(id)
	}
	if err := vw.Finalize(); err != nil {
		return err
	}
	b.termIDs = termIDs
	return nil
}

// writeLabels sorts the accumulated distinct class-label set, assigns
// label_ids by that order, writes labelids.mapping, and replays
// labelPerDoc (already in doc_id order from the collector) into
// docs.labels.
func (b *Builder) writeLabels() error {
	labels := make([]string, 0, len(b.labelSet))
	for l := range b.labelSet {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	labelIDs := make(map[string]ids.LabelID, len(labels))
	for i, l := range labels {
		labelIDs[l] = ids.LabelID(i)
	}
	if err := index.WriteLabelMap(filepath.Join(b.tempDir, "labelids.mapping"), labels); err != nil {
		return err
	}

	lw, err := diskvec.CreateUint32VectorWriter(filepath.Join(b.tempDir, "docs.labels"))
	if err != nil {
		return err
	}
	for _, l := range b.labelPerDoc {
		if err := lw.Append(uint32(labelIDs[l])); err != nil {
			lw.Close()
			return err
		}
	}
	return lw.Close()
}

// buildPostingsChunks partitions the doc_id space across opts.Parallelism
// workers; each worker accumulates its own inverted and forward
// postings.Buffer over its partition, flushing to its own chunk files by
// the configured watermark/doc-count policy. This is the §5-resolved
// "per-worker chunk files reconciled at merge" design: the merge pass that
// follows (already required for external-memory chunking) reconciles
// every worker's output with no special-cased in-memory merge path.
func (b *Builder) buildPostingsChunks() ([]postings.ChunkInfo, []postings.ChunkInfo, error) {
	numDocs := int(b.nextDocID)
	if numDocs == 0 {
		return nil, nil, nil
	}
	ranges := partitionDocs(numDocs, b.opts.Parallelism)

	var mu sync.Mutex
	var invChunks, fwdChunks []postings.ChunkInfo

	pool := NewPool(context.Background(), len(ranges))
	for _, r := range ranges {
		r := r
		pool.Go(func(ctx context.Context) error {
			localInv, localFwd, err := b.chunkRange(r)
			if err != nil {
				return err
			}
			mu.Lock()
			invChunks = append(invChunks, localInv...)
			fwdChunks = append(fwdChunks, localFwd...)
			mu.Unlock()
			return nil
		})
	}
	if err := pool.Wait(); err != nil {
		return nil, nil, err
	}
	return invChunks, fwdChunks, nil
}

func (b *Builder) chunkRange(r docRange) ([]postings.ChunkInfo, []postings.ChunkInfo, error) {
	invWriter := postings.NewChunkWriter[uint64](b.tempDir, postings.Uint64Codec)
	fwdWriter := postings.NewChunkWriter[uint64](b.tempDir, postings.Uint64Codec)

	invBuf := postings.NewBuffer[uint64]()
	fwdBuf := postings.NewBuffer[uint64]()
	var invChunks, fwdChunks []postings.ChunkInfo
	docsSinceFlush := 0

	flush := func() error {
		if invBuf.PairCount() > 0 {
			c, err := invWriter.Flush(invBuf)
			if err != nil {
				return err
			}
			invChunks = append(invChunks, c)
			metricChunksFlushed.Inc()
		}
		if fwdBuf.PairCount() > 0 {
			c, err := fwdWriter.Flush(fwdBuf)
			if err != nil {
				return err
			}
			fwdChunks = append(fwdChunks, c)
			metricChunksFlushed.Inc()
		}
		docsSinceFlush = 0
		return nil
	}

	for doc := r.lo; doc < r.hi; doc++ {
		fm := b.featureMaps[doc]
		for term, count := range fm {
			tid, ok := b.termIDs[term]
			if !ok {
				return nil, nil, metaerr.Wrap(metaerr.ErrIndexFormat, nil, "build: term %q missing from finalized vocabulary", term)
			}
			invBuf.Add(uint64(tid), uint64(doc), count)
			fwdBuf.Add(uint64(doc), uint64(tid), count)
		}
		docsSinceFlush++
		if b.shouldFlush(invBuf, fwdBuf, docsSinceFlush) {
			if err := flush(); err != nil {
				return nil, nil, err
			}
		}
	}
	if err := flush(); err != nil {
		return nil, nil, err
	}
	return invChunks, fwdChunks, nil
}

func (b *Builder) shouldFlush(invBuf, fwdBuf *postings.Buffer[uint64], docsSinceFlush int) bool {
	if b.opts.FlushEveryNDocs > 0 && docsSinceFlush >= b.opts.FlushEveryNDocs {
		return true
	}
	estBytes := (invBuf.PairCount() + fwdBuf.PairCount()) * avgEncodedPairBytes
	return estBytes >= b.opts.FlushWatermarkBytes
}
