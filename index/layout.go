package index

import "path/filepath"

// Filenames inside a built index directory (spec §6's on-disk layout list).
const (
	postingsBlob      = "postings.index"
	postingsLocations = "postings.index_index"
	forwardBlob       = "forward.index"
	forwardLocations  = "forward.index_index"
	vocabTree         = "termids.mapping"
	vocabInverse      = "termids.mapping.inverse"
	docSizesFile      = "docs.sizes"
	docLabelsFile     = "docs.labels"
	labelMapFile      = "labelids.mapping"
	metadataDB        = "metadata.db"
	metadataIndex     = "metadata.index"
	uniqueTermsFile   = "corpus.uniqueterms"

	// tombstonesFile is not part of the original on-disk layout list; it is
	// an optional supplemental file written only once a caller excludes at
	// least one document, so a freshly built directory that never had
	// anything excluded has no such file.
	tombstonesFile = "tombstones.roaring"
)

// requiredFiles lists every file that must exist for a directory to be
// considered a valid, previously-built index (spec §4.7: "a directory is
// valid iff all expected files exist").
var requiredFiles = []string{
	postingsBlob, postingsLocations,
	forwardBlob, forwardLocations,
	vocabTree, vocabInverse,
	docSizesFile, docLabelsFile,
	labelMapFile,
	metadataDB, metadataIndex,
	uniqueTermsFile,
}

// IsValid reports whether dir already contains a complete built index, per
// spec §4.7's directory-validity rule.
func IsValid(dir string) bool {
	for _, name := range requiredFiles {
		if !fileExists(filepath.Join(dir, name)) {
			return false
		}
	}
	return true
}
