package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meta-toolkit/metago/index"
)

func writeTestCorpus(t *testing.T, prefix string) {
	t.Helper()
	datasetDir := filepath.Join(prefix, "data")
	require.NoError(t, os.MkdirAll(datasetDir, 0o755))

	docs := map[string]string{
		"d0.txt": "the cat sat on the mat",
		"d1.txt": "the dog sat on the rug",
		"d2.txt": "stocks and bonds rallied today",
	}
	var corpusLines string
	for name, body := range docs {
		require.NoError(t, os.WriteFile(filepath.Join(datasetDir, name), []byte(body), 0o644))
		corpusLines += filepath.Join(datasetDir, name) + "\n"
	}
	require.NoError(t, os.WriteFile(filepath.Join(prefix, "full-corpus.txt"), []byte(corpusLines), 0o644))
}

func writeTestConfig(t *testing.T, prefix string) string {
	t.Helper()
	body := `
prefix = "` + prefix + `"
corpus = "full-corpus.txt"
index = "idx"

[[analyzers]]
method = "ngram-word"
ngram = 1

[ranker]
method = "bm25"
`
	path := filepath.Join(prefix, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestRunIndexBuildsLoadableIndex(t *testing.T) {
	prefix := t.TempDir()
	writeTestCorpus(t, prefix)
	configPath := writeTestConfig(t, prefix)

	require.NoError(t, runIndex(configPath, 2))

	idx, err := index.OpenInverted(filepath.Join(prefix, "idx"), nil)
	// OpenInverted itself doesn't tokenize at open time, so a nil analyzer
	// is fine for this structural check; NumDocs only reads already-built
	// per-doc metadata.
	require.NoError(t, err)
	defer idx.Close()
	require.Equal(t, 3, idx.NumDocs())
}

func TestRunIndexRejectsMissingConfig(t *testing.T) {
	err := runIndex(filepath.Join(t.TempDir(), "does-not-exist.toml"), 1)
	require.Error(t, err)
}
