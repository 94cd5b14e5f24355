package analysis

import (
	"bufio"
	"os"
	"strings"

	"github.com/meta-toolkit/metago/metaerr"
)

// ListMode selects whether ListFilter keeps only listed words (accept) or
// drops listed words (reject).
type ListMode int

const (
	ListAccept ListMode = iota
	ListReject
)

// LoadWordList reads one word per line from path, skipping blank lines.
func LoadWordList(path string) (map[string]struct{}, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, metaerr.Wrap(metaerr.ErrConfig, err, "open word list %s", path)
	}
	defer f.Close()

	words := make(map[string]struct{})
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		w := strings.TrimSpace(sc.Text())
		if w != "" {
			words[w] = struct{}{}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, metaerr.Wrap(metaerr.ErrConfig, err, "scan word list %s", path)
	}
	return words, nil
}

// ListFilter keeps or drops tokens found in words, depending on mode.
// Sentence markers always pass through.
type ListFilter struct {
	inner TokenStream
	words map[string]struct{}
	mode  ListMode
	buf   string
	have  bool
}

// NewListFilter wraps inner with an accept- or reject-list.
func NewListFilter(inner TokenStream, words map[string]struct{}, mode ListMode) *ListFilter {
	return &ListFilter{inner: inner, words: words, mode: mode}
}

func (f *ListFilter) keep(t string) bool {
	if isSentenceMarker(t) {
		return true
	}
	_, listed := f.words[t]
	if f.mode == ListAccept {
		return listed
	}
	return !listed
}

func (f *ListFilter) SetContent(text string) {
	f.inner.SetContent(text)
	f.have = false
	f.advance()
}

func (f *ListFilter) advance() {
	for f.inner.Valid() {
		t, err := f.inner.Next()
		if err != nil {
			f.have = false
			return
		}
		if f.keep(t) {
			f.buf, f.have = t, true
			return
		}
	}
	f.have = false
}

func (f *ListFilter) Valid() bool { return f.have }

func (f *ListFilter) Next() (string, error) {
	if !f.have {
		return "", ErrEmptyStream
	}
	t := f.buf
	f.advance()
	return t, nil
}

func (f *ListFilter) Clone() TokenStream {
	return &ListFilter{inner: f.inner.Clone(), words: f.words, mode: f.mode, buf: f.buf, have: f.have}
}
