// Package analysis implements the token_stream filter chain (spec §4.1) and
// the analyzer layer that drives a chain over a document to produce a
// feature_map (spec §4.2).
//
// Grounded on spec.md §9's own instruction for filter chains ("each filter
// holds a boxed inner source; clone() must recurse... implement as a trait
// method, do not rely on reflection") combined with the small-composable-
// interface idiom zoekt uses throughout (mmapedIndexFile wrapping IndexFile,
// bruteForceMatchTree wrapping matchTree): every filter here is a TokenStream
// wrapping another TokenStream, exactly the same shape.
package analysis

import (
	"unicode"

	"github.com/meta-toolkit/metago/metaerr"
)

// TokenStream is the lazy sequence-of-strings abstraction every tokenizer
// and filter implements.
type TokenStream interface {
	// SetContent resets the stream to the beginning of text.
	SetContent(text string)
	// Next returns the next token. Calling Next when Valid() is false
	// returns ErrEmptyStream.
	Next() (string, error)
	// Valid reports whether Next may be called.
	Valid() bool
	// Clone deep-copies the stream's state, recursing through the whole
	// filter chain, so a worker can replicate an analyzer's pipeline
	// without racing another worker using the original.
	Clone() TokenStream
}

// ErrEmptyStream is returned by Next on an exhausted stream.
var ErrEmptyStream = metaerr.Wrap(metaerr.ErrIndexFormat, nil, "token_stream: Next called on exhausted stream")

const (
	sentenceStart = "<s>"
	sentenceEnd   = "</s>"
)

func isSentenceMarker(t string) bool { return t == sentenceStart || t == sentenceEnd }

// WhitespaceTokenizer is the base of every filter chain: it splits text into
// alternating maximal whitespace runs and maximal non-whitespace runs,
// emitting both as tokens (it does not discard whitespace the way
// strings.Fields does). Collapsing a whitespace run to a single " " token,
// and splitting punctuation out of a non-whitespace run, are the English
// normalizer filter's job further down the chain.
type WhitespaceTokenizer struct {
	runes []rune
	pos   int
}

// NewWhitespaceTokenizer returns an empty tokenizer; call SetContent before use.
func NewWhitespaceTokenizer() *WhitespaceTokenizer { return &WhitespaceTokenizer{} }

func (t *WhitespaceTokenizer) SetContent(text string) {
	t.runes = []rune(text)
	t.pos = 0
}

func (t *WhitespaceTokenizer) Valid() bool { return t.pos < len(t.runes) }

func (t *WhitespaceTokenizer) Next() (string, error) {
	if !t.Valid() {
		return "", ErrEmptyStream
	}
	start := t.pos
	ws := unicode.IsSpace(t.runes[start])
	t.pos++
	for t.pos < len(t.runes) && unicode.IsSpace(t.runes[t.pos]) == ws {
		t.pos++
	}
	return string(t.runes[start:t.pos]), nil
}

func (t *WhitespaceTokenizer) Clone() TokenStream {
	return &WhitespaceTokenizer{runes: t.runes, pos: t.pos}
}
