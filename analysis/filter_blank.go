package analysis

import "strings"

// BlankFilter drops tokens with no visible (non-whitespace) characters.
// Sentence markers are not whitespace-only and pass through unaffected by
// this rule on their own merits.
type BlankFilter struct {
	inner TokenStream
	buf   string
	have  bool
}

func NewBlankFilter(inner TokenStream) *BlankFilter { return &BlankFilter{inner: inner} }

func (f *BlankFilter) SetContent(text string) {
	f.inner.SetContent(text)
	f.have = false
	f.advance()
}

func (f *BlankFilter) advance() {
	for f.inner.Valid() {
		t, err := f.inner.Next()
		if err != nil {
			f.have = false
			return
		}
		if strings.TrimSpace(t) != "" {
			f.buf, f.have = t, true
			return
		}
	}
	f.have = false
}

func (f *BlankFilter) Valid() bool { return f.have }

func (f *BlankFilter) Next() (string, error) {
	if !f.have {
		return "", ErrEmptyStream
	}
	t := f.buf
	f.advance()
	return t, nil
}

func (f *BlankFilter) Clone() TokenStream {
	return &BlankFilter{inner: f.inner.Clone(), buf: f.buf, have: f.have}
}
