package analysis

import (
	"strings"
	"sync"

	"github.com/meta-toolkit/metago/metaerr"
)

// defaultSentenceExceptions are common abbreviations that end in '.' but do
// not, on their own, end a sentence.
func defaultSentenceExceptions() map[string]struct{} {
	words := []string{
		"Dr", "Mr", "Mrs", "Ms", "Prof", "Inc", "Ltd", "Co", "vs", "etc", "Jr", "Sr", "St", "U.S",
	}
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

var (
	sentenceMu         sync.Mutex
	sentenceExceptions map[string]struct{}
	sentenceLoadedFrom string
	sentenceConfigured bool
)

// ConfigureSentenceHeuristics loads the exception word list once,
// process-wide, from wordFile (built-in defaults if wordFile is empty). A
// second call with a different wordFile is rejected rather than silently
// reconfiguring already-constructed filters, matching spec §9's "assert
// against repeat initialization with a different configuration".
func ConfigureSentenceHeuristics(wordFile string) error {
	sentenceMu.Lock()
	defer sentenceMu.Unlock()
	if sentenceConfigured {
		if sentenceLoadedFrom != wordFile {
			return metaerr.Wrap(metaerr.ErrConfig, nil,
				"sentence boundary heuristics already initialized from %q, cannot reinitialize from %q",
				sentenceLoadedFrom, wordFile)
		}
		return nil
	}
	exceptions := defaultSentenceExceptions()
	if wordFile != "" {
		loaded, err := LoadWordList(wordFile)
		if err != nil {
			return err
		}
		exceptions = loaded
	}
	sentenceExceptions = exceptions
	sentenceLoadedFrom = wordFile
	sentenceConfigured = true
	return nil
}

func sentenceExceptionSet() map[string]struct{} {
	sentenceMu.Lock()
	defer sentenceMu.Unlock()
	if !sentenceConfigured {
		return defaultSentenceExceptions()
	}
	return sentenceExceptions
}

// SentenceBoundaryFilter wraps each sentence of the underlying token stream
// in <s> / </s> markers. A token ending in '.', '!' or '?' ends a sentence
// unless (for '.') the token with the trailing period stripped is a known
// abbreviation exception.
type SentenceBoundaryFilter struct {
	inner      TokenStream
	exceptions map[string]struct{}
	queue      []string
	inSentence bool
}

// NewSentenceBoundaryFilter wraps inner using the process-wide exception set
// configured by ConfigureSentenceHeuristics (or its defaults, if never
// configured).
func NewSentenceBoundaryFilter(inner TokenStream) *SentenceBoundaryFilter {
	return &SentenceBoundaryFilter{inner: inner, exceptions: sentenceExceptionSet()}
}

func (f *SentenceBoundaryFilter) endsSentence(t string) bool {
	if t == "" {
		return false
	}
	last := t[len(t)-1]
	switch last {
	case '!', '?':
		return true
	case '.':
		stem := t[:len(t)-1]
		_, exception := f.exceptions[stem]
		return !exception
	default:
		return false
	}
}

func (f *SentenceBoundaryFilter) SetContent(text string) {
	f.inner.SetContent(text)
	f.queue = nil
	f.inSentence = false
	f.advance()
}

func (f *SentenceBoundaryFilter) advance() {
	for len(f.queue) == 0 {
		if !f.inner.Valid() {
			if f.inSentence {
				f.queue = append(f.queue, sentenceEnd)
				f.inSentence = false
			}
			return
		}
		t, err := f.inner.Next()
		if err != nil {
			return
		}
		if strings.TrimSpace(t) == "" {
			// Whitespace between sentences carries no boundary information.
			f.queue = append(f.queue, t)
			continue
		}
		if !f.inSentence {
			f.queue = append(f.queue, sentenceStart)
			f.inSentence = true
		}
		f.queue = append(f.queue, t)
		if f.endsSentence(t) {
			f.queue = append(f.queue, sentenceEnd)
			f.inSentence = false
		}
	}
}

func (f *SentenceBoundaryFilter) Valid() bool { return len(f.queue) > 0 }

func (f *SentenceBoundaryFilter) Next() (string, error) {
	if len(f.queue) == 0 {
		return "", ErrEmptyStream
	}
	t := f.queue[0]
	f.queue = f.queue[1:]
	f.advance()
	return t, nil
}

func (f *SentenceBoundaryFilter) Clone() TokenStream {
	return &SentenceBoundaryFilter{
		inner:      f.inner.Clone(),
		exceptions: f.exceptions,
		queue:      append([]string(nil), f.queue...),
		inSentence: f.inSentence,
	}
}
