// Package config loads the TOML configuration file that names every other
// component's parameters (spec §6): the corpus location, the index
// directory layout, the analyzer chain, the ranker, and the metadata
// schema. A Config is the single source of truth cmd/meta-index and
// cmd/meta-query build their build.Options / rank.Ranker / analysis.Analyzer
// values from.
//
// Grounded on zoekt's own flag-and-file configuration idiom
// (_examples/sourcegraph-zoekt/cmd/zoekt-sourcegraph-indexserver/main.go's
// config struct + env/flag population) generalized to a single TOML file
// parsed with github.com/pelletier/go-toml/v2, since this core has no
// per-repo discovery step to drive flags from.
package config

import (
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/meta-toolkit/metago/metaerr"
)

// AnalyzerConfig is one `[[analyzers]]` table: a method id plus its
// parameters and filter chain.
type AnalyzerConfig struct {
	Method string         `toml:"method"`
	Ngram  int            `toml:"ngram"`
	Filter []FilterConfig `toml:"filter"`
}

// FilterConfig is one entry in an analyzer's nested filter chain.
type FilterConfig struct {
	Type   string `toml:"type"`
	Min    int    `toml:"min"`
	Max    int    `toml:"max"`
	File   string `toml:"file"`
	Method string `toml:"method"`
}

// FeedbackConfig is the `[ranker.feedback]` sub-table that, when present,
// wraps the configured ranker in Rocchio pseudo-relevance feedback.
type FeedbackConfig struct {
	Alpha    float64 `toml:"alpha"`
	Beta     float64 `toml:"beta"`
	K        int     `toml:"k"`
	MaxTerms int     `toml:"max-terms"`
}

// RankerConfig is the `[ranker]` table.
type RankerConfig struct {
	Method string `toml:"method"`

	Mu     float64 `toml:"mu"`
	Lambda float64 `toml:"lambda"`
	K1     float64 `toml:"k1"`
	B      float64 `toml:"b"`
	K3     float64 `toml:"k3"`
	S      float64 `toml:"s"`
	Alpha  float64 `toml:"alpha"`
	Beta   float64 `toml:"beta"`
	K      int     `toml:"k"`

	Feedback *FeedbackConfig `toml:"feedback"`
}

// MetadataField is one `[metadata]` array entry: an optional schema field
// beyond the mandatory length/unique-terms pair every document carries.
type MetadataField struct {
	Name string `toml:"name"`
	Type string `toml:"type"`
}

// Config is the fully parsed contents of one configuration file (spec §6).
type Config struct {
	Prefix string `toml:"prefix"`
	Dataset string `toml:"dataset"`
	Corpus string `toml:"corpus"`
	Index string `toml:"index"`
	ForwardIndex string `toml:"forward-index"`
	InvertedIndex string `toml:"inverted-index"`

	Encoding       string `toml:"encoding"`
	StoreFullText  bool   `toml:"store-full-text"`

	Analyzers []AnalyzerConfig `toml:"analyzers"`
	Ranker    RankerConfig     `toml:"ranker"`
	Metadata  []MetadataField  `toml:"metadata"`

	// raw is the unparsed file contents, carried through so the construction
	// driver can drop an exact copy into the finished index directory
	// (spec §6's disk layout: "configuration copy").
	raw []byte
}

// Load reads and parses the TOML file at path, applying defaults for any
// field the file leaves unset.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, metaerr.Wrap(metaerr.ErrConfig, err, "read config file %s", path)
	}
	var c Config
	if err := toml.Unmarshal(b, &c); err != nil {
		return nil, metaerr.Wrap(metaerr.ErrConfig, err, "parse config file %s", path)
	}
	c.raw = b
	c.setDefaults()
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) setDefaults() {
	if c.Encoding == "" {
		c.Encoding = "utf-8"
	}
	if c.Index == "" {
		c.Index = "index"
	}
	if c.ForwardIndex == "" {
		c.ForwardIndex = "forward.index"
	}
	if c.InvertedIndex == "" {
		c.InvertedIndex = "postings.index"
	}
	if len(c.Analyzers) == 0 {
		c.Analyzers = []AnalyzerConfig{{Method: "ngram-word", Ngram: 1}}
	}
	if c.Ranker.Method == "" {
		c.Ranker.Method = "bm25"
	}
}

func (c *Config) validate() error {
	if c.Corpus == "" {
		return metaerr.Wrap(metaerr.ErrConfig, nil, "config: `corpus` is required")
	}
	if c.Prefix == "" {
		return metaerr.Wrap(metaerr.ErrConfig, nil, "config: `prefix` is required")
	}
	for _, f := range c.Metadata {
		switch f.Type {
		case "int", "uint", "double", "string":
		default:
			return metaerr.Wrap(metaerr.ErrConfig, nil, "config: metadata field %q has unknown type %q", f.Name, f.Type)
		}
	}
	return nil
}

// Raw returns the exact bytes Load parsed, for embedding a configuration
// copy alongside a built index.
func (c *Config) Raw() []byte { return c.raw }

// IndexDir resolves the configured index directory name against prefix.
func (c *Config) IndexDir() string {
	return c.Prefix + string(os.PathSeparator) + c.Index
}

// CorpusPath resolves the configured corpus file path against prefix.
func (c *Config) CorpusPath() string {
	return c.Prefix + string(os.PathSeparator) + c.Dataset + string(os.PathSeparator) + c.Corpus
}
