// Command meta-query runs ranked retrieval against a previously built index
// (spec §4.9, §6): a one-shot "search" subcommand for scripting, and an
// "interactive" subcommand that opens a REPL for exploratory querying.
//
// Grounded on zoekt's cmd/zoekt-webserver request-handling shape
// (_examples/sourcegraph-zoekt/cmd/zoekt-webserver/main.go: open the index
// once, serve many queries against it) combined with the ffcli.Command
// subcommand tree zoekt-sourcegraph-indexserver's debug.go builds
// (_examples/sourcegraph-zoekt/cmd/zoekt-sourcegraph-indexserver/debug.go),
// generalized from "serve HTTP" to "serve a REPL", since this core has no
// network surface of its own (spec's Non-goals: no distributed sharding or
// service layer).
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	prompt "github.com/c-bata/go-prompt"
	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/meta-toolkit/metago/cache"
	"github.com/meta-toolkit/metago/config"
	"github.com/meta-toolkit/metago/corpus"
	"github.com/meta-toolkit/metago/ids"
	"github.com/meta-toolkit/metago/index"
	"github.com/meta-toolkit/metago/postings"
	"github.com/meta-toolkit/metago/rank"
)

// feedbackCacheSize bounds the forward-row cache a feedback-ranked session
// keeps in front of the forward index: Rocchio re-fetches the same top-k
// feedback documents' rows on repeated, related queries within one
// interactive session.
const feedbackCacheSize = 4096

// sharedFlags is the `-config` flag every subcommand registers on its own
// FlagSet, mirroring zoekt-sourcegraph-indexserver's rootConfig pattern of
// one flags struct shared by several ffcli.Command FlagSets.
type sharedFlags struct {
	configPath string
}

func (f *sharedFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.configPath, "config", "", "path to the TOML configuration file (required)")
}

func main() {
	root := &ffcli.Command{
		Name:       "meta-query",
		ShortUsage: "meta-query <subcommand> -config <config.toml> [args...]",
		ShortHelp:  "run ranked retrieval against a built index",
		Subcommands: []*ffcli.Command{
			searchCommand(),
			interactiveCommand(),
		},
		Exec: func(ctx context.Context, args []string) error {
			return flag.ErrHelp
		},
	}
	if err := root.ParseAndRun(context.Background(), os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func searchCommand() *ffcli.Command {
	fs := flag.NewFlagSet("meta-query search", flag.ExitOnError)
	shared := &sharedFlags{}
	shared.register(fs)
	numResults := fs.Int("k", 10, "number of results to return")

	return &ffcli.Command{
		Name:       "search",
		ShortUsage: "meta-query search -config <config.toml> <query terms...>",
		ShortHelp:  "run a single query and print the top-k results",
		FlagSet:    fs,
		Exec: func(ctx context.Context, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("expected at least one query term")
			}
			session, err := openSession(shared.configPath)
			if err != nil {
				return err
			}
			defer session.Close()

			results, err := session.search(strings.Join(args, " "), *numResults)
			if err != nil {
				return err
			}
			printResults(results)
			return nil
		},
	}
}

func interactiveCommand() *ffcli.Command {
	fs := flag.NewFlagSet("meta-query interactive", flag.ExitOnError)
	shared := &sharedFlags{}
	shared.register(fs)
	numResults := fs.Int("k", 10, "number of results to return")

	return &ffcli.Command{
		Name:       "interactive",
		ShortUsage: "meta-query interactive -config <config.toml>",
		ShortHelp:  "open a REPL for exploratory querying",
		FlagSet:    fs,
		Exec: func(ctx context.Context, args []string) error {
			session, err := openSession(shared.configPath)
			if err != nil {
				return err
			}
			defer session.Close()

			executor := func(line string) {
				line = strings.TrimSpace(line)
				if line == "" {
					return
				}
				if line == "exit" || line == "quit" {
					session.Close()
					os.Exit(0)
				}
				results, err := session.search(line, *numResults)
				if err != nil {
					fmt.Fprintln(os.Stderr, err)
					return
				}
				printResults(results)
			}
			completer := func(d prompt.Document) []prompt.Suggest { return nil }

			prompt.New(executor, completer, prompt.OptPrefix("meta> ")).Run()
			return nil
		},
	}
}

// session bundles one query request's worth of already-open index state
// and the configured ranker, so a single query never re-opens the index.
type session struct {
	inverted *index.InvertedIndex
	forward  *index.ForwardIndex
	rank     config.Ranker
}

func openSession(configPath string) (*session, error) {
	if configPath == "" {
		return nil, fmt.Errorf("meta-query: -config is required")
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	az, err := config.BuildAnalyzer(cfg.Analyzers[0])
	if err != nil {
		return nil, err
	}
	inv, err := index.OpenInverted(cfg.IndexDir(), az)
	if err != nil {
		return nil, err
	}
	fwd, err := index.OpenForward(cfg.IndexDir())
	if err != nil {
		inv.Close()
		return nil, err
	}
	// SearchPrimary(doc_id) is the only access Rocchio feedback needs from
	// the forward index (spec §4.8's cached_index wraps that hot path, not
	// the ranking DAAT loop, which streams rather than random-accesses).
	cachedForward := cache.NewCachedIndex[ids.DocID, *postings.Data[uint64]](fwd, cache.NewDBLRUCache[ids.DocID, *postings.Data[uint64]](feedbackCacheSize))
	ranker, err := config.BuildRanker(cfg.Ranker, cachedForward)
	if err != nil {
		inv.Close()
		fwd.Close()
		return nil, err
	}
	return &session{inverted: inv, forward: fwd, rank: ranker}, nil
}

func (s *session) Close() {
	s.inverted.Close()
	s.forward.Close()
}

// search tokenizes query with the index's own analyzer (so query terms
// resolve through the exact vocabulary the index was built with) and hands
// the resulting term-id weights to the configured ranker.
func (s *session) search(query string, numResults int) ([]resultRow, error) {
	counts, err := s.inverted.Tokenize(&corpus.Document{Content: []byte(query)})
	if err != nil {
		return nil, err
	}
	weights := make(map[ids.TermID]float64, len(counts))
	for term, n := range counts {
		weights[term] = float64(n)
	}

	// Tombstoned doc_ids are rejected before any other predicate runs, the
	// O(1) fast-path spec §6 describes; this session has no label/metadata
	// restriction of its own to chain in as next.
	filter := rank.ComposeFilter(s.inverted.Tombstones(), nil)
	scored, err := s.rank(s.inverted, weights, numResults, filter)
	if err != nil {
		return nil, err
	}

	rows := make([]resultRow, len(scored))
	for i, r := range scored {
		name, err := s.inverted.DocName(r.Doc)
		if err != nil {
			return nil, err
		}
		rows[i] = resultRow{doc: r.Doc, name: name, score: r.Score}
	}
	return rows, nil
}

type resultRow struct {
	doc   ids.DocID
	name  string
	score float64
}

func printResults(rows []resultRow) {
	if len(rows) == 0 {
		fmt.Println("(no results)")
		return
	}
	for i, r := range rows {
		fmt.Printf("%2d. %-40s %10.4f  (doc_id=%d)\n", i+1, r.name, r.score, r.doc)
	}
}
