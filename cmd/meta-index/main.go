// Command meta-index builds an on-disk index from a corpus named by a TOML
// configuration file (spec §4.12, §6).
//
// Grounded on zoekt's cmd/zoekt-index (_examples/sourcegraph-zoekt/cmd/zoekt-index/main.go):
// flag parsing, automaxprocs tuning, then a single driving call into the
// construction package, generalized from "walk a directory of files" to
// "load a corpus file and drive build.Builder".
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/peterbourgon/ff/v3/ffcli"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/meta-toolkit/metago/build"
	"github.com/meta-toolkit/metago/config"
	"github.com/meta-toolkit/metago/corpus"
	"github.com/meta-toolkit/metago/metastore"
)

func main() {
	root := rootCommand()
	if err := root.ParseAndRun(context.Background(), os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func rootCommand() *ffcli.Command {
	fs := flag.NewFlagSet("meta-index", flag.ExitOnError)
	parallelism := fs.Int("parallelism", 0, "tokenizer/chunking worker count (0 = GOMAXPROCS)")

	return &ffcli.Command{
		Name:       "meta-index",
		ShortUsage: "meta-index [flags] <config.toml>",
		ShortHelp:  "build an index from a corpus named by a configuration file",
		FlagSet:    fs,
		Exec: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one <config.toml> argument")
			}
			// Tune GOMAXPROCS to match the container's CPU quota before
			// Options.SetDefaults reads runtime.GOMAXPROCS(0).
			if _, err := maxprocs.Set(); err != nil {
				log.Printf("meta-index: automaxprocs: %v", err)
			}
			return runIndex(args[0], *parallelism)
		},
	}
}

func runIndex(configPath string, parallelism int) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	az, err := config.BuildAnalyzer(cfg.Analyzers[0])
	if err != nil {
		return err
	}

	c, err := corpus.LoadFile(cfg.CorpusPath(), cfg.Encoding)
	if err != nil {
		return err
	}

	opts := build.Options{
		IndexDir:       cfg.IndexDir(),
		Parallelism:    parallelism,
		MetadataFields: metadataSchema(cfg.Metadata),
		ConfigToml:     cfg.Raw(),
	}

	b, err := build.NewBuilder(opts, az)
	if err != nil {
		return err
	}
	for _, doc := range c.Docs {
		if err := b.Add(doc); err != nil {
			return err
		}
	}
	return b.Finish()
}

func metadataSchema(fields []config.MetadataField) []metastore.FieldSchema {
	schema := make([]metastore.FieldSchema, len(fields))
	for i, f := range fields {
		schema[i] = metastore.FieldSchema{Name: f.Name, Type: fieldType(f.Type)}
	}
	return schema
}

func fieldType(t string) metastore.FieldType {
	switch t {
	case "int":
		return metastore.FieldSignedInt
	case "uint":
		return metastore.FieldUnsignedInt
	case "double":
		return metastore.FieldDouble
	default:
		return metastore.FieldString
	}
}

