package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"gstledger/internal/domain"
	"gstledger/internal/ledger"
	"gstledger/internal/lookup"
	"gstledger/internal/rawimport"
)

type classifyOptions struct {
	source         string
	mappingFile    string
	disallowMarker string
	summary        bool
}

func newClassifyCmd() *cobra.Command {
	opts := classifyOptions{}
	cmd := &cobra.Command{
		Use:   "classify FILE",
		Short: "Classify a local export file without touching the database",
		Long: `classify parses an xlsx, xls or csv export, runs it through the ledger
engine with the built-in state codes and prints the processed document as JSON.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			return classify(cmd.OutOrStdout(), f, filepath.Base(args[0]), opts)
		},
	}
	cmd.Flags().StringVar(&opts.source, "source", string(domain.SourceGSTR2B), "export source: gstr2a or gstr2b")
	cmd.Flags().StringVar(&opts.mappingFile, "mapping", "", "YAML file with extra header aliases")
	cmd.Flags().StringVar(&opts.disallowMarker, "disallow-marker", "disallow", "ledger name marker for the disallow view")
	cmd.Flags().BoolVar(&opts.summary, "summary", false, "print view counts instead of the document")
	return cmd
}

func classify(out io.Writer, r io.Reader, name string, opts classifyOptions) error {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	fileType, ok := domain.AllowedExtensions[ext]
	if !ok {
		return domain.ErrUnsupportedFileType
	}
	mapping, err := rawimport.LoadMapping(opts.mappingFile)
	if err != nil {
		return err
	}
	profile, err := mapping.Profile(domain.SourceType(opts.source))
	if err != nil {
		return err
	}

	parsed, err := rawimport.Parse(r, fileType, profile)
	if err != nil {
		return err
	}
	if len(parsed.Rows) == 0 {
		return domain.ErrNoRows
	}

	engine := ledger.NewEngine(profile, lookup.NewStateTable(lookup.DefaultStateCodes()),
		ledger.WithDisallowMarker(opts.disallowMarker))
	doc := &domain.ProcessedDocument{SourceType: profile.Type}
	res := engine.Process(parsed.Rows, 0)
	res.Apply(doc)

	if opts.summary {
		fmt.Fprintf(out, "rows: %d\nduplicates: %d\nreverse_charge: %d\nmismatched: %d\ndisallow: %d\n",
			len(doc.Canonical), res.Duplicates, len(doc.ReverseCharge), len(doc.Mismatched), len(doc.Disallow))
		for _, u := range parsed.Unmapped {
			if u.Suggestion != "" {
				fmt.Fprintf(out, "unmapped header %q (did you mean %q?)\n", u.Header, u.Suggestion)
			} else {
				fmt.Fprintf(out, "unmapped header %q\n", u.Header)
			}
		}
		return nil
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
