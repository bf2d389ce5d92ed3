// Package main provides the biblioflow CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "biblioflow",
	Short: "Research PDF organizer",
	Long: `biblioflow ingests research PDFs, resolves their bibliographic
metadata, and files them under clean, consistent names.

Core features:
  - DOI extraction from PDF text with title-search fallback
  - Metadata resolution via Crossref and Semantic Scholar
  - Configurable naming patterns for organized files
  - Citations in BibTeX, APA 7, IEEE, and RIS
  - Searchable library of processed papers
  - Watch-folder mode for hands-off processing

All commands output JSON by default; use --human for readable output.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Load .env if present (for S2_API_KEY, CROSSREF_MAILTO)
	_ = godotenv.Load()

	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.Version = Version
}
