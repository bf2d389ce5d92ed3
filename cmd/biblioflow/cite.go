package main

import (
	"github.com/spf13/cobra"

	"github.com/biblioflow/biblioflow/internal/citation"
	"github.com/biblioflow/biblioflow/internal/library"
)

var citeStyle string

var citeCmd = &cobra.Command{
	Use:   "cite <path-or-id>",
	Short: "Print a citation for a library entry",
	Long: `Print the citation for a processed paper, looked up by its
organized file path or its entry ID. Style is one of bibtex, apa7, ieee,
ris; the configured default applies when --style is omitted.`,
	Args: cobra.ExactArgs(1),
	RunE: runCite,
}

func init() {
	citeCmd.Flags().StringVarP(&citeStyle, "style", "s", "", "Citation style (bibtex, apa7, ieee, ris)")
	rootCmd.AddCommand(citeCmd)
}

func runCite(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()

	styleName := cfg.DefaultCitationStyle
	if citeStyle != "" {
		styleName = citeStyle
	}
	style, err := citation.ParseStyle(styleName)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	store := mustOpenLibrary(cfg)
	defer store.Close()

	entry := mustFindEntry(store, args[0])

	// Cached citations cover the built-in styles; fall back to rendering
	// for entries written before a style existed.
	if cached, ok := entry.Citations[string(style)]; ok && cached != "" {
		outputHuman("%s\n", cached)
		return nil
	}

	s, err := citation.Format(entry.Record, style)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	outputHuman("%s\n", s)
	return nil
}

// mustFindEntry looks up a library entry by organized path or ID.
func mustFindEntry(store *library.Store, key string) *library.Entry {
	entry, err := store.GetByPath(key)
	if err != nil {
		exitWithError(ExitError, "looking up %s: %v", key, err)
	}
	if entry == nil {
		entry, err = store.GetByID(key)
		if err != nil {
			exitWithError(ExitError, "looking up %s: %v", key, err)
		}
	}
	if entry == nil {
		exitWithError(ExitError, "no library entry for %s", key)
	}
	return entry
}
