package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/biblioflow/biblioflow/internal/citation"
	"github.com/biblioflow/biblioflow/internal/organizer"
	"github.com/biblioflow/biblioflow/internal/record"
)

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Inspect and manage the library of processed papers",
}

var librarySearchLimit int

var libraryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List library entries",
	RunE:  runLibraryList,
}

var librarySearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Full-text search over titles, venues, and authors",
	Args:  cobra.ExactArgs(1),
	RunE:  runLibrarySearch,
}

var libraryGetCmd = &cobra.Command{
	Use:   "get <path-or-id>",
	Short: "Show one library entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runLibraryGet,
}

var libraryRemoveCmd = &cobra.Command{
	Use:   "remove <path-or-id>",
	Short: "Remove an entry from the catalog (the file is untouched)",
	Args:  cobra.ExactArgs(1),
	RunE:  runLibraryRemove,
}

var libraryReresolveCmd = &cobra.Command{
	Use:   "reresolve <path-or-id>",
	Short: "Resolve an entry's file again and supersede the old entry",
	Long: `Run resolution again for an already-processed file. The outcome is
a new entry (and possibly a new filename); the old entry is kept and
marked superseded rather than modified.`,
	Args: cobra.ExactArgs(1),
	RunE: runLibraryReresolve,
}

var exportStyle string

var libraryExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export citations for all active entries",
	Long:  `Export every active entry's citation (default RIS, for reference managers).`,
	RunE:  runLibraryExport,
}

func init() {
	librarySearchCmd.Flags().IntVarP(&librarySearchLimit, "limit", "n", 50, "Maximum results")
	libraryExportCmd.Flags().StringVarP(&exportStyle, "style", "s", "ris", "Export style (bibtex, ris)")

	libraryCmd.AddCommand(libraryListCmd, librarySearchCmd, libraryGetCmd,
		libraryRemoveCmd, libraryReresolveCmd, libraryExportCmd)
	rootCmd.AddCommand(libraryCmd)
}

func runLibraryList(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	store := mustOpenLibrary(cfg)
	defer store.Close()

	entries, err := store.Active()
	if err != nil {
		exitWithError(ExitError, "listing library: %v", err)
	}

	if humanOutput {
		for _, e := range entries {
			year := "----"
			if e.Record.Year != nil {
				year = strconv.Itoa(*e.Record.Year)
			}
			outputHuman("%s  %s  %s  %s\n", e.ID[:8], year, e.Record.AuthorLabel(), truncate(e.Record.Title, 60))
		}
		outputHuman("%d entries\n", len(entries))
		return nil
	}
	return outputJSON(entries)
}

func runLibrarySearch(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	store := mustOpenLibrary(cfg)
	defer store.Close()

	entries, err := store.Search(args[0], librarySearchLimit)
	if err != nil {
		exitWithError(ExitError, "searching library: %v", err)
	}

	if humanOutput {
		for _, e := range entries {
			outputHuman("%s  %s\n", e.ID[:8], truncate(e.Record.Title, 70))
		}
		outputHuman("%d matches\n", len(entries))
		return nil
	}
	return outputJSON(entries)
}

func runLibraryGet(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	store := mustOpenLibrary(cfg)
	defer store.Close()

	entry := mustFindEntry(store, args[0])
	return outputJSON(entry)
}

func runLibraryRemove(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	store := mustOpenLibrary(cfg)
	defer store.Close()

	entry := mustFindEntry(store, args[0])
	if err := store.Remove(entry.ID); err != nil {
		exitWithError(ExitError, "removing entry: %v", err)
	}

	if humanOutput {
		outputHuman("removed %s\n", entry.ID)
		return nil
	}
	return outputJSON(map[string]string{"removed": entry.ID})
}

func runLibraryReresolve(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	pattern := mustResolvePattern(cfg.NamingPattern)
	store := mustOpenLibrary(cfg)
	defer store.Close()

	entry := mustFindEntry(store, args[0])

	rec, err := newResolver().ResolvePath(cmd.Context(), entry.Path)
	if err != nil {
		exitWithError(exitCodeFor(err), "%s", userMessage(err))
	}

	org := organizer.New(store)
	newEntry, err := org.Reorganize(*entry, rec, pattern, cfg.ResolvedOutputFolder())
	if err != nil {
		exitWithError(exitCodeFor(err), "%s", userMessage(err))
	}

	if humanOutput {
		outputHuman("reresolved %s -> %s\n", entry.Path, newEntry.Path)
		return nil
	}
	return outputJSON(newEntry)
}

func runLibraryExport(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	store := mustOpenLibrary(cfg)
	defer store.Close()

	entries, err := store.Active()
	if err != nil {
		exitWithError(ExitError, "reading library: %v", err)
	}

	records := make([]record.Record, 0, len(entries))
	for _, e := range entries {
		records = append(records, e.Record)
	}

	switch exportStyle {
	case "ris":
		outputHuman("%s\n", citation.RISBatch(records))
	case "bibtex", "bib":
		for i, rec := range records {
			if i > 0 {
				outputHuman("\n")
			}
			outputHuman("%s\n", citation.BibTeX(rec))
		}
	default:
		exitWithError(ExitConfigError, "unsupported export style %q (valid: ris, bibtex)", exportStyle)
	}
	return nil
}
