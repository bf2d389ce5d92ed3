package main

import (
	"github.com/spf13/cobra"

	"github.com/biblioflow/biblioflow/internal/extract"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <pdf>",
	Short: "Resolve a PDF's metadata without organizing it",
	Long: `Extract an identifier from the PDF and resolve it to a canonical
bibliographic record, printed as JSON. The file is not moved and the
library is not touched.`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	doc, err := extract.ReadDocument(args[0])
	if err != nil {
		exitWithError(ExitError, "reading PDF: %v", err)
	}

	rec, err := newResolver().Resolve(cmd.Context(), doc)
	if err != nil {
		exitWithError(exitCodeFor(err), "%s", userMessage(err))
	}

	if humanOutput {
		outputHuman("Title:      %s\n", rec.Title)
		outputHuman("Authors:    %s\n", rec.AuthorLabel())
		if rec.Year != nil {
			outputHuman("Year:       %d\n", *rec.Year)
		}
		if rec.Venue != "" {
			outputHuman("Venue:      %s\n", rec.Venue)
		}
		if rec.DOI != "" {
			outputHuman("DOI:        %s\n", rec.DOI)
		}
		outputHuman("Confidence: %s\n", rec.Confidence)
		return nil
	}
	return outputJSON(rec)
}
