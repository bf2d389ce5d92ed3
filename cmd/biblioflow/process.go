package main

import (
	"github.com/spf13/cobra"

	"github.com/biblioflow/biblioflow/internal/library"
	"github.com/biblioflow/biblioflow/internal/organizer"
	"github.com/biblioflow/biblioflow/internal/resolver"
)

var (
	processOutput  string
	processPattern string
	processDryRun  bool
	processCopy    bool
	processWorkers int
)

var processCmd = &cobra.Command{
	Use:   "process <pdf>...",
	Short: "Resolve metadata and organize PDF files",
	Long: `Process one or more PDFs: extract an identifier, resolve metadata
against Crossref (by DOI) or Semantic Scholar (by title), rename the file
per the naming pattern, and record it in the library.

With --dry-run, resolution runs but no file is moved and nothing is
written to the library.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runProcess,
}

func init() {
	processCmd.Flags().StringVarP(&processOutput, "output", "o", "", "Output folder (default: configured output folder)")
	processCmd.Flags().StringVarP(&processPattern, "pattern", "p", "", "Naming pattern or preset name (default: configured pattern)")
	processCmd.Flags().BoolVar(&processDryRun, "dry-run", false, "Resolve and show the target name without moving anything")
	processCmd.Flags().BoolVar(&processCopy, "copy", false, "Copy instead of move, leaving originals in place")
	processCmd.Flags().IntVar(&processWorkers, "workers", 0, "Parallel resolutions (default: configured workers)")
	rootCmd.AddCommand(processCmd)
}

// processReport is the per-file outcome in process output.
type processReport struct {
	Source  string         `json:"source"`
	Target  string         `json:"target,omitempty"`
	Entry   *library.Entry `json:"entry,omitempty"`
	Error   string         `json:"error,omitempty"`
	Skipped bool           `json:"skipped,omitempty"`
}

func runProcess(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()

	outputDir := cfg.ResolvedOutputFolder()
	if processOutput != "" {
		outputDir = processOutput
	}
	patternName := cfg.NamingPattern
	if processPattern != "" {
		patternName = processPattern
	}
	pattern := mustResolvePattern(patternName)

	workers := cfg.Workers
	if processWorkers > 0 {
		workers = processWorkers
	}

	var org *organizer.Organizer
	if !processDryRun {
		store := mustOpenLibrary(cfg)
		defer store.Close()
		org = organizer.New(store, organizer.WithCopy(processCopy))
	}

	queue := resolver.NewQueue(newResolver(), workers)

	var reports []processReport
	var firstErr error
	failures := 0
	for res := range queue.Run(cmd.Context(), args) {
		report := processReport{Source: res.Path}

		if res.Err != nil {
			report.Error = userMessage(res.Err)
			if firstErr == nil {
				firstErr = res.Err
			}
			failures++
			reports = append(reports, report)
			continue
		}

		if processDryRun {
			report.Target = organizer.TargetName(res.Record, pattern)
			report.Skipped = true
			reports = append(reports, report)
			continue
		}

		entry, err := org.Organize(res.Path, res.Record, pattern, outputDir)
		if err != nil {
			report.Error = userMessage(err)
			if firstErr == nil {
				firstErr = err
			}
			failures++
		} else {
			report.Target = entry.Path
			report.Entry = &entry
		}
		reports = append(reports, report)
	}

	if humanOutput {
		for _, r := range reports {
			switch {
			case r.Error != "":
				outputHuman("FAIL  %s: %s\n", r.Source, r.Error)
			case r.Skipped:
				outputHuman("DRY   %s -> %s\n", r.Source, r.Target)
			default:
				outputHuman("OK    %s -> %s\n", r.Source, r.Target)
			}
		}
	} else {
		if err := outputJSON(reports); err != nil {
			return err
		}
	}

	if failures == len(args) && failures > 0 {
		if len(reports) == 1 {
			exitWithError(exitCodeFor(firstErr), "%s", reports[0].Error)
		}
		exitWithError(ExitError, "all %d files failed", failures)
	}
	return nil
}
