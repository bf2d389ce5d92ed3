package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/biblioflow/biblioflow/internal/naming"
	"github.com/biblioflow/biblioflow/internal/organizer"
	"github.com/biblioflow/biblioflow/internal/resolver"
	"github.com/biblioflow/biblioflow/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch [folder]",
	Short: "Watch a folder and process PDFs as they appear",
	Long: `Watch a folder for new PDF files and run each one through the
resolution pipeline as it arrives. Files already in the folder when the
watch starts are left alone. Stop with Ctrl-C.

Without an argument, the configured watch_folder_path is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()

	dir := cfg.WatchFolderPath
	if len(args) == 1 {
		dir = args[0]
	}
	if dir == "" {
		exitWithError(ExitConfigError, "no watch folder: pass one or set watch_folder_path")
	}

	pattern := mustResolvePattern(cfg.NamingPattern)
	store := mustOpenLibrary(cfg)
	defer store.Close()

	org := organizer.New(store)
	res := newResolver()

	w, err := watcher.New(dir)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watchErr := make(chan error, 1)
	go func() {
		watchErr <- w.Run(ctx)
	}()

	fmt.Fprintf(os.Stderr, "watching %s for new PDFs\n", dir)

	for {
		select {
		case path, ok := <-w.Files():
			if !ok {
				return waitWatch(watchErr)
			}
			processWatched(ctx, path, res, org, pattern, cfg.ResolvedOutputFolder())

		case err := <-w.Errors():
			fmt.Fprintf(os.Stderr, "watch error: %v\n", err)

		case <-ctx.Done():
			return waitWatch(watchErr)
		}
	}
}

func waitWatch(watchErr <-chan error) error {
	err := <-watchErr
	if err == nil || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// processWatched runs one dropped file through resolve + organize,
// reporting outcomes to stderr so the watch loop keeps running.
func processWatched(ctx context.Context, path string, res *resolver.Resolver, org *organizer.Organizer, pattern naming.Pattern, outputDir string) {
	rec, err := res.ResolvePath(ctx, path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FAIL  %s: %s\n", path, userMessage(err))
		return
	}

	entry, err := org.Organize(path, rec, pattern, outputDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FAIL  %s: %s\n", path, userMessage(err))
		return
	}
	fmt.Fprintf(os.Stderr, "OK    %s -> %s\n", path, entry.Path)
}
