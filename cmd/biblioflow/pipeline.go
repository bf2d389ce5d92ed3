package main

import (
	"errors"

	"github.com/biblioflow/biblioflow/internal/config"
	"github.com/biblioflow/biblioflow/internal/library"
	"github.com/biblioflow/biblioflow/internal/lookup"
	"github.com/biblioflow/biblioflow/internal/naming"
	"github.com/biblioflow/biblioflow/internal/organizer"
	"github.com/biblioflow/biblioflow/internal/resolver"
)

// mustLoadConfig loads configuration, exits on error.
func mustLoadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

// mustResolvePattern resolves a preset name or literal pattern, exits on error.
func mustResolvePattern(name string) naming.Pattern {
	presets, err := naming.LoadPresets(config.PresetsPath())
	if err != nil {
		exitWithError(ExitConfigError, "loading naming presets: %v", err)
	}
	pattern, err := presets.Resolve(name)
	if err != nil {
		exitWithError(ExitConfigError, "invalid naming pattern: %v", err)
	}
	return pattern
}

// mustOpenLibrary opens the library store, exits on error.
// The caller is responsible for calling Close().
func mustOpenLibrary(cfg *config.Config) *library.Store {
	store, err := library.Open(cfg.ResolvedLibraryDir())
	if err != nil {
		exitWithError(ExitError, "opening library: %v", err)
	}
	return store
}

// newResolver builds the resolver over the production source clients.
func newResolver() *resolver.Resolver {
	return resolver.New(
		lookup.NewCrossrefClient(),
		lookup.NewSemanticScholarClient(),
	)
}

// exitCodeFor maps pipeline errors to exit codes.
func exitCodeFor(err error) int {
	if kind, ok := resolver.KindOf(err); ok {
		switch kind {
		case resolver.NoIdentifier, resolver.NoMatch:
			return ExitNoMetadata
		case resolver.NetworkFailure:
			return ExitNetwork
		default:
			return ExitError
		}
	}
	var oerr *organizer.Error
	if errors.As(err, &oerr) {
		if oerr.Kind == organizer.IndexWriteFailed {
			return ExitIndexFailed
		}
		return ExitMoveFailed
	}
	return ExitError
}

// userMessage extracts the actionable message from a pipeline error.
func userMessage(err error) string {
	var rerr *resolver.Error
	if errors.As(err, &rerr) {
		return rerr.UserMessage()
	}
	var oerr *organizer.Error
	if errors.As(err, &oerr) {
		return oerr.UserMessage()
	}
	return err.Error()
}
