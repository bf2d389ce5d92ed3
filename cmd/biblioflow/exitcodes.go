package main

// Exit codes shared by all commands.
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (missing config, invalid paths)
	ExitNoMetadata  = 3 // No identifier or no match for a document
	ExitNetwork     = 4 // Metadata source unreachable
	ExitMoveFailed  = 5 // File move failed; original left in place
	ExitIndexFailed = 6 // File moved but the library catalog was not updated
)
