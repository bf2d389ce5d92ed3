package main

import (
	"strconv"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show and change settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value. Keys:
  output_folder           where organized PDFs land
  naming_pattern          preset name or literal pattern
  default_citation_style  bibtex, apa7, ieee, or ris
  watch_folder            true or false
  watch_folder_path       folder to watch for new PDFs
  library_dir             where the library catalog lives
  workers                 parallel resolutions for batch processing`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()

	if humanOutput {
		outputHuman("output_folder:          %s\n", cfg.OutputFolder)
		outputHuman("naming_pattern:         %s\n", cfg.NamingPattern)
		outputHuman("default_citation_style: %s\n", cfg.DefaultCitationStyle)
		outputHuman("watch_folder:           %t\n", cfg.WatchFolder)
		if cfg.WatchFolderPath != "" {
			outputHuman("watch_folder_path:      %s\n", cfg.WatchFolderPath)
		}
		outputHuman("library_dir:            %s\n", cfg.ResolvedLibraryDir())
		outputHuman("workers:                %d\n", cfg.Workers)
		return nil
	}
	return outputJSON(cfg)
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	key, value := args[0], args[1]

	switch key {
	case "output_folder":
		cfg.OutputFolder = value
	case "naming_pattern":
		// Validate before saving so process never hits a bad pattern.
		mustResolvePattern(value)
		cfg.NamingPattern = value
	case "default_citation_style":
		cfg.DefaultCitationStyle = value
	case "watch_folder":
		b, err := strconv.ParseBool(value)
		if err != nil {
			exitWithError(ExitConfigError, "watch_folder must be true or false")
		}
		cfg.WatchFolder = b
	case "watch_folder_path":
		cfg.WatchFolderPath = value
	case "library_dir":
		cfg.LibraryDir = value
	case "workers":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			exitWithError(ExitConfigError, "workers must be a positive integer")
		}
		cfg.Workers = n
	default:
		exitWithError(ExitConfigError, "unknown config key %q", key)
	}

	if err := cfg.Validate(); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	if err := cfg.Save(); err != nil {
		exitWithError(ExitError, "saving config: %v", err)
	}

	if humanOutput {
		outputHuman("%s = %s\n", key, value)
		return nil
	}
	return outputJSON(map[string]string{key: value})
}
