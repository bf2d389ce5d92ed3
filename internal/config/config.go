// Package config handles persistent application settings.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/biblioflow/biblioflow/internal/citation"
)

// Config is the application configuration stored as JSON under the user
// config directory. The pipeline never mutates it.
type Config struct {
	// OutputFolder is where organized PDFs land.
	OutputFolder string `json:"output_folder"`

	// NamingPattern is a preset name or a literal pattern string.
	NamingPattern string `json:"naming_pattern"`

	// DefaultCitationStyle is used when cite commands omit --style.
	DefaultCitationStyle string `json:"default_citation_style"`

	// WatchFolder enables processing files dropped into WatchFolderPath.
	WatchFolder     bool   `json:"watch_folder"`
	WatchFolderPath string `json:"watch_folder_path,omitempty"`

	// LibraryDir overrides where the library catalog lives.
	LibraryDir string `json:"library_dir,omitempty"`

	// Workers bounds parallel resolutions in batch processing.
	Workers int `json:"workers,omitempty"`
}

const (
	appDirName  = "biblioflow"
	configFile  = "config.json"
	presetsFile = "patterns.yml"
	libraryDir  = "library"
)

// Default returns the configuration used before the user saves one.
func Default() *Config {
	return &Config{
		OutputFolder:         filepath.Join(homeDir(), "Research", "Papers"),
		NamingPattern:        "default",
		DefaultCitationStyle: string(citation.StyleBibTeX),
		Workers:              1,
	}
}

// Dir returns the config directory, respecting XDG_CONFIG_HOME.
func Dir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		configHome = filepath.Join(homeDir(), ".config")
	}
	return filepath.Join(configHome, appDirName)
}

// Path returns the config file path.
func Path() string {
	return filepath.Join(Dir(), configFile)
}

// PresetsPath returns the naming presets file path.
func PresetsPath() string {
	return filepath.Join(Dir(), presetsFile)
}

// Load reads the config file, falling back to defaults when it does not
// exist. Stored values override defaults field by field.
func Load() (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(Path())
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return cfg, nil
}

// Save writes the config file, creating the directory as needed.
func (c *Config) Save() error {
	if err := os.MkdirAll(Dir(), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(Path(), data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// ResolvedOutputFolder expands ~ in the output folder.
func (c *Config) ResolvedOutputFolder() string {
	return ExpandPath(c.OutputFolder)
}

// ResolvedLibraryDir returns the library directory, defaulting next to
// the config file.
func (c *Config) ResolvedLibraryDir() string {
	if c.LibraryDir != "" {
		return ExpandPath(c.LibraryDir)
	}
	return filepath.Join(Dir(), libraryDir)
}

// Validate checks field values that have a constrained domain.
func (c *Config) Validate() error {
	if _, err := citation.ParseStyle(c.DefaultCitationStyle); err != nil {
		return err
	}
	if c.WatchFolder && c.WatchFolderPath == "" {
		return fmt.Errorf("watch_folder is enabled but watch_folder_path is empty")
	}
	return nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}
	return filepath.Join(homeDir(), path[1:])
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
