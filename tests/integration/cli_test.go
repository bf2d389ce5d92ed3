// Package integration exercises the biblioflow binary end to end.
// Everything here runs offline: commands that would hit metadata sources
// are only driven through their failure paths.
package integration

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
)

var (
	binary     string
	binaryOnce sync.Once
	binaryErr  error
)

// getBinary builds the biblioflow binary once and returns its path.
func getBinary(t *testing.T) string {
	t.Helper()
	binaryOnce.Do(func() {
		_, filename, _, ok := runtime.Caller(0)
		if !ok {
			binaryErr = os.ErrInvalid
			return
		}
		moduleRoot := filepath.Dir(filepath.Dir(filepath.Dir(filename)))

		tmpDir, err := os.MkdirTemp("", "biblioflow-test-*")
		if err != nil {
			binaryErr = err
			return
		}
		binary = filepath.Join(tmpDir, "biblioflow")

		cmd := exec.Command("go", "build", "-o", binary, "./cmd/biblioflow")
		cmd.Dir = moduleRoot
		if output, err := cmd.CombinedOutput(); err != nil {
			binaryErr = &buildError{output: string(output), err: err}
			return
		}
	})
	if binaryErr != nil {
		t.Fatalf("failed to build biblioflow: %v", binaryErr)
	}
	return binary
}

type buildError struct {
	output string
	err    error
}

func (e *buildError) Error() string {
	return e.err.Error() + ": " + e.output
}

// runCLI runs the binary with an isolated home and config directory and
// returns stdout, stderr, and the exit code.
func runCLI(t *testing.T, home string, args ...string) (string, string, int) {
	t.Helper()

	cmd := exec.Command(getBinary(t), args...)
	cmd.Env = append(os.Environ(),
		"HOME="+home,
		"XDG_CONFIG_HOME="+filepath.Join(home, ".config"),
	)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	code := 0
	if exitErr, ok := err.(*exec.ExitError); ok {
		code = exitErr.ExitCode()
	} else if err != nil {
		t.Fatalf("running %v: %v", args, err)
	}
	return stdout.String(), stderr.String(), code
}

func TestConfigShowDefaults(t *testing.T) {
	home := t.TempDir()

	stdout, stderr, code := runCLI(t, home, "config", "show")
	if code != 0 {
		t.Fatalf("exit %d, stderr: %s", code, stderr)
	}

	var cfg map[string]interface{}
	if err := json.Unmarshal([]byte(stdout), &cfg); err != nil {
		t.Fatalf("output not JSON: %v\n%s", err, stdout)
	}
	if cfg["default_citation_style"] != "bibtex" {
		t.Errorf("default_citation_style = %v", cfg["default_citation_style"])
	}
	if cfg["naming_pattern"] != "default" {
		t.Errorf("naming_pattern = %v", cfg["naming_pattern"])
	}
}

func TestConfigSetPersists(t *testing.T) {
	home := t.TempDir()

	_, stderr, code := runCLI(t, home, "config", "set", "default_citation_style", "apa7")
	if code != 0 {
		t.Fatalf("config set failed (%d): %s", code, stderr)
	}

	stdout, _, code := runCLI(t, home, "config", "show")
	if code != 0 {
		t.Fatalf("config show failed (%d)", code)
	}
	var cfg map[string]interface{}
	if err := json.Unmarshal([]byte(stdout), &cfg); err != nil {
		t.Fatalf("output not JSON: %v", err)
	}
	if cfg["default_citation_style"] != "apa7" {
		t.Errorf("setting not persisted: %v", cfg["default_citation_style"])
	}
}

func TestConfigSetRejectsBadValues(t *testing.T) {
	home := t.TempDir()

	tests := []struct {
		name string
		args []string
	}{
		{"unknown key", []string{"config", "set", "no_such_key", "x"}},
		{"bad style", []string{"config", "set", "default_citation_style", "chicago"}},
		{"bad pattern", []string{"config", "set", "naming_pattern", "{volume}.pdf"}},
		{"bad workers", []string{"config", "set", "workers", "zero"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, stderr, code := runCLI(t, home, tt.args...)
			if code != 2 {
				t.Errorf("exit = %d, want 2; stderr: %s", code, stderr)
			}
			var errObj map[string]string
			if err := json.Unmarshal([]byte(stderr), &errObj); err != nil {
				t.Errorf("stderr not a JSON error: %s", stderr)
			} else if errObj["error"] == "" {
				t.Errorf("empty error field: %s", stderr)
			}
		})
	}
}

func TestLibraryListEmpty(t *testing.T) {
	home := t.TempDir()

	stdout, stderr, code := runCLI(t, home, "library", "list")
	if code != 0 {
		t.Fatalf("exit %d, stderr: %s", code, stderr)
	}

	var entries []json.RawMessage
	if err := json.Unmarshal([]byte(stdout), &entries); err != nil {
		t.Fatalf("output not a JSON array: %v\n%s", err, stdout)
	}
	if len(entries) != 0 {
		t.Errorf("fresh library has %d entries", len(entries))
	}
}

func TestLibraryGetUnknown(t *testing.T) {
	home := t.TempDir()

	_, stderr, code := runCLI(t, home, "library", "get", "no-such-entry")
	if code != 1 {
		t.Errorf("exit = %d, want 1", code)
	}
	if !strings.Contains(stderr, "no-such-entry") {
		t.Errorf("stderr does not name the key: %s", stderr)
	}
}

func TestResolveUnreadableFile(t *testing.T) {
	home := t.TempDir()

	// A .pdf extension on non-PDF bytes fails at the read step.
	fake := filepath.Join(home, "fake.pdf")
	if err := os.WriteFile(fake, []byte("plain text"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, stderr, code := runCLI(t, home, "resolve", fake)
	if code != 1 {
		t.Errorf("exit = %d, want 1; stderr: %s", code, stderr)
	}
}

func TestProcessMissingFile(t *testing.T) {
	home := t.TempDir()

	stdout, _, code := runCLI(t, home, "process", filepath.Join(home, "absent.pdf"))
	if code != 1 {
		t.Errorf("exit = %d, want 1", code)
	}

	var reports []struct {
		Source string `json:"source"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal([]byte(stdout), &reports); err != nil {
		t.Fatalf("output not JSON: %v\n%s", err, stdout)
	}
	if len(reports) != 1 || reports[0].Error == "" {
		t.Errorf("reports = %+v", reports)
	}
}

func TestHumanFlagChangesFormat(t *testing.T) {
	home := t.TempDir()

	stdout, _, code := runCLI(t, home, "--human", "config", "show")
	if code != 0 {
		t.Fatalf("exit %d", code)
	}
	if strings.HasPrefix(strings.TrimSpace(stdout), "{") {
		t.Errorf("--human still produced JSON:\n%s", stdout)
	}
	if !strings.Contains(stdout, "naming_pattern") {
		t.Errorf("human output missing fields:\n%s", stdout)
	}
}
