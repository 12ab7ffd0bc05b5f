//go:build integration

// Package integration provides integration tests for mtcli.
package integration

import (
	"context"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

// TestEnv represents a Data API installation to test against.
type TestEnv struct {
	BaseURL  string
	Username string
	Password string
}

// DataAPITestEnv returns the test environment described by MTCLI_TEST_*
// variables.
func DataAPITestEnv() *TestEnv {
	return &TestEnv{
		BaseURL:  os.Getenv("MTCLI_TEST_BASE_URL"),
		Username: os.Getenv("MTCLI_TEST_USERNAME"),
		Password: os.Getenv("MTCLI_TEST_PASSWORD"),
	}
}

// IsAvailable checks if the Data API answers its endpoint catalog.
func (e *TestEnv) IsAvailable() bool {
	if e.BaseURL == "" {
		return false
	}
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(strings.TrimRight(e.BaseURL, "/") + "/v3/endpoints")
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// SkipIfNotAvailable skips the test if the environment is not available.
func (e *TestEnv) SkipIfNotAvailable(t *testing.T) {
	t.Helper()
	if !e.IsAvailable() {
		t.Skipf("Data API test environment not available at %q", e.BaseURL)
	}
}

// SkipIfNoCredentials skips the test if no login is configured.
func (e *TestEnv) SkipIfNoCredentials(t *testing.T) {
	t.Helper()
	if e.Username == "" || e.Password == "" {
		t.Skip("MTCLI_TEST_USERNAME and MTCLI_TEST_PASSWORD are not set")
	}
}

// MtcliBinaryPath returns the path to the mtcli binary.
func MtcliBinaryPath(t *testing.T) string {
	t.Helper()

	if path := os.Getenv("MTCLI_BINARY"); path != "" {
		return path
	}

	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("failed to get caller information")
	}

	// Go up from test/integration to project root
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(filename)))
	binaryPath := filepath.Join(projectRoot, "bin", "mtcli")

	if runtime.GOOS == "windows" {
		binaryPath += ".exe"
	}

	if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
		t.Fatalf("mtcli binary not found at %s - run 'go build -o bin/mtcli ./cmd/mtcli' first", binaryPath)
	}

	return binaryPath
}

// Runner runs mtcli in an isolated home directory.
type Runner struct {
	t      *testing.T
	binary string
	env    []string
}

// NewRunner creates a Runner with a private home, config and keyring
// directory.
func NewRunner(t *testing.T) *Runner {
	t.Helper()

	homeDir := t.TempDir()
	keyringDir := filepath.Join(homeDir, "keyring")
	if err := os.MkdirAll(keyringDir, 0700); err != nil {
		t.Fatalf("failed to create keyring dir: %v", err)
	}

	return &Runner{
		t:      t,
		binary: MtcliBinaryPath(t),
		env: append(os.Environ(),
			"HOME="+homeDir,
			"USERPROFILE="+homeDir,
			"MTCLI_CONFIG_DIR=",
			"MTCLI_TEST_KEYRING_DIR="+keyringDir,
		),
	}
}

// Run runs mtcli with args and returns its output.
func (r *Runner) Run(ctx context.Context, args ...string) (string, string, error) {
	r.t.Helper()

	cmd := exec.CommandContext(ctx, r.binary, args...)
	cmd.Env = r.env

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// MustRun runs mtcli and fails the test on a non-zero exit.
func (r *Runner) MustRun(ctx context.Context, args ...string) string {
	r.t.Helper()

	stdout, stderr, err := r.Run(ctx, args...)
	if err != nil {
		r.t.Fatalf("mtcli %s: %v\nstdout: %s\nstderr: %s", strings.Join(args, " "), err, stdout, stderr)
	}
	return stdout
}
