// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/leapstack-labs/asksql/internal/api"
	"github.com/leapstack-labs/asksql/internal/cli/config"
	"github.com/leapstack-labs/asksql/internal/schema"
	"github.com/spf13/cobra"
)

// SetupTestEnv runs the test in an empty working directory, points the user
// config and cache directories into it and clears ASKSQL_* overrides.
// Returns the directory.
func SetupTestEnv(t *testing.T) string {
	t.Helper()

	config.ResetConfig()
	t.Cleanup(config.ResetConfig)

	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	t.Setenv("HOME", dir)

	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, "ASKSQL_") {
			t.Setenv(name, "")
			if err := os.Unsetenv(name); err != nil {
				t.Fatalf("failed to unset %s: %v", name, err)
			}
		}
	}
	return dir
}

// SampleGeneration is a two-database generation used across command tests.
func SampleGeneration() *api.Generation {
	return &api.Generation{
		Message:    "A blog with users and posts.",
		DBFilePath: "/srv/generated/blog.db",
		DBStructure: schema.Result{
			{
				Name:   "blog",
				Tables: []string{"users", "posts"},
				Columns: map[string][]schema.Column{
					"users": {{Name: "id", DType: "INTEGER"}, {Name: "email", DType: "TEXT"}},
					"posts": {{Name: "id", DType: "INTEGER"}, {Name: "title", DType: "TEXT"}},
				},
			},
			{
				Name:    "analytics",
				Tables:  []string{"events"},
				Columns: map[string][]schema.Column{"events": {{Name: "id", DType: "INTEGER"}}},
			},
		},
	}
}

// Backend is an in-process fake of the AskSQL HTTP backend.
type Backend struct {
	*httptest.Server

	mu         sync.Mutex
	prompts    []api.PromptRequest
	logTokens  []string
	generation *api.Generation
	failure    string
	logs       []api.HistoryRecord
	files      map[string][]byte
}

// NewBackend starts a fake backend that answers every prompt with
// SampleGeneration. It is closed when the test ends.
func NewBackend(t *testing.T) *Backend {
	t.Helper()

	b := &Backend{generation: SampleGeneration(), files: map[string][]byte{}}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /process_prompt", b.processPrompt)
	mux.HandleFunc("POST /fetch-logs", b.fetchLogs)
	mux.HandleFunc("GET /download_db", b.download)

	b.Server = httptest.NewServer(mux)
	t.Cleanup(b.Close)
	return b
}

// Fail makes /process_prompt answer 500 with msg.
func (b *Backend) Fail(msg string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failure = msg
}

// SetLogs sets the records returned by /fetch-logs.
func (b *Backend) SetLogs(logs []api.HistoryRecord) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.logs = logs
}

// AddFile serves data at path through /download_db.
func (b *Backend) AddFile(path string, data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.files[path] = data
}

// Prompts returns the prompt requests received so far.
func (b *Backend) Prompts() []api.PromptRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]api.PromptRequest(nil), b.prompts...)
}

// LogTokens returns the tokens /fetch-logs was called with.
func (b *Backend) LogTokens() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.logTokens...)
}

func (b *Backend) processPrompt(w http.ResponseWriter, r *http.Request) {
	var req api.PromptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}

	b.mu.Lock()
	b.prompts = append(b.prompts, req)
	failure, gen := b.failure, b.generation
	b.mu.Unlock()

	if failure != "" {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": failure})
		return
	}
	out := *gen
	out.Prompt = req.Prompt
	writeJSON(w, http.StatusOK, map[string]any{"data": out})
}

func (b *Backend) fetchLogs(w http.ResponseWriter, r *http.Request) {
	var req api.LogsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Token is required"})
		return
	}

	b.mu.Lock()
	b.logTokens = append(b.logTokens, req.Token)
	logs := append([]api.HistoryRecord{}, b.logs...)
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"logs": logs, "count": len(logs)})
}

func (b *Backend) download(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	data, ok := b.files[r.URL.Query().Get("path")]
	b.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "File not found"})
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="generated_schema.db"`)
	_, _ = w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ExecuteCommand runs cmd with args and returns what it wrote to stdout and
// stderr.
func ExecuteCommand(ctx context.Context, cmd *cobra.Command, args ...string) (string, string, error) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return out.String(), errOut.String(), err
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}
