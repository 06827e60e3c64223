package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/codr1/chroma/internal/ai"
	"github.com/codr1/chroma/internal/app"
	"github.com/codr1/chroma/internal/config"
	"github.com/codr1/chroma/internal/models"
	"github.com/codr1/chroma/internal/studio"
	"github.com/codr1/chroma/internal/themestore"
)

var testPalette = models.Palette{"#0D1117", "#C9D1D9", "#161B22", "#58A6FF", "#F0F6FC"}

func writeTestConfig(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "database:\n  driver: \"sqlite3\"\n  filename: \"" + filepath.ToSlash(filepath.Join(dir, "chroma.db")) + "\"\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func execute(t *testing.T, env *cliEnv, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	env.stdout = &stdout
	env.stderr = &stderr
	if env.stdin == nil {
		env.stdin = strings.NewReader("")
	}

	cmd := newRootCmd(env)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestThemesCommands_SQLite(t *testing.T) {
	configPath := writeTestConfig(t)
	env := &cliEnv{open: app.Open}

	stdout, _, err := execute(t, env, "--config", configPath, "themes", "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, name := range []string{"Oceanic Sunset", "Forest Whisper", "Cyberpunk Neon", "May 15, 2024"} {
		if !strings.Contains(stdout, name) {
			t.Fatalf("list output missing %q:\n%s", name, stdout)
		}
	}

	stdout, _, err = execute(t, env, "--config", configPath, "themes", "delete", "f1b7f8b3-2c2b-5c1f-ac1b-ab1b1b1b1b1b")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !strings.Contains(stdout, "Deleted theme") {
		t.Fatalf("unexpected delete output: %s", stdout)
	}

	exportPath := filepath.Join(t.TempDir(), "themes.json")
	if _, _, err := execute(t, env, "--config", configPath, "themes", "export", "-o", exportPath); err != nil {
		t.Fatalf("export: %v", err)
	}
	data, err := os.ReadFile(exportPath)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	var exported []models.ColorTheme
	if err := json.Unmarshal(data, &exported); err != nil {
		t.Fatalf("decode export: %v", err)
	}
	if len(exported) != 2 || exported[0].Name != "Oceanic Sunset" || exported[1].Name != "Cyberpunk Neon" {
		t.Fatalf("delete did not persist across commands: %+v", exported)
	}

	stdout, _, err = execute(t, env, "--config", configPath, "themes", "delete", "missing")
	if err != nil {
		t.Fatalf("delete unknown: %v", err)
	}
	if !strings.Contains(stdout, "No saved theme with id missing") {
		t.Fatalf("unexpected output: %s", stdout)
	}
}

type memSlots struct {
	mu     sync.Mutex
	values map[string]string
}

func (m *memSlots) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.values[key]
	return value, ok, nil
}

func (m *memSlots) Put(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

type mockAI struct {
	err       error
	name      string
	lastInput ai.Input
}

func (m *mockAI) Extract(ctx context.Context, in ai.Input) (models.Palette, error) {
	m.lastInput = in
	if m.err != nil {
		return nil, m.err
	}
	return testPalette.Clone(), nil
}

func (m *mockAI) SuggestName(ctx context.Context, palette models.Palette) (string, error) {
	return m.name, nil
}

func fakeEnv(t *testing.T, mock *mockAI) (*cliEnv, *themestore.Store) {
	t.Helper()

	store := themestore.New(&memSlots{values: map[string]string{}}, "themes")
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	env := &cliEnv{
		open: func(ctx context.Context, cfg *config.Config, opts app.Options) (*app.App, error) {
			if !opts.WithAI {
				t.Fatalf("extract must request the model client")
			}
			return &app.App{Config: cfg, Store: store, Controller: studio.New(mock, mock, store)}, nil
		},
	}
	return env, store
}

func TestExtractCSS_FromStdinWithName(t *testing.T) {
	mock := &mockAI{name: "Midnight Harbor"}
	env, store := fakeEnv(t, mock)
	env.stdin = strings.NewReader("a { color: #0d1117; }")

	stdout, _, err := execute(t, env, "--config", writeTestConfig(t), "extract", "css", "-", "--save", "--name", "Night Owl")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if mock.lastInput.Text != "a { color: #0d1117; }" {
		t.Fatalf("unexpected input %q", mock.lastInput.Text)
	}
	if !strings.Contains(stdout, "#58A6FF") || !strings.Contains(stdout, "Saved Night Owl") {
		t.Fatalf("unexpected output:\n%s", stdout)
	}
	if store.Themes()[0].Name != "Night Owl" {
		t.Fatalf("theme not saved first: %v", store.Themes()[0])
	}
}

func TestExtractURL_PromptAcceptsSuggestion(t *testing.T) {
	mock := &mockAI{name: "Midnight Harbor"}
	env, store := fakeEnv(t, mock)
	env.stdin = strings.NewReader("\n")

	stdout, _, err := execute(t, env, "--config", writeTestConfig(t), "extract", "url", "https://example.com", "--save")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if !strings.Contains(stdout, "Enter a name for this theme: [Midnight Harbor]") {
		t.Fatalf("missing prompt:\n%s", stdout)
	}
	if store.Len() != 4 || store.Themes()[0].Name != "Midnight Harbor" {
		t.Fatalf("expected suggested name to be saved, got %v", store.Themes()[0])
	}
}

func TestExtract_PromptEOFCancels(t *testing.T) {
	mock := &mockAI{name: "Midnight Harbor"}
	env, store := fakeEnv(t, mock)

	stdout, _, err := execute(t, env, "--config", writeTestConfig(t), "extract", "url", "https://example.com", "--save")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if !strings.Contains(stdout, "Save cancelled.") || store.Len() != 3 {
		t.Fatalf("expected cancelled save:\n%s", stdout)
	}
}

func TestExtract_FailureReturnsUserMessage(t *testing.T) {
	mock := &mockAI{err: ai.ErrFormat}
	env, _ := fakeEnv(t, mock)

	_, _, err := execute(t, env, "--config", writeTestConfig(t), "extract", "url", "https://example.com")
	if err == nil || !strings.Contains(err.Error(), "AI could not extract a palette. Please try a different input.") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestContrastColor(t *testing.T) {
	tests := map[string]string{
		"#FFFFFF": "#000000",
		"#000000": "#FFFFFF",
		"#FFFF00": "#000000",
		"#0D1117": "#FFFFFF",
		"oops":    "#FFFFFF",
	}
	for input, want := range tests {
		if got := contrastColor(input); got != want {
			t.Errorf("contrastColor(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestDBCommands_SQLite(t *testing.T) {
	configPath := writeTestConfig(t)
	env := &cliEnv{open: app.Open}

	stdout, _, err := execute(t, env, "--config", configPath, "db", "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(stdout, "Version: 1, Dirty: false") {
		t.Fatalf("unexpected version output: %s", stdout)
	}

	stdout, _, err = execute(t, env, "--config", configPath, "db", "slots")
	if err != nil {
		t.Fatalf("slots: %v", err)
	}
	if !strings.Contains(stdout, "No slots stored.") {
		t.Fatalf("expected empty slot list, got: %s", stdout)
	}

	if _, _, err := execute(t, env, "--config", configPath, "themes", "delete", "f1b7f8b3-2c2b-5c1f-ac1b-ab1b1b1b1b1b"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	stdout, _, err = execute(t, env, "--config", configPath, "db", "slots")
	if err != nil {
		t.Fatalf("slots after delete: %v", err)
	}
	if !strings.Contains(stdout, "chroma-ai-themes") {
		t.Fatalf("expected themes slot, got: %s", stdout)
	}

	if _, _, err := execute(t, env, "--config", configPath, "db", "down"); !errors.Is(err, errDownNotConfirmed) {
		t.Fatalf("expected confirmation error, got %v", err)
	}

	stdout, _, err = execute(t, env, "--config", configPath, "db", "down", "--yes")
	if err != nil {
		t.Fatalf("down: %v", err)
	}
	if !strings.Contains(stdout, "Rolled back all migrations") {
		t.Fatalf("unexpected down output: %s", stdout)
	}
}
