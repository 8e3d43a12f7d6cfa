package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ssebasarias/Dahell/internal/paging"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	p := Load("")
	if p.Theme != defaultTheme {
		t.Fatalf("Theme = %q, want %q", p.Theme, defaultTheme)
	}
	if p.StartScreen != defaultStartScreen {
		t.Fatalf("StartScreen = %q, want %q", p.StartScreen, defaultStartScreen)
	}
	if _, ok := p.Competitors(); ok {
		t.Fatalf("Competitors should be unset by default")
	}
}

func TestLoad_ReadsDefaultLocation(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".config", "dahell")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	data := "theme = \"Slate\"\nstart_screen = \"cluster\"\ncompetitor_range = \"0-5\"\n"
	if err := os.WriteFile(filepath.Join(dir, "prefs.toml"), []byte(data), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p := Load("")
	if p.Theme != "Slate" || p.StartScreen != "cluster" {
		t.Fatalf("prefs = %+v", p)
	}
	r, ok := p.Competitors()
	if !ok || r != (paging.Range{Min: 0, Max: 5}) {
		t.Fatalf("Competitors = %v, %v", r, ok)
	}
}

func TestSave_CreatesFileAndDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subdir", "prefs.toml")

	if err := Save(path, Prefs{Theme: "Slate", StartScreen: "system", CompetitorRange: "0-3"}); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	loaded := Load(path)
	if loaded.Theme != "Slate" || loaded.StartScreen != "system" || loaded.CompetitorRange != "0-3" {
		t.Fatalf("loaded = %+v", loaded)
	}
}

func TestLoad_EmptyValuesFallBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	if err := os.WriteFile(path, []byte("theme = \"  \"\ncompetitor_range = \"5-1\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	p := Load(path)
	if p.Theme != defaultTheme {
		t.Fatalf("Theme = %q, want %q", p.Theme, defaultTheme)
	}
	if p.CompetitorRange != "" {
		t.Fatalf("invalid range should be dropped, got %q", p.CompetitorRange)
	}
}

func TestLoad_InvalidTOMLUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	if err := os.WriteFile(path, []byte("theme = [\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if p := Load(path); p != defaults() {
		t.Fatalf("prefs = %+v, want defaults", p)
	}
}

func TestCompetitors_Parsing(t *testing.T) {
	cases := map[string]bool{
		"0-20": true, " 1 - 3 ": true, "3": false, "a-b": false, "-1-2": false, "4-2": false,
	}
	for raw, want := range cases {
		if _, ok := (Prefs{CompetitorRange: raw}).Competitors(); ok != want {
			t.Fatalf("Competitors(%q) ok = %v, want %v", raw, ok, want)
		}
	}
}
