// Package prefs persists operator preferences in ~/.config/dahell/prefs.toml.
package prefs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/ssebasarias/Dahell/internal/paging"
)

// Prefs holds operator preferences.
type Prefs struct {
	Theme           string `toml:"theme"`
	StartScreen     string `toml:"start_screen"`
	CompetitorRange string `toml:"competitor_range"`
}

const (
	defaultPrefsPath   = "~/.config/dahell/prefs.toml"
	defaultTheme       = "Dracula"
	defaultStartScreen = "goldmine"
)

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

func defaults() Prefs {
	return Prefs{Theme: defaultTheme, StartScreen: defaultStartScreen}
}

// Load reads preferences from path. Any problem reading or parsing the file
// yields defaults; preferences are never fatal.
func Load(path string) Prefs {
	prefs := defaults()

	resolved, err := resolvePath(path)
	if err != nil {
		return prefs
	}
	file, err := os.Open(resolved)
	if err != nil {
		return prefs
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return prefs
	}
	if err := toml.Unmarshal(bytes, &prefs); err != nil {
		return defaults()
	}

	if strings.TrimSpace(prefs.Theme) == "" {
		prefs.Theme = defaultTheme
	}
	if strings.TrimSpace(prefs.StartScreen) == "" {
		prefs.StartScreen = defaultStartScreen
	}
	if _, ok := prefs.Competitors(); !ok {
		prefs.CompetitorRange = ""
	}
	return prefs
}

// Competitors parses CompetitorRange ("min-max").
func (p Prefs) Competitors() (paging.Range, bool) {
	raw := strings.TrimSpace(p.CompetitorRange)
	if raw == "" {
		return paging.Range{}, false
	}
	r, err := paging.ParseRange(raw)
	if err != nil {
		return paging.Range{}, false
	}
	return r, true
}

// Save writes preferences to path, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	bytes, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}
	if err := os.WriteFile(resolved, bytes, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultPrefsPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
