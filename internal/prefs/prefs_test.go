package prefs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	p := Load("")
	if p != Default() {
		t.Fatalf("Load = %+v, want %+v", p, Default())
	}
	if p.LogFile != "logs/api_watchdog.log" {
		t.Fatalf("LogFile = %q", p.LogFile)
	}
}

func TestLoad_ReadsExistingFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	prefsDir := filepath.Join(home, ".config", "apiwatchdog")
	if err := os.MkdirAll(prefsDir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	body := "theme = \"Slate\"\nprovider = \"stock\"\ninterval = 60\nquery = \"MSFT\"\n"
	if err := os.WriteFile(filepath.Join(prefsDir, "prefs.toml"), []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p := Load("")
	if p.Theme != "Slate" || p.Provider != "stock" || p.Interval != 60 || p.Query != "MSFT" {
		t.Fatalf("Load = %+v", p)
	}
	if p.LogFile != DefaultLogFile {
		t.Fatalf("LogFile = %q, want default %q", p.LogFile, DefaultLogFile)
	}
}

func TestSave_RoundTripsAndCreatesDirs(t *testing.T) {
	prefsFile := filepath.Join(t.TempDir(), "subdir", "prefs.toml")

	want := Prefs{Theme: "Kanagawa", Provider: "weather", Interval: 300, Query: "London,uk", LogFile: "/tmp/w.log"}
	if err := Save(prefsFile, want); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	if got := Load(prefsFile); got != want {
		t.Fatalf("Load = %+v, want %+v", got, want)
	}
}

func TestLoad_BlankFieldsFallBackToDefaults(t *testing.T) {
	prefsFile := filepath.Join(t.TempDir(), "prefs.toml")
	if err := os.WriteFile(prefsFile, []byte("theme = \"\"\ninterval = -3\nquery = \"Paris\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p := Load(prefsFile)
	if p.Theme != defaultTheme || p.Interval != defaultInterval {
		t.Fatalf("Load = %+v, want default theme and interval", p)
	}
	if p.Query != "Paris" {
		t.Fatalf("Query = %q, want Paris", p.Query)
	}
}

func TestLoad_InvalidTOMLFallsBackToDefault(t *testing.T) {
	prefsFile := filepath.Join(t.TempDir(), "prefs.toml")
	if err := os.WriteFile(prefsFile, []byte("not valid toml {{{\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if p := Load(prefsFile); p != Default() {
		t.Fatalf("Load = %+v, want defaults", p)
	}
}
