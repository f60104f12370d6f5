package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDiscoverDB_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("CANOPY_DB", path)
	got, err := DiscoverDB()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != path {
		t.Errorf("got %q, want %q", got, path)
	}
}

func TestDiscoverDB_FlagMissing(t *testing.T) {
	t.Setenv("CANOPY_DB", "")
	dbPath = filepath.Join(t.TempDir(), "nope.db")
	t.Cleanup(func() { dbPath = "" })

	if _, err := DiscoverDB(); err == nil {
		t.Fatal("expected error for missing --db path")
	}
}

func TestJoinLines(t *testing.T) {
	if got := joinLines([]string{"a", "b"}); got != "a\nb" {
		t.Errorf("got %q", got)
	}
	if got := joinLines(nil); got != "" {
		t.Errorf("got %q", got)
	}
}
