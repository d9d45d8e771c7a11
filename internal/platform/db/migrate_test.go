package db

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMigrationVersionsSortedAndFiltered(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"0002_runs.sql", "0001_init.sql", "README.md"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "0003_dir.sql"), 0o700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	versions, err := migrationVersions(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(versions) != 2 || versions[0] != "0001_init" || versions[1] != "0002_runs" {
		t.Fatalf("unexpected versions: %v", versions)
	}
}

func TestMigrationVersionsShipped(t *testing.T) {
	versions, err := migrationVersions(filepath.Join("..", "..", "..", "migrations"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(versions) == 0 || versions[0] != "0001_init" {
		t.Fatalf("expected shipped migrations, got %v", versions)
	}
}
