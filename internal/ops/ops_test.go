package ops

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/worklens/worklens/internal/config"
	"github.com/worklens/worklens/internal/db"
	"github.com/worklens/worklens/internal/session"
)

// testEnv creates a fresh database under a temp base directory.
func testEnv(t *testing.T) (*sql.DB, *config.Config, string) {
	t.Helper()
	baseDir := t.TempDir()
	database, err := db.Init(baseDir)
	if err != nil {
		t.Fatalf("db.Init failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database, config.DefaultConfig(), baseDir
}

// writeTestFile writes content, creating parent directories.
func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
}

// hostStateFile writes a host state file with one open editor and returns
// its path.
func hostStateFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state.json")
	writeTestFile(t, path, `{
		"editors": [{"path": "/p/main.go", "cursor": {"line": 3, "col": 1}}],
		"terminals": [{"name": "build"}]
	}`)
	return path
}

// gitDir creates a directory that looks like a repository on the given
// branch and returns it.
func gitDir(t *testing.T, branch string) string {
	t.Helper()
	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, ".git", "HEAD"), "ref: refs/heads/"+branch+"\n")
	return dir
}

// seedSession inserts a minimal stored session and returns its id.
func seedSession(t *testing.T, database *sql.DB, cfg *config.Config, title string) string {
	t.Helper()
	s := &session.Session{
		Title:     title,
		Editors:   []session.Editor{{Path: "/p/a.go"}},
		Terminals: []session.Terminal{},
	}
	if _, err := s.Stamp(time.Now()); err != nil {
		t.Fatalf("Stamp failed: %v", err)
	}
	if err := db.InsertSession(database, s, cfg.SessionCap()); err != nil {
		t.Fatalf("InsertSession failed: %v", err)
	}
	return s.ID
}
