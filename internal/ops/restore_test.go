package ops

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/worklens/worklens/internal/db"
	"github.com/worklens/worklens/internal/errors"
	"github.com/worklens/worklens/internal/session"
)

func TestRestore_BuildsPlanFromRealFiles(t *testing.T) {
	database, cfg, _ := testEnv(t)

	dir := t.TempDir()
	existing := filepath.Join(dir, "a.go")
	writeTestFile(t, existing, "package a\n\nfunc A() {}\n")
	missing := filepath.Join(dir, "gone.go")

	s := &session.Session{
		Title: "partial",
		Editors: []session.Editor{
			{Path: existing, Cursor: &session.Cursor{Line: 99, Col: 0}},
			{Path: missing},
		},
		Terminals: []session.Terminal{{Name: "build", LastCommand: "make"}},
	}
	if _, err := s.Stamp(time.Now()); err != nil {
		t.Fatalf("Stamp failed: %v", err)
	}
	if err := db.InsertSession(database, s, cfg.SessionCap()); err != nil {
		t.Fatalf("InsertSession failed: %v", err)
	}

	var logged int
	out, err := Restore(context.Background(), database, cfg, RestoreInput{
		ID:   s.ID,
		Dir:  t.TempDir(),
		Logf: func(string, ...any) { logged++ },
	})
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	if out.Aborted {
		t.Fatal("restore aborted, want partial completion")
	}
	if out.Result.FilesRestored != 1 || len(out.Result.FailedFiles) != 1 {
		t.Errorf("result = %+v, want 1 restored and 1 failed", out.Result)
	}
	if len(out.Plan.Opened) != 1 || out.Plan.Opened[0].Line != 2 {
		t.Errorf("plan = %+v, want cursor clamped to the last line", out.Plan.Opened)
	}
	if len(out.Plan.Terminals) != 1 || out.Plan.Terminals[0] != "build" {
		t.Errorf("terminals = %v", out.Plan.Terminals)
	}
	if logged != 1 {
		t.Errorf("logged = %d, want the recorded command surfaced once", logged)
	}
}

func TestRestore_WorkspaceMismatchWithoutConfirmerAborts(t *testing.T) {
	database, cfg, _ := testEnv(t)

	s := &session.Session{
		Title:     "elsewhere",
		Editors:   []session.Editor{},
		Terminals: []session.Terminal{},
		Workspace: &session.WorkspaceInfo{Name: "other", Path: "/somewhere/other"},
	}
	if _, err := s.Stamp(time.Now()); err != nil {
		t.Fatalf("Stamp failed: %v", err)
	}
	if err := db.InsertSession(database, s, cfg.SessionCap()); err != nil {
		t.Fatalf("InsertSession failed: %v", err)
	}

	out, err := Restore(context.Background(), database, cfg, RestoreInput{
		ID:  s.ID,
		Dir: gitDir(t, "main"),
	})
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if !out.Aborted {
		t.Error("restore proceeded across a workspace mismatch with no confirmer")
	}
}

func TestRestore_UnknownID(t *testing.T) {
	database, cfg, _ := testEnv(t)

	_, err := Restore(context.Background(), database, cfg, RestoreInput{ID: "01NOPE"})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("err = %v, want NOT_FOUND", err)
	}
}
