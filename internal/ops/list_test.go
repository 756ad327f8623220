package ops

import (
	"context"
	"testing"

	"github.com/worklens/worklens/internal/errors"
)

func TestList_AllMostRecentFirst(t *testing.T) {
	database, cfg, _ := testEnv(t)
	seedSession(t, database, cfg, "first")
	seedSession(t, database, cfg, "second")

	out, err := List(context.Background(), database, cfg, ListInput{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if out.Total != 2 {
		t.Fatalf("total = %d, want 2", out.Total)
	}
	if out.Sessions[0].Title != "second" || out.Sessions[1].Title != "first" {
		t.Errorf("order = [%s, %s], want most-recent-first",
			out.Sessions[0].Title, out.Sessions[1].Title)
	}
}

func TestList_WorkspaceScope(t *testing.T) {
	database, cfg, _ := testEnv(t)
	dir := gitDir(t, "main")
	state := hostStateFile(t)

	if _, err := Capture(context.Background(), database, cfg, CaptureInput{
		Title: "in project", Dir: dir, StatePath: state,
	}); err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	seedSession(t, database, cfg, "unassigned")

	inWs, err := List(context.Background(), database, cfg, ListInput{Scope: ScopeWorkspace, Dir: dir})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if inWs.Total != 1 || inWs.Sessions[0].Title != "in project" {
		t.Errorf("workspace scope = %+v, want only the project session", inWs.Sessions)
	}

	noWs, err := List(context.Background(), database, cfg, ListInput{Scope: ScopeNoWorkspace})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if noWs.Total != 1 || noWs.Sessions[0].Title != "unassigned" {
		t.Errorf("none scope = %+v, want only the unassigned session", noWs.Sessions)
	}
}

func TestList_UnknownScope(t *testing.T) {
	database, cfg, _ := testEnv(t)

	_, err := List(context.Background(), database, cfg, ListInput{Scope: "everything"})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("err = %v, want INVALID_REQUEST", err)
	}
}

func TestGet_NotFound(t *testing.T) {
	database, cfg, _ := testEnv(t)

	_, err := Get(context.Background(), database, cfg, GetInput{ID: "01MISSING"})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("err = %v, want NOT_FOUND", err)
	}
}

func TestDelete_Idempotent(t *testing.T) {
	database, cfg, _ := testEnv(t)
	id := seedSession(t, database, cfg, "doomed")
	seedSession(t, database, cfg, "survivor")

	out, err := Delete(context.Background(), database, cfg, DeleteInput{ID: id})
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if !out.Deleted || out.Remaining != 1 {
		t.Errorf("first delete = %+v, want deleted with 1 remaining", out)
	}

	again, err := Delete(context.Background(), database, cfg, DeleteInput{ID: id})
	if err != nil {
		t.Fatalf("second Delete failed: %v", err)
	}
	if again.Deleted || again.Remaining != 1 {
		t.Errorf("second delete = %+v, want no-op", again)
	}
}

func TestAddNote_UpdatesAndReportsMissing(t *testing.T) {
	database, cfg, _ := testEnv(t)
	id := seedSession(t, database, cfg, "annotated")

	out, err := AddNote(context.Background(), database, cfg, AddNoteInput{ID: id, Notes: "left off at the parser"})
	if err != nil {
		t.Fatalf("AddNote failed: %v", err)
	}
	if !out.Updated {
		t.Error("Updated = false, want true")
	}

	got, err := Get(context.Background(), database, cfg, GetInput{ID: id})
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Session.Notes != "left off at the parser" {
		t.Errorf("notes = %q", got.Session.Notes)
	}

	gone, err := AddNote(context.Background(), database, cfg, AddNoteInput{ID: "01GONE", Notes: "x"})
	if err != nil {
		t.Fatalf("AddNote failed: %v", err)
	}
	if gone.Updated {
		t.Error("Updated = true for a missing id, want false")
	}
}
