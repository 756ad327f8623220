package web

import (
	"encoding/json"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/worklens/worklens/internal/config"
	"github.com/worklens/worklens/internal/db"
	"github.com/worklens/worklens/internal/session"
)

func setupTest(t *testing.T) *Handlers {
	t.Helper()
	tmpDir := t.TempDir()
	database, err := db.Init(tmpDir)
	if err != nil {
		t.Fatalf("db.Init: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	cfg := config.DefaultConfig()

	templateSub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		t.Fatalf("template sub-FS: %v", err)
	}
	renderer := NewRenderer(templateSub, "test")

	return &Handlers{
		db:       database,
		cfg:      cfg,
		renderer: renderer,
	}
}

// seedSession stores a session directly and returns its ID.
func seedSession(t *testing.T, h *Handlers, title string) string {
	t.Helper()
	s := &session.Session{
		Title: title,
		Editors: []session.Editor{
			{Path: "/proj/main.go", Cursor: &session.Cursor{Line: 4, Col: 2}},
		},
		Terminals: []session.Terminal{{Name: "zsh"}},
		Git:       &session.GitSnapshot{Branch: "main"},
	}
	if _, err := s.Stamp(time.Now()); err != nil {
		t.Fatalf("stamp: %v", err)
	}
	if err := db.InsertSession(h.db, s, h.cfg.SessionCap()); err != nil {
		t.Fatalf("seed session %q: %v", title, err)
	}
	return s.ID
}

// --- HandleList ---

func TestHandleList_Default(t *testing.T) {
	h := setupTest(t)
	seedSession(t, h, "alpha")

	req := httptest.NewRequest("GET", "/sessions", nil)
	rec := httptest.NewRecorder()
	h.HandleList(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "alpha") {
		t.Error("expected session title 'alpha' in response")
	}
	if !strings.Contains(body, "Sessions") {
		t.Error("expected page title 'Sessions' in response")
	}
}

func TestHandleList_Empty(t *testing.T) {
	h := setupTest(t)

	req := httptest.NewRequest("GET", "/sessions", nil)
	rec := httptest.NewRecorder()
	h.HandleList(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "No sessions captured yet") {
		t.Error("expected empty state message")
	}
}

func TestHandleList_UnknownScope(t *testing.T) {
	h := setupTest(t)

	req := httptest.NewRequest("GET", "/sessions?scope=bogus", nil)
	rec := httptest.NewRecorder()
	h.HandleList(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleList_NoneScope(t *testing.T) {
	h := setupTest(t)
	seedSession(t, h, "unassigned-session")

	req := httptest.NewRequest("GET", "/sessions?scope=none", nil)
	rec := httptest.NewRecorder()
	h.HandleList(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "unassigned-session") {
		t.Error("expected workspace-less session under scope=none")
	}
}

// --- HandleDetail ---

func TestHandleDetail_Found(t *testing.T) {
	h := setupTest(t)
	id := seedSession(t, h, "detail-session")

	req := httptest.NewRequest("GET", "/sessions/"+id, nil)
	req.SetPathValue("id", id)
	rec := httptest.NewRecorder()
	h.HandleDetail(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "detail-session") {
		t.Error("expected session title in detail page")
	}
	// Rendered markdown summary includes the editors section
	if !strings.Contains(body, "main.go") {
		t.Error("expected captured editor path in detail page")
	}
	if !strings.Contains(body, "Save note") {
		t.Error("expected note form")
	}
}

func TestHandleDetail_NotFound(t *testing.T) {
	h := setupTest(t)

	req := httptest.NewRequest("GET", "/sessions/NONEXISTENT", nil)
	req.SetPathValue("id", "NONEXISTENT")
	rec := httptest.NewRecorder()
	h.HandleDetail(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHandleDetail_EmptyID(t *testing.T) {
	h := setupTest(t)

	req := httptest.NewRequest("GET", "/sessions/", nil)
	req.SetPathValue("id", "")
	rec := httptest.NewRecorder()
	h.HandleDetail(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

// --- HandleDelete ---

func TestHandleDelete_JSONRequest(t *testing.T) {
	h := setupTest(t)
	id := seedSession(t, h, "del-json")

	req := httptest.NewRequest("DELETE", "/sessions/"+id, nil)
	req.SetPathValue("id", id)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	h.HandleDelete(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var resp map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	if resp["deleted"] != true {
		t.Errorf("deleted = %v, want true", resp["deleted"])
	}
	if resp["remaining"] != float64(0) {
		t.Errorf("remaining = %v, want 0", resp["remaining"])
	}
}

func TestHandleDelete_DefaultRedirect(t *testing.T) {
	h := setupTest(t)
	id := seedSession(t, h, "del-redirect")

	req := httptest.NewRequest("DELETE", "/sessions/"+id, nil)
	req.SetPathValue("id", id)
	rec := httptest.NewRecorder()
	h.HandleDelete(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/sessions" {
		t.Errorf("Location = %q, want /sessions", loc)
	}
}

func TestHandleDelete_MissingIDStillSucceeds(t *testing.T) {
	h := setupTest(t)

	// Delete is idempotent: an unknown id reports deleted=false, not an error.
	req := httptest.NewRequest("DELETE", "/sessions/NONEXISTENT", nil)
	req.SetPathValue("id", "NONEXISTENT")
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	h.HandleDelete(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	if resp["deleted"] != false {
		t.Errorf("deleted = %v, want false", resp["deleted"])
	}
}

// --- HandleNote ---

func TestHandleNote_Redirects(t *testing.T) {
	h := setupTest(t)
	id := seedSession(t, h, "note-target")

	form := url.Values{"notes": {"remember the flaky test"}}
	req := httptest.NewRequest("POST", "/sessions/"+id+"/note", strings.NewReader(form.Encode()))
	req.SetPathValue("id", id)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.HandleNote(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/sessions/"+id {
		t.Errorf("Location = %q, want /sessions/%s", loc, id)
	}

	// The note survives the round trip.
	stored, err := db.GetSessionByID(h.db, id)
	if err != nil {
		t.Fatalf("get after note: %v", err)
	}
	if stored.Notes != "remember the flaky test" {
		t.Errorf("Notes = %q", stored.Notes)
	}
}

func TestHandleNote_NotFound(t *testing.T) {
	h := setupTest(t)

	form := url.Values{"notes": {"lost"}}
	req := httptest.NewRequest("POST", "/sessions/NONEXISTENT/note", strings.NewReader(form.Encode()))
	req.SetPathValue("id", "NONEXISTENT")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.HandleNote(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

// --- HandleStats ---

func TestHandleStats(t *testing.T) {
	h := setupTest(t)
	seedSession(t, h, "one")
	seedSession(t, h, "two")

	req := httptest.NewRequest("GET", "/stats", nil)
	rec := httptest.NewRecorder()
	h.HandleStats(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Productivity Report") {
		t.Error("expected report heading")
	}
	if !strings.Contains(body, "Total Sessions") {
		t.Error("expected session statistics in rendered report")
	}
}

// --- Error rendering ---

func TestErrorRendering_JSONError(t *testing.T) {
	h := setupTest(t)

	req := httptest.NewRequest("GET", "/sessions/NONEXISTENT", nil)
	req.SetPathValue("id", "NONEXISTENT")
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	h.HandleDetail(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}

	var resp map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	errObj, ok := resp["error"].(map[string]any)
	if !ok {
		t.Fatal("expected error object in JSON response")
	}
	if errObj["status"] != float64(404) {
		t.Errorf("error.status = %v, want 404", errObj["status"])
	}
	if errObj["code"] != "NOT_FOUND" {
		t.Errorf("error.code = %v, want NOT_FOUND", errObj["code"])
	}
}

func TestErrorRendering_FullErrorPage(t *testing.T) {
	h := setupTest(t)

	req := httptest.NewRequest("GET", "/sessions/NONEXISTENT", nil)
	req.SetPathValue("id", "NONEXISTENT")
	rec := httptest.NewRecorder()
	h.HandleDetail(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "<!DOCTYPE html>") {
		t.Error("full error page should contain layout")
	}
	if !strings.Contains(body, "404") {
		t.Error("error page should show status code")
	}
}

// --- formatTime ---

func TestFormatTime(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"2026-03-01T15:04:05.123Z", "2026-03-01 15:04"},
		{"2026-03-01T15:04:05Z", "2026-03-01 15:04"},
		{"garbage", "garbage"},
	}
	for _, tt := range tests {
		if got := formatTime(tt.in); got != tt.expected {
			t.Errorf("formatTime(%q) = %q, want %q", tt.in, got, tt.expected)
		}
	}
}
