package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/worklens/worklens/internal/config"
	"github.com/worklens/worklens/internal/db"
	"github.com/worklens/worklens/internal/hostenv"
)

// testSetup creates a temporary database, config, and handlers. The test
// is moved into a fresh repository-looking directory so capture reads a
// known git/workspace context.
func testSetup(t *testing.T) (*sql.DB, *Handlers) {
	t.Helper()

	baseDir := t.TempDir()
	database, err := db.Init(baseDir)
	if err != nil {
		t.Fatalf("failed to init db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	cfg := config.DefaultConfig()
	cfg.AllowUnsafePaths = true // allow temp dirs in tests

	workDir := t.TempDir()
	writeState(t, filepath.Join(workDir, ".git", "HEAD"), "ref: refs/heads/feature/mcp-tools\n")
	t.Chdir(workDir)

	statePath := filepath.Join(t.TempDir(), "state.json")
	writeState(t, statePath, `{"editors": [{"path": "/p/main.go", "cursor": {"line": 5, "col": 2}}], "terminals": []}`)
	t.Setenv(hostenv.StateEnvVar, statePath)

	return database, NewHandlers(database, cfg, baseDir)
}

func writeState(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
}

// makeRequest creates a CallToolRequest with the given arguments.
func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func successOutput(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	if result.IsError {
		t.Fatalf("expected success, got error: %v", extractErrorMessage(result))
	}
	var output map[string]any
	if err := json.Unmarshal([]byte(result.Content[0].(mcp.TextContent).Text), &output); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	return output
}

func assertErrorCode(t *testing.T, result *mcp.CallToolResult, expectedCode string) {
	t.Helper()

	if !result.IsError {
		t.Fatalf("expected error result, got success")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is not TextContent")
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(text.Text), &payload); err != nil {
		t.Fatalf("failed to unmarshal error payload: %v", err)
	}
	errorObj, _ := payload["error"].(map[string]any)
	if errorObj == nil {
		t.Fatalf("no error object in payload: %s", text.Text)
	}
	if code, _ := errorObj["code"].(string); code != expectedCode {
		t.Errorf("got error code %q, want %q", errorObj["code"], expectedCode)
	}
}

func extractErrorMessage(result *mcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return "<no content>"
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		return "<not text content>"
	}
	return text.Text
}

// captureOne captures a session through the handler and returns its id.
func captureOne(t *testing.T, h *Handlers, title string) string {
	t.Helper()
	result, err := h.HandleCapture(context.Background(), makeRequest(map[string]any{"title": title}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	output := successOutput(t, result)
	session := output["session"].(map[string]any)
	return session["id"].(string)
}

func TestHandleCapture(t *testing.T) {
	_, h := testSetup(t)
	ctx := context.Background()

	result, err := h.HandleCapture(ctx, makeRequest(map[string]any{
		"title": "mcp capture",
		"tags":  []any{"tooling"},
	}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	output := successOutput(t, result)
	session := output["session"].(map[string]any)
	if session["title"] != "mcp capture" {
		t.Errorf("title = %v", session["title"])
	}
	git, _ := session["git"].(map[string]any)
	if git == nil || git["branch"] != "feature/mcp-tools" {
		t.Errorf("git = %v, want the test branch", session["git"])
	}

	missing, err := h.HandleCapture(ctx, makeRequest(map[string]any{}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	assertErrorCode(t, missing, "INVALID_REQUEST")
}

func TestHandleQuickAndList(t *testing.T) {
	_, h := testSetup(t)
	ctx := context.Background()

	result, err := h.HandleQuick(ctx, makeRequest(nil))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	output := successOutput(t, result)
	session := output["session"].(map[string]any)
	if session["title"] != "Mcp Tools" {
		t.Errorf("title = %v, want the branch-derived name", session["title"])
	}

	listResult, err := h.HandleList(ctx, makeRequest(map[string]any{"scope": "all"}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	listOutput := successOutput(t, listResult)
	if listOutput["total"].(float64) != 1 {
		t.Errorf("total = %v, want 1", listOutput["total"])
	}
}

func TestHandleGetAndDelete(t *testing.T) {
	_, h := testSetup(t)
	ctx := context.Background()
	id := captureOne(t, h, "to fetch")

	getResult, err := h.HandleGet(ctx, makeRequest(map[string]any{"id": id}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	successOutput(t, getResult)

	notFound, err := h.HandleGet(ctx, makeRequest(map[string]any{"id": "01NOPE"}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	assertErrorCode(t, notFound, "NOT_FOUND")

	delResult, err := h.HandleDelete(ctx, makeRequest(map[string]any{"id": id}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	delOutput := successOutput(t, delResult)
	if delOutput["deleted"] != true {
		t.Errorf("deleted = %v, want true", delOutput["deleted"])
	}
}

func TestHandleNote(t *testing.T) {
	_, h := testSetup(t)
	ctx := context.Background()
	id := captureOne(t, h, "annotated")

	result, err := h.HandleNote(ctx, makeRequest(map[string]any{"id": id, "notes": "resume here"}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	output := successOutput(t, result)
	if output["updated"] != true {
		t.Errorf("updated = %v, want true", output["updated"])
	}
}

func TestHandleRestore_MismatchNeedsForce(t *testing.T) {
	_, h := testSetup(t)
	ctx := context.Background()

	// Capture in the test workspace, then restore from a different one.
	id := captureOne(t, h, "here")

	elsewhere := t.TempDir()
	writeState(t, filepath.Join(elsewhere, ".git", "HEAD"), "ref: refs/heads/main\n")
	t.Chdir(elsewhere)

	result, err := h.HandleRestore(ctx, makeRequest(map[string]any{"id": id}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	output := successOutput(t, result)
	if output["aborted"] != true {
		t.Error("mismatched restore without force should abort")
	}

	forced, err := h.HandleRestore(ctx, makeRequest(map[string]any{"id": id, "force": true}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	forcedOutput := successOutput(t, forced)
	if forcedOutput["aborted"] == true {
		t.Error("forced restore should proceed")
	}
}

func TestHandleExportImport(t *testing.T) {
	_, h := testSetup(t)
	ctx := context.Background()
	captureOne(t, h, "exported")

	path := filepath.Join(t.TempDir(), "out.json")
	exportResult, err := h.HandleExport(ctx, makeRequest(map[string]any{"path": path}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	exportOutput := successOutput(t, exportResult)
	if exportOutput["count"].(float64) != 1 {
		t.Errorf("count = %v, want 1", exportOutput["count"])
	}

	importResult, err := h.HandleImport(ctx, makeRequest(map[string]any{"path": path}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	importOutput := successOutput(t, importResult)
	if importOutput["imported"].(float64) != 1 {
		t.Errorf("imported = %v, want 1", importOutput["imported"])
	}
}

func TestHandleTemplates(t *testing.T) {
	_, h := testSetup(t)
	ctx := context.Background()

	listResult, err := h.HandleTemplates(ctx, makeRequest(nil))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	listOutput := successOutput(t, listResult)
	if n := len(listOutput["templates"].([]any)); n != 4 {
		t.Errorf("templates = %d, want the 4 built-ins", n)
	}

	applyResult, err := h.HandleTemplateApply(ctx, makeRequest(map[string]any{"id": "bug-fix"}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	applyOutput := successOutput(t, applyResult)
	session := applyOutput["session"].(map[string]any)
	if session["title"] != "Bug Investigation" {
		t.Errorf("title = %v", session["title"])
	}

	id := session["id"].(string)
	saveResult, err := h.HandleTemplateSave(ctx, makeRequest(map[string]any{
		"session_id": id,
		"name":       "from mcp",
	}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	saveOutput := successOutput(t, saveResult)
	tmpl := saveOutput["template"].(map[string]any)

	delResult, err := h.HandleTemplateDelete(ctx, makeRequest(map[string]any{"id": tmpl["id"]}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	delOutput := successOutput(t, delResult)
	if delOutput["deleted"] != true {
		t.Errorf("deleted = %v, want true", delOutput["deleted"])
	}
}

func TestHandleStatsAndTier(t *testing.T) {
	_, h := testSetup(t)
	ctx := context.Background()
	captureOne(t, h, "counted")

	statsResult, err := h.HandleStats(ctx, makeRequest(nil))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	statsOutput := successOutput(t, statsResult)
	metrics := statsOutput["metrics"].(map[string]any)
	if metrics["total_sessions"].(float64) != 1 {
		t.Errorf("total_sessions = %v, want 1", metrics["total_sessions"])
	}

	tierResult, err := h.HandleTier(ctx, makeRequest(nil))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	tierOutput := successOutput(t, tierResult)
	if tierOutput["tier"] != "free" {
		t.Errorf("tier = %v, want free", tierOutput["tier"])
	}
}

func TestToolRegistryCoversAllTools(t *testing.T) {
	names := AllToolNames()
	if len(names) != 15 {
		t.Errorf("registered tools = %d, want 15", len(names))
	}
	for name, entry := range toolRegistry {
		if entry.def.Name != name {
			t.Errorf("tool %q registered under def name %q", name, entry.def.Name)
		}
	}
}
