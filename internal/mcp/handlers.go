package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/worklens/worklens/internal/config"
	"github.com/worklens/worklens/internal/errors"
	"github.com/worklens/worklens/internal/hostenv"
	"github.com/worklens/worklens/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db      *sql.DB
	cfg     *config.Config
	baseDir string
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sql.DB, cfg *config.Config, baseDir string) *Handlers {
	return &Handlers{db: db, cfg: cfg, baseDir: baseDir}
}

// dir returns the directory whose git/workspace context applies, which is
// the server process working directory.
func (h *Handlers) dir() string {
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	return dir
}

func (h *Handlers) statePath() string {
	return hostenv.StatePath(h.cfg, h.baseDir)
}

// Request types for each tool

// CaptureRequest represents the arguments for session_capture.
type CaptureRequest struct {
	Title string   `json:"title"`
	Notes string   `json:"notes,omitempty"`
	Tags  []string `json:"tags,omitempty"`
}

// ListRequest represents the arguments for session_list.
type ListRequest struct {
	Scope string `json:"scope,omitempty"`
}

// IDRequest represents the arguments for tools addressing one record.
type IDRequest struct {
	ID string `json:"id"`
}

// RestoreRequest represents the arguments for session_restore.
type RestoreRequest struct {
	ID    string `json:"id"`
	Force bool   `json:"force,omitempty"`
}

// NoteRequest represents the arguments for session_note.
type NoteRequest struct {
	ID    string `json:"id"`
	Notes string `json:"notes,omitempty"`
}

// ExportRequest represents the arguments for session_export.
type ExportRequest struct {
	Path string   `json:"path,omitempty"`
	IDs  []string `json:"ids,omitempty"`
}

// ImportRequest represents the arguments for session_import.
type ImportRequest struct {
	Path string `json:"path"`
}

// TemplatesRequest represents the arguments for session_templates.
type TemplatesRequest struct {
	Category string `json:"category,omitempty"`
}

// TemplateSaveRequest represents the arguments for session_template_save.
type TemplateSaveRequest struct {
	SessionID   string   `json:"session_id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// Handler implementations

// HandleCapture handles the session_capture tool call.
func (h *Handlers) HandleCapture(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CaptureRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Capture(ctx, h.db, h.cfg, ops.CaptureInput{
		Title:     input.Title,
		Notes:     input.Notes,
		Tags:      input.Tags,
		Dir:       h.dir(),
		StatePath: h.statePath(),
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleQuick handles the session_quick tool call.
func (h *Handlers) HandleQuick(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.Quick(ctx, h.db, h.cfg, ops.QuickInput{
		Dir:       h.dir(),
		StatePath: h.statePath(),
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleList handles the session_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.List(ctx, h.db, h.cfg, ops.ListInput{
		Scope: ops.ListScope(input.Scope),
		Dir:   h.dir(),
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleGet handles the session_get tool call.
func (h *Handlers) HandleGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Get(ctx, h.db, h.cfg, ops.GetInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleRestore handles the session_restore tool call. MCP has no
// interactive prompt, so a workspace mismatch aborts unless force is set.
func (h *Handlers) HandleRestore(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RestoreRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	var confirm func(string) bool
	if input.Force {
		confirm = func(string) bool { return true }
	}

	result, err := ops.Restore(ctx, h.db, h.cfg, ops.RestoreInput{
		ID:      input.ID,
		Dir:     h.dir(),
		Confirm: confirm,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleDelete handles the session_delete tool call.
func (h *Handlers) HandleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Delete(ctx, h.db, h.cfg, ops.DeleteInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleNote handles the session_note tool call.
func (h *Handlers) HandleNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[NoteRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.AddNote(ctx, h.db, h.cfg, ops.AddNoteInput{ID: input.ID, Notes: input.Notes})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleExport handles the session_export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Export(ctx, h.db, h.cfg, ops.ExportInput{
		Path:    input.Path,
		IDs:     input.IDs,
		BaseDir: h.baseDir,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleImport handles the session_import tool call.
func (h *Handlers) HandleImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ImportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Import(ctx, h.db, h.cfg, ops.ImportInput{
		Path:    input.Path,
		BaseDir: h.baseDir,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleTemplates handles the session_templates tool call.
func (h *Handlers) HandleTemplates(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TemplatesRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Templates(ctx, h.db, h.cfg, ops.TemplatesInput{Category: input.Category})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleTemplateApply handles the session_template_apply tool call.
func (h *Handlers) HandleTemplateApply(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.ApplyTemplate(ctx, h.db, h.cfg, ops.ApplyTemplateInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleTemplateSave handles the session_template_save tool call.
func (h *Handlers) HandleTemplateSave(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TemplateSaveRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.SaveTemplate(ctx, h.db, h.cfg, ops.SaveTemplateInput{
		SessionID:   input.SessionID,
		Name:        input.Name,
		Description: input.Description,
		Category:    input.Category,
		Tags:        input.Tags,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleTemplateDelete handles the session_template_delete tool call.
func (h *Handlers) HandleTemplateDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.DeleteTemplate(ctx, h.db, h.cfg, ops.DeleteTemplateInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleStats handles the session_stats tool call.
func (h *Handlers) HandleStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.Stats(ctx, h.db, h.cfg, ops.StatsInput{})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleTier handles the session_tier tool call.
func (h *Handlers) HandleTier(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.TierStatus(ctx, h.db, h.cfg, ops.TierStatusInput{})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Internal error details are not exposed to prevent leaking sensitive info.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if wErr, ok := err.(*errors.Error); ok {
		errorObj := map[string]any{
			"code":    wErr.Code,
			"message": wErr.Message,
			"status":  wErr.Status,
		}
		if wErr.Code != errors.ErrInternal && wErr.Details != nil {
			errorObj["details"] = wErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
