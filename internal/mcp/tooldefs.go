package mcp

import "github.com/mark3labs/mcp-go/mcp"

var captureToolDef = mcp.NewTool("session_capture",
	mcp.WithDescription("Capture the current working context (open files, cursors, terminals, git branch) as a named session."),
	mcp.WithString("title", mcp.Required(), mcp.Description("Session title")),
	mcp.WithString("notes", mcp.Description("Optional free-text note")),
	mcp.WithArray("tags", mcp.Description("Optional labels"), mcp.Items(map[string]any{"type": "string"})),
)

var quickToolDef = mcp.NewTool("session_quick",
	mcp.WithDescription("Capture the current working context with an automatically generated title. No prompts."),
)

var listToolDef = mcp.NewTool("session_list",
	mcp.WithDescription("List stored sessions, most recent first."),
	mcp.WithString("scope", mcp.Description("all (default), workspace (current project only), or none (sessions captured outside any project)")),
)

var getToolDef = mcp.NewTool("session_get",
	mcp.WithDescription("Retrieve a session by id."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Session id")),
)

var restoreToolDef = mcp.NewTool("session_restore",
	mcp.WithDescription("Replay a session: returns the plan of files (with clamped cursors) and terminals to reopen. Files that no longer exist are reported, not fatal."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Session id")),
	mcp.WithBoolean("force", mcp.Description("Proceed even when the session belongs to a different workspace")),
)

var deleteToolDef = mcp.NewTool("session_delete",
	mcp.WithDescription("Delete a session by id. Deleting an absent id is a no-op."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Session id")),
)

var noteToolDef = mcp.NewTool("session_note",
	mcp.WithDescription("Attach or replace the free-text note on a session."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Session id")),
	mcp.WithString("notes", mcp.Description("Note text; empty clears the note")),
)

var exportToolDef = mcp.NewTool("session_export",
	mcp.WithDescription("Export sessions to a versioned JSON file."),
	mcp.WithString("path", mcp.Description("Destination path (.json); defaults to the exports directory")),
	mcp.WithArray("ids", mcp.Description("Optional subset of session ids"), mcp.Items(map[string]any{"type": "string"})),
)

var importToolDef = mcp.NewTool("session_import",
	mcp.WithDescription("Import sessions from an export file. All-or-nothing; imported sessions get fresh ids."),
	mcp.WithString("path", mcp.Required(), mcp.Description("Export file path (.json)")),
)

var templatesToolDef = mcp.NewTool("session_templates",
	mcp.WithDescription("List session templates: the built-in catalogue plus custom templates."),
	mcp.WithString("category", mcp.Description("Optional category filter: frontend, backend, fullstack, debugging, custom")),
)

var templateApplyToolDef = mcp.NewTool("session_template_apply",
	mcp.WithDescription("Create a new session from a template's snapshot."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Template id")),
)

var templateSaveToolDef = mcp.NewTool("session_template_save",
	mcp.WithDescription("Save an existing session's arrangement as a reusable custom template."),
	mcp.WithString("session_id", mcp.Required(), mcp.Description("Source session id")),
	mcp.WithString("name", mcp.Required(), mcp.Description("Template name")),
	mcp.WithString("description", mcp.Description("What the template is for")),
	mcp.WithString("category", mcp.Description("frontend, backend, fullstack, debugging, or custom (default)")),
	mcp.WithArray("tags", mcp.Description("Optional labels"), mcp.Items(map[string]any{"type": "string"})),
)

var templateDeleteToolDef = mcp.NewTool("session_template_delete",
	mcp.WithDescription("Delete a custom template. Built-ins cannot be deleted."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Template id")),
)

var statsToolDef = mcp.NewTool("session_stats",
	mcp.WithDescription("Productivity metrics over the stored session history, plus a markdown report."),
)

var tierToolDef = mcp.NewTool("session_tier",
	mcp.WithDescription("Current subscription tier, its limits, and usage."),
)
