// Package restore reconciles a stored session against the live
// environment: reopening files with clamped cursors, re-creating named
// terminals, and collecting per-file failures without aborting.
package restore

import (
	"fmt"
	"strings"

	"github.com/worklens/worklens/internal/session"
)

// Host is the environment a session is replayed into. OpenEditor returns
// the document's line count so the engine can clamp stale cursors.
type Host interface {
	OpenEditor(path string) (lineCount int, err error)
	MoveCursor(path string, line, col int) error
	CreateTerminal(name string) error
}

// Progress receives done/total after each file attempt.
type Progress func(done, total int, message string)

// State tracks a restore invocation through its phases.
type State string

const (
	StateIdle                State = "idle"
	StateWorkspaceValidating State = "workspace-validating"
	StateAborted             State = "aborted"
	StateRestoring           State = "restoring"
	StateCompleted           State = "completed"
)

// Engine replays sessions against a Host.
type Engine struct {
	Host Host

	// Progress is optional.
	Progress Progress

	// Confirm is consulted when the session's workspace differs from the
	// active one. Nil means decline: a mismatched restore never proceeds
	// silently.
	Confirm func(message string) bool

	// Logf is optional; used to surface recorded terminal commands, which
	// are displayed and never executed.
	Logf func(format string, args ...any)
}

// Result is the reconciliation report for one restore invocation.
type Result struct {
	State             State
	FilesTotal        int
	FilesRestored     int
	FailedFiles       []string
	TerminalsRestored int
}

// Restore replays the session. One file failing never aborts the rest;
// only a declined workspace mismatch stops the restore, and it stops it
// before any side effect.
func (e *Engine) Restore(s *session.Session, current *session.WorkspaceInfo) *Result {
	result := &Result{
		State:      StateWorkspaceValidating,
		FilesTotal: len(s.Editors),
	}

	if s.Workspace != nil && current != nil && !session.SameWorkspace(s.Workspace, current) {
		msg := fmt.Sprintf(
			"Session %q was captured in workspace %q but you're currently in %q. Some files may not exist.",
			s.Title, s.Workspace.Name, current.Name)
		if e.Confirm == nil || !e.Confirm(msg) {
			result.State = StateAborted
			return result
		}
	}

	result.State = StateRestoring
	e.restoreEditors(s, result)
	e.restoreTerminals(s, result)
	result.State = StateCompleted

	return result
}

// restoreEditors opens each captured file in capture order, clamping the
// recorded cursor to the document's current extent.
func (e *Engine) restoreEditors(s *session.Session, result *Result) {
	total := len(s.Editors)

	for i, ed := range s.Editors {
		err := e.openOne(ed)
		if err != nil {
			result.FailedFiles = append(result.FailedFiles, ed.Path)
		} else {
			result.FilesRestored++
		}

		if e.Progress != nil {
			e.Progress(i+1, total, fmt.Sprintf("Opened file %d/%d", i+1, total))
		}
	}
}

func (e *Engine) openOne(ed session.Editor) error {
	lineCount, err := e.Host.OpenEditor(ed.Path)
	if err != nil {
		return err
	}

	if ed.Cursor == nil {
		return nil
	}

	line := ed.Cursor.Line
	if line > lineCount-1 {
		line = lineCount - 1
	}
	if line < 0 {
		line = 0
	}
	col := ed.Cursor.Col
	if col < 0 {
		col = 0
	}

	return e.Host.MoveCursor(ed.Path, line, col)
}

// restoreTerminals re-creates each terminal by name. A recorded last
// command is logged for the user and never sent anywhere for execution.
func (e *Engine) restoreTerminals(s *session.Session, result *Result) {
	for _, term := range s.Terminals {
		if err := e.Host.CreateTerminal(term.Name); err != nil {
			continue
		}

		if term.LastCommand != "" && e.Logf != nil {
			e.Logf("terminal %q had command: %s (not executed)", term.Name, term.LastCommand)
		}

		result.TerminalsRestored++
	}
}

// Summary renders the result for the user, naming up to 3 failed paths
// verbatim.
func (r *Result) Summary() string {
	if r.State == StateAborted {
		return "Restore aborted"
	}

	var parts []string

	if len(r.FailedFiles) == 0 && r.FilesTotal > 0 {
		parts = append(parts, fmt.Sprintf("Restored %d file(s)", r.FilesTotal))
	} else if len(r.FailedFiles) > 0 {
		parts = append(parts, fmt.Sprintf("Restored %d/%d file(s)", r.FilesRestored, r.FilesTotal))
	}

	if r.TerminalsRestored > 0 {
		parts = append(parts, fmt.Sprintf("%d terminal(s)", r.TerminalsRestored))
	}

	summary := strings.Join(parts, ", ")
	if summary == "" {
		summary = "Nothing to restore"
	}

	if len(r.FailedFiles) > 0 {
		fileList := strings.Join(r.FailedFiles, ", ")
		if len(r.FailedFiles) > 3 {
			fileList = fmt.Sprintf("%d files", len(r.FailedFiles))
		}
		summary += ". Failed to open: " + fileList
	}

	return summary
}
