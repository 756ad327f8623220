package db

import (
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/worklens/worklens/internal/errors"
	"github.com/worklens/worklens/internal/session"
)

// ErrUniqueConstraint is returned when an insert violates a UNIQUE constraint.
var ErrUniqueConstraint = &errors.Error{
	Code:    "UNIQUE_CONSTRAINT",
	Status:  409,
	Message: "unique constraint violation",
}

// InsertSession stores a new session and evicts the oldest entries beyond
// cap. The insert and the eviction run in one transaction, so the caller
// never observes more than cap sessions.
func InsertSession(database *sql.DB, s *session.Session, cap int) error {
	tx, err := database.Begin()
	if err != nil {
		return errors.NewInternal(err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := insertSessionTx(tx, s); err != nil {
		return err
	}

	if _, err := tx.Exec(evictQuery, cap); err != nil {
		return errors.NewInternal(err)
	}

	if err := tx.Commit(); err != nil {
		return errors.NewInternal(err)
	}

	return nil
}

// evictQuery removes everything beyond the most recent cap entries.
const evictQuery = `
	DELETE FROM sessions
	WHERE id NOT IN (
		SELECT id FROM sessions
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	)
`

func insertSessionTx(tx *sql.Tx, s *session.Session) error {
	editorsJSON, err := json.Marshal(s.Editors)
	if err != nil {
		return errors.NewInternal(err)
	}
	terminalsJSON, err := json.Marshal(s.Terminals)
	if err != nil {
		return errors.NewInternal(err)
	}

	var tagsJSON sql.NullString
	if len(s.Tags) > 0 {
		data, err := json.Marshal(s.Tags)
		if err != nil {
			return errors.NewInternal(err)
		}
		tagsJSON = sql.NullString{String: string(data), Valid: true}
	}

	var gitBranch, gitHead sql.NullString
	if s.Git != nil {
		gitBranch = toNullString(s.Git.Branch)
		gitHead = toNullString(s.Git.Head)
	}

	var wsName, wsPath, wsPathNorm sql.NullString
	if s.Workspace != nil {
		wsName = sql.NullString{String: s.Workspace.Name, Valid: true}
		wsPath = sql.NullString{String: s.Workspace.Path, Valid: true}
		wsPathNorm = sql.NullString{String: session.NormalizePath(s.Workspace.Path), Valid: true}
	}

	query := `
		INSERT INTO sessions (
			id, title, timestamp, editors_json, terminals_json,
			git_branch, git_head, workspace_name, workspace_path,
			workspace_path_norm, notes, tags_json, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = tx.Exec(query,
		s.ID, s.Title, s.Timestamp, string(editorsJSON), string(terminalsJSON),
		gitBranch, gitHead, wsName, wsPath,
		wsPathNorm, toNullString(s.Notes), tagsJSON, time.Now().UnixNano(),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrUniqueConstraint
		}
		return errors.NewInternal(err)
	}
	return nil
}

// InsertSessions stores a batch of sessions in one transaction, then
// evicts beyond cap once. Any failure rolls the whole batch back.
func InsertSessions(database *sql.DB, sessions []session.Session, cap int) error {
	tx, err := database.Begin()
	if err != nil {
		return errors.NewInternal(err)
	}
	defer tx.Rollback() //nolint:errcheck

	for i := range sessions {
		if err := insertSessionTx(tx, &sessions[i]); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(evictQuery, cap); err != nil {
		return errors.NewInternal(err)
	}

	if err := tx.Commit(); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// isUniqueConstraintError checks if the error is a SQLite UNIQUE constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	// SQLite returns "UNIQUE constraint failed: ..." for unique violations
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// ListSessions returns all sessions, most-recent-first.
// Never fails on an empty store; returns an empty slice.
func ListSessions(database *sql.DB) ([]session.Session, error) {
	return querySessions(database, selectSessions+" ORDER BY created_at DESC, id DESC")
}

// ListByWorkspace returns sessions belonging to the given workspace
// (path-normalized equality). A nil workspace selects sessions captured
// outside any workspace.
func ListByWorkspace(database *sql.DB, ws *session.WorkspaceInfo) ([]session.Session, error) {
	if ws == nil {
		return querySessions(database,
			selectSessions+" WHERE workspace_path_norm IS NULL ORDER BY created_at DESC, id DESC")
	}
	return querySessions(database,
		selectSessions+" WHERE workspace_path_norm = ? ORDER BY created_at DESC, id DESC",
		session.NormalizePath(ws.Path))
}

// GetSessionByID retrieves a session by id.
func GetSessionByID(database *sql.DB, id string) (*session.Session, error) {
	rows, err := database.Query(selectSessions+" WHERE id = ?", id)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, errors.NewInternal(err)
		}
		return nil, errors.NewNotFound(id)
	}

	s, err := scanSession(rows)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return s, nil
}

// SetNotes attaches a note to the session with the given id.
// Returns false (and no error) when the id is gone.
func SetNotes(database *sql.DB, id, notes string) (bool, error) {
	result, err := database.Exec("UPDATE sessions SET notes = ? WHERE id = ?", notes, id)
	if err != nil {
		return false, errors.NewInternal(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, errors.NewInternal(err)
	}
	return affected > 0, nil
}

// DeleteSession removes at most one session. Returns whether a row was
// deleted and the post-delete count.
func DeleteSession(database *sql.DB, id string) (bool, int, error) {
	result, err := database.Exec("DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return false, 0, errors.NewInternal(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, 0, errors.NewInternal(err)
	}

	remaining, err := CountSessions(database)
	if err != nil {
		return false, 0, err
	}
	return affected > 0, remaining, nil
}

// CountSessions returns the number of stored sessions.
func CountSessions(database *sql.DB) (int, error) {
	var count int
	if err := database.QueryRow("SELECT COUNT(*) FROM sessions").Scan(&count); err != nil {
		return 0, errors.NewInternal(err)
	}
	return count, nil
}

const selectSessions = `
	SELECT id, title, timestamp, editors_json, terminals_json,
		git_branch, git_head, workspace_name, workspace_path,
		notes, tags_json
	FROM sessions
`

// querySessions runs a session select and scans all rows.
func querySessions(database *sql.DB, query string, args ...any) ([]session.Session, error) {
	rows, err := database.Query(query, args...)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	sessions := []session.Session{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		sessions = append(sessions, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}

	return sessions, nil
}

// scanSession scans the current row into a Session.
func scanSession(rows *sql.Rows) (*session.Session, error) {
	var (
		s             session.Session
		editorsJSON   string
		terminalsJSON string
		gitBranch     sql.NullString
		gitHead       sql.NullString
		wsName        sql.NullString
		wsPath        sql.NullString
		notes         sql.NullString
		tagsJSON      sql.NullString
	)

	err := rows.Scan(
		&s.ID, &s.Title, &s.Timestamp, &editorsJSON, &terminalsJSON,
		&gitBranch, &gitHead, &wsName, &wsPath,
		&notes, &tagsJSON,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(editorsJSON), &s.Editors); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(terminalsJSON), &s.Terminals); err != nil {
		return nil, err
	}

	if gitBranch.Valid || gitHead.Valid {
		s.Git = &session.GitSnapshot{
			Branch: gitBranch.String,
			Head:   gitHead.String,
		}
	}

	if wsPath.Valid {
		s.Workspace = &session.WorkspaceInfo{
			Name: wsName.String,
			Path: wsPath.String,
		}
	}

	s.Notes = notes.String

	if tagsJSON.Valid && tagsJSON.String != "" {
		if err := json.Unmarshal([]byte(tagsJSON.String), &s.Tags); err != nil {
			return nil, err
		}
	}

	return &s, nil
}

// toNullString converts a string to sql.NullString, mapping "" to NULL.
func toNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
