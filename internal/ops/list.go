package ops

import (
	"context"
	"database/sql"

	"github.com/worklens/worklens/internal/config"
	"github.com/worklens/worklens/internal/db"
	"github.com/worklens/worklens/internal/errors"
	"github.com/worklens/worklens/internal/hostenv"
	"github.com/worklens/worklens/internal/session"
)

// ListScope selects which sessions a List returns.
type ListScope string

const (
	// ScopeAll returns every stored session.
	ScopeAll ListScope = "all"
	// ScopeWorkspace returns sessions captured in the workspace enclosing
	// Dir.
	ScopeWorkspace ListScope = "workspace"
	// ScopeNoWorkspace returns sessions captured outside any workspace.
	ScopeNoWorkspace ListScope = "none"
)

// ListInput contains parameters for the List operation.
type ListInput struct {
	Scope ListScope // default: all
	Dir   string    // used by ScopeWorkspace
}

// ListOutput contains the result of the List operation, most-recent-first.
type ListOutput struct {
	Sessions []session.Session `json:"sessions"`
	Total    int               `json:"total"`
}

// List returns stored sessions in recency order.
func List(ctx context.Context, database *sql.DB, cfg *config.Config, input ListInput) (*ListOutput, error) {
	var (
		sessions []session.Session
		err      error
	)

	switch input.Scope {
	case "", ScopeAll:
		sessions, err = db.ListSessions(database)
	case ScopeWorkspace:
		ws := hostenv.CurrentWorkspace(input.Dir)
		if ws == nil {
			// Outside any project the workspace scope degenerates to the
			// unassigned sessions.
			sessions, err = db.ListByWorkspace(database, nil)
		} else {
			sessions, err = db.ListByWorkspace(database, ws)
		}
	case ScopeNoWorkspace:
		sessions, err = db.ListByWorkspace(database, nil)
	default:
		return nil, errors.NewInvalidRequest("scope must be one of: all, workspace, none")
	}
	if err != nil {
		return nil, err
	}

	return &ListOutput{Sessions: sessions, Total: len(sessions)}, nil
}
