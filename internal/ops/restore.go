package ops

import (
	"context"
	"database/sql"
	"strings"

	"github.com/worklens/worklens/internal/config"
	"github.com/worklens/worklens/internal/db"
	"github.com/worklens/worklens/internal/errors"
	"github.com/worklens/worklens/internal/hostenv"
	"github.com/worklens/worklens/internal/restore"
)

// RestoreInput contains parameters for the Restore operation.
type RestoreInput struct {
	ID  string // required
	Dir string // current directory, used to identify the active workspace

	// Confirm resolves a workspace mismatch. Nil declines, so a surface
	// that cannot ask (MCP, web) aborts mismatched restores unless it
	// passes an always-true confirmer explicitly.
	Confirm  func(message string) bool
	Progress restore.Progress
	Logf     func(format string, args ...any)
}

// RestoreOutput contains the result of the Restore operation. Plan is the
// list of files and terminals the editor plugin should enact.
type RestoreOutput struct {
	Result  *restore.Result `json:"-"`
	Plan    *restore.FSHost `json:"plan"`
	Summary string          `json:"summary"`
	Aborted bool            `json:"aborted"`
}

// Restore replays a stored session against the filesystem host.
func Restore(ctx context.Context, database *sql.DB, cfg *config.Config, input RestoreInput) (*RestoreOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	s, err := db.GetSessionByID(database, id)
	if err != nil {
		return nil, err
	}

	host := &restore.FSHost{}
	engine := &restore.Engine{
		Host:     host,
		Progress: input.Progress,
		Confirm:  input.Confirm,
		Logf:     input.Logf,
	}

	result := engine.Restore(s, hostenv.CurrentWorkspace(input.Dir))

	return &RestoreOutput{
		Result:  result,
		Plan:    host,
		Summary: result.Summary(),
		Aborted: result.State == restore.StateAborted,
	}, nil
}
