package ops

import (
	"context"
	"database/sql"
	"strings"

	"github.com/worklens/worklens/internal/config"
	"github.com/worklens/worklens/internal/db"
	"github.com/worklens/worklens/internal/errors"
)

// AddNoteInput contains parameters for the AddNote operation.
type AddNoteInput struct {
	ID    string // required
	Notes string
}

// AddNoteOutput contains the result of the AddNote operation.
type AddNoteOutput struct {
	Updated bool `json:"updated"`
}

// AddNote attaches (or replaces) the free-text note on a session. The
// note is the only mutable field after capture.
func AddNote(ctx context.Context, database *sql.DB, cfg *config.Config, input AddNoteInput) (*AddNoteOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	updated, err := db.SetNotes(database, id, input.Notes)
	if err != nil {
		return nil, err
	}
	return &AddNoteOutput{Updated: updated}, nil
}
