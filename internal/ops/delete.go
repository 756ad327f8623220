package ops

import (
	"context"
	"database/sql"
	"strings"

	"github.com/worklens/worklens/internal/config"
	"github.com/worklens/worklens/internal/db"
	"github.com/worklens/worklens/internal/errors"
)

// DeleteInput contains parameters for the Delete operation.
type DeleteInput struct {
	ID string // required
}

// DeleteOutput contains the result of the Delete operation. Deleting an
// id that is already gone is not an error; Deleted reports what happened.
type DeleteOutput struct {
	Deleted   bool `json:"deleted"`
	Remaining int  `json:"remaining"`
}

// Delete removes a session by id.
func Delete(ctx context.Context, database *sql.DB, cfg *config.Config, input DeleteInput) (*DeleteOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	deleted, remaining, err := db.DeleteSession(database, id)
	if err != nil {
		return nil, err
	}
	return &DeleteOutput{Deleted: deleted, Remaining: remaining}, nil
}
