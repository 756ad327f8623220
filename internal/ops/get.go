package ops

import (
	"context"
	"database/sql"
	"strings"

	"github.com/worklens/worklens/internal/config"
	"github.com/worklens/worklens/internal/db"
	"github.com/worklens/worklens/internal/errors"
	"github.com/worklens/worklens/internal/session"
)

// GetInput contains parameters for the Get operation.
type GetInput struct {
	ID string // required
}

// GetOutput contains the result of the Get operation.
type GetOutput struct {
	Session *session.Session `json:"session"`
}

// Get retrieves a single session by id.
func Get(ctx context.Context, database *sql.DB, cfg *config.Config, input GetInput) (*GetOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	s, err := db.GetSessionByID(database, id)
	if err != nil {
		return nil, err
	}
	return &GetOutput{Session: s}, nil
}
