package ops

import (
	"context"
	"database/sql"
	"time"

	"github.com/worklens/worklens/internal/config"
	"github.com/worklens/worklens/internal/session"
)

// QuickInput contains parameters for the Quick capture operation.
type QuickInput struct {
	Dir       string
	StatePath string
}

// QuickOutput contains the result of the Quick capture operation.
type QuickOutput struct {
	Session *session.Session `json:"session"`
}

// Quick captures the current environment with a generated title and no
// prompting at all.
func Quick(ctx context.Context, database *sql.DB, cfg *config.Config, input QuickInput) (*QuickOutput, error) {
	now := time.Now()

	s, err := captureCurrent(input.Dir, input.StatePath, now)
	if err != nil {
		return nil, err
	}
	s.Title = session.GenerateName(s.Git, s.Editors, now)

	if err := saveCaptured(database, cfg, s); err != nil {
		return nil, err
	}

	return &QuickOutput{Session: s}, nil
}
