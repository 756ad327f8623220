package ops

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/worklens/worklens/internal/config"
	"github.com/worklens/worklens/internal/errors"
	"github.com/worklens/worklens/internal/hostenv"
	"github.com/worklens/worklens/internal/session"
)

// CaptureInput contains parameters for the Capture operation.
type CaptureInput struct {
	Title     string // required
	Notes     string
	Tags      []string
	Dir       string // directory whose git/workspace context is captured
	StatePath string // host state file location
}

// CaptureOutput contains the result of the Capture operation.
type CaptureOutput struct {
	Session *session.Session `json:"session"`
}

// Capture snapshots the current environment under a caller-supplied
// title. The surface owns prompting; an empty title here is a request
// error, not a prompt.
func Capture(ctx context.Context, database *sql.DB, cfg *config.Config, input CaptureInput) (*CaptureOutput, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, errors.NewInvalidRequest("title is required")
	}

	s, err := captureCurrent(input.Dir, input.StatePath, time.Now())
	if err != nil {
		return nil, err
	}
	s.Title = title
	s.Notes = input.Notes
	s.Tags = input.Tags

	if err := saveCaptured(database, cfg, s); err != nil {
		return nil, err
	}

	return &CaptureOutput{Session: s}, nil
}

// captureCurrent reads the host state, git, and workspace context into a
// stamped session with no title.
func captureCurrent(dir, statePath string, now time.Time) (*session.Session, error) {
	state, err := hostenv.ReadState(statePath)
	if err != nil {
		return nil, err
	}

	s := &session.Session{
		Editors:   state.Editors,
		Terminals: state.Terminals,
		Git:       hostenv.ReadGit(dir),
		Workspace: hostenv.CurrentWorkspace(dir),
	}
	if _, err := s.Stamp(now); err != nil {
		return nil, errors.NewInternal(err)
	}
	return s, nil
}
