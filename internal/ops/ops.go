// Package ops implements the operations shared by the CLI, the MCP
// server, and the web UI. Each operation takes an Input struct and
// returns an Output struct; surfaces only translate.
package ops

import (
	"database/sql"

	"github.com/worklens/worklens/internal/config"
	"github.com/worklens/worklens/internal/db"
	"github.com/worklens/worklens/internal/errors"
	"github.com/worklens/worklens/internal/quota"
	"github.com/worklens/worklens/internal/session"
)

// ToolVersion is stamped into export metadata.
const ToolVersion = "0.1.0"

// saveCaptured enforces the capture quota, persists the session, and
// records it against today's counter. Every capture-type creation
// (manual, quick, template apply, auto) funnels through here; import
// does not.
func saveCaptured(database *sql.DB, cfg *config.Config, s *session.Session) error {
	q := quota.New(database)

	decision, err := q.CanCreate()
	if err != nil {
		return err
	}
	if !decision.Allowed {
		return errors.NewQuotaExceeded(decision.Reason)
	}

	if err := insertUnique(database, cfg, s); err != nil {
		return err
	}

	return q.Track()
}

// SaveCaptured persists a session built outside this package through the
// same quota path as the capture operations. The autocapture watcher
// uses it as its Save hook.
func SaveCaptured(database *sql.DB, cfg *config.Config, s *session.Session) error {
	return saveCaptured(database, cfg, s)
}

// insertUnique stores the session, translating an id collision into a
// conflict error.
func insertUnique(database *sql.DB, cfg *config.Config, s *session.Session) error {
	err := db.InsertSession(database, s, cfg.SessionCap())
	if err == db.ErrUniqueConstraint {
		return errors.NewConflict("session id already exists: " + s.ID)
	}
	return err
}
