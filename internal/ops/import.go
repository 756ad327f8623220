package ops

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/worklens/worklens/internal/config"
	"github.com/worklens/worklens/internal/db"
	"github.com/worklens/worklens/internal/errors"
	"github.com/worklens/worklens/internal/session"
)

// ImportInput contains parameters for the Import operation.
type ImportInput struct {
	Path    string // required
	BaseDir string
}

// ImportOutput contains the result of the Import operation.
type ImportOutput struct {
	Imported int      `json:"imported"`
	IDs      []string `json:"ids"`
}

// Import reads a versioned export file and stores every session in it,
// all-or-nothing. Imported sessions keep their captured timestamps but
// receive fresh ids, so re-importing the same file never collides.
// Import does not count against the daily capture quota.
func Import(ctx context.Context, database *sql.DB, cfg *config.Config, input ImportInput) (*ImportOutput, error) {
	if err := ValidatePath(input.Path, PathCheckRead, cfg, input.BaseDir); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(input.Path)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	var doc ExportFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.NewImportInvalid("file is not valid JSON: " + err.Error())
	}

	if err := validateImport(&doc); err != nil {
		return nil, err
	}

	ids := make([]string, len(doc.Sessions))
	for i := range doc.Sessions {
		id, err := session.NewID()
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		doc.Sessions[i].ID = id
		ids[i] = id
	}

	if err := db.InsertSessions(database, doc.Sessions, cfg.SessionCap()); err != nil {
		return nil, err
	}

	return &ImportOutput{Imported: len(doc.Sessions), IDs: ids}, nil
}

// validateImport checks the envelope and every session before anything is
// written.
func validateImport(doc *ExportFile) error {
	if doc.Version == "" {
		return errors.NewImportInvalid("missing version field")
	}
	if !sameMajorVersion(doc.Version, ExportVersion) {
		return errors.NewImportInvalid(
			fmt.Sprintf("unsupported export version %q (supported: %s)", doc.Version, ExportVersion))
	}
	if doc.Sessions == nil {
		return errors.NewImportInvalid("missing sessions field")
	}

	for i := range doc.Sessions {
		s := &doc.Sessions[i]
		if strings.TrimSpace(s.Title) == "" {
			return errors.NewImportInvalid(fmt.Sprintf("session %d has no title", i))
		}
		if _, err := time.Parse(time.RFC3339Nano, s.Timestamp); err != nil {
			return errors.NewImportInvalid(fmt.Sprintf("session %d has a malformed timestamp", i))
		}
		if s.Editors == nil {
			s.Editors = []session.Editor{}
		}
		if s.Terminals == nil {
			s.Terminals = []session.Terminal{}
		}
	}
	return nil
}

// sameMajorVersion compares the leading component of two dotted versions.
func sameMajorVersion(a, b string) bool {
	majorA, _, _ := strings.Cut(a, ".")
	majorB, _, _ := strings.Cut(b, ".")
	return majorA == majorB
}
