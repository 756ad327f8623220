package ops

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/worklens/worklens/internal/config"
	"github.com/worklens/worklens/internal/db"
	"github.com/worklens/worklens/internal/errors"
	"github.com/worklens/worklens/internal/session"
)

// ExportVersion is the export file format version. Import accepts files
// with the same major version.
const ExportVersion = "1.0.0"

// ExportFile is the on-disk export document.
type ExportFile struct {
	Version    string            `json:"version"`
	ExportedAt string            `json:"exportedAt"`
	Sessions   []session.Session `json:"sessions"`
	Metadata   ExportMetadata    `json:"metadata"`
}

// ExportMetadata records where an export came from.
type ExportMetadata struct {
	ToolVersion string `json:"tool_version"`
	Platform    string `json:"platform"`
}

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	Path    string   // optional, default: <baseDir>/exports/sessions-<date>.json
	IDs     []string // optional subset; empty exports everything
	BaseDir string
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Path  string `json:"path"`
	Count int    `json:"count"`
}

// Export writes sessions to a versioned JSON file. The write goes to a
// temp file first; an existing file at the destination survives any
// failure.
func Export(ctx context.Context, database *sql.DB, cfg *config.Config, input ExportInput) (*ExportOutput, error) {
	now := time.Now()

	exportPath := input.Path
	if exportPath == "" {
		exportPath = filepath.Join(ExportsDir(input.BaseDir),
			fmt.Sprintf("sessions-%s.json", now.Format("2006-01-02")))
	}

	if err := ValidatePath(exportPath, PathCheckWrite, cfg, input.BaseDir); err != nil {
		return nil, err
	}

	sessions, err := selectForExport(database, input.IDs)
	if err != nil {
		return nil, err
	}

	doc := ExportFile{
		Version:    ExportVersion,
		ExportedAt: now.UTC().Format(time.RFC3339),
		Sessions:   sessions,
		Metadata: ExportMetadata{
			ToolVersion: ToolVersion,
			Platform:    runtime.GOOS,
		},
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	if err := os.MkdirAll(filepath.Dir(exportPath), 0700); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}

	if err := writeAtomic(exportPath, data); err != nil {
		return nil, err
	}

	return &ExportOutput{Path: exportPath, Count: len(sessions)}, nil
}

// selectForExport returns all sessions, or the named subset in the given
// order. A missing id fails the whole export.
func selectForExport(database *sql.DB, ids []string) ([]session.Session, error) {
	if len(ids) == 0 {
		return db.ListSessions(database)
	}

	sessions := make([]session.Session, 0, len(ids))
	for _, id := range ids {
		s, err := db.GetSessionByID(database, id)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	return sessions, nil
}

// writeAtomic writes data through a temp file and renames it into place.
func writeAtomic(path string, data []byte) error {
	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := path + "." + hex.EncodeToString(randBytes) + ".tmp"

	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to write export file: %w", err))
	}

	if info, err := os.Lstat(path); err == nil && info.Mode()&os.ModeSymlink != 0 {
		os.Remove(tempPath)
		return errors.NewInternal(fmt.Errorf("export path is a symlink"))
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return errors.NewInternal(fmt.Errorf("failed to finalize export: %w", err))
	}
	return nil
}
