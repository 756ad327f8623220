// Package template manages reusable session templates: a fixed built-in
// catalogue plus user-created templates persisted alongside sessions.
package template

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/worklens/worklens/internal/db"
	"github.com/worklens/worklens/internal/errors"
	"github.com/worklens/worklens/internal/session"
)

// Template is a named, reusable partial session.
type Template struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags,omitempty"`
	BuiltIn     bool     `json:"built_in"`
	Snapshot    Snapshot `json:"snapshot"`
}

// Snapshot is a session without identity: applying a template stamps a
// fresh id and timestamp onto a copy of these fields.
type Snapshot struct {
	Title     string                 `json:"title"`
	Editors   []session.Editor       `json:"editors"`
	Terminals []session.Terminal     `json:"terminals"`
	Git       *session.GitSnapshot   `json:"git,omitempty"`
	Workspace *session.WorkspaceInfo `json:"workspace,omitempty"`
	Notes     string                 `json:"notes,omitempty"`
}

// Categories accepted for custom templates.
var Categories = []string{"frontend", "backend", "fullstack", "debugging", "custom"}

// BuiltIns returns the fixed built-in template catalogue. Callers receive
// a fresh slice each time; the catalogue itself is immutable.
func BuiltIns() []Template {
	return []Template{
		{
			ID:          "react-component",
			Name:        "React Component Development",
			Description: "Standard setup for developing React components",
			Category:    "frontend",
			Tags:        []string{"react", "frontend", "component"},
			BuiltIn:     true,
			Snapshot: Snapshot{
				Title: "React Component Work",
				Editors: []session.Editor{
					{Path: "src/components/Component.tsx", Cursor: &session.Cursor{Line: 1, Col: 0}},
					{Path: "src/components/Component.test.tsx"},
					{Path: "src/styles/Component.css"},
				},
				Terminals: []session.Terminal{
					{Name: "dev-server", LastCommand: "npm run dev"},
					{Name: "test-watch", LastCommand: "npm run test:watch"},
				},
				Notes: "Component development session",
			},
		},
		{
			ID:          "api-debugging",
			Name:        "API Debugging Session",
			Description: "Setup for debugging backend APIs",
			Category:    "debugging",
			Tags:        []string{"api", "backend", "debugging"},
			BuiltIn:     true,
			Snapshot: Snapshot{
				Title: "API Debug Session",
				Editors: []session.Editor{
					{Path: "src/api/routes.ts", Cursor: &session.Cursor{Line: 1, Col: 0}},
					{Path: "src/api/controllers.ts"},
					{Path: "logs/error.log"},
				},
				Terminals: []session.Terminal{
					{Name: "server", LastCommand: "npm run dev"},
					{Name: "logs", LastCommand: "tail -f logs/error.log"},
					{Name: "curl-tests"},
				},
				Notes: "Debugging API endpoints",
			},
		},
		{
			ID:          "fullstack-feature",
			Name:        "Full-Stack Feature",
			Description: "Complete setup for full-stack feature development",
			Category:    "fullstack",
			Tags:        []string{"fullstack", "feature", "development"},
			BuiltIn:     true,
			Snapshot: Snapshot{
				Title: "Full-Stack Feature",
				Editors: []session.Editor{
					{Path: "src/frontend/components/Feature.tsx"},
					{Path: "src/backend/api/feature.ts"},
					{Path: "src/backend/models/Feature.ts"},
					{Path: "README.md"},
				},
				Terminals: []session.Terminal{
					{Name: "frontend", LastCommand: "npm run dev"},
					{Name: "backend", LastCommand: "npm run server"},
					{Name: "db", LastCommand: "docker-compose up"},
				},
				Notes: "Full-stack feature development",
			},
		},
		{
			ID:          "bug-fix",
			Name:        "Bug Fix Investigation",
			Description: "Template for investigating and fixing bugs",
			Category:    "debugging",
			Tags:        []string{"bugfix", "debugging", "investigation"},
			BuiltIn:     true,
			Snapshot: Snapshot{
				Title: "Bug Investigation",
				Editors: []session.Editor{
					{Path: "REPRODUCE_BUG.md", Cursor: &session.Cursor{Line: 1, Col: 0}},
				},
				Terminals: []session.Terminal{
					{Name: "main"},
					{Name: "test", LastCommand: "npm test"},
				},
				Notes: "Investigating reported bug",
			},
		},
	}
}

// All returns built-in templates followed by custom ones.
func All(database *sql.DB) ([]Template, error) {
	custom, err := Customs(database)
	if err != nil {
		return nil, err
	}
	return append(BuiltIns(), custom...), nil
}

// Customs returns user-created templates in creation order.
func Customs(database *sql.DB) ([]Template, error) {
	rows, err := db.ListTemplates(database)
	if err != nil {
		return nil, err
	}

	templates := make([]Template, 0, len(rows))
	for _, row := range rows {
		var snap Snapshot
		if err := json.Unmarshal([]byte(row.SnapshotJSON), &snap); err != nil {
			return nil, errors.NewInternal(err)
		}
		templates = append(templates, Template{
			ID:          row.ID,
			Name:        row.Name,
			Description: row.Description,
			Category:    row.Category,
			Tags:        row.Tags,
			Snapshot:    snap,
		})
	}
	return templates, nil
}

// Get finds a template by id, built-in or custom.
func Get(database *sql.DB, id string) (*Template, error) {
	for _, t := range BuiltIns() {
		if t.ID == id {
			return &t, nil
		}
	}

	custom, err := Customs(database)
	if err != nil {
		return nil, err
	}
	for _, t := range custom {
		if t.ID == id {
			return &t, nil
		}
	}

	return nil, errors.NewNotFound(id)
}

// SaveCustom persists a session's arrangement as a reusable template.
func SaveCustom(database *sql.DB, s *session.Session, name, description, category string, tags []string) (*Template, error) {
	if name == "" {
		return nil, errors.NewInvalidRequest("template name is required")
	}
	if !validCategory(category) {
		return nil, errors.NewInvalidRequest("category must be one of: frontend, backend, fullstack, debugging, custom")
	}

	id, err := session.NewID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	t := Template{
		ID:          "custom-" + id,
		Name:        name,
		Description: description,
		Category:    category,
		Tags:        tags,
		Snapshot: Snapshot{
			Title:     s.Title,
			Editors:   s.Editors,
			Terminals: s.Terminals,
			Git:       s.Git,
			Workspace: s.Workspace,
			Notes:     s.Notes,
		},
	}

	snapJSON, err := json.Marshal(t.Snapshot)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	row := &db.TemplateRow{
		ID:           t.ID,
		Name:         t.Name,
		Description:  t.Description,
		Category:     t.Category,
		Tags:         t.Tags,
		SnapshotJSON: string(snapJSON),
	}
	if err := db.InsertTemplate(database, row); err != nil {
		return nil, err
	}

	return &t, nil
}

// DeleteCustom removes a custom template. Built-in templates cannot be
// deleted.
func DeleteCustom(database *sql.DB, id string) (bool, error) {
	for _, t := range BuiltIns() {
		if t.ID == id {
			return false, errors.NewInvalidRequest("built-in templates cannot be deleted")
		}
	}
	return db.DeleteTemplate(database, id)
}

// Apply produces a fresh session from the template's snapshot. It does not
// consult the live environment: no capture occurs.
func Apply(t *Template, now time.Time) (*session.Session, error) {
	s := &session.Session{
		Title:     t.Snapshot.Title,
		Editors:   append([]session.Editor(nil), t.Snapshot.Editors...),
		Terminals: append([]session.Terminal(nil), t.Snapshot.Terminals...),
		Git:       t.Snapshot.Git,
		Workspace: t.Snapshot.Workspace,
		Notes:     t.Snapshot.Notes,
		Tags:      append([]string(nil), t.Tags...),
	}
	if s.Title == "" {
		s.Title = t.Name
	}
	if s.Editors == nil {
		s.Editors = []session.Editor{}
	}
	if s.Terminals == nil {
		s.Terminals = []session.Terminal{}
	}

	if _, err := s.Stamp(now); err != nil {
		return nil, errors.NewInternal(err)
	}
	return s, nil
}

func validCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}
