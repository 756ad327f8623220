package ops

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/worklens/worklens/internal/config"
	"github.com/worklens/worklens/internal/db"
	"github.com/worklens/worklens/internal/errors"
	"github.com/worklens/worklens/internal/session"
	"github.com/worklens/worklens/internal/template"
)

// TemplatesInput contains parameters for the Templates operation.
type TemplatesInput struct {
	Category string // optional filter
}

// TemplatesOutput lists available templates, built-ins first.
type TemplatesOutput struct {
	Templates []template.Template `json:"templates"`
}

// Templates lists the built-in catalogue and any custom templates.
func Templates(ctx context.Context, database *sql.DB, cfg *config.Config, input TemplatesInput) (*TemplatesOutput, error) {
	all, err := template.All(database)
	if err != nil {
		return nil, err
	}

	if input.Category != "" {
		filtered := make([]template.Template, 0, len(all))
		for _, t := range all {
			if t.Category == input.Category {
				filtered = append(filtered, t)
			}
		}
		all = filtered
	}

	return &TemplatesOutput{Templates: all}, nil
}

// ApplyTemplateInput contains parameters for the ApplyTemplate operation.
type ApplyTemplateInput struct {
	ID string // required
}

// ApplyTemplateOutput contains the session created from the template.
type ApplyTemplateOutput struct {
	Session *session.Session `json:"session"`
}

// ApplyTemplate creates a new session from a template's snapshot. It is a
// capture-type creation and counts against the quota.
func ApplyTemplate(ctx context.Context, database *sql.DB, cfg *config.Config, input ApplyTemplateInput) (*ApplyTemplateOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("template id is required")
	}

	t, err := template.Get(database, id)
	if err != nil {
		return nil, err
	}

	s, err := template.Apply(t, time.Now())
	if err != nil {
		return nil, err
	}

	if err := saveCaptured(database, cfg, s); err != nil {
		return nil, err
	}

	return &ApplyTemplateOutput{Session: s}, nil
}

// SaveTemplateInput contains parameters for the SaveTemplate operation.
type SaveTemplateInput struct {
	SessionID   string // required: the session whose arrangement to keep
	Name        string // required
	Description string
	Category    string // one of template.Categories
	Tags        []string
}

// SaveTemplateOutput contains the created template.
type SaveTemplateOutput struct {
	Template *template.Template `json:"template"`
}

// SaveTemplate turns an existing session into a reusable custom template.
func SaveTemplate(ctx context.Context, database *sql.DB, cfg *config.Config, input SaveTemplateInput) (*SaveTemplateOutput, error) {
	sessionID := strings.TrimSpace(input.SessionID)
	if sessionID == "" {
		return nil, errors.NewInvalidRequest("session id is required")
	}

	s, err := db.GetSessionByID(database, sessionID)
	if err != nil {
		return nil, err
	}

	category := input.Category
	if category == "" {
		category = "custom"
	}

	t, err := template.SaveCustom(database, s, input.Name, input.Description, category, input.Tags)
	if err != nil {
		return nil, err
	}

	return &SaveTemplateOutput{Template: t}, nil
}

// DeleteTemplateInput contains parameters for the DeleteTemplate operation.
type DeleteTemplateInput struct {
	ID string // required
}

// DeleteTemplateOutput contains the result of the DeleteTemplate operation.
type DeleteTemplateOutput struct {
	Deleted bool `json:"deleted"`
}

// DeleteTemplate removes a custom template. Built-ins are refused.
func DeleteTemplate(ctx context.Context, database *sql.DB, cfg *config.Config, input DeleteTemplateInput) (*DeleteTemplateOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("template id is required")
	}

	deleted, err := template.DeleteCustom(database, id)
	if err != nil {
		return nil, err
	}
	return &DeleteTemplateOutput{Deleted: deleted}, nil
}
