package db

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/worklens/worklens/internal/errors"
)

// TemplateRow is the persisted form of a custom session template. The
// snapshot is stored opaquely as JSON; the template package owns its shape.
type TemplateRow struct {
	ID           string
	Name         string
	Description  string
	Category     string
	Tags         []string
	SnapshotJSON string
	CreatedAt    int64
}

// Usage is the daily capture counter record.
type Usage struct {
	CreatedToday  int
	TotalCreated  int
	LastResetDate string
}

// Subscription is the stored tier record.
type Subscription struct {
	Tier      string
	ExpiresAt string
}

// InsertTemplate stores a custom template.
func InsertTemplate(database *sql.DB, t *TemplateRow) error {
	var tagsJSON sql.NullString
	if len(t.Tags) > 0 {
		data, err := json.Marshal(t.Tags)
		if err != nil {
			return errors.NewInternal(err)
		}
		tagsJSON = sql.NullString{String: string(data), Valid: true}
	}

	query := `
		INSERT INTO templates (id, name, description, category, tags_json, snapshot_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := database.Exec(query,
		t.ID, t.Name, toNullString(t.Description), t.Category,
		tagsJSON, t.SnapshotJSON, time.Now().UnixNano(),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrUniqueConstraint
		}
		return errors.NewInternal(err)
	}
	return nil
}

// ListTemplates returns all custom templates in creation order.
func ListTemplates(database *sql.DB) ([]TemplateRow, error) {
	rows, err := database.Query(`
		SELECT id, name, description, category, tags_json, snapshot_json, created_at
		FROM templates
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	templates := []TemplateRow{}
	for rows.Next() {
		var (
			t           TemplateRow
			description sql.NullString
			tagsJSON    sql.NullString
		)
		if err := rows.Scan(&t.ID, &t.Name, &description, &t.Category, &tagsJSON, &t.SnapshotJSON, &t.CreatedAt); err != nil {
			return nil, errors.NewInternal(err)
		}
		t.Description = description.String
		if tagsJSON.Valid && tagsJSON.String != "" {
			if err := json.Unmarshal([]byte(tagsJSON.String), &t.Tags); err != nil {
				return nil, errors.NewInternal(err)
			}
		}
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}

	return templates, nil
}

// DeleteTemplate removes a custom template. Returns false when no row matched.
func DeleteTemplate(database *sql.DB, id string) (bool, error) {
	result, err := database.Exec("DELETE FROM templates WHERE id = ?", id)
	if err != nil {
		return false, errors.NewInternal(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, errors.NewInternal(err)
	}
	return affected > 0, nil
}

// GetUsage returns the usage counter record, or nil when none exists yet.
func GetUsage(database *sql.DB) (*Usage, error) {
	var u Usage
	err := database.QueryRow(
		"SELECT created_today, total_created, last_reset_date FROM usage WHERE id = 1",
	).Scan(&u.CreatedToday, &u.TotalCreated, &u.LastResetDate)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return &u, nil
}

// PutUsage upserts the usage counter record.
func PutUsage(database *sql.DB, u *Usage) error {
	query := `
		INSERT INTO usage (id, created_today, total_created, last_reset_date)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			created_today = excluded.created_today,
			total_created = excluded.total_created,
			last_reset_date = excluded.last_reset_date
	`
	if _, err := database.Exec(query, u.CreatedToday, u.TotalCreated, u.LastResetDate); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// GetSubscription returns the stored tier record, or nil for the default
// free tier.
func GetSubscription(database *sql.DB) (*Subscription, error) {
	var (
		s         Subscription
		expiresAt sql.NullString
	)
	err := database.QueryRow("SELECT tier, expires_at FROM subscription WHERE id = 1").
		Scan(&s.Tier, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	s.ExpiresAt = expiresAt.String
	return &s, nil
}

// PutSubscription upserts the tier record.
func PutSubscription(database *sql.DB, s *Subscription) error {
	query := `
		INSERT INTO subscription (id, tier, expires_at)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			tier = excluded.tier,
			expires_at = excluded.expires_at
	`
	if _, err := database.Exec(query, s.Tier, toNullString(s.ExpiresAt)); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}
