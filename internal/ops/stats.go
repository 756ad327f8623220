package ops

import (
	"context"
	"database/sql"
	"time"

	"github.com/worklens/worklens/internal/analytics"
	"github.com/worklens/worklens/internal/config"
	"github.com/worklens/worklens/internal/db"
)

// StatsInput contains parameters for the Stats operation.
type StatsInput struct{}

// StatsOutput contains the computed metrics and the rendered report.
type StatsOutput struct {
	Metrics analytics.Metrics `json:"metrics"`
	Report  string            `json:"report"`
}

// Stats aggregates productivity metrics over the stored history.
func Stats(ctx context.Context, database *sql.DB, cfg *config.Config, input StatsInput) (*StatsOutput, error) {
	sessions, err := db.ListSessions(database)
	if err != nil {
		return nil, err
	}

	metrics := analytics.Compute(sessions, time.Now())
	return &StatsOutput{Metrics: metrics, Report: metrics.Report()}, nil
}
