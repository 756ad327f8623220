package ops

import (
	"context"
	"database/sql"
	"time"

	"github.com/worklens/worklens/internal/config"
	"github.com/worklens/worklens/internal/db"
	"github.com/worklens/worklens/internal/quota"
)

// TierStatusInput contains parameters for the TierStatus operation.
type TierStatusInput struct{}

// TierStatusOutput reports the active tier and how much of its limits are
// used.
type TierStatusOutput struct {
	Tier         quota.Tier   `json:"tier"`
	Limits       quota.Limits `json:"limits"`
	Stored       int          `json:"stored"`
	CreatedToday int          `json:"created_today"`
	TotalCreated int          `json:"total_created"`
}

// TierStatus reports the subscription tier and current usage.
func TierStatus(ctx context.Context, database *sql.DB, cfg *config.Config, input TierStatusInput) (*TierStatusOutput, error) {
	q := quota.New(database)

	tier, err := q.Tier()
	if err != nil {
		return nil, err
	}

	stored, err := db.CountSessions(database)
	if err != nil {
		return nil, err
	}

	out := &TierStatusOutput{
		Tier:   tier,
		Limits: quota.TierLimits(tier),
		Stored: stored,
	}

	usage, err := db.GetUsage(database)
	if err != nil {
		return nil, err
	}
	if usage != nil {
		out.TotalCreated = usage.TotalCreated
		if usage.LastResetDate == time.Now().Format("2006-01-02") {
			out.CreatedToday = usage.CreatedToday
		}
	}

	return out, nil
}

// UpgradeInput contains parameters for the Upgrade operation.
type UpgradeInput struct{}

// UpgradeOutput contains the result of the Upgrade operation.
type UpgradeOutput struct {
	Tier quota.Tier `json:"tier"`
}

// Upgrade activates the pro tier locally.
func Upgrade(ctx context.Context, database *sql.DB, cfg *config.Config, input UpgradeInput) (*UpgradeOutput, error) {
	q := quota.New(database)
	if err := q.ActivatePro(); err != nil {
		return nil, err
	}
	return &UpgradeOutput{Tier: quota.TierPro}, nil
}
