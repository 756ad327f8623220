// Package quota implements the free/paid tier model and the daily capture
// counter. The check is enforced at the store boundary for capture-type
// creations; import and restore never consult it.
package quota

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/worklens/worklens/internal/db"
)

// Tier is a subscription tier name.
type Tier string

const (
	TierFree Tier = "free"
	TierPro  Tier = "pro"
	TierTeam Tier = "team"
)

// Unlimited marks a limit that never denies.
const Unlimited = -1

// Limits are the per-tier caps and feature switches.
type Limits struct {
	MaxSessions       int
	MaxSessionsPerDay int
	AutoCapture       bool
	TeamSharing       bool
}

// TierLimits returns the limit set for a tier. Unknown tiers get the free
// limits.
func TierLimits(t Tier) Limits {
	switch t {
	case TierPro:
		return Limits{
			MaxSessions:       Unlimited,
			MaxSessionsPerDay: Unlimited,
			AutoCapture:       true,
		}
	case TierTeam:
		return Limits{
			MaxSessions:       Unlimited,
			MaxSessionsPerDay: Unlimited,
			AutoCapture:       true,
			TeamSharing:       true,
		}
	default:
		return Limits{
			MaxSessions:       50,
			MaxSessionsPerDay: 10,
		}
	}
}

// Decision is the outcome of a quota check. Denial is a value, not an
// error; the caller presents Reason to the user.
type Decision struct {
	Allowed bool
	Reason  string
}

// Service reads and maintains the tier and usage records.
type Service struct {
	DB *sql.DB

	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

// New creates a quota service over the given database.
func New(database *sql.DB) *Service {
	return &Service{DB: database, Now: time.Now}
}

// Tier returns the active subscription tier (free when none is stored).
func (s *Service) Tier() (Tier, error) {
	sub, err := db.GetSubscription(s.DB)
	if err != nil {
		return TierFree, err
	}
	if sub == nil {
		return TierFree, nil
	}
	return Tier(sub.Tier), nil
}

// CanCreate reports whether a new session may be captured right now.
// It denies when the daily-created count or the stored-session count has
// reached the tier limit; -1 limits always allow.
func (s *Service) CanCreate() (Decision, error) {
	tier, err := s.Tier()
	if err != nil {
		return Decision{}, err
	}
	limits := TierLimits(tier)

	usage, err := s.usage()
	if err != nil {
		return Decision{}, err
	}

	if limits.MaxSessionsPerDay != Unlimited && usage.CreatedToday >= limits.MaxSessionsPerDay {
		return Decision{
			Allowed: false,
			Reason: fmt.Sprintf("Daily limit reached (%d sessions). Upgrade to Pro for unlimited captures.",
				limits.MaxSessionsPerDay),
		}, nil
	}

	if limits.MaxSessions != Unlimited {
		total, err := db.CountSessions(s.DB)
		if err != nil {
			return Decision{}, err
		}
		if total >= limits.MaxSessions {
			return Decision{
				Allowed: false,
				Reason: fmt.Sprintf("Storage limit reached (%d sessions). Upgrade to Pro for unlimited storage.",
					limits.MaxSessions),
			}, nil
		}
	}

	return Decision{Allowed: true}, nil
}

// Track records one session creation against today's counter.
func (s *Service) Track() error {
	usage, err := s.usage()
	if err != nil {
		return err
	}
	usage.CreatedToday++
	usage.TotalCreated++
	return db.PutUsage(s.DB, usage)
}

// ActivatePro switches the subscription to the pro tier for one year.
func (s *Service) ActivatePro() error {
	expires := s.Now().AddDate(1, 0, 0).UTC().Format(time.RFC3339)
	return db.PutSubscription(s.DB, &db.Subscription{Tier: string(TierPro), ExpiresAt: expires})
}

// usage returns today's usage record, resetting the daily counter when the
// stored date is not today.
func (s *Service) usage() (*db.Usage, error) {
	stored, err := db.GetUsage(s.DB)
	if err != nil {
		return nil, err
	}

	today := s.Now().Format("2006-01-02")
	if stored == nil || stored.LastResetDate != today {
		fresh := &db.Usage{
			CreatedToday:  0,
			LastResetDate: today,
		}
		if stored != nil {
			fresh.TotalCreated = stored.TotalCreated
		}
		if err := db.PutUsage(s.DB, fresh); err != nil {
			return nil, err
		}
		return fresh, nil
	}

	return stored, nil
}
