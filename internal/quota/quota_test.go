package quota

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/worklens/worklens/internal/db"
	"github.com/worklens/worklens/internal/session"
)

func testService(t *testing.T) (*Service, *sql.DB) {
	t.Helper()
	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("db.Init failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return New(database), database
}

func insertSessions(t *testing.T, database *sql.DB, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		s := &session.Session{
			ID:        fmt.Sprintf("%03d", i),
			Title:     "s",
			Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
			Editors:   []session.Editor{},
			Terminals: []session.Terminal{},
		}
		if err := db.InsertSession(database, s, 100); err != nil {
			t.Fatalf("InsertSession failed: %v", err)
		}
	}
}

func TestCanCreate_FreshStoreAllows(t *testing.T) {
	svc, _ := testService(t)

	d, err := svc.CanCreate()
	if err != nil {
		t.Fatalf("CanCreate failed: %v", err)
	}
	if !d.Allowed {
		t.Errorf("denied: %s", d.Reason)
	}
}

func TestCanCreate_DailyLimit(t *testing.T) {
	svc, _ := testService(t)

	for i := 0; i < 10; i++ {
		if err := svc.Track(); err != nil {
			t.Fatalf("Track failed: %v", err)
		}
	}

	d, err := svc.CanCreate()
	if err != nil {
		t.Fatalf("CanCreate failed: %v", err)
	}
	if d.Allowed {
		t.Error("allowed after 10 captures on free tier, want denied")
	}
	if d.Reason == "" {
		t.Error("denial must carry a user-facing reason")
	}
}

func TestCanCreate_DailyCounterResetsNextDay(t *testing.T) {
	svc, _ := testService(t)

	day1 := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	svc.Now = func() time.Time { return day1 }
	for i := 0; i < 10; i++ {
		if err := svc.Track(); err != nil {
			t.Fatalf("Track failed: %v", err)
		}
	}

	svc.Now = func() time.Time { return day1.AddDate(0, 0, 1) }
	d, err := svc.CanCreate()
	if err != nil {
		t.Fatalf("CanCreate failed: %v", err)
	}
	if !d.Allowed {
		t.Errorf("denied on the next day: %s", d.Reason)
	}
}

func TestCanCreate_StorageLimit(t *testing.T) {
	svc, database := testService(t)

	insertSessions(t, database, 50)

	d, err := svc.CanCreate()
	if err != nil {
		t.Fatalf("CanCreate failed: %v", err)
	}
	if d.Allowed {
		t.Error("allowed with 50 stored sessions on free tier, want denied")
	}
}

func TestCanCreate_ProTierUnlimited(t *testing.T) {
	svc, database := testService(t)

	if err := svc.ActivatePro(); err != nil {
		t.Fatalf("ActivatePro failed: %v", err)
	}

	insertSessions(t, database, 60)
	for i := 0; i < 30; i++ {
		if err := svc.Track(); err != nil {
			t.Fatalf("Track failed: %v", err)
		}
	}

	d, err := svc.CanCreate()
	if err != nil {
		t.Fatalf("CanCreate failed: %v", err)
	}
	if !d.Allowed {
		t.Errorf("pro tier denied: %s", d.Reason)
	}
}

func TestTierLimits(t *testing.T) {
	free := TierLimits(TierFree)
	if free.MaxSessions != 50 || free.MaxSessionsPerDay != 10 || free.AutoCapture {
		t.Errorf("free limits = %+v", free)
	}

	pro := TierLimits(TierPro)
	if pro.MaxSessions != Unlimited || !pro.AutoCapture || pro.TeamSharing {
		t.Errorf("pro limits = %+v", pro)
	}

	team := TierLimits(TierTeam)
	if !team.TeamSharing {
		t.Errorf("team limits = %+v", team)
	}

	if TierLimits(Tier("unknown")).MaxSessionsPerDay != 10 {
		t.Error("unknown tier should fall back to free limits")
	}
}
