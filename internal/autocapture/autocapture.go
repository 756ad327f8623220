// Package autocapture snapshots the working context on its own: before a
// detected branch switch and, optionally, after a period of inactivity.
package autocapture

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/worklens/worklens/internal/config"
	"github.com/worklens/worklens/internal/hostenv"
	"github.com/worklens/worklens/internal/session"
)

// titlePrefix marks automatically captured sessions in listings.
const titlePrefix = "[Auto] "

// idleCheckInterval is how often the idle threshold is evaluated, not the
// threshold itself.
const idleCheckInterval = time.Minute

// Service watches the repository and host state and saves sessions
// through the provided Save hook. The hook owns persistence and quota;
// the service owns triggers and its own daily cap.
type Service struct {
	Config    config.AutoCaptureConfig
	Dir       string
	StatePath string
	Save      func(s *session.Session) error

	// Now is injectable for tests. Nil means time.Now.
	Now  func() time.Time
	Logf func(format string, args ...any)

	mu            sync.Mutex
	lastActivity  time.Time
	currentBranch string
	countDate     string
	countToday    int
	cancel        context.CancelFunc
	done          chan struct{}
}

// RecordActivity marks the current moment as the last user activity. The
// idle trigger measures from here.
func (s *Service) RecordActivity() {
	s.mu.Lock()
	s.lastActivity = s.now()
	s.mu.Unlock()
}

// Start launches the watch loop. It returns immediately; Stop or context
// cancellation ends the loop.
func (s *Service) Start(ctx context.Context) {
	if s.Config.Disabled {
		return
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.RecordActivity()
	go s.run(ctx)
}

// Stop ends the watch loop and waits for it to exit.
func (s *Service) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
}

func (s *Service) run(ctx context.Context) {
	defer close(s.done)

	branchTick := time.NewTicker(time.Duration(s.Config.BranchPollSecondsOrDefault()) * time.Second)
	defer branchTick.Stop()
	idleTick := time.NewTicker(idleCheckInterval)
	defer idleTick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-branchTick.C:
			if !s.Config.DisableBranchSwitch {
				s.CheckBranch()
			}
		case <-idleTick.C:
			if s.Config.OnIdle {
				s.CheckIdle()
			}
		}
	}
}

// CheckBranch compares the repository's current branch against the last
// observation and captures when it changed. The first observation only
// seeds the baseline.
func (s *Service) CheckBranch() {
	snap := hostenv.ReadGit(s.Dir)
	if snap == nil || snap.Branch == "" {
		return
	}

	s.mu.Lock()
	prev := s.currentBranch
	s.currentBranch = snap.Branch
	s.mu.Unlock()

	if prev == "" || prev == snap.Branch {
		return
	}

	s.capture(fmt.Sprintf("branch switch %s -> %s", prev, snap.Branch))
}

// CheckIdle captures once the idle threshold has elapsed since the last
// recorded activity, then restarts the clock.
func (s *Service) CheckIdle() {
	threshold := time.Duration(s.Config.IdleMinutesOrDefault()) * time.Minute

	s.mu.Lock()
	last := s.lastActivity
	s.mu.Unlock()

	if last.IsZero() || s.now().Sub(last) < threshold {
		return
	}

	s.capture("idle")
	s.RecordActivity()
}

// capture snapshots the host state and saves it, unless there is nothing
// open or the daily cap is spent.
func (s *Service) capture(trigger string) {
	if !s.takeDailySlot() {
		s.logf("auto-capture skipped (%s): daily cap reached", trigger)
		return
	}

	state, err := hostenv.ReadState(s.StatePath)
	if err != nil {
		s.logf("auto-capture skipped (%s): %v", trigger, err)
		s.releaseDailySlot()
		return
	}
	if len(state.Editors) == 0 {
		s.releaseDailySlot()
		return
	}

	now := s.now()
	sess := &session.Session{
		Title:     titlePrefix + session.GenerateName(hostenv.ReadGit(s.Dir), state.Editors, now),
		Editors:   state.Editors,
		Terminals: state.Terminals,
		Git:       hostenv.ReadGit(s.Dir),
		Workspace: hostenv.CurrentWorkspace(s.Dir),
	}
	if _, err := sess.Stamp(now); err != nil {
		s.logf("auto-capture failed (%s): %v", trigger, err)
		s.releaseDailySlot()
		return
	}

	if err := s.Save(sess); err != nil {
		s.logf("auto-capture failed (%s): %v", trigger, err)
		s.releaseDailySlot()
		return
	}

	s.logf("auto-captured %q (%s)", sess.Title, trigger)
}

// takeDailySlot consumes one capture from today's allowance, resetting the
// counter on the first capture of a new calendar day.
func (s *Service) takeDailySlot() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := s.now().Format("2006-01-02")
	if s.countDate != today {
		s.countDate = today
		s.countToday = 0
	}
	if s.countToday >= s.Config.MaxPerDayOrDefault() {
		return false
	}
	s.countToday++
	return true
}

// releaseDailySlot returns a slot taken for a capture that did not happen.
func (s *Service) releaseDailySlot() {
	s.mu.Lock()
	if s.countToday > 0 {
		s.countToday--
	}
	s.mu.Unlock()
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) logf(format string, args ...any) {
	if s.Logf != nil {
		s.Logf(format, args...)
	}
}
