package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/attendance-tracking/internal/core/events"
	"github.com/frahmantamala/attendance-tracking/internal/user"
)

// Sweeper force-closes open attendance records per the auto-checkout
// policy. Two independent triggers: an elapsed-hours threshold and a fixed
// wall-clock cutoff. Developers are never swept. Errors are logged and
// swallowed; a partial pass is retried naturally on the next tick because
// every close is idempotent.
type Sweeper struct {
	repo      Repository
	userFlags UserFlags
	policy    PolicyProvider
	bus       EventPublisher
	logger    *slog.Logger
	loc       *time.Location
	now       func() time.Time

	lastTick time.Time
}

func NewSweeper(repo Repository, userFlags UserFlags, policy PolicyProvider, bus EventPublisher, loc *time.Location, logger *slog.Logger) *Sweeper {
	s := &Sweeper{
		repo:      repo,
		userFlags: userFlags,
		policy:    policy,
		bus:       bus,
		logger:    logger,
		loc:       loc,
		now:       time.Now,
	}
	s.lastTick = s.now().In(loc)
	return s
}

// SetNowFunc overrides the clock, for tests. It also resets the tick window.
func (s *Sweeper) SetNowFunc(now func() time.Time) {
	s.now = now
	s.lastTick = now().In(s.loc)
}

// RunOnce executes both sweeps. It never panics out to the caller.
func (s *Sweeper) RunOnce(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("sweep panicked", "panic", r)
		}
	}()

	now := s.now().In(s.loc)
	policy := s.policy.Policy()

	if policy.AutoCheckoutEnabled {
		s.sweepElapsedHours(ctx, now, policy.AutoCheckoutHours)
		s.sweepCutoffTime(ctx, now, policy.AutoCheckoutTime)
	}

	s.lastTick = now
}

// sweepElapsedHours closes every open record whose age reached the
// threshold.
func (s *Sweeper) sweepElapsedHours(ctx context.Context, now time.Time, thresholdHours int) {
	if thresholdHours <= 0 {
		return
	}

	open, err := s.repo.ListOpen()
	if err != nil {
		s.logger.Error("elapsed-hours sweep: failed to list open records", "error", err)
		return
	}

	for _, rec := range open {
		if rec.Role == user.RoleDeveloper {
			continue
		}
		if now.Sub(rec.CheckIn).Hours() < float64(thresholdHours) {
			continue
		}
		s.close(ctx, rec, now, events.TriggerHoursSweep)
	}
}

// sweepCutoffTime closes every open record once the configured HH:MM
// passes. The cutoff matches when it falls inside the window since the last
// tick, so a slow tick cannot skip it.
func (s *Sweeper) sweepCutoffTime(ctx context.Context, now time.Time, cutoff string) {
	if cutoff == "" {
		return
	}

	hhmm, err := time.Parse("15:04", cutoff)
	if err != nil {
		s.logger.Warn("cutoff sweep: invalid cutoff time", "cutoff", cutoff)
		return
	}

	if !s.cutoffCrossed(hhmm, now) {
		return
	}

	open, err := s.repo.ListOpen()
	if err != nil {
		s.logger.Error("cutoff sweep: failed to list open records", "error", err)
		return
	}

	for _, rec := range open {
		if rec.Role == user.RoleDeveloper {
			continue
		}
		s.close(ctx, rec, now, events.TriggerTimeSweep)
	}
}

// cutoffCrossed reports whether the cutoff instant lies in (lastTick, now].
// Both the window start's day and the window end's day are considered so a
// window spanning midnight still matches.
func (s *Sweeper) cutoffCrossed(hhmm time.Time, now time.Time) bool {
	for _, day := range []time.Time{s.lastTick, now} {
		cutoff := time.Date(day.Year(), day.Month(), day.Day(), hhmm.Hour(), hhmm.Minute(), 0, 0, s.loc)
		if cutoff.After(s.lastTick) && !cutoff.After(now) {
			return true
		}
	}
	return false
}

// close force-closes one record with duration computed from its own
// check_in. Failures affect only this record.
func (s *Sweeper) close(ctx context.Context, rec *OpenRecord, now time.Time, trigger events.CheckedOutTrigger) {
	duration := DurationMinutes(rec.CheckIn, now)

	closed, err := s.repo.Close(rec.ID, now, duration)
	if err != nil {
		s.logger.Error("sweep: failed to close record",
			"error", err,
			"record_id", rec.ID,
			"user_id", rec.UserID,
			"trigger", trigger)
		return
	}
	if !closed {
		return
	}

	if err := s.userFlags.SetLocationEnabled(rec.UserID, false); err != nil {
		s.logger.Error("sweep: failed to disable location flag", "error", err, "user_id", rec.UserID)
	}

	if s.bus != nil {
		_ = s.bus.Publish(ctx, events.NewCheckedOutEvent(rec.UserID, rec.Username, "", trigger, duration))
	}

	s.logger.Info("sweep closed attendance record",
		"record_id", rec.ID,
		"user_id", rec.UserID,
		"username", rec.Username,
		"trigger", trigger,
		"duration_minutes", duration,
		"checked_in_at", rec.CheckIn.Format(time.RFC3339))
}

// Name identifies the sweeper to the scheduler.
func (s *Sweeper) Name() string {
	return fmt.Sprintf("auto-checkout[%s]", s.loc)
}
