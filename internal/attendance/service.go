package attendance

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/attendance-tracking/internal"
	"github.com/frahmantamala/attendance-tracking/internal/core/events"
	"github.com/frahmantamala/attendance-tracking/internal/settings"
	"github.com/frahmantamala/attendance-tracking/internal/user"
)

// Repository defines the data access methods for attendance records.
type Repository interface {
	Create(rec *Record) error
	GetOpenByUserID(userID int64) (*Record, error)
	// Close writes check_out and duration atomically, guarded on the record
	// still being open. Returns false when another writer closed it first.
	Close(id int64, checkOut time.Time, durationMinutes int64) (bool, error)
	ListOpen() ([]*OpenRecord, error)
	ListByUserID(userID int64, limit, offset int) ([]*Record, error)
	ListBetween(from, to time.Time) ([]*OpenRecord, error)
}

// UserFlags is the slice of the user repository the lifecycle needs.
type UserFlags interface {
	SetLocationEnabled(id int64, enabled bool) error
}

// PolicyProvider supplies the operator-tunable attendance policy.
type PolicyProvider interface {
	Policy() settings.AttendancePolicy
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Service handles the check-in/check-out lifecycle.
type Service struct {
	repo      Repository
	userFlags UserFlags
	policy    PolicyProvider
	bus       EventPublisher
	logger    *slog.Logger
	loc       *time.Location
	now       func() time.Time
}

func NewService(repo Repository, userFlags UserFlags, policy PolicyProvider, bus EventPublisher, loc *time.Location, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		userFlags: userFlags,
		policy:    policy,
		bus:       bus,
		logger:    logger,
		loc:       loc,
		now:       time.Now,
	}
}

// SetNowFunc overrides the clock, for tests.
func (s *Service) SetNowFunc(now func() time.Time) {
	s.now = now
}

// CheckIn opens an attendance record for u. It fails when the role does not
// participate in check-in or when an open record already exists, so the
// at-most-one-open invariant holds.
func (s *Service) CheckIn(ctx context.Context, u *user.User, ip string) (*Record, error) {
	policy := s.policy.Policy()
	if !u.Role.RequiresCheckIn(policy.MasterCheckinRequired) {
		s.logger.Warn("check-in rejected for role", "user_id", u.ID, "role", u.Role)
		return nil, internal.ErrCheckInNotAllowed
	}

	if open, err := s.repo.GetOpenByUserID(u.ID); err == nil && open != nil {
		s.logger.Warn("check-in rejected: already checked in", "user_id", u.ID, "record_id", open.ID)
		return nil, internal.ErrAlreadyCheckedIn
	}

	rec := &Record{
		UserID:  u.ID,
		CheckIn: s.now().In(s.loc),
	}

	if err := s.repo.Create(rec); err != nil {
		s.logger.Error("failed to create attendance record", "error", err, "user_id", u.ID)
		return nil, err
	}

	if err := s.userFlags.SetLocationEnabled(u.ID, true); err != nil {
		s.logger.Error("failed to enable location flag", "error", err, "user_id", u.ID)
	}

	if u.Role.Auditable() && s.bus != nil {
		_ = s.bus.Publish(ctx, events.NewCheckedInEvent(u.ID, u.Username, ip, rec.CheckIn))
	}

	s.logger.Info("user checked in", "user_id", u.ID, "record_id", rec.ID)
	return rec, nil
}

// CheckOut closes the user's open record. The close is a guarded update;
// when a concurrent request already closed the record this call is a no-op
// and reports ErrNotCheckedIn.
func (s *Service) CheckOut(ctx context.Context, u *user.User, ip string, trigger events.CheckedOutTrigger) (*Record, error) {
	open, err := s.repo.GetOpenByUserID(u.ID)
	if err != nil || open == nil {
		return nil, internal.ErrNotCheckedIn
	}

	checkOut := s.now().In(s.loc)
	duration := DurationMinutes(open.CheckIn, checkOut)

	closed, err := s.repo.Close(open.ID, checkOut, duration)
	if err != nil {
		s.logger.Error("failed to close attendance record", "error", err, "user_id", u.ID, "record_id", open.ID)
		return nil, err
	}
	if !closed {
		// lost the race with another close; record is no longer open
		s.logger.Info("attendance record already closed", "user_id", u.ID, "record_id", open.ID)
		return nil, internal.ErrNotCheckedIn
	}

	open.CheckOut = &checkOut
	open.DurationMinutes = &duration

	if err := s.userFlags.SetLocationEnabled(u.ID, false); err != nil {
		s.logger.Error("failed to disable location flag", "error", err, "user_id", u.ID)
	}

	if u.Role.Auditable() && s.bus != nil {
		_ = s.bus.Publish(ctx, events.NewCheckedOutEvent(u.ID, u.Username, ip, trigger, duration))
	}

	s.logger.Info("user checked out",
		"user_id", u.ID,
		"record_id", open.ID,
		"trigger", trigger,
		"duration_minutes", duration)
	return open, nil
}

// IsCheckedIn is the sole source of truth for check-in state: an open
// record exists or it does not.
func (s *Service) IsCheckedIn(userID int64) bool {
	open, err := s.repo.GetOpenByUserID(userID)
	return err == nil && open != nil
}

// ActiveRecords lists every open record with its owner attached.
func (s *Service) ActiveRecords() ([]*OpenRecord, error) {
	records, err := s.repo.ListOpen()
	if err != nil {
		s.logger.Error("failed to list open attendance records", "error", err)
		return nil, err
	}
	return records, nil
}

// RecordsForDay lists all records whose check-in falls on the given local day.
func (s *Service) RecordsForDay(day time.Time) ([]*OpenRecord, error) {
	local := day.In(s.loc)
	from := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.loc)
	to := from.Add(24 * time.Hour)

	records, err := s.repo.ListBetween(from, to)
	if err != nil {
		s.logger.Error("failed to list attendance records for day", "error", err, "day", from)
		return nil, err
	}
	return records, nil
}

// Now exposes the service clock in its configured timezone.
func (s *Service) Now() time.Time {
	return s.now().In(s.loc)
}

func (s *Service) History(userID int64, limit, offset int) ([]*Record, error) {
	records, err := s.repo.ListByUserID(userID, limit, offset)
	if err != nil {
		s.logger.Error("failed to get attendance history", "error", err, "user_id", userID)
		return nil, err
	}
	return records, nil
}
