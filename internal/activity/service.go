package activity

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/attendance-tracking/internal/user"
)

// Repository defines the data access methods for activity entries.
type Repository interface {
	Append(e *Entry) error
	// List returns newest-first entries, with rows belonging to
	// non-auditable accounts filtered out.
	List(limit, offset int) ([]*Entry, error)
	DeleteAll() error
}

// Service owns the append-only audit trail.
type Service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// SetNowFunc overrides the clock, for tests.
func (s *Service) SetNowFunc(now func() time.Time) {
	s.now = now
}

// Record appends an entry for a user action. Actions by non-auditable
// accounts are dropped silently so those accounts leave no trail.
func (s *Service) Record(ctx context.Context, actor *user.User, activityType, description, ip string) {
	if actor == nil || !actor.Role.Auditable() {
		return
	}
	s.append(&Entry{
		UserID:       actor.ID,
		ActivityType: activityType,
		Description:  description,
		IP:           ip,
	})
}

// RecordForUserID appends an entry when only the user id is at hand, as with
// bus events. Suppression for non-auditable roles already happened at the
// publishing side.
func (s *Service) RecordForUserID(ctx context.Context, userID int64, activityType, description, ip string) {
	s.append(&Entry{
		UserID:       userID,
		ActivityType: activityType,
		Description:  description,
		IP:           ip,
	})
}

// RecordSystem appends an entry for sweeps and maintenance jobs.
func (s *Service) RecordSystem(ctx context.Context, activityType, description string) {
	s.append(&Entry{
		UserID:       SystemUserID,
		ActivityType: activityType,
		Description:  description,
	})
}

func (s *Service) append(e *Entry) {
	e.CreatedAt = s.now()
	if err := s.repo.Append(e); err != nil {
		s.logger.Error("failed to append activity entry",
			"error", err,
			"activity_type", e.ActivityType,
			"user_id", e.UserID)
	}
}

func (s *Service) List(limit, offset int) ([]*Entry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	entries, err := s.repo.List(limit, offset)
	if err != nil {
		s.logger.Error("failed to list activity entries", "error", err)
		return nil, err
	}
	return entries, nil
}

// Reset wipes the trail and leaves a single system entry marking the wipe.
func (s *Service) Reset(ctx context.Context) error {
	if err := s.repo.DeleteAll(); err != nil {
		s.logger.Error("failed to reset activity log", "error", err)
		return err
	}
	s.RecordSystem(ctx, TypeLogsReset, "activity log cleared")
	s.logger.Info("activity log reset")
	return nil
}
