package location

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/attendance-tracking/internal"
	"github.com/frahmantamala/attendance-tracking/internal/user"
)

// Repository defines the data access methods for location samples.
type Repository interface {
	Append(s *Sample) error
	LatestByUserID(userID int64) (*Sample, error)
	DeleteOlderThan(cutoff time.Time) (int64, error)
	DeleteByUserID(userID int64) error
	DeleteAll() error
}

// AttendanceChecker reports whether a user currently has an open record.
type AttendanceChecker interface {
	IsCheckedIn(userID int64) bool
}

// UserGetter resolves users, for username lookups against the remote service.
type UserGetter interface {
	GetByID(id int64) (*user.User, error)
}

// Service owns the location trail. The local sample table is the source of
// truth; the external tracking service is a best-effort mirror.
type Service struct {
	repo      Repository
	attend    AttendanceChecker
	users     UserGetter
	remote    *Client
	geocoder  *Geocoder
	retention time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(repo Repository, attend AttendanceChecker, users UserGetter, remote *Client, geocoder *Geocoder, retention time.Duration, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		attend:    attend,
		users:     users,
		remote:    remote,
		geocoder:  geocoder,
		retention: retention,
		logger:    logger,
		now:       time.Now,
	}
}

// SetNowFunc overrides the clock, for tests.
func (s *Service) SetNowFunc(now func() time.Time) {
	s.now = now
}

// UpdateLocation appends a sample for a checked-in user with tracking
// enabled, then mirrors it to the remote service if one is configured. A
// mirror failure never fails the update.
func (s *Service) UpdateLocation(ctx context.Context, u *user.User, dto UpdateLocationDTO) (*Sample, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	if !u.LocationEnabled || !s.attend.IsCheckedIn(u.ID) {
		s.logger.Warn("location update rejected: tracking disabled", "user_id", u.ID)
		return nil, internal.ErrLocationDisabled
	}

	sample := &Sample{
		UserID:     u.ID,
		Latitude:   dto.Latitude,
		Longitude:  dto.Longitude,
		RecordedAt: s.now(),
	}

	if err := s.repo.Append(sample); err != nil {
		s.logger.Error("failed to store location sample", "error", err, "user_id", u.ID)
		return nil, err
	}

	if s.remote != nil && s.remote.Enabled() {
		if err := s.remote.PushLocation(ctx, u.Username, dto.Latitude, dto.Longitude); err != nil {
			s.logger.Warn("failed to mirror location to remote service", "error", err, "user_id", u.ID)
		}
	}

	return sample, nil
}

// LastLocation returns the newest sample for a user, falling back to the
// remote service when the local trail is empty.
func (s *Service) LastLocation(ctx context.Context, userID int64) (*Sample, error) {
	sample, err := s.repo.LatestByUserID(userID)
	if err == nil && sample != nil {
		return sample, nil
	}

	if s.remote != nil && s.remote.Enabled() {
		u, uerr := s.users.GetByID(userID)
		if uerr == nil {
			remote, rerr := s.remote.FetchLocation(ctx, u.Username)
			if rerr != nil {
				s.logger.Warn("remote location lookup failed", "error", rerr, "user_id", userID)
			} else if remote != nil {
				return &Sample{
					UserID:     userID,
					Latitude:   remote.Latitude,
					Longitude:  remote.Longitude,
					RecordedAt: s.now(),
				}, nil
			}
		}
	}

	return nil, internal.ErrNoLocationData
}

// Address resolves coordinates to a display address, degrading to unknown.
func (s *Service) Address(ctx context.Context, lat, lng float64) string {
	if s.geocoder == nil {
		return AddressUnknown
	}
	return s.geocoder.ReverseGeocode(ctx, lat, lng)
}

// Purge drops samples older than the retention window and reports how many
// went away.
func (s *Service) Purge(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.retention)
	deleted, err := s.repo.DeleteOlderThan(cutoff)
	if err != nil {
		s.logger.Error("location purge failed", "error", err)
		return 0, err
	}
	if deleted > 0 {
		s.logger.Info("purged old location samples", "deleted", deleted, "cutoff", cutoff)
	}
	return deleted, nil
}

// ResetAll wipes the entire location trail for every user.
func (s *Service) ResetAll(ctx context.Context) error {
	if err := s.repo.DeleteAll(); err != nil {
		s.logger.Error("failed to reset location samples", "error", err)
		return err
	}
	s.logger.Info("location samples reset")
	return nil
}

// ResetForUser wipes one user's trail, used when an account is removed.
func (s *Service) ResetForUser(ctx context.Context, userID int64) error {
	return s.repo.DeleteByUserID(userID)
}

// Name identifies the purge job in scheduler logs.
func (s *Service) Name() string { return "location_purge" }

// RunOnce lets the scheduler drive retention alongside the attendance sweeps.
func (s *Service) RunOnce(ctx context.Context) {
	if _, err := s.Purge(ctx); err != nil {
		s.logger.Error("scheduled location purge failed", "error", err)
	}
}
