package admin

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/attendance-tracking/internal/activity"
	"github.com/frahmantamala/attendance-tracking/internal/attendance"
	"github.com/frahmantamala/attendance-tracking/internal/location"
	"github.com/frahmantamala/attendance-tracking/internal/settings"
	"github.com/frahmantamala/attendance-tracking/internal/user"
)

// UserManager is the slice of the user service the admin surface drives.
type UserManager interface {
	CreateUser(dto user.CreateUserDTO) (*user.User, error)
	GetByID(id int64) (*user.User, error)
	ListForViewer(viewer user.Role) ([]*user.User, error)
	DeleteUser(id int64) error
	ResetDevice(id int64) error
}

// AttendanceViewer exposes the live and historical attendance views.
type AttendanceViewer interface {
	ActiveRecords() ([]*attendance.OpenRecord, error)
	RecordsForDay(day time.Time) ([]*attendance.OpenRecord, error)
	Now() time.Time
}

// LocationViewer exposes position lookups and resets.
type LocationViewer interface {
	LastLocation(ctx context.Context, userID int64) (*location.Sample, error)
	Address(ctx context.Context, lat, lng float64) string
	ResetAll(ctx context.Context) error
	ResetForUser(ctx context.Context, userID int64) error
}

// ActivityTrail exposes the audit trail.
type ActivityTrail interface {
	List(limit, offset int) ([]*activity.Entry, error)
	Record(ctx context.Context, actor *user.User, activityType, description, ip string)
	Reset(ctx context.Context) error
}

// SettingsStore exposes the operator-tunable configuration.
type SettingsStore interface {
	GetAll() ([]settings.Setting, error)
	Set(name, value string) error
}

// Service aggregates the other domains into the admin views. Partial
// failures degrade to empty sections instead of failing the whole view.
type Service struct {
	users      UserManager
	attendance AttendanceViewer
	locations  LocationViewer
	trail      ActivityTrail
	settings   SettingsStore
	logger     *slog.Logger
}

func NewService(users UserManager, att AttendanceViewer, loc LocationViewer, trail ActivityTrail, set SettingsStore, logger *slog.Logger) *Service {
	return &Service{
		users:      users,
		attendance: att,
		locations:  loc,
		trail:      trail,
		settings:   set,
		logger:     logger,
	}
}

// ActiveUsers returns everyone currently checked in, with their freshest
// position, filtered to what the viewer may see.
func (s *Service) ActiveUsers(ctx context.Context, viewer user.Role) []ActiveUser {
	open, err := s.attendance.ActiveRecords()
	if err != nil {
		s.logger.Error("failed to load open records for admin view", "error", err)
		return []ActiveUser{}
	}

	active := make([]ActiveUser, 0, len(open))
	for _, rec := range open {
		if !rec.Role.VisibleTo(viewer) {
			continue
		}

		row := ActiveUser{
			UserID:   rec.UserID,
			Username: rec.Username,
			Role:     rec.Role,
			CheckIn:  rec.CheckIn,
		}
		if u, err := s.users.GetByID(rec.UserID); err == nil {
			row.JobTitle = u.JobTitle
		}

		if sample, err := s.locations.LastLocation(ctx, rec.UserID); err == nil && sample != nil {
			lat, lng := sample.Latitude, sample.Longitude
			recordedAt := sample.RecordedAt
			row.Latitude = &lat
			row.Longitude = &lng
			row.RecordedAt = &recordedAt
			row.Address = s.locations.Address(ctx, lat, lng)
		}

		active = append(active, row)
	}
	return active
}

// Stats summarizes today for the dashboard header.
func (s *Service) Stats(ctx context.Context, viewer user.Role) DayStats {
	now := s.attendance.Now()
	stats := DayStats{Date: now.Format("2006-01-02")}

	if users, err := s.users.ListForViewer(viewer); err == nil {
		stats.TotalUsers = len(users)
		for _, u := range users {
			if u.DeviceLocked {
				stats.FlaggedDevices++
			}
			if u.LocationEnabled {
				stats.LocationEnabled++
			}
		}
	}

	if open, err := s.attendance.ActiveRecords(); err == nil {
		for _, rec := range open {
			if rec.Role.VisibleTo(viewer) {
				stats.CheckedIn++
			}
		}
		stats.OpenRecordsNow = stats.CheckedIn
	}

	if records, err := s.attendance.RecordsForDay(now); err == nil {
		for _, rec := range records {
			if !rec.Role.VisibleTo(viewer) {
				continue
			}
			stats.RecordsToday++
			if rec.DurationMinutes != nil {
				stats.MinutesToday += *rec.DurationMinutes
			}
		}
	}

	return stats
}

// AttendanceForDay returns the daily attendance overview, viewer-filtered.
func (s *Service) AttendanceForDay(ctx context.Context, viewer user.Role, day time.Time) []AttendanceRow {
	records, err := s.attendance.RecordsForDay(day)
	if err != nil {
		s.logger.Error("failed to load attendance overview", "error", err)
		return []AttendanceRow{}
	}

	rows := make([]AttendanceRow, 0, len(records))
	for _, rec := range records {
		if !rec.Role.VisibleTo(viewer) {
			continue
		}
		rows = append(rows, AttendanceRow{
			RecordID:        rec.ID,
			UserID:          rec.UserID,
			Username:        rec.Username,
			CheckIn:         rec.CheckIn,
			CheckOut:        rec.CheckOut,
			DurationMinutes: rec.DurationMinutes,
		})
	}
	return rows
}

// RecentActivity returns the newest audit entries. The repository already
// filters out non-auditable accounts.
func (s *Service) RecentActivity(limit, offset int) []*activity.Entry {
	entries, err := s.trail.List(limit, offset)
	if err != nil {
		return []*activity.Entry{}
	}
	return entries
}

// CreateUser adds an account and records the action against the actor.
func (s *Service) CreateUser(ctx context.Context, actor *user.User, dto user.CreateUserDTO, ip string) (*user.User, error) {
	created, err := s.users.CreateUser(dto)
	if err != nil {
		return nil, err
	}
	s.trail.Record(ctx, actor, activity.TypeUserCreated, "created account "+created.Username, ip)
	return created, nil
}

// DeleteUser removes an account, its location trail, and records the action.
func (s *Service) DeleteUser(ctx context.Context, actor *user.User, id int64, ip string) error {
	target, err := s.users.GetByID(id)
	if err != nil {
		return err
	}

	if err := s.users.DeleteUser(id); err != nil {
		return err
	}
	if err := s.locations.ResetForUser(ctx, id); err != nil {
		s.logger.Warn("failed to clear location trail for deleted user", "error", err, "user_id", id)
	}

	s.trail.Record(ctx, actor, activity.TypeUserDeleted, "deleted account "+target.Username, ip)
	return nil
}

// ResetDevice clears a user's device binding so their next login re-binds.
func (s *Service) ResetDevice(ctx context.Context, id int64) error {
	return s.users.ResetDevice(id)
}

// ResetLocations wipes every location trail and records the action.
func (s *Service) ResetLocations(ctx context.Context, actor *user.User, ip string) error {
	if err := s.locations.ResetAll(ctx); err != nil {
		return err
	}
	s.trail.Record(ctx, actor, activity.TypeLocationsReset, "location history cleared", ip)
	return nil
}

// ResetActivity wipes the audit trail.
func (s *Service) ResetActivity(ctx context.Context) error {
	return s.trail.Reset(ctx)
}

// Settings lists the operator-tunable configuration.
func (s *Service) Settings() ([]settings.Setting, error) {
	return s.settings.GetAll()
}

// UpdateSetting writes one setting and records the change.
func (s *Service) UpdateSetting(ctx context.Context, actor *user.User, name, value, ip string) error {
	if err := s.settings.Set(name, value); err != nil {
		return err
	}
	s.trail.Record(ctx, actor, activity.TypeSettingsUpdated, "updated setting "+name, ip)
	return nil
}
