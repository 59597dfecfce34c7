package settings

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/frahmantamala/attendance-tracking/internal"
)

// Repository defines the data access methods for settings.
type Repository interface {
	Get(name string) (string, error)
	Set(name, value string) error
	GetAll() ([]Setting, error)
}

// ErrNotFound must be returned by Repository.Get when the key is absent.
var ErrNotFound = internal.ErrSettingNotFound

// Service reads and writes operator-tunable configuration. Defaults are
// applied once at startup, not on every read.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// EnsureDefaults seeds any missing known key with its default value.
func (s *Service) EnsureDefaults() error {
	for name, value := range Defaults {
		if _, err := s.repo.Get(name); err == nil {
			continue
		}
		if err := s.repo.Set(name, value); err != nil {
			return fmt.Errorf("seed default for %s: %w", name, err)
		}
		s.logger.Info("setting default applied", "name", name, "value", value)
	}
	return nil
}

func (s *Service) Get(name string) (string, error) {
	value, err := s.repo.Get(name)
	if err == nil {
		return value, nil
	}
	if def, ok := Defaults[name]; ok {
		return def, nil
	}
	return "", internal.ErrSettingNotFound
}

func (s *Service) GetBool(name string) bool {
	value, err := s.Get(name)
	if err != nil {
		return false
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		s.logger.Warn("setting is not a boolean", "name", name, "value", value)
		return false
	}
	return b
}

func (s *Service) GetInt(name string) int {
	value, err := s.Get(name)
	if err != nil {
		return 0
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		s.logger.Warn("setting is not an integer", "name", name, "value", value)
		return 0
	}
	return n
}

// Set validates known keys before writing. Unknown keys are accepted as
// free-form text.
func (s *Service) Set(name, value string) error {
	switch name {
	case KeyAutoCheckoutEnabled, KeyMasterCheckinRequired:
		if _, err := strconv.ParseBool(value); err != nil {
			return internal.NewValidationError(fmt.Sprintf("%s must be a boolean", name), internal.ErrCodeValidationFailed)
		}
	case KeyAutoCheckoutHours, KeyLocationUpdateInterval:
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return internal.NewValidationError(fmt.Sprintf("%s must be a positive integer", name), internal.ErrCodeValidationFailed)
		}
	case KeyAutoCheckoutTime:
		if _, err := time.Parse("15:04", value); err != nil {
			return internal.NewValidationError("auto_checkout_time must be HH:MM", internal.ErrCodeInvalidCutoffTime)
		}
	}

	if err := s.repo.Set(name, value); err != nil {
		s.logger.Error("failed to write setting", "error", err, "name", name)
		return err
	}

	s.logger.Info("setting updated", "name", name, "value", value)
	return nil
}

func (s *Service) GetAll() ([]Setting, error) {
	all, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to list settings", "error", err)
		return []Setting{}, nil
	}
	return all, nil
}

// Policy snapshots the auto-checkout configuration for one sweep pass.
func (s *Service) Policy() AttendancePolicy {
	return AttendancePolicy{
		AutoCheckoutEnabled:   s.GetBool(KeyAutoCheckoutEnabled),
		AutoCheckoutHours:     s.GetInt(KeyAutoCheckoutHours),
		AutoCheckoutTime:      mustTime(s, KeyAutoCheckoutTime),
		MasterCheckinRequired: s.GetBool(KeyMasterCheckinRequired),
	}
}

func mustTime(s *Service, name string) string {
	value, err := s.Get(name)
	if err != nil {
		return ""
	}
	if _, err := time.Parse("15:04", value); err != nil {
		s.logger.Warn("setting is not a HH:MM time", "name", name, "value", value)
		return ""
	}
	return value
}
