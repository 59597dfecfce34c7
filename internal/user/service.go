package user

import (
	"log/slog"

	"github.com/frahmantamala/attendance-tracking/internal"
	"golang.org/x/crypto/bcrypt"
)

// Repository defines the data access methods for users.
type Repository interface {
	Create(u *User) error
	GetByID(id int64) (*User, error)
	GetByUsername(username string) (*User, error)
	GetAll() ([]*User, error)
	Delete(id int64) error
	BindDevice(id int64, fingerprint string) error
	FlagDevice(id int64, reason string) error
	ResetDevice(id int64) error
	SetLocationEnabled(id int64, enabled bool) error
	UpdateLastLogin(id int64) error
}

// Service handles account management business logic.
type Service struct {
	repo       Repository
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo Repository, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:       repo,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// CreateUser creates an account with a hashed password. Duplicate usernames
// are rejected before the insert so the caller gets a conflict, not a raw
// database error.
func (s *Service) CreateUser(dto CreateUserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("user validation failed", "error", err, "username", dto.Username)
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	role, err := ParseRole(dto.Role)
	if err != nil {
		return nil, err
	}

	if existing, err := s.repo.GetByUsername(dto.Username); err == nil && existing != nil {
		s.logger.Warn("duplicate username on create", "username", dto.Username)
		return nil, internal.ErrDuplicateUsername
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.bcryptCost)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	u := &User{
		Username:     dto.Username,
		PasswordHash: string(hash),
		Role:         role,
		JobTitle:     dto.JobTitle,
	}

	if err := s.repo.Create(u); err != nil {
		s.logger.Error("failed to create user", "error", err, "username", dto.Username)
		return nil, err
	}

	s.logger.Info("user created", "user_id", u.ID, "username", u.Username, "role", u.Role)
	return u, nil
}

func (s *Service) GetByID(id int64) (*User, error) {
	u, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get user", "error", err, "user_id", id)
		return nil, internal.ErrUserNotFound
	}
	return u, nil
}

func (s *Service) GetByUsername(username string) (*User, error) {
	u, err := s.repo.GetByUsername(username)
	if err != nil {
		return nil, internal.ErrUserNotFound
	}
	return u, nil
}

// ListForViewer returns accounts visible to the given viewer role.
func (s *Service) ListForViewer(viewer Role) ([]*User, error) {
	all, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return []*User{}, nil
	}

	visible := make([]*User, 0, len(all))
	for _, u := range all {
		if u.Role.VisibleTo(viewer) {
			visible = append(visible, u)
		}
	}
	return visible, nil
}

// DeleteUser removes the account. Attendance records and location samples
// cascade at the database level; activity entries are kept as history.
func (s *Service) DeleteUser(id int64) error {
	if _, err := s.repo.GetByID(id); err != nil {
		return internal.ErrUserNotFound
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete user", "error", err, "user_id", id)
		return err
	}

	s.logger.Info("user deleted", "user_id", id)
	return nil
}

// ResetDevice clears the stored fingerprint and any lock so the next login
// re-binds.
func (s *Service) ResetDevice(id int64) error {
	if _, err := s.repo.GetByID(id); err != nil {
		return internal.ErrUserNotFound
	}

	if err := s.repo.ResetDevice(id); err != nil {
		s.logger.Error("failed to reset device", "error", err, "user_id", id)
		return err
	}

	s.logger.Info("device binding reset", "user_id", id)
	return nil
}
