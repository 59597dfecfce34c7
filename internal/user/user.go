package user

import (
	"time"

	"github.com/frahmantamala/attendance-tracking/internal"
	userDatamodel "github.com/frahmantamala/attendance-tracking/internal/core/datamodel/user"
)

// Role is the closed set of capability profiles. It is an immutable business
// classification; all role-dependent behavior hangs off this type rather
// than string comparisons at call sites.
type Role string

const (
	RoleUser      Role = "user"
	RoleMaster    Role = "master"
	RoleDeveloper Role = "developer"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleMaster, RoleDeveloper:
		return Role(s), nil
	}
	return "", internal.NewValidationError("role must be one of user, master, developer", internal.ErrCodeInvalidRole)
}

// RequiresCheckIn reports whether accounts of this role participate in the
// attendance lifecycle. Masters only do when the operator enables it.
func (r Role) RequiresCheckIn(masterCheckinRequired bool) bool {
	switch r {
	case RoleUser:
		return true
	case RoleMaster:
		return masterCheckinRequired
	default:
		return false
	}
}

// Lockable reports whether the device-lock guard may bind or flag this role.
// Only regular users are ever locked.
func (r Role) Lockable() bool {
	return r == RoleUser
}

// Auditable reports whether actions by this role appear in the activity log.
func (r Role) Auditable() bool {
	return r != RoleDeveloper
}

// CanAdminister reports whether this role may use the admin surface.
func (r Role) CanAdminister() bool {
	return r == RoleMaster || r == RoleDeveloper
}

// VisibleTo reports whether rows belonging to this role appear in listings
// requested by viewer. Developer rows are never shown; master rows are
// hidden from a master viewer.
func (r Role) VisibleTo(viewer Role) bool {
	if r == RoleDeveloper {
		return false
	}
	if r == RoleMaster && viewer == RoleMaster {
		return false
	}
	return true
}

type User struct {
	ID                int64      `json:"id"`
	Username          string     `json:"username"`
	PasswordHash      string     `json:"-"`
	Role              Role       `json:"role"`
	JobTitle          string     `json:"job_title"`
	LocationEnabled   bool       `json:"location_enabled"`
	DeviceFingerprint *string    `json:"-"`
	DeviceLocked      bool       `json:"device_locked"`
	DeviceLockReason  *string    `json:"device_lock_reason,omitempty"`
	LastLoginAt       *time.Time `json:"last_login_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func ToDataModel(u *User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:                u.ID,
		Username:          u.Username,
		PasswordHash:      u.PasswordHash,
		Role:              string(u.Role),
		JobTitle:          u.JobTitle,
		LocationEnabled:   u.LocationEnabled,
		DeviceFingerprint: u.DeviceFingerprint,
		DeviceLocked:      u.DeviceLocked,
		DeviceLockReason:  u.DeviceLockReason,
		LastLoginAt:       u.LastLoginAt,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:                u.ID,
		Username:          u.Username,
		PasswordHash:      u.PasswordHash,
		Role:              Role(u.Role),
		JobTitle:          u.JobTitle,
		LocationEnabled:   u.LocationEnabled,
		DeviceFingerprint: u.DeviceFingerprint,
		DeviceLocked:      u.DeviceLocked,
		DeviceLockReason:  u.DeviceLockReason,
		LastLoginAt:       u.LastLoginAt,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}

func FromDataModelSlice(users []*userDatamodel.User) []*User {
	result := make([]*User, len(users))
	for i, u := range users {
		result[i] = FromDataModel(u)
	}
	return result
}
