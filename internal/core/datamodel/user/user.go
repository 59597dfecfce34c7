package user

import "time"

// User is the persistence model for accounts.
type User struct {
	ID                int64      `gorm:"primaryKey"`
	Username          string     `gorm:"column:username;uniqueIndex;not null"`
	PasswordHash      string     `gorm:"column:password_hash;not null"`
	Role              string     `gorm:"column:role;not null;default:user"`
	JobTitle          string     `gorm:"column:job_title"`
	LocationEnabled   bool       `gorm:"column:location_enabled;default:false"`
	DeviceFingerprint *string    `gorm:"column:device_fingerprint"`
	DeviceLocked      bool       `gorm:"column:device_locked;default:false"`
	DeviceLockReason  *string    `gorm:"column:device_lock_reason"`
	LastLoginAt       *time.Time `gorm:"column:last_login_at"`
	CreatedAt         time.Time  `gorm:"column:created_at"`
	UpdatedAt         time.Time  `gorm:"column:updated_at"`
}

func (User) TableName() string {
	return "users"
}
