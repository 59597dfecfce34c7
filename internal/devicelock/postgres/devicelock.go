package postgres

import (
	"time"

	userDatamodel "github.com/frahmantamala/attendance-tracking/internal/core/datamodel/user"
	"github.com/frahmantamala/attendance-tracking/internal/devicelock"
	"gorm.io/gorm"
)

// DeviceRepository implements devicelock.Repository over the users table.
type DeviceRepository struct {
	db *gorm.DB
}

func NewDeviceRepository(db *gorm.DB) devicelock.Repository {
	return &DeviceRepository{db: db}
}

func (r *DeviceRepository) BindDevice(id int64, fingerprint string) error {
	return r.db.Model(&userDatamodel.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"device_fingerprint": fingerprint,
			"updated_at":         time.Now(),
		}).Error
}

func (r *DeviceRepository) FlagDevice(id int64, reason string) error {
	// guarded on role so a direct call can never lock an exempt account
	return r.db.Model(&userDatamodel.User{}).
		Where("id = ? AND role = ?", id, "user").
		Updates(map[string]interface{}{
			"device_locked":      true,
			"device_lock_reason": reason,
			"updated_at":         time.Now(),
		}).Error
}

func (r *DeviceRepository) OtherUserBoundTo(fingerprint string, excludeUserID int64) (bool, error) {
	var count int64
	err := r.db.Model(&userDatamodel.User{}).
		Where("device_fingerprint = ? AND id <> ?", fingerprint, excludeUserID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
