package postgres

import (
	"errors"
	"time"

	userDatamodel "github.com/frahmantamala/attendance-tracking/internal/core/datamodel/user"
	"github.com/frahmantamala/attendance-tracking/internal/user"
	"gorm.io/gorm"
)

// UserRepository implements the user.Repository interface using GORM
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.Repository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(u *user.User) error {
	dm := user.ToDataModel(u)
	if err := r.db.Create(dm).Error; err != nil {
		return err
	}
	u.ID = dm.ID
	u.CreatedAt = dm.CreatedAt
	u.UpdatedAt = dm.UpdatedAt
	return nil
}

func (r *UserRepository) GetByID(id int64) (*user.User, error) {
	var dm userDatamodel.User
	err := r.db.Where("id = ?", id).First(&dm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, err
	}
	return user.FromDataModel(&dm), nil
}

func (r *UserRepository) GetByUsername(username string) (*user.User, error) {
	var dm userDatamodel.User
	err := r.db.Where("username = ?", username).First(&dm).Error
	if err != nil {
		return nil, err
	}
	return user.FromDataModel(&dm), nil
}

func (r *UserRepository) GetAll() ([]*user.User, error) {
	var dms []*userDatamodel.User
	err := r.db.Order("username ASC").Find(&dms).Error
	if err != nil {
		return nil, err
	}
	return user.FromDataModelSlice(dms), nil
}

func (r *UserRepository) Delete(id int64) error {
	return r.db.Where("id = ?", id).Delete(&userDatamodel.User{}).Error
}

// BindDevice stores the first-seen fingerprint for an account.
func (r *UserRepository) BindDevice(id int64, fingerprint string) error {
	return r.db.Model(&userDatamodel.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"device_fingerprint": fingerprint,
			"updated_at":         time.Now(),
		}).Error
}

// FlagDevice marks the account device_locked with a reason. The binding is
// left in place so the mismatch stays inspectable.
func (r *UserRepository) FlagDevice(id int64, reason string) error {
	return r.db.Model(&userDatamodel.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"device_locked":      true,
			"device_lock_reason": reason,
			"updated_at":         time.Now(),
		}).Error
}

func (r *UserRepository) ResetDevice(id int64) error {
	return r.db.Model(&userDatamodel.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"device_fingerprint": nil,
			"device_locked":      false,
			"device_lock_reason": nil,
			"updated_at":         time.Now(),
		}).Error
}

func (r *UserRepository) SetLocationEnabled(id int64, enabled bool) error {
	return r.db.Model(&userDatamodel.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"location_enabled": enabled,
			"updated_at":       time.Now(),
		}).Error
}

func (r *UserRepository) UpdateLastLogin(id int64) error {
	now := time.Now()
	return r.db.Model(&userDatamodel.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_login_at": now,
			"updated_at":    now,
		}).Error
}
