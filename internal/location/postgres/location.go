package postgres

import (
	"errors"
	"time"

	locationDatamodel "github.com/frahmantamala/attendance-tracking/internal/core/datamodel/location"
	"github.com/frahmantamala/attendance-tracking/internal/location"
	"gorm.io/gorm"
)

// LocationRepository implements the location.Repository interface using GORM
type LocationRepository struct {
	db *gorm.DB
}

func NewLocationRepository(db *gorm.DB) location.Repository {
	return &LocationRepository{db: db}
}

func (r *LocationRepository) Append(s *location.Sample) error {
	dm := location.ToDataModel(s)
	if err := r.db.Create(dm).Error; err != nil {
		return err
	}
	s.ID = dm.ID
	return nil
}

func (r *LocationRepository) LatestByUserID(userID int64) (*location.Sample, error) {
	var dm locationDatamodel.Sample
	err := r.db.Where("user_id = ?", userID).
		Order("recorded_at DESC").
		First(&dm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, err
	}
	return location.FromDataModel(&dm), nil
}

func (r *LocationRepository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	res := r.db.Where("recorded_at < ?", cutoff).Delete(&locationDatamodel.Sample{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *LocationRepository) DeleteByUserID(userID int64) error {
	return r.db.Where("user_id = ?", userID).Delete(&locationDatamodel.Sample{}).Error
}

func (r *LocationRepository) DeleteAll() error {
	return r.db.Where("1 = 1").Delete(&locationDatamodel.Sample{}).Error
}
