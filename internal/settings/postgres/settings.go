package postgres

import (
	"errors"
	"time"

	settingDatamodel "github.com/frahmantamala/attendance-tracking/internal/core/datamodel/setting"
	"github.com/frahmantamala/attendance-tracking/internal/settings"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingsRepository implements the settings.Repository interface using GORM
type SettingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) settings.Repository {
	return &SettingsRepository{db: db}
}

func (r *SettingsRepository) Get(name string) (string, error) {
	var dm settingDatamodel.Setting
	err := r.db.Where("name = ?", name).First(&dm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", settings.ErrNotFound
		}
		return "", err
	}
	return dm.Value, nil
}

func (r *SettingsRepository) Set(name, value string) error {
	dm := settingDatamodel.Setting{
		Name:      name,
		Value:     value,
		UpdatedAt: time.Now(),
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&dm).Error
}

func (r *SettingsRepository) GetAll() ([]settings.Setting, error) {
	var dms []settingDatamodel.Setting
	err := r.db.Order("name ASC").Find(&dms).Error
	if err != nil {
		return nil, err
	}

	result := make([]settings.Setting, len(dms))
	for i, dm := range dms {
		result[i] = settings.Setting{Name: dm.Name, Value: dm.Value}
	}
	return result, nil
}
