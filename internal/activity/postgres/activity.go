package postgres

import (
	"time"

	"github.com/frahmantamala/attendance-tracking/internal/activity"
	activityDatamodel "github.com/frahmantamala/attendance-tracking/internal/core/datamodel/activity"
	"gorm.io/gorm"
)

// ActivityRepository implements the activity.Repository interface using GORM
type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) activity.Repository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Append(e *activity.Entry) error {
	dm := activity.ToDataModel(e)
	if err := r.db.Create(dm).Error; err != nil {
		return err
	}
	e.ID = dm.ID
	return nil
}

type entryRow struct {
	ID           int64
	UserID       int64
	ActivityType string
	Description  string
	IP           string
	CreatedAt    time.Time
	Username     *string
}

// List joins usernames in and drops rows belonging to non-auditable
// accounts. System entries have no user row and always survive the join.
func (r *ActivityRepository) List(limit, offset int) ([]*activity.Entry, error) {
	var rows []entryRow
	err := r.db.Table("activity_logs").
		Select("activity_logs.*, users.username AS username").
		Joins("LEFT JOIN users ON users.id = activity_logs.user_id").
		Where("users.role IS NULL OR users.role <> ?", "developer").
		Order("activity_logs.created_at DESC").
		Limit(limit).
		Offset(offset).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	entries := make([]*activity.Entry, len(rows))
	for i, row := range rows {
		entry := &activity.Entry{
			ID:           row.ID,
			UserID:       row.UserID,
			ActivityType: row.ActivityType,
			Description:  row.Description,
			IP:           row.IP,
			CreatedAt:    row.CreatedAt,
		}
		if row.Username != nil {
			entry.Username = *row.Username
		}
		entries[i] = entry
	}
	return entries, nil
}

func (r *ActivityRepository) DeleteAll() error {
	return r.db.Where("1 = 1").Delete(&activityDatamodel.Entry{}).Error
}
