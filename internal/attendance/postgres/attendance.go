package postgres

import (
	"errors"
	"time"

	"github.com/frahmantamala/attendance-tracking/internal/attendance"
	attendanceDatamodel "github.com/frahmantamala/attendance-tracking/internal/core/datamodel/attendance"
	"github.com/frahmantamala/attendance-tracking/internal/user"
	"gorm.io/gorm"
)

// AttendanceRepository implements the attendance.Repository interface using GORM
type AttendanceRepository struct {
	db *gorm.DB
}

func NewAttendanceRepository(db *gorm.DB) attendance.Repository {
	return &AttendanceRepository{db: db}
}

func (r *AttendanceRepository) Create(rec *attendance.Record) error {
	dm := attendance.ToDataModel(rec)
	if err := r.db.Create(dm).Error; err != nil {
		return err
	}
	rec.ID = dm.ID
	rec.CreatedAt = dm.CreatedAt
	rec.UpdatedAt = dm.UpdatedAt
	return nil
}

func (r *AttendanceRepository) GetOpenByUserID(userID int64) (*attendance.Record, error) {
	var dm attendanceDatamodel.Record
	err := r.db.Where("user_id = ? AND check_out IS NULL", userID).First(&dm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, err
	}
	return attendance.FromDataModel(&dm), nil
}

// Close sets check_out and duration_minutes together, guarded on the record
// still being open. A concurrent close makes this a zero-row update.
func (r *AttendanceRepository) Close(id int64, checkOut time.Time, durationMinutes int64) (bool, error) {
	res := r.db.Model(&attendanceDatamodel.Record{}).
		Where("id = ? AND check_out IS NULL", id).
		Updates(map[string]interface{}{
			"check_out":        checkOut,
			"duration_minutes": durationMinutes,
			"updated_at":       time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

type openRow struct {
	ID              int64
	UserID          int64
	CheckIn         time.Time
	CheckOut        *time.Time
	DurationMinutes *int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Username        string
	Role            string
}

func (r *AttendanceRepository) ListOpen() ([]*attendance.OpenRecord, error) {
	var rows []openRow
	err := r.db.Table("attendance_records").
		Select("attendance_records.*, users.username AS username, users.role AS role").
		Joins("JOIN users ON users.id = attendance_records.user_id").
		Where("attendance_records.check_out IS NULL").
		Order("attendance_records.check_in ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make([]*attendance.OpenRecord, len(rows))
	for i, row := range rows {
		result[i] = &attendance.OpenRecord{
			Record: attendance.Record{
				ID:              row.ID,
				UserID:          row.UserID,
				CheckIn:         row.CheckIn,
				CheckOut:        row.CheckOut,
				DurationMinutes: row.DurationMinutes,
				CreatedAt:       row.CreatedAt,
				UpdatedAt:       row.UpdatedAt,
			},
			Username: row.Username,
			Role:     user.Role(row.Role),
		}
	}
	return result, nil
}

func (r *AttendanceRepository) ListBetween(from, to time.Time) ([]*attendance.OpenRecord, error) {
	var rows []openRow
	err := r.db.Table("attendance_records").
		Select("attendance_records.*, users.username AS username, users.role AS role").
		Joins("JOIN users ON users.id = attendance_records.user_id").
		Where("attendance_records.check_in >= ? AND attendance_records.check_in < ?", from, to).
		Order("attendance_records.check_in ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make([]*attendance.OpenRecord, len(rows))
	for i, row := range rows {
		result[i] = &attendance.OpenRecord{
			Record: attendance.Record{
				ID:              row.ID,
				UserID:          row.UserID,
				CheckIn:         row.CheckIn,
				CheckOut:        row.CheckOut,
				DurationMinutes: row.DurationMinutes,
				CreatedAt:       row.CreatedAt,
				UpdatedAt:       row.UpdatedAt,
			},
			Username: row.Username,
			Role:     user.Role(row.Role),
		}
	}
	return result, nil
}

func (r *AttendanceRepository) ListByUserID(userID int64, limit, offset int) ([]*attendance.Record, error) {
	var dms []*attendanceDatamodel.Record
	err := r.db.Where("user_id = ?", userID).
		Order("check_in DESC").
		Limit(limit).
		Offset(offset).
		Find(&dms).Error
	if err != nil {
		return nil, err
	}
	return attendance.FromDataModelSlice(dms), nil
}
