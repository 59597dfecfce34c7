package attendance

import "time"

// Record is the persistence model for attendance records. A row with a null
// check_out is the sole marker for "currently checked in"; there is no
// separate status column.
type Record struct {
	ID              int64      `gorm:"primaryKey"`
	UserID          int64      `gorm:"column:user_id;not null;index"`
	CheckIn         time.Time  `gorm:"column:check_in;not null"`
	CheckOut        *time.Time `gorm:"column:check_out"`
	DurationMinutes *int64     `gorm:"column:duration_minutes"`
	CreatedAt       time.Time  `gorm:"column:created_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at"`
}

func (Record) TableName() string {
	return "attendance_records"
}
