package activity

import "time"

// Entry is an append-only audit row. UserID 0 marks system-generated
// entries (sweeps, resets, purges).
type Entry struct {
	ID           int64     `gorm:"primaryKey"`
	UserID       int64     `gorm:"column:user_id;not null;index"`
	ActivityType string    `gorm:"column:activity_type;not null"`
	Description  string    `gorm:"column:description"`
	IP           string    `gorm:"column:ip"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (Entry) TableName() string {
	return "activity_logs"
}
