package location

import "time"

// Sample is an append-only location history row. The newest row per user is
// that user's current location.
type Sample struct {
	ID         int64     `gorm:"primaryKey"`
	UserID     int64     `gorm:"column:user_id;not null;index:idx_location_samples_user_recorded"`
	Latitude   float64   `gorm:"column:latitude;not null"`
	Longitude  float64   `gorm:"column:longitude;not null"`
	Address    string    `gorm:"column:address"`
	RecordedAt time.Time `gorm:"column:recorded_at;not null;index:idx_location_samples_user_recorded"`
}

func (Sample) TableName() string {
	return "location_samples"
}
