package admin

import (
	"time"

	"github.com/frahmantamala/attendance-tracking/internal/user"
)

// ActiveUser is one row of the live-presence view: a checked-in account with
// its freshest known position.
type ActiveUser struct {
	UserID     int64      `json:"user_id"`
	Username   string     `json:"username"`
	JobTitle   string     `json:"job_title,omitempty"`
	Role       user.Role  `json:"role"`
	CheckIn    time.Time  `json:"check_in"`
	Latitude   *float64   `json:"latitude,omitempty"`
	Longitude  *float64   `json:"longitude,omitempty"`
	Address    string     `json:"address,omitempty"`
	RecordedAt *time.Time `json:"location_recorded_at,omitempty"`
}

// DayStats summarizes one local day of attendance.
type DayStats struct {
	Date            string `json:"date"`
	TotalUsers      int    `json:"total_users"`
	CheckedIn       int    `json:"checked_in"`
	RecordsToday    int    `json:"records_today"`
	MinutesToday    int64  `json:"minutes_today"`
	OpenRecordsNow  int    `json:"open_records_now"`
	FlaggedDevices  int    `json:"flagged_devices"`
	LocationEnabled int    `json:"location_enabled"`
}

// AttendanceRow is one record in the daily overview.
type AttendanceRow struct {
	RecordID        int64      `json:"record_id"`
	UserID          int64      `json:"user_id"`
	Username        string     `json:"username"`
	CheckIn         time.Time  `json:"check_in"`
	CheckOut        *time.Time `json:"check_out,omitempty"`
	DurationMinutes *int64     `json:"duration_minutes,omitempty"`
}
