package attendance

import (
	"math"
	"time"

	attendanceDatamodel "github.com/frahmantamala/attendance-tracking/internal/core/datamodel/attendance"
	"github.com/frahmantamala/attendance-tracking/internal/user"
)

type Record struct {
	ID              int64      `json:"id"`
	UserID          int64      `json:"user_id"`
	CheckIn         time.Time  `json:"check_in"`
	CheckOut        *time.Time `json:"check_out,omitempty"`
	DurationMinutes *int64     `json:"duration_minutes,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Open reports whether this is the user's "currently checked in" marker.
func (r *Record) Open() bool {
	return r.CheckOut == nil
}

// OpenRecord is an open attendance row joined with the owning account, as
// consumed by the auto-checkout sweeps.
type OpenRecord struct {
	Record
	Username string    `json:"username"`
	Role     user.Role `json:"role"`
}

// DurationMinutes computes the stored duration for a close at checkOut.
// Every close path (manual, logout, both sweeps) uses this, so the stored
// value is always round(elapsed minutes) from the record's own check_in.
func DurationMinutes(checkIn, checkOut time.Time) int64 {
	return int64(math.Round(checkOut.Sub(checkIn).Minutes()))
}

func ToDataModel(r *Record) *attendanceDatamodel.Record {
	return &attendanceDatamodel.Record{
		ID:              r.ID,
		UserID:          r.UserID,
		CheckIn:         r.CheckIn,
		CheckOut:        r.CheckOut,
		DurationMinutes: r.DurationMinutes,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func FromDataModel(r *attendanceDatamodel.Record) *Record {
	return &Record{
		ID:              r.ID,
		UserID:          r.UserID,
		CheckIn:         r.CheckIn,
		CheckOut:        r.CheckOut,
		DurationMinutes: r.DurationMinutes,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func FromDataModelSlice(records []*attendanceDatamodel.Record) []*Record {
	result := make([]*Record, len(records))
	for i, r := range records {
		result[i] = FromDataModel(r)
	}
	return result
}
