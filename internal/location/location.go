package location

import (
	"time"

	locationDatamodel "github.com/frahmantamala/attendance-tracking/internal/core/datamodel/location"
)

// Sample is one point of a user's location history. The newest sample per
// user is the user's current location.
type Sample struct {
	ID         int64     `json:"id,omitempty"`
	UserID     int64     `json:"user_id"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Address    string    `json:"address,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

// AddressUnknown is used when reverse geocoding fails or is unavailable.
const AddressUnknown = "unknown"

func ToDataModel(s *Sample) *locationDatamodel.Sample {
	return &locationDatamodel.Sample{
		ID:         s.ID,
		UserID:     s.UserID,
		Latitude:   s.Latitude,
		Longitude:  s.Longitude,
		Address:    s.Address,
		RecordedAt: s.RecordedAt,
	}
}

func FromDataModel(s *locationDatamodel.Sample) *Sample {
	return &Sample{
		ID:         s.ID,
		UserID:     s.UserID,
		Latitude:   s.Latitude,
		Longitude:  s.Longitude,
		Address:    s.Address,
		RecordedAt: s.RecordedAt,
	}
}
