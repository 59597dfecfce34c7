package activity

import (
	"time"

	activityDatamodel "github.com/frahmantamala/attendance-tracking/internal/core/datamodel/activity"
)

// Activity types recorded in the audit trail.
const (
	TypeLogin           = "login"
	TypeLogout          = "logout"
	TypeCheckIn         = "check_in"
	TypeCheckOut        = "check_out"
	TypeDeviceFlagged   = "device_flagged"
	TypeUserCreated     = "user_created"
	TypeUserDeleted     = "user_deleted"
	TypeSettingsUpdated = "settings_updated"
	TypeLocationsReset  = "locations_reset"
	TypeLogsReset       = "logs_reset"
	TypeLocationPurge   = "location_purge"
)

// SystemUserID marks entries generated by sweeps and maintenance jobs
// rather than a person.
const SystemUserID int64 = 0

// Entry is one line of the audit trail.
type Entry struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	Username     string    `json:"username,omitempty"`
	ActivityType string    `json:"activity_type"`
	Description  string    `json:"description"`
	IP           string    `json:"ip,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func ToDataModel(e *Entry) *activityDatamodel.Entry {
	return &activityDatamodel.Entry{
		ID:           e.ID,
		UserID:       e.UserID,
		ActivityType: e.ActivityType,
		Description:  e.Description,
		IP:           e.IP,
		CreatedAt:    e.CreatedAt,
	}
}

func FromDataModel(e *activityDatamodel.Entry) *Entry {
	return &Entry{
		ID:           e.ID,
		UserID:       e.UserID,
		ActivityType: e.ActivityType,
		Description:  e.Description,
		IP:           e.IP,
		CreatedAt:    e.CreatedAt,
	}
}

func FromDataModelSlice(dms []*activityDatamodel.Entry) []*Entry {
	entries := make([]*Entry, len(dms))
	for i, dm := range dms {
		entries[i] = FromDataModel(dm)
	}
	return entries
}
