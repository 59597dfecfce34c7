package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeCheckedIn     = "attendance.checked_in"
	EventTypeCheckedOut    = "attendance.checked_out"
	EventTypeDeviceFlagged = "device.flagged"
	EventTypeUserLoggedIn  = "auth.logged_in"
	EventTypeUserLoggedOut = "auth.logged_out"
)

// CheckedOutTrigger identifies which path closed an attendance record.
type CheckedOutTrigger string

const (
	TriggerManual     CheckedOutTrigger = "manual"
	TriggerLogout     CheckedOutTrigger = "logout"
	TriggerHoursSweep CheckedOutTrigger = "hours_sweep"
	TriggerTimeSweep  CheckedOutTrigger = "time_sweep"
)

func NewCheckedInEvent(userID int64, username, ip string, checkIn time.Time) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      EventTypeCheckedIn,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"user_id":  userID,
			"username": username,
			"ip":       ip,
			"check_in": checkIn,
		},
	}
}

func NewCheckedOutEvent(userID int64, username, ip string, trigger CheckedOutTrigger, durationMinutes int64) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      EventTypeCheckedOut,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"user_id":          userID,
			"username":         username,
			"ip":               ip,
			"trigger":          string(trigger),
			"duration_minutes": durationMinutes,
		},
	}
}

func NewDeviceFlaggedEvent(userID int64, username, reason, ip string) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      EventTypeDeviceFlagged,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"user_id":  userID,
			"username": username,
			"reason":   reason,
			"ip":       ip,
		},
	}
}

func NewLoggedInEvent(userID int64, username, ip string) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      EventTypeUserLoggedIn,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"user_id":  userID,
			"username": username,
			"ip":       ip,
		},
	}
}

func NewLoggedOutEvent(userID int64, username, ip string) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      EventTypeUserLoggedOut,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"user_id":  userID,
			"username": username,
			"ip":       ip,
		},
	}
}
