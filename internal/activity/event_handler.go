package activity

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/attendance-tracking/internal/core/events"
)

// EventHandler feeds the audit trail from the event bus so services never
// write activity rows directly.
type EventHandler struct {
	service *Service
	logger  *slog.Logger
}

func NewEventHandler(service *Service, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterEventHandlers subscribes to every event type the trail records.
func (h *EventHandler) RegisterEventHandlers(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeUserLoggedIn, h.HandleLoggedIn)
	bus.Subscribe(events.EventTypeUserLoggedOut, h.HandleLoggedOut)
	bus.Subscribe(events.EventTypeCheckedIn, h.HandleCheckedIn)
	bus.Subscribe(events.EventTypeCheckedOut, h.HandleCheckedOut)
	bus.Subscribe(events.EventTypeDeviceFlagged, h.HandleDeviceFlagged)
}

type eventFields struct {
	userID   int64
	username string
	ip       string
	data     map[string]interface{}
}

func decodeEvent(event events.Event) (eventFields, error) {
	data, ok := event.Payload().(map[string]interface{})
	if !ok {
		return eventFields{}, fmt.Errorf("unexpected payload type %T for event %s", event.Payload(), event.EventType())
	}

	fields := eventFields{data: data}
	if v, ok := data["user_id"].(int64); ok {
		fields.userID = v
	}
	if v, ok := data["username"].(string); ok {
		fields.username = v
	}
	if v, ok := data["ip"].(string); ok {
		fields.ip = v
	}
	return fields, nil
}

func (h *EventHandler) HandleLoggedIn(ctx context.Context, event events.Event) error {
	f, err := decodeEvent(event)
	if err != nil {
		return err
	}
	h.service.RecordForUserID(ctx, f.userID, TypeLogin,
		fmt.Sprintf("%s logged in", f.username), f.ip)
	return nil
}

func (h *EventHandler) HandleLoggedOut(ctx context.Context, event events.Event) error {
	f, err := decodeEvent(event)
	if err != nil {
		return err
	}
	h.service.RecordForUserID(ctx, f.userID, TypeLogout,
		fmt.Sprintf("%s logged out", f.username), f.ip)
	return nil
}

func (h *EventHandler) HandleCheckedIn(ctx context.Context, event events.Event) error {
	f, err := decodeEvent(event)
	if err != nil {
		return err
	}
	h.service.RecordForUserID(ctx, f.userID, TypeCheckIn,
		fmt.Sprintf("%s checked in", f.username), f.ip)
	return nil
}

func (h *EventHandler) HandleCheckedOut(ctx context.Context, event events.Event) error {
	f, err := decodeEvent(event)
	if err != nil {
		return err
	}

	trigger, _ := f.data["trigger"].(string)
	description := fmt.Sprintf("%s checked out", f.username)
	switch events.CheckedOutTrigger(trigger) {
	case events.TriggerLogout:
		description = fmt.Sprintf("%s checked out on logout", f.username)
	case events.TriggerHoursSweep:
		description = fmt.Sprintf("%s auto checked out after exceeding allowed hours", f.username)
	case events.TriggerTimeSweep:
		description = fmt.Sprintf("%s auto checked out at cutoff time", f.username)
	}

	h.service.RecordForUserID(ctx, f.userID, TypeCheckOut, description, f.ip)
	return nil
}

func (h *EventHandler) HandleDeviceFlagged(ctx context.Context, event events.Event) error {
	f, err := decodeEvent(event)
	if err != nil {
		return err
	}

	reason, _ := f.data["reason"].(string)
	h.service.RecordForUserID(ctx, f.userID, TypeDeviceFlagged,
		fmt.Sprintf("device flagged for %s: %s", f.username, reason), f.ip)
	return nil
}
