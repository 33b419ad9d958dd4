package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/louisbranch/gather.space/internal/platform/resource"
)

// NotificationType identifies one outbound notification topic.
type NotificationType string

const (
	// NotificationEventCancelled tells a guest their event was cancelled.
	NotificationEventCancelled NotificationType = "event.cancelled"
	// NotificationEventUpdated tells a guest a significant detail changed.
	NotificationEventUpdated NotificationType = "event.updated"
	// NotificationWaitlistSpotAvailable tells a waitlisted guest a spot opened.
	NotificationWaitlistSpotAvailable NotificationType = "waitlist.spot_available"
)

// Notification is one user-targeted outbound message. Notifications are
// appended to the store inside the same transaction as the state change that
// causes them; channel delivery happens after commit and is best-effort.
type Notification struct {
	ID              string
	RecipientUserID string
	EventID         string
	Type            NotificationType
	PayloadJSON     string
	DedupeKey       string
	CreatedAt       time.Time
}

type cancelledPayload struct {
	Event      string `json:"event"`
	EventTitle string `json:"event_title"`
}

type updatedPayload struct {
	Event         string   `json:"event"`
	EventTitle    string   `json:"event_title"`
	ChangedFields []string `json:"changed_fields"`
}

type spotAvailablePayload struct {
	Event      string `json:"event"`
	EventTitle string `json:"event_title"`
	ExpiresAt  string `json:"expires_at"`
}

func newCancelledNotification(event Event, recipientUserID string, notificationID string, now time.Time) Notification {
	payload, _ := json.Marshal(cancelledPayload{
		Event:      resource.EventName(event.ID),
		EventTitle: event.Title,
	})
	return Notification{
		ID:              notificationID,
		RecipientUserID: recipientUserID,
		EventID:         event.ID,
		Type:            NotificationEventCancelled,
		PayloadJSON:     string(payload),
		DedupeKey:       fmt.Sprintf("%s:%s", NotificationEventCancelled, resource.RSVPName(event.ID, recipientUserID)),
		CreatedAt:       now.UTC(),
	}
}

func newUpdatedNotification(event Event, recipientUserID string, changedFields []string, notificationID string, now time.Time) Notification {
	payload, _ := json.Marshal(updatedPayload{
		Event:         resource.EventName(event.ID),
		EventTitle:    event.Title,
		ChangedFields: changedFields,
	})
	return Notification{
		ID:              notificationID,
		RecipientUserID: recipientUserID,
		EventID:         event.ID,
		Type:            NotificationEventUpdated,
		PayloadJSON:     string(payload),
		DedupeKey: fmt.Sprintf("%s:%s:%d", NotificationEventUpdated,
			resource.RSVPName(event.ID, recipientUserID), now.UTC().UnixMilli()),
		CreatedAt: now.UTC(),
	}
}

func newSpotAvailableNotification(event Event, entry WaitlistEntry, notificationID string, now time.Time) Notification {
	expiresAt := ""
	if entry.ExpiresAt != nil {
		expiresAt = entry.ExpiresAt.Format(time.RFC3339)
	}
	payload, _ := json.Marshal(spotAvailablePayload{
		Event:      resource.EventName(event.ID),
		EventTitle: event.Title,
		ExpiresAt:  expiresAt,
	})
	return Notification{
		ID:              notificationID,
		RecipientUserID: entry.UserID,
		EventID:         event.ID,
		Type:            NotificationWaitlistSpotAvailable,
		PayloadJSON:     string(payload),
		DedupeKey: fmt.Sprintf("%s:%s:%d", NotificationWaitlistSpotAvailable,
			resource.WaitlistEntryName(event.ID, entry.UserID), now.UTC().UnixMilli()),
		CreatedAt: now.UTC(),
	}
}
