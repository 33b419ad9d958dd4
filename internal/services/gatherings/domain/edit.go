package domain

import (
	"strings"
	"time"
)

// Changed-field identifiers reported by ApplyEventEdit and carried in
// EVENT_UPDATED notification payloads.
const (
	FieldTitle        = "title"
	FieldDescription  = "description"
	FieldLocation     = "location"
	FieldStartTime    = "start_time"
	FieldEndTime      = "end_time"
	FieldRSVPDeadline = "rsvp_deadline"
	FieldCapacity     = "capacity"
	FieldWaitlist     = "waitlist_enabled"
)

// EventEdit describes a partial update to event metadata. Nil fields are left
// unchanged. Stored state is never edited here; it moves only through
// Publish and Cancel.
type EventEdit struct {
	Title           *string
	Description     *string
	Location        *string
	StartTime       *time.Time
	EndTime         **time.Time
	RSVPDeadline    **time.Time
	Capacity        **int
	WaitlistEnabled *bool
}

// EventChange is the result of applying an edit to an event.
type EventChange struct {
	Updated       Event
	ChangedFields []string
	// Significant reports whether the edit invalidates prior confirmations:
	// a start-time or location change while the event is published.
	Significant bool
}

// ApplyEventEdit merges an edit into an event and reports which fields
// changed. Validation mirrors event creation; capacity-versus-admitted checks
// happen at the service layer where the admitted count is known.
func ApplyEventEdit(event Event, edit EventEdit, now func() time.Time) (EventChange, error) {
	if now == nil {
		now = time.Now
	}

	updated := event
	var changed []string

	if edit.Title != nil {
		title := strings.TrimSpace(*edit.Title)
		if title == "" {
			return EventChange{}, ErrEmptyTitle
		}
		if title != event.Title {
			updated.Title = title
			changed = append(changed, FieldTitle)
		}
	}
	if edit.Description != nil {
		description := strings.TrimSpace(*edit.Description)
		if description != event.Description {
			updated.Description = description
			changed = append(changed, FieldDescription)
		}
	}
	if edit.Location != nil {
		location := strings.TrimSpace(*edit.Location)
		if location != event.Location {
			updated.Location = location
			changed = append(changed, FieldLocation)
		}
	}
	if edit.StartTime != nil {
		if edit.StartTime.IsZero() {
			return EventChange{}, ErrMissingStartTime
		}
		start := edit.StartTime.UTC()
		if !start.Equal(event.StartTime) {
			updated.StartTime = start
			changed = append(changed, FieldStartTime)
		}
	}
	if edit.EndTime != nil {
		end := utcTimePtr(*edit.EndTime)
		if !equalTimePtr(end, event.EndTime) {
			updated.EndTime = end
			changed = append(changed, FieldEndTime)
		}
	}
	if edit.RSVPDeadline != nil {
		deadline := utcTimePtr(*edit.RSVPDeadline)
		if !equalTimePtr(deadline, event.RSVPDeadline) {
			updated.RSVPDeadline = deadline
			changed = append(changed, FieldRSVPDeadline)
		}
	}
	if edit.Capacity != nil {
		capacity := *edit.Capacity
		if capacity != nil && *capacity <= 0 {
			return EventChange{}, ErrInvalidCapacity
		}
		if !equalIntPtr(capacity, event.Capacity) {
			updated.Capacity = capacity
			changed = append(changed, FieldCapacity)
		}
	}
	if edit.WaitlistEnabled != nil && *edit.WaitlistEnabled != event.WaitlistEnabled {
		updated.WaitlistEnabled = *edit.WaitlistEnabled
		changed = append(changed, FieldWaitlist)
	}

	if updated.EndTime != nil && updated.EndTime.Before(updated.StartTime) {
		return EventChange{}, ErrInvalidTimeOrder
	}

	if len(changed) > 0 {
		updated.UpdatedAt = now().UTC()
	}
	return EventChange{
		Updated:       updated,
		ChangedFields: changed,
		Significant:   isSignificantChange(event, changed),
	}, nil
}

// isSignificantChange reports whether an edit requires guests to reconfirm.
func isSignificantChange(event Event, changedFields []string) bool {
	if event.StoredState != StoredStatePublished {
		return false
	}
	for _, field := range changedFields {
		if field == FieldStartTime || field == FieldLocation {
			return true
		}
	}
	return false
}

func equalTimePtr(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func equalIntPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
