// Package domain implements the gathering lifecycle and capacity-gated
// admission behavior: event state derivation, publish/cancel transitions,
// RSVP admission against a capacity limit, and the FIFO waitlist.
package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/louisbranch/gather.space/internal/platform/errors"
	"github.com/louisbranch/gather.space/internal/platform/id"
)

// StoredState is the persisted lifecycle state of an event. Time-derived
// substates are never stored; they are recomputed on every read.
type StoredState int

const (
	// StoredStateUnspecified represents an invalid stored state value.
	StoredStateUnspecified StoredState = iota
	// StoredStateDraft indicates the event is not yet visible to guests.
	StoredStateDraft
	// StoredStatePublished indicates the event accepts responses.
	StoredStatePublished
	// StoredStateCancelled indicates the event was cancelled by its owner.
	StoredStateCancelled
	// StoredStateCompleted indicates the event was explicitly completed.
	StoredStateCompleted
)

// EffectiveState is the externally visible lifecycle state, derived from
// stored attributes and the current time.
type EffectiveState int

const (
	// EffectiveStateUnspecified represents an invalid effective state value.
	EffectiveStateUnspecified EffectiveState = iota
	// EffectiveStateDraft mirrors a stored draft.
	EffectiveStateDraft
	// EffectiveStatePublished indicates the event is upcoming and open for responses.
	EffectiveStatePublished
	// EffectiveStateOngoing indicates the event has started but not finished.
	EffectiveStateOngoing
	// EffectiveStateClosed indicates the RSVP deadline has passed.
	EffectiveStateClosed
	// EffectiveStateCompleted indicates the event has finished.
	EffectiveStateCompleted
	// EffectiveStateCancelled mirrors a stored cancellation.
	EffectiveStateCancelled
)

var (
	// ErrEmptyTitle indicates a missing event title.
	ErrEmptyTitle = apperrors.New(apperrors.CodeEventTitleEmpty, "event title is required")
	// ErrMissingStartTime indicates a missing event start time.
	ErrMissingStartTime = apperrors.New(apperrors.CodeEventStartTimeMissing, "event start time is required")
	// ErrInvalidTimeOrder indicates an end time before the start time.
	ErrInvalidTimeOrder = apperrors.New(apperrors.CodeEventTimeOrderInvalid, "event end time must not be before start time")
	// ErrInvalidCapacity indicates a non-positive capacity limit.
	ErrInvalidCapacity = apperrors.New(apperrors.CodeEventCapacityInvalid, "event capacity must be positive when set")
	// ErrEmptyEventID indicates a missing event ID.
	ErrEmptyEventID = apperrors.New(apperrors.CodeEventIDRequired, "event id is required")
	// ErrEmptyUserID indicates a missing user ID.
	ErrEmptyUserID = apperrors.New(apperrors.CodeUserIDRequired, "user id is required")
)

// Event represents metadata for a scheduled gathering.
type Event struct {
	ID          string
	OwnerUserID string
	Title       string
	Description string
	Location    string
	StoredState StoredState
	StartTime   time.Time
	// EndTime is optional; without one the event stays ongoing for
	// DefaultOpenEndedDuration after it starts.
	EndTime *time.Time
	// RSVPDeadline is optional; once passed the event derives as CLOSED.
	RSVPDeadline *time.Time
	// Capacity limits admitted YES responses; nil means unlimited.
	Capacity *int
	// WaitlistEnabled allows overflow guests to queue for a spot.
	WaitlistEnabled bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CreateEventInput describes the metadata needed to create an event.
type CreateEventInput struct {
	OwnerUserID     string
	Title           string
	Description     string
	Location        string
	StartTime       time.Time
	EndTime         *time.Time
	RSVPDeadline    *time.Time
	Capacity        *int
	WaitlistEnabled bool
}

// CreateEvent creates a new draft event with a generated ID and timestamps.
func CreateEvent(input CreateEventInput, now func() time.Time, idGenerator func() (string, error)) (Event, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	normalized, err := NormalizeCreateEventInput(input)
	if err != nil {
		return Event{}, err
	}

	eventID, err := idGenerator()
	if err != nil {
		return Event{}, fmt.Errorf("generate event id: %w", err)
	}

	createdAt := now().UTC()
	return Event{
		ID:              eventID,
		OwnerUserID:     normalized.OwnerUserID,
		Title:           normalized.Title,
		Description:     normalized.Description,
		Location:        normalized.Location,
		StoredState:     StoredStateDraft,
		StartTime:       normalized.StartTime.UTC(),
		EndTime:         utcTimePtr(normalized.EndTime),
		RSVPDeadline:    utcTimePtr(normalized.RSVPDeadline),
		Capacity:        normalized.Capacity,
		WaitlistEnabled: normalized.WaitlistEnabled,
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}, nil
}

// NormalizeCreateEventInput trims and validates event input metadata.
func NormalizeCreateEventInput(input CreateEventInput) (CreateEventInput, error) {
	input.OwnerUserID = strings.TrimSpace(input.OwnerUserID)
	if input.OwnerUserID == "" {
		return CreateEventInput{}, ErrEmptyUserID
	}
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return CreateEventInput{}, ErrEmptyTitle
	}
	input.Description = strings.TrimSpace(input.Description)
	input.Location = strings.TrimSpace(input.Location)
	if input.StartTime.IsZero() {
		return CreateEventInput{}, ErrMissingStartTime
	}
	if input.EndTime != nil && input.EndTime.Before(input.StartTime) {
		return CreateEventInput{}, ErrInvalidTimeOrder
	}
	if input.Capacity != nil && *input.Capacity <= 0 {
		return CreateEventInput{}, ErrInvalidCapacity
	}
	return input, nil
}

// DefaultOpenEndedDuration is how long an event without an explicit end time
// stays ongoing after it starts.
const DefaultOpenEndedDuration = 24 * time.Hour

// DeriveState computes the externally visible lifecycle state of an event at
// the given instant. It is pure: identical inputs always produce identical
// output and nothing is mutated.
func DeriveState(event Event, now time.Time) EffectiveState {
	switch event.StoredState {
	case StoredStateDraft:
		return EffectiveStateDraft
	case StoredStateCancelled:
		return EffectiveStateCancelled
	case StoredStateCompleted:
		return EffectiveStateCompleted
	}

	// An explicit end time keeps the event ongoing through that instant; the
	// implied end of an open-ended event is inclusive.
	switch {
	case event.EndTime != nil && now.After(*event.EndTime):
		return EffectiveStateCompleted
	case event.EndTime == nil && !now.Before(event.StartTime.Add(DefaultOpenEndedDuration)):
		return EffectiveStateCompleted
	case !now.Before(event.StartTime):
		return EffectiveStateOngoing
	case event.RSVPDeadline != nil && !now.Before(*event.RSVPDeadline):
		return EffectiveStateClosed
	default:
		return EffectiveStatePublished
	}
}

// CanCancel reports whether the event can still be cancelled at the given instant.
func CanCancel(event Event, now time.Time) bool {
	state := DeriveState(event, now)
	return state != EffectiveStateCancelled && state != EffectiveStateCompleted
}

// PublishEvent transitions a stored draft to published.
func PublishEvent(event Event, now func() time.Time) (Event, error) {
	if now == nil {
		now = time.Now
	}
	if event.StoredState != StoredStateDraft {
		return Event{}, invalidTransitionError(event, now(), "PUBLISHED")
	}
	updated := event
	updated.StoredState = StoredStatePublished
	updated.UpdatedAt = now().UTC()
	return updated, nil
}

// CancelEvent transitions an event to cancelled. Cancellation is terminal.
func CancelEvent(event Event, now func() time.Time) (Event, error) {
	if now == nil {
		now = time.Now
	}
	at := now()
	if !CanCancel(event, at) {
		return Event{}, invalidTransitionError(event, at, "CANCELLED")
	}
	updated := event
	updated.StoredState = StoredStateCancelled
	updated.UpdatedAt = at.UTC()
	return updated, nil
}

func invalidTransitionError(event Event, now time.Time, target string) error {
	from := StateLabel(DeriveState(event, now))
	return apperrors.WithMetadata(
		apperrors.CodeEventInvalidStateTransition,
		fmt.Sprintf("event state transition not allowed: %s -> %s", from, target),
		map[string]string{"FromState": from, "ToState": target},
	)
}

// StateLabel returns a stable display label for an effective state.
func StateLabel(state EffectiveState) string {
	switch state {
	case EffectiveStateDraft:
		return "DRAFT"
	case EffectiveStatePublished:
		return "PUBLISHED"
	case EffectiveStateOngoing:
		return "ONGOING"
	case EffectiveStateClosed:
		return "CLOSED"
	case EffectiveStateCompleted:
		return "COMPLETED"
	case EffectiveStateCancelled:
		return "CANCELLED"
	default:
		return "UNSPECIFIED"
	}
}

// StoredStateLabel returns a stable label for a persisted state.
func StoredStateLabel(state StoredState) string {
	switch state {
	case StoredStateDraft:
		return "DRAFT"
	case StoredStatePublished:
		return "PUBLISHED"
	case StoredStateCancelled:
		return "CANCELLED"
	case StoredStateCompleted:
		return "COMPLETED"
	default:
		return "UNSPECIFIED"
	}
}

// StoredStateFromLabel converts a stored state label to its value.
func StoredStateFromLabel(label string) StoredState {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "DRAFT":
		return StoredStateDraft
	case "PUBLISHED":
		return StoredStatePublished
	case "CANCELLED":
		return StoredStateCancelled
	case "COMPLETED":
		return StoredStateCompleted
	default:
		return StoredStateUnspecified
	}
}

func utcTimePtr(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	utc := value.UTC()
	return &utc
}
