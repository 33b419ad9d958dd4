package domain

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	apperrors "github.com/louisbranch/gather.space/internal/platform/errors"
	"github.com/louisbranch/gather.space/internal/platform/id"
)

var (
	// ErrEventNotFound indicates the requested event does not exist.
	ErrEventNotFound = apperrors.New(apperrors.CodeEventNotFound, "event not found")
	// ErrRSVPNotFound indicates no RSVP exists for the (event, user) pair.
	ErrRSVPNotFound = apperrors.New(apperrors.CodeNotFound, "rsvp not found")
	// ErrWaitlistEntryNotFound indicates no waitlist entry exists for the (event, user) pair.
	ErrWaitlistEntryNotFound = apperrors.New(apperrors.CodeNotFound, "waitlist entry not found")
	// ErrEventAtCapacity indicates the event is full and has no waitlist.
	ErrEventAtCapacity = apperrors.New(apperrors.CodeEventAtCapacity, "event is at capacity")
	// ErrEventAtCapacityWaitlistAvailable indicates the event is full but the waitlist is open.
	ErrEventAtCapacityWaitlistAvailable = apperrors.New(apperrors.CodeEventAtCapacityWaitlisted, "event is at capacity; waitlist is available")
	// ErrAlreadyOnWaitlist indicates a duplicate waitlist join.
	ErrAlreadyOnWaitlist = apperrors.New(apperrors.CodeAlreadyOnWaitlist, "user is already on the waitlist")
	// ErrNotOnWaitlist indicates the user has no live waitlist entry.
	ErrNotOnWaitlist = apperrors.New(apperrors.CodeNotOnWaitlist, "user is not on the waitlist")
	// ErrWaitlistDisabled indicates the event does not allow waitlisting.
	ErrWaitlistDisabled = apperrors.New(apperrors.CodeWaitlistDisabled, "event waitlist is disabled")
	// ErrEventNotAtCapacity indicates waitlist joins require a full event.
	ErrEventNotAtCapacity = apperrors.New(apperrors.CodeEventNotAtCapacity, "event is not at capacity")
	// ErrWaitlistRSVPConflict indicates the user already holds an RSVP.
	ErrWaitlistRSVPConflict = apperrors.New(apperrors.CodeWaitlistRSVPConflict, "user already has an rsvp for this event")
	// ErrStoreNotConfigured indicates the service is missing persistence wiring.
	ErrStoreNotConfigured = errors.New("gatherings store is not configured")
	// ErrIDGeneratorExhausted indicates a fixed test ID sequence was exhausted.
	ErrIDGeneratorExhausted = errors.New("gatherings id generator exhausted")
)

// Reader is the advisory, non-transactional read access to gathering records.
type Reader interface {
	GetEvent(ctx context.Context, eventID string) (Event, error)
	GetRSVP(ctx context.Context, eventID string, userID string) (RSVP, error)
	ListRSVPs(ctx context.Context, eventID string) ([]RSVP, error)
	CountYesRSVPs(ctx context.Context, eventID string) (int, error)
	GetWaitlistEntry(ctx context.Context, eventID string, userID string) (WaitlistEntry, error)
	// ListWaitlistEntries returns entries in FIFO order: joinedAt ascending,
	// ties broken by insertion order.
	ListWaitlistEntries(ctx context.Context, eventID string) ([]WaitlistEntry, error)
}

// Tx is the record access available inside one event-scoped transaction.
// Writes made through a Tx become visible only when the transaction commits.
type Tx interface {
	Reader
	PutEvent(ctx context.Context, event Event) error
	PutRSVP(ctx context.Context, rsvp RSVP) error
	DeleteRSVP(ctx context.Context, eventID string, userID string) error
	PutWaitlistEntry(ctx context.Context, entry WaitlistEntry) error
	DeleteWaitlistEntry(ctx context.Context, eventID string, userID string) error
	AppendNotification(ctx context.Context, notification Notification) error
	DeactivateInvitesByEvent(ctx context.Context, eventID string) (int, error)
}

// Store is the domain persistence boundary. Transact serializes all admission
// and promotion writes for one event so that capacity check-then-write and
// FIFO scan-then-promote observe a consistent view.
type Store interface {
	Reader
	Transact(ctx context.Context, eventID string, fn func(tx Tx) error) error
}

// Notifier delivers committed notifications to outbound channels. Delivery is
// best-effort: failures are logged and never fail the triggering operation.
type Notifier interface {
	Deliver(ctx context.Context, notification Notification) error
}

// Service orchestrates event lifecycle, RSVP admission, and waitlist behavior.
type Service struct {
	store    Store
	notifier Notifier
	clock    func() time.Time
	newID    func() (string, error)
}

// NewService constructs gathering domain use-cases. The notifier may be nil
// when no outbound delivery channel is configured.
func NewService(store Store, notifier Notifier, clock func() time.Time, newID func() (string, error)) *Service {
	if clock == nil {
		clock = time.Now
	}
	if newID == nil {
		newID = id.NewID
	}
	return &Service{
		store:    store,
		notifier: notifier,
		clock:    clock,
		newID:    newID,
	}
}

// CreateEvent validates and persists a new draft event.
func (s *Service) CreateEvent(ctx context.Context, input CreateEventInput) (Event, error) {
	if s == nil || s.store == nil {
		return Event{}, ErrStoreNotConfigured
	}
	event, err := CreateEvent(input, s.clock, s.newID)
	if err != nil {
		return Event{}, err
	}
	err = s.store.Transact(ctx, event.ID, func(tx Tx) error {
		return tx.PutEvent(ctx, event)
	})
	if err != nil {
		return Event{}, err
	}
	return event, nil
}

// GetEvent loads an event and its effective state at the current instant.
func (s *Service) GetEvent(ctx context.Context, eventID string) (Event, EffectiveState, error) {
	if s == nil || s.store == nil {
		return Event{}, EffectiveStateUnspecified, ErrStoreNotConfigured
	}
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return Event{}, EffectiveStateUnspecified, ErrEmptyEventID
	}
	event, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return Event{}, EffectiveStateUnspecified, err
	}
	return event, DeriveState(event, s.nowUTC()), nil
}

// Publish transitions a draft event to published. It is the only legal way
// out of DRAFT.
func (s *Service) Publish(ctx context.Context, eventID string) (Event, error) {
	if s == nil || s.store == nil {
		return Event{}, ErrStoreNotConfigured
	}
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return Event{}, ErrEmptyEventID
	}
	var updated Event
	err := s.store.Transact(ctx, eventID, func(tx Tx) error {
		event, err := tx.GetEvent(ctx, eventID)
		if err != nil {
			return err
		}
		updated, err = PublishEvent(event, s.clock)
		if err != nil {
			return err
		}
		return tx.PutEvent(ctx, updated)
	})
	if err != nil {
		return Event{}, err
	}
	return updated, nil
}

// Cancel terminally cancels an event, deactivates its outstanding invites,
// and notifies every guest with an RSVP regardless of their response.
func (s *Service) Cancel(ctx context.Context, eventID string) (Event, error) {
	if s == nil || s.store == nil {
		return Event{}, ErrStoreNotConfigured
	}
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return Event{}, ErrEmptyEventID
	}
	var updated Event
	var outbox []Notification
	err := s.store.Transact(ctx, eventID, func(tx Tx) error {
		event, err := tx.GetEvent(ctx, eventID)
		if err != nil {
			return err
		}
		now := s.nowUTC()
		updated, err = CancelEvent(event, fixedTime(now))
		if err != nil {
			return err
		}
		if err := tx.PutEvent(ctx, updated); err != nil {
			return err
		}
		if _, err := tx.DeactivateInvitesByEvent(ctx, eventID); err != nil {
			return err
		}
		rsvps, err := tx.ListRSVPs(ctx, eventID)
		if err != nil {
			return err
		}
		outbox = outbox[:0]
		for _, rsvp := range rsvps {
			notificationID, err := s.newID()
			if err != nil {
				return err
			}
			notification := newCancelledNotification(updated, rsvp.UserID, notificationID, now)
			if err := tx.AppendNotification(ctx, notification); err != nil {
				return err
			}
			outbox = append(outbox, notification)
		}
		return nil
	})
	if err != nil {
		return Event{}, err
	}
	s.deliver(ctx, outbox)
	return updated, nil
}

// EditEvent applies a partial edit to event metadata. A start-time or
// location change on a published event flags every RSVP for reconfirmation
// and notifies each guest once with the changed fields.
func (s *Service) EditEvent(ctx context.Context, eventID string, edit EventEdit) (Event, error) {
	if s == nil || s.store == nil {
		return Event{}, ErrStoreNotConfigured
	}
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return Event{}, ErrEmptyEventID
	}
	var updated Event
	var outbox []Notification
	err := s.store.Transact(ctx, eventID, func(tx Tx) error {
		event, err := tx.GetEvent(ctx, eventID)
		if err != nil {
			return err
		}
		now := s.nowUTC()
		change, err := ApplyEventEdit(event, edit, fixedTime(now))
		if err != nil {
			return err
		}
		updated = change.Updated
		if updated.Capacity != nil && containsField(change.ChangedFields, FieldCapacity) {
			yesCount, err := tx.CountYesRSVPs(ctx, eventID)
			if err != nil {
				return err
			}
			if *updated.Capacity < yesCount {
				return apperrors.WithMetadata(
					apperrors.CodeEventCapacityBelowAdmitted,
					fmt.Sprintf("capacity %d is below %d admitted guests", *updated.Capacity, yesCount),
					map[string]string{"AdmittedCount": fmt.Sprintf("%d", yesCount)},
				)
			}
		}
		if err := tx.PutEvent(ctx, updated); err != nil {
			return err
		}
		if !change.Significant {
			return nil
		}
		rsvps, err := tx.ListRSVPs(ctx, eventID)
		if err != nil {
			return err
		}
		outbox = outbox[:0]
		for _, rsvp := range rsvps {
			rsvp.NeedsReconfirmation = true
			rsvp.UpdatedAt = now
			if err := tx.PutRSVP(ctx, rsvp); err != nil {
				return err
			}
			notificationID, err := s.newID()
			if err != nil {
				return err
			}
			notification := newUpdatedNotification(updated, rsvp.UserID, change.ChangedFields, notificationID, now)
			if err := tx.AppendNotification(ctx, notification); err != nil {
				return err
			}
			outbox = append(outbox, notification)
		}
		return nil
	})
	if err != nil {
		return Event{}, err
	}
	s.deliver(ctx, outbox)
	return updated, nil
}

// SubmitRSVPInput describes one guest response submission.
type SubmitRSVPInput struct {
	EventID  string
	UserID   string
	Response Response
}

// SubmitRSVP records a guest response. YES responses are admitted only while
// the event has room; the capacity check and the write happen inside one
// event-scoped transaction so concurrent submissions cannot both be admitted
// into the last spot. Rejection never queues the guest: joining the waitlist
// is a separate, explicit call.
func (s *Service) SubmitRSVP(ctx context.Context, input SubmitRSVPInput) (RSVP, error) {
	if s == nil || s.store == nil {
		return RSVP{}, ErrStoreNotConfigured
	}
	eventID := strings.TrimSpace(input.EventID)
	if eventID == "" {
		return RSVP{}, ErrEmptyEventID
	}
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return RSVP{}, ErrEmptyUserID
	}
	if input.Response != ResponseYes && input.Response != ResponseNo && input.Response != ResponseMaybe {
		return RSVP{}, ErrInvalidResponse
	}

	var result RSVP
	var outbox []Notification
	err := s.store.Transact(ctx, eventID, func(tx Tx) error {
		event, err := tx.GetEvent(ctx, eventID)
		if err != nil {
			return err
		}
		now := s.nowUTC()
		if err := requireAcceptingResponses(event, now); err != nil {
			return err
		}

		prev, err := tx.GetRSVP(ctx, eventID, userID)
		hasPrev := err == nil
		if err != nil && !errors.Is(err, ErrRSVPNotFound) {
			return err
		}

		if input.Response != ResponseYes {
			record := RSVP{
				EventID:   eventID,
				UserID:    userID,
				Response:  input.Response,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if hasPrev {
				record.CreatedAt = prev.CreatedAt
			}
			if err := tx.PutRSVP(ctx, record); err != nil {
				return err
			}
			result = record
			if hasPrev && prev.Response == ResponseYes && event.Capacity != nil && event.WaitlistEnabled {
				notifications, err := s.promoteNextWaitlisted(ctx, tx, event, now)
				if err != nil {
					return err
				}
				outbox = append(outbox, notifications...)
			}
			return nil
		}

		if hasPrev && prev.Response == ResponseYes {
			// Idempotent resubmission; doubles as reconfirmation.
			refreshed := prev
			refreshed.NeedsReconfirmation = false
			refreshed.UpdatedAt = now
			if err := tx.PutRSVP(ctx, refreshed); err != nil {
				return err
			}
			result = refreshed
			return nil
		}

		if event.Capacity != nil {
			occupied, err := s.occupiedSlots(ctx, tx, event, now, userID)
			if err != nil {
				return err
			}
			if occupied >= *event.Capacity {
				if event.WaitlistEnabled {
					return ErrEventAtCapacityWaitlistAvailable
				}
				return ErrEventAtCapacity
			}
		}

		record := RSVP{
			EventID:   eventID,
			UserID:    userID,
			Response:  ResponseYes,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if hasPrev {
			record.CreatedAt = prev.CreatedAt
		}
		if err := tx.PutRSVP(ctx, record); err != nil {
			return err
		}
		// An admitted guest never keeps a waitlist entry; a claimed
		// promotion and an abandoned spot both end here.
		if _, err := tx.GetWaitlistEntry(ctx, eventID, userID); err == nil {
			if err := tx.DeleteWaitlistEntry(ctx, eventID, userID); err != nil {
				return err
			}
		} else if !errors.Is(err, ErrWaitlistEntryNotFound) {
			return err
		}
		result = record
		return nil
	})
	if err != nil {
		return RSVP{}, err
	}
	s.deliver(ctx, outbox)
	return result, nil
}

// WithdrawRSVP removes a guest's RSVP entirely. Withdrawing an admitted YES
// opens a vacancy.
func (s *Service) WithdrawRSVP(ctx context.Context, eventID string, userID string) error {
	if s == nil || s.store == nil {
		return ErrStoreNotConfigured
	}
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return ErrEmptyEventID
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ErrEmptyUserID
	}
	var outbox []Notification
	err := s.store.Transact(ctx, eventID, func(tx Tx) error {
		event, err := tx.GetEvent(ctx, eventID)
		if err != nil {
			return err
		}
		prev, err := tx.GetRSVP(ctx, eventID, userID)
		if err != nil {
			return err
		}
		if err := tx.DeleteRSVP(ctx, eventID, userID); err != nil {
			return err
		}
		if prev.Response == ResponseYes && event.Capacity != nil && event.WaitlistEnabled {
			notifications, err := s.promoteNextWaitlisted(ctx, tx, event, s.nowUTC())
			if err != nil {
				return err
			}
			outbox = append(outbox, notifications...)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.deliver(ctx, outbox)
	return nil
}

// ListRSVPs lists all responses for an event.
func (s *Service) ListRSVPs(ctx context.Context, eventID string) ([]RSVP, error) {
	if s == nil || s.store == nil {
		return nil, ErrStoreNotConfigured
	}
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return nil, ErrEmptyEventID
	}
	return s.store.ListRSVPs(ctx, eventID)
}

// WaitlistInput identifies one guest on one event's waitlist.
type WaitlistInput struct {
	EventID string
	UserID  string
}

// JoinWaitlist queues a guest for a spot on a full event. The event must have
// a capacity limit, the waitlist must be enabled, every slot must be occupied
// or reserved, and the guest must hold neither an RSVP nor a live entry.
func (s *Service) JoinWaitlist(ctx context.Context, input WaitlistInput) (WaitlistEntry, error) {
	if s == nil || s.store == nil {
		return WaitlistEntry{}, ErrStoreNotConfigured
	}
	eventID := strings.TrimSpace(input.EventID)
	if eventID == "" {
		return WaitlistEntry{}, ErrEmptyEventID
	}
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return WaitlistEntry{}, ErrEmptyUserID
	}

	var entry WaitlistEntry
	err := s.store.Transact(ctx, eventID, func(tx Tx) error {
		event, err := tx.GetEvent(ctx, eventID)
		if err != nil {
			return err
		}
		now := s.nowUTC()
		if err := requireAcceptingResponses(event, now); err != nil {
			return err
		}
		if !event.WaitlistEnabled {
			return ErrWaitlistDisabled
		}
		if event.Capacity == nil {
			return ErrEventNotAtCapacity
		}

		if _, err := tx.GetRSVP(ctx, eventID, userID); err == nil {
			return ErrWaitlistRSVPConflict
		} else if !errors.Is(err, ErrRSVPNotFound) {
			return err
		}

		existing, err := tx.GetWaitlistEntry(ctx, eventID, userID)
		switch {
		case err == nil && !existing.Expired(now):
			return ErrAlreadyOnWaitlist
		case err == nil:
			// A lapsed offer does not block rejoining at the back of the line.
			if err := tx.DeleteWaitlistEntry(ctx, eventID, userID); err != nil {
				return err
			}
		case !errors.Is(err, ErrWaitlistEntryNotFound):
			return err
		}

		occupied, err := s.occupiedSlots(ctx, tx, event, now, userID)
		if err != nil {
			return err
		}
		if occupied < *event.Capacity {
			return ErrEventNotAtCapacity
		}

		entry = WaitlistEntry{
			EventID:  eventID,
			UserID:   userID,
			JoinedAt: now,
		}
		return tx.PutWaitlistEntry(ctx, entry)
	})
	if err != nil {
		return WaitlistEntry{}, err
	}
	return entry, nil
}

// LeaveWaitlist removes a guest's waitlist entry. If the leaving entry held a
// live promotion offer, the reserved spot passes to the next guest in line.
func (s *Service) LeaveWaitlist(ctx context.Context, input WaitlistInput) error {
	if s == nil || s.store == nil {
		return ErrStoreNotConfigured
	}
	eventID := strings.TrimSpace(input.EventID)
	if eventID == "" {
		return ErrEmptyEventID
	}
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return ErrEmptyUserID
	}
	var outbox []Notification
	err := s.store.Transact(ctx, eventID, func(tx Tx) error {
		event, err := tx.GetEvent(ctx, eventID)
		if err != nil {
			return err
		}
		entry, err := tx.GetWaitlistEntry(ctx, eventID, userID)
		if err != nil {
			if errors.Is(err, ErrWaitlistEntryNotFound) {
				return ErrNotOnWaitlist
			}
			return err
		}
		if err := tx.DeleteWaitlistEntry(ctx, eventID, userID); err != nil {
			return err
		}
		now := s.nowUTC()
		if entry.HoldsReservation(now) {
			notifications, err := s.promoteNextWaitlisted(ctx, tx, event, now)
			if err != nil {
				return err
			}
			outbox = append(outbox, notifications...)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.deliver(ctx, outbox)
	return nil
}

// WaitlistPosition returns the guest's 1-indexed rank among live entries
// still waiting for a vacancy. Entries holding a live promotion offer have a
// slot reserved and do not occupy a waiting rank; the offer holder itself
// reports position 1. This is an advisory read and runs outside any
// transaction.
func (s *Service) WaitlistPosition(ctx context.Context, input WaitlistInput) (int, error) {
	if s == nil || s.store == nil {
		return 0, ErrStoreNotConfigured
	}
	eventID := strings.TrimSpace(input.EventID)
	if eventID == "" {
		return 0, ErrEmptyEventID
	}
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return 0, ErrEmptyUserID
	}
	entries, err := s.store.ListWaitlistEntries(ctx, eventID)
	if err != nil {
		return 0, err
	}
	now := s.nowUTC()
	rank := 0
	for _, entry := range entries {
		if entry.Expired(now) {
			continue
		}
		if entry.UserID == userID {
			if entry.HoldsReservation(now) {
				// A live offer reserves a slot; its holder heads the queue.
				return 1, nil
			}
			return rank + 1, nil
		}
		if entry.HoldsReservation(now) {
			// A promoted entry no longer waits for a vacancy.
			continue
		}
		rank++
	}
	return 0, ErrNotOnWaitlist
}

// promoteNextWaitlisted promotes the first live unnotified entry in FIFO
// order. Expired entries encountered during the scan are discarded and do not
// block it. At most one entry is promoted per call.
func (s *Service) promoteNextWaitlisted(ctx context.Context, tx Tx, event Event, now time.Time) ([]Notification, error) {
	entries, err := tx.ListWaitlistEntries(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if entry.Expired(now) {
			if err := tx.DeleteWaitlistEntry(ctx, event.ID, entry.UserID); err != nil {
				return nil, err
			}
			continue
		}
		if entry.Notified() {
			continue
		}
		promoted := entry.Promote(now)
		if err := tx.PutWaitlistEntry(ctx, promoted); err != nil {
			return nil, err
		}
		notificationID, err := s.newID()
		if err != nil {
			return nil, err
		}
		notification := newSpotAvailableNotification(event, promoted, notificationID, now)
		if err := tx.AppendNotification(ctx, notification); err != nil {
			return nil, err
		}
		return []Notification{notification}, nil
	}
	return nil, nil
}

// occupiedSlots counts admitted YES responses plus live promotion
// reservations held by other guests. A guest's own reservation never blocks
// their own admission.
func (s *Service) occupiedSlots(ctx context.Context, tx Tx, event Event, now time.Time, excludeUserID string) (int, error) {
	yesCount, err := tx.CountYesRSVPs(ctx, event.ID)
	if err != nil {
		return 0, err
	}
	entries, err := tx.ListWaitlistEntries(ctx, event.ID)
	if err != nil {
		return 0, err
	}
	reserved := 0
	for _, entry := range entries {
		if entry.UserID == excludeUserID {
			continue
		}
		if entry.HoldsReservation(now) {
			reserved++
		}
	}
	return yesCount + reserved, nil
}

func requireAcceptingResponses(event Event, now time.Time) error {
	state := DeriveState(event, now)
	if state == EffectiveStatePublished {
		return nil
	}
	label := StateLabel(state)
	return apperrors.WithMetadata(
		apperrors.CodeRSVPClosedForEffectiveState,
		fmt.Sprintf("event is not accepting responses in state %s", label),
		map[string]string{"State": label},
	)
}

func (s *Service) deliver(ctx context.Context, notifications []Notification) {
	if s == nil || s.notifier == nil {
		return
	}
	for _, notification := range notifications {
		if err := s.notifier.Deliver(ctx, notification); err != nil {
			log.Printf("deliver %s notification to %s: %v", notification.Type, notification.RecipientUserID, err)
		}
	}
}

func (s *Service) nowUTC() time.Time {
	if s.clock == nil {
		return time.Now().UTC()
	}
	return s.clock().UTC()
}

func fixedTime(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func containsField(fields []string, field string) bool {
	for _, value := range fields {
		if value == field {
			return true
		}
	}
	return false
}
