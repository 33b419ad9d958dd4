package domain

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	apperrors "github.com/louisbranch/gather.space/internal/platform/errors"
)

type fakeStore struct {
	mu            sync.Mutex
	events        map[string]Event
	rsvps         map[string]map[string]RSVP
	waitlists     map[string][]WaitlistEntry
	notifications []Notification
	deactivated   map[string]int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		events:      make(map[string]Event),
		rsvps:       make(map[string]map[string]RSVP),
		waitlists:   make(map[string][]WaitlistEntry),
		deactivated: make(map[string]int),
	}
}

func (s *fakeStore) Transact(ctx context.Context, eventID string, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn((*fakeTx)(s))
}

func (s *fakeStore) GetEvent(ctx context.Context, eventID string) (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (*fakeTx)(s).GetEvent(ctx, eventID)
}

func (s *fakeStore) GetRSVP(ctx context.Context, eventID, userID string) (RSVP, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (*fakeTx)(s).GetRSVP(ctx, eventID, userID)
}

func (s *fakeStore) ListRSVPs(ctx context.Context, eventID string) ([]RSVP, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (*fakeTx)(s).ListRSVPs(ctx, eventID)
}

func (s *fakeStore) CountYesRSVPs(ctx context.Context, eventID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (*fakeTx)(s).CountYesRSVPs(ctx, eventID)
}

func (s *fakeStore) GetWaitlistEntry(ctx context.Context, eventID, userID string) (WaitlistEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (*fakeTx)(s).GetWaitlistEntry(ctx, eventID, userID)
}

func (s *fakeStore) ListWaitlistEntries(ctx context.Context, eventID string) ([]WaitlistEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (*fakeTx)(s).ListWaitlistEntries(ctx, eventID)
}

// fakeTx reuses the store maps; Transact holds the store lock for the whole
// callback, which mirrors the per-event write serialization of the real store.
type fakeTx fakeStore

func (t *fakeTx) GetEvent(ctx context.Context, eventID string) (Event, error) {
	event, ok := t.events[eventID]
	if !ok {
		return Event{}, ErrEventNotFound
	}
	return event, nil
}

func (t *fakeTx) PutEvent(ctx context.Context, event Event) error {
	t.events[event.ID] = event
	return nil
}

func (t *fakeTx) GetRSVP(ctx context.Context, eventID, userID string) (RSVP, error) {
	rsvp, ok := t.rsvps[eventID][userID]
	if !ok {
		return RSVP{}, ErrRSVPNotFound
	}
	return rsvp, nil
}

func (t *fakeTx) PutRSVP(ctx context.Context, rsvp RSVP) error {
	if t.rsvps[rsvp.EventID] == nil {
		t.rsvps[rsvp.EventID] = make(map[string]RSVP)
	}
	t.rsvps[rsvp.EventID][rsvp.UserID] = rsvp
	return nil
}

func (t *fakeTx) DeleteRSVP(ctx context.Context, eventID, userID string) error {
	delete(t.rsvps[eventID], userID)
	return nil
}

func (t *fakeTx) ListRSVPs(ctx context.Context, eventID string) ([]RSVP, error) {
	users := make([]string, 0, len(t.rsvps[eventID]))
	for userID := range t.rsvps[eventID] {
		users = append(users, userID)
	}
	// deterministic order for assertions
	for i := 0; i < len(users); i++ {
		for j := i + 1; j < len(users); j++ {
			if users[j] < users[i] {
				users[i], users[j] = users[j], users[i]
			}
		}
	}
	rsvps := make([]RSVP, 0, len(users))
	for _, userID := range users {
		rsvps = append(rsvps, t.rsvps[eventID][userID])
	}
	return rsvps, nil
}

func (t *fakeTx) CountYesRSVPs(ctx context.Context, eventID string) (int, error) {
	count := 0
	for _, rsvp := range t.rsvps[eventID] {
		if rsvp.Response == ResponseYes {
			count++
		}
	}
	return count, nil
}

func (t *fakeTx) GetWaitlistEntry(ctx context.Context, eventID, userID string) (WaitlistEntry, error) {
	for _, entry := range t.waitlists[eventID] {
		if entry.UserID == userID {
			return entry, nil
		}
	}
	return WaitlistEntry{}, ErrWaitlistEntryNotFound
}

func (t *fakeTx) ListWaitlistEntries(ctx context.Context, eventID string) ([]WaitlistEntry, error) {
	entries := make([]WaitlistEntry, len(t.waitlists[eventID]))
	copy(entries, t.waitlists[eventID])
	return entries, nil
}

func (t *fakeTx) PutWaitlistEntry(ctx context.Context, entry WaitlistEntry) error {
	entries := t.waitlists[entry.EventID]
	for i, existing := range entries {
		if existing.UserID == entry.UserID {
			entries[i] = entry
			return nil
		}
	}
	t.waitlists[entry.EventID] = append(entries, entry)
	return nil
}

func (t *fakeTx) DeleteWaitlistEntry(ctx context.Context, eventID, userID string) error {
	entries := t.waitlists[eventID]
	for i, entry := range entries {
		if entry.UserID == userID {
			t.waitlists[eventID] = append(entries[:i:i], entries[i+1:]...)
			return nil
		}
	}
	return nil
}

func (t *fakeTx) AppendNotification(ctx context.Context, notification Notification) error {
	t.notifications = append(t.notifications, notification)
	return nil
}

func (t *fakeTx) DeactivateInvitesByEvent(ctx context.Context, eventID string) (int, error) {
	count := t.deactivated[eventID]
	t.deactivated[eventID] = count + 1
	return 0, nil
}

type fakeNotifier struct {
	mu        sync.Mutex
	delivered []Notification
	failWith  error
}

func (n *fakeNotifier) Deliver(ctx context.Context, notification Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failWith != nil {
		return n.failWith
	}
	n.delivered = append(n.delivered, notification)
	return nil
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func sequentialIDGenerator(ids ...string) func() (string, error) {
	index := 0
	return func() (string, error) {
		if index >= len(ids) {
			return "", ErrIDGeneratorExhausted
		}
		id := ids[index]
		index++
		return id, nil
	}
}

func unlimitedIDGenerator() func() (string, error) {
	index := 0
	return func() (string, error) {
		index++
		return fmt.Sprintf("generated-%03d", index), nil
	}
}

func seedPublishedEvent(t *testing.T, store *fakeStore, capacity int, waitlist bool, now time.Time) Event {
	t.Helper()
	event := Event{
		ID:              "evt-1",
		OwnerUserID:     "owner-1",
		Title:           "Backyard Sync",
		StoredState:     StoredStatePublished,
		StartTime:       now.Add(48 * time.Hour),
		WaitlistEnabled: waitlist,
		CreatedAt:       now.Add(-time.Hour),
		UpdatedAt:       now.Add(-time.Hour),
	}
	if capacity > 0 {
		event.Capacity = &capacity
	}
	store.events[event.ID] = event
	return event
}

func submitYes(t *testing.T, svc *Service, eventID, userID string) RSVP {
	t.Helper()
	rsvp, err := svc.SubmitRSVP(context.Background(), SubmitRSVPInput{EventID: eventID, UserID: userID, Response: ResponseYes})
	if err != nil {
		t.Fatalf("SubmitRSVP(%s, yes) returned error: %v", userID, err)
	}
	return rsvp
}

func TestSubmitRSVPAdmitsUntilCapacity(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 10, 18, 0, 0, 0, time.UTC)
	store := newFakeStore()
	event := seedPublishedEvent(t, store, 2, true, now)
	svc := NewService(store, nil, fixedClock(now), unlimitedIDGenerator())

	submitYes(t, svc, event.ID, "alice")
	submitYes(t, svc, event.ID, "bob")

	_, err := svc.SubmitRSVP(context.Background(), SubmitRSVPInput{EventID: event.ID, UserID: "carol", Response: ResponseYes})
	if !errors.Is(err, ErrEventAtCapacityWaitlistAvailable) {
		t.Fatalf("SubmitRSVP over capacity with waitlist = %v, want %v", err, ErrEventAtCapacityWaitlistAvailable)
	}
	if _, ok := store.rsvps[event.ID]["carol"]; ok {
		t.Fatal("rejected submission should not persist an RSVP")
	}
}

func TestSubmitRSVPRejectsWhenWaitlistDisabled(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 10, 18, 0, 0, 0, time.UTC)
	store := newFakeStore()
	event := seedPublishedEvent(t, store, 1, false, now)
	svc := NewService(store, nil, fixedClock(now), unlimitedIDGenerator())

	submitYes(t, svc, event.ID, "alice")

	_, err := svc.SubmitRSVP(context.Background(), SubmitRSVPInput{EventID: event.ID, UserID: "bob", Response: ResponseYes})
	if !errors.Is(err, ErrEventAtCapacity) {
		t.Fatalf("SubmitRSVP over capacity without waitlist = %v, want %v", err, ErrEventAtCapacity)
	}
}

func TestSubmitRSVPYesIsIdempotent(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 10, 18, 0, 0, 0, time.UTC)
	store := newFakeStore()
	event := seedPublishedEvent(t, store, 1, true, now)
	svc := NewService(store, nil, fixedClock(now), unlimitedIDGenerator())

	first := submitYes(t, svc, event.ID, "alice")
	again := submitYes(t, svc, event.ID, "alice")

	if !again.CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("resubmission CreatedAt = %v, want original %v", again.CreatedAt, first.CreatedAt)
	}
	count, err := store.CountYesRSVPs(context.Background(), event.ID)
	if err != nil {
		t.Fatalf("CountYesRSVPs returned error: %v", err)
	}
	if count != 1 {
		t.Fatalf("yes count after resubmission = %d, want 1", count)
	}
}

func TestSubmitRSVPYesClearsReconfirmationFlag(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 10, 18, 0, 0, 0, time.UTC)
	store := newFakeStore()
	event := seedPublishedEvent(t, store, 0, false, now)
	store.rsvps[event.ID] = map[string]RSVP{
		"alice": {EventID: event.ID, UserID: "alice", Response: ResponseYes, NeedsReconfirmation: true, CreatedAt: now.Add(-time.Hour), UpdatedAt: now.Add(-time.Minute)},
	}
	svc := NewService(store, nil, fixedClock(now), unlimitedIDGenerator())

	rsvp := submitYes(t, svc, event.ID, "alice")
	if rsvp.NeedsReconfirmation {
		t.Fatal("resubmitting yes should clear the reconfirmation flag")
	}
}

func TestSubmitRSVPRejectsOutsidePublishedState(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 10, 18, 0, 0, 0, time.UTC)
	deadline := now.Add(-time.Hour)

	tests := []struct {
		name  string
		event Event
	}{
		{
			name: "draft",
			event: Event{
				ID:          "evt-1",
				StoredState: StoredStateDraft,
				StartTime:   now.Add(48 * time.Hour),
			},
		},
		{
			name: "cancelled",
			event: Event{
				ID:          "evt-1",
				StoredState: StoredStateCancelled,
				StartTime:   now.Add(48 * time.Hour),
			},
		},
		{
			name: "past deadline",
			event: Event{
				ID:           "evt-1",
				StoredState:  StoredStatePublished,
				StartTime:    now.Add(48 * time.Hour),
				RSVPDeadline: &deadline,
			},
		},
		{
			name: "already started",
			event: Event{
				ID:          "evt-1",
				StoredState: StoredStatePublished,
				StartTime:   now.Add(-time.Minute),
			},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			store := newFakeStore()
			store.events[tc.event.ID] = tc.event
			svc := NewService(store, nil, fixedClock(now), unlimitedIDGenerator())

			_, err := svc.SubmitRSVP(context.Background(), SubmitRSVPInput{EventID: tc.event.ID, UserID: "alice", Response: ResponseYes})
			var appErr *apperrors.Error
			if !errors.As(err, &appErr) || appErr.Code != apperrors.CodeRSVPClosedForEffectiveState {
				t.Fatalf("SubmitRSVP in %s state = %v, want code %s", tc.name, err, apperrors.CodeRSVPClosedForEffectiveState)
			}
		})
	}
}

func TestSubmitRSVPUnknownEvent(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 10, 18, 0, 0, 0, time.UTC)
	svc := NewService(newFakeStore(), nil, fixedClock(now), unlimitedIDGenerator())

	_, err := svc.SubmitRSVP(context.Background(), SubmitRSVPInput{EventID: "missing", UserID: "alice", Response: ResponseNo})
	if !errors.Is(err, ErrEventNotFound) {
		t.Fatalf("SubmitRSVP for missing event = %v, want %v", err, ErrEventNotFound)
	}
}

func TestSubmitRSVPNoAndMaybeIgnoreCapacity(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 10, 18, 0, 0, 0, time.UTC)
	store := newFakeStore()
	event := seedPublishedEvent(t, store, 1, false, now)
	svc := NewService(store, nil, fixedClock(now), unlimitedIDGenerator())

	submitYes(t, svc, event.ID, "alice")

	for _, response := range []Response{ResponseNo, ResponseMaybe} {
		userID := "guest-" + ResponseLabel(response)
		rsvp, err := svc.SubmitRSVP(context.Background(), SubmitRSVPInput{EventID: event.ID, UserID: userID, Response: response})
		if err != nil {
			t.Fatalf("SubmitRSVP(%s) at capacity returned error: %v", ResponseLabel(response), err)
		}
		if rsvp.Response != response {
			t.Fatalf("stored response = %v, want %v", rsvp.Response, response)
		}
	}
}

func TestVacancyPromotesFirstWaitlisted(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 10, 18, 0, 0, 0, time.UTC)
	store := newFakeStore()
	event := seedPublishedEvent(t, store, 2, true, now)
	notifier := &fakeNotifier{}
	svc := NewService(store, notifier, fixedClock(now), unlimitedIDGenerator())
	ctx := context.Background()

	submitYes(t, svc, event.ID, "alice")
	submitYes(t, svc, event.ID, "bob")
	if _, err := svc.JoinWaitlist(ctx, WaitlistInput{EventID: event.ID, UserID: "carol"}); err != nil {
		t.Fatalf("JoinWaitlist(carol) returned error: %v", err)
	}
	if _, err := svc.JoinWaitlist(ctx, WaitlistInput{EventID: event.ID, UserID: "dave"}); err != nil {
		t.Fatalf("JoinWaitlist(dave) returned error: %v", err)
	}

	if _, err := svc.SubmitRSVP(ctx, SubmitRSVPInput{EventID: event.ID, UserID: "alice", Response: ResponseNo}); err != nil {
		t.Fatalf("SubmitRSVP(alice, no) returned error: %v", err)
	}

	carol, err := store.GetWaitlistEntry(ctx, event.ID, "carol")
	if err != nil {
		t.Fatalf("GetWaitlistEntry(carol) returned error: %v", err)
	}
	if !carol.Notified() {
		t.Fatal("first waitlisted guest should be notified on vacancy")
	}
	if carol.ExpiresAt == nil || !carol.ExpiresAt.Equal(now.Add(GraceWindow)) {
		t.Fatalf("promotion ExpiresAt = %v, want %v", carol.ExpiresAt, now.Add(GraceWindow))
	}

	dave, err := store.GetWaitlistEntry(ctx, event.ID, "dave")
	if err != nil {
		t.Fatalf("GetWaitlistEntry(dave) returned error: %v", err)
	}
	if dave.Notified() {
		t.Fatal("only one guest should be promoted per vacancy")
	}

	position, err := svc.WaitlistPosition(ctx, WaitlistInput{EventID: event.ID, UserID: "dave"})
	if err != nil {
		t.Fatalf("WaitlistPosition(dave) returned error: %v", err)
	}
	if position != 1 {
		t.Fatalf("dave position = %d, want 1 once carol holds a reserved slot", position)
	}

	if len(notifier.delivered) != 1 {
		t.Fatalf("delivered notifications = %d, want 1", len(notifier.delivered))
	}
	notification := notifier.delivered[0]
	if notification.Type != NotificationWaitlistSpotAvailable {
		t.Fatalf("notification type = %s, want %s", notification.Type, NotificationWaitlistSpotAvailable)
	}
	if notification.RecipientUserID != "carol" {
		t.Fatalf("notification recipient = %s, want carol", notification.RecipientUserID)
	}
}

func TestPromotionReservationBlocksOtherGuests(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 10, 18, 0, 0, 0, time.UTC)
	store := newFakeStore()
	event := seedPublishedEvent(t, store, 1, true, now)
	svc := NewService(store, nil, fixedClock(now), unlimitedIDGenerator())
	ctx := context.Background()

	submitYes(t, svc, event.ID, "alice")
	if _, err := svc.JoinWaitlist(ctx, WaitlistInput{EventID: event.ID, UserID: "bob"}); err != nil {
		t.Fatalf("JoinWaitlist(bob) returned error: %v", err)
	}
	if _, err := svc.SubmitRSVP(ctx, SubmitRSVPInput{EventID: event.ID, UserID: "alice", Response: ResponseNo}); err != nil {
		t.Fatalf("SubmitRSVP(alice, no) returned error: %v", err)
	}

	// Bob holds the vacated slot until the grace window lapses.
	_, err := svc.SubmitRSVP(ctx, SubmitRSVPInput{EventID: event.ID, UserID: "eve", Response: ResponseYes})
	if !errors.Is(err, ErrEventAtCapacityWaitlistAvailable) {
		t.Fatalf("SubmitRSVP during reservation = %v, want %v", err, ErrEventAtCapacityWaitlistAvailable)
	}

	// The reservation holder claims the spot.
	submitYes(t, svc, event.ID, "bob")
	if _, err := store.GetWaitlistEntry(ctx, event.ID, "bob"); !errors.Is(err, ErrWaitlistEntryNotFound) {
		t.Fatalf("claimed entry lookup = %v, want %v", err, ErrWaitlistEntryNotFound)
	}
}

func TestExpiredPromotionIsSkippedAndDiscarded(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 10, 18, 0, 0, 0, time.UTC)
	current := now
	clock := func() time.Time { return current }
	store := newFakeStore()
	event := Event{
		ID:              "evt-1",
		OwnerUserID:     "owner-1",
		Title:           "Backyard Sync",
		StoredState:     StoredStatePublished,
		StartTime:       now.Add(30 * 24 * time.Hour),
		WaitlistEnabled: true,
	}
	capacity := 1
	event.Capacity = &capacity
	store.events[event.ID] = event
	svc := NewService(store, nil, clock, unlimitedIDGenerator())
	ctx := context.Background()

	submitYes(t, svc, event.ID, "alice")
	if _, err := svc.JoinWaitlist(ctx, WaitlistInput{EventID: event.ID, UserID: "bob"}); err != nil {
		t.Fatalf("JoinWaitlist(bob) returned error: %v", err)
	}
	if _, err := svc.JoinWaitlist(ctx, WaitlistInput{EventID: event.ID, UserID: "carol"}); err != nil {
		t.Fatalf("JoinWaitlist(carol) returned error: %v", err)
	}
	if _, err := svc.SubmitRSVP(ctx, SubmitRSVPInput{EventID: event.ID, UserID: "alice", Response: ResponseNo}); err != nil {
		t.Fatalf("SubmitRSVP(alice, no) returned error: %v", err)
	}

	current = now.Add(GraceWindow + time.Hour)

	// Bob's offer lapsed, so the open slot admits a new guest directly.
	submitYes(t, svc, event.ID, "dave")
	if _, err := svc.SubmitRSVP(ctx, SubmitRSVPInput{EventID: event.ID, UserID: "dave", Response: ResponseNo}); err != nil {
		t.Fatalf("SubmitRSVP(dave, no) returned error: %v", err)
	}

	if _, err := store.GetWaitlistEntry(ctx, event.ID, "bob"); !errors.Is(err, ErrWaitlistEntryNotFound) {
		t.Fatalf("expired entry lookup = %v, want %v", err, ErrWaitlistEntryNotFound)
	}
	carol, err := store.GetWaitlistEntry(ctx, event.ID, "carol")
	if err != nil {
		t.Fatalf("GetWaitlistEntry(carol) returned error: %v", err)
	}
	if !carol.Notified() {
		t.Fatal("promotion should skip the expired entry and promote the next guest")
	}
}

func TestWithdrawRSVPOpensVacancy(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 10, 18, 0, 0, 0, time.UTC)
	store := newFakeStore()
	event := seedPublishedEvent(t, store, 1, true, now)
	svc := NewService(store, nil, fixedClock(now), unlimitedIDGenerator())
	ctx := context.Background()

	submitYes(t, svc, event.ID, "alice")
	if _, err := svc.JoinWaitlist(ctx, WaitlistInput{EventID: event.ID, UserID: "bob"}); err != nil {
		t.Fatalf("JoinWaitlist(bob) returned error: %v", err)
	}

	if err := svc.WithdrawRSVP(ctx, event.ID, "alice"); err != nil {
		t.Fatalf("WithdrawRSVP returned error: %v", err)
	}
	if _, err := store.GetRSVP(ctx, event.ID, "alice"); !errors.Is(err, ErrRSVPNotFound) {
		t.Fatalf("withdrawn RSVP lookup = %v, want %v", err, ErrRSVPNotFound)
	}
	bob, err := store.GetWaitlistEntry(ctx, event.ID, "bob")
	if err != nil {
		t.Fatalf("GetWaitlistEntry(bob) returned error: %v", err)
	}
	if !bob.Notified() {
		t.Fatal("withdrawing an admitted RSVP should promote the next waitlisted guest")
	}
}

func TestDeliveryFailureDoesNotFailOperation(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 10, 18, 0, 0, 0, time.UTC)
	store := newFakeStore()
	event := seedPublishedEvent(t, store, 1, true, now)
	notifier := &fakeNotifier{failWith: errors.New("smtp unreachable")}
	svc := NewService(store, notifier, fixedClock(now), unlimitedIDGenerator())
	ctx := context.Background()

	submitYes(t, svc, event.ID, "alice")
	if _, err := svc.JoinWaitlist(ctx, WaitlistInput{EventID: event.ID, UserID: "bob"}); err != nil {
		t.Fatalf("JoinWaitlist(bob) returned error: %v", err)
	}
	if _, err := svc.SubmitRSVP(ctx, SubmitRSVPInput{EventID: event.ID, UserID: "alice", Response: ResponseNo}); err != nil {
		t.Fatalf("vacancy with failing notifier returned error: %v", err)
	}

	// The notification record survives even when delivery fails.
	if len(store.notifications) != 1 {
		t.Fatalf("persisted notifications = %d, want 1", len(store.notifications))
	}
}

func TestServiceWithoutStore(t *testing.T) {
	t.Parallel()

	svc := NewService(nil, nil, nil, nil)
	if _, _, err := svc.GetEvent(context.Background(), "evt-1"); !errors.Is(err, ErrStoreNotConfigured) {
		t.Fatalf("GetEvent without store = %v, want %v", err, ErrStoreNotConfigured)
	}
}
