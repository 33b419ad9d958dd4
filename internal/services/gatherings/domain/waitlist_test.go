package domain

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestJoinWaitlistRequiresFullEvent(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 10, 18, 0, 0, 0, time.UTC)
	store := newFakeStore()
	event := seedPublishedEvent(t, store, 2, true, now)
	svc := NewService(store, nil, fixedClock(now), unlimitedIDGenerator())

	submitYes(t, svc, event.ID, "alice")

	_, err := svc.JoinWaitlist(context.Background(), WaitlistInput{EventID: event.ID, UserID: "bob"})
	if !errors.Is(err, ErrEventNotAtCapacity) {
		t.Fatalf("JoinWaitlist with room left = %v, want %v", err, ErrEventNotAtCapacity)
	}
}

func TestJoinWaitlistRequiresWaitlistEnabled(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 10, 18, 0, 0, 0, time.UTC)
	store := newFakeStore()
	event := seedPublishedEvent(t, store, 1, false, now)
	svc := NewService(store, nil, fixedClock(now), unlimitedIDGenerator())

	submitYes(t, svc, event.ID, "alice")

	_, err := svc.JoinWaitlist(context.Background(), WaitlistInput{EventID: event.ID, UserID: "bob"})
	if !errors.Is(err, ErrWaitlistDisabled) {
		t.Fatalf("JoinWaitlist on disabled waitlist = %v, want %v", err, ErrWaitlistDisabled)
	}
}

func TestJoinWaitlistRequiresCapacityLimit(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 10, 18, 0, 0, 0, time.UTC)
	store := newFakeStore()
	event := seedPublishedEvent(t, store, 0, true, now)
	svc := NewService(store, nil, fixedClock(now), unlimitedIDGenerator())

	_, err := svc.JoinWaitlist(context.Background(), WaitlistInput{EventID: event.ID, UserID: "bob"})
	if !errors.Is(err, ErrEventNotAtCapacity) {
		t.Fatalf("JoinWaitlist on unlimited event = %v, want %v", err, ErrEventNotAtCapacity)
	}
}

func TestJoinWaitlistRejectsDuplicates(t *testing.T) {
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

	_, err := svc.JoinWaitlist(ctx, WaitlistInput{EventID: event.ID, UserID: "bob"})
	if !errors.Is(err, ErrAlreadyOnWaitlist) {
		t.Fatalf("duplicate JoinWaitlist = %v, want %v", err, ErrAlreadyOnWaitlist)
	}
}

func TestJoinWaitlistRejectsGuestsWithRSVP(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 10, 18, 0, 0, 0, time.UTC)
	store := newFakeStore()
	event := seedPublishedEvent(t, store, 1, true, now)
	svc := NewService(store, nil, fixedClock(now), unlimitedIDGenerator())
	ctx := context.Background()

	submitYes(t, svc, event.ID, "alice")

	_, err := svc.JoinWaitlist(ctx, WaitlistInput{EventID: event.ID, UserID: "alice"})
	if !errors.Is(err, ErrWaitlistRSVPConflict) {
		t.Fatalf("JoinWaitlist with existing RSVP = %v, want %v", err, ErrWaitlistRSVPConflict)
	}
}

func TestJoinWaitlistAfterExpiredOfferRejoinsAtBack(t *testing.T) {
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
	if _, err := svc.SubmitRSVP(ctx, SubmitRSVPInput{EventID: event.ID, UserID: "alice", Response: ResponseNo}); err != nil {
		t.Fatalf("SubmitRSVP(alice, no) returned error: %v", err)
	}

	current = now.Add(GraceWindow + time.Hour)

	// Bob's lapsed offer frees the slot for a direct admission, which fills
	// the event again.
	submitYes(t, svc, event.ID, "dave")

	entry, err := svc.JoinWaitlist(ctx, WaitlistInput{EventID: event.ID, UserID: "bob"})
	if err != nil {
		t.Fatalf("JoinWaitlist after expiry = %v, want success", err)
	}
	if entry.Notified() {
		t.Fatal("rejoined entry should start unnotified")
	}
	if !entry.JoinedAt.Equal(current) {
		t.Fatalf("rejoined JoinedAt = %v, want %v", entry.JoinedAt, current)
	}
}

func TestLeaveWaitlistNotOnWaitlist(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 10, 18, 0, 0, 0, time.UTC)
	store := newFakeStore()
	event := seedPublishedEvent(t, store, 1, true, now)
	svc := NewService(store, nil, fixedClock(now), unlimitedIDGenerator())

	err := svc.LeaveWaitlist(context.Background(), WaitlistInput{EventID: event.ID, UserID: "bob"})
	if !errors.Is(err, ErrNotOnWaitlist) {
		t.Fatalf("LeaveWaitlist without entry = %v, want %v", err, ErrNotOnWaitlist)
	}
}

func TestLeaveWaitlistPassesReservationToNextGuest(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 10, 18, 0, 0, 0, time.UTC)
	store := newFakeStore()
	event := seedPublishedEvent(t, store, 1, true, now)
	notifier := &fakeNotifier{}
	svc := NewService(store, notifier, fixedClock(now), unlimitedIDGenerator())
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

	if err := svc.LeaveWaitlist(ctx, WaitlistInput{EventID: event.ID, UserID: "bob"}); err != nil {
		t.Fatalf("LeaveWaitlist(bob) returned error: %v", err)
	}

	carol, err := store.GetWaitlistEntry(ctx, event.ID, "carol")
	if err != nil {
		t.Fatalf("GetWaitlistEntry(carol) returned error: %v", err)
	}
	if !carol.Notified() {
		t.Fatal("leaving with a live offer should promote the next guest")
	}
	if len(notifier.delivered) != 2 {
		t.Fatalf("delivered notifications = %d, want 2", len(notifier.delivered))
	}
}

func TestLeaveWaitlistWithoutOfferDoesNotPromote(t *testing.T) {
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
	if _, err := svc.JoinWaitlist(ctx, WaitlistInput{EventID: event.ID, UserID: "carol"}); err != nil {
		t.Fatalf("JoinWaitlist(carol) returned error: %v", err)
	}

	if err := svc.LeaveWaitlist(ctx, WaitlistInput{EventID: event.ID, UserID: "bob"}); err != nil {
		t.Fatalf("LeaveWaitlist(bob) returned error: %v", err)
	}

	carol, err := store.GetWaitlistEntry(ctx, event.ID, "carol")
	if err != nil {
		t.Fatalf("GetWaitlistEntry(carol) returned error: %v", err)
	}
	if carol.Notified() {
		t.Fatal("leaving without a live offer should not promote anyone")
	}
}

func TestWaitlistPositionSkipsExpiredEntries(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 10, 18, 0, 0, 0, time.UTC)
	expired := now.Add(-time.Hour)
	notified := now.Add(-2 * GraceWindow)
	store := newFakeStore()
	event := seedPublishedEvent(t, store, 1, true, now)
	store.waitlists[event.ID] = []WaitlistEntry{
		{EventID: event.ID, UserID: "bob", JoinedAt: now.Add(-3 * time.Hour), NotifiedAt: &notified, ExpiresAt: &expired},
		{EventID: event.ID, UserID: "carol", JoinedAt: now.Add(-2 * time.Hour)},
		{EventID: event.ID, UserID: "dave", JoinedAt: now.Add(-time.Hour)},
	}
	svc := NewService(store, nil, fixedClock(now), unlimitedIDGenerator())
	ctx := context.Background()

	position, err := svc.WaitlistPosition(ctx, WaitlistInput{EventID: event.ID, UserID: "dave"})
	if err != nil {
		t.Fatalf("WaitlistPosition(dave) returned error: %v", err)
	}
	if position != 2 {
		t.Fatalf("dave position = %d, want 2 with expired entry skipped", position)
	}

	if _, err := svc.WaitlistPosition(ctx, WaitlistInput{EventID: event.ID, UserID: "bob"}); !errors.Is(err, ErrNotOnWaitlist) {
		t.Fatalf("position of expired entry = %v, want %v", err, ErrNotOnWaitlist)
	}
}

func TestWaitlistPositionSkipsLivePromotedEntries(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 10, 18, 0, 0, 0, time.UTC)
	notified := now.Add(-time.Hour)
	expires := notified.Add(GraceWindow)
	store := newFakeStore()
	event := seedPublishedEvent(t, store, 1, true, now)
	store.waitlists[event.ID] = []WaitlistEntry{
		{EventID: event.ID, UserID: "bob", JoinedAt: now.Add(-3 * time.Hour), NotifiedAt: &notified, ExpiresAt: &expires},
		{EventID: event.ID, UserID: "carol", JoinedAt: now.Add(-2 * time.Hour)},
		{EventID: event.ID, UserID: "dave", JoinedAt: now.Add(-time.Hour)},
	}
	svc := NewService(store, nil, fixedClock(now), unlimitedIDGenerator())
	ctx := context.Background()

	position, err := svc.WaitlistPosition(ctx, WaitlistInput{EventID: event.ID, UserID: "carol"})
	if err != nil {
		t.Fatalf("WaitlistPosition(carol) returned error: %v", err)
	}
	if position != 1 {
		t.Fatalf("carol position = %d, want 1 with bob's slot reserved", position)
	}

	position, err = svc.WaitlistPosition(ctx, WaitlistInput{EventID: event.ID, UserID: "dave"})
	if err != nil {
		t.Fatalf("WaitlistPosition(dave) returned error: %v", err)
	}
	if position != 2 {
		t.Fatalf("dave position = %d, want 2", position)
	}

	position, err = svc.WaitlistPosition(ctx, WaitlistInput{EventID: event.ID, UserID: "bob"})
	if err != nil {
		t.Fatalf("WaitlistPosition(bob) returned error: %v", err)
	}
	if position != 1 {
		t.Fatalf("offer holder position = %d, want 1", position)
	}
}

func TestWaitlistEntryExpiryBoundary(t *testing.T) {
	t.Parallel()

	notified := time.Date(2026, time.March, 10, 18, 0, 0, 0, time.UTC)
	deadline := notified.Add(GraceWindow)
	entry := WaitlistEntry{
		EventID:    "evt-1",
		UserID:     "bob",
		JoinedAt:   notified.Add(-time.Hour),
		NotifiedAt: &notified,
		ExpiresAt:  &deadline,
	}

	if entry.Expired(deadline) {
		t.Fatal("entry should still be live at the exact expiry instant")
	}
	if !entry.Expired(deadline.Add(time.Nanosecond)) {
		t.Fatal("entry should be expired after the expiry instant")
	}
	if !entry.HoldsReservation(deadline) {
		t.Fatal("a live notified entry holds a reservation")
	}
}
