package domain

import "time"

// GraceWindow is the fixed period a promoted waitlist entry has to claim its
// spot before the offer lapses.
const GraceWindow = 24 * time.Hour

// WaitlistEntry queues one guest for a spot on a full event. There is at most
// one entry per (event, user) pair.
type WaitlistEntry struct {
	EventID  string
	UserID   string
	JoinedAt time.Time
	// NotifiedAt is set when the entry is promoted on a vacancy.
	NotifiedAt *time.Time
	// ExpiresAt is set together with NotifiedAt, always NotifiedAt + GraceWindow.
	ExpiresAt *time.Time
}

// Notified reports whether the entry holds an outstanding promotion offer.
func (e WaitlistEntry) Notified() bool {
	return e.NotifiedAt != nil
}

// Expired reports whether a promotion offer has lapsed at the given instant.
// Unnotified entries never expire.
func (e WaitlistEntry) Expired(now time.Time) bool {
	return e.ExpiresAt != nil && now.After(*e.ExpiresAt)
}

// Live reports whether the entry still counts toward FIFO ordering.
func (e WaitlistEntry) Live(now time.Time) bool {
	return !e.Expired(now)
}

// HoldsReservation reports whether the entry reserves one capacity slot: it
// has been promoted and the offer has not lapsed.
func (e WaitlistEntry) HoldsReservation(now time.Time) bool {
	return e.Notified() && !e.Expired(now)
}

// Promote marks the entry as notified at the given instant and stamps the
// claim deadline.
func (e WaitlistEntry) Promote(now time.Time) WaitlistEntry {
	notifiedAt := now.UTC()
	expiresAt := notifiedAt.Add(GraceWindow)
	e.NotifiedAt = &notifiedAt
	e.ExpiresAt = &expiresAt
	return e
}
