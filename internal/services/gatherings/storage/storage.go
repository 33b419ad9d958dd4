package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates a requested record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrConflict indicates a requested write conflicts with uniqueness constraints.
	ErrConflict = errors.New("record conflict")
)

// Event stored-state labels persisted in the events table.
const (
	EventStateDraft     = "DRAFT"
	EventStatePublished = "PUBLISHED"
	EventStateCancelled = "CANCELLED"
	EventStateCompleted = "COMPLETED"
)

// RSVP response labels persisted in the rsvps table.
const (
	RSVPResponseYes   = "YES"
	RSVPResponseNo    = "NO"
	RSVPResponseMaybe = "MAYBE"
)

// Invite state labels persisted in the invites table.
const (
	InviteStatePending = "PENDING"
	InviteStateClaimed = "CLAIMED"
	InviteStateRevoked = "REVOKED"
)

// EventRecord stores one event row.
type EventRecord struct {
	ID              string
	OwnerUserID     string
	Title           string
	Description     string
	Location        string
	State           string
	StartTime       time.Time
	EndTime         *time.Time
	RSVPDeadline    *time.Time
	Capacity        *int
	WaitlistEnabled bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// RSVPRecord stores one guest response row, keyed by (event, user).
type RSVPRecord struct {
	EventID             string
	UserID              string
	Response            string
	NeedsReconfirmation bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// WaitlistEntryRecord stores one waitlist row, keyed by (event, user).
type WaitlistEntryRecord struct {
	EventID    string
	UserID     string
	JoinedAt   time.Time
	NotifiedAt *time.Time
	ExpiresAt  *time.Time
}

// NotificationRecord stores one notification inbox row.
type NotificationRecord struct {
	ID              string
	RecipientUserID string
	EventID         string
	MessageType     string
	PayloadJSON     string
	DedupeKey       string
	CreatedAt       time.Time
	ReadAt          *time.Time
}

// NotificationPage stores a paged inbox listing result.
type NotificationPage struct {
	Notifications []NotificationRecord
	NextPageToken string
}

// InviteRecord stores one invite link row.
type InviteRecord struct {
	ID              string
	EventID         string
	CreatedByUserID string
	State           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Reader provides record-level reads outside a transaction.
type Reader interface {
	GetEvent(ctx context.Context, eventID string) (EventRecord, error)
	GetRSVP(ctx context.Context, eventID string, userID string) (RSVPRecord, error)
	ListRSVPsByEvent(ctx context.Context, eventID string) ([]RSVPRecord, error)
	CountRSVPsByResponse(ctx context.Context, eventID string, response string) (int, error)
	GetWaitlistEntry(ctx context.Context, eventID string, userID string) (WaitlistEntryRecord, error)
	// ListWaitlistEntriesByEvent returns rows ordered by joined_at ascending,
	// ties broken by insertion order.
	ListWaitlistEntriesByEvent(ctx context.Context, eventID string) ([]WaitlistEntryRecord, error)
}

// Tx provides record access within one event-scoped write transaction.
type Tx interface {
	Reader
	PutEvent(ctx context.Context, record EventRecord) error
	PutRSVP(ctx context.Context, record RSVPRecord) error
	DeleteRSVP(ctx context.Context, eventID string, userID string) error
	PutWaitlistEntry(ctx context.Context, record WaitlistEntryRecord) error
	DeleteWaitlistEntry(ctx context.Context, eventID string, userID string) error
	PutNotification(ctx context.Context, record NotificationRecord) error
	DeactivateInvitesByEvent(ctx context.Context, eventID string) (int, error)
}

// GatheringStore persists events, RSVPs, waitlists, notifications, and invites.
type GatheringStore interface {
	Reader
	// Transact runs fn inside one write transaction. Writes for the same
	// event never interleave.
	Transact(ctx context.Context, eventID string, fn func(tx Tx) error) error

	ListNotificationsByRecipient(ctx context.Context, recipientUserID string, pageSize int, pageToken string) (NotificationPage, error)
	CountUnreadNotificationsByRecipient(ctx context.Context, recipientUserID string) (int, error)
	MarkNotificationRead(ctx context.Context, recipientUserID string, notificationID string, readAt time.Time) (NotificationRecord, error)

	PutInvite(ctx context.Context, record InviteRecord) error
	GetInvite(ctx context.Context, inviteID string) (InviteRecord, error)
	ListInvitesByEvent(ctx context.Context, eventID string) ([]InviteRecord, error)
	MarkInviteClaimed(ctx context.Context, inviteID string, claimedAt time.Time) (InviteRecord, error)
}
