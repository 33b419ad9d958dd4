// Package invite provides shareable event invite management.
package invite

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/louisbranch/gather.space/internal/platform/errors"
	"github.com/louisbranch/gather.space/internal/platform/id"
)

// ErrEmptyEventID indicates a missing event ID.
var ErrEmptyEventID = apperrors.New(apperrors.CodeInviteEmptyEventID, "event id is required")

// Status represents the lifecycle status of an invite.
type Status int

const (
	// StatusUnspecified represents an invalid invite status.
	StatusUnspecified Status = iota
	// StatusPending indicates an invite is available to claim.
	StatusPending
	// StatusClaimed indicates an invite has been claimed.
	StatusClaimed
	// StatusRevoked indicates an invite has been revoked.
	StatusRevoked
)

// Invite represents a shareable link that lets a guest RSVP to an event.
type Invite struct {
	ID              string
	EventID         string
	CreatedByUserID string
	Status          Status
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CreateInviteInput describes the metadata needed to create an invite.
type CreateInviteInput struct {
	EventID         string
	CreatedByUserID string
}

// CreateInvite creates a new invite with a generated ID and timestamps.
func CreateInvite(input CreateInviteInput, now func() time.Time, idGenerator func() (string, error)) (Invite, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	normalized, err := NormalizeCreateInviteInput(input)
	if err != nil {
		return Invite{}, err
	}

	inviteID, err := idGenerator()
	if err != nil {
		return Invite{}, fmt.Errorf("generate invite id: %w", err)
	}

	createdAt := now().UTC()
	return Invite{
		ID:              inviteID,
		EventID:         normalized.EventID,
		CreatedByUserID: normalized.CreatedByUserID,
		Status:          StatusPending,
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}, nil
}

// NormalizeCreateInviteInput trims and validates invite input metadata.
func NormalizeCreateInviteInput(input CreateInviteInput) (CreateInviteInput, error) {
	input.EventID = strings.TrimSpace(input.EventID)
	if input.EventID == "" {
		return CreateInviteInput{}, ErrEmptyEventID
	}
	input.CreatedByUserID = strings.TrimSpace(input.CreatedByUserID)
	return input, nil
}

// CanClaim reports whether the invite is still claimable.
func (i Invite) CanClaim() bool {
	return i.Status == StatusPending
}

// StatusLabel returns the string label for an invite status.
func StatusLabel(status Status) string {
	switch status {
	case StatusPending:
		return "PENDING"
	case StatusClaimed:
		return "CLAIMED"
	case StatusRevoked:
		return "REVOKED"
	default:
		return "UNSPECIFIED"
	}
}

// StatusFromLabel converts a status label to a Status value.
func StatusFromLabel(label string) Status {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "PENDING":
		return StatusPending
	case "CLAIMED":
		return StatusClaimed
	case "REVOKED":
		return StatusRevoked
	default:
		return StatusUnspecified
	}
}
