package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	apperrors "github.com/louisbranch/gather.space/internal/platform/errors"
	"github.com/louisbranch/gather.space/internal/platform/id"
	"github.com/louisbranch/gather.space/internal/services/gatherings/domain"
	"github.com/louisbranch/gather.space/internal/services/gatherings/invite"
	"github.com/louisbranch/gather.space/internal/services/gatherings/storage"
)

// InviteFlow orchestrates invite links against the event lifecycle: creation
// while an event is live, grant-gated claims, and listing.
type InviteFlow struct {
	store   storage.GatheringStore
	service *domain.Service
	// grant is nil when no verification key is configured; claims then rely
	// on link possession alone.
	grant *invite.GrantConfig
	clock func() time.Time
	newID func() (string, error)
}

func newInviteFlow(store storage.GatheringStore, service *domain.Service, grant *invite.GrantConfig) *InviteFlow {
	return &InviteFlow{
		store:   store,
		service: service,
		grant:   grant,
		clock:   time.Now,
		newID:   id.NewID,
	}
}

// CreateInvite creates a pending invite link for an event that has not
// reached a terminal state.
func (f *InviteFlow) CreateInvite(ctx context.Context, eventID string, createdByUserID string) (invite.Invite, error) {
	if f == nil || f.store == nil || f.service == nil {
		return invite.Invite{}, errors.New("invite flow is not configured")
	}
	_, state, err := f.service.GetEvent(ctx, eventID)
	if err != nil {
		return invite.Invite{}, err
	}
	if state == domain.EffectiveStateCancelled || state == domain.EffectiveStateCompleted {
		return invite.Invite{}, apperrors.WithMetadata(
			apperrors.CodeEventInvalidStateTransition,
			"event no longer accepts invites",
			map[string]string{"State": domain.StateLabel(state)},
		)
	}

	created, err := invite.CreateInvite(invite.CreateInviteInput{
		EventID:         eventID,
		CreatedByUserID: createdByUserID,
	}, f.clock, f.newID)
	if err != nil {
		return invite.Invite{}, err
	}
	if err := f.store.PutInvite(ctx, toInviteRecord(created)); err != nil {
		return invite.Invite{}, fmt.Errorf("put invite: %w", err)
	}
	return created, nil
}

// ClaimInvite claims a pending invite for a guest. When grant verification is
// configured the presented token must match the invite, event, and guest.
// A claimed invite lets the guest RSVP; the event must still accept responses.
func (f *InviteFlow) ClaimInvite(ctx context.Context, eventID string, inviteID string, userID string, grantToken string) (invite.Invite, error) {
	if f == nil || f.store == nil || f.service == nil {
		return invite.Invite{}, errors.New("invite flow is not configured")
	}
	inviteID = strings.TrimSpace(inviteID)
	if inviteID == "" {
		return invite.Invite{}, apperrors.New(apperrors.CodeInviteNotFound, "invite id is required")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return invite.Invite{}, domain.ErrEmptyUserID
	}

	if f.grant != nil {
		if _, err := invite.ValidateGrant(grantToken, invite.GrantExpectation{
			EventID:  eventID,
			InviteID: inviteID,
			UserID:   userID,
		}, *f.grant); err != nil {
			return invite.Invite{}, err
		}
	}

	_, state, err := f.service.GetEvent(ctx, eventID)
	if err != nil {
		return invite.Invite{}, err
	}
	if state != domain.EffectiveStatePublished {
		return invite.Invite{}, apperrors.WithMetadata(
			apperrors.CodeRSVPClosedForEffectiveState,
			"event is not accepting responses",
			map[string]string{"State": domain.StateLabel(state)},
		)
	}

	record, err := f.store.GetInvite(ctx, inviteID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return invite.Invite{}, apperrors.New(apperrors.CodeInviteNotFound, "invite not found")
		}
		return invite.Invite{}, fmt.Errorf("get invite: %w", err)
	}
	if record.EventID != eventID {
		return invite.Invite{}, apperrors.New(apperrors.CodeInviteNotFound, "invite not found for event")
	}

	claimed := fromInviteRecord(record)
	if !claimed.CanClaim() {
		return invite.Invite{}, apperrors.WithMetadata(
			apperrors.CodeInviteInactive,
			"invite is no longer claimable",
			map[string]string{"Status": invite.StatusLabel(claimed.Status)},
		)
	}

	updated, err := f.store.MarkInviteClaimed(ctx, inviteID, f.clock().UTC())
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return invite.Invite{}, apperrors.New(apperrors.CodeInviteInactive, "invite is no longer claimable")
		}
		return invite.Invite{}, fmt.Errorf("mark invite claimed: %w", err)
	}
	return fromInviteRecord(updated), nil
}

// ListInvites lists all invites for an event.
func (f *InviteFlow) ListInvites(ctx context.Context, eventID string) ([]invite.Invite, error) {
	if f == nil || f.store == nil {
		return nil, errors.New("invite flow is not configured")
	}
	records, err := f.store.ListInvitesByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list invites: %w", err)
	}
	invites := make([]invite.Invite, 0, len(records))
	for _, record := range records {
		invites = append(invites, fromInviteRecord(record))
	}
	return invites, nil
}

// loadGrantConfig reads the grant verifier from the environment. The verifier
// is optional; starting without one is logged, not fatal.
func loadGrantConfig() *invite.GrantConfig {
	cfg, err := invite.LoadGrantConfigFromEnv(time.Now)
	if err != nil {
		log.Printf("invite grant verification disabled: %v", err)
		return nil
	}
	return &cfg
}

func toInviteRecord(inv invite.Invite) storage.InviteRecord {
	return storage.InviteRecord{
		ID:              inv.ID,
		EventID:         inv.EventID,
		CreatedByUserID: inv.CreatedByUserID,
		State:           invite.StatusLabel(inv.Status),
		CreatedAt:       inv.CreatedAt,
		UpdatedAt:       inv.UpdatedAt,
	}
}

func fromInviteRecord(record storage.InviteRecord) invite.Invite {
	return invite.Invite{
		ID:              record.ID,
		EventID:         record.EventID,
		CreatedByUserID: record.CreatedByUserID,
		Status:          invite.StatusFromLabel(record.State),
		CreatedAt:       record.CreatedAt,
		UpdatedAt:       record.UpdatedAt,
	}
}
