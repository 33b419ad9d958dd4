package server

import (
	"context"
	"errors"

	"github.com/louisbranch/gather.space/internal/services/gatherings/domain"
	"github.com/louisbranch/gather.space/internal/services/gatherings/storage"
)

// domainStoreAdapter exposes a storage.GatheringStore as the domain.Store
// boundary, converting records and translating storage errors to domain ones.
type domainStoreAdapter struct {
	store storage.GatheringStore
}

func newDomainStoreAdapter(store storage.GatheringStore) *domainStoreAdapter {
	return &domainStoreAdapter{store: store}
}

func (a *domainStoreAdapter) GetEvent(ctx context.Context, eventID string) (domain.Event, error) {
	if a == nil || a.store == nil {
		return domain.Event{}, domain.ErrStoreNotConfigured
	}
	return adapterGetEvent(ctx, a.store, eventID)
}

func (a *domainStoreAdapter) GetRSVP(ctx context.Context, eventID string, userID string) (domain.RSVP, error) {
	if a == nil || a.store == nil {
		return domain.RSVP{}, domain.ErrStoreNotConfigured
	}
	return adapterGetRSVP(ctx, a.store, eventID, userID)
}

func (a *domainStoreAdapter) ListRSVPs(ctx context.Context, eventID string) ([]domain.RSVP, error) {
	if a == nil || a.store == nil {
		return nil, domain.ErrStoreNotConfigured
	}
	return adapterListRSVPs(ctx, a.store, eventID)
}

func (a *domainStoreAdapter) CountYesRSVPs(ctx context.Context, eventID string) (int, error) {
	if a == nil || a.store == nil {
		return 0, domain.ErrStoreNotConfigured
	}
	return a.store.CountRSVPsByResponse(ctx, eventID, storage.RSVPResponseYes)
}

func (a *domainStoreAdapter) GetWaitlistEntry(ctx context.Context, eventID string, userID string) (domain.WaitlistEntry, error) {
	if a == nil || a.store == nil {
		return domain.WaitlistEntry{}, domain.ErrStoreNotConfigured
	}
	return adapterGetWaitlistEntry(ctx, a.store, eventID, userID)
}

func (a *domainStoreAdapter) ListWaitlistEntries(ctx context.Context, eventID string) ([]domain.WaitlistEntry, error) {
	if a == nil || a.store == nil {
		return nil, domain.ErrStoreNotConfigured
	}
	return adapterListWaitlistEntries(ctx, a.store, eventID)
}

// Transact opens one event-scoped storage transaction and hands the domain a
// record view bound to it.
func (a *domainStoreAdapter) Transact(ctx context.Context, eventID string, fn func(tx domain.Tx) error) error {
	if a == nil || a.store == nil {
		return domain.ErrStoreNotConfigured
	}
	if fn == nil {
		return errors.New("transaction func is required")
	}
	return a.store.Transact(ctx, eventID, func(tx storage.Tx) error {
		return fn(&domainTxAdapter{tx: tx})
	})
}

type domainTxAdapter struct {
	tx storage.Tx
}

func (t *domainTxAdapter) GetEvent(ctx context.Context, eventID string) (domain.Event, error) {
	return adapterGetEvent(ctx, t.tx, eventID)
}

func (t *domainTxAdapter) GetRSVP(ctx context.Context, eventID string, userID string) (domain.RSVP, error) {
	return adapterGetRSVP(ctx, t.tx, eventID, userID)
}

func (t *domainTxAdapter) ListRSVPs(ctx context.Context, eventID string) ([]domain.RSVP, error) {
	return adapterListRSVPs(ctx, t.tx, eventID)
}

func (t *domainTxAdapter) CountYesRSVPs(ctx context.Context, eventID string) (int, error) {
	return t.tx.CountRSVPsByResponse(ctx, eventID, storage.RSVPResponseYes)
}

func (t *domainTxAdapter) GetWaitlistEntry(ctx context.Context, eventID string, userID string) (domain.WaitlistEntry, error) {
	return adapterGetWaitlistEntry(ctx, t.tx, eventID, userID)
}

func (t *domainTxAdapter) ListWaitlistEntries(ctx context.Context, eventID string) ([]domain.WaitlistEntry, error) {
	return adapterListWaitlistEntries(ctx, t.tx, eventID)
}

func (t *domainTxAdapter) PutEvent(ctx context.Context, event domain.Event) error {
	return t.tx.PutEvent(ctx, toStorageEvent(event))
}

func (t *domainTxAdapter) PutRSVP(ctx context.Context, rsvp domain.RSVP) error {
	return t.tx.PutRSVP(ctx, toStorageRSVP(rsvp))
}

func (t *domainTxAdapter) DeleteRSVP(ctx context.Context, eventID string, userID string) error {
	return t.tx.DeleteRSVP(ctx, eventID, userID)
}

func (t *domainTxAdapter) PutWaitlistEntry(ctx context.Context, entry domain.WaitlistEntry) error {
	return t.tx.PutWaitlistEntry(ctx, toStorageWaitlistEntry(entry))
}

func (t *domainTxAdapter) DeleteWaitlistEntry(ctx context.Context, eventID string, userID string) error {
	return t.tx.DeleteWaitlistEntry(ctx, eventID, userID)
}

func (t *domainTxAdapter) AppendNotification(ctx context.Context, notification domain.Notification) error {
	err := t.tx.PutNotification(ctx, storage.NotificationRecord{
		ID:              notification.ID,
		RecipientUserID: notification.RecipientUserID,
		EventID:         notification.EventID,
		MessageType:     string(notification.Type),
		PayloadJSON:     notification.PayloadJSON,
		DedupeKey:       notification.DedupeKey,
		CreatedAt:       notification.CreatedAt,
	})
	// A dedupe-key collision means this notification was already recorded.
	if errors.Is(err, storage.ErrConflict) {
		return nil
	}
	return err
}

func (t *domainTxAdapter) DeactivateInvitesByEvent(ctx context.Context, eventID string) (int, error) {
	return t.tx.DeactivateInvitesByEvent(ctx, eventID)
}

// Shared record access helpers used by both the store and tx adapters.

func adapterGetEvent(ctx context.Context, reader storage.Reader, eventID string) (domain.Event, error) {
	record, err := reader.GetEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.Event{}, domain.ErrEventNotFound
		}
		return domain.Event{}, err
	}
	return toDomainEvent(record), nil
}

func adapterGetRSVP(ctx context.Context, reader storage.Reader, eventID string, userID string) (domain.RSVP, error) {
	record, err := reader.GetRSVP(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.RSVP{}, domain.ErrRSVPNotFound
		}
		return domain.RSVP{}, err
	}
	return toDomainRSVP(record), nil
}

func adapterListRSVPs(ctx context.Context, reader storage.Reader, eventID string) ([]domain.RSVP, error) {
	records, err := reader.ListRSVPsByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	rsvps := make([]domain.RSVP, 0, len(records))
	for _, record := range records {
		rsvps = append(rsvps, toDomainRSVP(record))
	}
	return rsvps, nil
}

func adapterGetWaitlistEntry(ctx context.Context, reader storage.Reader, eventID string, userID string) (domain.WaitlistEntry, error) {
	record, err := reader.GetWaitlistEntry(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.WaitlistEntry{}, domain.ErrWaitlistEntryNotFound
		}
		return domain.WaitlistEntry{}, err
	}
	return toDomainWaitlistEntry(record), nil
}

func adapterListWaitlistEntries(ctx context.Context, reader storage.Reader, eventID string) ([]domain.WaitlistEntry, error) {
	records, err := reader.ListWaitlistEntriesByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	entries := make([]domain.WaitlistEntry, 0, len(records))
	for _, record := range records {
		entries = append(entries, toDomainWaitlistEntry(record))
	}
	return entries, nil
}

// Record conversions

func toDomainEvent(record storage.EventRecord) domain.Event {
	return domain.Event{
		ID:              record.ID,
		OwnerUserID:     record.OwnerUserID,
		Title:           record.Title,
		Description:     record.Description,
		Location:        record.Location,
		StoredState:     domain.StoredStateFromLabel(record.State),
		StartTime:       record.StartTime,
		EndTime:         record.EndTime,
		RSVPDeadline:    record.RSVPDeadline,
		Capacity:        record.Capacity,
		WaitlistEnabled: record.WaitlistEnabled,
		CreatedAt:       record.CreatedAt,
		UpdatedAt:       record.UpdatedAt,
	}
}

func toStorageEvent(event domain.Event) storage.EventRecord {
	return storage.EventRecord{
		ID:              event.ID,
		OwnerUserID:     event.OwnerUserID,
		Title:           event.Title,
		Description:     event.Description,
		Location:        event.Location,
		State:           domain.StoredStateLabel(event.StoredState),
		StartTime:       event.StartTime,
		EndTime:         event.EndTime,
		RSVPDeadline:    event.RSVPDeadline,
		Capacity:        event.Capacity,
		WaitlistEnabled: event.WaitlistEnabled,
		CreatedAt:       event.CreatedAt,
		UpdatedAt:       event.UpdatedAt,
	}
}

func toDomainRSVP(record storage.RSVPRecord) domain.RSVP {
	return domain.RSVP{
		EventID:             record.EventID,
		UserID:              record.UserID,
		Response:            domain.ResponseFromLabel(record.Response),
		NeedsReconfirmation: record.NeedsReconfirmation,
		CreatedAt:           record.CreatedAt,
		UpdatedAt:           record.UpdatedAt,
	}
}

func toStorageRSVP(rsvp domain.RSVP) storage.RSVPRecord {
	return storage.RSVPRecord{
		EventID:             rsvp.EventID,
		UserID:              rsvp.UserID,
		Response:            domain.ResponseLabel(rsvp.Response),
		NeedsReconfirmation: rsvp.NeedsReconfirmation,
		CreatedAt:           rsvp.CreatedAt,
		UpdatedAt:           rsvp.UpdatedAt,
	}
}

func toDomainWaitlistEntry(record storage.WaitlistEntryRecord) domain.WaitlistEntry {
	return domain.WaitlistEntry{
		EventID:    record.EventID,
		UserID:     record.UserID,
		JoinedAt:   record.JoinedAt,
		NotifiedAt: record.NotifiedAt,
		ExpiresAt:  record.ExpiresAt,
	}
}

func toStorageWaitlistEntry(entry domain.WaitlistEntry) storage.WaitlistEntryRecord {
	return storage.WaitlistEntryRecord{
		EventID:    entry.EventID,
		UserID:     entry.UserID,
		JoinedAt:   entry.JoinedAt,
		NotifiedAt: entry.NotifiedAt,
		ExpiresAt:  entry.ExpiresAt,
	}
}
