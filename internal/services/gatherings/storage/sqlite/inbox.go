package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/gather.space/internal/services/gatherings/storage"
)

// Notifications

func (s *Store) PutNotification(ctx context.Context, record storage.NotificationRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	return putNotificationExec(ctx, s.sqlDB, record)
}

func (v *txView) PutNotification(ctx context.Context, record storage.NotificationRecord) error {
	return putNotificationExec(ctx, v.tx, record)
}

func putNotificationExec(ctx context.Context, q sqlQuerier, record storage.NotificationRecord) error {
	normalized, err := normalizeNotificationRecord(record)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, `
INSERT INTO notifications (id, recipient_user_id, event_id, message_type, payload_json, dedupe_key, created_at, read_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    payload_json = excluded.payload_json,
    read_at = excluded.read_at
`,
		normalized.ID,
		normalized.RecipientUserID,
		normalized.EventID,
		normalized.MessageType,
		normalized.PayloadJSON,
		normalized.DedupeKey,
		toMillis(normalized.CreatedAt),
		toMillisPtr(normalized.ReadAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("put notification: %w", err)
	}
	return nil
}

// ListNotificationsByRecipient lists one recipient inbox newest-first with
// cursor pagination. The returned token is the last row's id.
func (s *Store) ListNotificationsByRecipient(ctx context.Context, recipientUserID string, pageSize int, pageToken string) (storage.NotificationPage, error) {
	if err := ctx.Err(); err != nil {
		return storage.NotificationPage{}, err
	}
	if err := s.ready(); err != nil {
		return storage.NotificationPage{}, err
	}
	recipientUserID = strings.TrimSpace(recipientUserID)
	pageToken = strings.TrimSpace(pageToken)
	if recipientUserID == "" {
		return storage.NotificationPage{}, fmt.Errorf("recipient user id is required")
	}
	if pageSize <= 0 {
		return storage.NotificationPage{}, fmt.Errorf("page size must be greater than zero")
	}

	limit := pageSize + 1
	var rows *sql.Rows
	var err error
	if pageToken == "" {
		rows, err = s.sqlDB.QueryContext(ctx, `
SELECT id, recipient_user_id, event_id, message_type, payload_json, dedupe_key, created_at, read_at
FROM notifications
WHERE recipient_user_id = ?
ORDER BY created_at DESC, id DESC
LIMIT ?
`, recipientUserID, limit)
	} else {
		var tokenCreatedAt time.Time
		tokenCreatedAt, err = s.notificationCreatedAtByID(ctx, recipientUserID, pageToken)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return storage.NotificationPage{}, nil
			}
			return storage.NotificationPage{}, err
		}
		rows, err = s.sqlDB.QueryContext(ctx, `
SELECT id, recipient_user_id, event_id, message_type, payload_json, dedupe_key, created_at, read_at
FROM notifications
WHERE recipient_user_id = ?
  AND (created_at < ? OR (created_at = ? AND id < ?))
ORDER BY created_at DESC, id DESC
LIMIT ?
`, recipientUserID, toMillis(tokenCreatedAt), toMillis(tokenCreatedAt), pageToken, limit)
	}
	if err != nil {
		return storage.NotificationPage{}, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	records := make([]storage.NotificationRecord, 0, limit)
	for rows.Next() {
		record, scanErr := scanNotification(rows.Scan)
		if scanErr != nil {
			return storage.NotificationPage{}, fmt.Errorf("scan notification row: %w", scanErr)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return storage.NotificationPage{}, fmt.Errorf("iterate notification rows: %w", err)
	}

	page := storage.NotificationPage{Notifications: records}
	if len(records) > pageSize {
		page.Notifications = records[:pageSize]
		page.NextPageToken = records[pageSize-1].ID
	}
	return page, nil
}

func (s *Store) notificationCreatedAtByID(ctx context.Context, recipientUserID string, notificationID string) (time.Time, error) {
	row := s.sqlDB.QueryRowContext(ctx, `
SELECT created_at
FROM notifications
WHERE recipient_user_id = ? AND id = ?
`, recipientUserID, notificationID)
	var createdAtMillis int64
	if err := row.Scan(&createdAtMillis); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, storage.ErrNotFound
		}
		return time.Time{}, fmt.Errorf("lookup notification cursor: %w", err)
	}
	return fromMillis(createdAtMillis), nil
}

// CountUnreadNotificationsByRecipient returns the unread inbox count for one recipient.
func (s *Store) CountUnreadNotificationsByRecipient(ctx context.Context, recipientUserID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := s.ready(); err != nil {
		return 0, err
	}
	recipientUserID = strings.TrimSpace(recipientUserID)
	if recipientUserID == "" {
		return 0, fmt.Errorf("recipient user id is required")
	}
	var unreadCount int
	if err := s.sqlDB.QueryRowContext(ctx, `
SELECT COUNT(1)
FROM notifications
WHERE recipient_user_id = ? AND read_at IS NULL
`, recipientUserID).Scan(&unreadCount); err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return unreadCount, nil
}

// MarkNotificationRead marks one notification row as read for a recipient.
func (s *Store) MarkNotificationRead(ctx context.Context, recipientUserID string, notificationID string, readAt time.Time) (storage.NotificationRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.NotificationRecord{}, err
	}
	if err := s.ready(); err != nil {
		return storage.NotificationRecord{}, err
	}
	recipientUserID = strings.TrimSpace(recipientUserID)
	notificationID = strings.TrimSpace(notificationID)
	if recipientUserID == "" {
		return storage.NotificationRecord{}, fmt.Errorf("recipient user id is required")
	}
	if notificationID == "" {
		return storage.NotificationRecord{}, fmt.Errorf("notification id is required")
	}
	if readAt.IsZero() {
		return storage.NotificationRecord{}, fmt.Errorf("read_at is required")
	}

	result, err := s.sqlDB.ExecContext(ctx, `
UPDATE notifications
SET read_at = ?
WHERE recipient_user_id = ? AND id = ?
`, toMillis(readAt), recipientUserID, notificationID)
	if err != nil {
		return storage.NotificationRecord{}, fmt.Errorf("mark notification read: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return storage.NotificationRecord{}, fmt.Errorf("mark notification read rows affected: %w", err)
	}
	if affected == 0 {
		return storage.NotificationRecord{}, storage.ErrNotFound
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, recipient_user_id, event_id, message_type, payload_json, dedupe_key, created_at, read_at
FROM notifications
WHERE recipient_user_id = ? AND id = ?
`, recipientUserID, notificationID)
	record, err := scanNotification(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.NotificationRecord{}, storage.ErrNotFound
		}
		return storage.NotificationRecord{}, fmt.Errorf("reload notification: %w", err)
	}
	return record, nil
}

func normalizeNotificationRecord(record storage.NotificationRecord) (storage.NotificationRecord, error) {
	record.ID = strings.TrimSpace(record.ID)
	record.RecipientUserID = strings.TrimSpace(record.RecipientUserID)
	record.EventID = strings.TrimSpace(record.EventID)
	record.MessageType = strings.TrimSpace(record.MessageType)
	record.DedupeKey = strings.TrimSpace(record.DedupeKey)
	record.PayloadJSON = strings.TrimSpace(record.PayloadJSON)
	if record.PayloadJSON == "" {
		record.PayloadJSON = "{}"
	}
	if record.ID == "" {
		return storage.NotificationRecord{}, fmt.Errorf("notification id is required")
	}
	if record.RecipientUserID == "" {
		return storage.NotificationRecord{}, fmt.Errorf("recipient user id is required")
	}
	if record.EventID == "" {
		return storage.NotificationRecord{}, fmt.Errorf("event id is required")
	}
	if record.MessageType == "" {
		return storage.NotificationRecord{}, fmt.Errorf("message type is required")
	}
	if record.CreatedAt.IsZero() {
		return storage.NotificationRecord{}, fmt.Errorf("created_at is required")
	}
	record.CreatedAt = record.CreatedAt.UTC()
	if record.ReadAt != nil {
		readAt := record.ReadAt.UTC()
		record.ReadAt = &readAt
	}
	return record, nil
}

func scanNotification(scan scanner) (storage.NotificationRecord, error) {
	var record storage.NotificationRecord
	var createdAt int64
	var readAt sql.NullInt64
	if err := scan(
		&record.ID,
		&record.RecipientUserID,
		&record.EventID,
		&record.MessageType,
		&record.PayloadJSON,
		&record.DedupeKey,
		&createdAt,
		&readAt,
	); err != nil {
		return storage.NotificationRecord{}, err
	}
	record.CreatedAt = fromMillis(createdAt)
	if readAt.Valid {
		value := fromMillis(readAt.Int64)
		record.ReadAt = &value
	}
	return record, nil
}

// Invites

func (s *Store) PutInvite(ctx context.Context, record storage.InviteRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	normalized, err := normalizeInviteRecord(record)
	if err != nil {
		return err
	}
	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO invites (id, event_id, created_by_user_id, state, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    state = excluded.state,
    updated_at = excluded.updated_at
`,
		normalized.ID,
		normalized.EventID,
		normalized.CreatedByUserID,
		normalized.State,
		toMillis(normalized.CreatedAt),
		toMillis(normalized.UpdatedAt),
	)
	if err != nil {
		if isForeignKeyConstraintError(err) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("put invite: %w", err)
	}
	return nil
}

func (s *Store) GetInvite(ctx context.Context, inviteID string) (storage.InviteRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.InviteRecord{}, err
	}
	if err := s.ready(); err != nil {
		return storage.InviteRecord{}, err
	}
	inviteID = strings.TrimSpace(inviteID)
	if inviteID == "" {
		return storage.InviteRecord{}, fmt.Errorf("invite id is required")
	}
	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, event_id, created_by_user_id, state, created_at, updated_at
FROM invites
WHERE id = ?
`, inviteID)
	record, err := scanInvite(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.InviteRecord{}, storage.ErrNotFound
		}
		return storage.InviteRecord{}, fmt.Errorf("get invite: %w", err)
	}
	return record, nil
}

func (s *Store) ListInvitesByEvent(ctx context.Context, eventID string) ([]storage.InviteRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return nil, fmt.Errorf("event id is required")
	}
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, event_id, created_by_user_id, state, created_at, updated_at
FROM invites
WHERE event_id = ?
ORDER BY created_at ASC, id ASC
`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list invites: %w", err)
	}
	defer rows.Close()

	var records []storage.InviteRecord
	for rows.Next() {
		record, scanErr := scanInvite(rows.Scan)
		if scanErr != nil {
			return nil, fmt.Errorf("scan invite row: %w", scanErr)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invite rows: %w", err)
	}
	return records, nil
}

// MarkInviteClaimed transitions one pending invite to claimed.
func (s *Store) MarkInviteClaimed(ctx context.Context, inviteID string, claimedAt time.Time) (storage.InviteRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.InviteRecord{}, err
	}
	if err := s.ready(); err != nil {
		return storage.InviteRecord{}, err
	}
	inviteID = strings.TrimSpace(inviteID)
	if inviteID == "" {
		return storage.InviteRecord{}, fmt.Errorf("invite id is required")
	}
	if claimedAt.IsZero() {
		return storage.InviteRecord{}, fmt.Errorf("claimed_at is required")
	}

	result, err := s.sqlDB.ExecContext(ctx, `
UPDATE invites
SET state = ?, updated_at = ?
WHERE id = ? AND state = ?
`, storage.InviteStateClaimed, toMillis(claimedAt), inviteID, storage.InviteStatePending)
	if err != nil {
		return storage.InviteRecord{}, fmt.Errorf("mark invite claimed: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return storage.InviteRecord{}, fmt.Errorf("mark invite claimed rows affected: %w", err)
	}
	if affected == 0 {
		return storage.InviteRecord{}, storage.ErrConflict
	}
	return s.GetInvite(ctx, inviteID)
}

func (s *Store) DeactivateInvitesByEvent(ctx context.Context, eventID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := s.ready(); err != nil {
		return 0, err
	}
	return deactivateInvitesExec(ctx, s.sqlDB, eventID)
}

func (v *txView) DeactivateInvitesByEvent(ctx context.Context, eventID string) (int, error) {
	return deactivateInvitesExec(ctx, v.tx, eventID)
}

func deactivateInvitesExec(ctx context.Context, q sqlQuerier, eventID string) (int, error) {
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return 0, fmt.Errorf("event id is required")
	}
	now := time.Now().UTC()
	result, err := q.ExecContext(ctx, `
UPDATE invites
SET state = ?, updated_at = ?
WHERE event_id = ? AND state = ?
`, storage.InviteStateRevoked, toMillis(now), eventID, storage.InviteStatePending)
	if err != nil {
		return 0, fmt.Errorf("deactivate invites: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("deactivate invites rows affected: %w", err)
	}
	return int(affected), nil
}

func normalizeInviteRecord(record storage.InviteRecord) (storage.InviteRecord, error) {
	record.ID = strings.TrimSpace(record.ID)
	record.EventID = strings.TrimSpace(record.EventID)
	record.CreatedByUserID = strings.TrimSpace(record.CreatedByUserID)
	record.State = strings.TrimSpace(record.State)
	if record.ID == "" {
		return storage.InviteRecord{}, fmt.Errorf("invite id is required")
	}
	if record.EventID == "" {
		return storage.InviteRecord{}, fmt.Errorf("event id is required")
	}
	if record.CreatedByUserID == "" {
		return storage.InviteRecord{}, fmt.Errorf("created by user id is required")
	}
	if record.State == "" {
		return storage.InviteRecord{}, fmt.Errorf("invite state is required")
	}
	if record.CreatedAt.IsZero() {
		return storage.InviteRecord{}, fmt.Errorf("created_at is required")
	}
	if record.UpdatedAt.IsZero() {
		return storage.InviteRecord{}, fmt.Errorf("updated_at is required")
	}
	record.CreatedAt = record.CreatedAt.UTC()
	record.UpdatedAt = record.UpdatedAt.UTC()
	return record, nil
}

func scanInvite(scan scanner) (storage.InviteRecord, error) {
	var record storage.InviteRecord
	var createdAt, updatedAt int64
	if err := scan(
		&record.ID,
		&record.EventID,
		&record.CreatedByUserID,
		&record.State,
		&createdAt,
		&updatedAt,
	); err != nil {
		return storage.InviteRecord{}, err
	}
	record.CreatedAt = fromMillis(createdAt)
	record.UpdatedAt = fromMillis(updatedAt)
	return record, nil
}
