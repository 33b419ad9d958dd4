package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/louisbranch/gather.space/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/gather.space/internal/services/gatherings/storage"
	"github.com/louisbranch/gather.space/internal/services/gatherings/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed persistence for gatherings state.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

func toMillisPtr(value *time.Time) any {
	if value == nil {
		return nil
	}
	return toMillis(*value)
}

// Open opens a gatherings SQLite store at the provided path. Transactions
// take the write lock at BEGIN so event-scoped writes serialize instead of
// failing at commit.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL&_txlock=immediate&_pragma=foreign_keys(ON)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := ensureForeignKeysEnabled(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	store := &Store{sqlDB: sqlDB}
	if err := store.runMigrations(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close closes the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) runMigrations() error {
	return sqlitemigrate.ApplyMigrations(s.sqlDB, migrations.FS, "")
}

func ensureForeignKeysEnabled(db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("sqlite db is required")
	}
	var enabled int
	if err := db.QueryRow("PRAGMA foreign_keys").Scan(&enabled); err != nil {
		return fmt.Errorf("check sqlite foreign key pragma: %w", err)
	}
	if enabled != 1 {
		return fmt.Errorf("sqlite foreign keys are disabled")
	}
	return nil
}

func (s *Store) ready() error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

// Transact runs fn inside one write transaction. SQLite allows a single
// writer, so all event-scoped check-then-write sequences serialize here.
func (s *Store) Transact(ctx context.Context, eventID string, fn func(tx storage.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(eventID) == "" {
		return fmt.Errorf("event id is required")
	}
	if fn == nil {
		return fmt.Errorf("transaction func is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin gatherings write: %w", err)
	}
	rollbackWith := func(cause error) error {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return fmt.Errorf("%w: rollback gatherings write: %v", cause, rollbackErr)
		}
		return cause
	}

	if err := fn(&txView{tx: tx}); err != nil {
		return rollbackWith(err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit gatherings write: %w", err)
	}
	return nil
}

// txView adapts one open *sql.Tx to the storage.Tx record interface.
type txView struct {
	tx *sql.Tx
}

// sqlQuerier is the subset of *sql.DB and *sql.Tx used by query helpers.
type sqlQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner func(dest ...any) error

// Events

func (s *Store) GetEvent(ctx context.Context, eventID string) (storage.EventRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.EventRecord{}, err
	}
	if err := s.ready(); err != nil {
		return storage.EventRecord{}, err
	}
	return getEventQuery(ctx, s.sqlDB, eventID)
}

func (v *txView) GetEvent(ctx context.Context, eventID string) (storage.EventRecord, error) {
	return getEventQuery(ctx, v.tx, eventID)
}

func getEventQuery(ctx context.Context, q sqlQuerier, eventID string) (storage.EventRecord, error) {
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return storage.EventRecord{}, fmt.Errorf("event id is required")
	}
	row := q.QueryRowContext(ctx, `
SELECT id, owner_user_id, title, description, location, state, start_time, end_time, rsvp_deadline, capacity, waitlist_enabled, created_at, updated_at
FROM events
WHERE id = ?
`, eventID)
	record, err := scanEvent(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.EventRecord{}, storage.ErrNotFound
		}
		return storage.EventRecord{}, fmt.Errorf("get event: %w", err)
	}
	return record, nil
}

func (s *Store) PutEvent(ctx context.Context, record storage.EventRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	return putEventExec(ctx, s.sqlDB, record)
}

func (v *txView) PutEvent(ctx context.Context, record storage.EventRecord) error {
	return putEventExec(ctx, v.tx, record)
}

func putEventExec(ctx context.Context, q sqlQuerier, record storage.EventRecord) error {
	normalized, err := normalizeEventRecord(record)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, `
INSERT INTO events (id, owner_user_id, title, description, location, state, start_time, end_time, rsvp_deadline, capacity, waitlist_enabled, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    owner_user_id = excluded.owner_user_id,
    title = excluded.title,
    description = excluded.description,
    location = excluded.location,
    state = excluded.state,
    start_time = excluded.start_time,
    end_time = excluded.end_time,
    rsvp_deadline = excluded.rsvp_deadline,
    capacity = excluded.capacity,
    waitlist_enabled = excluded.waitlist_enabled,
    created_at = excluded.created_at,
    updated_at = excluded.updated_at
`,
		normalized.ID,
		normalized.OwnerUserID,
		normalized.Title,
		normalized.Description,
		normalized.Location,
		normalized.State,
		toMillis(normalized.StartTime),
		toMillisPtr(normalized.EndTime),
		toMillisPtr(normalized.RSVPDeadline),
		capacityValue(normalized.Capacity),
		boolToInt(normalized.WaitlistEnabled),
		toMillis(normalized.CreatedAt),
		toMillis(normalized.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put event: %w", err)
	}
	return nil
}

// RSVPs

func (s *Store) GetRSVP(ctx context.Context, eventID string, userID string) (storage.RSVPRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.RSVPRecord{}, err
	}
	if err := s.ready(); err != nil {
		return storage.RSVPRecord{}, err
	}
	return getRSVPQuery(ctx, s.sqlDB, eventID, userID)
}

func (v *txView) GetRSVP(ctx context.Context, eventID string, userID string) (storage.RSVPRecord, error) {
	return getRSVPQuery(ctx, v.tx, eventID, userID)
}

func getRSVPQuery(ctx context.Context, q sqlQuerier, eventID string, userID string) (storage.RSVPRecord, error) {
	eventID = strings.TrimSpace(eventID)
	userID = strings.TrimSpace(userID)
	if eventID == "" {
		return storage.RSVPRecord{}, fmt.Errorf("event id is required")
	}
	if userID == "" {
		return storage.RSVPRecord{}, fmt.Errorf("user id is required")
	}
	row := q.QueryRowContext(ctx, `
SELECT event_id, user_id, response, needs_reconfirmation, created_at, updated_at
FROM rsvps
WHERE event_id = ? AND user_id = ?
`, eventID, userID)
	record, err := scanRSVP(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.RSVPRecord{}, storage.ErrNotFound
		}
		return storage.RSVPRecord{}, fmt.Errorf("get rsvp: %w", err)
	}
	return record, nil
}

func (s *Store) ListRSVPsByEvent(ctx context.Context, eventID string) ([]storage.RSVPRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	return listRSVPsQuery(ctx, s.sqlDB, eventID)
}

func (v *txView) ListRSVPsByEvent(ctx context.Context, eventID string) ([]storage.RSVPRecord, error) {
	return listRSVPsQuery(ctx, v.tx, eventID)
}

func listRSVPsQuery(ctx context.Context, q sqlQuerier, eventID string) ([]storage.RSVPRecord, error) {
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return nil, fmt.Errorf("event id is required")
	}
	rows, err := q.QueryContext(ctx, `
SELECT event_id, user_id, response, needs_reconfirmation, created_at, updated_at
FROM rsvps
WHERE event_id = ?
ORDER BY created_at ASC, user_id ASC
`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list rsvps: %w", err)
	}
	defer rows.Close()

	var records []storage.RSVPRecord
	for rows.Next() {
		record, scanErr := scanRSVP(rows.Scan)
		if scanErr != nil {
			return nil, fmt.Errorf("scan rsvp row: %w", scanErr)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rsvp rows: %w", err)
	}
	return records, nil
}

func (s *Store) CountRSVPsByResponse(ctx context.Context, eventID string, response string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := s.ready(); err != nil {
		return 0, err
	}
	return countRSVPsQuery(ctx, s.sqlDB, eventID, response)
}

func (v *txView) CountRSVPsByResponse(ctx context.Context, eventID string, response string) (int, error) {
	return countRSVPsQuery(ctx, v.tx, eventID, response)
}

func countRSVPsQuery(ctx context.Context, q sqlQuerier, eventID string, response string) (int, error) {
	eventID = strings.TrimSpace(eventID)
	response = strings.TrimSpace(response)
	if eventID == "" {
		return 0, fmt.Errorf("event id is required")
	}
	if response == "" {
		return 0, fmt.Errorf("response is required")
	}
	var count int
	if err := q.QueryRowContext(ctx, `
SELECT COUNT(1)
FROM rsvps
WHERE event_id = ? AND response = ?
`, eventID, response).Scan(&count); err != nil {
		return 0, fmt.Errorf("count rsvps: %w", err)
	}
	return count, nil
}

func (s *Store) PutRSVP(ctx context.Context, record storage.RSVPRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	return putRSVPExec(ctx, s.sqlDB, record)
}

func (v *txView) PutRSVP(ctx context.Context, record storage.RSVPRecord) error {
	return putRSVPExec(ctx, v.tx, record)
}

func putRSVPExec(ctx context.Context, q sqlQuerier, record storage.RSVPRecord) error {
	normalized, err := normalizeRSVPRecord(record)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, `
INSERT INTO rsvps (event_id, user_id, response, needs_reconfirmation, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(event_id, user_id) DO UPDATE SET
    response = excluded.response,
    needs_reconfirmation = excluded.needs_reconfirmation,
    created_at = excluded.created_at,
    updated_at = excluded.updated_at
`,
		normalized.EventID,
		normalized.UserID,
		normalized.Response,
		boolToInt(normalized.NeedsReconfirmation),
		toMillis(normalized.CreatedAt),
		toMillis(normalized.UpdatedAt),
	)
	if err != nil {
		if isForeignKeyConstraintError(err) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("put rsvp: %w", err)
	}
	return nil
}

func (s *Store) DeleteRSVP(ctx context.Context, eventID string, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	return deleteRSVPExec(ctx, s.sqlDB, eventID, userID)
}

func (v *txView) DeleteRSVP(ctx context.Context, eventID string, userID string) error {
	return deleteRSVPExec(ctx, v.tx, eventID, userID)
}

func deleteRSVPExec(ctx context.Context, q sqlQuerier, eventID string, userID string) error {
	eventID = strings.TrimSpace(eventID)
	userID = strings.TrimSpace(userID)
	if eventID == "" {
		return fmt.Errorf("event id is required")
	}
	if userID == "" {
		return fmt.Errorf("user id is required")
	}
	if _, err := q.ExecContext(ctx, `
DELETE FROM rsvps WHERE event_id = ? AND user_id = ?
`, eventID, userID); err != nil {
		return fmt.Errorf("delete rsvp: %w", err)
	}
	return nil
}

// Waitlist

func (s *Store) GetWaitlistEntry(ctx context.Context, eventID string, userID string) (storage.WaitlistEntryRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.WaitlistEntryRecord{}, err
	}
	if err := s.ready(); err != nil {
		return storage.WaitlistEntryRecord{}, err
	}
	return getWaitlistEntryQuery(ctx, s.sqlDB, eventID, userID)
}

func (v *txView) GetWaitlistEntry(ctx context.Context, eventID string, userID string) (storage.WaitlistEntryRecord, error) {
	return getWaitlistEntryQuery(ctx, v.tx, eventID, userID)
}

func getWaitlistEntryQuery(ctx context.Context, q sqlQuerier, eventID string, userID string) (storage.WaitlistEntryRecord, error) {
	eventID = strings.TrimSpace(eventID)
	userID = strings.TrimSpace(userID)
	if eventID == "" {
		return storage.WaitlistEntryRecord{}, fmt.Errorf("event id is required")
	}
	if userID == "" {
		return storage.WaitlistEntryRecord{}, fmt.Errorf("user id is required")
	}
	row := q.QueryRowContext(ctx, `
SELECT event_id, user_id, joined_at, notified_at, expires_at
FROM waitlist_entries
WHERE event_id = ? AND user_id = ?
`, eventID, userID)
	record, err := scanWaitlistEntry(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.WaitlistEntryRecord{}, storage.ErrNotFound
		}
		return storage.WaitlistEntryRecord{}, fmt.Errorf("get waitlist entry: %w", err)
	}
	return record, nil
}

func (s *Store) ListWaitlistEntriesByEvent(ctx context.Context, eventID string) ([]storage.WaitlistEntryRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	return listWaitlistEntriesQuery(ctx, s.sqlDB, eventID)
}

func (v *txView) ListWaitlistEntriesByEvent(ctx context.Context, eventID string) ([]storage.WaitlistEntryRecord, error) {
	return listWaitlistEntriesQuery(ctx, v.tx, eventID)
}

func listWaitlistEntriesQuery(ctx context.Context, q sqlQuerier, eventID string) ([]storage.WaitlistEntryRecord, error) {
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return nil, fmt.Errorf("event id is required")
	}
	// rowid breaks joined_at ties in arrival order
	rows, err := q.QueryContext(ctx, `
SELECT event_id, user_id, joined_at, notified_at, expires_at
FROM waitlist_entries
WHERE event_id = ?
ORDER BY joined_at ASC, rowid ASC
`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list waitlist entries: %w", err)
	}
	defer rows.Close()

	var records []storage.WaitlistEntryRecord
	for rows.Next() {
		record, scanErr := scanWaitlistEntry(rows.Scan)
		if scanErr != nil {
			return nil, fmt.Errorf("scan waitlist row: %w", scanErr)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate waitlist rows: %w", err)
	}
	return records, nil
}

func (s *Store) PutWaitlistEntry(ctx context.Context, record storage.WaitlistEntryRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	return putWaitlistEntryExec(ctx, s.sqlDB, record)
}

func (v *txView) PutWaitlistEntry(ctx context.Context, record storage.WaitlistEntryRecord) error {
	return putWaitlistEntryExec(ctx, v.tx, record)
}

func putWaitlistEntryExec(ctx context.Context, q sqlQuerier, record storage.WaitlistEntryRecord) error {
	normalized, err := normalizeWaitlistEntryRecord(record)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, `
INSERT INTO waitlist_entries (event_id, user_id, joined_at, notified_at, expires_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(event_id, user_id) DO UPDATE SET
    joined_at = excluded.joined_at,
    notified_at = excluded.notified_at,
    expires_at = excluded.expires_at
`,
		normalized.EventID,
		normalized.UserID,
		toMillis(normalized.JoinedAt),
		toMillisPtr(normalized.NotifiedAt),
		toMillisPtr(normalized.ExpiresAt),
	)
	if err != nil {
		if isForeignKeyConstraintError(err) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("put waitlist entry: %w", err)
	}
	return nil
}

func (s *Store) DeleteWaitlistEntry(ctx context.Context, eventID string, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	return deleteWaitlistEntryExec(ctx, s.sqlDB, eventID, userID)
}

func (v *txView) DeleteWaitlistEntry(ctx context.Context, eventID string, userID string) error {
	return deleteWaitlistEntryExec(ctx, v.tx, eventID, userID)
}

func deleteWaitlistEntryExec(ctx context.Context, q sqlQuerier, eventID string, userID string) error {
	eventID = strings.TrimSpace(eventID)
	userID = strings.TrimSpace(userID)
	if eventID == "" {
		return fmt.Errorf("event id is required")
	}
	if userID == "" {
		return fmt.Errorf("user id is required")
	}
	if _, err := q.ExecContext(ctx, `
DELETE FROM waitlist_entries WHERE event_id = ? AND user_id = ?
`, eventID, userID); err != nil {
		return fmt.Errorf("delete waitlist entry: %w", err)
	}
	return nil
}

// Normalization and scanning

func normalizeEventRecord(record storage.EventRecord) (storage.EventRecord, error) {
	record.ID = strings.TrimSpace(record.ID)
	record.OwnerUserID = strings.TrimSpace(record.OwnerUserID)
	record.Title = strings.TrimSpace(record.Title)
	record.State = strings.TrimSpace(record.State)
	if record.ID == "" {
		return storage.EventRecord{}, fmt.Errorf("event id is required")
	}
	if record.Title == "" {
		return storage.EventRecord{}, fmt.Errorf("event title is required")
	}
	if record.State == "" {
		return storage.EventRecord{}, fmt.Errorf("event state is required")
	}
	if record.StartTime.IsZero() {
		return storage.EventRecord{}, fmt.Errorf("start time is required")
	}
	if record.CreatedAt.IsZero() {
		return storage.EventRecord{}, fmt.Errorf("created_at is required")
	}
	if record.UpdatedAt.IsZero() {
		return storage.EventRecord{}, fmt.Errorf("updated_at is required")
	}
	record.StartTime = record.StartTime.UTC()
	record.CreatedAt = record.CreatedAt.UTC()
	record.UpdatedAt = record.UpdatedAt.UTC()
	return record, nil
}

func normalizeRSVPRecord(record storage.RSVPRecord) (storage.RSVPRecord, error) {
	record.EventID = strings.TrimSpace(record.EventID)
	record.UserID = strings.TrimSpace(record.UserID)
	record.Response = strings.TrimSpace(record.Response)
	if record.EventID == "" {
		return storage.RSVPRecord{}, fmt.Errorf("event id is required")
	}
	if record.UserID == "" {
		return storage.RSVPRecord{}, fmt.Errorf("user id is required")
	}
	if record.Response == "" {
		return storage.RSVPRecord{}, fmt.Errorf("response is required")
	}
	if record.CreatedAt.IsZero() {
		return storage.RSVPRecord{}, fmt.Errorf("created_at is required")
	}
	if record.UpdatedAt.IsZero() {
		return storage.RSVPRecord{}, fmt.Errorf("updated_at is required")
	}
	record.CreatedAt = record.CreatedAt.UTC()
	record.UpdatedAt = record.UpdatedAt.UTC()
	return record, nil
}

func normalizeWaitlistEntryRecord(record storage.WaitlistEntryRecord) (storage.WaitlistEntryRecord, error) {
	record.EventID = strings.TrimSpace(record.EventID)
	record.UserID = strings.TrimSpace(record.UserID)
	if record.EventID == "" {
		return storage.WaitlistEntryRecord{}, fmt.Errorf("event id is required")
	}
	if record.UserID == "" {
		return storage.WaitlistEntryRecord{}, fmt.Errorf("user id is required")
	}
	if record.JoinedAt.IsZero() {
		return storage.WaitlistEntryRecord{}, fmt.Errorf("joined_at is required")
	}
	record.JoinedAt = record.JoinedAt.UTC()
	if record.NotifiedAt != nil {
		notifiedAt := record.NotifiedAt.UTC()
		record.NotifiedAt = &notifiedAt
	}
	if record.ExpiresAt != nil {
		expiresAt := record.ExpiresAt.UTC()
		record.ExpiresAt = &expiresAt
	}
	return record, nil
}

func scanEvent(scan scanner) (storage.EventRecord, error) {
	var record storage.EventRecord
	var startTime int64
	var endTime, rsvpDeadline, capacity sql.NullInt64
	var waitlistEnabled int
	var createdAt, updatedAt int64
	if err := scan(
		&record.ID,
		&record.OwnerUserID,
		&record.Title,
		&record.Description,
		&record.Location,
		&record.State,
		&startTime,
		&endTime,
		&rsvpDeadline,
		&capacity,
		&waitlistEnabled,
		&createdAt,
		&updatedAt,
	); err != nil {
		return storage.EventRecord{}, err
	}
	record.StartTime = fromMillis(startTime)
	if endTime.Valid {
		value := fromMillis(endTime.Int64)
		record.EndTime = &value
	}
	if rsvpDeadline.Valid {
		value := fromMillis(rsvpDeadline.Int64)
		record.RSVPDeadline = &value
	}
	if capacity.Valid {
		value := int(capacity.Int64)
		record.Capacity = &value
	}
	record.WaitlistEnabled = waitlistEnabled != 0
	record.CreatedAt = fromMillis(createdAt)
	record.UpdatedAt = fromMillis(updatedAt)
	return record, nil
}

func scanRSVP(scan scanner) (storage.RSVPRecord, error) {
	var record storage.RSVPRecord
	var needsReconfirmation int
	var createdAt, updatedAt int64
	if err := scan(
		&record.EventID,
		&record.UserID,
		&record.Response,
		&needsReconfirmation,
		&createdAt,
		&updatedAt,
	); err != nil {
		return storage.RSVPRecord{}, err
	}
	record.NeedsReconfirmation = needsReconfirmation != 0
	record.CreatedAt = fromMillis(createdAt)
	record.UpdatedAt = fromMillis(updatedAt)
	return record, nil
}

func scanWaitlistEntry(scan scanner) (storage.WaitlistEntryRecord, error) {
	var record storage.WaitlistEntryRecord
	var joinedAt int64
	var notifiedAt, expiresAt sql.NullInt64
	if err := scan(
		&record.EventID,
		&record.UserID,
		&joinedAt,
		&notifiedAt,
		&expiresAt,
	); err != nil {
		return storage.WaitlistEntryRecord{}, err
	}
	record.JoinedAt = fromMillis(joinedAt)
	if notifiedAt.Valid {
		value := fromMillis(notifiedAt.Int64)
		record.NotifiedAt = &value
	}
	if expiresAt.Valid {
		value := fromMillis(expiresAt.Int64)
		record.ExpiresAt = &value
	}
	return record, nil
}

func capacityValue(capacity *int) any {
	if capacity == nil {
		return nil
	}
	return *capacity
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	value := strings.ToLower(err.Error())
	return strings.Contains(value, "unique constraint failed")
}

func isForeignKeyConstraintError(err error) bool {
	if err == nil {
		return false
	}
	value := strings.ToLower(err.Error())
	return strings.Contains(value, "foreign key constraint failed")
}
