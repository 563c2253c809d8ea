package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mkline/tasknest/pkg/models"
)

// recordColumns are the bookkeeping columns every table carries, in the
// order scan functions consume them.
const recordColumns = "created_at, updated_at, sync_status, local_version, remote_version, last_synced_at, is_deleted_locally"

// pendingSyncStatuses are the states the sync engine has to look at.
var pendingSyncStatuses = []models.SyncStatus{
	models.SyncStatusPending,
	models.SyncStatusConflict,
	models.SyncStatusFailed,
}

type rowScanner interface {
	Scan(dest ...any) error
}

// recordDest returns scan destinations for the bookkeeping columns.
// The deleted flag is stored as 0/1 and converted by the caller.
func recordDest(r *models.Record, deleted *int) []any {
	return []any{&r.CreatedAt, &r.UpdatedAt, &r.SyncStatus, &r.LocalVersion, &r.RemoteVersion, &r.LastSyncedAt, deleted}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// prefixColumns qualifies each column of a comma-separated list with a
// table alias, for joined queries.
func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ", ")
	for i, c := range parts {
		parts[i] = alias + "." + c
	}
	return strings.Join(parts, ", ")
}

// assign is one SET clause of an update. Entity stores translate their
// typed patch structs into assigns, so only fields present in the patch
// are written.
type assign struct {
	column string
	value  any
}

func set(column string, value any) assign { return assign{column: column, value: value} }

// batchUpdate pairs an id with the assignments to apply to it.
type batchUpdate struct {
	id   string
	sets []assign
}

// mapping binds an entity type to its table.
type mapping[T any] struct {
	table   string
	columns []string                     // entity columns between id and the bookkeeping columns
	values  func(*T) []any               // values for columns, same order
	scan    func(rowScanner) (*T, error) // scans id, columns, bookkeeping; returns the raw Scan error
	record  func(*T) *models.Record
}

// store implements uniform CRUD, soft-delete, versioning and sync-status
// bookkeeping over one table. Entity stores embed it and add their own
// queries. All bookkeeping fields are owned by this type; callers never
// set them directly.
type store[T any] struct {
	db *DB
	m  mapping[T]
}

func newStore[T any](db *DB, m mapping[T]) *store[T] {
	return &store[T]{db: db, m: m}
}

func (s *store[T]) selectList() string {
	return "id, " + strings.Join(s.m.columns, ", ") + ", " + recordColumns
}

// create inserts e, assigning a fresh id and initial bookkeeping. Fields
// the caller left unset keep their schema defaults.
func (s *store[T]) create(ctx context.Context, exec executor, e *T) error {
	rec := s.m.record(e)
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	rec.SyncStatus = models.SyncStatusPending
	rec.LocalVersion = 1
	rec.Deleted = false

	cols := append([]string{"id"}, s.m.columns...)
	cols = append(cols, "created_at", "updated_at", "sync_status", "local_version", "is_deleted_locally")
	args := append([]any{rec.ID}, s.m.values(e)...)
	args = append(args, rec.CreatedAt, rec.UpdatedAt, rec.SyncStatus, rec.LocalVersion, 0)

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		s.m.table, strings.Join(cols, ", "), placeholders(len(cols)))
	if _, err := exec.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert %s row: %w", s.m.table, err)
	}
	return nil
}

func (s *store[T]) Create(ctx context.Context, e *T) error {
	return s.create(ctx, s.db.DB, e)
}

// CreateBatch inserts all items in a single transaction. One failure
// rolls back the whole batch.
func (s *store[T]) CreateBatch(ctx context.Context, items []*T) error {
	if len(items) == 0 {
		return nil
	}
	return s.db.withTx(ctx, func(tx *sql.Tx) error {
		for _, e := range items {
			if err := s.create(ctx, tx, e); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *store[T]) getByID(ctx context.Context, exec executor, id string) (*T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ? AND is_deleted_locally = 0", s.selectList(), s.m.table)
	e, err := s.m.scan(exec.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s row: %w", s.m.table, err)
	}
	return e, nil
}

// GetByID returns the entity, or nil if it does not exist or is
// soft-deleted.
func (s *store[T]) GetByID(ctx context.Context, id string) (*T, error) {
	return s.getByID(ctx, s.db.DB, id)
}

// find runs a read query scoped to non-deleted rows. where and orderBy
// are raw SQL fragments supplied by entity stores, never by callers.
func (s *store[T]) find(ctx context.Context, where, orderBy string, args ...any) ([]*T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE is_deleted_locally = 0", s.selectList(), s.m.table)
	if where != "" {
		query += " AND " + where
	}
	if orderBy != "" {
		query += " ORDER BY " + orderBy
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", s.m.table, err)
	}
	defer rows.Close()

	var items []*T
	for rows.Next() {
		e, err := s.m.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", s.m.table, err)
		}
		items = append(items, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return items, nil
}

func (s *store[T]) findOne(ctx context.Context, where string, args ...any) (*T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE is_deleted_locally = 0 AND %s LIMIT 1", s.selectList(), s.m.table, where)
	e, err := s.m.scan(s.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", s.m.table, err)
	}
	return e, nil
}

// List returns all non-deleted rows, optionally ordered.
func (s *store[T]) List(ctx context.Context, orderBy string) ([]*T, error) {
	return s.find(ctx, "", orderBy)
}

// update applies the assignments, stamps updated_at, bumps local_version
// atomically and marks the row pending sync. Returns nil, nil when the
// id is missing or soft-deleted.
func (s *store[T]) update(ctx context.Context, exec executor, id string, sets []assign) (*T, error) {
	clauses := make([]string, 0, len(sets)+3)
	args := make([]any, 0, len(sets)+3)
	for _, a := range sets {
		clauses = append(clauses, a.column+" = ?")
		args = append(args, a.value)
	}
	clauses = append(clauses, "updated_at = ?", "sync_status = ?", "local_version = local_version + 1")
	args = append(args, time.Now().UTC(), models.SyncStatusPending, id)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ? AND is_deleted_locally = 0",
		s.m.table, strings.Join(clauses, ", "))
	res, err := exec.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update %s row: %w", s.m.table, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return nil, nil
	}
	return s.getByID(ctx, exec, id)
}

// updateBatch applies all updates in a single transaction. A missing row
// aborts and rolls back the whole batch.
func (s *store[T]) updateBatch(ctx context.Context, ups []batchUpdate) error {
	if len(ups) == 0 {
		return nil
	}
	return s.db.withTx(ctx, func(tx *sql.Tx) error {
		for _, up := range ups {
			e, err := s.update(ctx, tx, up.id, up.sets)
			if err != nil {
				return err
			}
			if e == nil {
				return fmt.Errorf("%s row not found: %s", s.m.table, up.id)
			}
		}
		return nil
	})
}

// SoftDelete marks the row invisible to normal reads. It reports false
// when nothing changed: the row is missing or was already deleted. A
// zero change count is verified with a re-read rather than trusted
// outright.
func (s *store[T]) SoftDelete(ctx context.Context, id string) (bool, error) {
	query := fmt.Sprintf("UPDATE %s SET is_deleted_locally = 1, updated_at = ?, sync_status = ?, local_version = local_version + 1 WHERE id = ? AND is_deleted_locally = 0", s.m.table)
	res, err := s.db.ExecContext(ctx, query, time.Now().UTC(), models.SyncStatusPending, id)
	if err != nil {
		return false, fmt.Errorf("failed to soft-delete %s row: %w", s.m.table, err)
	}

	n, raErr := res.RowsAffected()
	if raErr == nil && n > 0 {
		return true, nil
	}

	var deleted int
	check := fmt.Sprintf("SELECT is_deleted_locally FROM %s WHERE id = ?", s.m.table)
	err = s.db.QueryRowContext(ctx, check, id).Scan(&deleted)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to verify soft-delete of %s row: %w", s.m.table, err)
	}
	// The update only matches live rows, so a present row with the
	// flag set was deleted before this call: no change made now. A
	// clear flag means the update failed to apply at all.
	if deleted == 0 {
		return false, fmt.Errorf("soft-delete of %s row %s did not apply", s.m.table, id)
	}
	return false, nil
}

// HardDelete physically removes the row. Rare; cleanup and reset flows only.
func (s *store[T]) HardDelete(ctx context.Context, id string) (bool, error) {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = ?", s.m.table)
	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete %s row: %w", s.m.table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n > 0, nil
}

// Count counts non-deleted rows, optionally narrowed by a where fragment.
func (s *store[T]) Count(ctx context.Context, where string, args ...any) (int, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE is_deleted_locally = 0", s.m.table)
	if where != "" {
		query += " AND " + where
	}
	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %s rows: %w", s.m.table, err)
	}
	return count, nil
}

func (s *store[T]) Exists(ctx context.Context, id string) (bool, error) {
	count, err := s.Count(ctx, "id = ?", id)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpdateSyncStatus sets the sync bookkeeping outside the normal update
// path: no version bump, stamps last_synced_at. A nil remoteVersion
// leaves the stored token unchanged.
func (s *store[T]) UpdateSyncStatus(ctx context.Context, id string, status models.SyncStatus, remoteVersion *string) error {
	query := fmt.Sprintf("UPDATE %s SET sync_status = ?, remote_version = COALESCE(?, remote_version), last_synced_at = ? WHERE id = ?", s.m.table)
	res, err := s.db.ExecContext(ctx, query, status, remoteVersion, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update sync status of %s row: %w", s.m.table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s row not found: %s", s.m.table, id)
	}
	return nil
}

// PendingSync returns rows awaiting reconciliation, soft-deleted ones
// included, oldest change first.
func (s *store[T]) PendingSync(ctx context.Context) ([]*T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE sync_status IN (%s) ORDER BY updated_at ASC",
		s.selectList(), s.m.table, placeholders(len(pendingSyncStatuses)))
	args := make([]any, len(pendingSyncStatuses))
	for i, st := range pendingSyncStatuses {
		args[i] = st
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending %s rows: %w", s.m.table, err)
	}
	defer rows.Close()

	var items []*T
	for rows.Next() {
		e, err := s.m.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", s.m.table, err)
		}
		items = append(items, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return items, nil
}
