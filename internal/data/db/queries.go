package db

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries runs the statements the stores need.
type Queries struct {
	db DBTX
}

// New binds queries to a connection or transaction.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns a copy of q bound to tx.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

const recordColumns = `rid, kind, key, data, created_at, updated_at`

func scanRecord(row interface{ Scan(...any) error }) (Record, error) {
	var r Record
	err := row.Scan(&r.RID, &r.Kind, &r.Key, &r.Data, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

const listRecords = `SELECT ` + recordColumns + ` FROM records WHERE kind = ? ORDER BY rid`

func (q *Queries) ListRecords(ctx context.Context, kind string) ([]Record, error) {
	rows, err := q.db.QueryContext(ctx, listRecords, kind)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const getRecordByRID = `SELECT ` + recordColumns + ` FROM records WHERE kind = ? AND rid = ?`

func (q *Queries) GetRecordByRID(ctx context.Context, kind string, rid int64) (Record, error) {
	return scanRecord(q.db.QueryRowContext(ctx, getRecordByRID, kind, rid))
}

const getRecordByKey = `SELECT ` + recordColumns + ` FROM records WHERE kind = ? AND key = ?`

func (q *Queries) GetRecordByKey(ctx context.Context, kind, key string) (Record, error) {
	return scanRecord(q.db.QueryRowContext(ctx, getRecordByKey, kind, key))
}

const insertRecord = `INSERT INTO records (kind, key, data, created_at, updated_at) VALUES (?, ?, ?, ?, ?) RETURNING rid`

type InsertRecordParams struct {
	Kind      string
	Key       sql.NullString
	Data      string
	CreatedAt int64
	UpdatedAt int64
}

func (q *Queries) InsertRecord(ctx context.Context, arg InsertRecordParams) (int64, error) {
	var rid int64
	err := q.db.QueryRowContext(ctx, insertRecord, arg.Kind, arg.Key, arg.Data, arg.CreatedAt, arg.UpdatedAt).Scan(&rid)
	return rid, err
}

const updateRecord = `UPDATE records SET key = ?, data = ?, updated_at = ? WHERE rid = ?`

type UpdateRecordParams struct {
	RID       int64
	Key       sql.NullString
	Data      string
	UpdatedAt int64
}

// UpdateRecord returns the number of rows affected.
func (q *Queries) UpdateRecord(ctx context.Context, arg UpdateRecordParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateRecord, arg.Key, arg.Data, arg.UpdatedAt, arg.RID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteRecord = `DELETE FROM records WHERE rid = ?`

// DeleteRecord returns the number of rows affected.
func (q *Queries) DeleteRecord(ctx context.Context, rid int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteRecord, rid)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const countRecords = `SELECT COUNT(*) FROM records WHERE kind = ?`

func (q *Queries) CountRecords(ctx context.Context, kind string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countRecords, kind).Scan(&n)
	return n, err
}

const insertNotification = `INSERT INTO notifications (level, message, created_at) VALUES (?, ?, ?) RETURNING id`

type InsertNotificationParams struct {
	Level     string
	Message   string
	CreatedAt int64
}

func (q *Queries) InsertNotification(ctx context.Context, arg InsertNotificationParams) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, insertNotification, arg.Level, arg.Message, arg.CreatedAt).Scan(&id)
	return id, err
}

const listNotifications = `SELECT id, level, message, created_at FROM notifications ORDER BY created_at DESC, id DESC`

func (q *Queries) ListNotifications(ctx context.Context) ([]Notification, error) {
	rows, err := q.db.QueryContext(ctx, listNotifications)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.Level, &n.Message, &n.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, n)
	}
	return items, rows.Err()
}

const deleteAllNotifications = `DELETE FROM notifications`

func (q *Queries) DeleteAllNotifications(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllNotifications)
	return err
}

const deleteNotificationsBefore = `DELETE FROM notifications WHERE created_at < ?`

// DeleteNotificationsBefore returns the number of rows removed.
func (q *Queries) DeleteNotificationsBefore(ctx context.Context, before int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteNotificationsBefore, before)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const countNotifications = `SELECT COUNT(*) FROM notifications`

func (q *Queries) CountNotifications(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countNotifications).Scan(&n)
	return n, err
}

const getPreference = `SELECT key, value, expires_at, created_at, updated_at FROM preferences WHERE key = ?`

func (q *Queries) GetPreference(ctx context.Context, key string) (Preference, error) {
	var p Preference
	err := q.db.QueryRowContext(ctx, getPreference, key).Scan(&p.Key, &p.Value, &p.ExpiresAt, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

const upsertPreference = `INSERT INTO preferences (key, value, expires_at, created_at, updated_at) VALUES (?, ?, ?, ?, ?)
ON CONFLICT (key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at, updated_at = excluded.updated_at`

type UpsertPreferenceParams struct {
	Key       string
	Value     []byte
	ExpiresAt sql.NullInt64
	CreatedAt int64
	UpdatedAt int64
}

func (q *Queries) UpsertPreference(ctx context.Context, arg UpsertPreferenceParams) error {
	_, err := q.db.ExecContext(ctx, upsertPreference, arg.Key, arg.Value, arg.ExpiresAt, arg.CreatedAt, arg.UpdatedAt)
	return err
}

const deletePreference = `DELETE FROM preferences WHERE key = ?`

func (q *Queries) DeletePreference(ctx context.Context, key string) error {
	_, err := q.db.ExecContext(ctx, deletePreference, key)
	return err
}

const listPreferenceKeys = `SELECT key FROM preferences WHERE expires_at IS NULL OR expires_at >= ? ORDER BY key`

// ListPreferenceKeys returns keys that have not expired at now (unix nanos).
func (q *Queries) ListPreferenceKeys(ctx context.Context, now int64) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listPreferenceKeys, now)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

const sweepExpiredPreferences = `DELETE FROM preferences WHERE expires_at IS NOT NULL AND expires_at < ?`

// SweepExpiredPreferences returns the number of rows removed.
func (q *Queries) SweepExpiredPreferences(ctx context.Context, now int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, sweepExpiredPreferences, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
