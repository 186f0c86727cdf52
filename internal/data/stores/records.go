package stores

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"maps"
	"strconv"
	"time"

	"github.com/colonyops/tally/internal/core/entity"
	"github.com/colonyops/tally/internal/data/db"
)

// RecordStore implements entity.Store using SQLite. Every kind shares the
// records table; values are stored as a JSON document.
type RecordStore struct {
	db  *db.DB
	now func() time.Time
}

var _ entity.Store = (*RecordStore)(nil)

// NewRecordStore creates a new SQLite-backed record store.
func NewRecordStore(db *db.DB) *RecordStore {
	return &RecordStore{db: db, now: time.Now}
}

// List returns every record of kind in insertion order.
func (s *RecordStore) List(ctx context.Context, kind entity.Kind) ([]entity.Record, error) {
	schema, err := lookup(kind)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Queries().ListRecords(ctx, string(kind))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}

	records := make([]entity.Record, 0, len(rows))
	for _, row := range rows {
		rec, err := rowToRecord(schema, row)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// Get returns one record. Returns entity.ErrNotFound if not found.
func (s *RecordStore) Get(ctx context.Context, kind entity.Kind, id string) (entity.Record, error) {
	schema, err := lookup(kind)
	if err != nil {
		return entity.Record{}, err
	}

	row, err := s.find(ctx, s.db.Queries(), schema, id)
	if err != nil {
		return entity.Record{}, err
	}
	return rowToRecord(schema, row)
}

// Create stores values and returns the record id: the composite key for
// keyed kinds, the row id otherwise.
func (s *RecordStore) Create(ctx context.Context, kind entity.Kind, values map[string]any) (string, error) {
	schema, err := lookup(kind)
	if err != nil {
		return "", err
	}

	values = schema.Normalize(values)
	key, err := recordKey(schema, values)
	if err != nil {
		return "", err
	}

	data, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("marshal %s: %w", kind, err)
	}

	now := s.now().UnixNano()
	rid, err := s.db.Queries().InsertRecord(ctx, db.InsertRecordParams{
		Kind:      string(kind),
		Key:       key,
		Data:      string(data),
		CreatedAt: now,
		UpdatedAt: now,
	})
	if IsConstraintError(err) {
		return "", fmt.Errorf("%s %s: %w", kind, key.String, entity.ErrConflict)
	}
	if err != nil {
		return "", fmt.Errorf("insert %s: %w", kind, err)
	}

	if key.Valid {
		return key.String, nil
	}
	return strconv.FormatInt(rid, 10), nil
}

// Update merges patch into the stored values. For keyed kinds a patch that
// touches key fields moves the record to its new key.
func (s *RecordStore) Update(ctx context.Context, kind entity.Kind, id string, patch map[string]any) error {
	schema, err := lookup(kind)
	if err != nil {
		return err
	}

	err = s.db.WithTx(ctx, func(q *db.Queries) error {
		row, err := s.find(ctx, q, schema, id)
		if err != nil {
			return err
		}

		current, err := decodeValues(schema, row.Data)
		if err != nil {
			return err
		}
		merged := maps.Clone(current)
		maps.Copy(merged, schema.Normalize(patch))

		key, err := recordKey(schema, merged)
		if err != nil {
			return err
		}

		data, err := json.Marshal(merged)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", kind, err)
		}

		n, err := q.UpdateRecord(ctx, db.UpdateRecordParams{
			RID:       row.RID,
			Key:       key,
			Data:      string(data),
			UpdatedAt: s.now().UnixNano(),
		})
		if IsConstraintError(err) {
			return fmt.Errorf("%s %s: %w", kind, key.String, entity.ErrConflict)
		}
		if err != nil {
			return fmt.Errorf("update %s %s: %w", kind, id, err)
		}
		if n == 0 {
			return entity.ErrNotFound
		}
		return nil
	})
	return err
}

// Delete removes one record. Returns entity.ErrNotFound if not found.
func (s *RecordStore) Delete(ctx context.Context, kind entity.Kind, id string) error {
	schema, err := lookup(kind)
	if err != nil {
		return err
	}

	return s.db.WithTx(ctx, func(q *db.Queries) error {
		row, err := s.find(ctx, q, schema, id)
		if err != nil {
			return err
		}

		n, err := q.DeleteRecord(ctx, row.RID)
		if err != nil {
			return fmt.Errorf("delete %s %s: %w", kind, id, err)
		}
		if n == 0 {
			return entity.ErrNotFound
		}
		return nil
	})
}

func (s *RecordStore) find(ctx context.Context, q *db.Queries, schema entity.Schema, id string) (db.Record, error) {
	var (
		row db.Record
		err error
	)
	if schema.Composite() {
		row, err = q.GetRecordByKey(ctx, string(schema.Kind), id)
	} else {
		rid, perr := strconv.ParseInt(id, 10, 64)
		if perr != nil {
			return db.Record{}, fmt.Errorf("%s id %q: %w", schema.Kind, id, entity.ErrNotFound)
		}
		row, err = q.GetRecordByRID(ctx, string(schema.Kind), rid)
	}
	if IsNotFoundError(err) {
		return db.Record{}, fmt.Errorf("%s %s: %w", schema.Kind, id, entity.ErrNotFound)
	}
	if err != nil {
		return db.Record{}, fmt.Errorf("get %s %s: %w", schema.Kind, id, err)
	}
	return row, nil
}

func lookup(kind entity.Kind) (entity.Schema, error) {
	schema, ok := entity.Lookup(string(kind))
	if !ok {
		return entity.Schema{}, fmt.Errorf("unknown entity %q", kind)
	}
	return schema, nil
}

// recordKey returns the key column value; it is NULL for kinds keyed by row id.
func recordKey(schema entity.Schema, values map[string]any) (sql.NullString, error) {
	if !schema.Composite() {
		return sql.NullString{}, nil
	}
	key, ok := schema.KeyOf(values)
	if !ok {
		return sql.NullString{}, fmt.Errorf("%s requires %v", schema.Kind, schema.KeyFields)
	}
	return sql.NullString{String: key, Valid: true}, nil
}

func decodeValues(schema entity.Schema, data string) (map[string]any, error) {
	var values map[string]any
	if err := json.Unmarshal([]byte(data), &values); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", schema.Kind, err)
	}
	return schema.Normalize(values), nil
}

// rowToRecord converts a db.Record to an entity.Record.
func rowToRecord(schema entity.Schema, row db.Record) (entity.Record, error) {
	values, err := decodeValues(schema, row.Data)
	if err != nil {
		return entity.Record{}, err
	}

	id := strconv.FormatInt(row.RID, 10)
	if row.Key.Valid {
		id = row.Key.String
	}

	return entity.Record{
		ID:        id,
		Kind:      schema.Kind,
		Values:    values,
		CreatedAt: time.Unix(0, row.CreatedAt),
		UpdatedAt: time.Unix(0, row.UpdatedAt),
	}, nil
}
