package grid

import (
	"fmt"
	"slices"
)

// Store is an ordered, id-unique row collection. Every mutation swaps in a
// new backing slice and bumps the revision, so slices handed out by Rows are
// never modified afterwards. Store is not safe for concurrent use; the
// Controller serializes access.
type Store struct {
	rows     []Row
	revision uint64
}

// NewStore returns a store seeded with rows.
func NewStore(rows ...Row) (*Store, error) {
	s := &Store{}
	if err := s.ReplaceAll(rows); err != nil {
		return nil, err
	}
	return s, nil
}

// Rows returns the current snapshot. Callers must not mutate it.
func (s *Store) Rows() []Row {
	return s.rows
}

func (s *Store) Len() int {
	return len(s.rows)
}

// Revision increments on every mutation.
func (s *Store) Revision() uint64 {
	return s.revision
}

// Get returns the row with id.
func (s *Store) Get(id ID) (Row, bool) {
	i := s.IndexOf(id)
	if i < 0 {
		return Row{}, false
	}
	return s.rows[i], true
}

// IndexOf returns the position of id, or -1.
func (s *Store) IndexOf(id ID) int {
	return slices.IndexFunc(s.rows, func(r Row) bool { return r.ID == id })
}

// Append adds row at the end.
func (s *Store) Append(row Row) error {
	if s.IndexOf(row.ID) >= 0 {
		return fmt.Errorf("append %s: %w", row.ID, ErrDuplicateID)
	}
	next := make([]Row, len(s.rows), len(s.rows)+1)
	copy(next, s.rows)
	s.swap(append(next, row))
	return nil
}

// ReplaceAll discards the current rows in favour of rows.
func (s *Store) ReplaceAll(rows []Row) error {
	seen := make(map[ID]struct{}, len(rows))
	for _, r := range rows {
		if _, ok := seen[r.ID]; ok {
			return fmt.Errorf("replace all: %s: %w", r.ID, ErrDuplicateID)
		}
		seen[r.ID] = struct{}{}
	}
	s.swap(slices.Clone(rows))
	return nil
}

// RemoveByID drops the row with id and reports whether it existed.
func (s *Store) RemoveByID(id ID) bool {
	i := s.IndexOf(id)
	if i < 0 {
		return false
	}
	s.swap(slices.Delete(slices.Clone(s.rows), i, i+1))
	return true
}

// ReplaceByID substitutes the row with id in place. The replacement may
// carry a different id as long as that id is not already present.
func (s *Store) ReplaceByID(id ID, row Row) error {
	i := s.IndexOf(id)
	if i < 0 {
		return fmt.Errorf("replace %s: %w", id, ErrRowNotFound)
	}
	if row.ID != id && s.IndexOf(row.ID) >= 0 {
		return fmt.Errorf("replace %s with %s: %w", id, row.ID, ErrDuplicateID)
	}
	next := slices.Clone(s.rows)
	next[i] = row
	s.swap(next)
	return nil
}

func (s *Store) swap(rows []Row) {
	s.rows = rows
	s.revision++
}
