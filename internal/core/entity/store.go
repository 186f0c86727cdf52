package entity

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
)

// Record is one stored entity row.
type Record struct {
	ID        string         `json:"id"`
	Kind      Kind           `json:"kind"`
	Values    map[string]any `json:"values"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Store is the backend API every storage implementation provides. Records
// of composite-key kinds are addressed by their key; all others by an id the
// store issues on create.
type Store interface {
	List(ctx context.Context, kind Kind) ([]Record, error)
	Get(ctx context.Context, kind Kind, id string) (Record, error)
	// Create stores values and returns the new record id.
	Create(ctx context.Context, kind Kind, values map[string]any) (string, error)
	// Update applies patch to the record. A patch that changes key fields of
	// a composite-key record moves it to its new key.
	Update(ctx context.Context, kind Kind, id string, patch map[string]any) error
	Delete(ctx context.Context, kind Kind, id string) error
}
