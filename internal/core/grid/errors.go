package grid

import (
	"errors"

	"github.com/hay-kot/criterio"
)

var (
	ErrDuplicateID         = errors.New("duplicate row id")
	ErrRowNotFound         = errors.New("row not found")
	ErrNotEditable         = errors.New("grid is not editable")
	ErrNotAddable          = errors.New("grid does not allow adding rows")
	ErrNotDeletable        = errors.New("grid does not allow deleting rows")
	ErrNotEditing          = errors.New("row is not in edit mode")
	ErrDialogMode          = errors.New("grid edits rows in a dialog")
	ErrNoDialog            = errors.New("no dialog is open")
	ErrDialogNotConfigured = errors.New("grid has no dialog editor")
	ErrCommitAborted       = errors.New("commit aborted")
)

// ValidationError blocks a commit. The row is left at its previous values.
type ValidationError struct {
	Row ID
	Err error
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Fields returns the per-field failures, if the underlying error carries them.
func (e *ValidationError) Fields() criterio.FieldErrors {
	var fe criterio.FieldErrors
	if errors.As(e.Err, &fe) {
		return fe
	}
	return nil
}

// DispatchError wraps a failed backend call made while committing a row.
type DispatchError struct {
	Op  string
	Row ID
	Err error
}

func (e *DispatchError) Error() string {
	return e.Op + " " + string(e.Row) + ": " + e.Err.Error()
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}
