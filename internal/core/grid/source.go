package grid

import (
	"context"

	"github.com/colonyops/tally/internal/core/access"
)

// Source is the backend a grid reads from and writes to.
type Source interface {
	Fetch(ctx context.Context) ([]Row, error)
	// Create persists values for a new row and returns the server id.
	Create(ctx context.Context, values Values) (ID, error)
	// Update persists the changed fields of an existing row.
	Update(ctx context.Context, id ID, changed Values) error
	Delete(ctx context.Context, id ID, who access.Identity) error
}

// Confirmer asks the user a blocking yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// AlwaysConfirm grants every confirmation.
var AlwaysConfirm = ConfirmFunc(func(context.Context, string) (bool, error) { return true, nil })

// Notifier surfaces non-blocking messages to the user.
type Notifier interface {
	Errorf(format string, args ...any)
	Warnf(format string, args ...any)
	Infof(format string, args ...any)
}

// Trigger reloads a grid from its source.
type Trigger interface {
	Invalidate(grid string)
}

// TriggerFunc adapts a function to Trigger.
type TriggerFunc func(grid string)

func (f TriggerFunc) Invalidate(grid string) { f(grid) }

type nopNotifier struct{}

func (nopNotifier) Errorf(string, ...any) {}
func (nopNotifier) Warnf(string, ...any)  {}
func (nopNotifier) Infof(string, ...any)  {}

type nopTrigger struct{}

func (nopTrigger) Invalidate(string) {}
