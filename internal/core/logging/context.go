package logging

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const operationIDKey contextKey = "op_id"

// WithOperationID tags ctx with an id shared by every log line of one user
// operation (a save, a delete, a reload).
func WithOperationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, operationIDKey, id)
}

// NewOperation tags ctx with a fresh operation id.
func NewOperation(ctx context.Context) context.Context {
	return WithOperationID(ctx, uuid.NewString())
}

// GetOperationID retrieves the operation ID from the context.
// Returns empty string if not present.
func GetOperationID(ctx context.Context) string {
	if id, ok := ctx.Value(operationIDKey).(string); ok {
		return id
	}
	return ""
}
