package logging

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/colonyops/tally/internal/core/access"
)

// ContextHook stamps op_id, user and role from the event context.
type ContextHook struct{}

// Run adds contextual fields to the zerolog event.
func (h ContextHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	ctx := e.GetCtx()
	if ctx == context.Background() || ctx == nil {
		return
	}

	if opID := GetOperationID(ctx); opID != "" {
		e.Str("op_id", opID)
	}

	who := access.FromContext(ctx)
	if who.User != "" {
		e.Str("user", who.User)
	}
	if who.Role != "" {
		e.Str("role", who.Role)
	}
}
