package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"

	"github.com/colonyops/tally/internal/core/access"
)

func TestContextHook_Run(t *testing.T) {
	tests := []struct {
		name      string
		setupCtx  func() context.Context
		wantKeys  []string
		wantEmpty []string
	}{
		{
			name: "operation and identity",
			setupCtx: func() context.Context {
				ctx := WithOperationID(context.Background(), "op-1")
				return access.WithIdentity(ctx, access.Identity{User: "ana", Role: "admin"})
			},
			wantKeys: []string{"op_id", "user", "role"},
		},
		{
			name: "only operation",
			setupCtx: func() context.Context {
				return WithOperationID(context.Background(), "op-1")
			},
			wantKeys:  []string{"op_id"},
			wantEmpty: []string{"user", "role"},
		},
		{
			name: "user without role",
			setupCtx: func() context.Context {
				return access.WithIdentity(context.Background(), access.Identity{User: "ana"})
			},
			wantKeys:  []string{"user"},
			wantEmpty: []string{"op_id", "role"},
		},
		{
			name:      "no context values",
			setupCtx:  context.Background,
			wantEmpty: []string{"op_id", "user", "role"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			ctx := tt.setupCtx()

			logger := zerolog.New(&buf).Hook(ContextHook{})
			logger.Info().Ctx(ctx).Msg("test")

			var logEntry map[string]interface{}
			if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
				t.Fatalf("failed to parse log: %v", err)
			}

			for _, key := range tt.wantKeys {
				if _, ok := logEntry[key]; !ok {
					t.Errorf("expected %s to be present in log", key)
				}
			}

			for _, key := range tt.wantEmpty {
				if _, ok := logEntry[key]; ok {
					t.Errorf("expected %s to be absent from log", key)
				}
			}
		})
	}
}
