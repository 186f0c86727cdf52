package logging

import (
	"context"
	"testing"
)

func TestWithOperationID(t *testing.T) {
	ctx := WithOperationID(context.Background(), "op-123")

	if got := GetOperationID(ctx); got != "op-123" {
		t.Errorf("GetOperationID() = %q, want %q", got, "op-123")
	}
}

func TestGetOperationID_NotPresent(t *testing.T) {
	if got := GetOperationID(context.Background()); got != "" {
		t.Errorf("GetOperationID() = %q, want empty string", got)
	}
}

func TestNewOperation(t *testing.T) {
	a := GetOperationID(NewOperation(context.Background()))
	b := GetOperationID(NewOperation(context.Background()))

	if a == "" || b == "" {
		t.Fatal("NewOperation() should set an operation id")
	}
	if a == b {
		t.Errorf("NewOperation() returned the same id twice: %q", a)
	}
}
