package tui

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirmBridge_RoundTrip(t *testing.T) {
	b := newConfirmBridge()

	type answer struct {
		ok  bool
		err error
	}
	done := make(chan answer, 1)
	go func() {
		ok, err := b.Confirm(context.Background(), "Delete products 4?")
		done <- answer{ok, err}
	}()

	msg, ok := b.Wait()().(confirmRequestMsg)
	require.True(t, ok)
	assert.Equal(t, "Delete products 4?", msg.req.prompt)

	msg.req.reply <- true

	select {
	case got := <-done:
		require.NoError(t, got.err)
		assert.True(t, got.ok)
	case <-time.After(time.Second):
		t.Fatal("Confirm did not return after reply")
	}
}

func TestConfirmBridge_ContextCancelled(t *testing.T) {
	b := newConfirmBridge()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ok, err := b.Confirm(ctx, "never asked")
	assert.False(t, ok)
	require.ErrorIs(t, err, context.Canceled)
}

func TestConfirmBridge_CloseReleasesWait(t *testing.T) {
	b := newConfirmBridge()

	got := make(chan any, 1)
	go func() { got <- b.Wait()() }()

	b.Close()
	b.Close()

	select {
	case msg := <-got:
		assert.Nil(t, msg)
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after Close")
	}

	ok, err := b.Confirm(context.Background(), "too late")
	assert.False(t, ok)
	require.ErrorIs(t, err, errBridgeClosed)
}
