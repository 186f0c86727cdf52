package eventbus_test

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/colonyops/tally/internal/core/eventbus"
	"github.com/colonyops/tally/internal/core/eventbus/testbus"
)

func TestRegisterDebugLogger(t *testing.T) {
	tb := testbus.New(t)

	var buf bytes.Buffer
	eventbus.RegisterDebugLogger(tb.EventBus, zerolog.New(&buf).Level(zerolog.DebugLevel))

	tb.PublishRowCreated(eventbus.RowCreatedPayload{Entity: "customers", ID: "1"})
	tb.PublishTuiStarted(eventbus.TUIStartedPayload{})
	tb.PublishGridInvalidated(eventbus.GridInvalidatedPayload{Grid: "customers"})

	tb.AssertPublished(t, eventbus.EventGridInvalidated)
	assert.Contains(t, buf.String(), `"event":"row.created"`)
}
