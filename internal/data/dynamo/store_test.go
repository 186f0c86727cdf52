package dynamo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/tally/internal/core/entity"
)

func newTestStore(t *testing.T) (*Store, *fakeAPI) {
	t.Helper()
	api := newFakeAPI()
	s := New(api, "tally-test")

	clock := time.Unix(1_700_000_000, 0)
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return s, api
}

func TestStore_EnsureTable(t *testing.T) {
	ctx := context.Background()

	t.Run("existing table", func(t *testing.T) {
		s, api := newTestStore(t)
		require.NoError(t, s.EnsureTable(ctx))
		assert.Equal(t, []string{"DescribeTable"}, api.calls)
	})

	t.Run("missing table is created", func(t *testing.T) {
		s, api := newTestStore(t)
		api.created = false

		require.NoError(t, s.EnsureTable(ctx))
		assert.Contains(t, api.calls, "CreateTable")
		assert.True(t, api.created)
	})
}

func TestStore_CRUD(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	id, err := s.Create(ctx, entity.Products, map[string]any{"sku": "A-1", "name": "Anvil", "price": 10.0})
	require.NoError(t, err)
	assert.Equal(t, "1", id)

	id2, err := s.Create(ctx, entity.Products, map[string]any{"sku": "B-2", "name": "Bucket", "price": 4.0})
	require.NoError(t, err)
	assert.Equal(t, "2", id2)

	got, err := s.Get(ctx, entity.Products, id)
	require.NoError(t, err)
	assert.Equal(t, "Anvil", got.Values["name"])
	assert.InDelta(t, 10.0, got.Values["price"], 0.001)

	require.NoError(t, s.Update(ctx, entity.Products, id, map[string]any{"price": 15.0}))
	got, err = s.Get(ctx, entity.Products, id)
	require.NoError(t, err)
	assert.InDelta(t, 15.0, got.Values["price"], 0.001)
	assert.True(t, got.UpdatedAt.After(got.CreatedAt))

	require.NoError(t, s.Delete(ctx, entity.Products, id))
	_, err = s.Get(ctx, entity.Products, id)
	require.ErrorIs(t, err, entity.ErrNotFound)
	require.ErrorIs(t, s.Delete(ctx, entity.Products, id), entity.ErrNotFound)
}

func TestStore_ListPaginatesInCreationOrder(t *testing.T) {
	ctx := context.Background()
	s, api := newTestStore(t)

	// Ids 1..11 sort as strings out of creation order.
	for i := range 11 {
		_, err := s.Create(ctx, entity.Drivers, map[string]any{"name": "driver", "license": string(rune('a' + i))})
		require.NoError(t, err)
	}

	records, err := s.List(ctx, entity.Drivers)
	require.NoError(t, err)
	require.Len(t, records, 11)
	assert.Equal(t, "1", records[0].ID)
	assert.Equal(t, "10", records[9].ID)
	assert.Equal(t, "11", records[10].ID)

	queries := 0
	for _, c := range api.calls {
		if c == "Query" {
			queries++
		}
	}
	assert.Equal(t, 6, queries)
}

func TestStore_CompositeKey(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	id, err := s.Create(ctx, entity.Prices, map[string]any{"product_id": 3, "customer_id": 7, "price": 9.5})
	require.NoError(t, err)
	assert.Equal(t, "3|7", id)

	_, err = s.Create(ctx, entity.Prices, map[string]any{"product_id": 3, "customer_id": 7, "price": 1.0})
	require.ErrorIs(t, err, entity.ErrConflict)

	require.NoError(t, s.Update(ctx, entity.Prices, "3|7", map[string]any{"customer_id": 8}))
	_, err = s.Get(ctx, entity.Prices, "3|7")
	require.ErrorIs(t, err, entity.ErrNotFound)

	got, err := s.Get(ctx, entity.Prices, "3|8")
	require.NoError(t, err)
	assert.Equal(t, int64(8), got.Values["customer_id"])

	_, err = s.Create(ctx, entity.Prices, map[string]any{"product_id": 3, "customer_id": 9, "price": 2.0})
	require.NoError(t, err)
	err = s.Update(ctx, entity.Prices, "3|9", map[string]any{"customer_id": 8})
	require.ErrorIs(t, err, entity.ErrConflict)
}

func TestErrorClassification(t *testing.T) {
	assert.True(t, IsConditionFailed(&types.ConditionalCheckFailedException{}))
	assert.True(t, IsConditionFailed(&types.TransactionCanceledException{
		CancellationReasons: []types.CancellationReason{{Code: aws.String("None")}, {Code: aws.String("ConditionalCheckFailed")}},
	}))
	assert.False(t, IsConditionFailed(&types.TransactionCanceledException{
		CancellationReasons: []types.CancellationReason{{Code: aws.String("ThrottlingError")}},
	}))
	assert.False(t, IsConditionFailed(errors.New("boom")))

	assert.True(t, IsTableMissing(&types.ResourceNotFoundException{}))
	assert.True(t, IsThrottled(&smithy.GenericAPIError{Code: "ThrottlingException"}))
	assert.False(t, IsThrottled(&smithy.GenericAPIError{Code: "ValidationException"}))
}
