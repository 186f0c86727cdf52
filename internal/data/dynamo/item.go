package dynamo

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/colonyops/tally/internal/core/entity"
)

const (
	keyKind = "kind"
	keyID   = "id"
	attrSeq = "n"

	// seqKind partitions the per-kind id counters away from the records.
	seqKind = "_seq"
)

// item is the stored shape of one record.
type item struct {
	Kind      string         `dynamodbav:"kind"`
	ID        string         `dynamodbav:"id"`
	Values    map[string]any `dynamodbav:"values"`
	CreatedAt int64          `dynamodbav:"created_at"`
	UpdatedAt int64          `dynamodbav:"updated_at"`
}

func key(kind entity.Kind, id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		keyKind: &types.AttributeValueMemberS{Value: string(kind)},
		keyID:   &types.AttributeValueMemberS{Value: id},
	}
}

func itemToRecord(schema entity.Schema, av map[string]types.AttributeValue) (entity.Record, error) {
	var it item
	if err := attributevalue.UnmarshalMap(av, &it); err != nil {
		return entity.Record{}, err
	}
	return entity.Record{
		ID:        it.ID,
		Kind:      schema.Kind,
		Values:    schema.Normalize(it.Values),
		CreatedAt: time.Unix(0, it.CreatedAt),
		UpdatedAt: time.Unix(0, it.UpdatedAt),
	}, nil
}

func recordToItem(rec entity.Record) (map[string]types.AttributeValue, error) {
	return attributevalue.MarshalMap(item{
		Kind:      string(rec.Kind),
		ID:        rec.ID,
		Values:    rec.Values,
		CreatedAt: rec.CreatedAt.UnixNano(),
		UpdatedAt: rec.UpdatedAt.UnixNano(),
	})
}
