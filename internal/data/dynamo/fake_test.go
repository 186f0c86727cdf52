package dynamo

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/colonyops/tally/internal/core/entity"
)

// fakeAPI is an in-memory table that understands the expressions Store sends.
type fakeAPI struct {
	mu       sync.Mutex
	created  bool
	items    map[string]map[string]types.AttributeValue
	pageSize int
	calls    []string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		created:  true,
		items:    map[string]map[string]types.AttributeValue{},
		pageSize: 2,
	}
}

func str(av types.AttributeValue) string {
	if s, ok := av.(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func itemKey(k map[string]types.AttributeValue) string {
	return str(k[keyKind]) + "\x00" + str(k[keyID])
}

// conditionHolds evaluates the attribute_exists forms Store uses.
func (f *fakeAPI) conditionHolds(cond *string, k string) bool {
	if cond == nil {
		return true
	}
	_, exists := f.items[k]
	if strings.Contains(*cond, "attribute_not_exists") {
		return !exists
	}
	return exists
}

func (f *fakeAPI) record(call string) { f.calls = append(f.calls, call) }

func (f *fakeAPI) DescribeTable(_ context.Context, _ *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DescribeTable")
	if !f.created {
		return nil, &types.ResourceNotFoundException{Message: aws.String("table not found")}
	}
	return &dynamodb.DescribeTableOutput{Table: &types.TableDescription{TableStatus: types.TableStatusActive}}, nil
}

func (f *fakeAPI) CreateTable(_ context.Context, _ *dynamodb.CreateTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateTable")
	f.created = true
	return &dynamodb.CreateTableOutput{}, nil
}

func (f *fakeAPI) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetItem")
	return &dynamodb.GetItemOutput{Item: f.items[itemKey(in.Key)]}, nil
}

func (f *fakeAPI) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("PutItem")
	k := itemKey(in.Item)
	if !f.conditionHolds(in.ConditionExpression, k) {
		return nil, &types.ConditionalCheckFailedException{Message: aws.String("condition failed")}
	}
	f.items[k] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeAPI) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpdateItem")
	k := itemKey(in.Key)
	it, ok := f.items[k]
	if !ok {
		it = map[string]types.AttributeValue{keyKind: in.Key[keyKind], keyID: in.Key[keyID]}
	}
	var n int64
	if cur, ok := it[attrSeq].(*types.AttributeValueMemberN); ok {
		n, _ = strconv.ParseInt(cur.Value, 10, 64)
	}
	n++
	it[attrSeq] = &types.AttributeValueMemberN{Value: strconv.FormatInt(n, 10)}
	f.items[k] = it
	return &dynamodb.UpdateItemOutput{Attributes: map[string]types.AttributeValue{attrSeq: it[attrSeq]}}, nil
}

func (f *fakeAPI) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteItem")
	k := itemKey(in.Key)
	if !f.conditionHolds(in.ConditionExpression, k) {
		return nil, &types.ConditionalCheckFailedException{Message: aws.String("condition failed")}
	}
	delete(f.items, k)
	return &dynamodb.DeleteItemOutput{}, nil
}

func (f *fakeAPI) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Query")
	kind := str(in.ExpressionAttributeValues[":kind"])

	var ids []string
	for _, it := range f.items {
		if str(it[keyKind]) == kind {
			ids = append(ids, str(it[keyID]))
		}
	}
	sort.Strings(ids)

	start := 0
	if in.ExclusiveStartKey != nil {
		after := str(in.ExclusiveStartKey[keyID])
		start = sort.SearchStrings(ids, after) + 1
	}

	out := &dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{}}
	end := min(start+f.pageSize, len(ids))
	for _, id := range ids[start:end] {
		out.Items = append(out.Items, f.items[kind+"\x00"+id])
	}
	if end < len(ids) {
		out.LastEvaluatedKey = key(entity.Kind(kind), ids[end-1])
	}
	return out, nil
}

func (f *fakeAPI) TransactWriteItems(_ context.Context, in *dynamodb.TransactWriteItemsInput, _ ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("TransactWriteItems")

	reasons := make([]types.CancellationReason, len(in.TransactItems))
	failed := false
	for i, ti := range in.TransactItems {
		code := "None"
		switch {
		case ti.Put != nil && !f.conditionHolds(ti.Put.ConditionExpression, itemKey(ti.Put.Item)):
			code, failed = "ConditionalCheckFailed", true
		case ti.Delete != nil && !f.conditionHolds(ti.Delete.ConditionExpression, itemKey(ti.Delete.Key)):
			code, failed = "ConditionalCheckFailed", true
		}
		reasons[i] = types.CancellationReason{Code: aws.String(code)}
	}
	if failed {
		return nil, &types.TransactionCanceledException{Message: aws.String("cancelled"), CancellationReasons: reasons}
	}

	for _, ti := range in.TransactItems {
		if ti.Put != nil {
			f.items[itemKey(ti.Put.Item)] = ti.Put.Item
		}
		if ti.Delete != nil {
			delete(f.items, itemKey(ti.Delete.Key))
		}
	}
	return &dynamodb.TransactWriteItemsOutput{}, nil
}
