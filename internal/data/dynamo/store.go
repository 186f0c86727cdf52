// Package dynamo implements entity.Store on an Amazon DynamoDB table.
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog"

	"github.com/colonyops/tally/internal/core/entity"
	"github.com/colonyops/tally/internal/core/logging"
)

// API is the subset of the DynamoDB client the store uses.
type API interface {
	DescribeTable(ctx context.Context, in *dynamodb.DescribeTableInput, opts ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	CreateTable(ctx context.Context, in *dynamodb.CreateTableInput, opts ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, opts ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	TransactWriteItems(ctx context.Context, in *dynamodb.TransactWriteItemsInput, opts ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

var ErrNilOutput = errors.New("dynamodb returned no output")

// Options selects the table and the AWS account it lives in.
type Options struct {
	Table    string
	Region   string
	Profile  string
	Endpoint string
}

// Store implements entity.Store. Records live under partition key kind and
// sort key id; simple kinds draw ids from a per-kind counter item.
type Store struct {
	api   API
	table string
	now   func() time.Time
	log   zerolog.Logger
}

var _ entity.Store = (*Store)(nil)

// Connect loads the AWS configuration, creates the table when missing and
// returns a store on it.
func Connect(ctx context.Context, opts Options) (*Store, error) {
	var loadOpts []func(*config.LoadOptions) error
	if opts.Profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(opts.Profile))
	}
	if opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	})

	s := New(client, opts.Table)
	if err := s.EnsureTable(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// New returns a store on an existing client.
func New(api API, table string) *Store {
	return &Store{
		api:   api,
		table: table,
		now:   time.Now,
		log:   logging.Component("dynamo").With().Str("table", table).Logger(),
	}
}

// EnsureTable creates the table with on-demand billing if it does not exist.
func (s *Store) EnsureTable(ctx context.Context) error {
	_, err := s.api.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(s.table)})
	if err == nil {
		s.log.Debug().Msg("table exists")
		return nil
	}
	if !IsTableMissing(err) {
		return fmt.Errorf("describe table %s: %w", s.table, err)
	}

	s.log.Info().Msg("creating table")
	_, err = s.api.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(s.table),
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String(keyKind), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String(keyID), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(keyKind), KeyType: types.KeyTypeHash},
			{AttributeName: aws.String(keyID), KeyType: types.KeyTypeRange},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	if err != nil {
		return fmt.Errorf("create table %s: %w", s.table, err)
	}

	waiter := dynamodb.NewTableExistsWaiter(s.api)
	if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(s.table)}, 2*time.Minute); err != nil {
		return fmt.Errorf("wait for table %s: %w", s.table, err)
	}
	return nil
}

// List returns every record of kind ordered by creation time.
func (s *Store) List(ctx context.Context, kind entity.Kind) ([]entity.Record, error) {
	schema, err := lookup(kind)
	if err != nil {
		return nil, err
	}

	s.log.Debug().Str("kind", string(kind)).Msg("list")
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		KeyConditionExpression: aws.String("#kind = :kind"),
		ExpressionAttributeNames: map[string]string{
			"#kind": keyKind,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":kind": &types.AttributeValueMemberS{Value: string(kind)},
		},
		ConsistentRead: aws.Bool(true),
	}

	var records []entity.Record
	for {
		output, err := s.api.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", kind, err)
		}
		if output == nil {
			return nil, ErrNilOutput
		}
		for _, av := range output.Items {
			rec, err := itemToRecord(schema, av)
			if err != nil {
				return nil, fmt.Errorf("decode %s: %w", kind, err)
			}
			records = append(records, rec)
		}
		if len(output.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = output.LastEvaluatedKey
	}

	slices.SortStableFunc(records, func(a, b entity.Record) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return records, nil
}

// Get returns one record. Returns entity.ErrNotFound if not found.
func (s *Store) Get(ctx context.Context, kind entity.Kind, id string) (entity.Record, error) {
	schema, err := lookup(kind)
	if err != nil {
		return entity.Record{}, err
	}

	output, err := s.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.table),
		Key:            key(kind, id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entity.Record{}, fmt.Errorf("get %s %s: %w", kind, id, err)
	}
	if output == nil || output.Item == nil {
		return entity.Record{}, fmt.Errorf("%s %s: %w", kind, id, entity.ErrNotFound)
	}
	return itemToRecord(schema, output.Item)
}

// Create stores values and returns the record id.
func (s *Store) Create(ctx context.Context, kind entity.Kind, values map[string]any) (string, error) {
	schema, err := lookup(kind)
	if err != nil {
		return "", err
	}

	values = schema.Normalize(values)
	var id string
	if schema.Composite() {
		k, ok := schema.KeyOf(values)
		if !ok {
			return "", fmt.Errorf("%s requires %v", kind, schema.KeyFields)
		}
		id = k
	} else {
		n, err := s.nextID(ctx, kind)
		if err != nil {
			return "", err
		}
		id = strconv.FormatInt(n, 10)
	}

	now := s.now()
	av, err := recordToItem(entity.Record{ID: id, Kind: kind, Values: values, CreatedAt: now, UpdatedAt: now})
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", kind, err)
	}

	s.log.Debug().Str("kind", string(kind)).Str("id", id).Msg("create")
	_, err = s.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(s.table),
		Item:                     av,
		ExpressionAttributeNames: map[string]string{"#id": keyID},
		ConditionExpression:      aws.String("attribute_not_exists(#id)"),
	})
	if IsConditionFailed(err) {
		return "", fmt.Errorf("%s %s: %w", kind, id, entity.ErrConflict)
	}
	if err != nil {
		return "", fmt.Errorf("put %s %s: %w", kind, id, err)
	}
	return id, nil
}

// Update merges patch into the stored values. When a composite key changes
// the old item is deleted and the new one written in one transaction.
func (s *Store) Update(ctx context.Context, kind entity.Kind, id string, patch map[string]any) error {
	schema, err := lookup(kind)
	if err != nil {
		return err
	}

	current, err := s.Get(ctx, kind, id)
	if err != nil {
		return err
	}

	next := current
	next.Values = maps.Clone(current.Values)
	maps.Copy(next.Values, schema.Normalize(patch))
	next.UpdatedAt = s.now()

	if schema.Composite() {
		k, ok := schema.KeyOf(next.Values)
		if !ok {
			return fmt.Errorf("%s requires %v", kind, schema.KeyFields)
		}
		next.ID = k
	}

	av, err := recordToItem(next)
	if err != nil {
		return fmt.Errorf("encode %s: %w", kind, err)
	}

	s.log.Debug().Str("kind", string(kind)).Str("id", id).Str("new_id", next.ID).Msg("update")
	if next.ID == id {
		_, err = s.api.PutItem(ctx, &dynamodb.PutItemInput{
			TableName:                aws.String(s.table),
			Item:                     av,
			ExpressionAttributeNames: map[string]string{"#id": keyID},
			ConditionExpression:      aws.String("attribute_exists(#id)"),
		})
		if IsConditionFailed(err) {
			return fmt.Errorf("%s %s: %w", kind, id, entity.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("put %s %s: %w", kind, id, err)
		}
		return nil
	}

	_, err = s.api.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{
				TableName:                aws.String(s.table),
				Item:                     av,
				ExpressionAttributeNames: map[string]string{"#id": keyID},
				ConditionExpression:      aws.String("attribute_not_exists(#id)"),
			}},
			{Delete: &types.Delete{
				TableName:                aws.String(s.table),
				Key:                      key(kind, id),
				ExpressionAttributeNames: map[string]string{"#id": keyID},
				ConditionExpression:      aws.String("attribute_exists(#id)"),
			}},
		},
	})
	if IsConditionFailed(err) {
		return fmt.Errorf("%s %s: %w", kind, next.ID, entity.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("move %s %s to %s: %w", kind, id, next.ID, err)
	}
	return nil
}

// Delete removes one record. Returns entity.ErrNotFound if not found.
func (s *Store) Delete(ctx context.Context, kind entity.Kind, id string) error {
	if _, err := lookup(kind); err != nil {
		return err
	}

	s.log.Debug().Str("kind", string(kind)).Str("id", id).Msg("delete")
	_, err := s.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                aws.String(s.table),
		Key:                      key(kind, id),
		ExpressionAttributeNames: map[string]string{"#id": keyID},
		ConditionExpression:      aws.String("attribute_exists(#id)"),
	})
	if IsConditionFailed(err) {
		return fmt.Errorf("%s %s: %w", kind, id, entity.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", kind, id, err)
	}
	return nil
}

// nextID atomically increments the id counter of kind.
func (s *Store) nextID(ctx context.Context, kind entity.Kind) (int64, error) {
	output, err := s.api.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.table),
		Key:                       key(seqKind, string(kind)),
		UpdateExpression:          aws.String("ADD #n :one"),
		ExpressionAttributeNames:  map[string]string{"#n": attrSeq},
		ExpressionAttributeValues: map[string]types.AttributeValue{":one": &types.AttributeValueMemberN{Value: "1"}},
		ReturnValues:              types.ReturnValueUpdatedNew,
	})
	if err != nil {
		return 0, fmt.Errorf("next %s id: %w", kind, err)
	}
	if output == nil || output.Attributes == nil {
		return 0, ErrNilOutput
	}

	n, ok := output.Attributes[attrSeq].(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("next %s id: counter is not a number", kind)
	}
	return strconv.ParseInt(n.Value, 10, 64)
}

func lookup(kind entity.Kind) (entity.Schema, error) {
	schema, ok := entity.Lookup(string(kind))
	if !ok {
		return entity.Schema{}, fmt.Errorf("unknown entity %q", kind)
	}
	return schema, nil
}
