package ds

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/pkg/errors"

	"github.com/weegigs/wee-counter-go/kv"
)

// CounterStore keeps one item per counter key. Increments use an ADD update
// expression, which DynamoDB applies atomically and which creates absent items at zero.
type CounterStore struct {
	db    *dynamodb.Client
	table string
}

var _ kv.Store = (*CounterStore)(nil)

func NewCounterStore(db *dynamodb.Client, table CountersTableName) *CounterStore {
	return &CounterStore{db: db, table: string(table)}
}

type counterRecord struct {
	PartitionKey string `dynamodbav:"pk"`
	Count        int64  `dynamodbav:"count"`
}

type counterKey struct {
	PartitionKey string `dynamodbav:"pk"`
}

func (cs *CounterStore) key(key string) (map[string]types.AttributeValue, error) {
	return attributevalue.MarshalMap(counterKey{PartitionKey: key})
}

func (cs *CounterStore) Get(ctx context.Context, key string) (int64, error) {
	k, err := cs.key(key)
	if err != nil {
		return 0, err
	}

	out, err := cs.db.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(cs.table),
		Key:            k,
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return 0, failure("get", key, err)
	}

	if out.Item == nil {
		return 0, kv.ErrNotFound
	}

	var record counterRecord
	if err := attributevalue.UnmarshalMap(out.Item, &record); err != nil {
		return 0, errors.Wrap(err, "failed to unmarshal counter")
	}

	return record.Count, nil
}

func (cs *CounterStore) Set(ctx context.Context, key string, value int64) error {
	item, err := attributevalue.MarshalMap(counterRecord{PartitionKey: key, Count: value})
	if err != nil {
		return err
	}

	_, err = cs.db.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(cs.table),
		Item:      item,
	})
	if err != nil {
		return failure("put", key, err)
	}

	return nil
}

func (cs *CounterStore) Incr(ctx context.Context, key string) (int64, error) {
	k, err := cs.key(key)
	if err != nil {
		return 0, err
	}

	update := expression.Add(expression.Name("count"), expression.Value(1))
	expr, err := expression.NewBuilder().WithUpdate(update).Build()
	if err != nil {
		return 0, err
	}

	out, err := cs.db.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(cs.table),
		Key:                       k,
		UpdateExpression:          expr.Update(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueUpdatedNew,
	})
	if err != nil {
		return 0, failure("update", key, err)
	}

	var record counterRecord
	if err := attributevalue.UnmarshalMap(out.Attributes, &record); err != nil {
		return 0, errors.Wrap(err, "failed to unmarshal counter")
	}

	return record.Count, nil
}

// failure tags DynamoDB API errors with their error code, e.g. ProvisionedThroughputExceededException.
func failure(op string, key string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return errors.Wrapf(err, "dynamodb %s %s failed with %s", op, key, apiErr.ErrorCode())
	}
	return errors.Wrapf(err, "dynamodb %s %s", op, key)
}
