package ds

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.opentelemetry.io/contrib/instrumentation/github.com/aws/aws-sdk-go-v2/otelaws"
)

type CountersTableName string

func (name CountersTableName) String() string {
	return string(name)
}

func LiveCountersTableName(table string) (CountersTableName, error) {
	if len(table) == 0 {
		return "", errors.New("DYNAMODB_COUNTERS_TABLE_NAME is not set")
	}

	return CountersTableName(table), nil
}

func DefaultAWSConfig(ctx context.Context) (aws.Config, error) {
	return config.LoadDefaultConfig(ctx)
}

func Client(cfg aws.Config) *dynamodb.Client {
	otelaws.AppendMiddlewares(&cfg.APIOptions)
	return dynamodb.NewFromConfig(cfg)
}

func LiveStore(ctx context.Context, table string) (*CounterStore, error) {
	name, err := LiveCountersTableName(table)
	if err != nil {
		return nil, err
	}

	cfg, err := DefaultAWSConfig(ctx)
	if err != nil {
		return nil, err
	}

	return NewCounterStore(Client(cfg), name), nil
}
