package ds

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// EndpointStore connects to a DynamoDB compatible endpoint such as
// dynamodb-local, creating the counters table when it is missing.
func EndpointStore(ctx context.Context, endpoint string, table string) (*CounterStore, error) {
	name, err := LiveCountersTableName(table)
	if err != nil {
		return nil, err
	}

	cfg, err := endpointConfig(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	client := dynamodb.NewFromConfig(cfg)
	if err := EnsureTable(ctx, client, name); err != nil {
		return nil, err
	}

	return NewCounterStore(client, name), nil
}

func endpointConfig(ctx context.Context, endpoint string) (aws.Config, error) {
	return config.LoadDefaultConfig(ctx,
		config.WithRegion("us-east-1"),
		config.WithEndpointResolverWithOptions(aws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				return aws.Endpoint{URL: endpoint, SigningRegion: region}, nil
			})),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("local", "local", "")),
	)
}
