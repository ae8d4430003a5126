package redis

import (
	"context"
	"fmt"

	rdb "github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func RedisTestStore(ctx context.Context) (*Store, func(), error) {
	container, err := testcontainers.GenericContainer(
		ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "redis:7-alpine",
				ExposedPorts: []string{"6379/tcp"},
				WaitingFor:   wait.ForListeningPort("6379"),
			},
			Started: true,
		},
	)
	if err != nil {
		return nil, nil, err
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, nil, terminate(ctx, container, err)
	}

	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		return nil, nil, terminate(ctx, container, err)
	}

	client := rdb.NewClient(&rdb.Options{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, terminate(ctx, container, err)
	}

	return NewStore(client), func() {
		_ = client.Close()
		if err := container.Terminate(ctx); err != nil {
			panic(err)
		}
	}, nil
}

// terminate removes a container whose store could not be set up and returns the setup error.
func terminate(ctx context.Context, container testcontainers.Container, err error) error {
	_ = container.Terminate(ctx)
	return err
}
