package pg

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/avast/retry-go"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func PostgresTestStore(ctx context.Context) (*Store, func(), error) {
	container, err := testcontainers.GenericContainer(
		ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "postgres:16-alpine",
				ExposedPorts: []string{"5432/tcp"},
				Env: map[string]string{
					"POSTGRES_USER":     "counter",
					"POSTGRES_PASSWORD": "counter",
					"POSTGRES_DB":       "counters",
				},
				WaitingFor: wait.ForListeningPort("5432"),
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

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return nil, nil, terminate(ctx, container, err)
	}

	dsn := fmt.Sprintf("postgres://counter:counter@%s:%s/counters?sslmode=disable", host, port.Port())
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, nil, terminate(ctx, container, err)
	}

	// the port opens before postgres finishes its init restart
	err = retry.Do(
		func() error { return db.PingContext(ctx) },
		retry.Context(ctx),
		retry.Attempts(20),
		retry.Delay(250*time.Millisecond),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		_ = db.Close()
		return nil, nil, terminate(ctx, container, err)
	}

	store, err := NewStore(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, nil, terminate(ctx, container, err)
	}

	return store, func() {
		_ = store.Close()
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
