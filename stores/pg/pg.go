package pg

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/weegigs/wee-counter-go/kv"
)

const schema = `
	create table if not exists counters (
		key   text primary key,
		value bigint not null
	)
`

// Store keeps counters in a single postgres table. Increments are one upsert
// statement, so row locking makes them atomic across connections.
type Store struct {
	db       *sql.DB
	getStmt  *sql.Stmt
	setStmt  *sql.Stmt
	incrStmt *sql.Stmt
}

var _ kv.Store = (*Store)(nil)

func Open(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open postgres")
	}

	store, err := NewStore(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func NewStore(ctx context.Context, db *sql.DB) (*Store, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, errors.Wrap(err, "failed to create counters table")
	}

	s := &Store{db: db}

	var err error
	if s.getStmt, err = db.PrepareContext(ctx, "select value from counters where key = $1"); err != nil {
		return nil, errors.Wrap(err, "failed to prepare get")
	}
	if s.setStmt, err = db.PrepareContext(ctx, `
		insert into counters (key, value) values ($1, $2)
		on conflict (key) do update set value = excluded.value
	`); err != nil {
		return nil, errors.Wrap(err, "failed to prepare set")
	}
	if s.incrStmt, err = db.PrepareContext(ctx, `
		insert into counters (key, value) values ($1, 1)
		on conflict (key) do update set value = counters.value + 1
		returning value
	`); err != nil {
		return nil, errors.Wrap(err, "failed to prepare incr")
	}

	return s, nil
}

func (s *Store) Get(ctx context.Context, key string) (int64, error) {
	var value int64
	if err := s.getStmt.QueryRowContext(ctx, key).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, kv.ErrNotFound
		}
		return 0, errors.Wrapf(err, "postgres get %s", key)
	}

	return value, nil
}

func (s *Store) Set(ctx context.Context, key string, value int64) error {
	if _, err := s.setStmt.ExecContext(ctx, key, value); err != nil {
		return errors.Wrapf(err, "postgres set %s", key)
	}

	return nil
}

func (s *Store) Incr(ctx context.Context, key string) (int64, error) {
	var value int64
	if err := s.incrStmt.QueryRowContext(ctx, key).Scan(&value); err != nil {
		return 0, errors.Wrapf(err, "postgres incr %s", key)
	}

	return value, nil
}

func (s *Store) Close() error {
	for _, stmt := range []*sql.Stmt{s.getStmt, s.setStmt, s.incrStmt} {
		if stmt != nil {
			_ = stmt.Close()
		}
	}

	return s.db.Close()
}
