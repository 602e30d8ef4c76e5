package persona

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists the persona in a single-row PostgreSQL table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: connect postgres: %v", ErrPersistence, err)
	}
	if err := initSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &PostgresStore{pool: pool}, nil
}

func initSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx,
		`CREATE TABLE IF NOT EXISTS persona (
			id SMALLINT PRIMARY KEY CHECK (id = 1),
			personality TEXT NOT NULL,
			restrictions TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`)
	if err != nil {
		return fmt.Errorf("%w: init persona schema: %v", ErrPersistence, err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context) (Config, error) {
	cfg, err := s.load(ctx)
	if err == nil {
		return cfg, nil
	}
	if err != pgx.ErrNoRows {
		return Config{}, fmt.Errorf("%w: load persona: %v", ErrPersistence, err)
	}

	// First read: persist the default. ON CONFLICT DO NOTHING keeps two
	// concurrent first reads from clobbering each other; re-read wins.
	_, err = s.pool.Exec(ctx,
		`INSERT INTO persona (id, personality, restrictions) VALUES (1, $1, $2)
		 ON CONFLICT (id) DO NOTHING`,
		Default.Personality, Default.Restrictions)
	if err != nil {
		return Config{}, fmt.Errorf("%w: store default persona: %v", ErrPersistence, err)
	}
	cfg, err = s.load(ctx)
	if err != nil {
		return Config{}, fmt.Errorf("%w: reload persona: %v", ErrPersistence, err)
	}
	return cfg, nil
}

func (s *PostgresStore) Set(ctx context.Context, cfg Config) (Config, error) {
	current, err := s.load(ctx)
	if err == pgx.ErrNoRows {
		current = Default
	} else if err != nil {
		return Config{}, fmt.Errorf("%w: load persona: %v", ErrPersistence, err)
	}
	next := merge(current, cfg)

	_, err = s.pool.Exec(ctx,
		`INSERT INTO persona (id, personality, restrictions, updated_at) VALUES (1, $1, $2, now())
		 ON CONFLICT (id) DO UPDATE SET
			personality=EXCLUDED.personality,
			restrictions=EXCLUDED.restrictions,
			updated_at=EXCLUDED.updated_at`,
		next.Personality, next.Restrictions)
	if err != nil {
		return Config{}, fmt.Errorf("%w: store persona: %v", ErrPersistence, err)
	}
	return next, nil
}

func (s *PostgresStore) load(ctx context.Context) (Config, error) {
	var cfg Config
	err := s.pool.QueryRow(ctx,
		`SELECT personality, restrictions FROM persona WHERE id=1`).
		Scan(&cfg.Personality, &cfg.Restrictions)
	return cfg, err
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
