package record

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists the conversation log in PostgreSQL. Each append is a
// single atomic INSERT, so concurrent appends serialize in the database and
// no read-modify-write cycle exists to lose updates.
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
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS turns (
			seq BIGSERIAL PRIMARY KEY,
			id TEXT NOT NULL UNIQUE,
			utterance TEXT NOT NULL,
			personality TEXT NOT NULL,
			restrictions TEXT NOT NULL,
			answer TEXT NOT NULL DEFAULT '',
			audio_handle TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_turns_created ON turns (created_at);`,
	}
	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("%w: init turns schema on %q: %v", ErrPersistence, stmt, err)
		}
	}
	return nil
}

func (s *PostgresStore) Append(ctx context.Context, turn Turn) error {
	if turn.ID == "" {
		turn.ID = uuid.NewString()
	}
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO turns (id, utterance, personality, restrictions, answer, audio_handle, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		turn.ID,
		turn.Utterance,
		turn.Persona.Personality,
		turn.Persona.Restrictions,
		turn.Answer,
		turn.AudioHandle,
		turn.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: append turn: %v", ErrPersistence, err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Turn, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, utterance, personality, restrictions, answer, audio_handle, created_at
		 FROM turns ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("%w: query turns: %v", ErrPersistence, err)
	}
	defer rows.Close()

	var turns []Turn
	for rows.Next() {
		var t Turn
		if err := rows.Scan(&t.ID, &t.Utterance, &t.Persona.Personality, &t.Persona.Restrictions, &t.Answer, &t.AudioHandle, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan turn row: %v", ErrPersistence, err)
		}
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate turn rows: %v", ErrPersistence, err)
	}
	return turns, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
