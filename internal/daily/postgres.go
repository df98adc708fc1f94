package daily

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var _ ResultStore = (*PGStore)(nil)

// PGStore keeps results in Postgres, for deployments that share a
// leaderboard across several server instances.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore connects, pings and ensures the results table exists.
func NewPGStore(ctx context.Context, dsn string) (*PGStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	s := &PGStore{pool: pool}
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PGStore) Close() { s.pool.Close() }

func (s *PGStore) EnsureSchema(ctx context.Context) error {
	ddl := `
CREATE TABLE IF NOT EXISTS daily_results (
    user_id      TEXT NOT NULL,
    date         TEXT NOT NULL,
    character_id TEXT NOT NULL,
    guesses      INTEGER NOT NULL,
    elapsed_ms   INTEGER NOT NULL,
    username     TEXT NOT NULL DEFAULT '',
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
    CONSTRAINT uq_daily_results_user_date UNIQUE (user_id, date)
);

CREATE INDEX IF NOT EXISTS idx_daily_results_date ON daily_results(date);
`
	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("ensuring daily_results schema: %w", err)
	}
	return nil
}

func (s *PGStore) AlreadyPlayed(ctx context.Context, userID, date string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM daily_results WHERE user_id = $1 AND date = $2)",
		userID, date,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking daily result: %w", err)
	}
	return exists, nil
}

func (s *PGStore) InsertResult(ctx context.Context, r Result) error {
	query := `
INSERT INTO daily_results (user_id, username, date, character_id, guesses, elapsed_ms)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (user_id, date) DO NOTHING
`
	if _, err := s.pool.Exec(ctx, query, r.UserID, r.Username, r.Date, r.CharacterID, r.Guesses, r.ElapsedMs); err != nil {
		return fmt.Errorf("inserting daily result: %w", err)
	}
	return nil
}

func (s *PGStore) Leaderboard(ctx context.Context, date string, limit int) ([]LBRow, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	query := `
SELECT user_id, username, guesses, elapsed_ms
FROM daily_results
WHERE date = $1
ORDER BY guesses ASC, elapsed_ms ASC, created_at ASC
LIMIT $2
`
	rows, err := s.pool.Query(ctx, query, date, limit)
	if err != nil {
		return nil, fmt.Errorf("querying leaderboard: %w", err)
	}
	defer rows.Close()

	out := make([]LBRow, 0, limit)
	for rows.Next() {
		var r LBRow
		if err := rows.Scan(&r.UserID, &r.Username, &r.Guesses, &r.ElapsedMs); err != nil {
			return nil, fmt.Errorf("scanning leaderboard row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating leaderboard: %w", err)
	}
	return out, nil
}
