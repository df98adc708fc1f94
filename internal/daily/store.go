// internal/daily/store.go
//
// Persistence for finished daily games.
// Responsibilities:
//   - ResultStore: the contract used by the HTTP layer.
//   - SQLStore: SQLite implementation over the daily_results table created by
//     the embedded migrations.
//
// One row per (owner, date); later inserts for the same pair are ignored.

package daily

import (
	"context"
	"database/sql"
	"fmt"
)

// DefaultLeaderboardLimit is used when callers pass a non-positive limit.
const DefaultLeaderboardLimit = 20

// Result is a single player's winning run for one date.
type Result struct {
	UserID      string `json:"userId"`
	Username    string `json:"username,omitempty"`
	Date        string `json:"date"`
	CharacterID string `json:"characterId"`
	Guesses     int    `json:"guesses"`
	ElapsedMs   int    `json:"elapsedMs"`
}

// LBRow is one leaderboard entry.
type LBRow struct {
	UserID    string `json:"userId"`
	Username  string `json:"username,omitempty"`
	Guesses   int    `json:"guesses"`
	ElapsedMs int    `json:"elapsedMs"`
}

// ResultStore records daily results and ranks them.
type ResultStore interface {
	AlreadyPlayed(ctx context.Context, userID, date string) (bool, error)
	InsertResult(ctx context.Context, r Result) error
	// Leaderboard orders by guesses, then elapsed time, then insertion time.
	Leaderboard(ctx context.Context, date string, limit int) ([]LBRow, error)
}

var _ ResultStore = (*SQLStore)(nil)

// SQLStore keeps results in SQLite.
type SQLStore struct{ db *sql.DB }

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) AlreadyPlayed(ctx context.Context, userID, date string) (bool, error) {
	var cnt int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM daily_results WHERE user_id=? AND date=?`,
		userID, date,
	).Scan(&cnt); err != nil {
		return false, fmt.Errorf("checking daily result: %w", err)
	}
	return cnt > 0, nil
}

func (s *SQLStore) InsertResult(ctx context.Context, r Result) error {
	if _, err := s.db.ExecContext(ctx, `
        INSERT OR IGNORE INTO daily_results
            (user_id, date, character_id, guesses, elapsed_ms)
        VALUES (?, ?, ?, ?, ?)`,
		r.UserID, r.Date, r.CharacterID, r.Guesses, r.ElapsedMs,
	); err != nil {
		return fmt.Errorf("inserting daily result: %w", err)
	}
	return nil
}

// Leaderboard joins users for display names; anonymous players have none.
func (s *SQLStore) Leaderboard(ctx context.Context, date string, limit int) ([]LBRow, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT r.user_id, COALESCE(u.username, ''), r.guesses, r.elapsed_ms
        FROM daily_results r
        LEFT JOIN users u ON u.id = r.user_id
        WHERE r.date=?
        ORDER BY r.guesses ASC, r.elapsed_ms ASC, r.created_at ASC
        LIMIT ?`, date, limit,
	)
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
	return out, rows.Err()
}
