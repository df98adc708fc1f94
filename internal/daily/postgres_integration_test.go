//go:build integration

package daily

import (
	"context"
	"os"
	"testing"
)

func testPGStore(t *testing.T) *PGStore {
	t.Helper()
	dsn := os.Getenv("RESULTS_DATABASE_URL")
	if dsn == "" {
		t.Skip("RESULTS_DATABASE_URL not set")
	}
	ctx := context.Background()
	s, err := NewPGStore(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(s.Close)
	if _, err := s.pool.Exec(ctx, "TRUNCATE daily_results"); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return s
}

func TestPGStore(t *testing.T) {
	ctx := context.Background()
	s := testPGStore(t)

	if err := s.InsertResult(ctx, Result{UserID: "a", Username: "alice", Date: "2024-02-06", CharacterID: "vegeta", Guesses: 3, ElapsedMs: 900}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := s.InsertResult(ctx, Result{UserID: "b", Date: "2024-02-06", CharacterID: "vegeta", Guesses: 2, ElapsedMs: 5000}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := s.InsertResult(ctx, Result{UserID: "a", Date: "2024-02-06", CharacterID: "vegeta", Guesses: 1, ElapsedMs: 1}); err != nil {
		t.Fatalf("duplicate insert: %v", err)
	}

	played, err := s.AlreadyPlayed(ctx, "a", "2024-02-06")
	if err != nil || !played {
		t.Fatalf("AlreadyPlayed = %v, %v", played, err)
	}

	rows, err := s.Leaderboard(ctx, "2024-02-06", 20)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(rows) != 2 || rows[0].UserID != "b" || rows[1].Username != "alice" || rows[1].Guesses != 3 {
		t.Fatalf("leaderboard = %+v", rows)
	}
}
