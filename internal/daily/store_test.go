package daily

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/robalobadob/capsle/assets"
	"github.com/robalobadob/capsle/internal/db"
)

func newSQLStore(t *testing.T) *SQLStore {
	t.Helper()
	conn, err := db.OpenMigrated(context.Background(), filepath.Join(t.TempDir(), "app.db"), assets.Migrations())
	if err != nil {
		t.Fatalf("opening db: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return NewSQLStore(conn)
}

func TestSQLStore(t *testing.T) {
	ctx := context.Background()
	s := newSQLStore(t)

	played, err := s.AlreadyPlayed(ctx, "u1", "2024-02-06")
	if err != nil || played {
		t.Fatalf("AlreadyPlayed before insert = %v, %v", played, err)
	}

	results := []Result{
		{UserID: "u1", Date: "2024-02-06", CharacterID: "vegeta", Guesses: 4, ElapsedMs: 9000},
		{UserID: "u2", Date: "2024-02-06", CharacterID: "vegeta", Guesses: 2, ElapsedMs: 50000},
		{UserID: "u3", Date: "2024-02-06", CharacterID: "vegeta", Guesses: 4, ElapsedMs: 3000},
		{UserID: "u1", Date: "2024-02-07", CharacterID: "piccolo", Guesses: 1, ElapsedMs: 100},
	}
	for _, r := range results {
		if err := s.InsertResult(ctx, r); err != nil {
			t.Fatalf("insert %+v: %v", r, err)
		}
	}
	// Second insert for the same owner and date is ignored.
	if err := s.InsertResult(ctx, Result{UserID: "u1", Date: "2024-02-06", CharacterID: "vegeta", Guesses: 1, ElapsedMs: 1}); err != nil {
		t.Fatalf("duplicate insert: %v", err)
	}

	played, err = s.AlreadyPlayed(ctx, "u1", "2024-02-06")
	if err != nil || !played {
		t.Fatalf("AlreadyPlayed after insert = %v, %v", played, err)
	}

	rows, err := s.Leaderboard(ctx, "2024-02-06", 0)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	var got []string
	for _, r := range rows {
		got = append(got, r.UserID)
	}
	want := []string{"u2", "u3", "u1"}
	if len(got) != len(want) {
		t.Fatalf("leaderboard = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("leaderboard = %v, want %v", got, want)
		}
	}
	if rows[2].Guesses != 4 {
		t.Fatalf("duplicate insert overwrote result: %+v", rows[2])
	}

	rows, err = s.Leaderboard(ctx, "2024-02-06", 1)
	if err != nil || len(rows) != 1 {
		t.Fatalf("limited leaderboard = %v, %v", rows, err)
	}
}
