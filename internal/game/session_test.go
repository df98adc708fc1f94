package game

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestSessionScenario(t *testing.T) {
	r := bundledRoster(t)
	start := time.Date(2024, 2, 6, 9, 0, 0, 0, time.UTC)
	s, err := NewSession("g1", "player", "2024-02-06", r, mustChar(t, r, "vegeta"), start)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}

	out, err := s.Guess("goku", start.Add(time.Second))
	if err != nil {
		t.Fatalf("guess goku: %v", err)
	}
	if out.Won || out.Guesses != 1 {
		t.Fatalf("outcome = %+v", out)
	}
	verdicts := map[string]Verdict{}
	for _, v := range out.Verdicts {
		verdicts[v.Key] = v.Verdict
	}
	if verdicts["race"] != Match {
		t.Errorf("race = %v, want match", verdicts["race"])
	}
	if verdicts["gender"] != Match {
		t.Errorf("gender = %v, want match", verdicts["gender"])
	}
	if verdicts["origin"] != Mismatch {
		t.Errorf("origin = %v, want mismatch", verdicts["origin"])
	}
	if v := verdicts["deaths"]; v.Kind != KindNumericMismatch || v.Direction != DirectionLower {
		t.Errorf("deaths = %v, want numeric_mismatch:lower", v)
	}

	if _, err := s.Guess("goku", start.Add(2*time.Second)); !errors.Is(err, ErrAlreadyGuessed) {
		t.Fatalf("second goku: expected already guessed, got %v", err)
	}
	if s.GuessCount() != 1 {
		t.Fatalf("guess count = %d after rejected guess", s.GuessCount())
	}

	out, err = s.Guess("Vegeta", start.Add(30*time.Second))
	if err != nil {
		t.Fatalf("guess vegeta: %v", err)
	}
	if !out.Won || out.Guesses != 2 || !s.Won() {
		t.Fatalf("expected win in 2, got %+v", out)
	}
	for _, v := range out.Verdicts {
		if !v.Verdict.IsMatch() {
			t.Errorf("winning verdict %s = %v", v.Key, v.Verdict)
		}
	}

	// The winning id cannot be submitted again; the history does not grow.
	if _, err := s.Guess("vegeta", start.Add(time.Minute)); !errors.Is(err, ErrAlreadyGuessed) {
		t.Fatalf("repeat win: expected already guessed, got %v", err)
	}

	// Play continues after a win.
	out, err = s.Guess("piccolo", start.Add(2*time.Minute))
	if err != nil || out.Won {
		t.Fatalf("guess after win = %+v, %v", out, err)
	}

	guesses, elapsed, ok := s.Result()
	if !ok || guesses != 2 || elapsed != 30*time.Second {
		t.Fatalf("result = %d, %s, %v", guesses, elapsed, ok)
	}

	rows := s.Guesses()
	if len(rows) != 3 || rows[0].Character.ID != "piccolo" || rows[2].Character.ID != "goku" {
		t.Fatalf("rows not newest first: %+v", rows)
	}
	if !rows[1].Correct {
		t.Fatal("vegeta row should be marked correct")
	}

	for _, c := range s.Candidates("o") {
		if c.ID == "goku" || c.ID == "piccolo" {
			t.Fatalf("guessed %s offered as candidate", c.ID)
		}
	}
}

func TestNewSessionErrors(t *testing.T) {
	r := bundledRoster(t)
	if _, err := NewSession("g", "p", "d", nil, mustChar(t, r, "goku"), time.Now()); err == nil {
		t.Fatal("expected error for nil roster")
	}
	other := mustChar(t, r, "goku")
	other.ID = "krillin"
	if _, err := NewSession("g", "p", "d", r, other, time.Now()); err == nil {
		t.Fatal("expected error for answer outside roster")
	}
}

func TestSessionConcurrentGuesses(t *testing.T) {
	r := bundledRoster(t)
	s, err := NewSession("g", "p", "d", r, mustChar(t, r, "frieza"), time.Now())
	if err != nil {
		t.Fatalf("new session: %v", err)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Guess("goku", time.Now()); err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if accepted != 1 || s.GuessCount() != 1 {
		t.Fatalf("accepted = %d, count = %d", accepted, s.GuessCount())
	}
}
