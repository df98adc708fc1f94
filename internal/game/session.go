// internal/game/session.go
//
// A single player's game for one date.
// Responsibilities:
//   - Own the roster snapshot, the answer and the guess history.
//   - Apply guesses: resolve, record, compare, detect the win.
//   - Answer read queries (candidates, history rows) under the same lock.
//
// The roster is captured when the session starts, so a roster reload never
// changes a game in progress. Play continues after a win; the answer then
// reports AlreadyGuessed like any other repeat.

package game

import (
	"errors"
	"sync"
	"time"

	"github.com/robalobadob/capsle/internal/roster"
)

// Outcome is the result of one accepted guess.
type Outcome struct {
	Character roster.Character   `json:"character"`
	Verdicts  []AttributeVerdict `json:"verdicts"`
	Won       bool               `json:"won"`
	Guesses   int                `json:"guesses"`
}

// Row is one history entry as displayed: the guessed character and its verdicts.
type Row struct {
	Character roster.Character   `json:"character"`
	Verdicts  []AttributeVerdict `json:"verdicts"`
	Correct   bool               `json:"correct"`
}

// Session is safe for concurrent use.
type Session struct {
	ID        string
	Owner     string
	Date      string
	StartedAt time.Time

	mu      sync.Mutex
	roster  *roster.Roster
	answer  roster.Character
	history *History
	wonAt   time.Time
	wonIn   int
}

// NewSession starts a game against answer, which must belong to r.
func NewSession(id, owner, date string, r *roster.Roster, answer roster.Character, now time.Time) (*Session, error) {
	if r == nil || r.Len() == 0 {
		return nil, roster.ErrEmptyRoster
	}
	if _, ok := r.ByID(answer.ID); !ok {
		return nil, errors.New("answer is not part of the roster")
	}
	return &Session{
		ID:        id,
		Owner:     owner,
		Date:      date,
		StartedAt: now,
		roster:    r,
		answer:    answer,
		history:   NewHistory(),
	}, nil
}

// Guess submits query. On error the history is unchanged.
func (s *Session) Guess(query string, now time.Time) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := SubmitGuess(query, s.roster, s.history)
	if err != nil {
		return Outcome{}, err
	}
	s.history.Add(c.ID)

	won := c.ID == s.answer.ID
	if won {
		s.wonAt = now
		s.wonIn = s.history.Len()
	}
	return Outcome{
		Character: c,
		Verdicts:  Compare(s.roster.Schema(), c, s.answer),
		Won:       won,
		Guesses:   s.history.Len(),
	}, nil
}

// Candidates lists unguessed characters matching query.
func (s *Session) Candidates(query string) []roster.Character {
	s.mu.Lock()
	defer s.mu.Unlock()
	return FilterCandidates(query, s.roster, s.history)
}

// Guesses returns the history rows, most recent first.
func (s *Session) Guesses() []Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := s.history.IDs()
	out := make([]Row, 0, len(ids))
	for _, id := range ids {
		c, ok := s.roster.ByID(id)
		if !ok {
			continue
		}
		out = append(out, Row{
			Character: c,
			Verdicts:  Compare(s.roster.Schema(), c, s.answer),
			Correct:   c.ID == s.answer.ID,
		})
	}
	return out
}

func (s *Session) Answer() roster.Character { return s.answer }

func (s *Session) Schema() roster.Schema { return s.roster.Schema() }

// RosterVersion identifies the roster snapshot the session plays against.
func (s *Session) RosterVersion() string { return s.roster.Version() }

func (s *Session) Won() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wonIn > 0
}

func (s *Session) GuessCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Len()
}

// Result reports the guesses and time taken to win; ok is false before a win.
func (s *Session) Result() (guesses int, elapsed time.Duration, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.wonIn == 0 {
		return 0, 0, false
	}
	return s.wonIn, s.wonAt.Sub(s.StartedAt), true
}
