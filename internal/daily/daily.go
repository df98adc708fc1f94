// internal/daily/daily.go
//
// Daily answer selection.
// Responsibilities:
//   - Date keys (YYYY-MM-DD) and day-of-year in the configured timezone.
//   - Position strategy: dayOfYear mod len(roster).
//   - Pinned strategy: rendezvous hashing of HMAC(salt, date|id), so the
//     answer follows the character rather than its slot in the roster.
//
// Both strategies are pure functions of (roster, calendar date).

package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/robalobadob/capsle/internal/roster"
)

// Strategy names a selection algorithm.
type Strategy string

const (
	StrategyPosition Strategy = "position"
	StrategyPinned   Strategy = "pinned"
)

// ParseStrategy maps a config value to a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyPosition, "":
		return StrategyPosition, nil
	case StrategyPinned:
		return StrategyPinned, nil
	}
	return "", fmt.Errorf("unknown daily strategy: %q", s)
}

// DateKey returns YYYY-MM-DD for t in loc.
func DateKey(t time.Time, loc *time.Location) string {
	return t.In(orUTC(loc)).Format("2006-01-02")
}

// DayOfYear returns the 1-based day of the year for t in loc (Jan 1 is 1).
func DayOfYear(t time.Time, loc *time.Location) int {
	return t.In(orUTC(loc)).YearDay()
}

// PositionIndex returns dayOfYear mod n.
func PositionIndex(t time.Time, loc *time.Location, n int) int {
	if n <= 0 {
		return 0
	}
	return DayOfYear(t, loc) % n
}

// PinnedIndex returns the index of the id with the highest
// HMAC-SHA256(salt, date|id) score. Ties go to the earlier position.
func PinnedIndex(t time.Time, loc *time.Location, salt string, ids []string) int {
	dk := DateKey(t, loc)
	best, bestScore := 0, uint64(0)
	for i, id := range ids {
		s := score(salt, dk, id)
		if i == 0 || s > bestScore {
			best, bestScore = i, s
		}
	}
	return best
}

// score takes the first 8 bytes of the HMAC as a big-endian integer.
func score(salt, dateKey, id string) uint64 {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(dateKey))
	h.Write([]byte{'|'})
	h.Write([]byte(id))
	return binary.BigEndian.Uint64(h.Sum(nil)[:8])
}

// Picker chooses the answer of the day from a roster.
type Picker struct {
	Strategy Strategy
	Salt     string
	Location *time.Location
}

// Pick returns the answer for the calendar date of t and its roster index.
func (p Picker) Pick(r *roster.Roster, t time.Time) (roster.Character, int, error) {
	if r == nil || r.Len() == 0 {
		return roster.Character{}, 0, roster.ErrEmptyRoster
	}
	var idx int
	switch p.Strategy {
	case StrategyPinned:
		idx = PinnedIndex(t, p.Location, p.Salt, r.IDs())
	case StrategyPosition, "":
		idx = PositionIndex(t, p.Location, r.Len())
	default:
		return roster.Character{}, 0, fmt.Errorf("unknown daily strategy: %q", p.Strategy)
	}
	return r.At(idx), idx, nil
}

// DateKey is today's key in the picker's timezone.
func (p Picker) DateKey(t time.Time) string { return DateKey(t, p.Location) }

func orUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
