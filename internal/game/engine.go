// internal/game/engine.go
//
// Pure guessing rules.
// Responsibilities:
//   - Compare one attribute of a guessed character against the answer.
//   - Resolve a free-text query to a roster character (id first, then name).
//   - Filter autocomplete candidates.
//
// Nothing here holds state; Session composes these with a History.

package game

import (
	"strings"

	"github.com/robalobadob/capsle/internal/roster"
)

// CompareAttribute compares guessed against answer for attr. It is total:
//
//   - both missing                        -> match
//   - one missing                         -> mismatch
//   - equal quantities                    -> match
//   - categories equal under case folding -> match
//   - numeric attribute, two quantities   -> numeric mismatch, higher if answer > guess
//   - anything else                       -> mismatch
func CompareAttribute(attr roster.Attribute, guessed, answer roster.Value) Verdict {
	switch {
	case guessed.IsMissing() && answer.IsMissing():
		return Match
	case guessed.IsMissing() || answer.IsMissing():
		return Mismatch
	}

	gn, gNum := guessed.Number()
	an, aNum := answer.Number()
	if gNum && aNum {
		switch {
		case gn == an:
			return Match
		case attr.Kind != roster.KindNumeric:
			return Mismatch
		case an > gn:
			return Verdict{Kind: KindNumericMismatch, Direction: DirectionHigher}
		default:
			return Verdict{Kind: KindNumericMismatch, Direction: DirectionLower}
		}
	}

	gt, gText := guessed.Text()
	at, aText := answer.Text()
	if gText && aText && roster.Fold(gt) == roster.Fold(at) {
		return Match
	}
	return Mismatch
}

// Compare runs CompareAttribute over every schema attribute, in schema order.
func Compare(schema roster.Schema, guessed, answer roster.Character) []AttributeVerdict {
	out := make([]AttributeVerdict, 0, len(schema.Attributes))
	for _, a := range schema.Attributes {
		g := guessed.Attr(a.Key)
		out = append(out, AttributeVerdict{
			Key:     a.Key,
			Label:   a.Label,
			Value:   g,
			Verdict: CompareAttribute(a, g, answer.Attr(a.Key)),
		})
	}
	return out
}

// SubmitGuess resolves query against r. An id match wins over a name match;
// both are exact and case-insensitive. history is only read.
func SubmitGuess(query string, r *roster.Roster, history *History) (roster.Character, error) {
	q := strings.TrimSpace(query)
	c, ok := resolve(q, r)
	if !ok {
		return roster.Character{}, &GuessError{Query: q, Err: ErrNotFound}
	}
	if history.Contains(c.ID) {
		return roster.Character{}, &GuessError{Query: q, Err: ErrAlreadyGuessed}
	}
	return c, nil
}

func resolve(q string, r *roster.Roster) (roster.Character, bool) {
	if q == "" || r == nil {
		return roster.Character{}, false
	}
	fq := roster.Fold(q)
	chars := r.Characters()
	for _, c := range chars {
		if roster.Fold(c.ID) == fq {
			return c, true
		}
	}
	for _, c := range chars {
		if roster.Fold(c.DisplayName()) == fq {
			return c, true
		}
	}
	return roster.Character{}, false
}

// FilterCandidates returns, in roster order, characters not yet guessed whose
// id or name contains query (case-insensitive). A blank query matches nothing.
func FilterCandidates(query string, r *roster.Roster, history *History) []roster.Character {
	q := strings.TrimSpace(query)
	if q == "" || r == nil {
		return []roster.Character{}
	}
	fq := roster.Fold(q)
	out := []roster.Character{}
	for _, c := range r.Characters() {
		if history.Contains(c.ID) {
			continue
		}
		if strings.Contains(roster.Fold(c.ID), fq) || strings.Contains(roster.Fold(c.DisplayName()), fq) {
			out = append(out, c)
		}
	}
	return out
}
