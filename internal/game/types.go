// internal/game/types.go
//
// Core type definitions for the guessing engine.
// Defines:
//   - Kind/Direction/Verdict: per-attribute comparison result.
//   - AttributeVerdict: a verdict labelled with its attribute and guessed value.
//   - GuessError: why a submitted query was rejected.

package game

import (
	"errors"
	"fmt"

	"github.com/robalobadob/capsle/internal/roster"
)

// Kind is the outcome class of one attribute comparison.
type Kind string

const (
	KindMatch           Kind = "match"
	KindMismatch        Kind = "mismatch"
	KindNumericMismatch Kind = "numeric_mismatch"
)

// Direction tells the player where the answer's value lies relative to the
// guess. It is set only for KindNumericMismatch.
type Direction string

const (
	DirectionNone   Direction = ""
	DirectionHigher Direction = "higher" // answer > guess
	DirectionLower  Direction = "lower"  // answer < guess
)

// Verdict is the result of comparing one attribute.
type Verdict struct {
	Kind      Kind      `json:"kind"`
	Direction Direction `json:"direction,omitempty"`
}

var (
	Match    = Verdict{Kind: KindMatch}
	Mismatch = Verdict{Kind: KindMismatch}
)

func (v Verdict) IsMatch() bool { return v.Kind == KindMatch }

func (v Verdict) String() string {
	if v.Direction != DirectionNone {
		return string(v.Kind) + ":" + string(v.Direction)
	}
	return string(v.Kind)
}

// AttributeVerdict is one cell of a guess row.
type AttributeVerdict struct {
	Key     string       `json:"key"`
	Label   string       `json:"label"`
	Value   roster.Value `json:"value"`
	Verdict Verdict      `json:"verdict"`
}

var (
	// ErrNotFound means no roster character matches the query by id or name.
	ErrNotFound = errors.New("character not found")
	// ErrAlreadyGuessed means the matched character is already in the history.
	ErrAlreadyGuessed = errors.New("character already guessed")
)

// GuessError wraps ErrNotFound or ErrAlreadyGuessed with the offending query.
type GuessError struct {
	Query string
	Err   error
}

func (e *GuessError) Error() string { return fmt.Sprintf("guess %q: %v", e.Query, e.Err) }

func (e *GuessError) Unwrap() error { return e.Err }
