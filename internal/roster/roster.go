package roster

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
)

// ErrEmptyRoster is returned when no usable character remains; the game
// cannot pick an answer from an empty roster.
var ErrEmptyRoster = errors.New("roster has no usable characters")

// Roster is the ordered, immutable set of playable characters.
type Roster struct {
	chars   []Character
	byID    map[string]int
	schema  Schema
	version string
}

// New builds a Roster. Order is preserved; ids must be non-empty and unique.
func New(schema Schema, chars []Character) (*Roster, error) {
	if len(chars) == 0 {
		return nil, ErrEmptyRoster
	}
	r := &Roster{
		chars:  make([]Character, len(chars)),
		byID:   make(map[string]int, len(chars)),
		schema: schema,
	}
	copy(r.chars, chars)

	h := sha256.New()
	for i, c := range r.chars {
		if c.ID == "" {
			return nil, fmt.Errorf("character %d has an empty id", i)
		}
		if _, dup := r.byID[c.ID]; dup {
			return nil, fmt.Errorf("duplicate character id: %s", c.ID)
		}
		r.byID[c.ID] = i
		h.Write([]byte(c.ID))
		h.Write([]byte{0})
	}
	r.version = hex.EncodeToString(h.Sum(nil))[:16]
	return r, nil
}

func (r *Roster) Len() int { return len(r.chars) }

// At returns the character at position i.
func (r *Roster) At(i int) Character { return r.chars[i] }

// Characters returns a copy of the roster in order.
func (r *Roster) Characters() []Character {
	out := make([]Character, len(r.chars))
	copy(out, r.chars)
	return out
}

// ByID looks up a character by its exact id.
func (r *Roster) ByID(id string) (Character, bool) {
	i, ok := r.byID[id]
	if !ok {
		return Character{}, false
	}
	return r.chars[i], true
}

// IDs returns the character ids in roster order.
func (r *Roster) IDs() []string {
	out := make([]string, len(r.chars))
	for i, c := range r.chars {
		out[i] = c.ID
	}
	return out
}

func (r *Roster) Schema() Schema { return r.schema }

// Version fingerprints the roster's ids and order.
func (r *Roster) Version() string { return r.version }
