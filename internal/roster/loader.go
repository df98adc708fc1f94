// internal/roster/loader.go
//
// Roster loading contract shared by the HTTP API and static sources.
// Responsibilities:
//   - Define the Loader interface and the LoadError wrapper.
//   - Normalize raw records: drop entries without an id or with an
//     "unknown" name, keep the first of duplicate ids.
//   - Fail with LoadError when nothing usable survives.
//
// Loaders never touch game state; callers install the returned Roster.

package roster

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
)

var (
	// ErrBadStatus wraps non-2xx responses from the roster endpoint.
	ErrBadStatus = errors.New("unexpected response status")
	// ErrMalformedPayload wraps payloads without the expected items array.
	ErrMalformedPayload = errors.New("malformed roster payload")
)

// Loader produces a Roster from some source.
type Loader interface {
	Load(ctx context.Context) (*Roster, error)
}

// LoadError is returned for every roster load failure. It keeps the
// diagnostic and is never retried automatically.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return "loading roster from " + e.Source + ": " + e.Err.Error()
}

func (e *LoadError) Unwrap() error { return e.Err }

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context) (*Roster, error)

func (f LoaderFunc) Load(ctx context.Context) (*Roster, error) { return f(ctx) }

// normalize filters raw characters into a Roster for source.
func normalize(source string, schema Schema, raw []Character) (*Roster, error) {
	out := make([]Character, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, c := range raw {
		c.ID = strings.TrimSpace(c.ID)
		c.Name = strings.TrimSpace(c.Name)
		if c.ID == "" {
			log.Debug().Str("source", source).Msg("dropping character without id")
			continue
		}
		if c.Name == "" {
			c.Name = c.ID
		}
		if IsUnknown(c.Name) {
			log.Debug().Str("source", source).Str("id", c.ID).Msg("dropping character with unknown name")
			continue
		}
		if _, dup := seen[c.ID]; dup {
			log.Warn().Str("source", source).Str("id", c.ID).Msg("dropping duplicate character id")
			continue
		}
		seen[c.ID] = struct{}{}
		out = append(out, c)
	}

	r, err := New(schema, out)
	if err != nil {
		return nil, &LoadError{Source: source, Err: err}
	}
	log.Info().Str("source", source).Int("characters", r.Len()).Int("dropped", len(raw)-r.Len()).Msg("roster loaded")
	return r, nil
}
