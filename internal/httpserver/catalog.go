package httpserver

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/capsle/internal/roster"
)

// errNoRoster is reported before the first successful load.
var errNoRoster = errors.New("roster not loaded")

// Catalog holds the live roster. A failed reload keeps serving the previous
// roster, if any, and remembers the failure for /roster.
type Catalog struct {
	loader roster.Loader

	mu       sync.RWMutex
	current  *roster.Roster
	lastErr  error
	loadedAt time.Time
}

func NewCatalog(loader roster.Loader) *Catalog {
	return &Catalog{loader: loader}
}

// Reload runs the loader once. Loads are never retried automatically.
func (c *Catalog) Reload(ctx context.Context) (*roster.Roster, error) {
	r, err := c.loader.Load(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.lastErr = err
		log.Error().Err(err).Msg("roster load failed")
		return nil, err
	}
	c.current, c.lastErr, c.loadedAt = r, nil, time.Now()
	return r, nil
}

// Current returns the live roster, or the load error when none is available.
func (c *Catalog) Current() (*roster.Roster, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current != nil {
		return c.current, nil
	}
	if c.lastErr != nil {
		return nil, c.lastErr
	}
	return nil, errNoRoster
}

// Status reports the last load time and failure.
func (c *Catalog) Status() (loadedAt time.Time, lastErr error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadedAt, c.lastErr
}
