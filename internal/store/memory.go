// apps/go-server/internal/store/memory.go
//
// In-memory implementation of the Store interface.
// Holds live Battleship sessions for the HTTP layer; finished games are
// summarised to SQLite elsewhere, so nothing here needs to survive a restart.
//
// Characteristics:
//   - Stores *game.Game objects keyed by ID in a map.
//   - Concurrency-safe via RWMutex. Update holds the write lock for the
//     whole callback, which is what keeps a game single-threaded even when
//     two requests for it arrive together.
//   - Get returns ErrNotFound for unknown IDs.
//   - Prune evicts sessions by age; the HTTP layer calls it on a timer.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robalobadob/battleship/apps/go-server/internal/game"
)

// ErrNotFound is returned for unknown game IDs.
var ErrNotFound = errors.New("not found")

// Store defines the persistence interface for game sessions.
type Store interface {
	// Save persists or replaces a game.
	Save(ctx context.Context, g *game.Game) error

	// Get retrieves a game by ID.
	Get(ctx context.Context, id string) (*game.Game, error)

	// Update runs fn on the stored game with exclusive access.
	// fn's error is returned as-is.
	Update(ctx context.Context, id string, fn func(*game.Game) error) error

	// Delete drops a game; unknown IDs are not an error.
	Delete(ctx context.Context, id string) error

	// Prune drops every game started before cutoff and reports how many
	// went.
	Prune(ctx context.Context, cutoff time.Time) (int, error)
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu    sync.RWMutex          // guards games and every game's fields
	games map[string]*game.Game // keyed by Game.ID
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{games: make(map[string]*game.Game)}
}

func (m *memory) Save(ctx context.Context, g *game.Game) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[g.ID] = g
	return nil
}

func (m *memory) Get(ctx context.Context, id string) (*game.Game, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if g, ok := m.games[id]; ok {
		return g, nil
	}
	return nil, ErrNotFound
}

func (m *memory) Update(ctx context.Context, id string, fn func(*game.Game) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[id]
	if !ok {
		return ErrNotFound
	}
	return fn(g)
}

func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.games, id)
	return nil
}

func (m *memory) Prune(ctx context.Context, cutoff time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, g := range m.games {
		if g.StartedAt.Before(cutoff) {
			delete(m.games, id)
			n++
		}
	}
	return n, nil
}
