package memory

import (
	"context"
	"sync"

	"tilebot/internal/app/ports"
	"tilebot/internal/domain/world"
)

// MapStore is the in-memory tile cache used by tests and by deployments that
// run without a persistent map database. No TTL: seeded tiles stay fresh.
type MapStore struct {
	mu    sync.RWMutex
	tiles map[world.Coord]world.TileType
}

func NewMapStore() *MapStore {
	return &MapStore{tiles: make(map[world.Coord]world.TileType)}
}

func (s *MapStore) Seed(tiles map[world.Coord]world.TileType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c, t := range tiles {
		s.tiles[c] = t
	}
}

func (s *MapStore) GetTile(_ context.Context, c world.Coord) (world.TileType, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tiles[c]
	return t, ok, nil
}

func (s *MapStore) PutTiles(_ context.Context, records []ports.TileRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range records {
		s.tiles[rec.Coord] = rec.Type
	}
	return nil
}

func (s *MapStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tiles)
}

var _ ports.MapStore = (*MapStore)(nil)
