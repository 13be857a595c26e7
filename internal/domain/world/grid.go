package world

import "sync"

// Snapshot is one immutable generation of the sparse tile grid. Searches hold
// a snapshot for their whole run, so they never observe partial updates.
type Snapshot struct {
	version uint64
	tiles   map[Coord]TileType
}

func (s *Snapshot) Version() uint64 {
	if s == nil {
		return 0
	}
	return s.version
}

func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.tiles)
}

// At returns the tile type at c. ok=false means the coordinate is unexplored.
func (s *Snapshot) At(c Coord) (TileType, bool) {
	if s == nil {
		return "", false
	}
	t, ok := s.tiles[c]
	return t, ok
}

// Each calls fn for every known tile. Iteration order is unspecified.
func (s *Snapshot) Each(fn func(Coord, TileType)) {
	if s == nil {
		return
	}
	for c, t := range s.tiles {
		fn(c, t)
	}
}

// Store owns the grid and publishes versioned snapshots. Writes are buffered
// and become visible only on Publish, which the session runtime calls between
// ticks: an in-flight search keeps reading the generation it started with.
type Store struct {
	mu      sync.Mutex
	current *Snapshot
	pending map[Coord]TileType
	dropped map[Coord]bool
}

func NewStore() *Store {
	return &Store{
		current: &Snapshot{version: 1, tiles: map[Coord]TileType{}},
		pending: map[Coord]TileType{},
		dropped: map[Coord]bool{},
	}
}

// SetTile buffers a tile write for the next generation.
func (g *Store) SetTile(c Coord, t TileType) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pending[c] = t
	delete(g.dropped, c)
}

// DropTile buffers removal of a tile, returning the coordinate to the
// unexplored state in the next generation.
func (g *Store) DropTile(c Coord) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.pending, c)
	g.dropped[c] = true
}

// Current returns the latest published snapshot.
func (g *Store) Current() *Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current
}

// Publish applies buffered writes to a fresh generation and returns it. When
// nothing is buffered the current snapshot is returned unchanged.
func (g *Store) Publish() *Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.pending) == 0 && len(g.dropped) == 0 {
		return g.current
	}
	next := make(map[Coord]TileType, len(g.current.tiles)+len(g.pending))
	for c, t := range g.current.tiles {
		if !g.dropped[c] {
			next[c] = t
		}
	}
	for c, t := range g.pending {
		next[c] = t
	}
	g.current = &Snapshot{version: g.current.version + 1, tiles: next}
	g.pending = map[Coord]TileType{}
	g.dropped = map[Coord]bool{}
	return g.current
}

// SnapshotOf builds a standalone snapshot from a tile map. Used by tests and
// by adapters that hydrate a whole region at once.
func SnapshotOf(tiles map[Coord]TileType) *Snapshot {
	copied := make(map[Coord]TileType, len(tiles))
	for c, t := range tiles {
		copied[c] = t
	}
	return &Snapshot{version: 1, tiles: copied}
}
