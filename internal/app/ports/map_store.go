package ports

import (
	"context"
	"time"

	"tilebot/internal/domain/world"
)

// TileRecord is one fetched tile with its fetch time, used by stores that
// apply a region cache TTL.
type TileRecord struct {
	Coord     world.Coord
	Type      world.TileType
	FetchedAt time.Time
}

// MapStore is the external map database. ok=false means the tile is unknown
// or its cached entry has gone stale beyond the store's TTL — the core treats
// both as unexplored.
type MapStore interface {
	GetTile(ctx context.Context, c world.Coord) (world.TileType, bool, error)
	PutTiles(ctx context.Context, records []TileRecord) error
}
