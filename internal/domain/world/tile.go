package world

// TileType identifies terrain by name, e.g. "grass", "water", "ice".
// A coordinate absent from a grid snapshot has no type at all: unexplored is
// a distinct state, not a type.
type TileType string

const (
	TileGrass TileType = "grass"
	TileDirt  TileType = "dirt"
	TileWater TileType = "water"
	TileDeep  TileType = "deep"
	TileIce   TileType = "ice"
	TileRock  TileType = "rock"
)
