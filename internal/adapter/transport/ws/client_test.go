package ws

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"tilebot/internal/adapter/metrics/inmemory"
	"tilebot/internal/adapter/repo/memory"
	"tilebot/internal/app/scheduler"
	"tilebot/internal/domain/player"
	"tilebot/internal/domain/world"
)

func newHydrateSession(t *testing.T) *scheduler.Session {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	return scheduler.NewSession(scheduler.SessionConfig{
		Costs:   world.NewCostModel(nil, nil),
		Sink:    memory.NewActionLog(),
		Metrics: inmemory.NewRecorder(),
		Log:     log,
	})
}

func applyUpdate(u Update) (*world.Snapshot, *player.State) {
	grid := world.NewStore()
	p := player.NewState()
	toSessionUpdate(u)(grid, p)
	return grid.Publish(), p
}

func TestTilesUpdateSetsAndDrops(t *testing.T) {
	snap, _ := applyUpdate(Update{
		Kind: UpdateTiles,
		Tiles: []TileUpdate{
			{X: 1, Y: 2, Type: world.TileGrass},
			{X: 3, Y: 4, Type: world.TileWater},
		},
	})
	got, ok := snap.At(world.Coord{X: 1, Y: 2})
	require.True(t, ok)
	require.Equal(t, world.TileGrass, got)
	require.Equal(t, 2, snap.Len())

	grid := world.NewStore()
	p := player.NewState()
	toSessionUpdate(Update{Kind: UpdateTiles, Tiles: []TileUpdate{{X: 1, Y: 2, Type: world.TileGrass}}})(grid, p)
	grid.Publish()
	toSessionUpdate(Update{Kind: UpdateTiles, Tiles: []TileUpdate{{X: 1, Y: 2, Drop: true}}})(grid, p)
	_, ok = grid.Publish().At(world.Coord{X: 1, Y: 2})
	require.False(t, ok)
}

func TestPlayerUpdates(t *testing.T) {
	_, p := applyUpdate(Update{Kind: UpdatePos, Pos: &world.Coord{X: 7, Y: -1}})
	require.Equal(t, world.Coord{X: 7, Y: -1}, p.Pos)

	_, p = applyUpdate(Update{Kind: UpdateMeter, Meter: &MeterUpdate{Name: "stamina", Value: 42, Max: 100}})
	require.Equal(t, 42, p.Meter("stamina").Value)

	_, p = applyUpdate(Update{Kind: UpdateBeltOpen, BeltOpen: boolPtr(true)})
	require.True(t, p.BeltOpen)

	_, p = applyUpdate(Update{
		Kind: UpdateEquip,
		Slot: player.SlotBelt,
		Item: &player.Item{ID: 3, Name: "Leather Belt"},
	})
	require.Equal(t, "Leather Belt", p.Equipment[player.SlotBelt].Name)

	_, p = applyUpdate(Update{
		Kind:   UpdateInventory,
		Invent: []player.Item{{ID: 1, Name: "Kuksa", LiquidContainer: true}},
	})
	require.Len(t, p.Inventory, 1)
}

func TestItemUpdateReplacesExisting(t *testing.T) {
	grid := world.NewStore()
	p := player.NewState()
	p.Inventory = []player.Item{{ID: 5, Name: "Waterskin", Content: &player.Content{Name: "Water", Units: 3}}}

	toSessionUpdate(Update{
		Kind: UpdateItem,
		Item: &player.Item{ID: 5, Name: "Waterskin", Content: &player.Content{Name: "Water", Units: 2}},
	})(grid, p)

	it, ok := p.ItemByID(5)
	require.True(t, ok)
	require.Equal(t, 2, it.Content.Units)
}

func TestCacheTilesSkipsDrops(t *testing.T) {
	cache := memory.NewMapStore()
	err := cacheTiles(context.Background(), cache, []TileUpdate{
		{X: 1, Y: 1, Type: world.TileGrass},
		{X: 2, Y: 2, Drop: true},
	})
	require.NoError(t, err)
	require.Equal(t, 1, cache.Len())

	got, ok, err := cache.GetTile(context.Background(), world.Coord{X: 1, Y: 1})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, world.TileGrass, got)
}

func TestHydrateThrottlesByDistance(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	c := &Client{log: log, hydrateRadius: 8}

	cache := memory.NewMapStore()
	cache.Seed(map[world.Coord]world.TileType{
		{X: 0, Y: 0}:   world.TileGrass,
		{X: 1, Y: 0}:   world.TileWater,
		{X: 50, Y: 50}: world.TileRock, // outside the radius
	})

	s := newHydrateSession(t)
	c.hydrate(context.Background(), cache, s, world.Coord{})
	s.Tick(context.Background(), time.Unix(1000, 0))
	rep := s.Status()
	require.Equal(t, 2, rep.GridTiles)

	// A one-tile move is below the rehydrate threshold.
	before := c.lastHydrate
	c.hydrate(context.Background(), cache, s, world.Coord{X: 1})
	require.Equal(t, before, c.lastHydrate)

	c.hydrate(context.Background(), cache, s, world.Coord{X: 20})
	require.Equal(t, world.Coord{X: 20}, *c.lastHydrate)
}

func boolPtr(v bool) *bool { return &v }
