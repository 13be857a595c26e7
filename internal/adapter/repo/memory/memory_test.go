package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"tilebot/internal/app/ports"
	"tilebot/internal/domain/world"
)

func TestMapStoreSeedAndGet(t *testing.T) {
	s := NewMapStore()
	c := world.Coord{X: 2, Y: 3}
	s.Seed(map[world.Coord]world.TileType{c: world.TileWater})

	got, ok, err := s.GetTile(context.Background(), c)
	if err != nil || !ok || got != world.TileWater {
		t.Fatalf("GetTile = %q, %v, %v, want water", got, ok, err)
	}
	if _, ok, _ := s.GetTile(context.Background(), world.Coord{X: 9, Y: 9}); ok {
		t.Fatalf("unknown tile reported as known")
	}
}

func TestMapStorePutTiles(t *testing.T) {
	s := NewMapStore()
	err := s.PutTiles(context.Background(), []ports.TileRecord{
		{Coord: world.Coord{X: 1}, Type: world.TileGrass, FetchedAt: time.Now()},
		{Coord: world.Coord{X: 2}, Type: world.TileRock, FetchedAt: time.Now()},
	})
	if err != nil {
		t.Fatalf("PutTiles error: %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("Len = %d, want 2", s.Len())
	}
}

func TestActionLogRecordsInOrder(t *testing.T) {
	l := NewActionLog()
	for _, kind := range []ports.ActionKind{ports.ActionMoveTo, ports.ActionUseItem} {
		if err := l.Push(context.Background(), ports.Action{Kind: kind}); err != nil {
			t.Fatalf("Push error: %v", err)
		}
	}
	actions := l.Drain()
	if len(actions) != 2 || actions[0].Kind != ports.ActionMoveTo || actions[1].Kind != ports.ActionUseItem {
		t.Fatalf("drained %+v, want move_to then use_item", actions)
	}
	if got := l.Actions(); len(got) != 0 {
		t.Fatalf("log not empty after drain: %+v", got)
	}
}

func TestActionLogFail(t *testing.T) {
	l := NewActionLog()
	wantErr := errors.New("down")
	l.Fail(wantErr)
	if err := l.Push(context.Background(), ports.Action{Kind: ports.ActionMoveTo}); !errors.Is(err, wantErr) {
		t.Fatalf("Push error = %v, want %v", err, wantErr)
	}
}
