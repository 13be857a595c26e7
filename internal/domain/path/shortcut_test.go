package path

import (
	"testing"

	"tilebot/internal/domain/world"
)

func TestValidShortcutLengthCap(t *testing.T) {
	snap := gridFromRows("gggggg")
	costs := expensiveWater()
	a, b := world.Coord{}, world.Coord{X: 5}
	if ValidShortcut(snap, costs, a, b, 4) {
		t.Fatalf("shortcut longer than maxLen accepted")
	}
	if !ValidShortcut(snap, costs, a, b, 5) {
		t.Fatalf("shortcut at exactly maxLen rejected")
	}
}

func TestValidShortcutRejectsImpassableAndUnknown(t *testing.T) {
	costs := expensiveWater()
	if ValidShortcut(gridFromRows("grg"), costs, world.Coord{}, world.Coord{X: 2}, 10) {
		t.Fatalf("shortcut through rock accepted")
	}
	if ValidShortcut(gridFromRows("g?g"), costs, world.Coord{}, world.Coord{X: 2}, 10) {
		t.Fatalf("shortcut through unexplored tile accepted")
	}
	if !ValidShortcut(gridFromRows("gwg"), costs, world.Coord{}, world.Coord{X: 2}, 10) {
		t.Fatalf("shortcut through passable water rejected")
	}
}

func TestValidShortcutCornerNeedsBothNeighbors(t *testing.T) {
	costs := expensiveWater()
	// The exact diagonal corner between (0,0) and (1,1) touches (1,0) and
	// (0,1); a blocked neighbor invalidates the line.
	if ValidShortcut(gridFromRows("gr", "gg"), costs, world.Coord{}, world.Coord{X: 1, Y: 1}, 10) {
		t.Fatalf("corner squeeze past rock accepted")
	}
	if !ValidShortcut(gridFromRows("gg", "gg"), costs, world.Coord{}, world.Coord{X: 1, Y: 1}, 10) {
		t.Fatalf("open diagonal rejected")
	}
}

func TestCompressCollapsesCollinearRun(t *testing.T) {
	snap := gridFromRows("ggggg")
	costs := expensiveWater()
	in := []world.Coord{{X: 0}, {X: 1}, {X: 2}, {X: 3}, {X: 4}}
	got := Compress(snap, costs, in, 100)
	want := []world.Coord{{X: 0}, {X: 4}}
	if !coordsEqual(got, want) {
		t.Fatalf("got %s, want %s", pathString(got), pathString(want))
	}
}

func TestCompressKeepsCornerAroundObstacle(t *testing.T) {
	snap := gridFromRows(
		"ggg",
		"grg",
		"ggg",
	)
	costs := expensiveWater()
	in := []world.Coord{
		{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 0, Y: 2}, {X: 1, Y: 2}, {X: 2, Y: 2},
	}
	got := Compress(snap, costs, in, 100)
	want := []world.Coord{{X: 0, Y: 0}, {X: 0, Y: 2}, {X: 2, Y: 2}}
	if !coordsEqual(got, want) {
		t.Fatalf("got %s, want %s", pathString(got), pathString(want))
	}
}

func TestCompressShortInputUnchanged(t *testing.T) {
	snap := gridFromRows("gg")
	in := []world.Coord{{X: 0}, {X: 1}}
	got := Compress(snap, expensiveWater(), in, 100)
	if !coordsEqual(got, in) {
		t.Fatalf("two-point path changed: %s", pathString(got))
	}
}

func TestNextPointShortcutMergesLeadingSegment(t *testing.T) {
	snap := gridFromRows(
		"ggggg",
		"ggggg",
	)
	costs := expensiveWater()
	waypoints := []world.Coord{{X: 1}, {X: 2}, {X: 4, Y: 1}}
	got := NextPointShortcut(snap, costs, world.Coord{}, waypoints, 10)
	want := []world.Coord{{X: 4, Y: 1}}
	if !coordsEqual(got, want) {
		t.Fatalf("got %s, want %s", pathString(got), pathString(want))
	}
}

func TestNextPointShortcutStopsAtInvalidLine(t *testing.T) {
	snap := gridFromRows(
		"ggg",
		"rrg",
		"ggg",
	)
	costs := expensiveWater()
	// The line from (0,0) to (2,1) would cross the rock row, so the first
	// waypoint must survive.
	waypoints := []world.Coord{{X: 2, Y: 0}, {X: 2, Y: 1}, {X: 2, Y: 2}}
	got := NextPointShortcut(snap, costs, world.Coord{}, waypoints, 10)
	if !coordsEqual(got, waypoints) {
		t.Fatalf("got %s, want %s", pathString(got), pathString(waypoints))
	}
}

func TestNextPointShortcutRespectsMaxLen(t *testing.T) {
	snap := gridFromRows("gggggggg")
	costs := expensiveWater()
	waypoints := []world.Coord{{X: 3}, {X: 7}}
	got := NextPointShortcut(snap, costs, world.Coord{}, waypoints, 5)
	if !coordsEqual(got, waypoints) {
		t.Fatalf("got %s, want %s", pathString(got), pathString(waypoints))
	}
}
