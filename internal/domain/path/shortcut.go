package path

import "tilebot/internal/domain/world"

// Compress greedily replaces runs of waypoints with straight segments. Each
// substituted segment is at most maxLen long and crosses only known,
// non-impassable tiles, so the output is traversable whenever the input was.
func Compress(snap *world.Snapshot, costs world.CostModel, waypoints []world.Coord, maxLen float64) []world.Coord {
	if len(waypoints) < 3 {
		return waypoints
	}
	out := []world.Coord{waypoints[0]}
	i := 0
	for i < len(waypoints)-1 {
		j := len(waypoints) - 1
		for j > i+1 && !ValidShortcut(snap, costs, waypoints[i], waypoints[j], maxLen) {
			j--
		}
		out = append(out, waypoints[j])
		i = j
	}
	return out
}

// NextPointShortcut merges the leading segment of an already-shortened path
// into the current position: while the straight line from pos to the second
// waypoint is valid, the first waypoint is redundant. This lets a moving
// agent keep following a path without re-running the full search.
func NextPointShortcut(snap *world.Snapshot, costs world.CostModel, pos world.Coord, waypoints []world.Coord, maxLen float64) []world.Coord {
	for len(waypoints) >= 2 && ValidShortcut(snap, costs, pos, waypoints[1], maxLen) {
		waypoints = waypoints[1:]
	}
	return waypoints
}

// ValidShortcut reports whether the straight line between two tile centers is
// at most maxLen long and crosses only known tiles that are not impassable.
// When the line passes exactly through a tile corner, both adjacent
// orthogonal tiles must also qualify: a shortcut never squeezes diagonally
// between blocked tiles.
func ValidShortcut(snap *world.Snapshot, costs world.CostModel, a, b world.Coord, maxLen float64) bool {
	if a.Dist(b) > maxLen {
		return false
	}
	return walkLine(a, b, func(c world.Coord) bool {
		t, known := snap.At(c)
		if !known {
			return false
		}
		_, ok := costs.Weight(t)
		return ok
	})
}
