package task

import "tilebot/internal/domain/world"

// clusterAdjacent groups coordinates into clusters of mutually adjacent
// tiles (8-neighborhood). Input order determines cluster order, so callers
// sort first for deterministic output.
func clusterAdjacent(tiles []world.Coord) [][]world.Coord {
	var clusters [][]world.Coord
	for _, tile := range tiles {
		placed := false
		for i, cluster := range clusters {
			for _, member := range cluster {
				if adjacent(member, tile) {
					clusters[i] = append(clusters[i], tile)
					placed = true
					break
				}
			}
			if placed {
				break
			}
		}
		if !placed {
			clusters = append(clusters, []world.Coord{tile})
		}
	}
	return clusters
}

// clusterMedian picks the member closest to the cluster mean, ties broken by
// coordinate order.
func clusterMedian(cluster []world.Coord) world.Coord {
	var sx, sy float64
	for _, c := range cluster {
		sx += float64(c.X)
		sy += float64(c.Y)
	}
	n := float64(len(cluster))
	mx, my := sx/n, sy/n

	best := cluster[0]
	bestDist := sq(float64(best.X)-mx) + sq(float64(best.Y)-my)
	for _, c := range cluster[1:] {
		d := sq(float64(c.X)-mx) + sq(float64(c.Y)-my)
		if d < bestDist || (d == bestDist && coordLess(c, best)) {
			best = c
			bestDist = d
		}
	}
	return best
}

func adjacent(a, b world.Coord) bool {
	dx, dy := a.X-b.X, a.Y-b.Y
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	return dx <= 1 && dy <= 1 && (dx != 0 || dy != 0)
}

func coordLess(a, b world.Coord) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	return a.Y < b.Y
}

func sq(v float64) float64 { return v * v }
