package path

import "tilebot/internal/domain/world"

// walkLine visits every tile crossed by the segment between the centers of a
// and b, in order, calling visit for each. It stops early and returns false
// as soon as visit does. Crossing positions are compared in exact integer
// arithmetic, so the traversal is fully deterministic.
//
// When the segment passes exactly through a tile corner both orthogonal
// neighbors of the corner are visited before the diagonal tile.
func walkLine(a, b world.Coord, visit func(world.Coord) bool) bool {
	dx := b.X - a.X
	dy := b.Y - a.Y
	switch {
	case dx == 0 && dy == 0:
		return visit(a)
	case dy == 0:
		return walkStraight(a, dx, true, visit)
	case dx == 0:
		return walkStraight(a, dy, false, visit)
	}

	stepX, stepY := sign(dx), sign(dy)
	nx, ny := abs(dx), abs(dy)
	x, y := a.X, a.Y
	if !visit(a) {
		return false
	}
	// The segment crosses vertical boundary i (1..nx) at t=(2i-1)*ny and
	// horizontal boundary j (1..ny) at t=(2j-1)*nx, both scaled by 2*nx*ny.
	i, j := 1, 1
	for i <= nx || j <= ny {
		switch {
		case j > ny || (i <= nx && (2*i-1)*ny < (2*j-1)*nx):
			x += stepX
			i++
		case i > nx || (2*i-1)*ny > (2*j-1)*nx:
			y += stepY
			j++
		default:
			// Exact corner crossing.
			if !visit(world.Coord{X: x + stepX, Y: y}) {
				return false
			}
			if !visit(world.Coord{X: x, Y: y + stepY}) {
				return false
			}
			x += stepX
			y += stepY
			i++
			j++
		}
		if !visit(world.Coord{X: x, Y: y}) {
			return false
		}
	}
	return true
}

func walkStraight(a world.Coord, delta int, horizontal bool, visit func(world.Coord) bool) bool {
	step := sign(delta)
	for k := 0; k != delta+step; k += step {
		var c world.Coord
		if horizontal {
			c = world.Coord{X: a.X + k, Y: a.Y}
		} else {
			c = world.Coord{X: a.X, Y: a.Y + k}
		}
		if !visit(c) {
			return false
		}
	}
	return true
}

func sign(v int) int {
	if v < 0 {
		return -1
	}
	return 1
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
