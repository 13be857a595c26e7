package path

import (
	"container/heap"
	"context"
	"math"

	"github.com/sirupsen/logrus"

	"tilebot/internal/domain/world"
)

// Config bounds a single search and the smoothing passes that follow it.
type Config struct {
	// MaxIterations bounds node expansions; <= 0 means unbounded.
	MaxIterations     int
	MaxShortcutLength float64
	// MaxNextShortcutLength bounds the leading-segment merge done during
	// continuous re-planning (NextPointShortcut).
	MaxNextShortcutLength float64
	// ReportIterations > 0 emits a debug progress line every that many
	// expansions. Observability only.
	ReportIterations int
	Log              logrus.FieldLogger
}

type edge struct {
	dx, dy int
	length float64
}

// Expansion order is fixed so that equal-cost grids always produce the same
// path.
var edges = [8]edge{
	{-1, -1, math.Sqrt2},
	{-1, 0, 1},
	{-1, 1, math.Sqrt2},
	{0, -1, 1},
	{0, 1, 1},
	{1, -1, math.Sqrt2},
	{1, 0, 1},
	{1, 1, math.Sqrt2},
}

// Find computes a traversable route from start to goal over one grid
// snapshot, then compresses it with straight-line shortcuts. Best-first
// search: priority = accumulated tile weight + Euclidean distance to goal,
// ties broken FIFO by insertion order. An edge into a penalized tile costs
// stepLength * (weightFrom + weightTo) / 2.
//
// The returned path starts at start and ends at goal. Identical snapshot,
// endpoints and config always yield an identical path.
func Find(ctx context.Context, snap *world.Snapshot, costs world.CostModel, start, goal world.Coord, cfg Config) ([]world.Coord, error) {
	if _, known := snap.At(start); !known {
		return nil, ErrUnknownTerrain
	}
	goalType, known := snap.At(goal)
	if !known {
		return nil, ErrUnknownTerrain
	}
	if _, ok := costs.Weight(goalType); !ok {
		return nil, ErrUnreachable
	}
	if start == goal {
		return []world.Coord{start}, nil
	}

	weight := func(c world.Coord) (float64, bool) {
		t, ok := snap.At(c)
		if !ok {
			return 0, false
		}
		w, ok := costs.Weight(t)
		return float64(w), ok
	}
	// Unexplored tiles never block a diagonal corner check; known impassable
	// tiles do.
	passableCorner := func(c world.Coord) bool {
		t, ok := snap.At(c)
		if !ok {
			return true
		}
		_, ok = costs.Weight(t)
		return ok
	}

	cost := map[world.Coord]float64{start: 0}
	backtrack := map[world.Coord]world.Coord{}
	inOpen := map[world.Coord]bool{start: true}

	open := &nodeHeap{}
	heap.Init(open)
	open.push(start, start.Dist(goal))

	iterations := 0
	for open.Len() > 0 {
		cur := heap.Pop(open).(node).pos
		if cur == goal {
			raw := reconstruct(start, goal, backtrack)
			return Compress(snap, costs, raw, cfg.MaxShortcutLength), nil
		}
		if cfg.MaxIterations > 0 && iterations >= cfg.MaxIterations {
			return nil, ErrIterationLimit
		}
		if iterations&1023 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		delete(inOpen, cur)

		curWeight, ok := weight(cur)
		if ok {
			for _, e := range edges {
				next := cur.Add(e.dx, e.dy)
				nextWeight, ok := weight(next)
				if !ok {
					continue
				}
				if e.dx != 0 && e.dy != 0 {
					if !passableCorner(cur.Add(e.dx, 0)) || !passableCorner(cur.Add(0, e.dy)) {
						continue
					}
				}
				nextCost := cost[cur] + e.length*(curWeight+nextWeight)/2
				if prev, seen := cost[next]; seen && nextCost >= prev {
					continue
				}
				backtrack[next] = cur
				cost[next] = nextCost
				if !inOpen[next] {
					inOpen[next] = true
					open.push(next, nextCost+next.Dist(goal))
				}
			}
		}

		iterations++
		if cfg.ReportIterations > 0 && cfg.Log != nil && iterations%cfg.ReportIterations == 0 {
			cfg.Log.WithFields(logrus.Fields{
				"iterations": iterations,
				"open":       open.Len(),
				"visited":    len(cost),
			}).Debug("path search progress")
		}
	}

	return nil, ErrUnreachable
}

func reconstruct(start, goal world.Coord, backtrack map[world.Coord]world.Coord) []world.Coord {
	reversed := []world.Coord{goal}
	for cur := goal; cur != start; {
		cur = backtrack[cur]
		reversed = append(reversed, cur)
	}
	out := make([]world.Coord, 0, len(reversed))
	for i := len(reversed) - 1; i >= 0; i-- {
		out = append(out, reversed[i])
	}
	return out
}

type node struct {
	pos   world.Coord
	score float64
	seq   uint64
}

type nodeHeap struct {
	nodes []node
	seq   uint64
}

func (h *nodeHeap) push(pos world.Coord, score float64) {
	h.seq++
	heap.Push(h, node{pos: pos, score: score, seq: h.seq})
}

func (h *nodeHeap) Len() int { return len(h.nodes) }

func (h *nodeHeap) Less(i, j int) bool {
	if h.nodes[i].score != h.nodes[j].score {
		return h.nodes[i].score < h.nodes[j].score
	}
	return h.nodes[i].seq < h.nodes[j].seq
}

func (h *nodeHeap) Swap(i, j int) { h.nodes[i], h.nodes[j] = h.nodes[j], h.nodes[i] }

func (h *nodeHeap) Push(x any) { h.nodes = append(h.nodes, x.(node)) }

func (h *nodeHeap) Pop() any {
	n := len(h.nodes)
	out := h.nodes[n-1]
	h.nodes = h.nodes[:n-1]
	return out
}
