package task

import (
	"context"
	"errors"
	"sort"

	"tilebot/internal/app/ports"
	"tilebot/internal/domain/path"
	"tilebot/internal/domain/world"
)

// Explorer repeatedly drives the path finder toward the nearest frontier: a
// known traversable tile with at least one unexplored orthogonal neighbor.
// Frontier tiles are clustered and each cluster is represented by its
// median, so the explorer heads for the middle of an unexplored edge rather
// than its corner. Running out of reachable frontiers is normal completion,
// not an error.
type Explorer struct {
	cfg        PathFinderConfig
	finder     asyncFinder
	follow     follower
	candidates []world.Coord
	scanned    bool
	visited    map[world.Coord]bool
}

func NewExplorer(cfg PathFinderConfig) *Explorer {
	return &Explorer{
		cfg: cfg,
		follow: follower{
			maxNextLen: cfg.MaxNextPointShortcutLength,
			stuckAfter: cfg.StuckTimeout,
		},
		visited: map[world.Coord]bool{},
	}
}

func (t *Explorer) Name() string { return "Explorer" }

func (t *Explorer) Step(ctx context.Context, env Env) Result {
	pos := env.Player.Pos
	if _, known := env.Grid.At(pos); !known {
		// The grid must know the tile the player stands on; losing it means
		// the world view contradicts itself.
		env.Log.WithField("pos", pos).Error("explorer: player tile missing from grid")
		return failed(ReasonFatalInconsistency)
	}

	if t.finder.running() {
		res, ready := t.finder.poll()
		if !ready {
			return running()
		}
		recordSearch(env, res.err)
		if res.err != nil {
			return t.searchFailed(env, res.err)
		}
		t.follow.set(res.waypoints)
	}

	if t.follow.active() {
		action, arrived := t.follow.step(env)
		if !arrived {
			if action != nil {
				return running(*action)
			}
			return running()
		}
		// Frontier reached; rescan once fresh map data arrives.
		t.follow.reset()
		t.candidates = nil
		t.scanned = false
		return running()
	}

	if !t.scanned {
		t.candidates = t.frontierCandidates(env)
		t.scanned = true
		env.Log.WithField("candidates", len(t.candidates)).Debug("explorer: frontier scan")
	}
	if len(t.candidates) == 0 {
		return done()
	}
	target := t.candidates[0]
	t.visited[target] = true
	t.finder.start(env.Grid, env.Costs, pos, target, t.cfg.searchConfig(env))
	return running()
}

func (t *Explorer) searchFailed(env Env, err error) Result {
	switch {
	case errors.Is(err, path.ErrUnreachable),
		errors.Is(err, path.ErrIterationLimit),
		errors.Is(err, path.ErrUnknownTerrain):
		// This frontier is not reachable right now; try the next one.
		if len(t.candidates) > 0 {
			t.candidates = t.candidates[1:]
		}
		return running()
	case errors.Is(err, context.Canceled):
		return running()
	default:
		env.Log.WithError(err).Error("explorer: search failed")
		return failed(ReasonFatalInconsistency)
	}
}

// frontierCandidates returns cluster medians of the current frontier, sorted
// nearest first.
func (t *Explorer) frontierCandidates(env Env) []world.Coord {
	var frontier []world.Coord
	env.Grid.Each(func(c world.Coord, tile world.TileType) {
		if _, ok := env.Costs.Weight(tile); !ok {
			return
		}
		for _, n := range c.Neighbors4() {
			if _, known := env.Grid.At(n); !known {
				frontier = append(frontier, c)
				return
			}
		}
	})
	sort.Slice(frontier, func(i, j int) bool { return coordLess(frontier[i], frontier[j]) })

	pos := env.Player.Pos
	var candidates []world.Coord
	for _, cluster := range clusterAdjacent(frontier) {
		median := clusterMedian(cluster)
		if !t.visited[median] {
			candidates = append(candidates, median)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		di, dj := candidates[i].Dist(pos), candidates[j].Dist(pos)
		if di != dj {
			return di < dj
		}
		return coordLess(candidates[i], candidates[j])
	})
	return candidates
}

func (t *Explorer) Cancel(Env) []ports.Action {
	t.finder.stop()
	t.follow.reset()
	return nil
}

func (t *Explorer) sealed() {}
