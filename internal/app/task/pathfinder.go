package task

import (
	"context"
	"errors"
	"time"

	"tilebot/internal/app/ports"
	"tilebot/internal/domain/path"
	"tilebot/internal/domain/world"
)

// PathFinderConfig bounds the search and movement of the path-driven tasks.
type PathFinderConfig struct {
	FindPathMaxIterations      int
	FindPathMaxShortcutLength  float64
	MaxNextPointShortcutLength float64
	ReportIterations           int
	StuckTimeout               time.Duration
}

func (c PathFinderConfig) searchConfig(env Env) path.Config {
	return path.Config{
		MaxIterations:         c.FindPathMaxIterations,
		MaxShortcutLength:     c.FindPathMaxShortcutLength,
		MaxNextShortcutLength: c.MaxNextPointShortcutLength,
		ReportIterations:      c.ReportIterations,
		Log:                   env.Log,
	}
}

// PathFinder drives the player to a fixed destination tile. It re-plans when
// the follower runs out of waypoints before arrival and abandons the task
// when the destination cannot be reached within the configured bounds.
type PathFinder struct {
	cfg    PathFinderConfig
	dest   world.Coord
	finder asyncFinder
	follow follower
}

func NewPathFinder(cfg PathFinderConfig, dest world.Coord) *PathFinder {
	return &PathFinder{
		cfg:  cfg,
		dest: dest,
		follow: follower{
			maxNextLen: cfg.MaxNextPointShortcutLength,
			stuckAfter: cfg.StuckTimeout,
		},
	}
}

func (t *PathFinder) Name() string { return "PathFinder" }

func (t *PathFinder) Destination() world.Coord { return t.dest }

func (t *PathFinder) Step(ctx context.Context, env Env) Result {
	pos := env.Player.Pos
	if pos == t.dest {
		t.finder.stop()
		return done()
	}
	if _, known := env.Grid.At(pos); !known {
		// The grid has not caught up with the player yet; wait for map data.
		return running()
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

	if !t.follow.active() {
		if _, known := env.Grid.At(t.dest); !known {
			env.Log.WithField("dest", t.dest).Debug("pathfinder: destination unexplored, waiting for map data")
			return running()
		}
		t.finder.start(env.Grid, env.Costs, pos, t.dest, t.cfg.searchConfig(env))
		return running()
	}

	action, arrived := t.follow.step(env)
	if arrived {
		// Path exhausted short of the destination; plan the remainder.
		t.follow.reset()
		return running()
	}
	if action != nil {
		return running(*action)
	}
	return running()
}

func (t *PathFinder) searchFailed(env Env, err error) Result {
	switch {
	case errors.Is(err, path.ErrUnknownTerrain):
		env.Log.WithField("dest", t.dest).Debug("pathfinder: terrain unknown, waiting for map data")
		return running()
	case errors.Is(err, path.ErrUnreachable), errors.Is(err, path.ErrIterationLimit):
		env.Log.WithField("dest", t.dest).WithError(err).Warn("pathfinder: destination abandoned")
		return failed(ReasonResourceUnavailable)
	case errors.Is(err, context.Canceled):
		return running()
	default:
		env.Log.WithError(err).Error("pathfinder: search failed")
		return failed(ReasonFatalInconsistency)
	}
}

func (t *PathFinder) Cancel(Env) []ports.Action {
	t.finder.stop()
	t.follow.reset()
	return nil
}

func (t *PathFinder) sealed() {}
