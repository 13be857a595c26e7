package task

import (
	"math"
	"time"

	"tilebot/internal/app/ports"
	"tilebot/internal/domain/path"
	"tilebot/internal/domain/world"
)

// waypointReachRadius matches the original movement tolerance: a non-final
// waypoint counts as visited once the player is within one diagonal step.
var waypointReachRadius = math.Sqrt2

// follower walks a found path: drops reached waypoints, merges the leading
// segment while a straight line stays valid, issues move commands, and
// re-issues them when the player has stopped making progress.
type follower struct {
	waypoints    []world.Coord
	maxNextLen   float64
	stuckAfter   time.Duration
	issued       *world.Coord
	lastPos      world.Coord
	lastProgress time.Time
	hasLastPos   bool
}

func (f *follower) set(waypoints []world.Coord) {
	f.waypoints = waypoints
	f.issued = nil
	f.hasLastPos = false
}

func (f *follower) active() bool {
	return len(f.waypoints) > 0
}

func (f *follower) reset() {
	f.set(nil)
}

// step returns the move action to issue this tick (if any) and whether the
// whole path has been walked.
func (f *follower) step(env Env) (*ports.Action, bool) {
	pos := env.Player.Pos
	f.waypoints = path.NextPointShortcut(env.Grid, env.Costs, pos, f.waypoints, f.maxNextLen)
	for len(f.waypoints) > 0 {
		head := f.waypoints[0]
		if head == pos || (len(f.waypoints) > 1 && pos.Dist(head) <= waypointReachRadius) {
			f.waypoints = f.waypoints[1:]
			f.issued = nil
			continue
		}
		break
	}
	if len(f.waypoints) == 0 {
		return nil, true
	}

	target := f.waypoints[0]
	if !f.hasLastPos || pos != f.lastPos {
		f.lastPos = pos
		f.hasLastPos = true
		f.lastProgress = env.Now
	}
	stuck := f.stuckAfter > 0 && f.issued != nil && env.Now.Sub(f.lastProgress) >= f.stuckAfter
	if f.issued == nil || *f.issued != target || stuck {
		f.issued = &target
		f.lastProgress = env.Now
		return &ports.Action{Kind: ports.ActionMoveTo, Target: target}, false
	}
	return nil, false
}
