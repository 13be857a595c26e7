package task

import (
	"context"
	"errors"

	"tilebot/internal/domain/path"
	"tilebot/internal/domain/world"
)

type searchResult struct {
	waypoints []world.Coord
	err       error
}

// asyncFinder runs one path search on its own goroutine so a long search
// never stalls the poll loop. The owning task polls it each tick and cancels
// it when the task is cancelled. The search keeps the snapshot it was
// started with; newer grid generations do not tear it.
type asyncFinder struct {
	cancel context.CancelFunc
	done   chan searchResult
}

func (f *asyncFinder) running() bool {
	return f.done != nil
}

func (f *asyncFinder) start(snap *world.Snapshot, costs world.CostModel, from, to world.Coord, cfg path.Config) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan searchResult, 1)
	f.cancel = cancel
	f.done = ch
	go func() {
		defer cancel()
		waypoints, err := path.Find(ctx, snap, costs, from, to, cfg)
		ch <- searchResult{waypoints: waypoints, err: err}
	}()
}

// poll returns the finished search result, if any, and consumes it.
func (f *asyncFinder) poll() (searchResult, bool) {
	if f.done == nil {
		return searchResult{}, false
	}
	select {
	case res := <-f.done:
		f.done = nil
		f.cancel = nil
		return res, true
	default:
		return searchResult{}, false
	}
}

func searchOutcome(err error) string {
	switch {
	case err == nil:
		return "found"
	case errors.Is(err, path.ErrUnreachable):
		return "unreachable"
	case errors.Is(err, path.ErrIterationLimit):
		return "iteration_limit"
	case errors.Is(err, path.ErrUnknownTerrain):
		return "unknown_terrain"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "error"
	}
}

func recordSearch(env Env, err error) {
	if env.Metrics != nil {
		env.Metrics.RecordSearch(searchOutcome(err))
	}
}

func (f *asyncFinder) stop() {
	if f.cancel != nil {
		f.cancel()
	}
	f.done = nil
	f.cancel = nil
}
