package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"tilebot/internal/app/ports"
	"tilebot/internal/app/task"
	"tilebot/internal/domain/player"
	"tilebot/internal/domain/world"
)

// Update mutates a session's world between ticks. Grid writes go through the
// store's buffer and become visible on the next publish; player writes take
// effect immediately for the next tick.
type Update func(grid *world.Store, p *player.State)

// SessionConfig carries everything a session needs besides its task queue.
type SessionConfig struct {
	Costs       world.CostModel
	Sink        ports.ActionSink
	Metrics     ports.TaskMetrics
	Log         logrus.FieldLogger
	ReportEvery uint64
}

// Session owns one agent: its grid store, its player state and a FIFO task
// queue whose head runs each tick. All mutation funnels through Tick and the
// update queue, so tasks never race on shared state.
type Session struct {
	ID string

	mu      sync.Mutex
	grid    *world.Store
	player  *player.State
	costs   world.CostModel
	tasks   []task.Task
	pending []Update

	sink        ports.ActionSink
	metrics     ports.TaskMetrics
	log         logrus.FieldLogger
	reportEvery uint64

	ticks uint64
	fault error
}

func NewSession(cfg SessionConfig) *Session {
	id := uuid.NewString()
	return &Session{
		ID:          id,
		grid:        world.NewStore(),
		player:      player.NewState(),
		costs:       cfg.Costs,
		sink:        cfg.Sink,
		metrics:     cfg.Metrics,
		log:         cfg.Log.WithField("session", id),
		reportEvery: cfg.ReportEvery,
	}
}

// Apply queues an update. Safe to call from transport goroutines at any time;
// the update runs at the start of the next tick.
func (s *Session) Apply(u Update) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, u)
}

// AddTask appends to the task queue. The head task runs; the rest wait.
func (s *Session) AddTask(t task.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, t)
	s.log.WithField("task", t.Name()).Info("task queued")
}

// CancelTask removes the first task with the given name, pushing any
// compensating actions it needs. Runs between steps by construction: it takes
// the same lock Tick holds.
func (s *Session) CancelTask(ctx context.Context, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.tasks {
		if t.Name() != name {
			continue
		}
		s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
		env := s.envLocked(time.Now())
		for _, a := range t.Cancel(env) {
			if err := s.sink.Push(ctx, a); err != nil {
				s.faultLocked(fmt.Errorf("push compensating action: %w", err))
				break
			}
		}
		s.log.WithField("task", name).Info("task canceled")
		return true
	}
	return false
}

// Close cancels every queued task, head first.
func (s *Session) Close(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	env := s.envLocked(time.Now())
	for _, t := range s.tasks {
		for _, a := range t.Cancel(env) {
			if err := s.sink.Push(ctx, a); err != nil {
				s.faultLocked(fmt.Errorf("push compensating action: %w", err))
				break
			}
		}
	}
	s.tasks = nil
}

// Tick advances the session by one step: drain updates, publish a grid
// generation, step the head task, flush its actions. At most one task
// completes per tick.
func (s *Session) Tick(ctx context.Context, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fault != nil {
		return
	}
	s.ticks++

	for _, u := range s.pending {
		u(s.grid, s.player)
	}
	s.pending = nil
	snap := s.grid.Publish()

	if len(s.tasks) == 0 {
		return
	}
	head := s.tasks[0]
	env := task.Env{
		Now:     now,
		Grid:    snap,
		Costs:   s.costs,
		Player:  s.player,
		Log:     s.log.WithField("task", head.Name()),
		Metrics: s.metrics,
	}
	res := head.Step(ctx, env)

	for _, a := range res.Actions {
		if err := s.sink.Push(ctx, a); err != nil {
			s.faultLocked(fmt.Errorf("push action %s: %w", a.Kind, err))
			return
		}
	}

	if s.reportEvery > 0 && s.ticks%s.reportEvery == 0 {
		s.log.WithFields(logrus.Fields{
			"tick":    s.ticks,
			"task":    head.Name(),
			"status":  res.Status.String(),
			"grid":    snap.Version(),
			"pending": len(s.tasks),
		}).Debug("session progress")
	}

	switch res.Status {
	case task.StatusDone:
		s.tasks = s.tasks[1:]
		s.metrics.RecordTaskDone(head.Name())
		s.log.WithField("task", head.Name()).Info("task done")
	case task.StatusFailed:
		s.tasks = s.tasks[1:]
		s.metrics.RecordTaskFailed(head.Name(), string(res.Reason))
		s.log.WithFields(logrus.Fields{
			"task":   head.Name(),
			"reason": string(res.Reason),
		}).Warn("task failed")
	}
}

func (s *Session) envLocked(now time.Time) task.Env {
	return task.Env{
		Now:    now,
		Grid:   s.grid.Current(),
		Costs:  s.costs,
		Player: s.player,
		Log:    s.log,
	}
}

// faultLocked marks the session faulted. A faulted session stops stepping
// tasks until it is removed; the transport it depends on is gone.
func (s *Session) faultLocked(err error) {
	s.fault = err
	s.log.WithError(err).Error("session faulted")
}

func (s *Session) Fault() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fault
}

// TaskStatus is one queue entry in a status report.
type TaskStatus struct {
	Name  string `json:"name"`
	State string `json:"state,omitempty"`
}

// StatusReport is a point-in-time dump of the session for the HTTP surface.
type StatusReport struct {
	ID          string                  `json:"id"`
	Ticks       uint64                  `json:"ticks"`
	Fault       string                  `json:"fault,omitempty"`
	GridVersion uint64                  `json:"grid_version"`
	GridTiles   int                     `json:"grid_tiles"`
	Pos         world.Coord             `json:"pos"`
	Meters      map[string]player.Meter `json:"meters"`
	Tasks       []TaskStatus            `json:"tasks"`
}

func (s *Session) Status() StatusReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusLocked(s.grid.Current())
}

// Dump copies the full player state and grid for the session data endpoint.
type Dump struct {
	Status StatusReport              `json:"status"`
	Player *player.State             `json:"player"`
	Tiles  map[string]world.TileType `json:"tiles"`
}

func (s *Session) Dump() Dump {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.grid.Current()
	tiles := make(map[string]world.TileType, snap.Len())
	snap.Each(func(c world.Coord, t world.TileType) {
		tiles[fmt.Sprintf("%d,%d", c.X, c.Y)] = t
	})
	// Deep-copied: the handler marshals the dump after the lock is gone.
	return Dump{Status: s.statusLocked(snap), Player: s.player.Clone(), Tiles: tiles}
}

func (s *Session) statusLocked(snap *world.Snapshot) StatusReport {
	rep := StatusReport{
		ID:          s.ID,
		Ticks:       s.ticks,
		GridVersion: snap.Version(),
		GridTiles:   snap.Len(),
		Pos:         s.player.Pos,
		Meters:      make(map[string]player.Meter, len(s.player.Meters)),
		Tasks:       make([]TaskStatus, 0, len(s.tasks)),
	}
	if s.fault != nil {
		rep.Fault = s.fault.Error()
	}
	for name, m := range s.player.Meters {
		rep.Meters[name] = m
	}
	for _, t := range s.tasks {
		ts := TaskStatus{Name: t.Name()}
		if d, ok := t.(*task.Drinker); ok {
			ts.State = d.StateName()
		}
		rep.Tasks = append(rep.Tasks, ts)
	}
	return rep
}
