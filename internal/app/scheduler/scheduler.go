package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Scheduler drives every registered session at a fixed interval. Sessions
// tick in parallel within one round; the next round never starts before the
// previous one finished, so a slow session delays the interval instead of
// overlapping itself.
type Scheduler struct {
	mu       sync.Mutex
	sessions map[string]*Session

	interval time.Duration
	now      func() time.Time
	log      logrus.FieldLogger
}

func New(interval time.Duration, log logrus.FieldLogger) *Scheduler {
	return &Scheduler{
		sessions: map[string]*Session{},
		interval: interval,
		now:      time.Now,
		log:      log,
	}
}

func (sc *Scheduler) Add(s *Session) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.sessions[s.ID] = s
	sc.log.WithField("session", s.ID).Info("session added")
}

// Remove unregisters a session and cancels its tasks.
func (sc *Scheduler) Remove(ctx context.Context, id string) bool {
	sc.mu.Lock()
	s, ok := sc.sessions[id]
	delete(sc.sessions, id)
	sc.mu.Unlock()
	if !ok {
		return false
	}
	s.Close(ctx)
	sc.log.WithField("session", id).Info("session removed")
	return true
}

func (sc *Scheduler) Get(id string) (*Session, bool) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	s, ok := sc.sessions[id]
	return s, ok
}

func (sc *Scheduler) Sessions() []*Session {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	out := make([]*Session, 0, len(sc.sessions))
	for _, s := range sc.sessions {
		out = append(out, s)
	}
	return out
}

// Run ticks until ctx is done.
func (sc *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(sc.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			sc.TickOnce(ctx, sc.now())
		}
	}
}

// TickOnce runs one round across all sessions. Exported so tests and tools
// can step the world deterministically with their own clock.
func (sc *Scheduler) TickOnce(ctx context.Context, now time.Time) {
	sessions := sc.Sessions()
	var wg sync.WaitGroup
	for _, s := range sessions {
		wg.Add(1)
		go func(s *Session) {
			defer wg.Done()
			s.Tick(ctx, now)
		}(s)
	}
	wg.Wait()
}

// Shutdown cancels tasks in every session and clears the registry.
func (sc *Scheduler) Shutdown(ctx context.Context) {
	sc.mu.Lock()
	sessions := make([]*Session, 0, len(sc.sessions))
	for _, s := range sc.sessions {
		sessions = append(sessions, s)
	}
	sc.sessions = map[string]*Session{}
	sc.mu.Unlock()
	for _, s := range sessions {
		s.Close(ctx)
	}
}
